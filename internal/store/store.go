package store

import (
	"context"
	"fmt"
	"time"
)

// Record is one persisted transcript row. Rows are immutable: the system
// only ever inserts and lists them.
type Record struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists transcript records.
//
// Insert returns the full stored row so callers can echo the store-assigned
// id and created_at instead of synthesizing them. ListAll returns every
// record newest first with no pagination; history volumes in this domain
// stay small, and paginating would change the public response shape, so the
// unbounded result set is a documented scaling limit rather than a bug.
type Store interface {
	Insert(ctx context.Context, text, filename string) (*Record, error)
	ListAll(ctx context.Context) ([]Record, error)
	Ping(ctx context.Context) error
}

// Error is a persistence failure. Status holds the backend's HTTP status
// when the backend speaks HTTP.
type Error struct {
	Backend string
	Op      string
	Status  int
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s %s: status %d: %s", e.Backend, e.Op, e.Status, e.Detail)
	default:
		return fmt.Sprintf("%s %s: %s", e.Backend, e.Op, e.Detail)
	}
}

func (e *Error) Unwrap() error { return e.Err }
