package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSupabase_ImplementsStore(t *testing.T) {
	var _ Store = (*Supabase)(nil)
}

func TestSupabase_InsertReturnsStoredRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/v1/transcripts" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("apikey"); got != "service-key" {
			t.Errorf("apikey = %q, want %q", got, "service-key")
		}
		if got := r.Header.Get("Authorization"); got != "Bearer service-key" {
			t.Errorf("Authorization = %q, want bearer service key", got)
		}
		if got := r.Header.Get("Prefer"); got != "return=representation" {
			t.Errorf("Prefer = %q, want return=representation", got)
		}

		var rows []map[string]string
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil || len(rows) != 1 {
			t.Fatalf("body should be a one-row array, got err=%v rows=%v", err, rows)
		}
		if rows[0]["text"] != "hello world" || rows[0]["filename"] != "memo.wav" {
			t.Errorf("row = %v, want text and filename persisted", rows[0])
		}

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id":"abc-123","filename":"memo.wav","text":"hello world","created_at":"2024-06-01T12:00:00+00:00"}]`))
	}))
	defer srv.Close()

	s := NewSupabase(srv.URL, "service-key")
	rec, err := s.Insert(context.Background(), "hello world", "memo.wav")
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if rec.ID != "abc-123" {
		t.Errorf("ID = %q, want server-assigned %q", rec.ID, "abc-123")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("CreatedAt should come from the stored row")
	}
}

func TestSupabase_ListAllOrdersByRecency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("order"); got != "created_at.desc" {
			t.Errorf("order = %q, want created_at.desc", got)
		}
		w.Write([]byte(`[
			{"id":"b","filename":"second.wav","text":"later","created_at":"2024-06-02T12:00:00+00:00"},
			{"id":"a","filename":"first.wav","text":"earlier","created_at":"2024-06-01T12:00:00+00:00"}
		]`))
	}))
	defer srv.Close()

	s := NewSupabase(srv.URL, "service-key")
	rows, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].CreatedAt.After(rows[i-1].CreatedAt) {
			t.Errorf("rows not in non-increasing created_at order: %v after %v", rows[i].CreatedAt, rows[i-1].CreatedAt)
		}
	}
}

func TestSupabase_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"JWT invalid"}`))
	}))
	defer srv.Close()

	s := NewSupabase(srv.URL, "bad-key")

	_, err := s.Insert(context.Background(), "t", "f")
	var serr *Error
	if !errors.As(err, &serr) {
		t.Fatalf("Insert() error = %v, want *store.Error", err)
	}
	if serr.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want %d", serr.Status, http.StatusUnauthorized)
	}

	if _, err := s.ListAll(context.Background()); err == nil {
		t.Error("ListAll() should fail on an error status")
	}
	if err := s.Ping(context.Background()); err == nil {
		t.Error("Ping() should fail on an error status")
	}
}

func TestSupabase_InsertWithoutRepresentation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	s := NewSupabase(srv.URL, "service-key")
	if _, err := s.Insert(context.Background(), "t", "f"); err == nil {
		t.Error("Insert() should fail when no stored row is returned")
	}
}
