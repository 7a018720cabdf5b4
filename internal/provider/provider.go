package provider

import (
	"context"
	"fmt"
)

// NoTranscript replaces empty provider output so the transcript field is
// never null or empty in responses.
const NoTranscript = "[No transcription]"

// Provider is the interface for speech-to-text backends. Transcribe submits
// raw audio bytes with their MIME type and returns the transcript text.
type Provider interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
	Name() string
}

// Error is a failure reported by (or while calling) a transcription
// provider. Status holds the upstream HTTP status when one was received and
// Detail the provider's payload, both kept for server-side logs.
type Error struct {
	Provider string
	Status   int
	Detail   string
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Detail)
	default:
		return fmt.Sprintf("%s: %s", e.Provider, e.Detail)
	}
}

func (e *Error) Unwrap() error { return e.Err }
