package transcript

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/voicescribe/voicescribe/internal/provider"
	"github.com/voicescribe/voicescribe/internal/store"
)

// DefaultFilename is used when a submission carries no original name.
const DefaultFilename = "untitled-audio"

// Submission is one in-flight audio payload, held only for the duration of
// a single request.
type Submission struct {
	Audio    []byte
	MimeType string
	Filename string
}

// Result is the normalized transcription response shape.
type Result struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Transcript string    `json:"transcript"`
	CreatedAt  time.Time `json:"created_at"`
}

// Entry is one history row in the client-facing shape. The store names the
// transcript column "text" while clients expect "transcription"; the rename
// here is a stable interface contract, not cosmetics, so it must not be
// collapsed by renaming either side.
type Entry struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	Transcription string    `json:"transcription"`
	CreatedAt     time.Time `json:"created_at"`
}

// Service runs the transcription request lifecycle with its dependencies
// injected, so handlers and tests can swap in stub providers and stores.
type Service struct {
	provider provider.Provider
	store    store.Store
	logger   *slog.Logger
}

func NewService(p provider.Provider, s store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{provider: p, store: s, logger: logger}
}

// Transcribe sends the submission to the provider, then persists the
// transcript best-effort. A store failure after a successful transcription
// is logged and the result is built from in-hand values with a synthesized
// id and timestamp, so the caller still receives the transcript. The
// resulting row is then absent from history, a known and accepted
// inconsistency.
func (s *Service) Transcribe(ctx context.Context, sub Submission) (*Result, error) {
	filename := sub.Filename
	if filename == "" {
		filename = DefaultFilename
	}

	text, err := s.provider.Transcribe(ctx, sub.Audio, sub.MimeType)
	if err != nil {
		return nil, err
	}

	rec, err := s.store.Insert(ctx, text, filename)
	if err != nil {
		s.logger.Error("failed to persist transcript", "filename", filename, "error", err)
		return &Result{
			ID:         uuid.NewString(),
			Filename:   filename,
			Transcript: text,
			CreatedAt:  time.Now().UTC(),
		}, nil
	}

	return &Result{
		ID:         rec.ID,
		Filename:   rec.Filename,
		Transcript: rec.Text,
		CreatedAt:  rec.CreatedAt,
	}, nil
}

// History lists every stored transcript newest first, mapped into the
// client-facing field names. Store failures propagate: there is no fallback
// data to show.
func (s *Service) History(ctx context.Context) ([]Entry, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, Entry{
			ID:            rec.ID,
			Filename:      rec.Filename,
			Transcription: rec.Text,
			CreatedAt:     rec.CreatedAt,
		})
	}
	return entries, nil
}
