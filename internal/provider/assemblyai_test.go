package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// assemblyStub plays the upload → job → poll protocol, serving statuses
// from a script one per poll.
type assemblyStub struct {
	t        *testing.T
	statuses []string
	finalTxt string
	errorMsg string

	uploads int
	jobs    int
	polls   int
}

func (s *assemblyStub) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v2/upload":
			s.uploads++
			if got := r.Header.Get("Authorization"); got != "stub-key" {
				s.t.Errorf("upload Authorization = %q, want %q", got, "stub-key")
			}
			json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example/upload/abc"})

		case r.Method == http.MethodPost && r.URL.Path == "/v2/transcript":
			s.jobs++
			var req map[string]string
			json.NewDecoder(r.Body).Decode(&req)
			if req["audio_url"] != "https://cdn.example/upload/abc" {
				s.t.Errorf("audio_url = %q, want the upload reference", req["audio_url"])
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "job-1", "status": "queued"})

		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v2/transcript/"):
			if s.polls >= len(s.statuses) {
				s.t.Errorf("unexpected poll %d, scripted only %d", s.polls+1, len(s.statuses))
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			status := s.statuses[s.polls]
			s.polls++

			resp := map[string]string{"id": "job-1", "status": status}
			if status == "completed" {
				resp["text"] = s.finalTxt
			}
			if status == "error" {
				resp["error"] = s.errorMsg
			}
			json.NewEncoder(w).Encode(resp)

		default:
			s.t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestAssemblyAI(baseURL string) *AssemblyAI {
	return NewAssemblyAI(AssemblyAIConfig{
		APIKey:       "stub-key",
		BaseURL:      baseURL,
		PollInterval: time.Millisecond,
		MaxPolls:     10,
	})
}

func TestAssemblyAI_ImplementsProvider(t *testing.T) {
	var _ Provider = (*AssemblyAI)(nil)
}

func TestAssemblyAI_PollsUntilCompleted(t *testing.T) {
	stub := &assemblyStub{t: t, statuses: []string{"queued", "queued", "completed"}, finalTxt: "hello from the queue"}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	a := newTestAssemblyAI(srv.URL)
	text, err := a.Transcribe(context.Background(), []byte("audio"), "audio/wav")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if text != "hello from the queue" {
		t.Errorf("transcript = %q, want %q", text, "hello from the queue")
	}
	if stub.polls != 3 {
		t.Errorf("polls = %d, want exactly 3 (queued, queued, completed)", stub.polls)
	}
	if stub.uploads != 1 || stub.jobs != 1 {
		t.Errorf("uploads = %d, jobs = %d, want 1 each", stub.uploads, stub.jobs)
	}
}

func TestAssemblyAI_ErrorStatusStopsPolling(t *testing.T) {
	stub := &assemblyStub{t: t, statuses: []string{"error"}, errorMsg: "audio too short"}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	a := newTestAssemblyAI(srv.URL)
	_, err := a.Transcribe(context.Background(), []byte("audio"), "audio/wav")

	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *provider.Error", err)
	}
	if perr.Detail != "audio too short" {
		t.Errorf("Detail = %q, want the provider's error detail", perr.Detail)
	}
	if stub.polls != 1 {
		t.Errorf("polls = %d, want 1 (no polling after a terminal error)", stub.polls)
	}
}

func TestAssemblyAI_MaxPollsCap(t *testing.T) {
	stub := &assemblyStub{t: t, statuses: []string{"queued", "processing", "processing"}}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	a := NewAssemblyAI(AssemblyAIConfig{
		APIKey:       "stub-key",
		BaseURL:      srv.URL,
		PollInterval: time.Millisecond,
		MaxPolls:     3,
	})

	_, err := a.Transcribe(context.Background(), []byte("audio"), "audio/wav")

	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *provider.Error after exhausting polls", err)
	}
	if stub.polls != 3 {
		t.Errorf("polls = %d, want exactly MaxPolls", stub.polls)
	}
}

func TestAssemblyAI_EmptyCompletedTextIsPlaceholder(t *testing.T) {
	stub := &assemblyStub{t: t, statuses: []string{"completed"}, finalTxt: ""}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	a := newTestAssemblyAI(srv.URL)
	text, err := a.Transcribe(context.Background(), []byte("audio"), "audio/wav")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if text != NoTranscript {
		t.Errorf("transcript = %q, want placeholder %q", text, NoTranscript)
	}
}

func TestAssemblyAI_UploadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream unavailable")
	}))
	defer srv.Close()

	a := newTestAssemblyAI(srv.URL)
	_, err := a.Transcribe(context.Background(), []byte("audio"), "audio/wav")

	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *provider.Error", err)
	}
	if perr.Status != http.StatusBadGateway {
		t.Errorf("Status = %d, want %d", perr.Status, http.StatusBadGateway)
	}
}

func TestAssemblyAI_ContextCancellation(t *testing.T) {
	stub := &assemblyStub{t: t, statuses: []string{"queued", "queued", "queued", "queued"}}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	a := NewAssemblyAI(AssemblyAIConfig{
		APIKey:       "stub-key",
		BaseURL:      srv.URL,
		PollInterval: time.Hour, // only cancellation can end the wait
		MaxPolls:     4,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := a.Transcribe(ctx, []byte("audio"), "audio/wav")
	if err == nil {
		t.Fatal("Transcribe() should fail when the context is cancelled mid-poll")
	}
}
