package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const supabaseTable = "transcripts"

// Supabase persists transcript records through Supabase's PostgREST
// endpoint, authenticated with the server-held service-role key.
type Supabase struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewSupabase creates a store client for the given Supabase project URL.
func NewSupabase(supabaseURL, serviceKey string) *Supabase {
	return &Supabase{
		baseURL:    strings.TrimRight(supabaseURL, "/") + "/rest/v1",
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *Supabase) auth(req *http.Request) {
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
}

// Insert writes one row and returns it as stored, including the
// server-assigned id and created_at.
func (s *Supabase) Insert(ctx context.Context, text, filename string) (*Record, error) {
	payload, err := json.Marshal([]map[string]string{{
		"text":     text,
		"filename": filename,
	}})
	if err != nil {
		return nil, &Error{Backend: "supabase", Op: "insert", Err: fmt.Errorf("marshal row: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/"+supabaseTable, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Backend: "supabase", Op: "insert", Err: fmt.Errorf("create request: %w", err)}
	}
	s.auth(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	var rows []Record
	if err := s.do(req, "insert", &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &Error{Backend: "supabase", Op: "insert", Detail: "insert returned no representation"}
	}
	return &rows[0], nil
}

// ListAll returns every stored row ordered by created_at descending.
func (s *Supabase) ListAll(ctx context.Context) ([]Record, error) {
	url := s.baseURL + "/" + supabaseTable + "?select=*&order=created_at.desc"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Backend: "supabase", Op: "list", Err: fmt.Errorf("create request: %w", err)}
	}
	s.auth(req)

	var rows []Record
	if err := s.do(req, "list", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Ping issues a minimal select to verify the table is reachable.
func (s *Supabase) Ping(ctx context.Context) error {
	url := s.baseURL + "/" + supabaseTable + "?select=id&limit=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &Error{Backend: "supabase", Op: "ping", Err: fmt.Errorf("create request: %w", err)}
	}
	s.auth(req)

	var rows []Record
	return s.do(req, "ping", &rows)
}

func (s *Supabase) do(req *http.Request, op string, out *[]Record) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &Error{Backend: "supabase", Op: op, Err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Backend: "supabase", Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= 400 {
		return &Error{Backend: "supabase", Op: op, Status: resp.StatusCode, Detail: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Backend: "supabase", Op: op, Err: fmt.Errorf("parse response: %w", err)}
	}
	return nil
}
