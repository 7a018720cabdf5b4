package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/voicescribe/voicescribe/internal/transcript"
)

// requestTimeout bounds every call to the backend. Submissions that exceed
// it fail with a generic error; there is no automatic retry.
const requestTimeout = 30 * time.Second

// Client talks to the transcription API the way the web surfaces do: one
// multipart POST per submission, one GET for history.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Transcribe submits one audio payload under the multipart field "audio"
// and returns the normalized result.
func (c *Client) Transcribe(ctx context.Context, filename, mimeType string, audio io.Reader) (*transcript.Result, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	// CreateFormFile would tag the part application/octet-stream; the server
	// needs the payload's real MIME type on the part header.
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, filename))
	h.Set("Content-Type", mimeType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create form part: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/audio/transcribe", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to transcribe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp, "failed to transcribe")
	}

	var result transcript.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &result, nil
}

// History fetches every stored transcript, newest first as delivered by the
// server; the client does not re-sort.
func (c *Client) History(ctx context.Context) ([]transcript.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/history", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp, "failed to load history")
	}

	var entries []transcript.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return entries, nil
}

// ExportFilename derives the plain-text export name from the original
// audio filename by replacing its extension.
func ExportFilename(original string) string {
	base := filepath.Base(original)
	if base == "" || base == "." {
		base = "transcript"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".txt"
}

func apiError(resp *http.Response, msg string) error {
	var payload struct {
		Error string `json:"error"`
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return fmt.Errorf("%s: %s (status %d)", msg, payload.Error, resp.StatusCode)
	}
	return fmt.Errorf("%s: status %d", msg, resp.StatusCode)
}
