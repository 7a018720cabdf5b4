package provider

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

// DeepgramConfig holds configuration for the Deepgram backend.
type DeepgramConfig struct {
	APIKey  string
	BaseURL string // default: "https://api.deepgram.com"
}

// Deepgram transcribes audio with Deepgram's pre-recorded API: a single
// synchronous POST carrying the raw audio bytes.
type Deepgram struct {
	cfg        DeepgramConfig
	httpClient *http.Client
}

// NewDeepgram creates a Deepgram provider with defaults applied.
func NewDeepgram(cfg DeepgramConfig) *Deepgram {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepgram.com"
	}
	return &Deepgram{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

func (d *Deepgram) Name() string { return "deepgram" }

type deepgramResponse struct {
	Results *struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Transcribe sends the audio bytes to /v1/listen and extracts the first
// channel's first alternative. A response with no alternatives is a valid
// empty transcript, not a failure.
func (d *Deepgram) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.BaseURL+"/v1/listen", bytes.NewReader(audio))
	if err != nil {
		return "", &Error{Provider: d.Name(), Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", "Token "+d.cfg.APIKey)
	req.Header.Set("Content-Type", mimeType)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", &Error{Provider: d.Name(), Err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Provider: d.Name(), Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &Error{Provider: d.Name(), Status: resp.StatusCode, Detail: string(body)}
	}

	var result deepgramResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", &Error{Provider: d.Name(), Err: fmt.Errorf("parse response: %w", err)}
	}
	if result.Error != nil {
		return "", &Error{Provider: d.Name(), Status: resp.StatusCode, Detail: result.Error.Message}
	}

	if result.Results == nil || len(result.Results.Channels) == 0 ||
		len(result.Results.Channels[0].Alternatives) == 0 {
		return NoTranscript, nil
	}

	transcript := result.Results.Channels[0].Alternatives[0].Transcript
	if strings.TrimSpace(transcript) == "" {
		return NoTranscript, nil
	}
	return transcript, nil
}
