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

// AssemblyAIConfig holds configuration for the AssemblyAI backend.
type AssemblyAIConfig struct {
	APIKey       string
	BaseURL      string        // default: "https://api.assemblyai.com"
	PollInterval time.Duration // default: 3s
	MaxPolls     int           // default: 100
}

// AssemblyAI transcribes audio with AssemblyAI's asynchronous API: upload
// the bytes, create a transcription job, then poll the job until it reaches
// a terminal status. Polling is capped at MaxPolls attempts so a stuck job
// cannot block a request forever.
type AssemblyAI struct {
	cfg        AssemblyAIConfig
	httpClient *http.Client
}

// NewAssemblyAI creates an AssemblyAI provider with defaults applied.
func NewAssemblyAI(cfg AssemblyAIConfig) *AssemblyAI {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.assemblyai.com"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = 100
	}
	return &AssemblyAI{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

func (a *AssemblyAI) Name() string { return "assemblyai" }

type assemblyTranscript struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// Transcribe runs the full upload → job → poll sequence.
func (a *AssemblyAI) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	uploadURL, err := a.upload(ctx, audio)
	if err != nil {
		return "", err
	}

	jobID, err := a.createJob(ctx, uploadURL)
	if err != nil {
		return "", err
	}

	return a.poll(ctx, jobID)
}

// upload posts the raw bytes and returns the temporary audio reference URL.
func (a *AssemblyAI) upload(ctx context.Context, audio []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/v2/upload", bytes.NewReader(audio))
	if err != nil {
		return "", &Error{Provider: a.Name(), Err: fmt.Errorf("create upload request: %w", err)}
	}
	req.Header.Set("Authorization", a.cfg.APIKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var result struct {
		UploadURL string `json:"upload_url"`
	}
	if err := a.do(req, &result); err != nil {
		return "", err
	}
	if result.UploadURL == "" {
		return "", &Error{Provider: a.Name(), Detail: "upload response missing upload_url"}
	}
	return result.UploadURL, nil
}

// createJob requests a transcription of the uploaded audio and returns the
// job identifier.
func (a *AssemblyAI) createJob(ctx context.Context, audioURL string) (string, error) {
	payload, err := json.Marshal(map[string]string{"audio_url": audioURL})
	if err != nil {
		return "", &Error{Provider: a.Name(), Err: fmt.Errorf("marshal job request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/v2/transcript", bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Provider: a.Name(), Err: fmt.Errorf("create job request: %w", err)}
	}
	req.Header.Set("Authorization", a.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	var result assemblyTranscript
	if err := a.do(req, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", &Error{Provider: a.Name(), Detail: "job response missing id"}
	}
	return result.ID, nil
}

// poll checks the job status at a fixed interval until it is terminal.
func (a *AssemblyAI) poll(ctx context.Context, jobID string) (string, error) {
	for attempt := 0; attempt < a.cfg.MaxPolls; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(a.cfg.PollInterval):
			case <-ctx.Done():
				return "", &Error{Provider: a.Name(), Err: ctx.Err()}
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+"/v2/transcript/"+jobID, nil)
		if err != nil {
			return "", &Error{Provider: a.Name(), Err: fmt.Errorf("create poll request: %w", err)}
		}
		req.Header.Set("Authorization", a.cfg.APIKey)

		var result assemblyTranscript
		if err := a.do(req, &result); err != nil {
			return "", err
		}

		switch result.Status {
		case "completed":
			if strings.TrimSpace(result.Text) == "" {
				return NoTranscript, nil
			}
			return result.Text, nil
		case "error":
			return "", &Error{Provider: a.Name(), Detail: result.Error}
		}
		// queued / processing: keep polling
	}

	return "", &Error{
		Provider: a.Name(),
		Detail:   fmt.Sprintf("job %s not terminal after %d polls", jobID, a.cfg.MaxPolls),
	}
}

// do executes a request and decodes a JSON body into out, mapping transport
// and non-2xx failures to *Error.
func (a *AssemblyAI) do(req *http.Request, out any) error {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return &Error{Provider: a.Name(), Err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Provider: a.Name(), Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Provider: a.Name(), Status: resp.StatusCode, Detail: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Provider: a.Name(), Err: fmt.Errorf("parse response: %w", err)}
	}
	return nil
}
