package provider

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Whisper transcribes audio with OpenAI's Whisper API through the go-openai
// client.
type Whisper struct {
	client *openai.Client
	model  string
}

// NewWhisper creates a Whisper provider. An empty model defaults to
// whisper-1.
func NewWhisper(apiKey, model string) *Whisper {
	if model == "" {
		model = openai.Whisper1
	}
	return &Whisper{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (w *Whisper) Name() string { return "whisper" }

// Transcribe sends the audio bytes to the Whisper API. The API infers the
// container format from the file name, so one is derived from the MIME type.
func (w *Whisper) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	req := openai.AudioRequest{
		Model:    w.model,
		Reader:   bytes.NewReader(audio),
		FilePath: fileNameForMIME(mimeType),
	}

	resp, err := w.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", &Error{Provider: w.Name(), Err: fmt.Errorf("create transcription: %w", err)}
	}

	if strings.TrimSpace(resp.Text) == "" {
		return NoTranscript, nil
	}
	return resp.Text, nil
}

func fileNameForMIME(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "webm"):
		return "audio.webm"
	case strings.Contains(mimeType, "mpeg"), strings.Contains(mimeType, "mp3"):
		return "audio.mp3"
	case strings.Contains(mimeType, "ogg"):
		return "audio.ogg"
	case strings.Contains(mimeType, "mp4"), strings.Contains(mimeType, "m4a"):
		return "audio.m4a"
	case strings.Contains(mimeType, "flac"):
		return "audio.flac"
	default:
		return "audio.wav"
	}
}
