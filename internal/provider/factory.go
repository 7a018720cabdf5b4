package provider

import (
	"fmt"
	"strings"
	"time"
)

// Config selects and configures a provider backend.
type Config struct {
	Backend string // "deepgram" (default), "assemblyai" or "whisper"

	DeepgramAPIKey  string
	DeepgramBaseURL string

	AssemblyAIAPIKey       string
	AssemblyAIBaseURL      string
	AssemblyAIPollInterval time.Duration
	AssemblyAIMaxPolls     int

	OpenAIAPIKey string
	WhisperModel string
}

// New creates the configured provider. A missing credential for the
// selected backend is an error here so it surfaces at startup instead of on
// the first transcription request.
func New(cfg Config) (Provider, error) {
	backend := strings.ToLower(cfg.Backend)
	if backend == "" {
		backend = "deepgram"
	}

	switch backend {
	case "deepgram":
		if cfg.DeepgramAPIKey == "" {
			return nil, fmt.Errorf("deepgram provider selected but DEEPGRAM_API_KEY is not set")
		}
		return NewDeepgram(DeepgramConfig{
			APIKey:  cfg.DeepgramAPIKey,
			BaseURL: cfg.DeepgramBaseURL,
		}), nil
	case "assemblyai":
		if cfg.AssemblyAIAPIKey == "" {
			return nil, fmt.Errorf("assemblyai provider selected but ASSEMBLYAI_API_KEY is not set")
		}
		return NewAssemblyAI(AssemblyAIConfig{
			APIKey:       cfg.AssemblyAIAPIKey,
			BaseURL:      cfg.AssemblyAIBaseURL,
			PollInterval: cfg.AssemblyAIPollInterval,
			MaxPolls:     cfg.AssemblyAIMaxPolls,
		}), nil
	case "whisper":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("whisper provider selected but OPENAI_API_KEY is not set")
		}
		return NewWhisper(cfg.OpenAIAPIKey, cfg.WhisperModel), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q (supported: deepgram, assemblyai, whisper)", cfg.Backend)
	}
}
