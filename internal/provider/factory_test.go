package provider

import (
	"strings"
	"testing"
)

func TestNew_SelectsBackend(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantErr  string
	}{
		{
			name:     "default is deepgram",
			cfg:      Config{DeepgramAPIKey: "k"},
			wantName: "deepgram",
		},
		{
			name:     "assemblyai",
			cfg:      Config{Backend: "assemblyai", AssemblyAIAPIKey: "k"},
			wantName: "assemblyai",
		},
		{
			name:     "whisper",
			cfg:      Config{Backend: "whisper", OpenAIAPIKey: "k"},
			wantName: "whisper",
		},
		{
			name:    "deepgram without key",
			cfg:     Config{Backend: "deepgram"},
			wantErr: "DEEPGRAM_API_KEY",
		},
		{
			name:    "assemblyai without key",
			cfg:     Config{Backend: "assemblyai"},
			wantErr: "ASSEMBLYAI_API_KEY",
		},
		{
			name:    "unknown backend",
			cfg:     Config{Backend: "siri"},
			wantErr: "unsupported provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.cfg)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("New() error = %v, want mention of %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}
