package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Provider ProviderConfig
	Store    StoreConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type ProviderConfig struct {
	Backend string // "deepgram", "assemblyai" or "whisper"

	DeepgramAPIKey  string
	DeepgramBaseURL string

	AssemblyAIAPIKey       string
	AssemblyAIBaseURL      string
	AssemblyAIPollInterval time.Duration
	AssemblyAIMaxPolls     int

	OpenAIAPIKey string
	WhisperModel string
}

type StoreConfig struct {
	Backend string // "supabase" or "postgres"

	SupabaseURL        string
	SupabaseServiceKey string

	DatabaseURL    string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 5000)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	pollMs, err := getEnvInt("ASSEMBLYAI_POLL_INTERVAL_MS", 3000)
	if err != nil {
		return nil, fmt.Errorf("invalid ASSEMBLYAI_POLL_INTERVAL_MS: %w", err)
	}

	maxPolls, err := getEnvInt("ASSEMBLYAI_MAX_POLLS", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid ASSEMBLYAI_MAX_POLLS: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Provider: ProviderConfig{
			Backend:                getEnv("STT_PROVIDER", "deepgram"),
			DeepgramAPIKey:         getEnv("DEEPGRAM_API_KEY", ""),
			DeepgramBaseURL:        getEnv("DEEPGRAM_BASE_URL", ""),
			AssemblyAIAPIKey:       getEnv("ASSEMBLYAI_API_KEY", ""),
			AssemblyAIBaseURL:      getEnv("ASSEMBLYAI_BASE_URL", ""),
			AssemblyAIPollInterval: time.Duration(pollMs) * time.Millisecond,
			AssemblyAIMaxPolls:     maxPolls,
			OpenAIAPIKey:           getEnv("OPENAI_API_KEY", ""),
			WhisperModel:           getEnv("WHISPER_MODEL", ""),
		},
		Store: StoreConfig{
			Backend:            getEnv("STORE_BACKEND", "supabase"),
			SupabaseURL:        getEnv("SUPABASE_URL", ""),
			SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
			DatabaseURL:        getEnv("DATABASE_URL", ""),
			MaxConns:           maxConns,
			MinConns:           minConns,
			MigrationsPath:     getEnv("MIGRATIONS_PATH", "migrations"),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate fails fast on missing credentials for the selected backends so a
// misconfigured deployment dies at startup instead of on the first request.
func (c *Config) Validate() error {
	var missing []string

	switch strings.ToLower(c.Provider.Backend) {
	case "", "deepgram":
		if c.Provider.DeepgramAPIKey == "" {
			missing = append(missing, "DEEPGRAM_API_KEY")
		}
	case "assemblyai":
		if c.Provider.AssemblyAIAPIKey == "" {
			missing = append(missing, "ASSEMBLYAI_API_KEY")
		}
	case "whisper":
		if c.Provider.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unsupported STT_PROVIDER: %s", c.Provider.Backend)
	}

	switch strings.ToLower(c.Store.Backend) {
	case "", "supabase":
		if c.Store.SupabaseURL == "" {
			missing = append(missing, "SUPABASE_URL")
		}
		if c.Store.SupabaseServiceKey == "" {
			missing = append(missing, "SUPABASE_SERVICE_ROLE_KEY")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	default:
		return fmt.Errorf("unsupported STORE_BACKEND: %s", c.Store.Backend)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
