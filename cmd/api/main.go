package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/voicescribe/voicescribe/internal/api"
	"github.com/voicescribe/voicescribe/internal/config"
	"github.com/voicescribe/voicescribe/internal/database"
	"github.com/voicescribe/voicescribe/internal/provider"
	"github.com/voicescribe/voicescribe/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	st, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	p, err := provider.New(provider.Config{
		Backend:                cfg.Provider.Backend,
		DeepgramAPIKey:         cfg.Provider.DeepgramAPIKey,
		DeepgramBaseURL:        cfg.Provider.DeepgramBaseURL,
		AssemblyAIAPIKey:       cfg.Provider.AssemblyAIAPIKey,
		AssemblyAIBaseURL:      cfg.Provider.AssemblyAIBaseURL,
		AssemblyAIPollInterval: cfg.Provider.AssemblyAIPollInterval,
		AssemblyAIMaxPolls:     cfg.Provider.AssemblyAIMaxPolls,
		OpenAIAPIKey:           cfg.Provider.OpenAIAPIKey,
		WhisperModel:           cfg.Provider.WhisperModel,
	})
	if err != nil {
		slog.Error("failed to initialize provider", "error", err)
		os.Exit(1)
	}
	slog.Info("using transcription provider", "provider", p.Name())

	router := api.NewRouter(p, st, cfg)
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second, // poll-based providers can take minutes
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if strings.ToLower(cfg.Store.Backend) == "postgres" {
		pool, err := database.NewPool(ctx, cfg.Store)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunMigrations(ctx, pool, cfg.Store.MigrationsPath); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store.NewPostgres(pool), pool.Close, nil
	}
	return store.NewSupabase(cfg.Store.SupabaseURL, cfg.Store.SupabaseServiceKey), func() {}, nil
}
