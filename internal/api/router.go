package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/voicescribe/voicescribe/internal/api/handlers"
	"github.com/voicescribe/voicescribe/internal/api/middleware"
	"github.com/voicescribe/voicescribe/internal/config"
	"github.com/voicescribe/voicescribe/internal/provider"
	"github.com/voicescribe/voicescribe/internal/store"
	"github.com/voicescribe/voicescribe/internal/transcript"
)

type Router struct {
	mux      *chi.Mux
	cfg      *config.Config
	provider provider.Provider
	store    store.Store
}

// NewRouter wires the router with its dependencies injected; tests pass
// stub providers and stores here.
func NewRouter(p provider.Provider, st store.Store, cfg *config.Config) *Router {
	return &Router{
		mux:      chi.NewRouter(),
		cfg:      cfg,
		provider: p,
		store:    st,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	// Health endpoints
	health := handlers.NewHealthHandler(rt.store)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	svc := transcript.NewService(rt.provider, rt.store, slog.Default())

	r.Route("/api", func(r chi.Router) {
		transcribeH := handlers.NewTranscribeHandler(svc)
		r.Post("/audio/transcribe", transcribeH.Transcribe)

		historyH := handlers.NewHistoryHandler(svc)
		r.Get("/history", historyH.List)
	})

	return r
}
