package handlers

import (
	"log/slog"
	"net/http"

	"github.com/voicescribe/voicescribe/internal/transcript"
)

type HistoryHandler struct {
	svc *transcript.Service
}

func NewHistoryHandler(svc *transcript.Service) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// List returns every stored transcript newest first. A store failure is a
// hard 500: unlike persistence during submission, there is no fallback data
// to serve.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.History(r.Context())
	if err != nil {
		slog.Error("failed to load history", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load history"})
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
