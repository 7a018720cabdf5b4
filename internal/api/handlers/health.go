package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/voicescribe/voicescribe/internal/store"
)

type HealthHandler struct {
	store store.Store
}

func NewHealthHandler(st store.Store) *HealthHandler {
	return &HealthHandler{store: st}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}

	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			checks["store"] = "unhealthy: " + err.Error()
		} else {
			checks["store"] = "ok"
		}
	}

	status := http.StatusOK
	for _, v := range checks {
		if v != "ok" {
			status = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, status, map[string]interface{}{"status": statusStr(status), "checks": checks})
}

func statusStr(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "unhealthy"
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
