package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/voicescribe/voicescribe/internal/provider"
	"github.com/voicescribe/voicescribe/internal/transcript"
)

// AudioFieldName is the multipart form field the client must use. The exact
// name is part of the HTTP contract.
const AudioFieldName = "audio"

const maxUploadBytes = 32 << 20 // 32MB

type TranscribeHandler struct {
	svc *transcript.Service
}

func NewTranscribeHandler(svc *transcript.Service) *TranscribeHandler {
	return &TranscribeHandler{svc: svc}
}

// Transcribe runs the submission lifecycle: validate the multipart payload,
// transcribe, persist best-effort, respond. Validation failures return 400
// before any provider or store call is made.
func (h *TranscribeHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": `expected multipart form with field "` + AudioFieldName + `"`})
		return
	}

	file, header, err := r.FormFile(AudioFieldName)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": `audio file field "` + AudioFieldName + `" is required`})
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read audio payload"})
		return
	}
	if len(audio) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "audio payload is empty"})
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "audio payload is missing a content type"})
		return
	}

	result, err := h.svc.Transcribe(r.Context(), transcript.Submission{
		Audio:    audio,
		MimeType: mimeType,
		Filename: header.Filename,
	})
	if err != nil {
		slog.Error("transcription failed", "filename", header.Filename, "error", err)

		var perr *provider.Error
		if errors.As(err, &perr) {
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error":  "transcription failed",
				"detail": perr.Detail,
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "transcription failed"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}
