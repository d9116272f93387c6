package harvester

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the status board over HTTP using go-chi.
type Handler struct {
	board *StatusBoard
	log   *slog.Logger
}

// NewHandler returns a Handler reading from board.
func NewHandler(board *StatusBoard, log *slog.Logger) *Handler {
	return &Handler{board: board, log: log}
}

// Routes registers the status endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.Healthz)
	r.Get("/status", h.GetStatus)
	r.Get("/sources/{label}", h.GetSource)
}

// GetStatus handles GET /status.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.board.Snapshot())
}

// GetSource handles GET /sources/{label}.
func (h *Handler) GetSource(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")
	if label == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	st, ok := h.board.Source(label)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, st)
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("write status response failed", slog.String("error", err.Error()))
	}
}
