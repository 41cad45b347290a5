package api

import (
	"net/http"

	"github.com/openclimatefix/nowcasting-api/internal/responder"
)

// StatusHandler serves the service status route mounted directly under the
// solar base prefix.
type StatusHandler struct {
	*responder.Responder
	store Reader
}

// NewStatusHandler wires the status route group.
func NewStatusHandler(r *responder.Responder, s Reader) *StatusHandler {
	return &StatusHandler{Responder: r, store: s}
}

// Routes returns the status sub-router, mounted under the solar base.
func (h *StatusHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", h.GetStatus)
	return mux
}

// GetStatus returns the latest recorded service status.
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.Logger().InfoContext(r.Context(), "Get service status")

	status, err := h.store.LatestStatus(r.Context())
	if err != nil {
		h.HandleErrors(w, r, err, "failed to load service status")
		return
	}
	h.RespondWithJSON(w, r, http.StatusOK, status)
}
