package api

import (
	"net/http"

	"github.com/openclimatefix/nowcasting-api/internal/responder"
)

// SystemHandler serves GSP system details: names, groups, regions, and
// installed PV capacity.
type SystemHandler struct {
	*responder.Responder
	store Reader
}

// NewSystemHandler wires the system route group.
func NewSystemHandler(r *responder.Responder, s Reader) *SystemHandler {
	return &SystemHandler{Responder: r, store: s}
}

// Routes returns the system sub-router, mounted under {system base}/gsp.
func (h *SystemHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.GetAllSystemDetails)
	mux.HandleFunc("GET /{gsp_id}", h.GetSystemDetails)
	return mux
}

// GetAllSystemDetails returns system details for every GSP.
func (h *SystemHandler) GetAllSystemDetails(w http.ResponseWriter, r *http.Request) {
	h.Logger().InfoContext(r.Context(), "Get system details for all gsps")

	locations, err := h.store.ListLocations(r.Context())
	if err != nil {
		h.HandleErrors(w, r, err, "failed to load gsp system details")
		return
	}
	h.RespondWithJSON(w, r, http.StatusOK, locations)
}

// GetSystemDetails returns system details for one GSP.
func (h *SystemHandler) GetSystemDetails(w http.ResponseWriter, r *http.Request) {
	gspID, err := pathGSPID(r)
	if err != nil {
		h.HandleBadRequestError(w, r, err)
		return
	}

	h.Logger().InfoContext(r.Context(), "Get system details for gsp", "gspId", gspID)

	location, err := h.store.GetLocation(r.Context(), gspID)
	if err != nil {
		h.HandleErrors(w, r, err, "failed to load gsp system details")
		return
	}
	h.RespondWithJSON(w, r, http.StatusOK, location)
}
