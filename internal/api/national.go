package api

import (
	"net/http"

	"github.com/openclimatefix/nowcasting-api/internal/models"
	"github.com/openclimatefix/nowcasting-api/internal/responder"
)

// NationalHandler serves the GB-wide forecast and PV-Live routes. National
// values are stored against the aggregate GSP (id 0).
type NationalHandler struct {
	*responder.Responder
	store Reader
}

// NewNationalHandler wires the national route group.
func NewNationalHandler(r *responder.Responder, s Reader) *NationalHandler {
	return &NationalHandler{Responder: r, store: s}
}

// Routes returns the national sub-router, mounted under
// {solar base}/national.
func (h *NationalHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /forecast", h.GetForecast)
	mux.HandleFunc("GET /pvlive", h.GetYields)
	return mux
}

// GetForecast returns the national solar forecast. With
// only_forecast_values the response is the simplified value list;
// forecast_horizon_minutes then restricts each target time to the latest
// forecast made at least that many minutes beforehand.
func (h *NationalHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	historic, err := queryBool(r, "historic")
	if err != nil {
		h.HandleBadRequestError(w, r, err)
		return
	}
	onlyValues, err := queryBool(r, "only_forecast_values")
	if err != nil {
		h.HandleBadRequestError(w, r, err)
		return
	}
	horizon, err := queryInt(r, "forecast_horizon_minutes")
	if err != nil {
		h.HandleBadRequestError(w, r, err)
		return
	}

	h.Logger().InfoContext(r.Context(), "Get national forecast", "historic", historic, "onlyForecastValues", onlyValues)

	if !onlyValues {
		forecast, err := h.store.GetForecast(r.Context(), models.NationalGSPID, historic)
		if err != nil {
			h.HandleErrors(w, r, err, "failed to load national forecast")
			return
		}
		forecast.Normalize()
		h.RespondWithJSON(w, r, http.StatusOK, forecast)
		return
	}

	values, err := h.store.LatestForecastValues(r.Context(), models.NationalGSPID, horizon)
	if err != nil {
		h.HandleErrors(w, r, err, "failed to load national forecast values")
		return
	}
	h.RespondWithJSON(w, r, http.StatusOK, values)
}

// GetYields returns the national PV-Live readings, optionally filtered by
// regime.
func (h *NationalHandler) GetYields(w http.ResponseWriter, r *http.Request) {
	regime := r.URL.Query().Get("regime")

	h.Logger().InfoContext(r.Context(), "Get national PV Live estimates", "regime", regime)

	yields, err := h.store.GetYields(r.Context(), models.NationalGSPID, regime)
	if err != nil {
		h.HandleErrors(w, r, err, "failed to load national pvlive values")
		return
	}
	h.RespondWithJSON(w, r, http.StatusOK, yields)
}
