package api

import (
	"net/http"

	"github.com/openclimatefix/nowcasting-api/internal/responder"
)

// GSPHandler serves the per-GSP forecast and PV-Live routes.
type GSPHandler struct {
	*responder.Responder
	store Reader
}

// NewGSPHandler wires the gsp route group.
func NewGSPHandler(r *responder.Responder, s Reader) *GSPHandler {
	return &GSPHandler{Responder: r, store: s}
}

// Routes returns the gsp sub-router, mounted under {solar base}/gsp.
func (h *GSPHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /forecast/all", h.GetAllForecasts)
	mux.HandleFunc("GET /forecast/all/{$}", h.GetAllForecasts)
	mux.HandleFunc("GET /forecast/{gsp_id}", h.GetForecast)
	mux.HandleFunc("GET /pvlive/all", h.GetAllYields)
	mux.HandleFunc("GET /pvlive/{gsp_id}", h.GetYields)
	return mux
}

// GetAllForecasts returns the latest forecast for every GSP, normalized by
// installed capacity. The historic flag additionally returns yesterday's
// forecast values.
func (h *GSPHandler) GetAllForecasts(w http.ResponseWriter, r *http.Request) {
	historic, err := queryBool(r, "historic")
	if err != nil {
		h.HandleBadRequestError(w, r, err)
		return
	}

	h.Logger().InfoContext(r.Context(), "Get forecasts for all gsps", "historic", historic)

	forecasts, err := h.store.ListForecasts(r.Context(), historic)
	if err != nil {
		h.HandleErrors(w, r, err, "failed to load forecasts")
		return
	}

	forecasts.Normalize()
	h.RespondWithJSON(w, r, http.StatusOK, forecasts)
}

// GetForecast returns the forecast for one GSP. With only_forecast_values
// the response is the simplified value list; forecast_horizon_minutes then
// restricts each target time to the latest forecast made at least that many
// minutes beforehand.
func (h *GSPHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	gspID, err := pathGSPID(r)
	if err != nil {
		h.HandleBadRequestError(w, r, err)
		return
	}
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

	logger := h.Logger().With("gspId", gspID)
	logger.InfoContext(r.Context(), "Get forecast for gsp", "historic", historic, "onlyForecastValues", onlyValues)

	if !onlyValues {
		forecast, err := h.store.GetForecast(r.Context(), gspID, historic)
		if err != nil {
			h.HandleErrors(w, r, err, "failed to load forecast")
			return
		}
		forecast.Normalize()
		h.RespondWithJSON(w, r, http.StatusOK, forecast)
		return
	}

	values, err := h.store.LatestForecastValues(r.Context(), gspID, horizon)
	if err != nil {
		h.HandleErrors(w, r, err, "failed to load forecast values")
		return
	}
	h.RespondWithJSON(w, r, http.StatusOK, values)
}

// GetAllYields returns PV-Live readings for every GSP, optionally filtered
// by regime (in-day or day-after).
func (h *GSPHandler) GetAllYields(w http.ResponseWriter, r *http.Request) {
	regime := r.URL.Query().Get("regime")

	h.Logger().InfoContext(r.Context(), "Get PV Live estimates for all gsps", "regime", regime)

	locations, err := h.store.ListYields(r.Context(), regime)
	if err != nil {
		h.HandleErrors(w, r, err, "failed to load pvlive values")
		return
	}
	h.RespondWithJSON(w, r, http.StatusOK, locations)
}

// GetYields returns PV-Live readings for one GSP, optionally filtered by
// regime.
func (h *GSPHandler) GetYields(w http.ResponseWriter, r *http.Request) {
	gspID, err := pathGSPID(r)
	if err != nil {
		h.HandleBadRequestError(w, r, err)
		return
	}
	regime := r.URL.Query().Get("regime")

	h.Logger().InfoContext(r.Context(), "Get PV Live estimates for gsp", "gspId", gspID, "regime", regime)

	yields, err := h.store.GetYields(r.Context(), gspID, regime)
	if err != nil {
		h.HandleErrors(w, r, err, "failed to load pvlive values")
		return
	}
	h.RespondWithJSON(w, r, http.StatusOK, yields)
}
