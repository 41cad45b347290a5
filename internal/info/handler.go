// Package info exposes the API's descriptive metadata: the root information
// endpoint, favicon, health probes, and the themed ReDoc documentation page.
package info

import (
	"net/http"
	"os"
	"time"

	"github.com/openclimatefix/nowcasting-api/internal/probe"
	"github.com/openclimatefix/nowcasting-api/internal/responder"
)

// Service metadata returned by the root endpoint and embedded in the
// OpenAPI document.
const (
	Title            = "Nowcasting API"
	Version          = "0.2.27"
	DocumentationURL = "https://api.nowcasting.io/docs"
)

// Description is the long-form markdown shown on the documentation page.
const Description = `
As part of Open Climate Fix's [open source project](https://github.com/openclimatefix), the
Nowcasting API is still under development.

#### General Overview

__Nowcasting__ essentially means __forecasting for the next few hours__.
OCF has built a predictive model that nowcasts solar energy generation for
the UK's National Grid ESO (electricity system operator). National Grid runs more than
300
[GSPs](https://data.nationalgrideso.com/system/gis-boundaries-for-gb-grid-supply-points)
(grid supply points), which are regionally located throughout the country.
OCF's Nowcasting App synthesizes real-time PV
data, numeric weather predictions (nwp), satellite imagery
(looking at cloud cover),
as well as GSP data to
forecast how much solar energy will generated for a given GSP.

Here are key aspects of the solar forecasts:
- Forecasts are produced in 30-minute time steps, projecting GSP yields out to
eight hours ahead.
- The geographic extent is all of Great Britain (GB).
- Forecasts are produced at the GB National and regional level (using GSPs).

OCF's incredibly accurate, short-term forecasts allow National Grid to reduce the amount of
spinning reserves they need to run at any given moment, ultimately reducing
carbon emmisions.

In order to get started with reading the API's forecast objects, it might be helpful to
know that GSPs are referenced in the following ways:  gspId (ex. 122); gspName
(ex. FIDF_1); gspGroup (ex. )
regionName (ex. Fiddlers Ferry). The API provides information on when input data was
last updated as well as the installed photovoltaic (PV) megawatt capacity
(installedCapacityMw) of each individual GSP.

You'll find more detailed information for each route in the documentation below.

If you have any questions, please don't hesitate to get in touch.
And if you're interested in contributing to our open source project, feel free to join us!
`

const defaultProbeTimeout = 2 * time.Second

// ProbeFunc is executed to determine the outcome of liveness or readiness
// probes. Returning a non-nil error marks the probe as failed.
type ProbeFunc = probe.Func

// Option follows the functional options pattern used by NewHandler.
type Option func(*Handler)

// Handler serves the root information endpoint along with favicon, probe,
// and documentation routes.
type Handler struct {
	*responder.Responder
	faviconPath     string
	redocConfig     RedocConfig
	probeTimeout    time.Duration
	livenessChecks  []ProbeFunc
	readinessChecks []ProbeFunc
}

// NewHandler constructs a Handler with sensible defaults.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		Responder:    responder.New(),
		faviconPath:  "assets/favicon.ico",
		redocConfig:  DefaultRedocConfig(),
		probeTimeout: defaultProbeTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// WithResponder replaces the responder used to craft JSON responses.
func WithResponder(r *responder.Responder) Option {
	return func(h *Handler) {
		if r != nil {
			h.Responder = r
		}
	}
}

// WithFaviconPath sets the filesystem path of the favicon asset.
func WithFaviconPath(path string) Option {
	return func(h *Handler) {
		if path != "" {
			h.faviconPath = path
		}
	}
}

// WithRedocConfig overrides the documentation page configuration.
func WithRedocConfig(cfg RedocConfig) Option {
	return func(h *Handler) {
		h.redocConfig = cfg
	}
}

// WithProbeTimeout adjusts the maximum duration allowed for probe checks.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(h *Handler) {
		if timeout > 0 {
			h.probeTimeout = timeout
		}
	}
}

// WithLivenessChecks replaces the liveness checks with the supplied
// functions.
func WithLivenessChecks(checks ...ProbeFunc) Option {
	return func(h *Handler) {
		h.livenessChecks = filterProbes(checks)
	}
}

// WithReadinessChecks replaces the readiness checks with the supplied
// functions.
func WithReadinessChecks(checks ...ProbeFunc) Option {
	return func(h *Handler) {
		h.readinessChecks = filterProbes(checks)
	}
}

// apiInformation is the payload served by the root endpoint.
type apiInformation struct {
	Title         string `json:"title"`
	Version       string `json:"version"`
	Description   string `json:"description"`
	Documentation string `json:"documentation"`
}

// GetAPIInformation returns basic information about the Nowcasting API.
func (h *Handler) GetAPIInformation(w http.ResponseWriter, r *http.Request) {
	h.Logger().InfoContext(r.Context(), "Route / has been called")

	h.RespondWithJSON(w, r, http.StatusOK, apiInformation{
		Title:         Title,
		Version:       Version,
		Description:   Description,
		Documentation: DocumentationURL,
	})
}

// GetFavicon serves the favicon asset, or 404 when it is absent.
func (h *Handler) GetFavicon(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(h.faviconPath); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, h.faviconPath)
}

// GetDocs renders the themed ReDoc documentation page.
func (h *Handler) GetDocs(w http.ResponseWriter, r *http.Request) {
	html, err := RenderRedocHTML(h.redocConfig)
	if err != nil {
		h.HandleInternalServerError(w, r, err, "failed to render documentation page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(html); err != nil {
		h.Logger().Error("failed to write documentation page", "error", err)
	}
}
