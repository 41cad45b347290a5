// Package openapi builds the API's OpenAPI document from the route table
// metadata, injecting contact, license, and logo details. The document is
// built once per Document instance and reused for the process lifetime.
package openapi

import (
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/openclimatefix/nowcasting-api/internal/api"
	"github.com/openclimatefix/nowcasting-api/internal/info"
	"github.com/openclimatefix/nowcasting-api/internal/jsonutil"
)

// Config carries the metadata injected into the generated document.
type Config struct {
	Title        string
	Version      string
	Description  string
	ContactName  string
	ContactURL   string
	ContactEmail string
	LicenseName  string
	LicenseURL   string
	LogoURL      string
}

// DefaultConfig returns the Nowcasting API document metadata.
func DefaultConfig() Config {
	return Config{
		Title:        info.Title,
		Version:      info.Version,
		Description:  info.Description,
		ContactName:  "Open Climate Fix",
		ContactURL:   "https://openclimatefix.org",
		ContactEmail: "info@openclimatefix.org",
		LicenseName:  "MIT License",
		LicenseURL:   "https://github.com/openclimatefix/nowcasting_api/blob/main/LICENSE",
		LogoURL:      "https://www.nowcasting.io/nowcasting.svg",
	}
}

// Document lazily builds and caches the OpenAPI specification. The zero
// Config is replaced by DefaultConfig values in NewDocument.
type Document struct {
	cfg  Config
	once sync.Once
	spec *openapi3.T
}

// NewDocument creates a Document for the given metadata.
func NewDocument(cfg Config) *Document {
	if cfg.Title == "" {
		cfg = DefaultConfig()
	}
	return &Document{cfg: cfg}
}

// Spec returns the OpenAPI document, building it on first use. Subsequent
// calls return the same object.
func (d *Document) Spec() *openapi3.T {
	d.once.Do(func() {
		d.spec = build(d.cfg)
	})
	return d.spec
}

// ServeJSON writes the document as JSON; mounted at /openapi.json.
func (d *Document) ServeJSON(w http.ResponseWriter, _ *http.Request) {
	body, err := jsonutil.Marshal(d.Spec())
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func build(cfg Config) *openapi3.T {
	return &openapi3.T{
		OpenAPI: "3.0.2",
		Info: &openapi3.Info{
			Title:       cfg.Title,
			Version:     cfg.Version,
			Description: cfg.Description,
			Contact: &openapi3.Contact{
				Name:  cfg.ContactName,
				URL:   cfg.ContactURL,
				Email: cfg.ContactEmail,
			},
			License: &openapi3.License{
				Name: cfg.LicenseName,
				URL:  cfg.LicenseURL,
			},
			Extensions: map[string]any{
				"x-logo": map[string]any{"url": cfg.LogoURL},
			},
		},
		Paths: buildPaths(),
	}
}

func buildPaths() *openapi3.Paths {
	return openapi3.NewPaths(
		openapi3.WithPath("/", getOp("Get basic information about the Nowcasting API")),
		openapi3.WithPath(api.SolarBase+"/national/forecast", getOp(
			"Get the national solar forecast",
			queryBool("historic"),
			queryBool("only_forecast_values"),
			queryInt("forecast_horizon_minutes"),
		)),
		openapi3.WithPath(api.SolarBase+"/national/pvlive", getOp(
			"Get national PV_Live values",
			queryString("regime"),
		)),
		openapi3.WithPath(api.SolarBase+"/gsp/forecast/all", getOp(
			"Get the latest forecasts for all GSPs",
			queryBool("historic"),
		)),
		// The trailing-slash form is served too, so it must be declared or
		// the validation middleware rejects it before routing.
		openapi3.WithPath(api.SolarBase+"/gsp/forecast/all/", getOp(
			"Get the latest forecasts for all GSPs",
			queryBool("historic"),
		)),
		openapi3.WithPath(api.SolarBase+"/gsp/forecast/{gsp_id}", getOp(
			"Get the forecast for a specific GSP",
			pathInt("gsp_id"),
			queryBool("historic"),
			queryBool("only_forecast_values"),
			queryInt("forecast_horizon_minutes"),
		)),
		openapi3.WithPath(api.SolarBase+"/gsp/pvlive/all", getOp(
			"Get PV_Live values for all GSPs",
			queryString("regime"),
		)),
		openapi3.WithPath(api.SolarBase+"/gsp/pvlive/{gsp_id}", getOp(
			"Get PV_Live values for a specific GSP",
			pathInt("gsp_id"),
			queryString("regime"),
		)),
		openapi3.WithPath(api.SolarBase+"/status", getOp("Get the service status")),
		openapi3.WithPath(api.SystemBase+"/gsp", getOp("Get system details for all GSPs")),
		openapi3.WithPath(api.SystemBase+"/gsp/{gsp_id}", getOp(
			"Get system details for a specific GSP",
			pathInt("gsp_id"),
		)),
	)
}

func getOp(summary string, params ...*openapi3.Parameter) *openapi3.PathItem {
	op := openapi3.NewOperation()
	op.Summary = summary
	for _, p := range params {
		op.AddParameter(p)
	}
	op.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Successful Response"))
	return &openapi3.PathItem{Get: op}
}

func queryBool(name string) *openapi3.Parameter {
	return openapi3.NewQueryParameter(name).WithSchema(openapi3.NewBoolSchema())
}

func queryInt(name string) *openapi3.Parameter {
	return openapi3.NewQueryParameter(name).WithSchema(openapi3.NewIntegerSchema())
}

func queryString(name string) *openapi3.Parameter {
	return openapi3.NewQueryParameter(name).WithSchema(openapi3.NewStringSchema())
}

func pathInt(name string) *openapi3.Parameter {
	return openapi3.NewPathParameter(name).WithSchema(openapi3.NewIntegerSchema())
}
