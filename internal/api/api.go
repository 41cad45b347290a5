// Package api implements the forecast-serving route groups: national, gsp,
// status, and system. Handlers depend on a read-only view of the store and
// share a responder for JSON rendering and problem documents.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/openclimatefix/nowcasting-api/internal/models"
	"github.com/openclimatefix/nowcasting-api/internal/responder"
	"github.com/openclimatefix/nowcasting-api/internal/store"
)

// Route-group base prefixes. The route table composes sub-router prefixes
// from these at startup.
const (
	SolarBase  = "/v0/solar/GB"
	SystemBase = "/v0/system/GB"
)

// Reader is the read-only store surface consumed by the handlers.
type Reader interface {
	ListForecasts(ctx context.Context, historic bool) (*models.ManyForecasts, error)
	GetForecast(ctx context.Context, gspID int, historic bool) (*models.Forecast, error)
	LatestForecastValues(ctx context.Context, gspID int, horizonMinutes int) ([]models.ForecastValue, error)
	ListYields(ctx context.Context, regime string) ([]models.Location, error)
	GetYields(ctx context.Context, gspID int, regime string) ([]models.GSPYield, error)
	ListLocations(ctx context.Context) ([]models.Location, error)
	GetLocation(ctx context.Context, gspID int) (*models.Location, error)
	LatestStatus(ctx context.Context) (*models.Status, error)
}

// ClassifyStoreError maps store sentinel errors onto HTTP status codes for
// the responder's error classifier.
func ClassifyStoreError(err error) (int, bool) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, store.ErrInvalidInput):
		return http.StatusBadRequest, true
	default:
		return 0, false
	}
}

// NewResponder builds a responder preconfigured with the store error
// classifier.
func NewResponder(opts ...responder.Option) *responder.Responder {
	opts = append([]responder.Option{responder.WithErrorClassifier(ClassifyStoreError)}, opts...)
	return responder.New(opts...)
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(strings.ToLower(raw))
	if err != nil {
		return false, errors.New(name + " must be a boolean")
	}
	return value, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return value, nil
}

func pathGSPID(r *http.Request) (int, error) {
	raw := r.PathValue("gsp_id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("gsp_id must be an integer")
	}
	return id, nil
}
