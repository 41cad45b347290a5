// Package store provides the persistence layer behind the forecast, PV-Live,
// and system routes. The canonical implementation is SQLite backed; handlers
// depend only on the Store interface so tests can substitute fakes.
package store

import (
	"context"
	"errors"

	"github.com/openclimatefix/nowcasting-api/internal/models"
)

// Sentinel errors surfaced to handlers. The API layer translates these into
// problem documents via the responder's error classifier.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Store exposes the read operations backing the API routes plus the write
// operations used by the ingest path and tests.
type Store interface {
	// ListForecasts returns the latest forecast for every GSP. When historic
	// is true, forecast values from the start of yesterday are included;
	// otherwise only upcoming values are returned.
	ListForecasts(ctx context.Context, historic bool) (*models.ManyForecasts, error)

	// GetForecast returns the latest forecast for one GSP.
	GetForecast(ctx context.Context, gspID int, historic bool) (*models.Forecast, error)

	// LatestForecastValues returns the most recent forecast values for one
	// GSP. A positive horizonMinutes restricts each target time to the latest
	// forecast made at least that many minutes beforehand.
	LatestForecastValues(ctx context.Context, gspID int, horizonMinutes int) ([]models.ForecastValue, error)

	// ListYields returns every GSP location with its PV-Live readings for the
	// given regime ("" selects the most up-to-date readings).
	ListYields(ctx context.Context, regime string) ([]models.Location, error)

	// GetYields returns the PV-Live readings for one GSP.
	GetYields(ctx context.Context, gspID int, regime string) ([]models.GSPYield, error)

	// ListLocations returns system details for every GSP.
	ListLocations(ctx context.Context) ([]models.Location, error)

	// GetLocation returns system details for one GSP.
	GetLocation(ctx context.Context, gspID int) (*models.Location, error)

	// LatestStatus returns the most recently recorded service status.
	LatestStatus(ctx context.Context) (*models.Status, error)

	// AddLocation, AddForecast, AddYield, and SetStatus populate the store.
	AddLocation(ctx context.Context, loc models.Location) error
	AddForecast(ctx context.Context, forecast models.Forecast) error
	AddYield(ctx context.Context, gspID int, yield models.GSPYield) error
	SetStatus(ctx context.Context, status models.Status) error

	// PingContext reports whether the underlying database is reachable.
	PingContext(ctx context.Context) error

	// Close releases the underlying database handle.
	Close() error
}
