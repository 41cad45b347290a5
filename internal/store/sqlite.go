package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/openclimatefix/nowcasting-api/internal/models"
)

// timeLayout is the canonical UTC storage format. It matches SQLite's
// datetime() output so time arithmetic and lexicographic comparisons agree.
const timeLayout = "2006-01-02 15:04:05"

const schema = `
CREATE TABLE IF NOT EXISTS locations (
	gsp_id INTEGER PRIMARY KEY,
	gsp_name TEXT NOT NULL DEFAULT '',
	gsp_group TEXT NOT NULL DEFAULT '',
	region_name TEXT NOT NULL DEFAULT '',
	installed_capacity_mw REAL NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS forecasts (
	gsp_id INTEGER PRIMARY KEY,
	creation_time TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS forecast_values (
	gsp_id INTEGER NOT NULL,
	target_time TEXT NOT NULL,
	created_time TEXT NOT NULL,
	expected_power_mw REAL NOT NULL,
	PRIMARY KEY (gsp_id, target_time, created_time)
);
CREATE INDEX IF NOT EXISTS idx_forecast_values_gsp_target
	ON forecast_values (gsp_id, target_time);
CREATE TABLE IF NOT EXISTS gsp_yields (
	gsp_id INTEGER NOT NULL,
	datetime_utc TEXT NOT NULL,
	solar_generation_kw REAL NOT NULL,
	regime TEXT NOT NULL DEFAULT 'in-day',
	PRIMARY KEY (gsp_id, datetime_utc, regime)
);
CREATE TABLE IF NOT EXISTS service_status (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	status TEXT NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	created_time TEXT NOT NULL
);
`

// SQLite implements Store on top of a local SQLite database.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (creating if necessary) the database at path and ensures
// the schema exists. Use ":memory:" for an ephemeral database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	dsn := path
	if !strings.Contains(path, ":memory:") {
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db, now: time.Now}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// PingContext reports whether the database is reachable.
func (s *SQLite) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// AddLocation inserts or updates a GSP's system details.
func (s *SQLite) AddLocation(ctx context.Context, loc models.Location) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO locations (gsp_id, gsp_name, gsp_group, region_name, installed_capacity_mw)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (gsp_id) DO UPDATE SET
			gsp_name = excluded.gsp_name,
			gsp_group = excluded.gsp_group,
			region_name = excluded.region_name,
			installed_capacity_mw = excluded.installed_capacity_mw`,
		loc.GSPID, loc.GSPName, loc.GSPGroup, loc.RegionName, loc.InstalledCapacityMW)
	if err != nil {
		return fmt.Errorf("add location %d: %w", loc.GSPID, err)
	}
	return nil
}

// AddForecast records a forecast run for one GSP. The run's creation time
// becomes the GSP's latest forecast; earlier runs are kept for
// forecast-horizon queries.
func (s *SQLite) AddForecast(ctx context.Context, forecast models.Forecast) error {
	gspID := forecast.Location.GSPID
	created := formatTime(forecast.ForecastCreationTime)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("add forecast %d: %w", gspID, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO forecasts (gsp_id, creation_time) VALUES (?, ?)
		ON CONFLICT (gsp_id) DO UPDATE SET creation_time = excluded.creation_time`,
		gspID, created); err != nil {
		return fmt.Errorf("add forecast %d: %w", gspID, err)
	}

	for _, fv := range forecast.ForecastValues {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO forecast_values (gsp_id, target_time, created_time, expected_power_mw)
			VALUES (?, ?, ?, ?)`,
			gspID, formatTime(fv.TargetTime), created, fv.ExpectedPowerGenerationMegawatts); err != nil {
			return fmt.Errorf("add forecast value %d: %w", gspID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("add forecast %d: %w", gspID, err)
	}
	return nil
}

// AddYield records a PV-Live reading for one GSP.
func (s *SQLite) AddYield(ctx context.Context, gspID int, yield models.GSPYield) error {
	regime := yield.Regime
	if regime == "" {
		regime = models.RegimeInDay
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO gsp_yields (gsp_id, datetime_utc, solar_generation_kw, regime)
		VALUES (?, ?, ?, ?)`,
		gspID, formatTime(yield.DatetimeUTC), yield.SolarGenerationKW, regime)
	if err != nil {
		return fmt.Errorf("add yield %d: %w", gspID, err)
	}
	return nil
}

// SetStatus appends a service status record.
func (s *SQLite) SetStatus(ctx context.Context, status models.Status) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO service_status (status, message, created_time) VALUES (?, ?, ?)`,
		status.Status, status.Message, formatTime(s.now()))
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return nil
}

// ListForecasts returns the latest forecast for every GSP that has one.
func (s *SQLite) ListForecasts(ctx context.Context, historic bool) (*models.ManyForecasts, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT gsp_id FROM forecasts ORDER BY gsp_id`)
	if err != nil {
		return nil, fmt.Errorf("list forecasts: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list forecasts: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list forecasts: %w", err)
	}

	many := &models.ManyForecasts{Forecasts: make([]models.Forecast, 0, len(ids))}
	for _, id := range ids {
		forecast, err := s.GetForecast(ctx, id, historic)
		if err != nil {
			return nil, err
		}
		many.Forecasts = append(many.Forecasts, *forecast)
	}
	return many, nil
}

// GetForecast returns the latest forecast run for one GSP.
func (s *SQLite) GetForecast(ctx context.Context, gspID int, historic bool) (*models.Forecast, error) {
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT creation_time FROM forecasts WHERE gsp_id = ?`, gspID).Scan(&created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("forecast for gsp %d: %w", gspID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get forecast %d: %w", gspID, err)
	}

	location, err := s.locationOrDefault(ctx, gspID)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().UTC()
	if historic {
		cutoff = startOfDay(cutoff).AddDate(0, 0, -1)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT target_time, expected_power_mw
		FROM forecast_values
		WHERE gsp_id = ? AND created_time = ? AND target_time >= ?
		ORDER BY target_time`,
		gspID, created, formatTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("get forecast %d: %w", gspID, err)
	}
	defer rows.Close()

	values, err := scanForecastValues(rows)
	if err != nil {
		return nil, fmt.Errorf("get forecast %d: %w", gspID, err)
	}

	creationTime, err := parseTime(created)
	if err != nil {
		return nil, fmt.Errorf("get forecast %d: %w", gspID, err)
	}

	return &models.Forecast{
		Location:             location,
		ForecastCreationTime: creationTime,
		ForecastValues:       values,
	}, nil
}

// LatestForecastValues returns, for each target time, the value from the
// most recent forecast run. A positive horizonMinutes restricts each target
// time to runs created at least that many minutes beforehand.
func (s *SQLite) LatestForecastValues(ctx context.Context, gspID int, horizonMinutes int) ([]models.ForecastValue, error) {
	if horizonMinutes < 0 {
		return nil, fmt.Errorf("forecast horizon must not be negative: %w", ErrInvalidInput)
	}

	if err := s.requireForecast(ctx, gspID); err != nil {
		return nil, err
	}

	query := `
		SELECT target_time, expected_power_mw, MAX(created_time)
		FROM forecast_values
		WHERE gsp_id = ?`
	args := []any{gspID}
	if horizonMinutes > 0 {
		query += ` AND created_time <= datetime(target_time, ?)`
		args = append(args, fmt.Sprintf("-%d minutes", horizonMinutes))
	}
	query += ` GROUP BY target_time ORDER BY target_time`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("latest forecast values %d: %w", gspID, err)
	}
	defer rows.Close()

	var values []models.ForecastValue
	for rows.Next() {
		var target, created string
		var mw float64
		if err := rows.Scan(&target, &mw, &created); err != nil {
			return nil, fmt.Errorf("latest forecast values %d: %w", gspID, err)
		}
		targetTime, err := parseTime(target)
		if err != nil {
			return nil, fmt.Errorf("latest forecast values %d: %w", gspID, err)
		}
		values = append(values, models.ForecastValue{
			TargetTime:                       targetTime,
			ExpectedPowerGenerationMegawatts: mw,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("latest forecast values %d: %w", gspID, err)
	}
	return values, nil
}

// ListYields returns every GSP location with its PV-Live readings attached.
func (s *SQLite) ListYields(ctx context.Context, regime string) ([]models.Location, error) {
	if err := validateRegime(regime); err != nil {
		return nil, err
	}

	locations, err := s.ListLocations(ctx)
	if err != nil {
		return nil, err
	}

	for i := range locations {
		yields, err := s.queryYields(ctx, locations[i].GSPID, regime)
		if err != nil {
			return nil, err
		}
		locations[i].GSPYields = yields
	}
	return locations, nil
}

// GetYields returns the PV-Live readings for one GSP.
func (s *SQLite) GetYields(ctx context.Context, gspID int, regime string) ([]models.GSPYield, error) {
	if err := validateRegime(regime); err != nil {
		return nil, err
	}

	if _, err := s.GetLocation(ctx, gspID); err != nil {
		return nil, err
	}
	return s.queryYields(ctx, gspID, regime)
}

// ListLocations returns system details for every GSP.
func (s *SQLite) ListLocations(ctx context.Context) ([]models.Location, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT gsp_id, gsp_name, gsp_group, region_name, installed_capacity_mw
		FROM locations ORDER BY gsp_id`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		var loc models.Location
		if err := rows.Scan(&loc.GSPID, &loc.GSPName, &loc.GSPGroup, &loc.RegionName, &loc.InstalledCapacityMW); err != nil {
			return nil, fmt.Errorf("list locations: %w", err)
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}

// GetLocation returns system details for one GSP.
func (s *SQLite) GetLocation(ctx context.Context, gspID int) (*models.Location, error) {
	var loc models.Location
	err := s.db.QueryRowContext(ctx, `
		SELECT gsp_id, gsp_name, gsp_group, region_name, installed_capacity_mw
		FROM locations WHERE gsp_id = ?`, gspID).
		Scan(&loc.GSPID, &loc.GSPName, &loc.GSPGroup, &loc.RegionName, &loc.InstalledCapacityMW)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("gsp %d: %w", gspID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get location %d: %w", gspID, err)
	}
	return &loc, nil
}

// LatestStatus returns the most recently recorded service status.
func (s *SQLite) LatestStatus(ctx context.Context) (*models.Status, error) {
	var status models.Status
	err := s.db.QueryRowContext(ctx, `
		SELECT status, message FROM service_status ORDER BY id DESC LIMIT 1`).
		Scan(&status.Status, &status.Message)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("service status: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest status: %w", err)
	}
	return &status, nil
}

func (s *SQLite) requireForecast(ctx context.Context, gspID int) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM forecasts WHERE gsp_id = ?`, gspID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("forecast for gsp %d: %w", gspID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check forecast %d: %w", gspID, err)
	}
	return nil
}

func (s *SQLite) locationOrDefault(ctx context.Context, gspID int) (models.Location, error) {
	loc, err := s.GetLocation(ctx, gspID)
	if errors.Is(err, ErrNotFound) {
		return models.Location{GSPID: gspID}, nil
	}
	if err != nil {
		return models.Location{}, err
	}
	return *loc, nil
}

func (s *SQLite) queryYields(ctx context.Context, gspID int, regime string) ([]models.GSPYield, error) {
	query := `
		SELECT datetime_utc, solar_generation_kw, regime
		FROM gsp_yields WHERE gsp_id = ?`
	args := []any{gspID}
	if regime != "" {
		query += ` AND regime = ?`
		args = append(args, regime)
	}
	query += ` ORDER BY datetime_utc`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("yields for gsp %d: %w", gspID, err)
	}
	defer rows.Close()

	var yields []models.GSPYield
	for rows.Next() {
		var raw string
		var yield models.GSPYield
		if err := rows.Scan(&raw, &yield.SolarGenerationKW, &yield.Regime); err != nil {
			return nil, fmt.Errorf("yields for gsp %d: %w", gspID, err)
		}
		yield.DatetimeUTC, err = parseTime(raw)
		if err != nil {
			return nil, fmt.Errorf("yields for gsp %d: %w", gspID, err)
		}
		yields = append(yields, yield)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("yields for gsp %d: %w", gspID, err)
	}
	return yields, nil
}

func scanForecastValues(rows *sql.Rows) ([]models.ForecastValue, error) {
	var values []models.ForecastValue
	for rows.Next() {
		var raw string
		var mw float64
		if err := rows.Scan(&raw, &mw); err != nil {
			return nil, err
		}
		target, err := parseTime(raw)
		if err != nil {
			return nil, err
		}
		values = append(values, models.ForecastValue{
			TargetTime:                       target,
			ExpectedPowerGenerationMegawatts: mw,
		})
	}
	return values, rows.Err()
}

func validateRegime(regime string) error {
	switch regime {
	case "", models.RegimeInDay, models.RegimeDayAfter:
		return nil
	default:
		return fmt.Errorf("unknown regime %q: %w", regime, ErrInvalidInput)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(timeLayout, s, time.UTC)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
