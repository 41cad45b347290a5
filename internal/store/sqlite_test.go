package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openclimatefix/nowcasting-api/internal/models"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()

	s, err := OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndGetLocation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	loc := models.Location{GSPID: 122, GSPName: "FIDF_1", RegionName: "Fiddlers Ferry", InstalledCapacityMW: 30}
	if err := s.AddLocation(ctx, loc); err != nil {
		t.Fatalf("add location failed: %v", err)
	}

	got, err := s.GetLocation(ctx, 122)
	if err != nil {
		t.Fatalf("get location failed: %v", err)
	}
	if got.GSPName != "FIDF_1" || got.InstalledCapacityMW != 30 {
		t.Fatalf("unexpected location: %+v", got)
	}

	if _, err := s.GetLocation(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetForecastFiltersByCutoff(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2022, 9, 8, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if err := s.AddLocation(ctx, models.Location{GSPID: 1, InstalledCapacityMW: 10}); err != nil {
		t.Fatalf("add location failed: %v", err)
	}

	forecast := models.Forecast{
		Location:             models.Location{GSPID: 1},
		ForecastCreationTime: now.Add(-time.Hour),
		ForecastValues: []models.ForecastValue{
			{TargetTime: now.AddDate(0, 0, -1), ExpectedPowerGenerationMegawatts: 1},
			{TargetTime: now.Add(-30 * time.Minute), ExpectedPowerGenerationMegawatts: 2},
			{TargetTime: now.Add(30 * time.Minute), ExpectedPowerGenerationMegawatts: 3},
		},
	}
	if err := s.AddForecast(ctx, forecast); err != nil {
		t.Fatalf("add forecast failed: %v", err)
	}

	t.Run("upcoming only", func(t *testing.T) {
		got, err := s.GetForecast(ctx, 1, false)
		if err != nil {
			t.Fatalf("get forecast failed: %v", err)
		}
		if len(got.ForecastValues) != 1 {
			t.Fatalf("expected 1 upcoming value, got %d", len(got.ForecastValues))
		}
		if got.ForecastValues[0].ExpectedPowerGenerationMegawatts != 3 {
			t.Fatalf("unexpected value: %+v", got.ForecastValues[0])
		}
		if got.Location.InstalledCapacityMW != 10 {
			t.Fatalf("expected location join, got %+v", got.Location)
		}
	})

	t.Run("historic includes yesterday", func(t *testing.T) {
		got, err := s.GetForecast(ctx, 1, true)
		if err != nil {
			t.Fatalf("get forecast failed: %v", err)
		}
		if len(got.ForecastValues) != 3 {
			t.Fatalf("expected 3 historic values, got %d", len(got.ForecastValues))
		}
	})

	t.Run("missing gsp", func(t *testing.T) {
		if _, err := s.GetForecast(ctx, 42, false); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestLatestForecastValuesHonoursHorizon(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	target := time.Date(2022, 9, 8, 12, 0, 0, 0, time.UTC)

	// Two runs for the same target time: one 60 minutes ahead, one 15.
	early := models.Forecast{
		Location:             models.Location{GSPID: 1},
		ForecastCreationTime: target.Add(-60 * time.Minute),
		ForecastValues:       []models.ForecastValue{{TargetTime: target, ExpectedPowerGenerationMegawatts: 5}},
	}
	late := models.Forecast{
		Location:             models.Location{GSPID: 1},
		ForecastCreationTime: target.Add(-15 * time.Minute),
		ForecastValues:       []models.ForecastValue{{TargetTime: target, ExpectedPowerGenerationMegawatts: 7}},
	}
	for _, f := range []models.Forecast{early, late} {
		if err := s.AddForecast(ctx, f); err != nil {
			t.Fatalf("add forecast failed: %v", err)
		}
	}

	t.Run("no horizon returns latest run", func(t *testing.T) {
		values, err := s.LatestForecastValues(ctx, 1, 0)
		if err != nil {
			t.Fatalf("latest forecast values failed: %v", err)
		}
		if len(values) != 1 || values[0].ExpectedPowerGenerationMegawatts != 7 {
			t.Fatalf("expected latest run value 7, got %+v", values)
		}
	})

	t.Run("horizon selects earlier run", func(t *testing.T) {
		values, err := s.LatestForecastValues(ctx, 1, 35)
		if err != nil {
			t.Fatalf("latest forecast values failed: %v", err)
		}
		if len(values) != 1 || values[0].ExpectedPowerGenerationMegawatts != 5 {
			t.Fatalf("expected horizon-limited value 5, got %+v", values)
		}
	})

	t.Run("negative horizon rejected", func(t *testing.T) {
		if _, err := s.LatestForecastValues(ctx, 1, -1); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestYields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AddLocation(ctx, models.Location{GSPID: 1, GSPName: "A"}); err != nil {
		t.Fatalf("add location failed: %v", err)
	}

	readings := []models.GSPYield{
		{DatetimeUTC: time.Date(2022, 9, 7, 10, 0, 0, 0, time.UTC), SolarGenerationKW: 100, Regime: models.RegimeDayAfter},
		{DatetimeUTC: time.Date(2022, 9, 8, 10, 0, 0, 0, time.UTC), SolarGenerationKW: 150, Regime: models.RegimeInDay},
	}
	for _, y := range readings {
		if err := s.AddYield(ctx, 1, y); err != nil {
			t.Fatalf("add yield failed: %v", err)
		}
	}

	t.Run("all regimes", func(t *testing.T) {
		yields, err := s.GetYields(ctx, 1, "")
		if err != nil {
			t.Fatalf("get yields failed: %v", err)
		}
		if len(yields) != 2 {
			t.Fatalf("expected 2 yields, got %d", len(yields))
		}
	})

	t.Run("filtered by regime", func(t *testing.T) {
		yields, err := s.GetYields(ctx, 1, models.RegimeDayAfter)
		if err != nil {
			t.Fatalf("get yields failed: %v", err)
		}
		if len(yields) != 1 || yields[0].SolarGenerationKW != 100 {
			t.Fatalf("expected day-after reading, got %+v", yields)
		}
	})

	t.Run("unknown regime rejected", func(t *testing.T) {
		if _, err := s.GetYields(ctx, 1, "sometime"); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("unknown gsp", func(t *testing.T) {
		if _, err := s.GetYields(ctx, 42, ""); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list yields attaches readings to locations", func(t *testing.T) {
		locations, err := s.ListYields(ctx, "")
		if err != nil {
			t.Fatalf("list yields failed: %v", err)
		}
		if len(locations) != 1 || len(locations[0].GSPYields) != 2 {
			t.Fatalf("unexpected locations: %+v", locations)
		}
	})
}

func TestLatestStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.LatestStatus(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	base := time.Date(2022, 9, 8, 10, 0, 0, 0, time.UTC)
	for i, st := range []models.Status{
		{Status: "warning", Message: "pv data delayed"},
		{Status: "ok", Message: "all good"},
	} {
		tick := base.Add(time.Duration(i) * time.Minute)
		s.now = func() time.Time { return tick }
		if err := s.SetStatus(ctx, st); err != nil {
			t.Fatalf("set status failed: %v", err)
		}
	}

	got, err := s.LatestStatus(ctx)
	if err != nil {
		t.Fatalf("latest status failed: %v", err)
	}
	if got.Status != "ok" || got.Message != "all good" {
		t.Fatalf("unexpected status: %+v", got)
	}
}

func TestListForecasts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2022, 9, 8, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	for gspID := 1; gspID <= 3; gspID++ {
		if err := s.AddLocation(ctx, models.Location{GSPID: gspID, InstalledCapacityMW: 10}); err != nil {
			t.Fatalf("add location failed: %v", err)
		}
		forecast := models.Forecast{
			Location:             models.Location{GSPID: gspID},
			ForecastCreationTime: now,
			ForecastValues:       []models.ForecastValue{{TargetTime: now.Add(time.Hour), ExpectedPowerGenerationMegawatts: float64(gspID)}},
		}
		if err := s.AddForecast(ctx, forecast); err != nil {
			t.Fatalf("add forecast failed: %v", err)
		}
	}

	many, err := s.ListForecasts(ctx, false)
	if err != nil {
		t.Fatalf("list forecasts failed: %v", err)
	}
	if len(many.Forecasts) != 3 {
		t.Fatalf("expected 3 forecasts, got %d", len(many.Forecasts))
	}
	if many.Forecasts[2].ForecastValues[0].ExpectedPowerGenerationMegawatts != 3 {
		t.Fatalf("unexpected ordering: %+v", many.Forecasts)
	}
}
