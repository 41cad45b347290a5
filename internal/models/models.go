// Package models defines the forecast-serving domain objects exchanged by
// the API: GSP locations, solar forecasts, PV-Live yields, and service
// status. JSON field names follow the camelCase wire format consumed by the
// Nowcasting frontend.
package models

import "time"

// Regime values accepted by the PV-Live endpoints. In-day readings are
// provisional; day-after readings are the finalized values published at
// 10:00 UTC the following day.
const (
	RegimeInDay    = "in-day"
	RegimeDayAfter = "day-after"
)

// NationalGSPID identifies the aggregate national "GSP".
const NationalGSPID = 0

// Location describes a Grid Supply Point and its installed PV capacity.
type Location struct {
	GSPID               int        `json:"gspId"`
	GSPName             string     `json:"gspName,omitempty"`
	GSPGroup            string     `json:"gspGroup,omitempty"`
	RegionName          string     `json:"regionName,omitempty"`
	InstalledCapacityMW float64    `json:"installedCapacityMw,omitempty"`
	GSPYields           []GSPYield `json:"gspYields,omitempty"`
}

// ForecastValue is a single expected-generation reading at a target time.
type ForecastValue struct {
	TargetTime                        time.Time `json:"targetTime"`
	ExpectedPowerGenerationMegawatts  float64   `json:"expectedPowerGenerationMegawatts"`
	ExpectedPowerGenerationNormalized *float64  `json:"expectedPowerGenerationNormalized,omitempty"`
}

// Forecast bundles the forecast values for one GSP with its system details.
type Forecast struct {
	Location             Location        `json:"location"`
	ForecastCreationTime time.Time       `json:"forecastCreationTime"`
	ForecastValues       []ForecastValue `json:"forecastValues"`
}

// Normalize populates the normalized generation on every forecast value by
// dividing expected megawatts by the GSP's installed capacity. GSPs with no
// recorded capacity are left unnormalized.
func (f *Forecast) Normalize() {
	capacity := f.Location.InstalledCapacityMW
	if capacity <= 0 {
		return
	}
	for i := range f.ForecastValues {
		normalized := f.ForecastValues[i].ExpectedPowerGenerationMegawatts / capacity
		f.ForecastValues[i].ExpectedPowerGenerationNormalized = &normalized
	}
}

// ManyForecasts carries forecasts for every available GSP.
type ManyForecasts struct {
	Forecasts []Forecast `json:"forecasts"`
}

// Normalize applies Forecast.Normalize to every contained forecast.
func (m *ManyForecasts) Normalize() {
	for i := range m.Forecasts {
		m.Forecasts[i].Normalize()
	}
}

// GSPYield is a real-time PV generation reading from PV-Live.
type GSPYield struct {
	DatetimeUTC       time.Time `json:"datetimeUtc"`
	SolarGenerationKW float64   `json:"solarGenerationKw"`
	Regime            string    `json:"regime,omitempty"`
}

// Status reports the service's operational state and an optional message
// for API consumers.
type Status struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
