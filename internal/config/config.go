// Package config defines the service configuration and its loading rules.
// Values layer in order of precedence: built-in defaults, an optional YAML
// file named by NOWCASTING_CONFIG, then bare environment variables matching
// the deployment contract (ORIGINS, LOGLEVEL, ...).
package config

import (
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"loglevel"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// Origins is the raw comma-separated CORS allow-list from the
	// ORIGINS environment variable.
	Origins string `koanf:"origins"`

	// DBPath points at the SQLite database file.
	DBPath string `koanf:"db_path"`

	// FaviconPath points at the favicon served from /favicon.ico. The
	// endpoint returns 404 when the file is absent.
	FaviconPath string `koanf:"favicon_path"`

	// RequestTimeout bounds request handling before the timeout
	// middleware cuts in.
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "debug",
		Addr:           ":8000",
		Origins:        "",
		DBPath:         "nowcasting.db",
		FaviconPath:    "src/favicon.ico",
		RequestTimeout: 30 * time.Second,
	}
}

// DefaultOrigin is the CORS allow-list entry used when ORIGINS is unset.
const DefaultOrigin = "https://app.nowcasting.io"

// AllowedOrigins parses the ORIGINS value into the CORS allow-list.
// Entries are comma-separated; surrounding whitespace is trimmed and empty
// entries are dropped. An empty or all-blank value falls back to the
// default production frontend origin.
func (c *Config) AllowedOrigins() []string {
	return ParseOrigins(c.Origins)
}

// ParseOrigins splits a comma-separated origin list, trimming whitespace
// and dropping empty entries. It never returns an empty slice.
func ParseOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			origins = append(origins, part)
		}
	}
	if len(origins) == 0 {
		return []string{DefaultOrigin}
	}
	return origins
}
