package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// configKeys limits which bare environment variables feed the config.
// Without a vendor prefix, every variable in the process environment would
// otherwise be a candidate.
var configKeys = map[string]bool{
	"loglevel":        true,
	"addr":            true,
	"origins":         true,
	"db_path":         true,
	"favicon_path":    true,
	"request_timeout": true,
}

// Load builds a Config by layering defaults, an optional YAML file, and
// environment variables.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if NOWCASTING_CONFIG is set
//  3. env (ORIGINS, LOGLEVEL, ADDR, DB_PATH, FAVICON_PATH, REQUEST_TIMEOUT)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("NOWCASTING_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Bare env names match the deployment contract (ORIGINS, LOGLEVEL).
	// Keys map to lowercase to line up with the koanf tags on Config.
	envProvider := env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if !configKeys[key] {
			return ""
		}
		return key
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.DBPath == "" {
		return nil, errors.New("db_path must not be empty")
	}
	return &cfg, nil
}
