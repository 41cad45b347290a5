// Package probe converts database ping functions and arbitrary closures
// into readiness/liveness helpers consumed by the info handler.
package probe

import (
	"context"
	"fmt"
)

// Func represents a health check that returns an error when the resource is
// unavailable.
type Func func(ctx context.Context) error

// PingFunc represents a health check that returns an error when the
// resource is unavailable.
type PingFunc func(ctx context.Context) error

// DBPinger captures the subset of *sql.DB (and of the forecast store) used
// for readiness checks.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// NewPingProbe wraps a PingFunc with standardised error handling.
func NewPingProbe(name string, fn PingFunc) Func {
	return func(ctx context.Context) error {
		if fn == nil {
			return nilComponentError(name, "ping function")
		}
		ctx = contextOrBackground(ctx)

		if err := fn(ctx); err != nil {
			return fmt.Errorf("%s probe failed: %w", name, err)
		}
		return nil
	}
}

// NewDBPingProbe creates a Func that pings the database behind the forecast
// store.
func NewDBPingProbe(name string, db DBPinger) Func {
	return func(ctx context.Context) error {
		if db == nil {
			return nilComponentError(name, "db client")
		}
		ctx = contextOrBackground(ctx)

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("%s probe failed: %w", name, err)
		}
		return nil
	}
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func nilComponentError(name, component string) error {
	return fmt.Errorf("%s probe: %s is nil", name, component)
}
