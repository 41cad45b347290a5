// Command api runs the Nowcasting API HTTP server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/openclimatefix/nowcasting-api/internal/api"
	"github.com/openclimatefix/nowcasting-api/internal/config"
	"github.com/openclimatefix/nowcasting-api/internal/info"
	"github.com/openclimatefix/nowcasting-api/internal/metrics"
	"github.com/openclimatefix/nowcasting-api/internal/openapi"
	"github.com/openclimatefix/nowcasting-api/internal/probe"
	"github.com/openclimatefix/nowcasting-api/internal/responder"
	"github.com/openclimatefix/nowcasting-api/internal/router"
	"github.com/openclimatefix/nowcasting-api/internal/store"
)

const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 35 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	level.Set(parseLevel(logger, cfg.LogLevel))

	db, err := store.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           buildHandler(cfg, logger, db),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", cfg.Addr, "version", info.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}

// buildHandler assembles the route table and middleware chain for the API.
func buildHandler(cfg *config.Config, logger *slog.Logger, db store.Store) http.Handler {
	rsp := api.NewResponder(responder.WithLogger(logger))

	gspHandler := api.NewGSPHandler(rsp, db)
	nationalHandler := api.NewNationalHandler(rsp, db)
	statusHandler := api.NewStatusHandler(rsp, db)
	systemHandler := api.NewSystemHandler(rsp, db)

	infoHandler := info.NewHandler(
		info.WithResponder(rsp),
		info.WithFaviconPath(cfg.FaviconPath),
		info.WithLivenessChecks(probe.NewPingProbe("api", func(context.Context) error { return nil })),
		info.WithReadinessChecks(probe.NewDBPingProbe("database", db)),
	)

	doc := openapi.NewDocument(openapi.DefaultConfig())
	requestMetrics := metrics.New()

	root := http.NewServeMux()
	root.HandleFunc("GET /{$}", infoHandler.GetAPIInformation)
	root.HandleFunc("GET /favicon.ico", infoHandler.GetFavicon)
	root.HandleFunc("GET /newdocs", infoHandler.GetDocs)
	root.HandleFunc("GET /openapi.json", doc.ServeJSON)
	root.Handle("GET /metrics", requestMetrics.Handler())
	root.HandleFunc("GET /healthz", infoHandler.GetHealthz)
	root.HandleFunc("GET /readyz", infoHandler.GetReadyz)

	// Order matters: more specific prefixes first, root mux as fallback.
	table := router.Table{
		{Prefix: api.SolarBase + "/national", Handler: nationalHandler.Routes()},
		{Prefix: api.SolarBase + "/gsp", Handler: gspHandler.Routes()},
		{Prefix: api.SystemBase + "/gsp", Handler: systemHandler.Routes()},
		{Prefix: api.SolarBase, Handler: statusHandler.Routes()},
		{Prefix: "", Handler: root},
	}

	return router.New(
		table,
		router.WithLogger(logger),
		router.WithMetrics(requestMetrics),
		router.WithSwagger(doc.Spec(), schemaExcluded),
		router.WithConfig(router.Config{
			Timeout:         cfg.RequestTimeout,
			QuietdownRoutes: []string{"/metrics", "/healthz", "/readyz"},
			HideHeaders:     []string{"Authorization"},
			CORS: router.CORSConfig{
				Origins:          cfg.AllowedOrigins(),
				Methods:          []string{"*"},
				Headers:          []string{"*"},
				AllowCredentials: true,
			},
		}),
	)
}

// schemaExcluded reports whether a path is deliberately left out of the
// OpenAPI document and must bypass request validation.
func schemaExcluded(path string) bool {
	switch path {
	case "/favicon.ico", "/newdocs", "/openapi.json", "/metrics", "/healthz", "/readyz":
		return true
	}
	return false
}

func parseLevel(logger *slog.Logger, raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug", "":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		logger.Warn("unknown log level; falling back to debug", "loglevel", raw)
		return slog.LevelDebug
	}
}
