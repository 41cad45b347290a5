package router

import (
	"log/slog"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/openclimatefix/nowcasting-api/internal/metrics"
)

// CORSConfig describes the cross-origin allow-list.
type CORSConfig struct {
	Origins          []string
	Methods          []string
	Headers          []string
	AllowCredentials bool
}

// Config carries the router's middleware configuration.
type Config struct {
	Timeout         time.Duration
	QuietdownRoutes []string
	HideHeaders     []string
	CORS            CORSConfig
}

// Option configures the router via the functional options pattern.
type Option func(*options)

type options struct {
	config            Config
	logger            *slog.Logger
	swagger           *openapi3.T
	swaggerSkip       func(path string) bool
	metrics           *metrics.Metrics
	table             Table
	prepend           []Middleware
	append            []Middleware
	override          []Middleware
	enableOpenAPI     bool
	enableCORS        bool
	enableTimeout     bool
	enableLogging     bool
	enableProcessTime bool
}

func defaultOptions() *options {
	return &options{
		config: Config{
			Timeout: 30 * time.Second,
		},
		logger:            slog.Default(),
		enableOpenAPI:     true,
		enableCORS:        true,
		enableTimeout:     true,
		enableLogging:     true,
		enableProcessTime: true,
	}
}

func (o *options) middlewareChain() []Middleware {
	if len(o.override) > 0 {
		cloned := make([]Middleware, len(o.override))
		copy(cloned, o.override)
		return cloned
	}

	chain := make([]Middleware, 0, len(o.prepend)+len(o.append)+6)
	chain = append(chain, o.prepend...)
	chain = append(chain, o.defaultMiddlewares()...)
	chain = append(chain, o.append...)
	return chain
}

// defaultMiddlewares returns the built-in chain in outermost-first order:
// process time wraps everything so the header covers CORS preflights and
// validation failures too.
func (o *options) defaultMiddlewares() []Middleware {
	chain := make([]Middleware, 0, 6)

	if o.enableProcessTime {
		chain = append(chain, processTimeMiddleware(o.logger))
	}

	if o.enableCORS && len(o.config.CORS.Origins) > 0 {
		chain = append(chain, corsMiddleware(o.config.CORS))
	}

	if o.metrics != nil {
		chain = append(chain, metricsMiddleware(o.metrics, o.table))
	}

	if o.enableTimeout && o.config.Timeout > 0 {
		chain = append(chain, timeoutMiddleware(o.config.Timeout))
	}

	if o.enableLogging && o.logger != nil {
		chain = append(chain, loggingMiddleware(o.logger, o.config.QuietdownRoutes, o.config.HideHeaders))
	}

	if o.enableOpenAPI && o.swagger != nil {
		chain = append(chain, oapiMiddleware(o.swagger, o.swaggerSkip))
	}

	return chain
}

// WithConfig replaces the router configuration with the provided value.
func WithConfig(cfg Config) Option {
	configCopy := sanitizeConfig(cfg)
	return func(o *options) {
		o.config = configCopy
	}
}

// WithConfigMutator applies a mutation to the router configuration after
// defaults are set.
func WithConfigMutator(mutator func(*Config)) Option {
	return func(o *options) {
		if mutator != nil {
			mutator(&o.config)
		}
	}
}

// WithLogger provides the structured logger used by the logging and
// process-time middlewares.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSwagger wires the OpenAPI document for request validation. Paths for
// which skip returns true bypass validation; they are the routes excluded
// from the generated schema.
func WithSwagger(swagger *openapi3.T, skip func(path string) bool) Option {
	return func(o *options) {
		o.swagger = swagger
		o.swaggerSkip = skip
	}
}

// WithMetrics enables the Prometheus request instrumentation middleware.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithMiddlewares prepends custom middlewares ahead of the default chain.
func WithMiddlewares(middlewares ...Middleware) Option {
	return func(o *options) {
		o.prepend = append(o.prepend, middlewares...)
	}
}

// WithTrailingMiddlewares appends middlewares after the default chain.
func WithTrailingMiddlewares(middlewares ...Middleware) Option {
	return func(o *options) {
		o.append = append(o.append, middlewares...)
	}
}

// WithMiddlewareChain fully overrides the middleware chain with the
// provided sequence.
func WithMiddlewareChain(middlewares ...Middleware) Option {
	cloned := make([]Middleware, len(middlewares))
	copy(cloned, middlewares)
	return func(o *options) {
		o.override = cloned
	}
}

// WithoutOpenAPIValidation disables the OpenAPI validation middleware.
func WithoutOpenAPIValidation() Option {
	return func(o *options) {
		o.enableOpenAPI = false
	}
}

// WithoutCORSMiddleware disables the CORS middleware regardless of
// configuration.
func WithoutCORSMiddleware() Option {
	return func(o *options) {
		o.enableCORS = false
	}
}

// WithoutTimeoutMiddleware disables the timeout middleware.
func WithoutTimeoutMiddleware() Option {
	return func(o *options) {
		o.enableTimeout = false
	}
}

// WithoutLoggingMiddleware disables the logging middleware.
func WithoutLoggingMiddleware() Option {
	return func(o *options) {
		o.enableLogging = false
	}
}

// WithoutProcessTimeMiddleware disables the X-Process-Time middleware.
func WithoutProcessTimeMiddleware() Option {
	return func(o *options) {
		o.enableProcessTime = false
	}
}

func sanitizeConfig(cfg Config) Config {
	cfg.QuietdownRoutes = cloneStrings(cfg.QuietdownRoutes)
	cfg.HideHeaders = cloneStrings(cfg.HideHeaders)
	cfg.CORS.Headers = cloneStrings(cfg.CORS.Headers)
	cfg.CORS.Methods = cloneStrings(cfg.CORS.Methods)
	cfg.CORS.Origins = cloneStrings(cfg.CORS.Origins)
	return cfg
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	cloned := make([]string, len(values))
	copy(cloned, values)
	return cloned
}
