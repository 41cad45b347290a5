// Package router composes the API's HTTP surface: an explicit prefix route
// table resolved at startup, wrapped by an ordered middleware chain
// (process-time header, CORS, metrics, timeouts, logging, and OpenAPI
// request validation).
package router

import (
	"net/http"
	"strings"
)

// Middleware wraps an http.Handler to produce a new http.Handler.
type Middleware func(http.Handler) http.Handler

// Mount binds a path prefix to a handler group. The prefix is stripped
// before delegation, so sub-routers declare paths relative to their mount
// point. An empty prefix matches everything and acts as the fallback.
type Mount struct {
	Prefix  string
	Handler http.Handler
}

// Table is the ordered route table. Earlier entries win, so more specific
// prefixes must precede shorter ones.
type Table []Mount

// Handler resolves the table into a single http.Handler. Resolution
// happens once; per-request work is a linear prefix scan.
func (t Table) Handler() http.Handler {
	stripped := make([]http.Handler, len(t))
	for i, m := range t {
		stripped[i] = stripPrefix(m.Prefix, m.Handler)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i, m := range t {
			if m.Handler == nil {
				continue
			}
			if matchesPrefix(r.URL.Path, m.Prefix) {
				stripped[i].ServeHTTP(w, r)
				return
			}
		}
		http.NotFound(w, r)
	})
}

// RouteLabel returns the mount prefix matching path, used as a low
// cardinality metrics label. Unmatched paths are labelled as themselves.
func (t Table) RouteLabel(path string) string {
	for _, m := range t {
		if m.Prefix != "" && matchesPrefix(path, m.Prefix) {
			return m.Prefix
		}
	}
	return path
}

func matchesPrefix(path, prefix string) bool {
	if prefix == "" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// stripPrefix is like http.StripPrefix but keeps the delegated path rooted
// so an exact prefix hit reaches the sub-router as "/".
func stripPrefix(prefix string, h http.Handler) http.Handler {
	if prefix == "" || h == nil {
		if h == nil {
			return http.NotFoundHandler()
		}
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, prefix)
		if rest == "" {
			rest = "/"
		}
		r2 := r.Clone(r.Context())
		r2.URL.Path = rest
		h.ServeHTTP(w, r2)
	})
}

// New returns a new *http.ServeMux serving the provided route table behind
// the configured middleware chain.
func New(table Table, opts ...Option) *http.ServeMux {
	if len(table) == 0 {
		panic("router: route table cannot be empty")
	}

	settings := defaultOptions()
	settings.table = table
	for _, opt := range opts {
		if opt != nil {
			opt(settings)
		}
	}

	finalHandler := applyMiddlewares(table.Handler(), settings.middlewareChain())
	mux := http.NewServeMux()
	mux.Handle("/", finalHandler)
	return mux
}

func applyMiddlewares(handler http.Handler, middlewares []Middleware) http.Handler {
	if len(middlewares) == 0 {
		return handler
	}

	for i := len(middlewares) - 1; i >= 0; i-- {
		middleware := middlewares[i]
		if middleware == nil {
			continue
		}
		handler = middleware(handler)
	}

	return handler
}
