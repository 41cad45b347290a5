package router

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"testing"
	"time"
)

func TestTableResolvesMostSpecificPrefixFirst(t *testing.T) {
	table := Table{
		{Prefix: "/v0/solar/GB/national", Handler: labelHandler("national")},
		{Prefix: "/v0/solar/GB/gsp", Handler: labelHandler("gsp")},
		{Prefix: "/v0/solar/GB", Handler: labelHandler("solar")},
		{Prefix: "", Handler: labelHandler("root")},
	}

	handler := table.Handler()

	cases := []struct {
		path string
		want string
	}{
		{"/v0/solar/GB/national/forecast", "national"},
		{"/v0/solar/GB/gsp/forecast/all", "gsp"},
		{"/v0/solar/GB/status", "solar"},
		{"/", "root"},
		{"/favicon.ico", "root"},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if got := rr.Header().Get("X-Handled-By"); got != tc.want {
			t.Fatalf("path %s handled by %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestTableStripsPrefixAndRootsPath(t *testing.T) {
	var seen string
	table := Table{
		{Prefix: "/v0/solar/GB/gsp", Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = r.URL.Path
		})},
	}

	handler := table.Handler()

	req := httptest.NewRequest(http.MethodGet, "/v0/solar/GB/gsp/forecast/all", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "/forecast/all" {
		t.Fatalf("unexpected delegated path: %q", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/v0/solar/GB/gsp", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "/" {
		t.Fatalf("expected exact prefix hit to delegate as /, got %q", seen)
	}
}

func TestTableRouteLabel(t *testing.T) {
	table := Table{
		{Prefix: "/v0/solar/GB/gsp", Handler: labelHandler("gsp")},
		{Prefix: "/v0/solar/GB", Handler: labelHandler("solar")},
		{Prefix: "", Handler: labelHandler("root")},
	}

	if got := table.RouteLabel("/v0/solar/GB/gsp/forecast/7"); got != "/v0/solar/GB/gsp" {
		t.Fatalf("unexpected label: %q", got)
	}
	if got := table.RouteLabel("/v0/solar/GB/status"); got != "/v0/solar/GB" {
		t.Fatalf("unexpected label: %q", got)
	}
	if got := table.RouteLabel("/favicon.ico"); got != "/favicon.ico" {
		t.Fatalf("unexpected label: %q", got)
	}
}

func TestProcessTimeHeaderParsesAsFloat(t *testing.T) {
	table := Table{
		{Prefix: "", Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})},
	}

	mux := New(
		table,
		WithoutOpenAPIValidation(),
		WithoutCORSMiddleware(),
		WithoutLoggingMiddleware(),
	)

	for _, path := range []string{"/", "/v0/solar/GB/status", "/v0/system/GB/gsp"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)

		header := rr.Header().Get("X-Process-Time")
		if header == "" {
			t.Fatalf("expected X-Process-Time header on %s", path)
		}

		seconds, err := strconv.ParseFloat(header, 64)
		if err != nil {
			t.Fatalf("X-Process-Time %q does not parse as float: %v", header, err)
		}
		if seconds < 0 {
			t.Fatalf("expected non-negative process time, got %f", seconds)
		}
	}
}

func TestProcessTimeHeaderCoversErrorResponses(t *testing.T) {
	table := Table{
		{Prefix: "", Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})},
	}

	mux := New(
		table,
		WithoutOpenAPIValidation(),
		WithoutCORSMiddleware(),
		WithoutLoggingMiddleware(),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if _, err := strconv.ParseFloat(rr.Header().Get("X-Process-Time"), 64); err != nil {
		t.Fatalf("expected parseable X-Process-Time on error response: %v", err)
	}
}

func TestNewAllowsMiddlewareOverride(t *testing.T) {
	var order []string

	table := Table{
		{Prefix: "", Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
			w.WriteHeader(http.StatusTeapot)
		})},
	}

	mux := New(table, WithMiddlewareChain(
		recordingMiddleware("one", &order),
		recordingMiddleware("two", &order),
	))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	expected := []string{"one-before", "two-before", "handler", "two-after", "one-after"}
	if !reflect.DeepEqual(order, expected) {
		t.Fatalf("unexpected middleware order: got %v, want %v", order, expected)
	}

	if rr.Code != http.StatusTeapot {
		t.Fatalf("unexpected response code: got %d want %d", rr.Code, http.StatusTeapot)
	}
}

func TestNewSupportsPrependAndAppendMiddlewares(t *testing.T) {
	var order []string
	table := Table{
		{Prefix: "", Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
			w.WriteHeader(http.StatusNoContent)
		})},
	}

	mux := New(
		table,
		WithoutOpenAPIValidation(),
		WithoutCORSMiddleware(),
		WithoutTimeoutMiddleware(),
		WithoutLoggingMiddleware(),
		WithoutProcessTimeMiddleware(),
		WithMiddlewares(recordingMiddleware("outer", &order)),
		WithTrailingMiddlewares(recordingMiddleware("inner", &order)),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	expected := []string{"outer-before", "inner-before", "handler", "inner-after", "outer-after"}
	if !reflect.DeepEqual(order, expected) {
		t.Fatalf("unexpected middleware order: got %v want %v", order, expected)
	}

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected response code: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestNewAppliesCORSEnforcementFromConfig(t *testing.T) {
	table := Table{
		{Prefix: "", Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})},
	}

	mux := New(
		table,
		WithoutLoggingMiddleware(),
		WithConfigMutator(func(cfg *Config) {
			cfg.CORS = CORSConfig{
				Origins:          []string{"https://app.nowcasting.io"},
				Methods:          []string{"*"},
				Headers:          []string{"*"},
				AllowCredentials: true,
			}
		}),
	)

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/v0/solar/GB/status", nil)
		req.Header.Set("Origin", "https://app.nowcasting.io")
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("unexpected status code: got %d want %d", rr.Code, http.StatusOK)
		}
		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.nowcasting.io" {
			t.Fatalf("unexpected access-control-allow-origin: %q", got)
		}
		if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Fatalf("unexpected access-control-allow-credentials: %q", got)
		}
	})

	t.Run("simple request from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.nowcasting.io")
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)

		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.nowcasting.io" {
			t.Fatalf("unexpected access-control-allow-origin: %q", got)
		}
		if got := rr.Header().Get("Vary"); got != "Origin" {
			t.Fatalf("unexpected vary header: %q", got)
		}
	})

	t.Run("request from disallowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)

		if rr.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Fatal("expected no CORS allow header for disallowed origin")
		}
	})
}

func TestTimeoutMiddlewareCanBeDisabled(t *testing.T) {
	table := Table{
		{Prefix: "", Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(10 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		})},
	}

	withTimeout := New(
		table,
		WithoutProcessTimeMiddleware(),
		WithConfig(Config{Timeout: 1 * time.Millisecond}),
	)

	withoutTimeout := New(
		table,
		WithoutProcessTimeMiddleware(),
		WithConfig(Config{Timeout: 1 * time.Millisecond}),
		WithoutTimeoutMiddleware(),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rrTimeout := httptest.NewRecorder()
	withTimeout.ServeHTTP(rrTimeout, req)
	if rrTimeout.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected timeout handler to fire, got %d", rrTimeout.Code)
	}

	rrNoTimeout := httptest.NewRecorder()
	withoutTimeout.ServeHTTP(rrNoTimeout, req)
	if rrNoTimeout.Code != http.StatusOK {
		t.Fatalf("expected handler to complete when timeout disabled, got %d", rrNoTimeout.Code)
	}
}

func TestNewPanicsWhenTableEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when route table is empty")
		}
	}()

	New(nil)
}

func labelHandler(label string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Handled-By", label)
		w.WriteHeader(http.StatusOK)
	})
}

func recordingMiddleware(label string, sink *[]string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*sink = append(*sink, label+"-before")
			next.ServeHTTP(w, r)
			*sink = append(*sink, label+"-after")
		})
	}
}
