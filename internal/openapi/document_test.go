package openapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSpecContainsCustomMetadata(t *testing.T) {
	doc := NewDocument(DefaultConfig())
	spec := doc.Spec()

	if spec.Info.Title != "Nowcasting API" {
		t.Fatalf("unexpected title: %q", spec.Info.Title)
	}
	if spec.Info.Version != "0.2.27" {
		t.Fatalf("unexpected version: %q", spec.Info.Version)
	}
	if spec.Info.Contact == nil || spec.Info.Contact.Name != "Open Climate Fix" {
		t.Fatalf("unexpected contact: %+v", spec.Info.Contact)
	}
	if spec.Info.License == nil || spec.Info.License.Name != "MIT License" {
		t.Fatalf("unexpected license: %+v", spec.Info.License)
	}

	logo, ok := spec.Info.Extensions["x-logo"].(map[string]any)
	if !ok {
		t.Fatalf("expected x-logo extension, got %+v", spec.Info.Extensions)
	}
	if logo["url"] != "https://www.nowcasting.io/nowcasting.svg" {
		t.Fatalf("unexpected logo url: %v", logo["url"])
	}
}

func TestSpecIsCachedPerDocument(t *testing.T) {
	doc := NewDocument(DefaultConfig())

	first := doc.Spec()
	second := doc.Spec()
	if first != second {
		t.Fatal("expected repeated calls to return the cached spec")
	}

	other := NewDocument(DefaultConfig())
	if other.Spec() == first {
		t.Fatal("expected independent documents to build independent specs")
	}
}

func TestSpecCoversMountedRoutes(t *testing.T) {
	spec := NewDocument(DefaultConfig()).Spec()

	for _, path := range []string{
		"/",
		"/v0/solar/GB/national/forecast",
		"/v0/solar/GB/national/pvlive",
		"/v0/solar/GB/gsp/forecast/all",
		"/v0/solar/GB/gsp/forecast/all/",
		"/v0/solar/GB/gsp/forecast/{gsp_id}",
		"/v0/solar/GB/gsp/pvlive/all",
		"/v0/solar/GB/gsp/pvlive/{gsp_id}",
		"/v0/solar/GB/status",
		"/v0/system/GB/gsp",
		"/v0/system/GB/gsp/{gsp_id}",
	} {
		if spec.Paths.Value(path) == nil {
			t.Fatalf("expected path %s in document", path)
		}
	}

	// Endpoints excluded from the schema must stay excluded.
	for _, path := range []string{"/favicon.ico", "/newdocs", "/metrics", "/healthz", "/readyz"} {
		if spec.Paths.Value(path) != nil {
			t.Fatalf("expected path %s to be excluded from document", path)
		}
	}
}

func TestServeJSON(t *testing.T) {
	doc := NewDocument(DefaultConfig())
	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	rr := httptest.NewRecorder()

	doc.ServeJSON(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type: %q", got)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"x-logo"`) {
		t.Fatalf("expected x-logo in serialized document, got: %s", body)
	}
}
