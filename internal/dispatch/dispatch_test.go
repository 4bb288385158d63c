package dispatch

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wudi/faasrun/internal/router"
	"github.com/wudi/faasrun/internal/tenant"
)

const echoArtifact = `(function(){
	async function hello(req){
		return {
			status: 200,
			headers: { "content-type": "application/json" },
			body: JSON.stringify(req.params)
		};
	}
	return { hello: hello };
})();`

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	sr, err := router.NewSwappableRouter(echoArtifact, map[string][]router.RouteEntry{
		"/api/hello/{id}": {{Method: http.MethodGet, Handler: "hello"}},
	})
	if err != nil {
		t.Fatalf("NewSwappableRouter: %v", err)
	}
	reg := tenant.NewRegistry()
	reg.Register("localhost", sr)
	return New(reg, nil)
}

func TestServeHTTPSimpleMatch(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "http://localhost/api/hello/42", nil)
	req.Host = "localhost"
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"id":"42"`) {
		t.Fatalf("expected body to echo id=42, got %q", rec.Body.String())
	}
}

func TestServeHTTPMethodMismatchIs405(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "http://localhost/api/hello/42", nil)
	req.Host = "localhost"
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestServeHTTPHostMismatchIs404(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "http://other.example/api/hello/42", nil)
	req.Host = "other.example"
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "host not found" {
		t.Fatalf("expected literal body %q, got %q", "host not found", got)
	}
}

func TestServeHTTPStripsPortFromHost(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "http://localhost:8080/api/hello/1", nil)
	req.Host = "localhost:8080"
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
