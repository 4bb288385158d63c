package tenant

import (
	"net/http"
	"testing"

	"github.com/wudi/faasrun/internal/apperrors"
	"github.com/wudi/faasrun/internal/router"
)

func mustRouter(t *testing.T, handler string) *router.SwappableRouter {
	t.Helper()
	sr, err := router.NewSwappableRouter("code", map[string][]router.RouteEntry{
		"/hello": {{Method: http.MethodGet, Handler: handler}},
	})
	if err != nil {
		t.Fatalf("NewSwappableRouter: %v", err)
	}
	return sr
}

func TestRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	reg.Register("a.example.com", mustRouter(t, "a-hello"))

	sr, err := reg.Lookup("a.example.com")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	m, err := sr.Load().Load(http.MethodGet, "/hello")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Handler != "a-hello" {
		t.Fatalf("expected a-hello, got %q", m.Handler)
	}
}

func TestLookupUnknownHostIs404(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Lookup("missing.example.com")
	ae, ok := apperrors.As(err)
	if !ok {
		t.Fatalf("expected an *AppError, got %v", err)
	}
	if ae.Code != "host_not_found" {
		t.Fatalf("expected host_not_found, got %q", ae.Code)
	}
}

func TestRegisterReplacesExisting(t *testing.T) {
	reg := NewRegistry()
	reg.Register("a.example.com", mustRouter(t, "v1"))
	reg.Register("a.example.com", mustRouter(t, "v2"))

	sr, err := reg.Lookup("a.example.com")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	m, _ := sr.Load().Load(http.MethodGet, "/hello")
	if m.Handler != "v2" {
		t.Fatalf("expected v2, got %q", m.Handler)
	}
}

func TestDeregister(t *testing.T) {
	reg := NewRegistry()
	reg.Register("a.example.com", mustRouter(t, "hello"))
	reg.Deregister("a.example.com")

	if _, err := reg.Lookup("a.example.com"); err == nil {
		t.Fatal("expected lookup to fail after deregistering")
	}
}

func TestHostsAndLen(t *testing.T) {
	reg := NewRegistry()
	reg.Register("a.example.com", mustRouter(t, "a"))
	reg.Register("b.example.com", mustRouter(t, "b"))

	if reg.Len() != 2 {
		t.Fatalf("expected 2 tenants, got %d", reg.Len())
	}
	hosts := reg.Hosts()
	if len(hosts) != 2 {
		t.Fatalf("expected 2 hosts, got %d", len(hosts))
	}
}
