// Package router wraps httprouter with the path-pattern translation, method
// table, and lock-free hot-swap semantics the dispatcher needs: a handler
// lookup must never block a concurrent config reload, and a reload must
// never leave an in-flight request looking at half-updated state.
package router

import (
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/julienschmidt/httprouter"

	"github.com/wudi/faasrun/internal/apperrors"
)

// MethodRoute holds the handler name bound to each HTTP method at one route
// path. An empty string means that method is not bound for this path.
type MethodRoute struct {
	Get     string
	Head    string
	Delete  string
	Options string
	Patch   string
	Post    string
	Put     string
	Trace   string
	Connect string
}

func (m *MethodRoute) set(method, handler string) {
	switch method {
	case http.MethodGet:
		m.Get = handler
	case http.MethodHead:
		m.Head = handler
	case http.MethodDelete:
		m.Delete = handler
	case http.MethodOptions:
		m.Options = handler
	case http.MethodPatch:
		m.Patch = handler
	case http.MethodPost:
		m.Post = handler
	case http.MethodPut:
		m.Put = handler
	case http.MethodTrace:
		m.Trace = handler
	case http.MethodConnect:
		m.Connect = handler
	}
}

func (m *MethodRoute) get(method string) (string, bool) {
	var v string
	switch method {
	case http.MethodGet:
		v = m.Get
	case http.MethodHead:
		v = m.Head
	case http.MethodDelete:
		v = m.Delete
	case http.MethodOptions:
		v = m.Options
	case http.MethodPatch:
		v = m.Patch
	case http.MethodPost:
		v = m.Post
	case http.MethodPut:
		v = m.Put
	case http.MethodTrace:
		v = m.Trace
	case http.MethodConnect:
		v = m.Connect
	default:
		return "", false
	}
	return v, v != ""
}

// RouteEntry is one (method, handler) pair bound to a route path.
type RouteEntry struct {
	Method  string
	Handler string
}

// Match is the outcome of a successful route lookup: the bound handler name
// plus the path's captured parameters.
type Match struct {
	Handler string
	Params  map[string]string
}

var allMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodConnect,
	http.MethodOptions, http.MethodTrace,
}

// AppRouterInner is one immutable, fully-built routing snapshot: the
// bundled script artifact it was built against, and the compiled path
// table. A dispatcher pins one AppRouterInner for the life of a request so
// every lookup during that request sees a single consistent snapshot.
type AppRouterInner struct {
	Code   string
	router *httprouter.Router
}

// Load resolves method and path against this snapshot. It never mutates
// shared state and is safe to call concurrently from any number of
// goroutines.
func (a *AppRouterInner) Load(method, path string) (Match, error) {
	handle, ps, _ := a.router.Lookup(method, path)
	if handle == nil {
		found := false
		for _, m := range allMethods {
			if h, _, _ := a.router.Lookup(m, path); h != nil {
				found = true
				break
			}
		}
		if !found {
			return Match{}, apperrors.RoutePathNotFound(path)
		}
		return Match{}, apperrors.RouteMethodNotAllowed(method)
	}

	box := &handlerBox{}
	handle(box, nil, ps)

	params := make(map[string]string, len(ps))
	for _, p := range ps {
		params[p.Key] = p.Value
	}
	return Match{Handler: box.name, Params: params}, nil
}

// handlerBox is a throwaway http.ResponseWriter used only so a registered
// httprouter.Handle can report the handler name it closes over back to
// Load without ever writing a real response.
type handlerBox struct {
	name string
}

func (h *handlerBox) Header() http.Header        { return http.Header{} }
func (h *handlerBox) Write(b []byte) (int, error) { return len(b), nil }
func (h *handlerBox) WriteHeader(int)             {}

func newHandle(handlerName string) httprouter.Handle {
	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		if box, ok := w.(*handlerBox); ok {
			box.name = handlerName
		}
	}
}

// Build compiles routes into a fresh AppRouterInner bound to code. Route
// paths use `{name}` for a single segment capture and `{*name}` for a
// catch-all, translated to httprouter's native `:name`/`*name` syntax.
//
// httprouter panics on structural pattern conflicts (e.g. a static and a
// wildcard segment competing at the same position) instead of returning an
// error. A colliding pattern is a build-time error here, not a crash: Build
// recovers any such panic and reports it through the normal error return, so
// a bad config.yml picked up mid-reload leaves the previous snapshot live
// instead of taking the process down.
func Build(code string, routes map[string][]RouteEntry) (inner *AppRouterInner, err error) {
	defer func() {
		if r := recover(); r != nil {
			inner, err = nil, fmt.Errorf("router: colliding route pattern: %v", r)
		}
	}()

	hr := httprouter.New()
	hr.HandleMethodNotAllowed = false

	byPath := make(map[string]*MethodRoute)
	for path, entries := range routes {
		mr, ok := byPath[path]
		if !ok {
			mr = &MethodRoute{}
			byPath[path] = mr
		}
		for _, e := range entries {
			mr.set(e.Method, e.Handler)
		}
	}

	for path, mr := range byPath {
		translated := translatePath(path)
		for _, method := range allMethods {
			handlerName, ok := mr.get(method)
			if !ok {
				continue
			}
			hr.Handle(method, translated, newHandle(handlerName))
		}
	}

	return &AppRouterInner{Code: code, router: hr}, nil
}

// translatePath rewrites `{name}` to `:name` and `{*name}` to `*name`.
func translatePath(path string) string {
	var sb strings.Builder
	for i := 0; i < len(path); i++ {
		if path[i] != '{' {
			sb.WriteByte(path[i])
			continue
		}
		end := strings.IndexByte(path[i:], '}')
		if end == -1 {
			sb.WriteByte(path[i])
			continue
		}
		name := path[i+1 : i+end]
		if strings.HasPrefix(name, "*") {
			sb.WriteByte('*')
			sb.WriteString(name[1:])
		} else {
			sb.WriteByte(':')
			sb.WriteString(name)
		}
		i += end
	}
	return sb.String()
}

// SwappableRouter publishes AppRouterInner snapshots behind an
// atomic.Pointer: readers (Load) never block, and a writer (Swap) never
// blocks readers either — the old snapshot simply stays reachable until
// every in-flight request holding it finishes.
type SwappableRouter struct {
	ptr atomic.Pointer[AppRouterInner]
}

// NewSwappableRouter builds the initial snapshot and publishes it.
func NewSwappableRouter(code string, routes map[string][]RouteEntry) (*SwappableRouter, error) {
	inner, err := Build(code, routes)
	if err != nil {
		return nil, err
	}
	sr := &SwappableRouter{}
	sr.ptr.Store(inner)
	return sr, nil
}

// Load returns the currently published snapshot. Callers should pin the
// returned pointer for the duration of one request rather than re-calling
// Load mid-request, so a concurrent Swap cannot produce inconsistent
// results within a single request.
func (sr *SwappableRouter) Load() *AppRouterInner {
	return sr.ptr.Load()
}

// Swap builds a new snapshot and atomically publishes it. In-flight
// requests already holding the previous snapshot are unaffected.
func (sr *SwappableRouter) Swap(code string, routes map[string][]RouteEntry) error {
	inner, err := Build(code, routes)
	if err != nil {
		return err
	}
	sr.ptr.Store(inner)
	return nil
}
