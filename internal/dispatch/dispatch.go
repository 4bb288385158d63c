// Package dispatch wires the tenant registry, router snapshot, and script
// worker together behind a single net/http.Handler: one request in, one
// response out, with every internal failure mode mapped through
// internal/apperrors onto an HTTP status.
package dispatch

import (
	"io"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/wudi/faasrun/internal/apperrors"
	"github.com/wudi/faasrun/internal/tenant"
	"github.com/wudi/faasrun/internal/worker"
)

// Handler dispatches inbound requests to the registered tenant's current
// router snapshot and script worker.
type Handler struct {
	Registry *tenant.Registry
	Logger   *zap.Logger
}

// New builds a Handler bound to registry. A nil logger falls back to
// zap.NewNop().
func New(registry *tenant.Registry, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Registry: registry, Logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	host := r.Host
	if hostOnly, _, err := net.SplitHostPort(host); err == nil {
		host = hostOnly
	}

	sr, err := h.Registry.Lookup(host)
	if err != nil {
		h.writeError(w, err)
		return
	}

	snap := sr.Load()
	match, err := snap.Load(r.Method, r.URL.Path)
	if err != nil {
		h.writeError(w, err)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, apperrors.InvalidBody(err))
		return
	}

	req := worker.Req{
		Method:  r.Method,
		URL:     r.URL.String(),
		Query:   flattenQuery(r.URL.Query()),
		Params:  match.Params,
		Headers: flattenHeaders(r.Header),
	}
	if len(body) > 0 {
		s := string(body)
		req.Body = &s
	}

	sw, err := worker.New(snap.Code, func(msg string) {
		h.Logger.Info("script log", zap.String("handler", match.Handler), zap.String("message", msg))
	})
	if err != nil {
		h.writeError(w, apperrors.ScriptError(err))
		return
	}

	res, err := sw.Run(match.Handler, req)
	if err != nil {
		h.writeError(w, apperrors.ScriptError(err))
		return
	}

	for k, v := range res.Headers {
		w.Header().Set(k, v)
	}
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if res.Body != nil {
		_, _ = w.Write([]byte(*res.Body))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	ae, ok := apperrors.As(err)
	if !ok {
		ae = apperrors.ScriptError(err)
	}
	h.Logger.Warn("request failed", zap.String("code", ae.Code), zap.Int("status", ae.Status), zap.Error(err))
	ae.WriteResponse(w)
}

func flattenQuery(values map[string][]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}
