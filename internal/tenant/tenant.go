// Package tenant maps an inbound request's Host header to the
// SwappableRouter serving that tenant's project.
package tenant

import (
	"sync"

	"github.com/wudi/faasrun/internal/apperrors"
	"github.com/wudi/faasrun/internal/router"
)

// Registry is a thread-safe host -> *router.SwappableRouter store. It
// generalizes the gateway's per-route manager to a per-host one: each
// registered project owns exactly one SwappableRouter that its own reload
// watcher swaps independently of every other tenant's.
type Registry struct {
	mu      sync.RWMutex
	tenants map[string]*router.SwappableRouter
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tenants: make(map[string]*router.SwappableRouter)}
}

// Register binds host to sr, replacing any router previously bound to that
// host.
func (r *Registry) Register(host string, sr *router.SwappableRouter) {
	r.mu.Lock()
	r.tenants[host] = sr
	r.mu.Unlock()
}

// Deregister removes host's binding, if any.
func (r *Registry) Deregister(host string) {
	r.mu.Lock()
	delete(r.tenants, host)
	r.mu.Unlock()
}

// Lookup returns the SwappableRouter bound to host, or a HostNotFound
// AppError if no project claims it.
func (r *Registry) Lookup(host string) (*router.SwappableRouter, error) {
	r.mu.RLock()
	sr, ok := r.tenants[host]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.HostNotFound(host)
	}
	return sr, nil
}

// Hosts returns every host currently registered.
func (r *Registry) Hosts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hosts := make([]string, 0, len(r.tenants))
	for h := range r.tenants {
		hosts = append(hosts, h)
	}
	return hosts
}

// Len reports how many tenants are currently registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tenants)
}
