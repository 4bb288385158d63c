package modloader

import "github.com/wudi/faasrun/internal/registry"

// CoreLoader resolves and loads built-in modules from the Core-Module
// Registry. A core specifier is already an id: it never needs joining with a
// base.
type CoreLoader struct{}

func (CoreLoader) Resolve(_, specifier string) (string, error) {
	return specifier, nil
}

func (CoreLoader) Load(id string) (string, error) {
	src, ok := registry.Load(id)
	if !ok {
		return "", &ErrUnknownCoreModule{Name: id}
	}
	return src, nil
}
