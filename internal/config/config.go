// Package config decodes a project's config.yml: the routing table every
// tenant publishes, plus the ambient logging and build settings the
// distilled on-disk format never had to name.
package config

import (
	"fmt"
	"net/http"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/wudi/faasrun/internal/router"
)

// RouteEntry binds one HTTP method to one exported handler name within a
// single path pattern.
type RouteEntry struct {
	Method  string `yaml:"method"`
	Handler string `yaml:"handler"`
}

var validMethods = map[string]bool{
	http.MethodGet: true, http.MethodHead: true, http.MethodPost: true,
	http.MethodPut: true, http.MethodPatch: true, http.MethodDelete: true,
	http.MethodConnect: true, http.MethodOptions: true, http.MethodTrace: true,
}

// LoggingConfig configures the process-wide logger. Absent fields fall back
// to Default's values.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Output     string `yaml:"output"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// BuildConfig configures where built artifacts are cached.
type BuildConfig struct {
	Dir string `yaml:"dir"`
}

// ProjectConfig is the decoded form of config.yml.
type ProjectConfig struct {
	Name    string                  `yaml:"name"`
	Host    string                  `yaml:"host"`
	Routes  map[string][]RouteEntry `yaml:"routes"`
	Logging LoggingConfig           `yaml:"logging"`
	Build   BuildConfig             `yaml:"build"`
}

// RouterEntries converts the decoded route map into the form
// router.Build/SwappableRouter expects.
func (c *ProjectConfig) RouterEntries() map[string][]router.RouteEntry {
	out := make(map[string][]router.RouteEntry, len(c.Routes))
	for path, entries := range c.Routes {
		re := make([]router.RouteEntry, len(entries))
		for i, e := range entries {
			re[i] = router.RouteEntry{Method: e.Method, Handler: e.Handler}
		}
		out[path] = re
	}
	return out
}

// Default returns a ProjectConfig with every ambient field at its documented
// default: logging to stdout at info level, build artifacts under .build,
// and a single "localhost" tenant.
func Default() *ProjectConfig {
	return &ProjectConfig{
		Host:   "localhost",
		Routes: map[string][]RouteEntry{},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stdout",
		},
		Build: BuildConfig{
			Dir: ".build",
		},
	}
}

// Load reads and parses path, applying defaults for any ambient field the
// file leaves unset.
func Load(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes into a ProjectConfig, validating route methods
// and rejecting duplicate (path, method) bindings.
func Parse(data []byte) (*ProjectConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing yaml: %w", err)
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Build.Dir == "" {
		cfg.Build.Dir = ".build"
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *ProjectConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("config: name is required")
	}
	for path, entries := range cfg.Routes {
		seen := make(map[string]bool, len(entries))
		for _, e := range entries {
			method := e.Method
			if !validMethods[method] {
				return fmt.Errorf("config: route %q: invalid method %q", path, e.Method)
			}
			if seen[method] {
				return fmt.Errorf("config: route %q: duplicate method %q", path, method)
			}
			seen[method] = true
			if e.Handler == "" {
				return fmt.Errorf("config: route %q: handler is required for method %q", path, method)
			}
		}
	}
	return nil
}
