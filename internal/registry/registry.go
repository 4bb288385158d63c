// Package registry holds the core-module registry: a static, read-only
// mapping from built-in module name to embedded source text.
package registry

import "embed"

//go:embed js/*.js
var coreFS embed.FS

// names maps a core-module specifier to the embedded file that backs it.
// Keys are exact strings; there is no normalization.
var names = map[string]string{
	"console":     "js/console.js",
	"events":      "js/events.js",
	"process":     "js/process.js",
	"assert":      "js/assert.js",
	"util":        "js/util.js",
	"fs":          "js/fs.js",
	"http":        "js/http.js",
	"@web/fetch":  "js/fetch.js",
}

var sources map[string]string

func init() {
	sources = make(map[string]string, len(names))
	for name, path := range names {
		data, err := coreFS.ReadFile(path)
		if err != nil {
			// Embedded at build time; a missing file is a programming error.
			panic("registry: missing embedded core module " + name + ": " + err.Error())
		}
		sources[name] = string(data)
	}
}

// IsCore reports whether name matches a key in the registry.
func IsCore(name string) bool {
	_, ok := sources[name]
	return ok
}

// Load returns the source text for a core module. ok is false for unknown
// names.
func Load(name string) (string, bool) {
	src, ok := sources[name]
	return src, ok
}
