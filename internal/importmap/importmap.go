// Package importmap implements a subset of the WICG import-maps proposal:
// an ordered list of (prefix, target) rewrites applied to module specifiers
// before resolution.
package importmap

import (
	"os"
	"path/filepath"
	"strings"
)

// Entry is a single (prefix, target) mapping. Order matters: the first
// entry whose key is a prefix of the specifier wins.
type Entry struct {
	Base   string
	Target string
}

// Map is an ordered sequence of import-map entries.
type Map struct {
	entries []Entry
}

// New builds a Map from an ordered entry list.
func New(entries []Entry) *Map {
	m := &Map{entries: make([]Entry, len(entries))}
	copy(m.entries, entries)
	return m
}

// Lookup applies the import-map rewrite rules to specifier. It returns the
// rewritten specifier and true, or ("", false) if no entry matches or the
// WICG extension-less edge case applies.
func (m *Map) Lookup(specifier string) (string, bool) {
	if m == nil {
		return "", false
	}

	var base, target string
	found := false
	for _, e := range m.entries {
		if strings.HasPrefix(specifier, e.Base) {
			base, target = e.Base, e.Target
			found = true
			break
		}
	}
	if !found {
		return "", false
	}

	if strings.HasPrefix(target, "./") {
		cwd, err := os.Getwd()
		if err == nil {
			target = strings.Replace(target, ".", cwd, 1)
		}
	}

	ext := filepath.Ext(specifier)
	if ext == "" {
		return strings.Replace(specifier, base, target, 1), true
	}

	// WICG extension-less import edge case: if specifier is literally the
	// import-map key re-extended with specifier's extension, there is no
	// rewrite.
	if specifier == withExtension(base, ext) {
		return "", false
	}
	return strings.Replace(specifier, base, target, 1), true
}

// withExtension replaces any existing extension on path's final component
// with ext (ext already includes the leading dot, as returned by
// filepath.Ext).
func withExtension(path, ext string) string {
	dir, file := filepath.Split(path)
	if i := strings.LastIndex(file, "."); i > 0 {
		file = file[:i]
	}
	return dir + file + ext
}
