// Package modloader implements the three module-loading strategies (core,
// filesystem, URL) and the loader-selection logic that picks among them for
// a given specifier.
package modloader

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
)

// Loader resolves a specifier to an absolute module id and loads its source.
type Loader interface {
	Resolve(base, specifier string) (string, error)
	Load(id string) (string, error)
}

var windowsAbsPath = regexp.MustCompile(`^[a-zA-Z]:\\`)
var urlPattern = regexp.MustCompile(`^(http|https)://`)

// IsURL reports whether s parses as an absolute http(s) URL.
func IsURL(s string) bool {
	if !urlPattern.MatchString(s) {
		return false
	}
	_, err := url.Parse(s)
	return err == nil
}

// IsWindowsAbsPath reports whether s looks like a Windows absolute path
// (`C:\...`), one of the platform absolute-path patterns from the loader
// selection table.
func IsWindowsAbsPath(s string) bool {
	return windowsAbsPath.MatchString(s)
}

// IsAbsFSPath reports whether s is a platform absolute filesystem path.
func IsAbsFSPath(s string) bool {
	return filepath.IsAbs(s) || IsWindowsAbsPath(s)
}

// Select picks a Loader for specifier. base is the importing module's
// absolute id (or "" for the entry point). ignoreCore disables the
// core-module shortcut even for names the registry recognizes.
func Select(base, specifier string, ignoreCore bool, isCore func(string) bool) Loader {
	switch {
	case isCore(specifier) && !ignoreCore:
		return CoreLoader{}
	case IsURL(specifier) || (base != "" && IsURL(base)):
		return &URLLoader{}
	case IsAbsFSPath(specifier):
		return FSLoader{}
	default:
		return FSLoader{}
	}
}

// ErrUnknownCoreModule is returned by CoreLoader.Load for unregistered names.
type ErrUnknownCoreModule struct{ Name string }

func (e *ErrUnknownCoreModule) Error() string {
	return fmt.Sprintf("unknown core module: %s", e.Name)
}
