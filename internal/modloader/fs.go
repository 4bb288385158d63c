package modloader

import (
	"os"
	"path/filepath"
)

// FSLoader resolves specifiers against the filesystem, relative to the
// importing module's directory, and reads source text from disk.
type FSLoader struct{}

func (FSLoader) Resolve(base, specifier string) (string, error) {
	if filepath.IsAbs(specifier) {
		return filepath.Clean(specifier), nil
	}
	dir := "."
	if base != "" {
		dir = filepath.Dir(base)
	}
	abs, err := filepath.Abs(filepath.Join(dir, specifier))
	if err != nil {
		return "", err
	}
	return withDefaultExt(abs)
}

func (FSLoader) Load(id string) (string, error) {
	data, err := os.ReadFile(id)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// withDefaultExt tries .ts then .js on an extension-less path and returns the
// first candidate that exists, or the path unchanged if neither does,
// mirroring the original bundler's bare-specifier convenience (import "./foo"
// resolving to "./foo.ts").
func withDefaultExt(path string) (string, error) {
	if filepath.Ext(path) != "" {
		return path, nil
	}
	for _, ext := range []string{".ts", ".js"} {
		if _, err := os.Stat(path + ext); err == nil {
			return path + ext, nil
		}
	}
	return path, nil
}
