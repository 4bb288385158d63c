// Package project implements the content-addressed project builder: it
// hashes a project's source tree, bundles main.ts once per distinct hash,
// and caches the resulting artifact (plus its route config) on disk.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"lukechampine.com/blake3"

	"github.com/wudi/faasrun/internal/bundler"
)

// BuildDir is the default cache directory for bundled artifacts, relative
// to the project root.
const BuildDir = ".build"

var hashedExts = []string{".ts", ".js", ".json"}

// Result is the outcome of a successful Build: absolute paths to the
// bundled artifact and its sibling route-config copy.
type Result struct {
	Hash         string
	ArtifactPath string
	ConfigPath   string
	// Code is the bundled artifact's source text.
	Code string
	// FromCache is true when Build returned a previously cached artifact
	// without re-bundling.
	FromCache bool
}

// Build hashes every {ts,js,json} file under dir, and returns the cached
// artifact for that hash if one exists. Otherwise it bundles dir's
// "main.ts" entry point, writes the artifact and a copy of dir's
// "config.yml" under buildDir keyed by the hash, and returns the fresh
// result. buildDir defaults to BuildDir when empty.
func Build(dir, buildDir string) (*Result, error) {
	if buildDir == "" {
		buildDir = filepath.Join(dir, BuildDir)
	}

	hash, err := hashProject(dir)
	if err != nil {
		return nil, fmt.Errorf("project: hashing %s: %w", dir, err)
	}

	artifactPath := filepath.Join(buildDir, hash+".mjs")
	configPath := filepath.Join(buildDir, hash+".yml")

	if code, err := os.ReadFile(artifactPath); err == nil {
		return &Result{Hash: hash, ArtifactPath: artifactPath, ConfigPath: configPath, Code: string(code), FromCache: true}, nil
	}

	code, err := bundler.Bundle(filepath.Join(dir, "main.ts"), bundler.Options{})
	if err != nil {
		return nil, fmt.Errorf("project: bundling %s: %w", dir, err)
	}

	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return nil, fmt.Errorf("project: creating build dir %s: %w", buildDir, err)
	}
	if err := writeFileAtomic(artifactPath, []byte(code)); err != nil {
		return nil, fmt.Errorf("project: writing artifact: %w", err)
	}
	if err := copyConfigAtomic(filepath.Join(dir, "config.yml"), configPath); err != nil {
		return nil, fmt.Errorf("project: copying config: %w", err)
	}

	return &Result{Hash: hash, ArtifactPath: artifactPath, ConfigPath: configPath, Code: code}, nil
}

// hashProject computes the BLAKE3 hash of the concatenated contents of
// every {ts,js,json} file under dir, walked in sorted path order so the
// hash is stable across platforms and directory-read orders, and returns
// it hex-encoded and truncated to 16 characters.
func hashProject(dir string) (string, error) {
	files, err := collectSourceFiles(dir)
	if err != nil {
		return "", err
	}

	h := blake3.New(32, nil)
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return "", err
		}
		if _, err := h.Write(data); err != nil {
			return "", err
		}
	}

	sum := h.Sum(nil)
	return fmt.Sprintf("%x", sum)[:16], nil
}

func collectSourceFiles(dir string) ([]string, error) {
	set := make(map[string]struct{})
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == ".faasrun" || info.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		for _, want := range hashedExts {
			if ext == want {
				set[path] = struct{}{}
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(set))
	for f := range set {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := fmt.Sprintf("%s.tmp-%d", path, os.Getpid())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func copyConfigAtomic(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return writeFileAtomic(dst, data)
}
