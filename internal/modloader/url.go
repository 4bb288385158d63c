package modloader

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"lukechampine.com/blake3"
)

// URLLoader resolves relative specifiers against a base URL and fetches
// remote source over HTTP, caching the response on disk keyed by the URL's
// hash. SkipCache skips the cache read on every load; a fetched body still
// refreshes the cached copy.
type URLLoader struct {
	// CacheDir holds downloaded sources, one file per URL hash. Empty means
	// the current directory's default cache location.
	CacheDir string
	// SkipCache forces a network fetch even when a cached copy exists.
	SkipCache bool

	client *http.Client
}

const defaultURLCacheDir = ".faasrun/url-cache"

func (l *URLLoader) Resolve(base, specifier string) (string, error) {
	if IsURL(specifier) {
		u, err := url.Parse(specifier)
		if err != nil {
			return "", fmt.Errorf("modloader: invalid url specifier %q: %w", specifier, err)
		}
		return u.String(), nil
	}
	if base == "" {
		return "", fmt.Errorf("modloader: relative url specifier %q without a base", specifier)
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("modloader: invalid base url %q: %w", base, err)
	}
	resolved, err := baseURL.Parse(specifier)
	if err != nil {
		return "", fmt.Errorf("modloader: cannot resolve %q against %q: %w", specifier, base, err)
	}
	return resolved.String(), nil
}

func (l *URLLoader) Load(id string) (string, error) {
	cacheDir := l.CacheDir
	if cacheDir == "" {
		cacheDir = defaultURLCacheDir
	}
	cachePath := filepath.Join(cacheDir, cacheKey(id))

	if !l.SkipCache {
		if data, err := os.ReadFile(cachePath); err == nil {
			return string(data), nil
		}
	}

	src, err := l.fetch(id)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(cacheDir, 0o755); err == nil {
		tmp := cachePath + ".tmp"
		if err := os.WriteFile(tmp, []byte(src), 0o644); err == nil {
			_ = os.Rename(tmp, cachePath)
		}
	}

	return src, nil
}

func (l *URLLoader) fetch(id string) (string, error) {
	client := l.client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Get(id)
	if err != nil {
		return "", fmt.Errorf("modloader: fetching %q: %w", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("modloader: fetching %q: status %s", id, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("modloader: reading body of %q: %w", id, err)
	}
	return string(body), nil
}

// cacheKey derives a stable, filesystem-safe cache filename from a module
// URL using the same BLAKE3 hash used for project build hashing.
func cacheKey(id string) string {
	sum := blake3.Sum256([]byte(id))
	return fmt.Sprintf("%x", sum[:16])
}
