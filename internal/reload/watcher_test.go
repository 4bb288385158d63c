package reload

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wudi/faasrun/internal/router"
)

func writeProject(t *testing.T, handler string) string {
	t.Helper()
	dir := t.TempDir()
	mainTS := `export async function ` + handler + `(req) {
  return { status: 200, body: "ok" };
}
`
	configYAML := "name: demo\nroutes:\n  /a:\n    - method: GET\n      handler: " + handler + "\n"

	if err := os.WriteFile(filepath.Join(dir, "main.ts"), []byte(mainTS), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestRebuildSwapsPublishedRouter(t *testing.T) {
	dir := writeProject(t, "h1")
	buildDir := filepath.Join(dir, ".faasrun", "build")

	sr, err := router.NewSwappableRouter("", map[string][]router.RouteEntry{
		"/a": {{Method: http.MethodGet, Handler: "h1"}},
	})
	if err != nil {
		t.Fatalf("NewSwappableRouter: %v", err)
	}

	w, err := NewWatcher(dir, buildDir, sr, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	// Exercise the rebuild path directly rather than waiting on a real
	// filesystem debounce timer.
	w.rebuild()

	snap := sr.Load()
	if snap.Code == "" {
		t.Fatal("expected rebuild to publish a non-empty artifact")
	}
	if _, err := snap.Load(http.MethodGet, "/a"); err != nil {
		t.Fatalf("expected route /a to still resolve after rebuild: %v", err)
	}
}

func TestRelevantExtensions(t *testing.T) {
	cases := map[string]bool{
		"main.ts":    true,
		"main.js":    true,
		"config.yml": true,
		"config.yaml": true,
		"data.json":  true,
		"notes.txt":  false,
		"README.md":  false,
	}
	for name, want := range cases {
		if got := relevant(name); got != want {
			t.Errorf("relevant(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestStartWatchesSubdirectoriesRecursively(t *testing.T) {
	dir := writeProject(t, "h1")
	if err := os.Mkdir(filepath.Join(dir, "lib"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "lib", "helper.ts"), []byte("export const n = 1;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	buildDir := filepath.Join(dir, ".faasrun", "build")

	sr, err := router.NewSwappableRouter("", map[string][]router.RouteEntry{
		"/a": {{Method: http.MethodGet, Handler: "h1"}},
	})
	if err != nil {
		t.Fatalf("NewSwappableRouter: %v", err)
	}

	w, err := NewWatcher(dir, buildDir, sr, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.SetDebounce(20 * time.Millisecond)
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	before := sr.Load().Code

	// Edit a file in a subdirectory discovered after construction, not the
	// project root itself, to exercise the recursive Add path.
	if err := os.WriteFile(filepath.Join(dir, "lib", "helper.ts"), []byte("export const n = 2;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if sr.Load().Code != before {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("expected a change under a subdirectory to trigger a rebuild")
}

func TestSetDebounceOverridesDefault(t *testing.T) {
	dir := writeProject(t, "h1")
	sr, _ := router.NewSwappableRouter("", map[string][]router.RouteEntry{})
	w, err := NewWatcher(dir, filepath.Join(dir, ".build"), sr, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.SetDebounce(10 * time.Millisecond)
	if w.debounce != 10*time.Millisecond {
		t.Fatalf("expected debounce override to take effect, got %v", w.debounce)
	}
}
