package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"main.ts": `export default async function handler() {
  return { status: 200, body: "ok" };
}`,
		"config.yml": "name: demo\nroutes:\n  - method: GET\n    handler: handler\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestBuildProducesArtifactAndConfig(t *testing.T) {
	dir := writeProject(t)
	buildDir := filepath.Join(dir, BuildDir)

	res, err := Build(dir, buildDir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.FromCache {
		t.Fatal("expected a fresh build, not a cache hit")
	}
	if _, err := os.Stat(res.ArtifactPath); err != nil {
		t.Fatalf("expected artifact file to exist: %v", err)
	}
	if _, err := os.Stat(res.ConfigPath); err != nil {
		t.Fatalf("expected config copy to exist: %v", err)
	}
	if len(res.Hash) != 16 {
		t.Fatalf("expected a 16-character hash, got %q", res.Hash)
	}
}

func TestBuildIsCachedOnUnchangedSource(t *testing.T) {
	dir := writeProject(t)
	buildDir := filepath.Join(dir, BuildDir)

	first, err := Build(dir, buildDir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := Build(dir, buildDir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !second.FromCache {
		t.Fatal("expected the second build to hit the cache")
	}
	if first.Hash != second.Hash {
		t.Fatalf("expected a stable hash, got %q then %q", first.Hash, second.Hash)
	}
}

func TestBuildHashChangesWithSource(t *testing.T) {
	dir := writeProject(t)
	buildDir := filepath.Join(dir, BuildDir)

	first, err := Build(dir, buildDir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "main.ts"), []byte(`export default async function handler() {
  return { status: 200, body: "changed" };
}`), 0o644); err != nil {
		t.Fatal(err)
	}

	second, err := Build(dir, buildDir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if first.Hash == second.Hash {
		t.Fatal("expected the hash to change after editing main.ts")
	}
}
