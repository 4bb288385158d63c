package modloader

import "testing"

func isCoreStub(name string) bool {
	return name == "console" || name == "events"
}

func TestSelectCoreWins(t *testing.T) {
	l := Select("", "console", false, isCoreStub)
	if _, ok := l.(CoreLoader); !ok {
		t.Fatalf("expected CoreLoader, got %T", l)
	}
}

func TestSelectIgnoreCoreFallsThrough(t *testing.T) {
	l := Select("", "console", true, isCoreStub)
	if _, ok := l.(CoreLoader); ok {
		t.Fatal("expected ignoreCore=true to skip CoreLoader")
	}
}

func TestSelectURLSpecifier(t *testing.T) {
	l := Select("", "https://example.com/mod.ts", false, isCoreStub)
	if _, ok := l.(*URLLoader); !ok {
		t.Fatalf("expected *URLLoader, got %T", l)
	}
}

func TestSelectURLBasePropagates(t *testing.T) {
	l := Select("https://example.com/entry.ts", "./sibling.ts", false, isCoreStub)
	if _, ok := l.(*URLLoader); !ok {
		t.Fatalf("expected *URLLoader when base is a URL, got %T", l)
	}
}

func TestSelectRelativeSpecifierIsFS(t *testing.T) {
	l := Select("/project/entry.ts", "./handlers/foo.ts", false, isCoreStub)
	if _, ok := l.(FSLoader); !ok {
		t.Fatalf("expected FSLoader, got %T", l)
	}
}

func TestSelectAbsPathIsFS(t *testing.T) {
	l := Select("", "/abs/path/mod.ts", false, isCoreStub)
	if _, ok := l.(FSLoader); !ok {
		t.Fatalf("expected FSLoader, got %T", l)
	}
}

func TestIsURL(t *testing.T) {
	cases := map[string]bool{
		"https://example.com/a.ts": true,
		"http://example.com/a.ts":  true,
		"./relative.ts":            false,
		"@lib/thing":               false,
		"/abs/path.ts":             false,
	}
	for in, want := range cases {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCoreLoaderResolveAndLoad(t *testing.T) {
	var l CoreLoader
	id, err := l.Resolve("", "console")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != "console" {
		t.Fatalf("expected id to equal specifier, got %q", id)
	}
	src, err := l.Load(id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if src == "" {
		t.Fatal("expected non-empty source")
	}
}

func TestCoreLoaderUnknown(t *testing.T) {
	var l CoreLoader
	if _, err := l.Load("not-a-module"); err == nil {
		t.Fatal("expected an error for an unknown core module")
	}
}
