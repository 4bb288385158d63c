package bundler

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/wudi/faasrun/internal/importmap"
	"github.com/wudi/faasrun/internal/modloader"
	"github.com/wudi/faasrun/internal/registry"
)

// Options configures a bundle run.
type Options struct {
	// ImportMap remaps bare/prefixed specifiers before loader selection.
	ImportMap *importmap.Map
	// IgnoreCoreModules disables the Core-Module Registry shortcut, forcing
	// every specifier through filesystem/URL resolution instead.
	IgnoreCoreModules bool
	// URLCacheDir overrides the on-disk cache directory used by URLLoader.
	URLCacheDir string
	// SkipURLCache forces a network re-fetch for every URL import.
	SkipURLCache bool
}

type graphModule struct {
	id      string
	body    string
	exports []exportDecl
}

// Bundle walks the module graph rooted at entry and returns the flattened
// IIFE artifact.
func Bundle(entry string, opts Options) (string, error) {
	b := &builder{
		opts:    opts,
		visited: make(map[string]bool),
		modules: make(map[string]*graphModule),
	}

	entryLoader := modloader.Select("", entry, opts.IgnoreCoreModules, registry.IsCore)
	entryID, err := entryLoader.Resolve("", entry)
	if err != nil {
		return "", fmt.Errorf("bundler: resolving entry %q: %w", entry, err)
	}

	if err := b.visit(entryID, entryLoader); err != nil {
		return "", err
	}

	entryMod := b.modules[entryID]
	if entryMod == nil {
		return "", fmt.Errorf("bundler: entry module %q was not emitted", entryID)
	}

	var sb strings.Builder
	sb.WriteString("(function(){")
	for _, id := range b.order {
		sb.WriteString(b.modules[id].body)
	}
	sb.WriteString("return{")
	for i, d := range entryMod.exports {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(d.ExportedName)
		sb.WriteString(":")
		sb.WriteString(d.LocalName)
	}
	sb.WriteString("};})();")

	return sb.String(), nil
}

type builder struct {
	opts    Options
	visited map[string]bool
	order   []string
	modules map[string]*graphModule
}

// resolveClause selects a loader for one import/export-from clause's
// specifier (applying the import map first) and returns its loader and
// resolved absolute id.
func (b *builder) resolveClause(base string, clause importClause) (modloader.Loader, string, error) {
	specifier := clause.Specifier
	if rewritten, ok := b.opts.ImportMap.Lookup(specifier); ok {
		specifier = rewritten
	}
	loader := modloader.Select(base, specifier, b.opts.IgnoreCoreModules, registry.IsCore)
	if u, ok := loader.(*modloader.URLLoader); ok {
		u.CacheDir = b.opts.URLCacheDir
		u.SkipCache = b.opts.SkipURLCache
	}
	id, err := loader.Resolve(base, specifier)
	if err != nil {
		return nil, "", fmt.Errorf("bundler: resolving %q from %q: %w", clause.Specifier, base, err)
	}
	return loader, id, nil
}

// visit loads and processes the module at id exactly once, first recursing
// into its own imports (post-order emission keeps dependencies ahead of
// dependents in the flattened scope). An import that leads back to a module
// still being processed is reported as an import-cycle error.
func (b *builder) visit(id string, loader modloader.Loader) error {
	if b.visited[id] {
		return nil
	}
	b.visited[id] = true

	src, err := loader.Load(id)
	if err != nil {
		return fmt.Errorf("bundler: loading %q: %w", id, err)
	}

	transpiled, err := transpile(id, src)
	if err != nil {
		return fmt.Errorf("bundler: transpiling %q: %w", id, err)
	}

	clauses := scanImports(transpiled)
	depIDs := make([]string, len(clauses))
	for i, clause := range clauses {
		depLoader, depID, err := b.resolveClause(id, clause)
		if err != nil {
			return err
		}
		if err := b.visit(depID, depLoader); err != nil {
			return err
		}
		depIDs[i] = depID
	}

	body := transpiled
	var reexported []exportDecl
	for i, clause := range clauses {
		depMod := b.modules[depIDs[i]]
		if depMod == nil {
			return fmt.Errorf("bundler: import cycle: %q imports %q, which is still being bundled", id, depIDs[i])
		}
		dep := depMod.exports
		var replacement string
		if clause.IsExport {
			reexported = append(reexported, reexportDecls(clause, dep)...)
		} else {
			replacement = bindImport(clause, dep)
		}
		body = strings.Replace(body, clause.Raw, replacement, 1)
	}

	body, exports := extractExports(body, len(b.order))
	exports = append(exports, reexported...)

	b.modules[id] = &graphModule{id: id, body: body, exports: exports}
	b.order = append(b.order, id)
	return nil
}

// transpile strips TypeScript/JSX syntax from src via esbuild, leaving valid
// ESM JavaScript behind. Core-module sources are already plain JS and pass
// through esbuild's transform as a no-op.
func transpile(id, src string) (string, error) {
	loader := loaderForID(id)
	result := api.Transform(src, api.TransformOptions{
		Loader: loader,
		Format: api.FormatESModule,
		Target: api.ESNext,
		JSX:    api.JSXAutomatic,
	})
	if len(result.Errors) > 0 {
		msgs := make([]string, len(result.Errors))
		for i, e := range result.Errors {
			msgs[i] = e.Text
		}
		return "", fmt.Errorf("%s: %s", id, strings.Join(msgs, "; "))
	}
	return string(result.Code), nil
}

func loaderForID(id string) api.Loader {
	switch {
	case strings.HasSuffix(id, ".tsx"):
		return api.LoaderTSX
	case strings.HasSuffix(id, ".ts"):
		return api.LoaderTS
	case strings.HasSuffix(id, ".jsx"):
		return api.LoaderJSX
	default:
		return api.LoaderJS
	}
}
