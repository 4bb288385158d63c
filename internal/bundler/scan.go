// Package bundler walks a module graph starting at an entry file, transpiles
// each module with esbuild, and emits one deterministic flat-scope artifact:
// a single IIFE with every module's top-level declarations concatenated in
// dependency order and the entry module's exports returned at the end.
package bundler

import (
	"regexp"
	"sort"
	"strings"
)

// exportDecl describes one identifier a module exports, keyed by its
// exported name, and the identifier it is bound to in the flattened scope.
type exportDecl struct {
	ExportedName string
	LocalName    string
}

// namedBinding is one entry of an `{ a, b as c }` import/export clause.
type namedBinding struct {
	// Imported is the name as exported by the dependency ("a" in "a" and in
	// "a as b").
	Imported string
	// Local is the name bound in (or, for re-exports, contributed to) the
	// importing module ("a" in "a", "b" in "a as b").
	Local string
}

// importClause is one `import ... from "spec"` or `export ... from "spec"`
// statement, in source order.
type importClause struct {
	Raw       string
	Specifier string
	IsExport  bool // export-from re-export rather than an import

	Default   string // bound name for a default import, "" if absent
	Namespace string // bound name for `* as ns`, "" if absent
	Named     []namedBinding
	StarExport bool // `export * from "s"` re-exports every binding
}

var (
	namespaceRe = regexp.MustCompile(`(?m)^\s*import\s+\*\s+as\s+(\w+)\s+from\s+["']([^"']+)["'];?\s*$`)
	defaultAndNamedRe = regexp.MustCompile(`(?m)^\s*import\s+(\w+)\s*,\s*\{([^}]*)\}\s+from\s+["']([^"']+)["'];?\s*$`)
	namedOnlyImportRe = regexp.MustCompile(`(?m)^\s*import\s+\{([^}]*)\}\s+from\s+["']([^"']+)["'];?\s*$`)
	defaultOnlyRe     = regexp.MustCompile(`(?m)^\s*import\s+(\w+)\s+from\s+["']([^"']+)["'];?\s*$`)
	bareImportRe      = regexp.MustCompile(`(?m)^\s*import\s+["']([^"']+)["'];?\s*$`)

	exportStarFromRe = regexp.MustCompile(`(?m)^\s*export\s+\*\s+from\s+["']([^"']+)["'];?\s*$`)
	exportNamedFromRe = regexp.MustCompile(`(?m)^\s*export\s+\{([^}]*)\}\s+from\s+["']([^"']+)["'];?\s*$`)

	exportDefaultNamedRe = regexp.MustCompile(`(?m)^\s*export\s+default\s+((?:async\s+)?function\*?\s+(\w+)|class\s+(\w+))`)
	exportDefaultIdentRe = regexp.MustCompile(`(?m)^\s*export\s+default\s+(\w+)\s*;\s*$`)
	exportDefaultExprRe  = regexp.MustCompile(`(?m)^\s*export\s+default\s+`)
	exportNamedDeclRe    = regexp.MustCompile(`(?m)^\s*export\s+((?:async\s+)?function\*?\s+(\w+)|const\s+(\w+)|let\s+(\w+)|var\s+(\w+)|class\s+(\w+))`)
	exportBraceRe        = regexp.MustCompile(`(?m)^\s*export\s*\{([^}]*)\}\s*;?\s*$`)
)

// scanImports finds every import and export-from statement in src, in
// source order. It intentionally does not attempt a full ECMAScript parse:
// the handler scripts this bundler targets stick to a narrow ESM subset.
func scanImports(src string) []importClause {
	var clauses []importClause

	for _, m := range namespaceRe.FindAllStringSubmatch(src, -1) {
		clauses = append(clauses, importClause{Raw: m[0], Namespace: m[1], Specifier: m[2]})
	}
	for _, m := range defaultAndNamedRe.FindAllStringSubmatch(src, -1) {
		clauses = append(clauses, importClause{Raw: m[0], Default: m[1], Named: parseNamedBindings(m[2]), Specifier: m[3]})
	}
	for _, m := range namedOnlyImportRe.FindAllStringSubmatch(src, -1) {
		clauses = append(clauses, importClause{Raw: m[0], Named: parseNamedBindings(m[1]), Specifier: m[2]})
	}
	for _, m := range defaultOnlyRe.FindAllStringSubmatch(src, -1) {
		clauses = append(clauses, importClause{Raw: m[0], Default: m[1], Specifier: m[2]})
	}
	for _, m := range bareImportRe.FindAllStringSubmatch(src, -1) {
		clauses = append(clauses, importClause{Raw: m[0], Specifier: m[1]})
	}
	for _, m := range exportStarFromRe.FindAllStringSubmatch(src, -1) {
		clauses = append(clauses, importClause{Raw: m[0], Specifier: m[1], IsExport: true, StarExport: true})
	}
	for _, m := range exportNamedFromRe.FindAllStringSubmatch(src, -1) {
		clauses = append(clauses, importClause{Raw: m[0], Specifier: m[2], IsExport: true, Named: parseNamedBindings(m[1])})
	}

	sort.SliceStable(clauses, func(i, j int) bool {
		return strings.Index(src, clauses[i].Raw) < strings.Index(src, clauses[j].Raw)
	})
	return clauses
}

func parseNamedBindings(clause string) []namedBinding {
	var out []namedBinding
	for _, item := range strings.Split(clause, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.Fields(strings.ReplaceAll(item, " as ", " "))
		imported := parts[0]
		local := imported
		if len(parts) > 1 {
			local = parts[1]
		}
		out = append(out, namedBinding{Imported: imported, Local: local})
	}
	return out
}
