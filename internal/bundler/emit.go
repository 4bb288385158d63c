package bundler

import (
	"fmt"
	"strings"
)

// extractExports rewrites export statements in src into plain declarations
// (export-from re-exports are left untouched here; the graph walker strips
// those once it knows the dependency's export table) and returns the
// module's own export table in a fixed order (the default export first, then
// named declarations, then `export { ... }` lists, each in source order),
// which keeps the final artifact deterministic across runs. idx is this module's position
// in the bundle, used to build a collision-free synthetic name for
// anonymous default exports.
func extractExports(src string, idx int) (string, []exportDecl) {
	var decls []exportDecl

	if loc := exportDefaultNamedRe.FindStringSubmatchIndex(src); loc != nil {
		sub := exportDefaultNamedRe.FindStringSubmatch(src)
		name := firstNonEmpty(sub[2], sub[3])
		// Strip the leading "export default " (loc[0]:loc[2] covers
		// "export default ", loc[2] is where the declaration, starting with
		// async, function or class, begins).
		src = src[:loc[0]] + src[loc[2]:]
		decls = append(decls, exportDecl{ExportedName: "default", LocalName: name})
	} else if loc := exportDefaultIdentRe.FindStringSubmatchIndex(src); loc != nil {
		// "export default someExistingIdentifier;" needs no new binding at
		// all: the identifier is already declared in this module's scope.
		name := src[loc[2]:loc[3]]
		src = src[:loc[0]] + src[loc[1]:]
		decls = append(decls, exportDecl{ExportedName: "default", LocalName: name})
	} else if loc := exportDefaultExprRe.FindStringIndex(src); loc != nil {
		synthetic := fmt.Sprintf("__default_%d", idx)
		src = src[:loc[0]] + "const " + synthetic + " = " + src[loc[1]:]
		decls = append(decls, exportDecl{ExportedName: "default", LocalName: synthetic})
	}

	src = exportNamedDeclRe.ReplaceAllStringFunc(src, func(m string) string {
		sub := exportNamedDeclRe.FindStringSubmatch(m)
		name := firstNonEmpty(sub[2], sub[3], sub[4], sub[5], sub[6])
		if name != "" {
			decls = append(decls, exportDecl{ExportedName: name, LocalName: name})
		}
		// m may start with whitespace (e.g. the newline left behind by a
		// removed import line), so drop the first "export" wherever it sits.
		i := strings.Index(m, "export")
		return m[:i] + strings.TrimLeft(m[i+len("export"):], " \t\r\n")
	})

	src = exportBraceRe.ReplaceAllStringFunc(src, func(m string) string {
		sub := exportBraceRe.FindStringSubmatch(m)
		for _, b := range parseNamedBindings(sub[1]) {
			decls = append(decls, exportDecl{ExportedName: b.Local, LocalName: b.Imported})
		}
		return ""
	})

	return src, decls
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// lookupExport finds the export table entry for exportedName, "" if absent.
func lookupExport(exports []exportDecl, exportedName string) (string, bool) {
	for _, d := range exports {
		if d.ExportedName == exportedName {
			return d.LocalName, true
		}
	}
	return "", false
}

// bindImport turns one import/export-from clause into the statement(s) that
// belong in its place once the dependency's export table (dep) is known. An
// import whose local name already matches the dependency's identifier needs
// no binding at all, since both sides share the same flattened scope.
func bindImport(clause importClause, dep []exportDecl) string {
	var stmts []string

	if clause.Default != "" {
		if local, ok := lookupExport(dep, "default"); ok && local != clause.Default {
			stmts = append(stmts, fmt.Sprintf("const %s = %s;", clause.Default, local))
		}
	}

	for _, nb := range clause.Named {
		if local, ok := lookupExport(dep, nb.Imported); ok && local != nb.Local {
			stmts = append(stmts, fmt.Sprintf("const %s = %s;", nb.Local, local))
		}
	}

	if clause.Namespace != "" {
		var fields []string
		for _, d := range dep {
			fields = append(fields, fmt.Sprintf("%s:%s", d.ExportedName, d.LocalName))
		}
		stmts = append(stmts, fmt.Sprintf("const %s = {%s};", clause.Namespace, strings.Join(fields, ",")))
	}

	return strings.Join(stmts, "")
}

// reexportDecls returns the export-table entries a re-export clause
// contributes to the *importing* module, given the dependency's own table.
func reexportDecls(clause importClause, dep []exportDecl) []exportDecl {
	if clause.StarExport {
		out := make([]exportDecl, 0, len(dep))
		for _, d := range dep {
			if d.ExportedName == "default" {
				continue // `export *` never re-exports a default export
			}
			out = append(out, d)
		}
		return out
	}
	var out []exportDecl
	for _, nb := range clause.Named {
		if local, ok := lookupExport(dep, nb.Imported); ok {
			out = append(out, exportDecl{ExportedName: nb.Local, LocalName: local})
		}
	}
	return out
}
