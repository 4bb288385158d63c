// Package scaffold renders a new project's config.yml, main.ts, and
// .gitignore from embedded templates and initializes a source-control
// repository over it, recovered from the original CLI's askama-templated
// init command.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/go-git/go-git/v5"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// FuncMap is the shared template function map: Sprig's text-template
// functions, matching the gateway's own template tooling.
func FuncMap() template.FuncMap {
	return sprig.TxtFuncMap()
}

// Data is the set of values available to every scaffold template.
type Data struct {
	Name string
}

// Init renders config.yml, main.ts, and .gitignore for a project named name
// into dir, then initializes dir as a git repository. dir must exist.
func Init(name, dir string) error {
	data := Data{Name: name}

	files := map[string]string{
		"config.yml.tmpl": "config.yml",
		"main.ts.tmpl":    "main.ts",
		"gitignore.tmpl":  ".gitignore",
	}
	for tmplName, outName := range files {
		if err := renderFile(tmplName, filepath.Join(dir, outName), data); err != nil {
			return fmt.Errorf("scaffold: rendering %s: %w", outName, err)
		}
	}

	if _, err := git.PlainInit(dir, false); err != nil {
		return fmt.Errorf("scaffold: initializing repository: %w", err)
	}
	return nil
}

func renderFile(templateName, outPath string, data Data) error {
	tmpl, err := template.New(templateName).Funcs(FuncMap()).ParseFS(templateFS, "templates/"+templateName)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return tmpl.Execute(f, data)
}
