// Package project resolves the target directory and classifies what is
// already there before anything gets written.
package project

import (
	"path/filepath"
)

// Relative locations inside a project root.
const (
	VenvDir        = "venv"
	MarkerEntry    = "app.py"
	AppDir         = "app"
	EntryPoint     = "app/app.py"
	TemplatesDir   = "app/templates"
	StaticCSSDir   = "app/static/css"
	StaticJSDir    = "app/static/js"
	LogsDir        = "logs"
	LogFile        = "logs/app.log"
	ReadmeFile     = "README.md"
	ManifestFile   = "requirements.txt"
	BaseTemplate   = "app/templates/base.html"
	IndexTemplate  = "app/templates/index.html"
	StyleSheet     = "app/static/css/style.css"
	IndexScript    = "app/static/js/index.js"
	templateSuffix = ".html"
	scriptSuffix   = ".js"
)

// Resolve turns dir into an absolute path, joining it onto cwd when relative.
// It never touches the filesystem.
func Resolve(cwd, dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(cwd, dir)
}

// PageTemplate returns the relative template path for a page identifier.
func PageTemplate(id string) string {
	return filepath.ToSlash(filepath.Join(TemplatesDir, id+templateSuffix))
}

// PageScript returns the relative script path for a page identifier.
func PageScript(id string) string {
	return filepath.ToSlash(filepath.Join(StaticJSDir, id+scriptSuffix))
}

// Path joins a slash-separated relative location onto root.
func Path(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}
