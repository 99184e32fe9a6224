// Package scaffold writes the directory tree and boilerplate files of a
// generated Flask project.
package scaffold

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/jakoblorz/flaskgen/internal/filesystem"
	"github.com/jakoblorz/flaskgen/internal/models"
	"github.com/jakoblorz/flaskgen/internal/project"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Permission bits of generated paths. Logs may hold sensitive runtime data
// and are restricted to the owner.
const (
	dirPerm     fs.FileMode = 0755
	filePerm    fs.FileMode = 0644
	logsDirPerm fs.FileMode = 0700
	logFilePerm fs.FileMode = 0600
)

const secretAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// PageError reports a page name that sanitizes to nothing.
type PageError struct {
	Name string
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %q: %v", e.Name, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// Result lists the relative paths Generate touched.
type Result struct {
	Created  []string
	Replaced []string
	Appended []string
	Skipped  []string
	Pages    []models.Page
}

// Generator creates the project skeleton.
type Generator struct {
	fs     filesystem.FileSystem
	out    io.Writer
	logger *slog.Logger
	secret func() (string, error)
}

// Option configures a Generator.
type Option func(*Generator)

// WithSecretGenerator replaces the source of the generated SECRET_KEY fallback.
func WithSecretGenerator(fn func() (string, error)) Option {
	return func(g *Generator) {
		g.secret = fn
	}
}

// WithLogger traces every filesystem write at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a Generator writing through fs and reporting progress to out
func NewGenerator(fs filesystem.FileSystem, out io.Writer, options ...Option) *Generator {
	if out == nil {
		out = io.Discard
	}
	g := &Generator{
		fs:     fs,
		out:    out,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		secret: func() (string, error) {
			return gonanoid.Generate(secretAlphabet, 32)
		},
	}
	for _, option := range options {
		option(g)
	}
	return g
}

// run holds the state of one Generate call.
type run struct {
	*Generator
	root   string
	result *Result

	// pageFiles holds page artifacts written during this run
	pageFiles map[string]bool
}

// Generate lays out the project under root. Files that existed before the
// call are left untouched, except app/app.py which is rebuilt and README.md
// which gets a structure section appended. Pages are processed in order; the
// first page that sanitizes to nothing or to a reserved name aborts the
// remaining generation with a *PageError. A page whose ID repeats an earlier
// page overwrites that page's files.
func (g *Generator) Generate(root string, opts models.Options) (*Result, error) {
	r := &run{
		Generator: g,
		root:      root,
		result:    &Result{},
		pageFiles: make(map[string]bool),
	}

	if err := r.createDirs(); err != nil {
		return r.result, err
	}

	data := templateData{
		ProjectName: filepath.Base(root),
		Host:        opts.Host,
		Port:        opts.Port,
		Mode:        opts.Mode.String(),
	}

	if err := r.createLogFile(); err != nil {
		return r.result, err
	}

	for _, static := range []struct{ rel, tmpl string }{
		{project.BaseTemplate, "base.html"},
		{project.StyleSheet, "style.css"},
		{project.IndexScript, "index.js"},
	} {
		if err := r.writeIfAbsent(static.rel, static.tmpl, data, false); err != nil {
			return r.result, err
		}
	}

	for _, name := range opts.Pages {
		page, err := models.NewPage(name)
		if err != nil {
			return r.result, &PageError{Name: name, Err: err}
		}
		r.result.Pages = append(r.result.Pages, page)

		pageData := data
		pageData.Page = page
		if err := r.writeIfAbsent(project.PageTemplate(page.ID), "page.html", pageData, true); err != nil {
			return r.result, err
		}
		if err := r.writeIfAbsent(project.PageScript(page.ID), "page.js", pageData, true); err != nil {
			return r.result, err
		}
	}
	data.Pages = r.result.Pages

	if err := r.writeIfAbsent(project.IndexTemplate, "index.html", data, false); err != nil {
		return r.result, err
	}

	secret, err := g.secret()
	if err != nil {
		return r.result, fmt.Errorf("failed to generate secret key: %w", err)
	}
	data.SecretKey = secret
	if err := r.replace(project.EntryPoint, "app.py", data); err != nil {
		return r.result, err
	}

	if err := r.appendReadme(data); err != nil {
		return r.result, err
	}

	return r.result, nil
}

func (r *run) createDirs() error {
	for _, rel := range []string{project.TemplatesDir, project.StaticCSSDir, project.StaticJSDir} {
		path := project.Path(r.root, rel)
		r.logger.Debug("mkdir", "path", path, "perm", dirPerm)
		if err := r.fs.MkdirAll(path, dirPerm); err != nil {
			return fmt.Errorf("failed to create %s: %w", rel, err)
		}
	}

	logsDir := project.Path(r.root, project.LogsDir)
	if r.fs.Exists(logsDir) {
		return nil
	}
	r.logger.Debug("mkdir", "path", logsDir, "perm", logsDirPerm)
	if err := r.fs.MkdirAll(logsDir, logsDirPerm); err != nil {
		return fmt.Errorf("failed to create %s: %w", project.LogsDir, err)
	}
	// MkdirAll is subject to the umask
	if err := r.fs.Chmod(logsDir, logsDirPerm); err != nil {
		return fmt.Errorf("failed to restrict %s: %w", project.LogsDir, err)
	}
	return nil
}

func (r *run) createLogFile() error {
	path := project.Path(r.root, project.LogFile)
	if r.fs.Exists(path) {
		r.result.Skipped = append(r.result.Skipped, project.LogFile)
		return nil
	}

	r.logger.Debug("write", "path", path, "perm", logFilePerm)
	if err := r.fs.WriteFile(path, nil, logFilePerm); err != nil {
		return fmt.Errorf("failed to create %s: %w", project.LogFile, err)
	}
	if err := r.fs.Chmod(path, logFilePerm); err != nil {
		return fmt.Errorf("failed to restrict %s: %w", project.LogFile, err)
	}
	r.result.Created = append(r.result.Created, project.LogFile)
	fmt.Fprintf(r.out, "  created %s\n", project.LogFile)
	return nil
}

// writeIfAbsent renders tmpl into rel unless rel already exists. A page
// artifact written earlier in the same run is overwritten by a later page.
func (r *run) writeIfAbsent(rel, tmpl string, data templateData, page bool) error {
	path := project.Path(r.root, rel)
	overwrite := page && r.pageFiles[path]
	if r.fs.Exists(path) && !overwrite {
		r.logger.Debug("skip existing", "path", path)
		r.result.Skipped = append(r.result.Skipped, rel)
		return nil
	}

	if err := r.write(path, rel, tmpl, data); err != nil {
		return err
	}
	if page {
		r.pageFiles[path] = true
	}
	if overwrite {
		r.result.Replaced = append(r.result.Replaced, rel)
		fmt.Fprintf(r.out, "  replaced %s\n", rel)
	} else {
		r.result.Created = append(r.result.Created, rel)
		fmt.Fprintf(r.out, "  created %s\n", rel)
	}
	return nil
}

// replace renders tmpl into rel whether or not it exists.
func (r *run) replace(rel, tmpl string, data templateData) error {
	path := project.Path(r.root, rel)
	existed := r.fs.Exists(path)
	if err := r.write(path, rel, tmpl, data); err != nil {
		return err
	}
	if existed {
		r.result.Replaced = append(r.result.Replaced, rel)
		fmt.Fprintf(r.out, "  replaced %s\n", rel)
	} else {
		r.result.Created = append(r.result.Created, rel)
		fmt.Fprintf(r.out, "  created %s\n", rel)
	}
	return nil
}

func (r *run) write(path, rel, tmpl string, data templateData) error {
	content, err := render(tmpl, data)
	if err != nil {
		return err
	}
	r.logger.Debug("write", "path", path, "bytes", len(content))
	if err := r.fs.WriteFile(path, content, filePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return nil
}

func (r *run) appendReadme(data templateData) error {
	path := project.Path(r.root, project.ReadmeFile)

	if !r.fs.Exists(path) {
		if err := r.write(path, project.ReadmeFile, "readme", data); err != nil {
			return err
		}
		r.result.Created = append(r.result.Created, project.ReadmeFile)
	}

	data.Layout = BuildLayout(data.ProjectName, data.Pages).Render()
	section, err := render("readme.usage", data)
	if err != nil {
		return err
	}

	r.logger.Debug("append", "path", path, "bytes", len(section))
	if err := r.fs.AppendFile(path, section, filePerm); err != nil {
		return fmt.Errorf("failed to update %s: %w", project.ReadmeFile, err)
	}
	r.result.Appended = append(r.result.Appended, project.ReadmeFile)
	fmt.Fprintf(r.out, "  updated %s\n", project.ReadmeFile)
	return nil
}
