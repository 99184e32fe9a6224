// Package workflow runs a complete scaffold: resolve the target, probe it,
// provision the environment, generate files and settle the activation state.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jakoblorz/flaskgen/internal/activation"
	"github.com/jakoblorz/flaskgen/internal/filesystem"
	"github.com/jakoblorz/flaskgen/internal/models"
	"github.com/jakoblorz/flaskgen/internal/project"
	"github.com/jakoblorz/flaskgen/internal/scaffold"
	"github.com/jakoblorz/flaskgen/internal/tui"
	"github.com/jakoblorz/flaskgen/internal/venv"
)

var (
	// ErrExistingProject is returned when the target already holds a project.
	ErrExistingProject = errors.New("an existing project was found")

	// ErrAborted is returned when the user declines the confirmation prompt.
	ErrAborted = errors.New("aborted by user")
)

// Report summarizes a run.
type Report struct {
	Root       string
	State      models.ProjectState
	Provision  *venv.Result
	Scaffold   *scaffold.Result
	Activation activation.Outcome
}

// Runner executes the workflow against a filesystem and a package manager.
type Runner struct {
	fs         filesystem.FileSystem
	pm         venv.PackageManager
	session    *venv.Session
	confirmer  tui.Confirmer
	out        io.Writer
	logger     *slog.Logger
	genOptions []scaffold.Option
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the debug logger shared with the generator.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithGeneratorOptions forwards options to the scaffold generator.
func WithGeneratorOptions(options ...scaffold.Option) Option {
	return func(r *Runner) {
		r.genOptions = append(r.genOptions, options...)
	}
}

// NewRunner creates a Runner
func NewRunner(fs filesystem.FileSystem, pm venv.PackageManager, session *venv.Session, confirmer tui.Confirmer, out io.Writer, options ...Option) *Runner {
	if out == nil {
		out = io.Discard
	}
	r := &Runner{
		fs:        fs,
		pm:        pm,
		session:   session,
		confirmer: confirmer,
		out:       out,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Run executes the request described by opts.
//
// Without a project directory only the activation flags are honored and
// nothing is written. With one, the target is probed first: an existing
// project aborts, unrecognized content requires confirmation, and a missing
// directory is created. Provisioning and generation follow, and the
// environment is left active unless opts.Deactivate is set.
func (r *Runner) Run(ctx context.Context, opts models.Options) (*Report, error) {
	controller := activation.NewController(r.fs, r.session, r.out)
	report := &Report{}

	if opts.IsNoop() {
		return report, nil
	}

	if opts.ProjectDir == "" {
		if opts.Deactivate {
			report.Activation = controller.DeactivateOnly()
			return report, nil
		}
		cwd, err := r.fs.Getwd()
		if err != nil {
			return report, fmt.Errorf("failed to get working directory: %w", err)
		}
		report.Root = cwd
		report.Activation = controller.ActivateOnly(cwd)
		return report, nil
	}

	if err := opts.Validate(); err != nil {
		return report, err
	}

	cwd, err := r.fs.Getwd()
	if err != nil {
		return report, fmt.Errorf("failed to get working directory: %w", err)
	}
	root := project.Resolve(cwd, opts.ProjectDir)
	report.Root = root
	r.logger.Debug("resolved project root", "root", root)

	fmt.Fprintln(r.out, tui.Step(1, "Checking "+root))
	state, err := project.Probe(r.fs, root)
	if err != nil {
		return report, err
	}
	report.State = state
	r.logger.Debug("probed project root", "state", state.String())

	if err := r.admit(root, state, opts); err != nil {
		return report, err
	}

	fmt.Fprintln(r.out, tui.Step(2, "Provisioning virtual environment"))
	provisioner := venv.NewProvisioner(r.fs, r.pm, r.out)
	provisioned, err := provisioner.Ensure(ctx, root, r.session)
	report.Provision = provisioned
	if err != nil {
		return report, err
	}

	fmt.Fprintln(r.out, tui.Step(3, "Generating project files"))
	genOptions := append([]scaffold.Option{scaffold.WithLogger(r.logger)}, r.genOptions...)
	generator := scaffold.NewGenerator(r.fs, r.out, genOptions...)
	generated, err := generator.Generate(root, opts)
	report.Scaffold = generated
	if err != nil {
		return report, err
	}

	report.Activation = controller.Finish(opts)
	return report, nil
}

// admit applies the probe contract. It performs no writes unless the target
// is absent, in which case it creates it.
func (r *Runner) admit(root string, state models.ProjectState, opts models.Options) error {
	if !state.CanProceed() {
		return fmt.Errorf("%w in %s (found %s and %s/)", ErrExistingProject, root, project.MarkerEntry, project.VenvDir)
	}

	if state.NeedsConfirmation() {
		if opts.Yes {
			fmt.Fprintln(r.out, tui.Warn(root+" is not empty, scaffolding into it"))
			return nil
		}
		ok, err := r.confirmer.Confirm(fmt.Sprintf("%s is not empty. Scaffold into it anyway?", root))
		if err != nil {
			return err
		}
		if !ok {
			return ErrAborted
		}
	}

	if state == models.StateAbsent {
		r.logger.Debug("mkdir", "path", root)
		if err := r.fs.MkdirAll(root, 0755); err != nil {
			return fmt.Errorf("failed to create project directory %s: %w", root, err)
		}
		fmt.Fprintf(r.out, "  created %s\n", root)
	}

	return nil
}
