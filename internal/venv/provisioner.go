package venv

import (
	"context"
	"fmt"
	"io"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/jakoblorz/flaskgen/internal/filesystem"
	"github.com/jakoblorz/flaskgen/internal/project"
)

// DefaultPackages are installed into every environment.
var DefaultPackages = []string{"flask", "python-dotenv"}

// MinPythonConstraint is required of the base interpreter before an environment is created.
const MinPythonConstraint = ">= 3.8"

// Step names one stage of provisioning.
type Step string

const (
	StepPythonVersion Step = "check python version"
	StepCreate        Step = "create virtual environment"
	StepActivate      Step = "activate virtual environment"
	StepUpgrade       Step = "upgrade pip"
	StepInstall       Step = "install dependencies"
	StepFreeze        Step = "write " + project.ManifestFile
)

// StepError reports which provisioning step failed.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Result describes what Ensure changed.
type Result struct {
	VenvPath  string
	Created   bool
	Activated bool
	Manifest  string
}

// Provisioner guarantees an environment exists under a project root, is
// active in the session and has the required packages installed.
type Provisioner struct {
	fs       filesystem.FileSystem
	pm       PackageManager
	packages []string
	out      io.Writer
}

// NewProvisioner creates a Provisioner installing DefaultPackages
func NewProvisioner(fs filesystem.FileSystem, pm PackageManager, out io.Writer) *Provisioner {
	if out == nil {
		out = io.Discard
	}
	return &Provisioner{
		fs:       fs,
		pm:       pm,
		packages: DefaultPackages,
		out:      out,
	}
}

// Ensure runs every provisioning step against root. When a step fails and
// the environment was activated by this call, the session is deactivated
// before the *StepError is returned.
func (p *Provisioner) Ensure(ctx context.Context, root string, session *Session) (*Result, error) {
	venvPath := project.Path(root, project.VenvDir)
	result := &Result{VenvPath: venvPath}

	fail := func(step Step, err error) (*Result, error) {
		if result.Activated {
			session.Deactivate()
			fmt.Fprintf(p.out, "Deactivated %s\n", venvPath)
		}
		return result, &StepError{Step: step, Err: err}
	}

	if !p.fs.Exists(ActivateScript(venvPath)) {
		if err := p.checkPython(ctx); err != nil {
			return fail(StepPythonVersion, err)
		}

		fmt.Fprintf(p.out, "Creating virtual environment in %s\n", venvPath)
		if err := p.pm.CreateEnv(ctx, venvPath); err != nil {
			return fail(StepCreate, err)
		}
		result.Created = true
	}

	if !session.ActiveAt(venvPath) {
		if !p.fs.Exists(ActivateScript(venvPath)) {
			return fail(StepActivate, fmt.Errorf("%s not found", ActivateScript(venvPath)))
		}
		session.Activate(venvPath)
		result.Activated = true
		fmt.Fprintf(p.out, "Activated %s\n", venvPath)
	}

	fmt.Fprintln(p.out, "Upgrading pip")
	if err := p.pm.UpgradePip(ctx, session); err != nil {
		return fail(StepUpgrade, err)
	}

	fmt.Fprintf(p.out, "Installing %v\n", p.packages)
	if err := p.pm.Install(ctx, session, p.packages...); err != nil {
		return fail(StepInstall, err)
	}

	manifest, err := p.pm.Freeze(ctx, session)
	if err != nil {
		return fail(StepFreeze, err)
	}
	manifestPath := project.Path(root, project.ManifestFile)
	if err := p.fs.WriteFile(manifestPath, []byte(manifest), 0644); err != nil {
		return fail(StepFreeze, err)
	}
	result.Manifest = manifestPath

	return result, nil
}

var leadingVersion = regexp.MustCompile(`^\d+(\.\d+){0,2}`)

func (p *Provisioner) checkPython(ctx context.Context) error {
	raw, err := p.pm.PythonVersion(ctx)
	if err != nil {
		return err
	}

	// Drop suffixes like "rc1" or "+" that are not valid semver
	trimmed := leadingVersion.FindString(raw)
	if trimmed == "" {
		return fmt.Errorf("unrecognized python version %q", raw)
	}

	version, err := semver.NewVersion(trimmed)
	if err != nil {
		return fmt.Errorf("unrecognized python version %q: %w", raw, err)
	}

	constraint, err := semver.NewConstraint(MinPythonConstraint)
	if err != nil {
		return err
	}
	if !constraint.Check(version) {
		return fmt.Errorf("python %s does not satisfy %s", version, MinPythonConstraint)
	}

	return nil
}
