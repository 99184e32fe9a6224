package venv

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// DefaultPython is the base interpreter used to create environments.
const DefaultPython = "python3"

// OSPackageManager implements PackageManager by running python and pip
type OSPackageManager struct {
	python string
	dir    string
	stdout io.Writer
	logger *slog.Logger
}

// Option configures an OSPackageManager.
type Option func(*OSPackageManager)

// WithPython sets the base interpreter used for PythonVersion and CreateEnv.
func WithPython(python string) Option {
	return func(pm *OSPackageManager) {
		if python != "" {
			pm.python = python
		}
	}
}

// WithDir sets the working directory of every command.
func WithDir(dir string) Option {
	return func(pm *OSPackageManager) {
		pm.dir = dir
	}
}

// WithStdout streams command output to w.
func WithStdout(w io.Writer) Option {
	return func(pm *OSPackageManager) {
		pm.stdout = w
	}
}

// WithLogger traces each command at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(pm *OSPackageManager) {
		pm.logger = logger
	}
}

// NewOSPackageManager creates a new OSPackageManager
func NewOSPackageManager(options ...Option) *OSPackageManager {
	pm := &OSPackageManager{
		python: DefaultPython,
		stdout: io.Discard,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(pm)
	}
	return pm
}

// PythonVersion runs `python3 --version` and returns the bare version number
func (pm *OSPackageManager) PythonVersion(ctx context.Context) (string, error) {
	cmd := pm.command(ctx, nil, pm.python, "--version")

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to run %s --version: %w: %s", pm.python, err, stderr.String())
	}

	// Python 2 printed its version on stderr
	output := strings.TrimSpace(out.String())
	if output == "" {
		output = strings.TrimSpace(stderr.String())
	}

	return strings.TrimSpace(strings.TrimPrefix(output, "Python")), nil
}

// CreateEnv runs `python3 -m venv <venvPath>`
func (pm *OSPackageManager) CreateEnv(ctx context.Context, venvPath string) error {
	return pm.run(ctx, nil, pm.python, "-m", "venv", venvPath)
}

// UpgradePip runs `python -m pip install --upgrade pip` inside the active environment
func (pm *OSPackageManager) UpgradePip(ctx context.Context, session *Session) error {
	python, err := activePython(session)
	if err != nil {
		return err
	}
	return pm.run(ctx, session, python, "-m", "pip", "install", "--upgrade", "pip")
}

// Install runs `python -m pip install <packages...>` inside the active environment
func (pm *OSPackageManager) Install(ctx context.Context, session *Session, packages ...string) error {
	if len(packages) == 0 {
		return nil
	}

	python, err := activePython(session)
	if err != nil {
		return err
	}

	args := append([]string{"-m", "pip", "install"}, packages...)
	return pm.run(ctx, session, python, args...)
}

// Freeze runs `python -m pip freeze` inside the active environment
func (pm *OSPackageManager) Freeze(ctx context.Context, session *Session) (string, error) {
	python, err := activePython(session)
	if err != nil {
		return "", err
	}

	cmd := pm.command(ctx, session, python, "-m", "pip", "freeze")

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to run pip freeze: %w: %s", err, stderr.String())
	}

	return out.String(), nil
}

func (pm *OSPackageManager) run(ctx context.Context, session *Session, name string, args ...string) error {
	cmd := pm.command(ctx, session, name, args...)

	var stderr bytes.Buffer
	cmd.Stdout = pm.stdout
	cmd.Stderr = io.MultiWriter(&stderr, pm.stdout)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}

	return nil
}

func (pm *OSPackageManager) command(ctx context.Context, session *Session, name string, args ...string) *exec.Cmd {
	pm.logger.Debug("exec", "cmd", name, "args", args, "dir", pm.dir)

	cmd := exec.CommandContext(ctx, name, args...)
	if pm.dir != "" {
		cmd.Dir = pm.dir
	}
	if session != nil {
		cmd.Env = session.Environ(os.Environ())
	}
	return cmd
}

func activePython(session *Session) (string, error) {
	if session == nil || !session.Active() {
		return "", fmt.Errorf("no active virtual environment")
	}
	return PythonExecutable(session.VirtualEnv()), nil
}
