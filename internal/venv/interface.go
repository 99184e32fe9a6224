package venv

import (
	"context"
)

// PackageManager provides an abstraction over the Python tooling that
// creates environments and installs packages.
//
// Every operation blocks until the underlying command has exited. Operations
// that need an interpreter use the environment active in the given session.
type PackageManager interface {
	// PythonVersion returns the version of the base interpreter, e.g. "3.12.1"
	PythonVersion(ctx context.Context) (string, error)

	// CreateEnv creates an isolated environment at venvPath
	CreateEnv(ctx context.Context, venvPath string) error

	// UpgradePip upgrades the package installer inside the active environment
	UpgradePip(ctx context.Context, session *Session) error

	// Install installs the named packages into the active environment
	Install(ctx context.Context, session *Session, packages ...string) error

	// Freeze returns the pinned list of everything installed in the active environment
	Freeze(ctx context.Context, session *Session) (string, error)
}
