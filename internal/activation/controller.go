// Package activation applies the requested activation state of a project's
// virtual environment to a venv.Session.
package activation

import (
	"fmt"
	"io"

	"github.com/jakoblorz/flaskgen/internal/filesystem"
	"github.com/jakoblorz/flaskgen/internal/models"
	"github.com/jakoblorz/flaskgen/internal/project"
	"github.com/jakoblorz/flaskgen/internal/venv"
)

// Outcome describes what a controller call did to the session.
type Outcome int

const (
	Unchanged Outcome = iota
	Activated
	Deactivated
	NoEnvironment
)

func (o Outcome) String() string {
	switch o {
	case Activated:
		return "activated"
	case Deactivated:
		return "deactivated"
	case NoEnvironment:
		return "no environment"
	default:
		return "unchanged"
	}
}

// Controller toggles the activation state held by a session.
type Controller struct {
	fs      filesystem.FileSystem
	session *venv.Session
	out     io.Writer
}

// NewController creates a Controller over session
func NewController(fs filesystem.FileSystem, session *venv.Session, out io.Writer) *Controller {
	if out == nil {
		out = io.Discard
	}
	return &Controller{
		fs:      fs,
		session: session,
		out:     out,
	}
}

// Session returns the session the controller acts on.
func (c *Controller) Session() *venv.Session {
	return c.session
}

// DeactivateOnly handles a bare deactivate request.
func (c *Controller) DeactivateOnly() Outcome {
	if !c.session.Active() {
		fmt.Fprintln(c.out, "No virtual environment is active")
		return Unchanged
	}

	previous := c.session.VirtualEnv()
	c.session.Deactivate()
	fmt.Fprintf(c.out, "Deactivated %s\n", previous)
	return Deactivated
}

// ActivateOnly handles a bare activate request for the environment under root.
func (c *Controller) ActivateOnly(root string) Outcome {
	venvPath := project.Path(root, project.VenvDir)
	if !project.HasVenv(c.fs, root) || !c.fs.Exists(venv.ActivateScript(venvPath)) {
		fmt.Fprintf(c.out, "No virtual environment found in %s\n", root)
		return NoEnvironment
	}

	if c.session.ActiveAt(venvPath) {
		fmt.Fprintf(c.out, "%s is already active\n", venvPath)
		return Unchanged
	}

	c.session.Activate(venvPath)
	fmt.Fprintf(c.out, "Activated %s\n", venvPath)
	return Activated
}

// Finish applies the end-of-run policy after a successful scaffold: the
// environment stays active unless deactivation was requested.
func (c *Controller) Finish(opts models.Options) Outcome {
	if !opts.Deactivate {
		return Unchanged
	}
	return c.DeactivateOnly()
}
