package models

import (
	"fmt"
)

// EnvironmentMode selects how the generated application runs.
type EnvironmentMode string

const (
	ModeDevelopment EnvironmentMode = "development"
	ModeProduction  EnvironmentMode = "production"
)

// IsValid checks if the environment mode is one of the recognized values
func (m EnvironmentMode) IsValid() bool {
	switch m {
	case ModeDevelopment, ModeProduction:
		return true
	default:
		return false
	}
}

// String returns the string representation of EnvironmentMode
func (m EnvironmentMode) String() string {
	return string(m)
}

// ParseEnvironmentMode parses a string into an EnvironmentMode
func ParseEnvironmentMode(s string) (EnvironmentMode, error) {
	mode := EnvironmentMode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid environment mode: %s (must be development or production)", s)
	}
	return mode, nil
}

// Options is the resolved set of inputs for one invocation. It is built once
// by the CLI and treated as read-only afterwards.
type Options struct {
	// ProjectDir is the target directory as given by the user (may be relative or empty)
	ProjectDir string

	// Host and Port are baked into the generated entry point as defaults
	Host string
	Port int

	// Mode is baked into the generated entry point as the default FLASK_ENV
	Mode EnvironmentMode

	// Deactivate requests the environment be inactive when the run ends
	Deactivate bool

	// Activate requests activation of an existing environment
	Activate bool

	// Pages lists extra page names in the order given
	Pages []string

	// Yes answers the confirmation prompt affirmatively
	Yes bool

	// Shell prints shell statements reflecting the final activation state
	Shell bool
}

// IsNoop reports whether the options request nothing at all.
func (o Options) IsNoop() bool {
	return o.ProjectDir == "" && !o.Deactivate && !o.Activate
}

// Validate checks the values a scaffold run depends on.
func (o Options) Validate() error {
	if o.Port < 1 || o.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be between 1 and 65535)", o.Port)
	}
	if o.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if !o.Mode.IsValid() {
		return fmt.Errorf("invalid environment mode: %s (must be development or production)", o.Mode)
	}
	return nil
}

// Debug reports whether the generated server runs with debug behavior.
func (o Options) Debug() bool {
	return o.Mode == ModeDevelopment
}
