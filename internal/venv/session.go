package venv

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Environment variables that make up the activation state.
const (
	envVirtualEnv = "VIRTUAL_ENV"
	envPath       = "PATH"
)

// Session carries the activation state of one invocation: which environment
// (if any) is active and the PATH it implies. Commands started on behalf of
// the session see this state through Environ.
type Session struct {
	virtualEnv string
	path       string
}

// NewSession captures the activation state from getenv (usually os.Getenv).
func NewSession(getenv func(string) string) *Session {
	return &Session{
		virtualEnv: getenv(envVirtualEnv),
		path:       getenv(envPath),
	}
}

// Active reports whether any environment is active.
func (s *Session) Active() bool {
	return s.virtualEnv != ""
}

// ActiveAt reports whether the environment at venvPath is the active one.
func (s *Session) ActiveAt(venvPath string) bool {
	return s.Active() && filepath.Clean(s.virtualEnv) == filepath.Clean(venvPath)
}

// VirtualEnv returns the path of the active environment, or "".
func (s *Session) VirtualEnv() string {
	return s.virtualEnv
}

// Path returns the PATH value implied by the current state.
func (s *Session) Path() string {
	return s.path
}

// Activate makes venvPath the active environment. Any other active
// environment is deactivated first. It returns false when venvPath was
// already active.
func (s *Session) Activate(venvPath string) bool {
	if s.ActiveAt(venvPath) {
		return false
	}
	if s.Active() {
		s.Deactivate()
	}

	s.virtualEnv = filepath.Clean(venvPath)
	bin := BinDir(s.virtualEnv)
	if s.path == "" {
		s.path = bin
	} else {
		s.path = bin + string(os.PathListSeparator) + s.path
	}
	return true
}

// Deactivate clears the active environment and drops its bin directory from
// PATH. It returns false when nothing was active.
func (s *Session) Deactivate() bool {
	if !s.Active() {
		return false
	}

	bin := BinDir(s.virtualEnv)
	var kept []string
	for _, entry := range filepath.SplitList(s.path) {
		if filepath.Clean(entry) == bin {
			continue
		}
		kept = append(kept, entry)
	}
	s.path = strings.Join(kept, string(os.PathListSeparator))
	s.virtualEnv = ""
	return true
}

// Environ returns base with VIRTUAL_ENV and PATH replaced by the session state.
func (s *Session) Environ(base []string) []string {
	env := make([]string, 0, len(base)+2)
	for _, kv := range base {
		if strings.HasPrefix(kv, envVirtualEnv+"=") || strings.HasPrefix(kv, envPath+"=") {
			continue
		}
		env = append(env, kv)
	}
	if s.Active() {
		env = append(env, envVirtualEnv+"="+s.virtualEnv)
	}
	if s.path != "" {
		env = append(env, envPath+"="+s.path)
	}
	return env
}

// ShellScript renders the state as POSIX shell statements, suitable for
// `eval "$(flaskgen ... --shell)"`.
func (s *Session) ShellScript() string {
	var b strings.Builder
	if s.Active() {
		fmt.Fprintf(&b, "export %s=%s\n", envVirtualEnv, shellQuote(s.virtualEnv))
	} else {
		fmt.Fprintf(&b, "unset %s\n", envVirtualEnv)
	}
	fmt.Fprintf(&b, "export %s=%s\n", envPath, shellQuote(s.path))
	return b.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// BinDir returns the executables directory of an environment.
func BinDir(venvPath string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(venvPath, "Scripts")
	}
	return filepath.Join(venvPath, "bin")
}

// ActivateScript returns the path of the environment's activation entry point.
func ActivateScript(venvPath string) string {
	return filepath.Join(BinDir(venvPath), "activate")
}

// PythonExecutable returns the interpreter inside an environment.
func PythonExecutable(venvPath string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(BinDir(venvPath), "python.exe")
	}
	return filepath.Join(BinDir(venvPath), "python")
}
