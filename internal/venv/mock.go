package venv

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jakoblorz/flaskgen/internal/filesystem"
)

// MockPackageManager implements PackageManager for testing. CreateEnv lays
// out a minimal environment (bin/activate, bin/python) on the given
// filesystem so existence checks behave like the real thing.
type MockPackageManager struct {
	mu sync.Mutex
	fs filesystem.FileSystem

	// Version is returned by PythonVersion
	Version string

	// Calls records every operation in order, e.g. "install flask python-dotenv"
	Calls []string

	// installed tracks packages per environment path
	installed map[string]map[string]bool

	// Hooks for testing error scenarios
	PythonVersionError error
	CreateEnvError     error
	UpgradePipError    error
	InstallError       error
	FreezeError        error
}

// NewMockPackageManager creates a new MockPackageManager writing to fs
func NewMockPackageManager(fs filesystem.FileSystem) *MockPackageManager {
	return &MockPackageManager{
		fs:        fs,
		Version:   "3.12.1",
		installed: make(map[string]map[string]bool),
	}
}

func (m *MockPackageManager) record(format string, args ...interface{}) {
	m.Calls = append(m.Calls, fmt.Sprintf(format, args...))
}

func (m *MockPackageManager) PythonVersion(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("python --version")
	if m.PythonVersionError != nil {
		return "", m.PythonVersionError
	}
	return m.Version, nil
}

func (m *MockPackageManager) CreateEnv(ctx context.Context, venvPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("venv %s", venvPath)
	if m.CreateEnvError != nil {
		return m.CreateEnvError
	}

	bin := BinDir(venvPath)
	if err := m.fs.MkdirAll(bin, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", bin, err)
	}
	if err := m.fs.WriteFile(filepath.Join(bin, "activate"), []byte("# activate\n"), 0644); err != nil {
		return err
	}
	if err := m.fs.WriteFile(PythonExecutable(venvPath), []byte{}, 0755); err != nil {
		return err
	}

	m.installed[venvPath] = map[string]bool{"pip": true}
	return nil
}

func (m *MockPackageManager) UpgradePip(ctx context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("pip install --upgrade pip")
	if m.UpgradePipError != nil {
		return m.UpgradePipError
	}
	if _, err := activePython(session); err != nil {
		return err
	}
	return nil
}

func (m *MockPackageManager) Install(ctx context.Context, session *Session, packages ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("pip install %s", strings.Join(packages, " "))
	if m.InstallError != nil {
		return m.InstallError
	}
	if _, err := activePython(session); err != nil {
		return err
	}

	env := session.VirtualEnv()
	if m.installed[env] == nil {
		m.installed[env] = map[string]bool{"pip": true}
	}
	for _, pkg := range packages {
		m.installed[env][pkg] = true
	}
	return nil
}

func (m *MockPackageManager) Freeze(ctx context.Context, session *Session) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("pip freeze")
	if m.FreezeError != nil {
		return "", m.FreezeError
	}
	if _, err := activePython(session); err != nil {
		return "", err
	}

	var names []string
	for pkg := range m.installed[session.VirtualEnv()] {
		if pkg == "pip" {
			continue
		}
		names = append(names, pkg)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s==1.0.0\n", name)
	}
	return b.String(), nil
}

// Installed returns the sorted packages installed into the environment at venvPath
func (m *MockPackageManager) Installed(venvPath string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var names []string
	for pkg := range m.installed[venvPath] {
		names = append(names, pkg)
	}
	sort.Strings(names)
	return names
}

// Reset clears recorded calls and error hooks (helper for testing)
func (m *MockPackageManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = nil
	m.PythonVersionError = nil
	m.CreateEnvError = nil
	m.UpgradePipError = nil
	m.InstallError = nil
	m.FreezeError = nil
}
