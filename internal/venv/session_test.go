package venv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func envOf(vars map[string]string) func(string) string {
	return func(key string) string {
		return vars[key]
	}
}

func joinPath(entries ...string) string {
	return strings.Join(entries, string(os.PathListSeparator))
}

func TestSession_ActivateAndDeactivate(t *testing.T) {
	session := NewSession(envOf(map[string]string{"PATH": joinPath("/usr/bin", "/bin")}))
	require.False(t, session.Active())

	require.True(t, session.Activate("/workspace/demo/venv"))
	require.True(t, session.Active())
	require.True(t, session.ActiveAt("/workspace/demo/venv/"))
	require.Equal(t, "/workspace/demo/venv", session.VirtualEnv())
	require.Equal(t, joinPath(BinDir("/workspace/demo/venv"), "/usr/bin", "/bin"), session.Path())

	// activating the same environment again is a no-op
	require.False(t, session.Activate("/workspace/demo/venv"))
	require.Equal(t, joinPath(BinDir("/workspace/demo/venv"), "/usr/bin", "/bin"), session.Path())

	require.True(t, session.Deactivate())
	require.False(t, session.Active())
	require.Equal(t, joinPath("/usr/bin", "/bin"), session.Path())

	require.False(t, session.Deactivate())
}

func TestSession_ActivateSwitchesEnvironment(t *testing.T) {
	session := NewSession(envOf(map[string]string{
		"VIRTUAL_ENV": "/other/venv",
		"PATH":        joinPath(BinDir("/other/venv"), "/usr/bin"),
	}))
	require.True(t, session.ActiveAt("/other/venv"))

	require.True(t, session.Activate("/workspace/demo/venv"))
	require.Equal(t, joinPath(BinDir("/workspace/demo/venv"), "/usr/bin"), session.Path())
	require.False(t, session.ActiveAt("/other/venv"))
}

func TestSession_Environ(t *testing.T) {
	session := NewSession(envOf(map[string]string{"PATH": "/usr/bin"}))
	session.Activate("/workspace/demo/venv")

	env := session.Environ([]string{"HOME=/root", "PATH=/usr/bin", "VIRTUAL_ENV=/stale"})
	require.Equal(t, []string{
		"HOME=/root",
		"VIRTUAL_ENV=/workspace/demo/venv",
		"PATH=" + joinPath(BinDir("/workspace/demo/venv"), "/usr/bin"),
	}, env)

	session.Deactivate()
	env = session.Environ([]string{"HOME=/root", "VIRTUAL_ENV=/stale"})
	require.Equal(t, []string{"HOME=/root", "PATH=/usr/bin"}, env)
}

func TestSession_ShellScript(t *testing.T) {
	session := NewSession(envOf(map[string]string{"PATH": "/usr/bin"}))
	session.Activate("/tmp/it's/venv")

	script := session.ShellScript()
	require.Contains(t, script, `export VIRTUAL_ENV='/tmp/it'\''s/venv'`)
	require.Contains(t, script, "export PATH='")

	session.Deactivate()
	require.Equal(t, "unset VIRTUAL_ENV\nexport PATH='/usr/bin'\n", session.ShellScript())
}

func TestPaths(t *testing.T) {
	require.Equal(t, filepath.Join(BinDir("/v"), "activate"), ActivateScript("/v"))
	require.True(t, strings.HasPrefix(PythonExecutable("/v"), BinDir("/v")))
}
