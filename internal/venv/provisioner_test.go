package venv

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jakoblorz/flaskgen/internal/filesystem"
	"github.com/stretchr/testify/require"
)

type provisionerFixture struct {
	fs      *filesystem.MockFileSystem
	pm      *MockPackageManager
	session *Session
	out     *bytes.Buffer
	p       *Provisioner
}

func newProvisionerFixture(t *testing.T) *provisionerFixture {
	t.Helper()

	mfs := filesystem.NewMockFileSystem()
	mfs.AddDir("/workspace/demo")
	pm := NewMockPackageManager(mfs)
	out := &bytes.Buffer{}

	return &provisionerFixture{
		fs:      mfs,
		pm:      pm,
		session: NewSession(envOf(map[string]string{"PATH": "/usr/bin"})),
		out:     out,
		p:       NewProvisioner(mfs, pm, out),
	}
}

func TestProvisioner_FreshEnvironment(t *testing.T) {
	f := newProvisionerFixture(t)

	result, err := f.p.Ensure(context.Background(), "/workspace/demo", f.session)
	require.NoError(t, err)
	require.True(t, result.Created)
	require.True(t, result.Activated)
	require.Equal(t, "/workspace/demo/venv", result.VenvPath)
	require.Equal(t, "/workspace/demo/requirements.txt", result.Manifest)

	require.Equal(t, []string{
		"python --version",
		"venv /workspace/demo/venv",
		"pip install --upgrade pip",
		"pip install flask python-dotenv",
		"pip freeze",
	}, f.pm.Calls)

	require.True(t, f.session.ActiveAt("/workspace/demo/venv"))

	manifest, err := f.fs.ReadFile("/workspace/demo/requirements.txt")
	require.NoError(t, err)
	require.Equal(t, "flask==1.0.0\npython-dotenv==1.0.0\n", string(manifest))
}

func TestProvisioner_ReusesActiveEnvironment(t *testing.T) {
	f := newProvisionerFixture(t)
	require.NoError(t, f.pm.CreateEnv(context.Background(), "/workspace/demo/venv"))
	f.pm.Reset()
	f.session.Activate("/workspace/demo/venv")

	result, err := f.p.Ensure(context.Background(), "/workspace/demo", f.session)
	require.NoError(t, err)
	require.False(t, result.Created)
	require.False(t, result.Activated)
	require.Equal(t, []string{
		"pip install --upgrade pip",
		"pip install flask python-dotenv",
		"pip freeze",
	}, f.pm.Calls)
}

func TestProvisioner_ActivatesExistingEnvironment(t *testing.T) {
	f := newProvisionerFixture(t)
	require.NoError(t, f.pm.CreateEnv(context.Background(), "/workspace/demo/venv"))
	f.pm.Reset()

	result, err := f.p.Ensure(context.Background(), "/workspace/demo", f.session)
	require.NoError(t, err)
	require.False(t, result.Created)
	require.True(t, result.Activated)
	require.True(t, f.session.ActiveAt("/workspace/demo/venv"))
}

func TestProvisioner_OverwritesManifest(t *testing.T) {
	f := newProvisionerFixture(t)
	f.fs.AddFile("/workspace/demo/requirements.txt", []byte("django==4.0\n"))

	_, err := f.p.Ensure(context.Background(), "/workspace/demo", f.session)
	require.NoError(t, err)

	manifest, err := f.fs.ReadFile("/workspace/demo/requirements.txt")
	require.NoError(t, err)
	require.NotContains(t, string(manifest), "django")
}

func TestProvisioner_PythonVersion(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{version: "3.12.1", wantErr: false},
		{version: "3.8", wantErr: false},
		{version: "3.13.0rc1", wantErr: false},
		{version: "3.7.17", wantErr: true},
		{version: "2.7.18", wantErr: true},
		{version: "unknown", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			f := newProvisionerFixture(t)
			f.pm.Version = tt.version

			_, err := f.p.Ensure(context.Background(), "/workspace/demo", f.session)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			var stepErr *StepError
			require.ErrorAs(t, err, &stepErr)
			require.Equal(t, StepPythonVersion, stepErr.Step)
			require.False(t, f.fs.Exists("/workspace/demo/venv"))
			require.False(t, f.session.Active())
		})
	}
}

func TestProvisioner_StepFailures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name  string
		setup func(pm *MockPackageManager)
		step  Step
	}{
		{name: "create", setup: func(pm *MockPackageManager) { pm.CreateEnvError = boom }, step: StepCreate},
		{name: "upgrade", setup: func(pm *MockPackageManager) { pm.UpgradePipError = boom }, step: StepUpgrade},
		{name: "install", setup: func(pm *MockPackageManager) { pm.InstallError = boom }, step: StepInstall},
		{name: "freeze", setup: func(pm *MockPackageManager) { pm.FreezeError = boom }, step: StepFreeze},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProvisionerFixture(t)
			tt.setup(f.pm)

			_, err := f.p.Ensure(context.Background(), "/workspace/demo", f.session)

			var stepErr *StepError
			require.ErrorAs(t, err, &stepErr)
			require.Equal(t, tt.step, stepErr.Step)
			require.ErrorIs(t, err, boom)
			require.False(t, f.session.Active(), "environment activated by this run must be deactivated")
			require.Equal(t, "/usr/bin", f.session.Path())
			require.False(t, f.fs.Exists("/workspace/demo/requirements.txt"))
		})
	}
}

func TestProvisioner_FailureKeepsPreviouslyActiveEnvironment(t *testing.T) {
	f := newProvisionerFixture(t)
	require.NoError(t, f.pm.CreateEnv(context.Background(), "/workspace/demo/venv"))
	f.session.Activate("/workspace/demo/venv")
	f.pm.InstallError = errors.New("no network")

	_, err := f.p.Ensure(context.Background(), "/workspace/demo", f.session)
	require.Error(t, err)
	require.Contains(t, err.Error(), "install dependencies failed")
	require.True(t, f.session.ActiveAt("/workspace/demo/venv"))
}

func TestProvisioner_ManifestWriteFailure(t *testing.T) {
	f := newProvisionerFixture(t)
	f.fs.WriteFileErrors["/workspace/demo/requirements.txt"] = errors.New("read-only")

	_, err := f.p.Ensure(context.Background(), "/workspace/demo", f.session)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	require.Equal(t, StepFreeze, stepErr.Step)
	require.False(t, f.session.Active())
}
