package workflow

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jakoblorz/flaskgen/internal/activation"
	"github.com/jakoblorz/flaskgen/internal/filesystem"
	"github.com/jakoblorz/flaskgen/internal/models"
	"github.com/jakoblorz/flaskgen/internal/scaffold"
	"github.com/jakoblorz/flaskgen/internal/tui"
	"github.com/jakoblorz/flaskgen/internal/venv"
	"github.com/stretchr/testify/require"
)

// recordingConfirmer answers with a fixed value and remembers the questions.
type recordingConfirmer struct {
	answer    bool
	questions []string
}

func (c *recordingConfirmer) Confirm(message string) (bool, error) {
	c.questions = append(c.questions, message)
	return c.answer, nil
}

type fixture struct {
	fs        *filesystem.MockFileSystem
	pm        *venv.MockPackageManager
	session   *venv.Session
	confirmer *recordingConfirmer
	out       *bytes.Buffer
	runner    *Runner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mfs := filesystem.NewMockFileSystem()
	mfs.AddDir("/workspace")
	pm := venv.NewMockPackageManager(mfs)
	session := venv.NewSession(func(key string) string {
		if key == "PATH" {
			return "/usr/bin"
		}
		return ""
	})
	confirmer := &recordingConfirmer{}
	out := &bytes.Buffer{}

	runner := NewRunner(mfs, pm, session, confirmer, out,
		WithGeneratorOptions(scaffold.WithSecretGenerator(func() (string, error) {
			return "test-secret", nil
		})),
	)

	return &fixture{
		fs:        mfs,
		pm:        pm,
		session:   session,
		confirmer: confirmer,
		out:       out,
		runner:    runner,
	}
}

func scaffoldOptions(dir string, pages ...string) models.Options {
	return models.Options{
		ProjectDir: dir,
		Host:       "127.0.0.1",
		Port:       5000,
		Mode:       models.ModeDevelopment,
		Pages:      pages,
	}
}

func TestRun_NewProject(t *testing.T) {
	f := newFixture(t)

	report, err := f.runner.Run(context.Background(), scaffoldOptions("demo", "About"))
	require.NoError(t, err)

	require.Equal(t, "/workspace/demo", report.Root)
	require.Equal(t, models.StateAbsent, report.State)
	require.True(t, report.Provision.Created)
	require.Equal(t, activation.Unchanged, report.Activation)
	require.Empty(t, f.confirmer.questions)

	require.True(t, f.session.ActiveAt("/workspace/demo/venv"))
	require.True(t, f.fs.Exists("/workspace/demo/app/app.py"))
	require.True(t, f.fs.Exists("/workspace/demo/app/templates/about.html"))
	require.True(t, f.fs.Exists("/workspace/demo/requirements.txt"))
	require.Equal(t, []string{"flask", "pip", "python-dotenv"}, f.pm.Installed("/workspace/demo/venv"))

	require.Contains(t, f.out.String(), "[1] Checking /workspace/demo")
	require.Contains(t, f.out.String(), "[3] Generating project files")
}

func TestRun_EmptyDirectory(t *testing.T) {
	f := newFixture(t)
	f.fs.AddDir("/workspace/demo")

	report, err := f.runner.Run(context.Background(), scaffoldOptions("demo"))
	require.NoError(t, err)
	require.Equal(t, models.StateEmptyDir, report.State)
	require.Empty(t, f.confirmer.questions)
}

func TestRun_ExistingProjectHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	f.fs.AddFile("/workspace/demo/app.py", []byte("app = Flask(__name__)\n"))
	f.fs.AddDir("/workspace/demo/venv")

	_, err := f.runner.Run(context.Background(), scaffoldOptions("demo"))
	require.ErrorIs(t, err, ErrExistingProject)

	require.Equal(t, 0, f.fs.Writes())
	require.Empty(t, f.pm.Calls)
	require.Empty(t, f.confirmer.questions)
	require.False(t, f.session.Active())
}

func TestRun_DeclinedConfirmation(t *testing.T) {
	f := newFixture(t)
	f.fs.AddFile("/workspace/demo/notes.txt", []byte("keep me"))
	f.confirmer.answer = false

	_, err := f.runner.Run(context.Background(), scaffoldOptions("demo"))
	require.ErrorIs(t, err, ErrAborted)

	require.Len(t, f.confirmer.questions, 1)
	require.Equal(t, 0, f.fs.Writes())
	require.Empty(t, f.pm.Calls)
}

func TestRun_AcceptedConfirmation(t *testing.T) {
	f := newFixture(t)
	f.fs.AddFile("/workspace/demo/notes.txt", []byte("keep me"))
	f.confirmer.answer = true

	report, err := f.runner.Run(context.Background(), scaffoldOptions("demo"))
	require.NoError(t, err)
	require.Equal(t, models.StateUnrecognizedNonEmpty, report.State)

	notes, err := f.fs.ReadFile("/workspace/demo/notes.txt")
	require.NoError(t, err)
	require.Equal(t, "keep me", string(notes))
}

func TestRun_YesSkipsConfirmation(t *testing.T) {
	f := newFixture(t)
	f.fs.AddFile("/workspace/demo/notes.txt", nil)

	opts := scaffoldOptions("demo")
	opts.Yes = true

	_, err := f.runner.Run(context.Background(), opts)
	require.NoError(t, err)
	require.Empty(t, f.confirmer.questions)
}

func TestRun_RerunOnScaffoldedProject(t *testing.T) {
	f := newFixture(t)

	_, err := f.runner.Run(context.Background(), scaffoldOptions("demo"))
	require.NoError(t, err)

	f.confirmer.answer = true
	report, err := f.runner.Run(context.Background(), scaffoldOptions("demo", "contact"))
	require.NoError(t, err)
	require.Equal(t, models.StateUnrecognizedNonEmpty, report.State)
	require.False(t, report.Provision.Created)
	require.True(t, f.fs.Exists("/workspace/demo/app/templates/contact.html"))
}

func TestRun_DeactivateAfterScaffold(t *testing.T) {
	f := newFixture(t)

	opts := scaffoldOptions("demo")
	opts.Deactivate = true

	report, err := f.runner.Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, activation.Deactivated, report.Activation)
	require.False(t, f.session.Active())
	require.Equal(t, "/usr/bin", f.session.Path())
}

func TestRun_ProvisioningFailure(t *testing.T) {
	f := newFixture(t)
	f.pm.InstallError = errors.New("no network")

	_, err := f.runner.Run(context.Background(), scaffoldOptions("demo"))

	var stepErr *venv.StepError
	require.ErrorAs(t, err, &stepErr)
	require.Equal(t, venv.StepInstall, stepErr.Step)
	require.False(t, f.session.Active())
	require.False(t, f.fs.Exists("/workspace/demo/app/app.py"))
}

func TestRun_InvalidPageLeavesEnvironmentActive(t *testing.T) {
	f := newFixture(t)

	_, err := f.runner.Run(context.Background(), scaffoldOptions("demo", "about", "???"))

	var pageErr *scaffold.PageError
	require.ErrorAs(t, err, &pageErr)
	require.True(t, f.session.ActiveAt("/workspace/demo/venv"))
	require.True(t, f.fs.Exists("/workspace/demo/app/templates/about.html"))
}

func TestRun_CreateDirectoryFailure(t *testing.T) {
	f := newFixture(t)
	f.fs.MkdirAllErrors["/workspace/demo"] = errors.New("permission denied")

	_, err := f.runner.Run(context.Background(), scaffoldOptions("demo"))
	require.ErrorContains(t, err, "failed to create project directory")
	require.Empty(t, f.pm.Calls)
}

func TestRun_InvalidOptionsHaveNoSideEffects(t *testing.T) {
	f := newFixture(t)

	opts := scaffoldOptions("demo")
	opts.Port = 70000

	_, err := f.runner.Run(context.Background(), opts)
	require.Error(t, err)
	require.Equal(t, 0, f.fs.Writes())
}

func TestRun_Noop(t *testing.T) {
	f := newFixture(t)

	report, err := f.runner.Run(context.Background(), models.Options{Pages: []string{"about"}})
	require.NoError(t, err)
	require.Empty(t, report.Root)
	require.Equal(t, 0, f.fs.Writes())
	require.Empty(t, f.out.String())
}

func TestRun_ActivateOnly(t *testing.T) {
	f := newFixture(t)
	f.fs.AddFile(venv.ActivateScript("/workspace/demo/venv"), nil)
	f.fs.SetCurrentDir("/workspace/demo")

	report, err := f.runner.Run(context.Background(), models.Options{Activate: true})
	require.NoError(t, err)
	require.Equal(t, activation.Activated, report.Activation)
	require.True(t, f.session.ActiveAt("/workspace/demo/venv"))
	require.Equal(t, 0, f.fs.Writes())
	require.Empty(t, f.pm.Calls)
}

func TestRun_ActivateOnlyWithoutEnvironment(t *testing.T) {
	f := newFixture(t)

	report, err := f.runner.Run(context.Background(), models.Options{Activate: true})
	require.NoError(t, err)
	require.Equal(t, activation.NoEnvironment, report.Activation)
	require.False(t, f.session.Active())
}

func TestRun_DeactivateOnly(t *testing.T) {
	f := newFixture(t)
	f.session.Activate("/workspace/demo/venv")

	report, err := f.runner.Run(context.Background(), models.Options{Deactivate: true})
	require.NoError(t, err)
	require.Equal(t, activation.Deactivated, report.Activation)
	require.False(t, f.session.Active())
	require.Equal(t, 0, f.fs.Writes())
}

func TestNewRunner_AcceptsTUIConfirmer(t *testing.T) {
	f := newFixture(t)
	f.fs.AddFile("/workspace/demo/notes.txt", nil)
	runner := NewRunner(f.fs, f.pm, f.session, tui.AutoConfirmer(false), nil)

	_, err := runner.Run(context.Background(), scaffoldOptions("demo"))
	require.ErrorIs(t, err, ErrAborted)
}
