package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/jakoblorz/flaskgen/internal/config"
	"github.com/jakoblorz/flaskgen/internal/filesystem"
	"github.com/jakoblorz/flaskgen/internal/models"
	"github.com/jakoblorz/flaskgen/internal/tui"
	"github.com/jakoblorz/flaskgen/internal/venv"
	"github.com/jakoblorz/flaskgen/internal/workflow"
	"github.com/spf13/cobra"
)

// usageError marks errors caused by bad command-line input.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// IsUsageError reports whether err was caused by bad command-line input.
func IsUsageError(err error) bool {
	var ue *usageError
	return errors.As(err, &ue)
}

// RootCommand holds the dependencies and flag values of the root command.
type RootCommand struct {
	fs        filesystem.FileSystem
	pm        venv.PackageManager
	session   *venv.Session
	confirmer tui.Confirmer

	deactivate bool
	activate   bool
	port       int
	host       string
	prod       bool
	pages      []string
	yes        bool
	shell      bool
	verbose    bool
	configFile string
}

// NewRootCommand creates the root command. A nil pm is replaced by an
// OSPackageManager configured from the loaded config; a nil confirmer
// prompts on the command's input.
func NewRootCommand(fs filesystem.FileSystem, pm venv.PackageManager, session *venv.Session, confirmer tui.Confirmer) *cobra.Command {
	c := &RootCommand{
		fs:        fs,
		pm:        pm,
		session:   session,
		confirmer: confirmer,
	}

	rootCmd := &cobra.Command{
		Use:   "flaskgen [project-dir]",
		Short: "Scaffold Flask projects with a ready virtual environment",
		Long: `Create a Flask project skeleton, provision its virtual environment and
install its dependencies.

Without a project directory, -avenv activates the environment of the current
directory and -dvenv deactivates the active one. Activation applies to this
process; pass --shell and eval the output to apply it to your shell:

  eval "$(flaskgen -avenv --shell)"`,
		Example: `  flaskgen myapp
  flaskgen myapp -pt 8080 -ht 0.0.0.0 -prod
  flaskgen myapp -p about contact "Team Members"`,
		Args:          c.validateArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          c.Run,
	}

	flags := rootCmd.Flags()
	flags.BoolVar(&c.deactivate, "deactivate", false, "deactivate the virtual environment (legacy: -dvenv)")
	flags.BoolVar(&c.activate, "activate", false, "activate the virtual environment (legacy: -avenv)")
	flags.IntVar(&c.port, "port", 0, "default port of the generated server (legacy: -pt)")
	flags.StringVar(&c.host, "host", "", "default host of the generated server (legacy: -ht)")
	flags.BoolVar(&c.prod, "prod", false, "generate the server in production mode")
	flags.StringArrayVarP(&c.pages, "page", "p", nil, "additional page; -p consumes every following name")
	flags.BoolVarP(&c.yes, "yes", "y", false, "scaffold into a non-empty directory without asking")
	flags.BoolVar(&c.shell, "shell", false, "print shell statements applying the final activation state")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "trace commands and file writes")
	flags.StringVar(&c.configFile, "config", "", "config file (default ~/.flaskgen.yaml or ./.flaskgen.yaml)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	return rootCmd
}

func (c *RootCommand) validateArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return &usageError{err: fmt.Errorf("multiple project directories specified: %s", strings.Join(args, ", "))}
	}
	return nil
}

// Run executes the root command
func (c *RootCommand) Run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return &usageError{err: err}
	}

	opts := c.options(cmd, args, cfg)
	if opts.IsNoop() {
		return cmd.Help()
	}
	if opts.ProjectDir != "" {
		if err := opts.Validate(); err != nil {
			return &usageError{err: err}
		}
	}

	// With --shell, stdout is reserved for the eval-able statements
	out := cmd.OutOrStdout()
	if c.shell {
		out = cmd.ErrOrStderr()
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if c.verbose {
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	if cfg.File != "" {
		logger.Debug("loaded config", "file", cfg.File)
	}

	pm := c.pm
	if pm == nil {
		stdout := io.Discard
		if c.verbose {
			stdout = cmd.ErrOrStderr()
		}
		pm = venv.NewOSPackageManager(
			venv.WithPython(cfg.Python),
			venv.WithStdout(stdout),
			venv.WithLogger(logger),
		)
	}

	confirmer := c.confirmer
	if confirmer == nil {
		confirmer = tui.NewConfirmer(cmd.InOrStdin(), out)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runner := workflow.NewRunner(c.fs, pm, c.session, confirmer, out, workflow.WithLogger(logger))
	report, err := runner.Run(ctx, opts)
	if err != nil {
		if c.shell {
			fmt.Fprint(cmd.OutOrStdout(), c.session.ShellScript())
		}
		return err
	}

	if opts.ProjectDir != "" {
		printSummary(out, report, c.session)
	}
	if c.shell {
		fmt.Fprint(cmd.OutOrStdout(), c.session.ShellScript())
	}

	return nil
}

// options merges flag values over the loaded config.
func (c *RootCommand) options(cmd *cobra.Command, args []string, cfg *config.Config) models.Options {
	opts := models.Options{
		Host:       cfg.Host,
		Port:       cfg.Port,
		Mode:       cfg.Mode,
		Deactivate: c.deactivate,
		Activate:   c.activate,
		Pages:      c.pages,
		Yes:        c.yes,
		Shell:      c.shell,
	}
	if len(args) == 1 {
		opts.ProjectDir = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		opts.Host = c.host
	}
	if flags.Changed("port") {
		opts.Port = c.port
	}
	if c.prod {
		opts.Mode = models.ModeProduction
	}

	return opts
}

func printSummary(out io.Writer, report *workflow.Report, session *venv.Session) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, tui.Success(fmt.Sprintf("Project ready at %s", report.Root)))
	if report.Scaffold != nil {
		fmt.Fprintln(out, tui.SubtleStyle.Render(fmt.Sprintf("  %d created, %d replaced, %d kept",
			len(report.Scaffold.Created), len(report.Scaffold.Replaced), len(report.Scaffold.Skipped))))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, tui.TitleStyle.Render("Next steps:"))
	fmt.Fprintf(out, "  cd %s\n", report.Root)
	if session.Active() {
		fmt.Fprintln(out, "  source venv/bin/activate")
	}
	fmt.Fprintln(out, "  python app/app.py")
}

// legacyFlags maps multi-letter single-dash flags to their long forms.
var legacyFlags = map[string]string{
	"-dvenv": "--deactivate",
	"-avenv": "--activate",
	"-pt":    "--port",
	"-ht":    "--host",
	"-prod":  "--prod",
}

// NormalizeArgs rewrites legacy flags into forms cobra understands and
// expands `-p a b c` into one --page flag per name. A page list ends at the
// next token starting with "-".
func NormalizeArgs(args []string) []string {
	normalized := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			normalized = append(normalized, args[i:]...)
			break
		}

		name, value, hasValue := strings.Cut(arg, "=")
		if long, ok := legacyFlags[name]; ok {
			if hasValue {
				normalized = append(normalized, long+"="+value)
			} else {
				normalized = append(normalized, long)
			}
			continue
		}

		if arg == "-p" || arg == "--page" || arg == "--pages" {
			j := i + 1
			for j < len(args) && !strings.HasPrefix(args[j], "-") {
				normalized = append(normalized, "--page", args[j])
				j++
			}
			if j == i+1 {
				// no names; let cobra report the missing value
				normalized = append(normalized, "--page")
			}
			i = j - 1
			continue
		}

		normalized = append(normalized, arg)
	}

	return normalized
}

// Execute runs the root command
func Execute(version string) error {
	fs := filesystem.NewOSFileSystem()
	session := venv.NewSession(os.Getenv)

	rootCmd := NewRootCommand(fs, nil, session, nil)
	rootCmd.Version = version
	rootCmd.SetArgs(NormalizeArgs(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, tui.Error(err.Error()))

	switch {
	case IsUsageError(err):
		fmt.Fprintln(w, tui.HelpStyle.Render("Run 'flaskgen --help' for usage."))
	case errors.Is(err, workflow.ErrExistingProject):
		fmt.Fprintln(w, tui.HelpStyle.Render("Use -avenv inside the project to activate its environment."))
	}
}
