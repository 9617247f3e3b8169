// Package app wires configuration, logging and the presentation layers
// around the LCS engine and exposes them as the lcscalc command tree.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agbru/lcscalc/internal/config"
	apperrors "github.com/agbru/lcscalc/internal/errors"
	"github.com/agbru/lcscalc/internal/lcs"
	"github.com/agbru/lcscalc/internal/ui"
)

// Application represents the lcscalc application instance.
type Application struct {
	Config    config.AppConfig
	Factory   lcs.SolverFactory
	Out       io.Writer
	ErrWriter io.Writer

	logger zerolog.Logger
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithFactory sets a custom SolverFactory for the application.
func WithFactory(f lcs.SolverFactory) AppOption {
	return func(a *Application) { a.Factory = f }
}

// New creates an application writing results to out and diagnostics to errWriter.
func New(out, errWriter io.Writer, opts ...AppOption) *Application {
	app := &Application{
		Config:    config.DefaultConfig(),
		Out:       out,
		ErrWriter: errWriter,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.Factory == nil {
		app.Factory = lcs.NewDefaultFactory()
	}
	return app
}

// exitError carries an exit code out of a cobra RunE.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func (e *exitError) ExitCode() int { return e.code }

// withCode turns a non-zero exit code into an error for cobra. The message
// has already been shown, so err stays nil.
func withCode(code int) error {
	if code == apperrors.ExitSuccess {
		return nil
	}
	return &exitError{code: code}
}

// Run executes the command line args (without the program name) and
// returns the process exit code.
func (a *Application) Run(ctx context.Context, args []string) int {
	root := a.NewRootCommand()
	root.SetArgs(args)
	root.SetOut(a.Out)
	root.SetErr(a.ErrWriter)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return apperrors.ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) && ee.err == nil {
		return ee.code
	}
	fmt.Fprintf(a.ErrWriter, "%sError:%s %v\n", ui.ColorRed(), ui.ColorReset(), err)
	return apperrors.ExitCodeFor(err)
}

// NewRootCommand builds the command tree. The root command runs a
// comparison, like `lcscalc run`.
func (a *Application) NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lcscalc",
		Short: "Longest common subsequence of two sequences, sequential or in parallel",
		Long: `lcscalc fills the LCS dynamic-programming table of two sequences with a
sequential, a wavefront-parallel or a row-band distributed strategy, and
reconstructs one longest common subsequence.

Example:
  lcscalc --a GATTACA --b TAGATCA
  lcscalc run --input pairs.csv --row 3 --strategy all --details`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCode(a.runCompare(cmd.Context()))
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperrors.ConfigError{Message: err.Error()}
	})

	cmd.SetVersionTemplate(versionString() + "\n")
	config.BindFlags(cmd.PersistentFlags(), &a.Config)

	cmd.AddCommand(
		a.newRunCommand(),
		a.newRankCommand(),
		a.newServeCommand(),
		a.newCalibrateCommand(),
		newVersionCommand(),
	)
	return cmd
}

func (a *Application) newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Compute the LCS with one strategy or compare all of them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCode(a.runCompare(cmd.Context()))
		},
	}
}

// setup resolves the configuration and initialises logging and colours.
func (a *Application) setup(fs *pflag.FlagSet) error {
	if err := config.Resolve(&a.Config, fs); err != nil {
		return err
	}
	logger, err := newLogger(a.Config, a.ErrWriter)
	if err != nil {
		return err
	}
	a.logger = logger
	out := stdoutFile(a.Out)
	ui.InitTheme(a.Config.Quiet || out == nil, out)
	return nil
}

// stdoutFile returns w as a file when it is one, so colour detection can
// inspect it.
func stdoutFile(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}
