package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/bugbench/internal/bugsjs"
	"github.com/dshills/bugbench/internal/config"
	"github.com/dshills/bugbench/internal/eval"
	"github.com/dshills/bugbench/internal/providers"
)

const version = "0.1.0"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitRuntimeError = 4
)

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// fail classifies err: configuration and credential problems map to
// ExitConfigError, everything else to ExitRuntimeError.
func fail(err error) error {
	if err == nil {
		return nil
	}
	code := ExitRuntimeError
	switch {
	case errors.Is(err, eval.ErrConfiguration),
		errors.Is(err, bugsjs.ErrConfiguration),
		errors.Is(err, config.ErrInvalid),
		providers.IsAuthError(err):
		code = ExitConfigError
	}
	return &exitError{code: code, err: err}
}

// env bundles the process-level collaborators of a command.
type env struct {
	stdout  io.Writer
	stderr  io.Writer
	getenv  func(string) string
	verbose bool
	// checkout replaces the BugsJS main.py driver when set.
	checkout bugsjs.CheckoutFunc
}

func (e *env) logger() *slog.Logger {
	level := slog.LevelWarn
	if e.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(e.stderr, &slog.HandlerOptions{Level: level}))
}

// Run executes the root command with the process arguments and returns an
// exit code.
func Run() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	return execute(&env{stdout: stdout, stderr: stderr, getenv: os.Getenv}, args)
}

func execute(e *env, args []string) int {
	root := newRootCmd(e)
	root.SetArgs(args)
	root.SetOut(e.stdout)
	root.SetErr(e.stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		return ExitUsageError
	}
	return ExitSuccess
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "bugbench",
		Short: "Build BugsJS review datasets and score LLM reviewers against them",
		Long: "bugbench converts BugsJS bugs into a code-review dataset with ground truth, " +
			"then evaluates LLM reviewers on it and reports detection and label accuracy.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	root.AddCommand(newConvertCmd(e))
	root.AddCommand(newEvaluateCmd(e))
	root.AddCommand(newProvidersCmd(e))
	root.AddCommand(newConfigCmd(e))
	root.AddCommand(newCacheCmd(e))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print bugbench version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(e.stdout, "bugbench version %s\n", version)
		},
	})
	return root
}
