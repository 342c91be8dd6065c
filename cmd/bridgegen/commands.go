package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qtbridge/bridgegen/internal/cli"
	"github.com/qtbridge/bridgegen/internal/watch"
)

var (
	versionJSON   bool
	watchDebounce time.Duration
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Validate the constructor declarations of bridge modules",
	Long: `Scans the given files and directories (default: the current directory)
for bridge modules and validates every constructor declaration. Diagnostics
are printed to stderr. The exit status is 1 when any error was found.`,
	RunE: runCheck,
}

var planCmd = &cobra.Command{
	Use:   "plan [paths...]",
	Short: "Print the construction plan of every qobject",
	Long: `Like check, but also derives the construction steps of every
constructor with the C++ spelling of each argument.`,
	RunE: runPlan,
}

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Re-check bridge modules whenever they change",
	RunE:  runWatch,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.PrintVersion(cmd.OutOrStdout(), toolName, versionJSON)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print version information as JSON")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 200*time.Millisecond, "wait this long for more changes before re-checking")
}

func runCheck(cmd *cobra.Command, args []string) error {
	return run(cmd.Context(), cfg, logger, runOptions{
		roots:  args,
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
	})
}

func runPlan(cmd *cobra.Command, args []string) error {
	return run(cmd.Context(), cfg, logger, runOptions{
		roots:  args,
		plans:  true,
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
	})
}

func runWatch(cmd *cobra.Command, args []string) error {
	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(watch.Options{
		Extensions: cfg.Scan.Extensions,
		Debounce:   watchDebounce,
		Logger:     logger,
	})
	if err != nil {
		return cli.WithCode(cli.ExitUsage, fmt.Errorf("failed to start watcher: %w", err))
	}
	defer w.Close()

	if err := w.Add(roots...); err != nil {
		return cli.WithCode(cli.ExitUsage, err)
	}

	opts := runOptions{roots: roots, stdout: cmd.OutOrStdout(), stderr: cmd.ErrOrStderr()}
	check := func() error {
		err := run(ctx, cfg, logger, opts)
		if errors.Is(err, cli.ErrDiagnostics) {
			return nil
		}
		return err
	}

	if err := check(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %d path(s). Press Ctrl+C to stop.\n", len(roots))

	var runErr error
	err = w.Run(ctx, func(changed []string) {
		logger.Info("re-checking", zap.Strings("changed", changed))
		fmt.Fprintf(cmd.ErrOrStderr(), "\n--- %s: %d file(s) changed\n", time.Now().Format("15:04:05"), len(changed))
		if err := check(); err != nil && runErr == nil {
			runErr = err
			stop()
		}
	}, func(err error) {
		logger.Warn("watcher error", zap.Error(err))
	})
	if runErr != nil {
		return runErr
	}
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
