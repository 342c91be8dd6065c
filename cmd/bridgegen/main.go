// Command bridgegen checks bridge definitions and prints the construction
// plans derived from their constructor declarations.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qtbridge/bridgegen/internal/cli"
	"github.com/qtbridge/bridgegen/internal/config"
	"github.com/qtbridge/bridgegen/internal/logging"
)

const toolName = "bridgegen"

var (
	// Global flags
	configPath string
	verbose    bool
	format     string
	colorMode  string
	workers    int

	// Set up by the root command before any subcommand runs.
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   toolName,
	Short: "Check bridge definitions and plan their constructors",
	Long: `bridgegen reads bridge modules, validates every
impl cxx_qt::Constructor<...> declaration and derives the construction
sequence the generated object runs:

  route arguments -> create native storage -> construct base -> initialize

Configuration is read from bridgegen.yaml (or --config) and BRIDGEGEN_*
environment variables. Flags override both.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "configuration file (default ./bridgegen.yaml if present)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVarP(&format, "format", "f", "", "output format: text, json or yaml")
	flags.StringVar(&colorMode, "color", "", "color diagnostics: auto, always or never")
	flags.IntVarP(&workers, "jobs", "j", 0, "files scanned in parallel (default one per CPU)")

	rootCmd.AddCommand(checkCmd, planCmd, watchCmd, versionCmd)
}

// setup loads configuration, applies flag overrides and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	if cmd == versionCmd {
		logger = zap.NewNop()
		return nil
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return cli.WithCode(cli.ExitUsage, err)
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		loaded.Output.Format = format
	}
	if flags.Changed("color") {
		loaded.Diagnostics.Color = colorMode
	}
	if flags.Changed("jobs") {
		loaded.Scan.Workers = workers
	}
	if verbose {
		loaded.Log.Level = "debug"
	}
	if err := loaded.Validate(); err != nil {
		return cli.WithCode(cli.ExitUsage, err)
	}
	if err := loaded.CheckVersion(cli.Version); err != nil {
		return cli.WithCode(cli.ExitUsage, err)
	}

	l, err := logging.New(logging.Config{
		Level:  loaded.Log.Level,
		Format: loaded.Log.Format,
		File:   loaded.Log.File,
	})
	if err != nil {
		return cli.WithCode(cli.ExitUsage, fmt.Errorf("failed to initialize logger: %w", err))
	}

	cfg, logger = loaded, l
	return nil
}

func main() {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, cli.ErrDiagnostics) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.ExitCode(err))
}
