package main

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/qtbridge/bridgegen/internal/bridge"
	"github.com/qtbridge/bridgegen/internal/cli"
	"github.com/qtbridge/bridgegen/internal/config"
	"github.com/qtbridge/bridgegen/internal/diagnostic"
	"github.com/qtbridge/bridgegen/internal/logging"
	"github.com/qtbridge/bridgegen/internal/plan"
	"github.com/qtbridge/bridgegen/internal/position"
	"github.com/qtbridge/bridgegen/internal/report"
	"github.com/qtbridge/bridgegen/internal/typemap"
)

// runOptions describes one scan-and-report pass.
type runOptions struct {
	roots  []string
	plans  bool
	stdout io.Writer
	stderr io.Writer
}

// run scans roots, renders diagnostics to stderr and writes the report to
// stdout. It returns cli.ErrDiagnostics when errors were found.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts runOptions) error {
	roots := opts.roots
	if len(roots) == 0 {
		roots = []string{"."}
	}

	done := logging.Phase(logger, "discover", zap.Strings("roots", roots))
	files, err := bridge.Discover(roots, cfg.Scan.Extensions)
	if err != nil {
		return cli.WithCode(cli.ExitUsage, err)
	}
	done(zap.Int("files", len(files)))

	done = logging.Phase(logger, "scan", zap.Int("files", len(files)))
	scanner := bridge.NewScanner(cfg.Markers,
		bridge.WithWorkers(cfg.Scan.Workers),
		bridge.WithLogger(logger))
	results, err := scanner.ScanFiles(ctx, files)
	if err != nil {
		return cli.WithCode(cli.ExitUsage, err)
	}
	done()

	engine := newEngine(cfg, opts.stderr)
	for _, res := range results {
		engine.sources.AddFile(res.Filename, res.Source)
		for _, d := range res.Diagnostics {
			engine.AddDiagnostic(d)
		}
	}
	if err := engine.Render(opts.stderr); err != nil {
		return err
	}

	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return cli.WithCode(cli.ExitUsage, err)
	}

	r, err := report.Build(results, report.Options{
		Tool:    toolName,
		Version: cli.Version,
		Plans:   opts.plans || cfg.Output.Plans,
		Builder: plan.NewBuilder(typemap.New(cfg.Types)),
	})
	if err != nil {
		return cli.WithCode(cli.ExitDiagnostics, err)
	}
	if err := report.Write(opts.stdout, r, format); err != nil {
		return err
	}

	if engine.HasErrors() {
		return cli.ErrDiagnostics
	}
	return nil
}

type engine struct {
	*diagnostic.DiagnosticEngine
	sources *position.SourceMap
}

func newEngine(cfg *config.Config, stderr io.Writer) *engine {
	dc := diagnostic.DefaultConfig()
	dc.MaxErrors = cfg.Diagnostics.MaxErrors
	dc.WarningsAsErrors = cfg.Diagnostics.WarningsAsErrors
	dc.IgnoreCodes = cfg.Diagnostics.Ignore

	f, _ := stderr.(*os.File)
	dc.Color = diagnostic.ShouldColor(cfg.Diagnostics.Color, f)

	sources := position.NewSourceMap()
	return &engine{
		DiagnosticEngine: diagnostic.NewDiagnosticEngine(dc, sources),
		sources:          sources,
	}
}
