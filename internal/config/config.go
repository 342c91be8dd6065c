// Package config loads bridgegen settings from defaults, an optional YAML
// file and BRIDGEGEN_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/qtbridge/bridgegen/internal/bridge"
)

// EnvPrefix prefixes every environment override. The first underscore
// after the prefix separates section and key, so
// BRIDGEGEN_DIAGNOSTICS_MAX_ERRORS sets diagnostics.max_errors.
const EnvPrefix = "BRIDGEGEN_"

// DefaultFile is looked up in the working directory when no file is given.
const DefaultFile = "bridgegen.yaml"

// Config is the full tool configuration.
type Config struct {
	Log         LogConfig         `koanf:"log"`
	Markers     bridge.Markers    `koanf:"markers"`
	Scan        ScanConfig        `koanf:"scan"`
	Output      OutputConfig      `koanf:"output"`
	Diagnostics DiagnosticsConfig `koanf:"diagnostics"`
	// Types overrides the C++ spelling of argument types.
	Types map[string]string `koanf:"types"`
	// Requires is a version constraint the running tool must satisfy,
	// e.g. ">= 1.0, < 2".
	Requires string `koanf:"requires"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, console
	File   string `koanf:"file"`
}

type ScanConfig struct {
	Workers    int      `koanf:"workers"`
	Extensions []string `koanf:"extensions"`
}

type OutputConfig struct {
	Format string `koanf:"format"` // text, json, yaml
	Plans  bool   `koanf:"plans"`
}

type DiagnosticsConfig struct {
	MaxErrors        int      `koanf:"max_errors"`
	WarningsAsErrors bool     `koanf:"warnings_as_errors"`
	Color            string   `koanf:"color"` // auto, always, never
	Ignore           []string `koanf:"ignore"`
}

func defaults() map[string]any {
	markers := bridge.DefaultMarkers()
	return map[string]any{
		"log.level":                      "warn",
		"log.format":                     "console",
		"log.file":                       "",
		"markers.bridge":                 markers.Bridge,
		"markers.qobject":                markers.QObject,
		"markers.constructor":            markers.Constructor,
		"scan.workers":                   0,
		"scan.extensions":                []string{".rs"},
		"output.format":                  "text",
		"output.plans":                   false,
		"diagnostics.max_errors":         50,
		"diagnostics.warnings_as_errors": false,
		"diagnostics.color":              "auto",
		"requires":                       "",
	}
}

// Load builds the configuration. path may be empty, in which case
// DefaultFile is used if it exists. A path given explicitly must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, err
		}
	}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps BRIDGEGEN_SCAN_WORKERS to scan.workers.
func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}

// Validate checks values that koanf cannot check by type.
func (c *Config) Validate() error {
	var errs []error

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	switch c.Output.Format {
	case "text", "json", "yaml", "yml":
	default:
		errs = append(errs, fmt.Errorf("output.format: unknown format %q", c.Output.Format))
	}
	switch c.Diagnostics.Color {
	case "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("diagnostics.color: must be auto, always or never, got %q", c.Diagnostics.Color))
	}
	if c.Diagnostics.MaxErrors < 0 {
		errs = append(errs, errors.New("diagnostics.max_errors: must not be negative"))
	}
	if len(c.Markers.Constructor) == 0 {
		errs = append(errs, errors.New("markers.constructor: at least one marker is required"))
	}
	if len(c.Markers.Bridge) == 0 {
		errs = append(errs, errors.New("markers.bridge: at least one marker is required"))
	}
	if c.Requires != "" {
		if _, err := semver.NewConstraint(c.Requires); err != nil {
			errs = append(errs, fmt.Errorf("requires: %w", err))
		}
	}

	return errors.Join(errs...)
}

// CheckVersion reports an error when version does not satisfy Requires.
func (c *Config) CheckVersion(version string) error {
	if c.Requires == "" {
		return nil
	}

	constraint, err := semver.NewConstraint(c.Requires)
	if err != nil {
		return fmt.Errorf("requires: %w", err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("tool version %q: %w", version, err)
	}

	if ok, reasons := constraint.Validate(v); !ok {
		msgs := make([]string, len(reasons))
		for i, r := range reasons {
			msgs[i] = r.Error()
		}
		return fmt.Errorf("bridgegen %s does not satisfy %q: %s", v, c.Requires, strings.Join(msgs, "; "))
	}
	return nil
}
