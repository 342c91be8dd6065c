package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qtbridge/bridgegen/internal/cli"
	"github.com/qtbridge/bridgegen/internal/config"
)

const counterSource = `#[cxx_qt::bridge]
mod ffi {
    #[cxx_qt::qobject]
    pub struct Counter {}

    impl cxx_qt::Constructor<(i32, QString), NewArguments = (i32,), InitializeArguments = ()> for qobject::Counter {}
}
`

const brokenSource = `#[cxx_qt::bridge]
mod ffi {
    #[cxx_qt::qobject]
    pub struct Broken {}

    impl cxx_qt::Constructor<(i32,), Arguments = (bool,)> for qobject::Broken {}
}
`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func loadConfig(t *testing.T, yamlText string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bridgegen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlText), 0o644))
	c, err := config.Load(path)
	require.NoError(t, err)
	return c
}

func runOnce(t *testing.T, c *config.Config, plans bool, roots ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), c, zap.NewNop(), runOptions{
		roots:  roots,
		plans:  plans,
		stdout: &stdout,
		stderr: &stderr,
	})
	return stdout.String(), stderr.String(), err
}

func TestCheckValidTree(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"src/counter.rs": counterSource,
		"src/notes.txt":  "not scanned",
	})
	c := loadConfig(t, "diagnostics:\n  color: never\n")

	stdout, stderr, err := runOnce(t, c, false, dir)
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "ffi::Counter : QObject")
	assert.Contains(t, stdout, "(i32, QString) new=(i32,) initialize=()")
	assert.Contains(t, stdout, "1 file(s), 1 object(s), 1 constructor(s), 0 error(s)")
	assert.NotContains(t, stdout, "plan ")
	assert.Equal(t, cli.ExitOK, cli.ExitCode(err))
}

func TestCheckReportsDiagnostics(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"good.rs":   counterSource,
		"broken.rs": brokenSource,
	})
	c := loadConfig(t, "diagnostics:\n  color: never\n")

	stdout, stderr, err := runOnce(t, c, false, dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cli.ErrDiagnostics))
	assert.Equal(t, cli.ExitDiagnostics, cli.ExitCode(err))
	assert.Contains(t, stderr, "broken.rs")
	assert.Contains(t, stdout, "1 error(s)")
}

func TestPlanText(t *testing.T) {
	dir := writeTree(t, map[string]string{"counter.rs": counterSource})
	c := loadConfig(t, "diagnostics:\n  color: never\n")

	stdout, _, err := runOnce(t, c, true, dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "plan Counter(qint32 arg0, QString arg1)")
	assert.Contains(t, stdout, "1. route-arguments route_arguments_counter_0(qint32, QString)")
	assert.Contains(t, stdout, "3. construct-base QObject()")
}

func TestPlanJSONWithTypeOverrides(t *testing.T) {
	dir := writeTree(t, map[string]string{"counter.rs": counterSource})
	c := loadConfig(t, `
output:
  format: json
types:
  QString: "::my::String"
diagnostics:
  color: never
`)

	stdout, _, err := runOnce(t, c, true, dir)
	require.NoError(t, err)

	var decoded struct {
		Tool    string `json:"tool"`
		Summary struct {
			Constructors int `json:"constructors"`
		} `json:"summary"`
		Files []struct {
			Objects []struct {
				Name  string `json:"name"`
				Plans []struct {
					Parameters []struct {
						Native  string `json:"native"`
						Foreign string `json:"foreign"`
					} `json:"parameters"`
				} `json:"plans"`
			} `json:"objects"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &decoded))
	assert.Equal(t, toolName, decoded.Tool)
	assert.Equal(t, 1, decoded.Summary.Constructors)
	require.Len(t, decoded.Files, 1)
	require.Len(t, decoded.Files[0].Objects, 1)
	require.Len(t, decoded.Files[0].Objects[0].Plans, 1)

	params := decoded.Files[0].Objects[0].Plans[0].Parameters
	require.Len(t, params, 2)
	assert.Equal(t, "i32", params[0].Native)
	assert.Equal(t, "qint32", params[0].Foreign)
	assert.Equal(t, "QString", params[1].Native)
	assert.Equal(t, "::my::String", params[1].Foreign)
}

func TestIgnoredCodesDoNotFail(t *testing.T) {
	dir := writeTree(t, map[string]string{"broken.rs": brokenSource})
	strict := loadConfig(t, "diagnostics:\n  color: never\n")
	_, stderr, err := runOnce(t, strict, false, dir)
	require.Error(t, err)

	code := firstCode(stderr)
	require.NotEmpty(t, code, "stderr: %s", stderr)

	relaxed := loadConfig(t, "diagnostics:\n  color: never\n  ignore: ["+code+"]\n")
	_, _, err = runOnce(t, relaxed, false, dir)
	assert.NoError(t, err)
}

func TestMissingRootIsUsageError(t *testing.T) {
	c := loadConfig(t, "diagnostics:\n  color: never\n")
	_, _, err := runOnce(t, c, false, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))
}

func TestUnknownFormatIsUsageError(t *testing.T) {
	dir := writeTree(t, map[string]string{"counter.rs": counterSource})
	c := loadConfig(t, "diagnostics:\n  color: never\n")
	c.Output.Format = "xml"

	_, _, err := runOnce(t, c, false, dir)
	require.Error(t, err)
	assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), toolName+" v"+cli.Version)
}

// firstCode returns the first diagnostic code of the form E0123 in s.
func firstCode(s string) string {
	for i := 0; i+5 <= len(s); i++ {
		if s[i] != 'E' {
			continue
		}
		ok := true
		for j := 1; j < 5; j++ {
			if s[i+j] < '0' || s[i+j] > '9' {
				ok = false
				break
			}
		}
		if ok {
			return s[i : i+5]
		}
	}
	return ""
}
