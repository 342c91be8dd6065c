package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestPrintVersionText(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintVersion(&buf, "bridgegen", false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "bridgegen v"+Version+"\n") {
		t.Errorf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "Go Version: ") {
		t.Errorf("missing Go version: %q", out)
	}
}

func TestPrintVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintVersion(&buf, "bridgegen", true); err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Tool        string      `json:"tool"`
		VersionInfo VersionInfo `json:"version_info"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Tool != "bridgegen" || decoded.VersionInfo.Version != Version {
		t.Errorf("unexpected version info: %+v", decoded)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{ErrDiagnostics, ExitDiagnostics},
		{fmt.Errorf("check: %w", ErrDiagnostics), ExitDiagnostics},
		{WithCode(ExitUsage, errors.New("bad flag")), ExitUsage},
		{errors.New("plain"), ExitUsage},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}

	base := errors.New("boom")
	if !errors.Is(WithCode(3, base), base) {
		t.Error("ExitError should unwrap to its cause")
	}
}
