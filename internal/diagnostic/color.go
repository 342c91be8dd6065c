package diagnostic

import (
	"os"
	"strings"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

// ShouldColor resolves a color mode ("auto", "always", "never") for f.
// In auto mode color is used only when f is a terminal and NO_COLOR is unset.
func ShouldColor(mode string, f *os.File) bool {
	switch strings.ToLower(mode) {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" || f == nil {
		return false
	}
	return isTerminal(f.Fd())
}
