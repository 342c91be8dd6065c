// Diagnostic system for bridge definitions.
// Every problem found while reading a bridge is reported as a Diagnostic
// carrying a kind, a stable code and the span it was found at.

package diagnostic

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/qtbridge/bridgegen/internal/position"
)

// DiagnosticLevel represents the severity level of a diagnostic message.
type DiagnosticLevel int

const (
	DiagnosticError DiagnosticLevel = iota
	DiagnosticWarning
	DiagnosticInfo
	DiagnosticHint
)

func (dl DiagnosticLevel) String() string {
	switch dl {
	case DiagnosticError:
		return "error"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticInfo:
		return "info"
	case DiagnosticHint:
		return "hint"
	default:
		return "unknown"
	}
}

// DiagnosticCategory represents the category of diagnostic.
type DiagnosticCategory int

const (
	DiagnosticSyntax DiagnosticCategory = iota
	DiagnosticConstructor
	DiagnosticBridge
)

func (dc DiagnosticCategory) String() string {
	switch dc {
	case DiagnosticSyntax:
		return "syntax"
	case DiagnosticConstructor:
		return "constructor"
	case DiagnosticBridge:
		return "bridge"
	default:
		return "unknown"
	}
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	Kind        Kind
	Code        string
	Title       string
	Message     string
	Suggestions []Suggestion
	RelatedInfo []RelatedInformation
	Span        position.Span
	Level       DiagnosticLevel
	Category    DiagnosticCategory
}

// Error implements the error interface so diagnostics can travel through
// ordinary error returns.
func (d *Diagnostic) Error() string {
	if d.Span.IsValid() {
		return fmt.Sprintf("%s: %s", d.Span.Start, d.Message)
	}
	return d.Message
}

// Suggestion represents a suggested fix for a diagnostic.
type Suggestion struct {
	Title       string
	Description string
}

// RelatedInformation provides additional context for a diagnostic.
type RelatedInformation struct {
	Message string
	Span    position.Span
}

// As extracts a *Diagnostic from err, if it wraps one.
func As(err error) (*Diagnostic, bool) {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// KindOf returns the kind of the diagnostic wrapped by err, or KindUnknown.
func KindOf(err error) Kind {
	if d, ok := As(err); ok {
		return d.Kind
	}
	return KindUnknown
}

// DiagnosticBuilder helps construct diagnostic messages with fluent API.
type DiagnosticBuilder struct {
	diagnostic *Diagnostic
}

// NewDiagnostic creates a new diagnostic builder.
func NewDiagnostic() *DiagnosticBuilder {
	return &DiagnosticBuilder{diagnostic: &Diagnostic{}}
}

// Of starts a builder pre-filled with the code, title and category of kind.
func Of(kind Kind) *DiagnosticBuilder {
	return NewDiagnostic().Kind(kind)
}

func (db *DiagnosticBuilder) Error() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticError

	return db
}

func (db *DiagnosticBuilder) Warning() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticWarning

	return db
}

func (db *DiagnosticBuilder) Info() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticInfo

	return db
}

func (db *DiagnosticBuilder) Hint() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticHint

	return db
}

// Kind sets the kind along with its code, title and category.
func (db *DiagnosticBuilder) Kind(kind Kind) *DiagnosticBuilder {
	db.diagnostic.Kind = kind
	db.diagnostic.Code = kind.Code()
	db.diagnostic.Title = kind.Title()
	db.diagnostic.Category = kind.Category()

	return db
}

func (db *DiagnosticBuilder) Code(code string) *DiagnosticBuilder {
	db.diagnostic.Code = code

	return db
}

func (db *DiagnosticBuilder) Title(title string) *DiagnosticBuilder {
	db.diagnostic.Title = title

	return db
}

func (db *DiagnosticBuilder) Message(message string) *DiagnosticBuilder {
	db.diagnostic.Message = message

	return db
}

func (db *DiagnosticBuilder) Messagef(format string, args ...any) *DiagnosticBuilder {
	db.diagnostic.Message = fmt.Sprintf(format, args...)

	return db
}

func (db *DiagnosticBuilder) Span(span position.Span) *DiagnosticBuilder {
	db.diagnostic.Span = span

	return db
}

func (db *DiagnosticBuilder) Suggest(title, description string) *DiagnosticBuilder {
	db.diagnostic.Suggestions = append(db.diagnostic.Suggestions, Suggestion{
		Title:       title,
		Description: description,
	})

	return db
}

func (db *DiagnosticBuilder) Related(span position.Span, message string) *DiagnosticBuilder {
	db.diagnostic.RelatedInfo = append(db.diagnostic.RelatedInfo, RelatedInformation{
		Span:    span,
		Message: message,
	})

	return db
}

func (db *DiagnosticBuilder) Build() *Diagnostic {
	return db.diagnostic
}

// DiagnosticEngine manages the collection and rendering of diagnostics.
type DiagnosticEngine struct {
	diagnostics []*Diagnostic
	config      DiagnosticConfig
	sources     *position.SourceMap
	dropped     int
}

// DiagnosticConfig controls diagnostic behavior.
type DiagnosticConfig struct {
	IgnoreCodes      []string
	MaxErrors        int // 0 means unlimited
	WarningsAsErrors bool
	ShowSuggestions  bool
	ShowRelatedInfo  bool
	ShowSnippets     bool
	Color            bool
}

// DefaultConfig returns the configuration used by the command line tool.
func DefaultConfig() DiagnosticConfig {
	return DiagnosticConfig{
		MaxErrors:       50,
		ShowSuggestions: true,
		ShowRelatedInfo: true,
		ShowSnippets:    true,
	}
}

// NewDiagnosticEngine creates a new diagnostic engine. sources may be nil,
// in which case no snippets are rendered.
func NewDiagnosticEngine(config DiagnosticConfig, sources *position.SourceMap) *DiagnosticEngine {
	return &DiagnosticEngine{
		config:  config,
		sources: sources,
	}
}

// AddDiagnostic adds a diagnostic to the engine.
func (de *DiagnosticEngine) AddDiagnostic(diagnostic *Diagnostic) {
	if de.shouldIgnore(diagnostic) {
		return
	}

	if de.config.WarningsAsErrors && diagnostic.Level == DiagnosticWarning {
		diagnostic.Level = DiagnosticError
	}

	if diagnostic.Level == DiagnosticError && de.config.MaxErrors > 0 && de.ErrorCount() >= de.config.MaxErrors {
		de.dropped++
		return
	}

	de.diagnostics = append(de.diagnostics, diagnostic)
}

// AddError records err. Errors that are not diagnostics are wrapped in a
// diagnostic without a span.
func (de *DiagnosticEngine) AddError(err error) {
	if err == nil {
		return
	}
	if d, ok := As(err); ok {
		de.AddDiagnostic(d)
		return
	}
	de.AddDiagnostic(NewDiagnostic().Error().Title("error").Message(err.Error()).Build())
}

func (de *DiagnosticEngine) shouldIgnore(diagnostic *Diagnostic) bool {
	for _, code := range de.config.IgnoreCodes {
		if diagnostic.Code == code {
			return true
		}
	}
	return false
}

// GetDiagnostics returns all diagnostics.
func (de *DiagnosticEngine) GetDiagnostics() []*Diagnostic {
	return de.diagnostics
}

// ErrorCount returns the number of error-level diagnostics kept.
func (de *DiagnosticEngine) ErrorCount() int {
	count := 0
	for _, diag := range de.diagnostics {
		if diag.Level == DiagnosticError {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warning-level diagnostics kept.
func (de *DiagnosticEngine) WarningCount() int {
	count := 0
	for _, diag := range de.diagnostics {
		if diag.Level == DiagnosticWarning {
			count++
		}
	}
	return count
}

// Dropped returns how many errors were discarded after MaxErrors was reached.
func (de *DiagnosticEngine) Dropped() int {
	return de.dropped
}

// HasErrors returns true if there are any errors.
func (de *DiagnosticEngine) HasErrors() bool {
	return de.ErrorCount() > 0 || de.dropped > 0
}

// Clear removes all diagnostics.
func (de *DiagnosticEngine) Clear() {
	de.diagnostics = de.diagnostics[:0]
	de.dropped = 0
}

// SortDiagnostics sorts diagnostics by position and severity.
func (de *DiagnosticEngine) SortDiagnostics() {
	sort.SliceStable(de.diagnostics, func(i, j int) bool {
		a, b := de.diagnostics[i], de.diagnostics[j]

		if a.Span.Start.Filename != b.Span.Start.Filename {
			return a.Span.Start.Filename < b.Span.Start.Filename
		}

		if a.Span.Start.Line != b.Span.Start.Line {
			return a.Span.Start.Line < b.Span.Start.Line
		}

		if a.Span.Start.Column != b.Span.Start.Column {
			return a.Span.Start.Column < b.Span.Start.Column
		}

		return a.Level < b.Level
	})
}

// FormatDiagnostics returns a formatted string representation of all diagnostics.
func (de *DiagnosticEngine) FormatDiagnostics() string {
	var result strings.Builder
	_ = de.Render(&result)
	return result.String()
}

// Render writes every diagnostic followed by a summary line.
func (de *DiagnosticEngine) Render(w io.Writer) error {
	if len(de.diagnostics) == 0 && de.dropped == 0 {
		return nil
	}

	de.SortDiagnostics()

	var result strings.Builder

	for i, diag := range de.diagnostics {
		if i > 0 {
			result.WriteString("\n")
		}

		result.WriteString(de.formatSingleDiagnostic(diag))
	}

	result.WriteString(de.formatSummary())

	_, err := io.WriteString(w, result.String())
	return err
}

func (de *DiagnosticEngine) paint(code, text string) string {
	if !de.config.Color {
		return text
	}
	return code + text + ansiReset
}

func levelColor(level DiagnosticLevel) string {
	switch level {
	case DiagnosticError:
		return ansiRed
	case DiagnosticWarning:
		return ansiYellow
	default:
		return ansiCyan
	}
}

// formatSingleDiagnostic formats a single diagnostic:
//
//	file:line:col: error[E0104]: duplicate constructor role
//	  Duplicate associated type definition!
//	   1 | impl ...
//	     |      ^^^
func (de *DiagnosticEngine) formatSingleDiagnostic(diag *Diagnostic) string {
	var result strings.Builder

	label := diag.Level.String()
	if diag.Code != "" {
		label = fmt.Sprintf("%s[%s]", label, diag.Code)
	}

	if diag.Span.IsValid() {
		result.WriteString(de.paint(ansiBold, diag.Span.Start.String()) + ": ")
	}
	fmt.Fprintf(&result, "%s: %s\n", de.paint(levelColor(diag.Level), label), diag.Title)

	if diag.Message != "" {
		for _, line := range strings.Split(diag.Message, "\n") {
			fmt.Fprintf(&result, "  %s\n", line)
		}
	}

	if de.config.ShowSnippets && de.sources != nil {
		highlighter := position.NewSpanHighlighter(de.sources)
		if snippet := highlighter.HighlightSpan(diag.Span); snippet != "" {
			result.WriteString(indent(snippet, "  "))
		}
	}

	if de.config.ShowSuggestions && len(diag.Suggestions) > 0 {
		result.WriteString("  Suggestions:\n")

		for _, suggestion := range diag.Suggestions {
			fmt.Fprintf(&result, "    - %s: %s\n", suggestion.Title, suggestion.Description)
		}
	}

	if de.config.ShowRelatedInfo && len(diag.RelatedInfo) > 0 {
		result.WriteString("  Related:\n")

		for _, related := range diag.RelatedInfo {
			fmt.Fprintf(&result, "    %s: %s\n", related.Span.Start, related.Message)
		}
	}

	return result.String()
}

func indent(text, prefix string) string {
	lines := strings.SplitAfter(text, "\n")
	var result strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		result.WriteString(prefix + line)
	}
	return result.String()
}

// formatSummary formats a summary of all diagnostics.
func (de *DiagnosticEngine) formatSummary() string {
	errorCount := de.ErrorCount() + de.dropped
	warningCount := de.WarningCount()

	if errorCount == 0 && warningCount == 0 {
		return "\nNo issues found.\n"
	}

	var parts []string
	if errorCount > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", errorCount))
	}

	if warningCount > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", warningCount))
	}

	summary := fmt.Sprintf("\nFound %s.\n", strings.Join(parts, ", "))
	if de.dropped > 0 {
		summary += fmt.Sprintf("Stopped reporting after %d errors.\n", de.config.MaxErrors)
	}
	return summary
}
