package position

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// SpanHighlighter renders source snippets with the covered columns
// underlined by carets, in the style:
//
//	   3 | impl cxx_qt::Constructor<(), NewArguments = (bool)> for qobject::T {}
//	     |                                                ^^^^^^
type SpanHighlighter struct {
	sourceMap *SourceMap

	// Context is the number of lines shown before and after the span.
	Context int
}

// NewSpanHighlighter creates a new span highlighter.
func NewSpanHighlighter(sourceMap *SourceMap) *SpanHighlighter {
	return &SpanHighlighter{sourceMap: sourceMap}
}

// HighlightSpan returns the lines covered by span, each followed by a caret
// line marking the covered columns. It returns "" when the file is unknown.
func (sh *SpanHighlighter) HighlightSpan(span Span) string {
	if !span.IsValid() {
		return ""
	}

	file := sh.sourceMap.GetFile(span.Start.Filename)
	if file == nil {
		return ""
	}

	var result strings.Builder

	startLine := max(1, span.Start.Line-sh.Context)
	endLine := min(len(file.Lines), span.End.Line+sh.Context)
	gutter := len(fmt.Sprint(endLine))

	for lineNum := startLine; lineNum <= endLine; lineNum++ {
		line := file.GetLine(lineNum)
		fmt.Fprintf(&result, "%*d | %s\n", gutter, lineNum, line)

		if lineNum >= span.Start.Line && lineNum <= span.End.Line {
			fmt.Fprintf(&result, "%*s | ", gutter, "")
			sh.addHighlighting(&result, lineNum, line, span)
			result.WriteString("\n")
		}
	}

	return result.String()
}

// addHighlighting writes the caret run for one line of a (possibly multi-line) span.
func (sh *SpanHighlighter) addHighlighting(result *strings.Builder, lineNum int, line string, span Span) {
	lineEnd := utf8.RuneCountInString(line) + 1

	switch {
	case lineNum == span.Start.Line && lineNum == span.End.Line:
		addSingleLineHighlight(result, line, span.Start.Column, span.End.Column)
	case lineNum == span.Start.Line:
		addSingleLineHighlight(result, line, span.Start.Column, lineEnd)
	case lineNum == span.End.Line:
		addSingleLineHighlight(result, line, 1, span.End.Column)
	default:
		addSingleLineHighlight(result, line, 1, lineEnd)
	}
}

// addSingleLineHighlight adds carets between the given 1-based columns.
// Tabs before the highlight are preserved so carets line up.
func addSingleLineHighlight(result *strings.Builder, line string, startCol, endCol int) {
	runes := []rune(line)

	for i := 1; i < startCol; i++ {
		if i <= len(runes) && runes[i-1] == '\t' {
			result.WriteString("\t")
		} else {
			result.WriteString(" ")
		}
	}

	// Zero-width spans still get one caret.
	width := max(1, endCol-startCol)
	if limit := len(runes) - startCol + 1; limit > 0 && width > limit {
		width = limit
	}
	result.WriteString(strings.Repeat("^", width))
}
