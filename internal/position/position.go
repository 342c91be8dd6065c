// Package position provides source location tracking for bridge files.
// Every syntax node, token and diagnostic carries a Span captured at
// parse time, so diagnostics stay valid after the syntax tree is dropped.
package position

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Position represents a single point in source code
type Position struct {
	Filename string // Source file name
	Line     int    // 1-based line number
	Column   int    // 1-based column number, counted in runes
	Offset   int    // 0-based byte offset in source
}

// IsValid returns true if the position is valid
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0 && p.Offset >= 0
}

// String returns a string representation of the position
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", filepath.Base(p.Filename), p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before returns true if this position comes before other
func (p Position) Before(other Position) bool {
	if p.Filename != other.Filename {
		return p.Filename < other.Filename
	}
	return p.Offset < other.Offset
}

// After returns true if this position comes after other
func (p Position) After(other Position) bool {
	if p.Filename != other.Filename {
		return p.Filename > other.Filename
	}
	return p.Offset > other.Offset
}

// Span represents a range of source code between two positions
type Span struct {
	Start Position // inclusive
	End   Position // exclusive
}

// IsValid returns true if the span is valid
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid() &&
		s.Start.Filename == s.End.Filename &&
		s.Start.Offset <= s.End.Offset
}

// String returns a string representation of the span
func (s Span) String() string {
	if s.Start.Filename != "" {
		filename := filepath.Base(s.Start.Filename)
		if s.Start.Line == s.End.Line {
			return fmt.Sprintf("%s:%d:%d-%d", filename, s.Start.Line, s.Start.Column, s.End.Column)
		}
		return fmt.Sprintf("%s:%d:%d-%d:%d", filename, s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
	}

	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%d:%d-%d", s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// Contains returns true if the span contains the given position
func (s Span) Contains(pos Position) bool {
	if !s.IsValid() || !pos.IsValid() {
		return false
	}
	if s.Start.Filename != pos.Filename {
		return false
	}
	return s.Start.Offset <= pos.Offset && pos.Offset < s.End.Offset
}

// Encloses reports whether other lies entirely inside s.
func (s Span) Encloses(other Span) bool {
	if !s.IsValid() || !other.IsValid() || s.Start.Filename != other.Start.Filename {
		return false
	}
	return s.Start.Offset <= other.Start.Offset && other.End.Offset <= s.End.Offset
}

// Union returns a span that encompasses both this span and other
func (s Span) Union(other Span) Span {
	if !s.IsValid() {
		return other
	}
	if !other.IsValid() {
		return s
	}
	if s.Start.Filename != other.Start.Filename {
		return s
	}

	start := s.Start
	if other.Start.Before(start) {
		start = other.Start
	}

	end := s.End
	if other.End.After(end) {
		end = other.End
	}

	return Span{Start: start, End: end}
}

// Between returns the span running from the start of first to the end of last.
func Between(first, last Span) Span {
	return Span{Start: first.Start, End: last.End}
}

// Length returns the length of the span in bytes
func (s Span) Length() int {
	if !s.IsValid() {
		return 0
	}
	return s.End.Offset - s.Start.Offset
}

// SourceFile represents a source file with content and position tracking
type SourceFile struct {
	Filename string
	Content  string
	Lines    []string

	lineStarts []int // byte offset of each line start
}

// NewSourceFile creates a new source file from content
func NewSourceFile(filename, content string) *SourceFile {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &SourceFile{
		Filename:   filename,
		Content:    content,
		Lines:      strings.Split(content, "\n"),
		lineStarts: starts,
	}
}

// GetLine returns the specified line (1-based) or empty string if invalid
func (sf *SourceFile) GetLine(lineNum int) string {
	if lineNum < 1 || lineNum > len(sf.Lines) {
		return ""
	}
	return strings.TrimSuffix(sf.Lines[lineNum-1], "\r")
}

// GetSpanText returns the text covered by the span
func (sf *SourceFile) GetSpanText(span Span) string {
	if !span.IsValid() || span.Start.Filename != sf.Filename {
		return ""
	}
	if span.Start.Offset > len(sf.Content) || span.End.Offset > len(sf.Content) {
		return ""
	}
	return sf.Content[span.Start.Offset:span.End.Offset]
}

// PositionFromOffset converts a byte offset to a Position. Columns count
// runes, so multi-byte identifiers do not skew carets.
func (sf *SourceFile) PositionFromOffset(offset int) Position {
	if offset < 0 || offset > len(sf.Content) {
		return Position{}
	}

	line := sort.Search(len(sf.lineStarts), func(i int) bool {
		return sf.lineStarts[i] > offset
	})
	lineStart := sf.lineStarts[line-1]

	return Position{
		Filename: sf.Filename,
		Line:     line,
		Column:   len([]rune(sf.Content[lineStart:offset])) + 1,
		Offset:   offset,
	}
}

// SpanFromOffsets builds a span over the half-open byte range [start, end).
func (sf *SourceFile) SpanFromOffsets(start, end int) Span {
	return Span{Start: sf.PositionFromOffset(start), End: sf.PositionFromOffset(end)}
}

// SourceMap manages multiple source files
type SourceMap struct {
	files map[string]*SourceFile
}

// NewSourceMap creates a new source map
func NewSourceMap() *SourceMap {
	return &SourceMap{
		files: make(map[string]*SourceFile),
	}
}

// AddFile adds a source file to the map
func (sm *SourceMap) AddFile(filename, content string) *SourceFile {
	file := NewSourceFile(filename, content)
	sm.files[filename] = file
	return file
}

// Add registers an already constructed source file.
func (sm *SourceMap) Add(file *SourceFile) {
	sm.files[file.Filename] = file
}

// GetFile returns the source file for the given filename
func (sm *SourceMap) GetFile(filename string) *SourceFile {
	return sm.files[filename]
}

// GetSpanText returns the text covered by the span across all files
func (sm *SourceMap) GetSpanText(span Span) string {
	file := sm.GetFile(span.Start.Filename)
	if file == nil {
		return ""
	}
	return file.GetSpanText(span)
}

// GetLine returns the specified line from the appropriate file
func (sm *SourceMap) GetLine(pos Position) string {
	file := sm.GetFile(pos.Filename)
	if file == nil {
		return ""
	}
	return file.GetLine(pos.Line)
}
