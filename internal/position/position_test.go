package position

import (
	"testing"
)

func TestPosition(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		pos      Position
		isValid  bool
	}{
		{
			name:     "Valid position with filename",
			pos:      Position{Filename: "src/my_object.rs", Line: 10, Column: 5, Offset: 100},
			isValid:  true,
			expected: "my_object.rs:10:5",
		},
		{
			name:     "Valid position without filename",
			pos:      Position{Line: 1, Column: 1, Offset: 0},
			isValid:  true,
			expected: "1:1",
		},
		{
			name:    "Invalid position - zero line",
			pos:     Position{Line: 0, Column: 1, Offset: 0},
			isValid: false,
		},
		{
			name:    "Invalid position - zero column",
			pos:     Position{Line: 1, Column: 0, Offset: 0},
			isValid: false,
		},
		{
			name:    "Invalid position - negative offset",
			pos:     Position{Line: 1, Column: 1, Offset: -1},
			isValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.IsValid(); got != tt.isValid {
				t.Errorf("Position.IsValid() = %v, want %v", got, tt.isValid)
			}

			if tt.isValid {
				if got := tt.pos.String(); got != tt.expected {
					t.Errorf("Position.String() = %v, want %v", got, tt.expected)
				}
			}
		})
	}
}

func TestPositionComparison(t *testing.T) {
	pos1 := Position{Filename: "a.rs", Line: 1, Column: 5, Offset: 4}
	pos2 := Position{Filename: "a.rs", Line: 1, Column: 10, Offset: 9}
	pos3 := Position{Filename: "0.rs", Line: 1, Column: 1, Offset: 0}

	if !pos1.Before(pos2) {
		t.Error("pos1 should be before pos2")
	}
	if !pos2.After(pos1) {
		t.Error("pos2 should be after pos1")
	}
	if !pos3.Before(pos1) {
		t.Error("pos3 should be before pos1 (different filename)")
	}
}

func TestSpan(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		span     Span
		length   int
		isValid  bool
	}{
		{
			name: "Valid span same line",
			span: Span{
				Start: Position{Filename: "a.rs", Line: 1, Column: 5, Offset: 4},
				End:   Position{Filename: "a.rs", Line: 1, Column: 10, Offset: 9},
			},
			isValid:  true,
			expected: "a.rs:1:5-10",
			length:   5,
		},
		{
			name: "Valid span multiple lines",
			span: Span{
				Start: Position{Filename: "a.rs", Line: 1, Column: 5, Offset: 4},
				End:   Position{Filename: "a.rs", Line: 3, Column: 2, Offset: 20},
			},
			isValid:  true,
			expected: "a.rs:1:5-3:2",
			length:   16,
		},
		{
			name: "Invalid span - different files",
			span: Span{
				Start: Position{Filename: "a.rs", Line: 1, Column: 1, Offset: 0},
				End:   Position{Filename: "b.rs", Line: 1, Column: 5, Offset: 4},
			},
			isValid: false,
		},
		{
			name: "Invalid span - end before start",
			span: Span{
				Start: Position{Filename: "a.rs", Line: 1, Column: 10, Offset: 9},
				End:   Position{Filename: "a.rs", Line: 1, Column: 5, Offset: 4},
			},
			isValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.IsValid(); got != tt.isValid {
				t.Errorf("Span.IsValid() = %v, want %v", got, tt.isValid)
			}

			if tt.isValid {
				if got := tt.span.String(); got != tt.expected {
					t.Errorf("Span.String() = %v, want %v", got, tt.expected)
				}
				if got := tt.span.Length(); got != tt.length {
					t.Errorf("Span.Length() = %v, want %v", got, tt.length)
				}
			}
		})
	}
}

func TestSpanContainsAndEncloses(t *testing.T) {
	outer := Span{
		Start: Position{Filename: "a.rs", Line: 1, Column: 1, Offset: 0},
		End:   Position{Filename: "a.rs", Line: 1, Column: 21, Offset: 20},
	}
	inner := Span{
		Start: Position{Filename: "a.rs", Line: 1, Column: 5, Offset: 4},
		End:   Position{Filename: "a.rs", Line: 1, Column: 10, Offset: 9},
	}

	if !outer.Contains(inner.Start) {
		t.Error("outer should contain inner start")
	}
	if outer.Contains(outer.End) {
		t.Error("end position is exclusive")
	}
	if !outer.Encloses(inner) {
		t.Error("outer should enclose inner")
	}
	if inner.Encloses(outer) {
		t.Error("inner must not enclose outer")
	}
}

func TestSpanUnion(t *testing.T) {
	a := Span{
		Start: Position{Filename: "a.rs", Line: 1, Column: 5, Offset: 4},
		End:   Position{Filename: "a.rs", Line: 1, Column: 10, Offset: 9},
	}
	b := Span{
		Start: Position{Filename: "a.rs", Line: 2, Column: 1, Offset: 12},
		End:   Position{Filename: "a.rs", Line: 2, Column: 4, Offset: 15},
	}

	u := a.Union(b)
	if u.Start != a.Start || u.End != b.End {
		t.Errorf("unexpected union %s", u)
	}
	if got := (Span{}).Union(b); got != b {
		t.Errorf("union with invalid span should return other, got %s", got)
	}
	if got := Between(a, b); got != u {
		t.Errorf("Between = %s, want %s", got, u)
	}
}

func TestSourceFilePositionConversion(t *testing.T) {
	src := "mod ffi {\n    impl X {}\n}\n"
	file := NewSourceFile("bridge.rs", src)

	tests := []struct {
		offset int
		line   int
		column int
	}{
		{0, 1, 1},
		{4, 1, 5},
		{10, 2, 1},
		{14, 2, 5},
		{len(src), 4, 1},
	}

	for _, tt := range tests {
		pos := file.PositionFromOffset(tt.offset)
		if pos.Line != tt.line || pos.Column != tt.column {
			t.Errorf("PositionFromOffset(%d) = %d:%d, want %d:%d", tt.offset, pos.Line, pos.Column, tt.line, tt.column)
		}
		if pos.Filename != "bridge.rs" {
			t.Errorf("expected filename bridge.rs, got %q", pos.Filename)
		}
	}

	if pos := file.PositionFromOffset(-1); pos.IsValid() {
		t.Error("negative offset should produce an invalid position")
	}
}

func TestSourceFileUnicodeColumns(t *testing.T) {
	file := NewSourceFile("u.rs", "// é\nx")
	pos := file.PositionFromOffset(len("// é"))
	if pos.Line != 1 || pos.Column != 5 {
		t.Errorf("expected 1:5 after a two-byte rune, got %d:%d", pos.Line, pos.Column)
	}
}

func TestSourceFileGetSpanText(t *testing.T) {
	file := NewSourceFile("bridge.rs", "impl cxx_qt::Constructor<()> for T {}")
	span := file.SpanFromOffsets(5, 24)
	if got := file.GetSpanText(span); got != "cxx_qt::Constructor" {
		t.Errorf("GetSpanText = %q", got)
	}

	foreign := span
	foreign.Start.Filename = "other.rs"
	foreign.End.Filename = "other.rs"
	if got := file.GetSpanText(foreign); got != "" {
		t.Errorf("span from another file should yield empty text, got %q", got)
	}
}

func TestSourceMap(t *testing.T) {
	sm := NewSourceMap()
	a := sm.AddFile("a.rs", "line one\nline two")
	sm.Add(NewSourceFile("b.rs", "other"))

	if sm.GetFile("a.rs") != a {
		t.Fatal("expected registered file back")
	}
	if got := sm.GetLine(Position{Filename: "a.rs", Line: 2, Column: 1}); got != "line two" {
		t.Errorf("GetLine = %q", got)
	}
	if got := sm.GetSpanText(sm.GetFile("b.rs").SpanFromOffsets(0, 5)); got != "other" {
		t.Errorf("GetSpanText = %q", got)
	}
	if sm.GetFile("missing.rs") != nil {
		t.Error("unknown file should be nil")
	}
}
