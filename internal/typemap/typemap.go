// Package typemap names the C++ spelling of native argument types.
//
// Only the spelling is produced. Value conversion across the boundary is
// handled by the runtime library and assumed total for every mapped type.
package typemap

import (
	"fmt"
	"strings"

	"github.com/qtbridge/bridgegen/internal/parser"
	"github.com/qtbridge/bridgegen/internal/position"
)

// builtin maps native scalar and library types to their C++ spelling.
var builtin = map[string]string{
	"bool": "bool",
	"i8":   "qint8",
	"i16":  "qint16",
	"i32":  "qint32",
	"i64":  "qint64",
	"u8":   "quint8",
	"u16":  "quint16",
	"u32":  "quint32",
	"u64":  "quint64",
	"f32":  "float",
	"f64":  "double",

	"isize": "::rust::isize",
	"usize": "::std::size_t",
	"char":  "char32_t",

	"str":     "QString",
	"String":  "QString",
	"Color":   "QColor",
	"Variant": "QVariant",
}

// wrappers maps generic container types to their C++ template.
var wrappers = map[string]string{
	"UniquePtr":  "::std::unique_ptr",
	"SharedPtr":  "::std::shared_ptr",
	"Box":        "::rust::Box",
	"Vec":        "::rust::Vec",
	"CxxVector":  "::std::vector",
	"QList":      "QList",
	"QVector":    "QVector",
	"QSet":       "QSet",
	"QHash":      "QHash",
	"QMap":       "QMap",
	"QPointer":   "QPointer",
	"QSharedPtr": "QSharedPointer",
}

// UnsupportedError reports a type that has no C++ spelling.
type UnsupportedError struct {
	Type   string
	Span   position.Span
	Reason string
}

func (e *UnsupportedError) Error() string {
	msg := fmt.Sprintf("no C++ spelling for %s", e.Type)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Span.IsValid() {
		return e.Span.Start.String() + ": " + msg
	}
	return msg
}

// Mapper spells types using the built-in table plus overrides.
type Mapper struct {
	overrides map[string]string
}

// New returns a Mapper. Overrides are keyed by the last path segment
// ("MyEnum") or the full path ("ffi::MyEnum") and take precedence.
func New(overrides map[string]string) *Mapper {
	m := &Mapper{overrides: make(map[string]string, len(overrides))}
	for k, v := range overrides {
		m.overrides[k] = v
	}
	return m
}

// Default is a Mapper without overrides.
var Default = New(nil)

// Spell returns the C++ spelling of t.
func (m *Mapper) Spell(t parser.Type) (string, error) {
	switch t := t.(type) {
	case *parser.TupleType:
		if len(t.Elems) == 0 {
			return "void", nil
		}
		return "", unsupported(t, "tuples cannot cross the bridge")

	case *parser.ParenType:
		return m.Spell(t.Elem)

	case *parser.ReferenceType:
		if slice, ok := t.Elem.(*parser.SliceType); ok {
			elem, err := m.Spell(slice.Elem)
			if err != nil {
				return "", err
			}
			if t.Mutable {
				return "::rust::Slice<" + elem + ">", nil
			}
			return "::rust::Slice<" + elem + " const>", nil
		}
		elem, err := m.Spell(t.Elem)
		if err != nil {
			return "", err
		}
		if t.Mutable {
			return elem + "&", nil
		}
		return "const " + elem + "&", nil

	case *parser.PointerType:
		elem, err := m.Spell(t.Elem)
		if err != nil {
			return "", err
		}
		if t.Mutable {
			return elem + "*", nil
		}
		return "const " + elem + "*", nil

	case *parser.PathType:
		return m.spellPath(t)
	}

	return "", unsupported(t, "")
}

func (m *Mapper) spellPath(t *parser.PathType) (string, error) {
	if t.QSelf != nil {
		return "", unsupported(t, "qualified paths are not supported")
	}

	last := t.Path.Last()
	if last == nil || last.Ident == nil {
		return "", unsupported(t, "")
	}
	name := last.Ident.Value

	if spelled, ok := m.overrides[t.Path.Plain()]; ok {
		return spelled, nil
	}
	if spelled, ok := m.overrides[name]; ok {
		return spelled, nil
	}

	if last.Args == nil || len(last.Args.Args) == 0 {
		if spelled, ok := builtin[name]; ok {
			return spelled, nil
		}
		// Qt and user declared types keep their name.
		return name, nil
	}

	if name == "Pin" {
		// Pin<&mut T> is a plain reference on the C++ side.
		inner, ok := last.Args.Args[0].(*parser.TypeArgument)
		if !ok || len(last.Args.Args) != 1 {
			return "", unsupported(t, "Pin takes one type argument")
		}
		return m.Spell(inner.Type)
	}

	template, ok := wrappers[name]
	if !ok {
		return "", unsupported(t, "generic types need a type override")
	}

	params := make([]string, 0, len(last.Args.Args))
	for _, arg := range last.Args.Args {
		typeArg, ok := arg.(*parser.TypeArgument)
		if !ok {
			return "", unsupported(t, "only type arguments are supported")
		}
		spelled, err := m.Spell(typeArg.Type)
		if err != nil {
			return "", err
		}
		params = append(params, spelled)
	}
	return template + "<" + strings.Join(params, ", ") + ">", nil
}

// SpellAll spells each type in order and stops at the first failure.
func (m *Mapper) SpellAll(types []parser.Type) ([]string, error) {
	out := make([]string, len(types))
	for i, t := range types {
		spelled, err := m.Spell(t)
		if err != nil {
			return nil, err
		}
		out[i] = spelled
	}
	return out, nil
}

// Spell spells t with the default table.
func Spell(t parser.Type) (string, error) {
	return Default.Spell(t)
}

func unsupported(t parser.Type, reason string) *UnsupportedError {
	return &UnsupportedError{Type: t.String(), Span: t.GetSpan(), Reason: reason}
}
