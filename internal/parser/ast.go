// Package parser implements the bridge file parser and AST definitions.
//
// The AST only models what the bridge tooling inspects: modules, structs,
// impl blocks, extern blocks, type aliases, attributes, paths with generic
// arguments, and type expressions. Other items are kept as opaque ItemOther
// nodes so their spans are still available.
package parser

import (
	"fmt"
	"strings"

	"github.com/qtbridge/bridgegen/internal/position"
)

// Node represents the base interface for all AST nodes
type Node interface {
	// GetSpan returns the source span for this node
	GetSpan() position.Span
	// String returns the node in canonical source form
	String() string
}

// Item represents a top-level or nested item
type Item interface {
	Node
	itemNode()
	Attributes() []*Attribute
}

// Type represents all type expressions
type Type interface {
	Node
	typeNode()
}

// GenericArgument is one entry of an angle-bracketed argument list
type GenericArgument interface {
	Node
	genericArgumentNode()
}

// ====== Files and items ======

// File is a parsed bridge source file
type File struct {
	Span     position.Span
	Filename string
	Attrs    []*Attribute // inner attributes (#![...])
	Items    []Item
}

func (f *File) GetSpan() position.Span { return f.Span }
func (f *File) String() string         { return fmt.Sprintf("file %s (%d items)", f.Filename, len(f.Items)) }

// Ident is a name with its span
type Ident struct {
	Span  position.Span
	Value string
}

func (i *Ident) GetSpan() position.Span { return i.Span }
func (i *Ident) String() string         { return i.Value }

// Attribute represents #[path], #[path(args)] or #[path = value]
type Attribute struct {
	Span     position.Span
	Inner    bool
	Path     *Path
	Args     []*AttributeArg
	HasArgs  bool
	Value    string // for #[path = value]
	HasValue bool
}

func (a *Attribute) GetSpan() position.Span { return a.Span }

func (a *Attribute) String() string {
	var sb strings.Builder
	sb.WriteString("#")
	if a.Inner {
		sb.WriteString("!")
	}
	sb.WriteString("[")
	sb.WriteString(a.Path.String())
	if a.HasArgs {
		args := make([]string, len(a.Args))
		for i, arg := range a.Args {
			args[i] = arg.String()
		}
		sb.WriteString("(" + strings.Join(args, ", ") + ")")
	}
	if a.HasValue {
		sb.WriteString(" = " + a.Value)
	}
	sb.WriteString("]")
	return sb.String()
}

// Arg returns the value of the named argument, e.g. base for
// #[qobject(base = "QAbstractListModel")].
func (a *Attribute) Arg(name string) (string, bool) {
	for _, arg := range a.Args {
		if arg.Name == name && arg.HasValue {
			return arg.Value, true
		}
	}
	return "", false
}

// HasFlag reports whether the attribute carries a bare argument such as
// qml_element.
func (a *Attribute) HasFlag(name string) bool {
	for _, arg := range a.Args {
		if arg.Name == name && !arg.HasValue {
			return true
		}
	}
	return false
}

// AttributeArg is one comma separated entry inside attribute parentheses.
// Nested or unusual arguments keep their raw text in Name.
type AttributeArg struct {
	Span     position.Span
	Name     string
	Value    string // string literals are unquoted
	HasValue bool
}

func (a *AttributeArg) GetSpan() position.Span { return a.Span }

func (a *AttributeArg) String() string {
	if a.HasValue {
		return fmt.Sprintf("%s = %q", a.Name, a.Value)
	}
	return a.Name
}

// ItemMod represents mod name { items } or mod name;
type ItemMod struct {
	Span       position.Span
	Attrs      []*Attribute
	Visibility string
	Name       *Ident
	Items      []Item
	HasBody    bool
}

func (m *ItemMod) GetSpan() position.Span   { return m.Span }
func (m *ItemMod) String() string           { return "mod " + m.Name.Value }
func (m *ItemMod) Attributes() []*Attribute { return m.Attrs }
func (m *ItemMod) itemNode()                {}

// GenericParam is a declared generic parameter: 'a, T, or const N
type GenericParam struct {
	Span position.Span
	Name string
}

func (g *GenericParam) GetSpan() position.Span { return g.Span }
func (g *GenericParam) String() string         { return g.Name }

// Generics is a declared generic parameter list, including the brackets
type Generics struct {
	Span   position.Span
	Params []*GenericParam
}

func (g *Generics) GetSpan() position.Span { return g.Span }

func (g *Generics) String() string {
	names := make([]string, len(g.Params))
	for i, p := range g.Params {
		names[i] = p.Name
	}
	return "<" + strings.Join(names, ", ") + ">"
}

// ParamsSpan returns the span covering the parameters themselves, or the
// bracket span for an empty list.
func (g *Generics) ParamsSpan() position.Span {
	if len(g.Params) == 0 {
		return g.Span
	}
	return position.Between(g.Params[0].Span, g.Params[len(g.Params)-1].Span)
}

// ItemImpl represents [unsafe] impl[<generics>] [Trait for] Type { items }
type ItemImpl struct {
	Span      position.Span
	Attrs     []*Attribute
	Unsafe    *position.Span // span of the unsafe keyword, nil when absent
	Generics  *Generics      // nil when the impl declares no generic list
	Negative  bool
	Trait     *Path // nil for inherent impls
	SelfType  Type
	Items     []Item
	BodySpan  position.Span
	WhereSpan *position.Span
}

func (i *ItemImpl) GetSpan() position.Span   { return i.Span }
func (i *ItemImpl) Attributes() []*Attribute { return i.Attrs }
func (i *ItemImpl) itemNode()                {}

func (i *ItemImpl) String() string {
	var sb strings.Builder
	if i.Unsafe != nil {
		sb.WriteString("unsafe ")
	}
	sb.WriteString("impl")
	if i.Generics != nil {
		sb.WriteString(i.Generics.String())
	}
	sb.WriteString(" ")
	if i.Trait != nil {
		if i.Negative {
			sb.WriteString("!")
		}
		sb.WriteString(i.Trait.String())
		sb.WriteString(" for ")
	}
	if i.SelfType != nil {
		sb.WriteString(i.SelfType.String())
	}
	return sb.String()
}

// Field is a named struct field
type Field struct {
	Span       position.Span
	Attrs      []*Attribute
	Visibility string
	Name       *Ident
	Type       Type
}

func (f *Field) GetSpan() position.Span { return f.Span }
func (f *Field) String() string         { return f.Name.Value + ": " + f.Type.String() }

// ItemStruct represents a struct declaration. Only named fields are kept.
type ItemStruct struct {
	Span       position.Span
	Attrs      []*Attribute
	Visibility string
	Name       *Ident
	Generics   *Generics
	Fields     []*Field
}

func (s *ItemStruct) GetSpan() position.Span   { return s.Span }
func (s *ItemStruct) String() string           { return "struct " + s.Name.Value }
func (s *ItemStruct) Attributes() []*Attribute { return s.Attrs }
func (s *ItemStruct) itemNode()                {}

// ItemType represents type Name; or type Name = Type;
type ItemType struct {
	Span       position.Span
	Attrs      []*Attribute
	Visibility string
	Name       *Ident
	Generics   *Generics
	Value      Type // nil for opaque declarations
}

func (t *ItemType) GetSpan() position.Span   { return t.Span }
func (t *ItemType) Attributes() []*Attribute { return t.Attrs }
func (t *ItemType) itemNode()                {}

func (t *ItemType) String() string {
	if t.Value == nil {
		return "type " + t.Name.Value
	}
	return "type " + t.Name.Value + " = " + t.Value.String()
}

// ItemForeignMod represents [unsafe] extern "ABI" { items }
type ItemForeignMod struct {
	Span   position.Span
	Attrs  []*Attribute
	Unsafe bool
	ABI    string
	Items  []Item
}

func (f *ItemForeignMod) GetSpan() position.Span   { return f.Span }
func (f *ItemForeignMod) String() string           { return fmt.Sprintf("extern %q", f.ABI) }
func (f *ItemForeignMod) Attributes() []*Attribute { return f.Attrs }
func (f *ItemForeignMod) itemNode()                {}

// ItemOther is any item the bridge tooling does not inspect (fn, use,
// enum, const, macro invocations, ...).
type ItemOther struct {
	Span    position.Span
	Attrs   []*Attribute
	Keyword string // first token after attributes and visibility
	Name    string // identifier following the keyword, if any
}

func (o *ItemOther) GetSpan() position.Span   { return o.Span }
func (o *ItemOther) Attributes() []*Attribute { return o.Attrs }
func (o *ItemOther) itemNode()                {}

func (o *ItemOther) String() string {
	if o.Name != "" {
		return o.Keyword + " " + o.Name
	}
	return o.Keyword
}

// ====== Paths and generic arguments ======

// Path represents a::b::C<Args>
type Path struct {
	Span     position.Span
	Leading  bool // ::a::b
	Segments []*PathSegment
}

func (p *Path) GetSpan() position.Span { return p.Span }

func (p *Path) String() string {
	parts := make([]string, len(p.Segments))
	for i, seg := range p.Segments {
		parts[i] = seg.String()
	}
	s := strings.Join(parts, "::")
	if p.Leading {
		s = "::" + s
	}
	return s
}

// Last returns the final segment.
func (p *Path) Last() *PathSegment {
	if len(p.Segments) == 0 {
		return nil
	}
	return p.Segments[len(p.Segments)-1]
}

// Idents returns the segment names without generic arguments.
func (p *Path) Idents() []string {
	names := make([]string, len(p.Segments))
	for i, seg := range p.Segments {
		names[i] = seg.Ident.Value
	}
	return names
}

// Plain returns the path without generic arguments, e.g. cxx_qt::Constructor.
func (p *Path) Plain() string {
	s := strings.Join(p.Idents(), "::")
	if p.Leading {
		s = "::" + s
	}
	return s
}

// PathSegment is one name in a path with optional arguments
type PathSegment struct {
	Span          position.Span
	Ident         *Ident
	Args          *GenericArgs       // <...>
	Parenthesized *ParenthesizedArgs // Fn(A) -> B
}

func (s *PathSegment) GetSpan() position.Span { return s.Span }

func (s *PathSegment) String() string {
	out := s.Ident.Value
	if s.Args != nil {
		out += s.Args.String()
	}
	if s.Parenthesized != nil {
		out += s.Parenthesized.String()
	}
	return out
}

// GenericArgs is an angle-bracketed argument list, including the brackets
type GenericArgs struct {
	Span      position.Span
	Turbofish bool
	Args      []GenericArgument
}

func (g *GenericArgs) GetSpan() position.Span { return g.Span }

func (g *GenericArgs) String() string {
	args := make([]string, len(g.Args))
	for i, arg := range g.Args {
		args[i] = arg.String()
	}
	prefix := ""
	if g.Turbofish {
		prefix = "::"
	}
	return prefix + "<" + strings.Join(args, ", ") + ">"
}

// ParenthesizedArgs is the (A, B) -> C form used by Fn traits
type ParenthesizedArgs struct {
	Span   position.Span
	Inputs []Type
	Output Type
}

func (p *ParenthesizedArgs) GetSpan() position.Span { return p.Span }

func (p *ParenthesizedArgs) String() string {
	s := "(" + joinTypes(p.Inputs) + ")"
	if p.Output != nil {
		s += " -> " + p.Output.String()
	}
	return s
}

// TypeArgument is a positional type argument
type TypeArgument struct {
	Type Type
}

func (a *TypeArgument) GetSpan() position.Span { return a.Type.GetSpan() }
func (a *TypeArgument) String() string         { return a.Type.String() }
func (a *TypeArgument) genericArgumentNode()   {}

// AssocTypeBinding is Name = Type
type AssocTypeBinding struct {
	Span position.Span
	Name *Ident
	Type Type
}

func (a *AssocTypeBinding) GetSpan() position.Span { return a.Span }
func (a *AssocTypeBinding) String() string         { return a.Name.Value + " = " + a.Type.String() }
func (a *AssocTypeBinding) genericArgumentNode()   {}

// LifetimeArgument is 'a
type LifetimeArgument struct {
	Span position.Span
	Name string
}

func (a *LifetimeArgument) GetSpan() position.Span { return a.Span }
func (a *LifetimeArgument) String() string         { return a.Name }
func (a *LifetimeArgument) genericArgumentNode()   {}

// ConstArgument is a literal or block const generic argument
type ConstArgument struct {
	Span  position.Span
	Value string
}

func (a *ConstArgument) GetSpan() position.Span { return a.Span }
func (a *ConstArgument) String() string         { return a.Value }
func (a *ConstArgument) genericArgumentNode()   {}

// ConstraintArgument is Name: Bound + Bound
type ConstraintArgument struct {
	Span   position.Span
	Name   *Ident
	Bounds []string
}

func (a *ConstraintArgument) GetSpan() position.Span { return a.Span }
func (a *ConstraintArgument) String() string {
	return a.Name.Value + ": " + strings.Join(a.Bounds, " + ")
}
func (a *ConstraintArgument) genericArgumentNode() {}

// ====== Types ======

// QSelf is the <T as Trait> prefix of a qualified path
type QSelf struct {
	Type  Type
	Trait *Path
}

// PathType is a (possibly qualified) path used as a type
type PathType struct {
	Span  position.Span
	QSelf *QSelf
	Path  *Path
}

func (t *PathType) GetSpan() position.Span { return t.Span }
func (t *PathType) typeNode()              {}

func (t *PathType) String() string {
	if t.QSelf == nil {
		return t.Path.String()
	}
	prefix := "<" + t.QSelf.Type.String()
	if t.QSelf.Trait != nil {
		prefix += " as " + t.QSelf.Trait.String()
	}
	prefix += ">"
	if len(t.Path.Segments) == 0 {
		return prefix
	}
	return prefix + "::" + t.Path.String()
}

// TupleType is (), (T,) or (A, B). A single parenthesized type without a
// trailing comma is a ParenType instead.
type TupleType struct {
	Span          position.Span
	Elems         []Type
	TrailingComma bool
}

func (t *TupleType) GetSpan() position.Span { return t.Span }
func (t *TupleType) typeNode()              {}

func (t *TupleType) String() string {
	if len(t.Elems) == 1 {
		return "(" + t.Elems[0].String() + ",)"
	}
	return "(" + joinTypes(t.Elems) + ")"
}

// ParenType is (T)
type ParenType struct {
	Span position.Span
	Elem Type
}

func (t *ParenType) GetSpan() position.Span { return t.Span }
func (t *ParenType) String() string         { return "(" + t.Elem.String() + ")" }
func (t *ParenType) typeNode()              {}

// ReferenceType is &'a mut T
type ReferenceType struct {
	Span     position.Span
	Lifetime string
	Mutable  bool
	Elem     Type
}

func (t *ReferenceType) GetSpan() position.Span { return t.Span }
func (t *ReferenceType) typeNode()              {}

func (t *ReferenceType) String() string {
	s := "&"
	if t.Lifetime != "" {
		s += t.Lifetime + " "
	}
	if t.Mutable {
		s += "mut "
	}
	return s + t.Elem.String()
}

// PointerType is *const T or *mut T
type PointerType struct {
	Span    position.Span
	Mutable bool
	Elem    Type
}

func (t *PointerType) GetSpan() position.Span { return t.Span }
func (t *PointerType) typeNode()              {}

func (t *PointerType) String() string {
	if t.Mutable {
		return "*mut " + t.Elem.String()
	}
	return "*const " + t.Elem.String()
}

// SliceType is [T]
type SliceType struct {
	Span position.Span
	Elem Type
}

func (t *SliceType) GetSpan() position.Span { return t.Span }
func (t *SliceType) String() string         { return "[" + t.Elem.String() + "]" }
func (t *SliceType) typeNode()              {}

// ArrayType is [T; N]
type ArrayType struct {
	Span position.Span
	Elem Type
	Len  string
}

func (t *ArrayType) GetSpan() position.Span { return t.Span }
func (t *ArrayType) String() string         { return "[" + t.Elem.String() + "; " + t.Len + "]" }
func (t *ArrayType) typeNode()              {}

// NeverType is !
type NeverType struct {
	Span position.Span
}

func (t *NeverType) GetSpan() position.Span { return t.Span }
func (t *NeverType) String() string         { return "!" }
func (t *NeverType) typeNode()              {}

// InferType is _
type InferType struct {
	Span position.Span
}

func (t *InferType) GetSpan() position.Span { return t.Span }
func (t *InferType) String() string         { return "_" }
func (t *InferType) typeNode()              {}

// FnPointerType is [unsafe] [extern "ABI"] fn(A, B) -> C
type FnPointerType struct {
	Span   position.Span
	Unsafe bool
	ABI    string
	Inputs []Type
	Output Type
}

func (t *FnPointerType) GetSpan() position.Span { return t.Span }
func (t *FnPointerType) typeNode()              {}

func (t *FnPointerType) String() string {
	var sb strings.Builder
	if t.Unsafe {
		sb.WriteString("unsafe ")
	}
	if t.ABI != "" {
		fmt.Fprintf(&sb, "extern %q ", t.ABI)
	}
	sb.WriteString("fn(" + joinTypes(t.Inputs) + ")")
	if t.Output != nil {
		sb.WriteString(" -> " + t.Output.String())
	}
	return sb.String()
}

// TraitObjectType is dyn A + B or impl A + B
type TraitObjectType struct {
	Span   position.Span
	Impl   bool
	Bounds []string
}

func (t *TraitObjectType) GetSpan() position.Span { return t.Span }
func (t *TraitObjectType) typeNode()              {}

func (t *TraitObjectType) String() string {
	keyword := "dyn "
	if t.Impl {
		keyword = "impl "
	}
	return keyword + strings.Join(t.Bounds, " + ")
}

func joinTypes(types []Type) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
