// Package constructor parses Constructor trait declarations into
// construction contracts.
//
// A contract is declared as
//
//	impl cxx_qt::Constructor<(i32, QString), NewArguments = (i32,)> for qobject::MyObject {}
//
// The leading tuple lists the arguments callers pass to the generated
// constructor. Optional role bindings list the arguments forwarded to each
// construction phase. The declaration itself carries no code.
package constructor

import (
	"strings"

	"github.com/qtbridge/bridgegen/internal/diagnostic"
	"github.com/qtbridge/bridgegen/internal/parser"
	"github.com/qtbridge/bridgegen/internal/position"
)

// ArgumentList is an ordered list of argument types parsed from tuple syntax.
type ArgumentList struct {
	Types []parser.Type
	Span  position.Span
}

// Len returns the number of arguments. A nil list has none.
func (l *ArgumentList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Types)
}

// Strings returns each argument type in source form.
func (l *ArgumentList) Strings() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.Types))
	for i, t := range l.Types {
		out[i] = t.String()
	}
	return out
}

// String renders the list as a tuple: (), (i32,) or (i32, QString).
func (l *ArgumentList) String() string {
	types := l.Strings()
	if len(types) == 1 {
		return "(" + types[0] + ",)"
	}
	return "(" + strings.Join(types, ", ") + ")"
}

// Constructor is a validated construction contract.
//
// Role lists are nil when the role is not bound, and non-nil (possibly
// empty) when bound, so "not given" and "given as ()" stay distinct.
type Constructor struct {
	Arguments ArgumentList

	NewArguments        *ArgumentList
	BaseArguments       *ArgumentList
	InitializeArguments *ArgumentList

	// Impl is the declaration the contract was parsed from.
	Impl *parser.ItemImpl
	// Span is the declaration span, copied so diagnostics about the
	// contract do not depend on the syntax tree.
	Span position.Span
}

// Role returns the argument list bound to r, or nil.
func (c *Constructor) Role(r Role) *ArgumentList {
	switch r {
	case NewArguments:
		return c.NewArguments
	case BaseArguments:
		return c.BaseArguments
	case InitializeArguments:
		return c.InitializeArguments
	}
	return nil
}

// SelfType returns the type the contract constructs.
func (c *Constructor) SelfType() parser.Type {
	if c.Impl == nil {
		return nil
	}
	return c.Impl.SelfType
}

// Shape returns the flat argument shape, e.g. "(i32, QString)". Two
// constructors of one object with the same shape are indistinguishable
// to callers.
func (c *Constructor) Shape() string {
	return c.Arguments.String()
}

// Parse builds a contract from a Constructor trait impl. Preconditions on
// the declaration are checked first and the first violation is reported.
// No partial contract is returned on failure.
func Parse(impl *parser.ItemImpl) (*Constructor, error) {
	if impl.Unsafe != nil {
		return nil, diagnostic.Common.UnnecessaryUnsafe(*impl.Unsafe)
	}

	if impl.Generics != nil && len(impl.Generics.Params) > 0 {
		return nil, diagnostic.Common.GenericsNotAllowed(impl.Generics.Params[0].Span)
	}

	if len(impl.Items) > 0 {
		return nil, diagnostic.Common.MustBeDeclarationOnly(impl.Items[0].GetSpan())
	}

	if impl.Trait == nil {
		return nil, diagnostic.Common.ExpectedTraitImpl(impl.Span)
	}

	generics, err := traitGenerics(impl.Trait)
	if err != nil {
		return nil, err
	}

	arguments, roles, err := splitGenerics(generics)
	if err != nil {
		return nil, err
	}

	return &Constructor{
		Arguments:           arguments,
		NewArguments:        roles[NewArguments],
		BaseArguments:       roles[BaseArguments],
		InitializeArguments: roles[InitializeArguments],
		Impl:                impl,
		Span:                impl.Span,
	}, nil
}

// traitGenerics returns the angle-bracketed arguments of the trait path's
// last segment. A missing or empty list is reported at the trait path.
func traitGenerics(traitPath *parser.Path) ([]parser.GenericArgument, error) {
	last := traitPath.Last()
	if last == nil || last.Args == nil || len(last.Args.Args) == 0 {
		return nil, diagnostic.Common.MissingConstructorArguments(traitPath.Span)
	}
	return last.Args.Args, nil
}

// splitGenerics parses the leading positional tuple and the role bindings
// that follow it.
func splitGenerics(generics []parser.GenericArgument) (ArgumentList, roleLists, error) {
	head, ok := generics[0].(*parser.TypeArgument)
	if !ok {
		return ArgumentList{}, roleLists{}, diagnostic.Common.ExpectedArgumentTuple(generics[0].GetSpan())
	}

	arguments, err := ParseArgumentList(head.Type)
	if err != nil {
		return ArgumentList{}, roleLists{}, err
	}

	roles, err := resolveRoles(generics[1:])
	if err != nil {
		return ArgumentList{}, roleLists{}, err
	}

	return arguments, roles, nil
}

// roleLists holds the optional argument list of each role.
type roleLists [roleCount]*ArgumentList

// resolveRoles maps each Name = (..) binding to its role. Bindings are
// checked in source order, so the order only decides which error is
// reported first.
func resolveRoles(bindings []parser.GenericArgument) (roleLists, error) {
	var roles roleLists

	for _, generic := range bindings {
		binding, ok := generic.(*parser.AssocTypeBinding)
		if !ok {
			return roleLists{}, diagnostic.Common.ExpectedAssociatedRole(generic.GetSpan())
		}

		role, ok := LookupRole(binding.Name.Value)
		if !ok {
			return roleLists{}, diagnostic.Common.UnknownConstructorRole(binding.Span, binding.Name.Value)
		}

		if roles[role] != nil {
			return roleLists{}, diagnostic.Common.DuplicateConstructorRole(binding.Span, role.String())
		}

		list, err := ParseArgumentList(binding.Type)
		if err != nil {
			return roleLists{}, err
		}
		roles[role] = &list
	}

	return roles, nil
}

// ParseArgumentList reads the element types of a tuple type. Any other
// type, including a parenthesized single type written without the
// trailing comma, is rejected.
func ParseArgumentList(t parser.Type) (ArgumentList, error) {
	tuple, ok := t.(*parser.TupleType)
	if !ok {
		return ArgumentList{}, diagnostic.Common.MalformedArgumentList(t.GetSpan())
	}

	types := make([]parser.Type, len(tuple.Elems))
	copy(types, tuple.Elems)

	return ArgumentList{Types: types, Span: tuple.Span}, nil
}
