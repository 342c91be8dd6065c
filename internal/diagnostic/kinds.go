package diagnostic

import (
	"fmt"

	"github.com/qtbridge/bridgegen/internal/position"
)

// Kind identifies what went wrong. Each kind has a stable code.
type Kind int

const (
	KindUnknown Kind = iota
	SyntaxError

	// Constructor contract errors.
	MalformedArgumentList
	UnknownConstructorRole
	ExpectedAssociatedRole
	DuplicateConstructorRole
	MissingConstructorArguments
	ExpectedArgumentTuple
	UnnecessaryUnsafe
	GenericsNotAllowed
	MustBeDeclarationOnly
	ExpectedTraitImpl

	// Bridge level errors.
	DuplicateConstructorShape
	UnknownConstructorTarget
)

type kindInfo struct {
	name     string
	code     string
	title    string
	category DiagnosticCategory
}

var kinds = map[Kind]kindInfo{
	KindUnknown: {"Unknown", "", "error", DiagnosticSyntax},
	SyntaxError: {"SyntaxError", "E0001", "syntax error", DiagnosticSyntax},

	MalformedArgumentList:       {"MalformedArgumentList", "E0101", "malformed argument list", DiagnosticConstructor},
	UnknownConstructorRole:      {"UnknownConstructorRole", "E0102", "unknown constructor role", DiagnosticConstructor},
	ExpectedAssociatedRole:      {"ExpectedAssociatedRole", "E0103", "expected associated role", DiagnosticConstructor},
	DuplicateConstructorRole:    {"DuplicateConstructorRole", "E0104", "duplicate constructor role", DiagnosticConstructor},
	MissingConstructorArguments: {"MissingConstructorArguments", "E0105", "missing constructor arguments", DiagnosticConstructor},
	ExpectedArgumentTuple:       {"ExpectedArgumentTuple", "E0106", "expected argument tuple", DiagnosticConstructor},
	UnnecessaryUnsafe:           {"UnnecessaryUnsafe", "E0107", "unnecessary unsafe", DiagnosticConstructor},
	GenericsNotAllowed:          {"GenericsNotAllowed", "E0108", "generics not allowed", DiagnosticConstructor},
	MustBeDeclarationOnly:       {"MustBeDeclarationOnly", "E0109", "constructor must be declaration only", DiagnosticConstructor},
	ExpectedTraitImpl:           {"ExpectedTraitImpl", "E0110", "expected trait impl", DiagnosticConstructor},

	DuplicateConstructorShape: {"DuplicateConstructorShape", "E0201", "duplicate constructor shape", DiagnosticBridge},
	UnknownConstructorTarget:  {"UnknownConstructorTarget", "E0202", "unknown constructor target", DiagnosticBridge},
}

func (k Kind) info() kindInfo {
	if info, ok := kinds[k]; ok {
		return info
	}
	return kinds[KindUnknown]
}

// String returns the kind's name, e.g. "DuplicateConstructorRole".
func (k Kind) String() string { return k.info().name }

// Code returns the stable diagnostic code, e.g. "E0104".
func (k Kind) Code() string { return k.info().code }

// Title returns the short human readable title.
func (k Kind) Title() string { return k.info().title }

// Category returns the category the kind belongs to.
func (k Kind) Category() DiagnosticCategory { return k.info().category }

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds)-1)
	for k := SyntaxError; k <= UnknownConstructorTarget; k++ {
		out = append(out, k)
	}
	return out
}

// LookupCode maps a code such as "E0104" back to its kind.
func LookupCode(code string) (Kind, bool) {
	for k, info := range kinds {
		if k != KindUnknown && info.code == code {
			return k, true
		}
	}
	return KindUnknown, false
}

// CommonDiagnostics provides factory functions for every diagnostic kind.
type CommonDiagnostics struct{}

// Common is the shared factory instance.
var Common = &CommonDiagnostics{}

func (cd *CommonDiagnostics) Syntax(span position.Span, message string) *Diagnostic {
	return Of(SyntaxError).Error().Message(message).Span(span).Build()
}

// UnexpectedToken creates a syntax diagnostic for unexpected token errors.
func (cd *CommonDiagnostics) UnexpectedToken(span position.Span, expected, actual string) *Diagnostic {
	return cd.Syntax(span, fmt.Sprintf("expected %s, found %s", expected, actual))
}

func (cd *CommonDiagnostics) MalformedArgumentList(span position.Span) *Diagnostic {
	return Of(MalformedArgumentList).
		Error().
		Message("Expected a tuple as argument list!\nNote that a tuple of a single type needs to use a trailing comma, e.g. (i32,)").
		Span(span).
		Suggest("Use a tuple", "write a single argument as (T,) and no arguments as ()").
		Build()
}

func (cd *CommonDiagnostics) UnknownConstructorRole(span position.Span, name string) *Diagnostic {
	return Of(UnknownConstructorRole).
		Error().
		Messagef("Unknown associated type!\n%s is not a constructor role", name).
		Span(span).
		Suggest("Use a known role", "expected NewArguments, BaseArguments or InitializeArguments").
		Build()
}

func (cd *CommonDiagnostics) ExpectedAssociatedRole(span position.Span) *Diagnostic {
	return Of(ExpectedAssociatedRole).
		Error().
		Message("Expected associated type as a generic argument!").
		Span(span).
		Build()
}

func (cd *CommonDiagnostics) DuplicateConstructorRole(span position.Span, role string) *Diagnostic {
	return Of(DuplicateConstructorRole).
		Error().
		Messagef("Duplicate associated type definition!\n%s is already bound by an earlier argument", role).
		Span(span).
		Suggest("Remove the duplicate", fmt.Sprintf("%s may only be given once", role)).
		Build()
}

func (cd *CommonDiagnostics) MissingConstructorArguments(span position.Span) *Diagnostic {
	return Of(MissingConstructorArguments).
		Error().
		Message("Missing generic argument for cxx_qt::Constructor!").
		Span(span).
		Build()
}

func (cd *CommonDiagnostics) ExpectedArgumentTuple(span position.Span) *Diagnostic {
	return Of(ExpectedArgumentTuple).
		Error().
		Message("cxx_qt::Constructor expects a tuple as the first generic argument").
		Span(span).
		Build()
}

func (cd *CommonDiagnostics) UnnecessaryUnsafe(span position.Span) *Diagnostic {
	return Of(UnnecessaryUnsafe).
		Error().
		Message("Unnecessary unsafe around constructor impl.").
		Span(span).
		Build()
}

func (cd *CommonDiagnostics) GenericsNotAllowed(span position.Span) *Diagnostic {
	return Of(GenericsNotAllowed).
		Error().
		Message("Generics are not allowed on cxx_qt::Constructor impls!").
		Span(span).
		Build()
}

func (cd *CommonDiagnostics) MustBeDeclarationOnly(span position.Span) *Diagnostic {
	return Of(MustBeDeclarationOnly).
		Error().
		Message("cxx_qt::Constructor must only be declared, not implemented inside cxx_qt::bridge!").
		Span(span).
		Build()
}

func (cd *CommonDiagnostics) ExpectedTraitImpl(span position.Span) *Diagnostic {
	return Of(ExpectedTraitImpl).
		Error().
		Message("Expected trait impl!").
		Span(span).
		Build()
}

// DuplicateConstructorShape reports a second constructor whose flat argument
// list matches an earlier one on the same object.
func (cd *CommonDiagnostics) DuplicateConstructorShape(span, first position.Span, object, shape string) *Diagnostic {
	return Of(DuplicateConstructorShape).
		Error().
		Messagef("%s already has a constructor taking %s", object, shape).
		Span(span).
		Related(first, "first constructor with this argument list").
		Build()
}

func (cd *CommonDiagnostics) UnknownConstructorTarget(span position.Span, object string) *Diagnostic {
	return Of(UnknownConstructorTarget).
		Error().
		Messagef("constructor declared for %s, but the bridge declares no such qobject", object).
		Span(span).
		Build()
}
