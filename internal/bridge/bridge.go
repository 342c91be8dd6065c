// Package bridge finds bridge modules in a source file and collects the
// objects they declare together with their constructor contracts.
//
// Each constructor declaration is parsed independently. A malformed
// declaration contributes one diagnostic and scanning continues with its
// siblings.
package bridge

import (
	"github.com/qtbridge/bridgegen/internal/constructor"
	"github.com/qtbridge/bridgegen/internal/diagnostic"
	"github.com/qtbridge/bridgegen/internal/position"
)

// DefaultBase is the base class of a qobject that names none.
const DefaultBase = "QObject"

// Markers lists the attribute and trait paths the scanner recognizes.
// Paths are compared without generic arguments.
type Markers struct {
	Bridge      []string `koanf:"bridge"`
	QObject     []string `koanf:"qobject"`
	Constructor []string `koanf:"constructor"`
}

// DefaultMarkers returns the marker paths used by the bridge macros.
func DefaultMarkers() Markers {
	return Markers{
		Bridge:      []string{"cxx_qt::bridge"},
		QObject:     []string{"cxx_qt::qobject", "qobject"},
		Constructor: []string{"cxx_qt::Constructor"},
	}
}

// Object is a qobject declared in a bridge module.
type Object struct {
	Name string
	// Storage is the native type holding the object's data. For struct
	// declarations it is the struct itself.
	Storage    string
	Base       string
	QMLElement bool
	Span       position.Span

	Constructors []*constructor.Constructor
}

// HasImplicitConstructor reports whether the object gets the generated
// parameterless constructor. Declaring any constructor suppresses it, so
// keeping it alongside others requires declaring Constructor<()>.
func (o *Object) HasImplicitConstructor() bool {
	return len(o.Constructors) == 0
}

// Module is a bridge module.
type Module struct {
	Name    string
	Span    position.Span
	Objects []*Object
}

// Object returns the object named name, or nil.
func (m *Module) Object(name string) *Object {
	for _, obj := range m.Objects {
		if obj.Name == name {
			return obj
		}
	}
	return nil
}

// Result is the outcome of scanning one file.
type Result struct {
	Filename    string
	Source      string
	Modules     []*Module
	Diagnostics []*diagnostic.Diagnostic
}

// HasErrors reports whether any error level diagnostic was produced.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Level == diagnostic.DiagnosticError {
			return true
		}
	}
	return false
}

// Constructors returns every accepted constructor in source order.
func (r *Result) Constructors() []*constructor.Constructor {
	var out []*constructor.Constructor
	for _, m := range r.Modules {
		for _, obj := range m.Objects {
			out = append(out, obj.Constructors...)
		}
	}
	return out
}
