// Package plan turns constructor contracts into the ordered construction
// steps an emitter renders: route the caller's arguments, create the native
// storage, construct the base class, then run initialization.
package plan

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/qtbridge/bridgegen/internal/bridge"
	"github.com/qtbridge/bridgegen/internal/constructor"
	"github.com/qtbridge/bridgegen/internal/typemap"
)

// StepKind identifies a construction step.
type StepKind int

const (
	// RouteArguments splits the caller's arguments into per-role lists.
	RouteArguments StepKind = iota
	// NewStorage creates the native storage from NewArguments. An unbound
	// role gives an empty argument list.
	NewStorage
	// ConstructBase runs the base class constructor with BaseArguments.
	ConstructBase
	// Initialize runs user initialization with InitializeArguments once
	// the object is fully constructed.
	Initialize
)

func (k StepKind) String() string {
	switch k {
	case RouteArguments:
		return "route-arguments"
	case NewStorage:
		return "new-storage"
	case ConstructBase:
		return "construct-base"
	case Initialize:
		return "initialize"
	}
	return fmt.Sprintf("StepKind(%d)", int(k))
}

// MarshalText lets encoders write the step name instead of the number.
func (k StepKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Param is one argument with its Rust (Native) and C++ (Foreign) spelling.
type Param struct {
	Name    string `json:"name" yaml:"name"`
	Native  string `json:"native" yaml:"native"`
	Foreign string `json:"foreign" yaml:"foreign"`
}

// Step is a single construction step.
type Step struct {
	Kind StepKind `json:"kind" yaml:"kind"`
	// Function is the native function invoked by the step. Empty for
	// steps that need no native call.
	Function  string  `json:"function,omitempty" yaml:"function,omitempty"`
	Arguments []Param `json:"arguments" yaml:"arguments"`
}

// Plan is the construction sequence for one constructor.
type Plan struct {
	Object   string  `json:"object" yaml:"object"`
	Base     string  `json:"base" yaml:"base"`
	Storage  string  `json:"storage" yaml:"storage"`
	Index    int     `json:"index" yaml:"index"`
	Implicit bool    `json:"implicit,omitempty" yaml:"implicit,omitempty"`
	Params   []Param `json:"parameters" yaml:"parameters"`
	Steps    []Step  `json:"steps" yaml:"steps"`
}

// Signature renders the C++ constructor declaration, e.g.
// "MyObject(qint32 arg0, const QString& arg1)".
func (p *Plan) Signature() string {
	params := make([]string, len(p.Params))
	for i, param := range p.Params {
		params[i] = param.Foreign + " " + param.Name
	}
	return p.Object + "(" + strings.Join(params, ", ") + ")"
}

// Step returns the first step of kind k, or nil.
func (p *Plan) Step(k StepKind) *Step {
	for i := range p.Steps {
		if p.Steps[i].Kind == k {
			return &p.Steps[i]
		}
	}
	return nil
}

// Kinds returns the step kinds in execution order.
func (p *Plan) Kinds() []StepKind {
	out := make([]StepKind, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = s.Kind
	}
	return out
}

// Builder builds plans with a type mapper.
type Builder struct {
	types *typemap.Mapper
}

// NewBuilder returns a Builder. A nil mapper uses typemap.Default.
func NewBuilder(types *typemap.Mapper) *Builder {
	if types == nil {
		types = typemap.Default
	}
	return &Builder{types: types}
}

// Build plans the index-th constructor of obj.
func (b *Builder) Build(obj *bridge.Object, index int, c *constructor.Constructor) (*Plan, error) {
	snake := SnakeCase(obj.Name)
	p := &Plan{
		Object:  obj.Name,
		Base:    obj.Base,
		Storage: obj.Storage,
		Index:   index,
	}

	params, err := b.params("arg", &c.Arguments)
	if err != nil {
		return nil, fmt.Errorf("constructor %d of %s: %w", index, obj.Name, err)
	}
	p.Params = params

	p.Steps = append(p.Steps, Step{
		Kind:      RouteArguments,
		Function:  fmt.Sprintf("route_arguments_%s_%d", snake, index),
		Arguments: params,
	})

	newArgs, err := b.params("new", c.NewArguments)
	if err != nil {
		return nil, fmt.Errorf("NewArguments of %s: %w", obj.Name, err)
	}
	base, err := b.params("base", c.BaseArguments)
	if err != nil {
		return nil, fmt.Errorf("BaseArguments of %s: %w", obj.Name, err)
	}
	initArgs, err := b.params("initialize", c.InitializeArguments)
	if err != nil {
		return nil, fmt.Errorf("InitializeArguments of %s: %w", obj.Name, err)
	}

	p.Steps = append(p.Steps, phases(obj, fmt.Sprintf("%s_%d", snake, index), newArgs, base, initArgs)...)
	return p, nil
}

// Implicit plans the generated parameterless constructor. It runs every
// phase with no arguments.
func (b *Builder) Implicit(obj *bridge.Object) *Plan {
	return &Plan{
		Object:   obj.Name,
		Base:     obj.Base,
		Storage:  obj.Storage,
		Implicit: true,
		Params:   []Param{},
		Steps:    phases(obj, SnakeCase(obj.Name), []Param{}, []Param{}, []Param{}),
	}
}

// phases returns the storage, base and initialize steps in execution order.
func phases(obj *bridge.Object, suffix string, newArgs, base, initArgs []Param) []Step {
	return []Step{
		{Kind: NewStorage, Function: "new_rs_" + suffix, Arguments: newArgs},
		{Kind: ConstructBase, Function: obj.Base, Arguments: base},
		{Kind: Initialize, Function: "initialize_" + suffix, Arguments: initArgs},
	}
}

// ForObject plans every constructor of obj in declaration order, or the
// implicit one when none is declared.
func (b *Builder) ForObject(obj *bridge.Object) ([]*Plan, error) {
	if obj.HasImplicitConstructor() {
		return []*Plan{b.Implicit(obj)}, nil
	}

	plans := make([]*Plan, 0, len(obj.Constructors))
	for i, c := range obj.Constructors {
		p, err := b.Build(obj, i, c)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (b *Builder) params(prefix string, list *constructor.ArgumentList) ([]Param, error) {
	out := make([]Param, 0, list.Len())
	if list == nil {
		return out, nil
	}
	for i, t := range list.Types {
		foreign, err := b.types.Spell(t)
		if err != nil {
			return nil, err
		}
		out = append(out, Param{
			Name:    fmt.Sprintf("%s%d", prefix, i),
			Native:  t.String(),
			Foreign: foreign,
		})
	}
	return out, nil
}

// SnakeCase converts an object name such as "MyObject" or "QMLThing" to
// "my_object" or "qml_thing".
func SnakeCase(name string) string {
	runes := []rune(name)
	var sb strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					sb.WriteByte('_')
				}
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
