// Package report serializes scan results for tooling and emitters.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/qtbridge/bridgegen/internal/bridge"
	"github.com/qtbridge/bridgegen/internal/constructor"
	"github.com/qtbridge/bridgegen/internal/diagnostic"
	"github.com/qtbridge/bridgegen/internal/plan"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}

// Report is the serializable form of a scan.
type Report struct {
	Tool    string  `json:"tool" yaml:"tool"`
	Version string  `json:"version" yaml:"version"`
	Files   []File  `json:"files" yaml:"files"`
	Summary Summary `json:"summary" yaml:"summary"`
}

// Summary counts what the scan found.
type Summary struct {
	Files        int `json:"files" yaml:"files"`
	Objects      int `json:"objects" yaml:"objects"`
	Constructors int `json:"constructors" yaml:"constructors"`
	Errors       int `json:"errors" yaml:"errors"`
	Warnings     int `json:"warnings" yaml:"warnings"`
}

// File is one scanned file.
type File struct {
	Path        string       `json:"path" yaml:"path"`
	Objects     []Object     `json:"objects" yaml:"objects"`
	Diagnostics []Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

// Object is a qobject and its constructors.
type Object struct {
	Module       string        `json:"module" yaml:"module"`
	Name         string        `json:"name" yaml:"name"`
	Base         string        `json:"base" yaml:"base"`
	Storage      string        `json:"storage" yaml:"storage"`
	QMLElement   bool          `json:"qml_element" yaml:"qml_element"`
	Implicit     bool          `json:"implicit_constructor" yaml:"implicit_constructor"`
	Constructors []Constructor `json:"constructors" yaml:"constructors"`
	Plans        []*plan.Plan  `json:"plans,omitempty" yaml:"plans,omitempty"`
}

// Constructor mirrors a contract. Role lists are omitted when the role is
// not bound and written as an empty list when bound to ().
type Constructor struct {
	Line                int       `json:"line" yaml:"line"`
	Arguments           []string  `json:"arguments" yaml:"arguments"`
	NewArguments        *[]string `json:"new_arguments,omitempty" yaml:"new_arguments,omitempty"`
	BaseArguments       *[]string `json:"base_arguments,omitempty" yaml:"base_arguments,omitempty"`
	InitializeArguments *[]string `json:"initialize_arguments,omitempty" yaml:"initialize_arguments,omitempty"`
}

// Diagnostic is a flattened diagnostic.
type Diagnostic struct {
	Code      string `json:"code" yaml:"code"`
	Kind      string `json:"kind" yaml:"kind"`
	Level     string `json:"level" yaml:"level"`
	Message   string `json:"message" yaml:"message"`
	Line      int    `json:"line" yaml:"line"`
	Column    int    `json:"column" yaml:"column"`
	EndLine   int    `json:"end_line" yaml:"end_line"`
	EndColumn int    `json:"end_column" yaml:"end_column"`
}

// Options controls Build.
type Options struct {
	Tool    string
	Version string
	// Plans attaches construction plans to every object.
	Plans   bool
	Builder *plan.Builder
}

// Build converts scan results into a Report.
func Build(results []*bridge.Result, opts Options) (*Report, error) {
	builder := opts.Builder
	if builder == nil {
		builder = plan.NewBuilder(nil)
	}

	r := &Report{Tool: opts.Tool, Version: opts.Version, Files: make([]File, 0, len(results))}
	for _, res := range results {
		f := File{Path: res.Filename, Objects: []Object{}, Diagnostics: []Diagnostic{}}

		for _, mod := range res.Modules {
			for _, obj := range mod.Objects {
				o := Object{
					Module:       mod.Name,
					Name:         obj.Name,
					Base:         obj.Base,
					Storage:      obj.Storage,
					QMLElement:   obj.QMLElement,
					Implicit:     obj.HasImplicitConstructor(),
					Constructors: make([]Constructor, 0, len(obj.Constructors)),
				}
				for _, c := range obj.Constructors {
					o.Constructors = append(o.Constructors, convertConstructor(c))
				}
				if opts.Plans {
					plans, err := builder.ForObject(obj)
					if err != nil {
						return nil, fmt.Errorf("%s: %w", res.Filename, err)
					}
					o.Plans = plans
				}

				r.Summary.Objects++
				r.Summary.Constructors += len(obj.Constructors)
				f.Objects = append(f.Objects, o)
			}
		}

		for _, d := range res.Diagnostics {
			f.Diagnostics = append(f.Diagnostics, convertDiagnostic(d))
			switch d.Level {
			case diagnostic.DiagnosticError:
				r.Summary.Errors++
			case diagnostic.DiagnosticWarning:
				r.Summary.Warnings++
			}
		}

		r.Files = append(r.Files, f)
	}
	r.Summary.Files = len(r.Files)

	return r, nil
}

func convertConstructor(c *constructor.Constructor) Constructor {
	return Constructor{
		Line:                c.Span.Start.Line,
		Arguments:           c.Arguments.Strings(),
		NewArguments:        optional(c.NewArguments),
		BaseArguments:       optional(c.BaseArguments),
		InitializeArguments: optional(c.InitializeArguments),
	}
}

func optional(l *constructor.ArgumentList) *[]string {
	if l == nil {
		return nil
	}
	s := l.Strings()
	return &s
}

func convertDiagnostic(d *diagnostic.Diagnostic) Diagnostic {
	return Diagnostic{
		Code:      d.Code,
		Kind:      d.Kind.String(),
		Level:     d.Level.String(),
		Message:   d.Message,
		Line:      d.Span.Start.Line,
		Column:    d.Span.Start.Column,
		EndLine:   d.Span.End.Line,
		EndColumn: d.Span.End.Column,
	}
}

// Write encodes r to w in the given format.
func Write(w io.Writer, r *Report, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()

	case FormatText, "":
		return writeText(w, r)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func writeText(w io.Writer, r *Report) error {
	var sb strings.Builder

	for _, f := range r.Files {
		if len(f.Objects) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%s\n", f.Path)
		for _, o := range f.Objects {
			fmt.Fprintf(&sb, "  %s::%s : %s\n", o.Module, o.Name, o.Base)
			if o.Implicit {
				sb.WriteString("    implicit ()\n")
			}
			for _, c := range o.Constructors {
				fmt.Fprintf(&sb, "    %s%s\n", tuple(c.Arguments), roles(c))
			}
			for _, p := range o.Plans {
				fmt.Fprintf(&sb, "    plan %s\n", p.Signature())
				for i, step := range p.Steps {
					fmt.Fprintf(&sb, "      %d. %s", i+1, step.Kind)
					if step.Function != "" {
						fmt.Fprintf(&sb, " %s", step.Function)
					}
					names := make([]string, len(step.Arguments))
					for j, a := range step.Arguments {
						names[j] = a.Foreign
					}
					fmt.Fprintf(&sb, "(%s)\n", strings.Join(names, ", "))
				}
			}
		}
	}

	s := r.Summary
	fmt.Fprintf(&sb, "%d file(s), %d object(s), %d constructor(s), %d error(s)\n",
		s.Files, s.Objects, s.Constructors, s.Errors)

	_, err := io.WriteString(w, sb.String())
	return err
}

func tuple(types []string) string {
	if len(types) == 1 {
		return "(" + types[0] + ",)"
	}
	return "(" + strings.Join(types, ", ") + ")"
}

func roles(c Constructor) string {
	var parts []string
	for _, role := range []struct {
		name string
		list *[]string
	}{
		{"new", c.NewArguments},
		{"base", c.BaseArguments},
		{"initialize", c.InitializeArguments},
	} {
		if role.list != nil {
			parts = append(parts, role.name+"="+tuple(*role.list))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}
