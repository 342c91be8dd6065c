package constructor

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/qtbridge/bridgegen/internal/diagnostic"
	"github.com/qtbridge/bridgegen/internal/parser"
	"github.com/qtbridge/bridgegen/internal/position"
)

// summary flattens a contract for comparison. nil role lists stay nil and
// bound empty lists become empty slices, so cmp tells them apart.
type summary struct {
	Arguments  []string
	New        []string
	Base       []string
	Initialize []string
}

func optional(l *ArgumentList) []string {
	if l == nil {
		return nil
	}
	return l.Strings()
}

func summarize(c *Constructor) summary {
	return summary{
		Arguments:  c.Arguments.Strings(),
		New:        optional(c.NewArguments),
		Base:       optional(c.BaseArguments),
		Initialize: optional(c.InitializeArguments),
	}
}

func parseImpl(t *testing.T, src string) *parser.ItemImpl {
	t.Helper()
	impl, err := parser.ParseImpl("bridge.rs", src)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", src, err)
	}
	return impl
}

func mustParse(t *testing.T, src string) *Constructor {
	t.Helper()
	c, err := Parse(parseImpl(t, src))
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return c
}

// expectFailure parses src and checks the diagnostic kind and the source
// text its span underlines.
func expectFailure(t *testing.T, src string, kind diagnostic.Kind, spanText string) *diagnostic.Diagnostic {
	t.Helper()

	c, err := Parse(parseImpl(t, src))
	if err == nil {
		t.Fatalf("Parse(%q) = %+v, want %s", src, summarize(c), kind)
	}

	d, ok := diagnostic.As(err)
	if !ok {
		t.Fatalf("Parse(%q) returned %T, want *diagnostic.Diagnostic", src, err)
	}
	if d.Kind != kind {
		t.Fatalf("Parse(%q) kind = %s, want %s (%s)", src, d.Kind, kind, d.Message)
	}

	got := position.NewSourceFile("bridge.rs", src).GetSpanText(d.Span)
	if got != spanText {
		t.Errorf("Parse(%q) span text = %q, want %q", src, got, spanText)
	}
	return d
}

func TestScenarioPlainArguments(t *testing.T) {
	c := mustParse(t, "impl cxx_qt::Constructor<(i32, QString)> for qobject::MyObject {}")

	want := summary{Arguments: []string{"i32", "QString"}}
	if diff := cmp.Diff(want, summarize(c)); diff != "" {
		t.Errorf("contract mismatch (-want +got):\n%s", diff)
	}
	if c.SelfType().String() != "qobject::MyObject" {
		t.Errorf("self type = %s", c.SelfType())
	}
	if c.Shape() != "(i32, QString)" {
		t.Errorf("shape = %s", c.Shape())
	}
}

func TestScenarioRoleBindings(t *testing.T) {
	c := mustParse(t, "impl cxx_qt::Constructor<(i32,), NewArguments = (i32,), BaseArguments = ()> for qobject::MyObject {}")

	want := summary{
		Arguments: []string{"i32"},
		New:       []string{"i32"},
		Base:      []string{},
	}
	if diff := cmp.Diff(want, summarize(c)); diff != "" {
		t.Errorf("contract mismatch (-want +got):\n%s", diff)
	}
	if c.BaseArguments == nil || c.BaseArguments.Len() != 0 {
		t.Error("BaseArguments should be bound and empty")
	}
	if c.InitializeArguments != nil {
		t.Error("InitializeArguments should be unbound")
	}
}

func TestScenarioMissingTrailingComma(t *testing.T) {
	expectFailure(t,
		"impl cxx_qt::Constructor<(), NewArguments = (bool)> for qobject::MyObject {}",
		diagnostic.MalformedArgumentList, "(bool)")
}

func TestScenarioDuplicateRole(t *testing.T) {
	src := "impl cxx_qt::Constructor<(i32,), NewArguments = (i32,), NewArguments = (i32,)> for qobject::MyObject {}"
	d := expectFailure(t, src, diagnostic.DuplicateConstructorRole, "NewArguments = (i32,)")

	if !strings.Contains(d.Message, "NewArguments") {
		t.Errorf("message should name the role: %q", d.Message)
	}
	if d.Span.Start.Offset != strings.LastIndex(src, "NewArguments") {
		t.Errorf("diagnostic should point at the second binding, got offset %d", d.Span.Start.Offset)
	}
}

func TestParseArgumentList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"()", []string{}},
		{"(i32,)", []string{"i32"}},
		{"(i32, QString)", []string{"i32", "QString"}},
		{"(i32, QString,)", []string{"i32", "QString"}},
		{"(&QString, *mut QObject, Vec<u8>)", []string{"&QString", "*mut QObject", "Vec<u8>"}},
		{"((i32, bool),)", []string{"(i32, bool)"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			typ, err := parser.ParseType(tt.input)
			if err != nil {
				t.Fatal(err)
			}
			list, err := ParseArgumentList(typ)
			if err != nil {
				t.Fatalf("ParseArgumentList(%q) failed: %v", tt.input, err)
			}
			if diff := cmp.Diff(tt.want, list.Strings()); diff != "" {
				t.Errorf("ParseArgumentList(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestParseArgumentListRejectsNonTuples(t *testing.T) {
	for _, input := range []string{"(i32)", "i32", "[i32; 2]", "&(i32,)", "((i32,))"} {
		t.Run(input, func(t *testing.T) {
			typ, err := parser.ParseType(input)
			if err != nil {
				t.Fatal(err)
			}
			_, err = ParseArgumentList(typ)
			if diagnostic.KindOf(err) != diagnostic.MalformedArgumentList {
				t.Errorf("ParseArgumentList(%q) error = %v, want MalformedArgumentList", input, err)
			}
		})
	}
}

func TestArgumentListString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"()", "()"},
		{"(i32,)", "(i32,)"},
		{"(i32, QString)", "(i32, QString)"},
	}
	for _, tt := range tests {
		typ, err := parser.ParseType(tt.input)
		if err != nil {
			t.Fatal(err)
		}
		list, err := ParseArgumentList(typ)
		if err != nil {
			t.Fatal(err)
		}
		if list.String() != tt.want {
			t.Errorf("String() = %q, want %q", list.String(), tt.want)
		}
	}

	var unbound *ArgumentList
	if unbound.Len() != 0 || unbound.Strings() != nil {
		t.Error("nil list should be empty")
	}
}

func TestRoleOrderIndependence(t *testing.T) {
	bindings := []string{
		"NewArguments = (i32,)",
		"BaseArguments = (QString, bool)",
		"InitializeArguments = ()",
	}
	permutations := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}

	want := summary{
		Arguments:  []string{"i32", "QString"},
		New:        []string{"i32"},
		Base:       []string{"QString", "bool"},
		Initialize: []string{},
	}

	for _, perm := range permutations {
		parts := []string{"(i32, QString)"}
		for _, i := range perm {
			parts = append(parts, bindings[i])
		}
		src := "impl cxx_qt::Constructor<" + strings.Join(parts, ", ") + "> for qobject::T {}"

		c := mustParse(t, src)
		if diff := cmp.Diff(want, summarize(c)); diff != "" {
			t.Errorf("order %v produced a different contract (-want +got):\n%s", perm, diff)
		}
	}
}

func TestDuplicateRoleInAnyPosition(t *testing.T) {
	tests := []struct {
		src  string
		role string
	}{
		{"impl cxx_qt::Constructor<(), BaseArguments = (), BaseArguments = ()> for T {}", "BaseArguments"},
		{"impl cxx_qt::Constructor<(), BaseArguments = (), NewArguments = (), BaseArguments = ()> for T {}", "BaseArguments"},
		{"impl cxx_qt::Constructor<(), InitializeArguments = (), NewArguments = (), InitializeArguments = (bool,)> for T {}", "InitializeArguments"},
	}

	for _, tt := range tests {
		c, err := Parse(parseImpl(t, tt.src))
		if diagnostic.KindOf(err) != diagnostic.DuplicateConstructorRole {
			t.Fatalf("%s: got %v, %v", tt.src, c, err)
		}
		if !strings.Contains(err.Error(), tt.role) {
			t.Errorf("%s: error %q should name %s", tt.src, err, tt.role)
		}
	}
}

func TestUnknownRole(t *testing.T) {
	expectFailure(t,
		"impl cxx_qt::Constructor<(), NewArguments = (), Foo = (), BaseArguments = ()> for T {}",
		diagnostic.UnknownConstructorRole, "Foo = ()")

	// Role names are case sensitive.
	expectFailure(t,
		"impl cxx_qt::Constructor<(), newArguments = ()> for T {}",
		diagnostic.UnknownConstructorRole, "newArguments = ()")
}

func TestExpectedAssociatedRole(t *testing.T) {
	expectFailure(t,
		"impl cxx_qt::Constructor<(), i32> for T {}",
		diagnostic.ExpectedAssociatedRole, "i32")
	expectFailure(t,
		"impl cxx_qt::Constructor<(), NewArguments = (), (bool,)> for T {}",
		diagnostic.ExpectedAssociatedRole, "(bool,)")
	expectFailure(t,
		"impl cxx_qt::Constructor<(), NewArguments: Clone> for T {}",
		diagnostic.ExpectedAssociatedRole, "NewArguments: Clone")
}

func TestMissingConstructorArguments(t *testing.T) {
	expectFailure(t,
		"impl cxx_qt::Constructor<> for T {}",
		diagnostic.MissingConstructorArguments, "cxx_qt::Constructor<>")
	expectFailure(t,
		"impl cxx_qt::Constructor for T {}",
		diagnostic.MissingConstructorArguments, "cxx_qt::Constructor")
}

func TestExpectedArgumentTuple(t *testing.T) {
	expectFailure(t,
		"impl cxx_qt::Constructor<NewArguments = (i32,)> for T {}",
		diagnostic.ExpectedArgumentTuple, "NewArguments = (i32,)")
	expectFailure(t,
		"impl cxx_qt::Constructor<'a, (i32,)> for T {}",
		diagnostic.ExpectedArgumentTuple, "'a")
}

func TestLeadingArgumentMustBeTuple(t *testing.T) {
	expectFailure(t,
		"impl cxx_qt::Constructor<i32> for T {}",
		diagnostic.MalformedArgumentList, "i32")
	expectFailure(t,
		"impl cxx_qt::Constructor<(i32)> for T {}",
		diagnostic.MalformedArgumentList, "(i32)")
}

func TestPreconditions(t *testing.T) {
	// Every declaration below has a valid generic shape, so only the
	// precondition can fail.
	tests := []struct {
		name     string
		src      string
		kind     diagnostic.Kind
		spanText string
	}{
		{
			name:     "unsafe",
			src:      "unsafe impl cxx_qt::Constructor<(i32,)> for T {}",
			kind:     diagnostic.UnnecessaryUnsafe,
			spanText: "unsafe",
		},
		{
			name:     "generics",
			src:      "impl<T, U> cxx_qt::Constructor<(i32,)> for X {}",
			kind:     diagnostic.GenericsNotAllowed,
			spanText: "T",
		},
		{
			name:     "lifetime generics",
			src:      "impl<'a> cxx_qt::Constructor<(i32,)> for X {}",
			kind:     diagnostic.GenericsNotAllowed,
			spanText: "'a",
		},
		{
			name:     "items",
			src:      "impl cxx_qt::Constructor<(i32,)> for T { fn new() {} const X: i32 = 1; }",
			kind:     diagnostic.MustBeDeclarationOnly,
			spanText: "fn new() {}",
		},
		{
			name:     "inherent impl",
			src:      "impl qobject::T {}",
			kind:     diagnostic.ExpectedTraitImpl,
			spanText: "impl qobject::T {}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectFailure(t, tt.src, tt.kind, tt.spanText)
		})
	}
}

func TestPreconditionOrder(t *testing.T) {
	tests := []struct {
		src  string
		kind diagnostic.Kind
	}{
		{"unsafe impl<T> cxx_qt::Constructor<(bool)> for X { fn a() {} }", diagnostic.UnnecessaryUnsafe},
		{"impl<T> cxx_qt::Constructor<(bool)> for X { fn a() {} }", diagnostic.GenericsNotAllowed},
		{"impl cxx_qt::Constructor<(bool)> for X { fn a() {} }", diagnostic.MustBeDeclarationOnly},
		{"impl qobject::X { fn a() {} }", diagnostic.MustBeDeclarationOnly},
		{"impl cxx_qt::Constructor<(bool)> for X {}", diagnostic.MalformedArgumentList},
	}

	for _, tt := range tests {
		_, err := Parse(parseImpl(t, tt.src))
		if got := diagnostic.KindOf(err); got != tt.kind {
			t.Errorf("%s: kind = %s, want %s", tt.src, got, tt.kind)
		}
	}
}

func TestEmptyGenericListIsAllowed(t *testing.T) {
	c := mustParse(t, "impl<> cxx_qt::Constructor<()> for T {}")
	if c.Arguments.Len() != 0 {
		t.Errorf("expected no arguments, got %v", c.Arguments.Strings())
	}
}

func TestContractKeepsSpans(t *testing.T) {
	src := "impl cxx_qt::Constructor<(i32,), InitializeArguments = (QString,)> for qobject::T {}"
	impl := parseImpl(t, src)
	c, err := Parse(impl)
	if err != nil {
		t.Fatal(err)
	}

	file := position.NewSourceFile("bridge.rs", src)
	if got := file.GetSpanText(c.Span); got != src {
		t.Errorf("contract span text = %q", got)
	}
	if got := file.GetSpanText(c.Arguments.Span); got != "(i32,)" {
		t.Errorf("arguments span text = %q", got)
	}
	if got := file.GetSpanText(c.InitializeArguments.Span); got != "(QString,)" {
		t.Errorf("initialize span text = %q", got)
	}
	if c.Role(InitializeArguments) != c.InitializeArguments || c.Role(NewArguments) != nil {
		t.Error("Role accessor does not match fields")
	}
}

func TestLookupRole(t *testing.T) {
	for _, role := range Roles() {
		got, ok := LookupRole(role.String())
		if !ok || got != role {
			t.Errorf("LookupRole(%q) = %v, %v", role.String(), got, ok)
		}
	}

	for _, name := range []string{"", "newArguments", "Arguments", "NEW_ARGUMENTS", "new"} {
		if _, ok := LookupRole(name); ok {
			t.Errorf("LookupRole(%q) should fail", name)
		}
	}
}
