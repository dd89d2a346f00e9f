package symbols

import (
	"testing"

	"github.com/go-test/deep"

	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/testkit"
)

func resolveProgram(t *testing.T, p *testkit.Program) (*Result, []diag.Diagnostic) {
	t.Helper()
	if err := testkit.CheckTreeInvariants(p.B, p.Unit); err != nil {
		t.Fatalf("tree invariants: %v", err)
	}
	bag := diag.NewBag(0)
	res := ResolveProgram(p.B, p.Unit, ResolveOptions{Reporter: diag.BagReporter{Bag: bag}, Validate: true})
	if err := res.Check(p.B); err != nil {
		t.Fatalf("result invariants: %v", err)
	}
	return res, bag.Items()
}

func codesOf(diags []diag.Diagnostic) []diag.Code {
	out := make([]diag.Code, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func expectCodes(t *testing.T, diags []diag.Diagnostic, want ...diag.Code) {
	t.Helper()
	if want == nil {
		want = []diag.Code{}
	}
	if diff := deep.Equal(codesOf(diags), want); diff != nil {
		for _, d := range diags {
			t.Logf("%s %s", d.Code.ID(), d.Message)
		}
		t.Fatal(diff)
	}
}

func TestSelfAssignment(t *testing.T) {
	p := testkit.New("main.sbl")
	p.Main(p.Local("x", p.T("Int"), p.Name("x")))
	_, diags := resolveProgram(t, p)
	expectCodes(t, diags, diag.ScpSelfAssign)
}

func TestRedeclaredGlobalKeepsFirst(t *testing.T) {
	p := testkit.New("main.sbl")
	first := p.Global("c", p.T("Int"), ast.NoExprID, 0)
	p.Global("c", p.T("Int"), ast.NoExprID, 0)
	use := p.Name("c")
	p.Main(p.Do(use))

	res, diags := resolveProgram(t, p)
	expectCodes(t, diags, diag.ScpRedeclared)
	if len(diags[0].Notes) != 1 || diags[0].Notes[0].Span != p.B.Decls.Get(first).Span {
		t.Fatalf("expected note pointing at the first declaration, got %+v", diags[0].Notes)
	}
	if got, _ := res.Table.Scopes.Get(res.Global()).Lookup(NameKey("c")); got != first {
		t.Fatalf("global scope resolves c to %d, want %d", got, first)
	}
	if res.Uses[use] != first {
		t.Fatalf("use resolves to %d, want %d", res.Uses[use], first)
	}
}

func TestShadowing(t *testing.T) {
	t.Run("global", func(t *testing.T) {
		p := testkit.New("main.sbl")
		p.Global("g", p.T("Int"), ast.NoExprID, 0)
		p.Main(p.Local("g", p.T("Int"), ast.NoExprID))
		_, diags := resolveProgram(t, p)
		expectCodes(t, diags, diag.ScpShadowsGlobal)
	})
	t.Run("function", func(t *testing.T) {
		p := testkit.New("main.sbl")
		p.Func(testkit.Fn{Name: "f", Params: []ast.DeclID{p.Param("f", p.T("Int"), 0)}})
		_, diags := resolveProgram(t, p)
		expectCodes(t, diags, diag.ScpShadowsGlobal)
	})
	t.Run("nested local", func(t *testing.T) {
		p := testkit.New("main.sbl")
		p.Main(
			p.Local("a", p.T("Int"), p.Int("1")),
			p.Block(p.Local("a", p.T("Char"), p.Char("z"))),
		)
		_, diags := resolveProgram(t, p)
		expectCodes(t, diags)
	})
}

func TestUnresolvedNameSuggestion(t *testing.T) {
	p := testkit.New("main.sbl")
	p.Main(
		p.Local("count", p.T("Int"), p.Int("1")),
		p.Do(p.Name("coun")),
	)
	_, diags := resolveProgram(t, p)
	expectCodes(t, diags, diag.ScpUnresolved)
	if s := diags[0].Suggestion; s == nil || s.Code != diag.SugDidYouMean || s.Args[0] != "count" {
		t.Fatalf("expected did-you-mean count, got %+v", s)
	}
}

func TestOverloadsBindBySignature(t *testing.T) {
	p := testkit.New("main.sbl")
	fi := p.Func(testkit.Fn{Name: "f", Params: []ast.DeclID{p.Param("a", p.T("Int"), 0)}})
	fs := p.Func(testkit.Fn{Name: "f", Params: []ast.DeclID{p.Param("a", p.T("String"), 0)}})
	call := p.Call("f", p.Int("1"))
	p.Main(p.Do(call))

	res, diags := resolveProgram(t, p)
	expectCodes(t, diags)
	if res.Keys[fi] != "f(i)" || res.Keys[fs] != "f(s)" {
		t.Fatalf("unexpected keys %q %q", res.Keys[fi], res.Keys[fs])
	}
	if _, ok := res.Uses[call]; ok {
		t.Fatalf("ambiguous call must be left to the type checker")
	}
	if got := res.CallCandidates(res.Global(), ast.NoDeclID, "f"); len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %v", got)
	}
}

func TestDuplicateSignatureIsRedeclaration(t *testing.T) {
	p := testkit.New("main.sbl")
	p.Func(testkit.Fn{Name: "f", Params: []ast.DeclID{p.Param("a", p.T("Int"), 0)}})
	p.Func(testkit.Fn{Name: "f", Params: []ast.DeclID{p.Param("b", p.T("Int"), 0)}})
	_, diags := resolveProgram(t, p)
	expectCodes(t, diags, diag.ScpRedeclared)
}

func TestUndeclaredFunction(t *testing.T) {
	p := testkit.New("main.sbl")
	p.Main(p.Do(p.Call("nope")))
	_, diags := resolveProgram(t, p)
	expectCodes(t, diags, diag.ScpUndeclaredFunc)
}

func TestBaseFieldsAreFlattened(t *testing.T) {
	p := testkit.New("main.sbl")
	use := p.Name("x")
	get := p.Method(testkit.Fn{Name: "get", Ret: p.T("Int"), Body: []ast.StmtID{p.Return(use)}})
	derived := p.AddClass(testkit.Class{Name: "B", Base: p.T("A"), Methods: []ast.DeclID{get}})
	x := p.Field("x", p.T("Int"), 0)
	base := p.AddClass(testkit.Class{Name: "A", Fields: []ast.DeclID{x}})

	res, diags := resolveProgram(t, p)
	expectCodes(t, diags)
	if res.Uses[use] != x {
		t.Fatalf("x resolves to %d, want base field %d", res.Uses[use], x)
	}
	if diff := deep.Equal(res.Order, []ast.DeclID{base, derived}); diff != nil {
		t.Fatalf("classes must resolve base-first: %v", diff)
	}
	if res.Bases[derived] != base {
		t.Fatalf("expected base recorded")
	}
	if got, ok := res.Member(derived, "x"); !ok || got != x {
		t.Fatalf("member lookup = %d, %v", got, ok)
	}
}

func TestFieldRedeclaresBaseField(t *testing.T) {
	p := testkit.New("main.sbl")
	p.AddClass(testkit.Class{Name: "A", Fields: []ast.DeclID{p.Field("x", p.T("Int"), 0)}})
	p.AddClass(testkit.Class{Name: "B", Base: p.T("A"), Fields: []ast.DeclID{p.Field("x", p.T("Int"), 0)}})
	_, diags := resolveProgram(t, p)
	expectCodes(t, diags, diag.ScpRedeclared)
}

func TestInheritedFieldClashesWithTemplateParam(t *testing.T) {
	p := testkit.New("main.sbl")
	field := p.Field("T", p.T("Int"), 0)
	p.AddClass(testkit.Class{Name: "A", Fields: []ast.DeclID{field}})
	tp := p.TParam("T", ast.ConstraintNone)
	p.AddClass(testkit.Class{Name: "B", Base: p.T("A"), TypeParams: []ast.DeclID{tp}})

	_, diags := resolveProgram(t, p)
	expectCodes(t, diags, diag.ScpRedeclared)
	notes := diags[0].Notes
	if len(notes) != 2 || notes[0].Span != p.B.Decls.Get(tp).Span || notes[1].Span != p.B.Decls.Get(field).Span {
		t.Fatalf("notes = %+v", notes)
	}
}

func TestInheritedMethodCall(t *testing.T) {
	p := testkit.New("main.sbl")
	helper := p.Method(testkit.Fn{Name: "helper"})
	p.AddClass(testkit.Class{Name: "A", Methods: []ast.DeclID{helper}})
	call := p.Call("helper")
	viaThis := p.MCall(p.This(), "helper")
	run := p.Method(testkit.Fn{Name: "run", Body: []ast.StmtID{p.Do(call), p.Do(viaThis)}})
	p.AddClass(testkit.Class{Name: "B", Base: p.T("A"), Methods: []ast.DeclID{run}})

	res, diags := resolveProgram(t, p)
	expectCodes(t, diags)
	if res.Uses[call] != helper || res.Uses[viaThis] != helper {
		t.Fatalf("inherited method not resolved: %d %d", res.Uses[call], res.Uses[viaThis])
	}
}

func TestInheritanceCycle(t *testing.T) {
	p := testkit.New("main.sbl")
	p.AddClass(testkit.Class{Name: "A", Base: p.T("B")})
	p.AddClass(testkit.Class{Name: "B", Base: p.T("A")})
	res, diags := resolveProgram(t, p)
	expectCodes(t, diags, diag.ScpInheritanceCycle)
	for cls := range res.Bases {
		if len(res.Ancestors(cls)) > 1 {
			t.Fatalf("ancestor walk must terminate on the cycle")
		}
	}
}

func TestBaseNotClass(t *testing.T) {
	p := testkit.New("main.sbl")
	p.Enum("E", "One")
	p.AddClass(testkit.Class{Name: "A", Base: p.T("E")})
	_, diags := resolveProgram(t, p)
	expectCodes(t, diags, diag.ScpBaseNotClass)
}

func TestThisAndFields(t *testing.T) {
	p := testkit.New("main.sbl")
	p.Main(p.Do(p.This()))
	missing := p.Method(testkit.Fn{Name: "m", Body: []ast.StmtID{p.Do(p.Get(p.This(), "y"))}})
	p.AddClass(testkit.Class{Name: "P", Fields: []ast.DeclID{p.Field("x", p.T("Int"), 0)}, Methods: []ast.DeclID{missing}})
	_, diags := resolveProgram(t, p)
	expectCodes(t, diags, diag.ScpUndeclaredField, diag.ScpThisOutsideClass)
	if diags[0].Message != "'P' has no field 'y'" {
		t.Fatalf("unexpected message %q", diags[0].Message)
	}
}

func TestEnumConstants(t *testing.T) {
	p := testkit.New("main.sbl")
	enum := p.Enum("Color", "Red", "Green")
	data, _ := p.B.Decls.Enum(enum)
	red := data.Consts[0]
	qualified := p.Get(p.Name("Color"), "Red")
	bare := p.Name("Green")
	p.Main(
		p.Local("a", p.T("Color"), qualified),
		p.Local("b", p.T("Color"), bare),
		p.Local("c", p.T("Color"), p.Get(p.Name("Color"), "Blue")),
	)
	res, diags := resolveProgram(t, p)
	expectCodes(t, diags, diag.ScpUndeclaredField)
	if res.Uses[qualified] != red {
		t.Fatalf("Color.Red resolves to %d, want %d", res.Uses[qualified], red)
	}
	if !res.Uses[bare].IsValid() {
		t.Fatalf("bare enum constant must resolve")
	}
}

func TestUndeclaredType(t *testing.T) {
	p := testkit.New("main.sbl")
	p.Main(p.Local("s", p.T("Strng"), ast.NoExprID))
	_, diags := resolveProgram(t, p)
	expectCodes(t, diags, diag.ScpUndeclaredType)
	if s := diags[0].Suggestion; s == nil || s.Args[0] != "String" {
		t.Fatalf("expected String suggestion, got %+v", s)
	}
}

func TestNewRequiresClass(t *testing.T) {
	p := testkit.New("main.sbl")
	p.Enum("E", "One")
	p.Main(p.Do(p.New(p.T("E"))), p.Do(p.New(p.T("Nope"))))
	_, diags := resolveProgram(t, p)
	expectCodes(t, diags, diag.ScpUndeclaredClass, diag.ScpUndeclaredClass)
}

func TestLoopAndBranchScopes(t *testing.T) {
	p := testkit.New("main.sbl")
	loop := p.For("i", p.Int("0"), p.Int("3"), p.Block(p.Do(p.Name("i"))))
	then := p.Local("t", p.T("Int"), p.Int("1"))
	branch := p.If(p.Bool(true), then, ast.NoStmtID)
	p.Main(loop, p.Do(p.Name("i")), branch, p.Do(p.Name("t")))

	res, diags := resolveProgram(t, p)
	expectCodes(t, diags, diag.ScpUnresolved, diag.ScpUnresolved)
	if s := res.Table.Scopes.Get(res.ScopeOfStmt[loop]); s == nil || s.Kind != ScopeLoop {
		t.Fatalf("expected loop scope for the for statement")
	}
	if s := res.Table.Scopes.Get(res.ScopeOfStmt[then]); s == nil || s.Kind != ScopeBlock {
		t.Fatalf("expected wrapping block scope for a bare branch")
	}
}

func TestImports(t *testing.T) {
	p := testkit.New("main.sbl")
	lib := p.Sub("lib.sbl")
	k := lib.Global("k", lib.T("Int"), lib.Int("1"), 0)
	helper := lib.Func(testkit.Fn{Name: "helper", Params: []ast.DeclID{lib.Param("v", lib.T("Int"), 0)}})
	p.Import(lib)
	use := p.Name("k")
	call := p.Call("helper", p.Int("2"))
	p.Main(p.Do(use), p.Do(call))

	res, diags := resolveProgram(t, p)
	expectCodes(t, diags)
	if res.Uses[use] != k || res.Uses[call] != helper {
		t.Fatalf("imported names not resolved: %d %d", res.Uses[use], res.Uses[call])
	}
	if res.Table.Scopes.Get(res.Global()).Import != res.Units[lib.Unit] {
		t.Fatalf("expected import link to the library scope")
	}
}

func TestImportFailures(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		p := testkit.New("main.sbl")
		p.ImportPath("gone.sbl")
		_, diags := resolveProgram(t, p)
		expectCodes(t, diags, diag.ScpUnresolvedImport)
	})
	t.Run("cycle", func(t *testing.T) {
		p := testkit.New("main.sbl")
		lib := p.Sub("lib.sbl")
		p.Import(lib)
		lib.Import(p)
		_, diags := resolveProgram(t, p)
		expectCodes(t, diags, diag.ScpImportCycle)
	})
}

func TestResolveTopLevelIncremental(t *testing.T) {
	p := testkit.New("repl")
	bag := diag.NewBag(0)
	table := NewTable(Hints{}, p.B.Strings)
	r := NewResolver(p.B, table, p.Unit, diag.RaiseReporter{Next: diag.BagReporter{Bag: bag}})

	a := p.Global("a", p.T("Int"), p.Int("1"), 0)
	r.ResolveTopLevel(p.Unit, a)

	bad := p.Global("b", p.T("Int"), p.Name("missing"), 0)
	func() {
		defer func() {
			if _, ok := recover().(*diag.Raised); !ok {
				t.Fatalf("expected a raised diagnostic")
			}
		}()
		r.ResolveTopLevel(p.Unit, bad)
	}()
	if table.Depth() != 0 {
		t.Fatalf("scope stack not restored, depth %d", table.Depth())
	}

	use := p.Name("a")
	c := p.Global("c", p.T("Int"), use, 0)
	r.ResolveTopLevel(p.Unit, c)
	if r.Result().Uses[use] != a {
		t.Fatalf("later submission must see earlier bindings")
	}
	expectCodes(t, bag.Items(), diag.ScpUnresolved)
}
