package sema

import (
	"testing"

	"github.com/go-test/deep"

	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/symbols"
	"sable/internal/testkit"
)

// analyze runs resolution, type checking and the modifier pass into one bag.
func analyze(t *testing.T, p *testkit.Program) (*symbols.Result, *Result, *diag.Bag) {
	t.Helper()
	if err := testkit.CheckTreeInvariants(p.B, p.Unit); err != nil {
		t.Fatalf("tree invariants: %v", err)
	}
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	res := symbols.ResolveProgram(p.B, p.Unit, symbols.ResolveOptions{Reporter: rep, Validate: true})
	opts := Options{Reporter: rep, Symbols: res}
	typed := Check(p.B, opts)
	CheckModifiers(p.B, typed, opts)
	if err := res.Table.Validate(); err != nil {
		t.Fatalf("scope table after checking: %v", err)
	}
	if depth := res.Table.Depth(); depth != 0 {
		t.Fatalf("scope stack not unwound: depth %d", depth)
	}
	return res, typed, bag
}

func expectCodes(t *testing.T, bag *diag.Bag, want ...diag.Code) {
	t.Helper()
	got := make([]diag.Code, 0, bag.Len())
	for _, d := range bag.Items() {
		got = append(got, d.Code)
	}
	if want == nil {
		want = []diag.Code{}
	}
	if diff := deep.Equal(got, want); diff != nil {
		for _, d := range bag.Items() {
			t.Logf("%s %s", d.Code.ID(), d.Message)
		}
		t.Fatal(diff)
	}
}

func expectLabel(t *testing.T, typed *Result, id ast.ExprID, want string) {
	t.Helper()
	if got := typed.Label(id); got != want {
		t.Fatalf("expression %d typed %s, want %s", id, got, want)
	}
}

func int1(p *testkit.Program) ast.ExprID { return p.Int("1") }

func TestLiteralAndOperatorTypes(t *testing.T) {
	p := testkit.New("main.sbl")
	sum := p.Bin(ast.OpAdd, p.Int("1"), p.Int("2"))
	concat := p.Bin(ast.OpAdd, p.Str("a"), p.Text("b"))
	less := p.Bin(ast.OpLt, p.Int("1"), p.Real("2.5"))
	neg := p.Un(ast.UnNeg, p.Real("1.5"))
	cast := p.Cast(p.T("Real"), p.Int("3"))
	p.Main(
		p.Local("a", p.T("Int"), sum),
		p.Local("b", ast.NoTypeExprID, concat),
		p.Local("c", p.T("Bool"), less),
		p.Local("d", ast.NoTypeExprID, neg),
		p.Local("e", ast.NoTypeExprID, cast),
	)
	_, typed, bag := analyze(t, p)
	expectCodes(t, bag)
	expectLabel(t, typed, sum, "Int")
	expectLabel(t, typed, concat, "Text")
	expectLabel(t, typed, less, "Bool")
	expectLabel(t, typed, neg, "Real")
	expectLabel(t, typed, cast, "Real")
}

func TestInferredLocalTakesInitializerType(t *testing.T) {
	p := testkit.New("main.sbl")
	decl := p.Local("s", ast.NoTypeExprID, p.Str("x"))
	use := p.Name("s")
	p.Main(decl, p.Do(use))
	_, typed, bag := analyze(t, p)
	expectCodes(t, bag)
	expectLabel(t, typed, use, "String")
}

func TestBadOperands(t *testing.T) {
	p := testkit.New("main.sbl")
	p.Main(
		p.Do(p.Bin(ast.OpAdd, p.Int("1"), p.Bool(true))),
		p.Do(p.Un(ast.UnNot, p.Int("1"))),
		p.Do(p.Cast(p.T("Int"), p.Str("1"))),
	)
	_, _, bag := analyze(t, p)
	expectCodes(t, bag, diag.TypBadOperands, diag.TypBadOperand, diag.TypInvalidCast)
}

func TestInvalidOperandDoesNotCascade(t *testing.T) {
	p := testkit.New("main.sbl")
	// the unresolved name is reported once; the addition stays silent
	p.Main(p.Local("a", p.T("Int"), p.Bin(ast.OpAdd, p.Name("missing"), p.Int("1"))))
	_, _, bag := analyze(t, p)
	expectCodes(t, bag, diag.ScpUnresolved)
}

func TestConditionMustBeBool(t *testing.T) {
	p := testkit.New("main.sbl")
	p.Main(
		p.If(p.Int("5"), p.Block(), ast.NoStmtID),
		p.While(p.Bool(true), p.Block()),
		p.While(p.Str("x"), p.Block()),
	)
	_, _, bag := analyze(t, p)
	expectCodes(t, bag, diag.TypConditionNotBool, diag.TypConditionNotBool)
	if got := bag.Items()[0].Args; len(got) != 1 || got[0] != "Int" {
		t.Fatalf("args = %v, want [Int]", got)
	}
}

func TestAssignmentCompatibility(t *testing.T) {
	p := testkit.New("main.sbl")
	p.AddClass(testkit.Class{Name: "A"})
	p.AddClass(testkit.Class{Name: "B", Base: p.T("A")})
	p.AddClass(testkit.Class{Name: "Other"})
	p.Main(
		p.Local("up", p.T("A"), p.New(p.T("B"))),
		p.Local("down", p.T("B"), p.New(p.T("A"))),
		p.Local("i", p.T("Int"), p.Str("s")),
		p.Local("o", p.T("Other"), p.New(p.T("A"))),
		p.Local("l1", p.TList(p.T("Int"), 1), p.List(ast.NoTypeExprID, int1(p), p.Int("2"))),
		p.Local("l2", p.TList(p.T("Int"), 2), p.List(ast.NoTypeExprID, int1(p))),
		p.Local("l3", p.TList(p.T("Int"), 3), p.List(ast.NoTypeExprID, int1(p))),
	)
	_, _, bag := analyze(t, p)
	expectCodes(t, bag, diag.TypMismatchAssign, diag.TypMismatchAssign, diag.TypMismatchAssign)
	want := [][]string{{"Int", "String"}, {"Other", "A"}, {"[[[Int]]]", "[Int]"}}
	for i, d := range bag.Items() {
		if diff := deep.Equal(d.Args, want[i]); diff != nil {
			t.Fatalf("diagnostic %d: %v", i, diff)
		}
	}
}

func TestAssignmentTargets(t *testing.T) {
	p := testkit.New("main.sbl")
	p.Func(testkit.Fn{Name: "f", Ret: p.T("Int"), Body: []ast.StmtID{p.Return(int1(p))}})
	p.Main(
		p.Local("x", p.T("Int"), int1(p)),
		p.Assign(p.Name("x"), p.Int("2")),
		p.Assign(p.Name("x"), p.Str("no")),
		p.Assign(p.Call("f"), p.Int("3")),
	)
	_, _, bag := analyze(t, p)
	expectCodes(t, bag, diag.TypMismatchAssign, diag.TypNotAssignable)
}

func TestReturnChecks(t *testing.T) {
	p := testkit.New("main.sbl")
	branchOnly := p.Func(testkit.Fn{Name: "branchOnly", Ret: p.T("Int"), Body: []ast.StmtID{
		p.If(p.Bool(true), p.Block(p.Return(int1(p))), p.Block(p.Return(p.Int("2")))),
	}})
	p.Func(testkit.Fn{Name: "wrongType", Ret: p.T("Int"), Body: []ast.StmtID{p.Return(p.Str("s"))}})
	p.Func(testkit.Fn{Name: "voidValue", Body: []ast.StmtID{p.Return(int1(p))}})
	bare := p.Func(testkit.Fn{Name: "bare", Ret: p.T("Int"), Body: []ast.StmtID{p.Return(ast.NoExprID)}})
	nested := p.Func(testkit.Fn{Name: "nested", Ret: p.T("Int"), Body: []ast.StmtID{p.Block(p.Return(int1(p)))}})
	p.Main()

	_, typed, bag := analyze(t, p)
	expectCodes(t, bag,
		diag.TypMissingReturn,
		diag.TypMismatchReturn,
		diag.TypVoidReturnValue,
		diag.TypReturnValueMissing,
	)
	if typed.HasReturn[branchOnly] {
		t.Fatal("returns inside branches must not count")
	}
	if !typed.HasReturn[bare] || !typed.HasReturn[nested] {
		t.Fatal("direct returns must count")
	}
	if s := bag.Items()[0].Suggestion; s == nil || s.Code != diag.SugAddReturn {
		t.Fatalf("missing-return suggestion = %+v", s)
	}
}

func TestOverloadResolution(t *testing.T) {
	p := testkit.New("main.sbl")
	p.Func(testkit.Fn{Name: "f", Params: []ast.DeclID{p.Param("n", p.T("Int"), 0)}, Ret: p.T("Int"),
		Body: []ast.StmtID{p.Return(p.Name("n"))}})
	p.Func(testkit.Fn{Name: "f", Params: []ast.DeclID{p.Param("s", p.T("String"), 0)}, Ret: p.T("String"),
		Body: []ast.StmtID{p.Return(p.Name("s"))}})
	byInt := p.Call("f", int1(p))
	byStr := p.Call("f", p.Str("s"))
	p.Main(p.Do(byInt), p.Do(byStr), p.Do(p.Call("f", p.Bool(true))))

	_, typed, bag := analyze(t, p)
	expectCodes(t, bag, diag.TypNoMatchingOverload)
	expectLabel(t, typed, byInt, "Int")
	expectLabel(t, typed, byStr, "String")
	if diff := deep.Equal(
		[]symbols.Key{typed.CallSigs[byInt], typed.CallSigs[byStr]},
		[]symbols.Key{"f(i)", "f(s)"},
	); diff != nil {
		t.Fatal(diff)
	}
	if got := bag.Items()[0].Message; got != "no overload of 'f' accepts (Bool)" {
		t.Fatalf("message = %q", got)
	}
}

func TestOverloadRejectsSubclassArgument(t *testing.T) {
	p := testkit.New("main.sbl")
	p.AddClass(testkit.Class{Name: "A"})
	p.AddClass(testkit.Class{Name: "B", Base: p.T("A")})
	p.Func(testkit.Fn{Name: "g", Params: []ast.DeclID{p.Param("a", p.T("A"), 0)}})
	p.Func(testkit.Fn{Name: "g", Params: []ast.DeclID{p.Param("n", p.T("Int"), 0)}})
	call := p.Call("g", p.New(p.T("B")))
	exact := p.Call("g", p.New(p.T("A")))
	p.Main(p.Do(call), p.Do(exact))

	_, typed, bag := analyze(t, p)
	expectCodes(t, bag, diag.TypNoMatchingOverload)
	if got, ok := typed.CallSigs[call]; ok {
		t.Fatalf("subclass argument picked %s", got)
	}
	if got := typed.CallSigs[exact]; got != "g(C<A>)" {
		t.Fatalf("picked %s", got)
	}
}

func TestTemplateFunctions(t *testing.T) {
	p := testkit.New("main.sbl")
	tp := p.TParam("T", ast.ConstraintNone)
	p.Func(testkit.Fn{Name: "id", TypeParams: []ast.DeclID{tp},
		Params: []ast.DeclID{p.Param("x", p.T("T"), 0)}, Ret: p.T("T"),
		Body: []ast.StmtID{p.Return(p.Name("x"))}})
	dp := p.TParam("D", ast.ConstraintDiscrete)
	p.Func(testkit.Fn{Name: "disc", TypeParams: []ast.DeclID{dp},
		Params: []ast.DeclID{p.Param("v", p.T("D"), 0)}, Ret: p.T("D"),
		Body: []ast.StmtID{p.Return(p.Name("v"))}})

	inferInt := p.Call("id", int1(p))
	inferStr := p.Call("id", p.Str("s"))
	inferList := p.Call("id", p.List(ast.NoTypeExprID, p.Char("a")))
	explicit := p.CallT("id", []ast.TypeExprID{p.T("Real")}, p.Real("1.0"))
	p.Main(
		p.Do(inferInt), p.Do(inferStr), p.Do(inferList), p.Do(explicit),
		p.Do(p.Call("disc", p.Char("c"))),
		p.Do(p.Call("disc", p.Str("no"))),
		p.Do(p.CallT("id", []ast.TypeExprID{p.T("Int"), p.T("Int")}, int1(p))),
	)

	_, typed, bag := analyze(t, p)
	expectCodes(t, bag, diag.TypConstraint, diag.TypTemplateArgCount)
	expectLabel(t, typed, inferInt, "Int")
	expectLabel(t, typed, inferStr, "String")
	expectLabel(t, typed, inferList, "[Char]")
	expectLabel(t, typed, explicit, "Real")
	if diff := deep.Equal(bag.Items()[0].Args, []string{"D", "String", "discrete"}); diff != nil {
		t.Fatal(diff)
	}
}

func TestGenericClassMembers(t *testing.T) {
	p := testkit.New("main.sbl")
	tp := p.TParam("T", ast.ConstraintNone)
	get := p.Method(testkit.Fn{Name: "get", Ret: p.T("T"), Mods: ast.ModPublic,
		Body: []ast.StmtID{p.Return(p.Get(p.This(), "v"))}})
	p.AddClass(testkit.Class{
		Name:       "Box",
		TypeParams: []ast.DeclID{tp},
		Fields:     []ast.DeclID{p.Field("v", p.T("T"), ast.ModPublic)},
		Methods:    []ast.DeclID{get},
	})
	viaMethod := p.MCall(p.Name("b"), "get")
	viaField := p.Get(p.Name("b"), "v")
	p.Main(
		p.Local("b", p.T("Box", p.T("Int")), p.New(p.T("Box", p.T("Int")), p.Init("v", int1(p)))),
		p.Local("x", ast.NoTypeExprID, viaMethod),
		p.Local("y", p.T("Int"), viaField),
		p.Local("bad", p.T("Box", p.T("Int")), p.New(p.T("Box", p.T("Int")), p.Init("v", p.Str("s")))),
		p.Local("arity", p.T("Box", p.T("Int"), p.T("Int")), ast.NoExprID),
	)

	_, typed, bag := analyze(t, p)
	expectCodes(t, bag, diag.TypMismatchAssign, diag.TypTemplateArgCount)
	expectLabel(t, typed, viaMethod, "Int")
	expectLabel(t, typed, viaField, "Int")
	if typed.Targets[viaMethod] != get {
		t.Fatalf("method call targets %d, want %d", typed.Targets[viaMethod], get)
	}
}

func TestIndexing(t *testing.T) {
	p := testkit.New("main.sbl")
	row := p.Index(p.Name("grid"), int1(p))
	cell := p.Index(p.Name("grid"), int1(p), p.Int("2"))
	ch := p.Index(p.Name("s"), int1(p))
	second := p.Index(p.Name("pair"), int1(p))
	p.Main(
		p.Local("grid", p.TList(p.T("Int"), 2), ast.NoExprID),
		p.Local("s", p.T("String"), p.Str("abc")),
		p.Local("n", p.T("Int"), int1(p)),
		p.Local("pair", ast.NoTypeExprID, p.Tuple(int1(p), p.Str("x"))),
		p.Do(row), p.Do(cell), p.Do(ch), p.Do(second),
		p.Do(p.Index(p.Name("grid"), int1(p), int1(p), int1(p))),
		p.Do(p.Index(p.Name("grid"), p.Str("k"))),
		p.Do(p.Index(p.Name("n"), int1(p))),
	)

	_, typed, bag := analyze(t, p)
	expectCodes(t, bag, diag.TypTooManyIndices, diag.TypIndexNotInt, diag.TypNotIndexable)
	expectLabel(t, typed, row, "[Int]")
	expectLabel(t, typed, cell, "Int")
	expectLabel(t, typed, ch, "Char")
	expectLabel(t, typed, second, "String")
}

func TestMemberAccessThroughValues(t *testing.T) {
	p := testkit.New("main.sbl")
	p.AddClass(testkit.Class{Name: "P", Fields: []ast.DeclID{p.Field("x", p.T("Int"), ast.ModPublic)}})
	p.AddClass(testkit.Class{Name: "Q", Fields: []ast.DeclID{p.Field("x", p.T("Int"), ast.ModPublic)}})
	p.AddClass(testkit.Class{Name: "R", Fields: []ast.DeclID{p.Field("x", p.T("String"), ast.ModPublic)}})
	px := p.Get(p.Name("pv"), "x")
	ux := p.Get(p.Name("u"), "x")
	p.Main(
		p.Local("pv", p.T("P"), p.New(p.T("P"))),
		p.Local("n", p.T("Int"), int1(p)),
		p.Local("u", p.TUnion(p.T("P"), p.T("Q")), ast.NoExprID),
		p.Local("w", p.TUnion(p.T("P"), p.T("R")), ast.NoExprID),
		p.Do(px),
		p.Do(ux),
		p.Do(p.Get(p.Name("pv"), "y")),
		p.Do(p.Get(p.Name("n"), "x")),
		p.Do(p.Get(p.Name("w"), "x")),
		p.Do(p.MCall(p.Name("pv"), "nothing")),
	)

	_, typed, bag := analyze(t, p)
	expectCodes(t, bag, diag.ScpUndeclaredField, diag.TypNotClass, diag.TypMultiMember, diag.ScpUndeclaredMethod)
	expectLabel(t, typed, px, "Int")
	expectLabel(t, typed, ux, "Int")
}

func TestConstructorFields(t *testing.T) {
	p := testkit.New("main.sbl")
	p.AddClass(testkit.Class{Name: "Base", Fields: []ast.DeclID{p.Field("id", p.T("Int"), ast.ModPublic)}})
	p.AddClass(testkit.Class{Name: "P", Base: p.T("Base"), Fields: []ast.DeclID{p.Field("x", p.T("Int"), ast.ModPublic)}})
	ok := p.New(p.T("P"), p.Init("x", int1(p)), p.Init("id", p.Int("2")))
	p.Main(
		p.Do(ok),
		p.Do(p.New(p.T("P"), p.Init("x", int1(p)), p.Init("x", p.Int("2")))),
		p.Do(p.New(p.T("P"), p.Init("xx", int1(p)))),
		p.Do(p.New(p.T("P"), p.Init("x", p.Str("s")))),
	)

	_, typed, bag := analyze(t, p)
	expectCodes(t, bag, diag.TypDuplicateCtorField, diag.TypUnknownCtorField, diag.TypMismatchAssign)
	expectLabel(t, typed, ok, "P")
	if s := bag.Items()[1].Suggestion; s == nil || s.Args[0] != "x" {
		t.Fatalf("suggestion = %+v", s)
	}
}

func TestListLiterals(t *testing.T) {
	p := testkit.New("main.sbl")
	nested := p.List(ast.NoTypeExprID, p.List(ast.NoTypeExprID, int1(p)))
	p.Main(
		p.Local("empty", ast.NoTypeExprID, p.List(ast.NoTypeExprID)),
		p.Local("typed", p.TList(p.T("Int"), 1), p.List(ast.NoTypeExprID)),
		p.Local("annotated", ast.NoTypeExprID, p.List(p.T("Char"))),
		p.Local("mixed", ast.NoTypeExprID, p.List(ast.NoTypeExprID, int1(p), p.Str("s"))),
		p.Local("nested", ast.NoTypeExprID, nested),
	)
	_, typed, bag := analyze(t, p)
	expectCodes(t, bag, diag.TypEmptyListNoType, diag.TypListElem)
	expectLabel(t, typed, nested, "[[Int]]")
}

func TestCaseAndForChecks(t *testing.T) {
	p := testkit.New("main.sbl")
	p.Main(
		p.Local("k", p.T("Int"), int1(p)),
		p.Case(p.Name("k"), p.Block(), p.Arm(p.Block(), int1(p)), p.Arm(p.Block(), p.Str("two"))),
		p.For("i", int1(p), p.Int("10"), p.Block()),
		p.For("j", p.Str("a"), p.Int("10"), p.Block()),
	)
	_, _, bag := analyze(t, p)
	expectCodes(t, bag, diag.TypCaseValue, diag.TypForBound)
}

func TestImportedDeclarationsAreTyped(t *testing.T) {
	p := testkit.New("main.sbl")
	lib := p.Sub("lib.sbl")
	lib.Func(testkit.Fn{Name: "twice", Params: []ast.DeclID{lib.Param("n", lib.T("Int"), 0)}, Ret: lib.T("Int"),
		Body: []ast.StmtID{lib.Return(lib.Bin(ast.OpMul, lib.Name("n"), lib.Int("2")))}})
	p.Import(lib)
	call := p.Call("twice", int1(p))
	p.Main(p.Do(call))

	res, typed, bag := analyze(t, p)
	expectCodes(t, bag)
	expectLabel(t, typed, call, "Int")
	if diff := deep.Equal(res.UnitOrder, []ast.UnitID{lib.Unit, p.Unit}); diff != nil {
		t.Fatal(diff)
	}
}
