package sema

import (
	"testing"

	"github.com/go-test/deep"

	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/testkit"
)

func TestFinalAndTemplatedBases(t *testing.T) {
	p := testkit.New("main.sbl")
	p.AddClass(testkit.Class{Name: "B", Mods: ast.ModFinal})
	p.AddClass(testkit.Class{Name: "D", Base: p.T("B")})
	p.AddClass(testkit.Class{Name: "G", TypeParams: []ast.DeclID{p.TParam("T", ast.ConstraintNone)}})
	p.AddClass(testkit.Class{Name: "H", Base: p.T("G")})
	p.Main()

	_, _, bag := analyze(t, p)
	expectCodes(t, bag, diag.ModFinalBase, diag.ModTemplatedBase)
	if diff := deep.Equal(bag.Items()[0].Args, []string{"B", "D"}); diff != nil {
		t.Fatal(diff)
	}
}

func TestAbstractCompleteness(t *testing.T) {
	p := testkit.New("main.sbl")
	p.AddClass(testkit.Class{Name: "A", Mods: ast.ModAbstract, Methods: []ast.DeclID{
		p.Method(testkit.Fn{Name: "f", Bodiless: true, Mods: ast.ModPublic}),
		p.Method(testkit.Fn{Name: "g", Bodiless: true, Mods: ast.ModPublic}),
	}})
	p.AddClass(testkit.Class{Name: "Half", Base: p.T("A"), Mods: ast.ModAbstract, Methods: []ast.DeclID{
		p.Method(testkit.Fn{Name: "f", Mods: ast.ModPublic}),
	}})
	p.AddClass(testkit.Class{Name: "Full", Base: p.T("Half"), Methods: []ast.DeclID{
		p.Method(testkit.Fn{Name: "g", Mods: ast.ModPublic}),
	}})
	p.AddClass(testkit.Class{Name: "Partial", Base: p.T("A"), Methods: []ast.DeclID{
		p.Method(testkit.Fn{Name: "g", Mods: ast.ModPublic}),
	}})
	p.AddClass(testkit.Class{Name: "Empty", Base: p.T("A")})
	p.Main()

	_, _, bag := analyze(t, p)
	expectCodes(t, bag, diag.ModAbstractIncomplete, diag.ModAbstractIncomplete)
	if diff := deep.Equal(bag.Items()[0].Args, []string{"Partial", "f"}); diff != nil {
		t.Fatal(diff)
	}
	if diff := deep.Equal(bag.Items()[1].Args, []string{"Empty", "f, g"}); diff != nil {
		t.Fatal(diff)
	}
}

func TestBodilessMethodInConcreteClass(t *testing.T) {
	p := testkit.New("main.sbl")
	p.AddClass(testkit.Class{Name: "C", Methods: []ast.DeclID{p.Method(testkit.Fn{Name: "m", Bodiless: true})}})
	p.Main()
	_, _, bag := analyze(t, p)
	expectCodes(t, bag, diag.ModBodilessConcrete)
}

func TestFinalOverride(t *testing.T) {
	p := testkit.New("main.sbl")
	fin := p.Method(testkit.Fn{Name: "f", Mods: ast.ModFinal})
	open := p.Method(testkit.Fn{Name: "g"})
	p.AddClass(testkit.Class{Name: "A", Methods: []ast.DeclID{fin, open}})
	over := p.Method(testkit.Fn{Name: "f"})
	overOpen := p.Method(testkit.Fn{Name: "g"})
	p.AddClass(testkit.Class{Name: "B", Base: p.T("A"), Methods: []ast.DeclID{over, overOpen}})
	p.Main()

	_, typed, bag := analyze(t, p)
	expectCodes(t, bag, diag.ModFinalOverride)
	if diff := deep.Equal(bag.Items()[0].Args, []string{"f", "A"}); diff != nil {
		t.Fatal(diff)
	}
	if typed.Overrides[over] != fin || typed.Overrides[overOpen] != open {
		t.Fatalf("overrides = %v", typed.Overrides)
	}
}

func TestRecursionGating(t *testing.T) {
	build := func(mods ast.Modifiers) *testkit.Program {
		p := testkit.New("main.sbl")
		p.Func(testkit.Fn{Name: "f", Params: []ast.DeclID{p.Param("n", p.T("Int"), 0)}, Ret: p.T("Int"), Mods: mods,
			Body: []ast.StmtID{p.Return(p.Call("f", p.Name("n")))}})
		// same name, different signature: not a self call
		p.Func(testkit.Fn{Name: "f", Params: []ast.DeclID{p.Param("s", p.T("String"), 0)}, Ret: p.T("Int"),
			Body: []ast.StmtID{p.Return(p.Call("f", int1(p)))}})
		p.Main()
		return p
	}
	_, _, bag := analyze(t, build(0))
	expectCodes(t, bag, diag.ModRecursion)
	if s := bag.Items()[0].Suggestion; s == nil || s.Code != diag.SugAddRec {
		t.Fatalf("suggestion = %+v", s)
	}

	_, _, bag = analyze(t, build(ast.ModRec))
	expectCodes(t, bag)
}

func TestMethodRecursionThroughThis(t *testing.T) {
	p := testkit.New("main.sbl")
	m := p.Method(testkit.Fn{Name: "walk", Body: []ast.StmtID{p.Do(p.MCall(p.This(), "walk"))}})
	p.AddClass(testkit.Class{Name: "Node", Methods: []ast.DeclID{m}})
	p.Main()
	_, _, bag := analyze(t, p)
	expectCodes(t, bag, diag.ModRecursion)
}

func TestPrivateAccess(t *testing.T) {
	p := testkit.New("main.sbl")
	peer := p.Method(testkit.Fn{
		Name:   "peek",
		Params: []ast.DeclID{p.Param("o", p.T("P"), 0)},
		Ret:    p.T("Int"),
		Body:   []ast.StmtID{p.Return(p.Get(p.Name("o"), "secret"))},
	})
	hidden := p.Method(testkit.Fn{Name: "hidden"})
	p.AddClass(testkit.Class{
		Name: "P",
		Fields: []ast.DeclID{
			p.Field("secret", p.T("Int"), 0),
			p.Field("shown", p.T("Int"), ast.ModPublic),
		},
		Methods: []ast.DeclID{peer, hidden},
	})
	p.Main(
		p.Local("v", p.T("P"), p.New(p.T("P"))),
		p.Do(p.Get(p.Name("v"), "secret")),
		p.Do(p.Get(p.Name("v"), "shown")),
		p.Do(p.MCall(p.Name("v"), "hidden")),
	)
	_, _, bag := analyze(t, p)
	expectCodes(t, bag, diag.ModPrivateAccess, diag.ModPrivateAccess)
	if diff := deep.Equal(bag.Items()[0].Args, []string{"secret", "P"}); diff != nil {
		t.Fatal(diff)
	}
}

func TestConstAssignment(t *testing.T) {
	p := testkit.New("main.sbl")
	p.Global("limit", p.T("Int"), p.Int("10"), ast.ModConst)
	p.Global("counter", p.T("Int"), p.Int("0"), 0)
	p.Enum("Color", "Red", "Green")
	p.Main(
		p.Assign(p.Name("limit"), p.Int("11")),
		p.Assign(p.Name("counter"), p.Int("1")),
		p.Assign(p.Get(p.Name("Color"), "Red"), p.Get(p.Name("Color"), "Green")),
	)
	_, _, bag := analyze(t, p)
	expectCodes(t, bag, diag.ModConstAssign, diag.ModConstAssign)
}

func TestPuritySideEffects(t *testing.T) {
	p := testkit.New("main.sbl")
	p.Global("total", p.T("Int"), p.Int("0"), 0)
	p.Func(testkit.Fn{Name: "bump", Mods: ast.ModPure,
		Body: []ast.StmtID{p.Assign(p.Name("total"), p.Int("1"))}})
	p.Func(testkit.Fn{Name: "byRef", Mods: ast.ModPure,
		Params: []ast.DeclID{p.Param("xs", p.TList(p.T("Int"), 1), 0)},
		Body:   []ast.StmtID{p.Assign(p.Index(p.Name("xs"), p.Int("0")), p.Int("1"))}})
	p.Func(testkit.Fn{Name: "byCopy", Mods: ast.ModPure,
		Params: []ast.DeclID{p.Param("x", p.T("Int"), ast.ModIn)},
		Body:   []ast.StmtID{p.Assign(p.Name("x"), p.Int("2"))}})
	p.Func(testkit.Fn{Name: "impure",
		Body: []ast.StmtID{p.Assign(p.Name("total"), p.Int("3"))}})
	p.Main()

	_, _, bag := analyze(t, p)
	expectCodes(t, bag, diag.ModPureSideEffect, diag.ModPureSideEffect)
	if bag.HasErrors() {
		t.Fatal("purity findings must be warnings")
	}
	if s := bag.Items()[1].Suggestion; s == nil || s.Code != diag.SugMarkIn {
		t.Fatalf("suggestion = %+v", s)
	}
}

func TestAbstractInstantiation(t *testing.T) {
	p := testkit.New("main.sbl")
	p.AddClass(testkit.Class{Name: "A", Mods: ast.ModAbstract})
	p.Main(p.Do(p.New(p.T("A"))))
	_, _, bag := analyze(t, p)
	expectCodes(t, bag, diag.ModAbstractInstantiation)
}
