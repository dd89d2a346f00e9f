package types

import (
	"testing"

	"sable/internal/ast"
)

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Void == NoTypeID || b.Bool == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	if got := in.KindOf(b.Real); got != KindReal {
		t.Fatalf("expected real kind, got %v", got)
	}
	if id, ok := in.Builtin("Char"); !ok || id != b.Char {
		t.Fatalf("Builtin(Char) = %v, %v", id, ok)
	}
}

func TestInternerDeduplicatesStructural(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if in.Intern(MakeList(b.Int, 2)) != in.Intern(MakeList(b.Int, 2)) {
		t.Fatalf("list types should be deduplicated")
	}
	if in.Intern(MakeList(b.Int, 1)) == in.Intern(MakeArray(b.Int, 1)) {
		t.Fatalf("list and array must differ")
	}
	if in.MakeTuple([]TypeID{b.Int, b.Char}) != in.MakeTuple([]TypeID{b.Int, b.Char}) {
		t.Fatalf("tuples should be deduplicated")
	}
	if in.MakeMulti([]TypeID{b.Int, b.Int}) != b.Int {
		t.Fatalf("single-candidate multi should collapse")
	}
}

func TestNominalClassesAreDistinct(t *testing.T) {
	in := NewInterner()
	a := in.RegisterClass("A", 1)
	b := in.RegisterClass("B", 2)
	if a == b {
		t.Fatalf("classes must get distinct ids")
	}
	if Label(in, a) != "A" || Signature(in, a) != "C<A>" {
		t.Fatalf("unexpected label/signature %q %q", Label(in, a), Signature(in, a))
	}
}

func TestSignatureCodes(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	cases := []struct {
		id   TypeID
		want string
	}{
		{b.Int, "i"},
		{b.Char, "c"},
		{b.Bool, "b"},
		{b.String, "s"},
		{b.Text, "t"},
		{b.Real, "r"},
		{b.Void, "v"},
		{in.Intern(MakeList(b.Int, 2)), "L2<i>"},
		{in.Intern(MakeArray(b.Real, 1)), "A1<r>"},
		{in.MakeTuple([]TypeID{b.Int, b.Char}), "T<i,c>"},
		{in.MakeMulti([]TypeID{b.Int, b.String}), "M<i|s>"},
		{in.RegisterEnum("Color", 3), "e<Color>"},
		{in.RegisterParam("T", 4, ast.ConstraintNone), "P<T>"},
	}
	for _, tc := range cases {
		if got := Signature(in, tc.id); got != tc.want {
			t.Errorf("Signature(%s) = %q, want %q", Label(in, tc.id), got, tc.want)
		}
	}
}

func TestCompatibleIsReflexive(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	cls := in.RegisterClass("A", 1)
	all := []TypeID{
		b.Void, b.Int, b.Char, b.Bool, b.String, b.Text, b.Real, cls,
		in.Intern(MakeList(b.Int, 1)),
		in.Intern(MakeArray(cls, 3)),
		in.MakeTuple([]TypeID{b.Int, cls}),
		in.MakeMulti([]TypeID{b.Int, b.Real}),
		in.RegisterEnum("E", 2),
		in.RegisterParam("T", 3, ast.ConstraintScalar),
	}
	for _, id := range all {
		if !in.Compatible(id, id) {
			t.Errorf("Compatible(%s, %s) = false", Label(in, id), Label(in, id))
		}
	}
}

func TestCompatibleClassChain(t *testing.T) {
	in := NewInterner()
	a := in.RegisterClass("A", 1)
	b := in.RegisterClass("B", 2)
	c := in.RegisterClass("C", 3)
	other := in.RegisterClass("Other", 4)
	in.SetClassBase(b, a)
	in.SetClassBase(c, b)

	if !in.Compatible(a, b) || !in.Compatible(b, c) {
		t.Fatalf("direct ancestors must be compatible")
	}
	// transitivity along the chain
	if !in.Compatible(a, c) || !in.Compatible(c, a) {
		t.Fatalf("transitive ancestors must be compatible")
	}
	if in.Compatible(a, other) {
		t.Fatalf("unrelated classes must not be compatible")
	}
	if got := in.Ancestors(c); len(got) != 2 || got[0] != b || got[1] != a {
		t.Fatalf("Ancestors(C) = %v", got)
	}
}

func TestAncestorsNoPrefixConfusion(t *testing.T) {
	in := NewInterner()
	shape := in.RegisterClass("Shape", 1)
	shapes := in.RegisterClass("Shapes", 2)
	sq := in.RegisterClass("Square", 3)
	in.SetClassBase(sq, shapes)
	if in.IsAncestor(shape, sq) {
		t.Fatalf("Shape must not be an ancestor of Square")
	}
}

func TestCompatibleListDims(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	l1 := in.Intern(MakeList(b.Int, 1))
	l2 := in.Intern(MakeList(b.Int, 2))
	l3 := in.Intern(MakeList(b.Int, 3))
	if !in.Compatible(l1, l2) {
		t.Fatalf("dims within one level must be compatible")
	}
	if in.Compatible(l1, l3) {
		t.Fatalf("dims two apart must not be compatible")
	}
	if in.Compatible(l1, in.Intern(MakeList(b.Char, 1))) {
		t.Fatalf("element mismatch must not be compatible")
	}
	if in.Compatible(l1, in.Intern(MakeArray(b.Int, 1))) {
		t.Fatalf("list and array must not be compatible")
	}
}

func TestCompatibleMulti(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	m := in.MakeMulti([]TypeID{b.Int, b.String})
	if !in.Compatible(m, b.Int) || !in.Compatible(m, b.String) {
		t.Fatalf("multi must accept its candidates")
	}
	if in.Compatible(m, b.Real) {
		t.Fatalf("multi must reject non-candidates")
	}
}

func TestCastable(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	e := in.RegisterEnum("E", 1)
	cases := []struct {
		to, from TypeID
		want     bool
	}{
		{b.Real, b.Int, true},
		{b.Int, b.Real, true},
		{b.Char, b.Int, true},
		{b.Int, b.Char, true},
		{b.Int, e, true},
		{e, b.Int, false},
		{b.String, b.Int, false},
		{b.Bool, b.Int, false},
		{b.Real, b.Real, true},
	}
	for _, tc := range cases {
		if got := in.Castable(tc.to, tc.from); got != tc.want {
			t.Errorf("Castable(%s <- %s) = %v, want %v", Label(in, tc.to), Label(in, tc.from), got, tc.want)
		}
	}
}

func TestSatisfies(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	cls := in.RegisterClass("A", 1)
	if !in.Satisfies(ast.ConstraintDiscrete, b.Char) || in.Satisfies(ast.ConstraintDiscrete, b.Real) {
		t.Fatalf("discrete constraint")
	}
	if !in.Satisfies(ast.ConstraintScalar, b.Text) || in.Satisfies(ast.ConstraintScalar, b.Int) {
		t.Fatalf("scalar constraint")
	}
	if !in.Satisfies(ast.ConstraintClass, cls) || in.Satisfies(ast.ConstraintClass, b.Int) {
		t.Fatalf("class constraint")
	}
}

func TestInstantiateSubstitutesBase(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	base := in.RegisterClass("Base", 1)
	tp := in.RegisterParam("T", 2, ast.ConstraintNone)
	in.SetClassParams(base, []TypeID{tp})
	box := in.RegisterClass("Box", 3)
	bp := in.RegisterParam("U", 4, ast.ConstraintNone)
	in.SetClassParams(box, []TypeID{bp})
	in.SetClassBase(box, in.Instantiate(base, []TypeID{bp}))

	boxInt := in.Instantiate(box, []TypeID{b.Int})
	if boxInt != in.Instantiate(box, []TypeID{b.Int}) {
		t.Fatalf("instances must be deduplicated")
	}
	if got := Label(in, in.BaseOf(boxInt)); got != "Base<Int>" {
		t.Fatalf("BaseOf(Box<Int>) = %s", got)
	}
	if got := Label(in, in.Substitute(in.Intern(MakeList(bp, 1)), []TypeID{bp}, []TypeID{b.Real})); got != "[Real]" {
		t.Fatalf("substituted list = %s", got)
	}
}
