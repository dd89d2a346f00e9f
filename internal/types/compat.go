package types

import "sable/internal/ast"

// Equal reports whether two types have the same signature code and display
// name.
func (in *Interner) Equal(a, b TypeID) bool {
	if a == b {
		return true
	}
	ta, okA := in.Lookup(a)
	tb, okB := in.Lookup(b)
	if !okA || !okB || ta.Kind != tb.Kind {
		return false
	}
	return Signature(in, a) == Signature(in, b) && Label(in, a) == Label(in, b)
}

// Compatible reports whether a value of type r may be stored into a location
// of type l. An invalid type on either side is compatible with anything so
// that a failed lookup does not cascade.
func (in *Interner) Compatible(l, r TypeID) bool {
	return in.compatible(l, r, 0)
}

func (in *Interner) compatible(l, r TypeID, depth int) bool {
	if l == NoTypeID || r == NoTypeID || depth > 16 {
		return true
	}
	if in.Equal(l, r) {
		return true
	}
	tl, _ := in.Lookup(l)
	tr, _ := in.Lookup(r)
	switch {
	case tl.Kind == KindMulti:
		for _, c := range in.Elems(l) {
			if in.compatible(c, r, depth+1) {
				return true
			}
		}
		return false
	case tr.Kind == KindMulti:
		for _, c := range in.Elems(r) {
			if in.compatible(l, c, depth+1) {
				return true
			}
		}
		return false
	case tl.Kind == KindClass && tr.Kind == KindClass:
		return in.IsAncestor(l, r) || in.IsAncestor(r, l)
	case (tl.Kind == KindList || tl.Kind == KindArray) && tl.Kind == tr.Kind:
		diff := int(tl.Dims) - int(tr.Dims)
		if diff < -1 || diff > 1 {
			return false
		}
		return in.compatible(tl.Elem, tr.Elem, depth+1)
	case tl.Kind == KindTuple && tr.Kind == KindTuple:
		le, re := in.Elems(l), in.Elems(r)
		if len(le) != len(re) {
			return false
		}
		for i := range le {
			if !in.compatible(le[i], re[i], depth+1) {
				return false
			}
		}
		return true
	}
	return false
}

// Castable reports whether an explicit cast from one type to another is
// legal: identity, Int<->Real, Int<->Char and Enum->Int.
func (in *Interner) Castable(to, from TypeID) bool {
	if to == NoTypeID || from == NoTypeID || in.Equal(to, from) {
		return true
	}
	kt, kf := in.KindOf(to), in.KindOf(from)
	switch {
	case kt == KindReal && kf == KindInt, kt == KindInt && kf == KindReal:
		return true
	case kt == KindChar && kf == KindInt, kt == KindInt && kf == KindChar:
		return true
	case kt == KindInt && kf == KindEnum:
		return true
	}
	return false
}

// Satisfies reports whether t may be passed for a template parameter with
// constraint c.
func (in *Interner) Satisfies(c ast.Constraint, t TypeID) bool {
	if t == NoTypeID {
		return true
	}
	k := in.KindOf(t)
	if k == KindTemplateParam {
		info, _ := in.ParamInfo(t)
		return c == ast.ConstraintNone || info.Constraint == c
	}
	switch c {
	case ast.ConstraintDiscrete:
		return k.IsDiscrete()
	case ast.ConstraintScalar:
		return k.IsScalar()
	case ast.ConstraintClass:
		return k == KindClass
	default:
		return true
	}
}
