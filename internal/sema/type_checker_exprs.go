package sema

import (
	"strconv"

	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/source"
	"sable/internal/symbols"
	"sable/internal/types"
)

// checkExpr computes and records the type of an expression. expected is a
// hint used by literals whose type cannot be read off their elements.
func (tc *TypeChecker) checkExpr(ctx checkCtx, id ast.ExprID, expected types.TypeID) types.TypeID {
	if !id.IsValid() {
		return types.NoTypeID
	}
	t := tc.exprType(ctx, id, expected)
	tc.result.ExprTypes[id] = t
	return t
}

func (tc *TypeChecker) exprTypes(ctx checkCtx, ids []ast.ExprID) []types.TypeID {
	out := make([]types.TypeID, len(ids))
	for i, id := range ids {
		out[i] = tc.checkExpr(ctx, id, types.NoTypeID)
	}
	return out
}

func (tc *TypeChecker) exprType(ctx checkCtx, id ast.ExprID, expected types.TypeID) types.TypeID {
	e := tc.builder.Exprs.Get(id)
	if e == nil {
		return types.NoTypeID
	}
	b := tc.types.Builtins()
	switch e.Kind {
	case ast.ExprLit:
		switch tc.builder.Exprs.Literal(id).Kind {
		case ast.LitInt:
			return b.Int
		case ast.LitChar:
			return b.Char
		case ast.LitBool:
			return b.Bool
		case ast.LitString:
			return b.String
		case ast.LitText:
			return b.Text
		case ast.LitReal:
			return b.Real
		}
		return types.NoTypeID
	case ast.ExprName:
		return tc.nameType(id)
	case ast.ExprThis:
		if !ctx.class.IsValid() {
			return types.NoTypeID
		}
		return tc.nominal(ctx.class)
	case ast.ExprField:
		return tc.checkField(ctx, id)
	case ast.ExprIndex:
		return tc.checkIndex(ctx, id)
	case ast.ExprCall:
		return tc.checkCall(ctx, id)
	case ast.ExprMethodCall:
		return tc.checkMethodCall(ctx, id)
	case ast.ExprBinary:
		return tc.checkBinary(ctx, id)
	case ast.ExprUnary:
		u := tc.builder.Exprs.Unary(id)
		operand := tc.checkExpr(ctx, u.Operand, types.NoTypeID)
		if operand == types.NoTypeID {
			return types.NoTypeID
		}
		t, ok := tc.types.UnaryType(u.Op, operand)
		if !ok {
			tc.errorf(diag.TypBadOperand, e.Span, u.Op.String(), tc.label(operand))
		}
		return t
	case ast.ExprCast:
		c := tc.builder.Exprs.Cast(id)
		to := tc.typeOf(c.Target)
		from := tc.checkExpr(ctx, c.Operand, types.NoTypeID)
		if !tc.types.Castable(to, from) {
			tc.errorf(diag.TypInvalidCast, e.Span, tc.label(to), tc.label(from))
		}
		return to
	case ast.ExprNew:
		return tc.checkNew(ctx, id)
	case ast.ExprList:
		return tc.checkList(ctx, id, expected)
	case ast.ExprTuple:
		return tc.types.MakeTuple(tc.exprTypes(ctx, tc.builder.Exprs.Tuple(id).Elems))
	}
	return types.NoTypeID
}

func (tc *TypeChecker) nameType(id ast.ExprID) types.TypeID {
	d, ok := tc.symbols.Uses[id]
	if !ok {
		return types.NoTypeID
	}
	decl := tc.builder.Decls.Get(d)
	switch {
	case decl.Kind.IsVariable():
		return tc.declType(d)
	case decl.Kind == ast.DeclClass, decl.Kind == ast.DeclEnum:
		return tc.nominal(d)
	}
	return types.NoTypeID
}

func (tc *TypeChecker) checkBinary(ctx checkCtx, id ast.ExprID) types.TypeID {
	bin := tc.builder.Exprs.Binary(id)
	l := tc.checkExpr(ctx, bin.Left, types.NoTypeID)
	r := tc.checkExpr(ctx, bin.Right, l)
	if l == types.NoTypeID || r == types.NoTypeID {
		return types.NoTypeID
	}
	t, ok := tc.types.BinaryType(bin.Op, l, r)
	if !ok {
		b := tc.report(diag.TypBadOperands, tc.builder.Exprs.Span(id), bin.Op.String(), tc.label(l), tc.label(r))
		if tc.types.Castable(l, r) && tc.types.FamilyOf(l)&types.FamilyNumeric != 0 {
			b.WithSuggestion(diag.SugUseCast, tc.label(l))
		}
		b.Emit()
	}
	return t
}

// checkField types a field access. this.f and Enum.Const were bound by the
// resolver; any other receiver is looked up through its type.
func (tc *TypeChecker) checkField(ctx checkCtx, id ast.ExprID) types.TypeID {
	f := tc.builder.Exprs.Field(id)
	recv := tc.checkExpr(ctx, f.Receiver, types.NoTypeID)
	if d, ok := tc.symbols.Uses[id]; ok {
		tc.result.Targets[id] = d
		if tc.builder.Decls.Get(d).Kind == ast.DeclEnumConst {
			return tc.declType(d)
		}
		return tc.memberType(d, recv)
	}
	if r, ok := tc.symbols.Uses[f.Receiver]; ok && tc.builder.Decls.Get(r).Kind == ast.DeclEnum {
		// unknown constant; reported by the resolver
		return types.NoTypeID
	}
	if recv == types.NoTypeID || tc.builder.Exprs.Get(f.Receiver).Kind == ast.ExprThis {
		return types.NoTypeID
	}
	name := tc.name(f.Name)
	span := tc.builder.Exprs.Span(id)
	switch tc.types.KindOf(recv) {
	case types.KindClass:
		d, t, ok := tc.lookupField(recv, name)
		if !ok {
			tc.undeclaredField(recv, name, span)
			return types.NoTypeID
		}
		tc.result.Targets[id] = d
		return t
	case types.KindMulti:
		var (
			common types.TypeID
			first  ast.DeclID
		)
		for i, c := range tc.types.Elems(recv) {
			d, t, ok := tc.lookupField(c, name)
			if !ok || (i > 0 && !tc.types.Equal(common, t)) {
				tc.errorf(diag.TypMultiMember, span, name, tc.label(recv))
				return types.NoTypeID
			}
			if i == 0 {
				common, first = t, d
			}
		}
		tc.result.Targets[id] = first
		return common
	}
	tc.errorf(diag.TypNotClass, span, tc.label(recv))
	return types.NoTypeID
}

// lookupField finds a field of a class type without reporting.
func (tc *TypeChecker) lookupField(recv types.TypeID, name string) (ast.DeclID, types.TypeID, bool) {
	cls := tc.types.ClassDecl(recv)
	if !cls.IsValid() {
		return ast.NoDeclID, types.NoTypeID, false
	}
	d, ok := tc.symbols.Member(cls, name)
	if !ok || tc.builder.Decls.Get(d).Kind != ast.DeclField {
		return ast.NoDeclID, types.NoTypeID, false
	}
	return d, tc.memberType(d, recv), true
}

func (tc *TypeChecker) undeclaredField(recv types.TypeID, name string, span source.Span) {
	b := tc.report(diag.ScpUndeclaredField, span, name, tc.label(recv))
	if best, ok := diag.Closest(name, tc.fieldNames(tc.types.ClassDecl(recv)), 2); ok {
		b.WithSuggestion(diag.SugDidYouMean, best)
	}
	b.Emit()
}

func (tc *TypeChecker) fieldNames(class ast.DeclID) []string {
	s := tc.table.Scopes.Get(tc.symbols.ScopeOfDecl[class])
	if s == nil {
		return nil
	}
	var out []string
	for _, key := range s.Keys {
		if tc.builder.Decls.Get(s.Entries[key]).Kind == ast.DeclField {
			out = append(out, key.Name())
		}
	}
	return out
}

// checkIndex types an index expression. Every index must be Int; indexing
// a list or array with fewer indices than dimensions yields a list or array
// of the remaining dimensions.
func (tc *TypeChecker) checkIndex(ctx checkCtx, id ast.ExprID) types.TypeID {
	ix := tc.builder.Exprs.Index(id)
	target := tc.checkExpr(ctx, ix.Target, types.NoTypeID)
	for _, i := range ix.Indices {
		t := tc.checkExpr(ctx, i, tc.types.Builtins().Int)
		if t != types.NoTypeID && tc.types.KindOf(t) != types.KindInt {
			tc.errorf(diag.TypIndexNotInt, tc.builder.Exprs.Span(i), tc.label(t))
		}
	}
	if target == types.NoTypeID {
		return types.NoTypeID
	}
	span := tc.builder.Exprs.Span(id)
	n := len(ix.Indices)
	tt := tc.types.MustLookup(target)
	switch tt.Kind {
	case types.KindList, types.KindArray:
		if n > int(tt.Dims) {
			tc.errorf(diag.TypTooManyIndices, span, tc.label(target), strconv.Itoa(int(tt.Dims)))
			return types.NoTypeID
		}
		if n == int(tt.Dims) {
			return tt.Elem
		}
		tt.Dims -= uint8(n)
		return tc.types.Intern(tt)
	case types.KindTuple:
		elems := tc.types.Elems(target)
		if n > 1 {
			tc.errorf(diag.TypTooManyIndices, span, tc.label(target), "1")
			return types.NoTypeID
		}
		if i, ok := tc.constIndex(ix.Indices[0]); ok && i < len(elems) {
			return elems[i]
		}
		return tc.types.MakeMulti(elems)
	case types.KindString, types.KindText:
		if n > 1 {
			tc.errorf(diag.TypTooManyIndices, span, tc.label(target), "1")
			return types.NoTypeID
		}
		return tc.types.Builtins().Char
	}
	tc.errorf(diag.TypNotIndexable, span, tc.label(target))
	return types.NoTypeID
}

// constIndex reads an Int literal index.
func (tc *TypeChecker) constIndex(id ast.ExprID) (int, bool) {
	lit := tc.builder.Exprs.Literal(id)
	if lit == nil || lit.Kind != ast.LitInt {
		return 0, false
	}
	i, err := strconv.Atoi(lit.Value)
	return i, err == nil && i >= 0
}

// checkNew types a constructor expression: every initialised field must
// exist in the class (or a base) and be initialised once.
func (tc *TypeChecker) checkNew(ctx checkCtx, id ast.ExprID) types.TypeID {
	n := tc.builder.Exprs.New(id)
	t := tc.typeOf(n.Class)
	cls := tc.types.ClassDecl(t)
	seen := make(map[source.StringID]struct{}, len(n.Inits))
	for _, init := range n.Inits {
		name := tc.name(init.Name)
		if _, dup := seen[init.Name]; dup {
			tc.errorf(diag.TypDuplicateCtorField, init.Span, name)
		}
		seen[init.Name] = struct{}{}
		if !cls.IsValid() {
			tc.checkExpr(ctx, init.Value, types.NoTypeID)
			continue
		}
		field, ft, ok := tc.lookupField(t, name)
		value := tc.checkExpr(ctx, init.Value, ft)
		if !ok {
			b := tc.report(diag.TypUnknownCtorField, init.Span, name, tc.label(t))
			if best, ok := diag.Closest(name, tc.fieldNames(cls), 2); ok {
				b.WithSuggestion(diag.SugDidYouMean, best)
			}
			b.Emit()
			continue
		}
		if !tc.types.Compatible(ft, value) {
			tc.report(diag.TypMismatchAssign, tc.builder.Exprs.Span(init.Value), tc.label(ft), tc.label(value)).
				WithNote(tc.builder.Decls.Get(field).Span, "field declared here").
				Emit()
		}
	}
	if !cls.IsValid() {
		return types.NoTypeID
	}
	return t
}

// checkList types a list literal. The element type comes from the explicit
// annotation, then from the first element; an empty literal without either
// takes the expected type.
func (tc *TypeChecker) checkList(ctx checkCtx, id ast.ExprID, expected types.TypeID) types.TypeID {
	l := tc.builder.Exprs.List(id)
	elem := types.NoTypeID
	if l.Elem.IsValid() {
		elem = tc.typeOf(l.Elem)
	}
	if len(l.Elems) == 0 {
		switch {
		case elem != types.NoTypeID:
			return tc.listOf(types.KindList, elem, 1)
		case tc.types.KindOf(expected) == types.KindList:
			return expected
		case l.Elem.IsValid():
			// unresolved element type
			return types.NoTypeID
		}
		tc.errorf(diag.TypEmptyListNoType, tc.builder.Exprs.Span(id))
		return types.NoTypeID
	}
	hint := elem
	if hint == types.NoTypeID {
		if et, ok := tc.types.Lookup(expected); ok && et.Kind == types.KindList {
			hint = et.Elem
			if et.Dims > 1 {
				hint = tc.types.Intern(types.MakeList(et.Elem, et.Dims-1))
			}
		}
	}
	for _, e := range l.Elems {
		t := tc.checkExpr(ctx, e, hint)
		switch {
		case elem == types.NoTypeID:
			elem = t
		case !tc.types.Compatible(elem, t):
			tc.errorf(diag.TypListElem, tc.builder.Exprs.Span(e), tc.label(elem), tc.label(t))
		}
	}
	return tc.listOf(types.KindList, elem, 1)
}

// callTarget records the callable chosen for a call expression.
func (tc *TypeChecker) callTarget(id ast.ExprID, decl ast.DeclID) {
	tc.result.Targets[id] = decl
	if key, ok := tc.symbols.Keys[decl]; ok {
		tc.result.CallSigs[id] = key
	} else {
		tc.result.CallSigs[id] = symbols.Key(tc.builder.NameOf(decl))
	}
}
