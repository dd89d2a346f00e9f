package sema

import (
	"strconv"
	"strings"

	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/source"
	"sable/internal/types"
)

// overload is a callable chosen for a call together with the binding of its
// template parameters.
type overload struct {
	decl    ast.DeclID
	params  []types.TypeID // template parameters of decl
	binding []types.TypeID // their arguments, explicit or inferred
}

type pickFailure uint8

const (
	pickNoMatch pickFailure = iota
	pickArgCount
)

func (tc *TypeChecker) checkCall(ctx checkCtx, id ast.ExprID) types.TypeID {
	c := tc.builder.Exprs.Call(id)
	args := tc.exprTypes(ctx, c.Args)
	targs := tc.typesOf(c.TypeArgs)
	name := tc.name(c.Name)

	var cands []ast.DeclID
	if d, ok := tc.symbols.Uses[id]; ok {
		cands = []ast.DeclID{d}
	} else {
		cands = tc.symbols.CallCandidates(tc.currentScope(), ctx.class, name)
	}
	if len(cands) == 0 {
		return types.NoTypeID
	}
	recv := types.NoTypeID
	if ctx.class.IsValid() {
		recv = tc.nominal(ctx.class)
	}
	ov, ok := tc.resolveOverload(name, cands, args, targs, recv, tc.builder.Exprs.Span(id), len(c.TypeArgs))
	if !ok {
		return types.NoTypeID
	}
	tc.callTarget(id, ov.decl)
	return tc.returnType(ov, recv)
}

// checkMethodCall types recv.m(args). Calls on this were narrowed by the
// resolver; other receivers are looked up through their class type.
func (tc *TypeChecker) checkMethodCall(ctx checkCtx, id ast.ExprID) types.TypeID {
	mc := tc.builder.Exprs.MethodCall(id)
	recv := tc.checkExpr(ctx, mc.Receiver, types.NoTypeID)
	args := tc.exprTypes(ctx, mc.Args)
	name := tc.name(mc.Name)
	span := tc.builder.Exprs.Span(id)

	if tc.builder.Exprs.Get(mc.Receiver).Kind == ast.ExprThis {
		if !ctx.class.IsValid() {
			return types.NoTypeID
		}
		cands := tc.symbols.MethodCandidates(ctx.class, name)
		if d, ok := tc.symbols.Uses[id]; ok {
			cands = []ast.DeclID{d}
		}
		if len(cands) == 0 {
			return types.NoTypeID
		}
		ov, ok := tc.resolveOverload(name, cands, args, nil, recv, span, 0)
		if !ok {
			return types.NoTypeID
		}
		tc.callTarget(id, ov.decl)
		return tc.returnType(ov, recv)
	}

	switch tc.types.KindOf(recv) {
	case types.KindInvalid:
		return types.NoTypeID
	case types.KindClass:
		cands := tc.symbols.MethodCandidates(tc.types.ClassDecl(recv), name)
		if len(cands) == 0 {
			tc.errorf(diag.ScpUndeclaredMethod, span, name, tc.label(recv))
			return types.NoTypeID
		}
		ov, ok := tc.resolveOverload(name, cands, args, nil, recv, span, 0)
		if !ok {
			return types.NoTypeID
		}
		tc.callTarget(id, ov.decl)
		return tc.returnType(ov, recv)
	case types.KindMulti:
		return tc.checkMultiCall(id, recv, name, args, span)
	}
	tc.errorf(diag.TypNotClass, span, tc.label(recv))
	return types.NoTypeID
}

// checkMultiCall requires every candidate of a union receiver to provide a
// matching method with the same return type.
func (tc *TypeChecker) checkMultiCall(id ast.ExprID, recv types.TypeID, name string, args []types.TypeID, span source.Span) types.TypeID {
	var (
		common types.TypeID
		first  ast.DeclID
	)
	for i, c := range tc.types.Elems(recv) {
		cls := tc.types.ClassDecl(c)
		if !cls.IsValid() {
			tc.errorf(diag.TypMultiMember, span, name, tc.label(recv))
			return types.NoTypeID
		}
		ov, _, ok := tc.pickOverload(tc.symbols.MethodCandidates(cls, name), args, nil, c)
		if !ok {
			tc.errorf(diag.TypMultiMember, span, name, tc.label(recv))
			return types.NoTypeID
		}
		t := tc.returnType(ov, c)
		if i > 0 && !tc.types.Equal(common, t) {
			tc.errorf(diag.TypMultiMember, span, name, tc.label(recv))
			return types.NoTypeID
		}
		if i == 0 {
			common, first = t, ov.decl
		}
	}
	tc.callTarget(id, first)
	return common
}

// resolveOverload picks a callable from cands and reports when none fits.
func (tc *TypeChecker) resolveOverload(name string, cands []ast.DeclID, args, targs []types.TypeID, recv types.TypeID, span source.Span, explicit int) (overload, bool) {
	ov, failure, ok := tc.pickOverload(cands, args, targs, recv)
	if !ok {
		if failure == pickArgCount && len(cands) == 1 {
			want := len(tc.builder.Decls.TypeParamsOf(cands[0]))
			tc.errorf(diag.TypTemplateArgCount, span, name, strconv.Itoa(want), strconv.Itoa(explicit))
			return overload{}, false
		}
		labels := make([]string, len(args))
		for i, a := range args {
			labels[i] = tc.label(a)
		}
		tc.errorf(diag.TypNoMatchingOverload, span, name, strings.Join(labels, ", "))
		return overload{}, false
	}
	fn, _ := tc.builder.Decls.Fn(ov.decl)
	for i, tp := range fn.TypeParams {
		if i < len(ov.binding) {
			tc.checkConstraint(tp, ov.binding[i], span)
		}
	}
	return ov, true
}

// pickOverload accepts only a candidate whose parameter types equal the
// argument types. A subclass argument does not select a base-class overload.
// Arguments of unknown type match any parameter.
func (tc *TypeChecker) pickOverload(cands []ast.DeclID, args, targs []types.TypeID, recv types.TypeID) (overload, pickFailure, bool) {
	failure := pickNoMatch
	for _, cand := range cands {
		fn, ok := tc.builder.Decls.Fn(cand)
		if !ok || len(fn.Params) != len(args) {
			continue
		}
		ov := overload{decl: cand, params: make([]types.TypeID, len(fn.TypeParams))}
		for i, tp := range fn.TypeParams {
			ov.params[i] = tc.nominal(tp)
		}
		raw := make([]types.TypeID, len(fn.Params))
		for i, p := range fn.Params {
			raw[i] = tc.throughReceiver(tc.declType(p), cand, recv)
		}
		switch {
		case len(targs) > 0:
			if len(targs) != len(ov.params) {
				failure = pickArgCount
				continue
			}
			ov.binding = targs
		case len(ov.params) > 0:
			ov.binding = tc.infer(ov.params, raw, args)
		}
		if tc.exactArgs(raw, args, ov) {
			return ov, 0, true
		}
	}
	return overload{}, failure, false
}

func (tc *TypeChecker) exactArgs(raw, args []types.TypeID, ov overload) bool {
	for i, p := range raw {
		if args[i] == types.NoTypeID {
			continue
		}
		if !tc.types.Equal(tc.types.Substitute(p, ov.params, ov.binding), args[i]) {
			return false
		}
	}
	return true
}

// infer binds template parameters by matching parameter types against
// argument types. Unbound parameters stay NoTypeID.
func (tc *TypeChecker) infer(params, formal, actual []types.TypeID) []types.TypeID {
	binding := make([]types.TypeID, len(params))
	for i := range formal {
		tc.unify(params, binding, formal[i], actual[i], 0)
	}
	return binding
}

func (tc *TypeChecker) unify(params, binding []types.TypeID, formal, actual types.TypeID, depth int) {
	if depth > 8 || actual == types.NoTypeID {
		return
	}
	for i, p := range params {
		if p == formal {
			if binding[i] == types.NoTypeID {
				binding[i] = actual
			}
			return
		}
	}
	ft, ok1 := tc.types.Lookup(formal)
	at, ok2 := tc.types.Lookup(actual)
	if !ok1 || !ok2 || ft.Kind != at.Kind {
		return
	}
	switch ft.Kind {
	case types.KindList, types.KindArray:
		switch {
		case ft.Dims == at.Dims:
			tc.unify(params, binding, ft.Elem, at.Elem, depth+1)
		case ft.Dims < at.Dims:
			at.Dims -= ft.Dims
			tc.unify(params, binding, ft.Elem, tc.types.Intern(at), depth+1)
		}
	case types.KindTuple:
		fe, ae := tc.types.Elems(formal), tc.types.Elems(actual)
		if len(fe) == len(ae) {
			for i := range fe {
				tc.unify(params, binding, fe[i], ae[i], depth+1)
			}
		}
	case types.KindClass:
		fi, _ := tc.types.ClassInfo(formal)
		ai, _ := tc.types.ClassInfo(actual)
		if fi.Generic != types.NoTypeID && fi.Generic == ai.Generic && len(fi.Args) == len(ai.Args) {
			for i := range fi.Args {
				tc.unify(params, binding, fi.Args[i], ai.Args[i], depth+1)
			}
		}
	}
}

// returnType is the declared return type of the chosen overload with its
// template binding and the receiver's class arguments applied.
func (tc *TypeChecker) returnType(ov overload, recv types.TypeID) types.TypeID {
	t := tc.declType(ov.decl)
	t = tc.types.Substitute(t, ov.params, ov.binding)
	if recv != types.NoTypeID && tc.builder.Decls.Get(ov.decl).Kind == ast.DeclMethod {
		t = tc.throughReceiver(t, ov.decl, recv)
	}
	return t
}
