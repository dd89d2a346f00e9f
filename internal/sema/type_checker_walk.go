package sema

import (
	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/trace"
	"sable/internal/types"
)

func (tc *TypeChecker) checkEnum(id ast.DeclID) {
	tc.nominal(id)
	data, ok := tc.builder.Decls.Enum(id)
	if !ok {
		return
	}
	for _, c := range data.Consts {
		tc.declType(c)
	}
}

// checkVarDecl checks the initializer of a variable against its declared
// type. Without a declared type the variable takes the initializer's type.
func (tc *TypeChecker) checkVarDecl(ctx checkCtx, id ast.DeclID) {
	decl := tc.builder.Decls.Get(id)
	if decl == nil {
		return
	}
	declared := types.NoTypeID
	if decl.Type.IsValid() {
		declared = tc.typeOf(decl.Type)
	}
	if decl.Init.IsValid() {
		value := tc.checkExpr(ctx, decl.Init, declared)
		switch {
		case !decl.Type.IsValid():
			declared = value
		case !tc.types.Compatible(declared, value):
			tc.report(diag.TypMismatchAssign, tc.builder.Exprs.Span(decl.Init), tc.label(declared), tc.label(value)).
				WithNote(decl.Span, "declared here").
				Emit()
		}
	}
	if decl.Type.IsValid() || decl.Init.IsValid() {
		tc.result.DeclTypes[id] = declared
	}
}

func (tc *TypeChecker) checkClass(ctx checkCtx, id ast.DeclID) {
	data, ok := tc.builder.Decls.Class(id)
	if !ok {
		return
	}
	tc.nominal(id)
	span := trace.Begin(tc.tracer, trace.ScopeNode, "typecheck_class", tc.unitSpan).
		WithExtra("class", tc.builder.NameOf(id))
	defer span.End("")

	pushed := tc.pushScope(tc.symbols.ScopeOfDecl[id])
	defer tc.popScope(pushed)
	ctx.class = id
	ctx.fn = ast.NoDeclID
	for _, f := range data.Fields {
		tc.checkVarDecl(ctx, f)
	}
	for _, m := range data.Methods {
		tc.declType(m)
	}
	for _, m := range data.Methods {
		tc.checkCallable(ctx, m)
	}
}

// checkCallable checks parameters and the body of a function or method and
// records whether the body returns on every path at its top level.
func (tc *TypeChecker) checkCallable(ctx checkCtx, id ast.DeclID) {
	decl := tc.builder.Decls.Get(id)
	fn, ok := tc.builder.Decls.Fn(id)
	if !ok {
		return
	}
	pushed := tc.pushScope(tc.symbols.ScopeOfDecl[id])
	defer tc.popScope(pushed)
	ctx.fn = id

	for _, tp := range fn.TypeParams {
		tc.nominal(tp)
	}
	for _, p := range fn.Params {
		tc.checkVarDecl(ctx, p)
	}
	ret := tc.declType(id)
	if !fn.Body.IsValid() {
		return
	}
	returns := false
	for _, s := range tc.bodyStmts(fn.Body) {
		tc.checkStmt(ctx, s)
		if tc.returnStatus(s) == returnClosed {
			returns = true
		}
	}
	tc.result.HasReturn[id] = returns
	if !returns && ret != types.NoTypeID && tc.types.KindOf(ret) != types.KindVoid {
		name := tc.name(decl.Name)
		tc.report(diag.TypMissingReturn, decl.Span, name, tc.label(ret)).
			WithSuggestion(diag.SugAddReturn, name).
			Emit()
	}
}

// bodyStmts returns the statements of a callable body. They share the
// callable's scope.
func (tc *TypeChecker) bodyStmts(body ast.StmtID) []ast.StmtID {
	if block := tc.builder.Stmts.Block(body); block != nil {
		return block.Stmts
	}
	return []ast.StmtID{body}
}

// checkScoped walks a branch, loop or arm body inside the scope the
// resolver opened for it.
func (tc *TypeChecker) checkScoped(ctx checkCtx, id ast.StmtID) {
	st := tc.builder.Stmts.Get(id)
	if st == nil {
		return
	}
	if st.Kind == ast.StmtBlock {
		tc.checkStmt(ctx, id)
		return
	}
	pushed := tc.pushScope(tc.symbols.ScopeOfStmt[id])
	tc.checkStmt(ctx, id)
	tc.popScope(pushed)
}

func (tc *TypeChecker) checkStmt(ctx checkCtx, id ast.StmtID) {
	st := tc.builder.Stmts.Get(id)
	if st == nil {
		return
	}
	switch st.Kind {
	case ast.StmtBlock:
		pushed := tc.pushScope(tc.symbols.ScopeOfStmt[id])
		for _, s := range tc.builder.Stmts.Block(id).Stmts {
			tc.checkStmt(ctx, s)
		}
		tc.popScope(pushed)
	case ast.StmtDecl:
		tc.checkVarDecl(ctx, tc.builder.Stmts.Decl(id).Decl)
	case ast.StmtExpr:
		tc.checkExpr(ctx, tc.builder.Stmts.Expr(id).Expr, types.NoTypeID)
	case ast.StmtAssign:
		tc.checkAssign(ctx, id)
	case ast.StmtIf:
		s := tc.builder.Stmts.If(id)
		tc.checkCondition(ctx, s.Cond)
		tc.checkScoped(ctx, s.Then)
		if s.Else.IsValid() {
			tc.checkScoped(ctx, s.Else)
		}
	case ast.StmtWhile:
		s := tc.builder.Stmts.While(id)
		tc.checkCondition(ctx, s.Cond)
		tc.checkScoped(ctx, s.Body)
	case ast.StmtFor:
		tc.checkFor(ctx, id)
	case ast.StmtCase:
		tc.checkCase(ctx, id)
	case ast.StmtReturn:
		tc.checkReturn(ctx, id)
	}
}

func (tc *TypeChecker) checkCondition(ctx checkCtx, cond ast.ExprID) {
	t := tc.checkExpr(ctx, cond, tc.types.Builtins().Bool)
	if t != types.NoTypeID && tc.types.KindOf(t) != types.KindBool {
		tc.errorf(diag.TypConditionNotBool, tc.builder.Exprs.Span(cond), tc.label(t))
	}
}

func (tc *TypeChecker) checkFor(ctx checkCtx, id ast.StmtID) {
	s := tc.builder.Stmts.For(id)
	for _, bound := range []ast.ExprID{s.From, s.To} {
		t := tc.checkExpr(ctx, bound, tc.types.Builtins().Int)
		if t != types.NoTypeID && tc.types.KindOf(t) != types.KindInt {
			tc.errorf(diag.TypForBound, tc.builder.Exprs.Span(bound), tc.label(t))
		}
	}
	pushed := tc.pushScope(tc.symbols.ScopeOfStmt[id])
	defer tc.popScope(pushed)
	tc.checkVarDecl(ctx, s.Var)
	if _, typed := tc.result.DeclTypes[s.Var]; !typed {
		tc.result.DeclTypes[s.Var] = tc.types.Builtins().Int
	}
	tc.checkScoped(ctx, s.Body)
}

func (tc *TypeChecker) checkCase(ctx checkCtx, id ast.StmtID) {
	s := tc.builder.Stmts.Case(id)
	subject := tc.checkExpr(ctx, s.Subject, types.NoTypeID)
	for _, arm := range s.Arms {
		for _, v := range arm.Values {
			vt := tc.checkExpr(ctx, v, subject)
			if !tc.types.Compatible(subject, vt) {
				tc.errorf(diag.TypCaseValue, tc.builder.Exprs.Span(v), tc.label(subject), tc.label(vt))
			}
		}
		tc.checkScoped(ctx, arm.Body)
	}
	if s.Default.IsValid() {
		tc.checkScoped(ctx, s.Default)
	}
}

func (tc *TypeChecker) checkReturn(ctx checkCtx, id ast.StmtID) {
	value := tc.builder.Stmts.Return(id).Value
	if !ctx.fn.IsValid() {
		if value.IsValid() {
			tc.checkExpr(ctx, value, types.NoTypeID)
		}
		return
	}
	ret := tc.declType(ctx.fn)
	name := tc.builder.NameOf(ctx.fn)
	span := tc.builder.Stmts.Get(id).Span
	isVoid := tc.types.KindOf(ret) == types.KindVoid
	if !value.IsValid() {
		if ret != types.NoTypeID && !isVoid {
			tc.errorf(diag.TypReturnValueMissing, span, name, tc.label(ret))
		}
		return
	}
	vt := tc.checkExpr(ctx, value, ret)
	switch {
	case isVoid:
		tc.errorf(diag.TypVoidReturnValue, tc.builder.Exprs.Span(value), name)
	case !tc.types.Compatible(ret, vt):
		tc.errorf(diag.TypMismatchReturn, tc.builder.Exprs.Span(value), tc.label(ret), tc.label(vt))
	}
}

// checkAssign requires an addressable target and a value compatible with
// the target's type.
func (tc *TypeChecker) checkAssign(ctx checkCtx, id ast.StmtID) {
	a := tc.builder.Stmts.Assign(id)
	target := tc.checkExpr(ctx, a.Target, types.NoTypeID)
	value := tc.checkExpr(ctx, a.Value, target)
	if !tc.assignable(a.Target) {
		tc.errorf(diag.TypNotAssignable, tc.builder.Exprs.Span(a.Target))
		return
	}
	if !tc.types.Compatible(target, value) {
		tc.errorf(diag.TypMismatchAssign, tc.builder.Exprs.Span(a.Value), tc.label(target), tc.label(value))
	}
}

func (tc *TypeChecker) assignable(id ast.ExprID) bool {
	e := tc.builder.Exprs.Get(id)
	if e == nil {
		return false
	}
	switch e.Kind {
	case ast.ExprName, ast.ExprField:
		d, ok := tc.symbols.Uses[id]
		if !ok {
			d, ok = tc.result.Targets[id]
		}
		if !ok {
			// unresolved; already reported
			return true
		}
		return tc.builder.Decls.Get(d).Kind.IsVariable()
	case ast.ExprIndex:
		return true
	}
	return false
}
