package sema

import (
	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/source"
	"sable/internal/symbols"
	"sable/internal/trace"
)

// ModifierChecker enforces visibility, finality, abstractness, recursion,
// constness and purity over a typed program. It only reads the tree and the
// earlier annotations; the one thing it writes is Result.Overrides.
type ModifierChecker struct {
	builder  *ast.Builder
	reporter diag.Reporter
	symbols  *symbols.Result
	typed    *Result
	tracer   trace.Tracer
	parent   uint64
}

type modCtx struct {
	class ast.DeclID
	fn    ast.DeclID
}

func NewModifierChecker(builder *ast.Builder, typed *Result, opts Options) *ModifierChecker {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	if typed == nil {
		typed = newResult(opts.Types)
	}
	return &ModifierChecker{
		builder:  builder,
		reporter: reporter,
		symbols:  opts.Symbols,
		typed:    typed,
		tracer:   tracer,
		parent:   opts.TraceParent,
	}
}

// CheckUnit checks class headers first and then every body of the unit.
func (mc *ModifierChecker) CheckUnit(unit ast.UnitID) {
	u := mc.builder.Units.Get(unit)
	if u == nil || mc.symbols == nil {
		return
	}
	span := trace.Begin(mc.tracer, trace.ScopeModule, "modifiers_unit", mc.parent)
	defer span.End("")
	for _, id := range u.TopLevel() {
		mc.CheckDecl(unit, id)
	}
	for _, st := range u.Stmts {
		mc.CheckStmt(unit, st)
	}
}

// CheckDecl checks one top-level declaration.
func (mc *ModifierChecker) CheckDecl(_ ast.UnitID, id ast.DeclID) {
	decl := mc.builder.Decls.Get(id)
	if decl == nil {
		return
	}
	ctx := modCtx{}
	switch decl.Kind {
	case ast.DeclGlobal:
		mc.walkExpr(ctx, decl.Init)
	case ast.DeclClass:
		mc.checkClass(id)
		data, _ := mc.builder.Decls.Class(id)
		ctx.class = id
		for _, f := range data.Fields {
			mc.walkExpr(ctx, mc.builder.Decls.Get(f).Init)
		}
		for _, m := range data.Methods {
			mc.walkCallable(ctx, m)
		}
	case ast.DeclFunction:
		mc.walkCallable(ctx, id)
	}
}

// CheckStmt checks one top-level statement.
func (mc *ModifierChecker) CheckStmt(_ ast.UnitID, id ast.StmtID) {
	mc.walkStmt(modCtx{}, id)
}

func (mc *ModifierChecker) report(code diag.Code, span source.Span, args ...string) *diag.ReportBuilder {
	return diag.ReportError(mc.reporter, code, span, args...)
}

func (mc *ModifierChecker) walkCallable(ctx modCtx, id ast.DeclID) {
	fn, ok := mc.builder.Decls.Fn(id)
	if !ok {
		return
	}
	ctx.fn = id
	for _, p := range fn.Params {
		mc.walkExpr(ctx, mc.builder.Decls.Get(p).Init)
	}
	mc.walkStmt(ctx, fn.Body)
}

func (mc *ModifierChecker) walkStmt(ctx modCtx, id ast.StmtID) {
	st := mc.builder.Stmts.Get(id)
	if st == nil {
		return
	}
	s := mc.builder.Stmts
	switch st.Kind {
	case ast.StmtBlock:
		for _, c := range s.Block(id).Stmts {
			mc.walkStmt(ctx, c)
		}
	case ast.StmtDecl:
		mc.walkExpr(ctx, mc.builder.Decls.Get(s.Decl(id).Decl).Init)
	case ast.StmtExpr:
		mc.walkExpr(ctx, s.Expr(id).Expr)
	case ast.StmtAssign:
		a := s.Assign(id)
		mc.checkAssign(ctx, a.Target, st.Span)
		mc.walkExpr(ctx, a.Target)
		mc.walkExpr(ctx, a.Value)
	case ast.StmtIf:
		n := s.If(id)
		mc.walkExpr(ctx, n.Cond)
		mc.walkStmt(ctx, n.Then)
		mc.walkStmt(ctx, n.Else)
	case ast.StmtWhile:
		n := s.While(id)
		mc.walkExpr(ctx, n.Cond)
		mc.walkStmt(ctx, n.Body)
	case ast.StmtFor:
		n := s.For(id)
		mc.walkExpr(ctx, n.From)
		mc.walkExpr(ctx, n.To)
		mc.walkStmt(ctx, n.Body)
	case ast.StmtCase:
		n := s.Case(id)
		mc.walkExpr(ctx, n.Subject)
		for _, arm := range n.Arms {
			mc.walkExprs(ctx, arm.Values)
			mc.walkStmt(ctx, arm.Body)
		}
		mc.walkStmt(ctx, n.Default)
	case ast.StmtReturn:
		mc.walkExpr(ctx, s.Return(id).Value)
	}
}

func (mc *ModifierChecker) walkExprs(ctx modCtx, ids []ast.ExprID) {
	for _, id := range ids {
		mc.walkExpr(ctx, id)
	}
}

func (mc *ModifierChecker) walkExpr(ctx modCtx, id ast.ExprID) {
	e := mc.builder.Exprs.Get(id)
	if e == nil {
		return
	}
	x := mc.builder.Exprs
	switch e.Kind {
	case ast.ExprField:
		f := x.Field(id)
		mc.walkExpr(ctx, f.Receiver)
		mc.checkAccess(ctx, f.Receiver, mc.target(id), e.Span)
	case ast.ExprIndex:
		ix := x.Index(id)
		mc.walkExpr(ctx, ix.Target)
		mc.walkExprs(ctx, ix.Indices)
	case ast.ExprCall:
		mc.walkExprs(ctx, x.Call(id).Args)
		mc.checkRecursion(ctx, mc.target(id), e.Span)
	case ast.ExprMethodCall:
		m := x.MethodCall(id)
		mc.walkExpr(ctx, m.Receiver)
		mc.walkExprs(ctx, m.Args)
		d := mc.target(id)
		mc.checkAccess(ctx, m.Receiver, d, e.Span)
		mc.checkRecursion(ctx, d, e.Span)
	case ast.ExprBinary:
		b := x.Binary(id)
		mc.walkExpr(ctx, b.Left)
		mc.walkExpr(ctx, b.Right)
	case ast.ExprUnary:
		mc.walkExpr(ctx, x.Unary(id).Operand)
	case ast.ExprCast:
		mc.walkExpr(ctx, x.Cast(id).Operand)
	case ast.ExprNew:
		n := x.New(id)
		mc.checkInstantiation(n.Class, e.Span)
		for _, init := range n.Inits {
			mc.walkExpr(ctx, init.Value)
		}
	case ast.ExprList:
		mc.walkExprs(ctx, x.List(id).Elems)
	case ast.ExprTuple:
		mc.walkExprs(ctx, x.Tuple(id).Elems)
	}
}

// target is the declaration an expression reaches: the overload or member
// chosen by the type checker, else the resolver's binding.
func (mc *ModifierChecker) target(id ast.ExprID) ast.DeclID {
	if d, ok := mc.typed.Targets[id]; ok {
		return d
	}
	return mc.symbols.Uses[id]
}

// checkAccess rejects reaching a non-public field or method through an
// explicit receiver from outside the class that declares it.
func (mc *ModifierChecker) checkAccess(ctx modCtx, recv ast.ExprID, member ast.DeclID, span source.Span) {
	decl := mc.builder.Decls.Get(member)
	if decl == nil || (decl.Kind != ast.DeclField && decl.Kind != ast.DeclMethod) {
		return
	}
	if r := mc.builder.Exprs.Get(recv); r != nil && r.Kind == ast.ExprThis {
		return
	}
	if decl.Owner == ctx.class || decl.Mods.Has(ast.ModPublic) {
		return
	}
	name := mc.builder.NameOf(member)
	mc.report(diag.ModPrivateAccess, span, name, mc.builder.NameOf(decl.Owner)).
		WithSuggestion(diag.SugMakePublic, name).
		WithNote(decl.Span, "declared here").
		Emit()
}

func (mc *ModifierChecker) checkRecursion(ctx modCtx, callee ast.DeclID, span source.Span) {
	if !ctx.fn.IsValid() || callee != ctx.fn {
		return
	}
	decl := mc.builder.Decls.Get(callee)
	if decl.Mods.Has(ast.ModRec) {
		return
	}
	name := mc.builder.NameOf(callee)
	mc.report(diag.ModRecursion, span, name).
		WithSuggestion(diag.SugAddRec, name).
		Emit()
}

func (mc *ModifierChecker) checkInstantiation(class ast.TypeExprID, span source.Span) {
	d, ok := mc.symbols.TypeRefs[class]
	if !ok {
		return
	}
	decl := mc.builder.Decls.Get(d)
	if decl.Kind == ast.DeclClass && decl.Mods.Has(ast.ModAbstract) {
		mc.report(diag.ModAbstractInstantiation, span, mc.builder.NameOf(d)).Emit()
	}
}

// checkAssign rejects writes to constants and warns about writes that leave
// a pure callable.
func (mc *ModifierChecker) checkAssign(ctx modCtx, target ast.ExprID, span source.Span) {
	if d := mc.assignedDecl(target); d.IsValid() {
		decl := mc.builder.Decls.Get(d)
		if decl.Kind == ast.DeclEnumConst || (decl.Kind == ast.DeclGlobal && decl.Mods.Has(ast.ModConst)) {
			mc.report(diag.ModConstAssign, span, mc.builder.NameOf(d)).
				WithNote(decl.Span, "declared here").
				Emit()
			return
		}
	}
	if !ctx.fn.IsValid() || !mc.builder.Decls.Get(ctx.fn).Mods.Has(ast.ModPure) {
		return
	}
	root := mc.rootDecl(target)
	decl := mc.builder.Decls.Get(root)
	if decl == nil {
		return
	}
	fn := mc.builder.NameOf(ctx.fn)
	name := mc.builder.NameOf(root)
	switch {
	case decl.Kind == ast.DeclParam && !decl.Mods.Has(ast.ModIn):
		diag.ReportWarning(mc.reporter, diag.ModPureSideEffect, span, fn, name).
			WithSuggestion(diag.SugMarkIn, name).
			Emit()
	case decl.Kind == ast.DeclGlobal:
		diag.ReportWarning(mc.reporter, diag.ModPureSideEffect, span, fn, name).Emit()
	}
}

// assignedDecl is the variable written by a name or field target.
func (mc *ModifierChecker) assignedDecl(target ast.ExprID) ast.DeclID {
	e := mc.builder.Exprs.Get(target)
	if e == nil || (e.Kind != ast.ExprName && e.Kind != ast.ExprField) {
		return ast.NoDeclID
	}
	return mc.target(target)
}

// rootDecl follows field receivers and index targets down to the variable
// the written location belongs to.
func (mc *ModifierChecker) rootDecl(target ast.ExprID) ast.DeclID {
	for {
		e := mc.builder.Exprs.Get(target)
		if e == nil {
			return ast.NoDeclID
		}
		switch e.Kind {
		case ast.ExprName:
			return mc.symbols.Uses[target]
		case ast.ExprField:
			if d := mc.target(target); d.IsValid() && mc.builder.Decls.Get(d).Kind == ast.DeclEnumConst {
				return d
			}
			target = mc.builder.Exprs.Field(target).Receiver
		case ast.ExprIndex:
			target = mc.builder.Exprs.Index(target).Target
		default:
			return ast.NoDeclID
		}
	}
}
