package symbols

import (
	"sable/internal/ast"
	"sable/internal/diag"
)

// walkBody walks the statements of a callable body directly in the
// callable's own scope.
func (r *Resolver) walkBody(ctx walkCtx, body ast.StmtID) {
	if block := r.b.Stmts.Block(body); block != nil {
		for _, s := range block.Stmts {
			r.walkStmt(ctx, s)
		}
		return
	}
	r.walkStmt(ctx, body)
}

// walkScoped walks a branch, loop or arm body in a scope of its own. Blocks
// open their scope themselves.
func (r *Resolver) walkScoped(ctx walkCtx, id ast.StmtID) {
	st := r.b.Stmts.Get(id)
	if st == nil {
		return
	}
	if st.Kind == ast.StmtBlock {
		r.walkStmt(ctx, id)
		return
	}
	scope := r.table.Open(ScopeBlock, ast.NoDeclID, st.Span)
	r.table.Scopes.Get(scope).Stmt = id
	r.result.ScopeOfStmt[id] = scope
	r.walkStmt(ctx, id)
	r.closeScope(scope)
}

func (r *Resolver) walkStmt(ctx walkCtx, id ast.StmtID) {
	st := r.b.Stmts.Get(id)
	if st == nil {
		return
	}
	switch st.Kind {
	case ast.StmtBlock:
		scope := r.table.Open(ScopeBlock, ast.NoDeclID, st.Span)
		r.table.Scopes.Get(scope).Stmt = id
		r.result.ScopeOfStmt[id] = scope
		for _, s := range r.b.Stmts.Block(id).Stmts {
			r.walkStmt(ctx, s)
		}
		r.closeScope(scope)
	case ast.StmtDecl:
		r.declareVar(ctx, r.b.Stmts.Decl(id).Decl)
	case ast.StmtExpr:
		r.resolveExpr(ctx, r.b.Stmts.Expr(id).Expr)
	case ast.StmtAssign:
		a := r.b.Stmts.Assign(id)
		r.resolveExpr(ctx, a.Target)
		r.resolveExpr(ctx, a.Value)
	case ast.StmtIf:
		s := r.b.Stmts.If(id)
		r.resolveExpr(ctx, s.Cond)
		r.walkScoped(ctx, s.Then)
		if s.Else.IsValid() {
			r.walkScoped(ctx, s.Else)
		}
	case ast.StmtWhile:
		s := r.b.Stmts.While(id)
		r.resolveExpr(ctx, s.Cond)
		r.walkScoped(ctx, s.Body)
	case ast.StmtFor:
		s := r.b.Stmts.For(id)
		r.resolveExpr(ctx, s.From)
		r.resolveExpr(ctx, s.To)
		scope := r.table.Open(ScopeLoop, ast.NoDeclID, st.Span)
		r.table.Scopes.Get(scope).Stmt = id
		r.result.ScopeOfStmt[id] = scope
		r.declareVar(ctx, s.Var)
		r.walkScoped(ctx, s.Body)
		r.closeScope(scope)
	case ast.StmtCase:
		s := r.b.Stmts.Case(id)
		r.resolveExpr(ctx, s.Subject)
		for _, arm := range s.Arms {
			for _, v := range arm.Values {
				r.resolveExpr(ctx, v)
			}
			r.walkScoped(ctx, arm.Body)
		}
		if s.Default.IsValid() {
			r.walkScoped(ctx, s.Default)
		}
	case ast.StmtReturn:
		if v := r.b.Stmts.Return(id).Value; v.IsValid() {
			r.resolveExpr(ctx, v)
		}
	}
}

func (r *Resolver) resolveExprs(ctx walkCtx, ids []ast.ExprID) {
	for _, id := range ids {
		r.resolveExpr(ctx, id)
	}
}

func (r *Resolver) resolveExpr(ctx walkCtx, id ast.ExprID) {
	e := r.b.Exprs.Get(id)
	if e == nil {
		return
	}
	switch e.Kind {
	case ast.ExprName:
		r.resolveName(ctx, id)
	case ast.ExprThis:
		if !ctx.class.IsValid() {
			r.report(diag.ScpThisOutsideClass, e.Span).Emit()
			return
		}
		r.result.Uses[id] = ctx.class
	case ast.ExprField:
		r.resolveExpr(ctx, r.b.Exprs.Field(id).Receiver)
		r.resolveField(ctx, id)
	case ast.ExprIndex:
		ix := r.b.Exprs.Index(id)
		r.resolveExpr(ctx, ix.Target)
		r.resolveExprs(ctx, ix.Indices)
	case ast.ExprCall:
		c := r.b.Exprs.Call(id)
		for _, ta := range c.TypeArgs {
			r.resolveTypeExpr(ctx, ta)
		}
		r.resolveExprs(ctx, c.Args)
		r.resolveCall(ctx, id)
	case ast.ExprMethodCall:
		mc := r.b.Exprs.MethodCall(id)
		r.resolveExpr(ctx, mc.Receiver)
		r.resolveExprs(ctx, mc.Args)
		r.resolveMethodCall(ctx, id)
	case ast.ExprBinary:
		bin := r.b.Exprs.Binary(id)
		r.resolveExpr(ctx, bin.Left)
		r.resolveExpr(ctx, bin.Right)
	case ast.ExprUnary:
		r.resolveExpr(ctx, r.b.Exprs.Unary(id).Operand)
	case ast.ExprCast:
		c := r.b.Exprs.Cast(id)
		r.resolveTypeExpr(ctx, c.Target)
		r.resolveExpr(ctx, c.Operand)
	case ast.ExprNew:
		n := r.b.Exprs.New(id)
		r.resolveClassRef(ctx, n.Class)
		for _, init := range n.Inits {
			r.resolveExpr(ctx, init.Value)
		}
	case ast.ExprList:
		l := r.b.Exprs.List(id)
		if l.Elem.IsValid() {
			r.resolveTypeExpr(ctx, l.Elem)
		}
		r.resolveExprs(ctx, l.Elems)
	case ast.ExprTuple:
		r.resolveExprs(ctx, r.b.Exprs.Tuple(id).Elems)
	}
}

func (r *Resolver) resolveName(ctx walkCtx, id ast.ExprID) {
	n := r.b.Exprs.Name(id)
	name := r.name(n.Name)
	if ctx.declaring != 0 && n.Name == ctx.declaring {
		r.report(diag.ScpSelfAssign, r.b.Exprs.Span(id), name).Emit()
		return
	}
	if d, ok := r.table.LookupChain(NameKey(name)); ok {
		r.result.Uses[id] = d
		return
	}
	r.unresolved(diag.ScpUnresolved, id, name, r.table.VisibleNames(r.table.Current()))
}

// unresolved reports code with a "did you mean" hint when a close name is
// in view.
func (r *Resolver) unresolved(code diag.Code, id ast.ExprID, name string, candidates []string, extra ...string) {
	b := r.report(code, r.b.Exprs.Span(id), append([]string{name}, extra...)...)
	if best, ok := diag.Closest(name, candidates, 2); ok {
		b.WithSuggestion(diag.SugDidYouMean, best)
	}
	b.Emit()
}

// resolveField binds field accesses whose receiver is known syntactically:
// this.f inside a class and Enum.Const. Other receivers depend on types.
func (r *Resolver) resolveField(ctx walkCtx, id ast.ExprID) {
	f := r.b.Exprs.Field(id)
	recv := r.b.Exprs.Get(f.Receiver)
	name := r.name(f.Name)
	switch {
	case recv.Kind == ast.ExprThis && ctx.class.IsValid():
		scope := r.result.ScopeOfDecl[ctx.class]
		if d, ok := r.table.Scopes.Get(scope).Lookup(NameKey(name)); ok && r.b.Decls.Get(d).Kind == ast.DeclField {
			r.result.Uses[id] = d
			return
		}
		r.unresolved(diag.ScpUndeclaredField, id, name, r.fieldNames(ctx.class), r.b.NameOf(ctx.class))
	case recv.Kind == ast.ExprName:
		enum, ok := r.result.Uses[f.Receiver]
		if !ok || r.b.Decls.Get(enum).Kind != ast.DeclEnum {
			return
		}
		data, _ := r.b.Decls.Enum(enum)
		names := make([]string, 0, len(data.Consts))
		for _, c := range data.Consts {
			if r.b.NameOf(c) == name {
				r.result.Uses[id] = c
				return
			}
			names = append(names, r.b.NameOf(c))
		}
		r.unresolved(diag.ScpUndeclaredField, id, name, names, r.b.NameOf(enum))
	}
}

func (r *Resolver) fieldNames(class ast.DeclID) []string {
	s := r.table.Scopes.Get(r.result.ScopeOfDecl[class])
	if s == nil {
		return nil
	}
	var out []string
	for _, key := range s.Keys {
		if r.b.Decls.Get(s.Entries[key]).Kind == ast.DeclField {
			out = append(out, key.Name())
		}
	}
	return out
}

// resolveCall checks that some function or method of that name is visible.
// The exact overload is picked during type checking.
func (r *Resolver) resolveCall(ctx walkCtx, id ast.ExprID) {
	c := r.b.Exprs.Call(id)
	name := r.name(c.Name)
	cands := r.result.CallCandidates(r.table.Current(), ctx.class, name)
	switch len(cands) {
	case 0:
		r.unresolved(diag.ScpUndeclaredFunc, id, name, r.table.VisibleNames(r.table.Current()))
	case 1:
		r.result.Uses[id] = cands[0]
	}
}

// resolveMethodCall handles calls on this; other receivers are left to the
// type checker.
func (r *Resolver) resolveMethodCall(ctx walkCtx, id ast.ExprID) {
	mc := r.b.Exprs.MethodCall(id)
	recv := r.b.Exprs.Get(mc.Receiver)
	if recv.Kind != ast.ExprThis || !ctx.class.IsValid() {
		return
	}
	name := r.name(mc.Name)
	cands := r.result.MethodCandidates(ctx.class, name)
	switch len(cands) {
	case 0:
		r.unresolved(diag.ScpUndeclaredMethod, id, name, nil, r.b.NameOf(ctx.class))
	case 1:
		r.result.Uses[id] = cands[0]
	}
}
