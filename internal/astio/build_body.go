package astio

import (
	"sable/internal/ast"
	"sable/internal/source"
)

// block builds a body; owner is the span of the enclosing declaration.
func (ub *unitBuild) block(owner Span, stmts []*Stmt) ast.StmtID {
	ids := make([]ast.StmtID, len(stmts))
	for i, st := range stmts {
		ids[i] = ub.stmt(st)
	}
	return ub.l.B.Stmts.NewBlock(ub.span(owner), ids)
}

func (ub *unitBuild) stmt(st *Stmt) ast.StmtID {
	if st == nil {
		return ast.NoStmtID
	}
	b := ub.l.B
	sp := ub.span(st.Span)
	switch st.Kind {
	case "block":
		return ub.block(st.Span, st.Stmts)
	case "local":
		if st.Decl == nil {
			ub.fail("local", st.Span, "missing declaration")
		}
		return b.Stmts.NewDecl(sp, ub.variable(ast.DeclLocal, st.Decl))
	case "expr":
		return b.Stmts.NewExpr(sp, ub.need("expression statement", st.Span, st.Expr))
	case "assign":
		return b.Stmts.NewAssign(sp, ub.need("assignment target", st.Span, st.Target), ub.need("assigned value", st.Span, st.Value))
	case "if":
		if st.Then == nil {
			ub.fail("if", st.Span, "missing then branch")
		}
		return b.Stmts.NewIf(sp, ub.need("condition", st.Span, st.Cond), ub.stmt(st.Then), ub.stmt(st.Else))
	case "while":
		return b.Stmts.NewWhile(sp, ub.need("condition", st.Span, st.Cond), ub.needStmt("while", st.Span, st.Body))
	case "for":
		if st.Var == "" {
			ub.fail("for", st.Span, "missing loop variable")
		}
		v := b.Decls.NewVar(ast.DeclLocal, sp, ub.name(st.Var), b.Types.NewNamed(sp, ub.name("Int"), nil), ast.NoExprID, 0)
		return b.Stmts.NewFor(sp, v, ub.need("range start", st.Span, st.From), ub.need("range end", st.Span, st.To), ub.needStmt("for", st.Span, st.Body))
	case "case":
		arms := make([]ast.CaseArm, len(st.Arms))
		for i, arm := range st.Arms {
			values := make([]ast.ExprID, len(arm.Values))
			for j, v := range arm.Values {
				values[j] = ub.need("case value", arm.Span, v)
			}
			arms[i] = ast.CaseArm{Values: values, Body: ub.needStmt("case arm", arm.Span, arm.Body), Span: ub.span(arm.Span)}
		}
		return b.Stmts.NewCase(sp, ub.need("case subject", st.Span, st.Subject), arms, ub.stmt(st.Default))
	case "return":
		return b.Stmts.NewReturn(sp, ub.expr(st.Value))
	}
	ub.fail("statement", st.Span, "unknown statement kind %q", st.Kind)
	return ast.NoStmtID
}

func (ub *unitBuild) needStmt(what string, sp Span, st *Stmt) ast.StmtID {
	if st == nil {
		ub.fail(what, sp, "missing body")
	}
	return ub.stmt(st)
}

func (ub *unitBuild) need(what string, sp Span, e *Expr) ast.ExprID {
	if e == nil {
		ub.fail(what, sp, "missing expression")
	}
	return ub.expr(e)
}

var litKinds = map[string]ast.LitKind{
	"int":    ast.LitInt,
	"char":   ast.LitChar,
	"bool":   ast.LitBool,
	"string": ast.LitString,
	"text":   ast.LitText,
	"real":   ast.LitReal,
}

func (ub *unitBuild) expr(e *Expr) ast.ExprID {
	if e == nil {
		return ast.NoExprID
	}
	exprs := ub.l.B.Exprs
	sp := ub.span(e.Span)
	switch e.Kind {
	case "lit":
		kind, ok := litKinds[e.Lit]
		if !ok {
			ub.fail("literal", e.Span, "unknown literal kind %q", e.Lit)
		}
		return exprs.NewLiteral(sp, kind, e.Value)
	case "name":
		return exprs.NewName(sp, ub.ident("name", e))
	case "this":
		return exprs.NewThis(sp)
	case "field":
		return exprs.NewField(sp, ub.need("field receiver", e.Span, e.Recv), ub.ident("field", e))
	case "index":
		if len(e.Args) == 0 {
			ub.fail("index", e.Span, "missing indices")
		}
		return exprs.NewIndex(sp, ub.need("indexed value", e.Span, e.Target), ub.exprs(e.Args))
	case "call":
		return exprs.NewCall(sp, ub.ident("call", e), ub.typs(e.TypeArgs), ub.exprs(e.Args))
	case "mcall":
		return exprs.NewMethodCall(sp, ub.need("method receiver", e.Span, e.Recv), ub.ident("method call", e), ub.exprs(e.Args))
	case "binary":
		op, ok := ast.ParseBinaryOp(e.Op)
		if !ok {
			ub.fail("binary", e.Span, "unknown operator %q", e.Op)
		}
		return exprs.NewBinary(sp, op, ub.need("left operand", e.Span, e.Left), ub.need("right operand", e.Span, e.Right))
	case "unary":
		op, ok := ast.ParseUnaryOp(e.Op)
		if !ok {
			ub.fail("unary", e.Span, "unknown operator %q", e.Op)
		}
		return exprs.NewUnary(sp, op, ub.need("operand", e.Span, e.Operand))
	case "cast":
		if e.Type == nil {
			ub.fail("cast", e.Span, "missing target type")
		}
		return exprs.NewCast(sp, ub.typ(e.Type), ub.need("cast operand", e.Span, e.Operand))
	case "new":
		if e.Type == nil {
			ub.fail("new", e.Span, "missing class")
		}
		inits := make([]ast.FieldInit, len(e.Inits))
		for i, in := range e.Inits {
			inits[i] = ast.FieldInit{Name: ub.name(in.Field), Value: ub.need("field "+in.Field, in.Span, in.Value), Span: ub.span(in.Span)}
		}
		return exprs.NewNew(sp, ub.typ(e.Type), inits)
	case "list":
		return exprs.NewList(sp, ub.typ(e.Type), ub.exprs(e.Elems))
	case "tuple":
		return exprs.NewTuple(sp, ub.exprs(e.Elems))
	}
	ub.fail("expression", e.Span, "unknown expression kind %q", e.Kind)
	return ast.NoExprID
}

func (ub *unitBuild) ident(what string, e *Expr) source.StringID {
	if e.Name == "" {
		ub.fail(what, e.Span, "missing name")
	}
	return ub.name(e.Name)
}

func (ub *unitBuild) exprs(es []*Expr) []ast.ExprID {
	if len(es) == 0 {
		return nil
	}
	out := make([]ast.ExprID, len(es))
	for i, e := range es {
		out[i] = ub.need("element", Span{}, e)
	}
	return out
}
