package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"sable/internal/ast"
	"sable/internal/sema"
	"sable/internal/source"
	"sable/internal/types"
)

type treeNode struct {
	label    string
	children []*treeNode
}

func (n *treeNode) add(children ...*treeNode) {
	for _, c := range children {
		if c != nil {
			n.children = append(n.children, c)
		}
	}
}

// TreeDump carries what Tree prints. Sema is optional; with it every
// declaration and expression is labelled with its type.
type TreeDump struct {
	Builder *ast.Builder
	Sema    *sema.Result
	Files   *source.FileSet
	Mode    PathMode
}

// Tree prints the declarations and top-level statements of unit as an
// indented tree.
func Tree(w io.Writer, unit ast.UnitID, d TreeDump) error {
	u := d.Builder.Units.Get(unit)
	if u == nil {
		return fmt.Errorf("unit %d not found", unit)
	}
	root := &treeNode{label: "unit " + formatPath(d.Files, u.File, d.Mode)}
	for _, id := range u.TopLevel() {
		root.add(d.decl(id))
	}
	for _, id := range u.Stmts {
		root.add(d.stmt(id))
	}
	fmt.Fprintln(w, root.label)
	for i, c := range root.children {
		writeTree(w, c, "", i == len(root.children)-1)
	}
	return nil
}

func writeTree(w io.Writer, n *treeNode, prefix string, last bool) {
	branch, next := "├─ ", "│  "
	if last {
		branch, next = "└─ ", "   "
	}
	fmt.Fprintln(w, prefix+branch+n.label)
	for i, c := range n.children {
		writeTree(w, c, prefix+next, i == len(n.children)-1)
	}
}

func (d TreeDump) name(id source.StringID) string {
	if s, ok := d.Builder.Strings.Lookup(id); ok {
		return s
	}
	return "<anon>"
}

func (d TreeDump) typed(label string, t types.TypeID, ok bool) string {
	if !ok || d.Sema == nil {
		return label
	}
	if t == types.NoTypeID {
		return label + " : ?"
	}
	return label + " : " + types.Label(d.Sema.TypeInterner, t)
}

func (d TreeDump) decl(id ast.DeclID) *treeNode {
	decl := d.Builder.Decls.Get(id)
	if decl == nil {
		return nil
	}
	label := decl.Kind.String() + " " + d.name(decl.Name)
	if decl.Mods != 0 {
		label += " [" + decl.Mods.String() + "]"
	}
	if decl.Type.IsValid() {
		label += " " + formatTypeExpr(d.Builder, decl.Type)
	}
	if d.Sema != nil {
		t, ok := d.Sema.DeclTypes[id]
		if !ok {
			t, ok = d.Sema.Nominal[id]
		}
		label = d.typed(label, t, ok)
	}
	node := &treeNode{label: label + " (" + formatSpan(d.Files, decl.Span, d.Mode) + ")"}

	for _, tp := range d.Builder.Decls.TypeParamsOf(id) {
		node.add(d.decl(tp))
	}
	switch decl.Kind {
	case ast.DeclFunction, ast.DeclMethod:
		fn, _ := d.Builder.Decls.Fn(id)
		for _, p := range fn.Params {
			node.add(d.decl(p))
		}
		if fn.Body.IsValid() {
			node.add(d.stmt(fn.Body))
		}
	case ast.DeclClass:
		cls, _ := d.Builder.Decls.Class(id)
		if cls.Base.IsValid() {
			node.add(&treeNode{label: "base " + formatTypeExpr(d.Builder, cls.Base)})
		}
		for _, f := range cls.Fields {
			node.add(d.decl(f))
		}
		for _, m := range cls.Methods {
			node.add(d.decl(m))
		}
	case ast.DeclEnum:
		enum, _ := d.Builder.Decls.Enum(id)
		for _, c := range enum.Consts {
			node.add(d.decl(c))
		}
	case ast.DeclImport:
		imp, _ := d.Builder.Decls.Import(id)
		if !imp.Target.IsValid() {
			node.add(&treeNode{label: "<unresolved>"})
		}
	}
	if decl.Init.IsValid() {
		node.add(d.expr(decl.Init))
	}
	return node
}

func (d TreeDump) stmt(id ast.StmtID) *treeNode {
	st := d.Builder.Stmts.Get(id)
	if st == nil {
		return nil
	}
	b := d.Builder
	node := &treeNode{label: st.Kind.String()}
	switch st.Kind {
	case ast.StmtBlock:
		for _, s := range b.Stmts.Block(id).Stmts {
			node.add(d.stmt(s))
		}
	case ast.StmtDecl:
		return d.decl(b.Stmts.Decl(id).Decl)
	case ast.StmtExpr:
		node.add(d.expr(b.Stmts.Expr(id).Expr))
	case ast.StmtAssign:
		a := b.Stmts.Assign(id)
		node.add(d.expr(a.Target), d.expr(a.Value))
	case ast.StmtIf:
		s := b.Stmts.If(id)
		node.add(d.expr(s.Cond), d.stmt(s.Then))
		if s.Else.IsValid() {
			node.add(&treeNode{label: "else", children: []*treeNode{d.stmt(s.Else)}})
		}
	case ast.StmtWhile:
		s := b.Stmts.While(id)
		node.add(d.expr(s.Cond), d.stmt(s.Body))
	case ast.StmtFor:
		s := b.Stmts.For(id)
		node.label += " " + b.NameOf(s.Var)
		node.add(d.expr(s.From), d.expr(s.To), d.stmt(s.Body))
	case ast.StmtCase:
		s := b.Stmts.Case(id)
		node.add(d.expr(s.Subject))
		for _, arm := range s.Arms {
			armNode := &treeNode{label: "when"}
			for _, v := range arm.Values {
				armNode.add(d.expr(v))
			}
			armNode.add(d.stmt(arm.Body))
			node.add(armNode)
		}
		if s.Default.IsValid() {
			node.add(&treeNode{label: "default", children: []*treeNode{d.stmt(s.Default)}})
		}
	case ast.StmtReturn:
		if v := b.Stmts.Return(id).Value; v.IsValid() {
			node.add(d.expr(v))
		}
	}
	return node
}

func (d TreeDump) expr(id ast.ExprID) *treeNode {
	e := d.Builder.Exprs.Get(id)
	if e == nil {
		return nil
	}
	b := d.Builder
	node := &treeNode{}
	label := e.Kind.String()
	switch e.Kind {
	case ast.ExprLit:
		lit := b.Exprs.Literal(id)
		label = fmt.Sprintf("%s %s", lit.Kind, lit.Value)
	case ast.ExprName:
		label = "name " + d.name(b.Exprs.Name(id).Name)
	case ast.ExprField:
		f := b.Exprs.Field(id)
		label = "field " + d.name(f.Name)
		node.add(d.expr(f.Receiver))
	case ast.ExprIndex:
		ix := b.Exprs.Index(id)
		node.add(d.expr(ix.Target))
		node.add(d.exprs(ix.Indices)...)
	case ast.ExprCall:
		c := b.Exprs.Call(id)
		label = "call " + d.name(c.Name)
		if len(c.TypeArgs) > 0 {
			label += "<" + formatTypeExprs(b, c.TypeArgs, ", ") + ">"
		}
		node.add(d.exprs(c.Args)...)
	case ast.ExprMethodCall:
		c := b.Exprs.MethodCall(id)
		label = "method call " + d.name(c.Name)
		node.add(d.expr(c.Receiver))
		node.add(d.exprs(c.Args)...)
	case ast.ExprBinary:
		bin := b.Exprs.Binary(id)
		label = "binary " + bin.Op.String()
		node.add(d.expr(bin.Left), d.expr(bin.Right))
	case ast.ExprUnary:
		un := b.Exprs.Unary(id)
		label = "unary " + un.Op.String()
		node.add(d.expr(un.Operand))
	case ast.ExprCast:
		c := b.Exprs.Cast(id)
		label = "cast " + formatTypeExpr(b, c.Target)
		node.add(d.expr(c.Operand))
	case ast.ExprNew:
		n := b.Exprs.New(id)
		label = "new " + formatTypeExpr(b, n.Class)
		for _, in := range n.Inits {
			node.add(&treeNode{label: d.name(in.Name), children: []*treeNode{d.expr(in.Value)}})
		}
	case ast.ExprList:
		l := b.Exprs.List(id)
		if l.Elem.IsValid() {
			label += " " + formatTypeExpr(b, l.Elem)
		}
		node.add(d.exprs(l.Elems)...)
	case ast.ExprTuple:
		node.add(d.exprs(b.Exprs.Tuple(id).Elems)...)
	}
	if d.Sema != nil {
		t, ok := d.Sema.ExprTypes[id]
		label = d.typed(label, t, ok)
	}
	node.label = label
	return node
}

func (d TreeDump) exprs(ids []ast.ExprID) []*treeNode {
	out := make([]*treeNode, 0, len(ids))
	for _, id := range ids {
		out = append(out, d.expr(id))
	}
	return out
}

// formatTypeExpr renders a syntactic type the way it was written.
func formatTypeExpr(b *ast.Builder, id ast.TypeExprID) string {
	t := b.Types.Get(id)
	if t == nil {
		return "?"
	}
	switch t.Kind {
	case ast.TypeExprNamed:
		name, _ := b.Strings.Lookup(t.Name)
		if len(t.Args) > 0 {
			name += "<" + formatTypeExprs(b, t.Args, ", ") + ">"
		}
		return name
	case ast.TypeExprList:
		return fmt.Sprintf("List<%s,%d>", formatTypeExpr(b, t.Base), t.Dims)
	case ast.TypeExprArray:
		return fmt.Sprintf("Array<%s,%d>", formatTypeExpr(b, t.Base), t.Dims)
	case ast.TypeExprTuple:
		return "(" + formatTypeExprs(b, t.Elems, ", ") + ")"
	case ast.TypeExprUnion:
		return formatTypeExprs(b, t.Elems, " | ")
	}
	return "?"
}

func formatTypeExprs(b *ast.Builder, ids []ast.TypeExprID, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = formatTypeExpr(b, id)
	}
	return strings.Join(parts, sep)
}
