package testkit

import (
	"sable/internal/ast"
	"sable/internal/source"
)

// Program builds trees without a parser. Every node gets its own line so
// diagnostics can be told apart by position.
type Program struct {
	B     *ast.Builder
	Files *source.FileSet
	Unit  ast.UnitID
	file  source.FileID
	line  uint32
}

// New starts a program whose root unit is registered under path.
func New(path string) *Program {
	files := source.NewFileSet()
	b := ast.NewBuilder(ast.Hints{}, nil)
	p := &Program{B: b, Files: files}
	p.file = files.Add(path, source.FileVirtual)
	p.Unit = b.NewUnit(p.file, source.At(p.file, 1, 1))
	return p
}

// Sub starts another unit in the same tree, usually the target of an import.
func (p *Program) Sub(path string) *Program {
	q := &Program{B: p.B, Files: p.Files}
	q.file = p.Files.Add(path, source.FileVirtual|source.FileImported)
	q.Unit = p.B.NewUnit(q.file, source.At(q.file, 1, 1))
	return q
}

// Next returns a fresh span on the following line.
func (p *Program) Next() source.Span {
	p.line++
	return source.At(p.file, p.line, 1)
}

// Line reports the line of the most recently allocated node.
func (p *Program) Line() uint32 { return p.line }

func (p *Program) id(s string) source.StringID { return p.B.Name(s) }

// Types

func (p *Program) T(name string, args ...ast.TypeExprID) ast.TypeExprID {
	return p.B.Types.NewNamed(p.Next(), p.id(name), args)
}

func (p *Program) TList(base ast.TypeExprID, dims uint8) ast.TypeExprID {
	return p.B.Types.NewList(p.Next(), base, dims)
}

func (p *Program) TArray(base ast.TypeExprID, dims uint8) ast.TypeExprID {
	return p.B.Types.NewArray(p.Next(), base, dims)
}

func (p *Program) TTuple(elems ...ast.TypeExprID) ast.TypeExprID {
	return p.B.Types.NewTuple(p.Next(), elems)
}

func (p *Program) TUnion(members ...ast.TypeExprID) ast.TypeExprID {
	return p.B.Types.NewUnion(p.Next(), members)
}

// Expressions

func (p *Program) lit(kind ast.LitKind, v string) ast.ExprID {
	return p.B.Exprs.NewLiteral(p.Next(), kind, v)
}

func (p *Program) Int(v string) ast.ExprID  { return p.lit(ast.LitInt, v) }
func (p *Program) Char(v string) ast.ExprID { return p.lit(ast.LitChar, v) }
func (p *Program) Str(v string) ast.ExprID  { return p.lit(ast.LitString, v) }
func (p *Program) Text(v string) ast.ExprID { return p.lit(ast.LitText, v) }
func (p *Program) Real(v string) ast.ExprID { return p.lit(ast.LitReal, v) }

func (p *Program) Bool(v bool) ast.ExprID {
	if v {
		return p.lit(ast.LitBool, "true")
	}
	return p.lit(ast.LitBool, "false")
}

func (p *Program) Name(name string) ast.ExprID {
	return p.B.Exprs.NewName(p.Next(), p.id(name))
}

func (p *Program) This() ast.ExprID { return p.B.Exprs.NewThis(p.Next()) }

func (p *Program) Get(recv ast.ExprID, field string) ast.ExprID {
	return p.B.Exprs.NewField(p.Next(), recv, p.id(field))
}

func (p *Program) Index(target ast.ExprID, indices ...ast.ExprID) ast.ExprID {
	return p.B.Exprs.NewIndex(p.Next(), target, indices)
}

func (p *Program) Call(name string, args ...ast.ExprID) ast.ExprID {
	return p.B.Exprs.NewCall(p.Next(), p.id(name), nil, args)
}

// CallT is a call with explicit template arguments.
func (p *Program) CallT(name string, targs []ast.TypeExprID, args ...ast.ExprID) ast.ExprID {
	return p.B.Exprs.NewCall(p.Next(), p.id(name), targs, args)
}

func (p *Program) MCall(recv ast.ExprID, name string, args ...ast.ExprID) ast.ExprID {
	return p.B.Exprs.NewMethodCall(p.Next(), recv, p.id(name), args)
}

func (p *Program) Bin(op ast.BinaryOp, l, r ast.ExprID) ast.ExprID {
	return p.B.Exprs.NewBinary(p.Next(), op, l, r)
}

func (p *Program) Un(op ast.UnaryOp, x ast.ExprID) ast.ExprID {
	return p.B.Exprs.NewUnary(p.Next(), op, x)
}

func (p *Program) Cast(to ast.TypeExprID, x ast.ExprID) ast.ExprID {
	return p.B.Exprs.NewCast(p.Next(), to, x)
}

func (p *Program) New(class ast.TypeExprID, inits ...ast.FieldInit) ast.ExprID {
	return p.B.Exprs.NewNew(p.Next(), class, inits)
}

func (p *Program) Init(field string, v ast.ExprID) ast.FieldInit {
	return ast.FieldInit{Name: p.id(field), Value: v, Span: p.Next()}
}

func (p *Program) List(elem ast.TypeExprID, elems ...ast.ExprID) ast.ExprID {
	return p.B.Exprs.NewList(p.Next(), elem, elems)
}

func (p *Program) Tuple(elems ...ast.ExprID) ast.ExprID {
	return p.B.Exprs.NewTuple(p.Next(), elems)
}

// Statements

func (p *Program) Block(stmts ...ast.StmtID) ast.StmtID {
	return p.B.Stmts.NewBlock(p.Next(), stmts)
}

// Local declares a local variable statement; typ or init may be zero.
func (p *Program) Local(name string, typ ast.TypeExprID, init ast.ExprID) ast.StmtID {
	return p.LocalDecl(name, typ, init, 0)
}

func (p *Program) LocalDecl(name string, typ ast.TypeExprID, init ast.ExprID, mods ast.Modifiers) ast.StmtID {
	d := p.B.Decls.NewVar(ast.DeclLocal, p.Next(), p.id(name), typ, init, mods)
	return p.B.Stmts.NewDecl(p.B.Decls.Get(d).Span, d)
}

func (p *Program) Do(e ast.ExprID) ast.StmtID {
	return p.B.Stmts.NewExpr(p.B.Exprs.Span(e), e)
}

func (p *Program) Assign(target, value ast.ExprID) ast.StmtID {
	return p.B.Stmts.NewAssign(p.Next(), target, value)
}

func (p *Program) If(cond ast.ExprID, then, els ast.StmtID) ast.StmtID {
	return p.B.Stmts.NewIf(p.Next(), cond, then, els)
}

func (p *Program) While(cond ast.ExprID, body ast.StmtID) ast.StmtID {
	return p.B.Stmts.NewWhile(p.Next(), cond, body)
}

// For builds `for v in from..to body` with an Int loop variable.
func (p *Program) For(v string, from, to ast.ExprID, body ast.StmtID) ast.StmtID {
	d := p.B.Decls.NewVar(ast.DeclLocal, p.Next(), p.id(v), p.T("Int"), ast.NoExprID, 0)
	return p.B.Stmts.NewFor(p.Next(), d, from, to, body)
}

func (p *Program) Arm(body ast.StmtID, values ...ast.ExprID) ast.CaseArm {
	return ast.CaseArm{Values: values, Body: body, Span: p.Next()}
}

func (p *Program) Case(subject ast.ExprID, def ast.StmtID, arms ...ast.CaseArm) ast.StmtID {
	return p.B.Stmts.NewCase(p.Next(), subject, arms, def)
}

func (p *Program) Return(v ast.ExprID) ast.StmtID {
	return p.B.Stmts.NewReturn(p.Next(), v)
}

// Declarations

// Global adds a global variable to the unit.
func (p *Program) Global(name string, typ ast.TypeExprID, init ast.ExprID, mods ast.Modifiers) ast.DeclID {
	d := p.B.Decls.NewVar(ast.DeclGlobal, p.Next(), p.id(name), typ, init, mods)
	p.B.AddGlobal(p.Unit, d)
	return d
}

func (p *Program) Param(name string, typ ast.TypeExprID, mods ast.Modifiers) ast.DeclID {
	return p.B.Decls.NewVar(ast.DeclParam, p.Next(), p.id(name), typ, ast.NoExprID, mods)
}

func (p *Program) Field(name string, typ ast.TypeExprID, mods ast.Modifiers) ast.DeclID {
	return p.B.Decls.NewVar(ast.DeclField, p.Next(), p.id(name), typ, ast.NoExprID, mods)
}

func (p *Program) TParam(name string, c ast.Constraint) ast.DeclID {
	return p.B.Decls.NewTemplateParam(p.Next(), p.id(name), c)
}

// Fn describes a function or method.
type Fn struct {
	Name       string
	Params     []ast.DeclID
	TypeParams []ast.DeclID
	Ret        ast.TypeExprID // zero means Void
	Body       []ast.StmtID
	Bodiless   bool
	Mods       ast.Modifiers
}

func (p *Program) fn(kind ast.DeclKind, f Fn) ast.DeclID {
	body := ast.NoStmtID
	if !f.Bodiless {
		body = p.Block(f.Body...)
	}
	d := p.B.Decls.NewFn(kind, p.Next(), p.id(f.Name), f.Params, f.Ret, body, f.Mods)
	if len(f.TypeParams) > 0 {
		p.B.Decls.SetTypeParams(d, f.TypeParams)
	}
	return d
}

// Func adds a function to the unit.
func (p *Program) Func(f Fn) ast.DeclID {
	d := p.fn(ast.DeclFunction, f)
	p.B.AddFunction(p.Unit, d)
	return d
}

// Method builds a method; pass it to Class.
func (p *Program) Method(f Fn) ast.DeclID {
	return p.fn(ast.DeclMethod, f)
}

// Main sets the unit's main function.
func (p *Program) Main(body ...ast.StmtID) ast.DeclID {
	d := p.fn(ast.DeclFunction, Fn{Name: "main", Body: body})
	p.B.SetMain(p.Unit, d)
	return d
}

// Class describes a class.
type Class struct {
	Name       string
	Base       ast.TypeExprID
	TypeParams []ast.DeclID
	Fields     []ast.DeclID
	Methods    []ast.DeclID
	Mods       ast.Modifiers
}

// AddClass adds a class to the unit.
func (p *Program) AddClass(c Class) ast.DeclID {
	d := p.B.Decls.NewClass(p.Next(), p.id(c.Name), c.Base, c.Fields, c.Methods, c.Mods)
	if len(c.TypeParams) > 0 {
		p.B.Decls.SetTypeParams(d, c.TypeParams)
	}
	p.B.AddClass(p.Unit, d)
	return d
}

// Enum adds an enum with the given constants to the unit.
func (p *Program) Enum(name string, consts ...string) ast.DeclID {
	ids := make([]ast.DeclID, len(consts))
	for i, c := range consts {
		ids[i] = p.B.Decls.NewVar(ast.DeclEnumConst, p.Next(), p.id(c), ast.NoTypeExprID, ast.NoExprID, ast.ModConst)
	}
	d := p.B.Decls.NewEnum(p.Next(), p.id(name), ids, 0)
	p.B.AddEnum(p.Unit, d)
	return d
}

// Import adds an import of other's unit.
func (p *Program) Import(other *Program) ast.DeclID {
	path := p.Files.Get(other.file).Path
	d := p.B.Decls.NewImport(p.Next(), p.id(path), path, other.Unit)
	p.B.AddImport(p.Unit, d)
	return d
}

// ImportPath adds an import whose target unit does not exist.
func (p *Program) ImportPath(path string) ast.DeclID {
	d := p.B.Decls.NewImport(p.Next(), p.id(path), path, ast.NoUnitID)
	p.B.AddImport(p.Unit, d)
	return d
}

// DeclOf returns the declaration of a local declaration statement.
func (p *Program) DeclOf(stmt ast.StmtID) ast.DeclID {
	if ds := p.B.Stmts.Decl(stmt); ds != nil {
		return ds.Decl
	}
	return ast.NoDeclID
}
