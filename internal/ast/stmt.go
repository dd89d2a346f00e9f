package ast

import "sable/internal/source"

type StmtKind uint8

const (
	StmtInvalid StmtKind = iota
	StmtBlock
	StmtDecl
	StmtExpr
	StmtAssign
	StmtIf
	StmtWhile
	StmtFor
	StmtCase
	StmtReturn
)

func (k StmtKind) String() string {
	switch k {
	case StmtBlock:
		return "block"
	case StmtDecl:
		return "decl"
	case StmtExpr:
		return "expr"
	case StmtAssign:
		return "assign"
	case StmtIf:
		return "if"
	case StmtWhile:
		return "while"
	case StmtFor:
		return "for"
	case StmtCase:
		return "case"
	case StmtReturn:
		return "return"
	default:
		return "invalid"
	}
}

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

type BlockStmt struct {
	Stmts []StmtID
}

type DeclStmt struct {
	Decl DeclID
}

type ExprStmt struct {
	Expr ExprID
}

type AssignStmt struct {
	Target ExprID
	Value  ExprID
}

// IfStmt: Then is a block; Else is a block, another if, or NoStmtID.
type IfStmt struct {
	Cond ExprID
	Then StmtID
	Else StmtID
}

type WhileStmt struct {
	Cond ExprID
	Body StmtID
}

// ForStmt iterates Var over the integer range From..To.
type ForStmt struct {
	Var  DeclID
	From ExprID
	To   ExprID
	Body StmtID
}

type CaseArm struct {
	Values []ExprID
	Body   StmtID
	Span   source.Span
}

type CaseStmt struct {
	Subject ExprID
	Arms    []CaseArm
	Default StmtID
}

type ReturnStmt struct {
	Value ExprID
}

// Stmts manages allocation of statements.
type Stmts struct {
	Arena   *Arena[Stmt]
	Blocks  *Arena[BlockStmt]
	Decls   *Arena[DeclStmt]
	Exprs   *Arena[ExprStmt]
	Assigns *Arena[AssignStmt]
	Ifs     *Arena[IfStmt]
	Whiles  *Arena[WhileStmt]
	Fors    *Arena[ForStmt]
	Cases   *Arena[CaseStmt]
	Returns *Arena[ReturnStmt]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Stmts{
		Arena:   NewArena[Stmt](capHint),
		Blocks:  NewArena[BlockStmt](capHint / 4),
		Decls:   NewArena[DeclStmt](capHint / 4),
		Exprs:   NewArena[ExprStmt](capHint / 4),
		Assigns: NewArena[AssignStmt](capHint / 4),
		Ifs:     NewArena[IfStmt](capHint / 8),
		Whiles:  NewArena[WhileStmt](capHint / 8),
		Fors:    NewArena[ForStmt](capHint / 8),
		Cases:   NewArena[CaseStmt](capHint / 16),
		Returns: NewArena[ReturnStmt](capHint / 8),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload uint32) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: kind, Span: span, Payload: PayloadID(payload)}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) payload(id StmtID, kind StmtKind) uint32 {
	st := s.Get(id)
	if st == nil || st.Kind != kind {
		return 0
	}
	return uint32(st.Payload)
}

func (s *Stmts) NewBlock(span source.Span, stmts []StmtID) StmtID {
	return s.new(StmtBlock, span, s.Blocks.Allocate(BlockStmt{Stmts: stmts}))
}

func (s *Stmts) Block(id StmtID) *BlockStmt {
	return s.Blocks.Get(s.payload(id, StmtBlock))
}

func (s *Stmts) NewDecl(span source.Span, decl DeclID) StmtID {
	return s.new(StmtDecl, span, s.Decls.Allocate(DeclStmt{Decl: decl}))
}

func (s *Stmts) Decl(id StmtID) *DeclStmt {
	return s.Decls.Get(s.payload(id, StmtDecl))
}

func (s *Stmts) NewExpr(span source.Span, expr ExprID) StmtID {
	return s.new(StmtExpr, span, s.Exprs.Allocate(ExprStmt{Expr: expr}))
}

func (s *Stmts) Expr(id StmtID) *ExprStmt {
	return s.Exprs.Get(s.payload(id, StmtExpr))
}

func (s *Stmts) NewAssign(span source.Span, target, value ExprID) StmtID {
	return s.new(StmtAssign, span, s.Assigns.Allocate(AssignStmt{Target: target, Value: value}))
}

func (s *Stmts) Assign(id StmtID) *AssignStmt {
	return s.Assigns.Get(s.payload(id, StmtAssign))
}

func (s *Stmts) NewIf(span source.Span, cond ExprID, then, els StmtID) StmtID {
	return s.new(StmtIf, span, s.Ifs.Allocate(IfStmt{Cond: cond, Then: then, Else: els}))
}

func (s *Stmts) If(id StmtID) *IfStmt {
	return s.Ifs.Get(s.payload(id, StmtIf))
}

func (s *Stmts) NewWhile(span source.Span, cond ExprID, body StmtID) StmtID {
	return s.new(StmtWhile, span, s.Whiles.Allocate(WhileStmt{Cond: cond, Body: body}))
}

func (s *Stmts) While(id StmtID) *WhileStmt {
	return s.Whiles.Get(s.payload(id, StmtWhile))
}

func (s *Stmts) NewFor(span source.Span, v DeclID, from, to ExprID, body StmtID) StmtID {
	return s.new(StmtFor, span, s.Fors.Allocate(ForStmt{Var: v, From: from, To: to, Body: body}))
}

func (s *Stmts) For(id StmtID) *ForStmt {
	return s.Fors.Get(s.payload(id, StmtFor))
}

func (s *Stmts) NewCase(span source.Span, subject ExprID, arms []CaseArm, def StmtID) StmtID {
	return s.new(StmtCase, span, s.Cases.Allocate(CaseStmt{Subject: subject, Arms: arms, Default: def}))
}

func (s *Stmts) Case(id StmtID) *CaseStmt {
	return s.Cases.Get(s.payload(id, StmtCase))
}

func (s *Stmts) NewReturn(span source.Span, value ExprID) StmtID {
	return s.new(StmtReturn, span, s.Returns.Allocate(ReturnStmt{Value: value}))
}

func (s *Stmts) Return(id StmtID) *ReturnStmt {
	return s.Returns.Get(s.payload(id, StmtReturn))
}
