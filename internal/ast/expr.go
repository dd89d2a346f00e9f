package ast

import (
	"sable/internal/source"
)

type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprLit
	ExprName
	ExprThis
	ExprField
	ExprIndex
	ExprCall
	ExprMethodCall
	ExprBinary
	ExprUnary
	ExprCast
	ExprNew
	ExprList
	ExprTuple
)

func (k ExprKind) String() string {
	switch k {
	case ExprLit:
		return "literal"
	case ExprName:
		return "name"
	case ExprThis:
		return "this"
	case ExprField:
		return "field"
	case ExprIndex:
		return "index"
	case ExprCall:
		return "call"
	case ExprMethodCall:
		return "method call"
	case ExprBinary:
		return "binary"
	case ExprUnary:
		return "unary"
	case ExprCast:
		return "cast"
	case ExprNew:
		return "new"
	case ExprList:
		return "list"
	case ExprTuple:
		return "tuple"
	default:
		return "invalid"
	}
}

// LitKind is the kind of a literal token.
type LitKind uint8

const (
	LitInvalid LitKind = iota
	LitInt
	LitChar
	LitBool
	LitString
	LitText
	LitReal
)

func (k LitKind) String() string {
	switch k {
	case LitInt:
		return "int"
	case LitChar:
		return "char"
	case LitBool:
		return "bool"
	case LitString:
		return "string"
	case LitText:
		return "text"
	case LitReal:
		return "real"
	default:
		return "invalid"
	}
}

type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

type LiteralExpr struct {
	Kind  LitKind
	Value string
}

type NameExpr struct {
	Name source.StringID
}

type FieldExpr struct {
	Receiver ExprID
	Name     source.StringID
}

type IndexExpr struct {
	Target  ExprID
	Indices []ExprID
}

type CallExpr struct {
	Name     source.StringID
	TypeArgs []TypeExprID
	Args     []ExprID
}

type MethodCallExpr struct {
	Receiver ExprID
	Name     source.StringID
	Args     []ExprID
}

type BinaryExpr struct {
	Op    BinaryOp
	Left  ExprID
	Right ExprID
}

type UnaryExpr struct {
	Op      UnaryOp
	Operand ExprID
}

type CastExpr struct {
	Target  TypeExprID
	Operand ExprID
}

type FieldInit struct {
	Name  source.StringID
	Value ExprID
	Span  source.Span
}

type NewExpr struct {
	Class TypeExprID
	Inits []FieldInit
}

// ListExpr is a list literal; Elem is required when Elems is empty.
type ListExpr struct {
	Elem  TypeExprID
	Elems []ExprID
}

type TupleExpr struct {
	Elems []ExprID
}

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena       *Arena[Expr]
	Literals    *Arena[LiteralExpr]
	Names       *Arena[NameExpr]
	Fields      *Arena[FieldExpr]
	Indices     *Arena[IndexExpr]
	Calls       *Arena[CallExpr]
	MethodCalls *Arena[MethodCallExpr]
	Binaries    *Arena[BinaryExpr]
	Unaries     *Arena[UnaryExpr]
	Casts       *Arena[CastExpr]
	News        *Arena[NewExpr]
	Lists       *Arena[ListExpr]
	Tuples      *Arena[TupleExpr]
}

func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:       NewArena[Expr](capHint),
		Literals:    NewArena[LiteralExpr](capHint / 4),
		Names:       NewArena[NameExpr](capHint / 4),
		Fields:      NewArena[FieldExpr](capHint / 8),
		Indices:     NewArena[IndexExpr](capHint / 16),
		Calls:       NewArena[CallExpr](capHint / 8),
		MethodCalls: NewArena[MethodCallExpr](capHint / 8),
		Binaries:    NewArena[BinaryExpr](capHint / 4),
		Unaries:     NewArena[UnaryExpr](capHint / 16),
		Casts:       NewArena[CastExpr](capHint / 16),
		News:        NewArena[NewExpr](capHint / 16),
		Lists:       NewArena[ListExpr](capHint / 16),
		Tuples:      NewArena[TupleExpr](capHint / 16),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload uint32) ExprID {
	return ExprID(e.Arena.Allocate(Expr{Kind: kind, Span: span, Payload: PayloadID(payload)}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

// Span returns the expression span or a zero span.
func (e *Exprs) Span(id ExprID) source.Span {
	if expr := e.Get(id); expr != nil {
		return expr.Span
	}
	return source.Span{}
}

func (e *Exprs) payload(id ExprID, kind ExprKind) uint32 {
	expr := e.Get(id)
	if expr == nil || expr.Kind != kind {
		return 0
	}
	return uint32(expr.Payload)
}

func (e *Exprs) NewLiteral(span source.Span, kind LitKind, value string) ExprID {
	return e.new(ExprLit, span, e.Literals.Allocate(LiteralExpr{Kind: kind, Value: value}))
}

func (e *Exprs) Literal(id ExprID) *LiteralExpr {
	return e.Literals.Get(e.payload(id, ExprLit))
}

func (e *Exprs) NewName(span source.Span, name source.StringID) ExprID {
	return e.new(ExprName, span, e.Names.Allocate(NameExpr{Name: name}))
}

func (e *Exprs) Name(id ExprID) *NameExpr {
	return e.Names.Get(e.payload(id, ExprName))
}

func (e *Exprs) NewThis(span source.Span) ExprID {
	return e.new(ExprThis, span, 0)
}

func (e *Exprs) NewField(span source.Span, recv ExprID, name source.StringID) ExprID {
	return e.new(ExprField, span, e.Fields.Allocate(FieldExpr{Receiver: recv, Name: name}))
}

func (e *Exprs) Field(id ExprID) *FieldExpr {
	return e.Fields.Get(e.payload(id, ExprField))
}

func (e *Exprs) NewIndex(span source.Span, target ExprID, indices []ExprID) ExprID {
	return e.new(ExprIndex, span, e.Indices.Allocate(IndexExpr{Target: target, Indices: indices}))
}

func (e *Exprs) Index(id ExprID) *IndexExpr {
	return e.Indices.Get(e.payload(id, ExprIndex))
}

func (e *Exprs) NewCall(span source.Span, name source.StringID, typeArgs []TypeExprID, args []ExprID) ExprID {
	return e.new(ExprCall, span, e.Calls.Allocate(CallExpr{Name: name, TypeArgs: typeArgs, Args: args}))
}

func (e *Exprs) Call(id ExprID) *CallExpr {
	return e.Calls.Get(e.payload(id, ExprCall))
}

func (e *Exprs) NewMethodCall(span source.Span, recv ExprID, name source.StringID, args []ExprID) ExprID {
	return e.new(ExprMethodCall, span, e.MethodCalls.Allocate(MethodCallExpr{Receiver: recv, Name: name, Args: args}))
}

func (e *Exprs) MethodCall(id ExprID) *MethodCallExpr {
	return e.MethodCalls.Get(e.payload(id, ExprMethodCall))
}

func (e *Exprs) NewBinary(span source.Span, op BinaryOp, left, right ExprID) ExprID {
	return e.new(ExprBinary, span, e.Binaries.Allocate(BinaryExpr{Op: op, Left: left, Right: right}))
}

func (e *Exprs) Binary(id ExprID) *BinaryExpr {
	return e.Binaries.Get(e.payload(id, ExprBinary))
}

func (e *Exprs) NewUnary(span source.Span, op UnaryOp, operand ExprID) ExprID {
	return e.new(ExprUnary, span, e.Unaries.Allocate(UnaryExpr{Op: op, Operand: operand}))
}

func (e *Exprs) Unary(id ExprID) *UnaryExpr {
	return e.Unaries.Get(e.payload(id, ExprUnary))
}

func (e *Exprs) NewCast(span source.Span, target TypeExprID, operand ExprID) ExprID {
	return e.new(ExprCast, span, e.Casts.Allocate(CastExpr{Target: target, Operand: operand}))
}

func (e *Exprs) Cast(id ExprID) *CastExpr {
	return e.Casts.Get(e.payload(id, ExprCast))
}

func (e *Exprs) NewNew(span source.Span, class TypeExprID, inits []FieldInit) ExprID {
	return e.new(ExprNew, span, e.News.Allocate(NewExpr{Class: class, Inits: inits}))
}

func (e *Exprs) New(id ExprID) *NewExpr {
	return e.News.Get(e.payload(id, ExprNew))
}

func (e *Exprs) NewList(span source.Span, elem TypeExprID, elems []ExprID) ExprID {
	return e.new(ExprList, span, e.Lists.Allocate(ListExpr{Elem: elem, Elems: elems}))
}

func (e *Exprs) List(id ExprID) *ListExpr {
	return e.Lists.Get(e.payload(id, ExprList))
}

func (e *Exprs) NewTuple(span source.Span, elems []ExprID) ExprID {
	return e.new(ExprTuple, span, e.Tuples.Allocate(TupleExpr{Elems: elems}))
}

func (e *Exprs) Tuple(id ExprID) *TupleExpr {
	return e.Tuples.Get(e.payload(id, ExprTuple))
}
