package ast

import "sable/internal/source"

type TypeExprKind uint8

const (
	TypeExprInvalid TypeExprKind = iota
	TypeExprNamed
	TypeExprList
	TypeExprArray
	TypeExprTuple
	TypeExprUnion
)

// TypeExpr is a syntactic type. Named carries Name and Args; List/Array carry
// Base and Dims; Tuple and Union carry Elems.
type TypeExpr struct {
	Kind  TypeExprKind
	Span  source.Span
	Name  source.StringID
	Args  []TypeExprID
	Base  TypeExprID
	Dims  uint8
	Elems []TypeExprID
}

// TypeExprs stores syntactic types.
type TypeExprs struct {
	Arena *Arena[TypeExpr]
}

func NewTypeExprs(capHint uint) *TypeExprs {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &TypeExprs{Arena: NewArena[TypeExpr](capHint)}
}

func (t *TypeExprs) Get(id TypeExprID) *TypeExpr {
	return t.Arena.Get(uint32(id))
}

func (t *TypeExprs) NewNamed(span source.Span, name source.StringID, args []TypeExprID) TypeExprID {
	return TypeExprID(t.Arena.Allocate(TypeExpr{Kind: TypeExprNamed, Span: span, Name: name, Args: args}))
}

func (t *TypeExprs) NewList(span source.Span, base TypeExprID, dims uint8) TypeExprID {
	return TypeExprID(t.Arena.Allocate(TypeExpr{Kind: TypeExprList, Span: span, Base: base, Dims: max(dims, 1)}))
}

func (t *TypeExprs) NewArray(span source.Span, base TypeExprID, dims uint8) TypeExprID {
	return TypeExprID(t.Arena.Allocate(TypeExpr{Kind: TypeExprArray, Span: span, Base: base, Dims: max(dims, 1)}))
}

func (t *TypeExprs) NewTuple(span source.Span, elems []TypeExprID) TypeExprID {
	return TypeExprID(t.Arena.Allocate(TypeExpr{Kind: TypeExprTuple, Span: span, Elems: elems}))
}

func (t *TypeExprs) NewUnion(span source.Span, members []TypeExprID) TypeExprID {
	return TypeExprID(t.Arena.Allocate(TypeExpr{Kind: TypeExprUnion, Span: span, Elems: members}))
}
