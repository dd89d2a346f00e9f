package ast

import "sable/internal/source"

// Unit is a compilation unit: one parsed file.
type Unit struct {
	File      source.FileID
	Span      source.Span
	Imports   []DeclID
	Enums     []DeclID
	Globals   []DeclID
	Classes   []DeclID
	Functions []DeclID
	Main      DeclID
	// Stmts are statements submitted at the top level of an interactive
	// unit. They run in the unit's global scope; file units have none.
	Stmts []StmtID
}

// TopLevel returns every top-level declaration in walk order: imports,
// enums, globals, classes, functions, main.
func (u *Unit) TopLevel() []DeclID {
	out := make([]DeclID, 0, len(u.Imports)+len(u.Enums)+len(u.Globals)+len(u.Classes)+len(u.Functions)+1)
	out = append(out, u.Imports...)
	out = append(out, u.Enums...)
	out = append(out, u.Globals...)
	out = append(out, u.Classes...)
	out = append(out, u.Functions...)
	if u.Main.IsValid() {
		out = append(out, u.Main)
	}
	return out
}

type Units struct {
	Arena *Arena[Unit]
}

func NewUnits(capHint uint) *Units {
	return &Units{Arena: NewArena[Unit](capHint)}
}

func (u *Units) New(file source.FileID, span source.Span) UnitID {
	return UnitID(u.Arena.Allocate(Unit{File: file, Span: span}))
}

func (u *Units) Get(id UnitID) *Unit {
	return u.Arena.Get(uint32(id))
}
