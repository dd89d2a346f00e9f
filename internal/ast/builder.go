package ast

import (
	"sable/internal/source"
)

type Hints struct{ Units, Decls, Stmts, Exprs uint }

// Builder owns every arena of one program tree.
type Builder struct {
	Strings *source.Interner
	Units   *Units
	Decls   *Decls
	Stmts   *Stmts
	Exprs   *Exprs
	Types   *TypeExprs
}

// NewBuilder creates a tree builder. A nil interner gets a fresh one.
func NewBuilder(hints Hints, strings *source.Interner) *Builder {
	if hints.Units == 0 {
		hints.Units = 1 << 3
	}
	if hints.Decls == 0 {
		hints.Decls = 1 << 7
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Builder{
		Strings: strings,
		Units:   NewUnits(hints.Units),
		Decls:   NewDecls(hints.Decls),
		Stmts:   NewStmts(hints.Stmts),
		Exprs:   NewExprs(hints.Exprs),
		Types:   NewTypeExprs(hints.Exprs / 4),
	}
}

// Name interns an identifier.
func (b *Builder) Name(s string) source.StringID {
	return b.Strings.Intern(s)
}

// NameOf returns the identifier text of a declaration.
func (b *Builder) NameOf(id DeclID) string {
	decl := b.Decls.Get(id)
	if decl == nil {
		return ""
	}
	s, _ := b.Strings.Lookup(decl.Name)
	return s
}

func (b *Builder) NewUnit(file source.FileID, span source.Span) UnitID {
	return b.Units.New(file, span)
}

func (b *Builder) AddImport(unit UnitID, decl DeclID) {
	b.Units.Get(unit).Imports = append(b.Units.Get(unit).Imports, decl)
}

func (b *Builder) AddEnum(unit UnitID, decl DeclID) {
	b.Units.Get(unit).Enums = append(b.Units.Get(unit).Enums, decl)
}

func (b *Builder) AddGlobal(unit UnitID, decl DeclID) {
	b.Units.Get(unit).Globals = append(b.Units.Get(unit).Globals, decl)
}

func (b *Builder) AddClass(unit UnitID, decl DeclID) {
	b.Units.Get(unit).Classes = append(b.Units.Get(unit).Classes, decl)
}

func (b *Builder) AddFunction(unit UnitID, decl DeclID) {
	b.Units.Get(unit).Functions = append(b.Units.Get(unit).Functions, decl)
}

func (b *Builder) SetMain(unit UnitID, decl DeclID) {
	b.Units.Get(unit).Main = decl
}

func (b *Builder) AddStmt(unit UnitID, stmt StmtID) {
	b.Units.Get(unit).Stmts = append(b.Units.Get(unit).Stmts, stmt)
}
