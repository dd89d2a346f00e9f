package symbols

import (
	"fmt"

	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/source"
)

// ResolveOptions controls a resolve pass over one program.
type ResolveOptions struct {
	Table    *Table
	Hints    Hints
	Reporter diag.Reporter
	Validate bool
}

// Result captures the annotations written by name resolution. Every map is
// written once per key by the resolver and only read afterwards.
type Result struct {
	Table *Table
	Root  ast.UnitID
	// Units maps every processed unit to its global scope.
	Units map[ast.UnitID]ScopeID
	// UnitOrder lists processed units, imported units before importers.
	UnitOrder []ast.UnitID
	// ScopeOfDecl is the scope opened by a class, function or method.
	ScopeOfDecl map[ast.DeclID]ScopeID
	// ScopeOfStmt is the scope opened by a block or for statement.
	ScopeOfStmt map[ast.StmtID]ScopeID
	// DeclScope is the scope a declaration was bound in.
	DeclScope map[ast.DeclID]ScopeID
	// Keys is the lookup key each bound declaration was bound under.
	Keys map[ast.DeclID]Key
	// Uses maps name, this, field and call expressions to their declaration.
	// Calls are recorded only when the overload set has a single member;
	// overloads are picked by the type checker.
	Uses map[ast.ExprID]ast.DeclID
	// TypeRefs maps named type expressions to class, enum or template
	// parameter declarations.
	TypeRefs map[ast.TypeExprID]ast.DeclID
	// Bases maps a class to its resolved base class.
	Bases map[ast.DeclID]ast.DeclID
	// Order lists classes of every unit base-first.
	Order []ast.DeclID
}

func newResult(table *Table, root ast.UnitID) *Result {
	return &Result{
		Table:       table,
		Root:        root,
		Units:       make(map[ast.UnitID]ScopeID),
		ScopeOfDecl: make(map[ast.DeclID]ScopeID),
		ScopeOfStmt: make(map[ast.StmtID]ScopeID),
		DeclScope:   make(map[ast.DeclID]ScopeID),
		Keys:        make(map[ast.DeclID]Key),
		Uses:        make(map[ast.ExprID]ast.DeclID),
		TypeRefs:    make(map[ast.TypeExprID]ast.DeclID),
		Bases:       make(map[ast.DeclID]ast.DeclID),
	}
}

// Global returns the global scope of the root unit.
func (r *Result) Global() ScopeID {
	return r.Units[r.Root]
}

// ClassScope returns the scope of a class declaration.
func (r *Result) ClassScope(class ast.DeclID) ScopeID {
	return r.ScopeOfDecl[class]
}

// ResolveProgram resolves root and, first, every unit it imports.
func ResolveProgram(builder *ast.Builder, root ast.UnitID, opts ResolveOptions) *Result {
	table := opts.Table
	if table == nil {
		table = NewTable(opts.Hints, builder.Strings)
	}
	res := NewResolver(builder, table, root, opts.Reporter)
	res.ResolveUnit(root)

	if opts.Validate {
		if err := table.Validate(); err != nil {
			if opts.Reporter == nil {
				panic(err)
			}
			unit := builder.Units.Get(root)
			span := source.Span{}
			if unit != nil {
				span = unit.Span
			}
			// invariant violations are internal bugs; surfaced as a scope info
			diag.NewReportBuilder(opts.Reporter, diag.SevInfo, diag.ScpInfo, span).
				WithNote(span, fmt.Sprintf("scope table invariant violation: %v", err)).
				Emit()
		}
	}
	return res.Result()
}
