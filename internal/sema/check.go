package sema

import (
	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/symbols"
	"sable/internal/trace"
	"sable/internal/types"
)

// Options configure a semantic pass over a program.
type Options struct {
	Reporter diag.Reporter
	Symbols  *symbols.Result
	Types    *types.Interner
	Tracer   trace.Tracer
	// TraceParent is the span unit spans nest under, usually the pass.
	TraceParent uint64
}

// Result stores semantic artefacts produced by the checkers. Each map is
// written by exactly one pass.
type Result struct {
	TypeInterner *types.Interner
	// ExprTypes is the type of every visited expression. NoTypeID marks an
	// expression whose type could not be determined.
	ExprTypes map[ast.ExprID]types.TypeID
	// DeclTypes is the declared or inferred type of variables and the return
	// type of callables.
	DeclTypes map[ast.DeclID]types.TypeID
	// Nominal maps class, enum and template parameter declarations to the
	// type they introduce.
	Nominal map[ast.DeclID]types.TypeID
	// Targets maps calls, method calls and field accesses to the member or
	// callable they reach.
	Targets map[ast.ExprID]ast.DeclID
	// CallSigs is the signature key of the overload chosen for a call.
	CallSigs map[ast.ExprID]symbols.Key
	// HasReturn is set for callables with a return directly in their body.
	HasReturn map[ast.DeclID]bool
	// Overrides maps a method to the ancestor method it overrides. Written
	// by the modifier pass.
	Overrides map[ast.DeclID]ast.DeclID
}

func newResult(in *types.Interner) *Result {
	if in == nil {
		in = types.NewInterner()
	}
	return &Result{
		TypeInterner: in,
		ExprTypes:    make(map[ast.ExprID]types.TypeID),
		DeclTypes:    make(map[ast.DeclID]types.TypeID),
		Nominal:      make(map[ast.DeclID]types.TypeID),
		Targets:      make(map[ast.ExprID]ast.DeclID),
		CallSigs:     make(map[ast.ExprID]symbols.Key),
		HasReturn:    make(map[ast.DeclID]bool),
		Overrides:    make(map[ast.DeclID]ast.DeclID),
	}
}

// TypeOf returns the type recorded for an expression.
func (r *Result) TypeOf(id ast.ExprID) types.TypeID {
	return r.ExprTypes[id]
}

// Label renders the type recorded for an expression.
func (r *Result) Label(id ast.ExprID) string {
	return types.Label(r.TypeInterner, r.ExprTypes[id])
}

// Check runs type assignment and checking over every unit the resolver
// processed, imported units first.
func Check(builder *ast.Builder, opts Options) *Result {
	tc := NewTypeChecker(builder, opts)
	if builder == nil || opts.Symbols == nil {
		return tc.Result()
	}
	for _, unit := range opts.Symbols.UnitOrder {
		tc.CheckUnit(unit)
	}
	return tc.Result()
}

// CheckModifiers runs the modifier and access legality pass over the typed
// program. typed must come from Check over the same tree.
func CheckModifiers(builder *ast.Builder, typed *Result, opts Options) {
	mc := NewModifierChecker(builder, typed, opts)
	if builder == nil || opts.Symbols == nil {
		return
	}
	for _, unit := range opts.Symbols.UnitOrder {
		mc.CheckUnit(unit)
	}
}
