package symbols

import (
	"errors"
	"strconv"
	"strings"

	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/source"
	"sable/internal/types"
)

type unitState uint8

const (
	unitPending unitState = iota
	unitVisiting
	unitDone
)

// Resolver drives name resolution over the units of one program. It is kept
// alive across submissions in interactive mode.
type Resolver struct {
	b        *ast.Builder
	table    *Table
	result   *Result
	reporter diag.Reporter
	state    map[ast.UnitID]unitState
	cyclic   map[ast.DeclID]bool
}

// walkCtx is threaded through the walk instead of living on the resolver.
type walkCtx struct {
	unit      ast.UnitID
	class     ast.DeclID     // innermost enclosing class
	fn        ast.DeclID     // innermost enclosing function or method
	declaring source.StringID // variable whose initializer is being walked
}

// NewResolver creates a resolver for the program rooted at root.
func NewResolver(b *ast.Builder, table *Table, root ast.UnitID, reporter diag.Reporter) *Resolver {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Resolver{
		b:        b,
		table:    table,
		result:   newResult(table, root),
		reporter: reporter,
		state:    make(map[ast.UnitID]unitState),
		cyclic:   make(map[ast.DeclID]bool),
	}
}

// Result returns the annotations collected so far.
func (r *Resolver) Result() *Result { return r.result }

// ResolveUnit resolves a whole unit: imported units first, then hoisted
// names (enums, class names, function signatures), globals in order, class
// bodies base-first, and finally function bodies.
func (r *Resolver) ResolveUnit(unit ast.UnitID) ScopeID {
	switch r.state[unit] {
	case unitDone, unitVisiting:
		return r.result.Units[unit]
	}
	u := r.b.Units.Get(unit)
	if u == nil {
		return NoScopeID
	}
	r.state[unit] = unitVisiting
	global := r.ensureGlobal(unit)

	depth := r.table.Depth()
	r.table.Enter(global)
	defer r.table.Truncate(depth)

	ctx := walkCtx{unit: unit}
	for _, imp := range u.Imports {
		r.resolveImport(ctx, imp)
	}
	for _, enum := range u.Enums {
		r.declareEnum(ctx, enum)
	}
	for _, cls := range u.Classes {
		r.bindName(ctx, cls)
	}
	for _, fn := range u.Functions {
		r.declareCallable(ctx, fn)
	}
	if u.Main.IsValid() {
		r.declareCallable(ctx, u.Main)
	}
	for _, g := range u.Globals {
		r.declareVar(ctx, g)
	}
	for _, cls := range r.classOrder(u.Classes) {
		r.resolveClass(ctx, cls)
	}
	for _, fn := range u.Functions {
		r.resolveCallableBody(ctx, fn)
	}
	if u.Main.IsValid() {
		r.resolveCallableBody(ctx, u.Main)
	}
	for _, st := range u.Stmts {
		r.walkStmt(ctx, st)
	}
	r.state[unit] = unitDone
	r.result.UnitOrder = append(r.result.UnitOrder, unit)
	return global
}

// ResolveTopLevel resolves one top-level declaration of unit in the context
// of everything resolved before it. Used by interactive sessions; the scope
// stack is restored even when a reporter aborts the walk.
func (r *Resolver) ResolveTopLevel(unit ast.UnitID, id ast.DeclID) {
	decl := r.b.Decls.Get(id)
	if decl == nil {
		return
	}
	defer r.table.Truncate(r.enterTopLevel(unit))

	ctx := walkCtx{unit: unit}
	switch decl.Kind {
	case ast.DeclImport:
		r.resolveImport(ctx, id)
	case ast.DeclEnum:
		r.declareEnum(ctx, id)
	case ast.DeclGlobal:
		r.declareVar(ctx, id)
	case ast.DeclClass:
		r.bindName(ctx, id)
		r.result.Order = append(r.result.Order, id)
		r.resolveClass(ctx, id)
	case ast.DeclFunction:
		r.declareCallable(ctx, id)
		r.resolveCallableBody(ctx, id)
	}
}

// ResolveTopLevelStmt resolves one statement submitted at the top level of
// unit. A local it declares is bound in the unit's global scope.
func (r *Resolver) ResolveTopLevelStmt(unit ast.UnitID, id ast.StmtID) {
	if r.b.Stmts.Get(id) == nil {
		return
	}
	defer r.table.Truncate(r.enterTopLevel(unit))
	r.walkStmt(walkCtx{unit: unit}, id)
}

// enterTopLevel makes the global scope of unit current and returns the
// depth to truncate back to.
func (r *Resolver) enterTopLevel(unit ast.UnitID) int {
	global := r.ensureGlobal(unit)
	if r.state[unit] != unitDone {
		r.state[unit] = unitDone
		r.result.UnitOrder = append(r.result.UnitOrder, unit)
	}
	depth := r.table.Depth()
	r.table.Enter(global)
	return depth
}

func (r *Resolver) ensureGlobal(unit ast.UnitID) ScopeID {
	if scope, ok := r.result.Units[unit]; ok {
		return scope
	}
	span := source.Span{}
	if u := r.b.Units.Get(unit); u != nil {
		span = u.Span
	}
	scope := r.table.NewRoot(unit, span)
	r.result.Units[unit] = scope
	return scope
}

func (r *Resolver) resolveImport(ctx walkCtx, id ast.DeclID) {
	decl := r.b.Decls.Get(id)
	data, ok := r.b.Decls.Import(id)
	if !ok {
		return
	}
	r.result.DeclScope[id] = r.table.Current()
	if !data.Target.IsValid() || r.b.Units.Get(data.Target) == nil {
		r.report(diag.ScpUnresolvedImport, decl.Span, data.Path).Emit()
		return
	}
	if data.Target == ctx.unit || r.state[data.Target] == unitVisiting {
		r.report(diag.ScpImportCycle, decl.Span, data.Path).Emit()
		return
	}
	imported := r.ResolveUnit(data.Target)
	r.table.AttachImport(r.result.Units[ctx.unit], imported)
}

func (r *Resolver) name(id source.StringID) string {
	s, _ := r.b.Strings.Lookup(id)
	return s
}

func (r *Resolver) report(code diag.Code, span source.Span, args ...string) *diag.ReportBuilder {
	return diag.ReportError(r.reporter, code, span, args...)
}

// bind binds key in the current scope, reporting a redeclaration when the
// key is taken.
func (r *Resolver) bind(key Key, id ast.DeclID) bool {
	decl := r.b.Decls.Get(id)
	if err := r.table.Bind(key, id); err != nil {
		b := r.report(diag.ScpRedeclared, decl.Span, string(key))
		var bound *BoundError
		if errors.As(err, &bound) {
			if prev := r.b.Decls.Get(bound.Existing); prev != nil {
				b.WithNote(prev.Span, "first declared here")
			}
		}
		b.Emit()
		return false
	}
	r.result.DeclScope[id] = r.table.Current()
	r.result.Keys[id] = key
	return true
}

func (r *Resolver) bindName(_ walkCtx, id ast.DeclID) bool {
	decl := r.b.Decls.Get(id)
	return r.bind(NameKey(r.name(decl.Name)), id)
}

// shadowed returns the class, enum, global, enum constant or function that
// a new local-like binding of name would hide.
func (r *Resolver) shadowed(name string) ast.DeclID {
	if d, ok := r.table.LookupChain(NameKey(name)); ok {
		switch r.b.Decls.Get(d).Kind {
		case ast.DeclClass, ast.DeclEnum, ast.DeclGlobal, ast.DeclEnumConst:
			return d
		}
	}
	for _, d := range r.table.Overloads(r.table.Current(), name) {
		if r.b.Decls.Get(d).Kind == ast.DeclFunction {
			return d
		}
	}
	return ast.NoDeclID
}

// signatureKey encodes the parameter types of a callable. Named types are
// classified by lookup; the callable's own template parameters are matched
// by name since they are not bound yet.
func (r *Resolver) signatureKey(id ast.DeclID) Key {
	decl := r.b.Decls.Get(id)
	fn, _ := r.b.Decls.Fn(id)
	own := make(map[string]struct{}, len(fn.TypeParams))
	for _, tp := range fn.TypeParams {
		own[r.name(r.b.Decls.Get(tp).Name)] = struct{}{}
	}
	codes := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		codes = append(codes, r.sigCode(r.b.Decls.Get(p).Type, own))
	}
	return SigKey(r.name(decl.Name), codes)
}

func (r *Resolver) sigCode(te ast.TypeExprID, own map[string]struct{}) string {
	t := r.b.Types.Get(te)
	if t == nil {
		return "?"
	}
	switch t.Kind {
	case ast.TypeExprNamed:
		name := r.name(t.Name)
		if kind, ok := types.BuiltinKind(name); ok {
			return string(kind.Code())
		}
		if _, ok := own[name]; ok {
			return string(types.KindTemplateParam.Code()) + "<" + name + ">"
		}
		if d, ok := r.table.LookupChain(NameKey(name)); ok {
			switch r.b.Decls.Get(d).Kind {
			case ast.DeclClass:
				return string(types.KindClass.Code()) + "<" + name + ">"
			case ast.DeclEnum:
				return string(types.KindEnum.Code()) + "<" + name + ">"
			case ast.DeclTemplateParam:
				return string(types.KindTemplateParam.Code()) + "<" + name + ">"
			}
		}
		return "?<" + name + ">"
	case ast.TypeExprList, ast.TypeExprArray:
		code := types.KindList.Code()
		if t.Kind == ast.TypeExprArray {
			code = types.KindArray.Code()
		}
		return string(code) + strconv.Itoa(int(t.Dims)) + "<" + r.sigCode(t.Base, own) + ">"
	case ast.TypeExprTuple, ast.TypeExprUnion:
		code, sep := types.KindTuple.Code(), ","
		if t.Kind == ast.TypeExprUnion {
			code, sep = types.KindMulti.Code(), "|"
		}
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = r.sigCode(e, own)
		}
		return string(code) + "<" + strings.Join(parts, sep) + ">"
	}
	return "?"
}

// closeScope closes the current scope, which must be expected. Debug builds
// panic on a mismatch.
func (r *Resolver) closeScope(expected ScopeID) {
	if top := r.table.Current(); debugResolver && expected.IsValid() && top != expected {
		panic("resolver closes scope " + strconv.FormatUint(uint64(top), 10) +
			", expected " + strconv.FormatUint(uint64(expected), 10))
	}
	r.table.Close()
}
