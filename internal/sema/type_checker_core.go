package sema

import (
	"strconv"

	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/source"
	"sable/internal/symbols"
	"sable/internal/trace"
	"sable/internal/types"
)

// TypeChecker assigns types to expressions and declarations. It is kept
// alive across submissions in interactive mode.
type TypeChecker struct {
	builder  *ast.Builder
	reporter diag.Reporter
	symbols  *symbols.Result
	table    *symbols.Table
	types    *types.Interner
	result   *Result
	tracer   trace.Tracer
	parent   uint64 // span of the pass
	unitSpan uint64 // span of the unit being checked

	typeCache map[ast.TypeExprID]types.TypeID
}

// checkCtx is the walk context threaded through every call.
type checkCtx struct {
	unit  ast.UnitID
	class ast.DeclID // innermost enclosing class
	fn    ast.DeclID // innermost enclosing function or method
}

// NewTypeChecker prepares a checker over a resolved program.
func NewTypeChecker(builder *ast.Builder, opts Options) *TypeChecker {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	res := newResult(opts.Types)
	tc := &TypeChecker{
		builder:   builder,
		reporter:  reporter,
		symbols:   opts.Symbols,
		types:     res.TypeInterner,
		result:    res,
		tracer:    tracer,
		parent:    opts.TraceParent,
		typeCache: make(map[ast.TypeExprID]types.TypeID),
	}
	if opts.Symbols != nil {
		tc.table = opts.Symbols.Table
	}
	return tc
}

// Result returns the annotations collected so far.
func (tc *TypeChecker) Result() *Result { return tc.result }

// CheckUnit checks globals, classes (base-first), functions, main and the
// top-level statements of a unit.
func (tc *TypeChecker) CheckUnit(unit ast.UnitID) {
	u := tc.builder.Units.Get(unit)
	if u == nil || tc.symbols == nil {
		return
	}
	span := trace.Begin(tc.tracer, trace.ScopeModule, "typecheck_unit", tc.parent).
		WithExtra("unit", tc.unitName(unit))
	defer span.End("")
	tc.unitSpan = span.ID()

	depth := tc.table.Depth()
	tc.pushScope(tc.symbols.Units[unit])
	defer tc.table.Truncate(depth)

	ctx := checkCtx{unit: unit}
	for _, enum := range u.Enums {
		tc.checkEnum(enum)
	}
	for _, g := range u.Globals {
		tc.checkVarDecl(ctx, g)
	}
	for _, cls := range tc.unitClasses(u) {
		tc.checkClass(ctx, cls)
	}
	for _, fn := range u.Functions {
		tc.checkCallable(ctx, fn)
	}
	if u.Main.IsValid() {
		tc.checkCallable(ctx, u.Main)
	}
	for _, st := range u.Stmts {
		tc.checkStmt(ctx, st)
	}
}

// CheckDecl checks one top-level declaration of unit. Used by interactive
// sessions after the declaration has been resolved.
func (tc *TypeChecker) CheckDecl(unit ast.UnitID, id ast.DeclID) {
	decl := tc.builder.Decls.Get(id)
	if decl == nil || tc.symbols == nil {
		return
	}
	depth := tc.table.Depth()
	tc.pushScope(tc.symbols.Units[unit])
	defer tc.table.Truncate(depth)

	ctx := checkCtx{unit: unit}
	switch decl.Kind {
	case ast.DeclEnum:
		tc.checkEnum(id)
	case ast.DeclGlobal:
		tc.checkVarDecl(ctx, id)
	case ast.DeclClass:
		tc.checkClass(ctx, id)
	case ast.DeclFunction:
		tc.checkCallable(ctx, id)
	}
}

// CheckStmt checks one statement submitted at the top level of unit.
func (tc *TypeChecker) CheckStmt(unit ast.UnitID, id ast.StmtID) {
	if tc.builder.Stmts.Get(id) == nil || tc.symbols == nil {
		return
	}
	depth := tc.table.Depth()
	tc.pushScope(tc.symbols.Units[unit])
	defer tc.table.Truncate(depth)
	tc.checkStmt(checkCtx{unit: unit}, id)
}

// unitClasses returns the classes of u in base-first order.
func (tc *TypeChecker) unitClasses(u *ast.Unit) []ast.DeclID {
	own := make(map[ast.DeclID]struct{}, len(u.Classes))
	for _, c := range u.Classes {
		own[c] = struct{}{}
	}
	out := make([]ast.DeclID, 0, len(u.Classes))
	for _, c := range tc.symbols.Order {
		if _, ok := own[c]; ok {
			out = append(out, c)
			delete(own, c)
		}
	}
	return out
}

func (tc *TypeChecker) unitName(unit ast.UnitID) string {
	return "unit " + strconv.FormatUint(uint64(unit), 10)
}

func (tc *TypeChecker) name(id source.StringID) string {
	s, _ := tc.builder.Strings.Lookup(id)
	return s
}

func (tc *TypeChecker) label(t types.TypeID) string {
	return types.Label(tc.types, t)
}

func (tc *TypeChecker) report(code diag.Code, span source.Span, args ...string) *diag.ReportBuilder {
	return diag.ReportError(tc.reporter, code, span, args...)
}

func (tc *TypeChecker) errorf(code diag.Code, span source.Span, args ...string) {
	tc.report(code, span, args...).Emit()
}

// nominal returns the type introduced by a class, enum or template
// parameter declaration, registering it on first use. Class parameters and
// the base class are filled in right after registration so that a class
// referring to itself through its base sees the same type.
func (tc *TypeChecker) nominal(id ast.DeclID) types.TypeID {
	if t, ok := tc.result.Nominal[id]; ok {
		return t
	}
	decl := tc.builder.Decls.Get(id)
	if decl == nil {
		return types.NoTypeID
	}
	name := tc.name(decl.Name)
	var t types.TypeID
	switch decl.Kind {
	case ast.DeclEnum:
		t = tc.types.RegisterEnum(name, id)
		tc.result.Nominal[id] = t
	case ast.DeclTemplateParam:
		data, _ := tc.builder.Decls.TemplateParam(id)
		t = tc.types.RegisterParam(name, id, data.Constraint)
		tc.result.Nominal[id] = t
	case ast.DeclClass:
		t = tc.types.RegisterClass(name, id)
		tc.result.Nominal[id] = t
		if params := tc.builder.Decls.TypeParamsOf(id); len(params) > 0 {
			ids := make([]types.TypeID, len(params))
			for i, p := range params {
				ids[i] = tc.nominal(p)
			}
			tc.types.SetClassParams(t, ids)
		}
		if _, ok := tc.symbols.Bases[id]; ok {
			data, _ := tc.builder.Decls.Class(id)
			if base := tc.typeOf(data.Base); tc.types.KindOf(base) == types.KindClass {
				tc.types.SetClassBase(t, base)
			}
		}
	default:
		return types.NoTypeID
	}
	return t
}

// typeOf converts a type expression into a type. Unresolved names yield
// NoTypeID; the resolver has already reported them.
func (tc *TypeChecker) typeOf(id ast.TypeExprID) types.TypeID {
	if !id.IsValid() {
		return types.NoTypeID
	}
	if t, ok := tc.typeCache[id]; ok {
		return t
	}
	t := tc.convertType(id)
	tc.typeCache[id] = t
	return t
}

func (tc *TypeChecker) convertType(id ast.TypeExprID) types.TypeID {
	te := tc.builder.Types.Get(id)
	if te == nil {
		return types.NoTypeID
	}
	switch te.Kind {
	case ast.TypeExprNamed:
		name := tc.name(te.Name)
		if t, ok := tc.types.Builtin(name); ok {
			return t
		}
		decl, ok := tc.symbols.TypeRefs[id]
		if !ok {
			return types.NoTypeID
		}
		t := tc.nominal(decl)
		if tc.types.KindOf(t) != types.KindClass || len(te.Args) == 0 {
			return t
		}
		return tc.instantiate(te, decl, t)
	case ast.TypeExprList, ast.TypeExprArray:
		elem := tc.typeOf(te.Base)
		if te.Kind == ast.TypeExprList {
			return tc.listOf(types.KindList, elem, te.Dims)
		}
		return tc.listOf(types.KindArray, elem, te.Dims)
	case ast.TypeExprTuple:
		return tc.types.MakeTuple(tc.typesOf(te.Elems))
	case ast.TypeExprUnion:
		return tc.types.MakeMulti(tc.typesOf(te.Elems))
	}
	return types.NoTypeID
}

func (tc *TypeChecker) typesOf(ids []ast.TypeExprID) []types.TypeID {
	out := make([]types.TypeID, len(ids))
	for i, id := range ids {
		out[i] = tc.typeOf(id)
	}
	return out
}

// instantiate checks the template arguments of a class reference against
// the parameters' count and constraints.
func (tc *TypeChecker) instantiate(te *ast.TypeExpr, decl ast.DeclID, generic types.TypeID) types.TypeID {
	params := tc.builder.Decls.TypeParamsOf(decl)
	if len(params) != len(te.Args) {
		tc.errorf(diag.TypTemplateArgCount, te.Span, tc.builder.NameOf(decl), strconv.Itoa(len(params)), strconv.Itoa(len(te.Args)))
		return generic
	}
	args := tc.typesOf(te.Args)
	for i, p := range params {
		tc.checkConstraint(p, args[i], tc.builder.Types.Get(te.Args[i]).Span)
	}
	return tc.types.Instantiate(generic, args)
}

func (tc *TypeChecker) checkConstraint(param ast.DeclID, arg types.TypeID, span source.Span) bool {
	data, ok := tc.builder.Decls.TemplateParam(param)
	if !ok || tc.types.Satisfies(data.Constraint, arg) {
		return true
	}
	tc.errorf(diag.TypConstraint, span, tc.builder.NameOf(param), tc.label(arg), data.Constraint.String())
	return false
}

// listOf builds a list or array type; a list of lists folds into one list
// with more dimensions.
func (tc *TypeChecker) listOf(kind types.Kind, elem types.TypeID, dims uint8) types.TypeID {
	if elem == types.NoTypeID {
		return types.NoTypeID
	}
	dims = max(dims, 1)
	if inner, ok := tc.types.Lookup(elem); ok && inner.Kind == kind {
		elem, dims = inner.Elem, dims+inner.Dims
	}
	if kind == types.KindArray {
		return tc.types.Intern(types.MakeArray(elem, dims))
	}
	return tc.types.Intern(types.MakeList(elem, dims))
}

// declType returns the type of a declaration: the declared or inferred type
// of a variable, the return type of a callable, or the nominal type of a
// class, enum or template parameter.
func (tc *TypeChecker) declType(id ast.DeclID) types.TypeID {
	if t, ok := tc.result.DeclTypes[id]; ok {
		return t
	}
	decl := tc.builder.Decls.Get(id)
	if decl == nil {
		return types.NoTypeID
	}
	var t types.TypeID
	switch decl.Kind {
	case ast.DeclLocal, ast.DeclGlobal, ast.DeclField, ast.DeclParam:
		if !decl.Type.IsValid() {
			// inferred from the initializer when the declaration is visited
			return types.NoTypeID
		}
		t = tc.typeOf(decl.Type)
	case ast.DeclEnumConst:
		t = tc.nominal(decl.Owner)
	case ast.DeclFunction, ast.DeclMethod:
		t = tc.types.Builtins().Void
		if decl.Type.IsValid() {
			t = tc.typeOf(decl.Type)
		}
	case ast.DeclClass, ast.DeclEnum, ast.DeclTemplateParam:
		t = tc.nominal(id)
	default:
		return types.NoTypeID
	}
	tc.result.DeclTypes[id] = t
	return t
}

// memberType returns the type of a field or the return type of a method as
// seen through recv, substituting the template arguments of the class that
// declares the member.
func (tc *TypeChecker) memberType(member ast.DeclID, recv types.TypeID) types.TypeID {
	return tc.throughReceiver(tc.declType(member), member, recv)
}

func (tc *TypeChecker) throughReceiver(t types.TypeID, member ast.DeclID, recv types.TypeID) types.TypeID {
	owner := tc.builder.Decls.Get(member).Owner
	if !owner.IsValid() || tc.types.KindOf(recv) != types.KindClass {
		return t
	}
	chain := append([]types.TypeID{recv}, tc.types.Ancestors(recv)...)
	for _, c := range chain {
		if tc.types.ClassDecl(c) != owner {
			continue
		}
		info, _ := tc.types.ClassInfo(c)
		if info.Generic == types.NoTypeID {
			return t
		}
		gen, _ := tc.types.ClassInfo(info.Generic)
		return tc.types.Substitute(t, gen.Params, info.Args)
	}
	return t
}
