package astio

import (
	"errors"
	"fmt"
	"path/filepath"

	"sable/internal/ast"
	"sable/internal/source"
)

// ErrMalformed wraps every structural problem found while building a tree.
var ErrMalformed = errors.New("malformed tree")

// Loader rebuilds documents inside one Builder. Units are keyed by path, so
// loading a second document that imports an already loaded unit reuses it.
type Loader struct {
	B     *ast.Builder
	Files *source.FileSet
	// Resolve supplies a unit that an import names but the document lacks.
	// A nil hook, or a nil unit, leaves the import dangling for the resolver
	// to report.
	Resolve func(path string) (*Unit, error)

	units map[string]ast.UnitID
}

// NewLoader creates a loader with a fresh builder and file set.
func NewLoader() *Loader {
	return &Loader{
		B:     ast.NewBuilder(ast.Hints{}, nil),
		Files: source.NewFileSet(),
		units: make(map[string]ast.UnitID),
	}
}

// unitBuild carries the file whose spans are being built.
type unitBuild struct {
	l    *Loader
	file source.FileID
	path string
}

type buildError struct {
	where string
	msg   string
}

func (e *buildError) Error() string { return e.where + ": " + e.msg }
func (e *buildError) Unwrap() error { return ErrMalformed }

func (ub *unitBuild) fail(what string, sp Span, format string, args ...any) {
	panic(&buildError{
		where: fmt.Sprintf("%s:%d:%d: %s", ub.path, sp.Line, sp.Col, what),
		msg:   fmt.Sprintf(format, args...),
	})
}

// catch turns a build panic back into an error.
func catch(err *error) {
	if r := recover(); r != nil {
		be, ok := r.(*buildError)
		if !ok {
			panic(r)
		}
		*err = be
	}
}

// Load builds every unit of doc and returns the root unit.
func (l *Loader) Load(doc *Document) (root ast.UnitID, err error) {
	if doc == nil || len(doc.Units) == 0 {
		return ast.NoUnitID, fmt.Errorf("%w: empty document", ErrMalformed)
	}
	defer catch(&err)
	byPath := make(map[string]*Unit, len(doc.Units))
	for _, u := range doc.Units[1:] {
		if u != nil {
			byPath[cleanPath(u.Path)] = u
		}
	}
	return l.unit(doc.Units[0], byPath, false), nil
}

// NewUnit registers an empty unit, the target of interactive submissions.
func (l *Loader) NewUnit(path string) ast.UnitID {
	if l.units == nil {
		l.units = make(map[string]ast.UnitID)
	}
	file := l.Files.Add(path, source.FileVirtual)
	id := l.B.NewUnit(file, source.At(file, 1, 1))
	l.units[cleanPath(path)] = id
	return id
}

func cleanPath(p string) string { return filepath.ToSlash(filepath.Clean(p)) }

// Added is what AddTopLevel appended: either a declaration or a statement.
type Added struct {
	Decl ast.DeclID
	Stmt ast.StmtID
}

// AddTopLevel builds one declaration or statement and appends it to unit.
func (l *Loader) AddTopLevel(unit ast.UnitID, top *TopLevel) (added Added, err error) {
	u := l.B.Units.Get(unit)
	if u == nil || top == nil {
		return Added{}, fmt.Errorf("%w: nothing to add", ErrMalformed)
	}
	defer catch(&err)
	ub := &unitBuild{l: l, file: u.File, path: l.Files.Display(u.File)}
	if top.Stmt != nil {
		added.Stmt = ub.stmt(top.Stmt)
		l.B.AddStmt(unit, added.Stmt)
		return added, nil
	}
	var id ast.DeclID
	switch {
	case top.Import != nil:
		id = ub.importDecl(top.Import, nil)
		l.B.AddImport(unit, id)
	case top.Enum != nil:
		id = ub.enum(top.Enum)
		l.B.AddEnum(unit, id)
	case top.Global != nil:
		id = ub.variable(ast.DeclGlobal, top.Global)
		l.B.AddGlobal(unit, id)
	case top.Class != nil:
		id = ub.class(top.Class)
		l.B.AddClass(unit, id)
	case top.Function != nil:
		id = ub.fn(ast.DeclFunction, top.Function)
		l.B.AddFunction(unit, id)
	case top.Main != nil:
		id = ub.fn(ast.DeclFunction, top.Main)
		l.B.SetMain(unit, id)
	default:
		return Added{}, fmt.Errorf("%w: empty declaration", ErrMalformed)
	}
	added.Decl = id
	return added, nil
}

func (l *Loader) unit(u *Unit, byPath map[string]*Unit, imported bool) ast.UnitID {
	if l.units == nil {
		l.units = make(map[string]ast.UnitID)
	}
	flags := source.FileFlags(0)
	if imported {
		flags = source.FileImported
	}
	key := cleanPath(u.Path)
	if id, ok := l.units[key]; ok {
		return id
	}
	file := l.Files.Add(key, flags)
	id := l.B.NewUnit(file, source.At(file, 1, 1))
	l.units[key] = id

	ub := &unitBuild{l: l, file: file, path: key}
	for _, imp := range u.Imports {
		l.B.AddImport(id, ub.importDecl(imp, byPath))
	}
	for _, e := range u.Enums {
		l.B.AddEnum(id, ub.enum(e))
	}
	for _, g := range u.Globals {
		l.B.AddGlobal(id, ub.variable(ast.DeclGlobal, g))
	}
	for _, c := range u.Classes {
		l.B.AddClass(id, ub.class(c))
	}
	for _, f := range u.Functions {
		l.B.AddFunction(id, ub.fn(ast.DeclFunction, f))
	}
	if u.Main != nil {
		l.B.SetMain(id, ub.fn(ast.DeclFunction, u.Main))
	}
	return id
}

func (ub *unitBuild) span(sp Span) source.Span {
	out := source.At(ub.file, sp.Line, sp.Col)
	if sp.EndLine != 0 {
		out.End = source.LineCol{Line: sp.EndLine, Col: sp.EndCol}
	}
	return out
}

func (ub *unitBuild) name(s string) source.StringID { return ub.l.B.Name(s) }

func (ub *unitBuild) mods(what string, sp Span, names []string) ast.Modifiers {
	var out ast.Modifiers
	for _, n := range names {
		m, ok := ast.ParseModifier(n)
		if !ok {
			ub.fail(what, sp, "unknown modifier %q", n)
		}
		out |= m
	}
	return out
}

// importDecl links the import to a unit of the same document or, failing
// that, one supplied by Resolve.
func (ub *unitBuild) importDecl(imp *Import, byPath map[string]*Unit) ast.DeclID {
	l := ub.l
	target := ast.NoUnitID
	key := cleanPath(imp.Path)
	if id, ok := l.units[key]; ok {
		target = id
	} else if u, ok := byPath[key]; ok {
		target = l.unit(u, byPath, true)
	} else if l.Resolve != nil {
		u, err := l.Resolve(imp.Path)
		if err != nil {
			ub.fail("import", imp.Span, "%v", err)
		}
		if u != nil {
			target = l.unit(u, byPath, true)
		}
	}
	return l.B.Decls.NewImport(ub.span(imp.Span), ub.name(imp.Path), imp.Path, target)
}

func (ub *unitBuild) enum(e *Enum) ast.DeclID {
	consts := make([]ast.DeclID, len(e.Consts))
	for i, c := range e.Consts {
		consts[i] = ub.l.B.Decls.NewVar(ast.DeclEnumConst, ub.span(c.Span), ub.name(c.Name), ast.NoTypeExprID, ast.NoExprID, ast.ModConst)
	}
	return ub.l.B.Decls.NewEnum(ub.span(e.Span), ub.name(e.Name), consts, ub.mods("enum "+e.Name, e.Span, e.Mods))
}

func (ub *unitBuild) variable(kind ast.DeclKind, v *Var) ast.DeclID {
	if v == nil {
		ub.fail(kind.String(), Span{}, "missing declaration")
	}
	if v.Name == "" {
		ub.fail(kind.String(), v.Span, "missing name")
	}
	return ub.l.B.Decls.NewVar(kind, ub.span(v.Span), ub.name(v.Name), ub.typ(v.Type), ub.expr(v.Init), ub.mods(v.Name, v.Span, v.Mods))
}

func (ub *unitBuild) typeParams(tps []*TypeParam) []ast.DeclID {
	if len(tps) == 0 {
		return nil
	}
	out := make([]ast.DeclID, len(tps))
	for i, tp := range tps {
		c, ok := parseConstraint(tp.Constraint)
		if !ok {
			ub.fail("template parameter "+tp.Name, tp.Span, "unknown constraint %q", tp.Constraint)
		}
		out[i] = ub.l.B.Decls.NewTemplateParam(ub.span(tp.Span), ub.name(tp.Name), c)
	}
	return out
}

func parseConstraint(s string) (ast.Constraint, bool) {
	switch s {
	case "", "none", "any":
		return ast.ConstraintNone, true
	case "discrete":
		return ast.ConstraintDiscrete, true
	case "scalar":
		return ast.ConstraintScalar, true
	case "class":
		return ast.ConstraintClass, true
	}
	return ast.ConstraintNone, false
}

func (ub *unitBuild) fn(kind ast.DeclKind, f *Func) ast.DeclID {
	params := make([]ast.DeclID, len(f.Params))
	for i, p := range f.Params {
		params[i] = ub.variable(ast.DeclParam, p)
	}
	body := ast.NoStmtID
	if !f.NoBody {
		body = ub.block(f.Span, f.Body)
	}
	id := ub.l.B.Decls.NewFn(kind, ub.span(f.Span), ub.name(f.Name), params, ub.typ(f.Ret), body, ub.mods(f.Name, f.Span, f.Mods))
	if tps := ub.typeParams(f.TypeParams); len(tps) > 0 {
		ub.l.B.Decls.SetTypeParams(id, tps)
	}
	return id
}

func (ub *unitBuild) class(c *Class) ast.DeclID {
	fields := make([]ast.DeclID, len(c.Fields))
	for i, f := range c.Fields {
		fields[i] = ub.variable(ast.DeclField, f)
	}
	methods := make([]ast.DeclID, len(c.Methods))
	for i, m := range c.Methods {
		methods[i] = ub.fn(ast.DeclMethod, m)
	}
	id := ub.l.B.Decls.NewClass(ub.span(c.Span), ub.name(c.Name), ub.typ(c.Base), fields, methods, ub.mods(c.Name, c.Span, c.Mods))
	if tps := ub.typeParams(c.TypeParams); len(tps) > 0 {
		ub.l.B.Decls.SetTypeParams(id, tps)
	}
	return id
}

func (ub *unitBuild) typ(t *Type) ast.TypeExprID {
	if t == nil {
		return ast.NoTypeExprID
	}
	types := ub.l.B.Types
	sp := ub.span(t.Span)
	switch t.Kind {
	case "named":
		if t.Name == "" {
			ub.fail("type", t.Span, "named type without a name")
		}
		return types.NewNamed(sp, ub.name(t.Name), ub.typs(t.Args))
	case "list", "array":
		if t.Base == nil {
			ub.fail("type", t.Span, "%s type without a base", t.Kind)
		}
		if t.Kind == "list" {
			return types.NewList(sp, ub.typ(t.Base), t.Dims)
		}
		return types.NewArray(sp, ub.typ(t.Base), t.Dims)
	case "tuple":
		return types.NewTuple(sp, ub.typs(t.Elems))
	case "union":
		if len(t.Elems) < 2 {
			ub.fail("type", t.Span, "union needs at least two members")
		}
		return types.NewUnion(sp, ub.typs(t.Elems))
	}
	ub.fail("type", t.Span, "unknown type kind %q", t.Kind)
	return ast.NoTypeExprID
}

func (ub *unitBuild) typs(ts []*Type) []ast.TypeExprID {
	if len(ts) == 0 {
		return nil
	}
	out := make([]ast.TypeExprID, len(ts))
	for i, t := range ts {
		out[i] = ub.typ(t)
	}
	return out
}
