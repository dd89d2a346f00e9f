package symbols

import (
	"errors"

	"sable/internal/ast"
	"sable/internal/diag"
)

func (r *Resolver) declareEnum(ctx walkCtx, id ast.DeclID) {
	r.bindName(ctx, id)
	data, ok := r.b.Decls.Enum(id)
	if !ok {
		return
	}
	for _, c := range data.Consts {
		r.declareVar(ctx, c)
	}
}

// declareVar handles locals, globals, fields, parameters and enum constants.
// The initializer is walked before the name is bound so a reference to the
// name itself is caught as a self-assignment.
func (r *Resolver) declareVar(ctx walkCtx, id ast.DeclID) {
	decl := r.b.Decls.Get(id)
	if decl == nil {
		return
	}
	if decl.Type.IsValid() {
		r.resolveTypeExpr(ctx, decl.Type)
	}
	if decl.Init.IsValid() {
		inner := ctx
		inner.declaring = decl.Name
		r.resolveExpr(inner, decl.Init)
	}
	name := r.name(decl.Name)
	key := NameKey(name)
	if prev, ok := r.table.LookupLocal(key); ok {
		b := r.report(diag.ScpRedeclared, decl.Span, name)
		if p := r.b.Decls.Get(prev); p != nil {
			b.WithNote(p.Span, "first declared here")
		}
		b.Emit()
		return
	}
	switch decl.Kind {
	case ast.DeclLocal, ast.DeclParam, ast.DeclField:
		if hidden := r.shadowed(name); hidden.IsValid() {
			h := r.b.Decls.Get(hidden)
			r.report(diag.ScpShadowsGlobal, decl.Span, name, h.Kind.String()).
				WithNote(h.Span, "declared here").
				Emit()
			return
		}
	}
	r.bind(key, id)
}

func (r *Resolver) declareTemplateParams(ctx walkCtx, params []ast.DeclID) {
	for _, tp := range params {
		r.bindName(ctx, tp)
	}
}

// declareCallable binds the signature key of a function or method in the
// current scope.
func (r *Resolver) declareCallable(_ walkCtx, id ast.DeclID) {
	if decl := r.b.Decls.Get(id); decl == nil || !decl.Kind.IsCallable() {
		return
	}
	r.bind(r.signatureKey(id), id)
}

// resolveCallableBody opens the callable's scope, binds template parameters
// and parameters in it and walks the body statements in the same scope.
func (r *Resolver) resolveCallableBody(ctx walkCtx, id ast.DeclID) {
	decl := r.b.Decls.Get(id)
	fn, ok := r.b.Decls.Fn(id)
	if !ok {
		return
	}
	scope := r.table.Open(ScopeFunction, id, decl.Span)
	defer r.closeScope(scope)
	r.result.ScopeOfDecl[id] = scope
	ctx.fn = id
	ctx.declaring = 0

	r.declareTemplateParams(ctx, fn.TypeParams)
	if decl.Type.IsValid() {
		r.resolveTypeExpr(ctx, decl.Type)
	}
	for _, p := range fn.Params {
		r.declareVar(ctx, p)
	}
	if fn.Body.IsValid() {
		r.walkBody(ctx, fn.Body)
	}
}

// resolveClass opens the class scope, binds template parameters, flattens
// the base class fields, binds own fields and method signatures and then
// walks method bodies.
func (r *Resolver) resolveClass(ctx walkCtx, id ast.DeclID) {
	decl := r.b.Decls.Get(id)
	data, ok := r.b.Decls.Class(id)
	if !ok {
		return
	}
	scope := r.table.Open(ScopeClass, id, decl.Span)
	defer r.closeScope(scope)
	r.result.ScopeOfDecl[id] = scope
	ctx.class = id
	ctx.fn = ast.NoDeclID

	r.declareTemplateParams(ctx, data.TypeParams)
	if data.Base.IsValid() {
		base := r.resolveTypeExpr(ctx, data.Base)
		switch {
		case !base.IsValid():
		case r.b.Decls.Get(base).Kind != ast.DeclClass:
			r.report(diag.ScpBaseNotClass, decl.Span, r.b.NameOf(base), r.name(decl.Name)).Emit()
		case r.cyclic[id]:
		default:
			r.result.Bases[id] = base
			r.flatten(decl, base)
		}
	}
	for _, f := range data.Fields {
		r.declareVar(ctx, f)
	}
	for _, m := range data.Methods {
		r.declareCallable(ctx, m)
	}
	for _, m := range data.Methods {
		r.resolveCallableBody(ctx, m)
	}
}

// flatten copies the field bindings of base (own and inherited) into the
// current class scope. Only the class's template parameters are bound at
// this point, so a clash is an inherited field named like one of them.
func (r *Resolver) flatten(cls *ast.Decl, base ast.DeclID) {
	src := r.table.Scopes.Get(r.result.ScopeOfDecl[base])
	if src == nil {
		return
	}
	for _, key := range src.Keys {
		d := src.Entries[key]
		if r.b.Decls.Get(d).Kind != ast.DeclField {
			continue
		}
		err := r.table.Bind(key, d)
		var bound *BoundError
		if !errors.As(err, &bound) {
			continue
		}
		b := r.report(diag.ScpRedeclared, cls.Span, string(key))
		if prev := r.b.Decls.Get(bound.Existing); prev != nil {
			b.WithNote(prev.Span, "first declared here")
		}
		b.WithNote(r.b.Decls.Get(d).Span, "inherited field declared here").Emit()
	}
}

// classOrder sorts classes so that a base declared in the same unit comes
// before its subclasses. Classes on an inheritance cycle are reported and
// keep their declaration order.
func (r *Resolver) classOrder(classes []ast.DeclID) []ast.DeclID {
	const (
		white = iota
		grey
		black
	)
	inUnit := make(map[ast.DeclID]bool, len(classes))
	for _, c := range classes {
		inUnit[c] = true
	}
	color := make(map[ast.DeclID]int, len(classes))
	out := make([]ast.DeclID, 0, len(classes))
	var visit func(c ast.DeclID)
	visit = func(c ast.DeclID) {
		switch color[c] {
		case black:
			return
		case grey:
			if !r.cyclic[c] {
				r.cyclic[c] = true
				decl := r.b.Decls.Get(c)
				r.report(diag.ScpInheritanceCycle, decl.Span, r.name(decl.Name)).Emit()
			}
			return
		}
		color[c] = grey
		if base := r.baseCandidate(c); inUnit[base] {
			visit(base)
		}
		color[c] = black
		out = append(out, c)
	}
	for _, c := range classes {
		visit(c)
	}
	r.result.Order = append(r.result.Order, out...)
	return out
}

// baseCandidate looks up the base class name of c in the current (global)
// scope without recording anything.
func (r *Resolver) baseCandidate(c ast.DeclID) ast.DeclID {
	data, ok := r.b.Decls.Class(c)
	if !ok || !data.Base.IsValid() {
		return ast.NoDeclID
	}
	t := r.b.Types.Get(data.Base)
	if t == nil || t.Kind != ast.TypeExprNamed {
		return ast.NoDeclID
	}
	d, _ := r.table.LookupChain(NameKey(r.name(t.Name)))
	return d
}
