package symbols

import (
	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/types"
)

// resolveTypeExpr resolves the names inside a type expression and returns
// the declaration a named type refers to.
func (r *Resolver) resolveTypeExpr(ctx walkCtx, id ast.TypeExprID) ast.DeclID {
	return r.resolveTypeRef(ctx, id, diag.ScpUndeclaredType)
}

// resolveClassRef is resolveTypeExpr for positions that require a class.
func (r *Resolver) resolveClassRef(ctx walkCtx, id ast.TypeExprID) ast.DeclID {
	d := r.resolveTypeRef(ctx, id, diag.ScpUndeclaredClass)
	if d.IsValid() && r.b.Decls.Get(d).Kind != ast.DeclClass {
		r.report(diag.ScpUndeclaredClass, r.b.Types.Get(id).Span, r.b.NameOf(d)).Emit()
		return ast.NoDeclID
	}
	return d
}

func (r *Resolver) resolveTypeRef(ctx walkCtx, id ast.TypeExprID, missing diag.Code) ast.DeclID {
	t := r.b.Types.Get(id)
	if t == nil {
		return ast.NoDeclID
	}
	switch t.Kind {
	case ast.TypeExprNamed:
		for _, arg := range t.Args {
			r.resolveTypeExpr(ctx, arg)
		}
		name := r.name(t.Name)
		if _, ok := types.BuiltinKind(name); ok {
			return ast.NoDeclID
		}
		d, ok := r.table.LookupChain(NameKey(name))
		if ok {
			switch r.b.Decls.Get(d).Kind {
			case ast.DeclClass, ast.DeclEnum, ast.DeclTemplateParam:
				r.result.TypeRefs[id] = d
				return d
			}
		}
		b := r.report(missing, t.Span, name)
		if best, found := diag.Closest(name, r.typeNames(), 2); found {
			b.WithSuggestion(diag.SugDidYouMean, best)
		}
		b.Emit()
	case ast.TypeExprList, ast.TypeExprArray:
		r.resolveTypeExpr(ctx, t.Base)
	case ast.TypeExprTuple, ast.TypeExprUnion:
		for _, e := range t.Elems {
			r.resolveTypeExpr(ctx, e)
		}
	}
	return ast.NoDeclID
}

// typeNames lists builtin names and the visible classes, enums and template
// parameters.
func (r *Resolver) typeNames() []string {
	out := []string{"Int", "Char", "Bool", "String", "Text", "Real", "Void"}
	for _, name := range r.table.VisibleNames(r.table.Current()) {
		if d, ok := r.table.LookupChain(NameKey(name)); ok {
			switch r.b.Decls.Get(d).Kind {
			case ast.DeclClass, ast.DeclEnum, ast.DeclTemplateParam:
				out = append(out, name)
			}
		}
	}
	return out
}
