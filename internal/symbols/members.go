package symbols

import (
	"slices"

	"sable/internal/ast"
)

// Ancestors returns the base chain of class from its immediate base to the
// root.
func (r *Result) Ancestors(class ast.DeclID) []ast.DeclID {
	var out []ast.DeclID
	for cur := r.Bases[class]; cur.IsValid() && cur != class; cur = r.Bases[cur] {
		if slices.Contains(out, cur) {
			break
		}
		out = append(out, cur)
	}
	return out
}

// IsAncestor reports whether anc is in the base chain of class.
func (r *Result) IsAncestor(anc, class ast.DeclID) bool {
	return slices.Contains(r.Ancestors(class), anc)
}

// Member looks up a field of class, including flattened base fields.
func (r *Result) Member(class ast.DeclID, name string) (ast.DeclID, bool) {
	return r.Table.Scopes.Get(r.ScopeOfDecl[class]).Lookup(NameKey(name))
}

// MethodCandidates returns the methods named name of class and its
// ancestors. An override hides the ancestor method with the same key.
func (r *Result) MethodCandidates(class ast.DeclID, name string) []ast.DeclID {
	var out []ast.DeclID
	seen := make(map[Key]struct{})
	for _, c := range append([]ast.DeclID{class}, r.Ancestors(class)...) {
		out = r.appendUnseen(out, seen, r.Table.LocalOverloads(r.ScopeOfDecl[c], name))
	}
	return out
}

// CallCandidates returns the callables an unqualified call of name may
// target from scope: the lexical chain and import chain first, then the
// methods of the ancestors of class when the call is inside a class.
func (r *Result) CallCandidates(scope ScopeID, class ast.DeclID, name string) []ast.DeclID {
	seen := make(map[Key]struct{})
	out := r.appendUnseen(nil, seen, r.Table.Overloads(scope, name))
	if class.IsValid() {
		for _, anc := range r.Ancestors(class) {
			out = r.appendUnseen(out, seen, r.Table.LocalOverloads(r.ScopeOfDecl[anc], name))
		}
	}
	return out
}

func (r *Result) appendUnseen(out []ast.DeclID, seen map[Key]struct{}, ids []ast.DeclID) []ast.DeclID {
	for _, id := range ids {
		key := r.Keys[id]
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Overrides returns the ancestor method that method overrides, if any.
func (r *Result) Overrides(method, class ast.DeclID) (ast.DeclID, bool) {
	key, ok := r.Keys[method]
	if !ok {
		return ast.NoDeclID, false
	}
	for _, anc := range r.Ancestors(class) {
		if d, ok := r.Table.Scopes.Get(r.ScopeOfDecl[anc]).Lookup(key); ok {
			return d, true
		}
	}
	return ast.NoDeclID, false
}
