package symbols

import (
	"errors"
	"fmt"
	"slices"

	"sable/internal/ast"
)

// Validate walks the scope arena checking structural invariants. Returns nil
// if everything is consistent; otherwise aggregates all detected issues.
func (t *Table) Validate() error {
	var errs []error

	// Parent and child backlinks.
	for scopeID, scope := range t.Scopes.All() {
		if scope.Kind == ScopeInvalid {
			errs = append(errs, fmt.Errorf("scope %d has invalid kind", scopeID))
		}
		if scope.Kind == ScopeGlobal && scope.Parent.IsValid() {
			errs = append(errs, fmt.Errorf("global scope %d has parent %d", scopeID, scope.Parent))
		}
		if scope.Kind != ScopeGlobal && !scope.Parent.IsValid() {
			errs = append(errs, fmt.Errorf("%s scope %d has no parent", scope.Kind, scopeID))
		}
		if scope.Parent.IsValid() {
			if t.Scopes.Get(scope.Parent) == nil || scope.Parent == scopeID {
				errs = append(errs, fmt.Errorf("scope %d has invalid parent %d", scopeID, scope.Parent))
				continue
			}
			if !slices.Contains(t.Scopes.Get(scope.Parent).Children, scopeID) {
				errs = append(errs, fmt.Errorf("scope %d parent %d missing backlink", scopeID, scope.Parent))
			}
		}
		for _, child := range scope.Children {
			if t.Scopes.Get(child) == nil || child == scopeID {
				errs = append(errs, fmt.Errorf("scope %d has invalid child %d", scopeID, child))
				continue
			}
			if t.Scopes.Get(child).Parent != scopeID {
				errs = append(errs, fmt.Errorf("scope %d child %d missing parent backlink", scopeID, child))
			}
		}
		if scope.Import.IsValid() {
			if t.Scopes.Get(scope.Import) == nil || t.Scopes.Get(scope.Import).Kind != ScopeGlobal {
				errs = append(errs, fmt.Errorf("scope %d imports non-global scope %d", scopeID, scope.Import))
			}
			if scope.Kind != ScopeGlobal {
				errs = append(errs, fmt.Errorf("%s scope %d carries an import link", scope.Kind, scopeID))
			}
		}
	}

	// Key order and overload index.
	for scopeID, scope := range t.Scopes.All() {
		if len(scope.Keys) != len(scope.Entries) {
			errs = append(errs, fmt.Errorf("scope %d lists %d keys for %d entries", scopeID, len(scope.Keys), len(scope.Entries)))
		}
		indexed := 0
		for name, keys := range scope.ByName {
			for _, key := range keys {
				if _, ok := scope.Entries[key]; !ok || key.Name() != name {
					errs = append(errs, fmt.Errorf("scope %d overload index %q references missing key %q", scopeID, name, key))
				}
				indexed++
			}
		}
		signatures := 0
		for key, decl := range scope.Entries {
			if !decl.IsValid() {
				errs = append(errs, fmt.Errorf("scope %d key %q bound to no declaration", scopeID, key))
			}
			if key.IsSignature() {
				signatures++
			}
		}
		if signatures != indexed {
			errs = append(errs, fmt.Errorf("scope %d has %d signature keys, %d indexed", scopeID, signatures, indexed))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// Check verifies the annotations of a resolve result against the table:
// every recorded binding is the one its scope holds, every scope-opening
// node points at a scope it owns, and every use targets a declaration.
func (r *Result) Check(b *ast.Builder) error {
	errs := []error{r.Table.Validate()}
	for id, key := range r.Keys {
		scope := r.Table.Scopes.Get(r.DeclScope[id])
		if got, ok := scope.Lookup(key); !ok || got != id {
			errs = append(errs, fmt.Errorf("decl %d bound as %q but scope %d holds %d", id, key, r.DeclScope[id], got))
		}
	}
	for id, scope := range r.ScopeOfDecl {
		if s := r.Table.Scopes.Get(scope); s == nil || s.Owner != id {
			errs = append(errs, fmt.Errorf("decl %d: scope %d has another owner", id, scope))
		}
	}
	for id, scope := range r.ScopeOfStmt {
		if s := r.Table.Scopes.Get(scope); s == nil || s.Stmt != id {
			errs = append(errs, fmt.Errorf("stmt %d: scope %d belongs to another statement", id, scope))
		}
	}
	for expr, decl := range r.Uses {
		if b.Decls.Get(decl) == nil {
			errs = append(errs, fmt.Errorf("expr %d uses missing decl %d", expr, decl))
		}
	}
	for cls, base := range r.Bases {
		if b.Decls.Get(base) == nil || b.Decls.Get(base).Kind != ast.DeclClass {
			errs = append(errs, fmt.Errorf("class %d has non-class base %d", cls, base))
		}
	}
	return errors.Join(errs...)
}
