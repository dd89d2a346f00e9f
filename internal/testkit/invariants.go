package testkit

import (
	"errors"
	"fmt"

	"sable/internal/ast"
)

// CheckTreeInvariants runs a minimal set of structural checks on a unit:
// 1) every top-level declaration has the kind its slot implies
// 2) members, parameters, constants and template params point back at their owner
// 3) every declaration span is non-empty and lies in the unit's file
func CheckTreeInvariants(b *ast.Builder, unit ast.UnitID) error {
	if b == nil {
		return fmt.Errorf("nil builder")
	}
	u := b.Units.Get(unit)
	if u == nil {
		return fmt.Errorf("unit %d not found", unit)
	}
	var errs []error
	check := func(id ast.DeclID, want ast.DeclKind, owner ast.DeclID) {
		d := b.Decls.Get(id)
		if d == nil {
			errs = append(errs, fmt.Errorf("nil decl for id=%d", id))
			return
		}
		if want != ast.DeclInvalid && d.Kind != want {
			errs = append(errs, fmt.Errorf("decl %d: kind %s, want %s", id, d.Kind, want))
		}
		if d.Owner != owner {
			errs = append(errs, fmt.Errorf("decl %d (%s): owner %d, want %d", id, b.NameOf(id), d.Owner, owner))
		}
		if d.Span.Empty() {
			errs = append(errs, fmt.Errorf("decl %d (%s): empty span", id, b.NameOf(id)))
		} else if d.Span.File != u.File {
			errs = append(errs, fmt.Errorf("decl %d (%s): span file %d, unit file %d", id, b.NameOf(id), d.Span.File, u.File))
		}
	}
	callable := func(id ast.DeclID, kind ast.DeclKind, owner ast.DeclID) {
		check(id, kind, owner)
		fn, ok := b.Decls.Fn(id)
		if !ok {
			return
		}
		for _, p := range fn.Params {
			check(p, ast.DeclParam, id)
		}
		for _, tp := range fn.TypeParams {
			check(tp, ast.DeclTemplateParam, id)
		}
	}

	for _, id := range u.Imports {
		check(id, ast.DeclImport, ast.NoDeclID)
	}
	for _, id := range u.Enums {
		check(id, ast.DeclEnum, ast.NoDeclID)
		if data, ok := b.Decls.Enum(id); ok {
			for _, c := range data.Consts {
				check(c, ast.DeclEnumConst, id)
			}
		}
	}
	for _, id := range u.Globals {
		check(id, ast.DeclGlobal, ast.NoDeclID)
	}
	for _, id := range u.Classes {
		check(id, ast.DeclClass, ast.NoDeclID)
		data, ok := b.Decls.Class(id)
		if !ok {
			continue
		}
		for _, f := range data.Fields {
			check(f, ast.DeclField, id)
		}
		for _, m := range data.Methods {
			callable(m, ast.DeclMethod, id)
		}
		for _, tp := range data.TypeParams {
			check(tp, ast.DeclTemplateParam, id)
		}
	}
	for _, id := range u.Functions {
		callable(id, ast.DeclFunction, ast.NoDeclID)
	}
	if u.Main.IsValid() {
		callable(u.Main, ast.DeclFunction, ast.NoDeclID)
	}
	return errors.Join(errs...)
}
