package sema

import (
	"slices"
	"strings"

	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/symbols"
)

// checkClass validates the class header and its methods: the base may be
// neither final nor templated, final methods may not be overridden, and a
// concrete class must implement every abstract method it inherits.
func (mc *ModifierChecker) checkClass(id ast.DeclID) {
	decl := mc.builder.Decls.Get(id)
	data, ok := mc.builder.Decls.Class(id)
	if !ok {
		return
	}
	name := mc.builder.NameOf(id)
	if base, ok := mc.symbols.Bases[id]; ok {
		bdecl := mc.builder.Decls.Get(base)
		bname := mc.builder.NameOf(base)
		if bdecl.Mods.Has(ast.ModFinal) {
			mc.report(diag.ModFinalBase, decl.Span, bname, name).
				WithSuggestion(diag.SugRemoveFinal, bname).
				WithNote(bdecl.Span, "declared final here").
				Emit()
		}
		if len(mc.builder.Decls.TypeParamsOf(base)) > 0 {
			mc.report(diag.ModTemplatedBase, decl.Span, bname, name).Emit()
		}
	}
	abstract := decl.Mods.Has(ast.ModAbstract)
	for _, m := range data.Methods {
		mdecl := mc.builder.Decls.Get(m)
		if anc, ok := mc.symbols.Overrides(m, id); ok {
			mc.typed.Overrides[m] = anc
			if adecl := mc.builder.Decls.Get(anc); adecl.Mods.Has(ast.ModFinal) {
				mc.report(diag.ModFinalOverride, mdecl.Span, mc.builder.NameOf(m), mc.builder.NameOf(adecl.Owner)).
					WithNote(adecl.Span, "final method declared here").
					Emit()
			}
		}
		if fn, _ := mc.builder.Decls.Fn(m); !fn.Body.IsValid() && !abstract {
			mc.report(diag.ModBodilessConcrete, mdecl.Span, mc.builder.NameOf(m), name).Emit()
		}
	}
	if abstract {
		return
	}
	if missing := mc.unimplemented(id); len(missing) > 0 {
		list := strings.Join(missing, ", ")
		mc.report(diag.ModAbstractIncomplete, decl.Span, name, list).
			WithSuggestion(diag.SugImplement, list, name).
			Emit()
	}
}

// unimplemented walks the class chain from the root down: a bodiless method
// of an abstract class opens an obligation for its signature, a method with
// a body discharges it. What is left open is returned by name.
func (mc *ModifierChecker) unimplemented(class ast.DeclID) []string {
	levels := mc.symbols.Ancestors(class)
	chain := make([]ast.DeclID, 0, len(levels)+1)
	for i := len(levels) - 1; i >= 0; i-- {
		chain = append(chain, levels[i])
	}
	chain = append(chain, class)

	var order []symbols.Key
	open := make(map[symbols.Key]bool)
	for _, level := range chain {
		data, ok := mc.builder.Decls.Class(level)
		if !ok {
			continue
		}
		isAbstract := mc.builder.Decls.Get(level).Mods.Has(ast.ModAbstract)
		for _, m := range data.Methods {
			key, ok := mc.symbols.Keys[m]
			if !ok {
				continue
			}
			fn, _ := mc.builder.Decls.Fn(m)
			switch {
			case fn.Body.IsValid():
				open[key] = false
			case isAbstract:
				if !slices.Contains(order, key) {
					order = append(order, key)
				}
				open[key] = true
			}
		}
	}
	var names []string
	for _, key := range order {
		if open[key] {
			names = append(names, key.Name())
		}
	}
	return names
}
