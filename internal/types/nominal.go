package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"sable/internal/ast"
)

// ClassInfo stores metadata for a class type. Instances of a templated class
// keep a link to the generic class and their concrete arguments.
type ClassInfo struct {
	Name    string
	Decl    ast.DeclID
	Base    TypeID
	Params  []TypeID
	Generic TypeID
	Args    []TypeID
}

// EnumInfo stores metadata for an enum type.
type EnumInfo struct {
	Name string
	Decl ast.DeclID
}

// ParamInfo stores metadata for a template parameter.
type ParamInfo struct {
	Name       string
	Decl       ast.DeclID
	Constraint ast.Constraint
}

// RegisterClass allocates a nominal class type.
func (in *Interner) RegisterClass(name string, decl ast.DeclID) TypeID {
	slot := appendSlot(&in.classes, ClassInfo{Name: name, Decl: decl})
	return in.internRaw(Type{Kind: KindClass, Payload: slot})
}

// SetClassBase records the immediate base class.
func (in *Interner) SetClassBase(id, base TypeID) {
	if info := in.classInfo(id); info != nil && id != base {
		info.Base = base
	}
}

// SetClassParams records the template parameters of a generic class.
func (in *Interner) SetClassParams(id TypeID, params []TypeID) {
	if info := in.classInfo(id); info != nil {
		info.Params = slices.Clone(params)
	}
}

// ClassInfo returns metadata for a class TypeID.
func (in *Interner) ClassInfo(id TypeID) (*ClassInfo, bool) {
	info := in.classInfo(id)
	return info, info != nil
}

// Instantiate returns the class instance of generic with the given
// arguments, creating it on first use.
func (in *Interner) Instantiate(generic TypeID, args []TypeID) TypeID {
	info := in.classInfo(generic)
	if info == nil {
		return NoTypeID
	}
	if len(args) == 0 {
		return generic
	}
	if info.Generic != NoTypeID {
		generic = info.Generic
		info = in.classInfo(generic)
	}
	for id := TypeID(1); int(id) < len(in.types); id++ {
		other := in.classInfo(id)
		if other != nil && other.Generic == generic && slices.Equal(other.Args, args) {
			return id
		}
	}
	inst := ClassInfo{
		Name:    info.Name,
		Decl:    info.Decl,
		Params:  info.Params,
		Generic: generic,
		Args:    slices.Clone(args),
	}
	slot := appendSlot(&in.classes, inst)
	return in.internRaw(Type{Kind: KindClass, Payload: slot})
}

// BaseOf returns the immediate base class. For instances the generic base
// is substituted with the instance arguments.
func (in *Interner) BaseOf(id TypeID) TypeID {
	info := in.classInfo(id)
	if info == nil {
		return NoTypeID
	}
	if info.Generic == NoTypeID {
		return info.Base
	}
	gen := in.classInfo(info.Generic)
	if gen == nil || gen.Base == NoTypeID {
		return NoTypeID
	}
	return in.Substitute(gen.Base, gen.Params, info.Args)
}

// Ancestors returns the base chain of id from its immediate base to the
// root, excluding id itself.
func (in *Interner) Ancestors(id TypeID) []TypeID {
	var out []TypeID
	seen := map[TypeID]struct{}{id: {}}
	for cur := in.BaseOf(id); cur != NoTypeID; cur = in.BaseOf(cur) {
		if _, dup := seen[cur]; dup {
			break
		}
		seen[cur] = struct{}{}
		out = append(out, cur)
	}
	return out
}

// IsAncestor reports whether anc appears in the base chain of id.
func (in *Interner) IsAncestor(anc, id TypeID) bool {
	for _, cur := range in.Ancestors(id) {
		if cur == anc || in.Equal(cur, anc) {
			return true
		}
	}
	return false
}

// ClassDecl returns the declaration behind a class type or instance.
func (in *Interner) ClassDecl(id TypeID) ast.DeclID {
	if info := in.classInfo(id); info != nil {
		return info.Decl
	}
	return ast.NoDeclID
}

// RegisterEnum allocates a nominal enum type.
func (in *Interner) RegisterEnum(name string, decl ast.DeclID) TypeID {
	slot := appendSlot(&in.enums, EnumInfo{Name: name, Decl: decl})
	return in.internRaw(Type{Kind: KindEnum, Payload: slot})
}

func (in *Interner) EnumInfo(id TypeID) (*EnumInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindEnum {
		return nil, false
	}
	return &in.enums[tt.Payload], true
}

// RegisterParam allocates a template parameter type.
func (in *Interner) RegisterParam(name string, decl ast.DeclID, c ast.Constraint) TypeID {
	slot := appendSlot(&in.params, ParamInfo{Name: name, Decl: decl, Constraint: c})
	return in.internRaw(Type{Kind: KindTemplateParam, Payload: slot})
}

func (in *Interner) ParamInfo(id TypeID) (*ParamInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTemplateParam {
		return nil, false
	}
	return &in.params[tt.Payload], true
}

// Substitute replaces every occurrence of params[i] in t with args[i].
func (in *Interner) Substitute(t TypeID, params, args []TypeID) TypeID {
	if len(params) == 0 || len(params) != len(args) {
		return t
	}
	return in.substitute(t, params, args, 0)
}

func (in *Interner) substitute(t TypeID, params, args []TypeID, depth int) TypeID {
	if depth > 16 {
		return t
	}
	tt, ok := in.Lookup(t)
	if !ok {
		return t
	}
	switch tt.Kind {
	case KindTemplateParam:
		if i := slices.Index(params, t); i >= 0 {
			return args[i]
		}
	case KindList, KindArray:
		elem := in.substitute(tt.Elem, params, args, depth+1)
		if elem != tt.Elem {
			tt.Elem = elem
			return in.Intern(tt)
		}
	case KindTuple:
		return in.MakeTuple(in.substituteAll(in.Elems(t), params, args, depth))
	case KindMulti:
		return in.MakeMulti(in.substituteAll(in.Elems(t), params, args, depth))
	case KindClass:
		info := in.classInfo(t)
		if info != nil && info.Generic != NoTypeID {
			return in.Instantiate(info.Generic, in.substituteAll(info.Args, params, args, depth))
		}
	}
	return t
}

func (in *Interner) substituteAll(ids, params, args []TypeID, depth int) []TypeID {
	out := make([]TypeID, len(ids))
	for i, id := range ids {
		out[i] = in.substitute(id, params, args, depth+1)
	}
	return out
}

func (in *Interner) classInfo(id TypeID) *ClassInfo {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindClass || int(tt.Payload) >= len(in.classes) {
		return nil
	}
	return &in.classes[tt.Payload]
}

func appendSlot[T any](table *[]T, v T) uint32 {
	*table = append(*table, v)
	slot, err := safecast.Conv[uint32](len(*table) - 1)
	if err != nil {
		panic(fmt.Errorf("type info overflow: %w", err))
	}
	return slot
}
