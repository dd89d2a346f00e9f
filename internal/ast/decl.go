package ast

import (
	"sable/internal/source"
)

// DeclKind is the closed set of declaration variants.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclLocal
	DeclGlobal
	DeclField
	DeclParam
	DeclEnumConst
	DeclFunction
	DeclMethod
	DeclClass
	DeclEnum
	DeclTemplateParam
	DeclImport
)

func (k DeclKind) String() string {
	switch k {
	case DeclLocal:
		return "local"
	case DeclGlobal:
		return "global"
	case DeclField:
		return "field"
	case DeclParam:
		return "param"
	case DeclEnumConst:
		return "enum constant"
	case DeclFunction:
		return "function"
	case DeclMethod:
		return "method"
	case DeclClass:
		return "class"
	case DeclEnum:
		return "enum"
	case DeclTemplateParam:
		return "template parameter"
	case DeclImport:
		return "import"
	default:
		return "invalid"
	}
}

// IsVariable reports whether the declaration binds a storage location.
func (k DeclKind) IsVariable() bool {
	switch k {
	case DeclLocal, DeclGlobal, DeclField, DeclParam, DeclEnumConst:
		return true
	}
	return false
}

// IsCallable reports whether the declaration is bound under a signature key.
func (k DeclKind) IsCallable() bool {
	return k == DeclFunction || k == DeclMethod
}

// Constraint restricts the category of a template argument.
type Constraint uint8

const (
	ConstraintNone Constraint = iota
	ConstraintDiscrete
	ConstraintScalar
	ConstraintClass
)

func (c Constraint) String() string {
	switch c {
	case ConstraintDiscrete:
		return "discrete"
	case ConstraintScalar:
		return "scalar"
	case ConstraintClass:
		return "class"
	default:
		return "any"
	}
}

// Decl is the shared header of every declaration. Variant data lives in the
// per-kind arenas referenced by Payload.
type Decl struct {
	Kind    DeclKind
	Name    source.StringID
	Type    TypeExprID // declared type; return type for functions and methods
	Init    ExprID
	Mods    Modifiers
	Owner   DeclID // enclosing class/function/enum, if any
	Span    source.Span
	Payload PayloadID
}

// FnData is the payload of functions and methods.
type FnData struct {
	Params     []DeclID
	TypeParams []DeclID
	Body       StmtID // NoStmtID for a bodiless (abstract) method
}

// ClassData is the payload of classes.
type ClassData struct {
	Base       TypeExprID
	TypeParams []DeclID
	Fields     []DeclID
	Methods    []DeclID
}

// EnumData is the payload of enums.
type EnumData struct {
	Consts []DeclID
}

// TemplateParamData is the payload of template parameters.
type TemplateParamData struct {
	Constraint Constraint
}

// ImportData is the payload of import declarations.
type ImportData struct {
	Path   string
	Target UnitID
}

// Decls manages allocation of declarations.
type Decls struct {
	Arena      *Arena[Decl]
	Fns        *Arena[FnData]
	Classes    *Arena[ClassData]
	Enums      *Arena[EnumData]
	TypeParams *Arena[TemplateParamData]
	Imports    *Arena[ImportData]
}

// NewDecls creates declaration arenas preallocated with capHint.
func NewDecls(capHint uint) *Decls {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Decls{
		Arena:      NewArena[Decl](capHint),
		Fns:        NewArena[FnData](capHint / 4),
		Classes:    NewArena[ClassData](capHint / 8),
		Enums:      NewArena[EnumData](capHint / 16),
		TypeParams: NewArena[TemplateParamData](capHint / 16),
		Imports:    NewArena[ImportData](capHint / 16),
	}
}

func (d *Decls) new(kind DeclKind, name source.StringID, span source.Span, payload PayloadID) DeclID {
	return DeclID(d.Arena.Allocate(Decl{
		Kind:    kind,
		Name:    name,
		Span:    span,
		Payload: payload,
	}))
}

// Get returns the declaration with the given ID.
func (d *Decls) Get(id DeclID) *Decl {
	return d.Arena.Get(uint32(id))
}

// NewVar creates a local, global, field, parameter or enum constant.
func (d *Decls) NewVar(kind DeclKind, span source.Span, name source.StringID, typ TypeExprID, init ExprID, mods Modifiers) DeclID {
	if !kind.IsVariable() {
		panic("ast: NewVar with non-variable kind " + kind.String())
	}
	id := d.new(kind, name, span, NoPayloadID)
	decl := d.Get(id)
	decl.Type = typ
	decl.Init = init
	decl.Mods = mods
	return id
}

// NewFn creates a function or method. Parameters get their Owner set.
func (d *Decls) NewFn(kind DeclKind, span source.Span, name source.StringID, params []DeclID, ret TypeExprID, body StmtID, mods Modifiers) DeclID {
	if !kind.IsCallable() {
		panic("ast: NewFn with non-callable kind " + kind.String())
	}
	payload := d.Fns.Allocate(FnData{Params: params, Body: body})
	id := d.new(kind, name, span, PayloadID(payload))
	decl := d.Get(id)
	decl.Type = ret
	decl.Mods = mods
	d.adopt(id, params)
	return id
}

// Fn returns the function payload for the given declaration.
func (d *Decls) Fn(id DeclID) (*FnData, bool) {
	decl := d.Get(id)
	if decl == nil || !decl.Kind.IsCallable() {
		return nil, false
	}
	return d.Fns.Get(uint32(decl.Payload)), true
}

// NewClass creates a class. Fields and methods get their Owner set.
func (d *Decls) NewClass(span source.Span, name source.StringID, base TypeExprID, fields, methods []DeclID, mods Modifiers) DeclID {
	payload := d.Classes.Allocate(ClassData{Base: base, Fields: fields, Methods: methods})
	id := d.new(DeclClass, name, span, PayloadID(payload))
	d.Get(id).Mods = mods
	d.adopt(id, fields)
	d.adopt(id, methods)
	return id
}

// Class returns the class payload.
func (d *Decls) Class(id DeclID) (*ClassData, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclClass {
		return nil, false
	}
	return d.Classes.Get(uint32(decl.Payload)), true
}

// NewEnum creates an enum owning the given constants.
func (d *Decls) NewEnum(span source.Span, name source.StringID, consts []DeclID, mods Modifiers) DeclID {
	payload := d.Enums.Allocate(EnumData{Consts: consts})
	id := d.new(DeclEnum, name, span, PayloadID(payload))
	d.Get(id).Mods = mods
	d.adopt(id, consts)
	return id
}

// Enum returns the enum payload.
func (d *Decls) Enum(id DeclID) (*EnumData, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclEnum {
		return nil, false
	}
	return d.Enums.Get(uint32(decl.Payload)), true
}

// NewTemplateParam creates a template parameter with an optional constraint.
func (d *Decls) NewTemplateParam(span source.Span, name source.StringID, c Constraint) DeclID {
	payload := d.TypeParams.Allocate(TemplateParamData{Constraint: c})
	return d.new(DeclTemplateParam, name, span, PayloadID(payload))
}

// TemplateParam returns the template parameter payload.
func (d *Decls) TemplateParam(id DeclID) (*TemplateParamData, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclTemplateParam {
		return nil, false
	}
	return d.TypeParams.Get(uint32(decl.Payload)), true
}

// SetTypeParams attaches template parameters to a class or callable.
func (d *Decls) SetTypeParams(owner DeclID, params []DeclID) {
	if fn, ok := d.Fn(owner); ok {
		fn.TypeParams = params
	} else if cls, ok := d.Class(owner); ok {
		cls.TypeParams = params
	} else {
		return
	}
	d.adopt(owner, params)
}

// TypeParamsOf returns the template parameters of a class or callable.
func (d *Decls) TypeParamsOf(owner DeclID) []DeclID {
	if fn, ok := d.Fn(owner); ok {
		return fn.TypeParams
	}
	if cls, ok := d.Class(owner); ok {
		return cls.TypeParams
	}
	return nil
}

// NewImport creates an import referencing an already built unit.
func (d *Decls) NewImport(span source.Span, name source.StringID, path string, target UnitID) DeclID {
	payload := d.Imports.Allocate(ImportData{Path: path, Target: target})
	return d.new(DeclImport, name, span, PayloadID(payload))
}

// Import returns the import payload.
func (d *Decls) Import(id DeclID) (*ImportData, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != DeclImport {
		return nil, false
	}
	return d.Imports.Get(uint32(decl.Payload)), true
}

func (d *Decls) adopt(owner DeclID, children []DeclID) {
	for _, child := range children {
		if decl := d.Get(child); decl != nil {
			decl.Owner = owner
		}
	}
}
