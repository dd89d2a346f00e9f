package astio

// SchemaVersion is the document version this package reads and writes.
const SchemaVersion = 1

// Document is one parsed program: Units[0] is the root.
type Document struct {
	Version int     `json:"version" msgpack:"version"`
	Units   []*Unit `json:"units" msgpack:"units"`
}

// Span is a 1-based source range; zero fields mean unknown.
type Span struct {
	Line    uint32 `json:"line,omitempty" msgpack:"line,omitempty"`
	Col     uint32 `json:"col,omitempty" msgpack:"col,omitempty"`
	EndLine uint32 `json:"end_line,omitempty" msgpack:"end_line,omitempty"`
	EndCol  uint32 `json:"end_col,omitempty" msgpack:"end_col,omitempty"`
}

type Unit struct {
	Path      string    `json:"path" msgpack:"path"`
	Imports   []*Import `json:"imports,omitempty" msgpack:"imports,omitempty"`
	Enums     []*Enum   `json:"enums,omitempty" msgpack:"enums,omitempty"`
	Globals   []*Var    `json:"globals,omitempty" msgpack:"globals,omitempty"`
	Classes   []*Class  `json:"classes,omitempty" msgpack:"classes,omitempty"`
	Functions []*Func   `json:"functions,omitempty" msgpack:"functions,omitempty"`
	Main      *Func     `json:"main,omitempty" msgpack:"main,omitempty"`
}

// TopLevel is a single top-level declaration or statement, the unit of an
// interactive submission. Exactly one field is set.
type TopLevel struct {
	Import   *Import `json:"import,omitempty" msgpack:"import,omitempty"`
	Enum     *Enum   `json:"enum,omitempty" msgpack:"enum,omitempty"`
	Global   *Var    `json:"global,omitempty" msgpack:"global,omitempty"`
	Class    *Class  `json:"class,omitempty" msgpack:"class,omitempty"`
	Function *Func   `json:"function,omitempty" msgpack:"function,omitempty"`
	Main     *Func   `json:"main,omitempty" msgpack:"main,omitempty"`
	// Stmt is any statement, "local" included.
	Stmt *Stmt `json:"stmt,omitempty" msgpack:"stmt,omitempty"`
}

type Import struct {
	Path string `json:"path" msgpack:"path"`
	Span Span   `json:"span" msgpack:"span"`
}

type Enum struct {
	Name   string   `json:"name" msgpack:"name"`
	Consts []*Const `json:"consts" msgpack:"consts"`
	Mods   []string `json:"mods,omitempty" msgpack:"mods,omitempty"`
	Span   Span     `json:"span" msgpack:"span"`
}

type Const struct {
	Name string `json:"name" msgpack:"name"`
	Span Span   `json:"span" msgpack:"span"`
}

// Var is a global, local, field or parameter.
type Var struct {
	Name string   `json:"name" msgpack:"name"`
	Type *Type    `json:"type,omitempty" msgpack:"type,omitempty"`
	Init *Expr    `json:"init,omitempty" msgpack:"init,omitempty"`
	Mods []string `json:"mods,omitempty" msgpack:"mods,omitempty"`
	Span Span     `json:"span" msgpack:"span"`
}

type TypeParam struct {
	Name       string `json:"name" msgpack:"name"`
	Constraint string `json:"constraint,omitempty" msgpack:"constraint,omitempty"`
	Span       Span   `json:"span" msgpack:"span"`
}

// Func is a function, method or main. NoBody marks a bodiless method.
type Func struct {
	Name       string       `json:"name" msgpack:"name"`
	TypeParams []*TypeParam `json:"type_params,omitempty" msgpack:"type_params,omitempty"`
	Params     []*Var       `json:"params,omitempty" msgpack:"params,omitempty"`
	Ret        *Type        `json:"ret,omitempty" msgpack:"ret,omitempty"`
	Body       []*Stmt      `json:"body,omitempty" msgpack:"body,omitempty"`
	NoBody     bool         `json:"no_body,omitempty" msgpack:"no_body,omitempty"`
	Mods       []string     `json:"mods,omitempty" msgpack:"mods,omitempty"`
	Span       Span         `json:"span" msgpack:"span"`
}

type Class struct {
	Name       string       `json:"name" msgpack:"name"`
	TypeParams []*TypeParam `json:"type_params,omitempty" msgpack:"type_params,omitempty"`
	Base       *Type        `json:"base,omitempty" msgpack:"base,omitempty"`
	Fields     []*Var       `json:"fields,omitempty" msgpack:"fields,omitempty"`
	Methods    []*Func      `json:"methods,omitempty" msgpack:"methods,omitempty"`
	Mods       []string     `json:"mods,omitempty" msgpack:"mods,omitempty"`
	Span       Span         `json:"span" msgpack:"span"`
}

// Type is a type expression; Kind is named, list, array, tuple or union.
type Type struct {
	Kind  string  `json:"kind" msgpack:"kind"`
	Name  string  `json:"name,omitempty" msgpack:"name,omitempty"`
	Args  []*Type `json:"args,omitempty" msgpack:"args,omitempty"`
	Base  *Type   `json:"base,omitempty" msgpack:"base,omitempty"`
	Dims  uint8   `json:"dims,omitempty" msgpack:"dims,omitempty"`
	Elems []*Type `json:"elems,omitempty" msgpack:"elems,omitempty"`
	Span  Span    `json:"span" msgpack:"span"`
}

// Stmt is a statement. Kind selects which fields are read:
//
//	block: Stmts             local: Decl
//	expr: Expr               assign: Target, Value
//	if: Cond, Then, Else     while: Cond, Body
//	for: Var, From, To, Body case: Subject, Arms, Default
//	return: Value (optional)
type Stmt struct {
	Kind    string  `json:"kind" msgpack:"kind"`
	Stmts   []*Stmt `json:"stmts,omitempty" msgpack:"stmts,omitempty"`
	Decl    *Var    `json:"decl,omitempty" msgpack:"decl,omitempty"`
	Expr    *Expr   `json:"expr,omitempty" msgpack:"expr,omitempty"`
	Target  *Expr   `json:"target,omitempty" msgpack:"target,omitempty"`
	Value   *Expr   `json:"value,omitempty" msgpack:"value,omitempty"`
	Cond    *Expr   `json:"cond,omitempty" msgpack:"cond,omitempty"`
	Then    *Stmt   `json:"then,omitempty" msgpack:"then,omitempty"`
	Else    *Stmt   `json:"else,omitempty" msgpack:"else,omitempty"`
	Body    *Stmt   `json:"body,omitempty" msgpack:"body,omitempty"`
	Var     string  `json:"var,omitempty" msgpack:"var,omitempty"`
	From    *Expr   `json:"from,omitempty" msgpack:"from,omitempty"`
	To      *Expr   `json:"to,omitempty" msgpack:"to,omitempty"`
	Subject *Expr   `json:"subject,omitempty" msgpack:"subject,omitempty"`
	Arms    []*Arm  `json:"arms,omitempty" msgpack:"arms,omitempty"`
	Default *Stmt   `json:"default,omitempty" msgpack:"default,omitempty"`
	Span    Span    `json:"span" msgpack:"span"`
}

type Arm struct {
	Values []*Expr `json:"values" msgpack:"values"`
	Body   *Stmt   `json:"body" msgpack:"body"`
	Span   Span    `json:"span" msgpack:"span"`
}

// Expr is an expression. Kind selects which fields are read:
//
//	lit: Lit, Value          name: Name
//	this                     field: Recv, Name
//	index: Target, Args      call: Name, TypeArgs, Args
//	mcall: Recv, Name, Args  binary: Op, Left, Right
//	unary: Op, Operand       cast: Type, Operand
//	new: Type, Inits         list: Type (element, optional), Elems
//	tuple: Elems
type Expr struct {
	Kind     string  `json:"kind" msgpack:"kind"`
	Lit      string  `json:"lit,omitempty" msgpack:"lit,omitempty"`
	Value    string  `json:"value,omitempty" msgpack:"value,omitempty"`
	Name     string  `json:"name,omitempty" msgpack:"name,omitempty"`
	Recv     *Expr   `json:"recv,omitempty" msgpack:"recv,omitempty"`
	Target   *Expr   `json:"target,omitempty" msgpack:"target,omitempty"`
	TypeArgs []*Type `json:"type_args,omitempty" msgpack:"type_args,omitempty"`
	Args     []*Expr `json:"args,omitempty" msgpack:"args,omitempty"`
	Op       string  `json:"op,omitempty" msgpack:"op,omitempty"`
	Left     *Expr   `json:"left,omitempty" msgpack:"left,omitempty"`
	Right    *Expr   `json:"right,omitempty" msgpack:"right,omitempty"`
	Operand  *Expr   `json:"operand,omitempty" msgpack:"operand,omitempty"`
	Type     *Type   `json:"type,omitempty" msgpack:"type,omitempty"`
	Inits    []*Init `json:"inits,omitempty" msgpack:"inits,omitempty"`
	Elems    []*Expr `json:"elems,omitempty" msgpack:"elems,omitempty"`
	Span     Span    `json:"span" msgpack:"span"`
}

type Init struct {
	Field string `json:"field" msgpack:"field"`
	Value *Expr  `json:"value" msgpack:"value"`
	Span  Span   `json:"span" msgpack:"span"`
}
