package symbols

import (
	"sable/internal/ast"
	"sable/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopeGlobal             // compilation unit
	ScopeClass              // class body
	ScopeFunction           // function or method, shared with its parameters
	ScopeBlock              // block, branch or case arm
	ScopeLoop               // for loop header
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeClass:
		return "class"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeLoop:
		return "loop"
	default:
		return "invalid"
	}
}

// Scope maps lookup keys to declarations. Parent is the lexical link;
// Import is the separate fallback chain used by global scopes.
type Scope struct {
	Kind     ScopeKind
	Parent   ScopeID
	Import   ScopeID
	Owner    ast.DeclID // class, function or method owning the scope
	Stmt     ast.StmtID // block or loop statement owning the scope
	Unit     ast.UnitID
	Span     source.Span
	Entries  map[Key]ast.DeclID
	Keys     []Key            // binding order
	ByName   map[string][]Key // overload index for signature keys
	Children []ScopeID
	Closed   bool
}

// Lookup searches this scope only.
func (s *Scope) Lookup(key Key) (ast.DeclID, bool) {
	if s == nil {
		return ast.NoDeclID, false
	}
	decl, ok := s.Entries[key]
	return decl, ok
}
