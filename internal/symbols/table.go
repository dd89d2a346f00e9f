package symbols

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"fortio.org/safecast"

	"sable/internal/ast"
	"sable/internal/source"
)

// Hints provide optional capacity suggestions for the table arenas.
type Hints struct{ Scopes uint }

// ErrAlreadyBound is matched by every *BoundError.
var ErrAlreadyBound = errors.New("key already bound in scope")

// BoundError reports a rejected rebinding. The existing binding stays.
type BoundError struct {
	Key      Key
	Existing ast.DeclID
}

func (e *BoundError) Error() string {
	return fmt.Sprintf("%q already bound to decl %d", e.Key, e.Existing)
}

func (e *BoundError) Is(target error) bool { return target == ErrAlreadyBound }

// Table is the scope table: an arena of scopes plus the stack of scopes
// currently open.
type Table struct {
	Scopes  *Scopes
	Strings *source.Interner
	stack   []ScopeID
}

// NewTable builds a fresh table with optional capacity hints.
// If strings is nil, a fresh interner is allocated.
func NewTable(h Hints, strings *source.Interner) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Table{
		Scopes:  NewScopes(scopeCap),
		Strings: strings,
		stack:   make([]ScopeID, 0, 16),
	}
}

// Current returns the innermost open scope.
func (t *Table) Current() ScopeID {
	if len(t.stack) == 0 {
		return NoScopeID
	}
	return t.stack[len(t.stack)-1]
}

// Depth reports how many scopes are open.
func (t *Table) Depth() int { return len(t.stack) }

// NewRoot allocates a global scope for a unit without opening it.
func (t *Table) NewRoot(unit ast.UnitID, span source.Span) ScopeID {
	id := t.Scopes.New(ScopeGlobal, NoScopeID, ast.NoDeclID, span)
	t.Scopes.Get(id).Unit = unit
	return id
}

// Open creates a child of the current scope and makes it current.
func (t *Table) Open(kind ScopeKind, owner ast.DeclID, span source.Span) ScopeID {
	id := t.Scopes.New(kind, t.Current(), owner, span)
	t.stack = append(t.stack, id)
	return id
}

// Close detaches the current scope and returns the new current scope.
// Bindings of a closed scope stay reachable through its ScopeID.
func (t *Table) Close() ScopeID {
	if len(t.stack) == 0 {
		return NoScopeID
	}
	if s := t.Scopes.Get(t.Current()); s != nil {
		s.Closed = true
	}
	t.stack = t.stack[:len(t.stack)-1]
	return t.Current()
}

// Enter pushes an existing scope without creating one. Passes after name
// resolution use Enter/Leave to walk the stored nesting read-only.
func (t *Table) Enter(id ScopeID) {
	t.stack = append(t.stack, id)
}

// Leave pops the scope pushed by Enter.
func (t *Table) Leave() ScopeID {
	if len(t.stack) == 0 {
		return NoScopeID
	}
	t.stack = t.stack[:len(t.stack)-1]
	return t.Current()
}

// Truncate pops scopes until depth scopes remain.
func (t *Table) Truncate(depth int) {
	if depth < len(t.stack) && depth >= 0 {
		t.stack = t.stack[:depth]
	}
}

// Bind inserts into the current scope only. A second binding of the same key
// returns a *BoundError and leaves the first binding in place.
func (t *Table) Bind(key Key, decl ast.DeclID) error {
	return t.BindIn(t.Current(), key, decl)
}

// BindIn is Bind against an explicit scope.
func (t *Table) BindIn(scope ScopeID, key Key, decl ast.DeclID) error {
	s := t.Scopes.Get(scope)
	if s == nil {
		return fmt.Errorf("bind %q: no open scope", key)
	}
	if existing, ok := s.Entries[key]; ok {
		return &BoundError{Key: key, Existing: existing}
	}
	s.Entries[key] = decl
	s.Keys = append(s.Keys, key)
	if key.IsSignature() {
		name := key.Name()
		s.ByName[name] = append(s.ByName[name], key)
	}
	return nil
}

// LookupLocal searches the current scope only.
func (t *Table) LookupLocal(key Key) (ast.DeclID, bool) {
	return t.Scopes.Get(t.Current()).Lookup(key)
}

// LookupChain searches the current scope, its lexical ancestors, then the
// import chain of the enclosing global scope.
func (t *Table) LookupChain(key Key) (ast.DeclID, bool) {
	return t.LookupFrom(t.Current(), key)
}

// LookupFrom is LookupChain starting at scope.
func (t *Table) LookupFrom(scope ScopeID, key Key) (ast.DeclID, bool) {
	for id := scope; id.IsValid(); {
		s := t.Scopes.Get(id)
		if decl, ok := s.Lookup(key); ok {
			return decl, true
		}
		id = s.Parent
	}
	for _, imp := range t.importChain(scope) {
		if decl, ok := t.Scopes.Get(imp).Lookup(key); ok {
			return decl, true
		}
	}
	return ast.NoDeclID, false
}

// IsBoundAnywhere reports whether LookupChain would succeed.
func (t *Table) IsBoundAnywhere(key Key) bool {
	_, ok := t.LookupChain(key)
	return ok
}

// Overloads returns every function or method named name visible from scope,
// nearest first. A signature bound in an inner scope hides the same
// signature further out.
func (t *Table) Overloads(scope ScopeID, name string) []ast.DeclID {
	var out []ast.DeclID
	seen := make(map[Key]struct{})
	collect := func(s *Scope) {
		for _, key := range s.ByName[name] {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, s.Entries[key])
		}
	}
	for id := scope; id.IsValid(); {
		s := t.Scopes.Get(id)
		collect(s)
		id = s.Parent
	}
	for _, imp := range t.importChain(scope) {
		collect(t.Scopes.Get(imp))
	}
	return out
}

// LocalOverloads returns the functions or methods named name bound in scope
// itself.
func (t *Table) LocalOverloads(scope ScopeID, name string) []ast.DeclID {
	s := t.Scopes.Get(scope)
	if s == nil {
		return nil
	}
	out := make([]ast.DeclID, 0, len(s.ByName[name]))
	for _, key := range s.ByName[name] {
		out = append(out, s.Entries[key])
	}
	return out
}

// VisibleNames lists the identifiers reachable from scope, sorted. Used for
// suggestions.
func (t *Table) VisibleNames(scope ScopeID) []string {
	set := make(map[string]struct{})
	add := func(s *Scope) {
		for _, key := range s.Keys {
			set[key.Name()] = struct{}{}
		}
	}
	for id := scope; id.IsValid(); {
		s := t.Scopes.Get(id)
		add(s)
		id = s.Parent
	}
	for _, imp := range t.importChain(scope) {
		add(t.Scopes.Get(imp))
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Root returns the global scope enclosing scope.
func (t *Table) Root(scope ScopeID) ScopeID {
	for id := scope; id.IsValid(); {
		s := t.Scopes.Get(id)
		if !s.Parent.IsValid() {
			return id
		}
		id = s.Parent
	}
	return NoScopeID
}

// ImportScope attaches other as the import chain of the current global scope,
// or of its importless descendant when a chain already exists. It returns
// false when other is already reachable or is the scope itself.
func (t *Table) ImportScope(other ScopeID) bool {
	return t.AttachImport(t.Root(t.Current()), other)
}

// AttachImport is ImportScope for an explicit global scope.
//
// Imports form a single chain per program: other is linked after the last
// scope already on the chain. A unit on the chain therefore also falls back
// to every unit attached after it, including ones it never imported itself.
func (t *Table) AttachImport(global, other ScopeID) bool {
	if !global.IsValid() || !other.IsValid() || global == other {
		return false
	}
	tail := global
	for _, imp := range t.importChain(global) {
		if imp == other {
			return false
		}
		tail = imp
	}
	t.Scopes.Get(tail).Import = other
	return true
}

// importChain lists the import links reachable from the global scope of
// scope, in order, stopping at the first repeated scope.
func (t *Table) importChain(scope ScopeID) []ScopeID {
	root := t.Root(scope)
	if !root.IsValid() {
		return nil
	}
	var chain []ScopeID
	for id := t.Scopes.Get(root).Import; id.IsValid() && id != root; id = t.Scopes.Get(id).Import {
		if slices.Contains(chain, id) {
			break
		}
		chain = append(chain, id)
	}
	return chain
}
