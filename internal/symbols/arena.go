package symbols

import (
	"fmt"
	"iter"

	"fortio.org/safecast"

	"sable/internal/ast"
	"sable/internal/source"
)

// ScopeID indexes the scope arena; 0 is "no scope".
type ScopeID uint32

const NoScopeID ScopeID = 0

func (id ScopeID) IsValid() bool { return id != NoScopeID }

// Scopes is the arena every scope of a Scope Table lives in. Scopes are
// never freed: a closed scope stays addressable for annotations and dumps.
type Scopes struct {
	data []Scope // data[0] is the NoScopeID sentinel
}

func NewScopes(capacity uint32) *Scopes {
	return &Scopes{data: make([]Scope, 1, max(capacity, 32)+1)}
}

// New allocates a scope under parent, registers it as the parent's child
// and inherits the parent's unit.
func (s *Scopes) New(kind ScopeKind, parent ScopeID, owner ast.DeclID, span source.Span) ScopeID {
	n, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("scope arena overflow: %w", err))
	}
	id := ScopeID(n)
	scope := Scope{
		Kind:    kind,
		Parent:  parent,
		Owner:   owner,
		Span:    span,
		Entries: make(map[Key]ast.DeclID),
		ByName:  make(map[string][]Key),
	}
	if p := s.Get(parent); p != nil {
		p.Children = append(p.Children, id)
		scope.Unit = p.Unit
	}
	s.data = append(s.data, scope)
	return id
}

// Get returns the scope id names, nil for NoScopeID or an unknown id.
func (s *Scopes) Get(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

func (s *Scopes) Len() int { return len(s.data) - 1 }

// All yields every allocated scope in creation order.
func (s *Scopes) All() iter.Seq2[ScopeID, *Scope] {
	return func(yield func(ScopeID, *Scope) bool) {
		for i := 1; i < len(s.data); i++ {
			if !yield(ScopeID(i), &s.data[i]) {
				return
			}
		}
	}
}
