package source

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"
)

// StringID names an interned identifier. NoStringID is the empty name.
type StringID uint32

const NoStringID StringID = 0

// Interner hands out one StringID per distinct identifier. Identifiers are
// compared in NFC, so "café" typed either way is a single name.
type Interner struct {
	names []string
	ids   map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{
		names: []string{""},
		ids:   map[string]StringID{"": NoStringID},
	}
}

func canonical(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

// Intern returns the ID of s, adding it on first sight.
func (in *Interner) Intern(s string) StringID {
	s = canonical(s)
	if id, ok := in.ids[s]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(in.names))
	if err != nil {
		panic(fmt.Errorf("interner: too many names: %w", err))
	}
	// callers may hand us a slice of a larger buffer
	s = strings.Clone(s)
	id := StringID(n)
	in.names = append(in.names, s)
	in.ids[s] = id
	return id
}

// Find is Intern without the insert.
func (in *Interner) Find(s string) (StringID, bool) {
	id, ok := in.ids[canonical(s)]
	return id, ok
}

func (in *Interner) Lookup(id StringID) (string, bool) {
	if int(id) >= len(in.names) {
		return "", false
	}
	return in.names[id], true
}

func (in *Interner) MustLookup(id StringID) string {
	s, ok := in.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("interner: unknown string id %d", id))
	}
	return s
}

// Len counts NoStringID too.
func (in *Interner) Len() int { return len(in.names) }
