package ast

import "strings"

// Modifiers is the set of access/behaviour modifiers attached to a declaration.
type Modifiers uint16

const (
	ModPublic Modifiers = 1 << iota
	ModFinal
	ModAbstract
	ModRec // recursion permitted
	ModPure
	ModConst
	ModIn // in-mode parameter
)

var modifierNames = []struct {
	mod  Modifiers
	name string
}{
	{ModPublic, "public"},
	{ModFinal, "final"},
	{ModAbstract, "abstr"},
	{ModRec, "rec"},
	{ModPure, "pure"},
	{ModConst, "const"},
	{ModIn, "in"},
}

// Has reports whether every bit of m is set.
func (mods Modifiers) Has(m Modifiers) bool {
	return mods&m == m
}

// Strings returns textual modifier labels in declaration order.
func (mods Modifiers) Strings() []string {
	if mods == 0 {
		return nil
	}
	out := make([]string, 0, 3)
	for _, entry := range modifierNames {
		if mods&entry.mod != 0 {
			out = append(out, entry.name)
		}
	}
	return out
}

func (mods Modifiers) String() string {
	return strings.Join(mods.Strings(), " ")
}

// ParseModifier maps a modifier keyword to its bit. "abstract" is accepted
// as a synonym of "abstr".
func ParseModifier(s string) (Modifiers, bool) {
	if s == "abstract" {
		return ModAbstract, true
	}
	for _, entry := range modifierNames {
		if entry.name == s {
			return entry.mod, true
		}
	}
	return 0, false
}
