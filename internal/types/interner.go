package types

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the primitive types.
type Builtins struct {
	Invalid TypeID
	Void    TypeID
	Int     TypeID
	Char    TypeID
	Bool    TypeID
	String  TypeID
	Text    TypeID
	Real    TypeID
}

// Interner provides stable TypeIDs. Structural types are deduplicated;
// nominal types (classes, enums, template params) get a fresh ID each time
// they are registered.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	classes  []ClassInfo
	enums    []EnumInfo
	params   []ParamInfo
	groups   [][]TypeID // tuple elements and multi candidates
	groupIdx map[string]uint32
}

// NewInterner constructs an interner seeded with the built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:    make(map[typeKey]TypeID, 64),
		groupIdx: make(map[string]uint32, 8),
	}
	// slot 0 of every info table is the invalid sentinel
	in.classes = append(in.classes, ClassInfo{})
	in.enums = append(in.enums, EnumInfo{})
	in.params = append(in.params, ParamInfo{})
	in.groups = append(in.groups, nil)
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Void = in.Intern(Type{Kind: KindVoid})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.Char = in.Intern(Type{Kind: KindChar})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.Text = in.Intern(Type{Kind: KindText})
	in.builtins.Real = in.Intern(Type{Kind: KindReal})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Builtin maps a primitive type name to its TypeID.
func (in *Interner) Builtin(name string) (TypeID, bool) {
	kind, ok := BuiltinKind(name)
	if !ok {
		return NoTypeID, false
	}
	return in.Intern(Type{Kind: kind}), true
}

// Intern ensures the provided structural descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Interner) internRaw(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	in.index[typeKey(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if in == nil || id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// KindOf returns the kind of id, or KindInvalid.
func (in *Interner) KindOf(id TypeID) Kind {
	tt, _ := in.Lookup(id)
	return tt.Kind
}

// Len reports the number of registered types including the sentinel.
func (in *Interner) Len() int { return len(in.types) }

// MakeTuple interns a tuple of the given element types.
func (in *Interner) MakeTuple(elems []TypeID) TypeID {
	return in.Intern(Type{Kind: KindTuple, Payload: in.group('T', elems)})
}

// MakeMulti interns a union of candidates. Duplicates are dropped and a
// single candidate collapses to itself.
func (in *Interner) MakeMulti(candidates []TypeID) TypeID {
	uniq := make([]TypeID, 0, len(candidates))
	for _, c := range candidates {
		if c != NoTypeID && !slices.Contains(uniq, c) {
			uniq = append(uniq, c)
		}
	}
	switch len(uniq) {
	case 0:
		return in.builtins.Void
	case 1:
		return uniq[0]
	}
	return in.Intern(Type{Kind: KindMulti, Payload: in.group('M', uniq)})
}

// Elems returns tuple elements or multi candidates.
func (in *Interner) Elems(id TypeID) []TypeID {
	tt, ok := in.Lookup(id)
	if !ok || (tt.Kind != KindTuple && tt.Kind != KindMulti) {
		return nil
	}
	return in.groups[tt.Payload]
}

func (in *Interner) group(tag byte, ids []TypeID) uint32 {
	var sb strings.Builder
	sb.WriteByte(tag)
	for _, id := range ids {
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	key := sb.String()
	if slot, ok := in.groupIdx[key]; ok {
		return slot
	}
	slot, err := safecast.Conv[uint32](len(in.groups))
	if err != nil {
		panic(fmt.Errorf("type groups overflow: %w", err))
	}
	in.groups = append(in.groups, slices.Clone(ids))
	in.groupIdx[key] = slot
	return slot
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Dims    uint8
	Payload uint32
}
