package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates the closed set of type variants.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindInt
	KindChar
	KindBool
	KindEnum
	KindString
	KindText
	KindReal
	KindClass
	KindList
	KindArray
	KindTuple
	KindTemplateParam
	KindMulti
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindInt:
		return "int"
	case KindChar:
		return "char"
	case KindBool:
		return "bool"
	case KindEnum:
		return "enum"
	case KindString:
		return "string"
	case KindText:
		return "text"
	case KindReal:
		return "real"
	case KindClass:
		return "class"
	case KindList:
		return "list"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindTemplateParam:
		return "template param"
	case KindMulti:
		return "multi"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Code is the one-character signature code of a kind. Signature keys of
// functions and methods are built from these.
func (k Kind) Code() byte {
	switch k {
	case KindInt:
		return 'i'
	case KindChar:
		return 'c'
	case KindBool:
		return 'b'
	case KindEnum:
		return 'e'
	case KindString:
		return 's'
	case KindText:
		return 't'
	case KindReal:
		return 'r'
	case KindClass:
		return 'C'
	case KindList:
		return 'L'
	case KindArray:
		return 'A'
	case KindTuple:
		return 'T'
	case KindTemplateParam:
		return 'P'
	case KindMulti:
		return 'M'
	case KindVoid:
		return 'v'
	default:
		return '?'
	}
}

// IsDiscrete reports Int, Char, Bool and Enum.
func (k Kind) IsDiscrete() bool {
	switch k {
	case KindInt, KindChar, KindBool, KindEnum:
		return true
	}
	return false
}

// IsScalar reports String, Text and Real.
func (k Kind) IsScalar() bool {
	return k == KindString || k == KindText || k == KindReal
}

func (k Kind) IsNumeric() bool { return k == KindInt || k == KindReal }

func (k Kind) IsStringLike() bool { return k == KindString || k == KindText }

// Type is a compact descriptor. Elem and Dims are used by lists and arrays;
// Payload indexes the per-kind info tables of the interner.
type Type struct {
	Kind    Kind
	Elem    TypeID
	Dims    uint8
	Payload uint32
}

func MakeList(elem TypeID, dims uint8) Type {
	return Type{Kind: KindList, Elem: elem, Dims: max(dims, 1)}
}

func MakeArray(elem TypeID, dims uint8) Type {
	return Type{Kind: KindArray, Elem: elem, Dims: max(dims, 1)}
}

// BuiltinKind maps a primitive type name to its kind.
func BuiltinKind(name string) (Kind, bool) {
	switch name {
	case "Int":
		return KindInt, true
	case "Char":
		return KindChar, true
	case "Bool":
		return KindBool, true
	case "String":
		return KindString, true
	case "Text":
		return KindText, true
	case "Real":
		return KindReal, true
	case "Void":
		return KindVoid, true
	}
	return KindInvalid, false
}
