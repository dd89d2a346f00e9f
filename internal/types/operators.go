package types

import "sable/internal/ast"

// FamilyMask describes broad categories of types an operator accepts.
type FamilyMask uint32

const (
	FamilyNone FamilyMask = 0
	FamilyBool FamilyMask = 1 << iota
	FamilyInt
	FamilyChar
	FamilyEnum
	FamilyReal
	FamilyString
	FamilyClass
	FamilyList
	FamilyArray
	FamilyTuple
	FamilyParam
	FamilyMulti
)

const (
	FamilyDiscrete = FamilyBool | FamilyInt | FamilyChar | FamilyEnum
	FamilyNumeric  = FamilyInt | FamilyReal
	FamilyAny      = FamilyDiscrete | FamilyReal | FamilyString | FamilyClass |
		FamilyList | FamilyArray | FamilyTuple | FamilyParam | FamilyMulti
	familyArith = FamilyAny &^ FamilyString
)

// FamilyOf returns the family bit of a type.
func (in *Interner) FamilyOf(id TypeID) FamilyMask {
	switch in.KindOf(id) {
	case KindBool:
		return FamilyBool
	case KindInt:
		return FamilyInt
	case KindChar:
		return FamilyChar
	case KindEnum:
		return FamilyEnum
	case KindReal:
		return FamilyReal
	case KindString, KindText:
		return FamilyString
	case KindClass:
		return FamilyClass
	case KindList:
		return FamilyList
	case KindArray:
		return FamilyArray
	case KindTuple:
		return FamilyTuple
	case KindTemplateParam:
		return FamilyParam
	case KindMulti:
		return FamilyMulti
	default:
		return FamilyNone
	}
}

// BinaryResult describes how to derive the result type for an operator.
type BinaryResult uint8

const (
	BinaryResultUnknown BinaryResult = iota
	BinaryResultLeft
	BinaryResultBool
	BinaryResultConcat // String, or Text when either side is Text
)

// BinaryFlags annotate special handling for binary operators.
type BinaryFlags uint8

const (
	BinaryFlagNone       BinaryFlags = 0
	BinaryFlagCompatible BinaryFlags = 1 << iota // operands must be mutually assignment-compatible
	BinaryFlagShortCircuit
)

// BinarySpec lists operand families and the expected result for an operator.
type BinarySpec struct {
	Left   FamilyMask
	Right  FamilyMask
	Result BinaryResult
	Flags  BinaryFlags
}

// UnaryResult indicates how to derive the resulting type.
type UnaryResult uint8

const (
	UnaryResultUnknown UnaryResult = iota
	UnaryResultSame
	UnaryResultBool
)

// UnarySpec describes operand expectations for unary operators.
type UnarySpec struct {
	Operand FamilyMask
	Result  UnaryResult
}

var (
	arithSpecs = []BinarySpec{
		{Left: familyArith, Right: familyArith, Result: BinaryResultLeft, Flags: BinaryFlagCompatible},
	}
	orderSpecs = []BinarySpec{
		{Left: FamilyNumeric, Right: FamilyNumeric, Result: BinaryResultBool},
		{Left: FamilyChar, Right: FamilyChar, Result: BinaryResultBool},
	}
	equalitySpecs = []BinarySpec{
		{Left: FamilyAny, Right: FamilyAny, Result: BinaryResultBool, Flags: BinaryFlagCompatible},
	}
	logicalSpecs = []BinarySpec{
		{Left: FamilyBool, Right: FamilyBool, Result: BinaryResultBool, Flags: BinaryFlagShortCircuit},
	}
	bitwiseSpecs = []BinarySpec{
		{Left: FamilyDiscrete, Right: FamilyDiscrete, Result: BinaryResultLeft, Flags: BinaryFlagCompatible},
	}
	shiftSpecs = []BinarySpec{
		{Left: FamilyInt, Right: FamilyInt, Result: BinaryResultLeft},
	}
)

var binarySpecTable = map[ast.BinaryOp][]BinarySpec{
	ast.OpAdd: {
		{Left: FamilyString, Right: FamilyString, Result: BinaryResultConcat},
		arithSpecs[0],
	},
	ast.OpSub:    arithSpecs,
	ast.OpMul:    arithSpecs,
	ast.OpDiv:    arithSpecs,
	ast.OpMod:    arithSpecs,
	ast.OpEq:     equalitySpecs,
	ast.OpNe:     equalitySpecs,
	ast.OpLt:     orderSpecs,
	ast.OpLe:     orderSpecs,
	ast.OpGt:     orderSpecs,
	ast.OpGe:     orderSpecs,
	ast.OpAnd:    logicalSpecs,
	ast.OpOr:     logicalSpecs,
	ast.OpBitAnd: bitwiseSpecs,
	ast.OpBitOr:  bitwiseSpecs,
	ast.OpBitXor: bitwiseSpecs,
	ast.OpShl:    shiftSpecs,
	ast.OpShr:    shiftSpecs,
}

var unarySpecTable = map[ast.UnaryOp][]UnarySpec{
	ast.UnNeg:    {{Operand: FamilyNumeric, Result: UnaryResultSame}},
	ast.UnNot:    {{Operand: FamilyBool, Result: UnaryResultBool}},
	ast.UnBitNot: {{Operand: FamilyDiscrete, Result: UnaryResultSame}},
}

// BinarySpecs returns the operand specs registered for op.
func BinarySpecs(op ast.BinaryOp) ([]BinarySpec, bool) {
	specs, ok := binarySpecTable[op]
	return specs, ok
}

// UnarySpecs returns the operand specs registered for op.
func UnarySpecs(op ast.UnaryOp) ([]UnarySpec, bool) {
	specs, ok := unarySpecTable[op]
	return specs, ok
}

// BinaryType applies the operator table to operand types. It returns
// NoTypeID and false when no spec accepts the operands.
func (in *Interner) BinaryType(op ast.BinaryOp, l, r TypeID) (TypeID, bool) {
	specs, ok := BinarySpecs(op)
	if !ok {
		return NoTypeID, false
	}
	fl, fr := in.FamilyOf(l), in.FamilyOf(r)
	for _, spec := range specs {
		if fl&spec.Left == 0 || fr&spec.Right == 0 {
			continue
		}
		if spec.Flags&BinaryFlagCompatible != 0 && !(in.Compatible(l, r) && in.Compatible(r, l)) {
			continue
		}
		switch spec.Result {
		case BinaryResultBool:
			return in.builtins.Bool, true
		case BinaryResultConcat:
			if in.KindOf(l) == KindText || in.KindOf(r) == KindText {
				return in.builtins.Text, true
			}
			return in.builtins.String, true
		default:
			return l, true
		}
	}
	return NoTypeID, false
}

// UnaryType applies the operator table to an operand type.
func (in *Interner) UnaryType(op ast.UnaryOp, t TypeID) (TypeID, bool) {
	specs, ok := UnarySpecs(op)
	if !ok {
		return NoTypeID, false
	}
	f := in.FamilyOf(t)
	for _, spec := range specs {
		if f&spec.Operand == 0 {
			continue
		}
		if spec.Result == UnaryResultBool {
			return in.builtins.Bool, true
		}
		return t, true
	}
	return NoTypeID, false
}
