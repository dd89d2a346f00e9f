package ast

// BinaryOp enumerates binary operators.
type BinaryOp uint8

const (
	OpInvalid BinaryOp = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
)

var binaryOpText = [...]string{
	OpInvalid: "?",
	OpAdd:     "+",
	OpSub:     "-",
	OpMul:     "*",
	OpDiv:     "/",
	OpMod:     "%",
	OpEq:      "==",
	OpNe:      "!=",
	OpLt:      "<",
	OpLe:      "<=",
	OpGt:      ">",
	OpGe:      ">=",
	OpAnd:     "and",
	OpOr:      "or",
	OpBitAnd:  "&",
	OpBitOr:   "|",
	OpBitXor:  "^",
	OpShl:     "<<",
	OpShr:     ">>",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpText) {
		return binaryOpText[op]
	}
	return "?"
}

// ParseBinaryOp maps operator text to its BinaryOp.
func ParseBinaryOp(s string) (BinaryOp, bool) {
	for i, text := range binaryOpText {
		if i != int(OpInvalid) && text == s {
			return BinaryOp(i), true
		}
	}
	return OpInvalid, false
}

// UnaryOp enumerates prefix operators.
type UnaryOp uint8

const (
	UnInvalid UnaryOp = iota
	UnNeg
	UnNot
	UnBitNot
)

func (op UnaryOp) String() string {
	switch op {
	case UnNeg:
		return "-"
	case UnNot:
		return "not"
	case UnBitNot:
		return "~"
	default:
		return "?"
	}
}

// ParseUnaryOp maps operator text to its UnaryOp.
func ParseUnaryOp(s string) (UnaryOp, bool) {
	switch s {
	case "-":
		return UnNeg, true
	case "not", "!":
		return UnNot, true
	case "~":
		return UnBitNot, true
	}
	return UnInvalid, false
}
