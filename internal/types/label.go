package types

import (
	"strconv"
	"strings"
)

// Label returns the display name of a type.
func Label(in *Interner, id TypeID) string {
	return labelDepth(in, id, 0)
}

func labelDepth(in *Interner, id TypeID, depth int) string {
	if depth > 8 {
		return "..."
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case KindVoid:
		return "Void"
	case KindInt:
		return "Int"
	case KindChar:
		return "Char"
	case KindBool:
		return "Bool"
	case KindString:
		return "String"
	case KindText:
		return "Text"
	case KindReal:
		return "Real"
	case KindEnum:
		return in.enums[tt.Payload].Name
	case KindTemplateParam:
		return in.params[tt.Payload].Name
	case KindClass:
		info := in.classes[tt.Payload]
		if len(info.Args) == 0 {
			return info.Name
		}
		return info.Name + "<" + joinLabels(in, info.Args, ", ", depth) + ">"
	case KindList:
		d := int(tt.Dims)
		return strings.Repeat("[", d) + labelDepth(in, tt.Elem, depth+1) + strings.Repeat("]", d)
	case KindArray:
		return labelDepth(in, tt.Elem, depth+1) + strings.Repeat("[]", int(tt.Dims))
	case KindTuple:
		return "(" + joinLabels(in, in.Elems(id), ", ", depth) + ")"
	case KindMulti:
		return joinLabels(in, in.Elems(id), " | ", depth)
	default:
		return "?"
	}
}

func joinLabels(in *Interner, ids []TypeID, sep string, depth int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = labelDepth(in, id, depth+1)
	}
	return strings.Join(parts, sep)
}

// Signature returns the signature code of a type as used in overload keys:
// the kind code, a dimension count for lists and arrays, and the nominal
// name or element codes in angle brackets ("i", "C<Point>", "L2<i>").
func Signature(in *Interner, id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "?"
	}
	code := string(tt.Kind.Code())
	switch tt.Kind {
	case KindEnum, KindTemplateParam, KindClass:
		name := Label(in, id)
		if tt.Kind == KindClass {
			name = in.classes[tt.Payload].Name
		}
		return code + "<" + name + ">"
	case KindList, KindArray:
		return code + strconv.Itoa(int(tt.Dims)) + "<" + Signature(in, tt.Elem) + ">"
	case KindTuple:
		return code + "<" + joinSignatures(in, in.Elems(id), ",") + ">"
	case KindMulti:
		return code + "<" + joinSignatures(in, in.Elems(id), "|") + ">"
	default:
		return code
	}
}

func joinSignatures(in *Interner, ids []TypeID, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = Signature(in, id)
	}
	return strings.Join(parts, sep)
}
