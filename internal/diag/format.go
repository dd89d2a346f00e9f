package diag

import (
	"strconv"
	"strings"
)

// Message templates use positional placeholders {0}, {1}, ...
var templates = map[Code]string{
	ScpRedeclared:            "'{0}' is already declared in this scope",
	ScpUnresolved:            "unresolved reference to '{0}'",
	ScpSelfAssign:            "'{0}' is used in its own initializer",
	ScpUndeclaredClass:       "class '{0}' is not declared",
	ScpUndeclaredField:       "'{1}' has no field '{0}'",
	ScpUndeclaredType:        "type '{0}' is not declared",
	ScpShadowsGlobal:         "'{0}' shadows the {1} declared in an enclosing scope",
	ScpUndeclaredMethod:      "'{1}' has no method '{0}'",
	ScpImportCycle:           "import of '{0}' forms a cycle",
	ScpThisOutsideClass:      "'this' used outside of a class",
	ScpUnresolvedImport:      "import '{0}' has no unit attached",
	ScpBaseNotClass:          "base '{0}' of '{1}' is not a class",
	ScpInheritanceCycle:      "class '{0}' inherits from itself",
	ScpUndeclaredFunc:        "function '{0}' is not declared",
	TypMismatchAssign:        "type {1} is not assignable to {0}",
	TypMismatchReturn:        "return type {1} does not match declared {0}",
	TypConditionNotBool:      "condition must be Bool, found {0}",
	TypBadOperands:           "operator '{0}' cannot be applied to {1} and {2}",
	TypBadOperand:            "operator '{0}' cannot be applied to {1}",
	TypInvalidCast:           "cannot cast {1} to {0}",
	TypUnknownCtorField:      "class '{1}' has no field '{0}'",
	TypDuplicateCtorField:    "field '{0}' is initialised more than once",
	TypConstraint:            "{1} does not satisfy the {2} constraint of '{0}'",
	TypVoidReturnValue:       "'{0}' returns Void and cannot return a value",
	TypMissingReturn:         "'{0}' must return {1} but has no return statement in its body",
	TypNoMatchingOverload:    "no overload of '{0}' accepts ({1})",
	TypNotIndexable:          "{0} is not indexable",
	TypNotClass:              "{0} has no members",
	TypTemplateArgCount:      "'{0}' expects {1} template argument(s), found {2}",
	TypMultiMember:           "member '{0}' differs across the candidates of {1}",
	TypIndexNotInt:           "index must be Int, found {0}",
	TypCaseValue:             "case value of type {1} does not match subject {0}",
	TypForBound:              "loop bound must be Int, found {0}",
	TypEmptyListNoType:       "empty list literal needs an element type",
	TypListElem:              "list element of type {1} does not match {0}",
	TypReturnValueMissing:    "'{0}' must return a value of type {1}",
	TypNotAssignable:         "expression cannot be assigned to",
	TypTooManyIndices:        "{0} accepts at most {1} indices",
	ModFinalBase:             "'{1}' cannot inherit from final class '{0}'",
	ModTemplatedBase:         "'{1}' cannot inherit from templated class '{0}'",
	ModAbstractIncomplete:    "class '{0}' does not implement abstract method(s) {1}",
	ModRecursion:             "'{0}' calls itself but is not marked rec",
	ModFinalOverride:         "'{0}' overrides a final method of '{1}'",
	ModAbstractInstantiation: "cannot instantiate abstract class '{0}'",
	ModPrivateAccess:         "'{0}' is not public in '{1}'",
	ModConstAssign:           "cannot assign to constant '{0}'",
	ModPureSideEffect:        "pure '{0}' assigns to '{1}'",
	ModBodilessConcrete:      "method '{0}' has no body but class '{1}' is not abstr",
	CfgBadCutoff:             "malformed cutoff directive '{0}'",
	CfgCutoffRange:           "cutoff {0} is outside [1, {1}]",
	CfgUnknownPass:           "unknown pass '{0}'",
	CfgBadMode:               "unknown mode '{0}'",
	CfgNoPasses:              "no passes configured",
	CfgPassOrder:             "pass '{0}' needs '{1}' to run before it",
	CfgBadFormat:             "unknown {0} '{1}'",
}

// SuggestionCode identifies a hint attached to a diagnostic.
type SuggestionCode uint8

const (
	SugNone SuggestionCode = iota
	SugDidYouMean
	SugAddRec
	SugMakePublic
	SugImplement
	SugRemoveFinal
	SugAddReturn
	SugUseCast
	SugMarkIn
)

var suggestionTemplates = map[SuggestionCode]string{
	SugDidYouMean:  "did you mean '{0}'?",
	SugAddRec:      "mark '{0}' as rec",
	SugMakePublic:  "mark '{0}' as public",
	SugImplement:   "implement {0} in '{1}' or mark it abstr",
	SugRemoveFinal: "remove final from '{0}'",
	SugAddReturn:   "add a return statement directly in the body of '{0}'",
	SugUseCast:     "use an explicit cast to {0}",
	SugMarkIn:      "mark parameter '{0}' as in",
}

// Format renders the message template of code with positional args.
// Codes without a template fall back to their title.
func Format(code Code, args []string) string {
	tpl, ok := templates[code]
	if !ok {
		return code.Title()
	}
	return substitute(tpl, args)
}

// FormatSuggestion renders a suggestion template.
func FormatSuggestion(code SuggestionCode, args []string) string {
	tpl, ok := suggestionTemplates[code]
	if !ok {
		return ""
	}
	return substitute(tpl, args)
}

func substitute(tpl string, args []string) string {
	if !strings.Contains(tpl, "{") {
		return tpl
	}
	var b strings.Builder
	b.Grow(len(tpl) + 16)
	for i := 0; i < len(tpl); i++ {
		if tpl[i] != '{' {
			b.WriteByte(tpl[i])
			continue
		}
		end := strings.IndexByte(tpl[i:], '}')
		if end < 0 {
			b.WriteString(tpl[i:])
			break
		}
		n, err := strconv.Atoi(tpl[i+1 : i+end])
		switch {
		case err != nil:
			b.WriteString(tpl[i : i+end+1])
		case n >= 0 && n < len(args):
			b.WriteString(args[n])
		default:
			b.WriteString("<?>")
		}
		i += end
	}
	return b.String()
}
