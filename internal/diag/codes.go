package diag

import (
	"fmt"
)

// Code identifies a diagnostic. The thousands digit is the category.
type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Scope: bindings and name resolution
	ScpInfo             Code = 1000
	ScpRedeclared       Code = 1001
	ScpUnresolved       Code = 1002
	ScpSelfAssign       Code = 1003
	ScpUndeclaredClass  Code = 1004
	ScpUndeclaredField  Code = 1005
	ScpUndeclaredType   Code = 1006
	ScpShadowsGlobal    Code = 1007
	ScpUndeclaredMethod Code = 1008
	ScpImportCycle      Code = 1009
	ScpThisOutsideClass Code = 1010
	ScpUnresolvedImport Code = 1011
	ScpBaseNotClass     Code = 1012
	ScpInheritanceCycle Code = 1013
	ScpUndeclaredFunc   Code = 1014

	// Type: assignment and checking
	TypInfo               Code = 2000
	TypMismatchAssign     Code = 2001
	TypMismatchReturn     Code = 2002
	TypConditionNotBool   Code = 2003
	TypBadOperands        Code = 2004
	TypBadOperand         Code = 2005
	TypInvalidCast        Code = 2006
	TypUnknownCtorField   Code = 2007
	TypDuplicateCtorField Code = 2008
	TypConstraint         Code = 2009
	TypVoidReturnValue    Code = 2010
	TypMissingReturn      Code = 2011
	TypNoMatchingOverload Code = 2012
	TypNotIndexable       Code = 2013
	TypNotClass           Code = 2014
	TypTemplateArgCount   Code = 2015
	TypMultiMember        Code = 2016
	TypIndexNotInt        Code = 2017
	TypCaseValue          Code = 2018
	TypForBound           Code = 2019
	TypEmptyListNoType    Code = 2020
	TypListElem           Code = 2021
	TypReturnValueMissing Code = 2022
	TypNotAssignable      Code = 2023
	TypTooManyIndices     Code = 2024

	// Modifier: access and behaviour legality
	ModInfo                  Code = 3000
	ModFinalBase             Code = 3001
	ModTemplatedBase         Code = 3002
	ModAbstractIncomplete    Code = 3003
	ModRecursion             Code = 3004
	ModFinalOverride         Code = 3005
	ModAbstractInstantiation Code = 3006
	ModPrivateAccess         Code = 3007
	ModConstAssign           Code = 3008
	ModPureSideEffect        Code = 3009
	ModBodilessConcrete      Code = 3010

	// Configuration of the pass pipeline
	CfgInfo        Code = 4000
	CfgBadCutoff   Code = 4001
	CfgCutoffRange Code = 4002
	CfgUnknownPass Code = 4003
	CfgBadMode     Code = 4004
	CfgNoPasses    Code = 4005
	CfgPassOrder   Code = 4006
	CfgBadFormat   Code = 4007
)

var codeDescription = map[Code]string{
	UnknownCode:              "Unknown error",
	ScpInfo:                  "Scope information",
	ScpRedeclared:            "Redeclaration in the same scope",
	ScpUnresolved:            "Unresolved reference",
	ScpSelfAssign:            "Self-referential initializer",
	ScpUndeclaredClass:       "Undeclared class",
	ScpUndeclaredField:       "Undeclared field",
	ScpUndeclaredType:        "Undeclared type",
	ScpShadowsGlobal:         "Name shadows a declaration in an enclosing scope",
	ScpUndeclaredMethod:      "Undeclared method",
	ScpImportCycle:           "Import cycle",
	ScpThisOutsideClass:      "'this' outside of a class",
	ScpUnresolvedImport:      "Unresolved import",
	ScpBaseNotClass:          "Base is not a class",
	ScpInheritanceCycle:      "Inheritance cycle",
	ScpUndeclaredFunc:        "Undeclared function",
	TypInfo:                  "Type information",
	TypMismatchAssign:        "Mismatched assignment type",
	TypMismatchReturn:        "Mismatched return type",
	TypConditionNotBool:      "Condition is not boolean",
	TypBadOperands:           "Invalid operand types",
	TypBadOperand:            "Invalid operand type",
	TypInvalidCast:           "Invalid cast",
	TypUnknownCtorField:      "Unknown constructor field",
	TypDuplicateCtorField:    "Duplicate constructor field",
	TypConstraint:            "Template constraint not satisfied",
	TypVoidReturnValue:       "Return value in a Void construct",
	TypMissingReturn:         "Missing return",
	TypNoMatchingOverload:    "No matching overload",
	TypNotIndexable:          "Expression is not indexable",
	TypNotClass:              "Member access on a non-class value",
	TypTemplateArgCount:      "Wrong number of template arguments",
	TypMultiMember:           "Member differs across union candidates",
	TypIndexNotInt:           "Index is not Int",
	TypCaseValue:             "Case value does not match the subject",
	TypForBound:              "Loop bound is not Int",
	TypEmptyListNoType:       "Empty list literal needs an element type",
	TypListElem:              "Mismatched list element",
	TypReturnValueMissing:    "Missing return value",
	TypNotAssignable:         "Expression is not assignable",
	TypTooManyIndices:        "Too many indices",
	ModInfo:                  "Modifier information",
	ModFinalBase:             "Inheritance from a final class",
	ModTemplatedBase:         "Inheritance from a templated class",
	ModAbstractIncomplete:    "Abstract methods not implemented",
	ModRecursion:             "Recursion without 'rec'",
	ModFinalOverride:         "Override of a final method",
	ModAbstractInstantiation: "Instantiation of an abstract class",
	ModPrivateAccess:         "Access to a non-public member",
	ModConstAssign:           "Assignment to a constant",
	ModPureSideEffect:        "Side effect in a pure construct",
	ModBodilessConcrete:      "Method without body in a concrete class",
	CfgInfo:                  "Configuration information",
	CfgBadCutoff:             "Malformed pass cutoff",
	CfgCutoffRange:           "Pass cutoff out of range",
	CfgUnknownPass:           "Unknown pass",
	CfgBadMode:               "Unknown pipeline mode",
	CfgNoPasses:              "Empty pass list",
	CfgPassOrder:             "Pass prerequisite missing",
	CfgBadFormat:             "Unknown diagnostics setting",
}

// Category is the thousands group of a code.
type Category uint8

const (
	CatUnknown Category = iota
	CatScope
	CatType
	CatModifier
	CatConfig
)

func (c Category) String() string {
	switch c {
	case CatScope:
		return "scope"
	case CatType:
		return "type"
	case CatModifier:
		return "modifier"
	case CatConfig:
		return "config"
	}
	return "unknown"
}

func (c Code) Category() Category {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return CatScope
	case ic >= 2000 && ic < 3000:
		return CatType
	case ic >= 3000 && ic < 4000:
		return CatModifier
	case ic >= 4000 && ic < 5000:
		return CatConfig
	}
	return CatUnknown
}

func (c Code) ID() string {
	switch c.Category() {
	case CatScope:
		return fmt.Sprintf("SCP%04d", int(c))
	case CatType:
		return fmt.Sprintf("TYP%04d", int(c))
	case CatModifier:
		return fmt.Sprintf("MOD%04d", int(c))
	case CatConfig:
		return fmt.Sprintf("CFG%04d", int(c))
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
