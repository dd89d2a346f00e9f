package sema

import "sable/internal/symbols"

// pushScope re-enters a scope recorded by the resolver. It reports whether
// anything was pushed so the caller can pair it with popScope.
func (tc *TypeChecker) pushScope(id symbols.ScopeID) bool {
	if id == symbols.NoScopeID || tc.table == nil {
		return false
	}
	tc.table.Enter(id)
	return true
}

func (tc *TypeChecker) popScope(pushed bool) {
	if pushed {
		tc.table.Leave()
	}
}

// currentScope is the innermost re-entered scope; unqualified calls are
// looked up from here.
func (tc *TypeChecker) currentScope() symbols.ScopeID {
	if tc.table == nil {
		return symbols.NoScopeID
	}
	return tc.table.Current()
}
