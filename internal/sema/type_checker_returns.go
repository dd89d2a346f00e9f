package sema

import "sable/internal/ast"

type returnStatus uint8

const (
	returnOpen returnStatus = iota
	returnClosed
)

// returnStatus is conservative: only a return statement, or a plain block
// holding one, closes a path. Branches and loops never do, even when every
// arm returns.
func (tc *TypeChecker) returnStatus(id ast.StmtID) returnStatus {
	st := tc.builder.Stmts.Get(id)
	if st == nil {
		return returnOpen
	}
	switch st.Kind {
	case ast.StmtReturn:
		return returnClosed
	case ast.StmtBlock:
		for _, s := range tc.builder.Stmts.Block(id).Stmts {
			if tc.returnStatus(s) == returnClosed {
				return returnClosed
			}
		}
	}
	return returnOpen
}
