package pipeline

import (
	"context"
	"errors"
	"fmt"

	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/trace"
)

// Session analyses a program one top-level declaration or statement at a
// time. The Scope Table and every checker live as long as the session, so
// each submission sees what earlier ones declared.
type Session struct {
	pipe  *Pipeline
	st    *State
	unit  ast.UnitID
	count int
	// parent is the span the session was opened under.
	parent uint64
}

// SessionOptions tune an interactive session.
type SessionOptions struct {
	// Reporter receives every diagnostic as soon as it is raised, warnings
	// included.
	Reporter         diag.Reporter
	WarningsAsErrors bool
}

// NewSession opens a session over unit, which is both the root and the unit
// submissions belong to.
func (p *Pipeline) NewSession(ctx context.Context, b *ast.Builder, unit ast.UnitID, opts SessionOptions) *Session {
	sink := opts.Reporter
	if sink == nil {
		sink = diag.NopReporter{}
	}
	var reporter diag.Reporter = diag.RaiseReporter{Next: sink}
	if opts.WarningsAsErrors {
		reporter = diag.PromoteReporter{Next: reporter}
	}
	return &Session{
		pipe:   p,
		unit:   unit,
		parent: trace.CurrentSpan(ctx).SpanID,
		st: &State{
			Builder:  b,
			Root:     unit,
			Tracer:   trace.FromContext(ctx),
			Reporter: reporter,
		},
	}
}

// State exposes the annotations gathered so far.
func (s *Session) State() *State { return s.st }

// Unit is the unit submissions are added to.
func (s *Session) Unit() ast.UnitID { return s.unit }

// Submit runs every pass over one declaration that is already part of the
// session's unit. The first error aborts the remaining work on that
// declaration and is returned as a *diag.Raised; the session stays usable.
func (s *Session) Submit(id ast.DeclID) error {
	if s.st.Builder.Decls.Get(id) == nil {
		s.count++
		return fmt.Errorf("submission %d: no declaration %d", s.count, id)
	}
	return s.submit("decl", s.st.Builder.NameOf(id), func(pass Pass) {
		pass.Submit(s.st, s.unit, id)
	})
}

// SubmitStmt is Submit for a statement given at the top level, such as a
// local declaration or an expression. The statement must already be listed
// in the unit's Stmts.
func (s *Session) SubmitStmt(id ast.StmtID) error {
	st := s.st.Builder.Stmts.Get(id)
	if st == nil {
		s.count++
		return fmt.Errorf("submission %d: no statement %d", s.count, id)
	}
	return s.submit("stmt", st.Kind.String(), func(pass Pass) {
		pass.SubmitStmt(s.st, s.unit, id)
	})
}

func (s *Session) submit(what, label string, run func(Pass)) (err error) {
	s.count++
	span := trace.Begin(s.st.Tracer, trace.ScopeNode, "submit", s.parent).
		WithExtra(what, label)
	s.st.TraceParent = span.ID()
	defer func() {
		if r := recover(); r != nil {
			raised, ok := r.(*diag.Raised)
			if !ok {
				panic(r)
			}
			err = raised
			trace.Point(s.st.Tracer, trace.ScopeNode, "raised", span.ID(), raised.Diagnostic.Message)
			span.End(raised.Diagnostic.Code.ID())
			return
		}
		span.End("")
	}()
	for _, pass := range s.pipe.Passes() {
		run(pass)
	}
	return nil
}

// IsRaised reports whether err carries a diagnostic raised by a submission.
func IsRaised(err error) (*diag.Raised, bool) {
	var raised *diag.Raised
	if errors.As(err, &raised) {
		return raised, true
	}
	return nil, false
}
