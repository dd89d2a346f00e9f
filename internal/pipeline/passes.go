package pipeline

import (
	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/sema"
	"sable/internal/symbols"
	"sable/internal/trace"
	"sable/internal/types"
)

// State is the tree and the annotations passes share. Each pass writes its
// own fields and only reads the ones earlier passes wrote.
type State struct {
	Builder *ast.Builder
	Root    ast.UnitID
	Tracer  trace.Tracer
	// TraceParent is the span of the running pass or submission.
	TraceParent uint64
	// Reporter receives the diagnostics of the running pass.
	Reporter diag.Reporter
	// Validate re-checks the Scope Table invariants after resolution.
	Validate bool

	Table   *symbols.Table
	Types   *types.Interner
	Symbols *symbols.Result
	Sema    *sema.Result

	// interactive state, created on the first submission
	resolver  *symbols.Resolver
	checker   *sema.TypeChecker
	modifiers *sema.ModifierChecker
}

func (st *State) semaOptions() sema.Options {
	return sema.Options{
		Reporter:    st.Reporter,
		Symbols:     st.Symbols,
		Types:       st.Types,
		Tracer:      st.Tracer,
		TraceParent: st.TraceParent,
	}
}

// Pass is one analysis over the program. Run processes the whole tree;
// Submit processes a single top-level declaration of unit in the context of
// everything submitted before.
type Pass interface {
	Name() string
	// Requires names the pass that must run earlier, or "".
	Requires() string
	Run(st *State)
	Submit(st *State, unit ast.UnitID, id ast.DeclID)
	// SubmitStmt analyses a statement given at the top level of unit.
	SubmitStmt(st *State, unit ast.UnitID, id ast.StmtID)
}

const (
	PassResolve   = "resolve"
	PassTypecheck = "typecheck"
	PassModifiers = "modifiers"
)

var registry = []Pass{resolvePass{}, typecheckPass{}, modifiersPass{}}

// DefaultPassNames lists every known pass in dependency order.
func DefaultPassNames() []string {
	names := make([]string, len(registry))
	for i, p := range registry {
		names[i] = p.Name()
	}
	return names
}

// LookupPass returns the pass registered under name.
func LookupPass(name string) (Pass, bool) {
	for _, p := range registry {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// buildPasses maps names to passes and checks that each prerequisite runs
// before the pass needing it.
func buildPasses(names []string) ([]Pass, error) {
	if len(names) == 0 {
		return nil, newConfigError(diag.CfgNoPasses)
	}
	out := make([]Pass, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		p, ok := LookupPass(name)
		if !ok || seen[name] {
			return nil, newConfigError(diag.CfgUnknownPass, name)
		}
		if req := p.Requires(); req != "" && !seen[req] {
			return nil, newConfigError(diag.CfgPassOrder, name, req)
		}
		seen[name] = true
		out = append(out, p)
	}
	return out, nil
}

type resolvePass struct{}

func (resolvePass) Name() string     { return PassResolve }
func (resolvePass) Requires() string { return "" }

func (resolvePass) Run(st *State) {
	st.Symbols = symbols.ResolveProgram(st.Builder, st.Root, symbols.ResolveOptions{
		Table:    st.Table,
		Reporter: st.Reporter,
		Validate: st.Validate,
	})
	st.Table = st.Symbols.Table
}

func (resolvePass) Submit(st *State, unit ast.UnitID, id ast.DeclID) {
	st.ensureResolver().ResolveTopLevel(unit, id)
}

func (resolvePass) SubmitStmt(st *State, unit ast.UnitID, id ast.StmtID) {
	st.ensureResolver().ResolveTopLevelStmt(unit, id)
}

type typecheckPass struct{}

func (typecheckPass) Name() string     { return PassTypecheck }
func (typecheckPass) Requires() string { return PassResolve }

func (typecheckPass) Run(st *State) {
	st.Sema = sema.Check(st.Builder, st.semaOptions())
}

func (typecheckPass) Submit(st *State, unit ast.UnitID, id ast.DeclID) {
	st.ensureChecker().CheckDecl(unit, id)
}

func (typecheckPass) SubmitStmt(st *State, unit ast.UnitID, id ast.StmtID) {
	st.ensureChecker().CheckStmt(unit, id)
}

type modifiersPass struct{}

func (modifiersPass) Name() string     { return PassModifiers }
func (modifiersPass) Requires() string { return PassTypecheck }

func (modifiersPass) Run(st *State) {
	sema.CheckModifiers(st.Builder, st.Sema, st.semaOptions())
}

func (modifiersPass) Submit(st *State, unit ast.UnitID, id ast.DeclID) {
	st.ensureModifiers().CheckDecl(unit, id)
}

func (modifiersPass) SubmitStmt(st *State, unit ast.UnitID, id ast.StmtID) {
	st.ensureModifiers().CheckStmt(unit, id)
}

func (st *State) ensureResolver() *symbols.Resolver {
	if st.resolver == nil {
		if st.Table == nil {
			st.Table = symbols.NewTable(symbols.Hints{}, st.Builder.Strings)
		}
		st.resolver = symbols.NewResolver(st.Builder, st.Table, st.Root, st.Reporter)
		st.Symbols = st.resolver.Result()
	}
	return st.resolver
}

func (st *State) ensureChecker() *sema.TypeChecker {
	if st.checker == nil {
		st.checker = sema.NewTypeChecker(st.Builder, st.semaOptions())
		st.Sema = st.checker.Result()
	}
	return st.checker
}

func (st *State) ensureModifiers() *sema.ModifierChecker {
	if st.modifiers == nil {
		st.modifiers = sema.NewModifierChecker(st.Builder, st.Sema, st.semaOptions())
	}
	return st.modifiers
}
