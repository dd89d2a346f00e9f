package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/go-test/deep"

	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/observ"
	"sable/internal/testkit"
	"sable/internal/trace"
)

func run(t *testing.T, p *testkit.Program, cfg PipelineConfig, opts Options) (*Output, *diag.Bag, error) {
	t.Helper()
	pipe, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	bag := diag.NewBag(0)
	opts.Reporter = diag.BagReporter{Bag: bag}
	opts.Validate = true
	out, err := pipe.Run(context.Background(), p.B, p.Unit, opts)
	return out, bag, err
}

func all() PipelineConfig { return PipelineConfig{Passes: DefaultPassNames()} }

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestRunCleanProgram(t *testing.T) {
	p := testkit.New("main.sbl")
	p.Global("g", p.T("Int"), p.Int("1"), 0)
	p.Main(p.Local("x", p.T("Int"), p.Bin(ast.OpAdd, p.Name("g"), p.Int("2"))))

	out, bag, err := run(t, p, all(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if bag.Len() != 0 || !out.Succeeded() {
		t.Fatalf("unexpected diagnostics %+v", bag.Items())
	}
	if diff := deep.Equal(out.Ran, DefaultPassNames()); diff != nil {
		t.Fatal(diff)
	}
	if out.Symbols == nil || out.Sema == nil {
		t.Fatal("annotations missing")
	}
	if out.Symbols.Table.Depth() != 0 {
		t.Fatalf("scope stack left at depth %d", out.Symbols.Table.Depth())
	}
}

func TestRunHaltsAfterFailingPass(t *testing.T) {
	p := testkit.New("main.sbl")
	p.Main(
		p.Local("x", p.T("Int"), p.Name("x")),
		p.If(p.Int("5"), p.Block(), ast.NoStmtID),
	)

	out, bag, err := run(t, p, all(), Options{})
	if !errors.Is(err, ErrHalted) {
		t.Fatalf("expected ErrHalted, got %v", err)
	}
	if diff := deep.Equal(out.Ran, []string{PassResolve}); diff != nil {
		t.Fatal(diff)
	}
	if out.Sema != nil {
		t.Fatal("typecheck must not run after a failing resolve pass")
	}
	if diff := deep.Equal(codes(bag), []diag.Code{diag.ScpSelfAssign}); diff != nil {
		t.Fatal(diff)
	}
}

func TestRunStopsAtCutoff(t *testing.T) {
	cfg := all()
	cfg.StopAfter = 1
	out, bag, err := run(t, intCondition(), cfg, Options{})
	if err != nil || bag.Len() != 0 {
		t.Fatalf("resolve alone must succeed: %v %+v", err, bag.Items())
	}
	if diff := deep.Equal(out.Ran, []string{PassResolve}); diff != nil {
		t.Fatal(diff)
	}

	cfg.StopAfter = 2
	_, bag, err = run(t, intCondition(), cfg, Options{})
	if !errors.Is(err, ErrHalted) {
		t.Fatalf("expected ErrHalted, got %v", err)
	}
	if diff := deep.Equal(codes(bag), []diag.Code{diag.TypConditionNotBool}); diff != nil {
		t.Fatal(diff)
	}
}

func TestRunAnnouncesEachPass(t *testing.T) {
	var started []string
	var last int
	_, _, err := run(t, intCondition(), all(), Options{OnPass: func(name string, index, total int) {
		if total != 3 || index != last+1 {
			t.Errorf("%s announced as %d/%d after %d", name, index, total, last)
		}
		last = index
		started = append(started, name)
	}})
	if !errors.Is(err, ErrHalted) {
		t.Fatalf("expected ErrHalted, got %v", err)
	}
	// the failing pass is announced, the one after it is not
	if diff := deep.Equal(started, []string{PassResolve, PassTypecheck}); diff != nil {
		t.Fatal(diff)
	}
}

func intCondition() *testkit.Program {
	p := testkit.New("main.sbl")
	p.Main(p.If(p.Int("5"), p.Block(), ast.NoStmtID))
	return p
}

func pureWritesGlobal() *testkit.Program {
	p := testkit.New("main.sbl")
	p.Global("g", p.T("Int"), p.Int("0"), 0)
	p.Func(testkit.Fn{Name: "f", Mods: ast.ModPure, Body: []ast.StmtID{p.Assign(p.Name("g"), p.Int("1"))}})
	p.Main()
	return p
}

func TestWarningsDoNotHalt(t *testing.T) {
	out, bag, err := run(t, pureWritesGlobal(), all(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Succeeded() || out.Warns != 1 {
		t.Fatalf("want one warning and success, got %d errors %d warnings", out.Errors, out.Warns)
	}
	if diff := deep.Equal(codes(bag), []diag.Code{diag.ModPureSideEffect}); diff != nil {
		t.Fatal(diff)
	}
}

func TestWarningsAsErrors(t *testing.T) {
	out, bag, err := run(t, pureWritesGlobal(), all(), Options{WarningsAsErrors: true})
	if !errors.Is(err, ErrHalted) {
		t.Fatalf("expected ErrHalted, got %v", err)
	}
	if out.Succeeded() || bag.Items()[0].Severity != diag.SevError {
		t.Fatal("promoted warning must count as an error")
	}
}

func TestRunDeliversSortedDiagnosticsPerPass(t *testing.T) {
	p := testkit.New("main.sbl")
	p.Main(
		p.Do(p.Name("b")),
		p.Do(p.Name("a")),
	)
	_, bag, err := run(t, p, all(), Options{})
	if !errors.Is(err, ErrHalted) {
		t.Fatalf("expected ErrHalted, got %v", err)
	}
	items := bag.Items()
	if len(items) != 2 || !items[0].Primary.Before(items[1].Primary) {
		t.Fatalf("diagnostics not in source order: %+v", items)
	}
}

func TestRunTracesAndTimesEveryPass(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelPhase)
	ctx := trace.WithTracer(context.Background(), ring)
	timer := observ.NewTimer()

	pipe := Default()
	p := pureWritesGlobal()
	if _, err := pipe.Run(ctx, p.B, p.Unit, Options{Timer: timer}); err != nil {
		t.Fatal(err)
	}
	var ended []string
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanEnd && ev.Scope == trace.ScopePass {
			ended = append(ended, ev.Name)
		}
	}
	if diff := deep.Equal(ended, DefaultPassNames()); diff != nil {
		t.Fatal(diff)
	}
	report := timer.Report()
	if len(report.Phases) != 3 || report.Phases[2].Note != "0 errors, 1 warnings" {
		t.Fatalf("unexpected timer report %+v", report)
	}
}
