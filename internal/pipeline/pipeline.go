package pipeline

import (
	"context"
	"fmt"
	"strconv"

	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/observ"
	"sable/internal/sema"
	"sable/internal/symbols"
	"sable/internal/trace"
)

// Pipeline is an ordered, validated list of passes.
type Pipeline struct {
	passes []Pass
	stop   int
}

// New builds a pipeline from cfg. The stop-after cutoff must lie in
// [1, len(passes)] unless it is zero.
func New(cfg PipelineConfig) (*Pipeline, error) {
	passes, err := buildPasses(cfg.Passes)
	if err != nil {
		return nil, err
	}
	if err := checkCutoff(cfg.StopAfter, len(passes)); err != nil {
		return nil, err
	}
	return &Pipeline{passes: passes, stop: cfg.StopAfter}, nil
}

// Default runs every known pass.
func Default() *Pipeline {
	p, err := New(PipelineConfig{Passes: DefaultPassNames()})
	if err != nil {
		panic(err)
	}
	return p
}

// Passes returns the passes that will run, cutoff applied.
func (p *Pipeline) Passes() []Pass {
	if p.stop > 0 {
		return p.passes[:p.stop]
	}
	return p.passes
}

// Has reports whether the pass named name will run.
func (p *Pipeline) Has(name string) bool {
	for _, pass := range p.Passes() {
		if pass.Name() == name {
			return true
		}
	}
	return false
}

// Options tune one batch run.
type Options struct {
	// Reporter receives the diagnostics of each pass once it completes,
	// sorted by position.
	Reporter diag.Reporter
	// Max caps the diagnostics kept per pass; 0 keeps all.
	Max              int
	WarningsAsErrors bool
	Validate         bool
	Timer            *observ.Timer
	// OnPass, when set, is called as each pass starts with its 1-based
	// position among total.
	OnPass func(name string, index, total int)
}

// Output is what a batch run produced. Ran lists the passes that completed;
// on ErrHalted the last of them is the one that reported errors.
type Output struct {
	Symbols *symbols.Result
	Sema    *sema.Result
	Ran     []string
	Errors  int
	Warns   int
}

// Succeeded reports whether the program can be handed to a back end.
func (o *Output) Succeeded() bool { return o != nil && o.Errors == 0 }

// Run executes the passes over the tree rooted at root in batch mode. The
// diagnostics of a pass are delivered together after it completes; if any of
// them is an error, Run stops and returns an error wrapping ErrHalted.
func (p *Pipeline) Run(ctx context.Context, b *ast.Builder, root ast.UnitID, opts Options) (*Output, error) {
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID
	st := &State{
		Builder:  b,
		Root:     root,
		Tracer:   tracer,
		Validate: opts.Validate,
	}
	out := &Output{}
	passes := p.Passes()
	for i, pass := range passes {
		if opts.OnPass != nil {
			opts.OnPass(pass.Name(), i+1, len(passes))
		}
		bag := diag.NewBag(opts.Max)
		var reporter diag.Reporter = diag.BagReporter{Bag: bag}
		if opts.WarningsAsErrors {
			reporter = diag.PromoteReporter{Next: reporter}
		}
		st.Reporter = reporter

		span := trace.Begin(tracer, trace.ScopePass, pass.Name(), parent).
			WithExtra("index", strconv.Itoa(i+1))
		st.TraceParent = span.ID()
		var phase int
		if opts.Timer != nil {
			phase = opts.Timer.Begin(pass.Name())
		}

		pass.Run(st)

		bag.Sort()
		bag.Dedup()
		errs, warns := bag.Counts()
		out.Errors += errs
		out.Warns += warns
		out.Ran = append(out.Ran, pass.Name())
		out.Symbols, out.Sema = st.Symbols, st.Sema

		note := fmt.Sprintf("%d errors, %d warnings", errs, warns)
		if opts.Timer != nil {
			opts.Timer.End(phase, note)
		}
		span.End(note)

		if opts.Reporter != nil {
			for _, d := range bag.Items() {
				opts.Reporter.Report(d)
			}
		}
		if errs > 0 {
			return out, fmt.Errorf("%s: %w", pass.Name(), ErrHalted)
		}
	}
	return out, nil
}
