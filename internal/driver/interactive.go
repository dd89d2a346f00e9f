package driver

import (
	"context"
	"fmt"

	"sable/internal/diag"
	"sable/internal/observ"
	"sable/internal/pipeline"
)

// submitAll feeds the root unit's top-level declarations to a session in
// walk order. A raised error aborts only the declaration it belongs to; its
// diagnostic is already in the bag by then. A diagnostic repeated by a later
// submission is kept once.
func submitAll(ctx context.Context, p *pipeline.Pipeline, res *Result, opts Options, timer *observ.Timer) (*pipeline.Output, error) {
	counter := &diag.CountingReporter{Next: diag.BagReporter{Bag: res.Bag}}
	s := p.NewSession(ctx, res.Builder, res.Root, pipeline.SessionOptions{
		Reporter:         diag.NewDedupReporter(counter),
		WarningsAsErrors: opts.WarningsAsErrors,
	})
	decls := res.Builder.Units.Get(res.Root).TopLevel()
	phase := beginPhase(timer, "submit")
	aborted := 0
	for _, id := range decls {
		if err := s.Submit(id); err != nil {
			if _, ok := pipeline.IsRaised(err); !ok {
				endPhase(timer, phase, "")
				return nil, err
			}
			aborted++
		}
	}
	endPhase(timer, phase, fmt.Sprintf("%d declarations, %d aborted", len(decls), aborted))
	res.Bag.Sort()

	out := &pipeline.Output{
		Errors: counter.Errors,
		Warns:  counter.Warnings,
	}
	if st := s.State(); st != nil {
		out.Symbols, out.Sema = st.Symbols, st.Sema
	}
	for _, pass := range p.Passes() {
		out.Ran = append(out.Ran, pass.Name())
	}
	return out, nil
}
