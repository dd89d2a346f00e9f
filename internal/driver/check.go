package driver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"sable/internal/ast"
	"sable/internal/astio"
	"sable/internal/diag"
	"sable/internal/observ"
	"sable/internal/pipeline"
	"sable/internal/source"
	"sable/internal/trace"
)

// Options configure a batch check.
type Options struct {
	Pipeline         *pipeline.Pipeline
	MaxDiagnostics   int
	WarningsAsErrors bool
	// Validate re-checks the Scope Table invariants after resolution.
	Validate bool
	// Jobs bounds how many programs CheckAll analyses at once; 0 means
	// GOMAXPROCS.
	Jobs    int
	Timings bool
	// Interactive submits the root unit's declarations one at a time
	// through a session instead of running whole passes.
	Interactive bool
	// Cache, when set, replays the diagnostics of an identical earlier check.
	Cache *DiskCache
	// Progress, when set, receives an event per pass of every program.
	Progress ProgressSink
}

// Result is the outcome of checking one program.
type Result struct {
	Path    string
	Files   *source.FileSet
	Builder *ast.Builder
	Root    ast.UnitID
	// Bag holds the diagnostics of every pass that ran, sorted per pass.
	Bag    *diag.Bag
	Output *pipeline.Output
	Timing *observ.Report
	Cached bool
	// Err is set when the program could not be loaded; Bag is then empty.
	Err error
}

// Succeeded reports whether the program loaded and produced no errors.
func (r *Result) Succeeded() bool {
	return r != nil && r.Err == nil && r.Output.Succeeded()
}

// fingerprint lists everything besides the inputs that changes the outcome.
func (o Options) fingerprint(p *pipeline.Pipeline) []string {
	names := make([]string, 0, 3)
	for _, pass := range p.Passes() {
		names = append(names, pass.Name())
	}
	return []string{
		strings.Join(names, ","),
		strconv.Itoa(o.MaxDiagnostics),
		strconv.FormatBool(o.WarningsAsErrors),
		strconv.FormatBool(o.Interactive),
	}
}

// CheckFile loads the tree file at path, resolving imports to sibling files,
// and runs the pipeline over it. Halting on a pass with errors is not an
// error of CheckFile; it is visible through Result.Output.
func CheckFile(ctx context.Context, path string, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := opts.Pipeline
	if p == nil {
		p = pipeline.Default()
	}
	span, ctx := trace.Start(ctx, trace.ScopeDriver, "check")
	span.WithExtra("path", path)

	res := &Result{Path: path, Bag: diag.NewBag(opts.MaxDiagnostics)}
	emit(opts.Progress, Event{File: path, Status: StatusLoading})
	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}

	phase := beginPhase(timer, "load")
	h := &hasher{}
	loader := astio.NewLoader()
	loader.Resolve = siblingResolver(filepath.Dir(path), h)
	res.Files, res.Builder = loader.Files, loader.B
	doc, err := readDocument(path, h)
	if err == nil {
		res.Root, err = loader.Load(doc)
	}
	endPhase(timer, phase, "")
	if err != nil {
		res.Err = err
		emit(opts.Progress, finalEvent(res))
		span.End("load failed")
		return res, nil
	}

	key := h.sum(opts.fingerprint(p)...)
	if ok := replay(opts.Cache, key, res); ok {
		res.Timing = report(timer)
		emit(opts.Progress, finalEvent(res))
		span.End("cached")
		return res, nil
	}

	var out *pipeline.Output
	if opts.Interactive {
		emit(opts.Progress, Event{File: path, Status: StatusWorking, Pass: "submit", Step: 1, Steps: 1})
		out, err = submitAll(ctx, p, res, opts, timer)
	} else {
		out, err = p.Run(ctx, loader.B, res.Root, pipeline.Options{
			Reporter:         diag.BagReporter{Bag: res.Bag},
			Max:              opts.MaxDiagnostics,
			WarningsAsErrors: opts.WarningsAsErrors,
			Validate:         opts.Validate,
			Timer:            timer,
			OnPass: func(name string, index, total int) {
				emit(opts.Progress, Event{File: path, Status: StatusWorking, Pass: name, Step: index, Steps: total})
			},
		})
	}
	res.Output = out
	res.Timing = report(timer)
	if err != nil && !errors.Is(err, pipeline.ErrHalted) {
		emit(opts.Progress, Event{File: path, Status: StatusFailed, Err: err})
		span.End(err.Error())
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if opts.Cache != nil {
		payload := &DiskPayload{
			Ran:         out.Ran,
			Errors:      out.Errors,
			Warns:       out.Warns,
			Diagnostics: toPayload(res.Files, res.Bag.Items()),
		}
		// a failed write only costs the next run a recheck
		_ = opts.Cache.Put(key, payload)
	}
	emit(opts.Progress, finalEvent(res))
	span.End(fmt.Sprintf("%d errors, %d warnings", out.Errors, out.Warns))
	return res, nil
}

func replay(cache *DiskCache, key Digest, res *Result) bool {
	var payload DiskPayload
	if ok, err := cache.Get(key, &payload); !ok || err != nil {
		return false
	}
	for _, d := range fromPayload(res.Files, payload.Diagnostics) {
		res.Bag.Add(d)
	}
	res.Output = &pipeline.Output{Ran: payload.Ran, Errors: payload.Errors, Warns: payload.Warns}
	res.Cached = true
	return true
}

func beginPhase(t *observ.Timer, name string) int {
	if t == nil {
		return -1
	}
	return t.Begin(name)
}

func endPhase(t *observ.Timer, idx int, note string) {
	if t != nil {
		t.End(idx, note)
	}
}

func report(t *observ.Timer) *observ.Report {
	if t == nil {
		return nil
	}
	r := t.Report()
	return &r
}
