package diag

import "sable/internal/source"

// Reporter - минимальный контракт получения диагностик от фаз.
// Реализации: BagReporter, NopReporter, MultiReporter, DedupReporter,
// PromoteReporter, RaiseReporter.
type Reporter interface {
	Report(d Diagnostic)
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, sev Severity, code Code, primary source.Span, args ...string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		diag:     New(sev, code, primary, args...),
	}
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, primary source.Span, args ...string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, primary, args...)
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, primary source.Span, args ...string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, primary, args...)
}

// WithNote appends a note to diagnostic.
func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithNote(sp, msg)
	return b
}

// WithSuggestion attaches a hint.
func (b *ReportBuilder) WithSuggestion(code SuggestionCode, args ...string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithSuggestion(code, args...)
	return b
}

// Emit sends diagnostic to underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	b.emitted = true
	if b.reporter != nil {
		b.reporter.Report(b.diag)
	}
}

// Diagnostic returns accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.diag
}

// BagReporter - адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// MultiReporter fans out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) Report(d Diagnostic) {
	for _, r := range m {
		if r != nil {
			r.Report(d)
		}
	}
}

// PromoteReporter turns warnings into errors before forwarding.
type PromoteReporter struct{ Next Reporter }

func (r PromoteReporter) Report(d Diagnostic) {
	if d.Severity == SevWarning {
		d.Severity = SevError
	}
	if r.Next != nil {
		r.Next.Report(d)
	}
}

// RaiseReporter forwards every diagnostic and then panics with *Raised when
// it is an error. Used by interactive sessions, which recover the panic at
// the statement boundary.
type RaiseReporter struct{ Next Reporter }

func (r RaiseReporter) Report(d Diagnostic) {
	if r.Next != nil {
		r.Next.Report(d)
	}
	if d.Severity >= SevError {
		panic(&Raised{Diagnostic: d})
	}
}

// CountingReporter counts errors and warnings passing through it.
type CountingReporter struct {
	Next     Reporter
	Errors   int
	Warnings int
}

func (r *CountingReporter) Report(d Diagnostic) {
	switch d.Severity {
	case SevError:
		r.Errors++
	case SevWarning:
		r.Warnings++
	}
	if r.Next != nil {
		r.Next.Report(d)
	}
}

type dedupKey struct {
	code    Code
	sev     Severity
	primary source.Span
	msg     string
}

func keyOf(d *Diagnostic) dedupKey {
	return dedupKey{code: d.Code, sev: d.Severity, primary: d.Primary, msg: d.Message}
}

// DedupReporter forwards each distinct diagnostic once. Two diagnostics are
// the same when code, severity, primary span and message agree; notes and
// suggestions are not compared.
type DedupReporter struct {
	Next Reporter
	seen map[dedupKey]struct{}
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{Next: next, seen: make(map[dedupKey]struct{})}
}

func (r *DedupReporter) Report(d Diagnostic) {
	key := keyOf(&d)
	if _, dup := r.seen[key]; dup {
		return
	}
	r.seen[key] = struct{}{}
	if r.Next != nil {
		r.Next.Report(d)
	}
}
