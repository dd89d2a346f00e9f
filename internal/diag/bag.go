package diag

import (
	"cmp"
	"slices"
)

// Bag collects the diagnostics of one pass. A full bag keeps counting what it
// refuses so the caller can say how much was cut.
type Bag struct {
	items   []Diagnostic
	limit   int
	dropped int
}

// NewBag holds at most limit diagnostics; limit <= 0 keeps everything.
func NewBag(limit int) *Bag {
	size := 16
	if limit > 0 {
		size = min(limit, 64)
	}
	return &Bag{items: make([]Diagnostic, 0, size), limit: limit}
}

// Add возвращает false, если лимит исчерпан.
func (b *Bag) Add(d Diagnostic) bool {
	if b.limit > 0 && len(b.items) >= b.limit {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Dropped() int { return b.dropped }

func (b *Bag) Len() int { return len(b.items) }

// Items aliases the bag's storage; callers must not modify it.
func (b *Bag) Items() []Diagnostic { return b.items }

// HasErrors is true when any diagnostic is an error.
func (b *Bag) HasErrors() bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= SevError })
}

func (b *Bag) Counts() (errs, warns int) {
	for _, d := range b.items {
		switch d.Severity {
		case SevError:
			errs++
		case SevWarning:
			warns++
		}
	}
	return errs, warns
}

// Sort orders by position, then errors before warnings, then by code. Equal
// keys keep insertion order.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		switch {
		case x.Primary.Before(y.Primary):
			return -1
		case y.Primary.Before(x.Primary):
			return 1
		}
		if c := cmp.Compare(y.Severity, x.Severity); c != 0 {
			return c
		}
		return cmp.Compare(x.Code, y.Code)
	})
}

// Dedup keeps the first of each group of repeats, as DedupReporter does.
func (b *Bag) Dedup() {
	seen := make(map[dedupKey]bool, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		key := keyOf(&d)
		if seen[key] {
			return true
		}
		seen[key] = true
		return false
	})
}
