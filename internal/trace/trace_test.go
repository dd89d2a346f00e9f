package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestSpanEmitsBeginAndEnd(t *testing.T) {
	ring := NewRingTracer(8, LevelDetail)
	span := Begin(ring, ScopePass, "resolve", 0).WithExtra("index", "1")
	span.End("0 errors")

	events := ring.Snapshot()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Kind != KindSpanBegin || events[1].Kind != KindSpanEnd {
		t.Fatalf("unexpected kinds %v, %v", events[0].Kind, events[1].Kind)
	}
	if events[1].Detail != "0 errors" || events[1].Extra["index"] != "1" {
		t.Fatalf("end event lost detail or extra: %+v", events[1])
	}
}

func TestLevelFiltersScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, true},
		{LevelError, ScopePass, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeModule, false},
		{LevelDetail, ScopeModule, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestRingWrapsAround(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d"} {
		ring.Emit(&Event{Kind: KindPoint, Scope: ScopeNode, Name: name})
	}
	var names []string
	for _, ev := range ring.Snapshot() {
		names = append(names, ev.Name)
	}
	if strings.Join(names, "") != "bcd" {
		t.Fatalf("snapshot order %v", names)
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	Begin(tr, ScopePass, "typecheck", 0).End("")
	Begin(tr, ScopeModule, "typecheck_unit", 0).End("")
	if buf.Len() != 0 {
		t.Fatal("stream wrote before Flush")
	}
	if err := tr.Flush(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (module scope filtered):\n%s", len(lines), buf.String())
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatal(err)
	}
	if ev["kind"] != "end" || ev["scope"] != "pass" || ev["name"] != "typecheck" {
		t.Fatalf("unexpected event %v", ev)
	}
}

func TestTextFormatSortsExtras(t *testing.T) {
	out := string(FormatEvent(&Event{
		Kind:  KindSpanEnd,
		Scope: ScopeModule,
		Name:  "typecheck_unit",
		Extra: map[string]string{"unit": "main", "b": "2"},
	}, FormatText))
	if !strings.Contains(out, "← typecheck_unit {b=2, unit=main}") {
		t.Fatalf("unexpected text %q", out)
	}
}

func TestContextPropagation(t *testing.T) {
	ring := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatal("tracer not found in context")
	}
	if FromContext(context.Background()) != Nop {
		t.Fatal("missing tracer must fall back to Nop")
	}
	parent := Begin(ring, ScopeDriver, "check", 0)
	ctx = parent.Inside(ctx)
	if CurrentSpan(ctx).SpanID != parent.ID() {
		t.Fatal("span not propagated")
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Enabled() {
		t.Fatal("off tracer must be disabled")
	}
}

func TestStartNestsUnderCurrentSpan(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), ring)

	outer, ctx := Start(ctx, ScopeDriver, "check")
	inner, _ := Start(ctx, ScopePass, "resolve")
	unit := inner.Child(ring, ScopeModule, "resolve_unit")
	Point(ring, ScopeNode, "raised", unit.ID(), "SCP1002")
	unit.End("")
	inner.End("")
	outer.End("")

	events := ring.Snapshot()
	if len(events) != 7 {
		t.Fatalf("got %d events, want 7", len(events))
	}
	if events[1].ParentID != outer.ID() || events[2].ParentID != inner.ID() {
		t.Fatalf("parents %d, %d; want %d, %d", events[1].ParentID, events[2].ParentID, outer.ID(), inner.ID())
	}
	if ev := events[3]; ev.Kind != KindPoint || ev.ParentID != unit.ID() || ev.Detail != "SCP1002" {
		t.Fatalf("unexpected point %+v", ev)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Seq <= events[i-1].Seq {
			t.Fatalf("sequence not increasing at %d", i)
		}
	}
}

func TestInertSpanIsSafe(t *testing.T) {
	ring := NewRingTracer(4, LevelPhase)
	span := Begin(ring, ScopeNode, "submit", 0).WithExtra("decl", "x")
	if span.ID() != 0 || span.End("done") != 0 {
		t.Fatal("filtered span must be inert")
	}
	ctx := span.Inside(context.Background())
	if CurrentSpan(ctx).SpanID != 0 {
		t.Fatal("inert span must not become current")
	}
	if len(ring.Snapshot()) != 0 {
		t.Fatal("filtered span emitted events")
	}
}

func TestDumpRingLast(t *testing.T) {
	ring := NewRingTracer(4, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		ring.Emit(&Event{Kind: KindPoint, Scope: ScopeNode, Name: name})
	}
	multi := NewMultiTracer(LevelDebug, NewStreamTracer(&bytes.Buffer{}, LevelDebug, FormatText), ring)
	var buf bytes.Buffer
	if err := DumpRing(multi, &buf, FormatText, 2); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasSuffix(lines[0], "• d") || !strings.HasSuffix(lines[1], "• e") {
		t.Fatalf("unexpected dump:\n%s", buf.String())
	}
	if err := DumpRing(Nop, &buf, FormatText, 0); err != nil {
		t.Fatal(err)
	}
}
