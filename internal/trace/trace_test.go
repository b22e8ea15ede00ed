package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltersScopes(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeModule, false},
		{LevelDetail, ScopeModule, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel("DEBUG"); err != nil || l != LevelDebug {
		t.Fatalf("ParseLevel(DEBUG) = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestRingKeepsNewestEvents(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		ring.Emit(&Event{Kind: KindPoint, Scope: ScopeNode, Name: name})
	}
	snap := ring.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot len = %d", len(snap))
	}
	var names []string
	for _, ev := range snap {
		names = append(names, ev.Name)
	}
	if got := strings.Join(names, ","); got != "c,d,e" {
		t.Fatalf("snapshot order = %s", got)
	}
}

func TestStreamWritesNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	span := Begin(tr, ScopePass, "parse", 0)
	Point(tr, ScopeNode, span.ID(), "commit", "dropped at phase level")
	span.WithExtra("exprs", "4").End("ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want begin+end, got %d lines:\n%s", len(lines), buf.String())
	}
	var end map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &end); err != nil {
		t.Fatal(err)
	}
	if end["kind"] != "end" || end["name"] != "parse" || end["detail"] != "ok" {
		t.Fatalf("unexpected end event %v", end)
	}
}

func TestBeginContextParentsNestedSpans(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), ring)

	outer, ctx := BeginContext(ctx, ScopeDriver, "check")
	inner, _ := BeginContext(ctx, ScopePass, "parse")
	inner.End("")
	outer.End("")

	snap := ring.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("got %d events", len(snap))
	}
	if snap[1].ParentID != outer.ID() {
		t.Fatalf("inner parent = %d, want %d", snap[1].ParentID, outer.ID())
	}
	if r, ok := RingOf(NewMultiTracer(LevelDebug, Nop, ring)); !ok || r != ring {
		t.Fatal("RingOf did not find the ring inside a multi tracer")
	}
}

func TestNopSpanIsInert(t *testing.T) {
	span := Begin(Nop, ScopeDriver, "x", 0)
	if span.ID() != 0 || span.End("") != 0 {
		t.Fatal("nop span should be inert")
	}
	if tr, err := New(Config{Level: LevelOff}); err != nil || tr.Enabled() {
		t.Fatalf("New(off) = %v, %v", tr, err)
	}
}

func TestSpanEndsOnce(t *testing.T) {
	ring := NewRingTracer(8, LevelPhase)
	span := Begin(ring, ScopePass, "check", 0)
	span.End("first")
	if d := span.End("second"); d != 0 {
		t.Fatalf("second End returned %v", d)
	}
	if ring.Len() != 2 {
		t.Fatalf("events = %d, want begin+end", ring.Len())
	}
	if got := ring.Snapshot()[1].Detail; got != "first" {
		t.Fatalf("end detail = %q", got)
	}
}
