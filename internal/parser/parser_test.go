package parser

import (
	"errors"
	"testing"

	"rill/internal/diag"
	"rill/internal/diagfmt"
	"rill/internal/tables"
	"rill/internal/trace"
)

func TestParseList(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		err   string
	}{
		{name: "empty", input: "[]", want: "[]"},
		{name: "leading comment", input: "-- Мы прячем золото в трастовые фонды\n[]", want: "[]"},
		{name: "digit groups", input: "[4_000_000]", want: "[4000000]"},
		{name: "plain digits", input: "[4000000]", want: "[4000000]"},
		{name: "trailing comma", input: "[40, 2, 42,]", want: "[40, 2, 42]"},
		{name: "no trailing comma", input: "[40, 2, 42]", want: "[40, 2, 42]"},
		{name: "nested", input: "[[1], [], [2, [3]]]", want: "[[1], [], [2, [3]]]"},
		{name: "comments between items", input: "[1 -- one\n, 2 -- two\n]", want: "[1, 2]"},
		{name: "whitespace everywhere", input: "  [ 1 ,\n\t2 , ]  ", want: "[1, 2]"},

		{name: "open bracket only", input: "[", err: "unexpected end of input"},
		{name: "unterminated", input: "[40, 2, 42", err: "unexpected end of input"},
		{name: "missing separator", input: "[1 2]", err: "expected ','"},
		{name: "double comma", input: "[1,,]", err: "expected expression"},
		{name: "not a list", input: "x", err: "expected '['"},
		{name: "overflowing item", input: "[99999999999999999999999]", err: "expected expression"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tb := tables.New(tables.Hints{})
			items, err := ParseList(tc.input, tb, Options{})
			if tc.err != "" {
				if err == nil {
					t.Fatalf("expected error %q, got %s", tc.err, diagfmt.Exprs(tb, items))
				}
				if err.Error() != tc.err {
					t.Fatalf("error = %q, want %q", err.Error(), tc.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := diagfmt.Exprs(tb, items); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestDigitSeparatorsDoNotChangeValue(t *testing.T) {
	tb := tables.New(tables.Hints{})
	grouped, err := ParseList("[4_000_000]", tb, Options{})
	if err != nil {
		t.Fatal(err)
	}
	plain, err := ParseList("[4000000]", tb, Options{})
	if err != nil {
		t.Fatal(err)
	}
	g, _ := tb.Expr(grouped[0]).Integer()
	p, _ := tb.Expr(plain[0]).Integer()
	if g != 4_000_000 || g != p {
		t.Fatalf("grouped=%d plain=%d", g, p)
	}
}

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		input string
		kind  ErrorKind
		code  diag.Code
		start uint32
	}{
		{"[", UnexpectedEndOfInput, diag.SynUnexpectedEOF, 1},
		{"[1 2]", ExpectedChar, diag.SynExpectedChar, 3},
		{"[1,,]", ExpectedToken, diag.SynExpectedToken, 3},
		{"[123456789012345678901]", ExpectedToken, diag.SynExpectedToken, 1},
	}
	for _, tc := range cases {
		tb := tables.New(tables.Hints{})
		_, err := ParseList(tc.input, tb, Options{File: 3})
		var perr *Error
		if !errors.As(err, &perr) {
			t.Fatalf("%q: expected *Error, got %v", tc.input, err)
		}
		if perr.Kind != tc.kind || perr.Code() != tc.code {
			t.Errorf("%q: kind=%s code=%s", tc.input, perr.Kind, perr.Code().ID())
		}
		if perr.Span().Start != tc.start || perr.Span().File != 3 {
			t.Errorf("%q: span = %+v, want start %d in file 3", tc.input, perr.Span(), tc.start)
		}
	}
}

func TestParseExpr(t *testing.T) {
	tb := tables.New(tables.Hints{})

	e, err := ParseExpr("  42", tb, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := diagfmt.Expr(tb, e); got != "42" {
		t.Fatalf("got %s", got)
	}
	if span := tb.Expr(e).Span; span.Start != 2 || span.End != 4 {
		t.Fatalf("literal span = %+v", span)
	}

	// Whatever the failing alternatives reported, the expression rule
	// reports one error at its own starting point.
	for _, input := range []string{"", "   ", "x", "-- only a comment", "[", "[1 2]", "[[1", "  184467440737095516160"} {
		_, err := ParseExpr(input, tb, Options{})
		var perr *Error
		if !errors.As(err, &perr) || perr.Kind != ExpectedToken || err.Error() != "expected expression" {
			t.Fatalf("ParseExpr(%q) = %v", input, err)
		}
	}
	_, err = ParseExpr("  [[1", tb, Options{})
	var perr *Error
	if !errors.As(err, &perr) || perr.Span().Start != 2 {
		t.Fatalf("ParseExpr([[1) error = %v", err)
	}
}

func TestIntegerOverflow(t *testing.T) {
	tb := tables.New(tables.Hints{})
	c := NewCursor("184467440737095516160", tb, Options{File: 2})
	_, err := Integer(&c)
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if perr.Kind != NumericConversion || perr.Code() != diag.SynBadNumber {
		t.Fatalf("kind=%s code=%s", perr.Kind, perr.Code().ID())
	}
	if perr.Error() != "parse error: number too large to fit in target type" {
		t.Fatalf("message = %q", perr.Error())
	}
	if span := perr.Span(); span.File != 2 || span.Start != 0 {
		t.Fatalf("span = %+v", span)
	}
}

func TestParseProgramRequiresEndOfInput(t *testing.T) {
	tb := tables.New(tables.Hints{})
	if _, err := ParseProgram("[1, 2]\n-- done\n", tb, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := ParseProgram("[1] [2]", tb, Options{})
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if perr.Error() != "expected end of input" || perr.Code() != diag.SynTrailingInput {
		t.Fatalf("got %q (%s)", perr.Error(), perr.Code().ID())
	}
	if perr.At.Start != 4 || perr.At.End != 7 {
		t.Fatalf("trailing span = %+v", perr.At)
	}
}

func TestFailedAlternativesKeepAllocations(t *testing.T) {
	tb := tables.New(tables.Hints{})
	if _, err := ParseExpr("[1, 2", tb, Options{}); err == nil {
		t.Fatal("expected error")
	}
	if tb.ExprCount() != 2 {
		t.Fatalf("ExprCount = %d, want the two literals parsed before the failure", tb.ExprCount())
	}
}

func TestParseEmitsCommitPoints(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	tb := tables.New(tables.Hints{})
	if _, err := ParseExpr("[1]", tb, Options{Tracer: ring}); err != nil {
		t.Fatal(err)
	}

	events := ring.Snapshot()
	if len(events) < 2 || events[0].Kind != trace.KindSpanBegin || events[0].Name != "parse" {
		t.Fatalf("unexpected events %+v", events)
	}
	commits := 0
	for _, ev := range events {
		if ev.Kind == trace.KindPoint && ev.Name == "commit" {
			commits++
			if ev.ParentID != events[0].SpanID {
				t.Fatalf("commit parent = %d, want %d", ev.ParentID, events[0].SpanID)
			}
		}
	}
	if commits != 2 {
		t.Fatalf("commits = %d, want 2", commits)
	}
	last := events[len(events)-1]
	if last.Kind != trace.KindSpanEnd || last.Extra["exprs"] != "2" {
		t.Fatalf("unexpected end event %+v", last)
	}
}
