package sema

import (
	"errors"
	"testing"

	"rill/internal/ast"
	"rill/internal/diag"
	"rill/internal/diagfmt"
	"rill/internal/parser"
	"rill/internal/source"
	"rill/internal/tables"
	"rill/internal/trace"
	"rill/internal/types"
)

// builder shortens tree construction in tests.
type builder struct {
	tb  *tables.Tables
	pos uint32
}

func newBuilder() *builder { return &builder{tb: tables.New(tables.Hints{})} }

// span gives every node a distinct position so errors can be matched to nodes.
func (b *builder) span() source.Span {
	b.pos++
	return source.Span{Start: b.pos, End: b.pos + 1}
}

func (b *builder) intLit(v uint64) ast.Expr {
	return b.tb.AddExpr(ast.NewInteger(b.span(), v))
}

func (b *builder) floatLit(v float64) ast.Expr {
	return b.tb.AddExpr(ast.NewFloat(b.span(), v))
}

func (b *builder) boolLit(v bool) ast.Expr {
	return b.tb.AddExpr(ast.NewBoolean(b.span(), v))
}

func (b *builder) list(items ...ast.Expr) ast.Expr {
	return b.tb.AddExpr(ast.NewList(b.span(), items))
}

func (b *builder) ifElse(cond, then, otherwise ast.Expr) ast.Expr {
	return b.tb.AddExpr(ast.NewIf(b.span(), cond, then, otherwise))
}

func TestSynthesize(t *testing.T) {
	b := newBuilder()
	cases := []struct {
		name string
		expr ast.Expr
		want string
	}{
		{"bool", b.boolLit(true), "bool"},
		{"int", b.intLit(42), "int"},
		{"float", b.floatLit(0.5), "float"},
		{"ints", b.list(b.intLit(1), b.intLit(2)), "[int]"},
		{"empty", b.list(), "[?0]"},
		{"nested with empty", b.list(b.list(b.intLit(1)), b.list()), "[[int]]"},
		{"empty first", b.list(b.list(), b.list(b.floatLit(1.5))), "[[float]]"},
		{"if", b.ifElse(b.boolLit(true), b.intLit(1), b.intLit(2)), "int"},
		{"if lists", b.ifElse(b.boolLit(false), b.list(), b.list(b.boolLit(true))), "[bool]"},
		{"list of ifs", b.list(b.ifElse(b.boolLit(true), b.list(), b.list()), b.list(b.intLit(3))), "[[int]]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Check(b.tb, tc.expr, Options{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			// Variables are numbered per table, so only compare shapes.
			got := diagfmt.Ty(b.tb, res.Ty)
			if tc.want == "[?0]" {
				if d := b.tb.Ty(res.Ty); d.Kind != types.KindList || b.tb.Ty(d.Elem).Kind != types.KindVar {
					t.Fatalf("got %s, want a list of an unbound variable", got)
				}
				return
			}
			if got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestEmptyListRendersFirstVariable(t *testing.T) {
	b := newBuilder()
	res, err := Check(b.tb, b.list(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := diagfmt.Ty(b.tb, res.Ty); got != "[?0]" {
		t.Fatalf("got %s", got)
	}
}

func TestMismatches(t *testing.T) {
	b := newBuilder()

	culprit := b.boolLit(true)
	mixed := b.list(b.intLit(1), culprit)

	cond := b.intLit(1)
	badCond := b.ifElse(cond, b.intLit(2), b.intLit(3))

	otherwise := b.floatLit(2.5)
	badBranch := b.ifElse(b.boolLit(true), b.intLit(1), otherwise)

	inner := b.list(b.boolLit(true))
	nested := b.list(b.list(b.intLit(1)), inner)

	cases := []struct {
		name    string
		expr    ast.Expr
		blame   ast.Expr
		message string
	}{
		{"list elements", mixed, culprit, "type mismatch: expected int, found bool"},
		{"condition", badCond, cond, "type mismatch: expected bool, found int"},
		{"branches", badBranch, otherwise, "type mismatch: expected int, found float"},
		{"nested lists", nested, inner, "type mismatch: expected [int], found [bool]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Check(b.tb, tc.expr, Options{})
			var tm *TypeMismatch
			if !errors.As(err, &tm) {
				t.Fatalf("expected *TypeMismatch, got %v", err)
			}
			if tm.Expr != tc.blame {
				t.Errorf("blamed expr %d, want %d", tm.Expr, tc.blame)
			}
			if tm.Error() != tc.message {
				t.Errorf("message = %q, want %q", tm.Error(), tc.message)
			}
			if tm.Span() != b.tb.Expr(tc.blame).Span || tm.Code() != diag.SemaTypeMismatch {
				t.Errorf("span=%v code=%v", tm.Span(), tm.Code())
			}
		})
	}
}

func TestMismatchCarriesResolvedTypes(t *testing.T) {
	b := newBuilder()
	_, err := Check(b.tb, b.list(b.intLit(1), b.boolLit(false)), Options{})
	var tm *TypeMismatch
	if !errors.As(err, &tm) {
		t.Fatalf("expected *TypeMismatch, got %v", err)
	}
	if tm.Expected != b.tb.Integer() || tm.Actual != b.tb.Bool() {
		t.Fatalf("expected=%s actual=%s", diagfmt.Ty(b.tb, tm.Expected), diagfmt.Ty(b.tb, tm.Actual))
	}
}

func TestMissingElse(t *testing.T) {
	b := newBuilder()
	iff := b.ifElse(b.boolLit(false), b.intLit(1), ast.NoExpr)
	_, err := Check(b.tb, b.list(iff), Options{})
	var me *MissingElse
	if !errors.As(err, &me) {
		t.Fatalf("expected *MissingElse, got %v", err)
	}
	if me.Expr != iff || me.Code() != diag.SemaMissingElse {
		t.Fatalf("unexpected error %+v", me)
	}
}

func TestCheckAgainstExpected(t *testing.T) {
	b := newBuilder()
	res, err := Check(b.tb, b.list(), Options{Expected: b.tb.List(b.tb.Float())})
	if err != nil {
		t.Fatal(err)
	}
	if got := diagfmt.Ty(b.tb, res.Ty); got != "[float]" {
		t.Fatalf("got %s", got)
	}

	root := b.list(b.intLit(1))
	_, err = Check(b.tb, root, Options{Expected: b.tb.List(b.tb.Bool())})
	var tm *TypeMismatch
	if !errors.As(err, &tm) || tm.Expr != root {
		t.Fatalf("expected mismatch on the root, got %v", err)
	}
	if tm.Error() != "type mismatch: expected [bool], found [int]" {
		t.Fatalf("message = %q", tm.Error())
	}
}

func TestResultResolvesIntermediateVariables(t *testing.T) {
	b := newBuilder()
	before := b.tb.InferCount()
	res, err := Check(b.tb, b.list(b.list(b.intLit(7))), Options{})
	if err != nil {
		t.Fatal(err)
	}
	// outer element variable is the first one allocated by this check
	outer := b.tb.AddTy(types.MakeVar(types.Infer(before + 1)))
	if got := diagfmt.Ty(b.tb, res.Resolve(outer)); got != "[int]" {
		t.Fatalf("outer element resolves to %s", got)
	}
}

func TestCheckParsedProgram(t *testing.T) {
	tb := tables.New(tables.Hints{})
	e, err := parser.ParseProgram("-- lists of lists\n[[1, 2], [], [3,],]", tb, parser.Options{})
	if err != nil {
		t.Fatal(err)
	}
	res, err := Check(tb, e, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := diagfmt.Ty(tb, res.Ty); got != "[[int]]" {
		t.Fatalf("got %s", got)
	}
}

func TestCheckTraces(t *testing.T) {
	b := newBuilder()
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	if _, err := Check(b.tb, b.list(b.intLit(1)), Options{Tracer: ring}); err != nil {
		t.Fatal(err)
	}
	events := ring.Snapshot()
	last := events[len(events)-1]
	if events[0].Name != "check" || last.Kind != trace.KindSpanEnd || last.Detail != "[int]" {
		t.Fatalf("unexpected events %+v", events)
	}
	for _, ev := range events[1 : len(events)-1] {
		if ev.Kind != trace.KindPoint || ev.ParentID != events[0].SpanID {
			t.Fatalf("unexpected inner event %+v", ev)
		}
	}
}

func TestModeString(t *testing.T) {
	if Synthesize().String() != "Synthesize" {
		t.Fatal(Synthesize().String())
	}
	if _, ok := Synthesize().Expected(); ok {
		t.Fatal("Synthesize has no expected type")
	}
	if ty, ok := CheckType(3).Expected(); !ok || ty != 3 {
		t.Fatalf("CheckType(3).Expected() = %d, %v", ty, ok)
	}
}
