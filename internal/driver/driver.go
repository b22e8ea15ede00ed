// Package driver runs the parser and the type checker over source files.
//
// Every file gets its own tables.Tables; a directory run processes files on
// an errgroup worker pool and reports progress through a ProgressSink.
// Errors produced by the pipeline are turned into diagnostics in a per-file
// diag.Bag; only failures to read the inputs are returned as Go errors.
package driver

import (
	"context"
	"fmt"
	"math"
	"time"

	"fortio.org/safecast"

	"rill/internal/ast"
	"rill/internal/diag"
	"rill/internal/diagfmt"
	"rill/internal/observ"
	"rill/internal/parser"
	"rill/internal/sema"
	"rill/internal/source"
	"rill/internal/tables"
	"rill/internal/trace"
	"rill/internal/types"
)

// DefaultMaxDiagnostics is the per-file limit used when Options leaves it unset.
const DefaultMaxDiagnostics = 100

// Options configures a run.
type Options struct {
	// MaxDiagnostics caps every per-file bag; zero or less selects
	// DefaultMaxDiagnostics.
	MaxDiagnostics int
	// Timings appends an ObsTimings diagnostic with phase durations.
	Timings bool
	// Cache serves and stores check results; nil disables caching.
	Cache *DiskCache
	// Sink receives progress events; nil discards them.
	Sink ProgressSink
	// Jobs bounds directory workers; zero or less means GOMAXPROCS.
	Jobs int
}

func (o Options) diagnosticLimit() int {
	return limitOrDefault(o.MaxDiagnostics)
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return DefaultMaxDiagnostics
	}
	return min(n, math.MaxUint16)
}

// Result is the outcome of running one file.
type Result struct {
	Path    string
	FileSet *source.FileSet
	FileID  source.FileID
	// Tables holds the parsed tree and the types; nil when the result was
	// served from the cache or the file could not be loaded.
	Tables *tables.Tables
	// Root is ast.NoExpr unless parsing succeeded.
	Root ast.Expr
	// Ty is types.NoTy unless checking succeeded.
	Ty types.Ty
	// Type is the rendered Ty; cached results only carry this form.
	Type   string
	Bag    *diag.Bag
	Cached bool
	Timing *observ.Report
}

// Failed reports whether the run produced error diagnostics.
func (r *Result) Failed() bool {
	return r.Bag != nil && r.Bag.HasErrors()
}

// Parse loads path and parses it as a program.
func Parse(ctx context.Context, path string, opts Options) (*Result, error) {
	return runPath(ctx, path, StageParse, opts)
}

// Check loads path, parses it and synthesizes the type of the program.
func Check(ctx context.Context, path string, opts Options) (*Result, error) {
	return runPath(ctx, path, StageCheck, opts)
}

// ParseSource parses in-memory content registered under name.
func ParseSource(ctx context.Context, name string, content []byte, opts Options) *Result {
	return runVirtual(ctx, name, content, StageParse, opts)
}

// CheckSource checks in-memory content registered under name.
func CheckSource(ctx context.Context, name string, content []byte, opts Options) *Result {
	return runVirtual(ctx, name, content, StageCheck, opts)
}

func runPath(ctx context.Context, path string, target Stage, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fileSet := source.NewFileSet()
	id, err := fileSet.Load(path)
	if err != nil {
		emit(opts.Sink, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err})
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	res := runFile(ctx, fileSet, id, target, opts)
	return &res, nil
}

func runVirtual(ctx context.Context, name string, content []byte, target Stage, opts Options) *Result {
	fileSet := source.NewFileSet()
	id := fileSet.AddVirtual(name, content)
	res := runFile(ctx, fileSet, id, target, opts)
	return &res
}

// runFile runs every stage up to and including target. It stops at the
// first stage that fails.
func runFile(ctx context.Context, fileSet *source.FileSet, id source.FileID, target Stage, opts Options) Result {
	file := fileSet.Get(id)
	res := Result{
		Path:    file.Path,
		FileSet: fileSet,
		FileID:  id,
		Bag:     diag.NewBag(opts.diagnosticLimit()),
	}
	reporter := diag.BagReporter{Bag: res.Bag}

	span, ctx := trace.BeginContext(ctx, trace.ScopeModule, file.Path)
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}
	started := time.Now()

	finish := func(stage Stage, status Status, err error) {
		if timer != nil {
			report := timer.Report()
			res.Timing = &report
			appendTimingDiagnostic(res.Bag, timingPayload{
				Kind:    string(target),
				Path:    file.Path,
				TotalMS: report.TotalMS,
				Phases:  report.Phases,
			})
		}
		res.Bag.Sort()
		detail := string(status)
		if err != nil {
			detail = err.Error()
		}
		span.WithExtra("stage", string(stage)).End(detail)
		emit(opts.Sink, Event{File: file.Path, Stage: stage, Status: status, Err: err, Elapsed: time.Since(started)})
	}

	var key Digest
	if target == StageCheck && opts.Cache != nil {
		key = resultKey(file, target)
		var payload DiskPayload
		ok, err := opts.Cache.Get(key, &payload)
		if err != nil {
			diag.ReportWarning(reporter, diag.IOCacheError, source.Span{File: source.NoFile},
				fmt.Sprintf("cache read failed: %v", err)).Emit()
		}
		if ok && payload.ContentHash == Digest(file.Hash) {
			res.Cached = true
			res.Type = payload.Type
			fromPayload(&payload, id, res.Bag)
			finish(target, StatusCached, nil)
			return res
		}
	}

	hint, err := safecast.Conv[uint](len(file.Content) / 2)
	if err != nil {
		hint = 0
	}
	res.Tables = tables.New(tables.Hints{Exprs: hint})

	emit(opts.Sink, Event{File: file.Path, Stage: StageParse, Status: StatusWorking})
	var root ast.Expr
	err = timer.Measure("parse", func() error {
		var perr error
		root, perr = parser.ParseProgram(file.Text(), res.Tables, parser.Options{File: id, Tracer: tracer, Parent: parent})
		return perr
	})
	if err != nil {
		diag.ReportErr(reporter, err)
		res.store(opts.Cache, key, file)
		finish(StageParse, StatusError, err)
		return res
	}
	res.Root = root
	if target == StageParse {
		finish(StageParse, StatusDone, nil)
		return res
	}

	emit(opts.Sink, Event{File: file.Path, Stage: StageCheck, Status: StatusWorking})
	var checked sema.Result
	err = timer.Measure("check", func() error {
		var cerr error
		checked, cerr = sema.Check(res.Tables, root, sema.Options{Tracer: tracer, Parent: parent})
		return cerr
	})
	if err != nil {
		diag.ReportErr(reporter, err)
		res.store(opts.Cache, key, file)
		finish(StageCheck, StatusError, err)
		return res
	}
	res.Ty = checked.Ty
	res.Type = diagfmt.Ty(res.Tables, checked.Ty)
	res.store(opts.Cache, key, file)
	finish(StageCheck, StatusDone, nil)
	return res
}

// store writes a check result to the cache. A zero key means the run was
// not cacheable.
func (r *Result) store(cache *DiskCache, key Digest, file *source.File) {
	if cache == nil || key == (Digest{}) {
		return
	}
	if err := cache.Put(key, toPayload(file, r.Type, r.Bag)); err != nil {
		diag.ReportWarning(diag.BagReporter{Bag: r.Bag}, diag.IOCacheError, source.Span{File: source.NoFile},
			fmt.Sprintf("cache write failed: %v", err)).Emit()
	}
}
