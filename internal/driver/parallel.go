package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"rill/internal/diag"
	"rill/internal/source"
)

// SourceExt is the extension of source files picked up by directory runs.
const SourceExt = ".rl"

// ListSources returns every *.rl file under dir in sorted order.
func ListSources(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, SourceExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// deterministic order
	sort.Strings(files)
	return files, nil
}

// ParseDir parses every source file under dir in parallel.
func ParseDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []Result, error) {
	return runDir(ctx, dir, StageParse, opts)
}

// CheckDir checks every source file under dir in parallel.
func CheckDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []Result, error) {
	return runDir(ctx, dir, StageCheck, opts)
}

func runDir(ctx context.Context, dir string, target Stage, opts Options) (*source.FileSet, []Result, error) {
	files, err := ListSources(dir)
	if err != nil {
		return nil, nil, err
	}

	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	// Loading is sequential; workers only read the FileSet.
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))
	for _, path := range files {
		emit(opts.Sink, Event{File: path, Stage: StageLoad, Status: StatusQueued})
		fileID, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = fileID
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// each index is written by exactly one goroutine
	results := make([]Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if loadErr, failed := loadErrors[path]; failed {
				results[i] = loadFailure(path, loadErr, opts)
				return nil
			}
			results[i] = runFile(gctx, fileSet, fileIDs[path], target, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, nil, err
	}
	return fileSet, results, nil
}

func loadFailure(path string, err error, opts Options) Result {
	bag := diag.NewBag(opts.diagnosticLimit())
	diag.ReportError(diag.BagReporter{Bag: bag}, diag.IOLoadFileError, source.Span{File: source.NoFile},
		fmt.Sprintf("failed to load %s: %v", path, err)).Emit()
	emit(opts.Sink, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err})
	return Result{Path: path, Bag: bag}
}

// MergeBags concatenates the diagnostics of results in file order.
func MergeBags(results []Result, max int) *diag.Bag {
	out := diag.NewBag(limitOrDefault(max))
	for i := range results {
		if results[i].Bag != nil {
			out.Merge(results[i].Bag)
		}
	}
	return out
}
