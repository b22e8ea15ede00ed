package main

import (
	"fmt"
	"io"
	"os"

	"rill/internal/diag"
	"rill/internal/diagfmt"
	"rill/internal/driver"
	"rill/internal/source"
)

// printDiagnostics writes the diagnostics of results to w in file order and
// reports whether any of them is an error.
func (a *app) printDiagnostics(w io.Writer, fileSet *source.FileSet, results []driver.Result, withNotes bool) (bool, error) {
	opts := diagfmt.PrettyOpts{
		Color:     a.settings.color.enabledFor(w),
		PathMode:  diagfmt.PathModeAuto,
		ShowNotes: withNotes,
	}
	failed := false
	for i := range results {
		res := &results[i]
		if res.Bag == nil || res.Bag.Len() == 0 && res.Bag.Dropped() == 0 {
			continue
		}
		failed = failed || res.Failed()
		if a.settings.quiet && !res.Bag.HasErrors() {
			continue
		}
		fs := fileSet
		if res.FileSet != nil {
			fs = res.FileSet
		}
		if err := diagfmt.Pretty(w, res.Bag, fs, opts); err != nil {
			return failed, err
		}
	}
	return failed, nil
}

// inputKind distinguishes a single file, standard input and a directory.
type inputKind uint8

const (
	inputFile inputKind = iota
	inputStdin
	inputDir
)

func classifyInput(path string) (inputKind, error) {
	if path == "-" {
		return inputStdin, nil
	}
	st, err := os.Stat(path)
	if err != nil {
		return inputFile, fmt.Errorf("failed to stat path: %w", err)
	}
	if st.IsDir() {
		return inputDir, nil
	}
	return inputFile, nil
}

// stdinName is the path stdin diagnostics are reported under.
const stdinName = "<stdin>"

// countErrors includes errors the diagnostic limit dropped.
func countErrors(bag *diag.Bag) int {
	n := bag.DroppedErrors()
	for _, d := range bag.Items() {
		if d.Severity.IsError() {
			n++
		}
	}
	return n
}
