package main

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"rill/internal/driver"
	"rill/internal/source"
	"rill/internal/ui"
)

type dirOutcome struct {
	fileSet *source.FileSet
	results []driver.Result
	err     error
}

type dirRun func(sink driver.ProgressSink) (*source.FileSet, []driver.Result, error)

// runDirWithUI drives run on a goroutine while a progress view renders its
// events to out.
func runDirWithUI(out io.Writer, title string, files []string, run dirRun) (*source.FileSet, []driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan dirOutcome, 1)

	go func() {
		fileSet, results, err := run(driver.ChannelSink{Ch: events})
		outcomeCh <- dirOutcome{fileSet: fileSet, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(out))
	_, uiErr := program.Run()
	// the view may quit early; keep the worker from blocking on events
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fileSet, outcome.results, uiErr
	}
	return outcome.fileSet, outcome.results, outcome.err
}

// runDir runs a directory either behind the progress view or plainly.
func (a *app) runDir(out io.Writer, title, dir string, run dirRun) (*source.FileSet, []driver.Result, error) {
	if !a.settings.ui.enabledFor(out) {
		return run(nil)
	}
	files, err := driver.ListSources(dir)
	if err != nil {
		return nil, nil, err
	}
	return runDirWithUI(out, title, files, run)
}
