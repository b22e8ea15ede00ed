package driver

import "time"

// Stage describes a phase of a per-file run.
type Stage string

const (
	// StageLoad is reading the file into the FileSet.
	StageLoad Stage = "load"
	// StageParse is the parsing stage.
	StageParse Stage = "parse"
	// StageCheck is the type checking stage.
	StageCheck Stage = "check"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates the stage is currently running.
	StatusWorking Status = "working"
	// StatusDone indicates the stage finished without errors.
	StatusDone Status = "done"
	// StatusCached indicates the result was served from the disk cache.
	StatusCached Status = "cached"
	// StatusError indicates the stage reported an error.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Sinks are called from worker
// goroutines and must be safe for concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(evt)
}
