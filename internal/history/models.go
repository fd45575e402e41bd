package history

import (
	"strings"
	"time"
)

// Status represents the outcome of a recorded invocation.
type Status string

const (
	StatusRunning        Status = "running"
	StatusSucceeded      Status = "succeeded"
	StatusFailed         Status = "failed"
	StatusMissingProgram Status = "missing_program"
	StatusTimedOut       Status = "timed_out"
	StatusInterrupted    Status = "interrupted"
)

// Entry describes an invocation about to start.
type Entry struct {
	RunID      string
	Stage      string
	Argv       []string
	InputPath  string
	OutputPath string
}

// Record is a persisted invocation.
type Record struct {
	ID           int64
	RunID        string
	Stage        string
	Argv         []string
	InputPath    string
	OutputPath   string
	Status       Status
	ExitCode     *int
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Duration returns the wall time of a finished record, or zero.
func (r Record) Duration() time.Duration {
	if r.FinishedAt == nil || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// CommandLine joins the argv for display.
func (r Record) CommandLine() string {
	return strings.Join(r.Argv, " ")
}

// IsTerminal reports whether the record has finished.
func (s Status) IsTerminal() bool {
	return s != StatusRunning && s != ""
}
