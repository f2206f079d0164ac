package model

import "time"

// RunState is the per-slot state machine position for one ingestion run.
type RunState string

const (
	RunPending              RunState = "pending"
	RunCheckingConflicts    RunState = "checking_conflicts"
	RunAwaitingConfirmation RunState = "awaiting_confirmation"
	RunClearing             RunState = "clearing"
	RunWriting              RunState = "writing"
	RunUpdatingMetadata     RunState = "updating_metadata"
	RunDone                 RunState = "done"
	RunSkipped              RunState = "skipped"
	RunFailed               RunState = "failed"
)

// Terminal reports whether the state ends a slot's processing.
func (s RunState) Terminal() bool {
	return s == RunDone || s == RunSkipped || s == RunFailed
}

// IngestRun is the audit document recorded per slot run under "ingestRuns/".
type IngestRun struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"courseId"`
	Day       int       `json:"day"`
	State     RunState  `json:"state"`
	Error     string    `json:"error,omitempty"`
	Outcome   *Outcome  `json:"outcome,omitempty"`
	StartedAt time.Time `json:"startedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
