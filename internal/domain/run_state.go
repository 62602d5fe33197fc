package domain

import (
	"time"
)

// RunStatus represents the overall status of a multi-step submodule run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// StepStatus represents the status of a single path within a run
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// RunKind identifies the workflow that produced a run
type RunKind string

const (
	RunKindResetPaths  RunKind = "reset_paths"
	RunKindForceUpdate RunKind = "force_update"
)

// RunState journals one multi-step run. Completed steps are never rolled
// back; the journal only records how far a run got.
type RunState struct {
	SessionID string       `json:"session_id"`
	Kind      RunKind      `json:"kind"`
	RepoPath  string       `json:"repo_path"`
	StartedAt time.Time    `json:"started_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Steps     []StepRecord `json:"steps"`
	Status    RunStatus    `json:"status"`
	Error     string       `json:"error,omitempty"`
}

// StepRecord represents the outcome for a single submodule path
type StepRecord struct {
	Path        string     `json:"path"`
	Status      StepStatus `json:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// NewRunState creates a new run state with one pending step per path
func NewRunState(sessionID string, kind RunKind, repoPath string, paths []string) *RunState {
	now := time.Now()
	steps := make([]StepRecord, 0, len(paths))
	for _, p := range paths {
		steps = append(steps, StepRecord{Path: p, Status: StepStatusPending})
	}
	return &RunState{
		SessionID: sessionID,
		Kind:      kind,
		RepoPath:  repoPath,
		StartedAt: now,
		UpdatedAt: now,
		Steps:     steps,
		Status:    RunStatusPending,
	}
}

// MarkStepStarted marks the first pending step for path as running
func (rs *RunState) MarkStepStarted(path string) {
	now := time.Now()
	if step := rs.findStep(path, StepStatusPending); step != nil {
		step.Status = StepStatusRunning
		step.StartedAt = &now
	}
	rs.Status = RunStatusRunning
	rs.UpdatedAt = now
}

// MarkStepCompleted marks the running step for path as completed
func (rs *RunState) MarkStepCompleted(path string) {
	now := time.Now()
	if step := rs.findStep(path, StepStatusRunning); step != nil {
		step.Status = StepStatusCompleted
		step.CompletedAt = &now
	}
	rs.UpdatedAt = now
}

// MarkStepFailed marks the running step for path as failed and then fails
// the run
func (rs *RunState) MarkStepFailed(path string, err error) {
	now := time.Now()
	if step := rs.findStep(path, StepStatusRunning); step != nil {
		step.Status = StepStatusFailed
		step.CompletedAt = &now
		step.Error = err.Error()
	}
	rs.MarkFailed(err)
}

// MarkFailed marks every step still pending as skipped and the run as failed
func (rs *RunState) MarkFailed(err error) {
	for i := range rs.Steps {
		if rs.Steps[i].Status == StepStatusPending {
			rs.Steps[i].Status = StepStatusSkipped
		}
	}
	rs.Status = RunStatusFailed
	rs.Error = err.Error()
	rs.UpdatedAt = time.Now()
}

// MarkCompleted marks the whole run as completed
func (rs *RunState) MarkCompleted() {
	rs.Status = RunStatusCompleted
	rs.UpdatedAt = time.Now()
}

// CompletedPaths returns the paths whose step completed, in run order
func (rs *RunState) CompletedPaths() []string {
	var paths []string
	for _, s := range rs.Steps {
		if s.Status == StepStatusCompleted {
			paths = append(paths, s.Path)
		}
	}
	return paths
}

func (rs *RunState) findStep(path string, status StepStatus) *StepRecord {
	for i := range rs.Steps {
		if rs.Steps[i].Path == path && rs.Steps[i].Status == status {
			return &rs.Steps[i]
		}
	}
	return nil
}
