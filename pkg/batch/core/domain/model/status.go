package model

// JobStatus represents the state of a job.
type JobStatus string

const (
	// StatusCreated is the state of a job that has not been called yet.
	StatusCreated JobStatus = "CREATED"
	// StatusOpened is the state after the reader and writer were opened.
	StatusOpened JobStatus = "OPENED"
	// StatusRunning is the state once the first record has been requested.
	StatusRunning JobStatus = "RUNNING"
	// StatusCompleted is the terminal state of a job whose input was fully consumed.
	StatusCompleted JobStatus = "COMPLETED"
	// StatusFailed is the terminal state of a job stopped by a fatal error or its error threshold.
	StatusFailed JobStatus = "FAILED"
	// StatusAborted is the terminal state of a job whose context was cancelled.
	StatusAborted JobStatus = "ABORTED"
)

// String returns the string representation of the JobStatus.
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no transition leaves s.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusAborted:
		return true
	default:
		return false
	}
}

// transitions lists the legal successors of each non-terminal state.
var transitions = map[JobStatus][]JobStatus{
	StatusCreated: {StatusOpened, StatusFailed, StatusAborted},
	StatusOpened:  {StatusRunning, StatusFailed, StatusAborted},
	StatusRunning: {StatusRunning, StatusCompleted, StatusFailed, StatusAborted},
}

// CanTransitionTo reports whether the job state machine allows moving from s to next.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, candidate := range transitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// severity orders terminal statuses when reports are merged.
func (s JobStatus) severity() int {
	switch s {
	case StatusFailed:
		return 2
	case StatusAborted:
		return 1
	default:
		return 0
	}
}
