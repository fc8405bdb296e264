package orchestrator

import "fmt"

// Status represents the state of one journey run.
type Status string

const (
	// StatusInitializing indicates the run is created but no framework
	// has started.
	StatusInitializing Status = "initializing"

	// StatusInProgress indicates frameworks are executing.
	StatusInProgress Status = "in_progress"

	// StatusPaused indicates the run was suspended between frameworks
	// and can be resumed from last-good state.
	StatusPaused Status = "paused"

	// StatusCompleted indicates every framework finished and the
	// summary was built.
	StatusCompleted Status = "completed"

	// StatusFailed indicates the run stopped on an unrecoverable error.
	StatusFailed Status = "failed"
)

// IsTerminal returns true if the status represents a final state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// IsActive returns true if the run can still make progress.
func (s Status) IsActive() bool {
	return s == StatusInitializing || s == StatusInProgress || s == StatusPaused
}

// Validate checks if the status is a known value.
func (s Status) Validate() error {
	switch s {
	case StatusInitializing, StatusInProgress, StatusPaused, StatusCompleted, StatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid status: %s", s)
	}
}

// transitions lists the allowed status moves. Terminal states have no
// outgoing transitions.
var transitions = map[Status][]Status{
	StatusInitializing: {StatusInProgress, StatusFailed},
	StatusInProgress:   {StatusPaused, StatusCompleted, StatusFailed},
	StatusPaused:       {StatusInProgress, StatusFailed},
}

// CanTransitionTo reports whether the move is allowed.
func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition validates and returns the new status.
func (s Status) Transition(to Status) (Status, error) {
	if err := to.Validate(); err != nil {
		return s, err
	}
	if !s.CanTransitionTo(to) {
		return s, fmt.Errorf("illegal status transition %s -> %s", s, to)
	}
	return to, nil
}
