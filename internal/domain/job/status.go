package job

// Status is the canonical job lifecycle, independent of any provider vocabulary.
type Status string

const (
	// Non-terminal states
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"

	// Terminal states
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// IsTerminal returns true if no further transitions can happen.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCanceled
}

// IsValid reports whether s is one of the five canonical values.
func (s Status) IsValid() bool {
	switch s {
	case StatusQueued, StatusRunning, StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to target keeps the lifecycle
// monotonic: queued → running → one terminal state.
func (s Status) CanTransitionTo(target Status) bool {
	if s == target {
		return true
	}
	switch s {
	case StatusQueued:
		return target == StatusRunning || target.IsTerminal()
	case StatusRunning:
		return target.IsTerminal()
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}
