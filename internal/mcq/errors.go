package mcq

import "fmt"

// ServiceError wraps a failed completion-service call. The generation loop
// counts it as an attempt and retries.
type ServiceError struct {
	Attempt int
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("completion service (attempt %d): %v", e.Attempt, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// ExhaustedError reports that the attempt cap was reached before the pool
// met its minimum size. Pool carries what was collected, renumbered.
type ExhaustedError struct {
	Attempts int
	Want     int
	Pool     Pool

	// LastErr is the most recent service error, if any.
	LastErr error
}

func (e *ExhaustedError) Error() string {
	msg := fmt.Sprintf("collected %d of %d questions after %d attempts", len(e.Pool), e.Want, e.Attempts)
	if e.LastErr != nil {
		msg += fmt.Sprintf(" (last error: %v)", e.LastErr)
	}
	return msg
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// InsufficientPoolError reports a sample request larger than the pool.
type InsufficientPoolError struct {
	Source    string
	Requested int
	Available int
}

func (e *InsufficientPoolError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("cannot sample %d questions from a pool of %d", e.Requested, e.Available)
	}
	return fmt.Sprintf("source %q: cannot sample %d questions from a pool of %d", e.Source, e.Requested, e.Available)
}

// AllocationInfeasibleError reports a total that cannot be split across
// Sources with every count in [MinPerSource, MaxPerSource].
type AllocationInfeasibleError struct {
	Sources int
	Total   int
}

func (e *AllocationInfeasibleError) Error() string {
	return fmt.Sprintf("cannot allocate %d questions across %d sources with %d to %d each (need %d <= total <= %d)",
		e.Total, e.Sources, MinPerSource, MaxPerSource, MinPerSource*e.Sources, MaxPerSource*e.Sources)
}
