package store

// Store defines the interface for run record persistence.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return ErrNotFound if the run doesn't exist (for Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveRun saves the record for the given run, overwriting any existing one.
	// The record is validated first.
	SaveRun(runID string, run *RunRecord) error

	// LoadRun retrieves the record for the given run.
	// Returns ErrNotFound if no record exists for this runID.
	LoadRun(runID string) (*RunRecord, error)

	// ListRuns returns metadata for all stored runs, newest first.
	// The returned slice may be empty.
	ListRuns() ([]RunInfo, error)

	// DeleteRun removes the record and all associated artifacts (trace.jsonl).
	// Returns ErrNotFound if no record exists for this runID.
	DeleteRun(runID string) error
}

// ErrNotFound is returned when a requested run does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing run error.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "run not found: " + e.RunID
	}
	return "run not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
