package batch

import "fmt"

// SetupError is a failure of the orchestrator itself (output directory, input
// listing, workspace). It aborts the run; per-file failures never do.
type SetupError struct {
	Op  string
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("batch setup: %s: %v", e.Op, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}
