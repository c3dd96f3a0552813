package costreview

import (
	"errors"
	"fmt"
	"time"
)

// TimeoutError marks an external reasoning call that exceeded its stage
// timeout. Retryable.
type TimeoutError struct {
	Stage   string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: reasoning call exceeded %s: %v", e.Stage, e.Timeout, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// InvalidResponseError marks reasoning output that could not be parsed as
// JSON. Raw carries the unparsed text for diagnostics. Not retryable: a
// malformed response is a content problem, not a transient one.
type InvalidResponseError struct {
	Stage string
	Raw   string
	Err   error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("%s: reasoning response is not valid JSON: %v", e.Stage, e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// StageError wraps any stage failure with the stage name so callers can
// decide whether to retry, skip, or abort the remaining pipeline.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// StageNameFromError extracts the failing stage name, or "pipeline" when the
// error did not originate inside a stage.
func StageNameFromError(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return "pipeline"
}
