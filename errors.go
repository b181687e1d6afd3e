package sa

import (
	"fmt"

	"github.com/pkg/errors"
)

// These are the sentinel errors returned, wrapped with detail, by this
// package. Test with errors.Is.
var (
	// ErrInvalidConfig marks a missing or invalid constructor argument.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNumeric marks a degenerate computation: a zero or non-finite probe
	// width, scale or iterate.
	ErrNumeric = errors.New("numeric error")
)

// IterationError reports a run aborted at a given iteration, either by a
// callback failure or by a numeric error.
//
// Partial holds the path up to the failing step. It is a debugging aid and
// not a valid result.
type IterationError struct {
	Variant   Variant
	Iteration int
	Partial   []float64
	Err       error
}

func (e *IterationError) Error() string {
	return fmt.Sprintf("%s: iteration %d: %v", e.Variant, e.Iteration, e.Err)
}

// Unwrap returns the underlying failure, so errors.Is reaches both the
// sentinels above and callback errors.
func (e *IterationError) Unwrap() error {
	return e.Err
}

// Cause lets errors.Cause return the original callback error.
func (e *IterationError) Cause() error {
	return errors.Cause(e.Err)
}
