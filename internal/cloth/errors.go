package cloth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParams indicates a parameter outside its valid range.
	ErrInvalidParams = errors.New("cloth: invalid parameters")

	// ErrPointOutOfRange indicates a point index outside [0, PointCount).
	ErrPointOutOfRange = errors.New("cloth: point index out of range")

	// ErrDragInProgress indicates a second point was grabbed while another
	// is still being dragged.
	ErrDragInProgress = errors.New("cloth: another point is already being dragged")

	// ErrNotDragged indicates a release for a point that is not dragged.
	ErrNotDragged = errors.New("cloth: point is not being dragged")

	// ErrDegenerateRay indicates a zero-length pick or drag direction.
	ErrDegenerateRay = errors.New("cloth: ray direction has zero length")

	// ErrBufferTooSmall indicates an output buffer shorter than required.
	ErrBufferTooSmall = errors.New("cloth: buffer too small")

	// ErrNonFinite indicates a NaN or Inf found by the debug state check.
	ErrNonFinite = errors.New("cloth: non-finite value in simulation state")
)

// PointError reports an operation rejected for a specific point.
type PointError struct {
	Op      string
	Index   int
	Count   int
	Wrapped error
}

func (e *PointError) Error() string {
	return fmt.Sprintf("%s point %d (of %d): %v", e.Op, e.Index, e.Count, e.Wrapped)
}

func (e *PointError) Unwrap() error { return e.Wrapped }

// StepError wraps a failure detected at the end of a step.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error { return e.Wrapped }
