package pointset

import (
	"fmt"
	"math"
)

var (
	// ErrInvalidRange matches any *InvalidRangeError via errors.Is
	ErrInvalidRange = &InvalidRangeError{}

	// ErrInvalidCount matches any *InvalidCountError via errors.Is
	ErrInvalidCount = &InvalidCountError{}
)

// InvalidRangeError reports a non-finite bound, or a minimum larger than the maximum, on some axis
type InvalidRangeError struct {
	Axis     string
	Min, Max float64
}

func (e *InvalidRangeError) Error() string {
	if e.Axis == "" {
		return "invalid range"
	}
	if math.IsNaN(e.Min) || math.IsNaN(e.Max) || math.IsInf(e.Min, 0) || math.IsInf(e.Max, 0) {
		return fmt.Sprintf("invalid range on %s: bounds %g and %g must be finite", e.Axis, e.Min, e.Max)
	}
	return fmt.Sprintf("invalid range on %s: minimum %g is larger than maximum %g", e.Axis, e.Min, e.Max)
}

func (e *InvalidRangeError) Is(target error) bool {
	_, ok := target.(*InvalidRangeError)
	return ok
}

// InvalidCountError reports a point count that cannot be produced
type InvalidCountError struct {
	Count  int
	Reason string
}

func (e *InvalidCountError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid count %d", e.Count)
	}
	return fmt.Sprintf("invalid count %d: %s", e.Count, e.Reason)
}

func (e *InvalidCountError) Is(target error) bool {
	_, ok := target.(*InvalidCountError)
	return ok
}
