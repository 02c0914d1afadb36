package weber

import "fmt"

var (
	// ErrInvalidInput matches any *InvalidInputError via errors.Is
	ErrInvalidInput = &InvalidInputError{}

	// ErrDegenerateGeometry matches any *DegenerateGeometryError via errors.Is
	ErrDegenerateGeometry = &DegenerateGeometryError{}
)

// InvalidInputError reports an empty or malformed point set
type InvalidInputError struct {
	Index  int // Offending point, -1 when the whole set is at fault
	Reason string
}

func errEmptySet() error {
	return &InvalidInputError{Index: -1, Reason: "point set is empty"}
}

func (e *InvalidInputError) Error() string {
	if e.Reason == "" {
		return "invalid input"
	}
	if e.Index < 0 {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid input: point %d: %s", e.Index, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	_, ok := target.(*InvalidInputError)
	return ok
}

// DegenerateGeometryError describes a point set whose minimiser is known without searching.
// Solve resolves it by returning Point; it is exposed so callers can tell the cases apart.
type DegenerateGeometryError struct {
	Point  Point
	Reason string
}

func (e *DegenerateGeometryError) Error() string {
	if e.Reason == "" {
		return "degenerate geometry"
	}
	return "degenerate geometry: " + e.Reason
}

func (e *DegenerateGeometryError) Is(target error) bool {
	_, ok := target.(*DegenerateGeometryError)
	return ok
}
