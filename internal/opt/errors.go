package opt

import (
	"errors"
	"fmt"
)

var (
	// ErrDidNotConverge matches any *DidNotConvergeError via errors.Is
	ErrDidNotConverge = &DidNotConvergeError{}

	// ErrInvariant is returned when no branch of the decision tree matches,
	// which only happens when the objective produced NaN.
	ErrInvariant = errors.New("no decision branch matched the reflected cost")

	// ErrInvalidProblem is returned for a problem missing its objective, seed or bounds
	ErrInvalidProblem = errors.New("invalid optimization problem")
)

// DidNotConvergeError reports that the iteration cap was reached before the simplex
// settled. X and F describe the best vertex at that point, for diagnostics only.
type DidNotConvergeError struct {
	Iterations int
	X          []float64
	F          float64
}

func (e *DidNotConvergeError) Error() string {
	return fmt.Sprintf("did not converge after %d iterations (best cost %g)", e.Iterations, e.F)
}

func (e *DidNotConvergeError) Is(target error) bool {
	_, ok := target.(*DidNotConvergeError)
	return ok
}

// SettingsError reports an invalid hyper-parameter
type SettingsError struct {
	Field  string
	Reason string
}

func (e *SettingsError) Error() string {
	return "invalid settings: " + e.Field + " " + e.Reason
}
