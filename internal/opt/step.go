package opt

import "fmt"

// Step names the transformation applied to the simplex in one iteration
type Step int

const (
	StepNone Step = iota
	StepReflect
	StepExpand
	StepOutsideContract
	StepInsideContract
	StepShrink
)

func (s Step) String() string {
	switch s {
	case StepNone:
		return "none"
	case StepReflect:
		return "reflect"
	case StepExpand:
		return "expand"
	case StepOutsideContract:
		return "outside-contract"
	case StepInsideContract:
		return "inside-contract"
	case StepShrink:
		return "shrink"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// candidate identifies one of the trial points of an iteration
type candidate int

const (
	candReflect candidate = iota
	candExpand
	candOutside
	candInside
	numCandidates
)

// branch picks the decision-tree branch for the reflected cost. The first matching
// branch wins. With real costs one always matches; NaN falls through to ErrInvariant.
func branch(best, secondWorst, worst, reflected float64) (Step, error) {
	switch {
	case best <= reflected && reflected <= secondWorst:
		return StepReflect, nil
	case reflected < best:
		return StepExpand, nil
	case secondWorst <= reflected && reflected <= worst:
		return StepOutsideContract, nil
	case reflected >= worst:
		return StepInsideContract, nil
	default:
		return StepNone, ErrInvariant
	}
}

// decide walks the decision tree and returns the applied step together with the
// candidate that replaces the worst vertex. For StepShrink the candidate is -1.
// cost is consulted only for the candidates the chosen branch needs.
func decide(best, secondWorst, worst float64, cost func(candidate) float64) (Step, candidate, error) {
	reflected := cost(candReflect)

	b, err := branch(best, secondWorst, worst, reflected)
	if err != nil {
		return StepNone, -1, err
	}

	switch b {
	case StepReflect:
		return StepReflect, candReflect, nil

	case StepExpand:
		if cost(candExpand) < reflected {
			return StepExpand, candExpand, nil
		}
		return StepReflect, candReflect, nil

	case StepOutsideContract:
		if cost(candOutside) < reflected {
			return StepOutsideContract, candOutside, nil
		}
		return StepShrink, -1, nil

	default: // StepInsideContract
		if cost(candInside) <= worst {
			return StepInsideContract, candInside, nil
		}
		return StepShrink, -1, nil
	}
}
