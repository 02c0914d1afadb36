package opt

// Status expresses why an optimizer stopped
type Status int

const (
	// StatusConverged means the stopping tolerance was satisfied
	StatusConverged Status = iota + 1

	// StatusIterationLimit means a fixed-budget method used up its iterations.
	// Global methods such as Mayfly always finish this way.
	StatusIterationLimit
)

var statusStrings = map[Status]string{
	StatusConverged:      "Converged",
	StatusIterationLimit: "IterationLimit",
}

func (s Status) String() string {
	str, ok := statusStrings[s]
	if !ok {
		return "UnknownStatus"
	}
	return str
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
