package opt

import (
	"fmt"
	"math"
	"strings"
)

// StopRule selects how consecutive simplices are paired by the stopping test
type StopRule int

const (
	// StopPositional pairs vertex slots as they stood after ranking, so only the
	// vertices an update actually moved contribute to the movement.
	StopPositional StopRule = iota

	// StopRanked re-ranks the updated simplex by cost before pairing it with the
	// previous ranked simplex.
	StopRanked
)

func (r StopRule) String() string {
	switch r {
	case StopPositional:
		return "positional"
	case StopRanked:
		return "ranked"
	default:
		return fmt.Sprintf("StopRule(%d)", int(r))
	}
}

// ParseStopRule parses the textual form used in flags and config files
func ParseStopRule(s string) (StopRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "positional":
		return StopPositional, nil
	case "ranked":
		return StopRanked, nil
	default:
		return 0, fmt.Errorf("unknown stop rule: %q", s)
	}
}

func (r StopRule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *StopRule) UnmarshalText(text []byte) error {
	parsed, err := ParseStopRule(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Settings holds the Nelder-Mead hyper-parameters for a single run.
// Each run owns its Settings value; nothing is shared between runs.
type Settings struct {
	Alpha   float64 `json:"alpha" yaml:"alpha"`     // Reflection coefficient
	Beta    float64 `json:"beta" yaml:"beta"`       // Expansion coefficient
	Gamma   float64 `json:"gamma" yaml:"gamma"`     // Contraction coefficient
	Delta   float64 `json:"delta" yaml:"delta"`     // Shrink coefficient
	Epsilon float64 `json:"epsilon" yaml:"epsilon"` // Tolerance on simplex movement

	// MaxIterations bounds the loop; exceeding it yields a DidNotConvergeError
	MaxIterations int `json:"maxIterations" yaml:"maxIterations"`

	// Workers > 1 evaluates independent candidate costs concurrently
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`

	StopRule StopRule `json:"stopRule" yaml:"stopRule"`
}

// DefaultSettings returns the classic coefficients with a 5000 iteration cap
func DefaultSettings() Settings {
	return Settings{
		Alpha:         1,
		Beta:          2,
		Gamma:         0.5,
		Delta:         0.5,
		Epsilon:       1e-10,
		MaxIterations: 5000,
		Workers:       1,
		StopRule:      StopPositional,
	}
}

// Validate checks that the coefficients describe a well-formed Nelder-Mead search
func (s Settings) Validate() error {
	if !(s.Alpha > 0) || math.IsInf(s.Alpha, 0) {
		return &SettingsError{Field: "Alpha", Reason: "must be positive"}
	}
	if !(s.Beta > 1) || math.IsInf(s.Beta, 0) {
		return &SettingsError{Field: "Beta", Reason: "must be greater than 1"}
	}
	if !(s.Gamma > 0 && s.Gamma < 1) {
		return &SettingsError{Field: "Gamma", Reason: "must lie in (0, 1)"}
	}
	if !(s.Delta > 0 && s.Delta < 1) {
		return &SettingsError{Field: "Delta", Reason: "must lie in (0, 1)"}
	}
	if !(s.Epsilon > 0) {
		return &SettingsError{Field: "Epsilon", Reason: "must be positive"}
	}
	if s.MaxIterations <= 0 {
		return &SettingsError{Field: "MaxIterations", Reason: "must be positive"}
	}
	if s.Workers < 0 {
		return &SettingsError{Field: "Workers", Reason: "cannot be negative"}
	}
	if s.StopRule != StopPositional && s.StopRule != StopRanked {
		return &SettingsError{Field: "StopRule", Reason: "unknown value " + s.StopRule.String()}
	}
	return nil
}
