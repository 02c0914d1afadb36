package store

import (
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/weberfit/internal/weber"
)

// RunRecord is the persisted outcome of one solve.
// Only the final answer is kept; a record is never used to continue a search.
type RunRecord struct {
	// RunID is the unique identifier for this run
	RunID string `json:"runId"`

	// Points is the input set exactly as solved
	Points []weber.WeightedPoint `json:"points"`

	// Config holds the solver configuration, including Nelder-Mead settings
	Config weber.Config `json:"config"`

	// BestPoint is the minimiser found and BestCost its objective value
	BestPoint weber.Point `json:"bestPoint"`
	BestCost  float64     `json:"bestCost"`

	// MassCenter is the unweighted mean of the input locations, the naive baseline
	MassCenter     weber.Point `json:"massCenter"`
	MassCenterCost float64     `json:"massCenterCost"`

	Iterations  int  `json:"iterations"`
	Evaluations int  `json:"evaluations"`
	Degenerate  bool `json:"degenerate"`

	// Timestamp records when the run finished
	Timestamp time.Time `json:"timestamp"`
}

// RunInfo contains metadata about a run without the point set.
// Used for listing runs without loading large inputs.
type RunInfo struct {
	RunID          string      `json:"runId"`
	Method         string      `json:"method"`
	Points         int         `json:"points"`
	Weighted       bool        `json:"weighted"`
	BestPoint      weber.Point `json:"bestPoint"`
	BestCost       float64     `json:"bestCost"`
	MassCenterCost float64     `json:"massCenterCost"`
	Iterations     int         `json:"iterations"`
	Timestamp      time.Time   `json:"timestamp"`
}

// NewRunRecord builds a record from a finished solve and computes the mass-center baseline
func NewRunRecord(runID string, points []weber.WeightedPoint, cfg weber.Config, res *weber.Result) (*RunRecord, error) {
	if res == nil {
		return nil, fmt.Errorf("result cannot be nil")
	}

	center, err := weber.MassCenter(weber.Locations(points))
	if err != nil {
		return nil, err
	}
	centerCost, err := weber.SumOfDistances(points, center, cfg.Weighted)
	if err != nil {
		return nil, err
	}

	return &RunRecord{
		RunID:          runID,
		Points:         append([]weber.WeightedPoint(nil), points...),
		Config:         cfg,
		BestPoint:      res.Point,
		BestCost:       res.Cost,
		MassCenter:     center,
		MassCenterCost: centerCost,
		Iterations:     res.Iterations,
		Evaluations:    res.Evaluations,
		Degenerate:     res.Degenerate,
		Timestamp:      time.Now(),
	}, nil
}

// ToInfo converts a full RunRecord to RunInfo (metadata only).
func (r *RunRecord) ToInfo() RunInfo {
	method := r.Config.Method
	if method == "" {
		method = weber.MethodNelderMead
	}
	return RunInfo{
		RunID:          r.RunID,
		Method:         method,
		Points:         len(r.Points),
		Weighted:       r.Config.Weighted,
		BestPoint:      r.BestPoint,
		BestCost:       r.BestCost,
		MassCenterCost: r.MassCenterCost,
		Iterations:     r.Iterations,
		Timestamp:      r.Timestamp,
	}
}

// Improvement returns how much cheaper the best point is than the mass center
func (r *RunRecord) Improvement() float64 {
	return r.MassCenterCost - r.BestCost
}

// Validate checks if the record has valid data.
// Returns an error if any required field is missing or invalid.
func (r *RunRecord) Validate() error {
	if r.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if len(r.Points) == 0 {
		return &ValidationError{Field: "Points", Reason: "cannot be empty"}
	}
	if err := weber.ValidatePoints(r.Points); err != nil {
		return &ValidationError{Field: "Points", Reason: err.Error()}
	}
	if math.IsNaN(r.BestCost) || math.IsInf(r.BestCost, 0) {
		return &ValidationError{Field: "BestCost", Reason: "must be finite"}
	}
	if r.BestCost < 0 {
		return &ValidationError{Field: "BestCost", Reason: "cannot be negative"}
	}
	if r.MassCenterCost < 0 {
		return &ValidationError{Field: "MassCenterCost", Reason: "cannot be negative"}
	}
	if r.Iterations < 0 {
		return &ValidationError{Field: "Iterations", Reason: "cannot be negative"}
	}
	if r.Evaluations < 0 {
		return &ValidationError{Field: "Evaluations", Reason: "cannot be negative"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if err := r.Config.Settings.Validate(); err != nil {
		return &ValidationError{Field: "Config.Settings", Reason: err.Error()}
	}
	return nil
}

// ValidationError represents a run record validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
