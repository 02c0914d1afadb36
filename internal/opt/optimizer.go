package opt

import "context"

// Problem describes a minimisation over R^dim
type Problem struct {
	// Func is the objective to minimise. It must be safe for concurrent use when
	// the optimizer evaluates in parallel.
	Func func([]float64) float64

	// Seed anchors local methods such as Nelder-Mead
	Seed []float64

	// Lower and Upper bound global methods such as Mayfly
	Lower, Upper []float64
}

// Result is the outcome of a successful run
type Result struct {
	X           []float64
	F           float64
	Iterations  int
	Evaluations int
	Status      Status
}

// Optimizer defines an optimization algorithm interface
type Optimizer interface {
	// Run executes the optimization. It either returns the best point found with
	// its cost, or fails with an error; it never returns a partial result.
	Run(ctx context.Context, p Problem) (*Result, error)
}
