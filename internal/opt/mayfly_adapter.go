package opt

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// MayflyAdapter wraps the external Mayfly library to conform to our Optimizer interface
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
}

// NewMayfly creates a new Mayfly optimizer adapter
func NewMayfly(maxIters, popSize int, seed int64) *MayflyAdapter {
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
	}
}

// Run executes the Mayfly optimization inside the box [p.Lower, p.Upper]
func (m *MayflyAdapter) Run(ctx context.Context, p Problem) (*Result, error) {
	if p.Func == nil {
		return nil, fmt.Errorf("%w: objective is nil", ErrInvalidProblem)
	}
	if len(p.Lower) == 0 || len(p.Lower) != len(p.Upper) {
		return nil, fmt.Errorf("%w: bounds must be non-empty and of equal length", ErrInvalidProblem)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The library takes one scalar bound for every dimension, so use the
	// smallest box that covers all of them.
	lower, upper := math.Inf(1), math.Inf(-1)
	for i := range p.Lower {
		lower = math.Min(lower, p.Lower[i])
		upper = math.Max(upper, p.Upper[i])
	}
	if !(lower < upper) {
		return nil, fmt.Errorf("%w: bounds enclose no volume", ErrInvalidProblem)
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = p.Func
	config.ProblemSize = len(p.Lower)
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.LowerBound = lower
	config.UpperBound = upper

	// Set random seed for reproducibility
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return nil, fmt.Errorf("mayfly optimization failed: %w", err)
	}

	return &Result{
		X:           clone(result.GlobalBest.Position),
		F:           result.GlobalBest.Cost,
		Iterations:  m.maxIters,
		Evaluations: m.maxIters * m.popSize,
		Status:      StatusIterationLimit,
	}, nil
}
