package opt

import (
	"context"
	"fmt"
)

// Snapshot is the simplex state handed to an Observer after each iteration.
// Vertices and Costs are copies the observer may keep.
type Snapshot struct {
	Iteration int
	Step      Step
	Vertices  [][]float64
	Costs     []float64
	Movement  float64
}

// Observer receives a Snapshot after every iteration. It runs on the optimizer's
// goroutine, so a slow observer slows the search.
type Observer func(Snapshot)

// NelderMead is a derivative-free simplex search
type NelderMead struct {
	settings Settings
	observer Observer
}

// NewNelderMead creates a Nelder-Mead optimizer. observer may be nil.
func NewNelderMead(settings Settings, observer Observer) (*NelderMead, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &NelderMead{
		settings: settings,
		observer: observer,
	}, nil
}

// Settings returns the hyper-parameters of this optimizer
func (nm *NelderMead) Settings() Settings {
	return nm.settings
}

// Run minimises p.Func starting from a simplex anchored at p.Seed
func (nm *NelderMead) Run(ctx context.Context, p Problem) (*Result, error) {
	if p.Func == nil {
		return nil, fmt.Errorf("%w: objective is nil", ErrInvalidProblem)
	}
	if len(p.Seed) == 0 {
		return nil, fmt.Errorf("%w: seed is empty", ErrInvalidProblem)
	}
	if !allFinite(p.Seed) {
		return nil, fmt.Errorf("%w: seed must be finite", ErrInvalidProblem)
	}

	ev := &evaluator{f: p.Func, workers: nm.settings.Workers}

	positions := InitialSimplex(p.Seed)
	costs := ev.batch(positions)
	sx := make(Simplex, len(positions))
	for i := range positions {
		sx[i] = Vertex{X: positions[i], F: costs[i]}
	}

	for iter := 1; iter <= nm.settings.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sx.Sort()
		prev := sx.Clone()

		step, err := nm.iterate(sx, ev)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", iter, err)
		}

		curr := sx
		if nm.settings.StopRule == StopRanked {
			curr = sx.Clone()
			curr.Sort()
		}
		movement := Movement(prev, curr)

		if nm.observer != nil {
			nm.observer(Snapshot{
				Iteration: iter,
				Step:      step,
				Vertices:  sx.Positions(),
				Costs:     sx.Costs(),
				Movement:  movement,
			})
		}

		if movement < nm.settings.Epsilon {
			best := sx.Best()
			return &Result{
				X:           best.X,
				F:           best.F,
				Iterations:  iter,
				Evaluations: ev.count,
				Status:      StatusConverged,
			}, nil
		}
	}

	best := sx.Best()
	return nil, &DidNotConvergeError{
		Iterations: nm.settings.MaxIterations,
		X:          best.X,
		F:          best.F,
	}
}

// iterate applies one decision-tree step to a ranked simplex in place
func (nm *NelderMead) iterate(sx Simplex, ev *evaluator) (Step, error) {
	s := nm.settings
	d := len(sx) - 1
	worst := sx[d].X
	centroid := sx.Centroid()

	t := &trials{ev: ev}
	t.points[candReflect] = s.Reflect(centroid, worst)
	t.points[candExpand] = s.Expand(t.points[candReflect], centroid)
	t.points[candOutside] = s.ContractOutside(t.points[candReflect], centroid)
	t.points[candInside] = s.ContractInside(centroid, worst)

	// Trial points depend only on geometry; prefetched costs equal the lazy ones.
	if s.Workers > 1 {
		t.prefetch()
	}

	step, c, err := decide(sx[0].F, sx[d-1].F, sx[d].F, t.cost)
	if err != nil {
		return StepNone, err
	}

	if step != StepShrink {
		sx[d] = t.vertex(c)
		return step, nil
	}

	shrunk := make([][]float64, d)
	for i := 1; i <= d; i++ {
		shrunk[i-1] = s.ShrinkToward(sx[i].X, sx[0].X)
	}
	for i, f := range ev.batch(shrunk) {
		sx[i+1] = Vertex{X: shrunk[i], F: f}
	}
	return StepShrink, nil
}
