package weber

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/cwbudde/weberfit/internal/opt"
)

// Solver methods
const (
	MethodNelderMead = "nelder-mead"
	MethodMayfly     = "mayfly"
)

// Config holds the options of one Solve call
type Config struct {
	// Method selects the optimizer: MethodNelderMead (default) or MethodMayfly
	Method string `json:"method,omitempty" yaml:"method,omitempty"`

	Settings opt.Settings `json:"settings" yaml:"settings"`

	// SeedIndex is the input point anchoring the initial simplex.
	// A negative value draws one uniformly at random using RandSeed.
	SeedIndex int   `json:"seedIndex" yaml:"seedIndex"`
	RandSeed  int64 `json:"randSeed" yaml:"randSeed"`

	// Weighted=false solves the geometric median, ignoring weights
	Weighted bool `json:"weighted" yaml:"weighted"`

	// Mayfly budget, used only by MethodMayfly
	MayflyIters int `json:"mayflyIters,omitempty" yaml:"mayflyIters,omitempty"`
	MayflyPop   int `json:"mayflyPop,omitempty" yaml:"mayflyPop,omitempty"`

	// Observer, if set, receives every Nelder-Mead iteration
	Observer opt.Observer `json:"-" yaml:"-"`
}

// DefaultConfig returns a weighted Nelder-Mead configuration seeded at the first point
func DefaultConfig() Config {
	return Config{
		Method:      MethodNelderMead,
		Settings:    opt.DefaultSettings(),
		SeedIndex:   0,
		RandSeed:    42,
		Weighted:    true,
		MayflyIters: 200,
		MayflyPop:   30,
	}
}

// Result holds the output of a solve
type Result struct {
	Point       Point   `json:"point"`
	Cost        float64 `json:"cost"`
	Iterations  int     `json:"iterations"`
	Evaluations int     `json:"evaluations"`
	Method      string  `json:"method"`
	SeedIndex   int     `json:"seedIndex"`

	// Degenerate is set when the minimiser was known without searching
	Degenerate bool `json:"degenerate"`
}

// Solve finds the point minimising the sum of weighted distances to points
func Solve(ctx context.Context, points []WeightedPoint, cfg Config) (*Result, error) {
	// NewObjective validates the point set
	obj, err := NewObjective(points, cfg.Weighted)
	if err != nil {
		return nil, err
	}

	seedIndex, err := pickSeed(len(points), cfg)
	if err != nil {
		return nil, err
	}

	if degenerate := checkDegenerate(points, seedIndex, cfg.Weighted); degenerate != nil {
		slog.Debug("Degenerate point set, skipping search", "reason", degenerate.Reason, "point", degenerate.Point)
		return &Result{
			Point:      degenerate.Point,
			Cost:       obj.Cost(degenerate.Point),
			Method:     methodName(cfg),
			SeedIndex:  seedIndex,
			Degenerate: true,
		}, nil
	}

	optimizer, problem, err := buildOptimizer(points, obj, seedIndex, cfg)
	if err != nil {
		return nil, err
	}

	slog.Debug("Starting solve",
		"method", methodName(cfg),
		"points", len(points),
		"weighted", cfg.Weighted,
		"seed_index", seedIndex,
	)

	res, err := optimizer.Run(ctx, problem)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", methodName(cfg), err)
	}

	best := PointFromVector(res.X)
	slog.Debug("Solve complete",
		"point", best,
		"cost", res.F,
		"iterations", res.Iterations,
		"evaluations", res.Evaluations,
		"status", res.Status,
	)

	return &Result{
		Point:       best,
		Cost:        res.F,
		Iterations:  res.Iterations,
		Evaluations: res.Evaluations,
		Method:      methodName(cfg),
		SeedIndex:   seedIndex,
	}, nil
}

// SolveGeometricMedian solves the unweighted variant over plain points
func SolveGeometricMedian(ctx context.Context, points []Point, cfg Config) (*Result, error) {
	cfg.Weighted = false
	return Solve(ctx, Unweighted(points), cfg)
}

func methodName(cfg Config) string {
	if cfg.Method == "" {
		return MethodNelderMead
	}
	return cfg.Method
}

func pickSeed(n int, cfg Config) (int, error) {
	if cfg.SeedIndex < 0 {
		rng := rand.New(rand.NewSource(cfg.RandSeed))
		return rng.Intn(n), nil
	}
	if cfg.SeedIndex >= n {
		return 0, &InvalidInputError{
			Index:  -1,
			Reason: fmt.Sprintf("seed index %d out of range for %d points", cfg.SeedIndex, n),
		}
	}
	return cfg.SeedIndex, nil
}

// checkDegenerate returns the known minimiser for point sets that need no search
func checkDegenerate(points []WeightedPoint, seedIndex int, weighted bool) *DegenerateGeometryError {
	seed := points[seedIndex].Location()

	switch {
	case len(points) == 1:
		return &DegenerateGeometryError{Point: seed, Reason: "single point"}
	case Identical(points):
		return &DegenerateGeometryError{Point: seed, Reason: "all points coincide"}
	case weighted && TotalWeight(points) == 0:
		// Every location costs zero
		return &DegenerateGeometryError{Point: seed, Reason: "total weight is zero"}
	}
	return nil
}

func buildOptimizer(points []WeightedPoint, obj *Objective, seedIndex int, cfg Config) (opt.Optimizer, opt.Problem, error) {
	problem := opt.Problem{
		Func: obj.Func(),
		Seed: points[seedIndex].Location().Vector(),
	}

	switch methodName(cfg) {
	case MethodNelderMead:
		nm, err := opt.NewNelderMead(cfg.Settings, cfg.Observer)
		if err != nil {
			return nil, problem, err
		}
		return nm, problem, nil

	case MethodMayfly:
		// The minimiser lies in the convex hull, hence in the bounding box
		lower, upper := BoundingBox(points)
		problem.Lower = lower.Vector()
		problem.Upper = upper.Vector()

		iters, pop := cfg.MayflyIters, cfg.MayflyPop
		if iters <= 0 {
			iters = DefaultConfig().MayflyIters
		}
		if pop <= 0 {
			pop = DefaultConfig().MayflyPop
		}
		return opt.NewMayfly(iters, pop, cfg.RandSeed), problem, nil

	default:
		return nil, problem, fmt.Errorf("unknown method: %s", cfg.Method)
	}
}
