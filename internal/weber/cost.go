package weber

// SumOfDistances computes the Weber objective: the sum of weighted Euclidean distances
// from candidate to every input point. With weighted=false the weights are ignored and
// the geometric-median objective is returned instead.
func SumOfDistances(points []WeightedPoint, candidate Point, weighted bool) (float64, error) {
	obj, err := NewObjective(points, weighted)
	if err != nil {
		return 0, err
	}
	return obj.Cost(candidate), nil
}

// Objective is a validated, read-only view of a point set.
// Cost may be called from any number of goroutines.
type Objective struct {
	points   []WeightedPoint
	weighted bool
}

// NewObjective validates the point set once and captures a private copy of it
func NewObjective(points []WeightedPoint, weighted bool) (*Objective, error) {
	if err := ValidatePoints(points); err != nil {
		return nil, err
	}

	return &Objective{
		points:   append([]WeightedPoint(nil), points...),
		weighted: weighted,
	}, nil
}

// Cost evaluates the objective at candidate
func (o *Objective) Cost(candidate Point) float64 {
	var sum float64
	for _, p := range o.points {
		dist := candidate.Dist(p.Location())
		if o.weighted {
			dist *= p.Weight
		}
		sum += dist
	}
	return sum
}

// Func adapts the objective to the optimizer's parameter-vector signature
func (o *Objective) Func() func([]float64) float64 {
	return func(x []float64) float64 {
		return o.Cost(PointFromVector(x))
	}
}

// Weighted reports whether point weights contribute to the cost
func (o *Objective) Weighted() bool {
	return o.weighted
}

// Len returns the number of input points
func (o *Objective) Len() int {
	return len(o.points)
}
