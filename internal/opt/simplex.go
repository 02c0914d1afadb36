package opt

import (
	"math"
	"sort"
)

// Initial edge lengths. A zero coordinate gets the small absolute step so the first
// simplex never collapses onto the seed.
const (
	stepNonZero = 0.05
	stepZero    = 0.00025
)

// Vertex is a simplex vertex together with its cached cost
type Vertex struct {
	X []float64
	F float64
}

// Simplex holds dim+1 vertices. After Sort, index 0 is the best vertex and the last
// index the worst.
type Simplex []Vertex

// InitialSimplex builds the dim+1 starting positions anchored at seed:
// the seed itself followed by one vertex displaced along each axis.
func InitialSimplex(seed []float64) [][]float64 {
	dim := len(seed)
	positions := make([][]float64, 0, dim+1)
	positions = append(positions, clone(seed))

	for j := 0; j < dim; j++ {
		v := clone(seed)
		if seed[j] != 0 {
			v[j] += stepNonZero
		} else {
			v[j] += stepZero
		}
		positions = append(positions, v)
	}
	return positions
}

// Sort ranks the vertices by ascending cost. Equal costs keep their order.
func (s Simplex) Sort() {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].F < s[j].F
	})
}

// Clone returns a deep copy
func (s Simplex) Clone() Simplex {
	out := make(Simplex, len(s))
	for i, v := range s {
		out[i] = Vertex{X: clone(v.X), F: v.F}
	}
	return out
}

// Centroid returns the mean of every vertex except the last (worst) one
func (s Simplex) Centroid() []float64 {
	n := len(s) - 1
	c := make([]float64, len(s[0].X))
	for _, v := range s[:n] {
		for k, x := range v.X {
			c[k] += x
		}
	}
	for k := range c {
		c[k] /= float64(n)
	}
	return c
}

// Best returns the minimum-cost vertex regardless of the current ordering
func (s Simplex) Best() Vertex {
	best := s[0]
	for _, v := range s[1:] {
		if v.F < best.F {
			best = v
		}
	}
	return Vertex{X: clone(best.X), F: best.F}
}

// Positions copies out the vertex coordinates
func (s Simplex) Positions() [][]float64 {
	out := make([][]float64, len(s))
	for i, v := range s {
		out[i] = clone(v.X)
	}
	return out
}

// Costs copies out the cached vertex costs
func (s Simplex) Costs() []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = v.F
	}
	return out
}

// Movement is the stopping statistic 0.5 * sum_k ||prev_k - curr_k||^2,
// pairing vertices by slot.
func Movement(prev, curr Simplex) float64 {
	var sum float64
	for k := range curr {
		for j := range curr[k].X {
			d := prev[k].X[j] - curr[k].X[j]
			sum += d * d
		}
	}
	return 0.5 * sum
}

// Reflect returns (1+alpha)*centroid - alpha*worst
func (s Settings) Reflect(centroid, worst []float64) []float64 {
	return combine(1+s.Alpha, centroid, -s.Alpha, worst)
}

// Expand returns beta*reflected + (1-beta)*centroid, the point beta times as far
// from the centroid as the reflection.
func (s Settings) Expand(reflected, centroid []float64) []float64 {
	return combine(s.Beta, reflected, 1-s.Beta, centroid)
}

// ContractOutside returns gamma*reflected + (1-gamma)*centroid
func (s Settings) ContractOutside(reflected, centroid []float64) []float64 {
	return combine(s.Gamma, reflected, 1-s.Gamma, centroid)
}

// ContractInside returns (1+gamma)*centroid - gamma*worst
func (s Settings) ContractInside(centroid, worst []float64) []float64 {
	return combine(1+s.Gamma, centroid, -s.Gamma, worst)
}

// ShrinkToward returns delta*v + (1-delta)*best
func (s Settings) ShrinkToward(v, best []float64) []float64 {
	return combine(s.Delta, v, 1-s.Delta, best)
}

// combine returns a*x + b*y
func combine(a float64, x []float64, b float64, y []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = a*x[i] + b*y[i]
	}
	return out
}

func clone(x []float64) []float64 {
	return append([]float64(nil), x...)
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
