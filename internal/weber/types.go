package weber

import (
	"encoding/json"
	"math"
)

// Point is a location in the plane. Candidate solutions and simplex vertices are Points.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// WeightedPoint is an input location carrying a non-negative weight
type WeightedPoint struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// UnmarshalJSON defaults a missing weight to 1
func (p *WeightedPoint) UnmarshalJSON(data []byte) error {
	type plain WeightedPoint
	aux := plain{Weight: 1}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = WeightedPoint(aux)
	return nil
}

// Location drops the weight
func (p WeightedPoint) Location() Point {
	return Point{X: p.X, Y: p.Y}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Dist returns the Euclidean distance between p and q
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Vector encodes the point as an optimizer parameter vector
func (p Point) Vector() []float64 {
	return []float64{p.X, p.Y}
}

// PointFromVector decodes an optimizer parameter vector
func PointFromVector(v []float64) Point {
	return Point{X: v[0], Y: v[1]}
}

// Unweighted lifts plain points to weighted points of weight 1
func Unweighted(points []Point) []WeightedPoint {
	out := make([]WeightedPoint, len(points))
	for i, p := range points {
		out[i] = WeightedPoint{X: p.X, Y: p.Y, Weight: 1}
	}
	return out
}

// Locations strips the weights from a point set
func Locations(points []WeightedPoint) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = p.Location()
	}
	return out
}

// ValidatePoints checks that a point set can be handed to the objective.
// The set must be non-empty, finite, and carry only non-negative weights.
func ValidatePoints(points []WeightedPoint) error {
	if len(points) == 0 {
		return errEmptySet()
	}
	for i, p := range points {
		if !finite(p.X) || !finite(p.Y) {
			return &InvalidInputError{Index: i, Reason: "coordinates must be finite"}
		}
		if !finite(p.Weight) {
			return &InvalidInputError{Index: i, Reason: "weight must be finite"}
		}
		if p.Weight < 0 {
			return &InvalidInputError{Index: i, Reason: "weight cannot be negative"}
		}
	}
	return nil
}

// MassCenter returns the unweighted arithmetic mean of the points
func MassCenter(points []Point) (Point, error) {
	if len(points) == 0 {
		return Point{}, errEmptySet()
	}

	var sum Point
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(points))), nil
}

// BoundingBox returns the axis-aligned bounds of the point set
func BoundingBox(points []WeightedPoint) (lower, upper Point) {
	if len(points) == 0 {
		return Point{}, Point{}
	}

	lower = points[0].Location()
	upper = lower
	for _, p := range points[1:] {
		lower.X = math.Min(lower.X, p.X)
		lower.Y = math.Min(lower.Y, p.Y)
		upper.X = math.Max(upper.X, p.X)
		upper.Y = math.Max(upper.Y, p.Y)
	}
	return lower, upper
}

// TotalWeight sums the weights of the point set
func TotalWeight(points []WeightedPoint) float64 {
	var total float64
	for _, p := range points {
		total += p.Weight
	}
	return total
}

// Identical reports whether every point shares the location of the first one
func Identical(points []WeightedPoint) bool {
	if len(points) == 0 {
		return false
	}
	first := points[0].Location()
	for _, p := range points[1:] {
		if p.Location() != first {
			return false
		}
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
