package pointset

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/cwbudde/weberfit/internal/weber"
)

// Container selects the shape of a generated point set
type Container int

const (
	List   Container = iota // Ordered, duplicates allowed
	Unique                  // De-duplicated set
	Array                   // Ordered, exposed as a dense [][2]float64
)

func (c Container) String() string {
	switch c {
	case List:
		return "list"
	case Unique:
		return "set"
	case Array:
		return "array"
	default:
		return fmt.Sprintf("Container(%d)", int(c))
	}
}

// ParseContainer accepts "list", "set" and "array"
func ParseContainer(s string) (Container, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "list":
		return List, nil
	case "set", "unique":
		return Unique, nil
	case "array":
		return Array, nil
	default:
		return 0, fmt.Errorf("unsupported container %q (supported: list, set, array)", s)
	}
}

// Set is a generated point set
type Set struct {
	kind   Container
	points []weber.Point
}

// Kind returns the container the set was generated as
func (s Set) Kind() Container {
	return s.kind
}

// Len returns the number of points
func (s Set) Len() int {
	return len(s.points)
}

// Points returns a copy of the points
func (s Set) Points() []weber.Point {
	return append([]weber.Point(nil), s.points...)
}

// Array returns the points as dense coordinate pairs
func (s Set) Array() [][2]float64 {
	out := make([][2]float64, len(s.points))
	for i, p := range s.points {
		out[i] = [2]float64{p.X, p.Y}
	}
	return out
}

// maxDrawsPerPoint bounds the rejection loop of Unique sets
const maxDrawsPerPoint = 100

// Generate draws count points uniformly from the box [minimum, maximum]
func Generate(rng *rand.Rand, minimum, maximum weber.Point, count int, kind Container) (Set, error) {
	if err := checkBounds(minimum, maximum); err != nil {
		return Set{}, err
	}
	if count <= 0 {
		return Set{}, &InvalidCountError{Count: count, Reason: "must be positive"}
	}
	if kind == Unique && count > 1 && minimum == maximum {
		return Set{}, &InvalidCountError{Count: count, Reason: "a single location holds only one distinct point"}
	}

	points := make([]weber.Point, 0, count)
	var seen map[weber.Point]struct{}
	if kind == Unique {
		seen = make(map[weber.Point]struct{}, count)
	}

	for draws := 0; len(points) < count; draws++ {
		if draws >= count*maxDrawsPerPoint {
			return Set{}, &InvalidCountError{Count: count, Reason: "too many duplicate draws"}
		}

		p := draw(rng, minimum, maximum)
		if seen != nil {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
		}
		points = append(points, p)
	}

	return Set{kind: kind, points: points}, nil
}

// GenerateWeighted draws count points with integer weights in [1, maxWeight]
func GenerateWeighted(rng *rand.Rand, minimum, maximum weber.Point, count, maxWeight int) ([]weber.WeightedPoint, error) {
	if maxWeight < 1 {
		return nil, &InvalidRangeError{Axis: "weight", Min: 1, Max: float64(maxWeight)}
	}

	set, err := Generate(rng, minimum, maximum, count, List)
	if err != nil {
		return nil, err
	}

	out := make([]weber.WeightedPoint, set.Len())
	for i, p := range set.points {
		out[i] = weber.WeightedPoint{X: p.X, Y: p.Y, Weight: float64(1 + rng.Intn(maxWeight))}
	}
	return out, nil
}

func checkBounds(minimum, maximum weber.Point) error {
	if !finite(minimum.X) || !finite(maximum.X) {
		return &InvalidRangeError{Axis: "x", Min: minimum.X, Max: maximum.X}
	}
	if !finite(minimum.Y) || !finite(maximum.Y) {
		return &InvalidRangeError{Axis: "y", Min: minimum.Y, Max: maximum.Y}
	}
	if minimum.X > maximum.X {
		return &InvalidRangeError{Axis: "x", Min: minimum.X, Max: maximum.X}
	}
	if minimum.Y > maximum.Y {
		return &InvalidRangeError{Axis: "y", Min: minimum.Y, Max: maximum.Y}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func draw(rng *rand.Rand, minimum, maximum weber.Point) weber.Point {
	return weber.Point{
		X: minimum.X + (maximum.X-minimum.X)*rng.Float64(),
		Y: minimum.Y + (maximum.Y-minimum.Y)*rng.Float64(),
	}
}
