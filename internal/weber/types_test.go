package weber

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMassCenter(t *testing.T) {
	center, err := MassCenter([]Point{{0, 0}, {2, 0}, {0, 2}, {2, 2}})
	require.NoError(t, err)
	assert.Equal(t, Point{X: 1, Y: 1}, center)

	_, err = MassCenter(nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBoundingBox(t *testing.T) {
	lower, upper := BoundingBox([]WeightedPoint{{3, -1, 1}, {-2, 4, 1}, {0, 0, 1}})
	assert.Equal(t, Point{X: -2, Y: -1}, lower)
	assert.Equal(t, Point{X: 3, Y: 4}, upper)
}

func TestIdentical(t *testing.T) {
	assert.True(t, Identical([]WeightedPoint{{1, 1, 1}, {1, 1, 5}}))
	assert.False(t, Identical([]WeightedPoint{{1, 1, 1}, {1, 2, 1}}))
	assert.False(t, Identical(nil))
}

func TestPointArithmetic(t *testing.T) {
	p := Point{X: 1, Y: 2}
	q := Point{X: 4, Y: 6}

	assert.Equal(t, Point{X: 5, Y: 8}, p.Add(q))
	assert.Equal(t, Point{X: 3, Y: 4}, q.Sub(p))
	assert.Equal(t, Point{X: 2, Y: 4}, p.Scale(2))
	assert.Equal(t, 5.0, p.Dist(q))
	assert.Equal(t, p, PointFromVector(p.Vector()))
}

func TestInvalidInputErrorMessage(t *testing.T) {
	assert.Equal(t, "invalid input: point set is empty", errEmptySet().Error())
	assert.Equal(t, "invalid input: point 3: weight cannot be negative",
		(&InvalidInputError{Index: 3, Reason: "weight cannot be negative"}).Error())
}

func TestWeightedPointJSONDefaultWeight(t *testing.T) {
	var points []WeightedPoint
	require.NoError(t, json.Unmarshal([]byte(`[{"x":1,"y":2},{"x":3,"y":4,"weight":0},{"x":5,"y":6,"weight":2.5}]`), &points))

	assert.Equal(t, []WeightedPoint{
		{X: 1, Y: 2, Weight: 1},
		{X: 3, Y: 4, Weight: 0},
		{X: 5, Y: 6, Weight: 2.5},
	}, points)

	var p WeightedPoint
	assert.Error(t, json.Unmarshal([]byte(`{"x":"a"}`), &p))
}
