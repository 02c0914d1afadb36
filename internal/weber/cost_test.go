package weber

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumOfDistances_SinglePoint(t *testing.T) {
	points := []WeightedPoint{{X: 2, Y: 3, Weight: 4}}

	cost, err := SumOfDistances(points, Point{X: 2, Y: 3}, true)
	require.NoError(t, err)
	assert.Equal(t, 0.0, cost)
}

func TestSumOfDistances_Weighted(t *testing.T) {
	points := []WeightedPoint{
		{X: 0, Y: 0, Weight: 2},
		{X: 3, Y: 4, Weight: 3},
	}

	cost, err := SumOfDistances(points, Point{X: 0, Y: 0}, true)
	require.NoError(t, err)
	assert.Equal(t, 15.0, cost) // 2*0 + 3*5

	cost, err = SumOfDistances(points, Point{X: 0, Y: 0}, false)
	require.NoError(t, err)
	assert.Equal(t, 5.0, cost)
}

func TestSumOfDistances_UnweightedEqualsUnitWeights(t *testing.T) {
	plain := []Point{{1, 9}, {1, 2}, {4, 4}, {7, 0}, {10, 9}}
	withWeights := make([]WeightedPoint, len(plain))
	for i, p := range plain {
		withWeights[i] = WeightedPoint{X: p.X, Y: p.Y, Weight: 7} // ignored when unweighted
	}

	for _, c := range []Point{{0, 0}, {5.5, 4.5}, {1, 9}, {-3, 12}} {
		unweighted, err := SumOfDistances(withWeights, c, false)
		require.NoError(t, err)
		unit, err := SumOfDistances(Unweighted(plain), c, true)
		require.NoError(t, err)
		assert.Equal(t, unit, unweighted, "candidate %v", c)
	}
}

func TestSumOfDistances_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		points []WeightedPoint
		index  int
	}{
		{"empty", nil, -1},
		{"negative weight", []WeightedPoint{{0, 0, 1}, {1, 1, -1}}, 1},
		{"NaN coordinate", []WeightedPoint{{math.NaN(), 0, 1}}, 0},
		{"infinite weight", []WeightedPoint{{0, 0, 1}, {0, 0, 1}, {2, 2, math.Inf(1)}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SumOfDistances(tt.points, Point{}, true)
			require.ErrorIs(t, err, ErrInvalidInput)

			var iie *InvalidInputError
			require.True(t, errors.As(err, &iie))
			assert.Equal(t, tt.index, iie.Index)
		})
	}
}

func TestObjective_CopiesInput(t *testing.T) {
	points := []WeightedPoint{{X: 0, Y: 0, Weight: 1}}
	obj, err := NewObjective(points, true)
	require.NoError(t, err)

	points[0].X = 100
	assert.Equal(t, 0.0, obj.Cost(Point{}))
	assert.Equal(t, 1, obj.Len())
	assert.True(t, obj.Weighted())
}

func TestObjective_ConcurrentUse(t *testing.T) {
	obj, err := NewObjective([]WeightedPoint{{0, 0, 1}, {3, 4, 2}}, true)
	require.NoError(t, err)
	f := obj.Func()

	var wg sync.WaitGroup
	results := make([]float64, 16)
	for i := range results {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = f([]float64{0, 0})
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, 10.0, r)
	}
}
