package pointset

import "github.com/cwbudde/weberfit/internal/weber"

// article is the 30-point weighted validation set. Its Weber point lies near
// (5.497, 4.520); its mass center (5.833, 4.933) costs more.
var article = []weber.WeightedPoint{
	{X: 1, Y: 9, Weight: 1},
	{X: 1, Y: 2, Weight: 1},
	{X: 1, Y: 5, Weight: 4},
	{X: 2, Y: 4, Weight: 3},
	{X: 2, Y: 3, Weight: 2},
	{X: 3, Y: 8, Weight: 4},
	{X: 3, Y: 7, Weight: 3},
	{X: 3, Y: 6, Weight: 1},
	{X: 3, Y: 5, Weight: 2},
	{X: 4, Y: 4, Weight: 4},
	{X: 4, Y: 7, Weight: 1},
	{X: 5, Y: 7, Weight: 1},
	{X: 5, Y: 1, Weight: 4},
	{X: 6, Y: 3, Weight: 4},
	{X: 6, Y: 9, Weight: 3},
	{X: 6, Y: 2, Weight: 2},
	{X: 7, Y: 0, Weight: 1},
	{X: 7, Y: 8, Weight: 4},
	{X: 7, Y: 5, Weight: 2},
	{X: 7, Y: 1, Weight: 2},
	{X: 8, Y: 4, Weight: 3},
	{X: 8, Y: 6, Weight: 1},
	{X: 9, Y: 8, Weight: 1},
	{X: 9, Y: 3, Weight: 4},
	{X: 9, Y: 2, Weight: 1},
	{X: 9, Y: 10, Weight: 2},
	{X: 10, Y: 1, Weight: 3},
	{X: 10, Y: 4, Weight: 1},
	{X: 10, Y: 5, Weight: 2},
	{X: 10, Y: 9, Weight: 1},
}

// Article returns a fresh copy of the article data set
func Article() []weber.WeightedPoint {
	return append([]weber.WeightedPoint(nil), article...)
}
