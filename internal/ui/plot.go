package ui

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/a-h/templ"
	"github.com/cwbudde/weberfit/internal/weber"
)

// PlotData is what ScatterPlot draws. Solution, MassCenter and Path are optional.
type PlotData struct {
	Points     []weber.WeightedPoint
	Solution   *weber.Point
	MassCenter *weber.Point

	// Path is the best vertex per iteration, drawn as a polyline
	Path []weber.Point
}

// plotMargin is the blank border in pixels
const plotMargin = 20.0

// ScatterPlot renders the input points (radius growing with weight), the
// solution in purple and the mass center in red as a standalone SVG document.
func ScatterPlot(data PlotData, width, height int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		pr := newProjection(data, float64(width), float64(height))

		if _, err := fmt.Fprintf(w,
			`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n"+
				`<rect width="100%%" height="100%%" fill="white"/>`+"\n",
			width, height, width, height); err != nil {
			return err
		}

		maxWeight := 0.0
		for _, p := range data.Points {
			maxWeight = math.Max(maxWeight, p.Weight)
		}

		for _, p := range data.Points {
			r := 4.0
			if maxWeight > 0 {
				r = 3 + 5*p.Weight/maxWeight
			}
			x, y := pr.apply(p.Location())
			if _, err := fmt.Fprintf(w,
				`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="steelblue" fill-opacity="0.7"><title>(%g, %g) w=%g</title></circle>`+"\n",
				x, y, r, p.X, p.Y, p.Weight); err != nil {
				return err
			}
		}

		if len(data.Path) > 1 {
			if _, err := io.WriteString(w, `<polyline fill="none" stroke="gray" stroke-width="1" points="`); err != nil {
				return err
			}
			for _, p := range data.Path {
				x, y := pr.apply(p)
				if _, err := fmt.Fprintf(w, "%.2f,%.2f ", x, y); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "\"/>\n"); err != nil {
				return err
			}
		}

		if err := marker(w, pr, data.MassCenter, "red", "mass center"); err != nil {
			return err
		}
		if err := marker(w, pr, data.Solution, "purple", "solution"); err != nil {
			return err
		}

		_, err := io.WriteString(w, "</svg>\n")
		return err
	})
}

func marker(w io.Writer, pr projection, p *weber.Point, color, label string) error {
	if p == nil {
		return nil
	}
	x, y := pr.apply(*p)
	_, err := fmt.Fprintf(w,
		`<circle cx="%.2f" cy="%.2f" r="9" fill="%s"><title>%s (%g, %g)</title></circle>`+"\n",
		x, y, color, templ.EscapeString(label), p.X, p.Y)
	return err
}

// projection maps plane coordinates onto the SVG canvas, y pointing up
type projection struct {
	minX, minY float64
	scale      float64
	height     float64
}

func newProjection(data PlotData, width, height float64) projection {
	pts := weber.Locations(data.Points)
	pts = append(pts, data.Path...)
	for _, p := range []*weber.Point{data.Solution, data.MassCenter} {
		if p != nil {
			pts = append(pts, *p)
		}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	if len(pts) == 0 {
		minX, minY, maxX, maxY = 0, 0, 1, 1
	}

	spanX, spanY := maxX-minX, maxY-minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}

	scale := math.Min((width-2*plotMargin)/spanX, (height-2*plotMargin)/spanY)
	return projection{minX: minX, minY: minY, scale: scale, height: height}
}

func (pr projection) apply(p weber.Point) (float64, float64) {
	x := plotMargin + (p.X-pr.minX)*pr.scale
	y := pr.height - plotMargin - (p.Y-pr.minY)*pr.scale
	return x, y
}
