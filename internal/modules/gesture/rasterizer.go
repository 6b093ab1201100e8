// Package gesture converts freehand canvas drawings into forecast series.
package gesture

import (
	"math"
	"time"

	"github.com/tzagara/curvecast/internal/domain"
	"github.com/tzagara/curvecast/internal/modules/timeframe"
)

// Point is a screen coordinate from the drawing canvas, y growing downwards
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Canvas describes the drawing surface. BottomPadding is reserved for the
// time axis, so the drawable height is Height - BottomPadding.
type Canvas struct {
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	BottomPadding float64 `json:"bottomPadding"`
}

// ChartBounds is the visible price context the user drew against
type ChartBounds struct {
	MinPrice  float64 `json:"minPrice"`
	MaxPrice  float64 `json:"maxPrice"`
	LastPrice float64 `json:"lastPrice"`
}

// PriceRange is an explicit display range overriding the derived one
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// displayRange derives the price range mapped onto the canvas: an explicit
// range wins, otherwise the chart bounds padded by 10% on each side. A
// degenerate range is widened so the y mapping never divides by zero.
func displayRange(bounds ChartBounds, explicit *PriceRange) (float64, float64) {
	var min, max float64
	if explicit != nil {
		min, max = explicit.Min, explicit.Max
	} else {
		padding := (bounds.MaxPrice - bounds.MinPrice) * 0.1
		min = bounds.MinPrice - padding
		max = bounds.MaxPrice + padding
	}

	if max <= min {
		max = min + 10
	}
	return min, max
}

// Rasterize samples a freehand drawing into exactly spec.Points prices, one
// per time step starting at start. The x axis of the drawing is stretched
// over the whole timeframe and each sample takes the nearest drawn point
// (no interpolation, ties to the first point encountered).
//
// Rasterize is pure: the caller validates len(points) >= 2 before invoking.
func Rasterize(points []Point, canvas Canvas, bounds ChartBounds, explicit *PriceRange, spec timeframe.Spec, start time.Time) []domain.SeriesPoint {
	priceMin, priceMax := displayRange(bounds, explicit)

	drawable := canvas.Height - canvas.BottomPadding
	if drawable <= 0 {
		drawable = 1
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
	}
	width := maxX - minX
	if width <= 0 || len(points) == 0 {
		width = 1
	}

	series := make([]domain.SeriesPoint, 0, spec.Points)
	for i := 0; i < spec.Points; i++ {
		progress := 0.0
		if spec.Points > 1 {
			progress = float64(i) / float64(spec.Points-1)
		}
		targetX := minX + progress*width

		var closest *Point
		minDistance := math.Inf(1)
		for j := range points {
			if distance := math.Abs(points[j].X - targetX); distance < minDistance {
				minDistance = distance
				closest = &points[j]
			}
		}

		price := bounds.LastPrice
		if closest != nil {
			y := math.Max(0, math.Min(closest.Y, drawable))
			yNorm := 1 - y/drawable
			yNorm = math.Max(0, math.Min(yNorm, 1))
			price = priceMin + yNorm*(priceMax-priceMin)
		}

		series = append(series, domain.SeriesPoint{
			Price:     math.Round(price*100) / 100,
			Timestamp: start.Add(time.Duration(i) * spec.Step),
		})
	}

	return series
}
