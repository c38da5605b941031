// Package motion expands a sparse theta-rho path into the dense point stream
// the table controller executes, and groups it into wire-sized batches.
package motion

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/sandline/sandline/internal/pattern"
)

// DefaultStepSize is the fallback linear step, in theta-rho distance units,
// used when a caller passes a non-positive step.
const DefaultStepSize = 0.001

// Interpolate produces points linearly spaced between start and end, both
// endpoints included. The segment length is the Euclidean distance in
// theta-rho space (not a polar arc length); the number of interior steps is
// max(1, floor(distance/step)), so a zero-length segment still yields the two
// (identical) endpoints.
func Interpolate(start, end pattern.Coordinate, step float64) []pattern.Coordinate {
	if step <= 0 {
		step = DefaultStepSize
	}

	distance := math.Hypot(end.Theta-start.Theta, end.Rho-start.Rho)
	steps := int(distance / step)
	if steps < 1 {
		steps = 1
	}

	ts := make([]float64, steps+1)
	floats.Span(ts, 0, 1)

	points := make([]pattern.Coordinate, 0, steps+1)
	for _, t := range ts {
		points = append(points, pattern.Coordinate{
			Theta: start.Theta + t*(end.Theta-start.Theta),
			Rho:   start.Rho + t*(end.Rho-start.Rho),
		})
	}

	// Span guarantees the first element; pin the last to the exact endpoint
	// so accumulated float error never shifts the segment boundary.
	points[len(points)-1] = end
	return points
}

// InterpolatePath interpolates every consecutive pair of coords and
// concatenates the results in order. The shared endpoint between adjacent
// segments appears once in the output stream.
func InterpolatePath(coords []pattern.Coordinate, step float64) []pattern.Coordinate {
	if len(coords) < 2 {
		return nil
	}

	var out []pattern.Coordinate
	for i := 0; i < len(coords)-1; i++ {
		seg := Interpolate(coords[i], coords[i+1], step)
		if i > 0 {
			// seg[0] equals the previous segment's last point
			seg = seg[1:]
		}
		out = append(out, seg...)
	}
	return out
}
