package motion

import "github.com/sandline/sandline/internal/pattern"

// DefaultBatchSize is the number of points sent in one wire message. Smaller
// batches keep the controller's buffer shallow and the motion smoother.
const DefaultBatchSize = 20

// Batch splits points into contiguous slices of at most size points,
// preserving order. The last batch may be shorter. The returned batches alias
// the input slice; they are not copies.
func Batch(points []pattern.Coordinate, size int) [][]pattern.Coordinate {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if len(points) == 0 {
		return nil
	}

	batches := make([][]pattern.Coordinate, 0, (len(points)+size-1)/size)
	for start := 0; start < len(points); start += size {
		end := start + size
		if end > len(points) {
			end = len(points)
		}
		batches = append(batches, points[start:end])
	}
	return batches
}
