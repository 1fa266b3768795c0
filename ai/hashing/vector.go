package hashing

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when comparing vectors of different lengths.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Cosine returns the cosine similarity of a and b in [-1, 1]. If either
// vector has zero norm the similarity is 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// float rounding can push identical vectors just past 1
	return math.Max(-1, math.Min(1, sim)), nil
}
