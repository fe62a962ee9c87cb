package services

import "math"

// cosineDistance returns 1 - cosine(a, b). The second return is false
// when the vectors cannot be compared (dimension mismatch, empty input,
// or a zero-magnitude vector).
func cosineDistance(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return 1 - sim, true
}
