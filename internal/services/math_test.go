package services

import (
	"math"
	"testing"
)

func TestCosineDistance(t *testing.T) {
	cases := []struct {
		name   string
		a, b   []float32
		want   float64
		wantOK bool
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 0, wantOK: true},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 1, wantOK: true},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: 2, wantOK: true},
		{name: "scaled_is_identical", a: []float32{1, 2}, b: []float32{10, 20}, want: 0, wantOK: true},
		{name: "dimension_mismatch", a: []float32{1, 2}, b: []float32{1, 2, 3}, wantOK: false},
		{name: "empty", a: nil, b: []float32{1}, wantOK: false},
		{name: "zero_vector", a: []float32{0, 0}, b: []float32{1, 1}, wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := cosineDistance(tc.a, tc.b)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !tc.wantOK {
				return
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("distance = %v, want %v", got, tc.want)
			}
		})
	}
}
