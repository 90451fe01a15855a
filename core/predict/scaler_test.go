package predict

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinMaxScalerTransform(t *testing.T) {
	s := &MinMaxScaler{
		FeatureNames: []string{"a", "b", "c"},
		DataMin:      []float64{0, 10, 5},
		DataMax:      []float64{10, 20, 5},
	}
	got := s.Transform([]float64{5, 10, 5})
	assert.InDelta(t, 0.5, got[0], 1e-12)
	assert.InDelta(t, 0.0, got[1], 1e-12)
	// Degenerate range: constant feature scales to zero, no division.
	assert.InDelta(t, 0.0, got[2], 1e-12)
}

func TestMinMaxScalerTransformDoesNotMutateInput(t *testing.T) {
	s := &MinMaxScaler{FeatureNames: []string{"a"}, DataMin: []float64{1}, DataMax: []float64{3}}
	in := []float64{2}
	_ = s.Transform(in)
	assert.Equal(t, 2.0, in[0])
}

func TestLogPolicy(t *testing.T) {
	tests := []struct {
		field string
		in    float64
		want  float64
	}{
		{"pm10", 2.0, math.Log(2.0)},
		{"no", 0.0, math.Log(1.0)},
		{"pm25", 0.1, math.Log(1.0)},
		{"o3", 0.04, 0.04},
		{"so2", 3.0, 3.0},
		{"co", 0.3, 0.3},
		{"temp", 25.0, 25.0}, // no policy, passes through
	}
	for _, tc := range tests {
		assert.InDelta(t, tc.want, logIfNeeded(tc.field, tc.in), 1e-12, tc.field)
	}
}

func TestInvertLogRoundTrip(t *testing.T) {
	for _, p := range []string{"pm10", "no", "nox", "pm25", "no2"} {
		x := 7.3
		v := logIfNeeded(p, x)
		assert.InDelta(t, x, invertLog(p, v), 1e-9, p)
	}
}
