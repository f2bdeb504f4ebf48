package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSquaredL2(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"empty", nil, nil, 0},
		{"2d", []float64{0, 0}, []float64{3, 4}, 25},
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"unrolled tail", []float64{1, 1, 1, 1, 1}, []float64{0, 0, 0, 0, 3}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SquaredL2(tt.a, tt.b))
		})
	}
}

func TestSquaredL2_Overflow(t *testing.T) {
	assert.True(t, math.IsInf(SquaredL2([]float64{0}, []float64{1e200}), 1))
}

func TestDot(t *testing.T) {
	assert.Equal(t, 32.0, Dot([]float64{1, 2, 3}, []float64{4, 5, 6}))
}
