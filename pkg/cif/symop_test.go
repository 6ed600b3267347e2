package cif

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSymOp(t *testing.T) {
	tests := []struct {
		in   string
		want SymOp
	}{
		{"x,y,z", Identity},
		{"-x, -y, -z", SymOp{Rot: [3][3]float64{{-1, 0, 0}, {0, -1, 0}, {0, 0, -1}}}},
		{"X, Y+1/2, 1/2-Z", SymOp{
			Rot:   [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, -1}},
			Trans: [3]float64{0, 0.5, 0.5},
		}},
		{"x-y, x, z+0.25", SymOp{
			Rot:   [3][3]float64{{1, -1, 0}, {1, 0, 0}, {0, 0, 1}},
			Trans: [3]float64{0, 0, 0.25},
		}},
		{"+x, 2*y, -z-2/3", SymOp{
			Rot:   [3][3]float64{{1, 0, 0}, {0, 2, 0}, {0, 0, -1}},
			Trans: [3]float64{0, 0, -2. / 3},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSymOp(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSymOpErrors(t *testing.T) {
	for _, in := range []string{"x,y", "x,,z", "x,y,w", "x,y,z+1/0", "x,y,z+", "x,y,2*"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseSymOp(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFormat))
		})
	}
}

func TestSymOpString(t *testing.T) {
	for _, in := range []string{"x, y, z", "-x, y+1/2, -z+1/2", "x-y, x, z+1/3", "-y, 2*x, z+0.15"} {
		op, err := ParseSymOp(in)
		require.NoError(t, err)
		assert.Equal(t, in, op.String())
	}
}

func TestSymOpApply(t *testing.T) {
	op, err := ParseSymOp("-x, y+1/2, z")
	require.NoError(t, err)

	got := op.Apply([3]float64{0.25, 0.75, 0.5})
	assert.InDelta(t, 0.75, got[0], 1e-12)
	assert.InDelta(t, 0.25, got[1], 1e-12)
	assert.InDelta(t, 0.5, got[2], 1e-12)
}
