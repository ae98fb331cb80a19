package utils

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestRowSoftmaxSumsToOne(t *testing.T) {
	rand.Seed(123)
	m := mat.NewDense(4, 6, RandomArray(24, 4))
	out := RowSoftmax(m)
	for _, s := range RowSums(out) {
		require.InDelta(t, 1.0, s, 1e-9)
	}
}

// Large magnitudes must not overflow; the max is subtracted first.
func TestRowSoftmaxStable(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{
		1e6, 1e6 + 1, 1e6 - 1,
		-1e6, -1e6 + 2, -1e6 - 2,
	})
	out := RowSoftmax(m)
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			v := out.At(i, j)
			require.False(t, math.IsNaN(v))
			require.False(t, math.IsInf(v, 0))
		}
	}
	for _, s := range RowSums(out) {
		require.InDelta(t, 1.0, s, 1e-9)
	}
}

func TestCausalMask(t *testing.T) {
	mask := CausalMask(4)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := 0.0
			if j <= i {
				want = 1.0
			}
			require.Equal(t, want, mask.At(i, j), "mask[%d,%d]", i, j)
		}
	}
}

func TestAddBias(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	b := mat.NewDense(2, 1, []float64{10, 20})
	out := AddBias(m, b)
	require.Equal(t, 11.0, out.At(0, 0))
	require.Equal(t, 13.0, out.At(0, 2))
	require.Equal(t, 26.0, out.At(1, 2))

	require.Panics(t, func() { AddBias(m, mat.NewDense(3, 1, nil)) })
}

func TestRandomArrayRange(t *testing.T) {
	rand.Seed(123)
	vals := RandomArray(1000, 16.0)
	bound := 1.0 / math.Sqrt(16.0)
	for _, v := range vals {
		require.LessOrEqual(t, math.Abs(v), bound)
	}
}

func TestActivations(t *testing.T) {
	require.InDelta(t, 0.5, SigmoidApply(0, 0, 0.0), 1e-12)
	require.InDelta(t, 0.0, TanhApply(0, 0, 0.0), 1e-12)
	require.Greater(t, SigmoidApply(0, 0, 50.0), 1.0-1e-12)
	require.Less(t, SigmoidApply(0, 0, -50.0), 1e-12)
	require.InDelta(t, 1.0, TanhApply(0, 0, 50.0), 1e-12)
}

func TestElementwiseHelpers(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	b := mat.NewDense(2, 2, []float64{5, 6, 7, 8})

	sum := ToDense(Add(a, b))
	require.Equal(t, 6.0, sum.At(0, 0))

	diff := ToDense(Subtract(b, a))
	require.Equal(t, 4.0, diff.At(1, 1))

	prod := ToDense(Multiply(a, b))
	require.Equal(t, 12.0, prod.At(0, 1))

	sc := ToDense(Scale(2.0, a))
	require.Equal(t, 8.0, sc.At(1, 1))

	d := ToDense(Dot(a, b))
	require.Equal(t, 1.0*5+2.0*7, d.At(0, 0))
}
