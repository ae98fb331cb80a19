package cognition

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestIntegrationShapesAndBounds(t *testing.T) {
	rand.Seed(123)
	ib, err := NewIntegrationBlock(testConfig(6, 1))
	require.NoError(t, err)

	states := randDense(6, 4)
	res, err := ib.Forward(states)
	require.NoError(t, err)

	for _, m := range []*mat.Dense{res.Integrated, res.Phi, res.Gate} {
		r, c := m.Dims()
		require.Equal(t, 6, r)
		require.Equal(t, 4, c)
	}

	for i := 0; i < 6; i++ {
		for j := 0; j < 4; j++ {
			phi := res.Phi.At(i, j)
			gate := res.Gate.At(i, j)
			integ := res.Integrated.At(i, j)
			s := states.At(i, j)

			require.Greater(t, phi, -1.0)
			require.Less(t, phi, 1.0)
			require.Greater(t, gate, 0.0)
			require.Less(t, gate, 1.0)

			lo := math.Min(phi, s)
			hi := math.Max(phi, s)
			require.GreaterOrEqual(t, integ, lo-1e-12)
			require.LessOrEqual(t, integ, hi+1e-12)
		}
	}
}

func TestIntegrationShapeError(t *testing.T) {
	ib, err := NewIntegrationBlock(testConfig(6, 1))
	require.NoError(t, err)

	_, err = ib.Forward(randDense(5, 4))
	var se *ShapeError
	require.ErrorAs(t, err, &se)
}

func TestIntegrationConfigError(t *testing.T) {
	_, err := NewIntegrationBlock(testConfig(0, 1))
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
}

// Gate forced to ~0 (zero weights, large negative bias): the block passes
// the raw state through untouched.
func TestIntegrationClosedGatePassesState(t *testing.T) {
	rand.Seed(123)
	ib, err := NewIntegrationBlock(testConfig(6, 1))
	require.NoError(t, err)

	ib.Wgate.W.Zero()
	for i := 0; i < 6; i++ {
		ib.Wgate.B.Set(i, 0, -50.0)
	}

	states := randDense(6, 3)
	res, err := ib.Forward(states)
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		for j := 0; j < 3; j++ {
			require.InDelta(t, states.At(i, j), res.Integrated.At(i, j), 1e-12)
		}
	}
}

// Gate forced to ~1: the block returns the phi projection.
func TestIntegrationOpenGateReturnsPhi(t *testing.T) {
	rand.Seed(123)
	ib, err := NewIntegrationBlock(testConfig(6, 1))
	require.NoError(t, err)

	ib.Wgate.W.Zero()
	for i := 0; i < 6; i++ {
		ib.Wgate.B.Set(i, 0, 50.0)
	}

	states := randDense(6, 3)
	res, err := ib.Forward(states)
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		for j := 0; j < 3; j++ {
			require.InDelta(t, res.Phi.At(i, j), res.Integrated.At(i, j), 1e-12)
		}
	}
}

func TestIntegrationDeterministic(t *testing.T) {
	rand.Seed(5)
	ib, err := NewIntegrationBlock(testConfig(8, 1))
	require.NoError(t, err)

	states := randDense(8, 2)
	r1, err := ib.Forward(states)
	require.NoError(t, err)
	r2, err := ib.Forward(states)
	require.NoError(t, err)
	require.True(t, mat.Equal(r1.Integrated, r2.Integrated))
	require.True(t, mat.Equal(r1.Phi, r2.Phi))
	require.True(t, mat.Equal(r1.Gate, r2.Gate))
}
