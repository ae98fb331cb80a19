package cognition

import (
	"gonum.org/v1/gonum/mat"

	"github.com/manningwu07/cognition/utils"
)

// Linear is a dense affine map y = W*x + b with W (out x in) and b (out x 1).
// W and b are owned by exactly one component; shapes never change after
// construction. An external optimizer may rewrite their values in place.
type Linear struct {
	W *mat.Dense
	B *mat.Dense
}

// NewLinear builds a map with U(-1/sqrt(in), 1/sqrt(in)) weights and zero
// bias.
func NewLinear(out, in int) *Linear {
	return &Linear{
		W: mat.NewDense(out, in, utils.RandomArray(out*in, float64(in))),
		B: mat.NewDense(out, 1, nil),
	}
}

// Apply maps X (in x T) to (out x T), broadcasting the bias across columns.
func (l *Linear) Apply(X *mat.Dense) *mat.Dense {
	var y mat.Dense
	y.Mul(l.W, X)
	return utils.AddBias(&y, l.B)
}

// Params exposes the weight and bias for an external optimizer.
func (l *Linear) Params() []*mat.Dense {
	return []*mat.Dense{l.W, l.B}
}
