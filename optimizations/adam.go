package optimizations

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/manningwu07/cognition/params"
)

// Adam holds first/second moment state for a fixed parameter list and
// applies in-place AdamW updates. It is the external-optimizer collaborator
// for the cognition components: build it from Components.Params() and feed
// Step gradients shaped like the parameters. Loss and backprop stay with
// the caller.
type Adam struct {
	cfg  params.Config
	t    int
	m, v []*mat.Dense
}

func NewAdam(cfg params.Config, ps []*mat.Dense) *Adam {
	m := make([]*mat.Dense, len(ps))
	v := make([]*mat.Dense, len(ps))
	for i, p := range ps {
		r, c := p.Dims()
		m[i] = mat.NewDense(r, c, nil)
		v[i] = mat.NewDense(r, c, nil)
	}
	return &Adam{cfg: cfg, m: m, v: v}
}

// Step applies one bias-corrected update to every parameter. ps must be the
// list the optimizer was built from; grads[i] must share ps[i]'s shape.
// Weight decay only touches matrices; (r x 1) parameters (biases, the
// attention scale) are exempt, AdamW-style.
func (a *Adam) Step(lr float64, ps, grads []*mat.Dense) error {
	if len(ps) != len(a.m) {
		return fmt.Errorf("optimizations: got %d params, state built for %d", len(ps), len(a.m))
	}
	if len(grads) != len(ps) {
		return fmt.Errorf("optimizations: got %d grads for %d params", len(grads), len(ps))
	}
	a.t++
	for i, p := range ps {
		wd := a.cfg.WeightDecay
		if _, c := p.Dims(); c == 1 {
			wd = 0.0
		}
		AdamUpdateInPlace(p, grads[i], a.m[i], a.v[i], a.t,
			lr, a.cfg.AdamBeta1, a.cfg.AdamBeta2, a.cfg.AdamEps, wd)
	}
	return nil
}

// p -= lr * (mhat/(sqrt(vhat)+eps) + wd * p) with bias correction (AdamW).
func AdamUpdateInPlace(
	p, g, m, v *mat.Dense,
	t int,
	lr, beta1, beta2, eps, weightDecay float64,
) {
	pr, pc := p.Dims()
	if gr, gc := g.Dims(); gr != pr || gc != pc {
		panic("AdamUpdateInPlace: grad shape mismatch")
	}
	if mr, mc := m.Dims(); mr != pr || mc != pc {
		panic("AdamUpdateInPlace: m shape mismatch")
	}
	if vr, vc := v.Dims(); vr != pr || vc != pc {
		panic("AdamUpdateInPlace: v shape mismatch")
	}
	b1t := math.Pow(beta1, float64(t))
	b2t := math.Pow(beta2, float64(t))
	c1 := 1.0 / (1.0 - b1t)
	c2 := 1.0 / (1.0 - b2t)
	for i := 0; i < pr; i++ {
		for j := 0; j < pc; j++ {
			gij := g.At(i, j)
			mij := beta1*m.At(i, j) + (1.0-beta1)*gij
			vij := beta2*v.At(i, j) + (1.0-beta2)*gij*gij
			mhat := mij * c1
			vhat := vij * c2
			update := mhat/(math.Sqrt(vhat)+eps) + weightDecay*p.At(i, j)
			m.Set(i, j, mij)
			v.Set(i, j, vij)
			p.Set(i, j, p.At(i, j)-lr*update)
		}
	}
}
