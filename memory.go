package cognition

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/manningwu07/cognition/params"
	"github.com/manningwu07/cognition/utils"
)

// MemoryCell is a GRU-style gated blend of new input with a previous memory
// state. The cell holds no memory of its own: the caller threads the state
// between calls.
//
//	update    = sigmoid(Wu*[x; m])
//	reset     = sigmoid(Wr*[x; m])
//	candidate = tanh(Wc*[x; reset*m])
//	m'        = update*m + (1-update)*candidate
//
// update near 1 preserves the old memory; update near 0 replaces it with
// the candidate.
type MemoryCell struct {
	cfg params.Config

	Wupdate    *Linear // (d x 2d)
	Wreset     *Linear // (d x 2d)
	Wcandidate *Linear // (d x 2d)
}

func NewMemoryCell(cfg params.Config) (*MemoryCell, error) {
	if cfg.HiddenDim <= 0 {
		return nil, &ConfigError{Field: "HiddenDim", Reason: fmt.Sprintf("must be positive, got %d", cfg.HiddenDim)}
	}
	d := cfg.HiddenDim
	return &MemoryCell{
		cfg:        cfg,
		Wupdate:    NewLinear(d, 2*d),
		Wreset:     NewLinear(d, 2*d),
		Wcandidate: NewLinear(d, 2*d),
	}, nil
}

// Forward advances the memory by one step. input is (HiddenDim x T); a nil
// prevMemory means all zeros shaped like input. Both returned matrices
// share input's shape; candidate is bounded in (-1, 1).
func (mc *MemoryCell) Forward(input, prevMemory *mat.Dense) (newMemory, candidate *mat.Dense, err error) {
	d, T := input.Dims()
	if d != mc.cfg.HiddenDim {
		return nil, nil, shapeErrorf("memory forward", fmt.Sprintf("(%d x T) input", mc.cfg.HiddenDim), d, T)
	}
	if prevMemory == nil {
		prevMemory = mat.NewDense(d, T, nil)
	} else if mr, mcols := prevMemory.Dims(); mr != d || mcols != T {
		return nil, nil, shapeErrorf("memory forward", fmt.Sprintf("(%d x %d) prev memory", d, T), mr, mcols)
	}

	var cat mat.Dense
	cat.Stack(input, prevMemory) // (2d x T)

	update := utils.ToDense(utils.Apply(utils.SigmoidApply, mc.Wupdate.Apply(&cat)))
	reset := utils.ToDense(utils.Apply(utils.SigmoidApply, mc.Wreset.Apply(&cat)))

	resetMemory := utils.ToDense(utils.Multiply(reset, prevMemory))
	var catReset mat.Dense
	catReset.Stack(input, resetMemory)
	candidate = utils.ToDense(utils.Apply(utils.TanhApply, mc.Wcandidate.Apply(&catReset)))

	// m' = candidate + update*(m - candidate)
	newMemory = utils.ToDense(utils.Add(candidate, utils.Multiply(update, utils.Subtract(prevMemory, candidate))))

	return newMemory, candidate, nil
}

// Params exposes the learned arrays for an external optimizer.
func (mc *MemoryCell) Params() []*mat.Dense {
	ps := append(mc.Wupdate.Params(), mc.Wreset.Params()...)
	return append(ps, mc.Wcandidate.Params()...)
}
