package cognition

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/manningwu07/cognition/params"
	"github.com/manningwu07/cognition/utils"
)

// IntegrationBlock blends an input state with a bounded non-linear
// projection of itself under a learned gate:
//
//	phi        = tanh(Wp*s + bp)         in (-1, 1)
//	gate       = sigmoid(Wg*s + bg)      in (0, 1)
//	integrated = gate*phi + (1-gate)*s
//
// integrated is a per-element convex combination of phi and the raw state.
type IntegrationBlock struct {
	cfg params.Config

	Wphi  *Linear
	Wgate *Linear
}

// IntegrationResult carries the blended state together with the
// intermediate projection and gate, all shaped like the input.
type IntegrationResult struct {
	Integrated *mat.Dense
	Phi        *mat.Dense
	Gate       *mat.Dense
}

func NewIntegrationBlock(cfg params.Config) (*IntegrationBlock, error) {
	if cfg.HiddenDim <= 0 {
		return nil, &ConfigError{Field: "HiddenDim", Reason: fmt.Sprintf("must be positive, got %d", cfg.HiddenDim)}
	}
	d := cfg.HiddenDim
	return &IntegrationBlock{
		cfg:   cfg,
		Wphi:  NewLinear(d, d),
		Wgate: NewLinear(d, d),
	}, nil
}

// Forward integrates states (HiddenDim x T).
func (ib *IntegrationBlock) Forward(states *mat.Dense) (IntegrationResult, error) {
	d, T := states.Dims()
	if d != ib.cfg.HiddenDim {
		return IntegrationResult{}, shapeErrorf("integration forward", fmt.Sprintf("(%d x T) states", ib.cfg.HiddenDim), d, T)
	}

	phi := utils.ToDense(utils.Apply(utils.TanhApply, ib.Wphi.Apply(states)))
	gate := utils.ToDense(utils.Apply(utils.SigmoidApply, ib.Wgate.Apply(states)))

	// integrated = states + gate*(phi - states)
	integrated := utils.ToDense(utils.Add(states, utils.Multiply(gate, utils.Subtract(phi, states))))

	return IntegrationResult{Integrated: integrated, Phi: phi, Gate: gate}, nil
}

// Params exposes the learned arrays for an external optimizer.
func (ib *IntegrationBlock) Params() []*mat.Dense {
	return append(ib.Wphi.Params(), ib.Wgate.Params()...)
}
