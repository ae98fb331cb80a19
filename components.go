// Package cognition implements three parameterized forward transforms over
// batched matrices: multi-head scaled-similarity attention with a learned
// global scale, a gated integration block, and a GRU-style memory cell.
//
// Every tensor is a gonum (HiddenDim x T) *mat.Dense with one column per
// sequence position; a batch is a []*mat.Dense of independent examples. The
// components are stateless per call and own their parameters; training,
// loss, and persistence live outside this package (see optimizations for
// the parameter-update collaborator).
package cognition

import (
	"gonum.org/v1/gonum/mat"

	"github.com/manningwu07/cognition/params"
)

// Components bundles one instance of each transform. The three blocks share
// no state and are independently usable; callers compose them externally,
// e.g. feeding MemoryCell output into AttentionBlock.
type Components struct {
	Attention   *AttentionBlock
	Integration *IntegrationBlock
	Memory      *MemoryCell
}

// New constructs all three components from one configuration. It is the
// sole composition entry point; params.Default() gives the stock 512/8
// setup.
func New(cfg params.Config) (*Components, error) {
	attn, err := NewAttentionBlock(cfg)
	if err != nil {
		return nil, err
	}
	integ, err := NewIntegrationBlock(cfg)
	if err != nil {
		return nil, err
	}
	mem, err := NewMemoryCell(cfg)
	if err != nil {
		return nil, err
	}
	return &Components{Attention: attn, Integration: integ, Memory: mem}, nil
}

// Params concatenates every learned array across the three components, in a
// stable order, for an external optimizer.
func (c *Components) Params() []*mat.Dense {
	ps := c.Attention.Params()
	ps = append(ps, c.Integration.Params()...)
	return append(ps, c.Memory.Params()...)
}
