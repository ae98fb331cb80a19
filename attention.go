package cognition

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/manningwu07/cognition/params"
	"github.com/manningwu07/cognition/utils"
)

// AttentionBlock is multi-head scaled dot-product attention with a learned
// scalar scale on the similarity scores:
//
//	Attention(Q,K,V) = softmax(Q K^T / sqrt(dHead) * scale) V
//
// Inputs are (HiddenDim x T) with one column per sequence position. The
// block holds no per-call state; concurrent Forward calls are safe as long
// as no optimizer is rewriting the parameters at the same time.
type AttentionBlock struct {
	cfg   params.Config
	dHead int

	Wquery  *Linear
	Wkey    *Linear
	Wvalue  *Linear
	Woutput *Linear
	Scale   *mat.Dense // (1 x 1), starts at 1.0

	parallel bool // fan out over heads if true
}

// NewAttentionBlock validates the configuration and allocates parameters.
func NewAttentionBlock(cfg params.Config) (*AttentionBlock, error) {
	if cfg.HiddenDim <= 0 {
		return nil, &ConfigError{Field: "HiddenDim", Reason: fmt.Sprintf("must be positive, got %d", cfg.HiddenDim)}
	}
	if cfg.NumHeads <= 0 {
		return nil, &ConfigError{Field: "NumHeads", Reason: fmt.Sprintf("must be positive, got %d", cfg.NumHeads)}
	}
	if cfg.HiddenDim%cfg.NumHeads != 0 {
		return nil, &ConfigError{
			Field:  "NumHeads",
			Reason: fmt.Sprintf("HiddenDim %d not divisible by NumHeads %d", cfg.HiddenDim, cfg.NumHeads),
		}
	}
	d := cfg.HiddenDim
	return &AttentionBlock{
		cfg:      cfg,
		dHead:    d / cfg.NumHeads,
		Wquery:   NewLinear(d, d),
		Wkey:     NewLinear(d, d),
		Wvalue:   NewLinear(d, d),
		Woutput:  NewLinear(d, d),
		Scale:    mat.NewDense(1, 1, []float64{1.0}),
		parallel: cfg.NumHeads > 1,
	}, nil
}

// Forward runs attention over one example X (HiddenDim x T). mask may be
// nil or a (T x T) 0/1 matrix; query position i may attend to key position j
// only where mask[i,j] != 0. A mask row with no admissible key positions is
// ErrDegenerateMask. Output shape equals input shape.
func (attn *AttentionBlock) Forward(X, mask *mat.Dense) (*mat.Dense, error) {
	d, T := X.Dims()
	if d != attn.cfg.HiddenDim {
		return nil, shapeErrorf("attention forward", fmt.Sprintf("(%d x T) input", attn.cfg.HiddenDim), d, T)
	}
	if err := validMask(mask, T); err != nil {
		return nil, err
	}

	Q := attn.Wquery.Apply(X)
	K := attn.Wkey.Apply(X)
	V := attn.Wvalue.Apply(X)

	rescale := attn.Scale.At(0, 0) / math.Sqrt(float64(attn.dHead))
	headsCat := mat.NewDense(d, T, nil)

	work := func(h int) {
		base := h * attn.dHead
		Qh := Q.Slice(base, base+attn.dHead, 0, T).(*mat.Dense)
		Kh := K.Slice(base, base+attn.dHead, 0, T).(*mat.Dense)
		Vh := V.Slice(base, base+attn.dHead, 0, T).(*mat.Dense)
		// S = (Q^T K) * scale / sqrt(dHead)
		var S mat.Dense
		S.Mul(Qh.T(), Kh)
		S.Scale(rescale, &S)
		// A
		var A *mat.Dense
		if mask == nil {
			A = utils.RowSoftmax(&S)
		} else {
			A = maskedRowSoftmax(&S, mask)
		}
		// O = V * A^T
		var O mat.Dense
		O.Mul(Vh, A.T())
		dst := headsCat.Slice(base, base+attn.dHead, 0, T).(*mat.Dense)
		dst.Copy(&O)
	}
	if attn.parallel && attn.cfg.NumHeads > 1 {
		var wg sync.WaitGroup
		wg.Add(attn.cfg.NumHeads)
		for h := 0; h < attn.cfg.NumHeads; h++ {
			go func(hh int) { defer wg.Done(); work(hh) }(h)
		}
		wg.Wait()
	} else {
		for h := 0; h < attn.cfg.NumHeads; h++ {
			work(h)
		}
	}

	return attn.Woutput.Apply(headsCat), nil
}

// ForwardBatch runs Forward over independent examples, one goroutine per
// example. The mask, if any, is shared by the whole batch. The first error
// encountered aborts the result.
func (attn *AttentionBlock) ForwardBatch(Xs []*mat.Dense, mask *mat.Dense) ([]*mat.Dense, error) {
	outs := make([]*mat.Dense, len(Xs))
	errs := make([]error, len(Xs))
	var wg sync.WaitGroup
	wg.Add(len(Xs))
	for i, X := range Xs {
		go func(i int, X *mat.Dense) {
			defer wg.Done()
			outs[i], errs[i] = attn.Forward(X, mask)
		}(i, X)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return outs, nil
}

// Params exposes every learned array, scale included, for an external
// optimizer.
func (attn *AttentionBlock) Params() []*mat.Dense {
	ps := attn.Wquery.Params()
	ps = append(ps, attn.Wkey.Params()...)
	ps = append(ps, attn.Wvalue.Params()...)
	ps = append(ps, attn.Woutput.Params()...)
	return append(ps, attn.Scale)
}

// validMask checks mask dimensions and rejects fully-masked rows up front,
// so the per-head softmax never has to produce NaN.
func validMask(mask *mat.Dense, T int) error {
	if mask == nil {
		return nil
	}
	mr, mc := mask.Dims()
	if mr != T || mc != T {
		return shapeErrorf("attention mask", fmt.Sprintf("(%d x %d)", T, T), mr, mc)
	}
	for i := 0; i < T; i++ {
		open := false
		for j := 0; j < T; j++ {
			if mask.At(i, j) != 0 {
				open = true
				break
			}
		}
		if !open {
			return fmt.Errorf("%w: query position %d", ErrDegenerateMask, i)
		}
	}
	return nil
}

// maskedRowSoftmax normalizes each row over its unmasked entries only.
// Masked entries get weight 0 and never enter the max subtraction or the
// sum, so no -Inf arithmetic is involved. Every row must have at least one
// unmasked entry (validMask ran first).
func maskedRowSoftmax(m, mask *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		mx := math.Inf(-1)
		for j := 0; j < c; j++ {
			if mask.At(i, j) != 0 && m.At(i, j) > mx {
				mx = m.At(i, j)
			}
		}
		sum := 0.0
		for j := 0; j < c; j++ {
			if mask.At(i, j) == 0 {
				continue
			}
			e := math.Exp(m.At(i, j) - mx)
			out.Set(i, j, e)
			sum += e
		}
		inv := 1.0 / sum
		for j := 0; j < c; j++ {
			if mask.At(i, j) != 0 {
				out.Set(i, j, out.At(i, j)*inv)
			}
		}
	}
	return out
}
