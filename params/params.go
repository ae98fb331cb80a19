package params

// Config is the shared, immutable configuration for the cognition
// components. Construct once, pass by value; the components never mutate it.
type Config struct {
	HiddenDim int // model width, trailing feature dimension of every tensor
	NumHeads  int // attention heads; HiddenDim must divide evenly

	// DropoutRate is carried for external training-time regularization.
	// The forward math in this library never reads it.
	DropoutRate float64

	// Adam hyperparameters consumed by the optimizations package.
	AdamBeta1   float64 // default 0.9
	AdamBeta2   float64 // default 0.999
	AdamEps     float64 // default 1e-8
	WeightDecay float64 // AdamW-style, 0 disables
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		HiddenDim:   512,
		NumHeads:    8,
		DropoutRate: 0.1,

		AdamBeta1:   0.9,
		AdamBeta2:   0.999,
		AdamEps:     1e-8,
		WeightDecay: 0.0,
	}
}
