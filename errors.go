package cognition

import (
	"errors"
	"fmt"
)

// ErrDegenerateMask reports an attention query position whose mask row
// disables every key position. Softmax over empty support has no defined
// result, so the call fails instead of propagating NaN.
var ErrDegenerateMask = errors.New("cognition: attention row fully masked")

// ConfigError reports an invalid component configuration, detected at
// construction time before any forward call.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("cognition: config %s: %s", e.Field, e.Reason)
}

// ShapeError reports a forward call whose tensor dimensions violate the
// component's contract.
type ShapeError struct {
	Op   string
	Want string
	Got  string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("cognition: %s: want %s, got %s", e.Op, e.Want, e.Got)
}

func shapeErrorf(op, want string, r, c int) *ShapeError {
	return &ShapeError{Op: op, Want: want, Got: fmt.Sprintf("(%d x %d)", r, c)}
}
