//go:build netlib

package cognition

import (
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/netlib/blas/netlib"
)

// Build with `-tags netlib` to route gonum's matrix products through a
// system BLAS.
func init() {
	blas64.Use(netlib.Implementation{})
}
