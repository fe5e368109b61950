//go:build accelerate

package main

import (
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/netlib/blas/netlib"
)

// Building with `-tags accelerate` routes all gonum matrix products through
// the system BLAS. Worthwhile once hidden sizes get into the hundreds.
func init() {
	blas64.Use(netlib.Implementation{})
}
