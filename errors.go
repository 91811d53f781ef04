package lkf

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDimension is returned when a matrix or vector does not have the size
	// the filter was built for.
	ErrDimension = errors.New("lkf: dimension mismatch")
	// ErrNotPositiveDefinite is returned by Evaluate when the innovation
	// covariance cannot be Cholesky factorized.
	ErrNotPositiveDefinite = errors.New("lkf: innovation covariance is not positive definite")
	// ErrNoInnovation is returned by Update when no valid evaluation exists
	// for the current step.
	ErrNoInnovation = errors.New("lkf: no innovation available (call Evaluate or supply an observation)")
)

// DimensionAgreement defines how two matrices' dimensions should agree.
type DimensionAgreement uint8

const (
	rows2cols DimensionAgreement = iota + 1
	cols2rows
	cols2cols
	rows2rows
	rowsAndcols
)

// checkMatDims checks the matrix dimensions match provided a DimensionAgreement.
// The returned error wraps ErrDimension.
func checkMatDims(m1, m2 mat.Matrix, name1, name2 string, method DimensionAgreement) error {
	r1, c1 := m1.Dims()
	r2, c2 := m2.Dims()
	switch method {
	case rows2cols:
		if r1 != c2 {
			return fmt.Errorf("%w: %s(%dx...) %s(...x%d)", ErrDimension, name1, r1, name2, c2)
		}
	case cols2rows:
		if c1 != r2 {
			return fmt.Errorf("%w: %s(...x%d) %s(%dx...)", ErrDimension, name1, c1, name2, r2)
		}
	case cols2cols:
		if c1 != c2 {
			return fmt.Errorf("%w: %s(...x%d) %s(...x%d)", ErrDimension, name1, c1, name2, c2)
		}
	case rows2rows:
		if r1 != r2 {
			return fmt.Errorf("%w: %s(%dx...) %s(%dx...)", ErrDimension, name1, r1, name2, r2)
		}
	case rowsAndcols:
		if c1 != c2 || r1 != r2 {
			return fmt.Errorf("%w: %s(%dx%d) %s(%dx%d)", ErrDimension, name1, r1, c1, name2, r2, c2)
		}
	}
	return nil
}

// checkShape verifies that m is exactly r×c.
func checkShape(m mat.Matrix, name string, r, c int) error {
	if isNilMatrix(m) {
		return fmt.Errorf("%w: %s is nil", ErrDimension, name)
	}
	if mr, mc := m.Dims(); mr != r || mc != c {
		return fmt.Errorf("%w: %s is %dx%d, expected %dx%d", ErrDimension, name, mr, mc, r, c)
	}
	return nil
}
