package lkf

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquareGate returns the gate threshold for a normalized innovation squared
// with dof degrees of freedom, such that a consistent innovation falls within
// it with probability p.
func ChiSquareGate(dof int, p float64) float64 {
	return distuv.ChiSquared{K: float64(dof)}.Quantile(p)
}

// WithinGate returns whether the last evaluated innovation falls inside the
// chi-square gate of probability p. It is false when nothing is evaluated.
func (kf *Filter) WithinGate(p float64) bool {
	if !kf.sValid {
		return false
	}
	return kf.nis <= ChiSquareGate(kf.m, p)
}

// ChiSquareBounds returns the two-sided acceptance interval of a NEES or NIS
// averaged over runs Monte Carlo samples of dof degrees of freedom, at
// significance level α.
func ChiSquareBounds(dof, runs int, α float64) (lower, upper float64, err error) {
	if dof <= 0 || runs <= 0 {
		return 0, 0, fmt.Errorf("degrees of freedom and runs must be positive (dof=%d, runs=%d)", dof, runs)
	}
	if α <= 0 || α >= 1 {
		return 0, 0, fmt.Errorf("significance level must be in (0, 1), got %f", α)
	}
	χ2 := distuv.ChiSquared{K: float64(dof * runs)}
	N := float64(runs)
	return χ2.Quantile(α/2) / N, χ2.Quantile(1-α/2) / N, nil
}
