package lkf

import "gonum.org/v1/gonum/mat"

// Estimate is returned by Filter.Estimate and by the ground truth helpers.
// It allows exporters and consistency tests to work on a frozen copy of the
// filter state.
type Estimate interface {
	IsWithinNσ(N float64) bool     // IsWithinNσ returns whether the estimation is within the N*σ bounds.
	State() *mat.VecDense          // Returns \hat{x}_{k}^{+}
	Measurement() *mat.VecDense    // Returns H*\hat{x}_{k-1}^{+}
	Innovation() *mat.VecDense     // Returns z_{k} - H*\hat{x}_{k}^{-}
	Covariance() mat.Symmetric     // Return P_{k}^{+}
	PredCovariance() mat.Symmetric // Return P_{k}^{-}
	String() string                // Must implement the stringer interface.
}

// Observation is a measurement handed to Filter.Update. A nil *Observation
// means no measurement arrived for this step.
type Observation struct {
	Z mat.Vector
	R mat.Matrix // nil selects the filter's default R
}

// NewObservation returns an observation of the provided values which uses the
// filter's default measurement noise.
func NewObservation(z ...float64) *Observation {
	return &Observation{Z: mat.NewVecDense(len(z), z)}
}

// WithCovariance sets the measurement covariance to use for this observation only.
func (o *Observation) WithCovariance(R mat.Matrix) *Observation {
	o.R = R
	return o
}
