package lkf

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// FilterEstimate is a frozen copy of a Filter after a step.
// It implements the Estimate interface.
type FilterEstimate struct {
	state, predState, meas, innovation *mat.VecDense
	covar, predCovar                   *mat.SymDense
	gain                               *mat.Dense
	logLik                             float64
}

// Estimate returns a copy of the current estimate. The covariances are
// symmetrized on copy.
func (kf *Filter) Estimate() *FilterEstimate {
	est := &FilterEstimate{
		state:      mat.VecDenseCopyOf(kf.X),
		predState:  mat.VecDenseCopyOf(kf.fx),
		meas:       mat.VecDenseCopyOf(kf.hx),
		innovation: mat.VecDenseCopyOf(kf.y),
		covar:      mat.NewSymDense(kf.n, nil),
		predCovar:  mat.NewSymDense(kf.n, nil),
		gain:       mat.DenseCopyOf(kf.k),
		logLik:     kf.logLik,
	}
	symmetrize(est.covar, kf.P)
	symmetrize(est.predCovar, kf.pp)
	return est
}

// IsWithinNσ returns whether every state component is within N standard
// deviations of zero. This is meaningful for error estimates.
func (e *FilterEstimate) IsWithinNσ(N float64) bool {
	for i := 0; i < e.state.Len(); i++ {
		nσ := N * e.StdDev(i)
		if e.state.AtVec(i) > nσ || e.state.AtVec(i) < -nσ {
			return false
		}
	}
	return true
}

// StdDev returns the standard deviation of the i-th state component.
func (e *FilterEstimate) StdDev(i int) float64 {
	return math.Sqrt(e.covar.At(i, i))
}

// State implements the Estimate interface.
func (e *FilterEstimate) State() *mat.VecDense {
	return e.state
}

// PredState returns F*x of the step.
func (e *FilterEstimate) PredState() *mat.VecDense {
	return e.predState
}

// Measurement implements the Estimate interface.
func (e *FilterEstimate) Measurement() *mat.VecDense {
	return e.meas
}

// Innovation implements the Estimate interface.
func (e *FilterEstimate) Innovation() *mat.VecDense {
	return e.innovation
}

// Covariance implements the Estimate interface.
func (e *FilterEstimate) Covariance() mat.Symmetric {
	return e.covar
}

// PredCovariance implements the Estimate interface.
func (e *FilterEstimate) PredCovariance() mat.Symmetric {
	return e.predCovar
}

// Gain returns the Kalman gain of the step.
func (e *FilterEstimate) Gain() mat.Matrix {
	return e.gain
}

// LogLikelihood returns the innovation log-likelihood of the step.
func (e *FilterEstimate) LogLikelihood() float64 {
	return e.logLik
}

func (e *FilterEstimate) String() string {
	state := mat.Formatted(e.State(), mat.Prefix("  "))
	meas := mat.Formatted(e.Measurement(), mat.Prefix("  "))
	covar := mat.Formatted(e.Covariance(), mat.Prefix("  "))
	gain := mat.Formatted(e.Gain(), mat.Prefix("  "))
	innov := mat.Formatted(e.Innovation(), mat.Prefix("  "))
	predp := mat.Formatted(e.PredCovariance(), mat.Prefix("  "))
	return fmt.Sprintf("{\ns=%v\ny=%v\nP=%v\nK=%v\nP-=%v\ni=%v\nll=%g\n}", state, meas, covar, gain, predp, innov, e.logLik)
}
