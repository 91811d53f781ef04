package lkf

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// GroundTruth stores the true states and the measurements of a system.
// Measurement k is taken of state k.
type GroundTruth struct {
	states       []*mat.VecDense
	measurements []*mat.VecDense
}

// NewGroundTruth initializes a new ground truth from known states and measurements.
func NewGroundTruth(states, measurements []*mat.VecDense) *GroundTruth {
	if len(states) != len(measurements) {
		panic(fmt.Errorf("%d states but %d measurements", len(states), len(measurements)))
	}
	return &GroundTruth{states, measurements}
}

// Simulate propagates x0 with F for the provided number of steps, adding the
// process noise, and measures each new state through H with the measurement
// noise. The first returned state is F*x0 + w_0.
func Simulate(F, H mat.Matrix, x0 mat.Vector, noise Noise, steps int) (*GroundTruth, error) {
	if err := checkMatDims(F, F, "F", "F", rows2cols); err != nil {
		return nil, err
	}
	if err := checkMatDims(H, F, "H", "F", cols2cols); err != nil {
		return nil, err
	}
	if err := checkMatDims(F, x0, "F", "x0", cols2rows); err != nil {
		return nil, err
	}
	rH, _ := H.Dims()
	t := &GroundTruth{make([]*mat.VecDense, steps), make([]*mat.VecDense, steps)}
	x := mat.VecDenseCopyOf(x0)
	for k := 0; k < steps; k++ {
		next := mat.NewVecDense(x.Len(), nil)
		next.MulVec(F, x)
		next.AddVec(next, noise.Process(k))
		z := mat.NewVecDense(rH, nil)
		z.MulVec(H, next)
		z.AddVec(z, noise.Measurement(k))
		t.states[k], t.measurements[k] = next, z
		x = next
	}
	return t, nil
}

// Len returns the number of steps.
func (t *GroundTruth) Len() int {
	return len(t.states)
}

// State returns the true state at step k.
func (t *GroundTruth) State(k int) *mat.VecDense {
	return t.states[k]
}

// Measurement returns the measurement taken at step k.
func (t *GroundTruth) Measurement(k int) *mat.VecDense {
	return t.measurements[k]
}

// Observation returns the measurement at step k ready to be fed to Filter.Update.
func (t *GroundTruth) Observation(k int) *Observation {
	return &Observation{Z: t.measurements[k]}
}

// Error returns an ErrorEstimate after comparing the provided estimate with the ground truth at step k.
func (t *GroundTruth) Error(k int, est Estimate) *ErrorEstimate {
	trueState, trueMeas := t.states[k], t.measurements[k]
	if est.State().Len() != trueState.Len() {
		panic(fmt.Errorf("ground truth state size different from estimated state size (k=%d)", k))
	}
	if est.Measurement().Len() != trueMeas.Len() {
		panic(fmt.Errorf("ground truth measurement size different from estimated measurement size (k=%d)", k))
	}
	n, m := trueState.Len(), trueMeas.Len()
	e := FilterEstimate{
		state:      mat.NewVecDense(n, nil),
		predState:  mat.NewVecDense(n, nil),
		meas:       mat.NewVecDense(m, nil),
		innovation: mat.NewVecDense(m, nil),
		covar:      mat.NewSymDense(n, nil),
		predCovar:  mat.NewSymDense(n, nil),
		gain:       mat.NewDense(n, m, nil),
	}
	e.state.SubVec(est.State(), trueState)
	e.meas.SubVec(est.Measurement(), trueMeas)
	if inn := est.Innovation(); inn != nil && inn.Len() == m {
		e.innovation.CopyVec(inn)
	}
	if P := est.Covariance(); !isNilMatrix(P) {
		e.covar.CopySym(P)
	}
	if Pp := est.PredCovariance(); !isNilMatrix(Pp) {
		e.predCovar.CopySym(Pp)
	}
	if pe, ok := est.(predictedEstimate); ok {
		if fx := pe.PredState(); fx != nil && fx.Len() == n {
			e.predState.SubVec(fx, trueState)
		}
		if K := pe.Gain(); !isNilMatrix(K) {
			e.gain.Copy(K)
		}
		e.logLik = pe.LogLikelihood()
	}
	return &ErrorEstimate{e}
}

// predictedEstimate is implemented by estimates which also carry the
// prediction and the gain of their step.
type predictedEstimate interface {
	PredState() *mat.VecDense
	Gain() mat.Matrix
	LogLikelihood() float64
}

// NEES returns the normalized estimation error squared e'*P^-1*e of the
// estimate at step k, where e is the estimation error.
func (t *GroundTruth) NEES(k int, est Estimate) (float64, error) {
	var e mat.VecDense
	e.SubVec(t.states[k], est.State())
	var chol mat.Cholesky
	if ok := chol.Factorize(est.Covariance()); !ok {
		return 0, fmt.Errorf("%w: covariance at k=%d", ErrNotPositiveDefinite, k)
	}
	var Pe mat.VecDense
	if err := chol.SolveVecTo(&Pe, &e); err != nil {
		return 0, err
	}
	return mat.Dot(&e, &Pe), nil
}

// ErrorEstimate implements the Estimate interface and is used to show the error of an estimate.
type ErrorEstimate struct {
	FilterEstimate // The error is held in the state and measurement.
}
