package lkf

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Filter is a discrete-time linear Kalman filter. Use New to initialize.
//
// The model matrices, X, P and the tuning scalars may be changed by the caller
// between steps (in place, or by assigning a matrix of the same shape). A step
// is Predict, then Evaluate and Update, or Update with an Observation which
// evaluates it first.
//
// A prediction not yet consumed by Update takes precedence over X and P: a
// second Predict propagates it further, so changes made to X or P in between
// are only seen once Update or Reset has run.
//
// A Filter is not safe for concurrent use.
type Filter struct {
	F *mat.Dense // Evolution matrix (x' = F x), n×n
	H *mat.Dense // Measurement matrix (z = H x), m×n
	Q *mat.Dense // Process noise, n×n
	R *mat.Dense // Default measurement noise, m×m

	X *mat.VecDense // State estimate
	P *mat.Dense    // State covariance

	// FadingMemoryAlphaSq inflates the propagated covariance. 1 means perfect memory.
	FadingMemoryAlphaSq float64
	// SigmaSq scales the process noise added to the predicted covariance.
	SigmaSq float64

	n, m int

	fx *mat.VecDense // F*x
	hx *mat.VecDense // H*x
	pp *mat.Dense    // Predicted covariance

	k *mat.Dense // Kalman gain

	pending bool // prediction not yet consumed by Update
	sValid  bool
	s       *mat.SymDense
	sLow    *mat.TriDense
	sInv    *mat.SymDense
	sDet    float64
	chol    mat.Cholesky
	nis     float64
	logLik  float64

	// Scratch, overwritten on every use.
	y    *mat.VecDense
	hfx  *mat.VecDense
	ky   *mat.VecDense
	kh   *mat.Dense
	khpp *mat.Dense
	fp   *mat.Dense
	fpft *mat.Dense // F*P*F', then σ²*Q
	pht  *mat.Dense
	hpht *mat.Dense
}

// New returns a filter with an n-dimensional state and m-dimensional
// measurements. F and R are identity, every other matrix and vector is zero.
func New(n, m int) (*Filter, error) {
	if n <= 0 || m <= 0 {
		return nil, fmt.Errorf("%w: state and measurement sizes must be positive (n=%d, m=%d)", ErrDimension, n, m)
	}
	kf := &Filter{
		F: mat.NewDense(n, n, nil),
		H: mat.NewDense(m, n, nil),
		Q: mat.NewDense(n, n, nil),
		// R must not be a zero matrix or S is singular.
		R: mat.NewDense(m, m, nil),
		X: mat.NewVecDense(n, nil),
		P: mat.NewDense(n, n, nil),

		n:  n,
		m:  m,
		fx: mat.NewVecDense(n, nil),
		hx: mat.NewVecDense(m, nil),
		pp: mat.NewDense(n, n, nil),
		k:  mat.NewDense(n, m, nil),

		s:    mat.NewSymDense(m, nil),
		sLow: mat.NewTriDense(m, mat.Lower, nil),
		sInv: mat.NewSymDense(m, nil),

		y:    mat.NewVecDense(m, nil),
		hfx:  mat.NewVecDense(m, nil),
		ky:   mat.NewVecDense(n, nil),
		kh:   mat.NewDense(n, n, nil),
		khpp: mat.NewDense(n, n, nil),
		fp:   mat.NewDense(n, n, nil),
		fpft: mat.NewDense(n, n, nil),
		pht:  mat.NewDense(n, m, nil),
		hpht: mat.NewDense(m, m, nil),
	}
	for i := 0; i < n; i++ {
		kf.F.Set(i, i, 1)
	}
	for i := 0; i < m; i++ {
		kf.R.Set(i, i, 1)
	}
	kf.Reset()
	return kf, nil
}

// Reset re-initializes the innovation state and the tuning scalars. X, P and
// the model matrices are left untouched, so estimation is not restarted, but
// the next Predict starts from X and P even if the last one was not followed
// by an Update.
func (kf *Filter) Reset() {
	kf.pending = false
	kf.sValid = false
	kf.sDet = 1
	kf.nis = 0
	kf.logLik = 0
	kf.FadingMemoryAlphaSq = 1
	kf.SigmaSq = 1
}

// Dims returns the state and measurement sizes.
func (kf *Filter) Dims() (n, m int) {
	return kf.n, kf.m
}

// SetNoise copies the process and measurement noise matrices of n into Q and R.
func (kf *Filter) SetNoise(n Noise) error {
	Q, R := n.ProcessMatrix(), n.MeasurementMatrix()
	if err := kf.checkModel(); err != nil {
		return err
	}
	if isNilMatrix(Q) || isNilMatrix(R) {
		return fmt.Errorf("%w: noise matrices must be set", ErrDimension)
	}
	if err := checkMatDims(Q, kf.Q, "Q", "filter Q", rowsAndcols); err != nil {
		return err
	}
	if err := checkMatDims(R, kf.R, "R", "filter R", rowsAndcols); err != nil {
		return err
	}
	kf.Q.Copy(Q)
	kf.R.Copy(R)
	return nil
}

// checkModel verifies the caller-mutable matrices still have the filter's dimensions.
func (kf *Filter) checkModel() error {
	if err := checkShape(kf.F, "F", kf.n, kf.n); err != nil {
		return err
	}
	if err := checkShape(kf.H, "H", kf.m, kf.n); err != nil {
		return err
	}
	if err := checkShape(kf.Q, "Q", kf.n, kf.n); err != nil {
		return err
	}
	if err := checkShape(kf.R, "R", kf.m, kf.m); err != nil {
		return err
	}
	if err := checkShape(kf.X, "x", kf.n, 1); err != nil {
		return err
	}
	return checkShape(kf.P, "P", kf.n, kf.n)
}

// Predict propagates the state and covariance one step and invalidates any
// previous evaluation:
//
//	Fx = F*x
//	Hx = H*x
//	Pp = α²*F*P*F' + σ²*Q
//
// When the previous prediction was not consumed by an Update, it is propagated
// instead of x and P, so repeated calls predict several steps ahead.
func (kf *Filter) Predict() error {
	if err := kf.checkModel(); err != nil {
		return err
	}
	var x mat.Vector = kf.X
	var P mat.Matrix = kf.P
	if kf.pending {
		kf.ky.CopyVec(kf.fx)
		kf.khpp.Copy(kf.pp)
		x, P = kf.ky, kf.khpp
	}
	kf.fx.MulVec(kf.F, x)
	kf.hx.MulVec(kf.H, x)

	kf.fp.Mul(kf.F, P)
	kf.fpft.Mul(kf.fp, kf.F.T())
	kf.pp.Scale(kf.FadingMemoryAlphaSq, kf.fpft)
	kf.fpft.Scale(kf.SigmaSq, kf.Q)
	kf.pp.Add(kf.pp, kf.fpft)

	kf.pending = true
	kf.sValid = false
	return nil
}

// Evaluate computes the innovation of measurement z against the current
// prediction, the innovation covariance S = R + H*Pp*H', its Cholesky factor,
// determinant and inverse. If R is nil, or a nil pointer, the filter's default
// R is used.
// It returns the Gaussian log-likelihood of the innovation.
//
// If S is not positive definite an error wrapping ErrNotPositiveDefinite is
// returned, X and P are unchanged and no evaluation is available to Update.
func (kf *Filter) Evaluate(z mat.Vector, R mat.Matrix) (float64, error) {
	if isNilMatrix(R) {
		R = kf.R
	}
	if z == nil || z.Len() != kf.m {
		return 0, fmt.Errorf("%w: measurement must have %d rows", ErrDimension, kf.m)
	}
	if err := checkShape(R, "R", kf.m, kf.m); err != nil {
		return 0, err
	}
	if err := checkShape(kf.H, "H", kf.m, kf.n); err != nil {
		return 0, err
	}

	// PHt is always recomputed from the current Pp.
	kf.pht.Mul(kf.pp, kf.H.T())
	kf.hpht.Mul(kf.H, kf.pht)
	for i := 0; i < kf.m; i++ {
		for j := i; j < kf.m; j++ {
			v := 0.5 * (R.At(i, j) + R.At(j, i) + kf.hpht.At(i, j) + kf.hpht.At(j, i))
			kf.s.SetSym(i, j, v)
		}
	}

	kf.hfx.MulVec(kf.H, kf.fx)
	kf.y.SubVec(z, kf.hfx)

	kf.sValid = false
	if ok := kf.chol.Factorize(kf.s); !ok {
		return 0, fmt.Errorf("%w: S=%v", ErrNotPositiveDefinite, mat.Formatted(kf.s, mat.Squeeze()))
	}
	kf.chol.LTo(kf.sLow)

	det, logDet := 1.0, 0.0
	for i := 0; i < kf.m; i++ {
		d := kf.sLow.At(i, i)
		det *= d
		logDet += math.Log(d)
	}
	kf.sDet = det * det

	if err := kf.chol.InverseTo(kf.sInv); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrNotPositiveDefinite, err)
	}

	kf.nis = mat.Inner(kf.y, kf.sInv, kf.y)
	kf.logLik = -0.5 * (kf.nis + 2*logDet + float64(kf.m)*math.Log(2*math.Pi))
	kf.sValid = true
	return kf.logLik, nil
}

// Update corrects the prediction with the innovation:
//
//	K = Pp*H'*S^-1
//	x = Fx + K*y
//	P = Pp - K*H*Pp
//
// If obs is not nil it is evaluated first. If obs is nil, the last evaluation
// since Predict is reused; ErrNoInnovation is returned when there is none.
// On error, X and P are unchanged.
func (kf *Filter) Update(obs *Observation) error {
	if obs != nil {
		if _, err := kf.Evaluate(obs.Z, obs.R); err != nil {
			return err
		}
	}
	if !kf.sValid {
		return ErrNoInnovation
	}
	if err := checkShape(kf.X, "x", kf.n, 1); err != nil {
		return err
	}
	if err := checkShape(kf.P, "P", kf.n, kf.n); err != nil {
		return err
	}

	kf.k.Mul(kf.pht, kf.sInv)

	kf.ky.MulVec(kf.k, kf.y)
	kf.X.AddVec(kf.fx, kf.ky)

	kf.kh.Mul(kf.k, kf.H)
	kf.khpp.Mul(kf.kh, kf.pp)
	kf.P.Sub(kf.pp, kf.khpp)
	kf.pending = false
	return nil
}

// PredictedState returns F*x as computed by the last Predict.
func (kf *Filter) PredictedState() mat.Vector {
	return kf.fx
}

// PredictedCovariance returns Pp as computed by the last Predict.
func (kf *Filter) PredictedCovariance() mat.Matrix {
	return kf.pp
}

// MeasurementPrediction returns H*x as computed by the last Predict.
func (kf *Filter) MeasurementPrediction() mat.Vector {
	return kf.hx
}

// Innovation returns the measurement residual of the last evaluation.
func (kf *Filter) Innovation() mat.Vector {
	return kf.y
}

// InnovationCovariance returns S of the last evaluation.
func (kf *Filter) InnovationCovariance() mat.Symmetric {
	return kf.s
}

// InnovationCholesky returns the lower Cholesky factor of S.
func (kf *Filter) InnovationCholesky() mat.Triangular {
	return kf.sLow
}

// InnovationInverse returns S^-1.
func (kf *Filter) InnovationInverse() mat.Symmetric {
	return kf.sInv
}

// InnovationDet returns det(S), or 1 if nothing was evaluated yet.
func (kf *Filter) InnovationDet() float64 {
	return kf.sDet
}

// Gain returns the Kalman gain of the last Update.
func (kf *Filter) Gain() mat.Matrix {
	return kf.k
}

// Evaluated returns whether the innovation quantities match the current prediction.
func (kf *Filter) Evaluated() bool {
	return kf.sValid
}

// LogLikelihood returns the log-likelihood computed by the last Evaluate.
func (kf *Filter) LogLikelihood() float64 {
	return kf.logLik
}

// NIS returns the normalized innovation squared y'*S^-1*y of the last Evaluate.
func (kf *Filter) NIS() float64 {
	return kf.nis
}

func (kf *Filter) String() string {
	return fmt.Sprintf("F=%v\nH=%v\nQ=%v\nR=%v\nα²=%g σ²=%g", mat.Formatted(kf.F, mat.Prefix("  ")), mat.Formatted(kf.H, mat.Prefix("  ")), mat.Formatted(kf.Q, mat.Prefix("  ")), mat.Formatted(kf.R, mat.Prefix("  ")), kf.FadingMemoryAlphaSq, kf.SigmaSq)
}
