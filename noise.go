package lkf

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// NoiseModel selects the process noise of a constant velocity (position,
// velocity) model.
type NoiseModel uint8

const (
	// WhiteNoise only perturbs the velocity.
	WhiteNoise NoiseModel = iota + 1
	// ContinuousWhiteNoise is the discretized continuous white noise acceleration model.
	ContinuousWhiteNoise
	// PiecewiseWhiteNoise assumes a constant acceleration over each step.
	PiecewiseWhiteNoise
)

var noiseModelNames = map[NoiseModel]string{
	WhiteNoise:           "simple",
	ContinuousWhiteNoise: "continuous",
	PiecewiseWhiteNoise:  "piecewise",
}

// ParseNoiseModel returns the model of the provided name: simple, continuous or piecewise.
func ParseNoiseModel(name string) (NoiseModel, error) {
	for nm, s := range noiseModelNames {
		if strings.EqualFold(s, name) {
			return nm, nil
		}
	}
	return 0, fmt.Errorf("unknown noise model %q", name)
}

func (nm NoiseModel) String() string {
	if s, ok := noiseModelNames[nm]; ok {
		return s
	}
	return fmt.Sprintf("NoiseModel(%d)", uint8(nm))
}

// ProcessMatrix returns the 2×2 process noise matrix Q for a time step Δt.
func (nm NoiseModel) ProcessMatrix(Δt float64) *mat.SymDense {
	Δt2 := Δt * Δt
	Δt3 := Δt2 * Δt
	switch nm {
	case WhiteNoise:
		return mat.NewSymDense(2, []float64{0, 0, 0, Δt})
	case ContinuousWhiteNoise:
		return mat.NewSymDense(2, []float64{Δt3 / 3, Δt2 / 2, Δt2 / 2, Δt})
	case PiecewiseWhiteNoise:
		return mat.NewSymDense(2, []float64{Δt2 * Δt2 / 4, Δt3 / 2, Δt3 / 2, Δt2})
	}
	panic(fmt.Errorf("unknown noise model %d", nm))
}

// Noise allows to handle the noise of a simulated system.
type Noise interface {
	Process(k int) *mat.VecDense      // Returns the process noise w at step k
	Measurement(k int) *mat.VecDense  // Returns the measurement noise v at step k
	ProcessMatrix() mat.Symmetric     // Returns the process noise matrix Q
	MeasurementMatrix() mat.Symmetric // Returns the measurement noise matrix R
	String() string                   // Stringer interface implementation
}

// Noiseless is noiseless and implements the Noise interface.
type Noiseless struct {
	Q, R mat.Symmetric
}

// NewNoiseless creates new noiseless noise from the provided Q and R.
func NewNoiseless(Q, R mat.Symmetric) *Noiseless {
	if Q == nil || R == nil {
		panic("Q and R must be specified")
	}
	return &Noiseless{Q, R}
}

// Process returns a zero vector of the correct size.
func (n Noiseless) Process(k int) *mat.VecDense {
	return mat.NewVecDense(n.Q.SymmetricDim(), nil)
}

// Measurement returns a zero vector of the correct size.
func (n Noiseless) Measurement(k int) *mat.VecDense {
	return mat.NewVecDense(n.R.SymmetricDim(), nil)
}

// ProcessMatrix implements the Noise interface.
func (n Noiseless) ProcessMatrix() mat.Symmetric {
	return n.Q
}

// MeasurementMatrix implements the Noise interface.
func (n Noiseless) MeasurementMatrix() mat.Symmetric {
	return n.R
}

// String implements the Stringer interface.
func (n Noiseless) String() string {
	return fmt.Sprintf("Noiseless{\nQ=%v\nR=%v}\n", mat.Formatted(n.Q, mat.Prefix("  ")), mat.Formatted(n.R, mat.Prefix("  ")))
}

// AWGN implements the Noise interface and generates an additive white Gaussian noise.
type AWGN struct {
	Q, R        mat.Symmetric
	process     *distmv.Normal // nil when Q is zero
	measurement *distmv.Normal
}

// NewAWGN creates new AWGN noise from the provided Q and R. The draws are
// reproducible for a given seed. Q may be zero, in which case no process noise
// is generated; otherwise both must be positive definite.
func NewAWGN(Q, R mat.Symmetric, seed uint64) (*AWGN, error) {
	src := rand.NewSource(seed)
	n := &AWGN{Q: Q, R: R}
	if !IsNil(Q) {
		process, ok := distmv.NewNormal(make([]float64, Q.SymmetricDim()), Q, src)
		if !ok {
			return nil, errors.New("process noise matrix Q is not positive definite")
		}
		n.process = process
	}
	meas, ok := distmv.NewNormal(make([]float64, R.SymmetricDim()), R, src)
	if !ok {
		return nil, errors.New("measurement noise matrix R is not positive definite")
	}
	n.measurement = meas
	return n, nil
}

// ProcessMatrix implements the Noise interface.
func (n AWGN) ProcessMatrix() mat.Symmetric {
	return n.Q
}

// MeasurementMatrix implements the Noise interface.
func (n AWGN) MeasurementMatrix() mat.Symmetric {
	return n.R
}

// Process implements the Noise interface.
func (n AWGN) Process(k int) *mat.VecDense {
	if n.process == nil {
		return mat.NewVecDense(n.Q.SymmetricDim(), nil)
	}
	r := n.process.Rand(nil)
	return mat.NewVecDense(len(r), r)
}

// Measurement implements the Noise interface.
func (n AWGN) Measurement(k int) *mat.VecDense {
	r := n.measurement.Rand(nil)
	return mat.NewVecDense(len(r), r)
}

// String implements the Stringer interface.
func (n AWGN) String() string {
	return fmt.Sprintf("AWGN{\nQ=%v\nR=%v}\n", mat.Formatted(n.Q, mat.Prefix("  ")), mat.Formatted(n.R, mat.Prefix("  ")))
}
