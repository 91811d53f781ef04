package lkf

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestVanLoan(t *testing.T) {
	A := mat.NewDense(2, 2, []float64{0, 1, 0, 0})
	Γ := mat.NewDense(2, 1, []float64{0, 1})
	W := mat.NewDense(1, 1, []float64{1})
	F, Q, err := VanLoan(A, Γ, W, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	Fexp := mat.NewDense(2, 2, []float64{1, 0.1, 0, 1})
	Qexp := mat.NewSymDense(2, []float64{0.0003, 0.005, 0.005, 0.1})

	if !mat.EqualApprox(F, Fexp, 1e-3) {
		t.Fatalf("F incorrectly computed\n%v", mat.Formatted(F))
	}

	if !mat.EqualApprox(Q, Qexp, 1e-3) {
		t.Fatalf("Q incorrectly computed\n%v", mat.Formatted(Q))
	}

	// The double integrator has the closed form of the continuous white noise model.
	if !mat.EqualApprox(Q, ContinuousWhiteNoise.ProcessMatrix(0.1), 1e-10) {
		t.Fatalf("Q differs from the continuous white noise model\n%v", mat.Formatted(Q))
	}
}

func TestVanLoanNyquist(t *testing.T) {
	// Harmonic oscillator at 10 rad/s.
	A := mat.NewDense(2, 2, []float64{0, 1, -100, 0})
	Γ := mat.NewDense(2, 1, []float64{0, 1})
	W := mat.NewDense(1, 1, []float64{1})
	F, Q, err := VanLoan(A, Γ, W, 1)
	if err == nil {
		t.Fatal("Nyquist criterion not checked")
	}
	if F == nil || Q == nil {
		t.Fatal("F and Q must be returned with the Nyquist error")
	}
	if _, _, err := VanLoan(A, Γ, W, 0.01); err != nil {
		t.Fatalf("fast enough sampling returned %s", err)
	}
}

func TestVanLoanDimensions(t *testing.T) {
	W := mat.NewDense(1, 1, []float64{1})
	if _, _, err := VanLoan(mat.NewDense(2, 3, nil), mat.NewDense(2, 1, nil), W, 0.1); err == nil {
		t.Fatal("non square A accepted")
	}
	if _, _, err := VanLoan(mat.NewDense(2, 2, nil), mat.NewDense(3, 1, nil), W, 0.1); err == nil {
		t.Fatal("Γ of the wrong size accepted")
	}
}
