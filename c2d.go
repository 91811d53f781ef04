package lkf

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// VanLoan computes the discrete F and Q matrices of the continuous time system
//
//	ẋ = A x + Γ w, E[w w'] = W
//
// sampled every Δt. F and Q are always returned; the error is set when Δt does
// not fulfill the Nyquist criterion for the fastest mode of A.
func VanLoan(A, Γ, W mat.Matrix, Δt float64) (*mat.Dense, *mat.SymDense, error) {
	if err := checkMatDims(A, A, "A", "A", rows2cols); err != nil {
		return nil, nil, err
	}
	rA, _ := A.Dims()
	if err := checkMatDims(Γ, A, "Γ", "A", rows2rows); err != nil {
		return nil, nil, err
	}
	if err := checkMatDims(Γ, W, "Γ", "W", cols2rows); err != nil {
		return nil, nil, err
	}

	var err error
	var λ mat.Eigen
	if ok := λ.Factorize(A, mat.EigenNone); ok {
		var λmax float64
		for _, v := range λ.Values(nil) {
			λmax = math.Max(λmax, cmplx.Abs(v))
		}
		if 2*λmax*Δt >= math.Pi {
			err = fmt.Errorf("lkf: Nyquist sampling criterion not fulfilled with Δt=%f", Δt)
		}
	}

	var ΓW, ΓWΓ mat.Dense
	ΓW.Mul(Γ, W)
	ΓWΓ.Mul(&ΓW, Γ.T())

	// M = Δt * [ -A  ΓWΓ' ]
	//          [  0   A'  ]
	n := rA
	M := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			M.Set(i, j, -A.At(i, j)*Δt)
			M.Set(i, j+n, ΓWΓ.At(i, j)*Δt)
			M.Set(i+n, j+n, A.At(j, i)*Δt)
		}
	}

	var expM mat.Dense
	expM.Exp(M)

	// expM = [ ...  F^-1 Q ]
	//        [  0     F'   ]
	F := mat.NewDense(n, n, nil)
	F1Q := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			F1Q.Set(i, j, expM.At(i, j+n))
			F.Set(i, j, expM.At(j+n, i+n))
		}
	}
	var FQ mat.Dense
	FQ.Mul(F, F1Q)
	Q, serr := AsSymDense(&FQ, 1e-9)
	if serr != nil {
		return nil, nil, fmt.Errorf("lkf: discrete process noise: %w", serr)
	}
	return F, Q, err
}
