package lkf

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestCheckDims(t *testing.T) {
	i22 := Identity(2)
	i33 := Identity(3)
	methods := []DimensionAgreement{rows2cols, cols2rows, cols2cols, rows2rows, rowsAndcols}
	for _, meth := range methods {
		if err := checkMatDims(i22, i22, "i22", "i22", meth); err != nil {
			t.Fatalf("method %+v fails: %s", meth, err)
		}
		err := checkMatDims(i22, i33, "i22", "i33", meth)
		if err == nil {
			t.Fatalf("method %+v does not error when using i22 and i33 ", meth)
		}
		if !errors.Is(err, ErrDimension) {
			t.Fatalf("method %+v returned %v which does not wrap ErrDimension", meth, err)
		}
	}
}

func TestCheckShape(t *testing.T) {
	if err := checkShape(mat.NewDense(2, 3, nil), "H", 2, 3); err != nil {
		t.Fatal(err)
	}
	if err := checkShape(mat.NewVecDense(3, nil), "x", 3, 1); err != nil {
		t.Fatal(err)
	}
	if err := checkShape(mat.NewDense(3, 2, nil), "H", 2, 3); !errors.Is(err, ErrDimension) {
		t.Fatalf("transposed shape returned %v", err)
	}
	if err := checkShape(nil, "R", 1, 1); !errors.Is(err, ErrDimension) {
		t.Fatalf("nil matrix returned %v", err)
	}
}
