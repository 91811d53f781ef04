package lkf

import "testing"

func TestImplementsEst(t *testing.T) {
	implements := func(Estimate) {}
	implements(new(FilterEstimate))
	implements(new(ErrorEstimate))
}

func TestImplementsNoise(t *testing.T) {
	implements := func(Noise) {}
	implements(Noiseless{})
	implements(AWGN{})
}

func TestImplementsExporter(t *testing.T) {
	implements := func(Exporter) {}
	implements(new(CSVExporter))
}

func TestObservation(t *testing.T) {
	obs := NewObservation(1, 2)
	if obs.Z.Len() != 2 || obs.Z.AtVec(1) != 2 || obs.R != nil {
		t.Fatalf("invalid observation %+v", obs)
	}
	R := Identity(2)
	if obs.WithCovariance(R).R != R {
		t.Fatal("WithCovariance did not set R")
	}
}
