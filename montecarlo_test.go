package lkf

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// constantVelocitySetup returns consistent filters: the truth is simulated
// with the exact noise the filter is tuned for, and its initial state is
// drawn from the filter's initial covariance.
func constantVelocitySetup(t *testing.T) MonteCarloSetup {
	const Δt = 0.1
	A := mat.NewDense(2, 2, []float64{0, 1, 0, 0})
	Γ := mat.NewDense(2, 1, []float64{0, 1})
	F, Q, err := VanLoan(A, Γ, mat.NewDense(1, 1, []float64{1}), Δt)
	require.NoError(t, err)
	H := mat.NewDense(1, 2, []float64{1, 0})
	R := mat.NewSymDense(1, []float64{0.01})
	P0 := mat.NewSymDense(2, []float64{1, 0, 0, 1})

	return func(run int) (*Filter, *GroundTruth, error) {
		noise, err := NewAWGN(Q, R, uint64(run+1))
		if err != nil {
			return nil, nil, err
		}
		init, ok := distmv.NewNormal([]float64{0, 0}, P0, rand.NewSource(uint64(10000+run)))
		if !ok {
			return nil, nil, errors.New("P0 is not positive definite")
		}
		truth, err := Simulate(F, H, mat.NewVecDense(2, init.Rand(nil)), noise, 50)
		if err != nil {
			return nil, nil, err
		}
		kf, err := New(2, 1)
		if err != nil {
			return nil, nil, err
		}
		kf.F.Copy(F)
		kf.H.Copy(H)
		if err := kf.SetNoise(noise); err != nil {
			return nil, nil, err
		}
		kf.P.Copy(P0)
		return kf, truth, nil
	}
}

func TestMCRuns(t *testing.T) {
	steps := 10
	runs, err := NewMonteCarloRuns(5, steps, constantVelocitySetup(t))
	require.NoError(t, err)
	require.Len(t, runs.Runs, 5, "requesting 5 runs did not generate five")
	for r, run := range runs.Runs {
		assert.Len(t, run.Estimates, steps, "sample #%d", r)
		assert.Len(t, run.NEES, steps, "sample #%d", r)
		assert.Len(t, run.NIS, steps, "sample #%d", r)
	}
	files := runs.AsCSV([]string{"x", "v"})
	require.Len(t, files, 2, "one file per state component")
	lines := strings.Split(files[0], "\n")
	require.Len(t, lines, steps+1)
	assert.Equal(t, "x-0,x-1,x-2,x-3,x-4,x-mean,x-stddev", lines[0])

	assert.Len(t, runs.Mean(0), 2)
	assert.Len(t, runs.StdDev(0), 2)

	_, err = NewMonteCarloRuns(0, steps, constantVelocitySetup(t))
	assert.Error(t, err)
	_, err = NewMonteCarloRuns(1, 51, constantVelocitySetup(t))
	assert.Error(t, err, "truth shorter than the requested steps")
	failing := func(int) (*Filter, *GroundTruth, error) { return nil, nil, errors.New("no setup") }
	_, err = NewMonteCarloRuns(1, 1, failing)
	assert.Error(t, err)
}

func TestMCConsistency(t *testing.T) {
	const samples, steps = 200, 50
	runs, err := NewMonteCarloRuns(samples, steps, constantVelocitySetup(t))
	require.NoError(t, err)

	neesLo, neesHi, err := ChiSquareBounds(2, samples, 0.01)
	require.NoError(t, err)
	nisLo, nisHi, err := ChiSquareBounds(1, samples, 0.01)
	require.NoError(t, err)

	var neesSum, nisSum float64
	var neesIn, nisIn int
	meanNEES, meanNIS := runs.MeanNEES(), runs.MeanNIS()
	for k := 0; k < steps; k++ {
		neesSum += meanNEES[k]
		nisSum += meanNIS[k]
		if meanNEES[k] >= neesLo && meanNEES[k] <= neesHi {
			neesIn++
		}
		if meanNIS[k] >= nisLo && meanNIS[k] <= nisHi {
			nisIn++
		}
	}
	assert.InDelta(t, 2, neesSum/steps, 0.5, "average NEES of a consistent filter")
	assert.InDelta(t, 1, nisSum/steps, 0.3, "average NIS of a consistent filter")
	assert.GreaterOrEqual(t, neesIn, 45)
	assert.GreaterOrEqual(t, nisIn, 45)
}
