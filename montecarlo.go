package lkf

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// MonteCarloSetup returns the filter to run and the truth it tracks for the
// provided run number. Each run must get its own filter.
type MonteCarloSetup func(run int) (*Filter, *GroundTruth, error)

// MonteCarloRuns stores MC runs.
type MonteCarloRuns struct {
	runs, steps int
	Runs        []MonteCarloRun
}

// MonteCarloRun stores the results of an MC run.
type MonteCarloRun struct {
	Estimates []Estimate
	NEES      []float64
	NIS       []float64
}

// NewMonteCarloRuns runs samples filters for the provided number of steps.
// Every step is a Predict followed by an Update with the truth's measurement.
func NewMonteCarloRuns(samples, steps int, setup MonteCarloSetup) (MonteCarloRuns, error) {
	if samples < 1 || steps < 1 {
		return MonteCarloRuns{}, errors.New("must request at least one sample and one step")
	}
	runs := make([]MonteCarloRun, samples)
	for sample := 0; sample < samples; sample++ {
		kf, truth, err := setup(sample)
		if err != nil {
			return MonteCarloRuns{}, fmt.Errorf("run #%d setup: %w", sample, err)
		}
		if truth.Len() < steps {
			return MonteCarloRuns{}, fmt.Errorf("run #%d: truth has %d steps, need %d", sample, truth.Len(), steps)
		}
		run := MonteCarloRun{make([]Estimate, steps), make([]float64, steps), make([]float64, steps)}
		for k := 0; k < steps; k++ {
			if err := kf.Predict(); err != nil {
				return MonteCarloRuns{}, fmt.Errorf("run #%d k=%d: %w", sample, k, err)
			}
			if err := kf.Update(truth.Observation(k)); err != nil {
				return MonteCarloRuns{}, fmt.Errorf("run #%d k=%d: %w", sample, k, err)
			}
			est := kf.Estimate()
			nees, err := truth.NEES(k, est)
			if err != nil {
				return MonteCarloRuns{}, fmt.Errorf("run #%d: %w", sample, err)
			}
			run.Estimates[k] = est
			run.NEES[k] = nees
			run.NIS[k] = kf.NIS()
		}
		runs[sample] = run
	}
	return MonteCarloRuns{samples, steps, runs}, nil
}

// component gathers the i-th state component of every run at the provided step.
func (mc MonteCarloRuns) component(step, i int) []float64 {
	vals := make([]float64, len(mc.Runs))
	for r, run := range mc.Runs {
		vals[r] = run.Estimates[step].State().AtVec(i)
	}
	return vals
}

// Mean returns the mean of all the samples for the given time step.
func (mc MonteCarloRuns) Mean(step int) []float64 {
	rows := mc.Runs[0].Estimates[0].State().Len()
	means := make([]float64, rows)
	for i := 0; i < rows; i++ {
		means[i] = stat.Mean(mc.component(step, i), nil)
	}
	return means
}

// StdDev returns the standard deviation of all the samples for the given time step.
func (mc MonteCarloRuns) StdDev(step int) []float64 {
	rows := mc.Runs[0].Estimates[0].State().Len()
	devs := make([]float64, rows)
	for i := 0; i < rows; i++ {
		devs[i] = stat.StdDev(mc.component(step, i), nil)
	}
	return devs
}

// MeanNEES returns the NEES averaged over all runs, per step.
func (mc MonteCarloRuns) MeanNEES() []float64 {
	return mc.perStepMean(func(run MonteCarloRun) []float64 { return run.NEES })
}

// MeanNIS returns the NIS averaged over all runs, per step.
func (mc MonteCarloRuns) MeanNIS() []float64 {
	return mc.perStepMean(func(run MonteCarloRun) []float64 { return run.NIS })
}

func (mc MonteCarloRuns) perStepMean(samples func(MonteCarloRun) []float64) []float64 {
	means := make([]float64, mc.steps)
	vals := make([]float64, len(mc.Runs))
	for k := 0; k < mc.steps; k++ {
		for r, run := range mc.Runs {
			vals[r] = samples(run)[k]
		}
		means[k] = stat.Mean(vals, nil)
	}
	return means
}

// AsCSV is used as a CSV serializer, one file per state component. Each file
// has a header line followed by one line per step.
func (mc MonteCarloRuns) AsCSV(headers []string) []string {
	rows := mc.Runs[0].Estimates[0].State().Len()
	rtn := make([]string, rows)

	for i := 0; i < rows; i++ {
		header := headers[i]
		lines := make([]string, mc.steps+1) // One line per step, plus header.
		cols := make([]string, 0, mc.runs+2)
		for rNo := 0; rNo < mc.runs; rNo++ {
			cols = append(cols, fmt.Sprintf("%s-%d", header, rNo))
		}
		lines[0] = strings.Join(append(cols, header+"-mean", header+"-stddev"), ",")

		for k := 0; k < mc.steps; k++ {
			cols = cols[:0]
			for _, v := range mc.component(k, i) {
				cols = append(cols, fmt.Sprintf("%f", v))
			}
			mean := mc.Mean(k)
			stddev := mc.StdDev(k)
			lines[k+1] = strings.Join(append(cols, fmt.Sprintf("%f", mean[i]), fmt.Sprintf("%f", stddev[i])), ",")
		}
		rtn[i] = strings.Join(lines, "\n")
	}
	return rtn
}
