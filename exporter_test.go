package lkf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestCSVExportFail(t *testing.T) {
	_, err := NewCSVExporter([]string{"position", "velocity", "acceleration"}, "/noNoNoNo/", "temp.csv")
	assert.Error(t, err, "no issue when trying to create a file in a missing directory")
}

func TestCSVExport(t *testing.T) {
	dir := t.TempDir()
	ce, err := NewCSVExporter([]string{"position", "velocity"}, dir, "temp.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "temp.csv"), ce.Name())

	initEst := &FilterEstimate{state: mat.NewVecDense(2, []float64{0, 0.35}), covar: ScaledIdentity(2, 4)}
	require.NoError(t, ce.Write(initEst))
	require.NoError(t, ce.Close())

	data, err := os.ReadFile(ce.Name())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "# Creation date"))
	assert.Equal(t, "position,position+2s,position-2s,velocity,velocity+2s,velocity-2s", lines[1])
	assert.Equal(t, "0.000000,4.000000,-4.000000,0.350000,4.350000,-3.650000", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "# Closing date"))
}
