package lkf

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Exporter defines an export interface.
type Exporter interface {
	Write(Estimate) error
	Close() error
}

// CSVExporter writes each estimate as one CSV line: for every state component
// its value and its ±2σ bounds.
type CSVExporter struct {
	hdlr *os.File
	w    *csv.Writer
}

// NewCSVExporter creates dir/filename and writes the header of a state with
// the provided component names.
func NewCSVExporter(headers []string, dir, filename string) (*CSVExporter, error) {
	f, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return nil, err
	}
	hdr := make([]string, 0, len(headers)*3)
	for _, h := range headers {
		hdr = append(hdr, h, h+"+2s", h+"-2s")
	}
	e := &CSVExporter{f, csv.NewWriter(f)}
	if err := e.WriteRawLn(fmt.Sprintf("# Creation date (UTC): %s", time.Now().UTC())); err != nil {
		f.Close()
		return nil, err
	}
	if err := e.w.Write(hdr); err != nil {
		f.Close()
		return nil, err
	}
	return e, nil
}

// Write writes the estimate to the CSV file.
func (e *CSVExporter) Write(est Estimate) error {
	state := est.State()
	vals := make([]string, 0, state.Len()*3)
	for i := 0; i < state.Len(); i++ {
		x := state.AtVec(i)
		twoσ := 2 * math.Sqrt(est.Covariance().At(i, i))
		vals = append(vals, format(x), format(x+twoσ), format(x-twoσ))
	}
	return e.w.Write(vals)
}

// WriteRawLn writes a raw line to the CSV file.
func (e *CSVExporter) WriteRawLn(s string) error {
	e.w.Flush()
	if err := e.w.Error(); err != nil {
		return err
	}
	_, err := e.hdlr.WriteString(s + "\n")
	return err
}

// Name returns the path of the CSV file.
func (e *CSVExporter) Name() string {
	return e.hdlr.Name()
}

// Close writes the closing date and closes the file.
func (e *CSVExporter) Close() error {
	if err := e.WriteRawLn(fmt.Sprintf("# Closing date (UTC): %s", time.Now().UTC())); err != nil {
		e.hdlr.Close()
		return err
	}
	return e.hdlr.Close()
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
