package lkf

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LoadSeries reads a sequence of scalar samples from CSV. Every field of every
// record is a sample; lines starting with # are ignored.
func LoadSeries(r io.Reader) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	var series []float64
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, field := range record {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				line, _ := cr.FieldPos(0)
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			series = append(series, v)
		}
	}
	return series, nil
}
