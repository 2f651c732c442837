package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"ecoscan/internal/labelling"
)

var (
	labelColumns     = []string{"filename", "nested_loops", "repetitive_code", "inefficient_algorithms", "redundant_computations"}
	footprintColumns = []string{"cpu_cycles", "carbon_footprint"}
)

// Record is one row of the labelled dataset.
type Record struct {
	Filename string `json:"filename"`
	labelling.Smells
	CPUCycles       int64   `json:"cpu_cycles"`
	CarbonFootprint float64 `json:"carbon_footprint"`
}

// ApplyFootprint fills the footprint columns from the smell counts.
func (r *Record) ApplyFootprint() {
	r.CPUCycles = labelling.CPUCycles(r.Smells)
	r.CarbonFootprint = labelling.CarbonFootprint(r.CPUCycles)
}

// WriteCSV writes records to path. withFootprint adds the cpu_cycles and
// carbon_footprint columns.
func WriteCSV(path string, records []Record, withFootprint bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create dataset directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	header := labelColumns
	if withFootprint {
		header = append(append([]string{}, labelColumns...), footprintColumns...)
	}
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return err
	}
	for _, r := range records {
		row := []string{
			r.Filename,
			strconv.Itoa(r.NestedLoops),
			strconv.Itoa(r.RepetitiveCode),
			strconv.Itoa(r.InefficientAlgorithms),
			strconv.Itoa(r.RedundantComputations),
		}
		if withFootprint {
			row = append(row,
				strconv.FormatInt(r.CPUCycles, 10),
				strconv.FormatFloat(r.CarbonFootprint, 'g', -1, 64),
			)
		}
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// ReadCSV reads the label columns of a dataset file. Columns are located by
// header name; footprint columns, if present, are ignored.
func ReadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s has no header", path)
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[name] = i
	}
	for _, col := range labelColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%s is missing column %q", path, col)
		}
	}

	records := make([]Record, 0, len(rows)-1)
	for lineNo, row := range rows[1:] {
		r := Record{Filename: row[index["filename"]]}
		fields := []*int{&r.NestedLoops, &r.RepetitiveCode, &r.InefficientAlgorithms, &r.RedundantComputations}
		for i, dst := range fields {
			col := labelColumns[i+1]
			v, err := strconv.Atoi(row[index[col]])
			if err != nil {
				return nil, fmt.Errorf("%s line %d: bad %s: %w", path, lineNo+2, col, err)
			}
			*dst = v
		}
		records = append(records, r)
	}
	return records, nil
}
