package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/seqnet-ml/seqnet/internal/tensor"
)

// CSVOptions controls numeric CSV ingestion.
type CSVOptions struct {
	// SkipHeader drops the first record.
	SkipHeader bool

	// Comma is the field separator; zero means ','.
	Comma rune

	// DType selects the tensor element type; zero value means float32.
	DType tensor.DataType
}

// ReadCSV parses numeric records into one column tensor per row, each of
// shape (fields, 1). All records must have the same field count; the csv
// reader enforces that.
func ReadCSV(r io.Reader, opts CSVOptions) ([]*tensor.RawTensor, error) {
	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}

	var out []*tensor.RawTensor
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: reading csv: %w", err)
		}
		if first && opts.SkipHeader {
			first = false
			continue
		}
		first = false

		t := tensor.Zeros(tensor.Shape{len(record), 1}, opts.DType)
		for i, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: non-numeric field %q: %w", field, err)
			}
			t.Set(v, i, 0)
		}
		out = append(out, t)
	}
	return out, nil
}

// ReadCSVFile opens a file and parses it with ReadCSV.
func ReadCSVFile(path string, opts CSVOptions) ([]*tensor.RawTensor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f, opts)
}
