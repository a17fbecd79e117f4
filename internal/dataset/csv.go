package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmpty is returned when a file has no header or no data rows.
var ErrEmpty = errors.New("CSV file is empty")

// Options controls how a CSV file is materialized.
type Options struct {
	// SampleRows is the number of leading rows kept in Sample. Defaults to 5.
	SampleRows int
	// MaxRows limits rows kept in FullData; 0 means unlimited. RowCount always
	// reflects the whole file.
	MaxRows int
	// Delimiter for CSV. If 0, it is inferred from the file extension.
	Delimiter rune
}

// DefaultOptions returns the defaults used by the CLI.
func DefaultOptions() Options {
	return Options{SampleRows: 5, MaxRows: 100000}
}

// LoadCSV parses a CSV file with a header row into a Dataset.
func LoadCSV(path string, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return ReadCSV(f, filepath.Base(path), opt)
}

// ReadCSV parses CSV content from r. name becomes the dataset's FileName.
func ReadCSV(r io.Reader, name string, opt Options) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	var records [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("CSV parsing error: row %d: %w", len(records)+1, err)
		}
		if blankRecord(rec) {
			continue
		}
		records = append(records, rec)
	}
	return FromRecords(name, header, records, opt)
}

// FromRecords builds a Dataset from a header and raw string records.
// Duplicate or empty header names are made unique so the schema stays a set.
func FromRecords(name string, header []string, records [][]string, opt Options) (*Dataset, error) {
	schema := uniqueHeader(header)
	if len(schema) == 0 || len(records) == 0 {
		return nil, ErrEmpty
	}
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	maxRows := opt.MaxRows
	if maxRows <= 0 || maxRows > len(records) {
		maxRows = len(records)
	}

	ds := &Dataset{
		FileName: name,
		Schema:   schema,
		RowCount: len(records),
		FullData: make([]Row, 0, maxRows),
	}
	for _, rec := range records[:maxRows] {
		row := make(Row, len(schema))
		for j, col := range schema {
			// short records leave trailing columns absent
			if j >= len(rec) {
				break
			}
			row[col] = Text(rec[j])
		}
		ds.FullData = append(ds.FullData, row)
	}
	if sampleRows > len(ds.FullData) {
		sampleRows = len(ds.FullData)
	}
	ds.Sample = ds.FullData[:sampleRows:sampleRows]
	return ds, nil
}

func uniqueHeader(header []string) []string {
	out := make([]string, 0, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		cand := name
		for n := 1; seen[cand]; n++ {
			cand = fmt.Sprintf("%s_%d", name, n)
		}
		seen[cand] = true
		out = append(out, cand)
	}
	return out
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") {
		return '\t'
	}
	return ','
}
