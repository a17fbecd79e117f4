package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Row maps column names to raw cell values. Keys are a subset of the schema;
// a missing key is an empty cell.
type Row map[string]Cell

// Dataset is the in-memory form of a parsed CSV file.
type Dataset struct {
	FileName string   `json:"fileName"`
	Schema   []string `json:"schema"`
	// RowCount is the number of data rows in the source file, which may exceed
	// what is materialized in FullData.
	RowCount int   `json:"rowCount"`
	Sample   []Row `json:"sample"`
	// FullData is optional; when empty, operations degrade to Sample.
	FullData []Row `json:"fullData,omitempty"`
}

// HasFullData reports whether the complete row set is resident.
func (d *Dataset) HasFullData() bool {
	return d != nil && len(d.FullData) > 0
}

// Rows returns FullData when present, otherwise Sample.
func (d *Dataset) Rows() []Row {
	if d == nil {
		return nil
	}
	if d.HasFullData() {
		return d.FullData
	}
	return d.Sample
}

// Get returns the cell for column in row, or an empty cell.
func Get(r Row, column string) Cell {
	if r == nil {
		return Cell{}
	}
	return r[column]
}

// Validate checks the structural invariants of a dataset.
func (d *Dataset) Validate() error {
	if d == nil {
		return errors.New("dataset is nil")
	}
	cols := make(map[string]struct{}, len(d.Schema))
	for _, c := range d.Schema {
		if _, dup := cols[c]; dup {
			return fmt.Errorf("duplicate column %q", c)
		}
		cols[c] = struct{}{}
	}
	check := func(kind string, rows []Row) error {
		for i, r := range rows {
			for k := range r {
				if _, ok := cols[k]; !ok {
					return fmt.Errorf("%s row %d: column %q not in schema", kind, i+1, k)
				}
			}
		}
		return nil
	}
	if err := check("sample", d.Sample); err != nil {
		return err
	}
	if err := check("full", d.FullData); err != nil {
		return err
	}
	if d.HasFullData() {
		if len(d.Sample) > len(d.FullData) || len(d.FullData) > d.RowCount {
			return fmt.Errorf("row counts out of order: sample=%d full=%d total=%d", len(d.Sample), len(d.FullData), d.RowCount)
		}
	} else if len(d.Sample) > d.RowCount {
		return fmt.Errorf("sample (%d rows) exceeds row count %d", len(d.Sample), d.RowCount)
	}
	return nil
}

// EncodeRow renders a row as compact JSON with keys in schema order.
// Columns absent from the row are omitted.
func EncodeRow(schema []string, r Row) string {
	var b bytes.Buffer
	b.WriteByte('{')
	first := true
	for _, col := range schema {
		c, ok := r[col]
		if !ok {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		v, err := marshalPlain(c.raw)
		if err != nil {
			v = []byte(`""`)
		}
		k, _ := marshalPlain(col)
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.String()
}

// marshalPlain encodes v without HTML escaping so cell text reaches the model verbatim.
func marshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
