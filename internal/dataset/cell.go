package dataset

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Cell is one raw value from a row. It may hold a string, a number, a boolean
// or nothing at all; callers must coerce it defensively.
type Cell struct {
	raw any
}

// Text returns a cell holding a string value.
func Text(s string) Cell { return Cell{raw: s} }

// Number returns a cell holding a numeric value.
func Number(f float64) Cell { return Cell{raw: f} }

// Bool returns a cell holding a boolean value.
func Bool(b bool) Cell { return Cell{raw: b} }

// Raw returns the underlying value (nil, string, float64 or bool).
func (c Cell) Raw() any { return c.raw }

// IsEmpty reports whether the cell holds no value or an empty string.
func (c Cell) IsEmpty() bool {
	switch v := c.raw.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	return false
}

// String renders the cell as text. Missing values render as "".
func (c Cell) String() string {
	switch v := c.raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.raw)
}

// UnmarshalJSON accepts any JSON value. Objects and arrays are kept as their
// compact JSON text so rows never fail to load.
func (c *Cell) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil, string, float64, bool:
		c.raw = t
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err != nil {
			return err
		}
		c.raw = buf.String()
	}
	return nil
}
