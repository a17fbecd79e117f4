package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// NotAvailable is how an unavailable metric renders.
const NotAvailable = "N/A"

// Value is a metric that may be unavailable. The zero Value is unavailable,
// which is distinct from an available zero.
type Value struct {
	v  float64
	ok bool
}

// NA is the unavailable value.
var NA = Value{}

// Of wraps f. NaN and infinities become NA.
func Of(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return NA
	}
	return Value{v: f, ok: true}
}

// Available reports whether the value was computed.
func (v Value) Available() bool { return v.ok }

// Float returns the number and whether it is available.
func (v Value) Float() (float64, bool) { return v.v, v.ok }

// Or returns the number, or def when unavailable.
func (v Value) Or(def float64) float64 {
	if !v.ok {
		return def
	}
	return v.v
}

func (v Value) String() string {
	if !v.ok {
		return NotAvailable
	}
	return fmt.Sprintf("%g", v.v)
}

// MarshalJSON writes a number, or "N/A" when unavailable.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return json.Marshal(NotAvailable)
	}
	return json.Marshal(v.v)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] == '"' || bytes.Equal(b, []byte("null")) {
		*v = NA
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("metric value: %w", err)
	}
	*v = Of(f)
	return nil
}
