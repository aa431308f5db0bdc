// Package signal conditions frame-indexed kinematic channels: single-frame drop
// repair, weighted smoothing, pixel to km/h conversion and acceleration.
//
// Every sample is a Value, which is either a number or None. None means the
// quantity could not be determined on that frame and is never read as zero.
package signal

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Value is an optional sample. The zero Value is None.
type Value struct {
	v  float64
	ok bool
}

// None is the undetermined sample.
var None = Value{}

// Some wraps a determined sample.
func Some(v float64) Value {
	return Value{v: v, ok: true}
}

// FromOK builds a Value from a comma-ok pair.
func FromOK(v float64, ok bool) Value {
	if !ok {
		return None
	}
	return Some(v)
}

// Get returns the sample and whether it is determined.
func (x Value) Get() (float64, bool) {
	return x.v, x.ok
}

// Valid reports whether the sample is determined.
func (x Value) Valid() bool {
	return x.ok
}

// Or returns the sample, or def when it is None.
func (x Value) Or(def float64) float64 {
	if !x.ok {
		return def
	}
	return x.v
}

// MarshalJSON encodes None as null.
func (x Value) MarshalJSON() ([]byte, error) {
	if !x.ok {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(x.v, 'g', -1, 64)), nil
}

// UnmarshalJSON decodes null as None.
func (x *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*x = None
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*x = Some(f)
	return nil
}

// Values builds a series of determined samples.
func Values(vs ...float64) []Value {
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = Some(v)
	}
	return out
}

// Floats returns the determined samples of a series in order, skipping None.
func Floats(series []Value) []float64 {
	out := make([]float64, 0, len(series))
	for _, x := range series {
		if x.ok {
			out = append(out, x.v)
		}
	}
	return out
}

// At returns series[i], or None when i is out of range.
func At(series []Value, i int) Value {
	if i < 0 || i >= len(series) {
		return None
	}
	return series[i]
}
