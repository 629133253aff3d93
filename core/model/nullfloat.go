package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// NullFloat is a float64 that may be absent. An absent value is distinct from
// zero and encodes as JSON null.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float returns a valid NullFloat holding v.
func Float(v float64) NullFloat { return NullFloat{Float64: v, Valid: true} }

// Null returns an absent value.
func Null() NullFloat { return NullFloat{} }

// Or returns the value when present and def otherwise.
func (n NullFloat) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Float64
}

func (n NullFloat) String() string {
	if !n.Valid {
		return "undefined"
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

// MarshalJSON encodes absent values as null.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid || math.IsNaN(n.Float64) || math.IsInf(n.Float64, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON accepts a number or null.
func (n *NullFloat) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}
