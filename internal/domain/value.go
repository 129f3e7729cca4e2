package domain

import (
	"math"
	"strconv"
	"strings"
)

// Value is a scanned numeric value: either an integer or a real.
type Value struct {
	isInt bool
	i     int64
	f     float64
}

// IntValue returns an integer Value.
func IntValue(i int64) Value {
	return Value{isInt: true, i: i}
}

// RealValue returns a real Value.
func RealValue(f float64) Value {
	return Value{f: f}
}

// IsInt reports whether v holds an integer.
func (v Value) IsInt() bool { return v.isInt }

// Int returns the integer value, truncating reals.
func (v Value) Int() int64 {
	if v.isInt {
		return v.i
	}
	return int64(v.f)
}

// Float returns the value as a float64.
func (v Value) Float() float64 {
	if v.isInt {
		return float64(v.i)
	}
	return v.f
}

// Compare returns -1, 0 or 1 comparing v to o numerically.
func (v Value) Compare(o Value) int {
	if v.isInt && o.isInt {
		switch {
		case v.i < o.i:
			return -1
		case v.i > o.i:
			return 1
		}
		return 0
	}
	a, b := v.Float(), o.Float()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// String renders integers plainly and reals in shortest form with a decimal
// point, so 1.0 stays distinguishable from 1 in directory names and files.
func (v Value) String() string {
	if v.isInt {
		return strconv.FormatInt(v.i, 10)
	}
	if math.IsInf(v.f, 0) || math.IsNaN(v.f) {
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}
	abs := math.Abs(v.f)
	var s string
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		s = strconv.FormatFloat(v.f, 'g', -1, 64)
	} else {
		s = strconv.FormatFloat(v.f, 'f', -1, 64)
	}
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Strings renders every value of c.
func (c Combination) Strings() []string {
	out := make([]string, len(c))
	for i, v := range c {
		out[i] = v.String()
	}
	return out
}
