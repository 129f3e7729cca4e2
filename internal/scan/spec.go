// Package scan expands operator-declared ranges into value combinations.
package scan

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fjglira/sweepgen/internal/domain"
)

// ParseNumber parses an operator-entered bound. Base-10 integers stay
// integers; anything else must be a finite real.
func ParseNumber(s string) (domain.Value, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return domain.IntValue(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return domain.Value{}, fmt.Errorf("invalid number %q", s)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return domain.Value{}, fmt.Errorf("invalid number %q: must be finite", s)
	}
	return domain.RealValue(f), nil
}

// ParseSpec builds a ScanSpec from textual start, end and step values.
func ParseSpec(name, start, end, step string) (domain.ScanSpec, error) {
	spec := domain.ScanSpec{Name: name}
	var err error
	if spec.Start, err = ParseNumber(start); err != nil {
		return spec, domain.NewError("scan", "", 0, fmt.Sprintf("start of %q", name), err)
	}
	if spec.End, err = ParseNumber(end); err != nil {
		return spec, domain.NewError("scan", "", 0, fmt.Sprintf("end of %q", name), err)
	}
	if spec.Step, err = ParseNumber(step); err != nil {
		return spec, domain.NewError("scan", "", 0, fmt.Sprintf("step of %q", name), err)
	}
	return spec, nil
}

// IsInteger reports whether all three bounds of spec are integers.
func IsInteger(spec domain.ScanSpec) bool {
	return spec.Start.IsInt() && spec.End.IsInt() && spec.Step.IsInt()
}
