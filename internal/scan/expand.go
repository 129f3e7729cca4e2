package scan

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/fjglira/sweepgen/internal/domain"
)

// Options controls range expansion.
type Options struct {
	Tolerance       float64 // Slack on the end bound of real ranges
	Precision       int     // Decimal places kept for real values
	MaxCombinations int     // Upper bound on the size of the product
}

// DefaultOptions returns a 1e-12 tolerance with 12-decimal rounding.
func DefaultOptions() Options {
	return Options{
		Tolerance:       1e-12,
		Precision:       12,
		MaxCombinations: 100000,
	}
}

// Expander turns scan specs into the Cartesian product of their values.
type Expander interface {
	Values(spec domain.ScanSpec) ([]domain.Value, error)
	Expand(specs []domain.ScanSpec) ([]string, []domain.Combination, error)
}

// DefaultExpander implements Expander.
type DefaultExpander struct {
	opts Options
}

// NewExpander creates a new DefaultExpander.
func NewExpander(opts Options) *DefaultExpander {
	return &DefaultExpander{opts: opts}
}

// Values lists the values of one spec. Integer specs walk inclusively in the
// direction of step; mixed specs accumulate reals from start while the value
// stays within end plus tolerance, keeping an integer start as an integer.
// An empty list is an error.
func (e *DefaultExpander) Values(spec domain.ScanSpec) ([]domain.Value, error) {
	var vals []domain.Value
	if IsInteger(spec) {
		start, end, step := spec.Start.Int(), spec.End.Int(), spec.Step.Int()
		if step == 0 {
			return nil, domain.NewError("scan", "", 0, fmt.Sprintf("%q: step must not be zero", spec.Name), nil)
		}
		n, err := e.intCount(spec.Name, start, end, step)
		if err != nil {
			return nil, err
		}
		vals = make([]domain.Value, 0, n)
		for i, v := uint64(0), start; i < n; i++ {
			vals = append(vals, domain.IntValue(v))
			if i+1 < n {
				v += step
			}
		}
	} else {
		start, end, step := spec.Start.Float(), spec.End.Float(), spec.Step.Float()
		if step <= 0 {
			return nil, domain.NewError("scan", "", 0, fmt.Sprintf("%q: real step must be positive", spec.Name), nil)
		}
		if n := (end-start)/step + 1; n > float64(e.opts.MaxCombinations) {
			count := uint64(math.MaxInt64)
			if n < math.MaxInt64 {
				count = uint64(n)
			}
			return nil, e.tooMany(spec.Name, count)
		}
		for v := start; v <= end+e.opts.Tolerance; v += step {
			if len(vals) == 0 && spec.Start.IsInt() {
				vals = append(vals, spec.Start)
				continue
			}
			vals = append(vals, domain.RealValue(scalar.Round(v, e.opts.Precision)))
		}
	}

	if len(vals) == 0 {
		return nil, domain.NewErrorWithSuggestion("scan", "", 0,
			fmt.Sprintf("%q: range %s..%s step %s is empty", spec.Name, spec.Start, spec.End, spec.Step),
			"swap start and end or flip the sign of step",
			nil)
	}
	return vals, nil
}

// intCount returns how many values an integer range holds, computed on
// unsigned distances so the full int64 span cannot overflow.
func (e *DefaultExpander) intCount(name string, start, end, step int64) (uint64, error) {
	var span, stride uint64
	switch {
	case step > 0 && end >= start:
		span, stride = uint64(end)-uint64(start), uint64(step)
	case step < 0 && start >= end:
		span, stride = uint64(start)-uint64(end), uint64(-(step+1))+1
	default:
		return 0, nil
	}

	steps := span / stride
	if steps >= uint64(e.opts.MaxCombinations) {
		if steps == math.MaxUint64 {
			return 0, e.tooMany(name, steps)
		}
		return 0, e.tooMany(name, steps+1)
	}
	return steps + 1, nil
}

// Expand returns the scanned names and the full product of their values, in
// declaration order with the last spec varying fastest.
func (e *DefaultExpander) Expand(specs []domain.ScanSpec) ([]string, []domain.Combination, error) {
	if len(specs) == 0 {
		return nil, nil, domain.NewError("scan", "", 0, "no fields selected", nil)
	}

	names := make([]string, len(specs))
	lists := make([][]domain.Value, len(specs))
	total := int64(1)
	for i, spec := range specs {
		vals, err := e.Values(spec)
		if err != nil {
			return nil, nil, err
		}
		names[i] = spec.Name
		lists[i] = vals
		total *= int64(len(vals))
		if total > int64(e.opts.MaxCombinations) {
			return nil, nil, e.tooMany("", uint64(total))
		}
	}

	combos := make([]domain.Combination, total)
	for i := range combos {
		combos[i] = make(domain.Combination, len(specs))
	}

	repeat := int64(1)
	for dim := len(lists) - 1; dim >= 0; dim-- {
		vals := lists[dim]
		cycle := int64(len(vals))
		for i := int64(0); i < total; i++ {
			combos[i][dim] = vals[(i/repeat)%cycle]
		}
		repeat *= cycle
	}

	return names, combos, nil
}

func (e *DefaultExpander) tooMany(name string, n uint64) error {
	msg := fmt.Sprintf("%d combinations exceed the limit of %d", n, e.opts.MaxCombinations)
	if name != "" {
		msg = fmt.Sprintf("%q: %d values exceed the limit of %d", name, n, e.opts.MaxCombinations)
	}
	return domain.NewErrorWithSuggestion("scan", "", 0, msg,
		"narrow the ranges or raise scan.max_combinations in sweepgen.yaml", nil)
}
