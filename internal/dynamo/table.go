package dynamo

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Table is a piecewise-linear map from breakpoints to values.
// Lookups outside the breakpoint range hold the nearest end value.
type Table struct {
	xs []float64
	ys []float64
	pl interp.PiecewiseLinear
}

// NewTable builds a table from strictly increasing breakpoints.
func NewTable(breakpoints, values []float64) (*Table, error) {
	if len(breakpoints) != len(values) || len(breakpoints) < 2 {
		return nil, fmt.Errorf("%w: %d breakpoints, %d values", ErrTableBreakpoints, len(breakpoints), len(values))
	}
	for i := 1; i < len(breakpoints); i++ {
		if breakpoints[i] <= breakpoints[i-1] {
			return nil, fmt.Errorf("%w: breakpoint %d (%g) <= %g", ErrTableBreakpoints, i, breakpoints[i], breakpoints[i-1])
		}
	}

	t := &Table{
		xs: append([]float64(nil), breakpoints...),
		ys: append([]float64(nil), values...),
	}
	if err := t.pl.Fit(t.xs, t.ys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTableBreakpoints, err)
	}
	return t, nil
}

// MustTable is NewTable for package-level characteristic maps.
func MustTable(breakpoints, values []float64) *Table {
	t, err := NewTable(breakpoints, values)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup interpolates the value at x.
func (t *Table) Lookup(x float64) float64 {
	return t.pl.Predict(x)
}

func (t *Table) Breakpoints() []float64 { return t.xs }
func (t *Table) Values() []float64      { return t.ys }
