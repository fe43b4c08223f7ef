package dynamo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableLookup(t *testing.T) {
	tbl := MustTable([]float64{0, 500, 1000}, []float64{2.4, 2.4, 0})

	tests := []struct {
		name string
		x    float64
		want float64
	}{
		{"below range", -100, 2.4},
		{"on breakpoint", 500, 2.4},
		{"midpoint", 750, 1.2},
		{"above range", 5000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tbl.Lookup(tt.x), 1e-12)
		})
	}
}

func TestNewTable_Errors(t *testing.T) {
	_, err := NewTable([]float64{0, 1}, []float64{1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTableBreakpoints))

	_, err = NewTable([]float64{0, 2, 1}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrTableBreakpoints)
}
