package dynamo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowPassFilter_Converges(t *testing.T) {
	f := NewLowPassFilter(0.1)
	for i := 0; i < 1000; i++ {
		f.Update(0.01, 10)
	}
	assert.InDelta(t, 10, f.Output(), 1e-6)
}

func TestLowPassFilter_FirstStep(t *testing.T) {
	f := NewLowPassFilter(0.09)
	got := f.Update(0.01, 1)
	assert.InDelta(t, 0.1, got, 1e-12)
}

func TestLowPassFilter_ZeroDtHolds(t *testing.T) {
	f := NewLowPassFilterWithInit(1, 5)
	assert.Equal(t, 5.0, f.Update(0, 100))
}

func TestDelayedTrueGate(t *testing.T) {
	g := NewDelayedTrueGate(1)
	for i := 0; i < 9; i++ {
		g.Update(0.1, true)
	}
	if g.Output() {
		t.Fatal("gate fired before delay")
	}
	g.Update(0.15, true)
	if !g.Output() {
		t.Fatal("gate should fire after delay")
	}
	g.Update(0.1, false)
	if g.Output() {
		t.Fatal("false input should clear the gate")
	}
}

func TestRandom_Deterministic(t *testing.T) {
	a := NewRandom(42)
	b := NewRandom(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Normal(30, 5), b.Normal(30, 5))
	}
	r := NewRandom(1)
	for i := 0; i < 100; i++ {
		assert.GreaterOrEqual(t, r.NormalFloor(10, 50, 10), 10.0)
		v := r.Range(0.8, 1.2)
		assert.True(t, v >= 0.8 && v < 1.2)
	}
}
