package windowing

import (
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestHannPeriodic(t *testing.T) {
	got := NewHann(4, false).Coefficients()
	want := []float64{0, 0.5, 1, 0.5}
	if !floats.EqualApprox(got, want, 1e-12) {
		t.Errorf("coefficients = %v, want %v", got, want)
	}
}

func TestHannSymmetric(t *testing.T) {
	got := NewHann(5, true).Coefficients()
	want := []float64{0, 0.5, 1, 0.5, 0}
	if !floats.EqualApprox(got, want, 1e-12) {
		t.Errorf("coefficients = %v, want %v", got, want)
	}
}

func TestHannSingleSample(t *testing.T) {
	if got := NewHann(1, true).Coefficients(); len(got) != 1 || got[0] != 1 {
		t.Errorf("coefficients = %v, want [1]", got)
	}
}

func TestHannApply(t *testing.T) {
	h := NewHann(4, false)
	signal := []float64{2, 2, 2, 2}

	windowed := h.Apply(signal)
	if !floats.EqualApprox(windowed, []float64{0, 1, 2, 1}, 1e-12) {
		t.Errorf("Apply = %v", windowed)
	}
	if signal[1] != 2 {
		t.Errorf("Apply modified its input: %v", signal)
	}

	if err := h.ApplyInPlace(signal); err != nil {
		t.Fatalf("ApplyInPlace failed: %v", err)
	}
	if !floats.EqualApprox(signal, windowed, 1e-12) {
		t.Errorf("ApplyInPlace = %v, want %v", signal, windowed)
	}
}

func TestHannLengthMismatch(t *testing.T) {
	h := NewHann(4, false)

	if got := h.Apply([]float64{1, 2, 3}); got != nil {
		t.Errorf("expected nil for short signal, got %v", got)
	}
	if err := h.ApplyInPlace([]float64{1, 2, 3, 4, 5}); err == nil {
		t.Error("expected error for long signal")
	}
	if h.Size() != 4 {
		t.Errorf("size = %d, want 4", h.Size())
	}
}
