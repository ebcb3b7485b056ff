package rng

import "testing"

func TestNewSeeded_Deterministic(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)
	for i := 0; i < 100; i++ {
		if a.Float64() != b.Float64() {
			t.Fatal("same seed should produce identical sequences")
		}
	}
}

func TestNewSeeded_DifferentSeedsDiverge(t *testing.T) {
	a := NewSeeded(1)
	b := NewSeeded(2)
	same := true
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical sequences")
	}
}

func TestIntN_Range(t *testing.T) {
	s := NewSeeded(7)
	for i := 0; i < 1000; i++ {
		if v := s.IntN(10); v < 0 || v >= 10 {
			t.Fatalf("IntN(10) = %d out of range", v)
		}
	}
}
