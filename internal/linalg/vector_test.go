package linalg

import (
	"math"
	"testing"
)

func TestUnit2ZeroVector(t *testing.T) {
	x, y := Unit2(0, 0)
	if x != 0 || y != 0 {
		t.Fatalf("Unit2(0,0) = (%f,%f), want (0,0)", x, y)
	}
}

func TestUnit2Normalizes(t *testing.T) {
	x, y := Unit2(3, 4)
	if math.Abs(x-0.6) > 1e-9 || math.Abs(y-0.8) > 1e-9 {
		t.Fatalf("Unit2(3,4) = (%f,%f), want (0.6,0.8)", x, y)
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ v, lo, hi, want float64 }{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{5, 10, 0, 5}, // swapped bounds
	}
	for _, c := range cases {
		if got := Clamp(c.v, c.lo, c.hi); got != c.want {
			t.Errorf("Clamp(%f,%f,%f) = %f, want %f", c.v, c.lo, c.hi, got, c.want)
		}
	}
}

func TestSign(t *testing.T) {
	if Sign(-3) != -1 {
		t.Fatal("Sign(-3) should be -1")
	}
	if Sign(0) != 1 {
		t.Fatal("Sign(0) should be 1 by convention")
	}
	if Sign(3) != 1 {
		t.Fatal("Sign(3) should be 1")
	}
}
