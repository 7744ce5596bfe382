package linalg

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSvdMatrixRoundTrip(t *testing.T) {
	sym := mat.NewSymDense(2, []float64{4, 1, 1, 3})
	m := NewSvdMatrix(sym)
	dense := m.Dense()
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(dense.At(i, j)-sym.At(i, j)) > 1e-9 {
				t.Fatalf("Dense()[%d][%d] = %f, want %f", i, j, dense.At(i, j), sym.At(i, j))
			}
		}
	}
}

func TestSvdMatrixTransformStaysPSD(t *testing.T) {
	sym := mat.NewSymDense(2, []float64{9, 0, 0, 4})
	m := NewSvdMatrix(sym)

	// Chain several transforms, including a rank-reducing projection,
	// and confirm the spectrum never goes negative.
	rot := mat.NewDense(2, 2, []float64{0, 1, -1, 0})
	proj := mat.NewDense(1, 2, []float64{1, 0})

	m = m.Transform(rot)
	if !m.Symmetric(1e-6) {
		t.Fatal("expected PSD spectrum after rotation transform")
	}
	reduced := m.Transform(proj)
	if reduced.Dim() != 1 {
		t.Fatalf("Dim() = %d, want 1 after projection", reduced.Dim())
	}
	if !reduced.Symmetric(1e-6) {
		t.Fatal("expected PSD spectrum after projection transform")
	}
	if reduced.S[0] < 0 {
		t.Fatalf("projected variance went negative: %f", reduced.S[0])
	}
}

func TestSvdMatrixFrobeniusNorm(t *testing.T) {
	m := DiagSvd([]float64{3, 4})
	got := m.FrobeniusNorm()
	want := 5.0 // sqrt(3^2+4^2)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("FrobeniusNorm() = %f, want %f", got, want)
	}
}

func TestBlockStack2to4(t *testing.T) {
	c := DiagSvd([]float64{2, 5})
	m := BlockStack2to4(c)
	dense := m.Dense()
	want := map[[2]int]float64{{0, 0}: 2, {1, 1}: 5, {2, 2}: 2, {3, 3}: 5}
	for idx, v := range want {
		if math.Abs(dense.At(idx[0], idx[1])-v) > 1e-9 {
			t.Fatalf("Dense()[%d][%d] = %f, want %f", idx[0], idx[1], dense.At(idx[0], idx[1]), v)
		}
	}
	if dense.At(0, 2) != 0 || dense.At(1, 3) != 0 {
		t.Fatal("expected zero off-block entries")
	}
}

func TestSvdMatrixAdd(t *testing.T) {
	a := DiagSvd([]float64{1, 1})
	b := DiagSvd([]float64{2, 3})
	sum := a.Add(b)
	dense := sum.Dense()
	if math.Abs(dense.At(0, 0)-3) > 1e-9 || math.Abs(dense.At(1, 1)-4) > 1e-9 {
		t.Fatalf("Add() = %v, want diag(3,4)", mat.Formatted(dense))
	}
}
