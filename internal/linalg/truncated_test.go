package linalg

import (
	"math"
	"math/rand"
	"testing"
)

func TestTruncatedNormalMeanAboveLower(t *testing.T) {
	tn := TruncatedNormal{Mu: 0, Sigma: 1, Lower: 0}
	mean := tn.Mean()
	if mean <= 0 {
		t.Fatalf("Mean() = %f, want > 0 for a zero-mean normal truncated at 0", mean)
	}
	// Known closed form for standard half-normal: sqrt(2/pi).
	want := math.Sqrt(2 / math.Pi)
	if math.Abs(mean-want) > 1e-6 {
		t.Fatalf("Mean() = %f, want %f", mean, want)
	}
}

func TestTruncatedNormalDegenerateSigma(t *testing.T) {
	tn := TruncatedNormal{Mu: -5, Sigma: 0, Lower: 0}
	if got := tn.Mean(); got != 0 {
		t.Fatalf("Mean() = %f, want 0 (clamped to Lower)", got)
	}
	if got := tn.Variance(); got != 0 {
		t.Fatalf("Variance() = %f, want 0", got)
	}
}

func TestTruncatedNormalRandRespectsLower(t *testing.T) {
	tn := TruncatedNormal{Mu: 0, Sigma: 1, Lower: 2}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		if v := tn.Rand(rng); v < tn.Lower {
			t.Fatalf("Rand() = %f, want >= %f", v, tn.Lower)
		}
	}
}
