package kalman

import (
	"math"
	"testing"

	"github.com/mapmatch/core/internal/linalg"
)

func TestGroundModelPredictAdvancesPosition(t *testing.T) {
	m := GroundModel(2.0)
	belief := Belief{Mean: []float64{0, 5, 0, -3}, Cov: linalg.DiagSvd([]float64{1, 1, 1, 1})}
	processCov := GroundProcessCov(2.0, [2]float64{0.1, 0.1})

	out := m.Predict(belief, processCov)
	if math.Abs(out.Mean[0]-10) > 1e-9 {
		t.Fatalf("predicted x = %f, want 10 (x0 + vx*dt)", out.Mean[0])
	}
	if math.Abs(out.Mean[2]+6) > 1e-9 {
		t.Fatalf("predicted y = %f, want -6", out.Mean[2])
	}
	if !out.Cov.Symmetric(1e-6) {
		t.Fatal("predicted covariance should stay PSD")
	}
}

func TestGroundModelMeasureConvergesTowardObservation(t *testing.T) {
	m := GroundModel(1.0)
	belief := Belief{Mean: []float64{0, 0, 0, 0}, Cov: linalg.DiagSvd([]float64{100, 100, 100, 100})}
	measurementCov := linalg.DiagSvd([]float64{1, 1})

	updated, err := m.Measure(belief, []float64{50, 50}, measurementCov)
	if err != nil {
		t.Fatalf("Measure returned error: %s", err)
	}
	if updated.Mean[0] < 40 || updated.Mean[2] < 40 {
		t.Fatalf("expected posterior mean close to the observation, got x=%f y=%f", updated.Mean[0], updated.Mean[2])
	}
}

func TestMeasureRejectsNaNObservation(t *testing.T) {
	m := GroundModel(1.0)
	belief := Belief{Mean: []float64{0, 0, 0, 0}, Cov: linalg.DiagSvd([]float64{1, 1, 1, 1})}
	measurementCov := linalg.DiagSvd([]float64{1, 1})

	_, err := m.Measure(belief, []float64{math.NaN(), 0}, measurementCov)
	if err == nil {
		t.Fatal("expected an error for a NaN observation")
	}
}

func TestRoadModelPredict(t *testing.T) {
	m := RoadModel(2.0)
	belief := Belief{Mean: []float64{5, 3}, Cov: linalg.DiagSvd([]float64{1, 1})}
	processCov := RoadProcessCov(2.0, 0.1)

	out := m.Predict(belief, processCov)
	if math.Abs(out.Mean[0]-11) > 1e-9 {
		t.Fatalf("predicted s = %f, want 11 (5 + 3*2)", out.Mean[0])
	}
}

func TestBeliefCloneIsIndependent(t *testing.T) {
	b := Belief{Mean: []float64{1, 2}, Cov: linalg.DiagSvd([]float64{1, 1})}
	clone := b.Clone()
	clone.Mean[0] = 99
	clone.Cov.S[0] = 99
	if b.Mean[0] == 99 {
		t.Fatal("Clone should not share the mean slice")
	}
	if b.Cov.S[0] == 99 {
		t.Fatal("Clone should not share the covariance")
	}
}
