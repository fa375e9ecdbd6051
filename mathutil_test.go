package ecgcore

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	got := percentile(data, 50)
	if math.Abs(got-5.5) > 1e-9 {
		t.Fatalf("expected median 5.5, got %v", got)
	}
}

func TestSampleStdVsPopStd(t *testing.T) {
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	pop := popStd(data)
	sample := sampleStd(data)
	if sample <= pop {
		t.Fatalf("Bessel-corrected sample std (%v) should exceed population std (%v)", sample, pop)
	}
}

func TestClamp(t *testing.T) {
	if v := clamp(150.0, 0.0, 100.0); v != 100.0 {
		t.Fatalf("expected clamp to upper bound, got %v", v)
	}
	if v := clamp(-5.0, 0.0, 100.0); v != 0.0 {
		t.Fatalf("expected clamp to lower bound, got %v", v)
	}
	if v := clamp(42.0, 0.0, 100.0); v != 42.0 {
		t.Fatalf("expected value unchanged inside bounds, got %v", v)
	}
}

func TestMovingAverageCenteredLengthPreserved(t *testing.T) {
	data := make([]float64, 100)
	for i := range data {
		data[i] = float64(i)
	}
	out := movingAverageCentered(data, 11)
	if len(out) != len(data) {
		t.Fatalf("expected length %d, got %d", len(data), len(out))
	}
}

func TestDiffIntAndFloat(t *testing.T) {
	ints := []int{10, 15, 25, 40}
	gotInt := diffInt(ints)
	wantInt := []float64{5, 10, 15}
	for i := range wantInt {
		if gotInt[i] != wantInt[i] {
			t.Fatalf("diffInt mismatch at %d: got %v want %v", i, gotInt[i], wantInt[i])
		}
	}

	floats := []float64{1.5, 2.5, 4.0}
	gotFloat := diffFloat(floats)
	wantFloat := []float64{1.0, 1.5}
	for i := range wantFloat {
		if math.Abs(gotFloat[i]-wantFloat[i]) > 1e-12 {
			t.Fatalf("diffFloat mismatch at %d: got %v want %v", i, gotFloat[i], wantFloat[i])
		}
	}
}

func TestAllFinite(t *testing.T) {
	if !allFinite([]float64{1, 2, 3}) {
		t.Fatal("expected finite slice to report true")
	}
	if allFinite([]float64{1, math.NaN(), 3}) {
		t.Fatal("expected NaN to make allFinite false")
	}
	if allFinite([]float64{1, math.Inf(1), 3}) {
		t.Fatal("expected Inf to make allFinite false")
	}
}
