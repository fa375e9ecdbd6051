package ecgcore

import (
	"math"
	"testing"
)

func TestDesignBandpassRejectsInvalidCutoffs(t *testing.T) {
	if _, err := designBandpass(4, 0.5, 40.0, 10.0); err == nil {
		t.Fatal("expected error when high cutoff exceeds Nyquist")
	}
}

func TestFiltfiltPreservesLength(t *testing.T) {
	coeffs, err := designBandpass(4, 0.5, 40.0, 250.0)
	if err != nil {
		t.Fatalf("designBandpass failed: %v", err)
	}
	samples := syntheticECG(2000, 250.0, 1.0, 0.03, 1.0, 0.5)
	out := filtfilt(coeffs, samples)
	if len(out) != len(samples) {
		t.Fatalf("expected filtfilt to preserve length: got %d want %d", len(out), len(samples))
	}
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite filtered sample at %d", i)
		}
	}
}

func TestFiltfiltZeroPhaseOnDC(t *testing.T) {
	// A DC-free bandpass applied to a pure DC signal should drive the
	// output to (near) zero, with no net phase shift to check against.
	coeffs, err := designBandpass(2, 5.0, 15.0, 250.0)
	if err != nil {
		t.Fatalf("designBandpass failed: %v", err)
	}
	dc := make([]float64, 500)
	for i := range dc {
		dc[i] = 1.0
	}
	out := filtfilt(coeffs, dc)
	for i := 50; i < len(out)-50; i++ {
		if math.Abs(out[i]) > 0.05 {
			t.Fatalf("expected near-zero response to DC input at %d, got %v", i, out[i])
		}
	}
}

func TestDesignNotchAttenuatesTargetFrequency(t *testing.T) {
	fs := 500.0
	coeffs, err := designNotch(60.0, 30.0, fs)
	if err != nil {
		t.Fatalf("designNotch failed: %v", err)
	}
	n := 1000
	tone := make([]float64, n)
	for i := range tone {
		tone[i] = math.Sin(2 * math.Pi * 60.0 * float64(i) / fs)
	}
	out := filtfilt(coeffs, tone)

	var inputEnergy, outputEnergy float64
	for i := 200; i < n-200; i++ {
		inputEnergy += tone[i] * tone[i]
		outputEnergy += out[i] * out[i]
	}
	if outputEnergy > 0.1*inputEnergy {
		t.Fatalf("expected notch to substantially attenuate 60Hz tone: in=%v out=%v", inputEnergy, outputEnergy)
	}
}
