package ecgcore

import (
	"math"
	"testing"
)

const testFs = 250.0

func TestAnalyzeMetronome60BPM(t *testing.T) {
	n := int(10 * testFs)
	samples := syntheticECG(n, testFs, 1.0, 0.03, 1.0, 0.5)

	result, err := Analyze(samples, testFs, Options{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.DetectionMetrics.NumPeaks < 8 || result.DetectionMetrics.NumPeaks > 11 {
		t.Fatalf("expected around 10 peaks, got %d", result.DetectionMetrics.NumPeaks)
	}
	if result.DetectionMetrics.AvgBPM < 55 || result.DetectionMetrics.AvgBPM > 65 {
		t.Fatalf("expected avg BPM near 60, got %.2f", result.DetectionMetrics.AvgBPM)
	}
	if result.RhythmStatus != RhythmNormalSinus && result.RhythmStatus != RhythmBorderline {
		t.Fatalf("expected normal sinus rhythm, got %q", result.RhythmStatus)
	}
	if result.HRVMetrics.SDNNMs > 10 {
		t.Fatalf("expected low SDNN for a regular metronome, got %.2f", result.HRVMetrics.SDNNMs)
	}
}

func TestAnalyzeBradycardia(t *testing.T) {
	n := int(12 * testFs)
	samples := syntheticECG(n, testFs, 1.5, 0.03, 1.0, 0.5)

	result, err := Analyze(samples, testFs, Options{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.RhythmStatus != RhythmBradycardia {
		t.Fatalf("expected bradycardia, got %q (BPM %.1f)", result.RhythmStatus, result.DetectionMetrics.AvgBPM)
	}
}

func TestAnalyzeTachycardia(t *testing.T) {
	n := int(8 * testFs)
	samples := syntheticECG(n, testFs, 0.5, 0.02, 1.0, 0.25)

	result, err := Analyze(samples, testFs, Options{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.RhythmStatus != RhythmTachycardia {
		t.Fatalf("expected tachycardia, got %q (BPM %.1f)", result.RhythmStatus, result.DetectionMetrics.AvgBPM)
	}
}

func TestAnalyzeWideComplexTachycardia(t *testing.T) {
	n := int(8 * testFs)
	periodSec := 60.0 / 130.0
	samples := syntheticECG(n, testFs, periodSec, 0.05, 1.0, 0.3)

	result, err := Analyze(samples, testFs, Options{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.DetectionMetrics.AvgBPM <= tachyHRThreshold {
		t.Fatalf("expected BPM above %.0f, got %.2f", tachyHRThreshold, result.DetectionMetrics.AvgBPM)
	}
	if result.QRSMetrics.MeanQRSMs <= wideQRSThresholdMs {
		t.Fatalf("expected mean QRS width above %.0fms, got %.2f", wideQRSThresholdMs, result.QRSMetrics.MeanQRSMs)
	}
	if result.RhythmStatus != RhythmWideComplexTachy {
		t.Fatalf("expected %q, got %q", RhythmWideComplexTachy, result.RhythmStatus)
	}

	const wantWarning = "Wide QRS with tachycardia requires immediate assessment"
	found := false
	for _, w := range result.ClinicalWarnings {
		if w == wantWarning {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected clinical warnings to contain %q, got %v", wantWarning, result.ClinicalWarnings)
	}
}

func TestAnalyzeIrregularRhythm(t *testing.T) {
	n := int(12 * testFs)
	samples := syntheticECGIrregular(n, testFs, 0.03, 1.0, []float64{0.8, 1.2})

	result, err := Analyze(samples, testFs, Options{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.RhythmStatus != RhythmFlaggedIrregular {
		t.Fatalf("expected flagged irregular rhythm, got %q (CV %.3f)", result.RhythmStatus, result.ArrhythmiaMetrics.CV)
	}
}

func TestAnalyzeFlatLine(t *testing.T) {
	samples := make([]float64, int(10*testFs))

	result, err := Analyze(samples, testFs, Options{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(result.RPeakIndices) != 0 {
		t.Fatalf("expected no R-peaks on a flat line, got %d", len(result.RPeakIndices))
	}
	if result.RhythmStatus != RhythmInsufficientData {
		t.Fatalf("expected insufficient data, got %q", result.RhythmStatus)
	}
	for i, v := range result.CleanedSignal {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite value in cleaned signal at %d: %v", i, v)
		}
	}
}

func TestAnalyzeInvariants(t *testing.T) {
	n := int(10 * testFs)
	samples := syntheticECG(n, testFs, 0.8, 0.03, 1.0, 0.4)

	result, err := Analyze(samples, testFs, Options{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(result.CleanedSignal) != len(samples) {
		t.Fatalf("cleaned signal length %d != input length %d", len(result.CleanedSignal), len(samples))
	}

	for i := 1; i < len(result.RPeakIndices); i++ {
		if result.RPeakIndices[i] <= result.RPeakIndices[i-1] {
			t.Fatalf("R-peak indices not strictly increasing at %d: %v", i, result.RPeakIndices)
		}
		gap := result.RPeakIndices[i] - result.RPeakIndices[i-1]
		minGap := roundInt(0.2 * testFs)
		if gap < minGap {
			t.Fatalf("R-peak gap %d below refractory minimum %d", gap, minGap)
		}
	}
	for _, idx := range result.RPeakIndices {
		if idx < 0 || idx >= len(samples) {
			t.Fatalf("R-peak index %d out of bounds [0, %d)", idx, len(samples))
		}
	}

	if len(result.RPeakIndices) >= 2 {
		rr := diffInt(result.RPeakIndices)
		meanRR := mean(rr)
		expectedBPM := 60 * testFs / meanRR
		if math.Abs(result.DetectionMetrics.AvgBPM-expectedBPM) > 1e-6 {
			t.Fatalf("avg BPM %.10f does not match 60*fs/mean(diff(rpeaks)) %.10f", result.DetectionMetrics.AvgBPM, expectedBPM)
		}
	}

	if result.HRVMetrics.SDNNMs < 0 {
		t.Fatalf("SDNN must be non-negative, got %.4f", result.HRVMetrics.SDNNMs)
	}
	if result.HRVMetrics.PNN50 < 0 || result.HRVMetrics.PNN50 > 100 {
		t.Fatalf("pNN50 out of [0,100]: %.4f", result.HRVMetrics.PNN50)
	}

	validLabels := map[string]bool{
		RhythmNormalSinus: true, RhythmBradycardia: true, RhythmTachycardia: true,
		RhythmBorderline: true, RhythmFlaggedIrregular: true, RhythmWideComplexTachy: true,
		RhythmInsufficientData: true,
	}
	if !validLabels[result.RhythmStatus] {
		t.Fatalf("rhythm label %q not in closed set", result.RhythmStatus)
	}
}

func TestAnalyzeDeterminism(t *testing.T) {
	n := int(10 * testFs)
	samples := syntheticECG(n, testFs, 0.9, 0.03, 1.0, 0.3)

	r1, err := Analyze(samples, testFs, Options{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	r2, err := Analyze(samples, testFs, Options{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(r1.RPeakIndices) != len(r2.RPeakIndices) {
		t.Fatalf("non-deterministic peak count: %d vs %d", len(r1.RPeakIndices), len(r2.RPeakIndices))
	}
	for i := range r1.RPeakIndices {
		if r1.RPeakIndices[i] != r2.RPeakIndices[i] {
			t.Fatalf("non-deterministic peak index at %d: %d vs %d", i, r1.RPeakIndices[i], r2.RPeakIndices[i])
		}
	}
	if r1.DetectionMetrics.AvgBPM != r2.DetectionMetrics.AvgBPM {
		t.Fatalf("non-deterministic avg BPM: %.10f vs %.10f", r1.DetectionMetrics.AvgBPM, r2.DetectionMetrics.AvgBPM)
	}
}

func TestAnalyzeScaleInvariance(t *testing.T) {
	n := int(10 * testFs)
	samples := syntheticECG(n, testFs, 0.8, 0.03, 1.0, 0.4)
	scaled := make([]float64, n)
	for i, v := range samples {
		scaled[i] = v * 3.5
	}

	r1, err := Analyze(samples, testFs, Options{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	r2, err := Analyze(scaled, testFs, Options{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(r1.RPeakIndices) != len(r2.RPeakIndices) {
		t.Fatalf("scale changed peak count: %d vs %d", len(r1.RPeakIndices), len(r2.RPeakIndices))
	}
	for i := range r1.RPeakIndices {
		if abs := r1.RPeakIndices[i] - r2.RPeakIndices[i]; abs < -1 || abs > 1 {
			t.Fatalf("scale shifted peak index at %d: %d vs %d", i, r1.RPeakIndices[i], r2.RPeakIndices[i])
		}
	}
	if math.Abs(r1.DetectionMetrics.AvgBPM-r2.DetectionMetrics.AvgBPM) > 1.0 {
		t.Fatalf("scale changed avg BPM: %.2f vs %.2f", r1.DetectionMetrics.AvgBPM, r2.DetectionMetrics.AvgBPM)
	}
}

func TestAnalyzeQTcFormula(t *testing.T) {
	n := int(10 * testFs)
	samples := syntheticECG(n, testFs, 0.9, 0.03, 1.0, 0.4)

	result, err := Analyze(samples, testFs, Options{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(result.RPeakIndices) < 2 {
		t.Skip("not enough peaks detected for QTc check")
	}

	rr := diffInt(result.RPeakIndices)
	rrSec := make([]float64, len(rr))
	for i, v := range rr {
		rrSec[i] = float64(v) / testFs
	}
	meanRRSec := mean(rrSec)

	expectedQTc := result.QTMetrics.MeanQTMs / math.Sqrt(meanRRSec)
	if math.Abs(result.QTMetrics.MeanQTcBazettMs-expectedQTc) > 1e-6 {
		t.Fatalf("QTc %.6f does not match mean_qt/sqrt(mean_rr) %.6f", result.QTMetrics.MeanQTcBazettMs, expectedQTc)
	}
}

func TestAnalyzeBadConfig(t *testing.T) {
	samples := syntheticECG(int(5*testFs), testFs, 1.0, 0.03, 1.0, 0.5)

	if _, err := Analyze(samples, 0, Options{}); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := Analyze(nil, testFs, Options{}); err == nil {
		t.Fatal("expected error for empty sample buffer")
	}

	withNaN := append([]float64{}, samples...)
	withNaN[10] = math.NaN()
	if _, err := Analyze(withNaN, testFs, Options{}); err == nil {
		t.Fatal("expected error for NaN sample")
	}
}

func TestAnalyzeTimeShiftEquivariance(t *testing.T) {
	n := int(10 * testFs)
	samples := syntheticECG(n, testFs, 0.8, 0.03, 1.0, 0.4)

	k := int(2 * testFs)
	shifted := make([]float64, n+k)
	copy(shifted[k:], samples)

	r1, err := Analyze(samples, testFs, Options{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	r2, err := Analyze(shifted, testFs, Options{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	// Ignore the earliest couple of beats, which can be affected by
	// filter edge transients near the prepended zero run.
	if len(r1.RPeakIndices) < 3 || len(r2.RPeakIndices) < 3 {
		t.Skip("not enough peaks detected for shift comparison")
	}
	tail := 2
	for i := tail; i < len(r1.RPeakIndices); i++ {
		j := i + (len(r2.RPeakIndices) - len(r1.RPeakIndices))
		if j < 0 || j >= len(r2.RPeakIndices) {
			continue
		}
		diff := r2.RPeakIndices[j] - r1.RPeakIndices[i] - k
		if diff < -2 || diff > 2 {
			t.Fatalf("peak %d shifted by %d, expected shift %d", i, r2.RPeakIndices[j]-r1.RPeakIndices[i], k)
		}
	}
}
