package ecgcore

import (
	"fmt"
	"log"
	"math"
)

// Analyze runs the full pipeline — preprocessing, QRS detection,
// rhythm classification, morphology measurement, and HRV analysis —
// over a single uniformly-sampled ECG recording and returns the
// merged clinical result. It is a pure function of its inputs: no
// package-level state is read or mutated, so concurrent calls on
// disjoint inputs never interfere.
func Analyze(samples []float64, fs float64, opts Options) (AnalysisResult, error) {
	if fs <= 1 {
		return AnalysisResult{}, fmt.Errorf("ecgcore: sample rate %.3f Hz: %w", fs, ErrBadConfig)
	}
	if len(samples) == 0 {
		return AnalysisResult{}, fmt.Errorf("ecgcore: empty sample buffer: %w", ErrInsufficientData)
	}
	if !allFinite(samples) {
		return AnalysisResult{}, fmt.Errorf("ecgcore: non-finite input sample: %w", ErrBadConfig)
	}

	if opts.Verbose {
		log.Printf("ecgcore: analyzing %d samples at %.2f Hz", len(samples), fs)
	}

	cleaned, filterMetrics, err := preprocess(samples, fs)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("ecgcore: preprocess: %w", err)
	}

	rPeaks, detectionMetrics := detectRPeaks(cleaned, fs)
	if opts.Verbose {
		log.Printf("ecgcore: detected %d R-peaks, avg BPM %.1f", len(rPeaks), detectionMetrics.AvgBPM)
	}

	rhythmLabel, rhythmMetrics := classifyRhythm(rPeaks, fs)
	qrsMetrics := measureQRSWidth(cleaned, rPeaks, fs)
	qtMetrics := measureQT(cleaned, rPeaks, fs)
	hrv := hrvMetrics(rPeaks, fs)

	finalLabel, warnings := interpret(rhythmLabel, qrsMetrics, qtMetrics, hrv, detectionMetrics.AvgBPM)

	result := AnalysisResult{
		CleanedSignal:     cleaned,
		RPeakIndices:      rPeaks,
		SampleRate:        fs,
		NumSamples:        len(samples),
		FilterMetrics:     filterMetrics,
		DetectionMetrics:  detectionMetrics,
		ArrhythmiaMetrics: rhythmMetrics,
		QRSMetrics:        qrsMetrics,
		QTMetrics:         qtMetrics,
		HRVMetrics:        hrv,
		RhythmStatus:      finalLabel,
		ClinicalWarnings:  warnings,
	}

	sanitizeResult(&result)
	return result, nil
}

// sanitizeResult guards against the NumericFailure case: any non-finite
// output field is reset to zero and a warning is appended, rather than
// propagating an error, per the core's non-fatal downstream-failure
// contract.
func sanitizeResult(r *AnalysisResult) {
	var hadFailure bool

	sanitizeFloat := func(f *float64) {
		if math.IsNaN(*f) || math.IsInf(*f, 0) {
			*f = 0
			hadFailure = true
		}
	}

	sanitizeFloat(&r.FilterMetrics.SNRDb)
	sanitizeFloat(&r.FilterMetrics.ConfidenceScore)
	sanitizeFloat(&r.FilterMetrics.SignalStd)

	sanitizeFloat(&r.DetectionMetrics.AvgBPM)
	sanitizeFloat(&r.DetectionMetrics.AvgRRSec)
	sanitizeFloat(&r.DetectionMetrics.RRStdSec)
	sanitizeFloat(&r.DetectionMetrics.FinalThreshold)

	sanitizeFloat(&r.ArrhythmiaMetrics.CV)
	sanitizeFloat(&r.ArrhythmiaMetrics.MeanHR)
	sanitizeFloat(&r.ArrhythmiaMetrics.MeanRRMs)
	sanitizeFloat(&r.ArrhythmiaMetrics.StdRRMs)

	sanitizeFloat(&r.QRSMetrics.MeanQRSMs)
	sanitizeFloat(&r.QRSMetrics.StdQRSMs)

	sanitizeFloat(&r.QTMetrics.MeanQTMs)
	sanitizeFloat(&r.QTMetrics.MeanQTcBazettMs)

	sanitizeFloat(&r.HRVMetrics.SDNNMs)
	sanitizeFloat(&r.HRVMetrics.RMSSDMs)
	sanitizeFloat(&r.HRVMetrics.SDSDMs)
	sanitizeFloat(&r.HRVMetrics.PNN50)
	sanitizeFloat(&r.HRVMetrics.MeanNNMs)
	sanitizeFloat(&r.HRVMetrics.CVPercent)

	for i := range r.CleanedSignal {
		if math.IsNaN(r.CleanedSignal[i]) || math.IsInf(r.CleanedSignal[i], 0) {
			r.CleanedSignal[i] = 0
			hadFailure = true
		}
	}

	if hadFailure {
		r.ClinicalWarnings = append(r.ClinicalWarnings,
			fmt.Sprintf("%v: non-finite metric reset to zero", ErrNumericFailure))
	}
}
