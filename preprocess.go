package ecgcore

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	bandpassOrder    = 4
	bandpassLowHz    = 0.5
	bandpassHighHz   = 40.0
	notchHz          = 60.0
	notchQ           = 30.0
	baselineWindowFr = 0.2 // fraction of fs for the baseline moving-average window
)

// preprocess removes drift, powerline interference, and baseline
// wander from samples and reports a signal-quality estimate. It is a
// pure, length-preserving function.
func preprocess(samples []float64, fs float64) ([]float64, FilterMetrics, error) {
	if fs <= 1 {
		return nil, FilterMetrics{}, ErrBadConfig
	}
	nyquist := fs / 2
	lowNorm := bandpassLowHz / nyquist
	highNorm := bandpassHighHz / nyquist
	if lowNorm <= 0 || lowNorm >= 1 || highNorm <= 0 || highNorm >= 1 {
		return nil, FilterMetrics{}, ErrBadConfig
	}

	windowSamples := roundInt(baselineWindowFr * fs)
	minSamples := maxInt(bandpassOrder*3, windowSamples+1)
	if len(samples) < minSamples {
		return nil, FilterMetrics{}, ErrInsufficientData
	}

	bandpassCoeffs, err := designBandpass(bandpassOrder, bandpassLowHz, bandpassHighHz, fs)
	if err != nil {
		return nil, FilterMetrics{}, err
	}
	bandpassed := filtfilt(bandpassCoeffs, samples)

	notchCoeffs, err := designNotch(notchHz, notchQ, fs)
	if err != nil {
		return nil, FilterMetrics{}, err
	}
	notched := filtfilt(notchCoeffs, bandpassed)

	baseline := movingAverageCentered(notched, windowSamples)
	cleaned := make([]float64, len(notched))
	floats.SubTo(cleaned, notched, baseline)

	noise := make([]float64, len(samples))
	floats.SubTo(noise, samples, cleaned)

	varSignal := popVariance(cleaned)
	varNoise := popVariance(noise)
	var snrDb float64
	if varNoise == 0 {
		snrDb = 100
	} else {
		snrDb = 10 * math.Log10(varSignal/varNoise)
	}
	confidence := clamp((snrDb-5)*5, 0.0, 100.0)

	metrics := FilterMetrics{
		SNRDb:           snrDb,
		ConfidenceScore: confidence,
		SignalStd:       popStd(cleaned),
	}
	return cleaned, metrics, nil
}
