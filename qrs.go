package ecgcore

import "gonum.org/v1/gonum/floats"

const (
	qrsBandOrder         = 2
	qrsBandLowHz         = 5.0
	qrsBandHighHz        = 15.0
	integrationWindowFr  = 0.120
	refractoryFr         = 0.2
	relocationWindowFr   = 0.08
	amplitudeGateFactor  = 0.5
	initialThresholdPctl = 98.0
	initialThresholdMul  = 0.6
	thresholdUpdateMul   = 0.40
	peakHistoryDepth     = 8
)

// detectRPeaks runs the Pan-Tompkins cascade (bandpass, derivative,
// square, integrate, adaptive threshold) over the cleaned signal and
// returns the accepted R-peak sample indices. It never fails: too
// short a signal to filter yields an empty result.
func detectRPeaks(cleaned []float64, fs float64) ([]int, DetectionMetrics) {
	n := len(cleaned)
	qrsCoeffs, err := designBandpass(qrsBandOrder, qrsBandLowHz, qrsBandHighHz, fs)
	if err != nil {
		return nil, DetectionMetrics{}
	}
	minSamples := 3*maxInt(len(qrsCoeffs.A), len(qrsCoeffs.B)) + 1
	if n < minSamples {
		return nil, DetectionMetrics{}
	}

	filtered := filtfilt(qrsCoeffs, cleaned)

	derivative := fivePointDerivative(filtered, fs)

	squared := make([]float64, n)
	floats.MulTo(squared, derivative, derivative)

	integrationWindow := roundInt(integrationWindowFr * fs)
	integrated := convCenteredZeroPad(squared, integrationWindow)

	signalStd := popStd(cleaned)
	refractory := roundInt(refractoryFr * fs)
	relocationWindow := roundInt(relocationWindowFr * fs)

	threshold := initialThresholdMul * percentile(integrated, initialThresholdPctl)

	var rPeaks []int
	var signalPeaks, noisePeaks []float64
	lastPeak := -1

	for i := 1; i < n-1; i++ {
		if !(integrated[i] > integrated[i-1] && integrated[i] > integrated[i+1]) {
			continue // not a strict local maximum: not a candidate
		}

		if integrated[i] > threshold && (lastPeak < 0 || i-lastPeak > refractory) {
			lo := maxInt(0, i-relocationWindow)
			hi := minInt(n, i+relocationWindow)
			actual := argmaxRange(cleaned, lo, hi)

			if cleaned[actual] > amplitudeGateFactor*signalStd {
				rPeaks = append(rPeaks, actual)
				signalPeaks = append(signalPeaks, integrated[i])

				noiseLevel := 0.0
				if len(noisePeaks) > 0 {
					noiseLevel = mean(lastN(noisePeaks, peakHistoryDepth))
				}
				signalLevel := mean(lastN(signalPeaks, peakHistoryDepth))
				threshold = noiseLevel + thresholdUpdateMul*(signalLevel-noiseLevel)

				lastPeak = i
			}
			continue
		}

		if integrated[i] <= threshold {
			noisePeaks = append(noisePeaks, integrated[i])
		}
	}

	metrics := detectionMetricsFrom(rPeaks, fs, threshold)
	return rPeaks, metrics
}

// fivePointDerivative applies the Pan-Tompkins derivative filter; the
// two samples nearest each boundary are left at zero.
func fivePointDerivative(x []float64, fs float64) []float64 {
	n := len(x)
	d := make([]float64, n)
	for i := 2; i <= n-3; i++ {
		d[i] = (-x[i-2] - 2*x[i-1] + 2*x[i+1] + x[i+2]) * fs / 8
	}
	return d
}

func detectionMetricsFrom(rPeaks []int, fs, finalThreshold float64) DetectionMetrics {
	if len(rPeaks) < 2 {
		return DetectionMetrics{
			NumPeaks:       len(rPeaks),
			AvgBPM:         0,
			FinalThreshold: finalThreshold,
		}
	}
	rr := diffInt(rPeaks)
	for i := range rr {
		rr[i] /= fs
	}
	meanRR := mean(rr)
	return DetectionMetrics{
		NumPeaks:       len(rPeaks),
		AvgBPM:         60 / meanRR,
		AvgRRSec:       meanRR,
		RRStdSec:       popStd(rr),
		FinalThreshold: finalThreshold,
	}
}
