package ecgcore

import "math"

const (
	tSearchStartFr = 0.04
	tSearchEndFr   = 0.45
	tTangentFr     = 0.1
	qOnsetBackFr   = 0.03
	qtMinMs        = 200.0
	qtMaxMs        = 600.0
	qtcRiskMs      = 470.0
	qtcNormalMs    = 450.0
	qtcProlongedMs = 500.0
)

// measureQT estimates the QT interval between each consecutive R-peak
// pair using the tangent method for T-wave offset, and applies
// Bazett's correction using the mean RR interval.
func measureQT(cleaned []float64, rPeaks []int, fs float64) QTMetrics {
	n := len(cleaned)
	tStartOffset := roundInt(tSearchStartFr * fs)
	tEndOffset := roundInt(tSearchEndFr * fs)
	tangentSamples := roundInt(tTangentFr * fs)
	qBackSamples := roundInt(qOnsetBackFr * fs)

	var qtList []float64
	for i := 0; i+1 < len(rPeaks); i++ {
		rI := rPeaks[i]
		tStart := rI + tStartOffset
		tEnd := rI + tEndOffset
		if tEnd > n || tStart >= tEnd {
			continue
		}
		window := cleaned[tStart:tEnd]
		tPeak := tStart + argmax(window)

		segEnd := minInt(n, tPeak+tangentSamples)
		seg := cleaned[tPeak:segEnd]
		if len(seg) < 2 {
			continue
		}
		slopes := diffFloat(seg)
		kOff := argmin(slopes)
		maxSlope := slopes[kOff]
		if maxSlope == 0 {
			continue
		}

		crossingIdx := tPeak + kOff
		tEndPoint := float64(crossingIdx) - cleaned[crossingIdx]/maxSlope
		qStart := float64(rI - qBackSamples)

		qtMs := (tEndPoint - qStart) * 1000 / fs
		if qtMs > qtMinMs && qtMs < qtMaxMs {
			qtList = append(qtList, qtMs)
		}
	}

	meanQT := 0.0
	if len(qtList) > 0 {
		meanQT = mean(qtList)
	}

	meanRRSec := 1.0
	if len(rPeaks) >= 2 {
		rr := diffInt(rPeaks)
		for i := range rr {
			rr[i] /= fs
		}
		meanRRSec = mean(rr)
	}

	qtc := meanQT / math.Sqrt(meanRRSec)
	riskFlag := qtc > qtcRiskMs

	var interp string
	switch {
	case qtc < qtcNormalMs:
		interp = "Normal"
	case qtc < qtcProlongedMs:
		interp = "Prolonged QTc"
	default:
		interp = "High Risk (Long QT)"
	}

	return QTMetrics{
		MeanQTMs:        meanQT,
		MeanQTcBazettMs: qtc,
		RiskFlag:        riskFlag,
		Interpretation:  interp,
	}
}
