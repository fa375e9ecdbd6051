package ecgcore

import "math"

const (
	nnMinMs        = 300.0
	nnMaxMs        = 1500.0
	pnn50ThreshMs  = 50.0
	sdnnLowMs      = 20.0
	sdnnHighMs     = 100.0
)

// hrvMetrics computes time-domain heart-rate variability statistics
// from R-peak timing, rejecting ectopic/noise RR intervals before
// computing SDNN, RMSSD, SDSD, and pNN50.
func hrvMetrics(rPeaks []int, fs float64) HRVMetrics {
	if len(rPeaks) < 3 {
		return HRVMetrics{Interpretation: "Insufficient data"}
	}

	rrMs := diffInt(rPeaks)
	for i := range rrMs {
		rrMs[i] = rrMs[i] * 1000 / fs
	}

	var nn []float64
	for _, v := range rrMs {
		if v > nnMinMs && v < nnMaxMs {
			nn = append(nn, v)
		}
	}
	ectopicRemoved := len(rrMs) - len(nn)

	if len(nn) < 2 {
		return HRVMetrics{
			NNCount:        len(nn),
			EctopicRemoved: ectopicRemoved,
			Interpretation: "High noise level - unstable RR",
		}
	}

	sdnn := sampleStd(nn)
	diffNN := diffFloat(nn)
	sdsd := popStd(diffNN)

	var sumSq float64
	for _, d := range diffNN {
		sumSq += d * d
	}
	rmssd := 0.0
	if len(diffNN) > 0 {
		rmssd = math.Sqrt(sumSq / float64(len(diffNN)))
	}

	var over50 int
	for _, d := range diffNN {
		if absF(d) > pnn50ThreshMs {
			over50++
		}
	}
	pnn50 := 0.0
	if len(diffNN) > 0 {
		pnn50 = 100 * float64(over50) / float64(len(diffNN))
	}

	meanNN := mean(nn)
	cvPercent := 0.0
	if meanNN != 0 {
		cvPercent = 100 * sdnn / meanNN
	}

	var interp string
	switch {
	case sdnn < sdnnLowMs:
		interp = "Low HRV (Reduced variability)"
	case sdnn < sdnnHighMs:
		interp = "Normal range for short-term recording"
	default:
		interp = "High Variability"
	}

	return HRVMetrics{
		SDNNMs:         sdnn,
		RMSSDMs:        rmssd,
		SDSDMs:         sdsd,
		PNN50:          pnn50,
		MeanNNMs:       meanNN,
		CVPercent:      cvPercent,
		NNCount:        len(nn),
		EctopicRemoved: ectopicRemoved,
		Interpretation: interp,
	}
}
