package ecgcore

const (
	qrsSegPreFr       = 0.05
	qrsSegPostFr      = 0.08
	qrsFlatDeltaMv    = 0.005
	qrsMinWidthMs     = 40.0
	qrsMaxWidthMs     = 200.0
	qrsWideMs         = 120.0
	qrsNarrowMs       = 60.0
	qrsDefaultMeanMs  = 80.0
)

// measureQRSWidth estimates QRS-complex duration around each R-peak by
// scanning outward from the peak for the onset/offset flattening
// points, retaining only physiologically plausible widths.
func measureQRSWidth(cleaned []float64, rPeaks []int, fs float64) QRSMetrics {
	n := len(cleaned)
	preSamples := roundInt(qrsSegPreFr * fs)
	postSamples := roundInt(qrsSegPostFr * fs)

	var widths []float64
	for _, r := range rPeaks {
		segStart := maxInt(0, r-preSamples)
		segEnd := minInt(n, r+postSamples)
		seg := cleaned[segStart:segEnd]
		if len(seg) < 5 {
			continue
		}
		rL := r - segStart

		qOnset := findQOnset(seg, rL)
		sOffset := findSOffset(seg, rL)

		widthMs := float64(sOffset-qOnset) * 1000 / fs
		if widthMs > qrsMinWidthMs && widthMs < qrsMaxWidthMs {
			widths = append(widths, widthMs)
		}
	}

	if len(widths) == 0 {
		return QRSMetrics{MeanQRSMs: qrsDefaultMeanMs, StdQRSMs: 0, Interpretation: "Could not detect"}
	}

	meanWidth := mean(widths)
	stdWidth := popStd(widths)
	var interp string
	switch {
	case meanWidth >= qrsWideMs:
		interp = "Wide QRS (BBB/Ventricular)"
	case meanWidth <= qrsNarrowMs:
		interp = "Narrow (Normal)"
	default:
		interp = "Normal"
	}
	return QRSMetrics{MeanQRSMs: meanWidth, StdQRSMs: stdWidth, Interpretation: interp}
}

// findQOnset scans backward from the R-peak for the first point where
// the sample-to-sample change flattens below qrsFlatDeltaMv, starting
// only once at least two samples of margin remain before rL.
func findQOnset(seg []float64, rL int) int {
	for i := rL; i >= 1; i-- {
		if i < rL-2 && absF(seg[i]-seg[i-1]) < qrsFlatDeltaMv {
			return i
		}
	}
	return 0
}

// findSOffset locates the S trough after the R-peak, then scans
// forward for the first flattening point.
func findSOffset(seg []float64, rL int) int {
	sLocal := argmin(seg[rL:])
	sIdx := rL + sLocal
	for i := sIdx; i < len(seg)-1; i++ {
		if absF(seg[i+1]-seg[i]) < qrsFlatDeltaMv {
			return i
		}
	}
	return len(seg) - 1
}

func absF(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
