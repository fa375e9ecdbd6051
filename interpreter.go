package ecgcore

const (
	wideQRSThresholdMs = 120.0
	tachyHRThreshold   = 100.0
	lowHRVThresholdMs  = 50.0
)

// interpret merges rhythm, morphology, and HRV findings into a final
// rhythm label and an ordered list of clinical warnings. Rules are
// applied strictly in the order given; each reads disjoint fields so
// their relative order among themselves does not affect the outcome.
func interpret(rhythmLabel string, qrs QRSMetrics, qt QTMetrics, hrv HRVMetrics, avgBPM float64) (string, []string) {
	label := rhythmLabel
	var warnings []string

	switch {
	case qrs.MeanQRSMs > wideQRSThresholdMs && avgBPM > tachyHRThreshold:
		label = RhythmWideComplexTachy
		warnings = append(warnings, "Wide QRS with tachycardia requires immediate assessment")
	case qrs.MeanQRSMs > wideQRSThresholdMs:
		warnings = append(warnings, qrs.Interpretation)
	}

	if qt.RiskFlag {
		warnings = append(warnings, qt.Interpretation)
	}

	if hrv.SDNNMs > 0 && hrv.SDNNMs < lowHRVThresholdMs {
		warnings = append(warnings, "Low HRV detected - consider cardiac risk assessment")
	}

	return label, warnings
}
