package ecgcore

import "math"

// syntheticECG builds a template QRS metronome: N samples at fs Hz,
// a Gaussian-shaped complex of the given width and amplitude placed
// every periodSec seconds, starting offsetSec into the recording.
func syntheticECG(n int, fs, periodSec, widthSec, amplitude, offsetSec float64) []float64 {
	samples := make([]float64, n)
	periodSamples := periodSec * fs
	widthSamples := widthSec * fs
	offsetSamples := offsetSec * fs

	beat := offsetSamples
	for beat < float64(n) {
		for i := 0; i < n; i++ {
			d := float64(i) - beat
			samples[i] += amplitude * math.Exp(-(d*d)/(2*widthSamples*widthSamples))
		}
		beat += periodSamples
	}
	return samples
}

// syntheticECGIrregular places QRS templates at cumulative RR
// intervals drawn round-robin from rrSecs.
func syntheticECGIrregular(n int, fs, widthSec, amplitude float64, rrSecs []float64) []float64 {
	samples := make([]float64, n)
	widthSamples := widthSec * fs

	beat := rrSecs[0] * fs
	idx := 0
	for beat < float64(n) {
		for i := 0; i < n; i++ {
			d := float64(i) - beat
			samples[i] += amplitude * math.Exp(-(d*d)/(2*widthSamples*widthSamples))
		}
		idx = (idx + 1) % len(rrSecs)
		beat += rrSecs[idx] * fs
	}
	return samples
}
