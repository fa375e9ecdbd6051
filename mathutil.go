package ecgcore

import (
	"math"
	"sort"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/stat"
)

// clamp restricts v to the closed interval [lo, hi].
func clamp[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// mean returns the arithmetic mean of xs, or 0 for an empty slice.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// popVariance returns the population variance (divide by n, no
// Bessel's correction).
func popVariance(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return ss / float64(n)
}

// popStd returns the population standard deviation (ddof = 0).
func popStd(xs []float64) float64 {
	return math.Sqrt(popVariance(xs))
}

// sampleStd returns the sample standard deviation with Bessel's
// correction (ddof = 1). For fewer than 2 samples it returns 0.
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// percentile returns the p-th percentile (0-100) of xs using linear
// interpolation between closest ranks, matching the common "linear"
// interpolation method. xs is not mutated.
func percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	// stat.LinInterp interpolates at the 1-based rank q*n; mapping p onto
	// rank 1+(n-1)*p/100 gives the "linear" closest-ranks percentile.
	n := float64(len(sorted))
	q := (1 + (n-1)*p/100) / n
	return stat.Quantile(q, stat.LinInterp, sorted, nil)
}

// diffFloat returns successive differences xs[i+1]-xs[i].
func diffFloat(xs []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	out := make([]float64, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out[i-1] = xs[i] - xs[i-1]
	}
	return out
}

// diffInt returns successive differences of an increasing index
// sequence, as float64 (used for RR-interval style computations).
func diffInt(xs []int) []float64 {
	if len(xs) < 2 {
		return nil
	}
	out := make([]float64, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out[i-1] = float64(xs[i] - xs[i-1])
	}
	return out
}

// argmax returns the index of the maximum value in xs. Ties resolve
// to the lowest index (strict greater-than comparison).
func argmax(xs []float64) int {
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}
	return best
}

// argmin returns the index of the minimum value in xs. Ties resolve
// to the lowest index.
func argmin(xs []float64) int {
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] < xs[best] {
			best = i
		}
	}
	return best
}

// argmaxRange returns the index (relative to the start of xs, i.e. an
// absolute index when xs is a sub-slice taken at offset 0) of the
// maximum value within xs[lo:hi], resolved to the lowest index on
// ties, expressed as an absolute index into the original slice.
func argmaxRange(xs []float64, lo, hi int) int {
	best := lo
	for i := lo + 1; i < hi; i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}
	return best
}

// roundInt rounds a float64 to the nearest integer using round-half-away
// from zero, matching the spec's round(...) notation.
func roundInt(x float64) int {
	return int(math.Round(x))
}

// movingAverageCentered computes a centered moving average with the
// given odd-or-even window length. Samples beyond the signal edges are
// extended with the nearest in-bounds value (clamped indices), per the
// Preprocessor's baseline-wander removal contract.
func movingAverageCentered(xs []float64, window int) []float64 {
	n := len(xs)
	out := make([]float64, n)
	if window < 1 {
		copy(out, xs)
		return out
	}
	half := window / 2
	for i := 0; i < n; i++ {
		var sum float64
		for k := -half; k < window-half; k++ {
			idx := i + k
			if idx < 0 {
				idx = 0
			} else if idx >= n {
				idx = n - 1
			}
			sum += xs[idx]
		}
		out[i] = sum / float64(window)
	}
	return out
}

// convCenteredZeroPad computes a centered rectangular-kernel moving
// sum, divided by the kernel length, treating samples beyond the
// signal edges as zero (equivalent to a "same"-mode convolution with a
// boxcar kernel). Used by the QRS detector's moving-window integrator.
func convCenteredZeroPad(xs []float64, window int) []float64 {
	n := len(xs)
	out := make([]float64, n)
	if window < 1 {
		copy(out, xs)
		return out
	}
	half := window / 2
	for i := 0; i < n; i++ {
		var sum float64
		for k := -half; k < window-half; k++ {
			idx := i + k
			if idx >= 0 && idx < n {
				sum += xs[idx]
			}
		}
		out[i] = sum / float64(window)
	}
	return out
}

// lastN returns the final n elements of xs (or all of xs if shorter).
func lastN(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}

// allFinite reports whether every element of xs is finite.
func allFinite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
