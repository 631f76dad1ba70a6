package ft8

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

/*
 * Noise-floor baseline estimation, used by snr.go to separate a candidate's
 * signal power from the spectrum's ambient noise: fit a low-order
 * polynomial to the lower envelope of the dB spectrum (the segment-wise
 * 10th percentile), so a few strong signals elsewhere in the passband
 * don't drag the estimated floor upward.
 */

const (
	baselineSegments       = 10   // number of passband segments the envelope is sampled over
	baselinePercentile     = 10   // lower-envelope percentile within each segment
	baselinePolyOrder      = 5    // polynomial terms fitted to the envelope
	baselineCalibrationDB  = 0.65 // matches WSJT-X's baseline-to-noise-floor calibration offset
	baselineMinDB          = -120.0
)

// noiseFloorBaseline fits a degree-(baselinePolyOrder-1) polynomial to the
// lower envelope of s[nfa:nfb+1] (converted to dB) and evaluates it across
// the same range, giving a smooth per-bin noise-floor estimate.
func noiseFloorBaseline(s []float64, nfa, nfb int) []float64 {
	npts := len(s)
	sbase := make([]float64, npts)

	if nfb <= nfa || nfa < 0 || nfb >= npts {
		return sbase
	}

	sDB := toDB(s, nfa, nfb)
	xPoints, yPoints := lowerEnvelope(sDB, nfa, nfb)
	coeffs := fitPolynomial(xPoints, yPoints, baselinePolyOrder)

	i0 := (nfb - nfa + 1) / 2
	for i := nfa; i <= nfb; i++ {
		sbase[i] = evalPoly(coeffs, float64(i-i0)) + baselineCalibrationDB
	}
	return sbase
}

// toDB converts s[nfa:nfb+1] to dB, floored at baselineMinDB for non-positive
// power values (a silent-bin reading, not decibels of anything real).
func toDB(s []float64, nfa, nfb int) []float64 {
	sDB := make([]float64, len(s))
	for i := nfa; i <= nfb; i++ {
		if s[i] > 0 {
			sDB[i] = 10.0 * math.Log10(s[i])
		} else {
			sDB[i] = baselineMinDB
		}
	}
	return sDB
}

// lowerEnvelope splits [nfa,nfb] into baselineSegments equal-width segments
// and keeps every point at or below that segment's baselinePercentile,
// returning them as (x, y) pairs with x measured from the passband's
// midpoint so the polynomial fit below is centered.
func lowerEnvelope(sDB []float64, nfa, nfb int) (x, y []float64) {
	segLen := (nfb - nfa + 1) / baselineSegments
	if segLen < 1 {
		segLen = 1
	}
	i0 := (nfb - nfa + 1) / 2

	for seg := 0; seg < baselineSegments; seg++ {
		ja := nfa + seg*segLen
		jb := ja + segLen - 1
		if jb > nfb {
			jb = nfb
		}

		floor := percentile(sDB[ja:jb+1], baselinePercentile)
		for i := ja; i <= jb; i++ {
			if sDB[i] <= floor {
				x = append(x, float64(i-i0))
				y = append(y, sDB[i])
			}
		}
	}
	return x, y
}

// percentile returns the pctile-th percentile of data (0 <= pctile <= 100)
// by nearest-rank on a sorted copy.
func percentile(data []float64, pctile int) float64 {
	if len(data) == 0 {
		return 0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	idx := (len(sorted) * pctile) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

// fitPolynomial least-squares-fits a degree-(nterms-1) polynomial
// y = a0 + a1*x + ... + a(n-1)*x^(n-1) to (x, y), solving the normal
// equations A^T*A * coeffs = A^T*y via gonum's LU-backed solver rather than
// a hand-rolled elimination routine.
func fitPolynomial(x, y []float64, nterms int) []float64 {
	if len(x) != len(y) || len(x) == 0 {
		return make([]float64, nterms)
	}
	if nterms > 10 {
		nterms = 10 // guard against an ill-conditioned system
	}

	n := len(x)
	vandermonde := mat.NewDense(n, nterms, nil)
	for i := 0; i < n; i++ {
		xi := 1.0
		for j := 0; j < nterms; j++ {
			vandermonde.Set(i, j, xi)
			xi *= x[i]
		}
	}
	target := mat.NewVecDense(n, y)

	var ata mat.Dense
	ata.Mul(vandermonde.T(), vandermonde)
	var aty mat.VecDense
	aty.MulVec(vandermonde.T(), target)

	var coeffs mat.VecDense
	if err := coeffs.SolveVec(&ata, &aty); err != nil {
		return make([]float64, nterms)
	}

	out := make([]float64, nterms)
	for i := 0; i < nterms; i++ {
		out[i] = coeffs.AtVec(i)
	}
	return out
}

// evalPoly evaluates coeffs (lowest order first) at t via Horner's method.
func evalPoly(coeffs []float64, t float64) float64 {
	v := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		v = v*t + coeffs[i]
	}
	return v
}
