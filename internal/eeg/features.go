// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package eeg

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// =============================================================================
// FEATURE EXTRACTION
// =============================================================================

// Extract computes the spectral feature vector for a signal.
//
// For each channel the power spectrum (squared magnitude of the real FFT)
// is computed; for each canonical band the power of spectral bins whose
// frequency falls inside the band's inclusive range is averaged, and the
// per-channel band powers are then averaged across all channels. A band
// with no matching bins contributes zero power rather than an error.
//
// Ratios use an epsilon-stabilized denominator so they are always finite,
// and the amplitude statistics are computed over all channels combined.
func Extract(sig RawSignal) (FeatureVector, error) {
	if err := sig.Validate(); err != nil {
		return FeatureVector{}, err
	}

	bands, err := ExtractBandPowers(sig)
	if err != nil {
		return FeatureVector{}, err
	}

	// Amplitude statistics over the concatenation of all channels.
	all := make([]float64, 0, sig.SampleCount()*len(sig.Channels))
	for _, name := range sig.ChannelNames() {
		all = append(all, sig.Channels[name]...)
	}
	absSum := 0.0
	for _, v := range all {
		absSum += math.Abs(v)
	}
	mean := stat.Mean(all, nil)
	// Population standard deviation (divisor N, not N-1).
	variance := stat.MomentAbout(2, all, mean, nil)

	return FeatureVector{
		Bands:          bands,
		BetaAlphaRatio: bands.Beta / (bands.Alpha + RatioEpsilon),
		GammaBetaRatio: bands.Gamma / (bands.Beta + RatioEpsilon),
		MeanAmplitude:  absSum / float64(len(all)),
		StdAmplitude:   math.Sqrt(variance),
		NumChannels:    len(sig.Channels),
	}, nil
}

// ExtractBandPowers computes the five canonical band powers averaged across
// all channels of the signal.
func ExtractBandPowers(sig RawSignal) (BandPowers, error) {
	if err := sig.Validate(); err != nil {
		return BandPowers{}, err
	}

	n := sig.SampleCount()
	fft := fourier.NewFFT(n)

	sums := make([]float64, len(CanonicalBands))
	for _, samples := range sig.Channels {
		coeffs := fft.Coefficients(nil, samples)

		power := make([]float64, len(coeffs))
		for i, c := range coeffs {
			mag := cmplx.Abs(c)
			power[i] = mag * mag
		}

		for bi, band := range CanonicalBands {
			sum, count := 0.0, 0
			for i := range power {
				freq := fft.Freq(i) * sig.SamplingRate
				if freq >= band.Low && freq <= band.High {
					sum += power[i]
					count++
				}
			}
			if count > 0 {
				sums[bi] += sum / float64(count)
			}
		}
	}

	nc := float64(len(sig.Channels))
	m := make(map[string]float64, len(CanonicalBands))
	for bi, band := range CanonicalBands {
		m[band.Name] = sums[bi] / nc
	}
	return BandPowersFromMap(m), nil
}
