// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package eeg

import (
	"math"
	"testing"
)

func TestExtractBandPowersNonNegative(t *testing.T) {
	sig := RawSignal{
		Channels: map[string][]float64{
			"C3": sine(512, 256, map[float64]float64{3: 0.4, 10: 0.7, 22: 0.5}),
			"C4": sine(512, 256, map[float64]float64{6: 0.3, 40: 0.2}),
		},
		SamplingRate: 256,
	}

	bands, err := ExtractBandPowers(sig)
	if err != nil {
		t.Fatalf("ExtractBandPowers() error: %v", err)
	}

	for name, power := range bands.Map() {
		if power < 0 {
			t.Errorf("band %q power = %v, want >= 0", name, power)
		}
	}
}

func TestExtractAlphaDominantSignal(t *testing.T) {
	// Pure 10 Hz content lands squarely in the alpha band.
	sig := RawSignal{
		Channels: map[string][]float64{
			"O1": sine(512, 256, map[float64]float64{10: 1.0}),
			"O2": sine(512, 256, map[float64]float64{10: 1.0}),
		},
		SamplingRate: 256,
	}

	bands, err := ExtractBandPowers(sig)
	if err != nil {
		t.Fatalf("ExtractBandPowers() error: %v", err)
	}

	for name, power := range bands.Map() {
		if name == "alpha" {
			continue
		}
		if power >= bands.Alpha {
			t.Errorf("band %q power %v >= alpha power %v for a 10 Hz signal",
				name, power, bands.Alpha)
		}
	}
}

func TestExtractEmptyBandYieldsZero(t *testing.T) {
	// At 8 Hz sampling the Nyquist limit is 4 Hz: the beta and gamma bands
	// have no spectral bins and must report zero power, not an error.
	sig := RawSignal{
		Channels:     map[string][]float64{"C3": sine(32, 8, map[float64]float64{2: 1.0})},
		SamplingRate: 8,
	}

	bands, err := ExtractBandPowers(sig)
	if err != nil {
		t.Fatalf("ExtractBandPowers() error: %v", err)
	}
	if bands.Beta != 0 {
		t.Errorf("beta power = %v, want 0 for an empty band", bands.Beta)
	}
	if bands.Gamma != 0 {
		t.Errorf("gamma power = %v, want 0 for an empty band", bands.Gamma)
	}
}

func TestExtractRatiosAlwaysFinite(t *testing.T) {
	// An all-zero signal drives every band power to zero; the epsilon
	// denominator keeps the ratios finite.
	sig := RawSignal{
		Channels:     map[string][]float64{"C3": make([]float64, 256)},
		SamplingRate: 256,
	}

	fv, err := Extract(sig)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if math.IsNaN(fv.BetaAlphaRatio) || math.IsInf(fv.BetaAlphaRatio, 0) {
		t.Errorf("BetaAlphaRatio = %v, want finite", fv.BetaAlphaRatio)
	}
	if math.IsNaN(fv.GammaBetaRatio) || math.IsInf(fv.GammaBetaRatio, 0) {
		t.Errorf("GammaBetaRatio = %v, want finite", fv.GammaBetaRatio)
	}
}

func TestExtractAmplitudeStatistics(t *testing.T) {
	sig := RawSignal{
		Channels: map[string][]float64{
			"C3": {1, -1, 1, -1},
			"C4": {2, -2, 2, -2},
		},
		SamplingRate: 256,
	}

	fv, err := Extract(sig)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if math.Abs(fv.MeanAmplitude-1.5) > 1e-12 {
		t.Errorf("MeanAmplitude = %v, want 1.5", fv.MeanAmplitude)
	}
	// Population std of {1,-1,1,-1,2,-2,2,-2}: mean 0, variance 2.5.
	want := math.Sqrt(2.5)
	if math.Abs(fv.StdAmplitude-want) > 1e-12 {
		t.Errorf("StdAmplitude = %v, want %v", fv.StdAmplitude, want)
	}
	if fv.NumChannels != 2 {
		t.Errorf("NumChannels = %d, want 2", fv.NumChannels)
	}
}

func TestExtractRejectsInvalidSignal(t *testing.T) {
	sig := RawSignal{Channels: map[string][]float64{}, SamplingRate: 256}
	if _, err := Extract(sig); err == nil {
		t.Fatal("Extract() accepted an empty channel map")
	}
}
