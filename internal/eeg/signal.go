// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package eeg provides signal types, conditioning, and spectral feature
// extraction for multichannel neural recordings.
package eeg

import (
	"errors"
	"fmt"
	"sort"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrNoChannels is returned when a signal carries no channels at all.
var ErrNoChannels = errors.New("eeg: signal has no channels")

// ErrEmptyChannel is returned when a channel carries zero samples.
var ErrEmptyChannel = errors.New("eeg: channel has no samples")

// ErrLengthMismatch is returned when channels disagree on sample count.
var ErrLengthMismatch = errors.New("eeg: channels have mismatched sample counts")

// ErrBadSamplingRate is returned for a non-positive sampling rate.
var ErrBadSamplingRate = errors.New("eeg: sampling rate must be positive")

// =============================================================================
// FREQUENCY BANDS
// =============================================================================

// Band describes a canonical EEG frequency band with inclusive bounds in Hz.
type Band struct {
	Name string
	Low  float64
	High float64
}

// CanonicalBands lists the five canonical EEG bands in ascending frequency
// order: delta, theta, alpha, beta, gamma.
var CanonicalBands = []Band{
	{Name: "delta", Low: 0.5, High: 4},
	{Name: "theta", Low: 4, High: 8},
	{Name: "alpha", Low: 8, High: 13},
	{Name: "beta", Low: 13, High: 30},
	{Name: "gamma", Low: 30, High: 100},
}

// RatioEpsilon stabilizes ratio denominators so band ratios stay finite
// even when a band power is exactly zero.
const RatioEpsilon = 1e-10

// =============================================================================
// RAW SIGNAL
// =============================================================================

// RawSignal is a multichannel recording: channel name to an ordered sequence
// of amplitude samples, all channels equal length, plus the sampling rate.
//
// Any producer that satisfies Validate is an acceptable signal source,
// including the synthetic generator in internal/synth.
type RawSignal struct {
	Channels     map[string][]float64
	SamplingRate float64
}

// Validate checks the RawSignal contract: a non-empty channel set, every
// channel non-empty and of equal length, and a positive sampling rate.
func (s RawSignal) Validate() error {
	if len(s.Channels) == 0 {
		return ErrNoChannels
	}
	if s.SamplingRate <= 0 {
		return fmt.Errorf("%w: got %v", ErrBadSamplingRate, s.SamplingRate)
	}

	want := -1
	for name, samples := range s.Channels {
		if len(samples) == 0 {
			return fmt.Errorf("%w: channel %q", ErrEmptyChannel, name)
		}
		if want == -1 {
			want = len(samples)
			continue
		}
		if len(samples) != want {
			return fmt.Errorf("%w: channel %q has %d samples, want %d",
				ErrLengthMismatch, name, len(samples), want)
		}
	}
	return nil
}

// SampleCount returns the per-channel sample count, or 0 for an empty signal.
func (s RawSignal) SampleCount() int {
	for _, samples := range s.Channels {
		return len(samples)
	}
	return 0
}

// ChannelNames returns the channel names in sorted order for deterministic
// iteration.
func (s RawSignal) ChannelNames() []string {
	names := make([]string, 0, len(s.Channels))
	for name := range s.Channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// BAND POWERS AND FEATURES
// =============================================================================

// BandPowers holds the average spectral power of the five canonical bands.
// All values are non-negative, including after any privacy transform.
type BandPowers struct {
	Delta float64 `json:"delta"`
	Theta float64 `json:"theta"`
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

// Map returns the band powers keyed by canonical band name.
func (b BandPowers) Map() map[string]float64 {
	return map[string]float64{
		"delta": b.Delta,
		"theta": b.Theta,
		"alpha": b.Alpha,
		"beta":  b.Beta,
		"gamma": b.Gamma,
	}
}

// BandPowersFromMap builds BandPowers from a name-keyed map. Missing bands
// default to zero.
func BandPowersFromMap(m map[string]float64) BandPowers {
	return BandPowers{
		Delta: m["delta"],
		Theta: m["theta"],
		Alpha: m["alpha"],
		Beta:  m["beta"],
		Gamma: m["gamma"],
	}
}

// FeatureVector is the feature set consumed by the intent classifier:
// band powers, epsilon-stabilized band ratios, and amplitude statistics
// computed over all channels combined. It is ephemeral pipeline state and
// is never exposed to applications directly.
type FeatureVector struct {
	Bands          BandPowers
	BetaAlphaRatio float64
	GammaBetaRatio float64
	MeanAmplitude  float64
	StdAmplitude   float64
	NumChannels    int
}
