// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package eeg

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// =============================================================================
// SIGNAL CONDITIONING
// =============================================================================

// Conditioning parameters. The passband keeps the physiologically relevant
// 0.5-100 Hz range; the notches suppress mains interference at 50 Hz and
// 60 Hz (±1 Hz around each).
const (
	PassbandLow  = 0.5
	PassbandHigh = 100.0

	notchHalfWidth = 1.0
)

// mainsFrequencies are the powerline frequencies removed by the notch step.
var mainsFrequencies = []float64{50, 60}

// MinConditionSamples is the minimum per-channel sample count for spectral
// conditioning. POLICY: signals shorter than this pass through Condition
// unmodified rather than failing; the spectral resolution of such short
// windows is too coarse for the notch to be meaningful, and downstream
// extraction still operates on whatever content is present.
const MinConditionSamples = 16

// Condition removes powerline interference and out-of-band content from a
// raw signal. The channel set and per-channel sample counts are preserved.
//
// Conditioning is performed in the frequency domain: each channel is
// transformed with a real FFT, coefficients outside the 0.5-100 Hz passband
// or inside a mains notch are zeroed, and the channel is reconstructed with
// the inverse transform. The function is pure: output depends only on the
// input samples and the fixed filter parameters above.
func Condition(sig RawSignal) (RawSignal, error) {
	if err := sig.Validate(); err != nil {
		return RawSignal{}, err
	}

	n := sig.SampleCount()
	out := RawSignal{
		Channels:     make(map[string][]float64, len(sig.Channels)),
		SamplingRate: sig.SamplingRate,
	}

	if n < MinConditionSamples {
		// Short-window pass-through policy (see MinConditionSamples).
		for name, samples := range sig.Channels {
			cp := make([]float64, len(samples))
			copy(cp, samples)
			out.Channels[name] = cp
		}
		return out, nil
	}

	fft := fourier.NewFFT(n)
	for name, samples := range sig.Channels {
		coeffs := fft.Coefficients(nil, samples)
		for i := range coeffs {
			freq := fft.Freq(i) * sig.SamplingRate
			if !passes(freq) {
				coeffs[i] = 0
			}
		}

		restored := fft.Sequence(nil, coeffs)
		inv := 1 / float64(n)
		for i := range restored {
			restored[i] *= inv
		}
		out.Channels[name] = restored
	}

	return out, nil
}

// passes reports whether a spectral component at freq survives conditioning.
func passes(freq float64) bool {
	if freq < PassbandLow || freq > PassbandHigh {
		return false
	}
	for _, mains := range mainsFrequencies {
		if freq >= mains-notchHalfWidth && freq <= mains+notchHalfWidth {
			return false
		}
	}
	return true
}
