// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package eeg

import (
	"errors"
	"math"
	"testing"
)

// sine builds a test signal as a sum of sinusoids at the given
// frequency/amplitude pairs.
func sine(n int, rate float64, components map[float64]float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / rate
		for freq, amp := range components {
			out[i] += amp * math.Sin(2*math.Pi*freq*t)
		}
	}
	return out
}

func TestValidateRejectsEmptyChannelMap(t *testing.T) {
	sig := RawSignal{Channels: map[string][]float64{}, SamplingRate: 256}
	if err := sig.Validate(); !errors.Is(err, ErrNoChannels) {
		t.Errorf("Validate() = %v, want ErrNoChannels", err)
	}
}

func TestValidateRejectsLengthMismatch(t *testing.T) {
	sig := RawSignal{
		Channels: map[string][]float64{
			"C3": {0.1, 0.2, 0.3},
			"C4": {0.1, 0.2},
		},
		SamplingRate: 256,
	}
	if err := sig.Validate(); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Validate() = %v, want ErrLengthMismatch", err)
	}
}

func TestValidateRejectsBadSamplingRate(t *testing.T) {
	sig := RawSignal{
		Channels:     map[string][]float64{"C3": {0.1, 0.2}},
		SamplingRate: 0,
	}
	if err := sig.Validate(); !errors.Is(err, ErrBadSamplingRate) {
		t.Errorf("Validate() = %v, want ErrBadSamplingRate", err)
	}
}

func TestValidateRejectsEmptyChannel(t *testing.T) {
	sig := RawSignal{
		Channels:     map[string][]float64{"C3": {}},
		SamplingRate: 256,
	}
	if err := sig.Validate(); !errors.Is(err, ErrEmptyChannel) {
		t.Errorf("Validate() = %v, want ErrEmptyChannel", err)
	}
}

func TestConditionPreservesShape(t *testing.T) {
	sig := RawSignal{
		Channels: map[string][]float64{
			"C3": sine(256, 256, map[float64]float64{10: 1.0}),
			"C4": sine(256, 256, map[float64]float64{20: 0.5}),
		},
		SamplingRate: 256,
	}

	out, err := Condition(sig)
	if err != nil {
		t.Fatalf("Condition() error: %v", err)
	}
	if len(out.Channels) != 2 {
		t.Fatalf("Condition() returned %d channels, want 2", len(out.Channels))
	}
	for name, samples := range out.Channels {
		if len(samples) != 256 {
			t.Errorf("channel %q has %d samples, want 256", name, len(samples))
		}
	}
}

func TestConditionRemovesMainsInterference(t *testing.T) {
	// 10 Hz alpha content plus strong 50 Hz powerline noise.
	sig := RawSignal{
		Channels: map[string][]float64{
			"O1": sine(512, 256, map[float64]float64{10: 1.0, 50: 2.0}),
		},
		SamplingRate: 256,
	}

	out, err := Condition(sig)
	if err != nil {
		t.Fatalf("Condition() error: %v", err)
	}

	before, err := ExtractBandPowers(sig)
	if err != nil {
		t.Fatalf("ExtractBandPowers(raw) error: %v", err)
	}
	after, err := ExtractBandPowers(out)
	if err != nil {
		t.Fatalf("ExtractBandPowers(conditioned) error: %v", err)
	}

	// Alpha content survives; the 50 Hz spike (gamma band) is suppressed.
	if after.Alpha < before.Alpha*0.9 {
		t.Errorf("alpha power dropped from %v to %v; conditioning should preserve it",
			before.Alpha, after.Alpha)
	}
	if after.Gamma > before.Gamma*0.01 {
		t.Errorf("gamma power %v after conditioning, want well below raw %v",
			after.Gamma, before.Gamma)
	}
}

func TestConditionIsPure(t *testing.T) {
	sig := RawSignal{
		Channels: map[string][]float64{
			"C3": sine(256, 256, map[float64]float64{12: 1.0, 50: 0.5}),
		},
		SamplingRate: 256,
	}

	first, err := Condition(sig)
	if err != nil {
		t.Fatalf("Condition() error: %v", err)
	}
	second, err := Condition(sig)
	if err != nil {
		t.Fatalf("Condition() error: %v", err)
	}

	for i := range first.Channels["C3"] {
		if first.Channels["C3"][i] != second.Channels["C3"][i] {
			t.Fatalf("Condition() not deterministic at sample %d", i)
		}
	}
}

func TestConditionShortSignalPassesThrough(t *testing.T) {
	samples := []float64{0.1, -0.2, 0.3, -0.4, 0.5}
	sig := RawSignal{
		Channels:     map[string][]float64{"C3": samples},
		SamplingRate: 256,
	}

	out, err := Condition(sig)
	if err != nil {
		t.Fatalf("Condition() error: %v", err)
	}
	for i, v := range out.Channels["C3"] {
		if v != samples[i] {
			t.Fatalf("short signal modified at sample %d: %v != %v", i, v, samples[i])
		}
	}
}
