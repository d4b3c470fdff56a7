// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package synth generates synthetic multi-channel EEG without hardware.
//
// Each brain state (focused, relaxed, stressed, neutral) is a fixed sum
// of sinusoids with Gaussian measurement noise, sampled on 10-20 system
// channel names. The output honors the same raw-signal contract as a
// real headset, so generated data feeds the pipeline unmodified.
package synth
