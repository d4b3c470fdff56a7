// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package eeg provides the signal layer of the neural firewall pipeline.
//
// # Key Types
//
//   - RawSignal: multichannel amplitude samples plus sampling rate
//   - BandPowers: average power of the five canonical EEG bands
//   - FeatureVector: band powers, band ratios, and amplitude statistics
//
// # Key Functions
//
//   - Condition: powerline notch and 0.5-100 Hz passband restriction
//   - Extract: power-spectrum band decomposition and derived features
//
// Conditioning and extraction are pure functions of their input; neither
// keeps cross-call state.
package eeg
