// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pipeline orchestrates the neural firewall: raw EEG in,
// privacy-protected and permission-minimized data out, with threat
// detection evaluated against the requesting application's behavior
// along the way. Each run is synchronous and single-pass; persistent
// state belongs to the injected permission gate, threat detector,
// privacy budget, and usage tracker.
package pipeline
