// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package privacy protects neural data with a Laplace-mechanism
// differential privacy engine.
//
// Engine perturbs frequency band powers (and arbitrary numeric field
// maps) with zero-mean Laplace noise whose scale is derived from a
// caller-supplied privacy level in [0,1]: level 0 leans privacy (heavy
// noise), level 1 leans utility (light noise). A deterministic masking
// policy zeroes the subconscious-revealing fields outright under very
// high privacy settings.
//
// Budget carries the service-wide privacy level and accounts cumulative
// epsilon spend under linear composition. It reports but never enforces;
// hard caps are the caller's decision.
package privacy
