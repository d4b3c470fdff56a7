// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package firewall gates application access to neural data.
//
// A fixed enumeration of four permissions (motor_intent, focus_level,
// emotional_state, full_spectrum) carries static risk classifications and
// field-exposure policies. Gate owns the per-application grant table and
// the bounded audit ring: grants and revokes are idempotent, audited only
// when they change state, and safe under concurrent callers.
//
// Filter enforces data minimization with a strict precedence: unknown
// applications get a default-deny motor-intent stub, granted permissions
// add their fields independently, and full_spectrum overrides everything
// with the complete unfiltered data set.
package firewall
