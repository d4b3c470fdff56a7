// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package threat detects malicious access patterns against neural data.
//
// Detector evaluates three independent heuristics per access: requesting
// the full spectrum, hammering the service faster than ten requests per
// second, and reaching for emotional data without any motor-intent
// functionality to justify it. Every alert gets a unique id, lands in a
// bounded append-only log, and carries a mitigated flag that detection
// itself never sets; remediation belongs to an external operator.
package threat
