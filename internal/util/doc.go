// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for neurogate.
//
// # Key Types
//
//   - Ring: fixed-capacity append-only buffer with oldest-first eviction,
//     used for the in-process permission audit log and threat log
//
// # Usage
//
//	ring := util.NewRing[AuditEntry](1000)
//	ring.Append(entry)
//	recent := ring.Recent(50)
package util
