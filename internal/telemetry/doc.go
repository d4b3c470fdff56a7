// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry tracks per-application usage of the neural pipeline:
// request counts, cumulative privacy spend, and a one-second sliding
// window request frequency that feeds threat detection.
package telemetry
