// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for neurogate.
//
// Settings come from TOML (~/.neurogate/config.toml) with built-in
// defaults, NEUROGATE_* environment variable overrides applied last, and
// validation before anything starts.
package config
