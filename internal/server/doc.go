// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server exposes the neurogate REST API: signal processing,
// synthetic EEG generation, permission management, threat reporting, and
// privacy level control, wrapped in recovery, security-header, CORS,
// rate-limit, and logging middleware.
//
// Every signal response has already passed through the firewall pipeline;
// raw spectral values never leave this package.
package server
