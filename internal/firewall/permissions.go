// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package firewall

import (
	"errors"
	"fmt"
)

// =============================================================================
// PERMISSION TYPES
// =============================================================================

// Permission is one of the fixed neural data access grants.
type Permission string

const (
	// PermMotorIntent exposes deliberate motor commands only.
	PermMotorIntent Permission = "motor_intent"

	// PermFocusLevel exposes attention and concentration metrics.
	PermFocusLevel Permission = "focus_level"

	// PermEmotionalState exposes emotional and stress indicators.
	PermEmotionalState Permission = "emotional_state"

	// PermFullSpectrum exposes the complete neural data set.
	PermFullSpectrum Permission = "full_spectrum"
)

// AllPermissions lists every permission in canonical order.
var AllPermissions = []Permission{
	PermMotorIntent,
	PermFocusLevel,
	PermEmotionalState,
	PermFullSpectrum,
}

// ErrUnknownPermission is returned when decoding a permission string outside
// the fixed enumeration. Unknown values are rejected, never silently mapped
// to a default grant.
var ErrUnknownPermission = errors.New("firewall: unknown permission")

// ParsePermission decodes a permission string.
func ParsePermission(s string) (Permission, error) {
	switch Permission(s) {
	case PermMotorIntent, PermFocusLevel, PermEmotionalState, PermFullSpectrum:
		return Permission(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPermission, s)
}

// RiskLevel is the static risk classification of a permission.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskCritical RiskLevel = "critical"
)

// Info describes a permission for callers deciding whether to grant it.
type Info struct {
	Description string    `json:"description"`
	Risk        RiskLevel `json:"risk_level"`
	DataExposed []string  `json:"data_exposed"`
}

// permissionInfo is the static permission catalog.
var permissionInfo = map[Permission]Info{
	PermMotorIntent: {
		Description: "Basic motor commands (safe)",
		Risk:        RiskLow,
		DataExposed: []string{"Beta band (focus)", "Intentional command detection"},
	},
	PermFocusLevel: {
		Description: "Attention and concentration metrics",
		Risk:        RiskLow,
		DataExposed: []string{"Beta/Alpha ratio", "Focus score"},
	},
	PermEmotionalState: {
		Description: "Emotional and stress indicators",
		Risk:        RiskMedium,
		DataExposed: []string{"Theta band (emotion)", "Alpha band (relaxation)"},
	},
	PermFullSpectrum: {
		Description: "Complete neural data (dangerous!)",
		Risk:        RiskCritical,
		DataExposed: []string{"All frequency bands", "Raw EEG", "Subconscious data"},
	},
}

// Describe returns the catalog entry for a permission.
func Describe(p Permission) (Info, error) {
	info, ok := permissionInfo[p]
	if !ok {
		return Info{}, fmt.Errorf("%w: %q", ErrUnknownPermission, p)
	}
	return info, nil
}

// Catalog returns the full permission catalog keyed by permission name.
func Catalog() map[Permission]Info {
	out := make(map[Permission]Info, len(permissionInfo))
	for p, info := range permissionInfo {
		out[p] = info
	}
	return out
}
