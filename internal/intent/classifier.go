// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package intent classifies neural feature vectors as intentional commands,
// subconscious activity, or neutral brain states.
package intent

import (
	"errors"
	"fmt"

	"github.com/jeranaias/neurogate/internal/eeg"
)

// =============================================================================
// INTENT TYPES
// =============================================================================

// Intent is the classified nature of a neural signal.
type Intent string

const (
	// Intentional marks a deliberate command the user meant to issue.
	Intentional Intent = "intentional"

	// Subconscious marks incidental activity the user did not mean to share.
	Subconscious Intent = "subconscious"

	// Neutral marks a brain state with no clear intent either way.
	Neutral Intent = "neutral"
)

// ErrUnknownIntent is returned when decoding an intent string that is not
// one of the three fixed values.
var ErrUnknownIntent = errors.New("intent: unknown intent value")

// ParseIntent decodes an intent string, rejecting unknown values with a
// named error rather than substituting a default.
func ParseIntent(s string) (Intent, error) {
	switch Intent(s) {
	case Intentional, Subconscious, Neutral:
		return Intent(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIntent, s)
}

// Result is a classification outcome: the intent, a confidence in [0,1],
// and a short human-readable rationale.
type Result struct {
	Intent      Intent  `json:"intent_type"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// Classifier maps a feature vector to an intent result. Implementations
// must be pure with respect to their inputs: identical features yield
// identical results.
type Classifier interface {
	Classify(fv eeg.FeatureVector) Result
}
