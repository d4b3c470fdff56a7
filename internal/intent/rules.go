// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package intent

import (
	"fmt"
	"math"
	"strings"

	"github.com/jeranaias/neurogate/internal/eeg"
)

// =============================================================================
// RULE-BASED CLASSIFIER
// =============================================================================

// RuleClassifier is the default strategy. It scores a feature vector with a
// fixed, ordered set of neurophysiological heuristics:
//
// Intentional markers (positive score): strong beta indicates focus and
// motor planning; a high beta/alpha ratio suggests engagement; moderate
// gamma indicates controlled active processing.
//
// Subconscious markers (negative score): elevated theta suggests emotion or
// memory recall; very high gamma indicates stress; a high theta/alpha ratio
// suggests drowsiness or emotional state; low beta means a lack of focus.
//
// The rule order is fixed because the explanation text reports the first
// two matched reasons in evaluation order.
type RuleClassifier struct{}

// NewRuleClassifier returns the rule-based strategy.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

// scoreRule is a single heuristic: a predicate over the band values, the
// score it contributes, and the reason tag it adds to the explanation.
type scoreRule struct {
	match  func(beta, alpha, theta, gamma, betaAlpha, thetaAlpha float64) bool
	delta  int
	reason string
}

// scoreRules is evaluated in order; every matching rule contributes.
var scoreRules = []scoreRule{
	{func(beta, _, _, _, _, _ float64) bool { return beta > 15 }, 2, "strong beta (focus)"},
	{func(_, _, _, _, betaAlpha, _ float64) bool { return betaAlpha > 1.5 }, 1, "high beta/alpha ratio"},
	{func(_, _, _, gamma, _, _ float64) bool { return gamma > 10 && gamma < 30 }, 1, "controlled gamma"},
	{func(_, _, theta, _, _, _ float64) bool { return theta > 20 }, -2, "elevated theta (emotional)"},
	{func(_, _, _, gamma, _, _ float64) bool { return gamma > 40 }, -2, "high gamma (stress)"},
	{func(_, _, _, _, _, thetaAlpha float64) bool { return thetaAlpha > 1.0 }, -1, "high theta/alpha"},
	{func(beta, _, _, _, _, _ float64) bool { return beta < 10 }, -1, "low beta"},
}

// Classify applies the scoring rules and maps the accumulated score to an
// intent: score >= 2 is intentional, score <= -2 is subconscious, anything
// between is neutral with a fixed 0.6 confidence.
func (c *RuleClassifier) Classify(fv eeg.FeatureVector) Result {
	beta := fv.Bands.Beta
	alpha := fv.Bands.Alpha
	theta := fv.Bands.Theta
	gamma := fv.Bands.Gamma

	betaAlpha := beta / (alpha + eeg.RatioEpsilon)
	thetaAlpha := theta / (alpha + eeg.RatioEpsilon)

	score := 0
	var reasons []string
	for _, rule := range scoreRules {
		if rule.match(beta, alpha, theta, gamma, betaAlpha, thetaAlpha) {
			score += rule.delta
			reasons = append(reasons, rule.reason)
		}
	}

	switch {
	case score >= 2:
		return Result{
			Intent:      Intentional,
			Confidence:  math.Min(0.9, 0.5+0.1*float64(score)),
			Explanation: "Intentional command detected: " + firstReasons(reasons),
		}
	case score <= -2:
		return Result{
			Intent:      Subconscious,
			Confidence:  math.Min(0.9, 0.5+0.1*math.Abs(float64(score))),
			Explanation: "Subconscious activity detected: " + firstReasons(reasons),
		}
	default:
		return Result{
			Intent:      Neutral,
			Confidence:  0.6,
			Explanation: "Neutral brain state, no clear intent",
		}
	}
}

// firstReasons joins the first two matched reasons in evaluation order.
func firstReasons(reasons []string) string {
	if len(reasons) > 2 {
		reasons = reasons[:2]
	}
	return strings.Join(reasons, ", ")
}

var _ Classifier = (*RuleClassifier)(nil)

// String identifies the strategy for logging.
func (c *RuleClassifier) String() string {
	return fmt.Sprintf("rule-based (%d rules)", len(scoreRules))
}
