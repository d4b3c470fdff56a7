// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package intent

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/jeranaias/neurogate/internal/eeg"
)

// =============================================================================
// MODEL-BASED CLASSIFIER
// =============================================================================

// modelFeatureOrder is the fixed input order of the inference artifact.
var modelFeatureOrder = []string{
	"delta", "theta", "alpha", "beta", "gamma",
	"beta_alpha_ratio", "gamma_beta_ratio",
}

// classLabels is the fixed class-id to intent mapping of the artifact.
var classLabels = map[int]Intent{
	0: Intentional,
	1: Subconscious,
	2: Neutral,
}

// ErrBadArtifact is returned when an inference artifact fails validation.
var ErrBadArtifact = errors.New("intent: invalid model artifact")

// artifact is the on-disk inference model: one weight row plus bias per
// class over the fixed feature order. Class scores are softmaxed into
// probabilities at inference time.
type artifact struct {
	Version  int         `json:"version"`
	Features []string    `json:"features"`
	Weights  [][]float64 `json:"weights"`
	Bias     []float64   `json:"bias"`
}

func (a *artifact) validate() error {
	if a.Version != 1 {
		return fmt.Errorf("%w: unsupported version %d", ErrBadArtifact, a.Version)
	}
	if len(a.Features) != len(modelFeatureOrder) {
		return fmt.Errorf("%w: expected %d features, got %d",
			ErrBadArtifact, len(modelFeatureOrder), len(a.Features))
	}
	for i, name := range modelFeatureOrder {
		if a.Features[i] != name {
			return fmt.Errorf("%w: feature %d is %q, want %q",
				ErrBadArtifact, i, a.Features[i], name)
		}
	}
	if len(a.Weights) != len(classLabels) || len(a.Bias) != len(classLabels) {
		return fmt.Errorf("%w: expected %d classes", ErrBadArtifact, len(classLabels))
	}
	for i, row := range a.Weights {
		if len(row) != len(modelFeatureOrder) {
			return fmt.Errorf("%w: weight row %d has %d entries, want %d",
				ErrBadArtifact, i, len(row), len(modelFeatureOrder))
		}
	}
	return nil
}

// ModelClassifier is the model-based strategy, backed by a linear-softmax
// inference artifact loaded at construction time.
type ModelClassifier struct {
	weights [][]float64
	bias    []float64
}

// LoadModel reads and validates an inference artifact from path.
func LoadModel(path string) (*ModelClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("intent: read model artifact: %w", err)
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArtifact, err)
	}
	if err := a.validate(); err != nil {
		return nil, err
	}

	return &ModelClassifier{weights: a.Weights, bias: a.Bias}, nil
}

// Classify runs the artifact over the fixed-order feature vector. The
// predicted class is the argmax score; confidence is the maximum softmax
// probability.
func (c *ModelClassifier) Classify(fv eeg.FeatureVector) Result {
	x := featureSlice(fv)

	scores := make([]float64, len(c.weights))
	for class, row := range c.weights {
		s := c.bias[class]
		for i, w := range row {
			s += w * x[i]
		}
		scores[class] = s
	}

	probs := softmax(scores)
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	label := classLabels[best]
	return Result{
		Intent:     label,
		Confidence: probs[best],
		Explanation: fmt.Sprintf("Model classified as %s with %.0f%% confidence",
			label, probs[best]*100),
	}
}

var _ Classifier = (*ModelClassifier)(nil)

// featureSlice flattens a feature vector into the artifact's input order.
func featureSlice(fv eeg.FeatureVector) []float64 {
	return []float64{
		fv.Bands.Delta,
		fv.Bands.Theta,
		fv.Bands.Alpha,
		fv.Bands.Beta,
		fv.Bands.Gamma,
		fv.BetaAlphaRatio,
		fv.GammaBetaRatio,
	}
}

// softmax converts raw class scores to probabilities, shifting by the max
// score for numeric stability.
func softmax(scores []float64) []float64 {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}

	out := make([]float64, len(scores))
	sum := 0.0
	for i, s := range scores {
		out[i] = math.Exp(s - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
