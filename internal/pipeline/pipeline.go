// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"fmt"
	"time"

	"github.com/jeranaias/neurogate/internal/eeg"
	"github.com/jeranaias/neurogate/internal/firewall"
	"github.com/jeranaias/neurogate/internal/intent"
	"github.com/jeranaias/neurogate/internal/privacy"
	"github.com/jeranaias/neurogate/internal/telemetry"
	"github.com/jeranaias/neurogate/internal/threat"
)

// =============================================================================
// NEURAL FIREWALL PIPELINE
// =============================================================================

// Result is the outcome of one complete pipeline run.
type Result struct {
	Channels     int                `json:"original_channels"`
	SamplingRate float64            `json:"sampling_rate"`
	Bands        eeg.BandPowers     `json:"frequency_bands"`
	Intent       intent.Result      `json:"intent_classification"`
	Filtered     map[string]float64 `json:"filtered_data"`
	Alerts       []threat.Alert     `json:"threats_detected"`
	Applied      bool               `json:"privacy_applied"`
	Timestamp    time.Time          `json:"timestamp"`
}

// Pipeline sequences the neural firewall: conditioning, feature
// extraction, intent classification, privacy noise, permission filtering,
// and threat detection. All state that outlives a run lives in the
// injected collaborators; the pipeline itself is stateless and safe for
// concurrent invocations.
type Pipeline struct {
	classifier intent.Classifier
	engine     *privacy.Engine
	budget     *privacy.Budget
	gate       *firewall.Gate
	detector   *threat.Detector
	usage      *telemetry.Tracker
	now        func() time.Time
}

// New wires a pipeline from its collaborators.
func New(
	classifier intent.Classifier,
	engine *privacy.Engine,
	budget *privacy.Budget,
	gate *firewall.Gate,
	detector *threat.Detector,
	usage *telemetry.Tracker,
) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		engine:     engine,
		budget:     budget,
		gate:       gate,
		detector:   detector,
		usage:      usage,
		now:        time.Now,
	}
}

// Process runs one raw signal through the full firewall on behalf of
// appID at the given privacy level.
//
// The reported band powers are the privatized ones; the caller never sees
// raw spectral values. The filtered data map is built from those same
// privatized bands with ratios recomputed on top, then minimized by the
// permission gate. Threat detection scores the app's actually granted
// permissions against its observed request frequency.
func (p *Pipeline) Process(sig eeg.RawSignal, appID string, level float64) (Result, error) {
	if err := sig.Validate(); err != nil {
		return Result{}, err
	}
	effEpsilon, err := p.engine.EffectiveEpsilon(level)
	if err != nil {
		return Result{}, err
	}

	conditioned, err := eeg.Condition(sig)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: condition: %w", err)
	}
	features, err := eeg.Extract(conditioned)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: extract: %w", err)
	}

	classified := p.classifier.Classify(features)

	noisy, err := p.engine.PrivatizeBands(features.Bands, level)
	if err != nil {
		return Result{}, err
	}
	p.budget.Spend(effEpsilon)
	frequency := p.usage.Record(appID, effEpsilon)

	granted, _ := p.gate.Permissions(appID)
	alerts := p.detector.Detect(appID, granted, frequency)

	full := noisy.Map()
	full["beta_alpha_ratio"] = noisy.Beta / (noisy.Alpha + eeg.RatioEpsilon)
	full["gamma_beta_ratio"] = noisy.Gamma / (noisy.Beta + eeg.RatioEpsilon)
	filtered := p.gate.Filter(appID, full, classified.Intent)

	return Result{
		Channels:     len(sig.Channels),
		SamplingRate: sig.SamplingRate,
		Bands:        noisy,
		Intent:       classified,
		Filtered:     filtered,
		Alerts:       alerts,
		Applied:      true,
		Timestamp:    p.now(),
	}, nil
}
