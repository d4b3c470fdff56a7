// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package privacy

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/jeranaias/neurogate/internal/eeg"
)

// =============================================================================
// PRIVACY ENGINE
// =============================================================================

const (
	// DefaultEpsilon is the base privacy budget per query.
	DefaultEpsilon = 1.0

	// DefaultDelta is the probability of a privacy breach.
	DefaultDelta = 1e-5

	// MaskThreshold is the privacy threshold below which the sensitive
	// fields are forced to zero outright.
	MaskThreshold = 0.3
)

// sensitiveFields reveal subconscious state (memory, emotion, stress) and
// are masked entirely under high-privacy settings.
var sensitiveFields = []string{"theta", "gamma"}

// ErrPrivacyLevel is returned when a privacy level falls outside [0,1].
var ErrPrivacyLevel = errors.New("privacy: privacy level outside [0,1]")

// Engine injects calibrated Laplace noise into neural data. The noise scale
// is 1/(baseEpsilon·(level+0.1)): a higher privacy level means a larger
// effective epsilon and therefore less perturbation.
type Engine struct {
	baseEpsilon float64
	delta       float64

	mu  sync.Mutex
	src rand.Source
}

// Option configures an Engine.
type Option func(*Engine)

// WithEpsilon overrides the base privacy budget.
func WithEpsilon(epsilon float64) Option {
	return func(e *Engine) { e.baseEpsilon = epsilon }
}

// WithDelta overrides the breach probability.
func WithDelta(delta float64) Option {
	return func(e *Engine) { e.delta = delta }
}

// WithSource overrides the noise source. Used by tests for determinism.
func WithSource(src rand.Source) Option {
	return func(e *Engine) { e.src = src }
}

// NewEngine creates a privacy engine with the default parameters.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		baseEpsilon: DefaultEpsilon,
		delta:       DefaultDelta,
		src:         rand.NewSource(uint64(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Epsilon returns the base privacy budget.
func (e *Engine) Epsilon() float64 { return e.baseEpsilon }

// Delta returns the breach probability.
func (e *Engine) Delta() float64 { return e.delta }

// EffectiveEpsilon maps a privacy level in [0,1] to the per-query epsilon.
func (e *Engine) EffectiveEpsilon(level float64) (float64, error) {
	if level < 0 || level > 1 {
		return 0, fmt.Errorf("%w: %v", ErrPrivacyLevel, level)
	}
	return e.baseEpsilon * (level + 0.1), nil
}

// NoiseScale reports the Laplace scale applied at a privacy level. It
// decreases monotonically as the level rises.
func (e *Engine) NoiseScale(level float64) (float64, error) {
	eff, err := e.EffectiveEpsilon(level)
	if err != nil {
		return 0, err
	}
	return 1.0 / eff, nil
}

// laplace draws one zero-mean Laplace sample. The shared source is not safe
// for concurrent use, so draws serialize on the engine lock.
func (e *Engine) laplace(scale float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return distuv.Laplace{Mu: 0, Scale: scale, Src: e.src}.Rand()
}

// PrivatizeBands adds independent Laplace noise to each of the five band
// powers and clamps every result to be non-negative.
func (e *Engine) PrivatizeBands(bands eeg.BandPowers, level float64) (eeg.BandPowers, error) {
	scale, err := e.NoiseScale(level)
	if err != nil {
		return eeg.BandPowers{}, err
	}

	noisy := bands.Map()
	for name, power := range noisy {
		v := power + e.laplace(scale)
		if v < 0 {
			v = 0
		}
		noisy[name] = v
	}
	return eeg.BandPowersFromMap(noisy), nil
}

// Apply generalizes the mechanism to an arbitrary mapping of named numeric
// values. When no fields are given, every field is perturbed. Fields absent
// from the data are skipped. Unlike PrivatizeBands, no non-negativity
// clamp is applied.
func (e *Engine) Apply(data map[string]float64, level float64, fields ...string) (map[string]float64, error) {
	scale, err := e.NoiseScale(level)
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(data))
	for k, v := range data {
		out[k] = v
	}

	if len(fields) == 0 {
		for k := range out {
			fields = append(fields, k)
		}
	}
	for _, field := range fields {
		if v, ok := out[field]; ok {
			out[field] = v + e.laplace(scale)
		}
	}
	return out, nil
}

// MaskSensitive zeroes the sensitive fields (theta, gamma) when the
// threshold drops below MaskThreshold. The masking is deterministic and
// layered on top of, not instead of, the noise mechanism.
func (e *Engine) MaskSensitive(data map[string]float64, threshold float64) map[string]float64 {
	out := make(map[string]float64, len(data))
	for k, v := range data {
		out[k] = v
	}

	if threshold < MaskThreshold {
		for _, field := range sensitiveFields {
			if _, ok := out[field]; ok {
				out[field] = 0
			}
		}
	}
	return out
}

// LossAfter reports the cumulative privacy loss after n queries under
// simple linear composition. Diagnostic only; nothing is rejected when the
// reported loss grows large.
func (e *Engine) LossAfter(n int) float64 {
	return e.baseEpsilon * float64(n)
}
