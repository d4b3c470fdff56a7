// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package synth

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/jeranaias/neurogate/internal/eeg"
	"github.com/jeranaias/neurogate/internal/intent"
)

// =============================================================================
// SYNTHETIC EEG GENERATOR
// =============================================================================

const (
	// DefaultSamplingRate matches consumer BCI headsets.
	DefaultSamplingRate = 256.0

	// DefaultChannels is the default electrode count.
	DefaultChannels = 8

	// noiseSigma is the standard deviation of the Gaussian measurement
	// noise added to every channel.
	noiseSigma = 0.1
)

// channelNames follows the 10-20 electrode placement system.
var channelNames = []string{
	"Fp1", "Fp2", "F3", "F4", "C3", "C4", "P3", "P4",
	"O1", "O2", "F7", "F8", "T3", "T4", "T5", "T6",
}

// BrainState selects the frequency profile of a generated signal.
type BrainState string

const (
	StateFocused  BrainState = "focused"
	StateRelaxed  BrainState = "relaxed"
	StateStressed BrainState = "stressed"
	StateNeutral  BrainState = "neutral"
)

// AllStates lists the supported brain states.
var AllStates = []BrainState{StateFocused, StateRelaxed, StateStressed, StateNeutral}

// ErrUnknownState is returned for a brain state outside the fixed set.
var ErrUnknownState = errors.New("synth: unknown brain state")

// ParseState decodes a brain state string.
func ParseState(s string) (BrainState, error) {
	switch BrainState(s) {
	case StateFocused, StateRelaxed, StateStressed, StateNeutral:
		return BrainState(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownState, s)
}

// component is one sinusoid in a brain-state profile.
type component struct {
	freq float64 // Hz
	amp  float64
}

// stateProfiles maps each brain state to its characteristic sinusoids.
// The focused profile keeps the gamma component small enough that gamma
// band power stays in the controlled range rather than tipping into the
// stress range.
var stateProfiles = map[BrainState][]component{
	StateFocused: {
		{freq: 20, amp: 0.6}, // beta: concentration
		{freq: 40, amp: 0.2}, // gamma: active processing
		{freq: 10, amp: 0.2}, // alpha
	},
	StateRelaxed: {
		{freq: 10, amp: 0.7}, // alpha: calm
		{freq: 6, amp: 0.2},  // theta
		{freq: 15, amp: 0.1}, // beta
	},
	StateStressed: {
		{freq: 25, amp: 0.7}, // high beta
		{freq: 45, amp: 0.5}, // gamma: anxiety
		{freq: 7, amp: 0.4},  // theta
	},
	StateNeutral: {
		{freq: 3, amp: 0.3},  // delta
		{freq: 6, amp: 0.3},  // theta
		{freq: 10, amp: 0.4}, // alpha
		{freq: 18, amp: 0.3}, // beta
		{freq: 35, amp: 0.2}, // gamma
	},
}

// Generator produces synthetic multi-channel EEG mimicking real brain
// states. It satisfies the same raw-signal contract as a hardware source,
// so the pipeline cannot tell the difference.
type Generator struct {
	samplingRate float64
	numChannels  int

	mu    sync.Mutex
	noise distuv.Normal
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithSamplingRate overrides the sampling rate in Hz.
func WithSamplingRate(rate float64) GeneratorOption {
	return func(g *Generator) { g.samplingRate = rate }
}

// WithChannels overrides the electrode count, capped at the 10-20 names
// available.
func WithChannels(n int) GeneratorOption {
	return func(g *Generator) { g.numChannels = n }
}

// WithSeed makes generation deterministic. Used by tests.
func WithSeed(seed uint64) GeneratorOption {
	return func(g *Generator) {
		g.noise.Src = rand.NewSource(seed)
	}
}

// NewGenerator creates a generator with headset-like defaults.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		samplingRate: DefaultSamplingRate,
		numChannels:  DefaultChannels,
		noise: distuv.Normal{
			Mu:    0,
			Sigma: noiseSigma,
			Src:   rand.NewSource(uint64(time.Now().UnixNano())),
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.numChannels < 1 {
		g.numChannels = 1
	}
	if g.numChannels > len(channelNames) {
		g.numChannels = len(channelNames)
	}
	return g
}

// Generate produces duration seconds of EEG in the given brain state.
func (g *Generator) Generate(duration float64, state BrainState) (eeg.RawSignal, error) {
	profile, ok := stateProfiles[state]
	if !ok {
		return eeg.RawSignal{}, fmt.Errorf("%w: %q", ErrUnknownState, state)
	}

	n := int(duration * g.samplingRate)
	if n < 1 {
		return eeg.RawSignal{}, fmt.Errorf("synth: duration %v too short at %v Hz",
			duration, g.samplingRate)
	}

	channels := make(map[string][]float64, g.numChannels)
	for _, name := range channelNames[:g.numChannels] {
		samples := make([]float64, n)
		for i := range samples {
			t := float64(i) / g.samplingRate
			for _, c := range profile {
				samples[i] += c.amp * math.Sin(2*math.Pi*c.freq*t)
			}
			samples[i] += g.sampleNoise()
		}
		channels[name] = samples
	}

	return eeg.RawSignal{Channels: channels, SamplingRate: g.samplingRate}, nil
}

// GenerateWithIntent produces EEG labeled by intent type: intentional
// commands look like focused motor planning, subconscious activity like
// stress and emotional recall.
func (g *Generator) GenerateWithIntent(duration float64, it intent.Intent) (eeg.RawSignal, error) {
	switch it {
	case intent.Intentional:
		return g.Generate(duration, StateFocused)
	case intent.Subconscious:
		return g.Generate(duration, StateStressed)
	case intent.Neutral:
		return g.Generate(duration, StateNeutral)
	}
	return eeg.RawSignal{}, fmt.Errorf("%w: %q", intent.ErrUnknownIntent, it)
}

// SamplingRate returns the generator's sampling rate in Hz.
func (g *Generator) SamplingRate() float64 { return g.samplingRate }

func (g *Generator) sampleNoise() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.noise.Rand()
}
