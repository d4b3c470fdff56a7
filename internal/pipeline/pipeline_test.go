// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"errors"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/jeranaias/neurogate/internal/eeg"
	"github.com/jeranaias/neurogate/internal/firewall"
	"github.com/jeranaias/neurogate/internal/intent"
	"github.com/jeranaias/neurogate/internal/privacy"
	"github.com/jeranaias/neurogate/internal/synth"
	"github.com/jeranaias/neurogate/internal/telemetry"
	"github.com/jeranaias/neurogate/internal/threat"
)

type fixture struct {
	pipe     *Pipeline
	gate     *firewall.Gate
	detector *threat.Detector
	budget   *privacy.Budget
	usage    *telemetry.Tracker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	budget, err := privacy.NewBudget(privacy.DefaultEpsilon, privacy.DefaultDelta, 0.5)
	if err != nil {
		t.Fatalf("NewBudget() error: %v", err)
	}

	f := &fixture{
		gate:     firewall.NewGate(),
		detector: threat.NewDetector(),
		budget:   budget,
		usage:    telemetry.NewTracker(),
	}
	f.pipe = New(
		intent.NewRuleClassifier(),
		privacy.NewEngine(privacy.WithSource(rand.NewSource(11))),
		budget,
		f.gate,
		f.detector,
		f.usage,
	)
	return f
}

func focusedSignal(t *testing.T) eeg.RawSignal {
	t.Helper()
	g := synth.NewGenerator(synth.WithSeed(21), synth.WithChannels(2))
	sig, err := g.Generate(2.0, synth.StateFocused)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	return sig
}

func TestProcessFocusedSignalEndToEnd(t *testing.T) {
	f := newFixture(t)

	// Two channels, 512 samples, 256 Hz, beta-dominant profile.
	res, err := f.pipe.Process(focusedSignal(t), "cursor_app", 0.5)
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if res.Intent.Intent != intent.Intentional {
		t.Errorf("intent = %s (%s), want intentional",
			res.Intent.Intent, res.Intent.Explanation)
	}
	if res.Intent.Confidence < 0.7 {
		t.Errorf("confidence = %v, want >= 0.7", res.Intent.Confidence)
	}
	if res.Channels != 2 {
		t.Errorf("channels = %d, want 2", res.Channels)
	}
	if !res.Applied {
		t.Error("privacy not marked applied")
	}
	for name, power := range res.Bands.Map() {
		if power < 0 {
			t.Errorf("privatized band %s = %v, want >= 0", name, power)
		}
	}
}

func TestProcessDefaultDeny(t *testing.T) {
	f := newFixture(t)

	res, err := f.pipe.Process(focusedSignal(t), "never_seen", 0.5)
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if len(res.Filtered) != 1 {
		t.Fatalf("filtered = %v, want only the motor_intent stub", res.Filtered)
	}
	if res.Filtered["motor_intent"] != 1.0 {
		t.Errorf("motor_intent = %v for an intentional signal, want 1",
			res.Filtered["motor_intent"])
	}
}

func TestProcessFullSpectrumAppSeesEverythingAndIsFlagged(t *testing.T) {
	f := newFixture(t)
	f.gate.Grant("greedy", "Greedy App", firewall.PermFullSpectrum)

	res, err := f.pipe.Process(focusedSignal(t), "greedy", 0.5)
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	// Five bands plus the two recomputed ratios.
	if len(res.Filtered) != 7 {
		t.Errorf("filtered has %d fields, want all 7: %v", len(res.Filtered), res.Filtered)
	}

	found := false
	for _, a := range res.Alerts {
		if a.Type == threat.TypeExcessivePermissions {
			found = true
		}
	}
	if !found {
		t.Errorf("alerts = %v, want an excessive_permissions alert", res.Alerts)
	}
}

func TestProcessRejectsBadPrivacyLevel(t *testing.T) {
	f := newFixture(t)
	if _, err := f.pipe.Process(focusedSignal(t), "app", 1.5); !errors.Is(err, privacy.ErrPrivacyLevel) {
		t.Errorf("Process() = %v, want ErrPrivacyLevel", err)
	}
}

func TestProcessRejectsInvalidSignal(t *testing.T) {
	f := newFixture(t)
	bad := eeg.RawSignal{Channels: map[string][]float64{}, SamplingRate: 256}
	if _, err := f.pipe.Process(bad, "app", 0.5); !errors.Is(err, eeg.ErrNoChannels) {
		t.Errorf("Process() = %v, want ErrNoChannels", err)
	}
}

func TestProcessAccountsBudgetAndUsage(t *testing.T) {
	f := newFixture(t)
	sig := focusedSignal(t)

	for i := 0; i < 3; i++ {
		if _, err := f.pipe.Process(sig, "metered", 0.5); err != nil {
			t.Fatalf("Process() error: %v", err)
		}
	}

	// Effective epsilon at level 0.5 is 1.0*(0.5+0.1) per query.
	wantSpent := 3 * 0.6
	if got := f.budget.Spent(); got < wantSpent-1e-9 || got > wantSpent+1e-9 {
		t.Errorf("budget spent = %v, want %v", got, wantSpent)
	}

	stats, ok := f.usage.Stats("metered")
	if !ok || stats.Requests != 3 {
		t.Errorf("usage stats = %+v, %v; want 3 requests", stats, ok)
	}
}
