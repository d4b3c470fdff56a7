// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package firewall

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jeranaias/neurogate/internal/intent"
)

func TestParsePermission(t *testing.T) {
	for _, p := range AllPermissions {
		if _, err := ParsePermission(string(p)); err != nil {
			t.Errorf("ParsePermission(%q) error: %v", p, err)
		}
	}
	if _, err := ParsePermission("telepathy"); !errors.Is(err, ErrUnknownPermission) {
		t.Errorf("ParsePermission() = %v, want ErrUnknownPermission", err)
	}
}

func TestGrantIdempotent(t *testing.T) {
	g := NewGate()

	if err := g.Grant("app1", "Mind Cursor", PermMotorIntent); err != nil {
		t.Fatalf("Grant() error: %v", err)
	}
	if err := g.Grant("app1", "Mind Cursor", PermMotorIntent); err != nil {
		t.Fatalf("repeat Grant() error: %v", err)
	}

	if !g.Check("app1", PermMotorIntent) {
		t.Error("Check() = false after grant")
	}
	if got := len(g.Audit(0)); got != 1 {
		t.Errorf("audit has %d entries after duplicate grant, want 1", got)
	}
}

func TestRevokeAbsentIsNoOp(t *testing.T) {
	g := NewGate()
	g.Grant("app1", "Mind Cursor", PermMotorIntent)

	if err := g.Revoke("app1", PermFocusLevel); err != nil {
		t.Fatalf("Revoke() error: %v", err)
	}
	if err := g.Revoke("ghost", PermMotorIntent); err != nil {
		t.Fatalf("Revoke() unknown app error: %v", err)
	}

	perms, ok := g.Permissions("app1")
	if !ok || len(perms) != 1 || perms[0] != PermMotorIntent {
		t.Errorf("Permissions() = %v, %v; want [motor_intent], true", perms, ok)
	}
	if got := len(g.Audit(0)); got != 1 {
		t.Errorf("audit has %d entries after no-op revokes, want 1", got)
	}
}

func TestRevokeAudited(t *testing.T) {
	g := NewGate()
	g.Grant("app1", "Mind Cursor", PermMotorIntent)
	g.Revoke("app1", PermMotorIntent)

	entries := g.Audit(0)
	if len(entries) != 2 {
		t.Fatalf("audit has %d entries, want 2", len(entries))
	}
	if entries[0].Action != ActionGrant || entries[1].Action != ActionRevoke {
		t.Errorf("audit order = %s, %s; want grant, revoke",
			entries[0].Action, entries[1].Action)
	}
	if entries[1].AppName != "Mind Cursor" {
		t.Errorf("revoke entry app name = %q, want %q", entries[1].AppName, "Mind Cursor")
	}
}

func TestRevokeAll(t *testing.T) {
	g := NewGate()
	g.Grant("app1", "Mood Ring", PermEmotionalState)
	g.Grant("app1", "Mood Ring", PermFocusLevel)

	revoked := g.RevokeAll("app1")
	if len(revoked) != 2 {
		t.Fatalf("RevokeAll() revoked %v, want 2 permissions", revoked)
	}
	if perms, _ := g.Permissions("app1"); len(perms) != 0 {
		t.Errorf("Permissions() = %v after RevokeAll, want empty", perms)
	}
	if got := g.RevokeAll("app1"); got != nil {
		t.Errorf("second RevokeAll() = %v, want nil", got)
	}
	// 2 grants + 2 revokes.
	if got := len(g.Audit(0)); got != 4 {
		t.Errorf("audit has %d entries, want 4", got)
	}
}

func TestGrantRejectsUnknownPermission(t *testing.T) {
	g := NewGate()
	if err := g.Grant("app1", "X", Permission("mind_reading")); !errors.Is(err, ErrUnknownPermission) {
		t.Errorf("Grant() = %v, want ErrUnknownPermission", err)
	}
	if _, ok := g.Permissions("app1"); ok {
		t.Error("rejected grant still created an app record")
	}
}

func TestFilterDefaultDeny(t *testing.T) {
	g := NewGate()
	full := map[string]float64{"beta": 20, "theta": 5}

	got := g.Filter("unknown", full, intent.Intentional)
	if len(got) != 1 || got["motor_intent"] != 1.0 {
		t.Errorf("Filter() = %v, want only motor_intent=1", got)
	}

	got = g.Filter("unknown", full, intent.Subconscious)
	if len(got) != 1 || got["motor_intent"] != 0.0 {
		t.Errorf("Filter() = %v, want only motor_intent=0", got)
	}
}

func TestFilterAdditiveFields(t *testing.T) {
	g := NewGate()
	g.Grant("app1", "Focus Coach", PermMotorIntent)
	g.Grant("app1", "Focus Coach", PermEmotionalState)

	full := map[string]float64{
		"beta": 20, "theta": 5, "alpha": 8, "gamma": 3, "beta_alpha_ratio": 2.5,
	}
	got := g.Filter("app1", full, intent.Intentional)

	want := map[string]float64{
		"motor_intent": 1.0, "beta": 20, "theta": 5, "alpha": 8,
	}
	if len(got) != len(want) {
		t.Fatalf("Filter() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Filter()[%q] = %v, want %v", k, got[k], v)
		}
	}
}

func TestFilterFullSpectrumOverrides(t *testing.T) {
	g := NewGate()
	g.Grant("app1", "Spyware", PermEmotionalState)
	g.Grant("app1", "Spyware", PermFullSpectrum)

	full := map[string]float64{
		"delta": 1, "theta": 5, "alpha": 8, "beta": 20, "gamma": 3,
		"beta_alpha_ratio": 2.5, "gamma_beta_ratio": 0.15,
	}
	got := g.Filter("app1", full, intent.Neutral)

	if len(got) != len(full) {
		t.Fatalf("Filter() returned %d fields, want the full %d", len(got), len(full))
	}
	for k, v := range full {
		if got[k] != v {
			t.Errorf("Filter()[%q] = %v, want %v", k, got[k], v)
		}
	}
}

func TestAuditLimit(t *testing.T) {
	g := NewGate()
	for i := 0; i < 3; i++ {
		appID := fmt.Sprintf("app%d", i)
		g.Grant(appID, appID, PermMotorIntent)
	}

	entries := g.Audit(2)
	if len(entries) != 2 {
		t.Fatalf("Audit(2) returned %d entries", len(entries))
	}
	if entries[0].AppID != "app1" || entries[1].AppID != "app2" {
		t.Errorf("Audit(2) = %s, %s; want the two most recent in order",
			entries[0].AppID, entries[1].AppID)
	}
}

func TestAuditEviction(t *testing.T) {
	g := NewGate(WithAuditCapacity(2))
	g.Grant("a", "a", PermMotorIntent)
	g.Grant("b", "b", PermMotorIntent)
	g.Grant("c", "c", PermMotorIntent)

	entries := g.Audit(0)
	if len(entries) != 2 {
		t.Fatalf("audit retained %d entries, want 2", len(entries))
	}
	if entries[0].AppID != "b" || entries[1].AppID != "c" {
		t.Errorf("audit = %s, %s; oldest entry should have evicted first",
			entries[0].AppID, entries[1].AppID)
	}
	if g.AuditDropped() != 1 {
		t.Errorf("AuditDropped() = %d, want 1", g.AuditDropped())
	}
}

func TestGateConcurrentAccess(t *testing.T) {
	g := NewGate()
	full := map[string]float64{"beta": 20, "theta": 5, "alpha": 8}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			appID := fmt.Sprintf("app%d", n%2)
			for j := 0; j < 100; j++ {
				g.Grant(appID, "App", PermMotorIntent)
				g.Check(appID, PermMotorIntent)
				g.Filter(appID, full, intent.Intentional)
				g.Revoke(appID, PermMotorIntent)
			}
		}(i)
	}
	wg.Wait()

	// Same-app grant/revoke pairs must never corrupt the set into
	// something outside {present, absent}.
	for _, appID := range []string{"app0", "app1"} {
		perms, ok := g.Permissions(appID)
		if !ok {
			t.Fatalf("app record for %s vanished", appID)
		}
		if len(perms) > 1 {
			t.Errorf("Permissions(%s) = %v, inconsistent set", appID, perms)
		}
	}
}

func TestDescribeCatalog(t *testing.T) {
	info, err := Describe(PermFullSpectrum)
	if err != nil {
		t.Fatalf("Describe() error: %v", err)
	}
	if info.Risk != RiskCritical {
		t.Errorf("full_spectrum risk = %s, want critical", info.Risk)
	}

	if _, err := Describe(Permission("bogus")); !errors.Is(err, ErrUnknownPermission) {
		t.Errorf("Describe() = %v, want ErrUnknownPermission", err)
	}

	if got := len(Catalog()); got != len(AllPermissions) {
		t.Errorf("Catalog() has %d entries, want %d", got, len(AllPermissions))
	}
}
