// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package firewall

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/neurogate/internal/intent"
	"github.com/jeranaias/neurogate/internal/util"
)

// =============================================================================
// PERMISSION GATE
// =============================================================================

// DefaultAuditCapacity bounds the audit ring; oldest entries evict first
// while the "N most recent" query contract is preserved.
const DefaultAuditCapacity = 10000

// AuditAction is the kind of permission change an audit entry records.
type AuditAction string

const (
	ActionGrant  AuditAction = "grant"
	ActionRevoke AuditAction = "revoke"
)

// AuditEntry is an immutable record of one permission change. Entries are
// appended in strict time order and never mutated.
type AuditEntry struct {
	AppID      string      `json:"app_id"`
	AppName    string      `json:"app_name"`
	Action     AuditAction `json:"action"`
	Permission Permission  `json:"permission"`
	Timestamp  time.Time   `json:"timestamp"`
}

// AppGrants is a snapshot of one application's permission record.
type AppGrants struct {
	AppID   string       `json:"app_id"`
	AppName string       `json:"app_name"`
	Granted []Permission `json:"granted"`
}

type appRecord struct {
	name    string
	granted map[Permission]struct{}
}

// Gate stores per-application permission grants, minimizes exposed neural
// data accordingly, and keeps the audit trail. All methods are safe for
// concurrent use; writers serialize so concurrent grant/revoke calls for
// one application never interleave into an inconsistent set.
type Gate struct {
	mu    sync.RWMutex
	apps  map[string]*appRecord
	audit *util.Ring[AuditEntry]

	// warnLimiter throttles audit-overflow warnings on the observability
	// side channel so a hot loop cannot flood stderr.
	warnLimiter *rate.Limiter

	now func() time.Time
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithAuditCapacity overrides the audit ring capacity.
func WithAuditCapacity(n int) GateOption {
	return func(g *Gate) { g.audit = util.NewRing[AuditEntry](n) }
}

// WithClock overrides the timestamp source. Used by tests.
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) { g.now = now }
}

// NewGate creates an empty permission gate.
func NewGate(opts ...GateOption) *Gate {
	g := &Gate{
		apps:        make(map[string]*appRecord),
		audit:       util.NewRing[AuditEntry](DefaultAuditCapacity),
		warnLimiter: rate.NewLimiter(rate.Every(time.Minute), 1),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Grant gives an application a permission, creating its record on first
// use. Granting an already-held permission is a no-op and produces no
// audit entry.
func (g *Gate) Grant(appID, appName string, p Permission) error {
	if _, err := ParsePermission(string(p)); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.apps[appID]
	if !ok {
		rec = &appRecord{name: appName, granted: make(map[Permission]struct{})}
		g.apps[appID] = rec
	}
	if _, held := rec.granted[p]; held {
		return nil
	}

	rec.granted[p] = struct{}{}
	g.appendAudit(AuditEntry{
		AppID:      appID,
		AppName:    rec.name,
		Action:     ActionGrant,
		Permission: p,
		Timestamp:  g.now(),
	})
	return nil
}

// Revoke removes a permission from an application. Revoking a permission
// the application never held is a no-op and produces no audit entry.
func (g *Gate) Revoke(appID string, p Permission) error {
	if _, err := ParsePermission(string(p)); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.apps[appID]
	if !ok {
		return nil
	}
	if _, held := rec.granted[p]; !held {
		return nil
	}

	delete(rec.granted, p)
	g.appendAudit(AuditEntry{
		AppID:      appID,
		AppName:    rec.name,
		Action:     ActionRevoke,
		Permission: p,
		Timestamp:  g.now(),
	})
	return nil
}

// RevokeAll removes every permission from an application and returns the
// permissions that were actually revoked, in canonical order.
func (g *Gate) RevokeAll(appID string) []Permission {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.apps[appID]
	if !ok {
		return nil
	}

	var revoked []Permission
	for _, p := range AllPermissions {
		if _, held := rec.granted[p]; !held {
			continue
		}
		delete(rec.granted, p)
		revoked = append(revoked, p)
		g.appendAudit(AuditEntry{
			AppID:      appID,
			AppName:    rec.name,
			Action:     ActionRevoke,
			Permission: p,
			Timestamp:  g.now(),
		})
	}
	return revoked
}

// Check reports whether an application holds a permission.
func (g *Gate) Check(appID string, p Permission) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rec, ok := g.apps[appID]
	if !ok {
		return false
	}
	_, held := rec.granted[p]
	return held
}

// Permissions returns an application's granted permissions in canonical
// order, and whether a record exists for it at all.
func (g *Gate) Permissions(appID string) ([]Permission, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rec, ok := g.apps[appID]
	if !ok {
		return nil, false
	}
	return sortedGrants(rec), true
}

// List snapshots every application's permission record, sorted by app id.
func (g *Gate) List() []AppGrants {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]AppGrants, 0, len(g.apps))
	for id, rec := range g.apps {
		out = append(out, AppGrants{
			AppID:   id,
			AppName: rec.name,
			Granted: sortedGrants(rec),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppID < out[j].AppID })
	return out
}

// Filter minimizes full neural data to what the application may see.
// Precedence, in order:
//
//  1. Unknown application: default deny, exposing only a motor-intent
//     indicator derived from the classified intent.
//  2. Each granted permission independently adds its fields.
//  3. full_spectrum discards the additive result and returns the entire
//     input. Most dangerous permission wins; it is an override, not a
//     grant of additional fields.
func (g *Gate) Filter(appID string, full map[string]float64, it intent.Intent) map[string]float64 {
	motor := 0.0
	if it == intent.Intentional {
		motor = 1.0
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	rec, ok := g.apps[appID]
	if !ok {
		return map[string]float64{"motor_intent": motor}
	}

	filtered := make(map[string]float64)
	if _, held := rec.granted[PermMotorIntent]; held {
		filtered["motor_intent"] = motor
		filtered["beta"] = full["beta"]
	}
	if _, held := rec.granted[PermFocusLevel]; held {
		filtered["beta_alpha_ratio"] = full["beta_alpha_ratio"]
	}
	if _, held := rec.granted[PermEmotionalState]; held {
		filtered["theta"] = full["theta"]
		filtered["alpha"] = full["alpha"]
	}
	if _, held := rec.granted[PermFullSpectrum]; held {
		filtered = make(map[string]float64, len(full))
		for k, v := range full {
			filtered[k] = v
		}
	}
	return filtered
}

// Audit returns up to limit most recent audit entries in chronological
// order. A non-positive limit returns everything retained.
func (g *Gate) Audit(limit int) []AuditEntry {
	if limit <= 0 {
		limit = g.audit.Cap()
	}
	return g.audit.Recent(limit)
}

// AuditDropped reports how many audit entries have been evicted.
func (g *Gate) AuditDropped() uint64 {
	return g.audit.Dropped()
}

// appendAudit records a permission change. Eviction of old entries is
// non-fatal; it is surfaced on the side channel, throttled.
func (g *Gate) appendAudit(e AuditEntry) {
	if evicted := g.audit.Append(e); evicted && g.warnLimiter.Allow() {
		fmt.Fprintf(os.Stderr, "neurogate: audit log at capacity, %d entries dropped\n",
			g.audit.Dropped())
	}
}

func sortedGrants(rec *appRecord) []Permission {
	var out []Permission
	for _, p := range AllPermissions {
		if _, held := rec.granted[p]; held {
			out = append(out, p)
		}
	}
	return out
}
