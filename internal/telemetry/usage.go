// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"sort"
	"sync"
	"time"
)

// =============================================================================
// USAGE TRACKER
// =============================================================================

// frequencyWindow is the sliding window over which per-app request
// frequency is measured.
const frequencyWindow = time.Second

// appUsage accumulates one application's observed behavior.
type appUsage struct {
	requests int
	epsilon  float64
	recent   []time.Time // requests inside the sliding window, oldest first
	lastSeen time.Time
}

// AppStats is a point-in-time snapshot of one application's usage.
type AppStats struct {
	AppID     string    `json:"app_id"`
	Requests  int       `json:"requests"`
	Epsilon   float64   `json:"epsilon_spent"`
	Frequency float64   `json:"frequency_per_sec"`
	LastSeen  time.Time `json:"last_seen"`
}

// Tracker records per-application request activity: total counts,
// cumulative privacy spend, and a sliding-window request frequency the
// threat detector scores against. Safe for concurrent use.
type Tracker struct {
	mu   sync.Mutex
	apps map[string]*appUsage
	now  func() time.Time
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithClock overrides the timestamp source. Used by tests.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates an empty tracker.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		apps: make(map[string]*appUsage),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Record notes one request from appID with its privacy cost and returns
// the app's request frequency over the sliding window, including this
// request.
func (t *Tracker) Record(appID string, epsilon float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, ok := t.apps[appID]
	if !ok {
		u = &appUsage{}
		t.apps[appID] = u
	}

	ts := t.now()
	u.requests++
	u.epsilon += epsilon
	u.lastSeen = ts
	u.recent = append(u.recent, ts)
	u.trim(ts)

	return float64(len(u.recent)) / frequencyWindow.Seconds()
}

// Frequency reports an app's current request rate per second over the
// sliding window without recording anything.
func (t *Tracker) Frequency(appID string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, ok := t.apps[appID]
	if !ok {
		return 0
	}
	u.trim(t.now())
	return float64(len(u.recent)) / frequencyWindow.Seconds()
}

// Stats snapshots one application's usage.
func (t *Tracker) Stats(appID string) (AppStats, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, ok := t.apps[appID]
	if !ok {
		return AppStats{}, false
	}
	u.trim(t.now())
	return t.snapshot(appID, u), true
}

// All snapshots every tracked application, sorted by app id.
func (t *Tracker) All() []AppStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	ts := t.now()
	out := make([]AppStats, 0, len(t.apps))
	for id, u := range t.apps {
		u.trim(ts)
		out = append(out, t.snapshot(id, u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppID < out[j].AppID })
	return out
}

// TotalRequests reports requests recorded across all applications.
func (t *Tracker) TotalRequests() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := 0
	for _, u := range t.apps {
		total += u.requests
	}
	return total
}

func (t *Tracker) snapshot(appID string, u *appUsage) AppStats {
	return AppStats{
		AppID:     appID,
		Requests:  u.requests,
		Epsilon:   u.epsilon,
		Frequency: float64(len(u.recent)) / frequencyWindow.Seconds(),
		LastSeen:  u.lastSeen,
	}
}

// trim drops window entries older than the sliding window.
func (u *appUsage) trim(now time.Time) {
	cutoff := now.Add(-frequencyWindow)
	i := 0
	for i < len(u.recent) && !u.recent[i].After(cutoff) {
		i++
	}
	u.recent = u.recent[i:]
}
