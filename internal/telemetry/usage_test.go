// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"sync"
	"testing"
	"time"
)

func TestRecordAccumulates(t *testing.T) {
	now := time.Now()
	clock := now
	tr := NewTracker(WithClock(func() time.Time { return clock }))

	tr.Record("app1", 0.5)
	tr.Record("app1", 0.5)
	tr.Record("app2", 1.0)

	stats, ok := tr.Stats("app1")
	if !ok {
		t.Fatal("Stats() found no record for app1")
	}
	if stats.Requests != 2 {
		t.Errorf("Requests = %d, want 2", stats.Requests)
	}
	if stats.Epsilon != 1.0 {
		t.Errorf("Epsilon = %v, want 1.0", stats.Epsilon)
	}
	if tr.TotalRequests() != 3 {
		t.Errorf("TotalRequests() = %d, want 3", tr.TotalRequests())
	}
}

func TestFrequencySlidingWindow(t *testing.T) {
	now := time.Now()
	clock := now
	tr := NewTracker(WithClock(func() time.Time { return clock }))

	// Twelve requests inside the same second.
	for i := 0; i < 12; i++ {
		clock = now.Add(time.Duration(i) * 50 * time.Millisecond)
		tr.Record("burst", 0.1)
	}
	if freq := tr.Frequency("burst"); freq != 12 {
		t.Errorf("Frequency() = %v, want 12", freq)
	}

	// Two seconds later the window has emptied.
	clock = now.Add(3 * time.Second)
	if freq := tr.Frequency("burst"); freq != 0 {
		t.Errorf("Frequency() after window = %v, want 0", freq)
	}

	// Counts survive the window expiring.
	stats, _ := tr.Stats("burst")
	if stats.Requests != 12 {
		t.Errorf("Requests = %d, want 12", stats.Requests)
	}
}

func TestFrequencyUnknownApp(t *testing.T) {
	tr := NewTracker()
	if freq := tr.Frequency("ghost"); freq != 0 {
		t.Errorf("Frequency() = %v for unknown app, want 0", freq)
	}
	if _, ok := tr.Stats("ghost"); ok {
		t.Error("Stats() invented a record for an unknown app")
	}
}

func TestAllSorted(t *testing.T) {
	tr := NewTracker()
	tr.Record("zeta", 0.1)
	tr.Record("alpha", 0.1)
	tr.Record("mid", 0.1)

	all := tr.All()
	if len(all) != 3 {
		t.Fatalf("All() returned %d apps, want 3", len(all))
	}
	if all[0].AppID != "alpha" || all[1].AppID != "mid" || all[2].AppID != "zeta" {
		t.Errorf("All() order = %s, %s, %s", all[0].AppID, all[1].AppID, all[2].AppID)
	}
}

func TestTrackerConcurrent(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Record("shared", 0.01)
				tr.Frequency("shared")
			}
		}()
	}
	wg.Wait()

	if tr.TotalRequests() != 800 {
		t.Errorf("TotalRequests() = %d, want 800", tr.TotalRequests())
	}
}
