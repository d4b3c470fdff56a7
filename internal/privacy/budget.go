// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package privacy

import (
	"fmt"
	"sync"
)

// =============================================================================
// PRIVACY BUDGET
// =============================================================================

// Budget tracks the service-wide privacy posture: the current privacy
// level, the effective per-query epsilon it implies, and the cumulative
// epsilon spent across queries. Spending is accounting only — the budget
// never rejects a query; callers wanting a hard cap layer their own check
// on top of Spent.
type Budget struct {
	mu          sync.RWMutex
	baseEpsilon float64
	delta       float64
	level       float64
	spent       float64
	queries     int
}

// Status is a point-in-time snapshot of the budget.
type Status struct {
	Level        float64 `json:"current_level"`
	Epsilon      float64 `json:"epsilon"`
	Delta        float64 `json:"delta"`
	Spent        float64 `json:"epsilon_spent"`
	Queries      int     `json:"queries"`
	NoiseApplied bool    `json:"noise_applied"`
}

// NewBudget creates a budget at the given starting level.
func NewBudget(baseEpsilon, delta, level float64) (*Budget, error) {
	if level < 0 || level > 1 {
		return nil, fmt.Errorf("%w: %v", ErrPrivacyLevel, level)
	}
	return &Budget{
		baseEpsilon: baseEpsilon,
		delta:       delta,
		level:       level,
	}, nil
}

// Level returns the current privacy level.
func (b *Budget) Level() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.level
}

// SetLevel updates the privacy level, rejecting values outside [0,1].
func (b *Budget) SetLevel(level float64) error {
	if level < 0 || level > 1 {
		return fmt.Errorf("%w: %v", ErrPrivacyLevel, level)
	}
	b.mu.Lock()
	b.level = level
	b.mu.Unlock()
	return nil
}

// Spend records one query's privacy cost. Spent grows monotonically.
func (b *Budget) Spend(epsilon float64) {
	b.mu.Lock()
	b.spent += epsilon
	b.queries++
	b.mu.Unlock()
}

// Spent returns the cumulative epsilon consumed so far.
func (b *Budget) Spent() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.spent
}

// LossAfter projects the cumulative privacy loss after n queries under
// linear composition.
func (b *Budget) LossAfter(n int) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.baseEpsilon * float64(n)
}

// Snapshot returns the current budget state. The reported epsilon is the
// effective per-query value at the current level.
func (b *Budget) Snapshot() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Status{
		Level:        b.level,
		Epsilon:      b.baseEpsilon * (b.level + 0.1),
		Delta:        b.delta,
		Spent:        b.spent,
		Queries:      b.queries,
		NoiseApplied: true,
	}
}
