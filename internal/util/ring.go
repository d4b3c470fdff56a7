// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "sync"

// Ring is a fixed-capacity append-only buffer with oldest-first eviction.
//
// It preserves the "query N most recent entries" contract of an unbounded
// log while keeping memory bounded: once the capacity is reached, each
// append silently discards the oldest entry. Discards are counted so owners
// can surface them through an observability side channel.
type Ring[T any] struct {
	mu      sync.RWMutex
	buf     []T
	head    int    // index of the oldest entry
	size    int    // number of live entries
	total   uint64 // entries ever appended
	dropped uint64 // entries evicted to make room
}

// NewRing creates a ring buffer holding at most capacity entries.
// Capacity must be positive.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Append adds an entry, evicting the oldest one when the ring is full.
// It reports whether an eviction occurred.
func (r *Ring[T]) Append(v T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total++
	if r.size < len(r.buf) {
		r.buf[(r.head+r.size)%len(r.buf)] = v
		r.size++
		return false
	}

	// Full: overwrite the oldest entry and advance the head.
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
	r.dropped++
	return true
}

// Recent returns up to n of the most recent entries in chronological order
// (oldest of the returned slice first). n <= 0 returns all live entries.
func (r *Ring[T]) Recent(n int) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n <= 0 || n > r.size {
		n = r.size
	}
	out := make([]T, 0, n)
	start := r.size - n
	for i := start; i < r.size; i++ {
		out = append(out, r.buf[(r.head+i)%len(r.buf)])
	}
	return out
}

// Snapshot returns all live entries in chronological order.
func (r *Ring[T]) Snapshot() []T {
	return r.Recent(0)
}

// Len returns the number of live entries.
func (r *Ring[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Cap returns the ring capacity.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}

// Total returns the number of entries ever appended.
func (r *Ring[T]) Total() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}

// Dropped returns the number of entries evicted due to capacity pressure.
func (r *Ring[T]) Dropped() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dropped
}
