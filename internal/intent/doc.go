// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package intent decides whether a neural feature vector represents a
// deliberate command, subconscious activity, or a neutral brain state.
//
// Two strategies implement the Classifier interface. RuleClassifier scores
// band powers against fixed neurophysiological heuristics and is always
// available. ModelClassifier runs a linear-softmax inference artifact
// trained offline and loaded from a JSON file.
//
// Engine composes the two: it dispatches to the active strategy behind a
// read lock and hot-swaps to a model artifact when one loads successfully,
// falling back to rules when the artifact is missing, malformed, or
// removed. Watcher keeps the engine in sync with the artifact on disk via
// fsnotify, debouncing the event bursts that atomic saves produce.
package intent
