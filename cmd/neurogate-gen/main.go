// neurogate-gen - synthetic EEG generator for testing and demos.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/neurogate/internal/synth"
)

// output is the JSON document emitted for one generated recording.
type output struct {
	Channels     map[string][]float64 `json:"channels"`
	SamplingRate float64              `json:"sampling_rate"`
	NumChannels  int                  `json:"num_channels"`
	BrainState   synth.BrainState     `json:"brain_state"`
	Duration     float64              `json:"duration"`
}

func main() {
	var (
		state    = flag.String("state", "neutral", "brain state: focused, relaxed, stressed, neutral")
		duration = flag.Float64("duration", 2.0, "recording length in seconds")
		rate     = flag.Float64("rate", synth.DefaultSamplingRate, "sampling rate in Hz")
		channels = flag.Int("channels", synth.DefaultChannels, "electrode count (1-16)")
		seed     = flag.Uint64("seed", 0, "noise seed (0 uses the current time)")
		outPath  = flag.String("out", "", "output file (default stdout)")
	)
	flag.Parse()

	if err := run(*state, *duration, *rate, *channels, *seed, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "neurogate-gen: %v\n", err)
		os.Exit(1)
	}
}

func run(stateName string, duration, rate float64, channels int, seed uint64, outPath string) error {
	state, err := synth.ParseState(stateName)
	if err != nil {
		return err
	}

	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	gen := synth.NewGenerator(
		synth.WithSamplingRate(rate),
		synth.WithChannels(channels),
		synth.WithSeed(seed),
	)

	sig, err := gen.Generate(duration, state)
	if err != nil {
		return err
	}

	doc := output{
		Channels:     sig.Channels,
		SamplingRate: sig.SamplingRate,
		NumChannels:  len(sig.Channels),
		BrainState:   state,
		Duration:     duration,
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
