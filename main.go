// neurogate - a neural firewall for brain-computer interface security.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/rand"

	"github.com/jeranaias/neurogate/internal/config"
	"github.com/jeranaias/neurogate/internal/firewall"
	"github.com/jeranaias/neurogate/internal/intent"
	"github.com/jeranaias/neurogate/internal/pipeline"
	"github.com/jeranaias/neurogate/internal/privacy"
	"github.com/jeranaias/neurogate/internal/server"
	"github.com/jeranaias/neurogate/internal/synth"
	"github.com/jeranaias/neurogate/internal/telemetry"
	"github.com/jeranaias/neurogate/internal/threat"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to config.toml (default ~/.neurogate/config.toml)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("neurogate %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "neurogate: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "neurogate: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func run(cfg *config.Config) error {
	// Privacy machinery shares one epsilon/delta pair so the budget's
	// accounting matches the engine's noise.
	engine := privacy.NewEngine(
		privacy.WithEpsilon(cfg.Privacy.Epsilon),
		privacy.WithDelta(cfg.Privacy.Delta),
		privacy.WithSource(rand.NewSource(uint64(time.Now().UnixNano()))),
	)
	budget, err := privacy.NewBudget(cfg.Privacy.Epsilon, cfg.Privacy.Delta, cfg.Privacy.DefaultLevel)
	if err != nil {
		return err
	}

	gate := firewall.NewGate(firewall.WithAuditCapacity(cfg.Logs.AuditCapacity))
	detector := threat.NewDetector(threat.WithLogCapacity(cfg.Logs.ThreatCapacity))
	usage := telemetry.NewTracker()

	intents := intent.NewEngine()
	var watcher *intent.Watcher
	if cfg.Intent.ModelPath != "" {
		if cfg.Intent.WatchModel {
			watcher, err = intent.NewWatcher(intents, cfg.Intent.ModelPath)
			if err != nil {
				return fmt.Errorf("model watcher: %w", err)
			}
			if err := watcher.Watch(); err != nil {
				return fmt.Errorf("model watcher: %w", err)
			}
			defer watcher.Close()
		} else if err := intents.LoadArtifact(cfg.Intent.ModelPath); err != nil {
			fmt.Fprintf(os.Stderr, "neurogate: model artifact rejected, using rules: %v\n", err)
		}
	}

	pipe := pipeline.New(intents, engine, budget, gate, detector, usage)
	generator := synth.NewGenerator(
		synth.WithSamplingRate(cfg.Signal.SamplingRate),
		synth.WithChannels(cfg.Signal.Channels),
		synth.WithSeed(uint64(time.Now().UnixNano())),
	)

	if cfg.Demo.SeedPermissions {
		seedDemoGrants(gate)
	}

	srv := server.NewServer(cfg).
		WithPipeline(pipe).
		WithGate(gate).
		WithDetector(detector).
		WithBudget(budget).
		WithUsage(usage).
		WithGenerator(generator).
		WithIntentEngine(intents)

	printBanner(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// seedDemoGrants gives a few example applications permissions so the API
// has data to show on first run.
func seedDemoGrants(gate *firewall.Gate) {
	gate.Grant("vr-arena", "VR Training Arena", firewall.PermMotorIntent)
	gate.Grant("meditation-app", "Mindful Meditation", firewall.PermEmotionalState)
	gate.Grant("mind-focus", "Productivity Tracker", firewall.PermFocusLevel)
}

func printBanner(cfg *config.Config) {
	fmt.Fprintln(os.Stderr, "============================================================")
	fmt.Fprintln(os.Stderr, "neurogate - neural firewall starting")
	fmt.Fprintf(os.Stderr, "version:       %s\n", Version)
	fmt.Fprintf(os.Stderr, "listen:        %s\n", cfg.Server.Addr())
	fmt.Fprintf(os.Stderr, "cors origins:  %v\n", cfg.Server.Origins())
	fmt.Fprintf(os.Stderr, "privacy level: %.2f (epsilon %.2f)\n", cfg.Privacy.DefaultLevel, cfg.Privacy.Epsilon)
	fmt.Fprintln(os.Stderr, "============================================================")
}
