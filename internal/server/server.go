// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jeranaias/neurogate/internal/config"
	"github.com/jeranaias/neurogate/internal/eeg"
	"github.com/jeranaias/neurogate/internal/firewall"
	"github.com/jeranaias/neurogate/internal/intent"
	"github.com/jeranaias/neurogate/internal/pipeline"
	"github.com/jeranaias/neurogate/internal/privacy"
	"github.com/jeranaias/neurogate/internal/synth"
	"github.com/jeranaias/neurogate/internal/telemetry"
	"github.com/jeranaias/neurogate/internal/threat"
)

// ============================================================================
// Constants and Request/Response Types
// ============================================================================

const (
	// MaxRequestBodySize limits request bodies to 1MB.
	MaxRequestBodySize = 1 << 20

	// DefaultAuditLimit is the audit page size when the client omits one.
	DefaultAuditLimit = 50

	// DefaultThreatLimit is the recent-threats page size when omitted.
	DefaultThreatLimit = 20

	// DefaultAppID attributes unattributed signal submissions.
	DefaultAppID = "anonymous"
)

// APIResponse is the generic JSON envelope for operational endpoints.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// SignalRequest is the body for POST /api/v1/signal/process.
type SignalRequest struct {
	Channels     map[string][]float64 `json:"channels"`
	SamplingRate float64              `json:"sampling_rate"`
	AppID        string               `json:"app_id"`
	// PrivacyLevel overrides the service-wide level for this request.
	PrivacyLevel *float64 `json:"privacy_level,omitempty"`
}

// SyntheticRequest is the body for POST /api/v1/signal/synthetic.
type SyntheticRequest struct {
	BrainState string  `json:"brain_state"`
	Duration   float64 `json:"duration"`
}

// GrantRequest is the body for POST /api/v1/permissions/grant.
type GrantRequest struct {
	AppID      string `json:"app_id"`
	AppName    string `json:"app_name"`
	Permission string `json:"permission"`
}

// RevokeRequest is the body for POST /api/v1/permissions/revoke and
// /revoke-all (the permission field is ignored by revoke-all).
type RevokeRequest struct {
	AppID      string `json:"app_id"`
	Permission string `json:"permission"`
}

// SimulateRequest is the body for POST /api/v1/threats/simulate.
type SimulateRequest struct {
	ThreatType string `json:"threat_type"`
	AppID      string `json:"app_id"`
}

// LevelRequest is the body for POST /api/v1/privacy/set-level.
type LevelRequest struct {
	Level float64 `json:"level"`
}

// ============================================================================
// Server Statistics
// ============================================================================

// ServerStats tracks server performance metrics.
type ServerStats struct {
	mu               sync.RWMutex
	startTime        time.Time
	requestsTotal    int64
	signalsProcessed int64
	threatsDetected  int64
}

// NewServerStats creates a new ServerStats tracker.
func NewServerStats() *ServerStats {
	return &ServerStats{startTime: time.Now()}
}

// RecordSignal records one processed signal and its detected threats.
func (s *ServerStats) RecordSignal(threats int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signalsProcessed++
	s.threatsDetected += int64(threats)
}

// RecordRequest records one handled API request.
func (s *ServerStats) RecordRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestsTotal++
}

// Uptime returns how long the server has been running.
func (s *ServerStats) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}

// Snapshot returns a copy of the current counters.
func (s *ServerStats) Snapshot() (requests, signals, threats int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requestsTotal, s.signalsProcessed, s.threatsDetected
}

// ============================================================================
// Server
// ============================================================================

// Version is the neurogate API version string.
const Version = "1.0.0"

// Server is the neurogate HTTP API server. It fronts the firewall
// pipeline and its collaborators; all neural data leaving the server has
// passed through privacy noise and permission minimization.
type Server struct {
	cfg       *config.Config
	pipe      *pipeline.Pipeline
	gate      *firewall.Gate
	detector  *threat.Detector
	budget    *privacy.Budget
	usage     *telemetry.Tracker
	generator *synth.Generator
	intents   *intent.Engine

	stats      *ServerStats
	mux        *http.ServeMux
	httpServer *http.Server
}

// NewServer creates a Server with the given configuration. Collaborators
// are attached with the With* builder methods before Start.
func NewServer(cfg *config.Config) *Server {
	return &Server{
		cfg:   cfg,
		stats: NewServerStats(),
		mux:   http.NewServeMux(),
	}
}

// WithPipeline attaches the signal processing pipeline.
func (s *Server) WithPipeline(p *pipeline.Pipeline) *Server {
	s.pipe = p
	return s
}

// WithGate attaches the permission gate.
func (s *Server) WithGate(g *firewall.Gate) *Server {
	s.gate = g
	return s
}

// WithDetector attaches the threat detector.
func (s *Server) WithDetector(d *threat.Detector) *Server {
	s.detector = d
	return s
}

// WithBudget attaches the privacy budget.
func (s *Server) WithBudget(b *privacy.Budget) *Server {
	s.budget = b
	return s
}

// WithUsage attaches the per-app usage tracker.
func (s *Server) WithUsage(t *telemetry.Tracker) *Server {
	s.usage = t
	return s
}

// WithGenerator attaches the synthetic EEG generator.
func (s *Server) WithGenerator(g *synth.Generator) *Server {
	s.generator = g
	return s
}

// WithIntentEngine attaches the hot-swappable classification engine so
// /stats can report the active classifier source.
func (s *Server) WithIntentEngine(e *intent.Engine) *Server {
	s.intents = e
	return s
}

// setupRoutes registers all API routes on the mux.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /stats", s.handleStats)

	s.mux.HandleFunc("POST /api/v1/signal/process", s.handleSignalProcess)
	s.mux.HandleFunc("POST /api/v1/signal/synthetic", s.handleSignalSynthetic)
	s.mux.HandleFunc("GET /api/v1/signal/bands", s.handleSignalBands)

	s.mux.HandleFunc("GET /api/v1/permissions/list", s.handlePermissionsList)
	s.mux.HandleFunc("POST /api/v1/permissions/grant", s.handlePermissionsGrant)
	s.mux.HandleFunc("POST /api/v1/permissions/revoke", s.handlePermissionsRevoke)
	s.mux.HandleFunc("POST /api/v1/permissions/revoke-all", s.handlePermissionsRevokeAll)
	s.mux.HandleFunc("GET /api/v1/permissions/audit", s.handlePermissionsAudit)
	s.mux.HandleFunc("GET /api/v1/permissions/types", s.handlePermissionTypes)

	s.mux.HandleFunc("GET /api/v1/threats/recent", s.handleThreatsRecent)
	s.mux.HandleFunc("GET /api/v1/threats/stats", s.handleThreatStats)
	s.mux.HandleFunc("GET /api/v1/threats/types", s.handleThreatTypes)
	s.mux.HandleFunc("POST /api/v1/threats/simulate", s.handleThreatSimulate)

	s.mux.HandleFunc("POST /api/v1/privacy/set-level", s.handlePrivacySetLevel)
	s.mux.HandleFunc("GET /api/v1/privacy/status", s.handlePrivacyStatus)
	s.mux.HandleFunc("GET /api/v1/privacy/info", s.handlePrivacyInfo)
}

// Handler returns the complete middleware-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	s.setupRoutes()

	chain := Chain(
		RecoveryMiddleware(),
		SecurityHeadersMiddleware(),
		CORSMiddleware(NewCORSConfig(s.cfg.Server.Origins())),
		RateLimitMiddleware(NewRateLimiter(s.cfg.Server.RateLimitPerSec, s.cfg.Server.RateLimitBurst)),
		LoggingMiddleware(log.Default()),
	)
	return chain(s.mux)
}

// Start begins listening on the configured address. Blocks until the
// listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("SERVER_START | addr=%s version=%s", s.cfg.Server.Addr(), Version)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, draining in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	log.Printf("SERVER_SHUTDOWN | addr=%s", s.cfg.Server.Addr())
	return s.httpServer.Shutdown(ctx)
}

// ============================================================================
// Root / Health / Stats Handlers
// ============================================================================

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "neurogate API",
		Data: map[string]any{
			"version":     Version,
			"description": "Neural firewall for BCI security",
			"health":      "/health",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"version":   Version,
		"timestamp": time.Now(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()
	requests, signals, threats := s.stats.Snapshot()

	data := map[string]any{
		"uptime_seconds":    s.stats.Uptime().Seconds(),
		"requests_total":    requests,
		"signals_processed": signals,
		"threats_detected":  threats,
		"apps":              s.usage.All(),
		"privacy":           s.budget.Snapshot(),
	}
	if s.intents != nil {
		data["classifier"] = s.intents.Source()
	}

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Server statistics",
		Data:    data,
	})
}

// ============================================================================
// Signal Handlers
// ============================================================================

func (s *Server) handleSignalProcess(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()

	var req SignalRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	appID := req.AppID
	if appID == "" {
		appID = DefaultAppID
	}
	level := s.budget.Level()
	if req.PrivacyLevel != nil {
		level = *req.PrivacyLevel
	}

	sig := eeg.RawSignal{Channels: req.Channels, SamplingRate: req.SamplingRate}
	result, err := s.pipe.Process(sig, appID, level)
	if err != nil {
		s.writeError(w, statusForError(err), fmt.Sprintf("Signal processing failed: %v", err))
		return
	}

	s.stats.RecordSignal(len(result.Alerts))
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSignalSynthetic(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()

	var req SyntheticRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.BrainState == "" {
		req.BrainState = string(synth.StateNeutral)
	}
	if req.Duration <= 0 {
		req.Duration = s.cfg.Signal.Duration
	}

	state, err := synth.ParseState(req.BrainState)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sig, err := s.generator.Generate(req.Duration, state)
	if err != nil {
		s.writeError(w, statusForError(err), fmt.Sprintf("EEG generation failed: %v", err))
		return
	}

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: fmt.Sprintf("Generated %gs of synthetic EEG (%s state)", req.Duration, state),
		Data: map[string]any{
			"channels":      sig.Channels,
			"sampling_rate": sig.SamplingRate,
			"num_channels":  len(sig.Channels),
			"brain_state":   state,
			"duration":      req.Duration,
		},
	})
}

// bandDescriptions summarizes the cognitive correlates of each band for
// the educational bands endpoint.
var bandDescriptions = map[string]string{
	"delta": "Deep sleep, unconscious processes",
	"theta": "Drowsiness, meditation, memory, emotion",
	"alpha": "Relaxation, calm, closed eyes",
	"beta":  "Active thinking, focus, motor planning",
	"gamma": "High-level cognition, perception, consciousness",
}

func (s *Server) handleSignalBands(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()

	bands := make(map[string]map[string]string, len(eeg.CanonicalBands))
	for _, b := range eeg.CanonicalBands {
		bands[b.Name] = map[string]string{
			"range":       fmt.Sprintf("%g-%g Hz", b.Low, b.High),
			"description": bandDescriptions[b.Name],
		}
	}

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "EEG frequency band information",
		Data: map[string]any{
			"bands":         bands,
			"sampling_rate": s.cfg.Signal.SamplingRate,
		},
	})
}

// ============================================================================
// Permission Handlers
// ============================================================================

func (s *Server) handlePermissionsList(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()
	s.writeJSON(w, http.StatusOK, s.gate.List())
}

func (s *Server) handlePermissionsGrant(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()

	var req GrantRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.AppID == "" {
		s.writeError(w, http.StatusBadRequest, "app_id is required")
		return
	}

	perm, err := firewall.ParsePermission(req.Permission)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.gate.Grant(req.AppID, req.AppName, perm); err != nil {
		s.writeError(w, statusForError(err), fmt.Sprintf("Failed to grant permission: %v", err))
		return
	}

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: fmt.Sprintf("Granted %s to %s", perm, req.AppName),
		Data: map[string]any{
			"app_id":     req.AppID,
			"app_name":   req.AppName,
			"permission": perm,
		},
	})
}

func (s *Server) handlePermissionsRevoke(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()

	var req RevokeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	perm, err := firewall.ParsePermission(req.Permission)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.gate.Revoke(req.AppID, perm); err != nil {
		s.writeError(w, statusForError(err), fmt.Sprintf("Failed to revoke permission: %v", err))
		return
	}

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: fmt.Sprintf("Revoked %s from app %s", perm, req.AppID),
		Data: map[string]any{
			"app_id":     req.AppID,
			"permission": perm,
		},
	})
}

func (s *Server) handlePermissionsRevokeAll(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()

	var req RevokeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	revoked := s.gate.RevokeAll(req.AppID)
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: fmt.Sprintf("Revoked %d permissions from app %s", len(revoked), req.AppID),
		Data: map[string]any{
			"app_id":  req.AppID,
			"revoked": revoked,
		},
	})
}

func (s *Server) handlePermissionsAudit(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()
	limit := queryInt(r, "limit", DefaultAuditLimit)
	s.writeJSON(w, http.StatusOK, s.gate.Audit(limit))
}

func (s *Server) handlePermissionTypes(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Available permission types",
		Data:    map[string]any{"permissions": firewall.Catalog()},
	})
}

// ============================================================================
// Threat Handlers
// ============================================================================

func (s *Server) handleThreatsRecent(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()
	limit := queryInt(r, "limit", DefaultThreatLimit)
	s.writeJSON(w, http.StatusOK, s.detector.Recent(limit))
}

func (s *Server) handleThreatStats(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Threat statistics",
		Data:    s.detector.Statistics(),
	})
}

func (s *Server) handleThreatTypes(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()
	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Known threat types",
		Data:    map[string]any{"threats": threat.TypeCatalog()},
	})
}

func (s *Server) handleThreatSimulate(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()

	var req SimulateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.AppID == "" {
		req.AppID = "demo_app"
	}

	alerts, err := s.detector.Simulate(threat.Type(req.ThreatType), req.AppID)
	if err != nil {
		s.writeError(w, statusForError(err), err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: fmt.Sprintf("Simulated %d threats", len(alerts)),
		Data:    map[string]any{"threats": alerts},
	})
}

// ============================================================================
// Privacy Handlers
// ============================================================================

func (s *Server) handlePrivacySetLevel(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()

	var req LevelRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	if err := s.budget.SetLevel(req.Level); err != nil {
		s.writeError(w, statusForError(err), err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: fmt.Sprintf("Privacy level updated to %.2f", req.Level),
		Data:    s.budget.Snapshot(),
	})
}

func (s *Server) handlePrivacyStatus(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()
	s.writeJSON(w, http.StatusOK, s.budget.Snapshot())
}

func (s *Server) handlePrivacyInfo(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()
	status := s.budget.Snapshot()

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Privacy protection information",
		Data: map[string]any{
			"mechanism":     "Differential Privacy (Laplacian Noise)",
			"current_level": status.Level,
			"levels": map[string]string{
				"0.0-0.3": "Maximum Privacy - Heavy noise, strong protection, reduced utility",
				"0.4-0.6": "Balanced - Moderate noise, good protection, decent utility",
				"0.7-1.0": "Maximum Utility - Light noise, basic protection, high utility",
			},
			"parameters": map[string]any{
				"epsilon": map[string]any{
					"current":     status.Epsilon,
					"description": "Privacy budget - lower means more privacy",
				},
				"delta": map[string]any{
					"current":     status.Delta,
					"description": "Probability of privacy breach",
				},
			},
			"what_is_protected": []string{
				"Individual brain signatures (fingerprinting prevention)",
				"Subconscious emotional states",
				"Memory and cognitive patterns",
				"Sensitive frequency band data",
			},
		},
	})
}

// ============================================================================
// Helpers
// ============================================================================

// decodeBody reads and decodes a JSON request body, writing a 400 and
// returning false on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	return true
}

// statusForError maps domain errors to HTTP status codes. Validation and
// parse failures are client errors; everything else is a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, eeg.ErrNoChannels),
		errors.Is(err, eeg.ErrEmptyChannel),
		errors.Is(err, eeg.ErrLengthMismatch),
		errors.Is(err, eeg.ErrBadSamplingRate),
		errors.Is(err, privacy.ErrPrivacyLevel),
		errors.Is(err, firewall.ErrUnknownPermission),
		errors.Is(err, threat.ErrUnknownThreatType),
		errors.Is(err, synth.ErrUnknownState):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// queryInt parses an integer query parameter with a fallback default.
func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("WRITE_JSON_ERROR | error=%v", err)
	}
}

// writeError writes a JSON error envelope with the given status code.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, APIResponse{
		Success: false,
		Message: message,
	})
}
