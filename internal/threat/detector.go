// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package threat

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/neurogate/internal/firewall"
	"github.com/jeranaias/neurogate/internal/util"
)

// =============================================================================
// THREAT TYPES
// =============================================================================

// Severity ranks how dangerous a detected threat is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AllSeverities lists every severity from least to most dangerous.
var AllSeverities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// ErrUnknownSeverity is returned when decoding a severity string outside
// the fixed enumeration.
var ErrUnknownSeverity = errors.New("threat: unknown severity")

// ParseSeverity decodes a severity string.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return Severity(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSeverity, s)
}

// Type names a known attack pattern against neural data.
type Type string

const (
	// TypeExcessivePermissions marks an app requesting more data than its
	// function could need.
	TypeExcessivePermissions Type = "excessive_permissions"

	// TypeDataHarvesting marks an unusually high request frequency.
	TypeDataHarvesting Type = "data_harvesting"

	// TypeEmotionalSurveillance marks emotional data access with no motor
	// functionality to justify it.
	TypeEmotionalSurveillance Type = "emotional_surveillance"

	// TypeBrainJacking marks attempted injection of malicious neural
	// patterns. Listed in the catalog; no detection rule fires it yet.
	TypeBrainJacking Type = "brain_jacking"
)

// ErrUnknownThreatType is returned when simulating a threat type with no
// detection rule.
var ErrUnknownThreatType = errors.New("threat: unknown threat type")

// Alert is one append-only detection record.
type Alert struct {
	ID          string    `json:"threat_id"`
	Type        Type      `json:"threat_type"`
	Severity    Severity  `json:"level"`
	Description string    `json:"description"`
	AppID       string    `json:"app_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Mitigated   bool      `json:"mitigated"`
}

// TypeInfo describes a catalog threat type for reporting callers.
type TypeInfo struct {
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Mitigation  string   `json:"mitigation"`
}

// TypeCatalog returns the static threat-type catalog.
func TypeCatalog() map[Type]TypeInfo {
	return map[Type]TypeInfo{
		TypeExcessivePermissions: {
			Description: "App requesting more data than needed",
			Severity:    SeverityHigh,
			Mitigation:  "Deny full_spectrum permission, grant minimal access",
		},
		TypeDataHarvesting: {
			Description: "Unusually high request frequency",
			Severity:    SeverityMedium,
			Mitigation:  "Rate limiting, suspicious app flagging",
		},
		TypeEmotionalSurveillance: {
			Description: "Accessing emotional data without justification",
			Severity:    SeverityCritical,
			Mitigation:  "Block emotional_state permission, alert user",
		},
		TypeBrainJacking: {
			Description: "Attempting to inject malicious neural patterns",
			Severity:    SeverityCritical,
			Mitigation:  "Immediate connection termination, quarantine app",
		},
	}
}

// =============================================================================
// THREAT DETECTOR
// =============================================================================

// DefaultLogCapacity bounds the threat ring.
const DefaultLogCapacity = 10000

// harvestingFrequencyPerSec is the request rate above which an app is
// flagged for data harvesting.
const harvestingFrequencyPerSec = 10.0

// Detector scores access patterns against known-bad heuristics and owns
// the append-only threat log. Detection never remediates; mitigation is an
// external concern.
type Detector struct {
	log *util.Ring[Alert]
	now func() time.Time
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithLogCapacity overrides the threat ring capacity.
func WithLogCapacity(n int) DetectorOption {
	return func(d *Detector) { d.log = util.NewRing[Alert](n) }
}

// WithClock overrides the timestamp source. Used by tests.
func WithClock(now func() time.Time) DetectorOption {
	return func(d *Detector) { d.now = now }
}

// NewDetector creates a detector with an empty log.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		log: util.NewRing[Alert](DefaultLogCapacity),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect evaluates three independent rules against one access pattern.
// Multiple alerts may fire together; each gets a fresh unique id and is
// appended to the log before being returned.
func (d *Detector) Detect(appID string, requested []firewall.Permission, frequencyPerSec float64) []Alert {
	has := make(map[firewall.Permission]bool, len(requested))
	for _, p := range requested {
		has[p] = true
	}

	var alerts []Alert
	if has[firewall.PermFullSpectrum] {
		alerts = append(alerts, Alert{
			Type:        TypeExcessivePermissions,
			Severity:    SeverityHigh,
			Description: fmt.Sprintf("App %s requesting full neural spectrum access", appID),
		})
	}
	if frequencyPerSec > harvestingFrequencyPerSec {
		alerts = append(alerts, Alert{
			Type:        TypeDataHarvesting,
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("Unusual request frequency: %.0f/sec", frequencyPerSec),
		})
	}
	if has[firewall.PermEmotionalState] && !has[firewall.PermMotorIntent] {
		alerts = append(alerts, Alert{
			Type:        TypeEmotionalSurveillance,
			Severity:    SeverityCritical,
			Description: "App requesting emotional data without primary functionality need",
		})
	}

	ts := d.now()
	for i := range alerts {
		alerts[i].ID = uuid.NewString()
		alerts[i].AppID = appID
		alerts[i].Timestamp = ts
		d.log.Append(alerts[i])
	}
	return alerts
}

// Simulate triggers the detection rule for a known threat type against
// appID, for demos and drills. The crafted access pattern fires exactly
// that rule.
func (d *Detector) Simulate(threatType Type, appID string) ([]Alert, error) {
	switch threatType {
	case TypeExcessivePermissions:
		return d.Detect(appID, []firewall.Permission{firewall.PermFullSpectrum}, 1), nil
	case TypeDataHarvesting:
		return d.Detect(appID, nil, 15), nil
	case TypeEmotionalSurveillance:
		return d.Detect(appID, []firewall.Permission{firewall.PermEmotionalState}, 1), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownThreatType, threatType)
}

// Recent returns up to limit most recent alerts in chronological order.
// A non-positive limit returns everything retained.
func (d *Detector) Recent(limit int) []Alert {
	if limit <= 0 {
		limit = d.log.Cap()
	}
	return d.log.Recent(limit)
}

// Stats aggregates the retained threat log.
type Stats struct {
	Total      int              `json:"total_threats"`
	Last24h    int              `json:"threats_24h"`
	BySeverity map[Severity]int `json:"by_level"`
	ByType     map[Type]int     `json:"by_type"`
	MostCommon Type             `json:"most_common_threat"`
}

// Statistics summarizes the retained alerts.
func (d *Detector) Statistics() Stats {
	stats := Stats{
		BySeverity: map[Severity]int{
			SeverityLow: 0, SeverityMedium: 0, SeverityHigh: 0, SeverityCritical: 0,
		},
		ByType:     make(map[Type]int),
		MostCommon: "none",
	}

	cutoff := d.now().Add(-24 * time.Hour)
	for _, a := range d.log.Snapshot() {
		stats.Total++
		stats.BySeverity[a.Severity]++
		stats.ByType[a.Type]++
		if a.Timestamp.After(cutoff) {
			stats.Last24h++
		}
	}

	best := 0
	for typ, n := range stats.ByType {
		if n > best || (n == best && best > 0 && typ < stats.MostCommon) {
			best = n
			stats.MostCommon = typ
		}
	}
	return stats
}

// Dropped reports how many alerts have been evicted from the log.
func (d *Detector) Dropped() uint64 {
	return d.log.Dropped()
}
