// Package contracts defines the canonical Event, Alert and Incident records
// shared by every stage of the SmartEnergy analyzer pipeline, together with
// the severity ordering and timestamp conventions of the external interface.
package contracts

// Severity is the event/alert/incident severity with a single total order:
// low < medium < high < critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

var severityWeight = map[Severity]float64{
	SeverityLow:      0.2,
	SeverityMedium:   0.4,
	SeverityHigh:     0.7,
	SeverityCritical: 1.0,
}

// Rank returns the ordinal of the severity; unknown values rank lowest.
func (s Severity) Rank() int {
	return severityRank[s]
}

// Weight returns the impact weight used in incident impact scoring.
// Unknown severities weigh 0.5, matching the correlator's fallback.
func (s Severity) Weight() float64 {
	if w, ok := severityWeight[s]; ok {
		return w
	}
	return 0.5
}

// Valid reports whether the severity is one of the four known levels.
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// MaxSeverity returns the higher of two severities under the total order.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Threat types recognized by the correlator and metrics engine.
const (
	ThreatCredentialAttack   = "credential_attack"
	ThreatAvailabilityAttack = "availability_attack"
	ThreatIntegrityAttack    = "integrity_attack"
	ThreatOutage             = "outage"
)

// Event kinds emitted by the normalizer. Unknown kinds fall back to raw_log.
const (
	EventTelemetryRead = "telemetry_read"
	EventAuthFailure   = "auth_failure"
	EventAuthSuccess   = "auth_success"
	EventHTTPRequest   = "http_request"
	EventRateExceeded  = "rate_exceeded"
	EventCmdExec       = "cmd_exec"
	EventServiceStatus = "service_status"
	EventDBError       = "db_error"
	EventPortStatus    = "port_status"
	EventPowerOutput   = "power_output"
	EventRawLog        = "raw_log"
)
