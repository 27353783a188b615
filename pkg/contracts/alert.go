package contracts

import "time"

// Alert is raised by the detector when a rule fires over one or more events.
// Alerts are derived one-way from events and never mutated after emission.
type Alert struct {
	AlertID      string   `json:"alert_id"` // e.g. "ALR-0001"
	RuleID       string   `json:"rule_id"`  // e.g. "RULE-BF-001"
	RuleName     string   `json:"rule_name"`
	ThreatType   string   `json:"threat_type"`
	Severity     Severity `json:"severity"`
	Confidence   float64  `json:"confidence"`
	Timestamp    string   `json:"timestamp"` // first matching event's timestamp
	Component    string   `json:"component"`
	Source       string   `json:"source"`
	Description  string   `json:"description"`
	EventCount   int      `json:"event_count"`
	EventIDs     string   `json:"event_ids"` // semicolon-joined correlation ids or raw timestamps
	ResponseHint string   `json:"response_hint"`

	// Time mirrors Timestamp as a parsed instant for correlator math.
	Time time.Time `json:"-"`
}
