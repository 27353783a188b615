package contracts

import "strconv"

// IncidentCSVColumns is the fixed CSV column order of the Incident contract.
var IncidentCSVColumns = []string{
	"incident_id",
	"policy",
	"threat_type",
	"severity",
	"component",
	"event_count",
	"start_ts",
	"detect_ts",
	"recover_ts",
	"mttd_sec",
	"mttr_sec",
	"impact_score",
	"description",
	"response_action",
}

// Incident is a correlated group of alerts with modeled timing.
//
// Timing model:
//
//	start_ts   — timestamp of the first alert in the group
//	detect_ts  — start_ts + MTTD
//	recover_ts — detect_ts + MTTR
type Incident struct {
	IncidentID     string   `json:"incident_id"` // e.g. "INC-001"
	Policy         string   `json:"policy"`
	ThreatType     string   `json:"threat_type"`
	Severity       Severity `json:"severity"` // escalated: max of member alerts
	Component      string   `json:"component"` // semicolon-joined unique components
	EventCount     int      `json:"event_count"`
	StartTS        string   `json:"start_ts"`
	DetectTS       string   `json:"detect_ts"`
	RecoverTS      string   `json:"recover_ts"`
	MTTDSec        float64  `json:"mttd_sec"`
	MTTRSec        float64  `json:"mttr_sec"`
	ImpactScore    float64  `json:"impact_score"` // 0.0 .. 1.0
	Description    string   `json:"description"`
	ResponseAction string   `json:"response_action"`
}

// CSVRecord returns the incident fields in IncidentCSVColumns order.
func (i Incident) CSVRecord() []string {
	return []string{
		i.IncidentID,
		i.Policy,
		i.ThreatType,
		string(i.Severity),
		i.Component,
		strconv.Itoa(i.EventCount),
		i.StartTS,
		i.DetectTS,
		i.RecoverTS,
		strconv.FormatFloat(i.MTTDSec, 'f', -1, 64),
		strconv.FormatFloat(i.MTTRSec, 'f', -1, 64),
		strconv.FormatFloat(i.ImpactScore, 'f', -1, 64),
		i.Description,
		i.ResponseAction,
	}
}
