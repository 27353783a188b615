package contracts

import (
	"encoding/json"
	"time"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/common"
)

// EventCSVColumns is the fixed CSV column order of the Event contract.
var EventCSVColumns = []string{
	"timestamp",
	"source",
	"component",
	"event",
	"actor",
	"ip",
	"key",
	"value",
	"unit",
	"severity",
	"tags",
	"correlation_id",
}

// Event is one normalized record of the SmartEnergy pipeline. Events are
// created at ingest and never mutated afterwards.
type Event struct {
	Timestamp     string   `json:"timestamp"` // ISO-8601 UTC, e.g. "2026-02-26T10:00:00Z"
	Source        string   `json:"source"`    // device / service id
	Component     string   `json:"component"` // edge | api | db | ui | collector | inverter | network
	Event         string   `json:"event"`     // event kind (auth_failure, telemetry_read, ...)
	Actor         string   `json:"actor"`
	IP            string   `json:"ip"`
	Key           string   `json:"key"`   // metric / parameter name
	Value         string   `json:"value"` // always string
	Unit          string   `json:"unit"`
	Severity      Severity `json:"severity"`
	Tags          string   `json:"tags"` // semicolon-joined
	CorrelationID string   `json:"correlation_id"`

	// Time is the parsed instant of Timestamp, populated once at ingest.
	Time time.Time `json:"-"`
}

// ParseTimestamp parses an external ISO-8601 second-precision timestamp.
// Both the trailing "Z" and "+00:00" offset forms are accepted.
func ParseTimestamp(iso string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return time.Time{}, common.NewError("E1002", "unparseable timestamp", map[string]interface{}{
			"timestamp": iso,
		})
	}
	return t.UTC(), nil
}

// FormatTimestamp renders an instant in the external output form
// (UTC, second precision, trailing "Z").
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// CSVRecord returns the event fields in EventCSVColumns order.
func (e Event) CSVRecord() []string {
	return []string{
		e.Timestamp,
		e.Source,
		e.Component,
		e.Event,
		e.Actor,
		e.IP,
		e.Key,
		e.Value,
		e.Unit,
		string(e.Severity),
		e.Tags,
		e.CorrelationID,
	}
}

// EventFromFields builds an Event from a field map (CSV row or JSONL object).
// Missing optional fields default to the empty string; severity defaults to
// low. The timestamp is parsed eagerly and its failure is the caller's cue
// to skip the record.
func EventFromFields(fields map[string]string) (Event, error) {
	e := Event{
		Timestamp:     fields["timestamp"],
		Source:        fields["source"],
		Component:     fields["component"],
		Event:         fields["event"],
		Actor:         fields["actor"],
		IP:            fields["ip"],
		Key:           fields["key"],
		Value:         fields["value"],
		Unit:          fields["unit"],
		Severity:      Severity(fields["severity"]),
		Tags:          fields["tags"],
		CorrelationID: fields["correlation_id"],
	}
	if e.Timestamp == "" {
		return Event{}, common.NewError("E1001", "event without timestamp", nil)
	}
	if e.Severity == "" {
		e.Severity = SeverityLow
	}
	t, err := ParseTimestamp(e.Timestamp)
	if err != nil {
		return Event{}, err
	}
	e.Time = t
	return e, nil
}

// JSON returns the compact JSON form used for line-delimited streaming.
func (e Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}
