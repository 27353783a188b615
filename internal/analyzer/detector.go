// Package analyzer implements the core analysis pipeline of the SmartEnergy
// resilience analyzer: rule-based detection, alert correlation, resilience
// metrics and the policy engine that parameterizes all three.
package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/internal/config"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/common"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/contracts"
)

// detector carries the per-run alert counter so ALR-NNNN ids form one
// monotonic sequence across all rules, assigned in firing order.
type detector struct {
	counter int
}

// Detect runs all enabled rules against the time-sorted event stream and
// returns the raised alerts sorted by timestamp (insertion order breaks
// ties). Unknown event kinds are simply not matched by any rule; unknown
// rule families are skipped.
func Detect(events []contracts.Event, rules *config.RulesConfig, mods config.ModifierSet) []contracts.Alert {
	if len(events) == 0 {
		common.Warn("no events to analyse, detector returns empty list")
		return nil
	}

	d := &detector{}
	var alerts []contracts.Alert

	for _, rule := range rules.Rules {
		if !rule.IsEnabled() {
			continue
		}

		mod := mods.For(rule.ThreatType)
		window := rule.WindowSec * mod.WindowMultiplier
		threshold := int(math.Round(float64(rule.Threshold) * mod.ThresholdMultiplier))
		if threshold < 1 {
			threshold = 1
		}

		matched := filterByKind(events, rule.Match.Event)

		var raised []contracts.Alert
		switch rule.Family {
		case config.FamilyBruteForce:
			raised = d.detectBruteForce(matched, rule, window, threshold)
		case config.FamilyDDoS:
			raised = d.detectDDoS(matched, rule, window, threshold, events)
		case config.FamilySpoof:
			raised = d.detectTelemetrySpoof(matched, rule, window, threshold)
		case config.FamilyUnauthorizedCmd:
			raised = d.detectUnauthorizedCmd(matched, rule)
		case config.FamilyOutage:
			raised = d.detectOutage(matched, rule, window, threshold)
		default:
			common.Debug("unknown rule family, skipped", zap.String("rule", rule.ID))
			continue
		}

		alerts = append(alerts, raised...)
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Time.Before(alerts[j].Time)
	})

	common.Info("detector finished",
		zap.Int("alerts", len(alerts)),
		zap.Int("events", len(events)),
	)
	return alerts
}

// detectBruteForce fires on N auth failures from the same (ip, source)
// within the window. One alert per partition per run.
func (d *detector) detectBruteForce(authFailures []contracts.Event, rule config.Rule, window float64, threshold int) []contracts.Alert {
	groups := newEventGroups()
	for _, e := range authFailures {
		ip := e.IP
		if ip == "" {
			ip = "unknown"
		}
		groups.add(ip+"|"+e.Source, e)
	}

	var alerts []contracts.Alert
	groups.each(func(key string, evts []contracts.Event) {
		sortByTime(evts)
		ip := strings.SplitN(key, "|", 2)[0]
		source := evts[0].Source

		buf := newSlidingWindow(window)
		for _, e := range evts {
			buf.add(e)
			if buf.size() >= threshold {
				alerts = append(alerts, d.newAlert(rule, alertParams{
					severity:   severityOrDefault(rule.Severity, contracts.SeverityHigh),
					confidence: confidenceOrDefault(rule.Confidence, 0.85),
					first:      buf.first(),
					component:  evts[0].Component,
					source:     source,
					count:      buf.size(),
					eventIDs:   joinEventIDs(buf.events()),
					description: fmt.Sprintf("Brute-force: %d auth failures from %s to %s within %.0fs",
						buf.size(), ip, source, window),
				}))
				break // one alert per (ip, source) group
			}
		}
	})
	return alerts
}

// detectDDoS fires on N rate_exceeded events per source within the window,
// escalating to critical when a degraded/down service_status follows on the
// same source within 120 s of the window head.
func (d *detector) detectDDoS(rateEvents []contracts.Event, rule config.Rule, window float64, threshold int, allEvents []contracts.Event) []contracts.Alert {
	groups := newEventGroups()
	for _, e := range rateEvents {
		groups.add(e.Source, e)
	}

	var alerts []contracts.Alert
	groups.each(func(source string, evts []contracts.Event) {
		sortByTime(evts)

		buf := newSlidingWindow(window)
		for _, e := range evts {
			buf.add(e)
			if buf.size() >= threshold {
				impacted := hasServiceImpact(allEvents, source, buf.first())

				sev := severityOrDefault(rule.Severity, contracts.SeverityCritical)
				conf := confidenceOrDefault(rule.Confidence, 0.90)
				desc := fmt.Sprintf("DDoS flood: %d rate_exceeded on %s within %.0fs",
					buf.size(), source, window)
				if impacted {
					sev = contracts.SeverityCritical
					conf = 0.98
					desc += " + service impact"
				}

				alerts = append(alerts, d.newAlert(rule, alertParams{
					severity:    sev,
					confidence:  conf,
					first:       buf.first(),
					component:   evts[0].Component,
					source:      source,
					count:       buf.size(),
					eventIDs:    joinEventIDs(buf.events()),
					description: desc,
				}))
				break
			}
		}
	})
	return alerts
}

// hasServiceImpact reports whether a degraded/down service_status event hits
// the same source within 120 s after the window head.
func hasServiceImpact(events []contracts.Event, source string, head contracts.Event) bool {
	for _, s := range events {
		if s.Event != contracts.EventServiceStatus || s.Source != source || s.Key != "status" {
			continue
		}
		if s.Value != "degraded" && s.Value != "down" {
			continue
		}
		gap := s.Time.Sub(head.Time).Seconds()
		if gap >= 0 && gap <= 120 {
			return true
		}
	}
	return false
}

// detectTelemetrySpoof flags out-of-bounds or large-delta telemetry readings
// per (source, key), then runs the sliding-window accumulation over the
// anomaly list. Non-numeric values are skipped, not errored.
func (d *detector) detectTelemetrySpoof(telemEvents []contracts.Event, rule config.Rule, window float64, threshold int) []contracts.Alert {
	groups := newEventGroups()
	for _, e := range telemEvents {
		groups.add(e.Source+"|"+e.Key, e)
	}

	var alerts []contracts.Alert
	groups.each(func(groupKey string, evts []contracts.Event) {
		sortByTime(evts)
		source := evts[0].Source
		key := evts[0].Key

		var anomalies []contracts.Event
		var prev *float64
		for _, e := range evts {
			val, err := strconv.ParseFloat(strings.TrimSpace(e.Value), 64)
			if err != nil {
				continue
			}

			anomalous := false
			if b, ok := rule.Bounds[key]; ok && !b.Contains(val) {
				anomalous = true
			}
			if delta, ok := rule.Delta[key]; ok && prev != nil && math.Abs(val-*prev) > delta {
				anomalous = true
			}

			v := val
			prev = &v
			if anomalous {
				anomalies = append(anomalies, e)
			}
		}

		if len(anomalies) < threshold {
			return
		}

		buf := newSlidingWindow(window)
		for _, a := range anomalies {
			buf.add(a)
			if buf.size() >= threshold {
				sev := severityOrDefault(rule.Severity, contracts.SeverityMedium)
				conf := confidenceOrDefault(rule.Confidence, 0.75)
				if buf.size() >= 5 {
					sev = contracts.SeverityHigh
					conf = 0.90
				}

				alerts = append(alerts, d.newAlert(rule, alertParams{
					severity:   sev,
					confidence: conf,
					first:      buf.first(),
					component:  anomalies[0].Component,
					source:     source,
					count:      buf.size(),
					eventIDs:   joinEventIDs(buf.events()),
					description: fmt.Sprintf("Telemetry anomaly: %d out-of-range values for %s on %s within %.0fs",
						buf.size(), key, source, window),
				}))
				break // one alert per (source, key)
			}
		}
	})
	return alerts
}

// detectUnauthorizedCmd raises exactly one alert covering every cmd_exec
// whose actor is empty or outside the rule's allowed set.
func (d *detector) detectUnauthorizedCmd(cmdEvents []contracts.Event, rule config.Rule) []contracts.Alert {
	allowed := make(map[string]struct{}, len(rule.Match.ActorNotIn))
	for _, a := range rule.Match.ActorNotIn {
		allowed[strings.ToLower(a)] = struct{}{}
	}

	var unauthorized []contracts.Event
	for _, e := range cmdEvents {
		actor := strings.ToLower(strings.TrimSpace(e.Actor))
		if actor == "" {
			unauthorized = append(unauthorized, e)
			continue
		}
		if _, ok := allowed[actor]; !ok {
			unauthorized = append(unauthorized, e)
		}
	}

	if len(unauthorized) == 0 {
		return nil
	}

	conf := confidenceOrDefault(rule.Confidence, 0.95)
	if len(unauthorized) >= 3 {
		conf = 0.99
	}

	return []contracts.Alert{d.newAlert(rule, alertParams{
		severity:   contracts.SeverityCritical,
		confidence: conf,
		first:      unauthorized[0],
		component:  unauthorized[0].Component,
		source:     unauthorized[0].Source,
		count:      len(unauthorized),
		eventIDs:   joinEventIDs(unauthorized),
		description: fmt.Sprintf("Unauthorized command: %d cmd_exec by non-allowed actor(s) on %s",
			len(unauthorized), unauthorized[0].Source),
	})}
}

// detectOutage fires on N matching service-status events per source within
// the window, applying the first matching severity override from the rule.
func (d *detector) detectOutage(svcEvents []contracts.Event, rule config.Rule, window float64, threshold int) []contracts.Alert {
	matched := svcEvents
	if len(rule.Match.Values) > 0 {
		targets := make(map[string]struct{}, len(rule.Match.Values))
		for _, v := range rule.Match.Values {
			targets[v] = struct{}{}
		}
		matched = matched[:0:0]
		for _, e := range svcEvents {
			if _, ok := targets[e.Value]; ok {
				matched = append(matched, e)
			}
		}
	}

	groups := newEventGroups()
	for _, e := range matched {
		groups.add(e.Source, e)
	}

	var alerts []contracts.Alert
	groups.each(func(source string, evts []contracts.Event) {
		sortByTime(evts)

		buf := newSlidingWindow(window)
		for _, e := range evts {
			buf.add(e)
			if buf.size() >= threshold {
				sev := severityOrDefault(rule.Severity, contracts.SeverityHigh)
				for _, ov := range rule.Overrides {
					if windowHasValue(buf.events(), ov.Value) {
						sev = ov.Severity
						break
					}
				}

				values := make([]string, 0, buf.size())
				for _, b := range buf.events() {
					values = append(values, b.Value)
				}

				alerts = append(alerts, d.newAlert(rule, alertParams{
					severity:   sev,
					confidence: confidenceOrDefault(rule.Confidence, 0.90),
					first:      buf.first(),
					component:  evts[0].Component,
					source:     source,
					count:      buf.size(),
					eventIDs:   joinEventIDs(buf.events()),
					description: fmt.Sprintf("Outage: %d %s events on %s (values: %s)",
						buf.size(), evts[0].Event, source, strings.Join(values, ", ")),
				}))
				break
			}
		}
	})
	return alerts
}

// alertParams bundles the family-specific alert fields.
type alertParams struct {
	severity    contracts.Severity
	confidence  float64
	first       contracts.Event
	component   string
	source      string
	count       int
	eventIDs    string
	description string
}

func (d *detector) newAlert(rule config.Rule, p alertParams) contracts.Alert {
	d.counter++
	return contracts.Alert{
		AlertID:      fmt.Sprintf("ALR-%04d", d.counter),
		RuleID:       rule.ID,
		RuleName:     rule.Name,
		ThreatType:   rule.ThreatType,
		Severity:     p.severity,
		Confidence:   p.confidence,
		Timestamp:    p.first.Timestamp,
		Time:         p.first.Time,
		Component:    p.component,
		Source:       p.source,
		Description:  p.description,
		EventCount:   p.count,
		EventIDs:     p.eventIDs,
		ResponseHint: rule.ResponseHint,
	}
}

func filterByKind(events []contracts.Event, kind string) []contracts.Event {
	var out []contracts.Event
	for _, e := range events {
		if e.Event == kind {
			out = append(out, e)
		}
	}
	return out
}

func sortByTime(evts []contracts.Event) {
	sort.SliceStable(evts, func(i, j int) bool {
		return evts[i].Time.Before(evts[j].Time)
	})
}

func windowHasValue(evts []contracts.Event, value string) bool {
	for _, e := range evts {
		if e.Value == value {
			return true
		}
	}
	return false
}

// joinEventIDs joins each event's correlation id, falling back to its raw
// timestamp, with semicolons.
func joinEventIDs(evts []contracts.Event) string {
	parts := make([]string, 0, len(evts))
	for _, e := range evts {
		if e.CorrelationID != "" {
			parts = append(parts, e.CorrelationID)
		} else {
			parts = append(parts, e.Timestamp)
		}
	}
	return strings.Join(parts, ";")
}

func severityOrDefault(s contracts.Severity, def contracts.Severity) contracts.Severity {
	if s == "" {
		return def
	}
	return s
}

func confidenceOrDefault(c float64, def float64) float64 {
	if c == 0 {
		return def
	}
	return c
}
