package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/internal/config"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/common"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/contracts"
)

// DefaultMergeWindowSec is the locality-grouping window for alerts that
// carry no explicit correlation tag.
const DefaultMergeWindowSec = 120.0

// Base detection/recovery timings in seconds per threat type. These model
// the baseline response before policy multipliers are applied.
var baseTimings = map[string]struct{ mttd, mttr float64 }{
	contracts.ThreatCredentialAttack:   {30.0, 120.0},
	contracts.ThreatAvailabilityAttack: {15.0, 180.0},
	contracts.ThreatIntegrityAttack:    {60.0, 240.0},
	contracts.ThreatOutage:             {10.0, 300.0},
}

var fallbackTiming = struct{ mttd, mttr float64 }{30.0, 120.0}

// Correlate clusters alerts into incidents and computes per-incident timing
// under the named policy's modifiers. Incidents are returned sorted by
// start_ts.
//
// Grouping is two-phase, in priority order: first by the lexicographically
// smallest COR-* token found in each alert's event_ids, then by
// (component, threat_type) locality within mergeWindowSec of the group's
// latest member.
func Correlate(alerts []contracts.Alert, policyName string, mods config.ModifierSet, mergeWindowSec float64) []contracts.Incident {
	if len(alerts) == 0 {
		return nil
	}

	type alertGroup struct {
		key    string
		maxTS  time.Time
		alerts []contracts.Alert
	}

	// Phase 1: explicit correlation tags.
	corOrder := make([]string, 0)
	corGroups := make(map[string]*alertGroup)
	var untagged []contracts.Alert

	for _, a := range alerts {
		cids := extractCorIDs(a.EventIDs)
		if len(cids) == 0 {
			untagged = append(untagged, a)
			continue
		}
		sort.Strings(cids)
		key := cids[0]
		g, seen := corGroups[key]
		if !seen {
			g = &alertGroup{key: key}
			corGroups[key] = g
			corOrder = append(corOrder, key)
		}
		g.alerts = append(g.alerts, a)
	}

	// Phase 2: spatio-temporal locality for the rest.
	var timeGroups []*alertGroup
	for _, a := range untagged {
		prefix := a.Component + "|" + a.ThreatType
		placed := false
		for _, g := range timeGroups {
			if !strings.HasPrefix(g.key, prefix+"|") {
				continue
			}
			gap := a.Time.Sub(g.maxTS).Seconds()
			if math.Abs(gap) <= mergeWindowSec {
				g.alerts = append(g.alerts, a)
				if a.Time.After(g.maxTS) {
					g.maxTS = a.Time
				}
				placed = true
				break
			}
		}
		if !placed {
			timeGroups = append(timeGroups, &alertGroup{
				key:    prefix + "|" + a.AlertID,
				maxTS:  a.Time,
				alerts: []contracts.Alert{a},
			})
		}
	}

	// Build incidents in group traversal order: tagged groups first.
	var groups [][]contracts.Alert
	for _, key := range corOrder {
		groups = append(groups, corGroups[key].alerts)
	}
	for _, g := range timeGroups {
		groups = append(groups, g.alerts)
	}

	incidents := make([]contracts.Incident, 0, len(groups))
	starts := make([]time.Time, 0, len(groups))
	for idx, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Time.Before(group[j].Time)
		})
		incidents = append(incidents, buildIncident(group, idx+1, policyName, mods))
		starts = append(starts, group[0].Time)
	}

	sort.Stable(incidentsByStart{incidents, starts})

	common.Info("correlator finished",
		zap.Int("incidents", len(incidents)),
		zap.Int("alerts", len(alerts)),
		zap.String("policy", policyName),
	)
	return incidents
}

// incidentsByStart orders incidents by their parsed start instants so mixed
// "Z" and "+00:00" input forms cannot misorder a lexicographic sort.
type incidentsByStart struct {
	inc    []contracts.Incident
	starts []time.Time
}

func (s incidentsByStart) Len() int           { return len(s.inc) }
func (s incidentsByStart) Less(i, j int) bool { return s.starts[i].Before(s.starts[j]) }
func (s incidentsByStart) Swap(i, j int) {
	s.inc[i], s.inc[j] = s.inc[j], s.inc[i]
	s.starts[i], s.starts[j] = s.starts[j], s.starts[i]
}

// extractCorIDs returns the COR-* tokens from a semicolon-joined event_ids
// field.
func extractCorIDs(eventIDs string) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, tok := range strings.Split(eventIDs, ";") {
		tok = strings.TrimSpace(tok)
		if !strings.HasPrefix(tok, "COR-") {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		ids = append(ids, tok)
	}
	return ids
}

// buildIncident assembles one incident from a time-sorted alert group.
//
//	mttd = base_mttd x mttd_multiplier
//	mttr = base_mttr x mttr_multiplier
//	detect_ts  = start_ts + mttd
//	recover_ts = detect_ts + mttr
//	impact     = severity_weight x avg_confidence x impact_multiplier
func buildIncident(group []contracts.Alert, idx int, policy string, mods config.ModifierSet) contracts.Incident {
	threat := group[0].ThreatType
	base, ok := baseTimings[threat]
	if !ok {
		base = fallbackTiming
	}
	mod := mods.For(threat)

	mttd := base.mttd * mod.MTTDMultiplier
	mttr := base.mttr * mod.MTTRMultiplier

	startTime := group[0].Time
	detectTime := startTime.Add(time.Duration(mttd * float64(time.Second)))
	recoverTime := detectTime.Add(time.Duration(mttr * float64(time.Second)))

	severity := group[0].Severity
	confSum := 0.0
	eventCount := 0
	componentSet := make(map[string]struct{})
	descSet := make(map[string]struct{})
	respSet := make(map[string]struct{})

	for _, a := range group {
		severity = contracts.MaxSeverity(severity, a.Severity)
		confSum += a.Confidence
		eventCount += a.EventCount
		componentSet[a.Component] = struct{}{}
		descSet[a.Description] = struct{}{}
		if a.ResponseHint != "" {
			respSet[a.ResponseHint] = struct{}{}
		}
	}

	avgConf := confSum / float64(len(group))
	impact := round4(severity.Weight() * avgConf * mod.ImpactMultiplier)
	if impact > 1.0 {
		impact = 1.0
	}
	if impact < 0 {
		impact = 0
	}

	response := strings.Join(sortedKeys(respSet), "; ")
	if response == "" {
		response = "notify"
	}

	return contracts.Incident{
		IncidentID:     fmt.Sprintf("INC-%03d", idx),
		Policy:         policy,
		ThreatType:     threat,
		Severity:       severity,
		Component:      strings.Join(sortedKeys(componentSet), ";"),
		EventCount:     eventCount,
		StartTS:        group[0].Timestamp,
		DetectTS:       contracts.FormatTimestamp(detectTime),
		RecoverTS:      contracts.FormatTimestamp(recoverTime),
		MTTDSec:        round2(mttd),
		MTTRSec:        round2(mttr),
		ImpactScore:    impact,
		Description:    strings.Join(sortedKeys(descSet), " | "),
		ResponseAction: response,
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
