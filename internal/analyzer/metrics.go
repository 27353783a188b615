package analyzer

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/common"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/contracts"
)

// PolicyMetrics aggregates the incidents of one policy over one horizon.
//
// Downtime is the recovery phase only, detect_ts to recover_ts; detection
// delay (MTTD) is excluded. Only incidents of severity high or critical
// with valid timings contribute, and overlapping intervals are merged
// before summing.
type PolicyMetrics struct {
	Policy              string         `json:"policy"`
	AvailabilityPct     float64        `json:"availability_pct"`
	TotalDowntimeHr     float64        `json:"total_downtime_hr"`
	MeanMTTDMin         float64        `json:"mean_mttd_min"`
	MeanMTTRMin         float64        `json:"mean_mttr_min"`
	IncidentsTotal      int            `json:"incidents_total"`
	IncidentsBySeverity map[string]int `json:"incidents_by_severity"`
	IncidentsByThreat   map[string]int `json:"incidents_by_threat"`
}

// NewPolicyMetrics returns the empty-incident-set metrics: 100% availability
// and zero everything else.
func NewPolicyMetrics(policy string) PolicyMetrics {
	return PolicyMetrics{
		Policy:              policy,
		AvailabilityPct:     100.0,
		IncidentsBySeverity: make(map[string]int),
		IncidentsByThreat:   make(map[string]int),
	}
}

type interval struct {
	start time.Time
	end   time.Time
}

// Compute aggregates incidents into resilience metrics for one policy over
// horizonSec. It has no side effects beyond logging.
func Compute(incidents []contracts.Incident, policyName string, horizonSec float64) PolicyMetrics {
	m := NewPolicyMetrics(policyName)

	if len(incidents) == 0 {
		common.Info("no incidents for policy, 100% availability", zap.String("policy", policyName))
		return m
	}

	m.IncidentsTotal = len(incidents)

	mttdSum := 0.0
	mttrSum := 0.0
	var intervals []interval

	for _, inc := range incidents {
		m.IncidentsBySeverity[string(inc.Severity)]++
		m.IncidentsByThreat[inc.ThreatType]++
		mttdSum += inc.MTTDSec
		mttrSum += inc.MTTRSec

		if inc.Severity.Rank() < contracts.SeverityHigh.Rank() {
			continue
		}
		iv, ok := downtimeInterval(inc)
		if !ok {
			continue
		}
		intervals = append(intervals, iv)
	}

	n := float64(len(incidents))
	m.MeanMTTDMin = round2(mttdSum / n / 60)
	m.MeanMTTRMin = round2(mttrSum / n / 60)

	merged := mergeIntervals(intervals)
	downtimeSec := 0.0
	for _, iv := range merged {
		downtimeSec += iv.end.Sub(iv.start).Seconds()
	}
	m.TotalDowntimeHr = round4(downtimeSec / 3600)

	if horizonSec > 0 {
		m.AvailabilityPct = round2((1 - downtimeSec/horizonSec) * 100)
		if m.AvailabilityPct < 0 {
			m.AvailabilityPct = 0
		}
		if m.AvailabilityPct > 100 {
			m.AvailabilityPct = 100
		}
	}

	common.Info("metrics computed",
		zap.String("policy", policyName),
		zap.Float64("availability_pct", m.AvailabilityPct),
		zap.Float64("downtime_hr", m.TotalDowntimeHr),
		zap.Float64("mean_mttd_min", m.MeanMTTDMin),
		zap.Float64("mean_mttr_min", m.MeanMTTRMin),
		zap.Int("incidents", m.IncidentsTotal),
	)
	return m
}

// downtimeInterval extracts the [detect_ts, recover_ts] interval of one
// high-severity incident, rejecting missing or inverted timings.
func downtimeInterval(inc contracts.Incident) (interval, bool) {
	if inc.DetectTS == "" || inc.RecoverTS == "" {
		common.Warn("incident skipped for downtime: missing detect_ts or recover_ts",
			zap.String("incident", inc.IncidentID))
		return interval{}, false
	}
	start, err := contracts.ParseTimestamp(inc.DetectTS)
	if err != nil {
		common.Warn("incident skipped for downtime: bad detect_ts",
			zap.String("incident", inc.IncidentID))
		return interval{}, false
	}
	end, err := contracts.ParseTimestamp(inc.RecoverTS)
	if err != nil {
		common.Warn("incident skipped for downtime: bad recover_ts",
			zap.String("incident", inc.IncidentID))
		return interval{}, false
	}
	if !end.After(start) {
		return interval{}, false
	}
	return interval{start: start, end: end}, true
}

// mergeIntervals merges overlapping or touching intervals. The result is
// sorted and pairwise disjoint; merging an already-merged list is a no-op.
func mergeIntervals(intervals []interval) []interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]interval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].start.Before(sorted[j].start)
	})

	merged := []interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !iv.start.After(last.end) {
			if iv.end.After(last.end) {
				last.end = iv.end
			}
		} else {
			merged = append(merged, iv)
		}
	}
	return merged
}
