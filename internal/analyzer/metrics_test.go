package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/internal/analyzer"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/contracts"
)

func incident(id string, sev contracts.Severity, threat, detectTS, recoverTS string, mttd, mttr float64) contracts.Incident {
	return contracts.Incident{
		IncidentID: id,
		Policy:     "baseline",
		ThreatType: threat,
		Severity:   sev,
		StartTS:    detectTS,
		DetectTS:   detectTS,
		RecoverTS:  recoverTS,
		MTTDSec:    mttd,
		MTTRSec:    mttr,
	}
}

func TestComputeEmpty(t *testing.T) {
	m := analyzer.Compute(nil, "baseline", 86400)

	assert.Equal(t, "baseline", m.Policy)
	assert.Equal(t, 100.0, m.AvailabilityPct)
	assert.Equal(t, 0.0, m.TotalDowntimeHr)
	assert.Equal(t, 0, m.IncidentsTotal)
	assert.Empty(t, m.IncidentsBySeverity)
}

func TestComputeOverlappingDowntime(t *testing.T) {
	// Two high-severity incidents with overlapping recovery phases: the
	// merged downtime is one interval, 10:00:30 .. 10:15:00 = 870s.
	incidents := []contracts.Incident{
		incident("INC-001", contracts.SeverityHigh, contracts.ThreatOutage,
			"2026-02-26T10:00:30Z", "2026-02-26T10:10:30Z", 30, 600),
		incident("INC-002", contracts.SeverityCritical, contracts.ThreatAvailabilityAttack,
			"2026-02-26T10:05:00Z", "2026-02-26T10:15:00Z", 30, 600),
	}

	m := analyzer.Compute(incidents, "baseline", 86400)

	assert.Equal(t, 2, m.IncidentsTotal)
	assert.Equal(t, 0.2417, m.TotalDowntimeHr, "870s merged, not 1200s summed")
	// (1 - 870/86400) * 100 = 98.9930..., rounded to 2 decimals
	assert.Equal(t, 98.99, m.AvailabilityPct)
	assert.Equal(t, map[string]int{"high": 1, "critical": 1}, m.IncidentsBySeverity)
	assert.Equal(t, map[string]int{
		contracts.ThreatOutage:             1,
		contracts.ThreatAvailabilityAttack: 1,
	}, m.IncidentsByThreat)
}

func TestComputeLowSeverityExcludedFromDowntime(t *testing.T) {
	incidents := []contracts.Incident{
		incident("INC-001", contracts.SeverityMedium, contracts.ThreatIntegrityAttack,
			"2026-02-26T10:00:00Z", "2026-02-26T11:00:00Z", 60, 240),
		incident("INC-002", contracts.SeverityLow, contracts.ThreatIntegrityAttack,
			"2026-02-26T12:00:00Z", "2026-02-26T13:00:00Z", 60, 240),
	}

	m := analyzer.Compute(incidents, "baseline", 86400)

	assert.Equal(t, 0.0, m.TotalDowntimeHr)
	assert.Equal(t, 100.0, m.AvailabilityPct)
	assert.Equal(t, 2, m.IncidentsTotal, "still counted in totals")
}

func TestComputeMeanTimings(t *testing.T) {
	incidents := []contracts.Incident{
		incident("INC-001", contracts.SeverityLow, contracts.ThreatOutage,
			"2026-02-26T10:00:00Z", "2026-02-26T10:05:00Z", 30, 300),
		incident("INC-002", contracts.SeverityLow, contracts.ThreatOutage,
			"2026-02-26T11:00:00Z", "2026-02-26T11:05:00Z", 60, 120),
	}

	m := analyzer.Compute(incidents, "baseline", 86400)

	assert.Equal(t, 0.75, m.MeanMTTDMin, "mean(30, 60)s = 45s = 0.75min")
	assert.Equal(t, 3.5, m.MeanMTTRMin, "mean(300, 120)s = 210s = 3.5min")
}

func TestComputeBadTimingsSkipped(t *testing.T) {
	incidents := []contracts.Incident{
		// inverted: recover before detect
		incident("INC-001", contracts.SeverityCritical, contracts.ThreatOutage,
			"2026-02-26T10:10:00Z", "2026-02-26T10:00:00Z", 10, 300),
		// missing recover
		incident("INC-002", contracts.SeverityCritical, contracts.ThreatOutage,
			"2026-02-26T10:00:00Z", "", 10, 300),
		// unparseable detect
		incident("INC-003", contracts.SeverityCritical, contracts.ThreatOutage,
			"garbage", "2026-02-26T10:30:00Z", 10, 300),
	}

	m := analyzer.Compute(incidents, "baseline", 86400)

	assert.Equal(t, 0.0, m.TotalDowntimeHr)
	assert.Equal(t, 100.0, m.AvailabilityPct)
	assert.Equal(t, 3, m.IncidentsTotal)
}

func TestComputeAvailabilityClamp(t *testing.T) {
	t.Run("floor at zero", func(t *testing.T) {
		incidents := []contracts.Incident{
			incident("INC-001", contracts.SeverityCritical, contracts.ThreatOutage,
				"2026-02-26T00:00:00Z", "2026-02-27T00:00:00Z", 10, 86400),
		}

		m := analyzer.Compute(incidents, "baseline", 3600)
		assert.Equal(t, 0.0, m.AvailabilityPct)
	})

	t.Run("non-positive horizon yields full availability", func(t *testing.T) {
		incidents := []contracts.Incident{
			incident("INC-001", contracts.SeverityCritical, contracts.ThreatOutage,
				"2026-02-26T10:00:00Z", "2026-02-26T10:30:00Z", 10, 1800),
		}

		m := analyzer.Compute(incidents, "baseline", 0)
		assert.Equal(t, 100.0, m.AvailabilityPct)
		assert.Equal(t, 0.5, m.TotalDowntimeHr, "downtime is still reported")
	})
}

func TestComputeTouchingIntervalsMerge(t *testing.T) {
	incidents := []contracts.Incident{
		incident("INC-001", contracts.SeverityHigh, contracts.ThreatOutage,
			"2026-02-26T10:00:00Z", "2026-02-26T10:10:00Z", 10, 600),
		incident("INC-002", contracts.SeverityHigh, contracts.ThreatOutage,
			"2026-02-26T10:10:00Z", "2026-02-26T10:20:00Z", 10, 600),
	}

	m := analyzer.Compute(incidents, "baseline", 86400)
	// 1200s as one 20-minute block, back-to-back intervals touch.
	assert.Equal(t, 0.3333, m.TotalDowntimeHr)
}
