package report

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/internal/analyzer"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/common"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/contracts"
)

// WriteReportTXT renders the plain-text summary: per-policy metrics, a
// cross-policy comparison and the control ranking table.
func WriteReportTXT(metrics []analyzer.PolicyMetrics, incidents []contracts.Incident, ranking []analyzer.ControlRanking, path string) error {
	var b strings.Builder

	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString("  SmartEnergy Cyber-Resilience Report\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	for _, m := range metrics {
		fmt.Fprintf(&b, "--- Policy: %s ---\n", m.Policy)
		fmt.Fprintf(&b, "  Availability:     %.2f%%\n", m.AvailabilityPct)
		fmt.Fprintf(&b, "  Downtime:         %.4f hr\n", m.TotalDowntimeHr)
		fmt.Fprintf(&b, "  Mean MTTD:        %.2f min\n", m.MeanMTTDMin)
		fmt.Fprintf(&b, "  Mean MTTR:        %.2f min\n", m.MeanMTTRMin)
		fmt.Fprintf(&b, "  Incidents total:  %d\n", m.IncidentsTotal)
		fmt.Fprintf(&b, "  By severity:      %s\n", sortedCounts(m.IncidentsBySeverity))
		fmt.Fprintf(&b, "  By threat type:   %s\n\n", sortedCounts(m.IncidentsByThreat))
	}

	b.WriteString("--- Comparison ---\n")
	if len(metrics) > 0 {
		best, worst := metrics[0], metrics[0]
		for _, m := range metrics[1:] {
			if m.AvailabilityPct > best.AvailabilityPct {
				best = m
			}
			if m.AvailabilityPct < worst.AvailabilityPct {
				worst = m
			}
		}
		fmt.Fprintf(&b, "  Best availability:  %s (%.2f%%)\n", best.Policy, best.AvailabilityPct)
		fmt.Fprintf(&b, "  Worst availability: %s (%.2f%%)\n", worst.Policy, worst.AvailabilityPct)

		if bestMTTR, ok := minPositiveMTTR(metrics); ok {
			worstMTTR := metrics[0]
			for _, m := range metrics[1:] {
				if m.MeanMTTRMin > worstMTTR.MeanMTTRMin {
					worstMTTR = m
				}
			}
			fmt.Fprintf(&b, "  Best MTTR:          %s (%.2f min)\n", bestMTTR.Policy, bestMTTR.MeanMTTRMin)
			fmt.Fprintf(&b, "  Worst MTTR:         %s (%.2f min)\n", worstMTTR.Policy, worstMTTR.MeanMTTRMin)
		}
	}
	b.WriteString("\n")

	if len(ranking) > 0 {
		b.WriteString("--- Control ranking ---\n")
		table := tablewriter.NewWriter(&b)
		table.SetHeader([]string{"Policy", "Enabled controls", "Avg MTTD x", "Avg MTTR x", "Effectiveness"})
		table.SetBorder(false)
		for _, r := range ranking {
			table.Append([]string{
				r.Policy,
				strings.Join(r.EnabledControls, ", "),
				fmt.Sprintf("%.3f", r.AvgMTTDMult),
				fmt.Sprintf("%.3f", r.AvgMTTRMult),
				fmt.Sprintf("%.3f", r.Effectiveness),
			})
		}
		table.Render()
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Incidents across all policies: %d\n", len(incidents))

	if err := AtomicWrite(path, []byte(b.String())); err != nil {
		return err
	}
	common.Info("wrote text report", zap.String("path", path))
	return nil
}

func minPositiveMTTR(metrics []analyzer.PolicyMetrics) (analyzer.PolicyMetrics, bool) {
	var best analyzer.PolicyMetrics
	found := false
	for _, m := range metrics {
		if m.MeanMTTRMin <= 0 {
			continue
		}
		if !found || m.MeanMTTRMin < best.MeanMTTRMin {
			best = m
			found = true
		}
	}
	return best, found
}
