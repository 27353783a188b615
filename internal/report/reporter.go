// Package report writes the analyzer outputs: results.csv, incidents.csv and
// the human-readable text/HTML summaries. All files are written atomically
// (temp file + rename) so watch-mode consumers never observe partial output.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/internal/analyzer"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/common"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/contracts"
)

// ResultsCSVColumns is the fixed column order of results.csv.
var ResultsCSVColumns = []string{
	"policy",
	"availability_pct",
	"total_downtime_hr",
	"mean_mttd_min",
	"mean_mttr_min",
	"incidents_total",
	"incidents_critical",
	"incidents_high",
	"incidents_medium",
	"incidents_low",
	"by_credential_attack",
	"by_availability_attack",
	"by_integrity_attack",
	"by_outage",
}

// AtomicWrite writes content to path via a temp file in the same directory
// followed by rename.
func AtomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return common.WrapError(err, "create output directory", map[string]interface{}{"dir": dir})
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return common.NewError("E4002", "create temp output file: "+err.Error(), map[string]interface{}{
			"path": path,
		})
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return common.NewError("E4002", "write temp output file: "+err.Error(), map[string]interface{}{
			"path": path,
		})
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return common.NewError("E4002", "sync temp output file: "+err.Error(), map[string]interface{}{
			"path": path,
		})
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return common.NewError("E4002", "close temp output file: "+err.Error(), map[string]interface{}{
			"path": path,
		})
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return common.NewError("E4002", "rename output file: "+err.Error(), map[string]interface{}{
			"path": path,
		})
	}
	return nil
}

// MetricsCSVRecord renders one results.csv row in ResultsCSVColumns order.
func MetricsCSVRecord(m analyzer.PolicyMetrics) []string {
	sev := m.IncidentsBySeverity
	thr := m.IncidentsByThreat
	return []string{
		m.Policy,
		fmt.Sprintf("%.2f", m.AvailabilityPct),
		fmt.Sprintf("%.4f", m.TotalDowntimeHr),
		fmt.Sprintf("%.2f", m.MeanMTTDMin),
		fmt.Sprintf("%.2f", m.MeanMTTRMin),
		strconv.Itoa(m.IncidentsTotal),
		strconv.Itoa(sev[string(contracts.SeverityCritical)]),
		strconv.Itoa(sev[string(contracts.SeverityHigh)]),
		strconv.Itoa(sev[string(contracts.SeverityMedium)]),
		strconv.Itoa(sev[string(contracts.SeverityLow)]),
		strconv.Itoa(thr[contracts.ThreatCredentialAttack]),
		strconv.Itoa(thr[contracts.ThreatAvailabilityAttack]),
		strconv.Itoa(thr[contracts.ThreatIntegrityAttack]),
		strconv.Itoa(thr[contracts.ThreatOutage]),
	}
}

// WriteResultsCSV writes one row per policy to path.
func WriteResultsCSV(metrics []analyzer.PolicyMetrics, path string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ResultsCSVColumns); err != nil {
		return common.WrapError(err, "encode results header", nil)
	}
	for _, m := range metrics {
		if err := w.Write(MetricsCSVRecord(m)); err != nil {
			return common.WrapError(err, "encode results row", map[string]interface{}{"policy": m.Policy})
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return common.WrapError(err, "flush results csv", nil)
	}

	if err := AtomicWrite(path, buf.Bytes()); err != nil {
		return err
	}
	common.Info("wrote results", zap.String("path", path), zap.Int("policies", len(metrics)))
	return nil
}

// WriteIncidentsCSV writes one row per incident to path.
func WriteIncidentsCSV(incidents []contracts.Incident, path string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(contracts.IncidentCSVColumns); err != nil {
		return common.WrapError(err, "encode incidents header", nil)
	}
	for _, inc := range incidents {
		if err := w.Write(inc.CSVRecord()); err != nil {
			return common.WrapError(err, "encode incident row", map[string]interface{}{"incident": inc.IncidentID})
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return common.WrapError(err, "flush incidents csv", nil)
	}

	if err := AtomicWrite(path, buf.Bytes()); err != nil {
		return err
	}
	common.Info("wrote incidents", zap.String("path", path), zap.Int("rows", len(incidents)))
	return nil
}

func sortedCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, ", ")
}
