// Package pipeline wires the analyzer core end to end: load events, run
// detect -> correlate -> metrics per selected policy, rank the control sets
// and hand the results to the reporters.
package pipeline

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/internal/analyzer"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/internal/config"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/internal/ingest"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/internal/report"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/internal/telemetry"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/common"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/contracts"
)

// Options selects what one analyzer invocation processes.
type Options struct {
	InputPath   string
	OutDir      string
	Policies    []string // policy names, or ["all"]
	ConfigDir   string
	HorizonDays float64 // <= 0 derives the horizon from the event span
}

// Result is the in-memory outcome of one analysis run.
type Result struct {
	Events    []contracts.Event
	Selected  []string
	Alerts    map[string][]contracts.Alert
	Incidents map[string][]contracts.Incident
	Metrics   []analyzer.PolicyMetrics // in Selected order
	Ranking   []analyzer.ControlRanking
}

// AllIncidents returns every incident across policies in Selected order.
func (r *Result) AllIncidents() []contracts.Incident {
	var all []contracts.Incident
	for _, name := range r.Selected {
		all = append(all, r.Incidents[name]...)
	}
	return all
}

// HorizonSec resolves the availability horizon: explicit horizon days win,
// otherwise the event span (at least one hour), otherwise one hour.
func HorizonSec(events []contracts.Event, horizonDays float64) float64 {
	if horizonDays > 0 {
		return horizonDays * 86400
	}
	if len(events) >= 2 {
		span := events[len(events)-1].Time.Sub(events[0].Time).Seconds()
		if span < 3600 {
			return 3600
		}
		return span
	}
	return 3600
}

// Run executes the full batch pipeline and writes all outputs to
// opts.OutDir. Configuration problems are fatal; an empty input produces an
// empty result without touching the output directory.
func Run(opts Options) (*Result, error) {
	runID := uuid.NewString()
	common.Info("analysis run starting",
		zap.String("run_id", runID),
		zap.String("input", opts.InputPath),
	)

	rulesCfg, policiesCfg, err := loadConfigs(opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	events, err := ingest.LoadEvents(opts.InputPath)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		common.Warn("no events loaded, nothing to analyse", zap.String("input", opts.InputPath))
		return emptyResult(), nil
	}

	result := analyze(events, rulesCfg, policiesCfg, opts)
	if err := writeOutputs(opts.OutDir, result); err != nil {
		return nil, err
	}

	common.Info("analysis run complete",
		zap.String("run_id", runID),
		zap.String("out_dir", opts.OutDir),
	)
	return result, nil
}

func loadConfigs(configDir string) (*config.RulesConfig, *config.PoliciesConfig, error) {
	rulesCfg, err := config.LoadRules(filepath.Join(configDir, "rules.yaml"))
	if err != nil {
		return nil, nil, err
	}
	policiesCfg, err := config.LoadPolicies(filepath.Join(configDir, "policies.yaml"))
	if err != nil {
		return nil, nil, err
	}
	return rulesCfg, policiesCfg, nil
}

func emptyResult() *Result {
	return &Result{
		Alerts:    make(map[string][]contracts.Alert),
		Incidents: make(map[string][]contracts.Incident),
	}
}

// selectPolicies resolves the requested policy names against the catalog,
// warning about unknown names. "all" (or an empty request) selects every
// policy in file order.
func selectPolicies(policiesCfg *config.PoliciesConfig, requested []string) []string {
	available := analyzer.ListPolicyNames(policiesCfg)
	if len(requested) == 0 || (len(requested) == 1 && requested[0] == "all") {
		return available
	}

	known := make(map[string]struct{}, len(available))
	for _, name := range available {
		known[name] = struct{}{}
	}

	var selected []string
	for _, name := range requested {
		if _, ok := known[name]; ok {
			selected = append(selected, name)
		} else {
			common.Warn("unknown policy ignored", zap.String("policy", name))
		}
	}
	return selected
}

// analyze runs the detect -> correlate -> metrics chain once per selected
// policy over the same immutable event sequence.
func analyze(events []contracts.Event, rulesCfg *config.RulesConfig, policiesCfg *config.PoliciesConfig, opts Options) *Result {
	started := time.Now()
	horizonSec := HorizonSec(events, opts.HorizonDays)
	selected := selectPolicies(policiesCfg, opts.Policies)

	result := emptyResult()
	result.Events = events
	result.Selected = selected

	for _, name := range selected {
		mods := analyzer.GetModifiers(policiesCfg, name)

		alerts := analyzer.Detect(events, rulesCfg, mods)
		telemetry.CountAlerts(name, len(alerts))

		incidents := analyzer.Correlate(alerts, name, mods, analyzer.DefaultMergeWindowSec)
		for _, inc := range incidents {
			telemetry.CountIncident(name, string(inc.Severity))
		}

		m := analyzer.Compute(incidents, name, horizonSec)

		result.Alerts[name] = alerts
		result.Incidents[name] = incidents
		result.Metrics = append(result.Metrics, m)

		common.Info("policy analysed",
			zap.String("policy", name),
			zap.Int("alerts", len(alerts)),
			zap.Int("incidents", len(incidents)),
			zap.Float64("availability_pct", m.AvailabilityPct),
		)
	}

	result.Ranking = analyzer.RankControls(policiesCfg, selected)
	telemetry.ObserveCycle(time.Since(started).Seconds())
	return result
}

func writeOutputs(outDir string, result *Result) error {
	incidents := result.AllIncidents()

	if err := report.WriteResultsCSV(result.Metrics, filepath.Join(outDir, "results.csv")); err != nil {
		return err
	}
	if err := report.WriteIncidentsCSV(incidents, filepath.Join(outDir, "incidents.csv")); err != nil {
		return err
	}
	if err := report.WriteReportTXT(result.Metrics, incidents, result.Ranking, filepath.Join(outDir, "report.txt")); err != nil {
		return err
	}
	return report.WriteReportHTML(result.Metrics, incidents, result.Ranking, filepath.Join(outDir, "report.html"))
}
