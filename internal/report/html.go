package report

import (
	"bytes"
	"html/template"

	"go.uber.org/zap"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/internal/analyzer"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/common"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/contracts"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>SmartEnergy Cyber-Resilience Report</title>
<style>
  body { font-family: sans-serif; margin: 2em; color: #222; }
  h1 { border-bottom: 2px solid #444; padding-bottom: 0.3em; }
  table { border-collapse: collapse; margin: 1em 0; }
  th, td { border: 1px solid #999; padding: 0.4em 0.8em; text-align: left; }
  th { background: #eee; }
  .sev-critical { color: #b00020; font-weight: bold; }
  .sev-high { color: #d35400; }
</style>
</head>
<body>
<h1>SmartEnergy Cyber-Resilience Report</h1>

<h2>Policy metrics</h2>
<table>
<tr><th>Policy</th><th>Availability %</th><th>Downtime (hr)</th><th>Mean MTTD (min)</th><th>Mean MTTR (min)</th><th>Incidents</th></tr>
{{range .Metrics}}<tr>
  <td>{{.Policy}}</td>
  <td>{{printf "%.2f" .AvailabilityPct}}</td>
  <td>{{printf "%.4f" .TotalDowntimeHr}}</td>
  <td>{{printf "%.2f" .MeanMTTDMin}}</td>
  <td>{{printf "%.2f" .MeanMTTRMin}}</td>
  <td>{{.IncidentsTotal}}</td>
</tr>{{end}}
</table>

<h2>Control ranking</h2>
<table>
<tr><th>Policy</th><th>Effectiveness</th><th>Avg MTTD &times;</th><th>Avg MTTR &times;</th></tr>
{{range .Ranking}}<tr>
  <td>{{.Policy}}</td>
  <td>{{printf "%.3f" .Effectiveness}}</td>
  <td>{{printf "%.3f" .AvgMTTDMult}}</td>
  <td>{{printf "%.3f" .AvgMTTRMult}}</td>
</tr>{{end}}
</table>

<h2>Incidents ({{len .Incidents}})</h2>
<table>
<tr><th>Id</th><th>Policy</th><th>Threat</th><th>Severity</th><th>Component</th><th>Start</th><th>Impact</th></tr>
{{range .Incidents}}<tr>
  <td>{{.IncidentID}}</td>
  <td>{{.Policy}}</td>
  <td>{{.ThreatType}}</td>
  <td class="sev-{{.Severity}}">{{.Severity}}</td>
  <td>{{.Component}}</td>
  <td>{{.StartTS}}</td>
  <td>{{printf "%.4f" .ImpactScore}}</td>
</tr>{{end}}
</table>
</body>
</html>
`))

type htmlReportData struct {
	Metrics   []analyzer.PolicyMetrics
	Ranking   []analyzer.ControlRanking
	Incidents []contracts.Incident
}

// WriteReportHTML renders the HTML summary page.
func WriteReportHTML(metrics []analyzer.PolicyMetrics, incidents []contracts.Incident, ranking []analyzer.ControlRanking, path string) error {
	var buf bytes.Buffer
	data := htmlReportData{Metrics: metrics, Ranking: ranking, Incidents: incidents}
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return common.WrapError(err, "render html report", nil)
	}
	if err := AtomicWrite(path, buf.Bytes()); err != nil {
		return err
	}
	common.Info("wrote html report", zap.String("path", path))
	return nil
}
