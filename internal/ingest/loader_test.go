package ingest_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/internal/ingest"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/contracts"
)

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadEventsCSV(t *testing.T) {
	path := writeInput(t, "events.csv",
		"timestamp,source,component,event,actor,ip,key,value,unit,severity,tags,correlation_id\n"+
			"2026-02-26T10:00:00Z,edge-01,edge,auth_failure,root,203.0.113.7,,,,high,auth,COR-001\n"+
			"2026-02-26T10:00:05+00:00,inverter-01,inverter,telemetry_read,,,power_kw,4.2,kW,,,\n"+
			"not-a-timestamp,edge-01,edge,auth_failure,,,,,,,,\n"+
			"2026-02-26T10:00:10Z,api-gw,api,rate_exceeded,,,,,,,,\n")

	events, err := ingest.LoadEventsCSV(path)
	require.NoError(t, err)
	require.Len(t, events, 3, "the unparseable-timestamp row is skipped")

	assert.Equal(t, "edge-01", events[0].Source)
	assert.Equal(t, contracts.SeverityHigh, events[0].Severity)
	assert.Equal(t, "COR-001", events[0].CorrelationID)

	assert.Equal(t, "power_kw", events[1].Key)
	assert.Equal(t, contracts.SeverityLow, events[1].Severity, "missing severity defaults to low")
	assert.True(t, events[1].Time.Equal(events[0].Time.Add(5*time.Second)), "+00:00 form parsed")

	assert.Equal(t, contracts.EventRateExceeded, events[2].Event)
}

func TestLoadEventsCSVShortRow(t *testing.T) {
	// Rows shorter than the header are padded with empty strings.
	path := writeInput(t, "events.csv",
		"timestamp,source,component,event\n"+
			"2026-02-26T10:00:00Z,edge-01\n")

	events, err := ingest.LoadEventsCSV(path)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "", events[0].Component)
}

func TestLoadEventsCSVErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := ingest.LoadEventsCSV(filepath.Join(t.TempDir(), "absent.csv"))
		assert.Error(t, err)
	})

	t.Run("empty file has no header", func(t *testing.T) {
		path := writeInput(t, "events.csv", "")
		_, err := ingest.LoadEventsCSV(path)
		assert.Error(t, err)
	})
}

func TestLoadEventsJSONL(t *testing.T) {
	path := writeInput(t, "events.jsonl",
		`{"timestamp":"2026-02-26T10:00:00Z","source":"inverter-01","component":"inverter","event":"telemetry_read","key":"power_kw","value":4.2,"severity":"medium"}`+"\n"+
			"\n"+ // blank line ignored
			`{"timestamp":"2026-02-26T10:00:05Z","source":"api-gw","event":"rate_exceeded","value":true,"actor":null}`+"\n"+
			"{broken json\n"+
			`{"timestamp":"nope","source":"x"}`+"\n"+
			`{"timestamp":"2026-02-26T10:00:10Z","source":"db-main","event":"service_status","key":"status","value":"down"}`+"\n")

	events, err := ingest.LoadEventsJSONL(path)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "4.2", events[0].Value, "JSON numbers keep their literal form")
	assert.Equal(t, contracts.SeverityMedium, events[0].Severity)

	assert.Equal(t, "true", events[1].Value, "booleans stringified")
	assert.Equal(t, "", events[1].Actor, "null becomes empty")

	assert.Equal(t, "down", events[2].Value)
}

func TestLoadEventsDispatch(t *testing.T) {
	jsonlBody := `{"timestamp":"2026-02-26T10:00:00Z","source":"s1","event":"raw_log"}` + "\n"
	csvBody := "timestamp,source,event\n2026-02-26T10:00:00Z,s1,raw_log\n"

	tests := []struct {
		name string
		file string
		body string
	}{
		{"jsonl extension", "events.jsonl", jsonlBody},
		{"ndjson extension", "events.ndjson", jsonlBody},
		{"csv extension", "events.csv", csvBody},
		{"unknown extension treated as csv", "events.dat", csvBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeInput(t, tt.file, tt.body)
			events, err := ingest.LoadEvents(path)
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, "s1", events[0].Source)
		})
	}
}
