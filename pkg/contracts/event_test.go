package contracts_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/common"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/contracts"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"trailing Z form", "2026-02-26T10:00:00Z", false},
		{"explicit zero offset", "2026-02-26T10:00:00+00:00", false},
		{"non-zero offset normalized to UTC", "2026-02-26T12:00:00+02:00", false},
		{"missing timezone", "2026-02-26T10:00:00", true},
		{"garbage", "not-a-timestamp", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := contracts.ParseTimestamp(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, common.IsErrorCode(err, "E1002"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseTimestampEquivalentForms(t *testing.T) {
	z, err := contracts.ParseTimestamp("2026-02-26T10:00:00Z")
	require.NoError(t, err)
	offset, err := contracts.ParseTimestamp("2026-02-26T10:00:00+00:00")
	require.NoError(t, err)

	assert.True(t, z.Equal(offset), "Z and +00:00 must denote the same instant")
}

func TestFormatTimestamp(t *testing.T) {
	instant := time.Date(2026, 2, 26, 10, 0, 30, 0, time.UTC)
	assert.Equal(t, "2026-02-26T10:00:30Z", contracts.FormatTimestamp(instant))

	// Non-UTC instants are rendered in UTC.
	kyiv := time.FixedZone("EET", 2*3600)
	assert.Equal(t, "2026-02-26T10:00:30Z",
		contracts.FormatTimestamp(time.Date(2026, 2, 26, 12, 0, 30, 0, kyiv)))
}

func TestEventFromFields(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		event, err := contracts.EventFromFields(map[string]string{
			"timestamp":      "2026-02-26T10:00:00Z",
			"source":         "inverter-01",
			"component":      "inverter",
			"event":          contracts.EventTelemetryRead,
			"actor":          "scheduler",
			"ip":             "10.0.0.5",
			"key":            "power_kw",
			"value":          "4.2",
			"unit":           "kW",
			"severity":       "medium",
			"tags":           "telemetry;solar",
			"correlation_id": "COR-001",
		})
		require.NoError(t, err)
		assert.Equal(t, "inverter-01", event.Source)
		assert.Equal(t, contracts.SeverityMedium, event.Severity)
		assert.Equal(t, "COR-001", event.CorrelationID)
		assert.Equal(t, time.Date(2026, 2, 26, 10, 0, 0, 0, time.UTC), event.Time)
	})

	t.Run("severity defaults to low", func(t *testing.T) {
		event, err := contracts.EventFromFields(map[string]string{
			"timestamp": "2026-02-26T10:00:00Z",
			"source":    "api-gw",
			"event":     contracts.EventHTTPRequest,
		})
		require.NoError(t, err)
		assert.Equal(t, contracts.SeverityLow, event.Severity)
	})

	t.Run("missing timestamp rejected", func(t *testing.T) {
		_, err := contracts.EventFromFields(map[string]string{
			"source": "api-gw",
			"event":  contracts.EventHTTPRequest,
		})
		require.Error(t, err)
		assert.True(t, common.IsErrorCode(err, "E1001"))
	})

	t.Run("unparseable timestamp rejected", func(t *testing.T) {
		_, err := contracts.EventFromFields(map[string]string{
			"timestamp": "yesterday",
			"source":    "api-gw",
		})
		require.Error(t, err)
		assert.True(t, common.IsErrorCode(err, "E1002"))
	})
}

func TestEventCSVRecord(t *testing.T) {
	event := contracts.Event{
		Timestamp:     "2026-02-26T10:00:00Z",
		Source:        "edge-01",
		Component:     "edge",
		Event:         contracts.EventAuthFailure,
		Actor:         "root",
		IP:            "203.0.113.7",
		Key:           "attempt",
		Value:         "1",
		Unit:          "",
		Severity:      contracts.SeverityHigh,
		Tags:          "auth",
		CorrelationID: "COR-007",
	}

	record := event.CSVRecord()
	require.Len(t, record, len(contracts.EventCSVColumns))
	assert.Equal(t, "2026-02-26T10:00:00Z", record[0])
	assert.Equal(t, "edge-01", record[1])
	assert.Equal(t, "high", record[9])
	assert.Equal(t, "COR-007", record[11])
}
