// Package ingest loads normalized event streams from CSV and JSONL files.
// Malformed records are skipped with a warning; only unreadable files are
// errors.
package ingest

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/internal/telemetry"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/common"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/contracts"
)

// LoadEvents reads an event file, dispatching on extension:
// .jsonl/.ndjson are line-delimited JSON, everything else is CSV with a
// header line.
func LoadEvents(path string) ([]contracts.Event, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return LoadEventsJSONL(path)
	default:
		return LoadEventsCSV(path)
	}
}

// LoadEventsCSV reads events from a header-prefixed CSV file.
func LoadEventsCSV(path string) ([]contracts.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.WrapError(err, "cannot open event CSV", map[string]interface{}{"path": path})
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, common.NewError("E1001", "event CSV has no header", map[string]interface{}{"path": path})
	}

	var events []contracts.Event
	line := 1
	for {
		record, err := r.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			common.Warn("skipping malformed CSV row",
				zap.Int("line", line), zap.String("path", path), zap.Error(err))
			telemetry.CountRecordSkipped("csv_parse")
			continue
		}

		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				fields[col] = record[i]
			}
		}

		event, err := contracts.EventFromFields(fields)
		if err != nil {
			common.Warn("skipping CSV row",
				zap.Int("line", line), zap.String("path", path), zap.Error(err))
			telemetry.CountRecordSkipped("csv_record")
			continue
		}
		events = append(events, event)
	}

	telemetry.CountEventsLoaded("csv", len(events))
	common.Info("loaded events from CSV", zap.Int("events", len(events)), zap.String("path", path))
	return events, nil
}

// LoadEventsJSONL reads events from a line-delimited JSON file.
func LoadEventsJSONL(path string) ([]contracts.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.WrapError(err, "cannot open event JSONL", map[string]interface{}{"path": path})
	}
	defer f.Close()

	var events []contracts.Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		event, ok := parseJSONLine(scanner.Bytes(), path, line)
		if ok {
			events = append(events, event)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, common.WrapError(err, "reading event JSONL", map[string]interface{}{"path": path})
	}

	telemetry.CountEventsLoaded("jsonl", len(events))
	common.Info("loaded events from JSONL", zap.Int("events", len(events)), zap.String("path", path))
	return events, nil
}

// parseJSONLine decodes one JSONL line into an event. Blank lines and
// malformed records return ok=false.
func parseJSONLine(raw []byte, path string, line int) (contracts.Event, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return contracts.Event{}, false
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil {
		common.Warn("skipping malformed JSONL line",
			zap.Int("line", line), zap.String("path", path), zap.Error(err))
		telemetry.CountRecordSkipped("jsonl_parse")
		return contracts.Event{}, false
	}

	fields := make(map[string]string, len(obj))
	for k, v := range obj {
		fields[k] = stringify(v)
	}

	event, err := contracts.EventFromFields(fields)
	if err != nil {
		common.Warn("skipping JSONL record",
			zap.Int("line", line), zap.String("path", path), zap.Error(err))
		telemetry.CountRecordSkipped("jsonl_record")
		return contracts.Event{}, false
	}
	return event, true
}

func stringify(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case json.Number:
		return value.String()
	case bool:
		if value {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", value)
	}
}
