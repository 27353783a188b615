package ingest

import (
	"bytes"
	"io"
	"os"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/common"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/contracts"
)

// Tail reads newly appended JSONL records from an append-only file across
// polls. It tracks the byte offset of consumed input and carries any
// trailing partial line to the next read, so records split across writes
// are parsed exactly once, when complete.
type Tail struct {
	path    string
	offset  int64
	partial []byte
	lineNo  int
}

// NewTail creates a tail reader positioned at the start of the file.
func NewTail(path string) *Tail {
	return &Tail{path: path}
}

// Offset returns the byte offset consumed so far.
func (t *Tail) Offset() int64 {
	return t.offset
}

// ReadNew parses every complete record appended since the previous call.
// A missing file yields no events and no error; the file may appear later.
func (t *Tail) ReadNew() ([]contracts.Event, error) {
	info, err := os.Stat(t.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, common.WrapError(err, "stat watch input", map[string]interface{}{"path": t.path})
	}
	if info.Size() <= t.offset {
		return nil, nil
	}

	f, err := os.Open(t.path)
	if err != nil {
		return nil, common.WrapError(err, "open watch input", map[string]interface{}{"path": t.path})
	}
	defer f.Close()

	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return nil, common.WrapError(err, "seek watch input", map[string]interface{}{"path": t.path})
	}

	appended, err := io.ReadAll(f)
	if err != nil {
		return nil, common.WrapError(err, "read watch input", map[string]interface{}{"path": t.path})
	}
	t.offset += int64(len(appended))

	buf := append(t.partial, appended...)
	var events []contracts.Event
	for {
		nl := bytes.IndexByte(buf, '\n')
		if nl < 0 {
			break
		}
		line := buf[:nl]
		buf = buf[nl+1:]
		t.lineNo++
		if event, ok := parseJSONLine(line, t.path, t.lineNo); ok {
			events = append(events, event)
		}
	}
	t.partial = append([]byte(nil), buf...)

	return events, nil
}
