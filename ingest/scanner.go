// Copyright (c) 2025 Neomantra Corp
//
// Newline-delimited JSON scanning, adapted from the teacher's
// json_scanner.go: a bufio.Scanner over one JSON value per line. The
// RType/Record/RecordPtr generic dispatch and Visitor pattern are
// dropped — the insert path has a single shape (mbp.Event, spec.md
// §3), so there is no record-kind sum type to dispatch over here.

package ingest

import (
	"bufio"
	"io"

	"github.com/neomantra/mbp-go"
	"github.com/valyala/fastjson"
)

// EventScanner scans a stream of newline-delimited JSON MBP-1 events.
type EventScanner struct {
	scanner *bufio.Scanner
	parser  fastjson.Parser
}

// NewEventScanner creates an EventScanner reading from r.
func NewEventScanner(r io.Reader) *EventScanner {
	s := &EventScanner{scanner: bufio.NewScanner(r)}
	s.scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return s
}

// Next advances to the next line. Returns false on EOF or error; call
// Err to distinguish the two.
func (s *EventScanner) Next() bool {
	return s.scanner.Scan()
}

// Err returns the last error from Next, or nil at a clean EOF.
func (s *EventScanner) Err() error {
	return s.scanner.Err()
}

// Decode parses the current line into an mbp.Event.
func (s *EventScanner) Decode() (mbp.Event, error) {
	var e mbp.Event
	val, err := s.parser.ParseBytes(s.scanner.Bytes())
	if err != nil {
		return e, err
	}
	err = e.FillJson(val)
	return e, err
}

// ReadEventsToSlice reads an entire NDJSON stream into a slice of
// Events. Intended for test fixtures and small batch files; the
// streaming Load (loader.go) is the bulk-ingest path.
func ReadEventsToSlice(r io.Reader) ([]mbp.Event, error) {
	events := make([]mbp.Event, 0)
	scanner := NewEventScanner(r)
	for scanner.Next() {
		e, err := scanner.Decode()
		if err != nil {
			return events, err
		}
		events = append(events, e)
	}
	return events, scanner.Err()
}
