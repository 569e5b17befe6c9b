// Copyright (c) 2025 Neomantra Corp
//
// NDJSON export, adapted from the teacher's internal/file/json_writer.go:
// WriteAsJson is kept verbatim, the record-kind visitor is replaced with
// a RecordEnvelope switch since this store streams a sum type rather
// than dispatching through a Visitor.

package export

import (
	"encoding/json"
	"io"

	"github.com/neomantra/mbp-go"
)

// WriteAsJson writes a value marshalled as JSON to the writer, followed
// by a newline, returning any error.
func WriteAsJson[T any](val *T, writer io.Writer) error {
	jstr, err := json.Marshal(val)
	if err != nil {
		return err
	}
	if _, err := writer.Write(jstr); err != nil {
		return err
	}
	_, err = writer.Write([]byte{'\n'})
	return err
}

// JsonWriter emits a RecordEnvelope stream as newline-delimited JSON,
// one record per line, matching the on-disk shape of its underlying
// Msg type (the envelope wrapper itself is never serialized).
type JsonWriter struct {
	w io.Writer
}

// NewJsonWriter returns a JsonWriter over w.
func NewJsonWriter(w io.Writer) *JsonWriter {
	return &JsonWriter{w: w}
}

// Write encodes one envelope's underlying record as an NDJSON line.
func (jw *JsonWriter) Write(rec mbp.RecordEnvelope) error {
	switch rec.Kind {
	case mbp.RecordKind_Mbp1:
		return WriteAsJson(rec.Mbp1, jw.w)
	case mbp.RecordKind_Trade:
		return WriteAsJson(rec.Trade, jw.w)
	case mbp.RecordKind_Tbbo:
		return WriteAsJson(rec.Tbbo, jw.w)
	case mbp.RecordKind_Bbo:
		return WriteAsJson(rec.Bbo, jw.w)
	case mbp.RecordKind_Ohlcv:
		return WriteAsJson(rec.Ohlcv, jw.w)
	default:
		return nil
	}
}
