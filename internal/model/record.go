// Package model defines the data types the backup subsystem persists and
// exchanges: job records, backup snapshots and diff results.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Record is a single job entry. The subsystem interprets only Id and
// UpdatedAt; the rest of the document is domain payload carried verbatim.
//
// A Record unmarshalled from JSON keeps the original raw bytes, so that
// marshalling it again reproduces the source document exactly, unknown
// fields included.
type Record struct {
	Id        string
	UpdatedAt time.Time

	raw json.RawMessage
}

// recordProbe extracts the two fields the subsystem understands.
type recordProbe struct {
	Id        string    `json:"id"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewRecord builds a Record from an id, a modification timestamp and an
// arbitrary domain payload. Keys "id" and "updatedAt" in payload are
// overridden by the explicit arguments.
func NewRecord(id string, updatedAt time.Time, payload map[string]any) (Record, error) {
	doc := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		doc[k] = v
	}
	doc["id"] = id
	doc["updatedAt"] = updatedAt.Format(time.RFC3339Nano)

	b, err := json.Marshal(doc)
	if err != nil {
		return Record{}, fmt.Errorf("marshal record %s: %w", id, err)
	}
	return Record{Id: id, UpdatedAt: updatedAt, raw: b}, nil
}

// RecordFromRaw parses a raw JSON document into a Record, keeping the
// document verbatim.
func RecordFromRaw(raw []byte) (Record, error) {
	var r Record
	if err := r.UnmarshalJSON(raw); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Raw returns the verbatim JSON document of the record.
func (r Record) Raw() json.RawMessage {
	return r.raw
}

// Equal reports whether two records carry byte-identical documents.
func (r Record) Equal(other Record) bool {
	return bytes.Equal(r.raw, other.raw)
}

func (r *Record) UnmarshalJSON(b []byte) error {
	var probe recordProbe
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	r.Id = probe.Id
	r.UpdatedAt = probe.UpdatedAt
	r.raw = append(r.raw[:0], b...)
	return nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	if len(r.raw) == 0 {
		return nil, fmt.Errorf("record %s has no document", r.Id)
	}
	return r.raw, nil
}
