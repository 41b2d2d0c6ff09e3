package model

import (
	"encoding/json"
	"time"
)

// Schema versions recognized by the validator. SchemaVersionLegacy payloads
// are accepted with a compatibility warning; anything else is rejected.
const (
	SchemaVersionCurrent = "2"
	SchemaVersionLegacy  = "1"
)

// BackupSnapshot is the unit persisted to disk or remote storage. A snapshot
// is immutable once written; a new snapshot is always a new file or object.
type BackupSnapshot struct {
	SchemaVersion string           `json:"schemaVersion"`
	CreatedAt     time.Time        `json:"createdAt"`
	Records       []Record         `json:"records"`
	Settings      json.RawMessage  `json:"settings,omitempty"`
	Metadata      SnapshotMetadata `json:"metadata"`
}

// SnapshotMetadata is a derived summary of the snapshot contents. It is
// informational only and never authoritative.
type SnapshotMetadata struct {
	RecordCount int       `json:"recordCount"`
	ExportedAt  time.Time `json:"exportedAt"`
	AppVersion  string    `json:"appVersion"`
}

// DiffResult classifies an incoming record set against a local one.
// Ephemeral, never persisted.
type DiffResult struct {
	Created   []Record
	Updated   []Record
	Unchanged []Record
}

// Counts returns the sizes of the three categories.
func (d DiffResult) Counts() MergeStats {
	return MergeStats{
		Created:   len(d.Created),
		Updated:   len(d.Updated),
		Unchanged: len(d.Unchanged),
	}
}

// MergeStats holds the number of create/replace/keep decisions a merge made.
type MergeStats struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}
