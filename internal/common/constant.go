package common

// SnapshotFilePrefix and SnapshotFileExt form the backup file naming scheme
// backup_<timestamp>.json. Timestamps are formatted so that lexicographic
// order equals chronological order.
const (
	SnapshotFilePrefix = "backup_"
	SnapshotFileExt    = ".json"
)

// SnapshotTimestampLayout is a filesystem-safe ISO-8601-like layout used in
// snapshot filenames (colons are not portable across file systems).
const SnapshotTimestampLayout = "2006-01-02T15-04-05"
