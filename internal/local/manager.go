// Package local orchestrates snapshot creation, import and merge against the
// device's own storage. Every operation is a fresh run; the manager keeps no
// state between calls beyond its collaborators.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/jobvault/internal/common"
	"github.com/mkravets/jobvault/internal/dataset"
	"github.com/mkravets/jobvault/internal/logging"
	"github.com/mkravets/jobvault/internal/mergex"
	"github.com/mkravets/jobvault/internal/model"
	"github.com/mkravets/jobvault/internal/schema"
	"github.com/mkravets/jobvault/internal/settings"
	"github.com/mkravets/jobvault/internal/storage"
)

// CreateResult reports the outcome of one backup creation. The sandbox write
// is the primary result; the external copy and the companion export are
// best-effort and reported separately.
type CreateResult struct {
	FileName    string
	RecordCount int

	// ManagedCopied is true when the snapshot was also copied to the
	// configured external directory. ManagedErr carries the copy failure
	// when it was attempted and failed.
	ManagedCopied bool
	ManagedErr    error

	// ExportName is the companion human-readable file, empty when
	// rendering failed. ExportErr carries the failure.
	ExportName string
	ExportErr  error
}

// ImportPreview is the outcome of reading and validating a backup file. No
// mutation has happened yet; the caller confirms the diff before Merge.
type ImportPreview struct {
	Snapshot *model.BackupSnapshot
	Diff     model.DiffResult
	Warning  *schema.Warning
	FileName string
}

// Manager runs local backup operations. The managed external adapter is
// resolved from the settings store on every call because its permission
// handle can be revoked or reconfigured between calls.
type Manager struct {
	sandbox  storage.Adapter
	records  dataset.Repository
	settings settings.Store
	schema   *schema.Validator
	renderer ExportRenderer
	log      logging.Logger

	appVersion string
	now        func() time.Time
}

func NewManager(sandbox storage.Adapter, records dataset.Repository,
	st settings.Store, v *schema.Validator, renderer ExportRenderer,
	log logging.Logger, appVersion string) *Manager {
	if renderer == nil {
		renderer = TextRenderer{}
	}
	return &Manager{
		sandbox:    sandbox,
		records:    records,
		settings:   st,
		schema:     v,
		renderer:   renderer,
		log:        log,
		appVersion: appVersion,
		now:        time.Now,
	}
}

// managedAdapter resolves the external directory adapter, or nil when none
// is configured. A configured but revoked handle is still returned; the
// adapter itself reports ErrPermissionRevoked on use.
func (m *Manager) managedAdapter(ctx context.Context) (storage.Adapter, error) {
	raw, err := m.settings.Get(ctx, settings.KeyManagedDirHandle)
	if err != nil {
		return nil, fmt.Errorf("read external dir handle: %w", err)
	}
	if raw == "" {
		return nil, nil
	}
	return storage.NewManaged(storage.HandleFromString(raw)), nil
}

// BuildSnapshot assembles the current dataset and settings blob into a
// schema-valid snapshot and its serialized form.
func (m *Manager) BuildSnapshot(ctx context.Context) (*model.BackupSnapshot, []byte, error) {
	records, err := m.records.GetAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load dataset: %w", err)
	}

	settingsBlob, err := m.settings.Get(ctx, settings.KeyAppSettings)
	if err != nil {
		return nil, nil, fmt.Errorf("load settings blob: %w", err)
	}

	now := m.now().UTC()
	snap := &model.BackupSnapshot{
		SchemaVersion: model.SchemaVersionCurrent,
		CreatedAt:     now,
		Records:       records,
		Metadata: model.SnapshotMetadata{
			RecordCount: len(records),
			ExportedAt:  now,
			AppVersion:  m.appVersion,
		},
	}
	if settingsBlob != "" {
		snap.Settings = json.RawMessage(settingsBlob)
	}

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("serialize snapshot: %w", err)
	}

	// Self-check: never hand out a snapshot this subsystem would refuse
	// to read back.
	if _, _, err := m.schema.Validate(raw); err != nil {
		return nil, nil, fmt.Errorf("snapshot self-validation: %w", err)
	}
	return snap, raw, nil
}

// Create writes a new timestamped snapshot into the sandbox, then
// best-effort copies it to the configured external directory and writes the
// companion export. Any sandbox failure aborts the whole operation; copy and
// export failures are reported in the result without rolling anything back.
func (m *Manager) Create(ctx context.Context) (*CreateResult, error) {
	snap, raw, err := m.BuildSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	name := SnapshotFileName(snap.CreatedAt)
	if err := m.sandbox.EnsureDir(); err != nil {
		return nil, fmt.Errorf("prepare backup directory: %w", err)
	}
	if err := m.sandbox.WriteFile(name, raw); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}
	m.log.Info(ctx, "snapshot written", "file", name, "records", snap.Metadata.RecordCount)

	result := &CreateResult{FileName: name, RecordCount: snap.Metadata.RecordCount}

	managed, err := m.managedAdapter(ctx)
	if err != nil {
		result.ManagedErr = err
	} else if managed != nil {
		if err := copySnapshot(managed, name, raw); err != nil {
			result.ManagedErr = err
			m.log.Warn(ctx, "external copy failed", "file", name, "error", err)
		} else {
			result.ManagedCopied = true
		}
	}

	content, ext, err := m.renderer.Render(snap)
	if err != nil {
		result.ExportErr = fmt.Errorf("render export: %w", err)
	} else {
		exportName := strings.TrimSuffix(name, common.SnapshotFileExt) + ext
		if err := m.sandbox.WriteFile(exportName, content); err != nil {
			result.ExportErr = fmt.Errorf("write export: %w", err)
		} else {
			result.ExportName = exportName
		}
	}
	if result.ExportErr != nil {
		m.log.Warn(ctx, "companion export failed", "file", name, "error", result.ExportErr)
	}

	return result, nil
}

func copySnapshot(dst storage.Adapter, name string, raw []byte) error {
	if err := dst.EnsureDir(); err != nil {
		return err
	}
	return dst.WriteFile(name, raw)
}

// LatestBackupName returns the most recent snapshot filename in the sandbox.
func (m *Manager) LatestBackupName(ctx context.Context) (string, error) {
	name, err := m.sandbox.MostRecent(common.SnapshotFilePrefix, common.SnapshotFileExt)
	if err != nil {
		return "", fmt.Errorf("find latest backup: %w", err)
	}
	return name, nil
}

// Import reads a snapshot file from the sandbox, validates it and computes
// the diff against the current dataset. Nothing is mutated; the caller
// shows the preview and then calls Merge with the parsed snapshot.
func (m *Manager) Import(ctx context.Context, name string) (*ImportPreview, error) {
	raw, err := m.sandbox.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read backup file %s: %w", name, err)
	}
	preview, err := m.ImportBytes(ctx, raw)
	if err != nil {
		return nil, err
	}
	preview.FileName = name
	return preview, nil
}

// ImportBytes validates raw snapshot bytes and computes the diff preview.
// Also used for payloads downloaded from remote storage.
func (m *Manager) ImportBytes(ctx context.Context, raw []byte) (*ImportPreview, error) {
	snap, warning, err := m.schema.Validate(raw)
	if err != nil {
		return nil, err
	}
	if warning != nil {
		m.log.Warn(ctx, "legacy backup accepted", "schemaVersion", snap.SchemaVersion)
	}

	local, err := m.records.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return &ImportPreview{
		Snapshot: snap,
		Diff:     mergex.Diff(local, snap.Records),
		Warning:  warning,
	}, nil
}

// Merge applies a confirmed snapshot: last-write-wins against the current
// dataset, persisted in one transaction, then the incoming settings blob.
func (m *Manager) Merge(ctx context.Context, snap *model.BackupSnapshot) (model.MergeStats, error) {
	local, err := m.records.GetAll(ctx)
	if err != nil {
		return model.MergeStats{}, fmt.Errorf("load dataset: %w", err)
	}

	merged, stats := mergex.Merge(local, snap.Records)
	if err := m.records.UpsertAll(ctx, merged); err != nil {
		return model.MergeStats{}, fmt.Errorf("persist merged dataset: %w", err)
	}

	if len(snap.Settings) > 0 {
		if err := m.settings.Set(ctx, settings.KeyAppSettings, string(snap.Settings)); err != nil {
			return model.MergeStats{}, fmt.Errorf("persist settings blob: %w", err)
		}
	}

	m.log.Info(ctx, "snapshot merged",
		"created", stats.Created, "updated", stats.Updated, "unchanged", stats.Unchanged)
	return stats, nil
}

// selfTestPayload is the probe written and read back by SelfTest.
type selfTestPayload struct {
	Probe string `json:"probe"`
}

// SelfTest verifies a storage location end to end: write a probe file, read
// it back, compare, delete. Used before relying on a newly configured
// location.
func (m *Manager) SelfTest(ctx context.Context, adapter storage.Adapter) error {
	if err := adapter.EnsureDir(); err != nil {
		return fmt.Errorf("storage self-test: %w", err)
	}

	name := "selftest_" + uuid.NewString() + ".json"
	want := selfTestPayload{Probe: uuid.NewString()}

	if err := adapter.WriteJSON(name, want); err != nil {
		return fmt.Errorf("storage self-test write: %w", err)
	}
	var got selfTestPayload
	if err := adapter.ReadJSON(name, &got); err != nil {
		return fmt.Errorf("storage self-test read: %w", err)
	}
	if got != want {
		return fmt.Errorf("%w: self-test read back %q, wrote %q",
			common.ErrStorageUnavailable, got.Probe, want.Probe)
	}
	if err := adapter.Remove(name); err != nil {
		return fmt.Errorf("storage self-test cleanup: %w", err)
	}
	m.log.Info(ctx, "storage self-test passed", "root", adapter.Root())
	return nil
}

// TestConfiguredStorage self-tests the sandbox and, when configured, the
// external directory.
func (m *Manager) TestConfiguredStorage(ctx context.Context) error {
	if err := m.SelfTest(ctx, m.sandbox); err != nil {
		return err
	}
	managed, err := m.managedAdapter(ctx)
	if err != nil {
		return err
	}
	if managed != nil {
		return m.SelfTest(ctx, managed)
	}
	return nil
}

// ConfigureManagedDir validates and self-tests a new external directory,
// then persists its handle. An empty dir clears the configuration.
func (m *Manager) ConfigureManagedDir(ctx context.Context, dir string) error {
	if dir == "" {
		if err := m.settings.Delete(ctx, settings.KeyManagedDirHandle); err != nil {
			return fmt.Errorf("clear external dir handle: %w", err)
		}
		return nil
	}

	handle := storage.HandleFromString(dir)
	if err := handle.Validate(); err != nil {
		return err
	}
	if err := m.SelfTest(ctx, storage.NewManaged(handle)); err != nil {
		return err
	}
	if err := m.settings.Set(ctx, settings.KeyManagedDirHandle, handle.String()); err != nil {
		return fmt.Errorf("persist external dir handle: %w", err)
	}
	m.log.Info(ctx, "external backup directory configured", "dir", dir)
	return nil
}

// SnapshotFileName builds the timestamped snapshot filename. Lexicographic
// order of these names equals chronological order.
func SnapshotFileName(ts time.Time) string {
	return common.SnapshotFilePrefix +
		ts.Format(common.SnapshotTimestampLayout) +
		common.SnapshotFileExt
}
