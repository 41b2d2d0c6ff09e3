// Package backup is the facade the UI layer calls. It sequences the local
// manager, the remote store and the session, and normalizes every outcome
// into a uniform success/message/data shape. No error type crosses this
// boundary; the mapping from the error taxonomy to user-facing text lives
// here and nowhere else.
package backup

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkravets/jobvault/internal/common"
	"github.com/mkravets/jobvault/internal/local"
	"github.com/mkravets/jobvault/internal/logging"
	"github.com/mkravets/jobvault/internal/remote"
	"github.com/mkravets/jobvault/internal/schema"
)

// Result is the uniform shape every facade operation returns.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Service sequences backup operations for the UI layer. A restore is a
// two-step flow: RestoreFromFile/RestoreFromCloud produce a diff preview
// held as the pending restore, and ConfirmRestore applies it. Callers must
// not run two flows concurrently; the UI disables controls while one is in
// flight.
type Service struct {
	local   *local.Manager
	store   remote.Store
	session *remote.Session
	log     logging.Logger

	pending *local.ImportPreview
}

// New builds the facade. store and session may be nil when no cloud
// provider is configured; cloud operations then fail with a configuration
// message instead of an error.
func New(lm *local.Manager, store remote.Store, session *remote.Session, log logging.Logger) *Service {
	return &Service{local: lm, store: store, session: session, log: log}
}

// BackupNow creates a snapshot in the sandbox and best-effort copies it to
// the external directory. Data is the created filename.
func (s *Service) BackupNow(ctx context.Context) Result {
	return s.do(ctx, "backup", func() (string, any, error) {
		result, err := s.local.Create(ctx)
		if err != nil {
			return "", nil, err
		}
		msg := fmt.Sprintf("backup saved as %s (%d records)", result.FileName, result.RecordCount)
		if result.ManagedErr != nil {
			msg += "; the copy to the external folder failed: " + userMessage(result.ManagedErr)
		} else if result.ManagedCopied {
			msg += ", copied to the external folder"
		}
		return msg, result.FileName, nil
	})
}

// RestoreFromFile validates the named snapshot (latest when name is empty)
// and stores the diff preview as the pending restore. Data is the diff
// counts; nothing is applied until ConfirmRestore.
func (s *Service) RestoreFromFile(ctx context.Context, name string) Result {
	return s.do(ctx, "restore from file", func() (string, any, error) {
		if name == "" {
			latest, err := s.local.LatestBackupName(ctx)
			if err != nil {
				return "", nil, err
			}
			name = latest
		}
		preview, err := s.local.Import(ctx, name)
		if err != nil {
			return "", nil, err
		}
		s.pending = preview
		return previewMessage(preview), preview.Diff.Counts(), nil
	})
}

// ConfirmRestore applies the pending restore. Data is the merge counts.
func (s *Service) ConfirmRestore(ctx context.Context) Result {
	return s.do(ctx, "confirm restore", func() (string, any, error) {
		if s.pending == nil {
			return "", nil, errNoPendingRestore
		}
		stats, err := s.local.Merge(ctx, s.pending.Snapshot)
		if err != nil {
			return "", nil, err
		}
		s.pending = nil
		return fmt.Sprintf("restore applied: %d created, %d updated, %d unchanged",
			stats.Created, stats.Updated, stats.Unchanged), stats, nil
	})
}

// CancelRestore drops the pending restore without applying it.
func (s *Service) CancelRestore() Result {
	s.pending = nil
	return Result{Success: true, Message: "restore cancelled"}
}

// BackupToCloud uploads a fresh snapshot to the configured cloud provider.
// Data is the remote object id.
func (s *Service) BackupToCloud(ctx context.Context) Result {
	return s.do(ctx, "cloud backup", func() (string, any, error) {
		if s.store == nil {
			return "", nil, errCloudNotConfigured
		}
		snap, raw, err := s.local.BuildSnapshot(ctx)
		if err != nil {
			return "", nil, err
		}
		name := local.SnapshotFileName(snap.CreatedAt)
		id, err := s.store.Upload(ctx, name, raw)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("backup %s uploaded (%d records)", name, snap.Metadata.RecordCount), id, nil
	})
}

// RestoreFromCloud downloads the newest cloud snapshot, validates it and
// stores the diff preview as the pending restore.
func (s *Service) RestoreFromCloud(ctx context.Context) Result {
	return s.do(ctx, "cloud restore", func() (string, any, error) {
		if s.store == nil {
			return "", nil, errCloudNotConfigured
		}
		objects, err := s.store.List(ctx)
		if err != nil {
			return "", nil, err
		}
		if len(objects) == 0 {
			return "", nil, fmt.Errorf("%w: no cloud backups", common.ErrNotFound)
		}
		raw, err := s.store.Download(ctx, objects[0].ID)
		if err != nil {
			return "", nil, err
		}
		preview, err := s.local.ImportBytes(ctx, raw)
		if err != nil {
			return "", nil, err
		}
		preview.FileName = objects[0].Name
		s.pending = preview
		return previewMessage(preview), preview.Diff.Counts(), nil
	})
}

// TestStorage self-tests the sandbox and, when configured, the external
// directory.
func (s *Service) TestStorage(ctx context.Context) Result {
	return s.do(ctx, "storage test", func() (string, any, error) {
		if err := s.local.TestConfiguredStorage(ctx); err != nil {
			return "", nil, err
		}
		return "storage locations are working", nil, nil
	})
}

// ConfigureStorage validates, self-tests and persists a new external backup
// directory. An empty dir clears the configuration.
func (s *Service) ConfigureStorage(ctx context.Context, dir string) Result {
	return s.do(ctx, "configure storage", func() (string, any, error) {
		if err := s.local.ConfigureManagedDir(ctx, dir); err != nil {
			return "", nil, err
		}
		if dir == "" {
			return "external backup folder cleared", nil, nil
		}
		return "external backup folder configured", dir, nil
	})
}

// SignInURL starts the cloud sign-in flow. Data is the URL the user opens
// in a browser to authorize the app.
func (s *Service) SignInURL(ctx context.Context) Result {
	return s.do(ctx, "sign-in url", func() (string, any, error) {
		if s.session == nil {
			return "", nil, errCloudNotConfigured
		}
		url, _ := s.session.AuthCodeURL()
		return "open this link in a browser and paste the code back", url, nil
	})
}

// SignIn completes the flow with the authorization code from the provider.
func (s *Service) SignIn(ctx context.Context, code string) Result {
	return s.do(ctx, "sign-in", func() (string, any, error) {
		if s.session == nil {
			return "", nil, errCloudNotConfigured
		}
		if err := s.session.Exchange(ctx, code); err != nil {
			return "", nil, err
		}
		return "signed in to cloud backup", nil, nil
	})
}

// SignOut destroys the cloud session and its stored tokens.
func (s *Service) SignOut(ctx context.Context) Result {
	return s.do(ctx, "sign-out", func() (string, any, error) {
		if s.session == nil {
			return "", nil, errCloudNotConfigured
		}
		if err := s.session.SignOut(ctx); err != nil {
			return "", nil, err
		}
		return "signed out", nil, nil
	})
}

var (
	errNoPendingRestore   = errors.New("no restore is pending")
	errCloudNotConfigured = errors.New("cloud backup is not configured")
)

// do runs one facade operation and converts every outcome, panics included,
// into a Result.
func (s *Service) do(ctx context.Context, op string, fn func() (string, any, error)) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error(ctx, op+" panicked", "panic", r)
			res = Result{Success: false, Message: "something went wrong, please try again"}
		}
	}()

	msg, data, err := fn()
	if err != nil {
		s.log.Error(ctx, op+" failed", "error", err)
		return Result{Success: false, Message: userMessage(err)}
	}
	return Result{Success: true, Message: msg, Data: data}
}

func previewMessage(p *local.ImportPreview) string {
	c := p.Diff.Counts()
	msg := fmt.Sprintf("backup %s: %d new, %d updated, %d unchanged; confirm to apply",
		p.FileName, c.Created, c.Updated, c.Unchanged)
	if p.Warning != nil {
		msg += " (" + p.Warning.Message + ")"
	}
	return msg
}

// userMessage is the single place the error taxonomy becomes user-facing
// text. Every branch produces a specific, actionable message.
func userMessage(err error) string {
	var verr *schema.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, errNoPendingRestore):
		return "no restore is pending, load a backup first"
	case errors.Is(err, errCloudNotConfigured):
		return "cloud backup is not configured, set a provider in the settings"
	case errors.Is(err, common.ErrPermissionRevoked):
		return "storage permission was revoked, please reselect a folder"
	case errors.Is(err, common.ErrStorageUnavailable):
		return "the storage location is not usable, please check it and try again"
	case errors.Is(err, common.ErrNotFound):
		return "no matching backup was found"
	case errors.Is(err, common.ErrMalformedData):
		return "the backup file is damaged and cannot be read"
	case errors.Is(err, common.ErrAuthFailed):
		return "cloud sign-in failed, please try again"
	case errors.Is(err, common.ErrTokenExpired):
		return "your cloud session has expired, please sign in again"
	case errors.Is(err, common.ErrTransient):
		return "the cloud service is temporarily unavailable, please try again later"
	case errors.Is(err, context.Canceled):
		return "the operation was cancelled"
	default:
		return "the operation could not be completed"
	}
}
