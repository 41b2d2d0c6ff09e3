package storage

import (
	"fmt"
	"os"

	"github.com/mkravets/jobvault/internal/common"
)

// PermissionHandle wraps the persisted reference to a user-granted external
// directory. The grant can be revoked outside the app at any time, so the
// handle must be validated before each use instead of being trusted as a
// cached string.
type PermissionHandle struct {
	uri string
}

// HandleFromString restores a handle from its persisted form. An empty
// string yields a zero handle that fails validation.
func HandleFromString(s string) PermissionHandle {
	return PermissionHandle{uri: s}
}

// String returns the persistable form of the handle.
func (h PermissionHandle) String() string { return h.uri }

// IsZero reports whether no external directory was ever configured.
func (h PermissionHandle) IsZero() bool { return h.uri == "" }

// Validate re-checks that the grant behind the handle is still live: the
// directory must exist and be a directory. Returns
// common.ErrPermissionRevoked when the grant is stale.
func (h PermissionHandle) Validate() error {
	if h.IsZero() {
		return fmt.Errorf("%w: no external directory configured", common.ErrPermissionRevoked)
	}
	info, err := os.Stat(h.uri)
	if err != nil {
		return fmt.Errorf("%w: %s", common.ErrPermissionRevoked, h.uri)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", common.ErrPermissionRevoked, h.uri)
	}
	return nil
}
