package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/mkravets/jobvault/internal/common"
)

// Managed is the external, user-granted storage location. Every operation
// first re-validates the permission handle; a stale grant surfaces as
// common.ErrPermissionRevoked so callers can prompt for reconfiguration
// instead of showing a generic failure.
type Managed struct {
	handle PermissionHandle
	inner  *Sandbox
}

// NewManaged returns an adapter over the directory the handle points at.
func NewManaged(handle PermissionHandle) *Managed {
	return &Managed{handle: handle, inner: NewSandbox(handle.String())}
}

// Handle returns the permission handle backing this adapter.
func (m *Managed) Handle() PermissionHandle { return m.handle }

func (m *Managed) Root() string { return m.inner.Root() }

func (m *Managed) EnsureDir() error {
	if err := m.handle.Validate(); err != nil {
		return err
	}
	return m.mapErr(m.inner.EnsureDir())
}

func (m *Managed) WriteFile(name string, data []byte) error {
	if err := m.handle.Validate(); err != nil {
		return err
	}
	return m.mapErr(m.inner.WriteFile(name, data))
}

func (m *Managed) ReadFile(name string) ([]byte, error) {
	if err := m.handle.Validate(); err != nil {
		return nil, err
	}
	data, err := m.inner.ReadFile(name)
	return data, m.mapErr(err)
}

func (m *Managed) WriteJSON(name string, v any) error {
	if err := m.handle.Validate(); err != nil {
		return err
	}
	return m.mapErr(m.inner.WriteJSON(name, v))
}

func (m *Managed) ReadJSON(name string, v any) error {
	if err := m.handle.Validate(); err != nil {
		return err
	}
	return m.mapErr(m.inner.ReadJSON(name, v))
}

func (m *Managed) List() ([]string, error) {
	if err := m.handle.Validate(); err != nil {
		return nil, err
	}
	names, err := m.inner.List()
	return names, m.mapErr(err)
}

func (m *Managed) MostRecent(prefix, suffix string) (string, error) {
	if err := m.handle.Validate(); err != nil {
		return "", err
	}
	name, err := m.inner.MostRecent(prefix, suffix)
	return name, m.mapErr(err)
}

func (m *Managed) Remove(name string) error {
	if err := m.handle.Validate(); err != nil {
		return err
	}
	return m.mapErr(m.inner.Remove(name))
}

func (m *Managed) Exists(name string) (bool, error) {
	if err := m.handle.Validate(); err != nil {
		return false, err
	}
	ok, err := m.inner.Exists(name)
	return ok, m.mapErr(err)
}

// mapErr upgrades medium failures caused by a revoked grant. NotFound and
// MalformedData pass through unchanged; anything that smells like an access
// failure becomes ErrPermissionRevoked.
func (m *Managed) mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrMalformedData) {
		return err
	}
	if errors.Is(err, common.ErrStorageUnavailable) || os.IsPermission(err) {
		return fmt.Errorf("%w: %s", common.ErrPermissionRevoked, m.inner.Root())
	}
	return err
}
