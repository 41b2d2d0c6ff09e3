// Package settings exposes the app-wide key-value settings store as a small
// injected dependency, so the storage adapter and the remote client can be
// tested without a real persistent store.
package settings

import "context"

// Keys owned by the backup subsystem.
const (
	KeyManagedDirHandle  = "backup.managed_dir_handle"
	KeyCloudAccessToken  = "cloud.access_token"
	KeyCloudRefreshToken = "cloud.refresh_token"
	KeyCloudTokenExpiry  = "cloud.token_expiry"

	// KeyAppSettings holds the opaque app configuration blob included in
	// every snapshot and restored on merge.
	KeyAppSettings = "app.settings"
)

// Store is an opaque get/set/clear key-value service. Get returns an empty
// string (not an error) for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
