// Package remote implements the cloud side of the backup subsystem: OAuth
// session lifecycle with transparent token refresh, a drive-style HTTP
// client with folder discovery and multipart uploads, and an S3-compatible
// alternative. All remote calls share one retry policy and a caller-supplied
// context for cancellation.
package remote

import (
	"context"
	"time"
)

// Store is the contract both remote backends satisfy. The facade selects an
// implementation by configuration.
type Store interface {
	// Upload stores data under name and returns the remote object id.
	Upload(ctx context.Context, name string, data []byte) (string, error)

	// List returns the backup objects in the app folder, newest first.
	List(ctx context.Context) ([]ObjectInfo, error)

	// Download fetches an object's raw bytes by id. The payload is not
	// trusted until it passes schema validation.
	Download(ctx context.Context, id string) ([]byte, error)

	// Delete removes an object by id.
	Delete(ctx context.Context, id string) error
}

// ObjectInfo describes one remote backup object.
type ObjectInfo struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Modified time.Time `json:"modified"`
}
