// Package dataset stores the current in-device job record set. The backup
// subsystem reads it to assemble snapshots and writes merged records back
// through it; this is the domain layer's save path.
package dataset

import (
	"context"

	"github.com/mkravets/jobvault/internal/model"
)

// Repository describes the record operations the backup subsystem needs.
type Repository interface {
	// CreateOrUpdate upserts a record by id.
	CreateOrUpdate(ctx context.Context, rec model.Record) error

	// GetAll returns all records in insertion order.
	GetAll(ctx context.Context) ([]model.Record, error)

	// GetByID returns a record or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.Record, error)

	// DeleteByID removes a record by id.
	DeleteByID(ctx context.Context, id string) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// UpsertAll writes records in one transaction. Used by the merge step
	// so a failed merge never leaves a half-written dataset.
	UpsertAll(ctx context.Context, records []model.Record) error
}
