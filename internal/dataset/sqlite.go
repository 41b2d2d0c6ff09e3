package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkravets/jobvault/internal/common"
	"github.com/mkravets/jobvault/internal/dbx"
	"github.com/mkravets/jobvault/internal/model"
)

// SQLiteRepository implements Repository over the local database. Timestamps
// are stored as RFC 3339 text so lexicographic comparison in SQL matches
// chronological order.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository returns a repository bound to db.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, rec model.Record) error {
	return upsert(ctx, r.db, rec)
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]model.Record, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT payload FROM records ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []model.Record
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		rec, err := model.RecordFromRaw(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: stored record: %v", common.ErrMalformedData, err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*model.Record, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM records WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: record %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select record %s: %w", id, err)
	}
	rec, err := model.RecordFromRaw(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: stored record %s: %v", common.ErrMalformedData, id, err)
	}
	return &rec, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("%w: record %s", common.ErrNotFound, id)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) UpsertAll(ctx context.Context, records []model.Record) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, rec := range records {
			if err := upsert(ctx, tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsert(ctx context.Context, db dbx.DBTX, rec model.Record) error {
	raw := rec.Raw()
	if len(raw) == 0 {
		return fmt.Errorf("%w: record %s has no document", common.ErrMalformedData, rec.Id)
	}
	query := `INSERT INTO records (id, updated_at, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at,
			payload = excluded.payload
	`
	_, err := db.ExecContext(ctx, query, rec.Id, rec.UpdatedAt.UTC().Format(time.RFC3339Nano), []byte(raw))
	if err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", rec.Id, err)
	}
	return nil
}
