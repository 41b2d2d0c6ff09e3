package dataset

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkravets/jobvault/internal/common"
	"github.com/mkravets/jobvault/internal/localdb"
	"github.com/mkravets/jobvault/internal/model"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := localdb.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteRepository(db)
}

func newRec(t *testing.T, id string, updatedAt time.Time) model.Record {
	t.Helper()
	rec, err := model.NewRecord(id, updatedAt, map[string]any{"site": "yard", "minutes": 45})
	require.NoError(t, err)
	return rec
}

func TestRepositoryUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	ts := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	rec := newRec(t, uuid.NewString(), ts)
	require.NoError(t, repo.CreateOrUpdate(ctx, rec))

	got, err := repo.GetByID(ctx, rec.Id)
	require.NoError(t, err)
	assert.True(t, got.Equal(rec))
	assert.True(t, got.UpdatedAt.Equal(ts))
}

func TestRepositoryUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	id := uuid.NewString()
	require.NoError(t, repo.CreateOrUpdate(ctx, newRec(t, id, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))))

	newer := newRec(t, id, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.CreateOrUpdate(ctx, newer))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Equal(newer))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRepositoryGetAllPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	ids := []string{"c-3", "a-1", "b-2"}
	for i, id := range ids {
		require.NoError(t, repo.CreateOrUpdate(ctx,
			newRec(t, id, time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC))))
	}

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, id := range ids {
		assert.Equal(t, id, all[i].Id)
	}
}

func TestRepositoryGetMissingIsNotFound(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.GetByID(context.Background(), "missing")
	require.True(t, errors.Is(err, common.ErrNotFound))
}

func TestRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	rec := newRec(t, uuid.NewString(), time.Now().UTC())
	require.NoError(t, repo.CreateOrUpdate(ctx, rec))
	require.NoError(t, repo.DeleteByID(ctx, rec.Id))

	err := repo.DeleteByID(ctx, rec.Id)
	require.True(t, errors.Is(err, common.ErrNotFound))
}

func TestRepositoryUpsertAllTransactional(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	good := newRec(t, "good", time.Now().UTC())
	var broken model.Record // no document, upsert must fail

	err := repo.UpsertAll(ctx, []model.Record{good, broken})
	require.Error(t, err)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "failed batch must not leave partial writes")
}

func TestRepositoryUpsertAll(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	records := []model.Record{
		newRec(t, "a", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
		newRec(t, "b", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)),
	}
	require.NoError(t, repo.UpsertAll(ctx, records))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
