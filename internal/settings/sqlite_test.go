package settings

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE settings (key TEXT PRIMARY KEY, value TEXT NOT NULL)`)
	require.NoError(t, err)
	return NewSQLiteStore(db)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	require.NoError(t, store.Set(ctx, KeyManagedDirHandle, "/mnt/usb/backups"))
	require.NoError(t, store.Set(ctx, KeyCloudRefreshToken, "rt-1"))

	v, err := store.Get(ctx, KeyManagedDirHandle)
	require.NoError(t, err)
	assert.Equal(t, "/mnt/usb/backups", v)
}

func TestSQLiteStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	require.NoError(t, store.Set(ctx, KeyCloudAccessToken, "old"))
	require.NoError(t, store.Set(ctx, KeyCloudAccessToken, "new"))

	v, err := store.Get(ctx, KeyCloudAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}

func TestSQLiteStoreMissingKeyIsEmpty(t *testing.T) {
	store := setupStore(t)

	v, err := store.Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSQLiteStoreDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	require.NoError(t, store.Set(ctx, KeyCloudAccessToken, "at"))
	require.NoError(t, store.Set(ctx, KeyCloudRefreshToken, "rt"))

	require.NoError(t, store.Delete(ctx, KeyCloudAccessToken))
	v, err := store.Get(ctx, KeyCloudAccessToken)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, store.Clear(ctx))
	v, err = store.Get(ctx, KeyCloudRefreshToken)
	require.NoError(t, err)
	assert.Empty(t, v)
}
