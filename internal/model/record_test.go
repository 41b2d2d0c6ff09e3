package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTripKeepsUnknownFields(t *testing.T) {
	raw := []byte(`{"id":"r1","updatedAt":"2026-03-01T10:00:00Z","site":"north yard","minutes":90}`)

	rec, err := RecordFromRaw(raw)
	require.NoError(t, err)
	assert.Equal(t, "r1", rec.Id)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), rec.UpdatedAt)

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(out))
}

func TestNewRecordOverridesReservedKeys(t *testing.T) {
	ts := time.Date(2026, 1, 15, 8, 30, 0, 0, time.UTC)
	rec, err := NewRecord("r2", ts, map[string]any{"id": "bogus", "task": "inspection"})
	require.NoError(t, err)

	assert.Equal(t, "r2", rec.Id)
	assert.Equal(t, ts, rec.UpdatedAt)

	reparsed, err := RecordFromRaw(rec.Raw())
	require.NoError(t, err)
	assert.Equal(t, "r2", reparsed.Id)
	assert.True(t, reparsed.UpdatedAt.Equal(ts))
}

func TestRecordMarshalWithoutDocumentFails(t *testing.T) {
	var rec Record
	_, err := json.Marshal(rec)
	require.Error(t, err)
}

func TestRecordEqual(t *testing.T) {
	a, err := RecordFromRaw([]byte(`{"id":"x","updatedAt":"2026-01-01T00:00:00Z"}`))
	require.NoError(t, err)
	b, err := RecordFromRaw([]byte(`{"id":"x","updatedAt":"2026-01-01T00:00:00Z"}`))
	require.NoError(t, err)
	c, err := RecordFromRaw([]byte(`{"id":"x","updatedAt":"2026-01-02T00:00:00Z"}`))
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
