package mergex

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkravets/jobvault/internal/model"
)

func rec(t *testing.T, id string, updatedAt time.Time, extra ...any) model.Record {
	t.Helper()
	payload := map[string]any{}
	for i := 0; i+1 < len(extra); i += 2 {
		payload[fmt.Sprint(extra[i])] = extra[i+1]
	}
	r, err := model.NewRecord(id, updatedAt, payload)
	require.NoError(t, err)
	return r
}

func ids(records []model.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Id)
	}
	return out
}

var (
	t1  = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2  = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	t5  = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	t10 = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
)

func TestDiffFreshImport(t *testing.T) {
	incoming := []model.Record{rec(t, "A", t1), rec(t, "B", t2)}

	d := Diff(nil, incoming)

	assert.Equal(t, []string{"A", "B"}, ids(d.Created))
	assert.Empty(t, d.Updated)
	assert.Empty(t, d.Unchanged)

	merged, stats := Merge(nil, incoming)
	assert.Equal(t, []string{"A", "B"}, ids(merged))
	assert.Equal(t, model.MergeStats{Created: 2}, stats)
}

func TestDiffConflictingUpdateNewerWins(t *testing.T) {
	local := []model.Record{rec(t, "A", t5, "status", "old")}
	incoming := []model.Record{rec(t, "A", t10, "status", "new")}

	d := Diff(local, incoming)
	assert.Equal(t, []string{"A"}, ids(d.Updated))
	assert.Empty(t, d.Created)
	assert.Empty(t, d.Unchanged)

	merged, stats := Merge(local, incoming)
	require.Len(t, merged, 1)
	assert.True(t, merged[0].Equal(incoming[0]), "incoming record must replace local")
	assert.Equal(t, model.MergeStats{Updated: 1}, stats)
}

func TestDiffStaleIncomingLocalRetained(t *testing.T) {
	local := []model.Record{rec(t, "A", t10, "status", "fresh")}
	incoming := []model.Record{rec(t, "A", t5, "status", "stale")}

	d := Diff(local, incoming)
	assert.Equal(t, []string{"A"}, ids(d.Unchanged))

	merged, stats := Merge(local, incoming)
	require.Len(t, merged, 1)
	assert.True(t, merged[0].Equal(local[0]), "local record must be retained")
	assert.Equal(t, model.MergeStats{Unchanged: 1}, stats)
}

func TestMergeTieFavorsLocal(t *testing.T) {
	local := []model.Record{rec(t, "A", t5, "side", "local")}
	incoming := []model.Record{rec(t, "A", t5, "side", "incoming")}

	merged, stats := Merge(local, incoming)
	require.Len(t, merged, 1)
	assert.True(t, merged[0].Equal(local[0]))
	assert.Equal(t, model.MergeStats{Unchanged: 1}, stats)
}

func TestMergeIsUnionNeverDeletes(t *testing.T) {
	local := []model.Record{rec(t, "A", t1), rec(t, "B", t2), rec(t, "C", t5)}
	incoming := []model.Record{rec(t, "B", t10), rec(t, "D", t1)}

	merged, stats := Merge(local, incoming)

	assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, ids(merged))
	assert.Equal(t, model.MergeStats{Created: 1, Updated: 1}, stats)

	// Local-only records survive untouched.
	assert.Equal(t, []string{"A", "B", "C", "D"}, ids(merged), "local order first, then created")
}

func TestMergeIdempotent(t *testing.T) {
	set := []model.Record{rec(t, "A", t1), rec(t, "B", t2)}

	merged, stats := Merge(set, set)

	require.Len(t, merged, len(set))
	for i := range set {
		assert.True(t, merged[i].Equal(set[i]))
	}
	assert.Equal(t, model.MergeStats{Unchanged: 2}, stats)
}

func TestDiffCategoriesMatchMergeDecisions(t *testing.T) {
	local := []model.Record{rec(t, "A", t5), rec(t, "B", t2), rec(t, "C", t10)}
	incoming := []model.Record{rec(t, "A", t10), rec(t, "C", t1), rec(t, "D", t2), rec(t, "E", t5)}

	d := Diff(local, incoming)
	_, stats := Merge(local, incoming)

	assert.Equal(t, stats, d.Counts(), "diff categories must match merge decisions")
	assert.Equal(t, len(incoming), len(d.Created)+len(d.Updated)+len(d.Unchanged),
		"categories must partition the incoming set")
}
