// Package mergex implements the pure diff/merge engine for record sets.
// Conflict resolution is last-write-wins by UpdatedAt, with ties kept local
// so a stale remote snapshot can never overwrite an equally fresh local copy.
package mergex

import "github.com/mkravets/jobvault/internal/model"

// Diff classifies incoming records against local ones by id:
//   - created: id absent locally
//   - updated: id present, incoming UpdatedAt strictly newer
//   - unchanged: id present, incoming UpdatedAt <= local
//
// The three categories partition the incoming set. Local records without an
// incoming counterpart do not appear in the result.
func Diff(local, incoming []model.Record) model.DiffResult {
	byId := indexById(local)

	var d model.DiffResult
	for _, inc := range incoming {
		loc, ok := byId[inc.Id]
		switch {
		case !ok:
			d.Created = append(d.Created, inc)
		case inc.UpdatedAt.After(loc.UpdatedAt):
			d.Updated = append(d.Updated, inc)
		default:
			d.Unchanged = append(d.Unchanged, inc)
		}
	}
	return d
}

// Merge produces the union of both sets. Every local record survives; an
// incoming record replaces its local counterpart only when strictly newer.
// Output order is local order first, then created records in incoming order.
func Merge(local, incoming []model.Record) ([]model.Record, model.MergeStats) {
	incomingById := indexById(incoming)
	localIds := make(map[string]struct{}, len(local))

	var stats model.MergeStats
	merged := make([]model.Record, 0, len(local)+len(incoming))

	for _, loc := range local {
		localIds[loc.Id] = struct{}{}
		inc, ok := incomingById[loc.Id]
		if !ok {
			merged = append(merged, loc)
			continue
		}
		if inc.UpdatedAt.After(loc.UpdatedAt) {
			merged = append(merged, inc)
			stats.Updated++
		} else {
			merged = append(merged, loc)
			stats.Unchanged++
		}
	}

	for _, inc := range incoming {
		if _, ok := localIds[inc.Id]; ok {
			continue
		}
		merged = append(merged, inc)
		stats.Created++
	}

	return merged, stats
}

func indexById(records []model.Record) map[string]model.Record {
	m := make(map[string]model.Record, len(records))
	for _, r := range records {
		m[r.Id] = r
	}
	return m
}
