package repository

import "github.com/CH4P4R/thumb-compare/internal/youtube"

// UpsertPlan partitions a fetched batch into rows to insert and rows whose
// mutable fields get overwritten.
type UpsertPlan struct {
	Inserts []youtube.Video
	Updates []youtube.Video
}

// BuildUpsertPlan decides, per fetched video, whether a row already exists
// for its external ID. Duplicated IDs within one fetch are collapsed to their
// first occurrence so re-applying the plan cannot create duplicate rows.
// Videos absent from the fetch are never part of the plan: older uploads
// that fell off the latest page stay untouched.
func BuildUpsertPlan(existing map[string]struct{}, fetched []youtube.Video) UpsertPlan {
	var plan UpsertPlan
	seen := make(map[string]struct{}, len(fetched))

	for _, v := range fetched {
		if _, dup := seen[v.ID]; dup {
			continue
		}
		seen[v.ID] = struct{}{}

		if _, ok := existing[v.ID]; ok {
			plan.Updates = append(plan.Updates, v)
		} else {
			plan.Inserts = append(plan.Inserts, v)
		}
	}
	return plan
}
