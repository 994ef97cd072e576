package service

import "github.com/CH4P4R/thumb-compare/internal/model"

// RegionGroup is one trending work unit: a region and every project that
// subscribes to it. One upstream fetch serves the whole group.
type RegionGroup struct {
	RegionCode string
	ProjectIDs []string
}

// GroupByRegion partitions projects by their region code. Groups appear in
// first-seen order and each group's project IDs keep input order, so a run
// processes units deterministically. Every project lands in exactly one
// group (a project has a single active region).
func GroupByRegion(projects []model.Project) []RegionGroup {
	index := make(map[string]int, len(projects))
	groups := make([]RegionGroup, 0, len(projects))

	for _, p := range projects {
		i, ok := index[p.RegionCode]
		if !ok {
			i = len(groups)
			index[p.RegionCode] = i
			groups = append(groups, RegionGroup{RegionCode: p.RegionCode})
		}
		groups[i].ProjectIDs = append(groups[i].ProjectIDs, p.ID)
	}
	return groups
}
