package service

import (
	"testing"

	"github.com/CH4P4R/thumb-compare/internal/model"
)

func project(id, region string) model.Project {
	return model.Project{ID: id, Name: "p-" + id, RegionCode: region}
}

func TestGroupByRegion_SharedRegion(t *testing.T) {
	groups := GroupByRegion([]model.Project{
		project("P1", "US"),
		project("P2", "US"),
		project("P3", "TR"),
	})

	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if groups[0].RegionCode != "US" || groups[1].RegionCode != "TR" {
		t.Errorf("region order = [%s %s], want [US TR]", groups[0].RegionCode, groups[1].RegionCode)
	}
	if len(groups[0].ProjectIDs) != 2 || groups[0].ProjectIDs[0] != "P1" || groups[0].ProjectIDs[1] != "P2" {
		t.Errorf("US projects = %v, want [P1 P2]", groups[0].ProjectIDs)
	}
	if len(groups[1].ProjectIDs) != 1 || groups[1].ProjectIDs[0] != "P3" {
		t.Errorf("TR projects = %v, want [P3]", groups[1].ProjectIDs)
	}
}

func TestGroupByRegion_Partition(t *testing.T) {
	input := []model.Project{
		project("A", "DE"),
		project("B", "US"),
		project("C", "DE"),
		project("D", "JP"),
		project("E", "US"),
	}

	groups := GroupByRegion(input)

	seen := make(map[string]int)
	for _, g := range groups {
		for _, id := range g.ProjectIDs {
			seen[id]++
		}
	}

	if len(seen) != len(input) {
		t.Fatalf("grouped %d distinct projects, want %d", len(seen), len(input))
	}
	for _, p := range input {
		if seen[p.ID] != 1 {
			t.Errorf("project %s appears %d times, want exactly once", p.ID, seen[p.ID])
		}
	}
}

func TestGroupByRegion_PreservesDiscoveryOrder(t *testing.T) {
	groups := GroupByRegion([]model.Project{
		project("X", "FR"),
		project("Y", "GB"),
		project("Z", "FR"),
	})

	if groups[0].RegionCode != "FR" {
		t.Errorf("first group = %s, want FR (first seen)", groups[0].RegionCode)
	}
	if got := groups[0].ProjectIDs; got[0] != "X" || got[1] != "Z" {
		t.Errorf("FR projects = %v, want input order [X Z]", got)
	}
}

func TestGroupByRegion_Empty(t *testing.T) {
	if groups := GroupByRegion(nil); len(groups) != 0 {
		t.Errorf("groups = %d, want 0 for empty input", len(groups))
	}
}
