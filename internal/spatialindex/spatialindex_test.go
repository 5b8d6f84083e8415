package spatialindex

import (
	"testing"

	"github.com/aerosentry/deconfliction/pkg/mission"
)

func TestAddSegment_QueryFindsOverlappingSegment(t *testing.T) {
	idx := New(DefaultGridSize)

	a := &mission.Mission{DroneID: "a", Waypoints: []mission.Waypoint{
		{X: 10, Y: 10, Z: 10}, {X: 20, Y: 10, Z: 10},
	}}
	idx.AddSegment(a, 0)

	b := &mission.Mission{DroneID: "b", Waypoints: []mission.Waypoint{
		{X: 15, Y: 10, Z: 10}, {X: 25, Y: 10, Z: 10},
	}}

	refs := idx.Query(b, 0)
	if len(refs) == 0 {
		t.Fatal("expected at least one ref for overlapping segment")
	}
	if refs[0].Mission.DroneID != "a" {
		t.Errorf("expected mission a, got %s", refs[0].Mission.DroneID)
	}
}

func TestAddStaticWaypoint_QueryStaticFindsIt(t *testing.T) {
	idx := New(DefaultGridSize)

	a := &mission.Mission{DroneID: "a", Waypoints: []mission.Waypoint{{X: 5, Y: 5, Z: 5}}}
	idx.AddStaticWaypoint(a)

	refs := idx.QueryStatic(mission.Waypoint{X: 6, Y: 6, Z: 6})
	if len(refs) != 1 {
		t.Fatalf("expected 1 ref, got %d", len(refs))
	}
	if refs[0].SegmentIdx != StaticWaypoint {
		t.Errorf("expected StaticWaypoint marker, got %d", refs[0].SegmentIdx)
	}
}

func TestQuery_DistantSegmentNotFound(t *testing.T) {
	idx := New(DefaultGridSize)

	a := &mission.Mission{DroneID: "a", Waypoints: []mission.Waypoint{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1},
	}}
	idx.AddSegment(a, 0)

	b := &mission.Mission{DroneID: "b", Waypoints: []mission.Waypoint{
		{X: 1000, Y: 1000, Z: 1000}, {X: 1001, Y: 1000, Z: 1000},
	}}

	if refs := idx.Query(b, 0); len(refs) != 0 {
		t.Errorf("expected no refs for distant segment, got %d", len(refs))
	}
}

func TestAddSegment_SpansMultipleCells(t *testing.T) {
	idx := New(DefaultGridSize)

	a := &mission.Mission{DroneID: "a", Waypoints: []mission.Waypoint{
		{X: 0, Y: 0, Z: 0}, {X: 120, Y: 0, Z: 0},
	}}
	idx.AddSegment(a, 0)

	if len(idx.cells) < 3 {
		t.Errorf("expected segment to span at least 3 cells of size %f, spanned %d", DefaultGridSize, len(idx.cells))
	}
}
