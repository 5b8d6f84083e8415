// Package engine implements the deconfliction driver: given a primary
// mission and the set of other scheduled flights, it reports every
// spatial-temporal conflict between them, per spec.md §4.6.
package engine

import (
	"github.com/aerosentry/deconfliction/internal/geocheck"
	"github.com/aerosentry/deconfliction/internal/spatialindex"
	"github.com/aerosentry/deconfliction/internal/timing"
	"github.com/aerosentry/deconfliction/pkg/mission"
)

// Engine evaluates a primary mission against a catalogue of already
// scheduled flights. Its zero value is ready to use; GridSize
// defaults to spatialindex.DefaultGridSize when left at zero.
type Engine struct {
	GridSize float64
}

// New constructs an Engine with the given grid size. A non-positive
// gridSize falls back to spatialindex.DefaultGridSize at call time.
func New(gridSize float64) *Engine {
	return &Engine{GridSize: gridSize}
}

// DetectConflicts assigns timestamps to primary and every other
// flight, indexes the other flights' segments (or static waypoints)
// into a spatial grid, then walks primary's own segments (or its sole
// waypoint) against whatever shares a grid cell.
//
// Conflicts are returned in the order they are discovered and are not
// deduplicated: the same pair of missions can appear more than once
// if their paths cross a shared grid cell boundary, or if a segment
// spans several cells that all index the same other mission. Callers
// that need a deduplicated report must do so themselves; spec.md §9
// documents this as intentional rather than an oversight.
func (e *Engine) DetectConflicts(primary *mission.Mission, others []*mission.Mission) []mission.Conflict {
	gridSize := e.GridSize
	if gridSize <= 0 {
		gridSize = spatialindex.DefaultGridSize
	}

	timing.AssignTimestamps(primary)

	idx := spatialindex.New(gridSize)
	for _, other := range others {
		timing.AssignTimestamps(other)
		if len(other.Waypoints) == 1 {
			idx.AddStaticWaypoint(other)
		} else {
			for i := 0; i < len(other.Waypoints)-1; i++ {
				idx.AddSegment(other, i)
			}
		}
	}

	var conflicts []mission.Conflict

	if len(primary.Waypoints) == 1 {
		wp1 := primary.Waypoints[0]
		for _, ref := range idx.QueryStatic(wp1) {
			if ref.Mission.DroneID == primary.DroneID {
				continue
			}
			var c *mission.Conflict
			if ref.SegmentIdx == spatialindex.StaticWaypoint {
				c = geocheck.StaticVsStatic(wp1, ref.Mission.Waypoints[0], primary, ref.Mission)
			} else {
				wp3, wp4 := ref.Mission.Waypoints[ref.SegmentIdx], ref.Mission.Waypoints[ref.SegmentIdx+1]
				c = geocheck.StaticVsSegment(wp1, wp3, wp4, primary.SafetyBuffer+ref.Mission.SafetyBuffer)
			}
			if c != nil {
				conflicts = append(conflicts, *c)
			}
		}
	} else {
		for i := 0; i < len(primary.Waypoints)-1; i++ {
			wp1, wp2 := primary.Waypoints[i], primary.Waypoints[i+1]
			for _, ref := range idx.Query(primary, i) {
				if ref.Mission.DroneID == primary.DroneID {
					continue
				}
				minSafe := primary.SafetyBuffer + ref.Mission.SafetyBuffer
				var c *mission.Conflict
				if ref.SegmentIdx == spatialindex.StaticWaypoint {
					c = geocheck.StaticVsSegment(ref.Mission.Waypoints[0], wp1, wp2, minSafe)
				} else {
					wp3, wp4 := ref.Mission.Waypoints[ref.SegmentIdx], ref.Mission.Waypoints[ref.SegmentIdx+1]
					c = geocheck.SegmentVsSegment(wp1, wp2, wp3, wp4, minSafe)
				}
				if c != nil {
					conflicts = append(conflicts, *c)
				}
			}
		}
	}

	return conflicts
}
