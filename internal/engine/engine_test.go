package engine

import (
	"math"
	"testing"

	"github.com/aerosentry/deconfliction/pkg/mission"
)

func newEngine() *Engine {
	return New(0)
}

func flight(id string, start, end, buffer float64, wps ...mission.Waypoint) *mission.Mission {
	return &mission.Mission{
		DroneID:      id,
		Waypoints:    wps,
		StartTime:    start,
		EndTime:      end,
		Speed:        5,
		SafetyBuffer: buffer,
	}
}

// S1 — crossing paths, colliding.
func TestDetectConflicts_S1_CrossingPathsColliding(t *testing.T) {
	primary := flight("primary", 1620000000, 1620003600, 50,
		mission.Waypoint{X: 0, Y: 0, Z: 0}, mission.Waypoint{X: 100, Y: 100, Z: 0})
	other := flight("other", 1620001800, 1620003600, 50,
		mission.Waypoint{X: 50, Y: 50, Z: 0}, mission.Waypoint{X: 150, Y: 150, Z: 0})

	conflicts := newEngine().DetectConflicts(primary, []*mission.Mission{other})
	if len(conflicts) == 0 {
		t.Fatal("expected at least one conflict")
	}
}

// S2 — altitude separation.
func TestDetectConflicts_S2_AltitudeSeparation(t *testing.T) {
	primary := flight("primary", 0, 100, 10,
		mission.Waypoint{X: 0, Y: 0, Z: 100}, mission.Waypoint{X: 100, Y: 0, Z: 100})
	other := flight("other", 0, 100, 10,
		mission.Waypoint{X: 0, Y: 0, Z: 0}, mission.Waypoint{X: 100, Y: 0, Z: 0})

	conflicts := newEngine().DetectConflicts(primary, []*mission.Mission{other})
	if len(conflicts) != 0 {
		t.Errorf("expected no conflicts, got %d", len(conflicts))
	}
}

// S3 — identical static points.
func TestDetectConflicts_S3_IdenticalStaticPoints(t *testing.T) {
	primary := flight("primary", 0, 100, 10, mission.Waypoint{X: 10, Y: 20, Z: 30})
	other := flight("other", 0, 100, 10, mission.Waypoint{X: 10, Y: 20, Z: 30})

	conflicts := newEngine().DetectConflicts(primary, []*mission.Mission{other})
	if len(conflicts) != 1 {
		t.Fatalf("expected exactly 1 conflict, got %d", len(conflicts))
	}
	c := conflicts[0]
	if math.Abs(c.Distance) > 1e-9 {
		t.Errorf("expected distance ~0, got %f", c.Distance)
	}
	want := mission.Waypoint{X: 10, Y: 20, Z: 30}.Point()
	if c.Location != want {
		t.Errorf("expected location %v, got %v", want, c.Location)
	}
}

// S4 — disjoint time windows.
func TestDetectConflicts_S4_DisjointTimeWindows(t *testing.T) {
	primary := flight("primary", 1620000000, 1620003600, 50,
		mission.Waypoint{X: 0, Y: 0, Z: 0}, mission.Waypoint{X: 100, Y: 100, Z: 0})
	other := flight("other", 1620010000, 1620020000, 50,
		mission.Waypoint{X: 50, Y: 50, Z: 0}, mission.Waypoint{X: 150, Y: 150, Z: 0})

	conflicts := newEngine().DetectConflicts(primary, []*mission.Mission{other})
	if len(conflicts) != 0 {
		t.Errorf("expected no conflicts, got %d", len(conflicts))
	}
}

// S5 — parallel co-linear approach.
func TestDetectConflicts_S5_ParallelApproach(t *testing.T) {
	primary := flight("primary", 0, 100, 10,
		mission.Waypoint{X: 0, Y: 0, Z: 0}, mission.Waypoint{X: 100, Y: 0, Z: 0})
	other := flight("other", 0, 100, 10,
		mission.Waypoint{X: 0, Y: 5, Z: 0}, mission.Waypoint{X: 100, Y: 5, Z: 0})

	conflicts := newEngine().DetectConflicts(primary, []*mission.Mission{other})
	if len(conflicts) == 0 {
		t.Fatal("expected at least one conflict")
	}
	if math.Abs(conflicts[0].Distance-5) > 1e-9 {
		t.Errorf("expected distance 5, got %f", conflicts[0].Distance)
	}
}

// Property 3: self-exclusion.
func TestDetectConflicts_SelfExclusion(t *testing.T) {
	primary := flight("drone-1", 0, 100, 10, mission.Waypoint{X: 0, Y: 0, Z: 0})
	sameID := flight("drone-1", 0, 100, 10, mission.Waypoint{X: 0, Y: 0, Z: 0})

	conflicts := newEngine().DetectConflicts(primary, []*mission.Mission{sameID})
	if len(conflicts) != 0 {
		t.Errorf("expected self-exclusion to suppress conflicts, got %d", len(conflicts))
	}
}

// Property 5: empty others.
func TestDetectConflicts_EmptyOthers(t *testing.T) {
	primary := flight("primary", 0, 100, 10, mission.Waypoint{X: 0, Y: 0, Z: 0})

	conflicts := newEngine().DetectConflicts(primary, nil)
	if len(conflicts) != 0 {
		t.Errorf("expected no conflicts against an empty flight list, got %d", len(conflicts))
	}
}

// Property 6: buffer-boundary, strict inequality.
func TestDetectConflicts_BufferBoundaryIsStrict(t *testing.T) {
	primary := flight("primary", 0, 100, 5, mission.Waypoint{X: 0, Y: 0, Z: 0})
	other := flight("other", 0, 100, 5, mission.Waypoint{X: 10, Y: 0, Z: 0})

	conflicts := newEngine().DetectConflicts(primary, []*mission.Mission{other})
	if len(conflicts) != 0 {
		t.Errorf("expected no conflict when distance equals combined buffer exactly, got %d", len(conflicts))
	}
}
