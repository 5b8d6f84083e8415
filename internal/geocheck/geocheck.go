// Package geocheck implements the narrow-phase collision checks:
// static-vs-static, static-vs-segment, and segment-vs-segment closest
// approach, per spec.md §4.3–§4.5.
package geocheck

import (
	"github.com/aerosentry/deconfliction/pkg/geometry"
	"github.com/aerosentry/deconfliction/pkg/mission"
)

// zeroDurationFallback stands in for a segment's time span when its
// two endpoints share a timestamp, matching spec.md §4.5's documented
// 1e-6 fallback so a velocity divide never hits zero.
const zeroDurationFallback = 1e-6

// StaticVsStatic checks two stationary waypoints for a conflict.
// wp1 belongs to m1, wp2 to m2. The reported time is the start of the
// two missions' overlapping time window, and InvolvedFlights carries
// the two missions' real drone IDs.
func StaticVsStatic(wp1, wp2 mission.Waypoint, m1, m2 *mission.Mission) *mission.Conflict {
	tStart := maxF(m1.StartTime, m2.StartTime)
	tEnd := minF(m1.EndTime, m2.EndTime)
	if tStart >= tEnd {
		return nil
	}

	dist := wp1.Distance(wp2)
	minSafe := m1.SafetyBuffer + m2.SafetyBuffer
	if dist >= minSafe {
		return nil
	}
	return &mission.Conflict{
		Time:            tStart,
		Location:        wp1.Point(),
		InvolvedFlights: [2]string{m1.DroneID, m2.DroneID},
		Distance:        dist,
	}
}

// StaticVsSegment checks a stationary waypoint against a moving
// segment (seg1 -> seg2). It samples the segment's position at the
// static waypoint's own timestamp rather than scanning the whole
// overlap window — spec.md §4.4 and §9 document this single-sample
// check as a known under-approximation that can miss a conflict
// occurring elsewhere in the overlap.
//
// Per spec.md §4.6, the reported InvolvedFlights are the fixed labels
// "primary" and "other", not the missions' real drone IDs — this
// mirrors the reference engine's behaviour exactly, including its
// inconsistency with StaticVsStatic.
func StaticVsSegment(staticWP, seg1, seg2 mission.Waypoint, minSafeDistance float64) *mission.Conflict {
	if staticWP.Timestamp < seg1.Timestamp || staticWP.Timestamp > seg2.Timestamp {
		return nil
	}

	duration := seg2.Timestamp - seg1.Timestamp
	var t float64
	if duration != 0 {
		t = (staticWP.Timestamp - seg1.Timestamp) / duration
	}
	segPos := geometry.Lerp(seg1.Point(), seg2.Point(), t)

	dist := staticWP.Point().Distance(segPos)
	if dist >= minSafeDistance {
		return nil
	}
	return &mission.Conflict{
		Time:            staticWP.Timestamp,
		Location:        staticWP.Point(),
		InvolvedFlights: [2]string{"primary", "other"},
		Distance:        dist,
	}
}

// SegmentVsSegment finds the closest approach in space and time
// between two moving segments (wp1->wp2 and wp3->wp4) over their
// overlapping time window, per spec.md §4.5.
//
// When the two segments' relative velocity is zero (parallel motion
// at the same speed, or both segments degenerate to a point), the
// distance is sampled once at the window's start instead of solved
// for a closest-approach time.
func SegmentVsSegment(wp1, wp2, wp3, wp4 mission.Waypoint, minSafeDistance float64) *mission.Conflict {
	tStart := maxF(wp1.Timestamp, wp3.Timestamp)
	tEnd := minF(wp2.Timestamp, wp4.Timestamp)
	if tStart >= tEnd {
		return nil
	}

	d1 := wp2.Timestamp - wp1.Timestamp
	if d1 == 0 {
		d1 = zeroDurationFallback
	}
	d2 := wp4.Timestamp - wp3.Timestamp
	if d2 == 0 {
		d2 = zeroDurationFallback
	}

	v1 := wp2.Point().Sub(wp1.Point()).Scale(1 / d1)
	v2 := wp4.Point().Sub(wp3.Point()).Scale(1 / d2)
	vr := geometry.Vector{X: v1.X - v2.X, Y: v1.Y - v2.Y, Z: v1.Z - v2.Z}
	vrDotVr := vr.Dot(vr)

	if vrDotVr == 0 {
		pos1 := interpolate(wp1, wp2, tStart)
		pos2 := interpolate(wp3, wp4, tStart)
		dist := pos1.Distance(pos2)
		if dist >= minSafeDistance {
			return nil
		}
		return &mission.Conflict{
			Time:            tStart,
			Location:        pos1,
			InvolvedFlights: [2]string{"primary", "other"},
			Distance:        dist,
		}
	}

	// w is the relative position at tStart, when both segments are in
	// flight, so tClosest is an offset in seconds from tStart.
	w := interpolate(wp1, wp2, tStart).Sub(interpolate(wp3, wp4, tStart))
	tClosest := -w.Dot(vr) / vrDotVr
	tClosestAbs := geometry.Clamp(tStart+tClosest, tStart, tEnd)

	pos1 := interpolate(wp1, wp2, tClosestAbs)
	pos2 := interpolate(wp3, wp4, tClosestAbs)
	dist := pos1.Distance(pos2)
	if dist >= minSafeDistance {
		return nil
	}
	return &mission.Conflict{
		Time:            tClosestAbs,
		Location:        pos1,
		InvolvedFlights: [2]string{"primary", "other"},
		Distance:        dist,
	}
}

// interpolate returns the position along a->b at the given absolute
// time, clamping the interpolation fraction's denominator the same
// way the segment-vs-static check does: a zero-duration segment
// yields t=0, i.e. position a.
func interpolate(a, b mission.Waypoint, at float64) geometry.Point {
	duration := b.Timestamp - a.Timestamp
	var t float64
	if duration != 0 {
		t = (at - a.Timestamp) / duration
	}
	return geometry.Lerp(a.Point(), b.Point(), t)
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
