// Package timing assigns timestamps to a mission's waypoints.
package timing

import "github.com/aerosentry/deconfliction/pkg/mission"

// AssignTimestamps stamps each waypoint in m with the time the mission
// is predicted to pass through it, per spec.md §4.1:
//
//   - a single-waypoint mission is stationary for its whole window and
//     is stamped with StartTime;
//   - a multi-waypoint mission is stamped by arc length: timestamp is
//     StartTime plus the fraction of total route distance covered by
//     the time window;
//   - if every waypoint coincides (total distance zero), every
//     waypoint is stamped with StartTime rather than dividing by zero.
//
// m.Waypoints is mutated in place.
func AssignTimestamps(m *mission.Mission) {
	wps := m.Waypoints
	if len(wps) == 1 {
		wps[0].SetTimestamp(m.StartTime)
		return
	}

	cumulative := make([]float64, len(wps))
	for i := 1; i < len(wps); i++ {
		cumulative[i] = cumulative[i-1] + wps[i-1].Distance(wps[i])
	}
	total := cumulative[len(cumulative)-1]

	if total == 0 {
		for i := range wps {
			wps[i].SetTimestamp(m.StartTime)
		}
		return
	}

	window := m.EndTime - m.StartTime
	for i := range wps {
		frac := cumulative[i] / total
		wps[i].SetTimestamp(m.StartTime + frac*window)
	}
}
