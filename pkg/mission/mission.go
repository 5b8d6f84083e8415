// Package mission defines the data model the deconfliction engine
// operates on: waypoints, missions, and the conflicts the engine
// reports between them.
package mission

import (
	"fmt"

	"github.com/aerosentry/deconfliction/pkg/geometry"
)

// Waypoint is a single 3-D position on a mission's route, in metres.
// Timestamp is unset on input; it is populated by
// internal/timing.AssignTimestamps before the engine runs.
type Waypoint struct {
	X, Y, Z   float64
	Timestamp float64
	hasTime   bool
}

// Point returns the waypoint's position as a geometry.Point.
func (w Waypoint) Point() geometry.Point {
	return geometry.Point{X: w.X, Y: w.Y, Z: w.Z}
}

// SetTimestamp records the waypoint's assigned time.
func (w *Waypoint) SetTimestamp(t float64) {
	w.Timestamp = t
	w.hasTime = true
}

// HasTimestamp reports whether AssignTimestamps has run for this waypoint.
func (w Waypoint) HasTimestamp() bool {
	return w.hasTime
}

// Distance returns the Euclidean separation between two waypoints.
func (w Waypoint) Distance(other Waypoint) float64 {
	return w.Point().Distance(other.Point())
}

// Mission is a scheduled or proposed flight: an ordered route flown
// over a fixed time window at a nominal speed, with a safety buffer
// defining its exclusion radius.
type Mission struct {
	DroneID      string
	Waypoints    []Waypoint
	StartTime    float64
	EndTime      float64
	Speed        float64
	SafetyBuffer float64
}

// Conflict is a reported instant and location where two missions
// violate their combined safety buffer.
type Conflict struct {
	Time             float64
	Location         geometry.Point
	InvolvedFlights  [2]string
	Distance         float64
}

// ValidationError describes why a Mission failed input validation.
// It corresponds to spec.md §7's InvalidInput category and should
// surface to callers as a 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid mission: %s: %s", e.Field, e.Reason)
}

// Validate enforces the invariants spec.md §3 requires at ingestion:
// non-empty drone id, non-empty waypoint list, non-negative
// coordinates, and a strictly positive time window. Speed and safety
// buffer must be positive; speed is informational only (§4.1 derives
// timing from the time window and waypoint geometry, not from speed).
func (m Mission) Validate() error {
	if m.DroneID == "" {
		return &ValidationError{Field: "drone_id", Reason: "must not be empty"}
	}
	if len(m.Waypoints) == 0 {
		return &ValidationError{Field: "waypoints", Reason: "must contain at least one waypoint"}
	}
	for i, wp := range m.Waypoints {
		if wp.X < 0 || wp.Y < 0 || wp.Z < 0 {
			return &ValidationError{
				Field:  fmt.Sprintf("waypoints[%d]", i),
				Reason: "coordinates must be non-negative",
			}
		}
	}
	if m.StartTime < 0 {
		return &ValidationError{Field: "start_time", Reason: "must be non-negative"}
	}
	if m.EndTime <= m.StartTime {
		return &ValidationError{Field: "end_time", Reason: "must be greater than start_time"}
	}
	if m.Speed <= 0 {
		return &ValidationError{Field: "speed", Reason: "must be positive"}
	}
	if m.SafetyBuffer <= 0 {
		return &ValidationError{Field: "safety_buffer", Reason: "must be positive"}
	}
	return nil
}
