package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/aerosentry/deconfliction/pkg/mission"
)

// ScheduledFlight is a flight registered in the catalogue by an
// operator. It carries the same fields as mission.Mission plus the
// owning operator's id.
type ScheduledFlight struct {
	DroneID      string
	OperatorID   int
	Waypoints    []mission.Waypoint
	StartTime    float64
	EndTime      float64
	Speed        float64
	SafetyBuffer float64
}

// ToMission converts a catalogue entry into the plain mission.Mission
// the engine operates on.
func (f ScheduledFlight) ToMission() *mission.Mission {
	return &mission.Mission{
		DroneID:      f.DroneID,
		Waypoints:    f.Waypoints,
		StartTime:    f.StartTime,
		EndTime:      f.EndTime,
		Speed:        f.Speed,
		SafetyBuffer: f.SafetyBuffer,
	}
}

// ErrFlightNotFound is returned when a scheduled flight cannot be found.
var ErrFlightNotFound = errors.New("scheduled flight not found")

// waypointRow is the JSON shape waypoints are stored in, since a
// mission's route has no fixed arity and Postgres has no native
// ordered-array-of-structs column.
type waypointRow struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FlightRepository provides catalogue CRUD for scheduled flights.
type FlightRepository struct {
	db *sql.DB
}

// NewFlightRepository creates a new flight repository.
func NewFlightRepository(db *sql.DB) *FlightRepository {
	return &FlightRepository{db: db}
}

// Create registers a new scheduled flight owned by f.OperatorID.
func (r *FlightRepository) Create(ctx context.Context, f *ScheduledFlight) error {
	waypointsJSON, err := encodeWaypoints(f.Waypoints)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO scheduled_flights
			(drone_id, operator_id, waypoints, start_time, end_time, speed, safety_buffer)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, query,
		f.DroneID, f.OperatorID, waypointsJSON, f.StartTime, f.EndTime, f.Speed, f.SafetyBuffer)
	return err
}

// GetByDroneID retrieves a scheduled flight by its drone id.
func (r *FlightRepository) GetByDroneID(ctx context.Context, droneID string) (*ScheduledFlight, error) {
	query := `
		SELECT drone_id, operator_id, waypoints, start_time, end_time, speed, safety_buffer
		FROM scheduled_flights
		WHERE drone_id = $1
	`
	var waypointsJSON []byte
	f := &ScheduledFlight{}
	err := r.db.QueryRowContext(ctx, query, droneID).Scan(
		&f.DroneID, &f.OperatorID, &waypointsJSON, &f.StartTime, &f.EndTime, &f.Speed, &f.SafetyBuffer)
	if err == sql.ErrNoRows {
		return nil, ErrFlightNotFound
	}
	if err != nil {
		return nil, err
	}
	if f.Waypoints, err = decodeWaypoints(waypointsJSON); err != nil {
		return nil, err
	}
	return f, nil
}

// ListActive returns every scheduled flight whose time window has not
// yet ended as of nowSeconds, i.e. every flight the engine should
// consider as an "other" flight for a new analysis.
func (r *FlightRepository) ListActive(ctx context.Context, nowSeconds float64) ([]*ScheduledFlight, error) {
	query := `
		SELECT drone_id, operator_id, waypoints, start_time, end_time, speed, safety_buffer
		FROM scheduled_flights
		WHERE end_time > $1
		ORDER BY start_time
	`
	rows, err := r.db.QueryContext(ctx, query, nowSeconds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flights []*ScheduledFlight
	for rows.Next() {
		var waypointsJSON []byte
		f := &ScheduledFlight{}
		if err := rows.Scan(&f.DroneID, &f.OperatorID, &waypointsJSON,
			&f.StartTime, &f.EndTime, &f.Speed, &f.SafetyBuffer); err != nil {
			return nil, err
		}
		if f.Waypoints, err = decodeWaypoints(waypointsJSON); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

// DeleteByDroneID retires a scheduled flight. Callers enforce
// ownership (only the registering operator or an admin may retire a
// flight) before calling this.
func (r *FlightRepository) DeleteByDroneID(ctx context.Context, droneID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM scheduled_flights WHERE drone_id = $1`, droneID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrFlightNotFound
	}
	return nil
}

func encodeWaypoints(wps []mission.Waypoint) ([]byte, error) {
	rows := make([]waypointRow, len(wps))
	for i, wp := range wps {
		rows[i] = waypointRow{X: wp.X, Y: wp.Y, Z: wp.Z}
	}
	return json.Marshal(rows)
}

func decodeWaypoints(data []byte) ([]mission.Waypoint, error) {
	var rows []waypointRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	wps := make([]mission.Waypoint, len(rows))
	for i, row := range rows {
		wps[i] = mission.Waypoint{X: row.X, Y: row.Y, Z: row.Z}
	}
	return wps, nil
}
