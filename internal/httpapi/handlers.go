package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aerosentry/deconfliction/internal/auth"
	"github.com/aerosentry/deconfliction/internal/db"
	"github.com/aerosentry/deconfliction/pkg/mission"
)

type contextKey string

const (
	ctxOperatorID contextKey = "operator_id"
	ctxUsername   contextKey = "username"
	ctxRole       contextKey = "role"
)

// handleHealth reports liveness, per spec.md §6.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"message": "server is running",
	})
}

// waypointWire is the {x,y,z} wire shape of a mission's waypoints, in
// requests and in the simulated-flights listing. Conflict locations
// use the [x,y,z] array of conflictWire instead.
type waypointWire struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// missionWire is the request/response wire shape for a mission.
type missionWire struct {
	DroneID      string         `json:"drone_id"`
	Waypoints    []waypointWire `json:"waypoints"`
	StartTime    float64        `json:"start_time"`
	EndTime      float64        `json:"end_time"`
	Speed        float64        `json:"speed"`
	SafetyBuffer float64        `json:"safety_buffer"`
}

func (m missionWire) toMission() *mission.Mission {
	wps := make([]mission.Waypoint, len(m.Waypoints))
	for i, wp := range m.Waypoints {
		wps[i] = mission.Waypoint{X: wp.X, Y: wp.Y, Z: wp.Z}
	}
	return &mission.Mission{
		DroneID:      m.DroneID,
		Waypoints:    wps,
		StartTime:    m.StartTime,
		EndTime:      m.EndTime,
		Speed:        m.Speed,
		SafetyBuffer: m.SafetyBuffer,
	}
}

func missionToWire(m *mission.Mission) missionWire {
	wps := make([]waypointWire, len(m.Waypoints))
	for i, wp := range m.Waypoints {
		wps[i] = waypointWire{X: wp.X, Y: wp.Y, Z: wp.Z}
	}
	return missionWire{
		DroneID:      m.DroneID,
		Waypoints:    wps,
		StartTime:    m.StartTime,
		EndTime:      m.EndTime,
		Speed:        m.Speed,
		SafetyBuffer: m.SafetyBuffer,
	}
}

// conflictWire is the {time, location:[x,y,z], involved_flights,
// distance} shape spec.md §6 specifies.
type conflictWire struct {
	Time            float64    `json:"time"`
	Location        [3]float64 `json:"location"`
	InvolvedFlights [2]string  `json:"involved_flights"`
	Distance        float64    `json:"distance"`
}

func conflictToWire(c mission.Conflict) conflictWire {
	return conflictWire{
		Time:            c.Time,
		Location:        [3]float64{c.Location.X, c.Location.Y, c.Location.Z},
		InvolvedFlights: c.InvolvedFlights,
		Distance:        c.Distance,
	}
}

type analyzeMissionRequest struct {
	Mission missionWire `json:"mission"`
}

// handleAnalyzeMission is the core contract of spec.md §6: validate
// the submitted mission, run it against the effective catalogue
// (database rows if configured, else the static fixture), and report
// every conflict detected.
func (s *Server) handleAnalyzeMission(w http.ResponseWriter, r *http.Request) {
	var req analyzeMissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Status:  "error",
			Message: "malformed request body: " + err.Error(),
		})
		return
	}

	primary := req.Mission.toMission()
	if err := primary.Validate(); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	others, err := s.effectiveCatalogue(r.Context())
	if err != nil {
		log.Printf("failed to load flight catalogue: %v", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{
			Status:  "error",
			Message: "internal error loading flight catalogue",
		})
		return
	}

	conflicts := s.engine.DetectConflicts(primary, others)

	if s.analyses != nil {
		if err := s.analyses.Record(r.Context(), primary.DroneID, conflicts); err != nil {
			log.Printf("failed to record mission analysis for %s: %v", primary.DroneID, err)
		}
	}

	wireConflicts := make([]conflictWire, len(conflicts))
	for i, c := range conflicts {
		wireConflicts[i] = conflictToWire(c)
	}

	status := "clear"
	message := "no conflicts detected"
	if len(conflicts) > 0 {
		status = "conflict"
		message = "conflicts detected"
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"conflicts": wireConflicts,
		"message":   message,
	})
}

// handleSimulatedFlights serves the effective catalogue: database
// rows when a database is configured, else the static fixture,
// per spec.md §6 and SPEC_FULL.md §4.9.
func (s *Server) handleSimulatedFlights(w http.ResponseWriter, r *http.Request) {
	others, err := s.effectiveCatalogue(r.Context())
	if err != nil {
		log.Printf("failed to load flight catalogue: %v", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{
			Status:  "error",
			Message: "internal error loading flight catalogue",
		})
		return
	}

	wire := make([]missionWire, len(others))
	for i, m := range others {
		wire[i] = missionToWire(m)
	}
	respondJSON(w, http.StatusOK, wire)
}

// effectiveCatalogue returns the other-flights list the engine should
// deconflict against: every active scheduled flight from the
// database when one is configured, otherwise the static fixture.
func (s *Server) effectiveCatalogue(ctx context.Context) ([]*mission.Mission, error) {
	if s.flights == nil {
		return s.fixture, nil
	}

	rows, err := s.flights.ListActive(ctx, nowSeconds())
	if err != nil {
		return nil, err
	}
	others := make([]*mission.Mission, len(rows))
	for i, row := range rows {
		others[i] = row.ToMission()
	}
	return others, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin issues a JWT for a registered operator, per
// SPEC_FULL.md §4.7.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.operators == nil {
		respondJSON(w, http.StatusServiceUnavailable, errorResponse{
			Status:  "error",
			Message: "operator accounts are not available without a configured database",
		})
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Status: "error", Message: "malformed request body"})
		return
	}

	op, err := s.operators.GetByUsername(r.Context(), req.Username)
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Status: "error", Message: "invalid credentials"})
		return
	}

	if err := s.authSvc.ComparePassword(op.PasswordHash, req.Password); err != nil {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Status: "error", Message: "invalid credentials"})
		return
	}

	if !op.IsActive {
		respondJSON(w, http.StatusForbidden, errorResponse{Status: "error", Message: "account is disabled"})
		return
	}

	token, err := s.authSvc.GenerateToken(op.ID, op.Username, op.Role)
	if err != nil {
		log.Printf("failed to generate token for %s: %v", op.Username, err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Status: "error", Message: "failed to generate token"})
		return
	}

	_ = s.operators.UpdateLastLogin(r.Context(), op.ID)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"operator": map[string]interface{}{
			"id":       op.ID,
			"username": op.Username,
			"role":     op.Role,
		},
	})
}

// authMiddleware requires a valid Bearer token and stashes its
// claims in the request context, mirroring the teacher's
// context-value auth pattern.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respondJSON(w, http.StatusUnauthorized, errorResponse{Status: "error", Message: "missing or malformed authorization header"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := s.authSvc.ValidateToken(token)
		if err != nil {
			respondJSON(w, http.StatusUnauthorized, errorResponse{Status: "error", Message: "invalid or expired token"})
			return
		}

		ctx := context.WithValue(r.Context(), ctxOperatorID, claims.OperatorID)
		ctx = context.WithValue(ctx, ctxUsername, claims.Username)
		ctx = context.WithValue(ctx, ctxRole, claims.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type registerFlightRequest struct {
	DroneID      string         `json:"drone_id"`
	Waypoints    []waypointWire `json:"waypoints"`
	StartTime    float64        `json:"start_time"`
	EndTime      float64        `json:"end_time"`
	Speed        float64        `json:"speed"`
	SafetyBuffer float64        `json:"safety_buffer"`
}

// handleRegisterFlight adds a scheduled flight to the catalogue,
// requiring authentication per SPEC_FULL.md §4.9.
func (s *Server) handleRegisterFlight(w http.ResponseWriter, r *http.Request) {
	if s.flights == nil {
		respondJSON(w, http.StatusServiceUnavailable, errorResponse{
			Status:  "error",
			Message: "flight registration is not available without a configured database",
		})
		return
	}

	var req registerFlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Status: "error", Message: "malformed request body"})
		return
	}

	wire := missionWire{
		DroneID:      req.DroneID,
		Waypoints:    req.Waypoints,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Speed:        req.Speed,
		SafetyBuffer: req.SafetyBuffer,
	}
	candidate := wire.toMission()
	if err := candidate.Validate(); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Status: "error", Message: err.Error()})
		return
	}

	operatorID, _ := r.Context().Value(ctxOperatorID).(int)

	flight := &db.ScheduledFlight{
		DroneID:      candidate.DroneID,
		OperatorID:   operatorID,
		Waypoints:    candidate.Waypoints,
		StartTime:    candidate.StartTime,
		EndTime:      candidate.EndTime,
		Speed:        candidate.Speed,
		SafetyBuffer: candidate.SafetyBuffer,
	}

	if err := s.flights.Create(r.Context(), flight); err != nil {
		log.Printf("failed to create scheduled flight %s: %v", flight.DroneID, err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Status: "error", Message: "failed to register flight"})
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"drone_id": flight.DroneID,
	})
}

// handleRetireFlight removes a scheduled flight from the catalogue.
// Only an admin, or the operator that registered it, may retire it.
func (s *Server) handleRetireFlight(w http.ResponseWriter, r *http.Request) {
	if s.flights == nil {
		respondJSON(w, http.StatusServiceUnavailable, errorResponse{
			Status:  "error",
			Message: "flight retirement is not available without a configured database",
		})
		return
	}

	droneID := chi.URLParam(r, "drone_id")

	role, _ := r.Context().Value(ctxRole).(string)
	operatorID, _ := r.Context().Value(ctxOperatorID).(int)

	if !auth.CanManageAnyFlight(role) {
		flight, err := s.flights.GetByDroneID(r.Context(), droneID)
		if err == db.ErrFlightNotFound {
			respondJSON(w, http.StatusNotFound, errorResponse{Status: "error", Message: "flight not found"})
			return
		}
		if err != nil {
			log.Printf("failed to look up scheduled flight %s: %v", droneID, err)
			respondJSON(w, http.StatusInternalServerError, errorResponse{Status: "error", Message: "failed to look up flight"})
			return
		}
		if flight.OperatorID != operatorID {
			respondJSON(w, http.StatusForbidden, errorResponse{Status: "error", Message: "not permitted to retire this flight"})
			return
		}
	}

	if err := s.flights.DeleteByDroneID(r.Context(), droneID); err != nil {
		if err == db.ErrFlightNotFound {
			respondJSON(w, http.StatusNotFound, errorResponse{Status: "error", Message: "flight not found"})
			return
		}
		log.Printf("failed to delete scheduled flight %s: %v", droneID, err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Status: "error", Message: "failed to retire flight"})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
