package db

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/aerosentry/deconfliction/pkg/mission"
)

// MissionAnalysisRepository records every /analyze-mission call as an
// append-only audit log entry. It is never read back by the engine;
// it exists purely for after-the-fact traceability.
type MissionAnalysisRepository struct {
	db *sql.DB
}

// NewMissionAnalysisRepository creates a new mission analysis repository.
func NewMissionAnalysisRepository(db *sql.DB) *MissionAnalysisRepository {
	return &MissionAnalysisRepository{db: db}
}

// Record inserts one audit entry for a completed analysis.
func (r *MissionAnalysisRepository) Record(ctx context.Context, droneID string, conflicts []mission.Conflict) error {
	conflictsJSON, err := json.Marshal(conflicts)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO mission_analyses (drone_id, conflict_count, conflicts, analyzed_at)
		VALUES ($1, $2, $3, NOW())
	`, droneID, len(conflicts), conflictsJSON)
	return err
}
