package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ProjectSidewalk/sidewalk-audit/internal/annotate"
	"github.com/ProjectSidewalk/sidewalk-audit/internal/progress"
)

// SaveMission inserts or updates a mission record. Completion timestamps are
// written once and never cleared: a completed row stays completed even if a
// later save carries an earlier state.
func (db *DB) SaveMission(m *progress.Mission) error {
	completedAt := interface{}(nil)
	if m.IsCompleted() {
		completedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	_, err := db.Exec(`
		INSERT INTO missions (mission_id, region_id, label_type, level, distance_mi, state, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(mission_id) DO UPDATE SET
			state = CASE WHEN missions.state = 'completed' THEN missions.state ELSE excluded.state END,
			completed_at = COALESCE(missions.completed_at, excluded.completed_at)`,
		m.MissionID,
		nullableString(m.RegionID),
		string(m.LabelType),
		m.Level,
		m.DistanceMi,
		string(m.State()),
		completedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save mission: %w", err)
	}
	return nil
}

// GetMission retrieves a mission by id.
func (db *DB) GetMission(missionID string) (*progress.Mission, error) {
	var (
		regionID  *string
		labelType string
		level     int
		distance  float64
		state     string
	)
	err := db.QueryRow(`
		SELECT region_id, label_type, level, distance_mi, state
		FROM missions
		WHERE mission_id = ?`, missionID).Scan(&regionID, &labelType, &level, &distance, &state)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("mission not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mission: %w", err)
	}

	region := ""
	if regionID != nil {
		region = *regionID
	}
	m := progress.Factory{}.Create(region, annotate.LabelType(labelType), level, distance)
	m.MissionID = missionID
	switch progress.MissionState(state) {
	case progress.MissionInProgress:
		m.Start()
	case progress.MissionCompleted:
		m.Complete()
	}
	return m, nil
}

// CompletedMissions returns all completed mission records.
func (db *DB) CompletedMissions() ([]*progress.Mission, error) {
	rows, err := db.Query(`
		SELECT mission_id, region_id, label_type, level, distance_mi
		FROM missions
		WHERE state = 'completed'
		ORDER BY completed_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed missions: %w", err)
	}
	defer rows.Close()

	var missions []*progress.Mission
	for rows.Next() {
		var (
			missionID string
			regionID  *string
			labelType string
			level     int
			distance  float64
		)
		if err := rows.Scan(&missionID, &regionID, &labelType, &level, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan mission: %w", err)
		}
		region := ""
		if regionID != nil {
			region = *regionID
		}
		m := progress.Factory{}.Create(region, annotate.LabelType(labelType), level, distance)
		m.MissionID = missionID
		m.Complete()
		missions = append(missions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return missions, nil
}
