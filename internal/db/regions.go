package db

import (
	"database/sql"
	"fmt"

	"github.com/ProjectSidewalk/sidewalk-audit/internal/progress"
)

// SaveRegion inserts or updates a region record.
func (db *DB) SaveRegion(r *progress.Region) error {
	difficultInt := 0
	if r.Difficult {
		difficultInt = 1
	}

	_, err := db.Exec(`
		INSERT INTO regions (region_id, name, total_distance_m, completed_distance_m, difficult)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(region_id) DO UPDATE SET
			name = excluded.name,
			total_distance_m = excluded.total_distance_m,
			completed_distance_m = excluded.completed_distance_m,
			difficult = excluded.difficult`,
		r.ID, r.Name, r.TotalDistanceM, r.CompletedDistanceM, difficultInt,
	)
	if err != nil {
		return fmt.Errorf("failed to save region: %w", err)
	}
	return nil
}

// GetRegion retrieves a region by id.
func (db *DB) GetRegion(regionID string) (*progress.Region, error) {
	var (
		r            progress.Region
		difficultInt int
	)
	err := db.QueryRow(`
		SELECT region_id, name, total_distance_m, completed_distance_m, difficult
		FROM regions
		WHERE region_id = ?`, regionID).Scan(
		&r.ID, &r.Name, &r.TotalDistanceM, &r.CompletedDistanceM, &difficultInt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("region not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get region: %w", err)
	}
	r.Difficult = difficultInt != 0
	return &r, nil
}

// Regions returns all region records.
func (db *DB) Regions() ([]*progress.Region, error) {
	rows, err := db.Query(`
		SELECT region_id, name, total_distance_m, completed_distance_m, difficult
		FROM regions
		ORDER BY region_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query regions: %w", err)
	}
	defer rows.Close()

	var regions []*progress.Region
	for rows.Next() {
		var (
			r            progress.Region
			difficultInt int
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.TotalDistanceM, &r.CompletedDistanceM, &difficultInt); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		r.Difficult = difficultInt != 0
		regions = append(regions, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return regions, nil
}

// LoadRegistry builds an in-memory registry from the persisted regions and
// completed missions.
func (db *DB) LoadRegistry() (*progress.Registry, error) {
	registry := progress.NewRegistry()

	regions, err := db.Regions()
	if err != nil {
		return nil, err
	}
	for _, r := range regions {
		registry.AddRegion(r)
	}

	missions, err := db.CompletedMissions()
	if err != nil {
		return nil, err
	}
	for _, m := range missions {
		registry.CompleteMission(m)
	}
	return registry, nil
}
