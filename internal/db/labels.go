package db

import (
	"fmt"
	"time"

	"github.com/ProjectSidewalk/sidewalk-audit/internal/annotate"
)

// SaveLabel persists a placed label. The in-memory store id is not reused;
// the database assigns its own row id, returned to the caller.
func (db *DB) SaveLabel(l *annotate.Label) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO labels (
			pano_id, label_type, heading_deg, pitch_deg, zoom,
			canvas_width, canvas_height, mission_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.Anchor.PanoID,
		string(l.Type),
		l.Anchor.HeadingDeg,
		l.Anchor.PitchDeg,
		l.Anchor.Zoom,
		l.Anchor.CanvasWidth,
		l.Anchor.CanvasHeight,
		nullableString(l.MissionID),
		l.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save label: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// DeleteLabel removes a persisted label. Deleting an absent row is not an
// error, matching the in-memory store's idempotent removal.
func (db *DB) DeleteLabel(id int64) error {
	if _, err := db.Exec(`DELETE FROM labels WHERE label_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete label: %w", err)
	}
	return nil
}

// LabelsForPano returns the persisted labels of a panorama in insertion
// order.
func (db *DB) LabelsForPano(panoID string) ([]*annotate.Label, error) {
	rows, err := db.Query(`
		SELECT label_id, pano_id, label_type, heading_deg, pitch_deg, zoom,
		       canvas_width, canvas_height, mission_id, created_at
		FROM labels
		WHERE pano_id = ?
		ORDER BY label_id`, panoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query labels: %w", err)
	}
	defer rows.Close()

	var labels []*annotate.Label
	for rows.Next() {
		var (
			l         annotate.Label
			labelType string
			missionID *string
			createdAt string
		)
		if err := rows.Scan(
			&l.ID,
			&l.Anchor.PanoID,
			&labelType,
			&l.Anchor.HeadingDeg,
			&l.Anchor.PitchDeg,
			&l.Anchor.Zoom,
			&l.Anchor.CanvasWidth,
			&l.Anchor.CanvasHeight,
			&missionID,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		l.Type = annotate.LabelType(labelType)
		if missionID != nil {
			l.MissionID = *missionID
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			l.CreatedAt = ts
		}
		labels = append(labels, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return labels, nil
}

// CountLabelsByType returns per-type label counts for a mission.
func (db *DB) CountLabelsByType(missionID string) (map[annotate.LabelType]int, error) {
	rows, err := db.Query(`
		SELECT label_type, COUNT(*)
		FROM labels
		WHERE mission_id = ?
		GROUP BY label_type`, missionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count labels: %w", err)
	}
	defer rows.Close()

	counts := make(map[annotate.LabelType]int)
	for rows.Next() {
		var (
			labelType string
			n         int
		)
		if err := rows.Scan(&labelType, &n); err != nil {
			return nil, fmt.Errorf("failed to scan label count: %w", err)
		}
		counts[annotate.LabelType(labelType)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// SyncLabels replaces the persisted labels of a panorama with the ones
// currently in the session store.
func (db *DB) SyncLabels(panoID string, labels []*annotate.Label) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin label sync: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM labels WHERE pano_id = ?`, panoID); err != nil {
		return fmt.Errorf("failed to clear labels: %w", err)
	}
	for _, l := range labels {
		if l.PanoID() != panoID {
			continue
		}
		if _, err := tx.Exec(`
			INSERT INTO labels (
				pano_id, label_type, heading_deg, pitch_deg, zoom,
				canvas_width, canvas_height, mission_id, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.Anchor.PanoID,
			string(l.Type),
			l.Anchor.HeadingDeg,
			l.Anchor.PitchDeg,
			l.Anchor.Zoom,
			l.Anchor.CanvasWidth,
			l.Anchor.CanvasHeight,
			nullableString(l.MissionID),
			l.CreatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("failed to sync label: %w", err)
		}
	}
	return tx.Commit()
}

// nullableString maps "" to NULL.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
