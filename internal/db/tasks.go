package db

import (
	"fmt"
	"time"

	"github.com/ProjectSidewalk/sidewalk-audit/internal/progress"
)

// SaveTask persists a finished audit task.
func (db *DB) SaveTask(t *progress.Task) error {
	var endedAt interface{}
	if !t.EndedAt.IsZero() {
		endedAt = t.EndedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err := db.Exec(`
		INSERT INTO tasks (task_id, region_id, street_id, task_start, task_end)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(task_id) DO UPDATE SET
			task_end = excluded.task_end`,
		t.TaskID,
		nullableString(t.RegionID),
		nullableString(t.StreetID),
		t.StartedAt.UTC().Format(time.RFC3339Nano),
		endedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// TasksForRegion returns the persisted tasks for a region, oldest first.
func (db *DB) TasksForRegion(regionID string) ([]*progress.Task, error) {
	rows, err := db.Query(`
		SELECT task_id, region_id, street_id, task_start, task_end
		FROM tasks
		WHERE region_id = ?
		ORDER BY task_start`, regionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*progress.Task
	for rows.Next() {
		var (
			t                  progress.Task
			regionID, streetID *string
			start, end         *string
		)
		if err := rows.Scan(&t.TaskID, &regionID, &streetID, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if regionID != nil {
			t.RegionID = *regionID
		}
		if streetID != nil {
			t.StreetID = *streetID
		}
		if start != nil {
			if ts, err := time.Parse(time.RFC3339Nano, *start); err == nil {
				t.StartedAt = ts
			}
		}
		if end != nil {
			if ts, err := time.Parse(time.RFC3339Nano, *end); err == nil {
				t.EndedAt = ts
			}
		}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}
