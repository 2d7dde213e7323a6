package progress

import (
	"time"

	"github.com/google/uuid"

	"github.com/ProjectSidewalk/sidewalk-audit/internal/annotate"
)

// Task is one audited street segment: a bounded unit of work with a start
// and end time and the labels produced during it. Tasks supply the grouping
// keys for the per-task contribution counts shown by dashboards.
type Task struct {
	TaskID    string    `json:"audit_task_id"`
	RegionID  string    `json:"region_id,omitempty"`
	StreetID  string    `json:"street_id,omitempty"`
	StartedAt time.Time `json:"task_start"`
	EndedAt   time.Time `json:"task_end"`

	labelIDs []int64
}

// NewTask starts a task for the given region and street segment.
func NewTask(regionID, streetID string) *Task {
	return &Task{
		TaskID:    uuid.New().String(),
		RegionID:  regionID,
		StreetID:  streetID,
		StartedAt: time.Now().UTC(),
	}
}

// RecordLabel attributes a placed label to the task.
func (t *Task) RecordLabel(labelID int64) {
	t.labelIDs = append(t.labelIDs, labelID)
}

// End closes the task.
func (t *Task) End() {
	t.EndedAt = time.Now().UTC()
}

// LabelIDs returns the ids of the labels produced during the task, in
// placement order.
func (t *Task) LabelIDs() []int64 {
	out := make([]int64, len(t.labelIDs))
	copy(out, t.labelIDs)
	return out
}

// CountByType tallies the task's labels per label type using the given
// store. Labels whose type is not in the closed set count as Other; labels
// deleted since placement are skipped.
func (t *Task) CountByType(store *annotate.Store) map[annotate.LabelType]int {
	counts := make(map[annotate.LabelType]int, len(annotate.ValidLabelTypes))
	for _, lt := range annotate.ValidLabelTypes {
		counts[lt] = 0
	}
	for _, id := range t.labelIDs {
		l := store.Get(id)
		if l == nil {
			continue
		}
		lt := l.Type
		if !lt.IsValid() {
			lt = annotate.Other
		}
		counts[lt]++
	}
	return counts
}
