// Package progress tracks the hierarchy of geographic regions, the missions
// defined over them, and per-region audit completion. It is the bookkeeping
// that decides which unit of work is in progress, when it is complete, and
// how partial completion and reward are computed.
package progress

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ProjectSidewalk/sidewalk-audit/internal/annotate"
)

// MissionState is the lifecycle state of a mission.
type MissionState string

const (
	MissionNotStarted MissionState = "not_started"
	MissionInProgress MissionState = "in_progress"
	MissionCompleted  MissionState = "completed"
)

// Mission is a bounded unit of labeling work scoped to a region, label type
// and difficulty level. The lifecycle is monotonic: not started, then in
// progress, then completed, with no backward transition. Once completed a
// mission never reverts.
type Mission struct {
	MissionID string             `json:"mission_id"`
	RegionID  string             `json:"region_id,omitempty"` // empty = the no-region bucket
	LabelType annotate.LabelType `json:"label_type"`
	Level     int                `json:"level"`

	// DistanceMi is the street distance covered by the mission, in miles.
	DistanceMi float64 `json:"distance_mi"`

	mu    sync.Mutex
	state MissionState
}

// State returns the mission's current lifecycle state.
func (m *Mission) State() MissionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == "" {
		return MissionNotStarted
	}
	return m.state
}

// IsCompleted reports whether the mission has been completed.
func (m *Mission) IsCompleted() bool { return m.State() == MissionCompleted }

// Start moves the mission into progress. Starting an already started or
// completed mission changes nothing.
func (m *Mission) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == "" || m.state == MissionNotStarted {
		m.state = MissionInProgress
	}
}

// Complete marks the mission completed. Completion is monotonic: once set it
// cannot be cleared by any later operation.
func (m *Mission) Complete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = MissionCompleted
}

// Factory creates missions when a user starts work in a region.
type Factory struct{}

// Create builds a new mission for the given region, label type and level.
// An empty regionID places the mission in the no-region bucket.
func (Factory) Create(regionID string, labelType annotate.LabelType, level int, distanceMi float64) *Mission {
	return &Mission{
		MissionID:  uuid.New().String(),
		RegionID:   regionID,
		LabelType:  labelType,
		Level:      level,
		DistanceMi: distanceMi,
		state:      MissionNotStarted,
	}
}
