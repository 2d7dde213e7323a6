package progress

import "sync"

// NoRegionID is the bucket for missions that reference no region, or a
// region the registry has never heard of. An unknown region id is a data
// inconsistency, not a fatal error.
const NoRegionID = ""

// Registry tracks regions, the completed-mission ledger and the per-region
// mission index. Reads come from the host UI and dashboards; writes come
// from the session event thread and mission-completion handlers.
type Registry struct {
	mu        sync.RWMutex
	regions   map[string]*Region
	completed []*Mission
	byRegion  map[string][]*Mission
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		regions:  make(map[string]*Region),
		byRegion: map[string][]*Mission{NoRegionID: {}},
	}
}

// AddRegion registers a region. Re-adding an id replaces the prior record.
func (r *Registry) AddRegion(region *Region) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regions[region.ID] = region
}

// Region returns the region with the given id.
func (r *Registry) Region(id string) (*Region, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	region, ok := r.regions[id]
	return region, ok
}

// Regions returns all registered regions.
func (r *Registry) Regions() []*Region {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Region, 0, len(r.regions))
	for _, region := range r.regions {
		out = append(out, region)
	}
	return out
}

// bucketFor resolves the region index key for a mission. Missions whose
// region is unknown to the registry land in the no-region bucket.
// Caller must hold r.mu.
func (r *Registry) bucketFor(m *Mission) string {
	if m.RegionID == NoRegionID {
		return NoRegionID
	}
	if _, ok := r.regions[m.RegionID]; !ok {
		return NoRegionID
	}
	return m.RegionID
}

// CompleteMission marks the mission completed and appends it to the
// completed ledger, indexed under its region. Completing the same mission id
// twice leaves exactly one ledger entry; completion never reverts.
func (r *Registry) CompleteMission(m *Mission) {
	if m == nil {
		return
	}
	m.Complete()

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.completed {
		if existing.MissionID == m.MissionID {
			return
		}
	}
	r.completed = append(r.completed, m)

	bucket := r.bucketFor(m)
	for _, existing := range r.byRegion[bucket] {
		if existing.MissionID == m.MissionID {
			return
		}
	}
	r.byRegion[bucket] = append(r.byRegion[bucket], m)
}

// CompletedMissions returns the completed ledger in completion order.
func (r *Registry) CompletedMissions() []*Mission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Mission, len(r.completed))
	copy(out, r.completed)
	return out
}

// MissionsByRegion returns the completed missions indexed under a region id.
// Unknown region ids resolve to the no-region bucket.
func (r *Registry) MissionsByRegion(regionID string) []*Mission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := regionID
	if _, ok := r.regions[regionID]; !ok {
		key = NoRegionID
	}
	out := make([]*Mission, len(r.byRegion[key]))
	copy(out, r.byRegion[key])
	return out
}

// RecordAuditedDistance adds audited street distance to a region. The
// completed distance is clamped into [0, total]: overlapping missions in the
// same region must not push completion past the region's total.
func (r *Registry) RecordAuditedDistance(regionID string, meters float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	region, ok := r.regions[regionID]
	if !ok {
		return
	}
	region.CompletedDistanceM += meters
	if region.CompletedDistanceM < 0 {
		region.CompletedDistanceM = 0
	}
	if region.TotalDistanceM > 0 && region.CompletedDistanceM > region.TotalDistanceM {
		region.CompletedDistanceM = region.TotalDistanceM
	}
}

// RegionProgress returns the read-only completion stats for a region. The
// boolean is false for unknown regions.
func (r *Registry) RegionProgress(regionID string) (CompletionStats, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	region, ok := r.regions[regionID]
	if !ok {
		return CompletionStats{}, false
	}
	return region.Stats(), true
}

// AllProgress returns completion stats for every registered region.
func (r *Registry) AllProgress() []CompletionStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CompletionStats, 0, len(r.regions))
	for _, region := range r.regions {
		out = append(out, region.Stats())
	}
	return out
}
