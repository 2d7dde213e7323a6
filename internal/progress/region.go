package progress

// Region is a geographic area with aggregate audit-completion statistics.
type Region struct {
	ID   string `json:"region_id"`
	Name string `json:"region_name"`

	// Distances in meters. CompletedDistanceM never exceeds
	// TotalDistanceM; updates clamp rather than assume.
	TotalDistanceM     float64 `json:"total_distance_m"`
	CompletedDistanceM float64 `json:"completed_distance_m"`

	// Difficult marks neighborhoods not recommended for new users.
	Difficult bool `json:"difficult"`
}

// CompletionRate returns completed/total clamped to [0, 1]. A region with no
// distance reports 0.
func (r *Region) CompletionRate() float64 {
	if r.TotalDistanceM <= 0 {
		return 0
	}
	rate := r.CompletedDistanceM / r.TotalDistanceM
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}

// RemainingDistanceM returns the unaudited distance in meters, never
// negative.
func (r *Region) RemainingDistanceM() float64 {
	rem := r.TotalDistanceM - r.CompletedDistanceM
	if rem < 0 {
		return 0
	}
	return rem
}

// CompletionStats is the progress payload exposed to dashboards.
type CompletionStats struct {
	RegionID           string  `json:"region_id"`
	Rate               float64 `json:"rate"`
	TotalDistanceM     float64 `json:"total_distance_m"`
	CompletedDistanceM float64 `json:"completed_distance_m"`
}

// Stats derives the read-only completion payload for the region.
func (r *Region) Stats() CompletionStats {
	completed := r.CompletedDistanceM
	if completed < 0 {
		completed = 0
	}
	if r.TotalDistanceM > 0 && completed > r.TotalDistanceM {
		completed = r.TotalDistanceM
	}
	return CompletionStats{
		RegionID:           r.ID,
		Rate:               r.CompletionRate(),
		TotalDistanceM:     r.TotalDistanceM,
		CompletedDistanceM: completed,
	}
}
