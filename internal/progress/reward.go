package progress

import "github.com/ProjectSidewalk/sidewalk-audit/internal/config"

// RewardCalculator computes the payment owed to a crowd worker for their
// completed missions.
type RewardCalculator struct {
	cfg *config.Config
}

// NewRewardCalculator creates a calculator backed by the given
// configuration, which supplies the user class and the per-mile rate.
func NewRewardCalculator(cfg *config.Config) *RewardCalculator {
	return &RewardCalculator{cfg: cfg}
}

// CreditedDistanceMi returns the total mission distance credited to the
// user, in miles. A user may complete overlapping missions in the same
// region; they are credited for the furthest progress per region, not the
// sum of all attempts, so only the maximum completed-mission distance of
// each region counts, summed across regions. Missions without a region earn
// no distance credit.
func CreditedDistanceMi(missions []*Mission) float64 {
	maxByRegion := make(map[string]float64)
	for _, m := range missions {
		if m == nil || !m.IsCompleted() || m.RegionID == NoRegionID {
			continue
		}
		if m.DistanceMi > maxByRegion[m.RegionID] {
			maxByRegion[m.RegionID] = m.DistanceMi
		}
	}
	var total float64
	for _, d := range maxByRegion {
		total += d
	}
	return total
}

// TotalReward returns the reward owed for the given missions. Only
// turker-class users accrue rewards; for everyone else the reward is zero.
func (rc *RewardCalculator) TotalReward(missions []*Mission) float64 {
	if !rc.cfg.IsTurker() {
		return 0
	}
	return CreditedDistanceMi(missions) * rc.cfg.GetRewardPerMile()
}
