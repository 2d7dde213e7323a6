// Package config loads the service configuration: reward rate, user class,
// difficult regions and view defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ProjectSidewalk/sidewalk-audit/internal/units"
)

// User classes. Turker-class users are crowd workers paid per audited mile.
const (
	UserClassTurker     = "turker"
	UserClassRegistered = "registered"
)

// Config is the root service configuration. Fields are pointers so that a
// partial JSON file only overrides what it names; the Get* accessors supply
// defaults for everything else.
type Config struct {
	// RewardPerMile is the rate paid to turker-class users per audited
	// mile, in dollars.
	RewardPerMile *float64 `json:"reward_per_mile,omitempty"`

	// UserClass is the class of the active user ("turker" or
	// "registered").
	UserClass *string `json:"user_class,omitempty"`

	// DifficultRegionIDs lists regions not recommended for new users.
	DifficultRegionIDs []string `json:"difficult_region_ids,omitempty"`

	// DefaultFieldOfViewDeg is the imagery provider's horizontal field of
	// view at zoom 0, in degrees.
	DefaultFieldOfViewDeg *float64 `json:"default_field_of_view_deg,omitempty"`

	// Units is the distance unit used by API responses.
	Units *string `json:"units,omitempty"`
}

// Empty returns a Config with all fields unset.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file. The file must have a .json
// extension and stay under 1MB. Fields omitted from the file keep their
// defaults, so partial configs are safe.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configured values are usable.
func (c *Config) Validate() error {
	if c.RewardPerMile != nil && *c.RewardPerMile < 0 {
		return fmt.Errorf("reward_per_mile must be non-negative, got %f", *c.RewardPerMile)
	}
	if c.UserClass != nil {
		switch *c.UserClass {
		case UserClassTurker, UserClassRegistered:
		default:
			return fmt.Errorf("user_class must be %q or %q, got %q", UserClassTurker, UserClassRegistered, *c.UserClass)
		}
	}
	if c.DefaultFieldOfViewDeg != nil {
		if *c.DefaultFieldOfViewDeg <= 0 || *c.DefaultFieldOfViewDeg >= 180 {
			return fmt.Errorf("default_field_of_view_deg must be in (0, 180), got %f", *c.DefaultFieldOfViewDeg)
		}
	}
	if c.Units != nil && !units.IsValid(*c.Units) {
		return fmt.Errorf("units must be one of %s, got %q", units.GetValidUnitsString(), *c.Units)
	}
	return nil
}

// GetRewardPerMile returns the reward_per_mile value or the default.
func (c *Config) GetRewardPerMile() float64 {
	if c.RewardPerMile == nil {
		return 4.17
	}
	return *c.RewardPerMile
}

// GetUserClass returns the user_class value or the default.
func (c *Config) GetUserClass() string {
	if c.UserClass == nil {
		return UserClassRegistered
	}
	return *c.UserClass
}

// IsTurker reports whether the active user is a turker-class crowd worker.
func (c *Config) IsTurker() bool {
	return c.GetUserClass() == UserClassTurker
}

// IsDifficultRegion reports whether the region id is flagged as difficult.
func (c *Config) IsDifficultRegion(regionID string) bool {
	for _, id := range c.DifficultRegionIDs {
		if id == regionID {
			return true
		}
	}
	return false
}

// GetDefaultFieldOfViewDeg returns the default_field_of_view_deg value or
// the default.
func (c *Config) GetDefaultFieldOfViewDeg() float64 {
	if c.DefaultFieldOfViewDeg == nil {
		return 90.0
	}
	return *c.DefaultFieldOfViewDeg
}

// GetUnits returns the units value or the default.
func (c *Config) GetUnits() string {
	if c.Units == nil {
		return units.Miles
	}
	return *c.Units
}
