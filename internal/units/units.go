// Package units provides shared constants and validation for distance units
package units

// Unit constants
const (
	Meters     = "m"
	Kilometers = "km"
	Miles      = "mi"
	Feet       = "ft"
)

// MetersToMiles is the conversion factor applied to street distances before
// reward math, which is specified in miles.
const MetersToMiles = 0.000621371

// ValidUnits contains all valid unit values
var ValidUnits = []string{Meters, Kilometers, Miles, Feet}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "m, km, mi, ft"
}

// ConvertDistance converts a distance from meters to the target units.
// Stores and the registry keep distances in meters.
func ConvertDistance(distanceM float64, targetUnits string) float64 {
	switch targetUnits {
	case Meters:
		return distanceM
	case Kilometers:
		return distanceM / 1000
	case Miles:
		return distanceM * MetersToMiles
	case Feet:
		return distanceM * 3.28084
	default:
		return distanceM
	}
}
