package units

import (
	"math"
	"testing"
)

func TestConvertDistance(t *testing.T) {
	tests := []struct {
		name      string
		distanceM float64
		units     string
		expected  float64
	}{
		{"1000 m to km", 1000.0, Kilometers, 1.0},
		{"1000 m to mi", 1000.0, Miles, 0.621371},
		{"1000 m to ft", 1000.0, Feet, 3280.84},
		{"1000 m to m", 1000.0, Meters, 1000.0},
		{"unknown units default to meters", 1000.0, "unknown", 1000.0},
		{"0 m to mi", 0.0, Miles, 0.0},
		{"city block 150 m to ft", 150.0, Feet, 492.126},
		{"neighborhood 3218.69 m to mi", 3218.69, Miles, 2.0}, // ~2 mi
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertDistance(tt.distanceM, tt.units)
			if math.Abs(result-tt.expected) > 0.01 { // Allow small floating point differences
				t.Errorf("ConvertDistance(%f, %s) = %f, want %f", tt.distanceM, tt.units, result, tt.expected)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid m", Meters, true},
		{"valid km", Kilometers, true},
		{"valid mi", Miles, true},
		{"valid ft", Feet, true},
		{"invalid unit", "invalid", false},
		{"empty string", "", false},
		{"case sensitive", "MI", false},
		{"case sensitive", "Km", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValid(tt.unit)
			if result != tt.expected {
				t.Errorf("IsValid(%s) = %v, want %v", tt.unit, result, tt.expected)
			}
		})
	}
}

func TestGetValidUnitsString(t *testing.T) {
	expected := "m, km, mi, ft"
	result := GetValidUnitsString()
	if result != expected {
		t.Errorf("GetValidUnitsString() = %s, want %s", result, expected)
	}
}

// Test conversion accuracy with known values
func TestConversionAccuracy(t *testing.T) {
	tests := []struct {
		name      string
		distanceM float64
		unit      string
		expected  float64
	}{
		// Test miles conversion (1 m = 0.000621371 mi)
		{"1 m to mi", 1.0, Miles, 0.000621371},
		{"1609.34 m to mi", 1609.34, Miles, 0.99999713},

		// Test km conversion
		{"1 m to km", 1.0, Kilometers, 0.001},
		{"2500 m to km", 2500.0, Kilometers, 2.5},

		// Test meters (no conversion)
		{"5 m to m", 5.0, Meters, 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertDistance(tt.distanceM, tt.unit)
			if math.Abs(result-tt.expected) > 0.0001 { // Very precise check
				t.Errorf("ConvertDistance(%f, %s) = %f, want %f", tt.distanceM, tt.unit, result, tt.expected)
			}
		})
	}
}
