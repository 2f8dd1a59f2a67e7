package provider

import "strings"

const (
	Miles      = "miles"
	Kilometers = "kilometers"
)

// OdometerScale maps a numeric odometer scale (0 miles, 1 kilometers) to its unit.
// Unknown scales are blank.
func OdometerScale(scale int) string {
	switch scale {
	case 0:
		return Miles
	case 1:
		return Kilometers
	}
	return ""
}

// MileageUnit maps a provider mileage unit in any case to miles or kilometers.
func MileageUnit(unit string) string {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "mi", "miles":
		return Miles
	case "km", "kilometers":
		return Kilometers
	}
	return ""
}
