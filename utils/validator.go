// utils/validator.go - Input validation
package utils

import (
	"strings"
)

// ValidateCoordinates checks that a GPS coordinate pair is within the
// valid decimal-degree ranges.
func ValidateCoordinates(lat, lon float64) bool {
	if lat < -90 || lat > 90 {
		return false
	}
	if lon < -180 || lon > 180 {
		return false
	}
	return true
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove leading/trailing spaces
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}
