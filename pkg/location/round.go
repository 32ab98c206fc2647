package location

import "math"

// ShortPrecision is the number of decimal places kept in a short coordinate
// (~1.1 km grid cell at the equator).
const ShortPrecision = 2

const shortScale = 100

// Short is a latitude/longitude pair rounded to ShortPrecision decimals.
type Short struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RoundCoordinate rounds a single degree value to two decimals, half away from zero.
func RoundCoordinate(v float64) float64 {
	return math.Round(v*shortScale) / shortScale
}

// Round normalizes a precise reading into its short pair.
func Round(lat, lng float64) Short {
	return Short{Latitude: RoundCoordinate(lat), Longitude: RoundCoordinate(lng)}
}

// ValidCoordinates reports whether lat/lng are finite and inside the usual degree ranges.
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
