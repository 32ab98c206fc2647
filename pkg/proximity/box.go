package proximity

import "nearby/pkg/location"

// DefaultRange is the degree delta applied to both axes (~2.2 km at the equator).
// It is not corrected for latitude, so boxes narrow toward the poles.
const DefaultRange = 0.02

// Box is an inclusive latitude/longitude bounding box.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// NewBox builds [center-rng, center+rng] on both axes.
func NewBox(center location.Short, rng float64) Box {
	return Box{
		MinLat: center.Latitude - rng,
		MaxLat: center.Latitude + rng,
		MinLng: center.Longitude - rng,
		MaxLng: center.Longitude + rng,
	}
}

// Contains reports whether (lat, lng) lies inside the box, edges included.
func (b Box) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// Matches applies the location match rule: a stored record is in range when
// either its short pair or its full-precision pair falls inside the box.
// Rows written before short coordinates existed still match on the full pair.
func (b Box) Matches(shortLat, shortLng, fullLat, fullLng float64) bool {
	return b.Contains(shortLat, shortLng) || b.Contains(fullLat, fullLng)
}
