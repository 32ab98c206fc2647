// Package session carries the per-request view of the current user that the
// proximity and conversation code needs.
package session

import "nearby/pkg/location"

// Viewer is the current user plus their current short position. A nil
// Position means visibility is off or no reading is available.
type Viewer struct {
	UserID   string
	Position *location.Short
}

// Visible reports whether the viewer supplied a current position.
func (v Viewer) Visible() bool {
	return v.Position != nil
}

// At returns a visible viewer positioned at the short pair of (lat, lng).
func At(userID string, lat, lng float64) Viewer {
	short := location.Round(lat, lng)
	return Viewer{UserID: userID, Position: &short}
}

// Hidden returns a viewer without a position.
func Hidden(userID string) Viewer {
	return Viewer{UserID: userID}
}
