package models

import "time"

// UserLocation is the latest location report of a user; one row per user,
// replaced on every report. History is not kept and rows are never removed
// when visibility is switched off.
type UserLocation struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	UserID         string    `gorm:"size:36;uniqueIndex;not null" json:"user_id"`
	FullLatitude   float64   `gorm:"not null;index:idx_location_full" json:"-"`
	FullLongitude  float64   `gorm:"not null;index:idx_location_full" json:"-"`
	ShortLatitude  float64   `gorm:"not null;index:idx_location_short" json:"short_latitude"`
	ShortLongitude float64   `gorm:"not null;index:idx_location_short" json:"short_longitude"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

// TableName allows custom table name.
func (UserLocation) TableName() string {
	return "user_locations"
}
