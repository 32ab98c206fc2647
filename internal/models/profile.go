package models

import "time"

// Profile is the public face of a user. Social links are optional and stay
// nil when the user has not added them.
type Profile struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	DisplayName string    `gorm:"size:80" json:"display_name"`
	Username    string    `gorm:"size:64;index" json:"username"`
	AvatarURL   string    `gorm:"size:512" json:"avatar_url,omitempty"`
	Bio         string    `gorm:"size:500" json:"bio,omitempty"`
	Instagram   *string   `gorm:"size:255" json:"instagram"`
	Twitter     *string   `gorm:"size:255" json:"twitter"`
	LinkedIn    *string   `gorm:"size:255" json:"linkedin"`
	Website     *string   `gorm:"size:255" json:"website"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// ProfileSummary is what proximity results and conversation headers expose.
type ProfileSummary struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Username    string  `json:"username,omitempty"`
	AvatarURL   string  `json:"avatar_url,omitempty"`
	Instagram   *string `json:"instagram"`
	Twitter     *string `json:"twitter"`
	LinkedIn    *string `json:"linkedin"`
	Website     *string `json:"website"`
}

func (p *Profile) Summary() ProfileSummary {
	return ProfileSummary{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Username:    p.Username,
		AvatarURL:   p.AvatarURL,
		Instagram:   p.Instagram,
		Twitter:     p.Twitter,
		LinkedIn:    p.LinkedIn,
		Website:     p.Website,
	}
}
