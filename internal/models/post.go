package models

import "time"

type Post struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	AuthorID  string    `gorm:"size:36;not null;index" json:"author_id"`
	Text      string    `gorm:"type:text" json:"text"`
	MediaURL  string    `gorm:"size:512" json:"media_url,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Post) TableName() string {
	return "posts"
}
