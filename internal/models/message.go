package models

import "time"

// Message is a direct message between two users. ChatID is not stored: it is
// filled per viewer with the id of the other participant.
type Message struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	SenderID    string    `gorm:"size:36;not null;index:idx_messages_pair" json:"sender_id"`
	RecipientID string    `gorm:"size:36;not null;index:idx_messages_pair" json:"-"`
	Type        string    `gorm:"size:16;not null" json:"type"` // text, image, audio, system
	Text        string    `gorm:"type:text" json:"text,omitempty"`
	MediaURL    string    `gorm:"size:512" json:"media_url,omitempty"`
	Status      string    `gorm:"size:16;not null" json:"status"` // sent, delivered, read
	CreatedAt   time.Time `gorm:"index" json:"created_at"`

	ChatID string `gorm:"-" json:"chat_id,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}
