// Package conversation turns a classification and already-fetched messages
// into what a client renders: header, composer state and visible messages.
// Nothing here performs I/O.
package conversation

import (
	"nearby/internal/domain"
	"nearby/internal/models"
)

// Classification is the result of a proximity check for one conversation.
// Counterpart is only set for normal conversations.
type Classification struct {
	Kind        domain.ConversationKind `json:"kind"`
	Counterpart *models.ProfileSummary  `json:"counterpart,omitempty"`
}

// Anonymous is the classification used whenever proximity cannot be shown.
func Anonymous() Classification {
	return Classification{Kind: domain.ConversationAnonymous}
}

// Normal reveals counterpart.
func Normal(counterpart models.ProfileSummary) Classification {
	return Classification{Kind: domain.ConversationNormal, Counterpart: &counterpart}
}

type View struct {
	Kind            domain.ConversationKind `json:"kind"`
	Title           string                  `json:"title"`
	AvatarURL       string                  `json:"avatar_url,omitempty"`
	ReadOnly        bool                    `json:"read_only"`
	VisibleMessages []models.Message        `json:"visible_messages"`
}

// BuildView derives header and composer state from c and filters messages.
// Anonymous conversations only show text messages; the rest stay stored.
func BuildView(c Classification, messages []models.Message) View {
	v := View{
		Kind:     c.Kind,
		ReadOnly: c.Kind != domain.ConversationNormal,
	}
	if v.ReadOnly {
		v.Title = domain.AnonymousTitle
		v.VisibleMessages = make([]models.Message, 0, len(messages))
		for _, m := range messages {
			if m.Type == domain.MessageTypeText {
				v.VisibleMessages = append(v.VisibleMessages, m)
			}
		}
		return v
	}

	v.Title = domain.NearbyUserFallback
	if cp := c.Counterpart; cp != nil {
		switch {
		case cp.DisplayName != "":
			v.Title = cp.DisplayName
		case cp.Username != "":
			v.Title = cp.Username
		}
		v.AvatarURL = cp.AvatarURL
	}
	v.VisibleMessages = messages
	if v.VisibleMessages == nil {
		v.VisibleMessages = []models.Message{}
	}
	return v
}

// TagSelf returns a copy of messages seen by selfID: own messages get the
// "me" sender and every message gets the counterpart id as chat id.
func TagSelf(messages []models.Message, selfID, counterpartID string) []models.Message {
	out := make([]models.Message, len(messages))
	for i, m := range messages {
		if m.SenderID == selfID {
			m.SenderID = domain.SenderSelf
		}
		m.ChatID = counterpartID
		out[i] = m
	}
	return out
}
