package domain

// ConversationKind is derived on every conversation open; it is never stored.
type ConversationKind string

const (
	ConversationNormal    ConversationKind = "normal"
	ConversationAnonymous ConversationKind = "anonymous"
)

const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeAudio  = "audio"
	MessageTypeSystem = "system"
)

const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
)

// SenderSelf replaces the viewer's own id on messages returned to them.
const SenderSelf = "me"

const (
	AnonymousTitle      = "Anonymous"
	UnknownDisplayName  = "Unknown"
	NearbyUserFallback  = "Nearby user"
	MaxMessageTextRunes = 2000
	MaxPostTextRunes    = 1000
)

// IsUserMessageType reports whether users may send messages of type t.
func IsUserMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeAudio:
		return true
	}
	return false
}
