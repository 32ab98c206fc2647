package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"nearby/internal/conversation"
	"nearby/internal/domain"
	"nearby/internal/models"
	"nearby/internal/session"
	apperrors "nearby/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Notifier pushes a freshly stored message to its recipient's live connections.
type Notifier interface {
	NotifyMessage(recipientID string, m models.Message)
}

// MessageDraft is what a user submits from the composer.
type MessageDraft struct {
	Type     string
	Text     string
	MediaURL string
}

// ConversationDetail is the rendered state of one conversation for one viewer.
type ConversationDetail struct {
	ChatID string `json:"chat_id"`
	conversation.View
	Days []conversation.DayGroup `json:"days"`
}

type ConversationService struct {
	proximity *ProximityService
	messages  MessageStore
	notifier  Notifier
	log       *zap.Logger
	now       func() time.Time
}

func NewConversationService(proximity *ProximityService, messages MessageStore, notifier Notifier, log *zap.Logger) *ConversationService {
	return &ConversationService{
		proximity: proximity,
		messages:  messages,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
	}
}

// Classify decides whether the viewer and otherUserID are nearby right now.
// It runs a fresh proximity query on every call; results are never cached.
func (s *ConversationService) Classify(ctx context.Context, viewer session.Viewer, otherUserID string) (conversation.Classification, error) {
	if viewer.UserID == "" {
		return conversation.Classification{}, apperrors.ErrNoCurrentUser
	}
	if !viewer.Visible() {
		return conversation.Anonymous(), nil
	}
	matches, err := s.proximity.Nearby(ctx, viewer.UserID, *viewer.Position)
	if err != nil {
		return conversation.Classification{}, err
	}
	for _, m := range matches {
		if m.UserID == otherUserID {
			return conversation.Normal(m.Profile), nil
		}
	}
	return conversation.Anonymous(), nil
}

// Open classifies the conversation and renders its messages for the viewer.
func (s *ConversationService) Open(ctx context.Context, viewer session.Viewer, otherUserID string) (*ConversationDetail, error) {
	if err := checkPair(viewer, otherUserID); err != nil {
		return nil, err
	}
	var (
		c    conversation.Classification
		msgs []models.Message
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		c, err = s.Classify(gctx, viewer, otherUserID)
		return err
	})
	g.Go(func() error {
		var err error
		msgs, err = s.messages.ListBetween(gctx, viewer.UserID, otherUserID)
		if err != nil {
			s.log.Warn("list messages failed", zap.String("user_id", viewer.UserID), zap.Error(err))
			return &apperrors.QueryError{Op: "messages between users", Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	view := conversation.BuildView(c, conversation.TagSelf(msgs, viewer.UserID, otherUserID))
	return &ConversationDetail{
		ChatID: otherUserID,
		View:   view,
		Days:   conversation.GroupByDay(view.VisibleMessages, s.now()),
	}, nil
}

// Send stores a message after re-checking proximity. Anonymous conversations
// are read-only.
func (s *ConversationService) Send(ctx context.Context, viewer session.Viewer, otherUserID string, d MessageDraft) (*models.Message, error) {
	if err := checkPair(viewer, otherUserID); err != nil {
		return nil, err
	}
	if d.Type == "" {
		d.Type = domain.MessageTypeText
	}
	if err := validateDraft(d); err != nil {
		return nil, err
	}
	c, err := s.Classify(ctx, viewer, otherUserID)
	if err != nil {
		return nil, err
	}
	if c.Kind != domain.ConversationNormal {
		return nil, apperrors.ErrReadOnlyConversation
	}

	msg := models.Message{
		ID:          uuid.NewString(),
		SenderID:    viewer.UserID,
		RecipientID: otherUserID,
		Type:        d.Type,
		Text:        strings.TrimSpace(d.Text),
		MediaURL:    d.MediaURL,
		Status:      domain.MessageStatusSent,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.messages.CreateMessage(ctx, &msg); err != nil {
		s.log.Warn("store message failed", zap.String("user_id", viewer.UserID), zap.Error(err))
		return nil, &apperrors.PersistenceError{Op: "insert messages", Err: err}
	}
	if s.notifier != nil {
		s.notifier.NotifyMessage(otherUserID, msg)
	}
	out := conversation.TagSelf([]models.Message{msg}, viewer.UserID, otherUserID)[0]
	return &out, nil
}

func checkPair(viewer session.Viewer, otherUserID string) error {
	if viewer.UserID == "" {
		return apperrors.ErrNoCurrentUser
	}
	if otherUserID == "" {
		return apperrors.ErrNotFound
	}
	if otherUserID == viewer.UserID {
		return apperrors.ErrSelfConversation
	}
	return nil
}

func validateDraft(d MessageDraft) error {
	if !domain.IsUserMessageType(d.Type) {
		return apperrors.ErrInvalidMessage
	}
	if d.Type == domain.MessageTypeText {
		text := strings.TrimSpace(d.Text)
		if text == "" || utf8.RuneCountInString(text) > domain.MaxMessageTextRunes {
			return apperrors.ErrInvalidMessage
		}
		return nil
	}
	if strings.TrimSpace(d.MediaURL) == "" {
		return apperrors.ErrInvalidMessage
	}
	return nil
}
