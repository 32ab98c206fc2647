package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"nearby/internal/domain"
	"nearby/internal/models"
	"nearby/internal/session"
	apperrors "nearby/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FeedItem struct {
	models.Post
	Author models.ProfileSummary `json:"author"`
}

// FeedPage is false-visible and empty when the viewer shares no position.
type FeedPage struct {
	Visible bool       `json:"visible"`
	Items   []FeedItem `json:"items"`
}

type FeedService struct {
	proximity *ProximityService
	posts     PostStore
	pageSize  int
	log       *zap.Logger
	now       func() time.Time
}

func NewFeedService(proximity *ProximityService, posts PostStore, pageSize int, log *zap.Logger) *FeedService {
	return &FeedService{proximity: proximity, posts: posts, pageSize: pageSize, log: log, now: time.Now}
}

// Feed lists the newest posts written by users currently near the viewer.
func (s *FeedService) Feed(ctx context.Context, viewer session.Viewer) (*FeedPage, error) {
	if viewer.UserID == "" {
		return nil, apperrors.ErrNoCurrentUser
	}
	page := &FeedPage{Visible: viewer.Visible(), Items: []FeedItem{}}
	if !page.Visible {
		return page, nil
	}
	matches, err := s.proximity.Nearby(ctx, viewer.UserID, *viewer.Position)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return page, nil
	}
	authors := make(map[string]models.ProfileSummary, len(matches))
	for _, m := range matches {
		authors[m.UserID] = m.Profile
	}
	posts, err := s.posts.ListByAuthors(ctx, IDs(matches), s.pageSize)
	if err != nil {
		s.log.Warn("list posts failed", zap.String("user_id", viewer.UserID), zap.Error(err))
		return nil, &apperrors.QueryError{Op: "posts by authors", Err: err}
	}
	for _, p := range posts {
		page.Items = append(page.Items, FeedItem{Post: p, Author: authors[p.AuthorID]})
	}
	return page, nil
}

func (s *FeedService) CreatePost(ctx context.Context, userID, text, mediaURL string) (*models.Post, error) {
	if userID == "" {
		return nil, apperrors.ErrNoCurrentUser
	}
	text = strings.TrimSpace(text)
	if (text == "" && strings.TrimSpace(mediaURL) == "") || utf8.RuneCountInString(text) > domain.MaxPostTextRunes {
		return nil, apperrors.ErrInvalidMessage
	}
	p := &models.Post{
		ID:        uuid.NewString(),
		AuthorID:  userID,
		Text:      text,
		MediaURL:  mediaURL,
		CreatedAt: s.now().UTC(),
	}
	if err := s.posts.CreatePost(ctx, p); err != nil {
		return nil, &apperrors.PersistenceError{Op: "insert posts", Err: err}
	}
	return p, nil
}
