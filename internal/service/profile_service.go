package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"nearby/internal/models"
	apperrors "nearby/pkg/errors"

	"go.uber.org/zap"
)

// ProfileUpdate is a full replacement of the editable profile fields. Social
// links that are nil or blank are cleared.
type ProfileUpdate struct {
	DisplayName string
	Username    string
	AvatarURL   string
	Bio         string
	Instagram   *string
	Twitter     *string
	LinkedIn    *string
	Website     *string
}

type ProfileService struct {
	profiles ProfileEditor
	log      *zap.Logger
	now      func() time.Time
}

func NewProfileService(profiles ProfileEditor, log *zap.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, log: log, now: time.Now}
}

// Get returns the user's profile, or ErrNotFound before onboarding.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, apperrors.ErrNoCurrentUser
	}
	return s.profiles.GetProfile(ctx, userID)
}

// Update creates the profile on first call and replaces it afterwards.
func (s *ProfileService) Update(ctx context.Context, userID string, u ProfileUpdate) (*models.Profile, error) {
	if userID == "" {
		return nil, apperrors.ErrNoCurrentUser
	}
	u.DisplayName = strings.TrimSpace(u.DisplayName)
	u.Username = strings.TrimSpace(u.Username)
	if u.DisplayName == "" || utf8.RuneCountInString(u.DisplayName) > 80 ||
		utf8.RuneCountInString(u.Username) > 64 || utf8.RuneCountInString(u.Bio) > 500 {
		return nil, apperrors.ErrInvalidProfile
	}

	p, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		p = &models.Profile{ID: userID, CreatedAt: s.now().UTC()}
	} else if err != nil {
		return nil, err
	}
	p.DisplayName = u.DisplayName
	p.Username = u.Username
	p.AvatarURL = strings.TrimSpace(u.AvatarURL)
	p.Bio = strings.TrimSpace(u.Bio)
	p.Instagram = optional(u.Instagram)
	p.Twitter = optional(u.Twitter)
	p.LinkedIn = optional(u.LinkedIn)
	p.Website = optional(u.Website)
	p.UpdatedAt = s.now().UTC()
	if err := s.profiles.SaveProfile(ctx, p); err != nil {
		s.log.Warn("save profile failed", zap.String("user_id", userID), zap.Error(err))
		return nil, &apperrors.PersistenceError{Op: "save profiles", Err: err}
	}
	return p, nil
}

func optional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
