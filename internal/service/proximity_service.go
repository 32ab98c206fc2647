package service

import (
	"context"
	"math"
	"sort"
	"time"

	"nearby/internal/domain"
	"nearby/internal/models"
	apperrors "nearby/pkg/errors"
	"nearby/pkg/location"
	"nearby/pkg/proximity"

	"go.uber.org/zap"
)

// NearbyMatch is another user whose stored location fell in the viewer's box.
type NearbyMatch struct {
	UserID         string                `json:"user_id"`
	ShortLatitude  float64               `json:"short_latitude"`
	ShortLongitude float64               `json:"short_longitude"`
	UpdatedAt      time.Time             `json:"updated_at"`
	Profile        models.ProfileSummary `json:"profile"`
}

type ProximityService struct {
	locations LocationStore
	profiles  ProfileStore
	rng       float64
	log       *zap.Logger
}

// NewProximityService uses rng as the default box range in degrees.
func NewProximityService(locations LocationStore, profiles ProfileStore, rng float64, log *zap.Logger) *ProximityService {
	return &ProximityService{locations: locations, profiles: profiles, rng: rng, log: log}
}

// Range returns the configured default range.
func (s *ProximityService) Range() float64 { return s.rng }

// Nearby runs FindNearby with the configured range.
func (s *ProximityService) Nearby(ctx context.Context, currentUserID string, at location.Short) ([]NearbyMatch, error) {
	return s.FindNearby(ctx, currentUserID, at, s.rng)
}

// FindNearby returns every other user whose short or full coordinates fall in
// [at-rng, at+rng] on both axes, sorted by user id. Profiles are looked up in a
// second query; ids without a profile get an "Unknown" placeholder.
func (s *ProximityService) FindNearby(ctx context.Context, currentUserID string, at location.Short, rng float64) ([]NearbyMatch, error) {
	if currentUserID == "" {
		return nil, apperrors.ErrNoCurrentUser
	}
	if rng < 0 || math.IsNaN(rng) || math.IsInf(rng, 0) {
		return nil, apperrors.ErrInvalidRange
	}
	box := proximity.NewBox(at, rng)
	rows, err := s.locations.FindInBox(ctx, box)
	if err != nil {
		s.log.Warn("proximity scan failed", zap.String("user_id", currentUserID), zap.Error(err))
		return nil, &apperrors.QueryError{Op: "user_locations in box", Err: err}
	}

	matches := make([]NearbyMatch, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.UserID == currentUserID {
			continue
		}
		ids = append(ids, row.UserID)
		matches = append(matches, NearbyMatch{
			UserID:         row.UserID,
			ShortLatitude:  row.ShortLatitude,
			ShortLongitude: row.ShortLongitude,
			UpdatedAt:      row.UpdatedAt,
		})
	}
	if len(matches) == 0 {
		return matches, nil
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].UserID < matches[j].UserID })

	profiles, err := s.profiles.GetByIDs(ctx, ids)
	if err != nil {
		s.log.Warn("profile lookup failed", zap.Int("ids", len(ids)), zap.Error(err))
		return nil, &apperrors.QueryError{Op: "profiles by id", Err: err}
	}
	byID := make(map[string]models.ProfileSummary, len(profiles))
	for i := range profiles {
		byID[profiles[i].ID] = profiles[i].Summary()
	}
	for i := range matches {
		p, ok := byID[matches[i].UserID]
		if !ok {
			p = models.ProfileSummary{ID: matches[i].UserID, DisplayName: domain.UnknownDisplayName}
		}
		matches[i].Profile = p
	}
	return matches, nil
}

// IDs returns the user ids of matches, in order.
func IDs(matches []NearbyMatch) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.UserID
	}
	return out
}
