package service

import (
	"context"
	"errors"
	"time"

	"nearby/internal/models"
	apperrors "nearby/pkg/errors"
	"nearby/pkg/location"

	"go.uber.org/zap"
)

// Reading is one geolocation result from a device: either coordinates or the
// reason none could be produced.
type Reading struct {
	Latitude  float64
	Longitude float64
	Failure   apperrors.GeolocationReason
}

type LocationService struct {
	store LocationStore
	log   *zap.Logger
	now   func() time.Time
}

func NewLocationService(store LocationStore, log *zap.Logger) *LocationService {
	return &LocationService{store: store, log: log, now: time.Now}
}

// StoreLocation rounds the reading and upserts the user's single location row.
func (s *LocationService) StoreLocation(ctx context.Context, userID string, lat, lng float64) (*models.UserLocation, error) {
	if userID == "" {
		return nil, apperrors.ErrNoCurrentUser
	}
	if !location.ValidCoordinates(lat, lng) {
		return nil, apperrors.ErrInvalidCoordinates
	}
	short := location.Round(lat, lng)
	loc := &models.UserLocation{
		UserID:         userID,
		FullLatitude:   lat,
		FullLongitude:  lng,
		ShortLatitude:  short.Latitude,
		ShortLongitude: short.Longitude,
		UpdatedAt:      s.now().UTC(),
	}
	if err := s.store.Upsert(ctx, loc); err != nil {
		s.log.Warn("store location failed", zap.String("user_id", userID), zap.Error(err))
		return nil, &apperrors.PersistenceError{Op: "upsert user_locations", Err: err}
	}
	return loc, nil
}

// ReportReading handles a visibility toggle: failures come back as
// *GeolocationError and leave the stored row untouched.
func (s *LocationService) ReportReading(ctx context.Context, userID string, r Reading) (*models.UserLocation, error) {
	if r.Failure != "" {
		reason := r.Failure
		if !reason.Valid() {
			reason = apperrors.GeolocationPositionUnavailable
		}
		s.log.Debug("geolocation failed", zap.String("user_id", userID), zap.String("reason", string(reason)))
		return nil, &apperrors.GeolocationError{Reason: reason}
	}
	return s.StoreLocation(ctx, userID, r.Latitude, r.Longitude)
}

// Current returns the caller's stored row, or nil when they have never been
// visible.
func (s *LocationService) Current(ctx context.Context, userID string) (*models.UserLocation, error) {
	if userID == "" {
		return nil, apperrors.ErrNoCurrentUser
	}
	loc, err := s.store.GetByUserID(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &apperrors.QueryError{Op: "user_locations by user", Err: err}
	}
	return loc, nil
}
