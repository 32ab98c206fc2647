package repository

import (
	"context"
	"errors"

	"nearby/internal/models"
	apperrors "nearby/pkg/errors"
	"nearby/pkg/proximity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Upsert inserts the row or overwrites every coordinate of the existing row for
// the same user. There is no version check: the last write wins.
func (r *LocationRepository) Upsert(ctx context.Context, loc *models.UserLocation) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"full_latitude", "full_longitude", "short_latitude", "short_longitude", "updated_at",
		}),
	}).Create(loc).Error
}

func (r *LocationRepository) GetByUserID(ctx context.Context, userID string) (*models.UserLocation, error) {
	var loc models.UserLocation
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&loc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// FindInBox scans every stored location whose short pair or full pair lies in b.
// The scan is linear; there is no spatial index behind it.
func (r *LocationRepository) FindInBox(ctx context.Context, b proximity.Box) ([]models.UserLocation, error) {
	var list []models.UserLocation
	err := r.db.WithContext(ctx).
		Where(
			"(short_latitude BETWEEN ? AND ? AND short_longitude BETWEEN ? AND ?) OR (full_latitude BETWEEN ? AND ? AND full_longitude BETWEEN ? AND ?)",
			b.MinLat, b.MaxLat, b.MinLng, b.MaxLng,
			b.MinLat, b.MaxLat, b.MinLng, b.MaxLng,
		).
		Order("user_id").
		Find(&list).Error
	return list, err
}
