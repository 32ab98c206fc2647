package repository

import (
	"context"

	"nearby/internal/models"

	"gorm.io/gorm"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) CreatePost(ctx context.Context, p *models.Post) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// ListByAuthors returns the newest posts written by any of authorIDs.
func (r *PostRepository) ListByAuthors(ctx context.Context, authorIDs []string, limit int) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	var list []models.Post
	err := r.db.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}
