package service

import (
	"context"

	"nearby/internal/models"
	"nearby/pkg/proximity"
)

// LocationStore is the only writer of user_locations and the source of
// proximity scans. Implemented by repository.LocationRepository and
// repository.MemoryStore.
type LocationStore interface {
	Upsert(ctx context.Context, loc *models.UserLocation) error
	GetByUserID(ctx context.Context, userID string) (*models.UserLocation, error)
	FindInBox(ctx context.Context, b proximity.Box) ([]models.UserLocation, error)
}

// ProfileStore resolves profiles by id. Unknown ids are omitted, not errors.
type ProfileStore interface {
	GetByIDs(ctx context.Context, ids []string) ([]models.Profile, error)
}

type MessageStore interface {
	CreateMessage(ctx context.Context, m *models.Message) error
	ListBetween(ctx context.Context, a, b string) ([]models.Message, error)
}

type PostStore interface {
	CreatePost(ctx context.Context, p *models.Post) error
	ListByAuthors(ctx context.Context, authorIDs []string, limit int) ([]models.Post, error)
}

// ProfileEditor backs profile onboarding.
type ProfileEditor interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	SaveProfile(ctx context.Context, p *models.Profile) error
}
