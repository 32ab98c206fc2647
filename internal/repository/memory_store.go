package repository

import (
	"context"
	"sort"
	"sync"

	"nearby/internal/models"
	apperrors "nearby/pkg/errors"
	"nearby/pkg/proximity"
)

// MemoryStore keeps locations, profiles, messages and posts in process.
// It backs DATABASE_DRIVER=memory and the service tests.
type MemoryStore struct {
	mu        sync.RWMutex
	locations map[string]models.UserLocation
	profiles  map[string]models.Profile
	messages  []models.Message
	posts     []models.Post
	nextLocID uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locations: make(map[string]models.UserLocation),
		profiles:  make(map[string]models.Profile),
	}
}

func (s *MemoryStore) Upsert(_ context.Context, loc *models.UserLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.locations[loc.UserID]; ok {
		loc.ID = existing.ID
	} else {
		s.nextLocID++
		loc.ID = s.nextLocID
	}
	s.locations[loc.UserID] = *loc
	return nil
}

func (s *MemoryStore) GetByUserID(_ context.Context, userID string) (*models.UserLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc, ok := s.locations[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &loc, nil
}

func (s *MemoryStore) FindInBox(_ context.Context, b proximity.Box) ([]models.UserLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []models.UserLocation
	for _, loc := range s.locations {
		if b.Matches(loc.ShortLatitude, loc.ShortLongitude, loc.FullLatitude, loc.FullLongitude) {
			list = append(list, loc)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UserID < list[j].UserID })
	return list, nil
}

func (s *MemoryStore) GetProfile(_ context.Context, id string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) GetByIDs(_ context.Context, ids []string) ([]models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []models.Profile
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			list = append(list, p)
		}
	}
	return list, nil
}

func (s *MemoryStore) SaveProfile(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = *p
	return nil
}

func (s *MemoryStore) CreateMessage(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, *m)
	return nil
}

func (s *MemoryStore) ListBetween(_ context.Context, a, b string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []models.Message
	for _, m := range s.messages {
		if (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a) {
			list = append(list, m)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (s *MemoryStore) CreatePost(_ context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, *p)
	return nil
}

func (s *MemoryStore) ListByAuthors(_ context.Context, authorIDs []string, limit int) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	authors := make(map[string]struct{}, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = struct{}{}
	}
	var list []models.Post
	for _, p := range s.posts {
		if _, ok := authors[p.AuthorID]; ok {
			list = append(list, p)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}
