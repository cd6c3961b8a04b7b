package store

import (
	"context"
	"sync"
	"time"

	locmodels "vecinal/internal/location/models"
	"vecinal/internal/query"
	"vecinal/internal/user/models"
	"vecinal/pkg/platform/sentinel"
)

// InMemory keeps accounts keyed by id with username and email uniqueness
// enforced under one lock.
type InMemory struct {
	mu         sync.RWMutex
	users      map[string]*models.User
	byUsername map[string]string
	byEmail    map[string]string
}

func NewInMemory() *InMemory {
	return &InMemory{
		users:      make(map[string]*models.User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

func (s *InMemory) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byUsername[user.Username]; taken {
		return sentinel.ErrConflict
	}
	if _, taken := s.byEmail[user.Email]; taken {
		return sentinel.ErrConflict
	}
	c := *user
	s.users[user.ID] = &c
	s.byUsername[user.Username] = user.ID
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *InMemory) ByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (s *InMemory) ByLogin(ctx context.Context, login string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[login]
	if !ok {
		id, ok = s.byEmail[login]
	}
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *s.users[id]
	return &c, nil
}

func (s *InMemory) List(ctx context.Context, q query.Query) ([]*models.User, int, error) {
	s.mu.RLock()
	all := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		c := *u
		all = append(all, &c)
	}
	s.mu.RUnlock()
	return query.Apply(all, q)
}

func (s *InMemory) UpdateLocation(ctx context.Context, id string, loc locmodels.Location) (*models.User, error) {
	return s.mutate(id, func(u *models.User) {
		u.Location = loc
	})
}

func (s *InMemory) UpdateRole(ctx context.Context, id, role string) (*models.User, error) {
	return s.mutate(id, func(u *models.User) {
		u.Role = role
	})
}

func (s *InMemory) SetMemberRegistrationCode(ctx context.Context, id, code string) (*models.User, error) {
	return s.mutate(id, func(u *models.User) {
		u.MemberRegistrationCode = code
	})
}

func (s *InMemory) mutate(id string, apply func(u *models.User)) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	apply(u)
	u.UpdatedAt = time.Now().UTC()
	c := *u
	return &c, nil
}
