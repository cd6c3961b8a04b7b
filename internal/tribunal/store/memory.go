package store

import (
	"context"
	"sync"
	"time"

	"vecinal/internal/query"
	"vecinal/internal/tribunal/models"
	"vecinal/pkg/platform/sentinel"
)

// InMemory keeps tribunals keyed by id.
type InMemory struct {
	mu        sync.RWMutex
	tribunals map[string]*models.Tribunal
}

func NewInMemory() *InMemory {
	return &InMemory{tribunals: make(map[string]*models.Tribunal)}
}

func (s *InMemory) Create(ctx context.Context, tribunal *models.Tribunal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tribunals[tribunal.ID]; exists {
		return sentinel.ErrConflict
	}
	c := *tribunal
	s.tribunals[tribunal.ID] = &c
	return nil
}

func (s *InMemory) ByID(ctx context.Context, id string) (*models.Tribunal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tr, ok := s.tribunals[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *tr
	return &c, nil
}

func (s *InMemory) List(ctx context.Context, q query.Query) ([]*models.Tribunal, int, error) {
	s.mu.RLock()
	all := make([]*models.Tribunal, 0, len(s.tribunals))
	for _, tr := range s.tribunals {
		c := *tr
		all = append(all, &c)
	}
	s.mu.RUnlock()
	return query.Apply(all, q)
}

func (s *InMemory) Update(ctx context.Context, tribunal *models.Tribunal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tribunals[tribunal.ID]; !ok {
		return sentinel.ErrNotFound
	}
	tribunal.UpdatedAt = time.Now().UTC()
	c := *tribunal
	s.tribunals[tribunal.ID] = &c
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tribunals[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.tribunals, id)
	return nil
}
