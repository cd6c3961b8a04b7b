package store

import (
	"context"
	"sync"
	"time"

	"vecinal/internal/project/models"
	"vecinal/internal/query"
	"vecinal/pkg/platform/sentinel"
)

// InMemory keeps projects keyed by id.
type InMemory struct {
	mu       sync.RWMutex
	projects map[string]*models.Project
}

func NewInMemory() *InMemory {
	return &InMemory{projects: make(map[string]*models.Project)}
}

func (s *InMemory) Create(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.projects[project.ID]; exists {
		return sentinel.ErrConflict
	}
	c := *project
	s.projects[project.ID] = &c
	return nil
}

func (s *InMemory) ByID(ctx context.Context, id string) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (s *InMemory) List(ctx context.Context, q query.Query) ([]*models.Project, int, error) {
	s.mu.RLock()
	all := make([]*models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		c := *p
		all = append(all, &c)
	}
	s.mu.RUnlock()
	return query.Apply(all, q)
}

func (s *InMemory) Update(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[project.ID]; !ok {
		return sentinel.ErrNotFound
	}
	project.UpdatedAt = time.Now().UTC()
	c := *project
	s.projects[project.ID] = &c
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

func (s *InMemory) CountByStatus(ctx context.Context, status models.Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.projects {
		if p.Status == status {
			n++
		}
	}
	return n, nil
}
