package store

import (
	"context"
	"sync"
	"time"

	"vecinal/internal/news/models"
	"vecinal/internal/query"
	"vecinal/pkg/platform/sentinel"
)

// InMemory keeps articles keyed by id.
type InMemory struct {
	mu       sync.RWMutex
	articles map[string]*models.Article
}

func NewInMemory() *InMemory {
	return &InMemory{articles: make(map[string]*models.Article)}
}

func (s *InMemory) Create(ctx context.Context, article *models.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.articles[article.ID]; exists {
		return sentinel.ErrConflict
	}
	c := *article
	s.articles[article.ID] = &c
	return nil
}

func (s *InMemory) ByID(ctx context.Context, id string) (*models.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.articles[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (s *InMemory) List(ctx context.Context, q query.Query) ([]*models.Article, int, error) {
	s.mu.RLock()
	all := make([]*models.Article, 0, len(s.articles))
	for _, a := range s.articles {
		c := *a
		all = append(all, &c)
	}
	s.mu.RUnlock()
	return query.Apply(all, q)
}

func (s *InMemory) Update(ctx context.Context, article *models.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[article.ID]; !ok {
		return sentinel.ErrNotFound
	}
	article.UpdatedAt = time.Now().UTC()
	c := *article
	s.articles[article.ID] = &c
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.articles, id)
	return nil
}

func (s *InMemory) CountPublished(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.articles {
		if a.IsPublished {
			n++
		}
	}
	return n, nil
}
