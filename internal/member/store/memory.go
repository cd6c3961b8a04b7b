package store

import (
	"context"
	"sync"
	"time"

	"vecinal/internal/member/models"
	"vecinal/internal/query"
	"vecinal/pkg/platform/sentinel"
)

// InMemory keeps member records keyed by registration code.
type InMemory struct {
	mu      sync.RWMutex
	byCode  map[string]*models.Member
	byIDNum map[string]string // idCard+"-"+extension -> registration code
}

func NewInMemory() *InMemory {
	return &InMemory{
		byCode:  make(map[string]*models.Member),
		byIDNum: make(map[string]string),
	}
}

func idCardKey(m *models.Member) string {
	return m.IDCard + "-" + m.IDCardExtension
}

func (s *InMemory) Create(ctx context.Context, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byCode[member.RegistrationCode]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byIDNum[idCardKey(member)]; exists {
		return sentinel.ErrConflict
	}
	c := *member
	s.byCode[member.RegistrationCode] = &c
	s.byIDNum[idCardKey(member)] = member.RegistrationCode
	return nil
}

func (s *InMemory) ByRegistrationCode(ctx context.Context, code string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byCode[code]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *m
	return &c, nil
}

func (s *InMemory) List(ctx context.Context, q query.Query) ([]*models.Member, int, error) {
	s.mu.RLock()
	all := make([]*models.Member, 0, len(s.byCode))
	for _, m := range s.byCode {
		c := *m
		all = append(all, &c)
	}
	s.mu.RUnlock()
	return query.Apply(all, q)
}

func (s *InMemory) UpdateStatus(ctx context.Context, code string, status models.Status) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byCode[code]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	m.Status = status
	m.UpdatedAt = time.Now().UTC()
	c := *m
	return &c, nil
}

func (s *InMemory) ClaimForUser(ctx context.Context, code, userID string) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byCode[code]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if m.Status != models.StatusVerified {
		return nil, sentinel.ErrInvalidState
	}
	switch m.LinkedUserID {
	case "", userID:
		m.LinkedUserID = userID
		m.UpdatedAt = time.Now().UTC()
		c := *m
		return &c, nil
	default:
		return nil, sentinel.ErrConflict
	}
}

func (s *InMemory) ReleaseClaim(ctx context.Context, code, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byCode[code]
	if !ok {
		return sentinel.ErrNotFound
	}
	if m.LinkedUserID != userID {
		return sentinel.ErrConflict
	}
	m.LinkedUserID = ""
	m.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemory) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byCode), nil
}

func (s *InMemory) CountByStatus(ctx context.Context, status models.Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.byCode {
		if m.Status == status {
			n++
		}
	}
	return n, nil
}
