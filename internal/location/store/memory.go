package store

import (
	"context"
	"sort"
	"sync"

	"vecinal/internal/location/models"
	"vecinal/pkg/platform/sentinel"
)

// InMemory holds the taxonomy in maps keyed by code. It backs unit tests and
// local development; production uses the Surreal store.
type InMemory struct {
	mu             sync.RWMutex
	departments    map[int]*models.Department
	provinces      map[int]*models.Province
	municipalities map[int]*models.Municipality
	queries        int
}

func NewInMemory() *InMemory {
	return &InMemory{
		departments:    make(map[int]*models.Department),
		provinces:      make(map[int]*models.Province),
		municipalities: make(map[int]*models.Municipality),
	}
}

// QueryCount reports how many lookups were issued. Tests use it to pin the
// bulk-enrichment guarantee: queries per request stay bounded by the number
// of levels enriched, independent of page size.
func (s *InMemory) QueryCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queries
}

func (s *InMemory) Departments(ctx context.Context) ([]*models.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	out := make([]*models.Department, 0, len(s.departments))
	for _, d := range s.departments {
		c := *d
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *InMemory) ProvincesByDepartment(ctx context.Context, departmentCode int) ([]*models.Province, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	var out []*models.Province
	for _, p := range s.provinces {
		if p.DepartmentCode == departmentCode {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *InMemory) MunicipalitiesByProvince(ctx context.Context, provinceCode int) ([]*models.Municipality, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	var out []*models.Municipality
	for _, m := range s.municipalities {
		if m.ProvinceCode == provinceCode {
			c := *m
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *InMemory) ProvinceByCode(ctx context.Context, code int) (*models.Province, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	p, ok := s.provinces[code]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (s *InMemory) MunicipalityByCode(ctx context.Context, code int) (*models.Municipality, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	m, ok := s.municipalities[code]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *m
	return &c, nil
}

func (s *InMemory) DepartmentName(ctx context.Context, code int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	d, ok := s.departments[code]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return d.Name, nil
}

func (s *InMemory) ProvinceName(ctx context.Context, code int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	p, ok := s.provinces[code]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return p.Name, nil
}

func (s *InMemory) MunicipalityName(ctx context.Context, code int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	m, ok := s.municipalities[code]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return m.Name, nil
}

func (s *InMemory) DepartmentNames(ctx context.Context, codes []int) (map[int]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	out := make(map[int]string, len(codes))
	for _, code := range codes {
		if d, ok := s.departments[code]; ok {
			out[code] = d.Name
		}
	}
	return out, nil
}

func (s *InMemory) ProvinceNames(ctx context.Context, codes []int) (map[int]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	out := make(map[int]string, len(codes))
	for _, code := range codes {
		if p, ok := s.provinces[code]; ok {
			out[code] = p.Name
		}
	}
	return out, nil
}

func (s *InMemory) MunicipalityNames(ctx context.Context, codes []int) (map[int]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	out := make(map[int]string, len(codes))
	for _, code := range codes {
		if m, ok := s.municipalities[code]; ok {
			out[code] = m.Name
		}
	}
	return out, nil
}

func (s *InMemory) ReplaceAll(ctx context.Context, departments []*models.Department, provinces []*models.Province, municipalities []*models.Municipality) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.departments = make(map[int]*models.Department, len(departments))
	for _, d := range departments {
		c := *d
		s.departments[d.Code] = &c
	}
	s.provinces = make(map[int]*models.Province, len(provinces))
	for _, p := range provinces {
		c := *p
		s.provinces[p.Code] = &c
	}
	s.municipalities = make(map[int]*models.Municipality, len(municipalities))
	for _, m := range municipalities {
		c := *m
		s.municipalities[m.Code] = &c
	}
	return nil
}
