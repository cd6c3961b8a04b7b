// Package service implements taxonomy browsing, location enrichment and
// hierarchy validation on top of the location store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"vecinal/internal/audit"
	"vecinal/internal/location/metrics"
	"vecinal/internal/location/models"
	dErrors "vecinal/pkg/domain-errors"
	"vecinal/pkg/platform/sentinel"
	"vecinal/pkg/requestcontext"
)

// Taxonomy is the slice of the location store the service needs.
type Taxonomy interface {
	Departments(ctx context.Context) ([]*models.Department, error)
	ProvincesByDepartment(ctx context.Context, departmentCode int) ([]*models.Province, error)
	MunicipalitiesByProvince(ctx context.Context, provinceCode int) ([]*models.Municipality, error)

	ProvinceByCode(ctx context.Context, code int) (*models.Province, error)
	MunicipalityByCode(ctx context.Context, code int) (*models.Municipality, error)

	DepartmentName(ctx context.Context, code int) (string, error)
	ProvinceName(ctx context.Context, code int) (string, error)
	MunicipalityName(ctx context.Context, code int) (string, error)

	DepartmentNames(ctx context.Context, codes []int) (map[int]string, error)
	ProvinceNames(ctx context.Context, codes []int) (map[int]string, error)
	MunicipalityNames(ctx context.Context, codes []int) (map[int]string, error)

	ReplaceAll(ctx context.Context, departments []*models.Department, provinces []*models.Province, municipalities []*models.Municipality) error
}

// Service answers taxonomy reads and resolves codes to display names for
// other domains.
type Service struct {
	taxonomy  Taxonomy
	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher audit.Publisher
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// New constructs a Service.
func New(taxonomy Taxonomy, opts ...Option) *Service {
	s := &Service{taxonomy: taxonomy}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Departments lists every department ordered by code.
func (s *Service) Departments(ctx context.Context) ([]*models.Department, error) {
	departments, err := s.taxonomy.Departments(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list departments")
	}
	return departments, nil
}

// Provinces lists the provinces under one department ordered by code. An
// unknown department yields an empty list, not an error.
func (s *Service) Provinces(ctx context.Context, departmentCode int) ([]*models.Province, error) {
	provinces, err := s.taxonomy.ProvincesByDepartment(ctx, departmentCode)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list provinces")
	}
	return provinces, nil
}

// Municipalities lists the municipalities under one province ordered by code.
func (s *Service) Municipalities(ctx context.Context, provinceCode int) ([]*models.Municipality, error) {
	municipalities, err := s.taxonomy.MunicipalitiesByProvince(ctx, provinceCode)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list municipalities")
	}
	return municipalities, nil
}

// Enrich resolves the display names for a single location. The three levels
// are looked up concurrently. A missing or unknown code leaves the name nil;
// a store failure degrades the same way so one flaky lookup never breaks the
// response carrying the location.
func (s *Service) Enrich(ctx context.Context, loc models.Location) models.Enriched {
	start := time.Now()
	enriched := models.Enriched{Location: loc}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		enriched.DepartmentName = s.resolveName(gctx, loc.DepartmentCode, s.taxonomy.DepartmentName)
		return nil
	})
	g.Go(func() error {
		enriched.ProvinceName = s.resolveName(gctx, loc.ProvinceCode, s.taxonomy.ProvinceName)
		return nil
	})
	g.Go(func() error {
		enriched.MunicipalityName = s.resolveName(gctx, loc.MunicipalityCode, s.taxonomy.MunicipalityName)
		return nil
	})
	_ = g.Wait()

	if s.partial(enriched) {
		s.metrics.IncrementPartialEnrichment()
	}
	s.metrics.ObserveEnrichLatency("single", time.Since(start))
	return enriched
}

// EnrichAll resolves names for a whole page of locations with one bulk
// lookup per taxonomy level, independent of page size. Output order matches
// input order.
func (s *Service) EnrichAll(ctx context.Context, locs []models.Location) []models.Enriched {
	start := time.Now()
	out := make([]models.Enriched, len(locs))
	for i, loc := range locs {
		out[i] = models.Enriched{Location: loc}
	}

	deptCodes := distinctCodes(locs, func(l models.Location) *int { return l.DepartmentCode })
	provCodes := distinctCodes(locs, func(l models.Location) *int { return l.ProvinceCode })
	muniCodes := distinctCodes(locs, func(l models.Location) *int { return l.MunicipalityCode })

	var deptNames, provNames, muniNames map[int]string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deptNames = s.resolveNames(gctx, "department", deptCodes, s.taxonomy.DepartmentNames)
		return nil
	})
	g.Go(func() error {
		provNames = s.resolveNames(gctx, "province", provCodes, s.taxonomy.ProvinceNames)
		return nil
	})
	g.Go(func() error {
		muniNames = s.resolveNames(gctx, "municipality", muniCodes, s.taxonomy.MunicipalityNames)
		return nil
	})
	_ = g.Wait()

	for i := range out {
		out[i].DepartmentName = nameFor(out[i].DepartmentCode, deptNames)
		out[i].ProvinceName = nameFor(out[i].ProvinceCode, provNames)
		out[i].MunicipalityName = nameFor(out[i].MunicipalityCode, muniNames)
		if s.partial(out[i]) {
			s.metrics.IncrementPartialEnrichment()
		}
	}
	s.metrics.ObserveEnrichLatency("bulk", time.Since(start))
	return out
}

// ValidateHierarchy checks that the codes in loc form a consistent chain:
// the province belongs to the department and the municipality to the
// province. Levels not present are skipped; a child without its parent level
// is rejected.
func (s *Service) ValidateHierarchy(ctx context.Context, loc models.Location) error {
	if err := s.validateHierarchy(ctx, loc); err != nil {
		s.metrics.IncrementHierarchyCheck("invalid")
		return err
	}
	s.metrics.IncrementHierarchyCheck("ok")
	return nil
}

func (s *Service) validateHierarchy(ctx context.Context, loc models.Location) error {
	if loc.ProvinceCode != nil {
		if loc.DepartmentCode == nil {
			return dErrors.New(dErrors.CodeInvariantViolation, "provinceCode requires departmentCode")
		}
		province, err := s.taxonomy.ProvinceByCode(ctx, *loc.ProvinceCode)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Newf(dErrors.CodeInvariantViolation, "unknown provinceCode %d", *loc.ProvinceCode)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "validate province")
		}
		if province.DepartmentCode != *loc.DepartmentCode {
			return dErrors.Newf(dErrors.CodeInvariantViolation,
				"province %d does not belong to department %d", *loc.ProvinceCode, *loc.DepartmentCode)
		}
	}
	if loc.MunicipalityCode != nil {
		if loc.ProvinceCode == nil {
			return dErrors.New(dErrors.CodeInvariantViolation, "municipalityCode requires provinceCode")
		}
		municipality, err := s.taxonomy.MunicipalityByCode(ctx, *loc.MunicipalityCode)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.Newf(dErrors.CodeInvariantViolation, "unknown municipalityCode %d", *loc.MunicipalityCode)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "validate municipality")
		}
		if municipality.ProvinceCode != *loc.ProvinceCode {
			return dErrors.Newf(dErrors.CodeInvariantViolation,
				"municipality %d does not belong to province %d", *loc.MunicipalityCode, *loc.ProvinceCode)
		}
	}
	return nil
}

// Reseed atomically replaces the whole taxonomy.
func (s *Service) Reseed(ctx context.Context, departments []*models.Department, provinces []*models.Province, municipalities []*models.Municipality) error {
	if err := s.taxonomy.ReplaceAll(ctx, departments, provinces, municipalities); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "reseed taxonomy")
	}
	s.logger.InfoContext(ctx, "taxonomy reseeded",
		"departments", len(departments),
		"provinces", len(provinces),
		"municipalities", len(municipalities))
	audit.Emit(ctx, s.publisher, s.logger, audit.Event{
		Action:  audit.ActionTaxonomyReseeded,
		ActorID: requestcontext.UserID(ctx),
		Subject: "taxonomy",
		Detail: fmt.Sprintf("%d departments, %d provinces, %d municipalities",
			len(departments), len(provinces), len(municipalities)),
	})
	return nil
}

func (s *Service) resolveName(ctx context.Context, code *int, lookup func(context.Context, int) (string, error)) *string {
	if code == nil {
		return nil
	}
	name, err := lookup(ctx, *code)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "name lookup failed, leaving name null", "code", *code, "error", err)
		}
		return nil
	}
	return &name
}

func (s *Service) resolveNames(ctx context.Context, level string, codes []int, lookup func(context.Context, []int) (map[int]string, error)) map[int]string {
	if len(codes) == 0 {
		return nil
	}
	names, err := lookup(ctx, codes)
	if err != nil {
		s.logger.WarnContext(ctx, "bulk name lookup failed, leaving names null", "level", level, "error", err)
		return nil
	}
	return names
}

func (s *Service) partial(e models.Enriched) bool {
	return (e.DepartmentCode != nil && e.DepartmentName == nil) ||
		(e.ProvinceCode != nil && e.ProvinceName == nil) ||
		(e.MunicipalityCode != nil && e.MunicipalityName == nil)
}

func distinctCodes(locs []models.Location, pick func(models.Location) *int) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, loc := range locs {
		code := pick(loc)
		if code == nil {
			continue
		}
		if _, ok := seen[*code]; ok {
			continue
		}
		seen[*code] = struct{}{}
		out = append(out, *code)
	}
	return out
}

func nameFor(code *int, names map[int]string) *string {
	if code == nil {
		return nil
	}
	name, ok := names[*code]
	if !ok {
		return nil
	}
	return &name
}
