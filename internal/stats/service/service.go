// Package service aggregates the admin dashboard counters.
package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	memmodels "vecinal/internal/member/models"
	projmodels "vecinal/internal/project/models"
	dErrors "vecinal/pkg/domain-errors"
)

// Members is the member counting slice of the registry.
type Members interface {
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status memmodels.Status) (int, error)
}

// News is the article counting slice of the news store.
type News interface {
	CountPublished(ctx context.Context) (int, error)
}

// Projects is the project counting slice of the project store.
type Projects interface {
	CountByStatus(ctx context.Context, status projmodels.Status) (int, error)
}

// Summary is one dashboard snapshot.
type Summary struct {
	TotalMembers        int `json:"totalMembers"`
	VerifiedMembers     int `json:"verifiedMembers"`
	PublishedArticles   int `json:"publishedArticles"`
	ProjectsInExecution int `json:"projectsInExecution"`
}

// Service fans the four counters out concurrently.
type Service struct {
	members  Members
	news     News
	projects Projects
}

// New constructs a Service.
func New(members Members, news News, projects Projects) *Service {
	return &Service{members: members, news: news, projects: projects}
}

// Summary gathers the dashboard counters. One failing counter fails the
// whole snapshot; partial dashboards mislead more than they help.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var out Summary
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalMembers, err = s.members.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.VerifiedMembers, err = s.members.CountByStatus(ctx, memmodels.StatusVerified)
		return err
	})
	g.Go(func() (err error) {
		out.PublishedArticles, err = s.news.CountPublished(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.ProjectsInExecution, err = s.projects.CountByStatus(ctx, projmodels.StatusInExecution)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "gather summary")
	}
	return &out, nil
}
