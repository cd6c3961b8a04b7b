package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memmodels "vecinal/internal/member/models"
	memstore "vecinal/internal/member/store"
	newsmodels "vecinal/internal/news/models"
	newsstore "vecinal/internal/news/store"
	projmodels "vecinal/internal/project/models"
	projstore "vecinal/internal/project/store"
	dErrors "vecinal/pkg/domain-errors"
)

func TestSummary(t *testing.T) {
	ctx := context.Background()
	members := memstore.NewInMemory()
	news := newsstore.NewInMemory()
	projects := projstore.NewInMemory()

	for i, code := range []string{"CON-AAAA111122", "CON-BBBB333344", "CON-CCCC555566"} {
		err := members.Create(ctx, &memmodels.Member{
			RegistrationCode: code,
			IDCard:           "100000" + string(rune('0'+i)),
			IDCardExtension:  "LP",
			Status:           memmodels.StatusPending,
		})
		require.NoError(t, err)
	}
	_, err := members.UpdateStatus(ctx, "CON-AAAA111122", memmodels.StatusVerified)
	require.NoError(t, err)

	require.NoError(t, news.Create(ctx, &newsmodels.Article{
		ID: "a1", Title: "published", IsPublished: true, PublicationDate: time.Now(),
	}))
	require.NoError(t, news.Create(ctx, &newsmodels.Article{
		ID: "a2", Title: "draft", IsPublished: false,
	}))

	require.NoError(t, projects.Create(ctx, &projmodels.Project{
		ID: "p1", ProjectName: "plaza", Status: projmodels.StatusInExecution,
	}))
	require.NoError(t, projects.Create(ctx, &projmodels.Project{
		ID: "p2", ProjectName: "canal", Status: projmodels.StatusPlanned,
	}))

	summary, err := New(members, news, projects).Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalMembers)
	assert.Equal(t, 1, summary.VerifiedMembers)
	assert.Equal(t, 1, summary.PublishedArticles)
	assert.Equal(t, 1, summary.ProjectsInExecution)
}

type failingNews struct{}

func (failingNews) CountPublished(ctx context.Context) (int, error) {
	return 0, assert.AnError
}

func TestSummary_OneFailingCounterFailsSnapshot(t *testing.T) {
	svc := New(memstore.NewInMemory(), failingNews{}, projstore.NewInMemory())

	_, err := svc.Summary(context.Background())
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInternal, dErrors.CodeOf(err))
}
