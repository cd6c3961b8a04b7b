package service

import (
	"context"
	"log/slog"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	locmodels "vecinal/internal/location/models"
	locservice "vecinal/internal/location/service"
	locstore "vecinal/internal/location/store"
	"vecinal/internal/news/store"
	dErrors "vecinal/pkg/domain-errors"
)

func newService(t *testing.T) *Service {
	t.Helper()
	taxonomy := locstore.NewInMemory()
	err := taxonomy.ReplaceAll(context.Background(),
		[]*locmodels.Department{{Code: 2, Name: "La Paz", Abbreviation: "LP"}},
		[]*locmodels.Province{{Code: 21, Name: "Murillo", DepartmentCode: 2}},
		nil)
	require.NoError(t, err)
	return New(store.NewInMemory(), locservice.New(taxonomy), slog.Default())
}

func TestCreate_ContentOrDocumentInvariant(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Title: "Asamblea general", AuthorID: "staff-1"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	withContent, err := svc.Create(ctx, CreateInput{
		Title:    "Asamblea general",
		Content:  "Se convoca a todos los vecinos...",
		AuthorID: "staff-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, withContent.ID)

	withDocument, err := svc.Create(ctx, CreateInput{
		Title:       "Acta de la asamblea",
		DocumentURL: "https://files.example.com/acta.pdf",
		AuthorID:    "staff-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, withDocument.ID)
}

func TestUpdate_InvariantOnMergedArticle(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	article, err := svc.Create(ctx, CreateInput{
		Title:       "Acta",
		Content:     "Resumen del acta",
		DocumentURL: "https://files.example.com/acta.pdf",
		AuthorID:    "staff-1",
	})
	require.NoError(t, err)

	// Removing the content is fine while the document remains.
	empty := ""
	updated, err := svc.Update(ctx, article.ID, UpdateInput{Content: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.Content)

	// Removing the document too would leave the article empty.
	_, err = svc.Update(ctx, article.ID, UpdateInput{DocumentURL: &empty})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestCreate_ScopeHierarchyValidated(t *testing.T) {
	svc := newService(t)

	_, err := svc.Create(context.Background(), CreateInput{
		Title:   "Noticia departamental",
		Content: "...",
		LocationScope: locmodels.Location{
			DepartmentCode: locmodels.Ptr(7),
			ProvinceCode:   locmodels.Ptr(21), // belongs to department 2
		},
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestList_PublicSeesPublishedOnly(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Title: "Borrador", Content: "...", IsPublished: false})
	require.NoError(t, err)
	published, err := svc.Create(ctx, CreateInput{Title: "Publicada", Content: "...", IsPublished: true})
	require.NoError(t, err)

	publicPage, total, err := svc.List(ctx, url.Values{}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, publicPage, 1)
	assert.Equal(t, published.ID, publicPage[0].ID)

	staffPage, total, err := svc.List(ctx, url.Values{}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, staffPage, 2)
}

func TestList_TagFilter(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	tagged, err := svc.Create(ctx, CreateInput{
		Title: "Obras", Content: "...", IsPublished: true,
		Tags: []string{"obras", "presupuesto"},
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{
		Title: "Deportes", Content: "...", IsPublished: true,
		Tags: []string{"deportes"},
	})
	require.NoError(t, err)

	page, total, err := svc.List(ctx, url.Values{"tags": {"obras"}}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, page, 1)
	assert.Equal(t, tagged.ID, page[0].ID)
}

func TestGet_DraftHiddenFromPublic(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	draft, err := svc.Create(ctx, CreateInput{Title: "Borrador", Content: "...", IsPublished: false})
	require.NoError(t, err)

	_, err = svc.Get(ctx, draft.ID, false)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	got, err := svc.Get(ctx, draft.ID, true)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)
}

func TestList_ScopeEnrichment(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{
		Title: "Noticia paceña", Content: "...", IsPublished: true,
		LocationScope: locmodels.Location{DepartmentCode: locmodels.Ptr(2)},
	})
	require.NoError(t, err)

	page, _, err := svc.List(ctx, url.Values{}, false)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.NotNil(t, page[0].LocationScope.DepartmentName)
	assert.Equal(t, "La Paz", *page[0].LocationScope.DepartmentName)
}
