package service

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecinal/internal/storage"
	"vecinal/internal/tribunal/models"
	"vecinal/internal/tribunal/store"
	dErrors "vecinal/pkg/domain-errors"
)

func newService(t *testing.T) (*Service, *store.InMemory) {
	t.Helper()
	tribunals := store.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(tribunals, storage.Discard{}, logger, nil), tribunals
}

func validTribunal() *models.Tribunal {
	return &models.Tribunal{
		Level:        models.LevelDepartmental,
		LocationCode: 2,
		LocationName: "La Paz",
		Directory: []models.DirectoryEntry{
			{Role: "PRESIDENT", FullName: "Rosa Mamani"},
			{Role: "SECRETARY", FullName: "Carlos Quispe"},
		},
		TermStartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		TermEndDate:   time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreate_AssignsIDAndTimestamps(t *testing.T) {
	svc, _ := newService(t)

	created, err := svc.Create(context.Background(), validTribunal())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestCreate_RejectsEmptyDirectory(t *testing.T) {
	svc, _ := newService(t)

	in := validTribunal()
	in.Directory = nil
	_, err := svc.Create(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))
	assert.Contains(t, err.Error(), "directory")
}

func TestCreate_RejectsIncompleteSeat(t *testing.T) {
	svc, _ := newService(t)

	in := validTribunal()
	in.Directory = append(in.Directory, models.DirectoryEntry{Role: "VOCAL"})
	_, err := svc.Create(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role and a full name")
}

func TestCreate_RejectsInvertedTerm(t *testing.T) {
	svc, _ := newService(t)

	in := validTribunal()
	in.TermStartDate, in.TermEndDate = in.TermEndDate, in.TermStartDate
	_, err := svc.Create(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))
}

func TestCreate_RejectsUnknownLevel(t *testing.T) {
	svc, _ := newService(t)

	in := validTribunal()
	in.Level = "NATIONAL"
	_, err := svc.Create(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NATIONAL")
}

func TestUpdate_ReplacesDirectoryKeepsDocuments(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validTribunal())
	require.NoError(t, err)
	_, err = svc.AttachDocument(ctx, created.ID, "statute", "application/pdf", strings.NewReader("pdf"))
	require.NoError(t, err)

	in := validTribunal()
	in.Directory = []models.DirectoryEntry{{Role: "PRESIDENT", FullName: "Julia Condori"}}
	updated, err := svc.Update(ctx, created.ID, in)
	require.NoError(t, err)

	assert.Len(t, updated.Directory, 1)
	assert.Equal(t, "Julia Condori", updated.Directory[0].FullName)
	assert.NotEmpty(t, updated.StatuteURL, "attached statute survives a directory update")
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestUpdate_ValidatesMergedRecord(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validTribunal())
	require.NoError(t, err)

	in := validTribunal()
	in.Directory = nil
	_, err = svc.Update(ctx, created.ID, in)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))
}

func TestList_FiltersByLevel(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validTribunal())
	require.NoError(t, err)

	municipal := validTribunal()
	municipal.Level = models.LevelMunicipal
	municipal.LocationCode = 201
	municipal.LocationName = "El Alto"
	_, err = svc.Create(ctx, municipal)
	require.NoError(t, err)

	params := url.Values{"level": []string{"MUNICIPAL"}}
	tribunals, total, err := svc.List(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, tribunals, 1)
	assert.Equal(t, "El Alto", tribunals[0].LocationName)
}

func TestList_UnknownFilterMatchesNothing(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validTribunal())
	require.NoError(t, err)

	got, total, err := svc.List(ctx, url.Values{"president": []string{"Rosa"}})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, total)
}

func TestAttachDocument_SetsURLPerKind(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validTribunal())
	require.NoError(t, err)

	withStatute, err := svc.AttachDocument(ctx, created.ID, "statute", "application/pdf", strings.NewReader("s"))
	require.NoError(t, err)
	assert.Contains(t, withStatute.StatuteURL, created.ID)
	assert.Empty(t, withStatute.RegulationsURL)

	withBoth, err := svc.AttachDocument(ctx, created.ID, "regulations", "application/pdf", strings.NewReader("r"))
	require.NoError(t, err)
	assert.NotEmpty(t, withBoth.StatuteURL)
	assert.NotEmpty(t, withBoth.RegulationsURL)
}

func TestDelete_ThenGetNotFound(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validTribunal())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))

	err = svc.Delete(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}
