package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Geeks-Solutions/exmedias/internal/domain"
	"github.com/Geeks-Solutions/exmedias/internal/filter"
	apperrors "github.com/Geeks-Solutions/exmedias/pkg/errors"
)

func newTestPlatformService(repo *mockPlatformRepository) *PlatformService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPlatformService(repo, logger)
}

func TestListPlatforms_ComputedFilterPassesThrough(t *testing.T) {
	repo := new(mockPlatformRepository)
	svc := newTestPlatformService(repo)
	ctx := context.Background()

	repo.On("List", ctx, mock.MatchedBy(func(q *filter.Query) bool {
		return len(q.Computed) == 1 && q.Computed[0].Key == filter.KeyNumberOfMedias
	})).Return([]domain.Platform{{ID: "7", Name: "desktop", NumberOfMedias: 3}}, 1, nil)

	envelope, err := svc.ListPlatforms(ctx, &filter.Request{
		Filters:   [][]filter.Term{{{Key: "number_of_medias", Value: "1"}}},
		Operators: map[string]filter.OperatorSpec{"number_of_medias": {Operation: ">"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, envelope.Total)
	repo.AssertExpectations(t)
}

func TestListPlatforms_NilRequestListsEverything(t *testing.T) {
	repo := new(mockPlatformRepository)
	svc := newTestPlatformService(repo)
	ctx := context.Background()

	repo.On("List", ctx, mock.MatchedBy(func(q *filter.Query) bool {
		return !q.HasFilters() && len(q.Computed) == 0
	})).Return([]domain.Platform{{ID: "7", Name: "desktop"}}, 1, nil)

	envelope, err := svc.ListPlatforms(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, envelope.Total)
	repo.AssertExpectations(t)
}

func TestListPlatforms_IncompleteRange(t *testing.T) {
	repo := new(mockPlatformRepository)
	svc := newTestPlatformService(repo)

	_, err := svc.ListPlatforms(context.Background(), &filter.Request{
		Filters:   [][]filter.Term{{{Key: "number_of_medias", Value: "1"}}},
		Operators: map[string]filter.OperatorSpec{"number_of_medias": {Operation: "<>", From: "2"}},
	})
	assert.ErrorIs(t, err, apperrors.ErrIncompleteRange)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestCreatePlatform_Success(t *testing.T) {
	repo := new(mockPlatformRepository)
	svc := newTestPlatformService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Platform")).Return(nil)

	created, err := svc.CreatePlatform(ctx, &domain.Platform{
		Name: "mobile", Width: 390, Height: 844, Namespace: "blog",
	})
	require.NoError(t, err)
	assert.False(t, created.InsertedAt.IsZero())
	repo.AssertExpectations(t)
}

func TestCreatePlatform_InvalidDimensions(t *testing.T) {
	repo := new(mockPlatformRepository)
	svc := newTestPlatformService(repo)

	_, err := svc.CreatePlatform(context.Background(), &domain.Platform{Name: "flat", Width: 0, Height: 100})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDeletePlatform_BlockedWhileReferenced(t *testing.T) {
	repo := new(mockPlatformRepository)
	svc := newTestPlatformService(repo)
	ctx := context.Background()

	repo.On("IsUsed", ctx, "7").Return(true, nil)

	err := svc.DeletePlatform(ctx, "7")
	assert.ErrorIs(t, err, apperrors.ErrReferentialConflict)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeletePlatform_Success(t *testing.T) {
	repo := new(mockPlatformRepository)
	svc := newTestPlatformService(repo)
	ctx := context.Background()

	repo.On("IsUsed", ctx, "7").Return(false, nil)
	repo.On("Delete", ctx, "7").Return(nil)

	require.NoError(t, svc.DeletePlatform(ctx, "7"))
	repo.AssertExpectations(t)
}
