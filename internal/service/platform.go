package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Geeks-Solutions/exmedias/internal/domain"
	"github.com/Geeks-Solutions/exmedias/internal/filter"
	"github.com/Geeks-Solutions/exmedias/internal/repository"
	apperrors "github.com/Geeks-Solutions/exmedias/pkg/errors"
	"github.com/Geeks-Solutions/exmedias/pkg/pagination"
	"github.com/Geeks-Solutions/exmedias/pkg/validator"
)

// PlatformService implements the business logic for platform operations.
type PlatformService struct {
	repo   repository.PlatformRepository
	logger *slog.Logger
}

// NewPlatformService creates a new platform service.
func NewPlatformService(repo repository.PlatformRepository, logger *slog.Logger) *PlatformService {
	return &PlatformService{
		repo:   repo,
		logger: logger,
	}
}

// ListPlatforms normalizes the filter request and returns the matching page
// with its pre-pagination total.
func (s *PlatformService) ListPlatforms(ctx context.Context, req *filter.Request) (*pagination.Envelope[domain.Platform], error) {
	if req == nil {
		req = &filter.Request{}
	}
	q, err := filter.Normalize(*req)
	if err != nil {
		return nil, err
	}

	platforms, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list platforms: %w", err)
	}

	env := pagination.NewEnvelope(platforms, total)
	return &env, nil
}

// GetPlatform retrieves a platform by its ID.
func (s *PlatformService) GetPlatform(ctx context.Context, id string) (*domain.Platform, error) {
	platform, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get platform by id: %w", err)
	}
	return platform, nil
}

// CreatePlatform validates and persists a new platform.
func (s *PlatformService) CreatePlatform(ctx context.Context, platform *domain.Platform) (*domain.Platform, error) {
	if err := validator.Validate(platform); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	now := time.Now().UTC()
	platform.InsertedAt = now
	platform.UpdatedAt = now

	if err := s.repo.Create(ctx, platform); err != nil {
		return nil, fmt.Errorf("create platform: %w", err)
	}

	s.logger.InfoContext(ctx, "platform created",
		slog.String("platform_id", platform.ID),
		slog.String("name", platform.Name),
	)

	return platform, nil
}

// UpdatePlatform validates and persists changes to an existing platform.
func (s *PlatformService) UpdatePlatform(ctx context.Context, platform *domain.Platform) (*domain.Platform, error) {
	if err := validator.Validate(platform); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	if err := s.repo.Update(ctx, platform); err != nil {
		return nil, fmt.Errorf("update platform: %w", err)
	}

	s.logger.InfoContext(ctx, "platform updated",
		slog.String("platform_id", platform.ID),
	)

	return platform, nil
}

// DeletePlatform removes a platform. Deletion is refused while any media
// file still references it.
func (s *PlatformService) DeletePlatform(ctx context.Context, id string) error {
	used, err := s.repo.IsUsed(ctx, id)
	if err != nil {
		return fmt.Errorf("check platform usage: %w", err)
	}
	if used {
		return apperrors.ReferentialConflict("platform", id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete platform: %w", err)
	}

	s.logger.InfoContext(ctx, "platform deleted",
		slog.String("platform_id", id),
	)

	return nil
}
