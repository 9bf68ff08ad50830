package repository

import (
	"context"

	"github.com/Geeks-Solutions/exmedias/internal/domain"
	"github.com/Geeks-Solutions/exmedias/internal/filter"
)

// MediaRepository defines the persistence contract for media assets.
// Both backends satisfy it; given an identical query both return
// set-equivalent results (same members, same total). Ordering may differ
// only when the query carries no sort.
type MediaRepository interface {
	// Create inserts a new media record and fills in its assigned id.
	Create(ctx context.Context, media *domain.Media) error

	// GetByID retrieves a media record by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Media, error)

	// List runs a compiled filter query and returns the matching page plus
	// the total count of matches before pagination, computed in the same
	// backend round trip.
	List(ctx context.Context, q *filter.Query) ([]domain.Media, int, error)

	// Update replaces an existing media record.
	Update(ctx context.Context, media *domain.Media) error

	// Delete removes a media record by its identifier.
	Delete(ctx context.Context, id string) error

	// IsUsed reports whether any content references the media.
	IsUsed(ctx context.Context, id string) (bool, error)

	// LinkContent records a relation between a media and a content entity
	// owned by the host application.
	LinkContent(ctx context.Context, mediaID, contentID string) error

	// UnlinkContent removes a single media/content relation.
	UnlinkContent(ctx context.Context, mediaID, contentID string) error

	// UnlinkContentAll removes the content's relation from every media.
	UnlinkContentAll(ctx context.Context, contentID string) error

	// CountByNamespace returns the number of media records in a namespace.
	CountByNamespace(ctx context.Context, namespace string) (int, error)
}

// PlatformRepository defines the persistence contract for platforms.
type PlatformRepository interface {
	// Create inserts a new platform and fills in its assigned id.
	Create(ctx context.Context, platform *domain.Platform) error

	// GetByID retrieves a platform by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Platform, error)

	// List runs a compiled filter query and returns the matching page plus
	// the pre-pagination total.
	List(ctx context.Context, q *filter.Query) ([]domain.Platform, int, error)

	// Update replaces an existing platform.
	Update(ctx context.Context, platform *domain.Platform) error

	// Delete removes a platform by its identifier.
	Delete(ctx context.Context, id string) error

	// IsUsed reports whether any file embedded in any media references the
	// platform.
	IsUsed(ctx context.Context, id string) (bool, error)
}
