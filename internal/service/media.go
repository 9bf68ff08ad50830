// Package service implements the business logic in front of the
// repositories: filter normalization, validation, referential guards, and
// the storage/event side effects of the write path.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Geeks-Solutions/exmedias/internal/domain"
	"github.com/Geeks-Solutions/exmedias/internal/event"
	"github.com/Geeks-Solutions/exmedias/internal/filter"
	"github.com/Geeks-Solutions/exmedias/internal/repository"
	"github.com/Geeks-Solutions/exmedias/internal/storage"
	"github.com/Geeks-Solutions/exmedias/internal/youtube"
	apperrors "github.com/Geeks-Solutions/exmedias/pkg/errors"
	"github.com/Geeks-Solutions/exmedias/pkg/pagination"
	"github.com/Geeks-Solutions/exmedias/pkg/slug"
	"github.com/Geeks-Solutions/exmedias/pkg/validator"
)

// SignedURLTTL is how long presigned links to private files stay valid.
const SignedURLTTL = 15 * time.Minute

// VideoMetadata fetches title/duration/thumbnail for externally hosted
// video ids. Failures degrade to empty metadata.
type VideoMetadata interface {
	Lookup(ctx context.Context, videoID string) (*youtube.Metadata, error)
}

// MediaService implements the business logic for media operations.
type MediaService struct {
	repo      repository.MediaRepository
	platforms repository.PlatformRepository
	storage   storage.Storage
	producer  *event.Producer
	metadata  VideoMetadata
	logger    *slog.Logger
}

// NewMediaService creates a new media service. producer and metadata may be
// nil; the corresponding side effects are then skipped.
func NewMediaService(
	repo repository.MediaRepository,
	platforms repository.PlatformRepository,
	store storage.Storage,
	producer *event.Producer,
	metadata VideoMetadata,
	logger *slog.Logger,
) *MediaService {
	return &MediaService{
		repo:      repo,
		platforms: platforms,
		storage:   store,
		producer:  producer,
		metadata:  metadata,
		logger:    logger,
	}
}

// ListMedias normalizes the filter request and returns the matching page
// with its pre-pagination total. An empty result is not an error; malformed
// filters are rejected before any query executes.
func (s *MediaService) ListMedias(ctx context.Context, req *filter.Request) (*pagination.Envelope[domain.Media], error) {
	if req == nil {
		req = &filter.Request{}
	}
	q, err := filter.Normalize(*req)
	if err != nil {
		return nil, err
	}

	medias, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list medias: %w", err)
	}

	env := pagination.NewEnvelope(medias, total)
	return &env, nil
}

// GetMedia retrieves a media by its ID.
func (s *MediaService) GetMedia(ctx context.Context, id string) (*domain.Media, error) {
	media, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get media by id: %w", err)
	}
	return media, nil
}

// CreateMedia validates and persists a new media, enriching video files
// with external metadata where available.
func (s *MediaService) CreateMedia(ctx context.Context, media *domain.Media) (*domain.Media, error) {
	media.ApplyDefaults()

	if err := s.validateMedia(ctx, media); err != nil {
		return nil, err
	}

	s.enrichVideoFiles(ctx, media)

	now := time.Now().UTC()
	media.InsertedAt = now
	media.UpdatedAt = now

	if err := s.repo.Create(ctx, media); err != nil {
		return nil, fmt.Errorf("create media: %w", err)
	}

	if s.producer != nil {
		if err := s.producer.PublishMediaUploaded(ctx, media); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish media.uploaded event",
				slog.String("media_id", media.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "media created",
		slog.String("media_id", media.ID),
		slog.String("type", media.Type),
		slog.String("namespace", media.Namespace),
	)

	return media, nil
}

// UpdateMedia validates and persists changes to an existing media. When the
// privacy status flips, every stored object follows it.
func (s *MediaService) UpdateMedia(ctx context.Context, media *domain.Media) (*domain.Media, error) {
	current, err := s.repo.GetByID(ctx, media.ID)
	if err != nil {
		return nil, fmt.Errorf("get media for update: %w", err)
	}

	media.ApplyDefaults()
	if err := s.validateMedia(ctx, media); err != nil {
		return nil, err
	}

	s.enrichVideoFiles(ctx, media)

	media.ContentIDs = current.ContentIDs
	media.InsertedAt = current.InsertedAt

	if err := s.repo.Update(ctx, media); err != nil {
		return nil, fmt.Errorf("update media: %w", err)
	}

	if current.PrivateStatus != media.PrivateStatus {
		s.applyPrivacy(ctx, media)
	}

	s.logger.InfoContext(ctx, "media updated",
		slog.String("media_id", media.ID),
	)

	return media, nil
}

// DeleteMedia removes a media, its stored objects and its events. Deletion
// is refused while any content still references the media.
func (s *MediaService) DeleteMedia(ctx context.Context, id string) error {
	media, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get media for delete: %w", err)
	}

	used, err := s.repo.IsUsed(ctx, id)
	if err != nil {
		return fmt.Errorf("check media usage: %w", err)
	}
	if used {
		return apperrors.ReferentialConflict("media", id)
	}

	for _, f := range media.Files {
		if !f.Stored() {
			continue
		}
		if err := s.storage.Delete(ctx, f.FileID); err != nil {
			s.logger.ErrorContext(ctx, "failed to delete stored object",
				slog.String("media_id", id),
				slog.String("key", f.FileID),
				slog.String("error", err.Error()),
			)
			// DB deletion proceeds; the metadata row is the source of truth.
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete media: %w", err)
	}

	if s.producer != nil {
		if err := s.producer.PublishMediaDeleted(ctx, id, media.Namespace); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish media.deleted event",
				slog.String("media_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "media deleted",
		slog.String("media_id", id),
	)

	return nil
}

// UploadFileInput holds the parameters for attaching an uploaded file to a
// media.
type UploadFileInput struct {
	Filename    string
	ContentType string
	Size        int64
	PlatformID  string
	Data        io.Reader
}

// UploadFile uploads the bytes to object storage and appends the resulting
// file to the media. The uploaded object is cleaned up when the metadata
// write fails.
func (s *MediaService) UploadFile(ctx context.Context, mediaID string, input *UploadFileInput) (*domain.Media, error) {
	if input.Filename == "" {
		return nil, apperrors.InvalidInput("file name is required")
	}
	if input.Size <= 0 {
		return nil, apperrors.InvalidInput("file size must be greater than zero")
	}
	if input.Size > domain.MaxFileSize {
		return nil, apperrors.InvalidInput(fmt.Sprintf("file size %d exceeds maximum allowed size of %d bytes", input.Size, domain.MaxFileSize))
	}

	media, err := s.repo.GetByID(ctx, mediaID)
	if err != nil {
		return nil, fmt.Errorf("get media for upload: %w", err)
	}

	if err := s.checkPlatform(ctx, input.PlatformID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s-%s", media.Namespace, slug.Generate(input.Filename), uuid.New().String())

	result, err := s.storage.Upload(ctx, &storage.UploadInput{
		Key:         key,
		ContentType: input.ContentType,
		Size:        input.Size,
		Private:     media.PrivateStatus == domain.PrivacyPrivate,
		Data:        input.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	media.Files = append(media.Files, domain.File{
		URL:        result.URL,
		Filename:   input.Filename,
		Type:       input.ContentType,
		Size:       input.Size,
		FileID:     result.Key,
		PlatformID: input.PlatformID,
	})

	if err := s.repo.Update(ctx, media); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to clean up storage after db error",
				slog.String("key", key),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, fmt.Errorf("attach uploaded file: %w", err)
	}

	s.logger.InfoContext(ctx, "file uploaded",
		slog.String("media_id", mediaID),
		slog.String("key", key),
		slog.Int64("size", input.Size),
	)

	return media, nil
}

// SignedFileURL returns a time-limited URL for a stored file of a private
// media. Public media return the plain URL unchanged.
func (s *MediaService) SignedFileURL(ctx context.Context, mediaID, fileID string) (string, error) {
	media, err := s.repo.GetByID(ctx, mediaID)
	if err != nil {
		return "", fmt.Errorf("get media for signed url: %w", err)
	}

	for _, f := range media.Files {
		if f.FileID != fileID {
			continue
		}
		if media.PrivateStatus != domain.PrivacyPrivate || !f.Stored() {
			return f.URL, nil
		}
		url, err := s.storage.SignedURL(ctx, f.FileID, SignedURLTTL)
		if err != nil {
			return "", fmt.Errorf("sign file url: %w", err)
		}
		return url, nil
	}

	return "", apperrors.NotFound("file", fileID)
}

// LinkContent records that a content references the media.
func (s *MediaService) LinkContent(ctx context.Context, mediaID, contentID string) error {
	if contentID == "" {
		return apperrors.InvalidInput("content id is required")
	}
	if err := s.repo.LinkContent(ctx, mediaID, contentID); err != nil {
		return fmt.Errorf("link content: %w", err)
	}
	return nil
}

// UnlinkContent removes a single media/content relation.
func (s *MediaService) UnlinkContent(ctx context.Context, mediaID, contentID string) error {
	if err := s.repo.UnlinkContent(ctx, mediaID, contentID); err != nil {
		return fmt.Errorf("unlink content: %w", err)
	}
	return nil
}

// CountNamespace returns the number of medias in a namespace.
func (s *MediaService) CountNamespace(ctx context.Context, namespace string) (int, error) {
	count, err := s.repo.CountByNamespace(ctx, namespace)
	if err != nil {
		return 0, fmt.Errorf("count namespace: %w", err)
	}
	return count, nil
}

// validateMedia runs struct validation plus the cross-field rules tags
// cannot express: type membership, video durations, platform references.
func (s *MediaService) validateMedia(ctx context.Context, media *domain.Media) error {
	if err := validator.Validate(media); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	if !domain.IsValidType(media.Type) {
		return apperrors.InvalidInput(fmt.Sprintf("media type %q is not allowed", media.Type))
	}

	for i := range media.Files {
		f := &media.Files[i]
		if !f.ValidDuration() {
			return apperrors.InvalidInput(fmt.Sprintf("file %q requires a non-negative integer duration", f.Filename))
		}
		if err := s.checkPlatform(ctx, f.PlatformID); err != nil {
			return err
		}
	}
	return nil
}

// checkPlatform verifies a platform reference exists.
func (s *MediaService) checkPlatform(ctx context.Context, platformID string) error {
	if platformID == "" {
		return apperrors.InvalidInput("platform id is required")
	}
	if _, err := s.platforms.GetByID(ctx, platformID); err != nil {
		if apperrors.HTTPStatus(err) == 404 {
			return apperrors.InvalidInput(fmt.Sprintf("platform %s does not exist", platformID))
		}
		return fmt.Errorf("check platform reference: %w", err)
	}
	return nil
}

// enrichVideoFiles fills duration and thumbnail for externally hosted video
// files. Lookup failures leave the file as submitted.
func (s *MediaService) enrichVideoFiles(ctx context.Context, media *domain.Media) {
	if s.metadata == nil {
		return
	}
	for i := range media.Files {
		f := &media.Files[i]
		if !f.VideoLike() || f.Stored() || f.FileID == "" {
			continue
		}
		meta, err := s.metadata.Lookup(ctx, f.FileID)
		if err != nil {
			s.logger.WarnContext(ctx, "video metadata lookup failed",
				slog.String("file_id", f.FileID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if f.Duration == "" && meta.Duration > 0 {
			f.Duration = fmt.Sprintf("%d", meta.Duration)
		}
		if f.ThumbnailURL == "" {
			f.ThumbnailURL = meta.ThumbnailURL
		}
	}
}

// applyPrivacy pushes the media's privacy status to every stored object.
func (s *MediaService) applyPrivacy(ctx context.Context, media *domain.Media) {
	private := media.PrivateStatus == domain.PrivacyPrivate
	for _, f := range media.Files {
		if !f.Stored() {
			continue
		}
		if err := s.storage.SetPrivacy(ctx, f.FileID, private); err != nil {
			s.logger.ErrorContext(ctx, "failed to update object privacy",
				slog.String("media_id", media.ID),
				slog.String("key", f.FileID),
				slog.String("error", err.Error()),
			)
		}
	}
}
