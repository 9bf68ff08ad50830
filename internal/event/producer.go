// Package event publishes media lifecycle events and consumes the
// content.deleted stream that keeps media/content relations honest.
package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/Geeks-Solutions/exmedias/pkg/kafka"

	"github.com/Geeks-Solutions/exmedias/internal/domain"
)

// Kafka topics for media domain events.
const (
	TopicMediaUploaded  = "exmedias.media.uploaded"
	TopicMediaDeleted   = "exmedias.media.deleted"
	TopicContentDeleted = "exmedias.content.deleted"
)

// Aggregate type constant.
const AggregateTypeMedia = "media"

// Source identifier for events originating from this library.
const SourceMediaService = "exmedias"

// MediaUploadedData is the payload for a media.uploaded event.
type MediaUploadedData struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	Namespace string `json:"namespace"`
	FileCount int    `json:"file_count"`
}

// MediaDeletedData is the payload for a media.deleted event.
type MediaDeletedData struct {
	ID        string `json:"id"`
	Namespace string `json:"namespace"`
}

// ContentDeletedData is the payload of the inbound content.deleted event.
type ContentDeletedData struct {
	ID string `json:"id"`
}

// Producer publishes media domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishMediaUploaded publishes a media.uploaded event.
func (p *Producer) PublishMediaUploaded(ctx context.Context, media *domain.Media) error {
	data := MediaUploadedData{
		ID:        media.ID,
		Title:     media.Title,
		Type:      media.Type,
		Namespace: media.Namespace,
		FileCount: len(media.Files),
	}

	event, err := pkgkafka.NewEvent(TopicMediaUploaded, media.ID, AggregateTypeMedia, SourceMediaService, data)
	if err != nil {
		return fmt.Errorf("create media.uploaded event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicMediaUploaded, event); err != nil {
		return fmt.Errorf("publish media.uploaded event: %w", err)
	}

	p.logger.DebugContext(ctx, "published media.uploaded event",
		slog.String("media_id", media.ID),
		slog.String("namespace", media.Namespace),
	)

	return nil
}

// PublishMediaDeleted publishes a media.deleted event.
func (p *Producer) PublishMediaDeleted(ctx context.Context, id, namespace string) error {
	data := MediaDeletedData{ID: id, Namespace: namespace}

	event, err := pkgkafka.NewEvent(TopicMediaDeleted, id, AggregateTypeMedia, SourceMediaService, data)
	if err != nil {
		return fmt.Errorf("create media.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicMediaDeleted, event); err != nil {
		return fmt.Errorf("publish media.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published media.deleted event",
		slog.String("media_id", id),
	)

	return nil
}
