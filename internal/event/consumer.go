package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/Geeks-Solutions/exmedias/pkg/kafka"
)

// ContentUnlinker detaches a deleted content id from every media that
// references it.
type ContentUnlinker interface {
	UnlinkContentAll(ctx context.Context, contentID string) error
}

// ContentDeletedHandler returns the kafka handler for content.deleted
// events. When a content is removed upstream its relations must go too, so
// number_of_contents and usage checks stay truthful.
func ContentDeletedHandler(unlinker ContentUnlinker, logger *slog.Logger) pkgkafka.Handler {
	return func(ctx context.Context, event *pkgkafka.Event) error {
		var data ContentDeletedData
		if err := event.UnmarshalData(&data); err != nil {
			return fmt.Errorf("decode content.deleted payload: %w", err)
		}
		if data.ID == "" {
			logger.WarnContext(ctx, "content.deleted event without content id",
				slog.String("event_id", event.EventID),
			)
			return nil
		}

		if err := unlinker.UnlinkContentAll(ctx, data.ID); err != nil {
			return fmt.Errorf("unlink deleted content %s: %w", data.ID, err)
		}

		logger.InfoContext(ctx, "unlinked deleted content from medias",
			slog.String("content_id", data.ID),
		)
		return nil
	}
}

// NewContentDeletedConsumer wires the content.deleted consumer with
// idempotent handling, so replayed events never double-process.
func NewContentDeletedConsumer(
	cfg pkgkafka.ConsumerConfig,
	unlinker ContentUnlinker,
	store pkgkafka.IdempotencyStore,
	logger *slog.Logger,
) *pkgkafka.Consumer {
	handler := pkgkafka.IdempotentHandler(store, ContentDeletedHandler(unlinker, logger), logger)
	return pkgkafka.NewConsumer(cfg, handler, logger)
}
