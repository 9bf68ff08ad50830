package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Geeks-Solutions/exmedias/internal/domain"
	"github.com/Geeks-Solutions/exmedias/internal/filter"
	apperrors "github.com/Geeks-Solutions/exmedias/pkg/errors"
)

// MediaRepository implements repository.MediaRepository using MongoDB.
type MediaRepository struct {
	collection *mongo.Collection
}

// NewMediaRepository creates a new MongoDB-backed media repository.
func NewMediaRepository(db *mongo.Database) *MediaRepository {
	return &MediaRepository{collection: db.Collection(mediasCollection)}
}

// mediaDoc is the stored document shape; ids are ObjectIDs here and strings
// at the domain boundary.
type mediaDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Title            string             `bson:"title"`
	Author           string             `bson:"author"`
	Tags             []string           `bson:"tags"`
	Type             string             `bson:"type"`
	LockedStatus     string             `bson:"locked_status"`
	PrivateStatus    string             `bson:"private_status"`
	Namespace        string             `bson:"namespace"`
	Files            []domain.File      `bson:"files"`
	ContentIDs       []string           `bson:"content_ids,omitempty"`
	NumberOfContents int                `bson:"number_of_contents,omitempty"`
	InsertedAt       time.Time          `bson:"inserted_at"`
	UpdatedAt        time.Time          `bson:"updated_at"`
}

func (d *mediaDoc) toDomain() domain.Media {
	m := domain.Media{
		ID:               d.ID.Hex(),
		Title:            d.Title,
		Author:           d.Author,
		Tags:             d.Tags,
		Type:             d.Type,
		LockedStatus:     d.LockedStatus,
		PrivateStatus:    d.PrivateStatus,
		Namespace:        d.Namespace,
		Files:            d.Files,
		ContentIDs:       d.ContentIDs,
		NumberOfContents: len(d.ContentIDs),
		InsertedAt:       d.InsertedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	if m.Files == nil {
		m.Files = []domain.File{}
	}
	return m
}

func mediaToDoc(m *domain.Media) (*mediaDoc, error) {
	doc := &mediaDoc{
		Title:         m.Title,
		Author:        m.Author,
		Tags:          m.Tags,
		Type:          m.Type,
		LockedStatus:  m.LockedStatus,
		PrivateStatus: m.PrivateStatus,
		Namespace:     m.Namespace,
		Files:         m.Files,
		ContentIDs:    m.ContentIDs,
		InsertedAt:    m.InsertedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.ID != "" {
		oid, err := parseObjectID("media", m.ID)
		if err != nil {
			return nil, err
		}
		doc.ID = oid
	}
	return doc, nil
}

// Create inserts a new media document and fills in its assigned id.
func (r *MediaRepository) Create(ctx context.Context, m *domain.Media) error {
	doc, err := mediaToDoc(m)
	if err != nil {
		return err
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert media: %w", err)
	}

	m.ID = doc.ID.Hex()
	return nil
}

// GetByID retrieves a media document by its identifier.
func (r *MediaRepository) GetByID(ctx context.Context, id string) (*domain.Media, error) {
	oid, err := parseObjectID("media", id)
	if err != nil {
		return nil, err
	}

	var doc mediaDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("media", id)
		}
		return nil, fmt.Errorf("get media: %w", err)
	}

	m := doc.toDomain()
	return &m, nil
}

// facetResult is the shape of the single $facet document each listing
// pipeline yields: the page plus the count scoped by the same match.
type facetResult[T any] struct {
	Result []T `bson:"result"`
	Total  []struct {
		Count int `bson:"count"`
	} `bson:"total"`
}

// List runs the compiled aggregation pipeline: computed counts are
// materialized, the match document filters, and one $facet produces both
// the page and the total in a single logical read.
func (r *MediaRepository) List(ctx context.Context, q *filter.Query) ([]domain.Media, int, error) {
	cursor, err := r.collection.Aggregate(ctx, listPipeline(q, mediaCountStages()))
	if err != nil {
		return nil, 0, fmt.Errorf("list medias: %w", err)
	}
	defer cursor.Close(ctx)

	var facets []facetResult[mediaDoc]
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, 0, fmt.Errorf("decode media listing: %w", err)
	}

	medias := []domain.Media{}
	total := 0
	if len(facets) > 0 {
		for i := range facets[0].Result {
			medias = append(medias, facets[0].Result[i].toDomain())
		}
		if len(facets[0].Total) > 0 {
			total = facets[0].Total[0].Count
		}
	}

	return medias, total, nil
}

// Update replaces an existing media document.
func (r *MediaRepository) Update(ctx context.Context, m *domain.Media) error {
	doc, err := mediaToDoc(m)
	if err != nil {
		return err
	}

	m.UpdatedAt = time.Now().UTC()
	doc.UpdatedAt = m.UpdatedAt

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return fmt.Errorf("update media: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("media", m.ID)
	}
	return nil
}

// Delete removes a media document by its identifier.
func (r *MediaRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID("media", id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("media", id)
	}
	return nil
}

// IsUsed reports whether any content references the media, i.e. its
// materialized relation array is non-empty.
func (r *MediaRepository) IsUsed(ctx context.Context, id string) (bool, error) {
	oid, err := parseObjectID("media", id)
	if err != nil {
		return false, err
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"_id":           oid,
		"content_ids.0": bson.M{"$exists": true},
	})
	if err != nil {
		return false, fmt.Errorf("check media usage: %w", err)
	}
	return count > 0, nil
}

// LinkContent adds the content id to the media's relation array. The write
// path maintains this array so computed filters and usage checks stay
// consistent with it.
func (r *MediaRepository) LinkContent(ctx context.Context, mediaID, contentID string) error {
	oid, err := parseObjectID("media", mediaID)
	if err != nil {
		return err
	}

	res, err := r.collection.UpdateByID(ctx, oid, bson.M{
		"$addToSet": bson.M{"content_ids": contentID},
	})
	if err != nil {
		return fmt.Errorf("link content: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("media", mediaID)
	}
	return nil
}

// UnlinkContent removes a single media/content relation.
func (r *MediaRepository) UnlinkContent(ctx context.Context, mediaID, contentID string) error {
	oid, err := parseObjectID("media", mediaID)
	if err != nil {
		return err
	}

	res, err := r.collection.UpdateByID(ctx, oid, bson.M{
		"$pull": bson.M{"content_ids": contentID},
	})
	if err != nil {
		return fmt.Errorf("unlink content: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("media", mediaID)
	}
	return nil
}

// UnlinkContentAll removes a content's relation from every media.
func (r *MediaRepository) UnlinkContentAll(ctx context.Context, contentID string) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"content_ids": contentID},
		bson.M{"$pull": bson.M{"content_ids": contentID}},
	)
	if err != nil {
		return fmt.Errorf("unlink content everywhere: %w", err)
	}
	return nil
}

// CountByNamespace returns the number of media documents in a namespace.
func (r *MediaRepository) CountByNamespace(ctx context.Context, namespace string) (int, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"namespace": namespace})
	if err != nil {
		return 0, fmt.Errorf("count medias by namespace: %w", err)
	}
	return int(count), nil
}
