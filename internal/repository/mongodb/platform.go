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

// PlatformRepository implements repository.PlatformRepository using MongoDB.
// It reads the medias collection as well: number_of_medias is recomputed
// from the file arrays embedded there.
type PlatformRepository struct {
	collection *mongo.Collection
	medias     *mongo.Collection
}

// NewPlatformRepository creates a new MongoDB-backed platform repository.
func NewPlatformRepository(db *mongo.Database) *PlatformRepository {
	return &PlatformRepository{
		collection: db.Collection(platformsCollection),
		medias:     db.Collection(mediasCollection),
	}
}

type platformDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	Width          int                `bson:"width"`
	Height         int                `bson:"height"`
	Description    string             `bson:"description"`
	Namespace      string             `bson:"namespace"`
	NumberOfMedias int                `bson:"number_of_medias,omitempty"`
	InsertedAt     time.Time          `bson:"inserted_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

func (d *platformDoc) toDomain() domain.Platform {
	return domain.Platform{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		Width:          d.Width,
		Height:         d.Height,
		Description:    d.Description,
		Namespace:      d.Namespace,
		NumberOfMedias: d.NumberOfMedias,
		InsertedAt:     d.InsertedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// Create inserts a new platform and fills in its assigned id. A duplicate
// name surfaces as AlreadyExists via the unique index on name.
func (r *PlatformRepository) Create(ctx context.Context, p *domain.Platform) error {
	doc := platformDoc{
		ID:          primitive.NewObjectID(),
		Name:        p.Name,
		Width:       p.Width,
		Height:      p.Height,
		Description: p.Description,
		Namespace:   p.Namespace,
		InsertedAt:  p.InsertedAt,
		UpdatedAt:   p.UpdatedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("platform", "name", p.Name)
		}
		return fmt.Errorf("insert platform: %w", err)
	}

	p.ID = doc.ID.Hex()
	return nil
}

// GetByID retrieves a platform with its derived file count, through the
// same lookup stages the listing uses.
func (r *PlatformRepository) GetByID(ctx context.Context, id string) (*domain.Platform, error) {
	oid, err := parseObjectID("platform", id)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"_id": oid}}},
	}
	pipeline = append(pipeline, platformLookupStages()...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("get platform: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []platformDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode platform: %w", err)
	}
	if len(docs) == 0 {
		return nil, apperrors.NotFound("platform", id)
	}

	p := docs[0].toDomain()
	return &p, nil
}

// List runs the compiled aggregation pipeline with the file-count lookup
// prefix, yielding the page and the pre-pagination total in one read.
func (r *PlatformRepository) List(ctx context.Context, q *filter.Query) ([]domain.Platform, int, error) {
	cursor, err := r.collection.Aggregate(ctx, listPipeline(q, platformLookupStages()))
	if err != nil {
		return nil, 0, fmt.Errorf("list platforms: %w", err)
	}
	defer cursor.Close(ctx)

	var facets []facetResult[platformDoc]
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, 0, fmt.Errorf("decode platform listing: %w", err)
	}

	platforms := []domain.Platform{}
	total := 0
	if len(facets) > 0 {
		for i := range facets[0].Result {
			platforms = append(platforms, facets[0].Result[i].toDomain())
		}
		if len(facets[0].Total) > 0 {
			total = facets[0].Total[0].Count
		}
	}

	return platforms, total, nil
}

// Update replaces the mutable fields of an existing platform.
func (r *PlatformRepository) Update(ctx context.Context, p *domain.Platform) error {
	oid, err := parseObjectID("platform", p.ID)
	if err != nil {
		return err
	}

	p.UpdatedAt = time.Now().UTC()

	res, err := r.collection.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"name":        p.Name,
		"width":       p.Width,
		"height":      p.Height,
		"description": p.Description,
		"namespace":   p.Namespace,
		"updated_at":  p.UpdatedAt,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("platform", "name", p.Name)
		}
		return fmt.Errorf("update platform: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("platform", p.ID)
	}
	return nil
}

// Delete removes a platform by its identifier.
func (r *PlatformRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID("platform", id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete platform: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("platform", id)
	}
	return nil
}

// IsUsed reports whether any file embedded in any media references the
// platform. Existence check only, capped at the first match.
func (r *PlatformRepository) IsUsed(ctx context.Context, id string) (bool, error) {
	if _, err := parseObjectID("platform", id); err != nil {
		return false, err
	}

	err := r.medias.FindOne(ctx, bson.M{"files.platform_id": id}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("check platform usage: %w", err)
	}
	return true, nil
}
