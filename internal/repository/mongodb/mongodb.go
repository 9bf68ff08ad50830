// Package mongodb implements the repositories against MongoDB. Files are
// embedded sub-documents within each media document, so plain filters nest
// directly with no joins; computed counts are surfaced by aggregation
// stages, and each listing produces its page and pre-pagination total from
// one $facet pipeline.
package mongodb

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/Geeks-Solutions/exmedias/pkg/errors"
)

// Collection names.
const (
	mediasCollection    = "medias"
	platformsCollection = "platforms"
)

// parseObjectID converts a string id into the ObjectID this backend keys on.
func parseObjectID(resource, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.InvalidID(resource, id)
	}
	return oid, nil
}
