package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Geeks-Solutions/exmedias/internal/filter"
)

// termDoc renders a single predicate as a filter document. between compiles
// to a strict double inequality, exclusive on both ends, matching the
// relational backend.
func termDoc(p filter.Predicate) bson.M {
	key := p.Key
	cmp := p.Cmp
	switch key {
	case filter.KeyTitleAlike:
		return bson.M{"title": bson.M{"$regex": cmp.Value, "$options": "i"}}
	case "tag":
		// Equality against an array field matches any member.
		return bson.M{"tags": cmp.Value}
	case "id":
		// Documents store their id under _id as a native ObjectID.
		key = "_id"
		cmp.Value = objectIDValue(cmp.Value)
		// From/To are float64 bounds; objectIDValue passes non-strings
		// through unchanged, so the assertion always holds.
		cmp.From = objectIDValue(cmp.From).(float64)
		cmp.To = objectIDValue(cmp.To).(float64)
	}

	switch cmp.Op {
	case filter.OpBetween:
		return bson.M{"$and": bson.A{
			bson.M{key: bson.M{"$gt": cmp.From}},
			bson.M{key: bson.M{"$lt": cmp.To}},
		}}
	case filter.OpLt:
		return bson.M{key: bson.M{"$lt": cmp.Value}}
	case filter.OpGt:
		return bson.M{key: bson.M{"$gt": cmp.Value}}
	case filter.OpLte:
		return bson.M{key: bson.M{"$lte": cmp.Value}}
	case filter.OpGte:
		return bson.M{key: bson.M{"$gte": cmp.Value}}
	default:
		return bson.M{key: cmp.Value}
	}
}

// objectIDValue converts a hex id operand into its native ObjectID. Non-hex
// operands pass through unchanged and match no stored document.
func objectIDValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return v
	}
	return oid
}

// groupDoc renders one AND-group.
func groupDoc(group []filter.Predicate) bson.M {
	if len(group) == 1 {
		return termDoc(group[0])
	}
	terms := make(bson.A, 0, len(group))
	for _, p := range group {
		terms = append(terms, termDoc(p))
	}
	return bson.M{"$and": terms}
}

// matchDoc renders the full match document: the plain OR-of-AND structure
// AND-combined with every computed predicate. Computed predicates never join
// the OR structure; they always conjoin with the plain result, mirroring the
// relational WHERE/HAVING split.
func matchDoc(q *filter.Query) bson.M {
	var clauses bson.A

	if q.HasFilters() {
		groups := make(bson.A, 0, len(q.Groups))
		for _, g := range q.Groups {
			groups = append(groups, groupDoc(g))
		}
		if len(groups) == 1 {
			clauses = append(clauses, groups[0])
		} else {
			clauses = append(clauses, bson.M{"$or": groups})
		}
	}

	for _, p := range q.Computed {
		clauses = append(clauses, termDoc(p))
	}

	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		if m, ok := clauses[0].(bson.M); ok {
			return m
		}
	}
	return bson.M{"$and": clauses}
}

// sortDoc renders the sort stage document, or nil when the query carries no
// ordering.
func sortDoc(s *filter.SortSpec) bson.D {
	if s == nil {
		return nil
	}
	dir := 1
	if s.Descending {
		dir = -1
	}
	return bson.D{{Key: s.Field, Value: dir}}
}

// listPipeline assembles the single aggregation pipeline that produces both
// the page and the pre-pagination total in one logical read: the prefix
// stages materialize the computed-count fields the match document may
// reference, the match document filters, then a $facet splits into the
// sorted/paged result set and a count scoped by the same filter.
func listPipeline(q *filter.Query, prefix mongo.Pipeline) mongo.Pipeline {
	pipeline := mongo.Pipeline{}
	pipeline = append(pipeline, prefix...)

	if match := matchDoc(q); len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}

	result := bson.A{}
	if sort := sortDoc(q.Sort); sort != nil {
		result = append(result, bson.M{"$sort": sort})
	}
	// Zero skip/limit are omitted entirely: 0 means unbounded.
	if q.Page.Offset > 0 {
		result = append(result, bson.M{"$skip": int64(q.Page.Offset)})
	}
	if q.Page.PerPage > 0 {
		result = append(result, bson.M{"$limit": int64(q.Page.PerPage)})
	}
	if len(result) == 0 {
		// $facet rejects an empty sub-pipeline.
		result = append(result, bson.M{"$match": bson.M{}})
	}

	pipeline = append(pipeline, bson.D{{Key: "$facet", Value: bson.M{
		"result": result,
		"total":  bson.A{bson.M{"$count": "count"}},
	}}})

	return pipeline
}

// mediaCountStages materialize number_of_contents from the content_ids
// relation array maintained by the write path.
func mediaCountStages() mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$addFields", Value: bson.M{
			"number_of_contents": bson.M{
				"$size": bson.M{"$ifNull": bson.A{"$content_ids", bson.A{}}},
			},
		}}},
	}
}

// platformLookupStages compute number_of_medias per platform: every media's
// embedded file array is unwound, files referencing the platform are
// counted, and platforms with no files keep count 0. This is the document
// equivalent of the relational file-count subquery join.
func platformLookupStages() mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$lookup", Value: bson.M{
			"from": "medias",
			"let":  bson.M{"pid": bson.M{"$toString": "$_id"}},
			"pipeline": bson.A{
				bson.M{"$unwind": "$files"},
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$files.platform_id", "$$pid"}}}},
				bson.M{"$count": "count"},
			},
			"as": "file_counts",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"number_of_medias": bson.M{
				"$ifNull": bson.A{bson.M{"$first": "$file_counts.count"}, 0},
			},
		}}},
		bson.D{{Key: "$project", Value: bson.M{"file_counts": 0}}},
	}
}
