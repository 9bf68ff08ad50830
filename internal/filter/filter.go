// Package filter turns the generic filter/sort/pagination request accepted at
// the API boundary into a backend-agnostic query representation. Groups of
// terms combine as OR of AND-groups; computed keys (aggregate counts over
// related entities) are split out so each backend can compile them against
// its own aggregation machinery. All validation is whole-request and
// fail-fast: nothing touches storage once any term is rejected.
package filter

import (
	"sort"
	"strings"

	"github.com/Geeks-Solutions/exmedias/pkg/pagination"
)

// Computed field keys: aggregates over joined relations rather than stored
// columns.
const (
	KeyNumberOfContents = "number_of_contents"
	KeyNumberOfMedias   = "number_of_medias"
)

// KeyTitleAlike is the pseudo-key compiling to a case-insensitive substring
// match on title.
const KeyTitleAlike = "title_alike"

// Term is one filter predicate as it arrives on the wire. Operation, when
// present, overrides the operator map entry for the term's key.
type Term struct {
	Key       string `json:"key"`
	Value     any    `json:"value"`
	Value2    any    `json:"value2,omitempty"`
	Operation string `json:"operation,omitempty"`
}

// OperatorSpec carries the operator selection for a field key. Operation
// defaults to "=" when absent. From/To are the range bounds for between/<>;
// they may equivalently arrive as the term's value/value2.
type OperatorSpec struct {
	Operation string `json:"operation"`
	From      any    `json:"from,omitempty"`
	To        any    `json:"to,omitempty"`
}

// Request is the wire shape of a listing request: OR-of-AND filter groups,
// an operator map keyed by field, at most one honored sort pair, and
// pagination values that may arrive as ints or numeric strings.
type Request struct {
	Filters   [][]Term                `json:"filters,omitempty"`
	Operators map[string]OperatorSpec `json:"operators,omitempty"`
	Sort      map[string]string       `json:"sort,omitempty"`
	Page      any                     `json:"page,omitempty"`
	PerPage   any                     `json:"per_page,omitempty"`
}

// Predicate is a resolved (key, comparison) pair.
type Predicate struct {
	Key string
	Cmp Comparison
}

// SortSpec is a normalized ordering: a single field and direction.
type SortSpec struct {
	Field      string
	Descending bool
}

// Query is the backend-agnostic intermediate representation. Groups hold the
// plain predicates as OR of AND-groups; Computed holds aggregate predicates,
// which always AND-combine with the plain result on every backend.
type Query struct {
	Groups   [][]Predicate
	Computed []Predicate
	Sort     *SortSpec
	Page     pagination.Params
}

// HasFilters reports whether any plain predicate group is present.
func (q *Query) HasFilters() bool {
	for _, g := range q.Groups {
		if len(g) > 0 {
			return true
		}
	}
	return false
}

// Normalize validates and compiles a Request into a Query. Every term is
// resolved before any group is assembled, so a single bad operator or
// operand rejects the whole request with no partial filtering.
func Normalize(req Request) (*Query, error) {
	q := &Query{
		Sort: normalizeSort(req.Sort),
		Page: pagination.FromAny(req.Page, req.PerPage),
	}

	// Operator map keys go through the same canonicalization as term keys,
	// so an entry keyed ":size" still binds to the term keyed "size".
	operators := make(map[string]OperatorSpec, len(req.Operators))
	for k, spec := range req.Operators {
		operators[canonicalKey(k)] = spec
	}

	for _, rawGroup := range req.Filters {
		var plain []Predicate
		for _, term := range rawGroup {
			key := canonicalKey(term.Key)
			if key == "" {
				continue
			}

			cmp, err := Resolve(key, operators[key], term)
			if err != nil {
				return nil, err
			}

			p := Predicate{Key: key, Cmp: cmp}
			if key == KeyNumberOfContents || key == KeyNumberOfMedias {
				q.Computed = append(q.Computed, p)
			} else {
				plain = append(plain, p)
			}
		}
		if len(plain) > 0 {
			q.Groups = append(q.Groups, plain)
		}
	}

	return q, nil
}

// canonicalKey collapses the string/atom duck-typing tolerated at the
// boundary into one representation: a leading colon and surrounding
// whitespace are stripped, nothing else changes (keys stay case-sensitive).
func canonicalKey(key string) string {
	return strings.TrimPrefix(strings.TrimSpace(key), ":")
}

// normalizeSort honors exactly one field/direction pair. Direction matching
// is case-insensitive on asc/desc; any other token (including "dsc") yields
// no ordering rather than an error. The created/updated aliases remap to the
// stored timestamp columns. When several pairs arrive, the lexicographically
// first field wins so behavior is deterministic.
func normalizeSort(raw map[string]string) *SortSpec {
	if len(raw) == 0 {
		return nil
	}

	fields := make([]string, 0, len(raw))
	for f := range raw {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	field := canonicalKey(fields[0])
	var desc bool
	switch strings.ToLower(raw[fields[0]]) {
	case "asc":
		desc = false
	case "desc":
		desc = true
	default:
		return nil
	}

	switch field {
	case "created":
		field = "inserted_at"
	case "updated":
		field = "updated_at"
	}

	return &SortSpec{Field: field, Descending: desc}
}
