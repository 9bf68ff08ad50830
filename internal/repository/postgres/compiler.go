package postgres

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Geeks-Solutions/exmedias/internal/filter"
	apperrors "github.com/Geeks-Solutions/exmedias/pkg/errors"
	"github.com/Geeks-Solutions/exmedias/pkg/pagination"
)

// identPattern restricts the column names we splice into fragment text.
// User-supplied values only ever travel as bind parameters; this guards the
// structural identifiers that unrecognized filter keys map onto.
var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// compiler assembles parameterized SQL fragments from a normalized filter
// query. columns maps filter keys to column expressions; computed maps
// aggregate keys to the expression the HAVING-equivalent clause compares
// against. alias prefixes columns for unrecognized keys.
type compiler struct {
	alias    string
	columns  map[string]string
	computed map[string]string
	args     []any
}

// bind registers a value as the next positional parameter and returns its
// placeholder.
func (c *compiler) bind(v any) string {
	c.args = append(c.args, v)
	return fmt.Sprintf("$%d", len(c.args))
}

// column resolves a filter key to a column expression. Recognized keys use
// the mapped expression; anything else compiles to a generic column of the
// same name, sanitized so no user text reaches the fragment.
func (c *compiler) column(key string) (string, error) {
	if col, ok := c.columns[key]; ok {
		return col, nil
	}
	if !identPattern.MatchString(key) {
		return "", apperrors.InvalidInput(fmt.Sprintf("filter key %q is not a valid field", key))
	}
	return c.alias + "." + key, nil
}

// comparison renders a single predicate against the given column expression.
// between compiles to a strict double inequality, exclusive on both ends.
func (c *compiler) comparison(col string, cmp filter.Comparison) string {
	switch cmp.Op {
	case filter.OpBetween:
		return fmt.Sprintf("(%s > %s AND %s < %s)", col, c.bind(cmp.From), col, c.bind(cmp.To))
	case filter.OpLt:
		return fmt.Sprintf("%s < %s", col, c.bind(cmp.Value))
	case filter.OpGt:
		return fmt.Sprintf("%s > %s", col, c.bind(cmp.Value))
	case filter.OpLte:
		return fmt.Sprintf("%s <= %s", col, c.bind(cmp.Value))
	case filter.OpGte:
		return fmt.Sprintf("%s >= %s", col, c.bind(cmp.Value))
	default:
		return fmt.Sprintf("%s = %s", col, c.bind(cmp.Value))
	}
}

// predicate renders one plain predicate, handling the pseudo-keys that do
// not map to a bare column comparison.
func (c *compiler) predicate(p filter.Predicate) (string, error) {
	switch p.Key {
	case filter.KeyTitleAlike:
		return fmt.Sprintf("%s.title ~* %s", c.alias, c.bind(fmt.Sprint(p.Cmp.Value))), nil
	case "tag":
		return fmt.Sprintf("%s = ANY(%s.tags)", c.bind(p.Cmp.Value), c.alias), nil
	}

	col, err := c.column(p.Key)
	if err != nil {
		return "", err
	}
	return c.comparison(col, p.Cmp), nil
}

// where renders the OR-of-AND group structure. Returns "" when no group has
// predicates.
func (c *compiler) where(groups [][]filter.Predicate) (string, error) {
	var ors []string
	for _, group := range groups {
		var ands []string
		for _, p := range group {
			frag, err := c.predicate(p)
			if err != nil {
				return "", err
			}
			ands = append(ands, frag)
		}
		if len(ands) > 0 {
			ors = append(ors, "("+strings.Join(ands, " AND ")+")")
		}
	}
	if len(ors) == 0 {
		return "", nil
	}
	return strings.Join(ors, " OR "), nil
}

// aggregates renders the computed predicates against their aggregate
// expressions, AND-combined. Computed predicates never join the plain
// OR-structure; they always conjoin with the plain result.
func (c *compiler) aggregates(preds []filter.Predicate) (string, error) {
	var ands []string
	for _, p := range preds {
		expr, ok := c.computed[p.Key]
		if !ok {
			return "", apperrors.InvalidInput(fmt.Sprintf("computed filter %q is not supported for this entity", p.Key))
		}
		ands = append(ands, c.comparison(expr, p.Cmp))
	}
	return strings.Join(ands, " AND "), nil
}

// orderBy renders the ORDER BY clause. A nil sort, or a sort on an unsafe
// field name, yields no ordering.
func (c *compiler) orderBy(s *filter.SortSpec) string {
	if s == nil {
		return ""
	}
	col, err := c.column(s.Field)
	if err != nil {
		return ""
	}
	dir := "ASC"
	if s.Descending {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s", col, dir)
}

// limitOffset renders pagination. Zero values are omitted entirely: 0 means
// unbounded, not "limit 0".
func (c *compiler) limitOffset(p pagination.Params) string {
	var parts []string
	if p.PerPage > 0 {
		parts = append(parts, "LIMIT "+c.bind(p.PerPage))
	}
	if p.Offset > 0 {
		parts = append(parts, "OFFSET "+c.bind(p.Offset))
	}
	return strings.Join(parts, " ")
}
