package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Geeks-Solutions/exmedias/internal/filter"
	apperrors "github.com/Geeks-Solutions/exmedias/pkg/errors"
	"github.com/Geeks-Solutions/exmedias/pkg/pagination"
)

func newMediaCompiler() *compiler {
	return &compiler{alias: "m", columns: mediaColumns, computed: mediaComputed}
}

func eq(v any) filter.Comparison {
	return filter.Comparison{Op: filter.OpEq, Value: v}
}

// ---------------------------------------------------------------------------
// where
// ---------------------------------------------------------------------------

func TestCompiler_Where_OrOfAndStructure(t *testing.T) {
	c := newMediaCompiler()

	where, err := c.where([][]filter.Predicate{
		{
			{Key: "title", Cmp: eq("A")},
			{Key: "type", Cmp: eq("image")},
		},
		{
			{Key: "private_status", Cmp: eq("public")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "(m.title = $1 AND m.type = $2) OR (m.private_status = $3)", where)
	assert.Equal(t, []any{"A", "image", "public"}, c.args)
}

func TestCompiler_Where_Empty(t *testing.T) {
	c := newMediaCompiler()

	where, err := c.where(nil)
	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Empty(t, c.args)
}

func TestCompiler_Where_BetweenIsExclusiveBothEnds(t *testing.T) {
	c := newMediaCompiler()

	where, err := c.where([][]filter.Predicate{
		{{Key: "size", Cmp: filter.Comparison{Op: filter.OpBetween, From: 2, To: 5}}},
	})
	require.NoError(t, err)

	// size is not a mapped column: generic sanitized column, strict double inequality.
	assert.Equal(t, "((m.size > $1 AND m.size < $2))", where)
	assert.Equal(t, []any{float64(2), float64(5)}, c.args)
}

func TestCompiler_Where_OrderedOperators(t *testing.T) {
	tests := []struct {
		op   filter.Op
		frag string
	}{
		{filter.OpLt, "m.width < $1"},
		{filter.OpGt, "m.width > $1"},
		{filter.OpLte, "m.width <= $1"},
		{filter.OpGte, "m.width >= $1"},
		{filter.OpEq, "m.width = $1"},
	}

	for _, tt := range tests {
		t.Run(tt.frag, func(t *testing.T) {
			c := newMediaCompiler()
			where, err := c.where([][]filter.Predicate{
				{{Key: "width", Cmp: filter.Comparison{Op: tt.op, Value: 100}}},
			})
			require.NoError(t, err)
			assert.Equal(t, "("+tt.frag+")", where)
		})
	}
}

func TestCompiler_Where_TitleAlike(t *testing.T) {
	c := newMediaCompiler()

	where, err := c.where([][]filter.Predicate{
		{{Key: filter.KeyTitleAlike, Cmp: eq("sunset")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "(m.title ~* $1)", where)
	assert.Equal(t, []any{"sunset"}, c.args)
}

func TestCompiler_Where_TagMembership(t *testing.T) {
	c := newMediaCompiler()

	where, err := c.where([][]filter.Predicate{
		{{Key: "tag", Cmp: eq("news")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "($1 = ANY(m.tags))", where)
}

func TestCompiler_Where_RejectsUnsafeKey(t *testing.T) {
	c := newMediaCompiler()

	_, err := c.where([][]filter.Predicate{
		{{Key: "title; DROP TABLE medias", Cmp: eq("x")}},
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// ---------------------------------------------------------------------------
// aggregates
// ---------------------------------------------------------------------------

func TestCompiler_Aggregates_HavingComparison(t *testing.T) {
	c := newMediaCompiler()

	having, err := c.aggregates([]filter.Predicate{
		{Key: filter.KeyNumberOfContents, Cmp: filter.Comparison{Op: filter.OpGt, Value: float64(3)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "count(DISTINCT mc.content_id) > $1", having)
	assert.Equal(t, []any{float64(3)}, c.args)
}

func TestCompiler_Aggregates_BetweenExclusive(t *testing.T) {
	c := &compiler{alias: "p", columns: platformColumns, computed: platformComputed}

	cond, err := c.aggregates([]filter.Predicate{
		{Key: filter.KeyNumberOfMedias, Cmp: filter.Comparison{Op: filter.OpBetween, From: 2, To: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, "(COALESCE(fc.file_count, 0) > $1 AND COALESCE(fc.file_count, 0) < $2)", cond)
}

func TestCompiler_Aggregates_UnsupportedKey(t *testing.T) {
	c := newMediaCompiler()

	_, err := c.aggregates([]filter.Predicate{
		{Key: filter.KeyNumberOfMedias, Cmp: eq(1)},
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// ---------------------------------------------------------------------------
// orderBy / limitOffset
// ---------------------------------------------------------------------------

func TestCompiler_OrderBy(t *testing.T) {
	c := newMediaCompiler()

	assert.Empty(t, c.orderBy(nil))
	assert.Equal(t, "ORDER BY m.inserted_at DESC",
		c.orderBy(&filter.SortSpec{Field: "inserted_at", Descending: true}))
	assert.Equal(t, "ORDER BY m.title ASC",
		c.orderBy(&filter.SortSpec{Field: "title"}))
	// Unsafe field names yield no ordering rather than an error.
	assert.Empty(t, c.orderBy(&filter.SortSpec{Field: "title; --"}))
}

func TestCompiler_LimitOffset(t *testing.T) {
	c := newMediaCompiler()
	assert.Empty(t, c.limitOffset(pagination.Build(0, 0)))

	c = newMediaCompiler()
	assert.Equal(t, "LIMIT $1", c.limitOffset(pagination.Build(1, 10)))
	assert.Equal(t, []any{10}, c.args)

	c = newMediaCompiler()
	assert.Equal(t, "LIMIT $1 OFFSET $2", c.limitOffset(pagination.Build(3, 10)))
	assert.Equal(t, []any{10, 20}, c.args)
}

func TestCompiler_BindOrderSpansClauses(t *testing.T) {
	c := newMediaCompiler()

	where, err := c.where([][]filter.Predicate{{{Key: "namespace", Cmp: eq("blog")}}})
	require.NoError(t, err)
	having, err := c.aggregates([]filter.Predicate{
		{Key: filter.KeyNumberOfContents, Cmp: filter.Comparison{Op: filter.OpBetween, From: 1, To: 4}},
	})
	require.NoError(t, err)
	page := c.limitOffset(pagination.Build(2, 5))

	assert.Equal(t, "(m.namespace = $1)", where)
	assert.Equal(t, "(count(DISTINCT mc.content_id) > $2 AND count(DISTINCT mc.content_id) < $3)", having)
	assert.Equal(t, "LIMIT $4 OFFSET $5", page)
	assert.Equal(t, []any{"blog", float64(1), float64(4), 5, 5}, c.args)
}
