package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Geeks-Solutions/exmedias/internal/domain"
	"github.com/Geeks-Solutions/exmedias/internal/filter"
	apperrors "github.com/Geeks-Solutions/exmedias/pkg/errors"
)

// MediaRepository implements repository.MediaRepository using PostgreSQL.
type MediaRepository struct {
	db DB
}

// NewMediaRepository creates a new PostgreSQL-backed media repository.
func NewMediaRepository(db DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// mediaColumns maps filter keys to the column expressions the compiler may
// reference. Keys outside this map fall back to a generic sanitized column.
var mediaColumns = map[string]string{
	"id":             "m.id",
	"title":          "m.title",
	"author":         "m.author",
	"type":           "m.type",
	"locked_status":  "m.locked_status",
	"private_status": "m.private_status",
	"namespace":      "m.namespace",
	"inserted_at":    "m.inserted_at",
	"updated_at":     "m.updated_at",
}

// mediaComputed maps computed filter keys to the expression the HAVING
// clause compares against.
var mediaComputed = map[string]string{
	filter.KeyNumberOfContents: "COALESCE(mc.content_count, 0)",
}

// mediaSelectBase unnests the embedded file array via a lateral join, joins
// each unnested file to its platform, and re-aggregates per media. Platforms
// are embedded back into each file object so the caller gets file/platform
// pairs. The content link table is pre-aggregated to one row per media
// before joining, so link rows never multiply the unnested file rows.
const mediaSelectBase = `
	SELECT m.id, m.title, m.author, m.tags, m.type, m.locked_status, m.private_status, m.namespace,
		   m.inserted_at, m.updated_at,
		   COALESCE(jsonb_agg(f.file || jsonb_build_object('platform', to_jsonb(p))) FILTER (WHERE f.file IS NOT NULL), '[]'::jsonb) AS files,
		   COALESCE(mc.content_count, 0)::int AS number_of_contents`

const mediaFromClause = `
	FROM medias m
	LEFT JOIN LATERAL jsonb_array_elements(m.files) AS f(file) ON true
	LEFT JOIN platforms p ON p.id = NULLIF(f.file->>'platform_id', '')::bigint
	LEFT JOIN (SELECT media_id, count(*) AS content_count FROM media_contents GROUP BY media_id) mc ON mc.media_id = m.id`

// Create inserts a new media record and fills in its assigned id.
func (r *MediaRepository) Create(ctx context.Context, m *domain.Media) error {
	filesJSON, err := json.Marshal(m.Files)
	if err != nil {
		return fmt.Errorf("marshal files: %w", err)
	}

	query := `
		INSERT INTO medias (title, author, tags, type, locked_status, private_status, namespace, files, inserted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	var id int64
	err = r.db.QueryRow(ctx, query,
		m.Title,
		m.Author,
		m.Tags,
		m.Type,
		m.LockedStatus,
		m.PrivateStatus,
		m.Namespace,
		filesJSON,
		m.InsertedAt,
		m.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert media: %w", err)
	}

	m.ID = formatID(id)
	return nil
}

// GetByID retrieves a media record with its aggregated files and relation count.
func (r *MediaRepository) GetByID(ctx context.Context, id string) (*domain.Media, error) {
	mediaID, err := parseID("media", id)
	if err != nil {
		return nil, err
	}

	query := mediaSelectBase + mediaFromClause + `
	WHERE m.id = $1
	GROUP BY m.id, mc.content_count`

	rows, err := r.db.Query(ctx, query, mediaID)
	if err != nil {
		return nil, fmt.Errorf("get media: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get media: %w", err)
		}
		return nil, apperrors.NotFound("media", id)
	}

	m, _, err := scanMedia(rows, false)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// List compiles the filter query into the aggregated base query plus WHERE,
// HAVING, ORDER BY and pagination, and executes it. The pre-pagination total
// is computed by a window count in the same query pass.
func (r *MediaRepository) List(ctx context.Context, q *filter.Query) ([]domain.Media, int, error) {
	c := &compiler{alias: "m", columns: mediaColumns, computed: mediaComputed}

	where, err := c.where(q.Groups)
	if err != nil {
		return nil, 0, err
	}
	having, err := c.aggregates(q.Computed)
	if err != nil {
		return nil, 0, err
	}

	var sb strings.Builder
	sb.WriteString(mediaSelectBase)
	sb.WriteString(",\n\t\t   count(*) OVER()::int AS total_count")
	sb.WriteString(mediaFromClause)
	if where != "" {
		sb.WriteString("\n\tWHERE " + where)
	}
	sb.WriteString("\n\tGROUP BY m.id, mc.content_count")
	if having != "" {
		sb.WriteString("\n\tHAVING " + having)
	}
	if order := c.orderBy(q.Sort); order != "" {
		sb.WriteString("\n\t" + order)
	}
	if page := c.limitOffset(q.Page); page != "" {
		sb.WriteString("\n\t" + page)
	}

	rows, err := r.db.Query(ctx, sb.String(), c.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list medias: %w", err)
	}
	defer rows.Close()

	var (
		medias []domain.Media
		total  int
	)
	for rows.Next() {
		m, t, err := scanMedia(rows, true)
		if err != nil {
			return nil, 0, err
		}
		total = t
		medias = append(medias, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate media rows: %w", err)
	}

	if medias == nil {
		medias = []domain.Media{}
	}
	return medias, total, nil
}

// Update replaces the mutable fields of an existing media record.
func (r *MediaRepository) Update(ctx context.Context, m *domain.Media) error {
	mediaID, err := parseID("media", m.ID)
	if err != nil {
		return err
	}

	filesJSON, err := json.Marshal(m.Files)
	if err != nil {
		return fmt.Errorf("marshal files: %w", err)
	}

	m.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE medias
		SET title = $1, author = $2, tags = $3, type = $4, locked_status = $5,
			private_status = $6, namespace = $7, files = $8, updated_at = $9
		WHERE id = $10`

	ct, err := r.db.Exec(ctx, query,
		m.Title,
		m.Author,
		m.Tags,
		m.Type,
		m.LockedStatus,
		m.PrivateStatus,
		m.Namespace,
		filesJSON,
		m.UpdatedAt,
		mediaID,
	)
	if err != nil {
		return fmt.Errorf("update media: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("media", m.ID)
	}
	return nil
}

// Delete removes a media record by its identifier.
func (r *MediaRepository) Delete(ctx context.Context, id string) error {
	mediaID, err := parseID("media", id)
	if err != nil {
		return err
	}

	ct, err := r.db.Exec(ctx, `DELETE FROM medias WHERE id = $1`, mediaID)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("media", id)
	}
	return nil
}

// IsUsed reports whether any row in the content link table references the
// media. EXISTS semantics, not a count.
func (r *MediaRepository) IsUsed(ctx context.Context, id string) (bool, error) {
	mediaID, err := parseID("media", id)
	if err != nil {
		return false, err
	}

	var used bool
	err = r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM media_contents WHERE media_id = $1)`,
		mediaID,
	).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("check media usage: %w", err)
	}
	return used, nil
}

// LinkContent records a media/content relation. Relinking is a no-op.
func (r *MediaRepository) LinkContent(ctx context.Context, mediaID, contentID string) error {
	id, err := parseID("media", mediaID)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO media_contents (media_id, content_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		id, contentID,
	)
	if err != nil {
		return fmt.Errorf("link content: %w", err)
	}
	return nil
}

// UnlinkContent removes a single media/content relation.
func (r *MediaRepository) UnlinkContent(ctx context.Context, mediaID, contentID string) error {
	id, err := parseID("media", mediaID)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`DELETE FROM media_contents WHERE media_id = $1 AND content_id = $2`,
		id, contentID,
	)
	if err != nil {
		return fmt.Errorf("unlink content: %w", err)
	}
	return nil
}

// UnlinkContentAll removes a content's relation from every media.
func (r *MediaRepository) UnlinkContentAll(ctx context.Context, contentID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM media_contents WHERE content_id = $1`,
		contentID,
	)
	if err != nil {
		return fmt.Errorf("unlink content everywhere: %w", err)
	}
	return nil
}

// CountByNamespace returns the number of media records in a namespace.
func (r *MediaRepository) CountByNamespace(ctx context.Context, namespace string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM medias WHERE namespace = $1`,
		namespace,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("count medias by namespace: %w", err)
	}
	return count, nil
}

// scanMedia reads one aggregated media row. withTotal additionally consumes
// the trailing window count column.
func scanMedia(rows pgx.Rows, withTotal bool) (*domain.Media, int, error) {
	var (
		m         domain.Media
		id        int64
		filesJSON []byte
		total     int
	)

	dest := []any{
		&id, &m.Title, &m.Author, &m.Tags, &m.Type, &m.LockedStatus,
		&m.PrivateStatus, &m.Namespace, &m.InsertedAt, &m.UpdatedAt,
		&filesJSON, &m.NumberOfContents,
	}
	if withTotal {
		dest = append(dest, &total)
	}

	if err := rows.Scan(dest...); err != nil {
		return nil, 0, fmt.Errorf("scan media row: %w", err)
	}

	m.ID = formatID(id)
	if filesJSON != nil {
		if err := json.Unmarshal(filesJSON, &m.Files); err != nil {
			return nil, 0, fmt.Errorf("unmarshal files: %w", err)
		}
	}
	if m.Files == nil {
		m.Files = []domain.File{}
	}

	return &m, total, nil
}
