package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Geeks-Solutions/exmedias/internal/domain"
	"github.com/Geeks-Solutions/exmedias/internal/filter"
	apperrors "github.com/Geeks-Solutions/exmedias/pkg/errors"
)

// PlatformRepository implements repository.PlatformRepository using PostgreSQL.
type PlatformRepository struct {
	db DB
}

// NewPlatformRepository creates a new PostgreSQL-backed platform repository.
func NewPlatformRepository(db DB) *PlatformRepository {
	return &PlatformRepository{db: db}
}

var platformColumns = map[string]string{
	"id":          "p.id",
	"name":        "p.name",
	"width":       "p.width",
	"height":      "p.height",
	"description": "p.description",
	"namespace":   "p.namespace",
	"inserted_at": "p.inserted_at",
	"updated_at":  "p.updated_at",
}

// The per-platform file count comes from a left-joined subquery, so the
// computed predicate compares against the coalesced join column rather than
// a grouped aggregate. Platforms referenced by no file still appear with
// count 0.
var platformComputed = map[string]string{
	filter.KeyNumberOfMedias: "COALESCE(fc.file_count, 0)",
}

// platformFromClause unnests every media's embedded file array, extracts the
// referenced platform ids, counts per platform, and left-joins that count
// onto the platform table.
const platformFromClause = `
	FROM platforms p
	LEFT JOIN (
		SELECT NULLIF(f.file->>'platform_id', '')::bigint AS platform_id, count(*) AS file_count
		FROM medias m
		CROSS JOIN LATERAL jsonb_array_elements(m.files) AS f(file)
		GROUP BY 1
	) fc ON fc.platform_id = p.id`

const platformSelectBase = `
	SELECT p.id, p.name, p.width, p.height, p.description, p.namespace,
		   p.inserted_at, p.updated_at,
		   COALESCE(fc.file_count, 0)::int AS number_of_medias`

// Create inserts a new platform and fills in its assigned id. A duplicate
// name surfaces as AlreadyExists.
func (r *PlatformRepository) Create(ctx context.Context, p *domain.Platform) error {
	query := `
		INSERT INTO platforms (name, width, height, description, namespace, inserted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		p.Name,
		p.Width,
		p.Height,
		p.Description,
		p.Namespace,
		p.InsertedAt,
		p.UpdatedAt,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.AlreadyExists("platform", "name", p.Name)
		}
		return fmt.Errorf("insert platform: %w", err)
	}

	p.ID = formatID(id)
	return nil
}

// GetByID retrieves a platform with its derived file count.
func (r *PlatformRepository) GetByID(ctx context.Context, id string) (*domain.Platform, error) {
	platformID, err := parseID("platform", id)
	if err != nil {
		return nil, err
	}

	query := platformSelectBase + platformFromClause + `
	WHERE p.id = $1`

	p, _, err := scanPlatform(r.db.QueryRow(ctx, query, platformID), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("platform", id)
		}
		return nil, err
	}
	return p, nil
}

// List compiles and runs a platform listing. Computed predicates on
// number_of_medias filter against the coalesced count from the file-count
// subquery, AND-combined with the plain OR-of-AND groups.
func (r *PlatformRepository) List(ctx context.Context, q *filter.Query) ([]domain.Platform, int, error) {
	c := &compiler{alias: "p", columns: platformColumns, computed: platformComputed}

	where, err := c.where(q.Groups)
	if err != nil {
		return nil, 0, err
	}
	computed, err := c.aggregates(q.Computed)
	if err != nil {
		return nil, 0, err
	}

	var conds []string
	if where != "" {
		conds = append(conds, "("+where+")")
	}
	if computed != "" {
		conds = append(conds, computed)
	}

	var sb strings.Builder
	sb.WriteString(platformSelectBase)
	sb.WriteString(",\n\t\t   count(*) OVER()::int AS total_count")
	sb.WriteString(platformFromClause)
	if len(conds) > 0 {
		sb.WriteString("\n\tWHERE " + strings.Join(conds, " AND "))
	}
	if order := c.orderBy(q.Sort); order != "" {
		sb.WriteString("\n\t" + order)
	}
	if page := c.limitOffset(q.Page); page != "" {
		sb.WriteString("\n\t" + page)
	}

	rows, err := r.db.Query(ctx, sb.String(), c.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list platforms: %w", err)
	}
	defer rows.Close()

	var (
		platforms []domain.Platform
		total     int
	)
	for rows.Next() {
		p, t, err := scanPlatform(rows, true)
		if err != nil {
			return nil, 0, err
		}
		total = t
		platforms = append(platforms, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate platform rows: %w", err)
	}

	if platforms == nil {
		platforms = []domain.Platform{}
	}
	return platforms, total, nil
}

// Update replaces the mutable fields of an existing platform.
func (r *PlatformRepository) Update(ctx context.Context, p *domain.Platform) error {
	platformID, err := parseID("platform", p.ID)
	if err != nil {
		return err
	}

	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE platforms
		SET name = $1, width = $2, height = $3, description = $4, namespace = $5, updated_at = $6
		WHERE id = $7`

	ct, err := r.db.Exec(ctx, query,
		p.Name,
		p.Width,
		p.Height,
		p.Description,
		p.Namespace,
		p.UpdatedAt,
		platformID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.AlreadyExists("platform", "name", p.Name)
		}
		return fmt.Errorf("update platform: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("platform", p.ID)
	}
	return nil
}

// Delete removes a platform by its identifier.
func (r *PlatformRepository) Delete(ctx context.Context, id string) error {
	platformID, err := parseID("platform", id)
	if err != nil {
		return err
	}

	ct, err := r.db.Exec(ctx, `DELETE FROM platforms WHERE id = $1`, platformID)
	if err != nil {
		return fmt.Errorf("delete platform: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("platform", id)
	}
	return nil
}

// IsUsed reports whether any file embedded in any media references the
// platform. EXISTS semantics, not a count.
func (r *PlatformRepository) IsUsed(ctx context.Context, id string) (bool, error) {
	platformID, err := parseID("platform", id)
	if err != nil {
		return false, err
	}

	query := `
		SELECT EXISTS(
			SELECT 1
			FROM medias m
			CROSS JOIN LATERAL jsonb_array_elements(m.files) AS f(file)
			WHERE NULLIF(f.file->>'platform_id', '')::bigint = $1
		)`

	var used bool
	if err := r.db.QueryRow(ctx, query, platformID).Scan(&used); err != nil {
		return false, fmt.Errorf("check platform usage: %w", err)
	}
	return used, nil
}

// scanPlatform reads one platform row from either a Row or Rows source.
func scanPlatform(row pgx.Row, withTotal bool) (*domain.Platform, int, error) {
	var (
		p     domain.Platform
		id    int64
		total int
	)

	dest := []any{
		&id, &p.Name, &p.Width, &p.Height, &p.Description, &p.Namespace,
		&p.InsertedAt, &p.UpdatedAt, &p.NumberOfMedias,
	}
	if withTotal {
		dest = append(dest, &total)
	}

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("scan platform row: %w", err)
	}

	p.ID = formatID(id)
	return &p, total, nil
}
