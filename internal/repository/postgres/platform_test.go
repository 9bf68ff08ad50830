package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Geeks-Solutions/exmedias/internal/domain"
	"github.com/Geeks-Solutions/exmedias/internal/filter"
	"github.com/Geeks-Solutions/exmedias/pkg/database"
	apperrors "github.com/Geeks-Solutions/exmedias/pkg/errors"
)

func setupPlatformRepo(t *testing.T) (*PlatformRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewPlatformRepository(mock)
	return repo, mock
}

var platformRowColumns = []string{
	"id", "name", "width", "height", "description", "namespace",
	"inserted_at", "updated_at", "number_of_medias",
}

var platformRowColumnsWithTotal = append(append([]string{}, platformRowColumns...), "total_count")

func samplePlatform() domain.Platform {
	return domain.Platform{
		ID:          "7",
		Name:        "desktop",
		Width:       1920,
		Height:      1080,
		Description: "Full HD rendering target",
		Namespace:   "blog",
		InsertedAt:  time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func platformRow(p domain.Platform, count, total int) []any {
	return []any{
		int64(7), p.Name, p.Width, p.Height, p.Description, p.Namespace,
		p.InsertedAt, p.UpdatedAt, count, total,
	}
}

func TestPlatformRepository_Create_Success(t *testing.T) {
	repo, mock := setupPlatformRepo(t)
	defer mock.Close()

	p := samplePlatform()
	p.ID = ""

	mock.ExpectQuery("INSERT INTO platforms").
		WithArgs(p.Name, p.Width, p.Height, p.Description, p.Namespace, p.InsertedAt, p.UpdatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	err := repo.Create(context.Background(), &p)
	require.NoError(t, err)
	assert.Equal(t, "7", p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlatformRepository_Create_DuplicateName(t *testing.T) {
	repo, mock := setupPlatformRepo(t)
	defer mock.Close()

	p := samplePlatform()
	mock.ExpectQuery("INSERT INTO platforms").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "platforms_name_key"})

	err := repo.Create(context.Background(), &p)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlatformRepository_GetByID_Success(t *testing.T) {
	repo, mock := setupPlatformRepo(t)
	defer mock.Close()

	p := samplePlatform()
	mock.ExpectQuery("SELECT .+ FROM platforms p").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(platformRowColumns).AddRow(platformRow(p, 3, 0)[:9]...))

	got, err := repo.GetByID(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "7", got.ID)
	assert.Equal(t, "desktop", got.Name)
	assert.Equal(t, 3, got.NumberOfMedias)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlatformRepository_GetByID_InvalidID(t *testing.T) {
	repo, mock := setupPlatformRepo(t)
	defer mock.Close()

	got, err := repo.GetByID(context.Background(), "ffffffff")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrInvalidID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlatformRepository_List_ComputedCountFilter(t *testing.T) {
	repo, mock := setupPlatformRepo(t)
	defer mock.Close()

	p := samplePlatform()
	q := &filter.Query{
		Computed: []filter.Predicate{
			{Key: filter.KeyNumberOfMedias, Cmp: filter.Comparison{Op: filter.OpBetween, From: 2, To: 5}},
		},
	}

	// Exclusive bounds against the coalesced left-joined count.
	mock.ExpectQuery(`WHERE \(COALESCE\(fc\.file_count, 0\) > \$1 AND COALESCE\(fc\.file_count, 0\) < \$2\)`).
		WithArgs(float64(2), float64(5)).
		WillReturnRows(pgxmock.NewRows(platformRowColumnsWithTotal).
			AddRow(platformRow(p, 3, 2)...).
			AddRow(platformRow(p, 4, 2)...))

	platforms, total, err := repo.List(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, platforms, 2)
	assert.Equal(t, 3, platforms[0].NumberOfMedias)
	assert.Equal(t, 4, platforms[1].NumberOfMedias)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlatformRepository_List_PlainAndComputedAndCombine(t *testing.T) {
	repo, mock := setupPlatformRepo(t)
	defer mock.Close()

	q := &filter.Query{
		Groups: [][]filter.Predicate{
			{{Key: "namespace", Cmp: filter.Comparison{Op: filter.OpEq, Value: "blog"}}},
		},
		Computed: []filter.Predicate{
			{Key: filter.KeyNumberOfMedias, Cmp: filter.Comparison{Op: filter.OpGte, Value: float64(1)}},
		},
	}

	mock.ExpectQuery(`WHERE \(\(p\.namespace = \$1\)\) AND COALESCE\(fc\.file_count, 0\) >= \$2`).
		WithArgs("blog", float64(1)).
		WillReturnRows(pgxmock.NewRows(platformRowColumnsWithTotal))

	platforms, total, err := repo.List(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Equal(t, []domain.Platform{}, platforms)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlatformRepository_Update_NotFound(t *testing.T) {
	repo, mock := setupPlatformRepo(t)
	defer mock.Close()

	p := samplePlatform()
	p.ID = "99"
	mock.ExpectExec("UPDATE platforms").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(t, repo.Update(context.Background(), &p), apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlatformRepository_Delete(t *testing.T) {
	repo, mock := setupPlatformRepo(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM platforms WHERE id").
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, repo.Delete(context.Background(), "7"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlatformRepository_IsUsed(t *testing.T) {
	repo, mock := setupPlatformRepo(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT EXISTS\(`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	used, err := repo.IsUsed(context.Background(), "7")
	require.NoError(t, err)
	assert.False(t, used)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlatformRepository_List_QueryError(t *testing.T) {
	repo, mock := setupPlatformRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM platforms p").
		WillReturnError(errors.New("connection reset"))

	platforms, total, err := repo.List(context.Background(), &filter.Query{})
	assert.Nil(t, platforms)
	assert.Equal(t, 0, total)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "list platforms")
	assert.NoError(t, mock.ExpectationsWereMet())
}
