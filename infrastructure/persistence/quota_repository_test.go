package persistence

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestQuotaRepository_AddUsage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewQuotaRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO quota_usage`)).
		WithArgs("2026-08-28", "global", int64(50), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.AddUsage(context.Background(), "2026-08-28", "global", 50)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaRepository_GetUsage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewQuotaRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT used FROM quota_usage WHERE date_key=$1 AND scope=$2`)).
		WithArgs("2026-08-28", "42").
		WillReturnRows(sqlmock.NewRows([]string{"used"}).AddRow(150))

	used, err := repo.GetUsage(context.Background(), "2026-08-28", "42")
	require.NoError(t, err)
	require.EqualValues(t, 150, used)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaRepository_GetUsage_NoRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewQuotaRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT used FROM quota_usage`)).
		WithArgs("2026-08-28", "global").
		WillReturnRows(sqlmock.NewRows([]string{"used"}))

	used, err := repo.GetUsage(context.Background(), "2026-08-28", "global")
	require.NoError(t, err)
	require.Zero(t, used)
	require.NoError(t, mock.ExpectationsWereMet())
}
