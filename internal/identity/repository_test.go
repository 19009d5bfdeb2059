// AngelaMos | 2026
// repository_test.go

package identity

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/esb-backend/internal/core"
)

func setupMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(sqlx.NewDb(db, "pgx")), mock
}

func TestFindPersonMatchesIDAndMobile(t *testing.T) {
	repo, mock := setupMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "name", "mobile", "address"}).
		AddRow(int64(123456789012), "John Doe", "9876543210", "123 Main St")
	mock.ExpectQuery(`FROM person\s+WHERE id = \$1 AND mobile = \$2`).
		WithArgs(int64(123456789012), "9876543210").
		WillReturnRows(rows)

	p, err := repo.FindPerson(context.Background(), 123456789012, "9876543210")

	require.NoError(t, err)
	assert.Equal(t, &Person{
		ID:      123456789012,
		Name:    "John Doe",
		Mobile:  "9876543210",
		Address: "123 Main St",
	}, p)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPersonNoRowsIsNotFound(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectQuery(`FROM person`).WillReturnError(sql.ErrNoRows)

	_, err := repo.FindPerson(context.Background(), 1, "0")

	assert.ErrorIs(t, err, core.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindConsumerByPerson(t *testing.T) {
	repo, mock := setupMockRepo(t)

	rows := sqlmock.NewRows([]string{"consumerid", "id", "meterNumber"}).
		AddRow(int64(1), int64(123456789012), "M001")
	mock.ExpectQuery(`FROM consumer\s+WHERE id = \$1`).
		WithArgs(int64(123456789012)).
		WillReturnRows(rows)

	c, err := repo.FindConsumerByPerson(context.Background(), 123456789012)

	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ConsumerID)
	assert.Equal(t, "M001", c.MeterNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindInspectorJoinsModerator(t *testing.T) {
	repo, mock := setupMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "name", "mobile", "address", "moderatorid"}).
		AddRow(int64(345678901234), "Robert Brown", "7654321098", "789 Pine Rd", int64(1))
	mock.ExpectQuery(`JOIN moderator m ON m.id = p.id`).
		WithArgs(int64(345678901234), "7654321098").
		WillReturnRows(rows)

	i, err := repo.FindInspector(context.Background(), 345678901234, "7654321098")

	require.NoError(t, err)
	assert.Equal(t, int64(1), i.ModeratorID)
	assert.Equal(t, "Robert Brown", i.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindConsumerRecord(t *testing.T) {
	repo, mock := setupMockRepo(t)

	rows := sqlmock.NewRows([]string{
		"consumerid", "meterNumber", "id", "name", "mobile", "address",
	}).AddRow(int64(2), "M002", int64(234567890123), "Jane Smith", "8765432109", "456 Oak Ave")
	mock.ExpectQuery(`JOIN person p ON p.id = c.id`).
		WithArgs(int64(2), "8765432109").
		WillReturnRows(rows)

	rec, err := repo.FindConsumerRecord(context.Background(), 2, "8765432109")

	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.ConsumerID)
	assert.Equal(t, int64(234567890123), rec.ID)
	assert.Equal(t, "M002", rec.MeterNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePerson(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		repo, mock := setupMockRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT consumerid FROM consumer WHERE id = \$1`).
			WithArgs(int64(123456789012)).
			WillReturnRows(sqlmock.NewRows([]string{"consumerid"}).AddRow(int64(1)))
		mock.ExpectExec(`DELETE FROM person WHERE id = \$1`).
			WithArgs(int64(123456789012)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		consumerIDs, err := repo.DeletePerson(context.Background(), 123456789012)
		require.NoError(t, err)
		assert.Equal(t, []int64{1}, consumerIDs)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("person without consumer", func(t *testing.T) {
		repo, mock := setupMockRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT consumerid FROM consumer`).
			WillReturnRows(sqlmock.NewRows([]string{"consumerid"}))
		mock.ExpectExec(`DELETE FROM person`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		consumerIDs, err := repo.DeletePerson(context.Background(), 456789012345)
		require.NoError(t, err)
		assert.Empty(t, consumerIDs)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := setupMockRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT consumerid FROM consumer`).
			WillReturnRows(sqlmock.NewRows([]string{"consumerid"}))
		mock.ExpectExec(`DELETE FROM person`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.DeletePerson(context.Background(), 999)
		assert.ErrorIs(t, err, core.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("still referenced by bills", func(t *testing.T) {
		repo, mock := setupMockRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT consumerid FROM consumer`).
			WillReturnRows(sqlmock.NewRows([]string{"consumerid"}))
		mock.ExpectExec(`DELETE FROM person`).
			WillReturnError(&pgconn.PgError{Code: "23503"})
		mock.ExpectRollback()

		_, err := repo.DeletePerson(context.Background(), 345678901234)
		assert.ErrorIs(t, err, core.ErrConflict)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("storage failure", func(t *testing.T) {
		repo, mock := setupMockRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT consumerid FROM consumer`).
			WillReturnError(errors.New("conn closed"))
		mock.ExpectRollback()

		_, err := repo.DeletePerson(context.Background(), 1)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, core.ErrNotFound)
	})
}
