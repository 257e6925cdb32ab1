package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return NewSQLStore(db, ""), mock, db
}

func TestSQLStore_Load(t *testing.T) {
	store, mock, db := setupSQLStore(t)
	defer db.Close()
	ctx := context.Background()

	t.Run("decodes the stored row", func(t *testing.T) {
		data, err := EncodeProjects(sampleProjects())
		require.NoError(t, err)

		mock.ExpectQuery(`select value\s+from studio_state`).
			WithArgs("projects").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(string(data)))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, sampleProjects(), got)
	})

	t.Run("missing row reports no state", func(t *testing.T) {
		mock.ExpectQuery(`select value\s+from studio_state`).
			WithArgs("projects").
			WillReturnError(sql.ErrNoRows)

		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, ErrNoState)
	})

	t.Run("database errors are wrapped", func(t *testing.T) {
		mock.ExpectQuery(`select value\s+from studio_state`).
			WithArgs("projects").
			WillReturnError(errors.New("connection reset"))

		_, err := store.Load(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Save(t *testing.T) {
	store, mock, db := setupSQLStore(t)
	defer db.Close()
	ctx := context.Background()

	t.Run("upserts the whole list", func(t *testing.T) {
		mock.ExpectExec(`insert into studio_state`).
			WithArgs("projects", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Save(ctx, sampleProjects()))
	})

	t.Run("propagates write failures", func(t *testing.T) {
		mock.ExpectExec(`insert into studio_state`).
			WithArgs("projects", sqlmock.AnyArg()).
			WillReturnError(errors.New("disk full"))

		err := store.Save(ctx, sampleProjects())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save projects")
	})

	t.Run("uses the configured row key", func(t *testing.T) {
		keyed := NewSQLStore(db, "studio:projects")
		mock.ExpectExec(`insert into studio_state`).
			WithArgs("studio:projects", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, keyed.Save(ctx, sampleProjects()))

		data, err := EncodeProjects(sampleProjects())
		require.NoError(t, err)
		mock.ExpectQuery(`select value\s+from studio_state`).
			WithArgs("studio:projects").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(string(data)))
		got, err := keyed.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, sampleProjects(), got)
	})

	t.Run("creates the schema", func(t *testing.T) {
		mock.ExpectExec(`create table if not exists studio_state`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, store.EnsureSchema(ctx))
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
