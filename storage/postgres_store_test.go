package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresStore(mock), mock
}

func TestPostgresStore_AutoMigrate(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS vidlists_snapshots").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	require.NoError(t, store.AutoMigrate(context.Background()))

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS vidlists_snapshots").
		WillReturnError(errors.New("permission denied"))
	err := store.AutoMigrate(context.Background())
	var storErr *StorageError
	require.ErrorAs(t, err, &storErr)
	assert.Equal(t, "migrate", storErr.Op)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Write(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	value := []byte(`{"id":"u1"}`)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO vidlists_snapshots").
		WithArgs("u1", value).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, store.Write(context.Background(), "u1", value))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_WriteCommitFails(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO vidlists_snapshots").
		WithArgs("u1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := store.Write(context.Background(), "u1", []byte("v"))
	var storErr *StorageError
	require.ErrorAs(t, err, &storErr)
	assert.Equal(t, "write", storErr.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_WriteRollsBack(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO vidlists_snapshots").
		WithArgs("u1", pgxmock.AnyArg()).
		WillReturnError(errors.New("db boom"))
	mock.ExpectRollback()

	err := store.Write(context.Background(), "u1", []byte("v"))
	require.Error(t, err)
	var storErr *StorageError
	require.ErrorAs(t, err, &storErr)
	assert.Equal(t, "write", storErr.Op)
	assert.Equal(t, "u1", storErr.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Read(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectQuery("SELECT value FROM vidlists_snapshots").
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow([]byte(`{"id":"u1"}`)))

	got, err := store.Read(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"u1"}`, string(got))

	mock.ExpectQuery("SELECT value FROM vidlists_snapshots").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = store.Read(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Exists(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("u2").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := store.Exists(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(context.Background(), "u2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_EmptyKey(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	assert.ErrorIs(t, store.Write(context.Background(), "", []byte("v")), ErrInvalidInput)
	_, err := store.Read(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}
