package uow

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitRunsRepositoriesInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO outbox`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	work := NewUnitOfWork(db)
	require.NoError(t, work.Begin(context.Background()))
	require.NoError(t, work.OutboxRepository().Insert(context.Background(), outbox.OutboxMessage{Topic: "t"}))
	require.NoError(t, work.Commit())
	require.NoError(t, work.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_Rollback(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	work := NewUnitOfWork(db)
	require.NoError(t, work.Begin(context.Background()))
	require.NoError(t, work.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_WithoutBegin(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	work := NewUnitOfWork(db)

	assert.NoError(t, work.Commit())
	assert.NoError(t, work.Rollback())
	assert.NotNil(t, work.OrderRepository())
}
