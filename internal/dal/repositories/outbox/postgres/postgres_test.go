package postgresrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) (*OutboxRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewOutboxRepository(db), mock
}

func TestOutboxRepository_Insert(t *testing.T) {
	repo, mock := setupRepo(t)
	msg := outbox.OutboxMessage{
		Topic:       "appuni.orders",
		Key:         "o1",
		Payload:     []byte(`{"id":"e1"}`),
		ContentType: "application/json",
		MaxRetries:  10,
	}

	mock.ExpectExec(`INSERT INTO outbox \(topic,message_key,payload,content_type,retry_count,max_retries,last_error,created_at,updated_at,next_retry_at\)`).
		WithArgs("appuni.orders", "o1", []byte(`{"id":"e1"}`), "application/json", 0, 10, "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Insert(context.Background(), msg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_InsertError(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectExec(`INSERT INTO outbox`).WillReturnError(errors.New("tx aborted"))

	err := repo.Insert(context.Background(), outbox.OutboxMessage{Topic: "t"})
	assert.Error(t, err)
}

func TestOutboxRepository_GetPendingMessages(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "topic", "message_key", "payload", "content_type", "retry_count",
		"max_retries", "last_error", "created_at", "updated_at", "next_retry_at",
	}).
		AddRow(1, "appuni.orders", "o1", []byte(`{}`), "application/json", 0, 10, "", now, now, now).
		AddRow(2, "appuni.orders", "o2", []byte(`{}`), "application/json", 2, 10, "timeout", now, now, now)

	mock.ExpectQuery(`SELECT (.+) FROM outbox WHERE next_retry_at <= now\(\) AND retry_count < max_retries ORDER BY next_retry_at ASC, id ASC LIMIT 50`).
		WillReturnRows(rows)

	messages, err := repo.GetPendingMessages(context.Background(), 50)

	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, int64(2), messages[1].ID)
	assert.Equal(t, "o2", messages[1].Key)
	assert.Equal(t, "timeout", messages[1].LastError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_DeleteAndUpdateRetry(t *testing.T) {
	repo, mock := setupRepo(t)
	next := time.Date(2024, 5, 1, 12, 1, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM outbox WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE outbox SET retry_count = \$1, last_error = \$2, next_retry_at = \$3, updated_at = now\(\) WHERE id = \$4`).
		WithArgs(3, "broker down", next, int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 7))
	require.NoError(t, repo.UpdateRetry(context.Background(), 8, 3, "broker down", next))
	assert.NoError(t, mock.ExpectationsWereMet())
}
