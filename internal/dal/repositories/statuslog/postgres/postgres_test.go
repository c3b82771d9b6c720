package postgresrepo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/statuslog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusLogRepository_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	changedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO order_status_log \(event_id,order_id,status,actor,changed_at\) VALUES \(\$1,\$2,\$3,\$4,\$5\) ON CONFLICT \(event_id\) DO NOTHING`).
		WithArgs("e1", "o1", "confirmed", "restaurant", changedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewStatusLogRepository(db).Insert(context.Background(), statuslog.Entry{
		EventID:   "e1",
		OrderID:   "o1",
		Status:    order.StatusConfirmed,
		Actor:     order.ActorRestaurant,
		ChangedAt: changedAt,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusLogRepository_ListByOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t1 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "event_id", "order_id", "status", "actor", "changed_at"}).
		AddRow(1, "e1", "o1", "pending", "customer", t1).
		AddRow(2, "e2", "o1", "cancelled", "customer", t1.Add(time.Minute))

	mock.ExpectQuery(`SELECT (.+) FROM order_status_log WHERE order_id = \$1 ORDER BY changed_at ASC, id ASC`).
		WithArgs("o1").
		WillReturnRows(rows)

	entries, err := NewStatusLogRepository(db).ListByOrder(context.Background(), "o1")

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, order.StatusPending, entries[0].Status)
	assert.Equal(t, order.StatusCancelled, entries[1].Status)
	assert.Equal(t, order.ActorCustomer, entries[1].Actor)
	assert.NoError(t, mock.ExpectationsWereMet())
}
