package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/istatuslogrepo"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/postgres"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/statuslog"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type StatusLogRepository struct {
	conn postgres.Executor
}

var _ istatuslogrepo.IStatusLogRepository = (*StatusLogRepository)(nil)

func NewStatusLogRepository(conn postgres.Executor) *StatusLogRepository {
	return &StatusLogRepository{
		conn: conn,
	}
}

// Insert stores the entry unless an entry for the same event already exists.
func (r *StatusLogRepository) Insert(ctx context.Context, entry statuslog.Entry) error {
	query, args, err := psql.Insert("order_status_log").
		Columns("event_id", "order_id", "status", "actor", "changed_at").
		Values(entry.EventID, entry.OrderID, entry.Status.String(), string(entry.Actor), entry.ChangedAt).
		Suffix("ON CONFLICT (event_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert status log entry: %w", err)
	}

	return nil
}

// ListByOrder returns the history of an order, oldest first.
func (r *StatusLogRepository) ListByOrder(ctx context.Context, orderID string) ([]statuslog.Entry, error) {
	query, args, err := psql.Select("id", "event_id", "order_id", "status", "actor", "changed_at").
		From("order_status_log").
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("changed_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query status log: %w", err)
	}
	defer rows.Close()

	entries := make([]statuslog.Entry, 0)
	for rows.Next() {
		var (
			entry  statuslog.Entry
			status string
			actor  string
		)
		if err := rows.Scan(&entry.ID, &entry.EventID, &entry.OrderID, &status, &actor, &entry.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status log entry: %w", err)
		}
		if entry.Status, err = order.ParseStatus(status); err != nil {
			return nil, err
		}
		entry.Actor = order.Actor(actor)
		entry.ChangedAt = entry.ChangedAt.UTC()
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status log: %w", err)
	}

	return entries, nil
}
