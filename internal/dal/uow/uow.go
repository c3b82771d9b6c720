package uow

import (
	"context"
	"database/sql"
	"errors"

	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/iorderrepo"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/ioutboxrepo"
	orderrepo "github.com/RicardoFlores201/appUni-sub000/internal/dal/repositories/order/postgres"
	outboxrepo "github.com/RicardoFlores201/appUni-sub000/internal/dal/repositories/outbox/postgres"
)

// UnitOfWork groups the order and outbox repositories. Before Begin they run on the pool,
// after Begin on the transaction.
type UnitOfWork struct {
	db         *sql.DB
	tx         *sql.Tx
	orderRepo  iorderrepo.IOrderRepository
	outboxRepo ioutboxrepo.IOutboxRepository
}

func (u *UnitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *UnitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{
		db:         db,
		orderRepo:  orderrepo.NewPostgresOrderRepository(db),
		outboxRepo: outboxrepo.NewOutboxRepository(db),
	}
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.outboxRepo = outboxrepo.NewOutboxRepository(tx)

	return nil
}

func (u *UnitOfWork) Commit() error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit()
}

// Rollback is a no-op after a successful Commit.
func (u *UnitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}
