package postgresrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/iorderrepo"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/postgres"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/currency"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/order"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/orderitem"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var orderColumns = []string{
	"id",
	"customer_id",
	"customer_name",
	"customer_email",
	"restaurant_id",
	"restaurant_name",
	"items",
	"subtotal",
	"delivery_fee",
	"total",
	"currency",
	"delivery_address",
	"delivery_instructions",
	"payment_method",
	"status",
	"created_at",
	"updated_at",
}

// OrderDal represents order data access layer model
type OrderDal struct {
	ID                   string
	CustomerID           string
	CustomerName         string
	CustomerEmail        string
	RestaurantID         string
	RestaurantName       string
	Items                []byte
	Subtotal             decimal.Decimal
	DeliveryFee          decimal.Decimal
	Total                decimal.Decimal
	Currency             string
	DeliveryAddress      string
	DeliveryInstructions string
	PaymentMethod        string
	Status               string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ToModel converts OrderDal to service layer Order model
func (o *OrderDal) ToModel() (order.Order, error) {
	cur, err := currency.ParseCurrency(o.Currency)
	if err != nil {
		return order.Order{}, err
	}
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return order.Order{}, err
	}
	var items []orderitem.OrderItem
	if err := json.Unmarshal(o.Items, &items); err != nil {
		return order.Order{}, fmt.Errorf("failed to unmarshal order items: %w", err)
	}

	return order.Order{
		ID:                   o.ID,
		CustomerID:           o.CustomerID,
		CustomerName:         o.CustomerName,
		CustomerEmail:        o.CustomerEmail,
		RestaurantID:         o.RestaurantID,
		RestaurantName:       o.RestaurantName,
		Items:                items,
		Subtotal:             o.Subtotal,
		DeliveryFee:          o.DeliveryFee,
		Total:                o.Total,
		Currency:             cur,
		DeliveryAddress:      o.DeliveryAddress,
		DeliveryInstructions: o.DeliveryInstructions,
		PaymentMethod:        o.PaymentMethod,
		Status:               status,
		CreatedAt:            o.CreatedAt.UTC(),
		UpdatedAt:            o.UpdatedAt.UTC(),
	}, nil
}

func (o *OrderDal) scanTargets() []any {
	return []any{
		&o.ID,
		&o.CustomerID,
		&o.CustomerName,
		&o.CustomerEmail,
		&o.RestaurantID,
		&o.RestaurantName,
		&o.Items,
		&o.Subtotal,
		&o.DeliveryFee,
		&o.Total,
		&o.Currency,
		&o.DeliveryAddress,
		&o.DeliveryInstructions,
		&o.PaymentMethod,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
}

type PostgresOrderRepository struct {
	conn postgres.Executor
}

var _ iorderrepo.IOrderRepository = (*PostgresOrderRepository)(nil)

func NewPostgresOrderRepository(conn postgres.Executor) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
	}
}

// Create inserts the order. Both timestamps come from the database clock.
func (r *PostgresOrderRepository) Create(ctx context.Context, o order.Order) (order.Order, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to marshal order items: %w", err)
	}

	query, args, err := psql.Insert("orders").
		Columns(orderColumns...).
		Values(
			o.ID,
			o.CustomerID,
			o.CustomerName,
			o.CustomerEmail,
			o.RestaurantID,
			o.RestaurantName,
			items,
			o.Subtotal,
			o.DeliveryFee,
			o.Total,
			o.Currency.String(),
			o.DeliveryAddress,
			o.DeliveryInstructions,
			o.PaymentMethod,
			o.Status.String(),
			sq.Expr("now()"),
			sq.Expr("now()"),
		).
		Suffix("ON CONFLICT (id) DO NOTHING RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	var createdAt, updatedAt time.Time
	err = r.conn.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return order.Order{}, iorderrepo.ErrDuplicateOrder
	}
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	o.CreatedAt = createdAt.UTC()
	o.UpdatedAt = updatedAt.UTC()

	return o, nil
}

func (r *PostgresOrderRepository) Get(ctx context.Context, id string) (order.Order, error) {
	return r.get(ctx, psql.Select(orderColumns...).From("orders").Where(sq.Eq{"id": id}))
}

func (r *PostgresOrderRepository) GetForUpdate(ctx context.Context, id string) (order.Order, error) {
	return r.get(ctx, psql.Select(orderColumns...).From("orders").Where(sq.Eq{"id": id}).Suffix("FOR UPDATE"))
}

// UpdateStatus writes the status and an updated_at that never goes backwards.
func (r *PostgresOrderRepository) UpdateStatus(
	ctx context.Context,
	id string,
	status order.Status,
) (order.Order, error) {
	query, args, err := psql.Update("orders").
		Set("status", status.String()).
		Set("updated_at", sq.Expr("GREATEST(clock_timestamp(), updated_at + interval '1 microsecond')")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(orderColumns, ", ")).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build update query: %w", err)
	}

	return r.scanOne(r.conn.QueryRowContext(ctx, query, args...))
}

// Query retrieves orders based on filter criteria, newest first.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	builder := psql.Select(orderColumns...).From("orders")

	if len(filter.Ids) > 0 {
		builder = builder.Where("id = ANY(?::uuid[])", pq.Array(filter.Ids))
	}
	if len(filter.CustomerIds) > 0 {
		builder = builder.Where("customer_id = ANY(?)", pq.Array(filter.CustomerIds))
	}
	if len(filter.RestaurantIds) > 0 {
		builder = builder.Where("restaurant_id = ANY(?)", pq.Array(filter.RestaurantIds))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, s.String())
		}
		builder = builder.Where("status = ANY(?)", pq.Array(statuses))
	}

	if filter.ByPriority {
		builder = builder.OrderBy(priorityOrder(), "created_at DESC")
	} else {
		builder = builder.OrderBy("created_at DESC")
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	result := make([]order.Order, 0)
	for rows.Next() {
		var dal OrderDal
		if err := rows.Scan(dal.scanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

func (r *PostgresOrderRepository) get(ctx context.Context, builder sq.SelectBuilder) (order.Order, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build select query: %w", err)
	}

	return r.scanOne(r.conn.QueryRowContext(ctx, query, args...))
}

func (r *PostgresOrderRepository) scanOne(row *sql.Row) (order.Order, error) {
	var dal OrderDal
	err := row.Scan(dal.scanTargets()...)
	if errors.Is(err, sql.ErrNoRows) {
		return order.Order{}, iorderrepo.ErrOrderNotFound
	}
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to scan order: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to convert order dal to model: %w", err)
	}

	return model, nil
}

// priorityOrder maps every status to its queue priority. Status names are package
// constants, so they are inlined rather than bound.
func priorityOrder() string {
	var b strings.Builder
	b.WriteString("CASE status")
	statuses := order.Statuses()
	for _, s := range statuses {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", s, s.Priority())
	}
	fmt.Fprintf(&b, " ELSE %d END", len(statuses))

	return b.String()
}
