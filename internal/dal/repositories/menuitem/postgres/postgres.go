package postgresrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/imenurepo"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/postgres"
	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/menuitem"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// MenuRepository reads menu items joined with their restaurant name.
type MenuRepository struct {
	conn postgres.Executor
}

var _ imenurepo.IMenuRepository = (*MenuRepository)(nil)

func NewMenuRepository(conn postgres.Executor) *MenuRepository {
	return &MenuRepository{
		conn: conn,
	}
}

func (r *MenuRepository) Get(ctx context.Context, id string) (menuitem.MenuItem, error) {
	query, args, err := psql.Select(
		"m.id",
		"m.restaurant_id",
		"r.name",
		"m.name",
		"m.price",
		"m.image_url",
	).
		From("menu_items m").
		Join("restaurants r ON r.id = m.restaurant_id").
		Where(sq.Eq{"m.id": id}).
		ToSql()
	if err != nil {
		return menuitem.MenuItem{}, fmt.Errorf("failed to build select query: %w", err)
	}

	var item menuitem.MenuItem
	err = r.conn.QueryRowContext(ctx, query, args...).Scan(
		&item.ID,
		&item.RestaurantID,
		&item.RestaurantName,
		&item.Name,
		&item.Price,
		&item.ImageURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return menuitem.MenuItem{}, imenurepo.ErrMenuItemNotFound
	}
	if err != nil {
		return menuitem.MenuItem{}, fmt.Errorf("failed to get menu item: %w", err)
	}

	return item, nil
}
