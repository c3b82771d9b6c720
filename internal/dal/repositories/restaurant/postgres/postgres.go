package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/interfaces/irestaurantrepo"
	"github.com/RicardoFlores201/appUni-sub000/internal/dal/postgres"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type RestaurantRepository struct {
	conn postgres.Executor
}

var _ irestaurantrepo.IRestaurantRepository = (*RestaurantRepository)(nil)

func NewRestaurantRepository(conn postgres.Executor) *RestaurantRepository {
	return &RestaurantRepository{
		conn: conn,
	}
}

// IsOwner reports whether userID is registered as the owner of restaurantID.
func (r *RestaurantRepository) IsOwner(ctx context.Context, restaurantID, userID string) (bool, error) {
	query, args, err := psql.Select("1").
		Prefix("SELECT EXISTS (").
		From("restaurants").
		Where(sq.Eq{"id": restaurantID, "owner_id": userID}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build select query: %w", err)
	}

	var exists bool
	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check restaurant owner: %w", err)
	}

	return exists, nil
}
