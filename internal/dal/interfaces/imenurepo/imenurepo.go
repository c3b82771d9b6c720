package imenurepo

import (
	"context"
	"errors"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/menuitem"
)

var ErrMenuItemNotFound = errors.New("menu item not found")

// IMenuRepository reads dishes from the menu collection.
type IMenuRepository interface {
	Get(ctx context.Context, id string) (menuitem.MenuItem, error)
}
