package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ids(orders []Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}

	return out
}

func TestSortForRestaurant(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	orders := []Order{
		{ID: "t1", Status: StatusDelivered, CreatedAt: base.Add(1 * time.Minute)},
		{ID: "t2", Status: StatusPending, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "t3", Status: StatusPreparing, CreatedAt: base.Add(3 * time.Minute)},
		{ID: "t4", Status: StatusPending, CreatedAt: base.Add(4 * time.Minute)},
	}

	SortForRestaurant(orders)

	assert.Equal(t, []string{"t4", "t2", "t3", "t1"}, ids(orders))
}

func TestSortForRestaurant_AllStatuses(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	orders := []Order{
		{ID: "cancelled", Status: StatusCancelled, CreatedAt: base.Add(6 * time.Minute)},
		{ID: "delivered", Status: StatusDelivered, CreatedAt: base.Add(5 * time.Minute)},
		{ID: "on_delivery", Status: StatusOnDelivery, CreatedAt: base.Add(4 * time.Minute)},
		{ID: "preparing", Status: StatusPreparing, CreatedAt: base.Add(3 * time.Minute)},
		{ID: "confirmed", Status: StatusConfirmed, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "pending", Status: StatusPending, CreatedAt: base.Add(1 * time.Minute)},
	}

	SortForRestaurant(orders)

	assert.Equal(t,
		[]string{"pending", "confirmed", "preparing", "on_delivery", "delivered", "cancelled"},
		ids(orders),
	)
}

func TestSortForCustomer(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	orders := []Order{
		{ID: "old", Status: StatusPending, CreatedAt: base},
		{ID: "new", Status: StatusDelivered, CreatedAt: base.Add(time.Hour)},
		{ID: "mid", Status: StatusCancelled, CreatedAt: base.Add(time.Minute)},
	}

	SortForCustomer(orders)

	assert.Equal(t, []string{"new", "mid", "old"}, ids(orders))
}
