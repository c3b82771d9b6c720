package order

import (
	"cmp"
	"slices"
)

// SortForRestaurant orders a restaurant queue by status priority, newest first within a status.
func SortForRestaurant(orders []Order) {
	slices.SortStableFunc(orders, func(a, b Order) int {
		if c := cmp.Compare(a.Status.Priority(), b.Status.Priority()); c != 0 {
			return c
		}

		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

// SortForCustomer orders a customer's history newest first.
func SortForCustomer(orders []Order) {
	slices.SortStableFunc(orders, func(a, b Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
