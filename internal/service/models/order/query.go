package order

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	Ids           []string `json:"ids,omitempty"`
	CustomerIds   []string `json:"customerIds,omitempty"`
	RestaurantIds []string `json:"restaurantIds,omitempty"`
	Statuses      []Status `json:"statuses,omitempty"`
	Limit         int      `json:"limit,omitempty"`
	Offset        int      `json:"offset,omitempty"`
	// ByPriority orders by status priority before creation time, so that paging
	// keeps the restaurant queue order.
	ByPriority bool `json:"byPriority,omitempty"`
}

// ListFilter narrows a customer or restaurant order list.
type ListFilter struct {
	Statuses []Status
	Limit    int
	Offset   int
}
