package order

import (
	"errors"
	"fmt"
)

// Status is the position of an order in its delivery lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusPreparing  Status = "preparing"
	StatusOnDelivery Status = "on_delivery"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Actor is the role requesting a status change.
type Actor string

const (
	ActorCustomer   Actor = "customer"
	ActorRestaurant Actor = "restaurant"
)

var (
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrTerminalStatus    = errors.New("order is already in a terminal status")
	ErrCancelNotAllowed  = errors.New("order can no longer be cancelled")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrActorNotPermitted = errors.New("actor may not set this status")
)

var priorities = map[Status]int{
	StatusPending:    0,
	StatusConfirmed:  1,
	StatusPreparing:  2,
	StatusOnDelivery: 3,
	StatusDelivered:  4,
	StatusCancelled:  5,
}

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return []Status{
		StatusPending,
		StatusConfirmed,
		StatusPreparing,
		StatusOnDelivery,
		StatusDelivered,
		StatusCancelled,
	}
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := priorities[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}

	return st, nil
}

func (s Status) String() string {
	return string(s)
}

// Priority is the restaurant queue rank of the status. Unknown statuses sort last.
func (s Status) Priority() int {
	if p, ok := priorities[s]; ok {
		return p
	}

	return len(priorities)
}

// IsTerminal reports whether no further transition leaves the status.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Next returns the adjacent forward status. Terminal statuses have none.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusPending:
		return StatusConfirmed, true
	case StatusConfirmed:
		return StatusPreparing, true
	case StatusPreparing:
		return StatusOnDelivery, true
	case StatusOnDelivery:
		return StatusDelivered, true
	default:
		return "", false
	}
}

// ValidateTransition checks whether actor may move an order from one status to another.
// Rewriting the current status is always accepted. With strict set, forward moves must be
// adjacent.
func ValidateTransition(from, to Status, actor Actor, strict bool) error {
	if _, ok := priorities[to]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if from == to {
		return nil
	}
	if from.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrTerminalStatus, from)
	}

	if to == StatusCancelled {
		if actor == ActorCustomer && from != StatusPending {
			return fmt.Errorf("%w: status is %s", ErrCancelNotAllowed, from)
		}

		return nil
	}

	if actor != ActorRestaurant {
		return fmt.Errorf("%w: %s cannot set %s", ErrActorNotPermitted, actor, to)
	}

	if to.Priority() < from.Priority() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	if strict {
		if next, _ := from.Next(); next != to {
			return fmt.Errorf("%w: %s -> %s skips a step", ErrInvalidTransition, from, to)
		}
	}

	return nil
}
