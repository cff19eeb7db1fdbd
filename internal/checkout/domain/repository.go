package domain

import (
	"context"
	"errors"
)

// ErrOrderNotFound is returned by Find and Update when no order row matches
// the given id. Callers should test for it with errors.Is; implementations
// may wrap it with extra context.
var ErrOrderNotFound = errors.New("order not found")

// Repository is the port (interface) for persisting Order aggregates.
// Callers depend on this abstraction, not on SQLite directly, so the
// implementation can be swapped for Postgres, a caching decorator, or an
// in-memory fake in tests.
type Repository interface {
	// Create inserts the order row and all of its item rows in one logical
	// write. Constraint violations (duplicate id) propagate unwrapped from
	// the storage driver.
	Create(ctx context.Context, order *Order) error

	// Update replaces the order row's customer_id and total and reconciles
	// the item rows against order.Items: removed items are deleted, matched
	// items updated, new items inserted. All writes complete before Update
	// returns. ErrOrderNotFound if no order row matches order.ID.
	Update(ctx context.Context, order *Order) error

	// Find reads the order row with all of its item rows and reconstructs
	// the aggregate, items in their persisted order.
	Find(ctx context.Context, id string) (*Order, error)

	// FindAll reconstructs every persisted order, in insertion order.
	FindAll(ctx context.Context) ([]*Order, error)
}
