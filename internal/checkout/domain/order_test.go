package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotal(t *testing.T) {
	order := &Order{
		ID:         "1",
		CustomerID: "customer_1",
		Items: []OrderItem{
			{ID: "a", Price: 10, Quantity: 2},
			{ID: "b", Price: 2.5, Quantity: 4},
		},
	}
	assert.Equal(t, 30.0, order.Total())
}

func TestTotalEmptyOrder(t *testing.T) {
	order := &Order{ID: "1", CustomerID: "customer_1"}
	assert.Zero(t, order.Total())
}

func TestSubtotal(t *testing.T) {
	item := OrderItem{Price: 9.99, Quantity: 3}
	assert.InDelta(t, 29.97, item.Subtotal(), 1e-9)
}
