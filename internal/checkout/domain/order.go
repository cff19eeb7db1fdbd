// Package domain defines the Order aggregate for the checkout context.
//
// The aggregate owns no persistence knowledge: Customer and Product live in
// their own bounded contexts, so CustomerID and ProductID are opaque
// references that this layer never validates against storage.
package domain

// Order is the aggregate root. Items are kept in insertion order; the
// persisted row order must match it.
type Order struct {
	ID         string
	CustomerID string
	Items      []OrderItem
}

// OrderItem is a line item of an Order. Its ID is unique within the parent
// order's item set, not globally.
type OrderItem struct {
	ID        string
	Name      string
	Price     float64
	ProductID string
	Quantity  int
}

// Subtotal is the line total: unit price at order time times quantity.
func (i OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.Price
}

// Total sums the subtotals of all items. It is derived on every call; the
// orders table stores a write-time snapshot of it that is never recomputed
// on read.
func (o *Order) Total() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.Subtotal()
	}
	return total
}
