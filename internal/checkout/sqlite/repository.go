// Package sqlite provides a SQLite-backed implementation of domain.Repository.
//
// WAL mode is enabled on Open so that readers never block writers and vice
// versa — the HTTP handlers read while other requests write through the same
// connection pool.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/domain"

	// Register the pure-Go SQLite driver.
	// We use modernc.org/sqlite instead of mattn/go-sqlite3 to avoid CGO
	// requirements, making it easier to build and run in Docker (Alpine).
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. Column names are the wire
// contract with storage; anything reading these tables directly relies on
// them.
const schema = `
CREATE TABLE IF NOT EXISTS orders (
    -- Business identifier, assigned by the caller. Immutable after creation.
    id          TEXT NOT NULL PRIMARY KEY,

    -- Reference into the Customer bounded context. Not a foreign key:
    -- customers live in another service's database.
    customer_id TEXT NOT NULL,

    -- Denormalized snapshot of sum(items.price * items.quantity) taken at
    -- write time. Never recomputed on read.
    total       REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS order_items (
    -- Line item identifier. Unique within the parent order's item set only,
    -- hence the composite primary key below.
    id          TEXT    NOT NULL,

    -- Product name captured at order time.
    name        TEXT    NOT NULL,

    -- Unit price captured at order time.
    price       REAL    NOT NULL,

    -- Reference into the Product bounded context. Like customer_id, opaque.
    product_id  TEXT    NOT NULL,

    quantity    INTEGER NOT NULL,

    -- Parent order. Enforced by SQLite because foreign_keys is on in the DSN.
    order_id    TEXT    NOT NULL REFERENCES orders(id),

    PRIMARY KEY (order_id, id)
);

-- Index for the join read: "give me all item rows for order X".
CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
`

// Repository is the SQLite implementation of domain.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at the given path and applies
// the schema. WAL mode is enabled for better concurrent read/write
// performance. Use ":memory:" for tests.
//
//	repo, err := sqlite.Open("./data/checkout.db")
func Open(path string) (*Repository, error) {
	// The pure-Go driver uses _pragma query parameters to configure connection state.
	// WAL enables concurrent readers. foreign_keys=on enforces the
	// order_items.order_id reference. busy_timeout waits for locks instead
	// of failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// Use "sqlite", not "sqlite3" for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (r *Repository) Close() error {
	return r.db.Close()
}

// Create inserts the order row and one row per item inside a single
// transaction, so the aggregate is persisted whole or not at all. The
// stored total is the aggregate's total at call time; later in-memory
// mutations of the order do not affect it.
//
// A duplicate order id surfaces as the driver's constraint error, not
// wrapped into a domain error.
func (r *Repository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin create for %q: %w", order.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	const insertOrder = `
		INSERT INTO orders (id, customer_id, total)
		VALUES (?, ?, ?)`

	if _, err := tx.ExecContext(ctx, insertOrder, order.ID, order.CustomerID, order.Total()); err != nil {
		return err
	}

	for _, item := range order.Items {
		if err := insertItem(ctx, tx, order.ID, item); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit create for %q: %w", order.ID, err)
	}
	return nil
}

// Update rewrites the order header and reconciles the item rows against
// order.Items in a single transaction: rows whose id left the set are
// deleted, rows whose id remains are updated, new ids are inserted. Every
// write is awaited before Update returns, so a success signal means the
// aggregate is fully persisted.
func (r *Repository) Update(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin update for %q: %w", order.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	const updateOrder = `
		UPDATE orders
		SET    customer_id = ?, total = ?
		WHERE  id = ?`

	res, err := tx.ExecContext(ctx, updateOrder, order.CustomerID, order.Total(), order.ID)
	if err != nil {
		return err
	}
	matched, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: update rows affected for %q: %w", order.ID, err)
	}
	if matched == 0 {
		return fmt.Errorf("sqlite: update %q: %w", order.ID, domain.ErrOrderNotFound)
	}

	if err := reconcileItems(ctx, tx, order); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit update for %q: %w", order.ID, err)
	}
	return nil
}

// Find reads the order row joined with its item rows and reconstructs the
// aggregate. The one wrapped error path of this layer: a missing id returns
// domain.ErrOrderNotFound instead of sql.ErrNoRows.
func (r *Repository) Find(ctx context.Context, id string) (*domain.Order, error) {
	// LEFT JOIN so an order without items still produces one row
	// (with NULL item columns) instead of vanishing.
	const q = `
		SELECT o.id, o.customer_id,
		       i.id, i.name, i.price, i.product_id, i.quantity
		FROM   orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		WHERE  o.id = ?
		ORDER  BY i.rowid`

	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: find %q: %w", id, err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, fmt.Errorf("sqlite: find %q: %w", id, err)
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("sqlite: find %q: %w", id, domain.ErrOrderNotFound)
	}
	return orders[0], nil
}

// FindAll reconstructs every persisted order, in insertion order (orders by
// rowid, items by rowid within each order).
func (r *Repository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	const q = `
		SELECT o.id, o.customer_id,
		       i.id, i.name, i.price, i.product_id, i.quantity
		FROM   orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		ORDER  BY o.rowid, i.rowid`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: find all: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, fmt.Errorf("sqlite: find all: %w", err)
	}
	return orders, nil
}

// reconcileItems diffs the persisted item ids for the order against the
// incoming item set and issues the minimal delete/update/insert statements.
func reconcileItems(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	existing, err := itemIDs(ctx, tx, order.ID)
	if err != nil {
		return err
	}

	incoming := make(map[string]bool, len(order.Items))
	for _, item := range order.Items {
		incoming[item.ID] = true
	}

	const deleteItem = `DELETE FROM order_items WHERE order_id = ? AND id = ?`
	for _, id := range existing {
		if !incoming[id] {
			if _, err := tx.ExecContext(ctx, deleteItem, order.ID, id); err != nil {
				return fmt.Errorf("sqlite: delete item %q of order %q: %w", id, order.ID, err)
			}
		}
	}

	const updateItem = `
		UPDATE order_items
		SET    name = ?, price = ?, product_id = ?, quantity = ?
		WHERE  order_id = ? AND id = ?`

	known := make(map[string]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}

	for _, item := range order.Items {
		if known[item.ID] {
			_, err := tx.ExecContext(ctx, updateItem,
				item.Name, item.Price, item.ProductID, item.Quantity,
				order.ID, item.ID,
			)
			if err != nil {
				return fmt.Errorf("sqlite: update item %q of order %q: %w", item.ID, order.ID, err)
			}
			continue
		}
		if err := insertItem(ctx, tx, order.ID, item); err != nil {
			return err
		}
	}
	return nil
}

func insertItem(ctx context.Context, tx *sql.Tx, orderID string, item domain.OrderItem) error {
	const q = `
		INSERT INTO order_items (id, name, price, product_id, quantity, order_id)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := tx.ExecContext(ctx, q,
		item.ID, item.Name, item.Price, item.ProductID, item.Quantity, orderID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert item %q of order %q: %w", item.ID, orderID, err)
	}
	return nil
}

// itemIDs returns the persisted item ids for an order, in row order.
func itemIDs(ctx context.Context, tx *sql.Tx, orderID string) ([]string, error) {
	const q = `SELECT id FROM order_items WHERE order_id = ? ORDER BY rowid`

	rows, err := tx.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list items of order %q: %w", orderID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scan item id of order %q: %w", orderID, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// applySchema runs the DDL statements once. Idempotent due to IF NOT EXISTS.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

// collectOrders walks joined order/item rows and rebuilds aggregates,
// grouping consecutive rows that share an order id. The item columns are
// nullable because of the LEFT JOIN.
func collectOrders(rows *sql.Rows) ([]*domain.Order, error) {
	var orders []*domain.Order
	var current *domain.Order

	for rows.Next() {
		var (
			orderID    string
			customerID string
			itemID     sql.NullString
			name       sql.NullString
			price      sql.NullFloat64
			productID  sql.NullString
			quantity   sql.NullInt64
		)
		err := rows.Scan(&orderID, &customerID, &itemID, &name, &price, &productID, &quantity)
		if err != nil {
			return nil, err
		}

		if current == nil || current.ID != orderID {
			current = &domain.Order{ID: orderID, CustomerID: customerID}
			orders = append(orders, current)
		}

		// NULL item id means the order has no items at all.
		if itemID.Valid {
			current.Items = append(current.Items, domain.OrderItem{
				ID:        itemID.String,
				Name:      name.String,
				Price:     price.Float64,
				ProductID: productID.String,
				Quantity:  int(quantity.Int64),
			})
		}
	}
	return orders, rows.Err()
}
