package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"cafeteria/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

type orderRow struct {
	ID         int64           `db:"id"`
	PlacedAt   string          `db:"placed_at"`
	TotalPrice decimal.Decimal `db:"total_price"`
	Version    int64           `db:"version"`
}

func (r orderRow) order() (domain.Order, error) {
	ts, err := time.Parse(time.RFC3339Nano, r.PlacedAt)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %d: bad placed_at %q: %w", r.ID, r.PlacedAt, err)
	}
	return domain.Order{
		ID:         domain.OrderID(r.ID),
		Timestamp:  ts.Local(),
		TotalPrice: r.TotalPrice,
		Version:    r.Version,
	}, nil
}

func formatTS(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

// List returns every order in insertion order.
func (r *OrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT id, placed_at, total_price, version
		FROM orders
		ORDER BY id
	`); err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		o, err := row.order()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *OrderRepo) Get(ctx context.Context, id domain.OrderID) (domain.Order, error) {
	var row orderRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, placed_at, total_price, version
		FROM orders WHERE id = ?
	`, int64(id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Order{}, err
	}
	return row.order()
}

// Items returns the lines of an order with their product names.
func (r *OrderRepo) Items(ctx context.Context, id domain.OrderID) ([]domain.OrderItem, error) {
	items := []domain.OrderItem{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT oi.id, oi.order_id, oi.product_id, p.name AS product_name, oi.quantity
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ?
		ORDER BY oi.id
	`, int64(id))
	return items, err
}

func (r *OrderRepo) Exists(ctx context.Context, id domain.OrderID) (bool, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM orders WHERE id = ?`, int64(id)); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update saves timestamp and total when o.Version still matches the stored
// row, bumping the version. A stale or missing row yields ErrConflict.
func (r *OrderRepo) Update(ctx context.Context, o domain.Order) (domain.Order, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET placed_at = ?, total_price = ?, version = version + 1
		WHERE id = ? AND version = ?
	`, formatTS(o.Timestamp), o.TotalPrice.String(), int64(o.ID), o.Version)
	if err != nil {
		return domain.Order{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Order{}, err
	}
	if n == 0 {
		return domain.Order{}, fmt.Errorf("order %d version %d: %w", o.ID, o.Version, domain.ErrConflict)
	}
	o.Version++
	return o, nil
}

// Delete removes the order. Its lines go with it through ON DELETE CASCADE,
// so no orphan order_items are left behind; stock is not given back.
func (r *OrderRepo) Delete(ctx context.Context, id domain.OrderID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, int64(id))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Place turns a cart into an order inside one transaction: every product is
// loaded before anything is written, stock is taken with a
// decrement-if-available update, then the order and its items are inserted.
// Any failure rolls the whole thing back.
func (r *OrderRepo) Place(ctx context.Context, at time.Time, cart domain.Cart) (domain.Order, error) {
	if cart.IsEmpty() {
		return domain.Order{}, fmt.Errorf("empty cart: %w", domain.ErrInvalidInput)
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Order{}, err
	}
	defer func() { _ = tx.Rollback() }()

	products, err := productsByIDs(ctx, tx, cart.ProductIDs())
	if err != nil {
		return domain.Order{}, err
	}
	for _, l := range cart.Lines {
		if _, ok := products[l.ProductID]; !ok {
			return domain.Order{}, fmt.Errorf("product %d: %w", l.ProductID, domain.ErrNotFound)
		}
	}
	total := cart.Total(func(id domain.ProductID) (domain.Product, bool) {
		p, ok := products[id]
		return p, ok
	})

	for _, l := range cart.Lines {
		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET quantity = quantity - ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND quantity >= ?
		`, l.Quantity, int64(l.ProductID), l.Quantity)
		if err != nil {
			return domain.Order{}, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return domain.Order{}, err
		}
		if n == 0 {
			p := products[l.ProductID]
			return domain.Order{}, fmt.Errorf("%s (need %d, have %d): %w",
				p.Name, l.Quantity, p.Quantity, domain.ErrInsufficientStock)
		}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO orders(placed_at, total_price, version)
		VALUES(?, ?, 1)
	`, formatTS(at), total.String())
	if err != nil {
		return domain.Order{}, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return domain.Order{}, err
	}
	for _, l := range cart.Lines {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items(order_id, product_id, quantity)
			VALUES(?, ?, ?)
		`, orderID, int64(l.ProductID), l.Quantity); err != nil {
			return domain.Order{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.Order{}, err
	}
	return domain.Order{ID: domain.OrderID(orderID), Timestamp: at, TotalPrice: total, Version: 1}, nil
}
