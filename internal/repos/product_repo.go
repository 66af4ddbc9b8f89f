package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"cafeteria/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, name, price, quantity`

// List returns the whole catalog, sold-out products included.
func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+productCols+` FROM products ORDER BY name`)
	return out, err
}

// ListInStock returns the products that can be picked for a new order.
func (r *ProductRepo) ListInStock(ctx context.Context) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+productCols+`
		FROM products
		WHERE quantity > 0
		ORDER BY name
	`)
	return out, err
}

func (r *ProductRepo) Get(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productCols+` FROM products WHERE id = ?`, int64(id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return p, err
}

// ByIDs loads the given products keyed by id. Unknown ids are simply absent.
func (r *ProductRepo) ByIDs(ctx context.Context, ids []domain.ProductID) (map[domain.ProductID]domain.Product, error) {
	return productsByIDs(ctx, r.db, ids)
}

// Create adds a catalog entry. Only the demo seed calls it; there is no
// product management screen.
func (r *ProductRepo) Create(ctx context.Context, name string, price decimal.Decimal, qty int) (domain.ProductID, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO products(name, price, quantity, created_at)
		VALUES(?, ?, ?, CURRENT_TIMESTAMP)
	`, name, price.String(), qty)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return domain.ProductID(id), err
}

func productsByIDs(ctx context.Context, q sqlx.QueryerContext, ids []domain.ProductID) (map[domain.ProductID]domain.Product, error) {
	out := make(map[domain.ProductID]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	raw := make([]int64, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, int64(id))
	}
	query, args, err := sqlx.In(`SELECT `+productCols+` FROM products WHERE id IN (?)`, raw)
	if err != nil {
		return nil, err
	}
	var rows []domain.Product
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}
