package services_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"cafeteria/internal/domain"
	"cafeteria/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func addProduct(t *testing.T, prods *repos.ProductRepo, name, price string, qty int) domain.ProductID {
	t.Helper()
	id, err := prods.Create(context.Background(), name, dec(price), qty)
	require.NoError(t, err)
	return id
}

// snapshot captures everything commit or delete could touch.
type snapshot struct {
	Orders   []domain.Order
	Products []domain.Product
	Items    int
}

func takeSnapshot(t *testing.T, db *sqlx.DB) snapshot {
	t.Helper()
	ctx := context.Background()
	orders, err := repos.NewOrderRepo(db).List(ctx)
	require.NoError(t, err)
	prods, err := repos.NewProductRepo(db).List(ctx)
	require.NoError(t, err)
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM order_items`))
	return snapshot{Orders: orders, Products: prods, Items: n}
}
