package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafeteria/internal/domain"
	"cafeteria/internal/repos"
	"cafeteria/internal/services"
)

func placeOrder(t *testing.T, db *repos.OrderRepo, cart domain.Cart) domain.Order {
	t.Helper()
	o, err := db.Place(context.Background(), time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC), cart)
	require.NoError(t, err)
	return o
}

func TestOrderService_ListAndDetail(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	prods := repos.NewProductRepo(db)
	orders := repos.NewOrderRepo(db)
	svc := services.NewOrderService(orders)
	coffee := addProduct(t, prods, "Coffee", "2.00", 10)

	first := placeOrder(t, orders, domain.Cart{}.Set(coffee, 1))
	second := placeOrder(t, orders, domain.Cart{}.Set(coffee, 2))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)

	d, err := svc.Detail(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, d.Order.TotalPrice.Equal(dec("4")))
	require.Len(t, d.Items, 1)
	assert.Equal(t, "Coffee", d.Items[0].ProductName)

	_, err = svc.Detail(ctx, 999)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestOrderService_Update(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	prods := repos.NewProductRepo(db)
	orders := repos.NewOrderRepo(db)
	svc := services.NewOrderService(orders)
	coffee := addProduct(t, prods, "Coffee", "2.00", 10)
	o := placeOrder(t, orders, domain.Cart{}.Set(coffee, 1))

	ts := time.Date(2026, 10, 14, 17, 45, 0, 0, time.UTC)
	upd := services.OrderUpdate{ID: o.ID, Timestamp: ts, TotalPrice: dec("1.90"), Version: o.Version}

	t.Run("path and form ids differ", func(t *testing.T) {
		_, err := svc.Update(ctx, o.ID+1, upd)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("saves and bumps version", func(t *testing.T) {
		saved, err := svc.Update(ctx, o.ID, upd)
		require.NoError(t, err)
		assert.Equal(t, o.Version+1, saved.Version)

		got, err := svc.Get(ctx, o.ID)
		require.NoError(t, err)
		assert.True(t, got.Timestamp.Equal(ts))
		assert.True(t, got.TotalPrice.Equal(dec("1.90")))
	})

	t.Run("stale version is a conflict", func(t *testing.T) {
		_, err := svc.Update(ctx, o.ID, upd)
		assert.True(t, errors.Is(err, domain.ErrConflict), "err=%v", err)
		assert.False(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("deleted meanwhile is not found", func(t *testing.T) {
		_, err := svc.Delete(ctx, o.ID)
		require.NoError(t, err)
		_, err = svc.Update(ctx, o.ID, upd)
		assert.True(t, errors.Is(err, domain.ErrNotFound), "err=%v", err)
	})
}

func TestOrderService_DeleteUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	prods := repos.NewProductRepo(db)
	orders := repos.NewOrderRepo(db)
	svc := services.NewOrderService(orders)
	coffee := addProduct(t, prods, "Coffee", "2.00", 10)
	placeOrder(t, orders, domain.Cart{}.Set(coffee, 3))

	before := takeSnapshot(t, db)
	deleted, err := svc.Delete(ctx, 4242)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, before, takeSnapshot(t, db))
}
