package handlers

import (
	"context"

	"github.com/jmoiron/sqlx"

	"cafeteria/internal/config"
	"cafeteria/internal/domain"
	"cafeteria/internal/repos"
	"cafeteria/internal/services"
)

// CartStore parks the cart being built between requests, keyed by session id.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (domain.Cart, error)
	Save(ctx context.Context, sessionID string, cart domain.Cart) error
	Clear(ctx context.Context, sessionID string) error
}

type Deps struct {
	OrderHandler     *OrderHandler
	InventoryHandler *InventoryHandler
}

// NewDeps wires repos and services. A nil carts falls back to the SQLite
// cart table.
func NewDeps(db *sqlx.DB, cfg config.Config, carts CartStore) *Deps {
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	if carts == nil {
		carts = repos.NewCartRepo(db)
	}

	flow := services.NewOrderWorkflow(prodRepo, orderRepo)
	orderSvc := services.NewOrderService(orderRepo)
	invSvc := services.NewInventoryService(prodRepo, cfg.LowStockThreshold)

	return &Deps{
		OrderHandler:     &OrderHandler{Flow: flow, Orders: orderSvc, Carts: carts},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
	}
}
