package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"cafeteria/internal/domain"
	"cafeteria/internal/repos"
)

const MsgInsufficientStock = "There are not enough products in stock."

// OrderWorkflow drives the creation of one order: pick products into a cart,
// then commit the cart as an order.
type OrderWorkflow struct {
	Prods  *repos.ProductRepo
	Orders *repos.OrderRepo
	Now    func() time.Time
}

func NewOrderWorkflow(prods *repos.ProductRepo, orders *repos.OrderRepo) *OrderWorkflow {
	return &OrderWorkflow{Prods: prods, Orders: orders, Now: time.Now}
}

type CartLineView struct {
	ProductID domain.ProductID
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Subtotal  decimal.Decimal
}

type CartView struct {
	Cart     domain.Cart
	Lines    []CartLineView
	Products []domain.Product // what can still be picked
	Total    decimal.Decimal
	Message  string
}

// StartSession hands out the empty cart a new order starts from.
func (w *OrderWorkflow) StartSession() domain.Cart { return domain.Cart{} }

// AddToCart sets the cart line for productID to qty. Asking for more than is
// in stock leaves the cart as it was and fills CartView.Message instead.
func (w *OrderWorkflow) AddToCart(ctx context.Context, cart domain.Cart, productID domain.ProductID, qty int) (CartView, error) {
	if qty < 1 {
		return CartView{}, fmt.Errorf("quantity %d: %w", qty, domain.ErrInvalidInput)
	}
	inStock, err := w.Prods.ListInStock(ctx)
	if err != nil {
		return CartView{}, err
	}
	var picked *domain.Product
	for i := range inStock {
		if inStock[i].ID == productID {
			picked = &inStock[i]
			break
		}
	}
	if picked == nil {
		return CartView{}, fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
	}

	msg := ""
	if qty > picked.Quantity {
		msg = MsgInsufficientStock
	} else {
		cart = cart.Set(productID, qty)
	}
	v, err := w.view(ctx, cart, inStock)
	if err != nil {
		return CartView{}, err
	}
	v.Message = msg
	return v, nil
}

// View prices the cart without changing it.
func (w *OrderWorkflow) View(ctx context.Context, cart domain.Cart) (CartView, error) {
	inStock, err := w.Prods.ListInStock(ctx)
	if err != nil {
		return CartView{}, err
	}
	return w.view(ctx, cart, inStock)
}

// view re-reads prices for every line on each call so totals follow the
// catalog. Lines whose product is gone are left out.
func (w *OrderWorkflow) view(ctx context.Context, cart domain.Cart, inStock []domain.Product) (CartView, error) {
	prices, err := w.Prods.ByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return CartView{}, err
	}
	lookup := func(id domain.ProductID) (domain.Product, bool) {
		p, ok := prices[id]
		return p, ok
	}
	lines := make([]CartLineView, 0, cart.Len())
	for _, l := range cart.Lines {
		p, ok := lookup(l.ProductID)
		if !ok {
			continue
		}
		lines = append(lines, CartLineView{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  l.Quantity,
			Subtotal:  domain.LineTotal(p.Price, l.Quantity),
		})
	}
	return CartView{
		Cart:     cart,
		Lines:    lines,
		Products: inStock,
		Total:    cart.Total(lookup),
	}, nil
}

// Commit stores the cart as an order and takes the stock. An empty cart is a
// no-op and yields a zero OrderID. Missing products (ErrNotFound) or a stock
// shortfall (ErrInsufficientStock) abort without writing anything.
func (w *OrderWorkflow) Commit(ctx context.Context, cart domain.Cart) (domain.OrderID, error) {
	if cart.IsEmpty() {
		return 0, nil
	}
	o, err := w.Orders.Place(ctx, w.Now(), cart)
	if err != nil {
		return 0, err
	}
	return o.ID, nil
}
