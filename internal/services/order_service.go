package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"cafeteria/internal/domain"
	"cafeteria/internal/repos"
)

type OrderService struct {
	Orders *repos.OrderRepo
}

func NewOrderService(orders *repos.OrderRepo) *OrderService {
	return &OrderService{Orders: orders}
}

type OrderDetail struct {
	Order domain.Order
	Items []domain.OrderItem
}

// OrderUpdate is everything an edit form may change.
type OrderUpdate struct {
	ID         domain.OrderID
	Timestamp  time.Time
	TotalPrice decimal.Decimal
	Version    int64
}

func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.Orders.List(ctx)
}

func (s *OrderService) Get(ctx context.Context, id domain.OrderID) (domain.Order, error) {
	return s.Orders.Get(ctx, id)
}

func (s *OrderService) Detail(ctx context.Context, id domain.OrderID) (OrderDetail, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return OrderDetail{}, err
	}
	items, err := s.Orders.Items(ctx, id)
	if err != nil {
		return OrderDetail{}, err
	}
	return OrderDetail{Order: o, Items: items}, nil
}

// Update saves an edit. The id in the path must match the one in the form.
// When the stored row moved on since the form was loaded, a vanished order
// reports ErrNotFound and anything else stays ErrConflict.
func (s *OrderService) Update(ctx context.Context, pathID domain.OrderID, u OrderUpdate) (domain.Order, error) {
	if pathID != u.ID {
		return domain.Order{}, fmt.Errorf("order %d vs form %d: %w", pathID, u.ID, domain.ErrNotFound)
	}
	o, err := s.Orders.Update(ctx, domain.Order{
		ID:         u.ID,
		Timestamp:  u.Timestamp,
		TotalPrice: u.TotalPrice,
		Version:    u.Version,
	})
	if errors.Is(err, domain.ErrConflict) {
		exists, xerr := s.Orders.Exists(ctx, u.ID)
		if xerr != nil {
			return domain.Order{}, xerr
		}
		if !exists {
			return domain.Order{}, fmt.Errorf("order %d: %w", u.ID, domain.ErrNotFound)
		}
	}
	return o, err
}

// Delete removes the order if it exists and reports whether it did.
// Deleting an unknown id is not an error.
func (s *OrderService) Delete(ctx context.Context, id domain.OrderID) (bool, error) {
	return s.Orders.Delete(ctx, id)
}
