package services

import (
	"context"
	"errors"

	"cafeteria/internal/domain"
	"cafeteria/internal/repos"
)

type InventoryService struct {
	Prods    *repos.ProductRepo
	LowStock int
}

func NewInventoryService(prods *repos.ProductRepo, lowStock int) *InventoryService {
	if lowStock < 1 {
		lowStock = 5
	}
	return &InventoryService{Prods: prods, LowStock: lowStock}
}

// CheckAvailability converts qty → IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *InventoryService) CheckAvailability(ctx context.Context, id domain.ProductID) (domain.Availability, error) {
	p, err := s.Prods.Get(ctx, id)
	if err != nil {
		// Unknown products are simply not available.
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Availability{Status: "OUT_OF_STOCK", Qty: 0}, nil
		}
		return domain.Availability{}, err
	}

	status := "OUT_OF_STOCK"
	switch {
	case p.Quantity >= s.LowStock:
		status = "IN_STOCK"
	case p.Quantity > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{Status: status, Qty: p.Quantity}, nil
}
