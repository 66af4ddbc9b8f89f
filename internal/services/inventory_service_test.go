package services_test

import (
	"context"
	"testing"

	"cafeteria/internal/repos"
	"cafeteria/internal/services"
)

func TestInventoryService_CheckAvailability(t *testing.T) {
	db := memdb(t)
	prods := repos.NewProductRepo(db)
	svc := services.NewInventoryService(prods, 5)
	ctx := context.Background()

	plenty := addProduct(t, prods, "Coffee", "2.00", 6)
	few := addProduct(t, prods, "Bagel", "1.20", 2)
	none := addProduct(t, prods, "Juice", "2.50", 0)

	cases := []struct {
		name   string
		id     int64
		status string
		qty    int
	}{
		{"in stock", int64(plenty), "IN_STOCK", 6},
		{"low stock", int64(few), "LOW_STOCK", 2},
		{"sold out", int64(none), "OUT_OF_STOCK", 0},
		{"unknown product", 999, "OUT_OF_STOCK", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := svc.CheckAvailability(ctx, domainID(tc.id))
			if err != nil {
				t.Fatal(err)
			}
			if a.Status != tc.status || a.Qty != tc.qty {
				t.Fatalf("want %s(%d), got %+v", tc.status, tc.qty, a)
			}
		})
	}
}
