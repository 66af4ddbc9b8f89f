package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type ProductID int64

func (id ProductID) String() string { return strconv.FormatInt(int64(id), 10) }

type OrderID int64

func (id OrderID) String() string { return strconv.FormatInt(int64(id), 10) }

type Product struct {
	ID       ProductID       `db:"id"`
	Name     string          `db:"name"`
	Price    decimal.Decimal `db:"price"`
	Quantity int             `db:"quantity"` // stock on hand
}

// InStock reports whether the product can still be sold.
func (p Product) InStock() bool { return p.Quantity > 0 }

type Order struct {
	ID         OrderID
	Timestamp  time.Time
	TotalPrice decimal.Decimal
	Version    int64 // bumped on every update; edit forms echo it back
}

type OrderItem struct {
	ID          int64     `db:"id"`
	OrderID     OrderID   `db:"order_id"`
	ProductID   ProductID `db:"product_id"`
	ProductName string    `db:"product_name"`
	Quantity    int       `db:"quantity"`
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty"`
}
