package domain

import "github.com/shopspring/decimal"

type CartLine struct {
	ProductID ProductID `db:"product_id" json:"product_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
}

// Cart is the set of products picked for an order that has not been
// committed yet. It is a value: Set returns a new Cart and leaves the
// receiver untouched.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

func (c Cart) IsEmpty() bool { return len(c.Lines) == 0 }

func (c Cart) Len() int { return len(c.Lines) }

func (c Cart) Quantity(id ProductID) (int, bool) {
	for _, l := range c.Lines {
		if l.ProductID == id {
			return l.Quantity, true
		}
	}
	return 0, false
}

// Set overwrites the quantity for id, appending a new line when the product
// is not in the cart yet.
func (c Cart) Set(id ProductID, qty int) Cart {
	lines := make([]CartLine, 0, len(c.Lines)+1)
	found := false
	for _, l := range c.Lines {
		if l.ProductID == id {
			l.Quantity = qty
			found = true
		}
		lines = append(lines, l)
	}
	if !found {
		lines = append(lines, CartLine{ProductID: id, Quantity: qty})
	}
	return Cart{Lines: lines}
}

func (c Cart) ProductIDs() []ProductID {
	ids := make([]ProductID, 0, len(c.Lines))
	for _, l := range c.Lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}

// Total sums unit price × quantity over every line whose product lookup
// succeeds. Lines with unknown products contribute nothing.
func (c Cart) Total(lookup func(ProductID) (Product, bool)) decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		p, ok := lookup(l.ProductID)
		if !ok {
			continue
		}
		total = total.Add(LineTotal(p.Price, l.Quantity))
	}
	return total
}

func LineTotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}
