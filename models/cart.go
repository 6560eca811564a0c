package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices and totals go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// ErrStockExceeded is returned when a quantity change would push a line item
// past its stock ceiling. The cart is left untouched in that case.
var ErrStockExceeded = errors.New("requested quantity exceeds available stock")

// CartLineItem is one product entry in the cart. Stock is the maximum
// quantity purchasable for the product; the authoritative check lives in the
// order service, this one only guards the storefront flow.
type CartLineItem struct {
	ProductID string          `json:"productId" binding:"required"`
	Name      string          `json:"name" binding:"required"`
	ImgURL    string          `json:"imgUrl"`
	Price     decimal.Decimal `json:"price" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	Stock     int             `json:"stock" binding:"required,min=1"`
}

// Cart is the ordered sequence of line items as shown on the cart page.
// Insertion order is preserved and ProductID is unique within the sequence.
type Cart []CartLineItem

// Total is the derived cart total, sum of price times quantity per line.
// Recomputed from the items on every read, never persisted.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Find returns the index of the line item with the given product id.
func (c Cart) Find(productID string) (int, bool) {
	for i, item := range c {
		if item.ProductID == productID {
			return i, true
		}
	}
	return 0, false
}

// CheckQuantity validates a prospective quantity against the item's stock
// ceiling. Quantities above the ceiling are rejected with ErrStockExceeded
// and the current quantity; anything below one comes back clamped to one.
func (item CartLineItem) CheckQuantity(quantity int) (int, error) {
	if quantity > item.Stock {
		return item.Quantity, ErrStockExceeded
	}
	if quantity < 1 {
		quantity = 1
	}
	return quantity, nil
}
