package models

import "github.com/shopspring/decimal"

// CheckoutItem is the minimal per-line payload forwarded to the payment
// session endpoint.
type CheckoutItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	ImgURL    string          `json:"imgUrl"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// OrderItem is the payload sent to the order-creation endpoint.
type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CheckoutItemsFromCart maps cart lines to the payment session payload.
func CheckoutItemsFromCart(cart Cart) []CheckoutItem {
	items := make([]CheckoutItem, 0, len(cart))
	for _, line := range cart {
		items = append(items, CheckoutItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			ImgURL:    line.ImgURL,
			Price:     line.Price,
			Quantity:  line.Quantity,
		})
	}
	return items
}

// OrderItemsFromCart maps cart lines to the order-creation payload,
// preserving the cart's display order.
func OrderItemsFromCart(cart Cart) []OrderItem {
	items := make([]OrderItem, 0, len(cart))
	for _, line := range cart {
		items = append(items, OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	return items
}
