package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is a resolved view of one cart line: the product as the catalog
// currently knows it plus the quantity held in the cart.
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartSnapshotItem is a line frozen at checkout submission time.
type CartSnapshotItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// CartSnapshot represents the full cart state at checkout time.
type CartSnapshot struct {
	Items      []CartSnapshotItem `json:"items"`
	Total      decimal.Decimal    `json:"total"`
	ItemCount  int                `json:"itemCount"`
	Currency   string             `json:"currency"`
	CapturedAt time.Time          `json:"capturedAt"`
}
