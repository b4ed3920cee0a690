package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinQty = 1
	MaxQty = 50
)

type Item struct {
	ID            int64           `json:"id"`
	VariantID     int64           `json:"variant_id"`
	Quantity      int             `json:"quantity"`
	ProductID     int64           `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Brand         string          `json:"brand,omitempty"`
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	SKU           string          `json:"sku"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	AddedAt       time.Time       `json:"added_at"`
}

type Line struct {
	ID        int64 `json:"id"`
	UserID    int64 `json:"user_id"`
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

type Summary struct {
	TotalItems    int             `json:"total_items"`
	TotalQuantity int             `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// InvalidItem is a cart row that can no longer be checked out as is.
type InvalidItem struct {
	ID            int64  `json:"id"`
	VariantID     int64  `json:"variant_id"`
	Quantity      int    `json:"quantity"`
	StockQuantity int    `json:"stock_quantity"`
	ProductName   string `json:"product_name"`
	Size          string `json:"size"`
	Color         string `json:"color"`
	Reason        string `json:"reason"`
}
