package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Product struct {
	ID           int64           `json:"id"`
	WholesalerID int64           `json:"wholesaler_id"`
	CategoryID   *int64          `json:"category_id,omitempty"`
	Category     string          `json:"category,omitempty"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description,omitempty"`
	Brand        string          `json:"brand,omitempty"`
	Material     string          `json:"material,omitempty"`
	Season       string          `json:"season,omitempty"`
	Gender       string          `json:"gender,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Images       []string        `json:"images"`
	Status       Status          `json:"status"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Variants     []Variant       `json:"variants,omitempty"`
}

type Variant struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"product_id"`
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	SKU           string          `json:"sku"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type Analytics struct {
	TotalProducts int `json:"total_products"`
	Pending       int `json:"pending"`
	Approved      int `json:"approved"`
	Rejected      int `json:"rejected"`
	TotalStock    int `json:"total_stock"`
}
