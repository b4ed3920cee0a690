package wishlist

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID           int64           `json:"id,omitempty"`
	ProductID    int64           `json:"product_id"`
	Name         string          `json:"name"`
	Brand        string          `json:"brand,omitempty"`
	Gender       string          `json:"gender,omitempty"`
	Price        decimal.Decimal `json:"price"`
	MinPrice     decimal.Decimal `json:"min_price"`
	MaxPrice     decimal.Decimal `json:"max_price"`
	VariantCount int             `json:"variant_count"`
	AddedAt      time.Time       `json:"added_at"`
}

type Entry struct {
	ID        int64 `json:"id"`
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
	Exists    bool  `json:"exists"`
}
