package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var Statuses = []Status{
	StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

type Order struct {
	ID              int64           `json:"id"`
	RetailerID      int64           `json:"retailer_id"`
	WholesalerID    int64           `json:"wholesaler_id"`
	ProductID       int64           `json:"product_id"`
	ProductName     string          `json:"product_name,omitempty"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Status          Status          `json:"status"`
	ShippingAddress string          `json:"shipping_address"`
	OrderNotes      string          `json:"order_notes"`
	RetailerName    string          `json:"retailer_name,omitempty"`
	WholesalerName  string          `json:"wholesaler_name,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type Analytics struct {
	TotalOrders int              `json:"total_orders"`
	Revenue     *decimal.Decimal `json:"total_revenue,omitempty"`
	Spent       *decimal.Decimal `json:"total_spent,omitempty"`
	ByStatus    map[Status]int   `json:"by_status"`
}
