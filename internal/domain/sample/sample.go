package sample

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Sample struct {
	ID             int64     `json:"id"`
	ProductID      int64     `json:"product_id"`
	ProductName    string    `json:"product_name,omitempty"`
	WholesalerID   int64     `json:"wholesaler_id"`
	WholesalerName string    `json:"wholesaler_name,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	FileURL        string    `json:"file_url"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
