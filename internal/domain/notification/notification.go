package notification

import "time"

type Type string

const (
	TypeProductUpload   Type = "product_upload"
	TypeProductApproved Type = "product_approved"
	TypeProductRejected Type = "product_rejected"
	TypeSampleUpload    Type = "sample_upload"
	TypeSampleApproved  Type = "sample_approved"
	TypeSampleRejected  Type = "sample_rejected"
	TypeOrderPlaced     Type = "order_placed"
	TypeOrderUpdated    Type = "order_updated"
)

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	RelatedID *int64    `json:"related_id,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`

	// set on the admin listing only
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

type Counts struct {
	Total  int          `json:"total"`
	Unread int          `json:"unread"`
	ByType map[Type]int `json:"by_type"`
}
