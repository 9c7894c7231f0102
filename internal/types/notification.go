package types

import "time"

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
)

// Notification feeds the seller and admin dashboards.
type Notification struct {
	ID        int64                `json:"id"`
	Type      string               `json:"type"`
	Message   string               `json:"message,omitempty"`
	SellerID  *int64               `json:"seller_id,omitempty"`
	ProductID *int64               `json:"product_id,omitempty"`
	OrderID   *int64               `json:"order_id,omitempty"`
	SKU       string               `json:"sku,omitempty"`
	Size      string               `json:"size,omitempty"`
	Color     string               `json:"color,omitempty"`
	IsRead    bool                 `json:"is_read"`
	Priority  NotificationPriority `json:"priority"`
	CreatedAt time.Time            `json:"created_at"`
}

type NotificationUpdate struct {
	IsRead *bool `json:"is_read"`
}

type UnreadCount struct {
	UnreadCount int `json:"unread_count"`
}

// Seller is a row of GET /admin/sellers.
type Seller struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	BusinessName string `json:"business_name,omitempty"`
	IsApproved   bool   `json:"is_approved"`
}
