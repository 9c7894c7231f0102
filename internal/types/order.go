package types

import (
	"fmt"
	"time"
)

// ReturnStatus tracks a per-item return. Transitions are owned by the backend;
// the client only requests them and displays the current state.
type ReturnStatus string

const (
	ReturnNone      ReturnStatus = ""
	ReturnRequested ReturnStatus = "ReturnRequested"
	ReturnAccepted  ReturnStatus = "ReturnAccepted"
	ReturnRejected  ReturnStatus = "ReturnRejected"
	ReturnInTransit ReturnStatus = "ReturnInTransit"
	ReturnReceived  ReturnStatus = "ReturnReceived"
	RefundProcessed ReturnStatus = "RefundProcessed"
)

// A cancelled request goes back to ReturnNone.
var returnTransitions = map[ReturnStatus][]ReturnStatus{
	ReturnNone:      {ReturnRequested},
	ReturnRequested: {ReturnAccepted, ReturnRejected, ReturnNone},
	ReturnAccepted:  {ReturnInTransit},
	ReturnInTransit: {ReturnReceived},
	ReturnReceived:  {RefundProcessed},
}

// CanTransition reports whether the backend state machine allows from -> to.
func CanTransition(from, to ReturnStatus) bool {
	for _, next := range returnTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s ReturnStatus) Terminal() bool {
	return len(returnTransitions[s]) == 0
}

func (s ReturnStatus) String() string {
	if s == ReturnNone {
		return "None"
	}
	return string(s)
}

// ParseReturnStatus accepts the wire names plus "None".
func ParseReturnStatus(s string) (ReturnStatus, error) {
	if s == "" || s == "None" {
		return ReturnNone, nil
	}
	st := ReturnStatus(s)
	if _, ok := returnTransitions[st]; ok || st == ReturnRejected || st == RefundProcessed {
		return st, nil
	}
	return ReturnNone, fmt.Errorf("unknown return status %q", s)
}

type FulfillmentStatus string

const (
	StatusPending   FulfillmentStatus = "Pending"
	StatusPaid      FulfillmentStatus = "Paid"
	StatusShipped   FulfillmentStatus = "Shipped"
	StatusDelivered FulfillmentStatus = "Delivered"
	StatusCancelled FulfillmentStatus = "Cancelled"
)

type OrderItem struct {
	ID           int64             `json:"id"`
	ProductID    int64             `json:"product_id"`
	Quantity     int               `json:"quantity"`
	Price        float64           `json:"price"`
	Status       FulfillmentStatus `json:"status,omitempty"`
	ReturnStatus ReturnStatus      `json:"return_status,omitempty"`
	Size         *string           `json:"size,omitempty"`
	Color        *string           `json:"color,omitempty"`
}

type Order struct {
	ID          int64             `json:"id"`
	OrderNumber string            `json:"order_number,omitempty"`
	UserID      int64             `json:"user_id"`
	TotalPrice  float64           `json:"total_price"`
	Status      FulfillmentStatus `json:"status"`
	AddressID   *int64            `json:"address_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	Items       []OrderItem       `json:"order_items"`
}

type Return struct {
	ID          int64        `json:"id"`
	OrderID     int64        `json:"order_id"`
	OrderItemID int64        `json:"order_item_id"`
	ProductID   int64        `json:"product_id"`
	Reason      string       `json:"reason,omitempty"`
	Status      ReturnStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
}

type ReturnRequest struct {
	Reason string `json:"reason"`
}
