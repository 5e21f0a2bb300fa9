package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderCancelled     = "order.cancelled"
	EventOrderStatusChanged = "order.status_changed"
)

type OrderPlacedEvent struct {
	OrderID     uint64          `json:"orderId"`
	UserID      string          `json:"userId"`
	ServiceDate string          `json:"serviceDate"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      OrderStatus     `json:"status"`
	PickupCode  string          `json:"pickupCode"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type OrderStatusChangedEvent struct {
	OrderID    uint64      `json:"orderId"`
	UserID     string      `json:"userId"`
	From       OrderStatus `json:"from"`
	To         OrderStatus `json:"to"`
	ChangedBy  string      `json:"changedBy"`
	ChangedAt  time.Time   `json:"changedAt"`
	PickupCode string      `json:"pickupCode"`
}
