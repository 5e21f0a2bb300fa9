package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusReady     OrderStatus = "ready"
	StatusPickedUp  OrderStatus = "picked_up"
	StatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusReady, StatusPickedUp, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the kitchen workflow has finished with the order.
// Leaving a terminal status requires an explicit reopen.
func (s OrderStatus) Terminal() bool {
	return s == StatusPickedUp || s == StatusCancelled
}

// kitchenTransitions is the adjacency list driven by TransitionStatus:
// one step forward, pending to cancelled, and one step back for corrections.
var kitchenTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusReady, StatusPending},
	StatusReady:     {StatusPickedUp, StatusConfirmed},
}

var reopenTargets = []OrderStatus{StatusPending, StatusReady}

func CanTransition(from, to OrderStatus) bool {
	for _, next := range kitchenTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanReopen reports whether an administrator may move a finished order back
// into the workflow.
func CanReopen(from, to OrderStatus) bool {
	if !from.Terminal() {
		return false
	}
	for _, t := range reopenTargets {
		if t == to {
			return true
		}
	}
	return false
}

// OrderItem is the snapshot of a food item taken when the order was placed.
type OrderItem struct {
	FoodID    uint64          `json:"foodId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID          uint64                         `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      string                         `json:"userId" gorm:"type:varchar(64);not null;index"`
	UserName    string                         `json:"userName" gorm:"type:varchar(128)"`
	ServiceDate time.Time                      `json:"serviceDate" gorm:"type:date;not null;index"`
	Items       datatypes.JSONSlice[OrderItem] `json:"items" gorm:"not null"`
	TotalAmount decimal.Decimal                `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	Status      OrderStatus                    `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`
	Note        string                         `json:"note,omitempty" gorm:"type:varchar(500)"`
	PickupCode  string                         `json:"pickupCode" gorm:"type:varchar(16);not null;uniqueIndex"`
	// ActiveKey holds "<user>|<date>" while the order occupies its user's slot
	// for the day and NULL once cancelled. The unique index on it is what keeps
	// a user to one live order per service date under concurrent writers.
	ActiveKey *string   `json:"-" gorm:"type:varchar(96);uniqueIndex"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (o *Order) IsActive() bool {
	return o.Status != StatusCancelled
}

func (o *Order) BelongsTo(userID string) bool {
	return o.UserID == userID
}

// ActiveKeyFor returns the slot key an order would hold for the given status.
func ActiveKeyFor(userID string, serviceDate time.Time, status OrderStatus) *string {
	if status == StatusCancelled {
		return nil
	}
	k := userID + "|" + serviceDate.Format(DateLayout)
	return &k
}

// TotalOf sums unitPrice * quantity over the snapshot.
func TotalOf(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// InitialStatusPolicy decides the status a new order starts in. Pre-orders
// are placed ahead of the day and may start out already confirmed.
type InitialStatusPolicy struct {
	Standard OrderStatus
	PreOrder OrderStatus
}

func DefaultInitialStatusPolicy() InitialStatusPolicy {
	return InitialStatusPolicy{Standard: StatusPending, PreOrder: StatusConfirmed}
}

func (p InitialStatusPolicy) For(preOrder bool) OrderStatus {
	if preOrder {
		return p.PreOrder
	}
	return p.Standard
}

func (p InitialStatusPolicy) Validate() error {
	for _, s := range []OrderStatus{p.Standard, p.PreOrder} {
		if s != StatusPending && s != StatusConfirmed {
			return fmt.Errorf("%w: initial status must be pending or confirmed, got %q", ErrInvalidInput, s)
		}
	}
	return nil
}
