package models

import (
	"strings"
	"time"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusConfirmed OrderStatus = "Confirmed"
	StatusShipped   OrderStatus = "Shipped"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
)

// OrderStatuses lists every known status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled,
}

// ParseOrderStatus matches s against the known literals exactly.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range OrderStatuses {
		if string(st) == strings.TrimSpace(s) {
			return st, true
		}
	}
	return "", false
}

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
}

// CanTransitionTo reports whether the strict lifecycle permits moving from s
// to next. Re-applying the current status is always allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a user's request for a quantity of one recipe. UnitPrice is the
// recipe price at the moment the order was placed.
type Order struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"not null;index" json:"user_id"`
	RecipeID  uint        `gorm:"not null;index" json:"recipe_id"`
	Quantity  int         `gorm:"not null" json:"quantity"`
	UnitPrice float64     `gorm:"not null" json:"unit_price"`
	Status    OrderStatus `gorm:"size:20;not null;default:Pending;index" json:"status"`
	OrderedAt time.Time   `gorm:"not null;index" json:"ordered_at"`
	UpdatedAt time.Time   `json:"-"`
	Recipe    *Recipe     `json:"-"`
}
