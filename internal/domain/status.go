package domain

import "time"

type ServiceType string

const (
	ServiceDineIn       ServiceType = "dine_in"
	ServiceTakeout      ServiceType = "takeout"
	ServiceHomeDelivery ServiceType = "home_delivery"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ValidStatus reports whether s is one of the known order statuses. The
// admin status control is a bounded select and any status is reachable from
// any other, so this is the only check applied on updates.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// StatusLog represents a log entry for order status changes.
type StatusLog struct {
	ID        int
	OrderID   string
	Status    Status
	ChangedBy string
	ChangedAt time.Time
	Notes     *string
}
