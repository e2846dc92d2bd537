package interfaces

import (
	"context"

	"delivery-marketplace/internal/domain"
)

type CreateOrderCommand struct {
	RestaurantID    string
	RestaurantName  string
	Zone            string
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	DeliveryAddress string
	RestaurantLat   float64
	RestaurantLng   float64
	CustomerLat     float64
	CustomerLng     float64
	Items           []CreateOrderItemCommand
	Subtotal        float64
	DeliveryFee     float64
	ServiceFee      float64
	Tax             float64
	Tip             float64
	Total           float64
	PaymentMethod   string
}

type CreateOrderItemCommand struct {
	Name      string
	UnitPrice float64
	Quantity  int
}

// TransitionCommand carries a requested status move plus its
// transition-specific payload.
type TransitionCommand struct {
	Target          domain.Status
	PrepTimeMinutes *int
	RejectionReason *string
	RiderID         *string
	ChangedBy       string
}

// TransitionResult is what a successful status update reports back to the
// operator: the updated order and, when the move reached ready, the
// dispatch outcome.
type TransitionResult struct {
	Order    *domain.Order
	Dispatch *DispatchResult
}

type OrderService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, cmd TransitionCommand) (*TransitionResult, error)
	AssignRider(ctx context.Context, orderID, riderID string) (*domain.Order, error)
}

// DispatchOutcome is the aggregate, user-facing result of a fan-out
// attempt. "No riders available" and "no riders in zone" are distinct
// because they imply different operator follow-up.
type DispatchOutcome string

const (
	DispatchNotified          DispatchOutcome = "notified"
	DispatchPartialFailure    DispatchOutcome = "partial_failure"
	DispatchAllFailed         DispatchOutcome = "all_failed"
	DispatchNoRidersAvailable DispatchOutcome = "no_riders_available"
	DispatchNoRidersInZone    DispatchOutcome = "no_riders_in_zone"
)

type DispatchResult struct {
	Outcome  DispatchOutcome
	Eligible int
	Notified int
	Failed   int
}

type DispatchService interface {
	// Dispatch fans out one notification per zone-eligible rider for an
	// order that reached ready. A rider-directory failure aborts the whole
	// attempt; per-rider write failures are isolated and counted.
	Dispatch(ctx context.Context, order *domain.Order) (*DispatchResult, error)
}

type RiderService interface {
	RegisterRider(ctx context.Context, name, phone, zone string) (*domain.Rider, error)
	ListRiders(ctx context.Context, filter RiderFilter) ([]*domain.Rider, error)
	SetOnline(ctx context.Context, riderID string, online bool) (*domain.Rider, error)
	ListNotifications(ctx context.Context, riderID string) ([]*domain.RiderNotification, error)
	CreateNotification(ctx context.Context, n *domain.RiderNotification) error
}
