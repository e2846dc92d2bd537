package interfaces

import (
	"context"
	"time"

	"delivery-marketplace/internal/domain"
)

// OrderFilter narrows List. Zero values mean "no filter".
type OrderFilter struct {
	Status       domain.Status
	RestaurantID string
	RiderID      string
	Limit        int
	Offset       int
}

// RiderFilter narrows rider listing for the REST surface.
type RiderFilter struct {
	Approval domain.ApprovalStatus
	IsOnline *bool
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)

	// UpdateStatus performs the conditional write
	// UPDATE ... WHERE id = $id AND status = $expected, stamping exactly
	// the timestamp column that corresponds to target and persisting the
	// payload fields in the same statement. Losing the race returns
	// domain.ErrStatusConflict; a missing order returns domain.ErrOrderNotFound.
	UpdateStatus(ctx context.Context, id string, expected, target domain.Status, data domain.TransitionData) error

	// AssignRider moves the order to assigned and sets the rider in one
	// conditional write that also requires rider_id to still be unset, so
	// two concurrent assignments cannot both win.
	AssignRider(ctx context.Context, id, riderID string, at time.Time) error
}

type RiderRepository interface {
	Create(ctx context.Context, rider *domain.Rider) error
	GetByID(ctx context.Context, id string) (*domain.Rider, error)
	List(ctx context.Context, filter RiderFilter) ([]*domain.Rider, error)

	// ListAvailable returns riders with approval=approved and
	// is_online=true, the candidate set for dispatch.
	ListAvailable(ctx context.Context) ([]*domain.Rider, error)

	SetOnline(ctx context.Context, id string, online bool) error
}

type NotificationRepository interface {
	// Create inserts the fan-out row. A duplicate (order, rider) pair is
	// not an error: the row already exists and the rider was already told.
	Create(ctx context.Context, n *domain.RiderNotification) error

	ListByRider(ctx context.Context, riderID string) ([]*domain.RiderNotification, error)
	CountForOrder(ctx context.Context, orderID string) (int, error)
}
