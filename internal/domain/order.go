package domain

import (
	"fmt"
	"strings"
	"time"
)

// Order is the marketplace order entity. Customer, restaurant and money
// fields are snapshotted at creation and never change; only the status
// machine fields mutate afterwards, and only through the lifecycle service.
// Orders are never deleted (financial record).
type Order struct {
	ID             string
	RestaurantID   string
	RestaurantName string

	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	DeliveryAddress string

	// Geocoordinates are best-effort; creation applies defaults when the
	// caller could not geocode.
	RestaurantLat float64
	RestaurantLng float64
	CustomerLat   float64
	CustomerLng   float64

	// Zone is the free-text dispatch label snapshotted from the
	// restaurant's registration, not a validated geography.
	Zone string

	Items []OrderItem

	// Money breakdown is advisory: the server records what the checkout
	// flow computed and does not recompute Total.
	Subtotal    float64
	DeliveryFee float64
	ServiceFee  float64
	Tax         float64
	Tip         float64
	Total       float64

	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus

	Status          Status
	RiderID         *string
	PrepTimeMinutes *int
	RejectionReason *string

	CreatedAt       time.Time
	AcceptedAt      *time.Time
	RejectedAt      *time.Time
	RiderAssignedAt *time.Time
	PickedUpAt      *time.Time
	DeliveredAt     *time.Time
}

type OrderItem struct {
	ID       string
	OrderID  string
	Name     string
	UnitPrice float64
	Quantity int
}

// NewOrder builds an order in pending with creation-time validation applied.
func NewOrder(restaurantID, restaurantName, zone string, customerName, customerPhone, customerEmail, deliveryAddress string, items []OrderItem) (*Order, error) {
	order := &Order{
		RestaurantID:    restaurantID,
		RestaurantName:  restaurantName,
		Zone:            zone,
		CustomerName:    customerName,
		CustomerPhone:   customerPhone,
		CustomerEmail:   customerEmail,
		DeliveryAddress: deliveryAddress,
		Items:           items,
		PaymentStatus:   PaymentStatusPending,
		Status:          StatusPending,
		CreatedAt:       time.Now().UTC(),
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate applies creation-time business rules.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.RestaurantID) == "" {
		return fmt.Errorf("%w: restaurant id is required", ErrValidation)
	}
	if strings.TrimSpace(o.CustomerName) == "" {
		return fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	if strings.TrimSpace(o.DeliveryAddress) == "" {
		return fmt.Errorf("%w: delivery address is required", ErrValidation)
	}
	if len(o.Items) < 1 {
		return fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	for i, item := range o.Items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("%w: items[%d].name is required", ErrValidation, i)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("%w: items[%d].quantity must be at least 1", ErrValidation, i)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("%w: items[%d].unit_price must not be negative", ErrValidation, i)
		}
	}
	return nil
}

// Subtotal of the item list. The stored Subtotal/Total stay advisory;
// this exists for callers that want the recomputed value.
func (o *Order) ItemsSubtotal() float64 {
	total := 0.0
	for _, item := range o.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// TransitionData carries the payload specific to a transition target.
type TransitionData struct {
	PrepTimeMinutes *int
	RejectionReason *string
	RiderID         *string
	At              time.Time
}

// TransitionTo moves the order along the state machine, stamping the
// timestamp that corresponds to the target status. Timestamps are
// append-only: a stamp already set is never overwritten or cleared.
func (o *Order) TransitionTo(target Status, data TransitionData) error {
	if !IsValidStatus(target) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, target)
	}
	if !CanTransition(o.Status, target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, o.Status, target)
	}

	at := data.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	switch target {
	case StatusAccepted:
		if data.PrepTimeMinutes == nil || *data.PrepTimeMinutes <= 0 {
			return fmt.Errorf("%w: prep time is required to accept an order", ErrValidation)
		}
		o.PrepTimeMinutes = data.PrepTimeMinutes
		if o.AcceptedAt == nil {
			o.AcceptedAt = &at
		}
	case StatusRejected:
		if data.RejectionReason == nil || strings.TrimSpace(*data.RejectionReason) == "" {
			return fmt.Errorf("%w: rejection reason is required", ErrValidation)
		}
		reason := strings.TrimSpace(*data.RejectionReason)
		o.RejectionReason = &reason
		if o.RejectedAt == nil {
			o.RejectedAt = &at
		}
	case StatusAssigned:
		if data.RiderID == nil || strings.TrimSpace(*data.RiderID) == "" {
			return fmt.Errorf("%w: rider id is required to assign an order", ErrValidation)
		}
		o.RiderID = data.RiderID
		if o.RiderAssignedAt == nil {
			o.RiderAssignedAt = &at
		}
	case StatusPickedUp:
		if o.PickedUpAt == nil {
			o.PickedUpAt = &at
		}
	case StatusDelivered:
		if o.DeliveredAt == nil {
			o.DeliveredAt = &at
		}
	}

	o.Status = target
	return nil
}
