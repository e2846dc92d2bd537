package domain

import (
	"fmt"
	"time"
)

// RiderNotification is the fan-out artifact written once per
// (order, eligible rider) pair when an order becomes ready for pickup.
// Display fields are denormalized so the rider client needs no join.
// The dispatch engine only creates these; read/accept mutations belong
// to the rider-facing client.
type RiderNotification struct {
	ID              string
	RiderID         string
	OrderID         string
	RestaurantName  string
	CustomerAddress string
	OrderTotal      float64
	Message         string
	IsRead          bool
	IsAccepted      *bool
	CreatedAt       time.Time
}

// NewRiderNotification builds the pickup notification for one rider.
func NewRiderNotification(rider *Rider, order *Order) *RiderNotification {
	return &RiderNotification{
		RiderID:         rider.ID,
		OrderID:         order.ID,
		RestaurantName:  order.RestaurantName,
		CustomerAddress: order.DeliveryAddress,
		OrderTotal:      order.Total,
		Message: fmt.Sprintf("New delivery from %s to %s, order total %.2f",
			order.RestaurantName, order.DeliveryAddress, order.Total),
		CreatedAt: time.Now().UTC(),
	}
}
