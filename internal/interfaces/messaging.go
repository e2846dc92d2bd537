package interfaces

import (
	"context"
	"time"

	"delivery-marketplace/internal/domain"
)

// StatusUpdateMessage is published on the status topic exchange after
// every successful transition.
type StatusUpdateMessage struct {
	OrderID   string        `json:"order_id"`
	OldStatus domain.Status `json:"old_status"`
	NewStatus domain.Status `json:"new_status"`
	ChangedBy string        `json:"changed_by"`
	Timestamp time.Time     `json:"timestamp"`
}

// RiderNotificationMessage mirrors a persisted fan-out row on the rider
// fanout exchange, the push counterpart of the polled inbox.
type RiderNotificationMessage struct {
	NotificationID  string    `json:"notification_id"`
	RiderID         string    `json:"rider_id"`
	OrderID         string    `json:"order_id"`
	RestaurantName  string    `json:"restaurant_name"`
	CustomerAddress string    `json:"customer_address"`
	OrderTotal      float64   `json:"order_total"`
	Message         string    `json:"message"`
	CreatedAt       time.Time `json:"created_at"`
}

type MessagePublisher interface {
	PublishStatusUpdate(ctx context.Context, msg StatusUpdateMessage) error
	PublishRiderNotification(ctx context.Context, msg RiderNotificationMessage) error
}

type RiderNotificationHandler func(ctx context.Context, body []byte) error

type MessageConsumer interface {
	ConsumeRiderNotifications(ctx context.Context, handler RiderNotificationHandler) error
}
