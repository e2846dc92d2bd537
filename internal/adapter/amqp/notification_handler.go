package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"delivery-marketplace/internal/adapter/logger"
	"delivery-marketplace/internal/interfaces"
)

// NotificationHandler consumes the rider fanout exchange. It is the push
// counterpart of the polled inbox: a rider client that keeps a connection
// open sees new pickups here instead of waiting for the next poll.
type NotificationHandler struct {
	logger logger.Logger
}

func NewNotificationHandler(logger logger.Logger) *NotificationHandler {
	return &NotificationHandler{logger: logger}
}

func (h *NotificationHandler) HandleNotification(ctx context.Context, body []byte) error {
	var msg interfaces.RiderNotificationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse rider notification", "", nil, err)
		return err
	}

	h.logger.Debug("notification_received", fmt.Sprintf("Pickup available for rider %s", msg.RiderID),
		msg.NotificationID, map[string]interface{}{
			"order_id": msg.OrderID,
			"rider_id": msg.RiderID,
		})

	fmt.Printf("Rider %s: %s\n", msg.RiderID, msg.Message)

	return nil
}
