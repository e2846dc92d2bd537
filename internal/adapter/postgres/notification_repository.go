package postgres

import (
	"context"
	"fmt"

	"delivery-marketplace/internal/domain"
	"delivery-marketplace/internal/interfaces"
)

type notificationRepository struct {
	db DB
}

func NewNotificationRepository(db DB) interfaces.NotificationRepository {
	return &notificationRepository{db: db}
}

// Create inserts the fan-out row. The unique index on (order_id, rider_id)
// makes a repeat dispatch for the same order a no-op per rider instead of
// a duplicate notification.
func (r *notificationRepository) Create(ctx context.Context, n *domain.RiderNotification) error {
	query := `
		INSERT INTO rider_notifications (id, rider_id, order_id, restaurant_name,
		                                 customer_address, order_total, message,
		                                 is_read, is_accepted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (order_id, rider_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query,
		n.ID, n.RiderID, n.OrderID, n.RestaurantName,
		n.CustomerAddress, n.OrderTotal, n.Message,
		n.IsRead, n.IsAccepted, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create rider notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListByRider(ctx context.Context, riderID string) ([]*domain.RiderNotification, error) {
	query := `
		SELECT id, rider_id, order_id, restaurant_name, customer_address,
		       order_total, message, is_read, is_accepted, created_at
		FROM rider_notifications
		WHERE rider_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, riderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rider notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*domain.RiderNotification
	for rows.Next() {
		var n domain.RiderNotification
		if err := rows.Scan(
			&n.ID, &n.RiderID, &n.OrderID, &n.RestaurantName, &n.CustomerAddress,
			&n.OrderTotal, &n.Message, &n.IsRead, &n.IsAccepted, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rider notification: %w", err)
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepository) CountForOrder(ctx context.Context, orderID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM rider_notifications WHERE order_id = $1`, orderID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}
