package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"delivery-marketplace/internal/domain"
	"delivery-marketplace/internal/interfaces"
)

const orderColumns = `id, restaurant_id, restaurant_name, customer_name, customer_phone,
	       customer_email, delivery_address, restaurant_lat, restaurant_lng,
	       customer_lat, customer_lng, zone, subtotal, delivery_fee, service_fee,
	       tax, tip, total, payment_method, payment_status, status, rider_id,
	       prep_time_minutes, rejection_reason, created_at, accepted_at,
	       rejected_at, rider_assigned_at, picked_up_at, delivered_at`

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) interfaces.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (id, restaurant_id, restaurant_name, customer_name, customer_phone,
		                    customer_email, delivery_address, restaurant_lat, restaurant_lng,
		                    customer_lat, customer_lng, zone, subtotal, delivery_fee, service_fee,
		                    tax, tip, total, payment_method, payment_status, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`
	_, err = tx.Exec(ctx, query,
		order.ID, order.RestaurantID, order.RestaurantName, order.CustomerName, order.CustomerPhone,
		order.CustomerEmail, order.DeliveryAddress, order.RestaurantLat, order.RestaurantLng,
		order.CustomerLat, order.CustomerLng, order.Zone, order.Subtotal, order.DeliveryFee,
		order.ServiceFee, order.Tax, order.Tip, order.Total, order.PaymentMethod,
		order.PaymentStatus, order.Status, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		itemQuery := `
			INSERT INTO order_items (id, order_id, name, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5)
		`
		order.Items[i].OrderID = order.ID
		_, err = tx.Exec(ctx, itemQuery,
			order.Items[i].ID, order.ID, order.Items[i].Name, order.Items[i].UnitPrice, order.Items[i].Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (r *orderRepository) List(ctx context.Context, filter interfaces.OrderFilter) ([]*domain.Order, error) {
	var where []string
	var args []any

	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.RestaurantID != "" {
		args = append(args, filter.RestaurantID)
		where = append(where, fmt.Sprintf("restaurant_id = $%d", len(args)))
	}
	if filter.RiderID != "" {
		args = append(args, filter.RiderID)
		where = append(where, fmt.Sprintf("rider_id = $%d", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus is the conditional transition write. The WHERE clause pins
// the expected current status so concurrent transitions cannot both win;
// COALESCE keeps already-set timestamps append-only.
func (r *orderRepository) UpdateStatus(ctx context.Context, id string, expected, target domain.Status, data domain.TransitionData) error {
	at := data.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	query := `
		UPDATE orders
		SET status = $1,
		    prep_time_minutes = COALESCE($2, prep_time_minutes),
		    rejection_reason = COALESCE($3, rejection_reason),
		    rider_id = COALESCE($4, rider_id)`
	args := []any{target, data.PrepTimeMinutes, data.RejectionReason, data.RiderID}

	if col := timestampColumn(target); col != "" {
		args = append(args, at)
		query += fmt.Sprintf(", %s = COALESCE(%s, $%d)", col, col, len(args))
	}

	args = append(args, id, expected)
	query += fmt.Sprintf(" WHERE id = $%d AND status = $%d", len(args)-1, len(args))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrStatusConflict
	}
	return nil
}

// AssignRider also requires rider_id to still be NULL, so a second
// assignment loses instead of overwriting the first.
func (r *orderRepository) AssignRider(ctx context.Context, id, riderID string, at time.Time) error {
	assignable := domain.AssignableFrom()
	statuses := make([]string, len(assignable))
	for i, s := range assignable {
		statuses[i] = string(s)
	}

	query := `
		UPDATE orders
		SET status = $1, rider_id = $2, rider_assigned_at = COALESCE(rider_assigned_at, $3)
		WHERE id = $4 AND rider_id IS NULL AND status = ANY($5)
	`
	tag, err := r.db.Exec(ctx, query, domain.StatusAssigned, riderID, at, id, statuses)
	if err != nil {
		return fmt.Errorf("failed to assign rider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		order, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if order.RiderID != nil {
			return domain.ErrRiderAlreadyAssigned
		}
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatusTransition, order.Status, domain.StatusAssigned)
	}
	return nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `SELECT id, order_id, name, unit_price, quantity FROM order_items WHERE order_id = $1`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.Name, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func timestampColumn(s domain.Status) string {
	switch s {
	case domain.StatusAccepted:
		return "accepted_at"
	case domain.StatusRejected:
		return "rejected_at"
	case domain.StatusAssigned:
		return "rider_assigned_at"
	case domain.StatusPickedUp:
		return "picked_up_at"
	case domain.StatusDelivered:
		return "delivered_at"
	}
	return ""
}

func scanOrder(row Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.RestaurantID, &o.RestaurantName, &o.CustomerName, &o.CustomerPhone,
		&o.CustomerEmail, &o.DeliveryAddress, &o.RestaurantLat, &o.RestaurantLng,
		&o.CustomerLat, &o.CustomerLng, &o.Zone, &o.Subtotal, &o.DeliveryFee, &o.ServiceFee,
		&o.Tax, &o.Tip, &o.Total, &o.PaymentMethod, &o.PaymentStatus, &o.Status, &o.RiderID,
		&o.PrepTimeMinutes, &o.RejectionReason, &o.CreatedAt, &o.AcceptedAt,
		&o.RejectedAt, &o.RiderAssignedAt, &o.PickedUpAt, &o.DeliveredAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
