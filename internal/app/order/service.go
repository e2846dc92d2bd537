package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"delivery-marketplace/internal/adapter/logger"
	"delivery-marketplace/internal/domain"
	"delivery-marketplace/internal/interfaces"
)

// Fallback coordinates for the main hub, applied when the checkout flow
// could not geocode an address.
const (
	defaultLat = 23.8103
	defaultLng = 90.4125
)

// Service is the order lifecycle guard. Every status mutation goes
// through it; it validates the transition payload, enforces the state
// machine via the store's conditional write, and triggers dispatch when
// an order reaches ready.
type Service struct {
	orders     interfaces.OrderRepository
	riders     interfaces.RiderRepository
	dispatcher interfaces.DispatchService
	publisher  interfaces.MessagePublisher
	logger     logger.Logger
}

func NewService(
	orders interfaces.OrderRepository,
	riders interfaces.RiderRepository,
	dispatcher interfaces.DispatchService,
	publisher interfaces.MessagePublisher,
	logger logger.Logger,
) *Service {
	return &Service{
		orders:     orders,
		riders:     riders,
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
	}
}

func (s *Service) CreateOrder(ctx context.Context, cmd interfaces.CreateOrderCommand) (*domain.Order, error) {
	items := make([]domain.OrderItem, len(cmd.Items))
	for i, item := range cmd.Items {
		items[i] = domain.OrderItem{
			ID:        uuid.New().String(),
			Name:      strings.TrimSpace(item.Name),
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}

	ord, err := domain.NewOrder(
		cmd.RestaurantID, cmd.RestaurantName, strings.TrimSpace(cmd.Zone),
		cmd.CustomerName, cmd.CustomerPhone, cmd.CustomerEmail, cmd.DeliveryAddress,
		items,
	)
	if err != nil {
		s.logger.Error("validation_failed", "Order validation failed", "", nil, err)
		return nil, err
	}

	ord.ID = uuid.New().String()
	for i := range ord.Items {
		ord.Items[i].OrderID = ord.ID
	}

	ord.RestaurantLat, ord.RestaurantLng = cmd.RestaurantLat, cmd.RestaurantLng
	ord.CustomerLat, ord.CustomerLng = cmd.CustomerLat, cmd.CustomerLng
	if ord.RestaurantLat == 0 && ord.RestaurantLng == 0 {
		ord.RestaurantLat, ord.RestaurantLng = defaultLat, defaultLng
	}
	if ord.CustomerLat == 0 && ord.CustomerLng == 0 {
		ord.CustomerLat, ord.CustomerLng = defaultLat, defaultLng
	}

	// The money breakdown is advisory: recorded as computed by checkout,
	// not recomputed here.
	ord.Subtotal = cmd.Subtotal
	ord.DeliveryFee = cmd.DeliveryFee
	ord.ServiceFee = cmd.ServiceFee
	ord.Tax = cmd.Tax
	ord.Tip = cmd.Tip
	ord.Total = cmd.Total

	method := domain.PaymentMethod(cmd.PaymentMethod)
	switch method {
	case domain.PaymentMethodCash, domain.PaymentMethodCard, domain.PaymentMethodWallet:
		ord.PaymentMethod = method
	case "":
		ord.PaymentMethod = domain.PaymentMethodCash
	default:
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, cmd.PaymentMethod)
	}

	if err := s.orders.Create(ctx, ord); err != nil {
		s.logger.Error("order_create_failed", "Failed to persist order", ord.ID, nil, err)
		return nil, err
	}

	s.logger.Info("order_created", "Order created", ord.ID, map[string]interface{}{
		"order_id":      ord.ID,
		"restaurant_id": ord.RestaurantID,
		"zone":          ord.Zone,
	})

	s.publishStatus(ctx, ord.ID, "", domain.StatusPending, "customer")

	return ord, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, filter interfaces.OrderFilter) ([]*domain.Order, error) {
	return s.orders.List(ctx, filter)
}

// UpdateStatus applies one transition. The payload is validated and the
// move checked against the state machine before anything is written, so a
// rejected request leaves no partial state. A target of assigned is
// routed through AssignRider so the no-second-rider rule applies.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, cmd interfaces.TransitionCommand) (*interfaces.TransitionResult, error) {
	if !domain.IsValidStatus(cmd.Target) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, cmd.Target)
	}

	if cmd.Target == domain.StatusAssigned {
		if cmd.RiderID == nil || strings.TrimSpace(*cmd.RiderID) == "" {
			return nil, fmt.Errorf("%w: rider id is required to assign an order", domain.ErrValidation)
		}
		ord, err := s.AssignRider(ctx, orderID, *cmd.RiderID)
		if err != nil {
			return nil, err
		}
		return &interfaces.TransitionResult{Order: ord}, nil
	}

	ord, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	oldStatus := ord.Status
	data := domain.TransitionData{
		PrepTimeMinutes: cmd.PrepTimeMinutes,
		RejectionReason: cmd.RejectionReason,
		At:              time.Now().UTC(),
	}

	// In-memory application validates both the payload and the edge.
	if err := ord.TransitionTo(cmd.Target, data); err != nil {
		return nil, err
	}

	if err := s.orders.UpdateStatus(ctx, orderID, oldStatus, cmd.Target, data); err != nil {
		return nil, err
	}

	s.logger.Info("status_updated", fmt.Sprintf("Order moved %s -> %s", oldStatus, cmd.Target), orderID, map[string]interface{}{
		"order_id":   orderID,
		"old_status": oldStatus,
		"new_status": cmd.Target,
	})

	s.publishStatus(ctx, orderID, oldStatus, cmd.Target, cmd.ChangedBy)

	result := &interfaces.TransitionResult{Order: ord}

	if cmd.Target == domain.StatusReady {
		dispatchResult, err := s.dispatcher.Dispatch(ctx, ord)
		if err != nil {
			// The order stays ready; the operator retries dispatch by
			// re-requesting ready once the directory is back. The store
			// suppresses duplicate notifications on retry.
			s.logger.Error("dispatch_failed", "Dispatch aborted", orderID, map[string]interface{}{
				"order_id": orderID,
			}, err)
			return nil, fmt.Errorf("order is ready but dispatch failed: %w", err)
		}
		result.Dispatch = dispatchResult
	}

	return result, nil
}

// AssignRider is the named convenience for moving an order to assigned.
// The rider must exist; the conditional write refuses an order that
// already has a rider.
func (s *Service) AssignRider(ctx context.Context, orderID, riderID string) (*domain.Order, error) {
	if strings.TrimSpace(riderID) == "" {
		return nil, fmt.Errorf("%w: rider id is required", domain.ErrValidation)
	}

	if _, err := s.riders.GetByID(ctx, riderID); err != nil {
		return nil, err
	}

	ord, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	oldStatus := ord.Status

	if err := s.orders.AssignRider(ctx, orderID, riderID, time.Now().UTC()); err != nil {
		return nil, err
	}

	ord, err = s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("rider_assigned", "Rider assigned to order", orderID, map[string]interface{}{
		"order_id": orderID,
		"rider_id": riderID,
	})

	s.publishStatus(ctx, orderID, oldStatus, domain.StatusAssigned, "operator")

	return ord, nil
}

// publishStatus pushes the transition onto the status topic. Publish
// failures are logged and never fail the transition itself.
func (s *Service) publishStatus(ctx context.Context, orderID string, oldStatus, newStatus domain.Status, changedBy string) {
	msg := interfaces.StatusUpdateMessage{
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		ChangedBy: changedBy,
		Timestamp: time.Now().UTC(),
	}
	if err := s.publisher.PublishStatusUpdate(ctx, msg); err != nil {
		s.logger.Error("status_publish_failed", "Failed to publish status update", orderID, map[string]interface{}{
			"order_id":   orderID,
			"new_status": newStatus,
		}, err)
	}
}
