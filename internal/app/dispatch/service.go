package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"delivery-marketplace/internal/adapter/logger"
	"delivery-marketplace/internal/domain"
	"delivery-marketplace/internal/interfaces"
)

// Service fans an order that reached ready out to every zone-eligible
// rider, one notification row per rider.
type Service struct {
	riders        interfaces.RiderRepository
	notifications interfaces.NotificationRepository
	publisher     interfaces.MessagePublisher
	logger        logger.Logger
	defaultZone   string
	maxConcurrent int
}

func NewService(
	riders interfaces.RiderRepository,
	notifications interfaces.NotificationRepository,
	publisher interfaces.MessagePublisher,
	logger logger.Logger,
	defaultZone string,
	maxConcurrent int,
) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Service{
		riders:        riders,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
		defaultZone:   defaultZone,
		maxConcurrent: maxConcurrent,
	}
}

// ZoneEligible is the dispatch matching predicate. The default zone label
// is a wildcard in both positions: riders based in the hub serve anywhere,
// and hub orders take riders from anywhere. Riders from any other zone
// only match their own exact zone, and an empty zone on either side is
// treated as equivalent to the default. The asymmetry is deliberate
// business behavior, not an oversight.
func ZoneEligible(riderZone, targetZone, defaultZone string) bool {
	if riderZone == targetZone {
		return true
	}
	if riderZone == "" && targetZone == defaultZone {
		return true
	}
	if targetZone == "" && riderZone == defaultZone {
		return true
	}
	if riderZone == defaultZone {
		return true
	}
	if targetZone == defaultZone {
		return true
	}
	return false
}

func (s *Service) Dispatch(ctx context.Context, order *domain.Order) (*interfaces.DispatchResult, error) {
	targetZone := order.Zone
	if targetZone == "" {
		targetZone = s.defaultZone
	}

	candidates, err := s.riders.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: rider directory: %v", domain.ErrDependencyUnavailable, err)
	}

	if len(candidates) == 0 {
		s.logger.Info("dispatch_no_riders", "No riders are online and approved", order.ID, map[string]interface{}{
			"order_id": order.ID,
			"zone":     targetZone,
		})
		return &interfaces.DispatchResult{Outcome: interfaces.DispatchNoRidersAvailable}, nil
	}

	var eligible []*domain.Rider
	for _, rider := range candidates {
		if ZoneEligible(rider.Zone, targetZone, s.defaultZone) {
			eligible = append(eligible, rider)
		}
	}

	if len(eligible) == 0 {
		s.logger.Info("dispatch_no_riders_in_zone", "No online riders match the order zone", order.ID, map[string]interface{}{
			"order_id":   order.ID,
			"zone":       targetZone,
			"candidates": len(candidates),
		})
		return &interfaces.DispatchResult{Outcome: interfaces.DispatchNoRidersInZone}, nil
	}

	// Per-rider writes are independent: one failure never aborts the
	// siblings. Parallelism is bounded by maxConcurrent.
	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex
	notified, failed := 0, 0

	for _, rider := range eligible {
		wg.Add(1)
		go func(rider *domain.Rider) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			notification := domain.NewRiderNotification(rider, order)
			notification.ID = uuid.New().String()

			if err := s.notifications.Create(ctx, notification); err != nil {
				s.logger.Error("notification_write_failed", "Failed to create rider notification", order.ID, map[string]interface{}{
					"order_id": order.ID,
					"rider_id": rider.ID,
				}, err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}

			mu.Lock()
			notified++
			mu.Unlock()

			msg := interfaces.RiderNotificationMessage{
				NotificationID:  notification.ID,
				RiderID:         notification.RiderID,
				OrderID:         notification.OrderID,
				RestaurantName:  notification.RestaurantName,
				CustomerAddress: notification.CustomerAddress,
				OrderTotal:      notification.OrderTotal,
				Message:         notification.Message,
				CreatedAt:       notification.CreatedAt,
			}
			if err := s.publisher.PublishRiderNotification(ctx, msg); err != nil {
				// The row is the source of truth; the push channel is
				// best-effort on top of the polled inbox.
				s.logger.Error("notification_publish_failed", "Failed to publish rider notification", order.ID, map[string]interface{}{
					"order_id": order.ID,
					"rider_id": rider.ID,
				}, err)
			}
		}(rider)
	}
	wg.Wait()

	result := &interfaces.DispatchResult{
		Eligible: len(eligible),
		Notified: notified,
		Failed:   failed,
	}
	switch {
	case failed == 0:
		result.Outcome = interfaces.DispatchNotified
	case notified == 0:
		result.Outcome = interfaces.DispatchAllFailed
	default:
		result.Outcome = interfaces.DispatchPartialFailure
	}

	if failed > 0 {
		s.logger.Warn("dispatch_partial_failure", "Some rider notifications failed", order.ID, map[string]interface{}{
			"order_id": order.ID,
			"notified": notified,
			"failed":   failed,
		})
	} else {
		s.logger.Info("dispatch_completed", fmt.Sprintf("Notified %d riders", notified), order.ID, map[string]interface{}{
			"order_id": order.ID,
			"zone":     targetZone,
			"notified": notified,
		})
	}

	return result, nil
}
