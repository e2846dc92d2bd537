package rider

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

// Service is the rider-facing surface over the directory and the
// notification inbox. Approval itself is an admin concern outside this
// core; riders here only register, toggle online, and read their feed.
type Service struct {
	riders        interfaces.RiderRepository
	notifications interfaces.NotificationRepository
	logger        logger.Logger
}

func NewService(riders interfaces.RiderRepository, notifications interfaces.NotificationRepository, logger logger.Logger) *Service {
	return &Service{
		riders:        riders,
		notifications: notifications,
		logger:        logger,
	}
}

func (s *Service) RegisterRider(ctx context.Context, name, phone, zone string) (*domain.Rider, error) {
	r, err := domain.NewRider(name, phone, zone)
	if err != nil {
		return nil, err
	}
	r.ID = uuid.New().String()

	if err := s.riders.Create(ctx, r); err != nil {
		s.logger.Error("rider_create_failed", "Failed to persist rider", r.ID, nil, err)
		return nil, err
	}

	s.logger.Info("rider_registered", "Rider registered", r.ID, map[string]interface{}{
		"rider_id": r.ID,
		"zone":     r.Zone,
	})
	return r, nil
}

func (s *Service) ListRiders(ctx context.Context, filter interfaces.RiderFilter) ([]*domain.Rider, error) {
	return s.riders.List(ctx, filter)
}

func (s *Service) SetOnline(ctx context.Context, riderID string, online bool) (*domain.Rider, error) {
	if err := s.riders.SetOnline(ctx, riderID, online); err != nil {
		return nil, err
	}
	return s.riders.GetByID(ctx, riderID)
}

func (s *Service) ListNotifications(ctx context.Context, riderID string) ([]*domain.RiderNotification, error) {
	if _, err := s.riders.GetByID(ctx, riderID); err != nil {
		return nil, err
	}
	return s.notifications.ListByRider(ctx, riderID)
}

// CreateNotification is the manual fan-out escape hatch: an operator can
// notify a specific rider directly when automatic dispatch came up empty.
func (s *Service) CreateNotification(ctx context.Context, n *domain.RiderNotification) error {
	if strings.TrimSpace(n.RiderID) == "" {
		return fmt.Errorf("%w: rider id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(n.OrderID) == "" {
		return fmt.Errorf("%w: order id is required", domain.ErrValidation)
	}
	if _, err := s.riders.GetByID(ctx, n.RiderID); err != nil {
		return err
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	return s.notifications.Create(ctx, n)
}
