package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"delivery-marketplace/internal/domain"
	"delivery-marketplace/internal/interfaces"
)

type nopLogger struct{}

func (nopLogger) Info(action, message, requestID string, details map[string]interface{})  {}
func (nopLogger) Debug(action, message, requestID string, details map[string]interface{}) {}
func (nopLogger) Warn(action, message, requestID string, details map[string]interface{})  {}
func (nopLogger) Error(action, message, requestID string, details map[string]interface{}, err error) {
}

type fakeRiderRepo struct {
	riders  []*domain.Rider
	listErr error
}

func (f *fakeRiderRepo) Create(ctx context.Context, r *domain.Rider) error { return nil }
func (f *fakeRiderRepo) GetByID(ctx context.Context, id string) (*domain.Rider, error) {
	for _, r := range f.riders {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrRiderNotFound
}
func (f *fakeRiderRepo) List(ctx context.Context, filter interfaces.RiderFilter) ([]*domain.Rider, error) {
	return f.riders, nil
}
func (f *fakeRiderRepo) ListAvailable(ctx context.Context) ([]*domain.Rider, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Rider
	for _, r := range f.riders {
		if r.DispatchEligible() {
			out = append(out, r)
		}
	}
	return out, nil
}
func (f *fakeRiderRepo) SetOnline(ctx context.Context, id string, online bool) error { return nil }

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []*domain.RiderNotification
	failFor map[string]error // rider id -> forced error
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *domain.RiderNotification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[n.RiderID]; ok {
		return err
	}
	for _, existing := range f.created {
		if existing.OrderID == n.OrderID && existing.RiderID == n.RiderID {
			return nil // duplicate pair is a no-op
		}
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationRepo) ListByRider(ctx context.Context, riderID string) ([]*domain.RiderNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.RiderNotification
	for _, n := range f.created {
		if n.RiderID == riderID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) CountForOrder(ctx context.Context, orderID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.created {
		if n.OrderID == orderID {
			count++
		}
	}
	return count, nil
}

type fakePublisher struct {
	mu         sync.Mutex
	published  []interfaces.RiderNotificationMessage
	publishErr error
}

func (f *fakePublisher) PublishStatusUpdate(ctx context.Context, msg interfaces.StatusUpdateMessage) error {
	return nil
}

func (f *fakePublisher) PublishRiderNotification(ctx context.Context, msg interfaces.RiderNotificationMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, msg)
	return nil
}

func approvedOnlineRider(id, zone string) *domain.Rider {
	return &domain.Rider{
		ID:        id,
		Name:      "Rider " + id,
		Zone:      zone,
		Approval:  domain.ApprovalApproved,
		IsOnline:  true,
		CreatedAt: time.Now().UTC(),
	}
}

func readyOrder(id, zone string) *domain.Order {
	return &domain.Order{
		ID:              id,
		RestaurantID:    "rest-1",
		RestaurantName:  "Star Kabab",
		DeliveryAddress: "House 12, Road 5",
		Zone:            zone,
		Total:           640,
		Status:          domain.StatusReady,
	}
}

func newTestService(riders *fakeRiderRepo, notifications *fakeNotificationRepo, publisher *fakePublisher) *Service {
	return NewService(riders, notifications, publisher, nopLogger{}, "Dhaka", 4)
}

func TestZoneEligible(t *testing.T) {
	cases := []struct {
		rider, target string
		want          bool
	}{
		{"Uptown", "Uptown", true},
		{"Uptown", "Downtown", false},
		{"Downtown", "Uptown", false},
		{"Dhaka", "Uptown", true},
		{"Dhaka", "Downtown", true},
		{"Uptown", "Dhaka", true},
		{"Downtown", "Dhaka", true},
		{"", "Dhaka", true},
		{"Dhaka", "", true},
		{"", "", true},
		{"", "Uptown", false},
		{"Uptown", "", false},
		{"Dhaka", "Dhaka", true},
	}
	for _, tc := range cases {
		if got := ZoneEligible(tc.rider, tc.target, "Dhaka"); got != tc.want {
			t.Errorf("ZoneEligible(%q, %q, Dhaka) = %v, want %v", tc.rider, tc.target, got, tc.want)
		}
	}
}

func TestDispatchNoRidersAvailable(t *testing.T) {
	riders := &fakeRiderRepo{}
	notifications := &fakeNotificationRepo{}
	publisher := &fakePublisher{}
	svc := newTestService(riders, notifications, publisher)

	result, err := svc.Dispatch(context.Background(), readyOrder("order-1", "Uptown"))
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if result.Outcome != interfaces.DispatchNoRidersAvailable {
		t.Errorf("outcome = %s, want %s", result.Outcome, interfaces.DispatchNoRidersAvailable)
	}
	if len(notifications.created) != 0 {
		t.Errorf("created %d notifications, want 0", len(notifications.created))
	}
}

func TestDispatchNoRidersInZone(t *testing.T) {
	riders := &fakeRiderRepo{riders: []*domain.Rider{
		approvedOnlineRider("rider-1", "Downtown"),
		approvedOnlineRider("rider-2", "Midtown"),
	}}
	notifications := &fakeNotificationRepo{}
	publisher := &fakePublisher{}
	svc := newTestService(riders, notifications, publisher)

	result, err := svc.Dispatch(context.Background(), readyOrder("order-1", "Uptown"))
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if result.Outcome != interfaces.DispatchNoRidersInZone {
		t.Errorf("outcome = %s, want %s", result.Outcome, interfaces.DispatchNoRidersInZone)
	}
}

func TestDispatchNotifiesEligibleRiders(t *testing.T) {
	riders := &fakeRiderRepo{riders: []*domain.Rider{
		approvedOnlineRider("rider-1", "Uptown"),
		approvedOnlineRider("rider-2", "Uptown"),
		approvedOnlineRider("rider-3", "Downtown"),
		approvedOnlineRider("rider-4", "Dhaka"), // hub rider serves any zone
	}}
	notifications := &fakeNotificationRepo{}
	publisher := &fakePublisher{}
	svc := newTestService(riders, notifications, publisher)

	result, err := svc.Dispatch(context.Background(), readyOrder("order-1", "Uptown"))
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if result.Outcome != interfaces.DispatchNotified {
		t.Errorf("outcome = %s, want %s", result.Outcome, interfaces.DispatchNotified)
	}
	if result.Eligible != 3 || result.Notified != 3 || result.Failed != 0 {
		t.Errorf("result = %+v, want eligible=3 notified=3 failed=0", result)
	}
	if len(notifications.created) != 3 {
		t.Fatalf("created %d notification rows, want 3", len(notifications.created))
	}
	for _, n := range notifications.created {
		if n.RiderID == "rider-3" {
			t.Error("out-of-zone rider received a notification")
		}
		if n.ID == "" {
			t.Error("notification created without an id")
		}
		if n.OrderID != "order-1" {
			t.Errorf("notification order id = %s", n.OrderID)
		}
	}
	if len(publisher.published) != 3 {
		t.Errorf("published %d messages, want 3", len(publisher.published))
	}
}

func TestDispatchHubOrderReachesEveryZone(t *testing.T) {
	riders := &fakeRiderRepo{riders: []*domain.Rider{
		approvedOnlineRider("rider-1", "Uptown"),
		approvedOnlineRider("rider-2", "Downtown"),
		approvedOnlineRider("rider-3", ""),
	}}
	notifications := &fakeNotificationRepo{}
	publisher := &fakePublisher{}
	svc := newTestService(riders, notifications, publisher)

	result, err := svc.Dispatch(context.Background(), readyOrder("order-1", "Dhaka"))
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if result.Notified != 3 {
		t.Errorf("notified = %d, want 3 (hub order matches all riders)", result.Notified)
	}
}

func TestDispatchEmptyZoneFallsBackToDefault(t *testing.T) {
	riders := &fakeRiderRepo{riders: []*domain.Rider{
		approvedOnlineRider("rider-1", "Uptown"),
	}}
	notifications := &fakeNotificationRepo{}
	publisher := &fakePublisher{}
	svc := newTestService(riders, notifications, publisher)

	// Empty order zone resolves to the hub, which matches every rider.
	result, err := svc.Dispatch(context.Background(), readyOrder("order-1", ""))
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if result.Notified != 1 {
		t.Errorf("notified = %d, want 1", result.Notified)
	}
}

func TestDispatchPartialFailureIsolation(t *testing.T) {
	riders := &fakeRiderRepo{riders: []*domain.Rider{
		approvedOnlineRider("rider-1", "Uptown"),
		approvedOnlineRider("rider-2", "Uptown"),
		approvedOnlineRider("rider-3", "Uptown"),
	}}
	notifications := &fakeNotificationRepo{
		failFor: map[string]error{"rider-2": errors.New("connection reset")},
	}
	publisher := &fakePublisher{}
	svc := newTestService(riders, notifications, publisher)

	result, err := svc.Dispatch(context.Background(), readyOrder("order-1", "Uptown"))
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if result.Outcome != interfaces.DispatchPartialFailure {
		t.Errorf("outcome = %s, want %s", result.Outcome, interfaces.DispatchPartialFailure)
	}
	if result.Notified != 2 || result.Failed != 1 {
		t.Errorf("result = %+v, want notified=2 failed=1", result)
	}
	if len(notifications.created) != 2 {
		t.Errorf("created %d rows, want 2 (failing rider must not abort siblings)", len(notifications.created))
	}
}

func TestDispatchAllFailed(t *testing.T) {
	riders := &fakeRiderRepo{riders: []*domain.Rider{
		approvedOnlineRider("rider-1", "Uptown"),
	}}
	notifications := &fakeNotificationRepo{
		failFor: map[string]error{"rider-1": errors.New("connection reset")},
	}
	publisher := &fakePublisher{}
	svc := newTestService(riders, notifications, publisher)

	result, err := svc.Dispatch(context.Background(), readyOrder("order-1", "Uptown"))
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if result.Outcome != interfaces.DispatchAllFailed {
		t.Errorf("outcome = %s, want %s", result.Outcome, interfaces.DispatchAllFailed)
	}
}

func TestDispatchRiderDirectoryDown(t *testing.T) {
	riders := &fakeRiderRepo{listErr: errors.New("dial tcp: connection refused")}
	notifications := &fakeNotificationRepo{}
	publisher := &fakePublisher{}
	svc := newTestService(riders, notifications, publisher)

	_, err := svc.Dispatch(context.Background(), readyOrder("order-1", "Uptown"))
	if !errors.Is(err, domain.ErrDependencyUnavailable) {
		t.Errorf("error = %v, want ErrDependencyUnavailable", err)
	}
}

func TestDispatchPublishFailureDoesNotFailNotification(t *testing.T) {
	riders := &fakeRiderRepo{riders: []*domain.Rider{
		approvedOnlineRider("rider-1", "Uptown"),
	}}
	notifications := &fakeNotificationRepo{}
	publisher := &fakePublisher{publishErr: errors.New("channel closed")}
	svc := newTestService(riders, notifications, publisher)

	result, err := svc.Dispatch(context.Background(), readyOrder("order-1", "Uptown"))
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if result.Outcome != interfaces.DispatchNotified || result.Notified != 1 {
		t.Errorf("result = %+v, want notified outcome (row is source of truth)", result)
	}
}

func TestDispatchRepeatIsDeduplicated(t *testing.T) {
	riders := &fakeRiderRepo{riders: []*domain.Rider{
		approvedOnlineRider("rider-1", "Uptown"),
		approvedOnlineRider("rider-2", "Uptown"),
	}}
	notifications := &fakeNotificationRepo{}
	publisher := &fakePublisher{}
	svc := newTestService(riders, notifications, publisher)

	order := readyOrder("order-1", "Uptown")
	if _, err := svc.Dispatch(context.Background(), order); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	result, err := svc.Dispatch(context.Background(), order)
	if err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if result.Outcome != interfaces.DispatchNotified {
		t.Errorf("repeat outcome = %s, want %s (duplicate rows are no-ops)", result.Outcome, interfaces.DispatchNotified)
	}
	if len(notifications.created) != 2 {
		t.Errorf("created %d rows after repeat dispatch, want 2", len(notifications.created))
	}
}
