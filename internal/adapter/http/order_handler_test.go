package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"delivery-marketplace/internal/domain"
	"delivery-marketplace/internal/interfaces"
)

type nopLogger struct{}

func (nopLogger) Info(action, message, requestID string, details map[string]interface{})  {}
func (nopLogger) Debug(action, message, requestID string, details map[string]interface{}) {}
func (nopLogger) Warn(action, message, requestID string, details map[string]interface{})  {}
func (nopLogger) Error(action, message, requestID string, details map[string]interface{}, err error) {
}

// fakeOrderService answers from canned values so the handler tests stay
// about HTTP mapping, not business logic.
type fakeOrderService struct {
	orders     map[string]*domain.Order
	lastFilter interfaces.OrderFilter
	updateErr  error
	dispatch   *interfaces.DispatchResult
}

func (f *fakeOrderService) CreateOrder(ctx context.Context, cmd interfaces.CreateOrderCommand) (*domain.Order, error) {
	items := make([]domain.OrderItem, len(cmd.Items))
	for i, item := range cmd.Items {
		items[i] = domain.OrderItem{
			ID: "item-1", OrderID: "order-1", Name: item.Name,
			UnitPrice: item.UnitPrice, Quantity: item.Quantity,
		}
	}
	ord, err := domain.NewOrder(cmd.RestaurantID, cmd.RestaurantName, cmd.Zone,
		cmd.CustomerName, cmd.CustomerPhone, cmd.CustomerEmail, cmd.DeliveryAddress, items)
	if err != nil {
		return nil, err
	}
	ord.ID = "order-1"
	return ord, nil
}

func (f *fakeOrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	ord, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return ord, nil
}

func (f *fakeOrderService) ListOrders(ctx context.Context, filter interfaces.OrderFilter) ([]*domain.Order, error) {
	f.lastFilter = filter
	var out []*domain.Order
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOrderService) UpdateStatus(ctx context.Context, orderID string, cmd interfaces.TransitionCommand) (*interfaces.TransitionResult, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	ord, ok := f.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	ord.Status = cmd.Target
	return &interfaces.TransitionResult{Order: ord, Dispatch: f.dispatch}, nil
}

func (f *fakeOrderService) AssignRider(ctx context.Context, orderID, riderID string) (*domain.Order, error) {
	ord, ok := f.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	ord.Status = domain.StatusAssigned
	ord.RiderID = &riderID
	return ord, nil
}

func storedOrder(id string) *domain.Order {
	return &domain.Order{
		ID:             id,
		RestaurantID:   "rest-1",
		RestaurantName: "Star Kabab",
		CustomerName:   "Rahim",
		Zone:           "Uptown",
		Status:         domain.StatusPending,
		Total:          560,
	}
}

func newHandler(svc *fakeOrderService) *OrderHandler {
	return NewOrderHandler(svc, nopLogger{})
}

func TestCreateOrderReturns201(t *testing.T) {
	handler := newHandler(&fakeOrderService{})

	body := `{
		"restaurant_id": "rest-1",
		"restaurant_name": "Star Kabab",
		"zone": "Uptown",
		"customer_name": "Rahim",
		"delivery_address": "House 12, Road 5",
		"items": [{"name": "Chicken Biryani", "unit_price": 250, "quantity": 2}],
		"total": 560
	}`
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	handler.HandleOrders(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}
	var resp OrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if resp.Status != string(domain.StatusPending) {
		t.Errorf("response status = %s, want pending", resp.Status)
	}
	if len(resp.Items) != 1 {
		t.Errorf("response items = %d, want 1", len(resp.Items))
	}
}

func TestCreateOrderMalformedBody(t *testing.T) {
	handler := newHandler(&fakeOrderService{})

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()

	handler.HandleOrders(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCreateOrderValidationFailure(t *testing.T) {
	handler := newHandler(&fakeOrderService{})

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(`{"restaurant_id": ""}`))
	rec := httptest.NewRecorder()

	handler.HandleOrders(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	handler := newHandler(&fakeOrderService{orders: map[string]*domain.Order{}})

	req := httptest.NewRequest(http.MethodGet, "/orders/ghost", nil)
	rec := httptest.NewRecorder()

	handler.HandleOrderByID(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetOrder(t *testing.T) {
	svc := &fakeOrderService{orders: map[string]*domain.Order{"order-1": storedOrder("order-1")}}
	handler := newHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/orders/order-1", nil)
	rec := httptest.NewRecorder()

	handler.HandleOrderByID(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp OrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if resp.ID != "order-1" {
		t.Errorf("response id = %s", resp.ID)
	}
}

func TestListOrdersFilterValidation(t *testing.T) {
	svc := &fakeOrderService{orders: map[string]*domain.Order{}}
	handler := newHandler(svc)

	cases := []struct {
		query string
		want  int
	}{
		{"", http.StatusOK},
		{"?status=pending", http.StatusOK},
		{"?status=bogus", http.StatusBadRequest},
		{"?limit=10&offset=5", http.StatusOK},
		{"?limit=abc", http.StatusBadRequest},
		{"?offset=-1", http.StatusBadRequest},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/orders"+tc.query, nil)
		rec := httptest.NewRecorder()
		handler.HandleOrders(rec, req)
		if rec.Code != tc.want {
			t.Errorf("GET /orders%s status = %d, want %d", tc.query, rec.Code, tc.want)
		}
	}
}

func TestListOrdersPassesFilter(t *testing.T) {
	svc := &fakeOrderService{orders: map[string]*domain.Order{}}
	handler := newHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/orders?status=ready&restaurantId=rest-1&limit=10", nil)
	rec := httptest.NewRecorder()
	handler.HandleOrders(rec, req)

	if svc.lastFilter.Status != domain.StatusReady {
		t.Errorf("filter status = %s", svc.lastFilter.Status)
	}
	if svc.lastFilter.RestaurantID != "rest-1" {
		t.Errorf("filter restaurant = %s", svc.lastFilter.RestaurantID)
	}
	if svc.lastFilter.Limit != 10 {
		t.Errorf("filter limit = %d", svc.lastFilter.Limit)
	}
}

func TestUpdateStatusReportsDispatch(t *testing.T) {
	svc := &fakeOrderService{
		orders:   map[string]*domain.Order{"order-1": storedOrder("order-1")},
		dispatch: &interfaces.DispatchResult{Outcome: interfaces.DispatchNotified, Eligible: 2, Notified: 2},
	}
	handler := newHandler(svc)

	body := `{"status": "ready"}`
	req := httptest.NewRequest(http.MethodPut, "/orders/order-1/status", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	handler.HandleOrderByID(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var resp UpdateStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if resp.Dispatch == nil || resp.Dispatch.Outcome != string(interfaces.DispatchNotified) {
		t.Errorf("dispatch = %+v, want notified outcome", resp.Dispatch)
	}
}

func TestUpdateStatusErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: pending -> delivered", domain.ErrInvalidStatusTransition), http.StatusConflict},
		{domain.ErrStatusConflict, http.StatusConflict},
		{fmt.Errorf("%w: prep time is required", domain.ErrValidation), http.StatusBadRequest},
		{domain.ErrOrderNotFound, http.StatusNotFound},
		{fmt.Errorf("order is ready but dispatch failed: %w", domain.ErrDependencyUnavailable), http.StatusBadGateway},
	}

	for _, tc := range cases {
		svc := &fakeOrderService{
			orders:    map[string]*domain.Order{"order-1": storedOrder("order-1")},
			updateErr: tc.err,
		}
		handler := newHandler(svc)

		req := httptest.NewRequest(http.MethodPut, "/orders/order-1/status", bytes.NewBufferString(`{"status": "accepted"}`))
		rec := httptest.NewRecorder()
		handler.HandleOrderByID(rec, req)
		if rec.Code != tc.want {
			t.Errorf("error %v mapped to %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
}

func TestAssignRiderRequiresRiderID(t *testing.T) {
	svc := &fakeOrderService{orders: map[string]*domain.Order{"order-1": storedOrder("order-1")}}
	handler := newHandler(svc)

	req := httptest.NewRequest(http.MethodPut, "/orders/order-1/assign-rider", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	handler.HandleOrderByID(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAssignRider(t *testing.T) {
	svc := &fakeOrderService{orders: map[string]*domain.Order{"order-1": storedOrder("order-1")}}
	handler := newHandler(svc)

	req := httptest.NewRequest(http.MethodPut, "/orders/order-1/assign-rider", bytes.NewBufferString(`{"riderId": "rider-1"}`))
	rec := httptest.NewRecorder()

	handler.HandleOrderByID(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var resp OrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if resp.Status != string(domain.StatusAssigned) {
		t.Errorf("response status = %s, want assigned", resp.Status)
	}
	if resp.RiderID == nil || *resp.RiderID != "rider-1" {
		t.Error("rider id missing from response")
	}
}

func TestUnknownMethodAndPath(t *testing.T) {
	handler := newHandler(&fakeOrderService{})

	req := httptest.NewRequest(http.MethodDelete, "/orders", nil)
	rec := httptest.NewRecorder()
	handler.HandleOrders(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE /orders status = %d, want 405", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/orders/order-1/bogus", nil)
	rec = httptest.NewRecorder()
	handler.HandleOrderByID(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /orders/{id}/bogus status = %d, want 404", rec.Code)
	}
}
