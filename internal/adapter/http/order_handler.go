package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"delivery-marketplace/internal/adapter/logger"
	"delivery-marketplace/internal/domain"
	"delivery-marketplace/internal/interfaces"
)

type OrderHandler struct {
	service interfaces.OrderService
	logger  logger.Logger
}

func NewOrderHandler(service interfaces.OrderService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

type CreateOrderRequest struct {
	RestaurantID    string             `json:"restaurant_id"`
	RestaurantName  string             `json:"restaurant_name"`
	Zone            string             `json:"zone"`
	CustomerName    string             `json:"customer_name"`
	CustomerPhone   string             `json:"customer_phone"`
	CustomerEmail   string             `json:"customer_email"`
	DeliveryAddress string             `json:"delivery_address"`
	RestaurantLat   float64            `json:"restaurant_lat"`
	RestaurantLng   float64            `json:"restaurant_lng"`
	CustomerLat     float64            `json:"customer_lat"`
	CustomerLng     float64            `json:"customer_lng"`
	Items           []OrderItemRequest `json:"items"`
	Subtotal        float64            `json:"subtotal"`
	DeliveryFee     float64            `json:"delivery_fee"`
	ServiceFee      float64            `json:"service_fee"`
	Tax             float64            `json:"tax"`
	Tip             float64            `json:"tip"`
	Total           float64            `json:"total"`
	PaymentMethod   string             `json:"payment_method"`
}

type OrderItemRequest struct {
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type UpdateStatusRequest struct {
	Status          string  `json:"status"`
	PrepTime        *int    `json:"prepTime,omitempty"`
	RejectionReason *string `json:"rejectionReason,omitempty"`
	RiderID         *string `json:"riderId,omitempty"`
	ChangedBy       string  `json:"changedBy,omitempty"`
}

type AssignRiderRequest struct {
	RiderID string `json:"riderId"`
}

type UpdateStatusResponse struct {
	Order    OrderResponse     `json:"order"`
	Dispatch *DispatchResponse `json:"dispatch,omitempty"`
}

// HandleOrders serves the /orders collection: GET lists, POST creates.
func (h *OrderHandler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listOrders(w, r)
	case http.MethodPost:
		h.createOrder(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleOrderByID serves /orders/{id}, /orders/{id}/status and
// /orders/{id}/assign-rider.
func (h *OrderHandler) HandleOrderByID(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 || parts[1] == "" {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	orderID := parts[1]

	switch {
	case len(parts) == 2 && r.Method == http.MethodGet:
		h.getOrder(w, r, orderID)
	case len(parts) == 3 && parts[2] == "status" && r.Method == http.MethodPut:
		h.updateStatus(w, r, orderID)
	case len(parts) == 3 && parts[2] == "assign-rider" && r.Method == http.MethodPut:
		h.assignRider(w, r, orderID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (h *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := interfaces.OrderFilter{
		Status:       domain.Status(q.Get("status")),
		RestaurantID: q.Get("restaurantId"),
		RiderID:      q.Get("riderId"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, fmt.Errorf("%w: limit must be a non-negative integer", domain.ErrValidation))
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, fmt.Errorf("%w: offset must be a non-negative integer", domain.ErrValidation))
			return
		}
		filter.Offset = n
	}
	if filter.Status != "" && !domain.IsValidStatus(filter.Status) {
		respondError(w, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, filter.Status))
		return
	}

	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		h.logger.Error("order_list_failed", "Failed to list orders", "", nil, err)
		respondError(w, err)
		return
	}

	resp := make([]OrderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	items := make([]interfaces.CreateOrderItemCommand, len(req.Items))
	for i, item := range req.Items {
		items[i] = interfaces.CreateOrderItemCommand{
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}

	cmd := interfaces.CreateOrderCommand{
		RestaurantID:    strings.TrimSpace(req.RestaurantID),
		RestaurantName:  strings.TrimSpace(req.RestaurantName),
		Zone:            req.Zone,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
		RestaurantLat:   req.RestaurantLat,
		RestaurantLng:   req.RestaurantLng,
		CustomerLat:     req.CustomerLat,
		CustomerLng:     req.CustomerLng,
		Items:           items,
		Subtotal:        req.Subtotal,
		DeliveryFee:     req.DeliveryFee,
		ServiceFee:      req.ServiceFee,
		Tax:             req.Tax,
		Tip:             req.Tip,
		Total:           req.Total,
		PaymentMethod:   req.PaymentMethod,
	}

	order, err := h.service.CreateOrder(r.Context(), cmd)
	if err != nil {
		h.logger.Error("order_creation_failed", "Failed to create order", "", nil, err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request, orderID string) {
	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) updateStatus(w http.ResponseWriter, r *http.Request, orderID string) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	cmd := interfaces.TransitionCommand{
		Target:          domain.Status(req.Status),
		PrepTimeMinutes: req.PrepTime,
		RejectionReason: req.RejectionReason,
		RiderID:         req.RiderID,
		ChangedBy:       req.ChangedBy,
	}
	if cmd.ChangedBy == "" {
		cmd.ChangedBy = "operator"
	}

	result, err := h.service.UpdateStatus(r.Context(), orderID, cmd)
	if err != nil {
		h.logger.Error("status_update_failed", "Failed to update order status", orderID, map[string]interface{}{
			"order_id": orderID,
			"status":   req.Status,
		}, err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, UpdateStatusResponse{
		Order:    toOrderResponse(result.Order),
		Dispatch: toDispatchResponse(result.Dispatch),
	})
}

func (h *OrderHandler) assignRider(w http.ResponseWriter, r *http.Request, orderID string) {
	var req AssignRiderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.RiderID) == "" {
		respondError(w, fmt.Errorf("%w: riderId is required", domain.ErrValidation))
		return
	}

	order, err := h.service.AssignRider(r.Context(), orderID, req.RiderID)
	if err != nil {
		h.logger.Error("rider_assign_failed", "Failed to assign rider", orderID, map[string]interface{}{
			"order_id": orderID,
			"rider_id": req.RiderID,
		}, err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderResponse(order))
}
