package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"delivery-marketplace/internal/adapter/logger"
	"delivery-marketplace/internal/domain"
	"delivery-marketplace/internal/interfaces"
)

type RiderHandler struct {
	service interfaces.RiderService
	logger  logger.Logger
}

func NewRiderHandler(service interfaces.RiderService, logger logger.Logger) *RiderHandler {
	return &RiderHandler{
		service: service,
		logger:  logger,
	}
}

type RegisterRiderRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Zone  string `json:"zone"`
}

type SetOnlineRequest struct {
	IsOnline bool `json:"isOnline"`
}

type CreateNotificationRequest struct {
	RiderID         string  `json:"riderId"`
	OrderID         string  `json:"orderId"`
	RestaurantName  string  `json:"restaurantName"`
	CustomerAddress string  `json:"customerAddress"`
	OrderTotal      float64 `json:"orderTotal"`
	Message         string  `json:"message"`
}

type RiderResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Zone      string    `json:"zone"`
	Status    string    `json:"status"`
	IsOnline  bool      `json:"is_online"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationResponse struct {
	ID              string    `json:"id"`
	RiderID         string    `json:"rider_id"`
	OrderID         string    `json:"order_id"`
	RestaurantName  string    `json:"restaurant_name"`
	CustomerAddress string    `json:"customer_address"`
	OrderTotal      float64   `json:"order_total"`
	Message         string    `json:"message"`
	IsRead          bool      `json:"is_read"`
	IsAccepted      *bool     `json:"is_accepted"`
	CreatedAt       time.Time `json:"created_at"`
}

// HandleRiders serves the /riders collection: GET lists, POST registers.
func (h *RiderHandler) HandleRiders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listRiders(w, r)
	case http.MethodPost:
		h.registerRider(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleRiderByID serves /riders/{id}/notifications and /riders/{id}/online.
func (h *RiderHandler) HandleRiderByID(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[1] == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	riderID := parts[1]

	switch {
	case parts[2] == "notifications" && r.Method == http.MethodGet:
		h.listNotifications(w, r, riderID)
	case parts[2] == "online" && r.Method == http.MethodPut:
		h.setOnline(w, r, riderID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// CreateNotification serves POST /rider-notifications, the manual
// fan-out escape hatch.
func (h *RiderHandler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CreateNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	n := &domain.RiderNotification{
		RiderID:         strings.TrimSpace(req.RiderID),
		OrderID:         strings.TrimSpace(req.OrderID),
		RestaurantName:  req.RestaurantName,
		CustomerAddress: req.CustomerAddress,
		OrderTotal:      req.OrderTotal,
		Message:         req.Message,
	}

	if err := h.service.CreateNotification(r.Context(), n); err != nil {
		h.logger.Error("notification_create_failed", "Failed to create notification", "", map[string]interface{}{
			"rider_id": req.RiderID,
			"order_id": req.OrderID,
		}, err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toNotificationResponse(n))
}

func (h *RiderHandler) listRiders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := interfaces.RiderFilter{
		Approval: domain.ApprovalStatus(q.Get("status")),
	}
	if v := q.Get("isOnline"); v != "" {
		switch v {
		case "true":
			online := true
			filter.IsOnline = &online
		case "false":
			online := false
			filter.IsOnline = &online
		default:
			respondError(w, fmt.Errorf("%w: isOnline must be true or false", domain.ErrValidation))
			return
		}
	}

	riders, err := h.service.ListRiders(r.Context(), filter)
	if err != nil {
		h.logger.Error("rider_list_failed", "Failed to list riders", "", nil, err)
		respondError(w, err)
		return
	}

	resp := make([]RiderResponse, len(riders))
	for i, rd := range riders {
		resp[i] = toRiderResponse(rd)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *RiderHandler) registerRider(w http.ResponseWriter, r *http.Request) {
	var req RegisterRiderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	rd, err := h.service.RegisterRider(r.Context(), req.Name, req.Phone, req.Zone)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toRiderResponse(rd))
}

func (h *RiderHandler) listNotifications(w http.ResponseWriter, r *http.Request, riderID string) {
	notifications, err := h.service.ListNotifications(r.Context(), riderID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		resp[i] = toNotificationResponse(n)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *RiderHandler) setOnline(w http.ResponseWriter, r *http.Request, riderID string) {
	var req SetOnlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	rd, err := h.service.SetOnline(r.Context(), riderID, req.IsOnline)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toRiderResponse(rd))
}

func toRiderResponse(r *domain.Rider) RiderResponse {
	return RiderResponse{
		ID:        r.ID,
		Name:      r.Name,
		Phone:     r.Phone,
		Zone:      r.Zone,
		Status:    string(r.Approval),
		IsOnline:  r.IsOnline,
		CreatedAt: r.CreatedAt,
	}
}

func toNotificationResponse(n *domain.RiderNotification) NotificationResponse {
	return NotificationResponse{
		ID:              n.ID,
		RiderID:         n.RiderID,
		OrderID:         n.OrderID,
		RestaurantName:  n.RestaurantName,
		CustomerAddress: n.CustomerAddress,
		OrderTotal:      n.OrderTotal,
		Message:         n.Message,
		IsRead:          n.IsRead,
		IsAccepted:      n.IsAccepted,
		CreatedAt:       n.CreatedAt,
	}
}
