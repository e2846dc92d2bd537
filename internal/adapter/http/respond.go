package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"delivery-marketplace/internal/domain"
	"delivery-marketplace/internal/interfaces"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, statusCodeFor(err), ErrorResponse{Error: err.Error()})
}

func statusCodeFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrRiderNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidStatusTransition),
		errors.Is(err, domain.ErrStatusConflict),
		errors.Is(err, domain.ErrRiderAlreadyAssigned):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDependencyUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type OrderResponse struct {
	ID              string              `json:"id"`
	RestaurantID    string              `json:"restaurant_id"`
	RestaurantName  string              `json:"restaurant_name"`
	CustomerName    string              `json:"customer_name"`
	CustomerPhone   string              `json:"customer_phone"`
	CustomerEmail   string              `json:"customer_email"`
	DeliveryAddress string              `json:"delivery_address"`
	Zone            string              `json:"zone"`
	Items           []OrderItemResponse `json:"items"`
	Subtotal        float64             `json:"subtotal"`
	DeliveryFee     float64             `json:"delivery_fee"`
	ServiceFee      float64             `json:"service_fee"`
	Tax             float64             `json:"tax"`
	Tip             float64             `json:"tip"`
	Total           float64             `json:"total"`
	PaymentMethod   string              `json:"payment_method"`
	PaymentStatus   string              `json:"payment_status"`
	Status          string              `json:"status"`
	RiderID         *string             `json:"rider_id"`
	PrepTimeMinutes *int                `json:"prep_time_minutes,omitempty"`
	RejectionReason *string             `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	AcceptedAt      *time.Time          `json:"accepted_at,omitempty"`
	RejectedAt      *time.Time          `json:"rejected_at,omitempty"`
	RiderAssignedAt *time.Time          `json:"rider_assigned_at,omitempty"`
	PickedUpAt      *time.Time          `json:"picked_up_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
}

type OrderItemResponse struct {
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type DispatchResponse struct {
	Outcome  string `json:"outcome"`
	Eligible int    `json:"eligible"`
	Notified int    `json:"notified"`
	Failed   int    `json:"failed"`
}

func toOrderResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{Name: item.Name, UnitPrice: item.UnitPrice, Quantity: item.Quantity}
	}
	return OrderResponse{
		ID:              o.ID,
		RestaurantID:    o.RestaurantID,
		RestaurantName:  o.RestaurantName,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerEmail:   o.CustomerEmail,
		DeliveryAddress: o.DeliveryAddress,
		Zone:            o.Zone,
		Items:           items,
		Subtotal:        o.Subtotal,
		DeliveryFee:     o.DeliveryFee,
		ServiceFee:      o.ServiceFee,
		Tax:             o.Tax,
		Tip:             o.Tip,
		Total:           o.Total,
		PaymentMethod:   string(o.PaymentMethod),
		PaymentStatus:   string(o.PaymentStatus),
		Status:          string(o.Status),
		RiderID:         o.RiderID,
		PrepTimeMinutes: o.PrepTimeMinutes,
		RejectionReason: o.RejectionReason,
		CreatedAt:       o.CreatedAt,
		AcceptedAt:      o.AcceptedAt,
		RejectedAt:      o.RejectedAt,
		RiderAssignedAt: o.RiderAssignedAt,
		PickedUpAt:      o.PickedUpAt,
		DeliveredAt:     o.DeliveredAt,
	}
}

func toDispatchResponse(d *interfaces.DispatchResult) *DispatchResponse {
	if d == nil {
		return nil
	}
	return &DispatchResponse{
		Outcome:  string(d.Outcome),
		Eligible: d.Eligible,
		Notified: d.Notified,
		Failed:   d.Failed,
	}
}
