package domain

import (
	"fmt"
	"strings"
	"time"
)

// Rider is an independent courier linked 1:1 to an authenticated account
// (account handling lives outside this core).
type Rider struct {
	ID       string
	Name     string
	Phone    string
	Zone     string
	Approval ApprovalStatus
	IsOnline bool

	// CurrentOrderID is advisory. Nothing enforces that a rider holds at
	// most one active order; that exclusivity is an open product question.
	CurrentOrderID *string

	CreatedAt time.Time
}

// NewRider registers a rider in pending approval, offline.
func NewRider(name, phone, zone string) (*Rider, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: rider name is required", ErrValidation)
	}
	return &Rider{
		Name:      strings.TrimSpace(name),
		Phone:     strings.TrimSpace(phone),
		Zone:      strings.TrimSpace(zone),
		Approval:  ApprovalPending,
		IsOnline:  false,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// DispatchEligible reports whether the rider may receive dispatch
// notifications at all. Zone matching is a separate check.
func (r *Rider) DispatchEligible() bool {
	return r.Approval == ApprovalApproved && r.IsOnline
}
