package domain

import "errors"

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrRiderNotFound = errors.New("rider not found")

	// ErrInvalidStatusTransition is returned when a requested move is not
	// an edge of the status state machine.
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrStatusConflict is returned when a conditional status write finds
	// the order no longer in the expected state (a concurrent caller won).
	ErrStatusConflict = errors.New("order status changed concurrently")

	// ErrRiderAlreadyAssigned is returned when an assignment races another
	// assignment for the same order.
	ErrRiderAlreadyAssigned = errors.New("order already has a rider assigned")

	// ErrValidation marks missing or malformed caller input. Wrap it with
	// the field detail: fmt.Errorf("%w: rejection reason is required", ErrValidation).
	ErrValidation = errors.New("validation failed")

	// ErrDependencyUnavailable marks a failed read of a collaborator the
	// operation cannot proceed without (rider directory, notification store).
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
