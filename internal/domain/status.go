package domain

type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusRejected   Status = "rejected"
	StatusPreparing  Status = "preparing"
	StatusReady      Status = "ready"
	StatusAssigned   Status = "assigned"
	StatusPickedUp   Status = "picked_up"
	StatusDelivering Status = "delivering"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// validTransitions is the authoritative state machine. An order may only
// move along these edges. "assigned" is reachable from pending and
// accepted as well as ready because an operator may hand an order to a
// rider before the kitchen marks it ready.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusAccepted, StatusRejected, StatusAssigned, StatusCancelled},
	StatusAccepted:   {StatusPreparing, StatusAssigned, StatusCancelled},
	StatusPreparing:  {StatusReady, StatusCancelled},
	StatusReady:      {StatusAssigned, StatusCancelled},
	StatusAssigned:   {StatusPickedUp},
	StatusPickedUp:   {StatusDelivering},
	StatusDelivering: {StatusDelivered},
	StatusDelivered:  {},
	StatusRejected:   {},
	StatusCancelled:  {},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether s is one of the enumerated order statuses.
func IsValidStatus(s Status) bool {
	_, ok := validTransitions[s]
	return ok
}

// IsTerminal reports whether s has no outgoing transitions.
func IsTerminal(s Status) bool {
	return IsValidStatus(s) && len(validTransitions[s]) == 0
}

// AssignableFrom lists the statuses from which a rider may be assigned
// directly. The storage layer uses it to build the conditional update.
func AssignableFrom() []Status {
	return []Status{StatusPending, StatusAccepted, StatusReady}
}

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "wallet"
)

// PaymentStatus is tracked separately from the order lifecycle. No
// gateway integration exists; it is a plain recorded value.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)
