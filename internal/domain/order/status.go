package order

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	StatusPending      OrderStatus = "PENDING"
	StatusToShip       OrderStatus = "TO_SHIP"
	StatusToReceive    OrderStatus = "TO_RECEIVE"
	StatusCompleted    OrderStatus = "COMPLETED"
	StatusCancelled    OrderStatus = "CANCELLED"
	StatusReturnRefund OrderStatus = "RETURN_REFUND"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusToShip, StatusToReceive, StatusCompleted, StatusCancelled, StatusReturnRefund:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states with no outgoing transitions
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusReturnRefund
}

// IsCancellation returns true for the cancellation-class states that
// trigger compensating stock restoration.
func (s OrderStatus) IsCancellation() bool {
	return s == StatusCancelled || s == StatusReturnRefund
}

// Actor identifies who is requesting a status transition
type Actor string

const (
	ActorBuyer  Actor = "buyer"
	ActorSeller Actor = "seller"
)

// IsValid checks if the actor is known
func (a Actor) IsValid() bool {
	return a == ActorBuyer || a == ActorSeller
}

// buyerTransitions and sellerTransitions are the closed transition tables.
// An absent (state, target) pair is a rejected transition; the terminal
// states have no entries at all.
var buyerTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusToShip, StatusCancelled},
	StatusToShip:    {StatusCancelled},
	StatusToReceive: {StatusCompleted, StatusCancelled},
}

var sellerTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusToShip, StatusCancelled},
	StatusToShip:    {StatusToReceive},
	StatusCompleted: {StatusReturnRefund},
}

// AllowedTargets returns the statuses the actor may move an order to from
// the current status. The slice is in table order and must not be mutated.
func AllowedTargets(actor Actor, current OrderStatus) []OrderStatus {
	switch actor {
	case ActorBuyer:
		return buyerTransitions[current]
	case ActorSeller:
		return sellerTransitions[current]
	}
	return nil
}

// CanTransition checks whether the actor may move an order from current to
// target. Re-requesting the current status is never in the table, so an
// already-applied target is rejected rather than silently accepted.
func CanTransition(actor Actor, current, target OrderStatus) bool {
	for _, allowed := range AllowedTargets(actor, current) {
		if allowed == target {
			return true
		}
	}
	return false
}
