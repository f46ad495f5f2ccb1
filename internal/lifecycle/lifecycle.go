// Package lifecycle governs how an order row's status may change and who
// may change it.
package lifecycle

import (
	"time"

	"storefront/internal/model"
)

// Clock returns the current time. Services inject it so tests can pin "now".
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// validNext lists the forward-only edges of the status graph.
var validNext = map[model.OrderStatus]map[model.OrderStatus]bool{
	model.StatusPreparing: {model.StatusShipping: true, model.StatusCancelled: true},
	model.StatusShipping:  {model.StatusCompleted: true, model.StatusCancelled: true},
	model.StatusCompleted: {},
	model.StatusCancelled: {},
}

// CanTransition reports whether to is a direct successor of from.
func CanTransition(from, to model.OrderStatus) bool {
	return validNext[from][to]
}

// Machine applies the transition rules for each actor role.
type Machine struct {
	policy Policy
}

// NewMachine creates a state machine gated by the given cancellation policy.
func NewMachine(policy Policy) *Machine {
	return &Machine{policy: policy}
}

// Policy returns the cancellation window policy in effect.
func (m *Machine) Policy() Policy {
	return m.policy
}

// Check decides whether actor may move an order created at createdAt from
// one status to another at time now.
//
// Admins may take any edge of the graph. Customers may only cancel, and
// only while the cancellation window is open.
func (m *Machine) Check(from, to model.OrderStatus, role model.Role, createdAt, now time.Time) error {
	if from.IsTerminal() {
		return model.ErrAlreadyTerminal
	}
	if !CanTransition(from, to) {
		return model.ErrInvalidTransition
	}

	switch role {
	case model.RoleAdmin:
		return nil
	case model.RoleCustomer:
		if to != model.StatusCancelled {
			return model.ErrCustomerForbidden
		}
		if !m.policy.IsCancelable(createdAt, now) {
			return model.ErrWindowExpired
		}
		return nil
	default:
		return model.ErrForbidden
	}
}
