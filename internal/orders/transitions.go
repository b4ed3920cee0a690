package orders

import (
	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/order"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/user"
	"github.com/kumarbhakta81/Garment-platform/internal/policy"
)

type roleClass int

const (
	buyer roleClass = iota
	seller
)

// classOf treats every role allowed to advance orders as a seller.
func classOf(r user.Role) roleClass {
	if policy.Allowed(r, policy.OrderAdvance) {
		return seller
	}
	return buyer
}

// transitions lists, per role class and current status, the statuses an order may move to.
// Delivered and cancelled are terminal.
var transitions = map[roleClass]map[order.Status][]order.Status{
	buyer: {
		order.StatusPending: {order.StatusCancelled},
	},
	seller: {
		order.StatusPending:    {order.StatusConfirmed, order.StatusCancelled},
		order.StatusConfirmed:  {order.StatusProcessing, order.StatusCancelled},
		order.StatusProcessing: {order.StatusShipped, order.StatusCancelled},
		order.StatusShipped:    {order.StatusDelivered},
	},
}

func canMove(role user.Role, from, to order.Status) bool {
	for _, s := range transitions[classOf(role)][from] {
		if s == to {
			return true
		}
	}
	return false
}

// CheckTransition reports whether role may move an order from one status to another.
// Retailers get Forbidden; sellers asking for a move outside the table get a validation error.
func CheckTransition(role user.Role, from, to order.Status) error {
	if canMove(role, from, to) {
		return nil
	}
	if classOf(role) == buyer {
		return apperr.Forbidden("Retailers can only cancel pending orders")
	}
	return apperr.Validation("invalid status transition from " + string(from) + " to " + string(to))
}
