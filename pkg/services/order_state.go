package services

import (
	"context"
	"errors"
	"fmt"

	"petshop_backend/pkg/models"

	"github.com/qmuntal/stateless"
)

const (
	triggerConfirm = "confirm"
	triggerShip    = "ship"
	triggerDeliver = "deliver"
	triggerCancel  = "cancel"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

func newOrderMachine(current models.OrderStatus) *stateless.StateMachine {
	machine := stateless.NewStateMachine(current)

	machine.Configure(models.OrderStatusPending).
		Permit(triggerConfirm, models.OrderStatusConfirmed).
		Permit(triggerCancel, models.OrderStatusCancelled)

	machine.Configure(models.OrderStatusConfirmed).
		Permit(triggerShip, models.OrderStatusShipped).
		Permit(triggerCancel, models.OrderStatusCancelled)

	machine.Configure(models.OrderStatusShipped).
		Permit(triggerDeliver, models.OrderStatusDelivered)

	machine.Configure(models.OrderStatusDelivered)
	machine.Configure(models.OrderStatusCancelled)

	return machine
}

func triggerFor(target models.OrderStatus) (string, bool) {
	switch target {
	case models.OrderStatusConfirmed:
		return triggerConfirm, true
	case models.OrderStatusShipped:
		return triggerShip, true
	case models.OrderStatusDelivered:
		return triggerDeliver, true
	case models.OrderStatusCancelled:
		return triggerCancel, true
	}
	return "", false
}

// TransitionOrder checks that an order may move from current to target
func TransitionOrder(ctx context.Context, current, target models.OrderStatus) error {
	trigger, ok := triggerFor(target)
	if !ok {
		return fmt.Errorf("%w: unknown status %s", ErrInvalidTransition, target)
	}

	machine := newOrderMachine(current)
	if err := machine.FireCtx(ctx, trigger); err != nil {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, target)
	}
	if machine.MustState() != target {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, target)
	}
	return nil
}

// CanCancel reports whether a customer or admin may still cancel the order
func CanCancel(status models.OrderStatus) bool {
	return status == models.OrderStatusPending || status == models.OrderStatusConfirmed
}
