package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sara-kitchen/api/internal/database"
	"github.com/sara-kitchen/api/internal/enum"
	"github.com/sara-kitchen/api/internal/notify"
	"github.com/sara-kitchen/api/internal/ws"
)

// Errors returned by the status service.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrRoleNotAllowed    = errors.New("role may not perform this transition")
	ErrStatusConflict    = errors.New("order status changed concurrently")
)

// allowedTransitions is the order lifecycle. Delivered and cancelled
// orders are terminal.
var allowedTransitions = map[string][]string{
	enum.OrderStatusPending:    {enum.OrderStatusPreparing, enum.OrderStatusCancelled},
	enum.OrderStatusPreparing:  {enum.OrderStatusWithDriver, enum.OrderStatusCancelled},
	enum.OrderStatusWithDriver: {enum.OrderStatusDelivered, enum.OrderStatusCancelled},
}

// roleTransitions gates which role may perform which step. Admin may
// perform any legal transition, including cancellation.
var roleTransitions = map[string]map[string]string{
	enum.RoleCook: {
		enum.OrderStatusPending:   enum.OrderStatusPreparing,
		enum.OrderStatusPreparing: enum.OrderStatusWithDriver,
	},
	enum.RoleDriver: {
		enum.OrderStatusWithDriver: enum.OrderStatusDelivered,
	},
}

// StatusStore defines the DB methods needed for status transitions.
// Satisfied by *database.Queries.
type StatusStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
}

// OrderNotifier fans out delivery notifications.
// Satisfied by *notify.Dispatcher.
type OrderNotifier interface {
	OrderReady(ctx context.Context, order notify.OrderSummary)
}

// StatusService moves orders through their lifecycle.
type StatusService struct {
	store    StatusStore
	hub      Broadcaster
	notifier OrderNotifier
	currency string
}

func NewStatusService(store StatusStore, hub Broadcaster, notifier OrderNotifier, currency string) *StatusService {
	return &StatusService{store: store, hub: hub, notifier: notifier, currency: currency}
}

// Transition moves an order to toStatus on behalf of role. The update
// is a compare-and-set: when another actor already moved the order the
// caller gets ErrStatusConflict and should reload. Exactly one
// successful move to WITH_DRIVER triggers the delivery notification.
func (s *StatusService) Transition(ctx context.Context, orderID uuid.UUID, toStatus, role string) (database.Order, error) {
	if !isKnownStatus(toStatus) {
		return database.Order{}, ErrInvalidStatus
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}

	if !isAllowedTransition(order.Status, toStatus) {
		return database.Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, toStatus)
	}
	if !roleMayTransition(role, order.Status, toStatus) {
		return database.Order{}, fmt.Errorf("%w: %s: %s -> %s", ErrRoleNotAllowed, role, order.Status, toStatus)
	}

	updated, err := s.store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:         orderID,
		FromStatus: order.Status,
		ToStatus:   toStatus,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrStatusConflict
		}
		return database.Order{}, fmt.Errorf("update order status: %w", err)
	}

	if toStatus == enum.OrderStatusWithDriver {
		summary := notify.OrderSummary{
			OrderCode:       updated.OrderCode,
			CustomerName:    updated.CustomerName,
			CustomerPhone:   updated.CustomerPhone,
			CustomerAddress: updated.CustomerAddress,
			DeliveryType:    updated.DeliveryType,
			Total:           s.formatAmount(updated.TotalAmount),
		}
		if updated.Notes.Valid {
			summary.Notes = updated.Notes.String
		}
		s.notifier.OrderReady(ctx, summary)
	}

	s.hub.BroadcastToRoles(
		[]string{enum.RoleAdmin, enum.RoleCook, enum.RoleDriver},
		ws.Event{Type: "order.updated", Payload: orderEventPayload(updated)},
	)

	return updated, nil
}

func (s *StatusService) formatAmount(n pgtype.Numeric) string {
	return fmt.Sprintf("%s %s", database.NumericToDecimal(n).StringFixed(2), s.currency)
}

func isKnownStatus(status string) bool {
	switch status {
	case enum.OrderStatusPending, enum.OrderStatusPreparing, enum.OrderStatusWithDriver,
		enum.OrderStatusDelivered, enum.OrderStatusCancelled:
		return true
	}
	return false
}

func isAllowedTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func roleMayTransition(role, from, to string) bool {
	if role == enum.RoleAdmin {
		return true
	}
	return roleTransitions[role][from] == to
}
