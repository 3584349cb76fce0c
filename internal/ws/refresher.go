package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/sara-kitchen/api/internal/enum"
	"golang.org/x/sync/singleflight"
)

// ActiveOrderCounter is satisfied by *database.Queries.
type ActiveOrderCounter interface {
	CountOrdersByStatuses(ctx context.Context, statuses []string) (int64, error)
}

// Refresher is the poll fallback for dashboards that lose their socket.
// Every interval it counts active orders and pushes a refresh event to
// the staff rooms, flagging new_orders only when the count went up.
type Refresher struct {
	hub      *Hub
	counter  ActiveOrderCounter
	interval time.Duration

	group     singleflight.Group
	lastCount int64
}

func NewRefresher(hub *Hub, counter ActiveOrderCounter, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Refresher{hub: hub, counter: counter, interval: interval}
}

// Run ticks until the context is cancelled. Call as a goroutine.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

type refreshPayload struct {
	ActiveOrders int64 `json:"active_orders"`
	NewOrders    bool  `json:"new_orders"`
}

// Refresh counts active orders once and broadcasts the result.
// Concurrent callers (the ticker plus HTTP poll handlers) are coalesced
// into a single query via singleflight.
func (r *Refresher) Refresh(ctx context.Context) (int64, bool) {
	v, err, _ := r.group.Do("active-orders", func() (interface{}, error) {
		count, err := r.counter.CountOrdersByStatuses(ctx, []string{
			enum.OrderStatusPending,
			enum.OrderStatusPreparing,
			enum.OrderStatusWithDriver,
		})
		if err != nil {
			return nil, err
		}

		increased := count > r.lastCount
		r.lastCount = count

		payload, _ := json.Marshal(refreshPayload{ActiveOrders: count, NewOrders: increased})
		r.hub.BroadcastToRoles(
			[]string{enum.RoleAdmin, enum.RoleCook, enum.RoleDriver},
			Event{Type: "orders.refresh", Payload: payload},
		)
		return refreshPayload{ActiveOrders: count, NewOrders: increased}, nil
	})
	if err != nil {
		log.Printf("ERROR: refresher: %v", err)
		return 0, false
	}
	p := v.(refreshPayload)
	return p.ActiveOrders, p.NewOrders
}
