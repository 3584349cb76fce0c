package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/sara-kitchen/api/internal/enum"
)

// Channel is one registered Telegram recipient, stored as JSON under
// the notification_channels system setting.
type Channel struct {
	ChatID int64  `json:"chat_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// MessageSender is satisfied by *TelegramClient.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// ChannelStore is satisfied by *database.Queries.
type ChannelStore interface {
	GetSystemSetting(ctx context.Context, key string) ([]byte, error)
}

// OrderSummary carries the order fields a notification needs.
type OrderSummary struct {
	OrderCode       string
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	DeliveryType    string
	Total           string
	Notes           string
}

type Dispatcher struct {
	sender MessageSender
	store  ChannelStore
}

func NewDispatcher(sender MessageSender, store ChannelStore) *Dispatcher {
	return &Dispatcher{sender: sender, store: store}
}

func (d *Dispatcher) channels(ctx context.Context) ([]Channel, error) {
	raw, err := d.store.GetSystemSetting(ctx, enum.SettingNotificationChannels)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load notification channels: %w", err)
	}
	var chans []Channel
	if err := json.Unmarshal(raw, &chans); err != nil {
		return nil, fmt.Errorf("decode notification channels: %w", err)
	}
	return chans, nil
}

// OrderReady tells the driver and admin channels an order left the
// kitchen. Each recipient is attempted independently; one failed send
// never blocks the rest, and failures are logged rather than returned.
func (d *Dispatcher) OrderReady(ctx context.Context, order OrderSummary) {
	chans, err := d.channels(ctx)
	if err != nil {
		log.Printf("ERROR: notify: %v", err)
		return
	}

	text := fmt.Sprintf(
		"🛵 *Order %s is ready for delivery*\n\nCustomer: %s\nPhone: %s\n%s\nAddress: %s\n\n[Open in Maps](%s)\n\nTotal: %s",
		order.OrderCode,
		order.CustomerName,
		order.CustomerPhone,
		deliveryLabel(order.DeliveryType),
		order.CustomerAddress,
		MapsLink(order.CustomerAddress),
		order.Total,
	)
	if order.Notes != "" {
		text += fmt.Sprintf("\n\n📝 %s", order.Notes)
	}

	for _, ch := range chans {
		if ch.Role != enum.RoleDriver && ch.Role != enum.RoleAdmin {
			continue
		}
		if err := d.sender.SendMessage(ctx, ch.ChatID, text); err != nil {
			log.Printf("ERROR: notify: send to %s (%d): %v", ch.Name, ch.ChatID, err)
		}
	}
}

func deliveryLabel(deliveryType string) string {
	switch deliveryType {
	case enum.DeliveryTypePickup:
		return "Pickup"
	case enum.DeliveryTypeInsideCity:
		return "Delivery (inside city)"
	case enum.DeliveryTypeOutsideCity:
		return "Delivery (outside city)"
	}
	return deliveryType
}

// MapsLink builds a Google Maps search URL for a free-text address.
func MapsLink(address string) string {
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(address)
}
