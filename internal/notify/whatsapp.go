package notify

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// WhatsAppItem is one order line rendered into the hand-off message.
type WhatsAppItem struct {
	Name     string
	Quantity int32
	Options  []string
	Total    string
}

// WhatsAppOrder is everything the checkout confirmation message needs.
type WhatsAppOrder struct {
	OrderCode       string
	CustomerName    string
	CustomerAddress string
	DeliveryType    string
	Items           []WhatsAppItem
	Subtotal        string
	DeliveryFee     string
	Total           string
	IsAsap          bool
	ScheduledFor    time.Time
	Notes           string
}

// ComposeWhatsAppLink builds a wa.me deep link that opens a chat with
// the kitchen, pre-filled with the order summary. The customer taps it
// after checkout to confirm over WhatsApp.
func ComposeWhatsAppLink(kitchenPhone string, order WhatsAppOrder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order %s\n", order.OrderCode)
	fmt.Fprintf(&b, "Name: %s\n", order.CustomerName)
	fmt.Fprintf(&b, "Address: %s\n", order.CustomerAddress)
	fmt.Fprintf(&b, "Delivery: %s\n\n", order.DeliveryType)

	for _, item := range order.Items {
		fmt.Fprintf(&b, "%dx %s", item.Quantity, item.Name)
		if len(item.Options) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(item.Options, ", "))
		}
		fmt.Fprintf(&b, " - %s\n", item.Total)
	}

	fmt.Fprintf(&b, "\nSubtotal: %s\n", order.Subtotal)
	fmt.Fprintf(&b, "Delivery fee: %s\n", order.DeliveryFee)
	fmt.Fprintf(&b, "Total: %s\n", order.Total)

	if order.IsAsap {
		b.WriteString("Timing: as soon as possible\n")
	} else {
		fmt.Fprintf(&b, "Timing: scheduled for %s\n", order.ScheduledFor.Format("2006-01-02 15:04"))
	}
	if order.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", order.Notes)
	}

	phone := strings.TrimPrefix(kitchenPhone, "+")
	return fmt.Sprintf("https://wa.me/%s?text=%s", phone, url.QueryEscape(b.String()))
}
