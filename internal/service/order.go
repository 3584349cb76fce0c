package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sara-kitchen/api/internal/cart"
	"github.com/sara-kitchen/api/internal/database"
	"github.com/sara-kitchen/api/internal/enum"
	"github.com/sara-kitchen/api/internal/notify"
	"github.com/sara-kitchen/api/internal/options"
	"github.com/sara-kitchen/api/internal/pricing"
	"github.com/sara-kitchen/api/internal/ws"
	"github.com/shopspring/decimal"
)

const maxOrderCodeRetries = 3

// Errors returned by the order service.
var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrCustomerName        = errors.New("customer name is required")
	ErrCustomerPhone       = errors.New("customer phone is required")
	ErrCustomerAddress     = errors.New("delivery address is required")
	ErrInvalidDeliveryType = errors.New("invalid delivery_type")
	ErrScheduleRequired    = errors.New("scheduled_for is required when not ASAP")
	ErrInvalidSchedule     = errors.New("invalid scheduled_for")
	ErrItemUnavailable     = errors.New("item is no longer available")
	ErrItemNotFound        = errors.New("item not found")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CheckoutStore defines the DB methods needed to create orders.
// Satisfied by *database.Queries (and its WithTx variant).
type CheckoutStore interface {
	GetNextOrderCodeSeq(ctx context.Context) (int32, error)
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
	GetOffer(ctx context.Context, id uuid.UUID) (database.Offer, error)
	ListOptionGroupsByProduct(ctx context.Context, productID uuid.UUID) ([]database.ProductOptionGroup, error)
	ListOptionValuesByGroup(ctx context.Context, groupID uuid.UUID) ([]database.ProductOptionValue, error)
	GetDeliverySettings(ctx context.Context) (database.DeliverySettings, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
}

// NewCheckoutStore creates a CheckoutStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewCheckoutStore func(db database.DBTX) CheckoutStore

// Broadcaster pushes realtime events to staff dashboards.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	BroadcastToRoles(roles []string, event ws.Event)
}

// CheckoutRequest is the validated input for placing an order. Lines
// come from the customer's stored cart; every price in them is
// recomputed from the catalog before anything is written.
type CheckoutRequest struct {
	UserID          uuid.UUID // zero for guest checkout
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	DeliveryType    string
	Notes           string
	IsAsap          bool
	ScheduledFor    string // RFC3339, required when IsAsap is false
	Lines           []cart.Line
}

// CheckoutResult is the created order plus the WhatsApp hand-off link.
type CheckoutResult struct {
	Order        database.Order
	Items        []database.OrderItem
	WhatsAppLink string
}

// OrderService handles checkout business logic.
type OrderService struct {
	pool         TxBeginner
	newStore     NewCheckoutStore
	hub          Broadcaster
	codePrefix   string
	currency     string
	kitchenPhone string
}

func NewOrderService(pool TxBeginner, newStore NewCheckoutStore, hub Broadcaster, codePrefix, currency, kitchenPhone string) *OrderService {
	return &OrderService{
		pool:         pool,
		newStore:     newStore,
		hub:          hub,
		codePrefix:   codePrefix,
		currency:     currency,
		kitchenPhone: kitchenPhone,
	}
}

// pricedLine is a cart line after server-side re-pricing.
type pricedLine struct {
	params  database.CreateOrderItemParams
	options []options.Selected
}

// Checkout validates the request, re-prices the cart from the catalog,
// and creates the order atomically. Retries up to maxOrderCodeRetries
// times on order code unique constraint violations (race where
// concurrent transactions get the same MAX).
func (s *OrderService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if err := validateCheckout(&req); err != nil {
		return nil, err
	}

	scheduledFor := pgtype.Timestamptz{}
	if !req.IsAsap {
		t, err := time.Parse(time.RFC3339, req.ScheduledFor)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
		}
		scheduledFor = pgtype.Timestamptz{Time: t, Valid: true}
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderCodeRetries; attempt++ {
		result, err := s.checkoutTx(ctx, req, scheduledFor)
		if err == nil {
			return result, nil
		}
		if isOrderCodeConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

func validateCheckout(req *CheckoutRequest) error {
	if len(req.Lines) == 0 {
		return ErrEmptyCart
	}
	if req.CustomerName == "" {
		return ErrCustomerName
	}
	if req.CustomerPhone == "" {
		return ErrCustomerPhone
	}
	switch req.DeliveryType {
	case enum.DeliveryTypePickup:
	case enum.DeliveryTypeInsideCity, enum.DeliveryTypeOutsideCity:
		if req.CustomerAddress == "" {
			return ErrCustomerAddress
		}
	default:
		return ErrInvalidDeliveryType
	}
	if !req.IsAsap && req.ScheduledFor == "" {
		return ErrScheduleRequired
	}
	return nil
}

// isOrderCodeConflict checks if the error is a unique constraint
// violation on the order code (pgconn error code 23505).
func isOrderCodeConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" &&
			(pgErr.ConstraintName == "orders_order_code_key" || pgErr.ConstraintName == "orders_code_seq_key")
	}
	return false
}

// checkoutTx executes the full order creation in a single transaction.
func (s *OrderService) checkoutTx(ctx context.Context, req CheckoutRequest, scheduledFor pgtype.Timestamptz) (*CheckoutResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// --- Generate order code ---
	nextSeq, err := store.GetNextOrderCodeSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("get next order code: %w", err)
	}
	orderCode := fmt.Sprintf("%s-%03d", s.codePrefix, nextSeq)

	// --- Re-price every line from the catalog ---
	subtotal := decimal.Zero
	var lines []pricedLine
	for i, line := range req.Lines {
		priced, lineTotal, err := s.priceLine(ctx, store, line)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}
		subtotal = subtotal.Add(lineTotal)
		lines = append(lines, priced)
	}

	// --- Totals ---
	fees := s.loadFees(ctx, store)
	totals := pricing.ComputeTotals(subtotal, req.DeliveryType, fees, decimal.Zero)

	// --- Insert order ---
	userID := pgtype.UUID{}
	if req.UserID != uuid.Nil {
		userID = pgtype.UUID{Bytes: req.UserID, Valid: true}
	}
	notes := pgtype.Text{}
	if req.Notes != "" {
		notes = pgtype.Text{String: req.Notes, Valid: true}
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		CodeSeq:         nextSeq,
		OrderCode:       orderCode,
		UserID:          userID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		DeliveryType:    req.DeliveryType,
		SubtotalAmount:  database.DecimalToNumeric(totals.Subtotal),
		DeliveryFee:     database.DecimalToNumeric(totals.DeliveryFee),
		DiscountAmount:  database.DecimalToNumeric(totals.Discount),
		TotalAmount:     database.DecimalToNumeric(totals.Total),
		Notes:           notes,
		IsAsap:          req.IsAsap,
		ScheduledFor:    scheduledFor,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// --- Insert items ---
	var items []database.OrderItem
	for _, pl := range lines {
		pl.params.OrderID = order.ID
		item, err := store.CreateOrderItem(ctx, pl.params)
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.hub.BroadcastToRoles(
		[]string{enum.RoleAdmin, enum.RoleCook},
		ws.Event{Type: "order.created", Payload: orderEventPayload(order)},
	)

	return &CheckoutResult{
		Order:        order,
		Items:        items,
		WhatsAppLink: s.whatsAppLink(order, items),
	}, nil
}

// priceLine revalidates one cart line against the catalog and returns
// the insert params plus the line total. Stored cart prices are never
// trusted.
func (s *OrderService) priceLine(ctx context.Context, store CheckoutStore, line cart.Line) (pricedLine, decimal.Decimal, error) {
	if line.Quantity < 1 {
		line.Quantity = 1
	}

	var unitPrice decimal.Decimal
	var name string
	productID := pgtype.UUID{}
	offerID := pgtype.UUID{}
	var selected []options.Selected
	adjustment := decimal.Zero

	switch line.ItemType {
	case enum.ItemTypeOffer:
		offer, err := store.GetOffer(ctx, line.ItemID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return pricedLine{}, decimal.Zero, ErrItemNotFound
			}
			return pricedLine{}, decimal.Zero, fmt.Errorf("get offer: %w", err)
		}
		if !offer.IsAvailable {
			return pricedLine{}, decimal.Zero, ErrItemUnavailable
		}
		unitPrice = database.NumericToDecimal(offer.Price)
		name = offer.Name
		offerID = pgtype.UUID{Bytes: offer.ID, Valid: true}

	default:
		product, err := store.GetProduct(ctx, line.ItemID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return pricedLine{}, decimal.Zero, ErrItemNotFound
			}
			return pricedLine{}, decimal.Zero, fmt.Errorf("get product: %w", err)
		}
		if !product.IsAvailable {
			return pricedLine{}, decimal.Zero, ErrItemUnavailable
		}
		unitPrice = database.NumericToDecimal(product.Price)
		name = product.Name
		productID = pgtype.UUID{Bytes: product.ID, Valid: true}

		groups, err := s.loadOptionGroups(ctx, store, product.ID)
		if err != nil {
			return pricedLine{}, decimal.Zero, err
		}
		chosen := make([]uuid.UUID, len(line.Options))
		for i, sel := range line.Options {
			chosen[i] = sel.ValueID
		}
		selected, adjustment, err = options.ResolveSelection(groups, chosen)
		if err != nil {
			return pricedLine{}, decimal.Zero, err
		}
	}

	lineTotal := pricing.LineTotal(unitPrice, adjustment, line.Quantity)

	var optionsDetails []byte
	if len(selected) > 0 {
		optionsDetails, _ = json.Marshal(selected)
	}
	itemNotes := pgtype.Text{}
	if line.Notes != "" {
		itemNotes = pgtype.Text{String: line.Notes, Valid: true}
	}
	itemType := line.ItemType
	if itemType == "" {
		itemType = enum.ItemTypeProduct
	}

	return pricedLine{
		params: database.CreateOrderItemParams{
			ItemType:       itemType,
			ProductID:      productID,
			OfferID:        offerID,
			Name:           name,
			Quantity:       line.Quantity,
			UnitPrice:      database.DecimalToNumeric(unitPrice.Add(adjustment)),
			TotalPrice:     database.DecimalToNumeric(lineTotal),
			OptionsDetails: optionsDetails,
			Notes:          itemNotes,
		},
		options: selected,
	}, lineTotal, nil
}

func (s *OrderService) loadOptionGroups(ctx context.Context, store CheckoutStore, productID uuid.UUID) ([]options.Group, error) {
	rows, err := store.ListOptionGroupsByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list option groups: %w", err)
	}
	var groups []options.Group
	for _, g := range rows {
		values, err := store.ListOptionValuesByGroup(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("list option values: %w", err)
		}
		group := options.Group{
			ID:            g.ID,
			Name:          g.Name,
			SelectionType: g.SelectionType,
			IsRequired:    g.IsRequired,
		}
		for _, v := range values {
			group.Values = append(group.Values, options.Value{
				ID:              v.ID,
				Name:            v.Name,
				PriceAdjustment: database.NumericToDecimal(v.PriceAdjustment),
			})
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// loadFees reads the delivery fee settings. A missing or unreadable
// settings row yields nil fees so checkout still succeeds with zero
// delivery cost.
func (s *OrderService) loadFees(ctx context.Context, store CheckoutStore) *pricing.Fees {
	settings, err := store.GetDeliverySettings(ctx)
	if err != nil {
		return nil
	}
	return &pricing.Fees{
		InsideCity:  database.NumericToDecimal(settings.InsideCityFee),
		OutsideCity: database.NumericToDecimal(settings.OutsideCityFee),
	}
}

func (s *OrderService) whatsAppLink(order database.Order, items []database.OrderItem) string {
	msg := notify.WhatsAppOrder{
		OrderCode:       order.OrderCode,
		CustomerName:    order.CustomerName,
		CustomerAddress: order.CustomerAddress,
		DeliveryType:    order.DeliveryType,
		Subtotal:        s.formatAmount(order.SubtotalAmount),
		DeliveryFee:     s.formatAmount(order.DeliveryFee),
		Total:           s.formatAmount(order.TotalAmount),
		IsAsap:          order.IsAsap,
		ScheduledFor:    order.ScheduledFor.Time,
		Notes:           order.Notes.String,
	}
	for _, it := range items {
		var optionNames []string
		if len(it.OptionsDetails) > 0 {
			var selected []options.Selected
			if err := json.Unmarshal(it.OptionsDetails, &selected); err == nil {
				for _, sel := range selected {
					optionNames = append(optionNames, sel.ValueName)
				}
			}
		}
		msg.Items = append(msg.Items, notify.WhatsAppItem{
			Name:     it.Name,
			Quantity: it.Quantity,
			Options:  optionNames,
			Total:    s.formatAmount(it.TotalPrice),
		})
	}
	return notify.ComposeWhatsAppLink(s.kitchenPhone, msg)
}

func (s *OrderService) formatAmount(n pgtype.Numeric) string {
	return fmt.Sprintf("%s %s", database.NumericToDecimal(n).StringFixed(2), s.currency)
}

func orderEventPayload(order database.Order) json.RawMessage {
	payload, _ := json.Marshal(map[string]interface{}{
		"id":         order.ID,
		"order_code": order.OrderCode,
		"status":     order.Status,
	})
	return payload
}
