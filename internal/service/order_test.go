package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sara-kitchen/api/internal/cart"
	"github.com/sara-kitchen/api/internal/database"
	"github.com/sara-kitchen/api/internal/enum"
	"github.com/sara-kitchen/api/internal/ws"
	"github.com/shopspring/decimal"
)

// --- Mock implementations ---

// mockTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	commitErr   error
	rollbackErr error
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error          { return m.commitErr }
func (m *mockTx) Rollback(ctx context.Context) error        { return m.rollbackErr }
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockTxBeginner implements TxBeginner.
type mockTxBeginner struct {
	tx  pgx.Tx
	err error
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.tx, m.err
}

// mockCheckoutStore implements CheckoutStore with configurable behavior.
type mockCheckoutStore struct {
	getNextOrderCodeSeqFn       func(ctx context.Context) (int32, error)
	getProductFn                func(ctx context.Context, id uuid.UUID) (database.Product, error)
	getOfferFn                  func(ctx context.Context, id uuid.UUID) (database.Offer, error)
	listOptionGroupsByProductFn func(ctx context.Context, productID uuid.UUID) ([]database.ProductOptionGroup, error)
	listOptionValuesByGroupFn   func(ctx context.Context, groupID uuid.UUID) ([]database.ProductOptionValue, error)
	getDeliverySettingsFn       func(ctx context.Context) (database.DeliverySettings, error)
	createOrderFn               func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	createOrderItemFn           func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
}

func (m *mockCheckoutStore) GetNextOrderCodeSeq(ctx context.Context) (int32, error) {
	return m.getNextOrderCodeSeqFn(ctx)
}
func (m *mockCheckoutStore) GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error) {
	return m.getProductFn(ctx, id)
}
func (m *mockCheckoutStore) GetOffer(ctx context.Context, id uuid.UUID) (database.Offer, error) {
	return m.getOfferFn(ctx, id)
}
func (m *mockCheckoutStore) ListOptionGroupsByProduct(ctx context.Context, productID uuid.UUID) ([]database.ProductOptionGroup, error) {
	return m.listOptionGroupsByProductFn(ctx, productID)
}
func (m *mockCheckoutStore) ListOptionValuesByGroup(ctx context.Context, groupID uuid.UUID) ([]database.ProductOptionValue, error) {
	return m.listOptionValuesByGroupFn(ctx, groupID)
}
func (m *mockCheckoutStore) GetDeliverySettings(ctx context.Context) (database.DeliverySettings, error) {
	return m.getDeliverySettingsFn(ctx)
}
func (m *mockCheckoutStore) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	return m.createOrderFn(ctx, arg)
}
func (m *mockCheckoutStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	return m.createOrderItemFn(ctx, arg)
}

// mockHub records broadcast events.
type mockHub struct {
	events []ws.Event
	roles  [][]string
}

func (m *mockHub) BroadcastToRoles(roles []string, event ws.Event) {
	m.roles = append(m.roles, roles)
	m.events = append(m.events, event)
}

// --- Test helpers ---

func makeNumeric(val string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(val)
	return n
}

func numericEquals(n pgtype.Numeric, expected string) bool {
	d := database.NumericToDecimal(n)
	exp, _ := decimal.NewFromString(expected)
	return d.Equal(exp)
}

// newTestOrderService creates an OrderService with mocked dependencies.
func newTestOrderService(store *mockCheckoutStore) (*OrderService, *mockHub) {
	hub := &mockHub{}
	pool := &mockTxBeginner{tx: &mockTx{}}
	newStore := func(db database.DBTX) CheckoutStore { return store }
	return NewOrderService(pool, newStore, hub, "S", "EGP", "201001234567"), hub
}

// defaultCheckoutStore returns a mock with sensible defaults for a
// one-product order. Individual tests override what they care about.
func defaultCheckoutStore(productID uuid.UUID) *mockCheckoutStore {
	return &mockCheckoutStore{
		getNextOrderCodeSeqFn: func(ctx context.Context) (int32, error) { return 1, nil },
		getProductFn: func(ctx context.Context, id uuid.UUID) (database.Product, error) {
			if id != productID {
				return database.Product{}, pgx.ErrNoRows
			}
			return database.Product{ID: productID, Name: "Koshari", Price: makeNumeric("100"), IsAvailable: true}, nil
		},
		getOfferFn: func(ctx context.Context, id uuid.UUID) (database.Offer, error) {
			return database.Offer{}, pgx.ErrNoRows
		},
		listOptionGroupsByProductFn: func(ctx context.Context, productID uuid.UUID) ([]database.ProductOptionGroup, error) {
			return nil, nil
		},
		listOptionValuesByGroupFn: func(ctx context.Context, groupID uuid.UUID) ([]database.ProductOptionValue, error) {
			return nil, nil
		},
		getDeliverySettingsFn: func(ctx context.Context) (database.DeliverySettings, error) {
			return database.DeliverySettings{
				InsideCityFee:  makeNumeric("20"),
				OutsideCityFee: makeNumeric("50"),
			}, nil
		},
		createOrderFn: func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
			return database.Order{
				ID:              uuid.New(),
				CodeSeq:         arg.CodeSeq,
				OrderCode:       arg.OrderCode,
				CustomerName:    arg.CustomerName,
				CustomerPhone:   arg.CustomerPhone,
				CustomerAddress: arg.CustomerAddress,
				DeliveryType:    arg.DeliveryType,
				SubtotalAmount:  arg.SubtotalAmount,
				DeliveryFee:     arg.DeliveryFee,
				DiscountAmount:  arg.DiscountAmount,
				TotalAmount:     arg.TotalAmount,
				IsAsap:          arg.IsAsap,
				Status:          enum.OrderStatusPending,
			}, nil
		},
		createOrderItemFn: func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
			return database.OrderItem{
				ID:         uuid.New(),
				OrderID:    arg.OrderID,
				ItemType:   arg.ItemType,
				Name:       arg.Name,
				Quantity:   arg.Quantity,
				UnitPrice:  arg.UnitPrice,
				TotalPrice: arg.TotalPrice,
			}, nil
		},
	}
}

func deliveryRequest(productID uuid.UUID) CheckoutRequest {
	return CheckoutRequest{
		CustomerName:    "Mona",
		CustomerPhone:   "0501234567",
		CustomerAddress: "12 Tahrir St",
		DeliveryType:    enum.DeliveryTypeInsideCity,
		IsAsap:          true,
		Lines: []cart.Line{
			{ItemType: enum.ItemTypeProduct, ItemID: productID, Quantity: 2},
		},
	}
}

// --- Tests ---

func TestCheckout_ComputesTotalsFromCatalog(t *testing.T) {
	productID := uuid.New()
	store := defaultCheckoutStore(productID)
	svc, hub := newTestOrderService(store)

	// cart claims a stale price; the catalog price must win
	req := deliveryRequest(productID)
	req.Lines[0].UnitPrice = decimal.NewFromInt(1)

	result, err := svc.Checkout(context.Background(), req)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	// 2 x 100 + 20 inside-city fee
	if !numericEquals(result.Order.SubtotalAmount, "200") {
		t.Errorf("subtotal: got %v, want 200", database.NumericToDecimal(result.Order.SubtotalAmount))
	}
	if !numericEquals(result.Order.TotalAmount, "220") {
		t.Errorf("total: got %v, want 220", database.NumericToDecimal(result.Order.TotalAmount))
	}
	if result.Order.OrderCode != "S-001" {
		t.Errorf("order code: got %q, want S-001", result.Order.OrderCode)
	}
	if !strings.HasPrefix(result.WhatsAppLink, "https://wa.me/201001234567?text=") {
		t.Errorf("whatsapp link: got %q", result.WhatsAppLink)
	}

	if len(hub.events) != 1 || hub.events[0].Type != "order.created" {
		t.Errorf("broadcast: got %v, want one order.created event", hub.events)
	}
}

func TestCheckout_PickupSkipsAddressAndFee(t *testing.T) {
	productID := uuid.New()
	svc, _ := newTestOrderService(defaultCheckoutStore(productID))

	req := deliveryRequest(productID)
	req.DeliveryType = enum.DeliveryTypePickup
	req.CustomerAddress = ""

	result, err := svc.Checkout(context.Background(), req)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !numericEquals(result.Order.TotalAmount, "200") {
		t.Errorf("total: got %v, want 200 (no fee for pickup)", database.NumericToDecimal(result.Order.TotalAmount))
	}
}

func TestCheckout_ValidationErrors(t *testing.T) {
	productID := uuid.New()

	cases := []struct {
		name    string
		mutate  func(*CheckoutRequest)
		wantErr error
	}{
		{"empty cart", func(r *CheckoutRequest) { r.Lines = nil }, ErrEmptyCart},
		{"missing name", func(r *CheckoutRequest) { r.CustomerName = "" }, ErrCustomerName},
		{"missing phone", func(r *CheckoutRequest) { r.CustomerPhone = "" }, ErrCustomerPhone},
		{"missing address", func(r *CheckoutRequest) { r.CustomerAddress = "" }, ErrCustomerAddress},
		{"bad delivery type", func(r *CheckoutRequest) { r.DeliveryType = "DRONE" }, ErrInvalidDeliveryType},
		{"schedule required", func(r *CheckoutRequest) { r.IsAsap = false }, ErrScheduleRequired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestOrderService(defaultCheckoutStore(productID))
			req := deliveryRequest(productID)
			tc.mutate(&req)

			_, err := svc.Checkout(context.Background(), req)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCheckout_ScheduledOrder(t *testing.T) {
	productID := uuid.New()
	store := defaultCheckoutStore(productID)

	var gotScheduled pgtype.Timestamptz
	base := store.createOrderFn
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		gotScheduled = arg.ScheduledFor
		return base(ctx, arg)
	}
	svc, _ := newTestOrderService(store)

	req := deliveryRequest(productID)
	req.IsAsap = false
	req.ScheduledFor = "2025-06-01T18:30:00Z"

	if _, err := svc.Checkout(context.Background(), req); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !gotScheduled.Valid {
		t.Fatal("scheduled_for not persisted")
	}
	if gotScheduled.Time.Hour() != 18 || gotScheduled.Time.Minute() != 30 {
		t.Errorf("scheduled_for: got %v", gotScheduled.Time)
	}
}

func TestCheckout_UnavailableProduct(t *testing.T) {
	productID := uuid.New()
	store := defaultCheckoutStore(productID)
	store.getProductFn = func(ctx context.Context, id uuid.UUID) (database.Product, error) {
		return database.Product{ID: productID, Name: "Koshari", Price: makeNumeric("100"), IsAvailable: false}, nil
	}
	svc, _ := newTestOrderService(store)

	_, err := svc.Checkout(context.Background(), deliveryRequest(productID))
	if !errors.Is(err, ErrItemUnavailable) {
		t.Errorf("got %v, want ErrItemUnavailable", err)
	}
}

func TestCheckout_RetriesOnOrderCodeConflict(t *testing.T) {
	productID := uuid.New()
	store := defaultCheckoutStore(productID)

	attempts := 0
	base := store.createOrderFn
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		attempts++
		if attempts == 1 {
			return database.Order{}, &pgconn.PgError{Code: "23505", ConstraintName: "orders_order_code_key"}
		}
		return base(ctx, arg)
	}
	svc, _ := newTestOrderService(store)

	result, err := svc.Checkout(context.Background(), deliveryRequest(productID))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts: got %d, want 2", attempts)
	}
	if result.Order.OrderCode != "S-001" {
		t.Errorf("order code: got %q", result.Order.OrderCode)
	}
}

func TestCheckout_FeeSettingsUnavailableFallsBackToZero(t *testing.T) {
	productID := uuid.New()
	store := defaultCheckoutStore(productID)
	store.getDeliverySettingsFn = func(ctx context.Context) (database.DeliverySettings, error) {
		return database.DeliverySettings{}, pgx.ErrNoRows
	}
	svc, _ := newTestOrderService(store)

	result, err := svc.Checkout(context.Background(), deliveryRequest(productID))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !numericEquals(result.Order.TotalAmount, "200") {
		t.Errorf("total: got %v, want 200 (fee settings missing)", database.NumericToDecimal(result.Order.TotalAmount))
	}
}
