package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sara-kitchen/api/internal/cart"
	"github.com/sara-kitchen/api/internal/database"
	"github.com/sara-kitchen/api/internal/middleware"
	"github.com/sara-kitchen/api/internal/options"
	"github.com/sara-kitchen/api/internal/service"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	Checkout(ctx context.Context, req service.CheckoutRequest) (*service.CheckoutResult, error)
}

// OrderStore defines the database methods needed by order read handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrderByCodeAndPhone(ctx context.Context, orderCode, phone string) (database.Order, error)
	ListOrdersByPhone(ctx context.Context, phone string) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
}

// OrderHandler handles checkout and customer-facing order reads.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
	carts *cart.Service
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore, carts *cart.Service) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, carts: carts}
}

// RegisterRoutes registers public order endpoints.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders/checkout", h.Checkout)
	r.Get("/orders/track", h.Track)
}

// RegisterCustomerRoutes registers endpoints that require a customer login.
func (h *OrderHandler) RegisterCustomerRoutes(r chi.Router) {
	r.Get("/orders/mine", h.Mine)
}

// --- Request / Response types ---

type checkoutRequest struct {
	CartToken       string `json:"cart_token"`
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerAddress string `json:"customer_address"`
	DeliveryType    string `json:"delivery_type"`
	Notes           string `json:"notes"`
	IsAsap          *bool  `json:"is_asap"`
	ScheduledFor    string `json:"scheduled_for"`
}

type checkoutResponse struct {
	Order        orderResponse       `json:"order"`
	Items        []orderItemResponse `json:"items"`
	WhatsAppLink string              `json:"whatsapp_link"`
}

type orderResponse struct {
	ID              uuid.UUID  `json:"id"`
	OrderCode       string     `json:"order_code"`
	CustomerName    string     `json:"customer_name"`
	CustomerPhone   string     `json:"customer_phone"`
	CustomerAddress string     `json:"customer_address"`
	DeliveryType    string     `json:"delivery_type"`
	Subtotal        string     `json:"subtotal"`
	DeliveryFee     string     `json:"delivery_fee"`
	Discount        string     `json:"discount"`
	Total           string     `json:"total"`
	Notes           *string    `json:"notes"`
	IsAsap          bool       `json:"is_asap"`
	ScheduledFor    *time.Time `json:"scheduled_for"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type orderItemResponse struct {
	ID         uuid.UUID          `json:"id"`
	ItemType   string             `json:"item_type"`
	Name       string             `json:"name"`
	Quantity   int32              `json:"quantity"`
	UnitPrice  string             `json:"unit_price"`
	TotalPrice string             `json:"total_price"`
	Options    []options.Selected `json:"options,omitempty"`
	Notes      *string            `json:"notes"`
}

func toOrderResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:              o.ID,
		OrderCode:       o.OrderCode,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerAddress: o.CustomerAddress,
		DeliveryType:    o.DeliveryType,
		Subtotal:        formatNumeric(o.SubtotalAmount),
		DeliveryFee:     formatNumeric(o.DeliveryFee),
		Discount:        formatNumeric(o.DiscountAmount),
		Total:           formatNumeric(o.TotalAmount),
		IsAsap:          o.IsAsap,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if o.Notes.Valid {
		resp.Notes = &o.Notes.String
	}
	if o.ScheduledFor.Valid {
		t := o.ScheduledFor.Time
		resp.ScheduledFor = &t
	}
	return resp
}

func toOrderItemResponse(it database.OrderItem) orderItemResponse {
	resp := orderItemResponse{
		ID:         it.ID,
		ItemType:   it.ItemType,
		Name:       it.Name,
		Quantity:   it.Quantity,
		UnitPrice:  formatNumeric(it.UnitPrice),
		TotalPrice: formatNumeric(it.TotalPrice),
	}
	if len(it.OptionsDetails) > 0 {
		// options_details is our own snapshot; a decode failure just
		// drops the options from the response
		_ = json.Unmarshal(it.OptionsDetails, &resp.Options)
	}
	if it.Notes.Valid {
		resp.Notes = &it.Notes.String
	}
	return resp
}

// --- Handlers ---

// Checkout turns the stored cart into an order.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	token, err := uuid.Parse(req.CartToken)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cart_token"})
		return
	}

	lines, err := h.carts.Get(r.Context(), token)
	if err != nil {
		log.Printf("ERROR: load cart for checkout: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	isAsap := true
	if req.IsAsap != nil {
		isAsap = *req.IsAsap
	}

	svcReq := service.CheckoutRequest{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		DeliveryType:    req.DeliveryType,
		Notes:           req.Notes,
		IsAsap:          isAsap,
		ScheduledFor:    req.ScheduledFor,
		Lines:           lines,
	}
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		svcReq.UserID = claims.UserID
	}

	result, err := h.svc.Checkout(r.Context(), svcReq)
	if err != nil {
		if isCheckoutValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: checkout: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	// The order exists either way; a failed cart cleanup is only noise.
	if err := h.carts.Clear(r.Context(), token); err != nil {
		log.Printf("ERROR: clear cart after checkout: %v", err)
	}

	items := make([]orderItemResponse, len(result.Items))
	for i, it := range result.Items {
		items[i] = toOrderItemResponse(it)
	}
	writeJSON(w, http.StatusCreated, checkoutResponse{
		Order:        toOrderResponse(result.Order),
		Items:        items,
		WhatsAppLink: result.WhatsAppLink,
	})
}

// Track looks up an order by code and phone. Both must match; a wrong
// phone gets the same 404 as an unknown code so codes cannot be probed.
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	phone := r.URL.Query().Get("phone")
	if code == "" || phone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "code and phone are required"})
		return
	}

	order, err := h.store.GetOrderByCodeAndPhone(r.Context(), code, phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: track order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), order.ID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	itemResp := make([]orderItemResponse, len(items))
	for i, it := range items {
		itemResp[i] = toOrderItemResponse(it)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"order": toOrderResponse(order),
		"items": itemResp,
	})
}

// Mine lists the logged-in customer's orders by their account phone.
func (h *OrderHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil || claims.Phone == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orders, err := h.store.ListOrdersByPhone(r.Context(), claims.Phone)
	if err != nil {
		log.Printf("ERROR: list my orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func isCheckoutValidationError(err error) bool {
	for _, target := range []error{
		service.ErrEmptyCart, service.ErrCustomerName, service.ErrCustomerPhone,
		service.ErrCustomerAddress, service.ErrInvalidDeliveryType,
		service.ErrScheduleRequired, service.ErrInvalidSchedule,
		service.ErrItemUnavailable, service.ErrItemNotFound,
		options.ErrUnknownValue, options.ErrRequiredChoice,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
