package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sara-kitchen/api/internal/database"
	"github.com/sara-kitchen/api/internal/enum"
	"github.com/sara-kitchen/api/internal/middleware"
	"github.com/sara-kitchen/api/internal/service"
)

// DashboardStore defines the database methods needed by staff dashboards.
// Satisfied by *database.Queries; narrow interface for testability.
type DashboardStore interface {
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrdersByStatuses(ctx context.Context, statuses []string, ascending bool) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
}

// StatusServicer is satisfied by *service.StatusService.
type StatusServicer interface {
	Transition(ctx context.Context, orderID uuid.UUID, toStatus, role string) (database.Order, error)
}

// Poller serves the HTTP poll fallback. Satisfied by *ws.Refresher.
type Poller interface {
	Refresh(ctx context.Context) (int64, bool)
}

// DashboardHandler serves the kitchen, driver and admin order views.
type DashboardHandler struct {
	store  DashboardStore
	status StatusServicer
	poller Poller
}

func NewDashboardHandler(store DashboardStore, status StatusServicer, poller Poller) *DashboardHandler {
	return &DashboardHandler{store: store, status: status, poller: poller}
}

// RegisterKitchenRoutes registers the cook queue endpoints.
func (h *DashboardHandler) RegisterKitchenRoutes(r chi.Router) {
	r.Get("/kitchen/orders", h.KitchenOrders)
}

// RegisterDriverRoutes registers the driver run-sheet endpoints.
func (h *DashboardHandler) RegisterDriverRoutes(r chi.Router) {
	r.Get("/driver/orders", h.DriverOrders)
}

// RegisterAdminRoutes registers the admin order endpoints.
func (h *DashboardHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/orders", h.AdminOrders)
}

// RegisterStaffRoutes registers endpoints shared by every staff role.
func (h *DashboardHandler) RegisterStaffRoutes(r chi.Router) {
	r.Patch("/orders/{id}/status", h.UpdateStatus)
	r.Get("/orders/poll", h.Poll)
}

// --- Request types ---

type updateStatusRequest struct {
	Status string `json:"status"`
}

type dashboardOrderResponse struct {
	orderResponse
	Items []orderItemResponse `json:"items"`
}

// --- Handlers ---

// KitchenOrders returns the cook's queue: pending and preparing orders,
// oldest first so nothing gets buried.
func (h *DashboardHandler) KitchenOrders(w http.ResponseWriter, r *http.Request) {
	h.listByStatuses(w, r,
		[]string{enum.OrderStatusPending, enum.OrderStatusPreparing}, true)
}

// DriverOrders returns the driver's run sheet: orders being prepared
// or already out, newest first.
func (h *DashboardHandler) DriverOrders(w http.ResponseWriter, r *http.Request) {
	h.listByStatuses(w, r,
		[]string{enum.OrderStatusPreparing, enum.OrderStatusWithDriver}, false)
}

func (h *DashboardHandler) listByStatuses(w http.ResponseWriter, r *http.Request, statuses []string, ascending bool) {
	orders, err := h.store.ListOrdersByStatuses(r.Context(), statuses, ascending)
	if err != nil {
		log.Printf("ERROR: list orders by statuses: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	h.respondWithItems(w, r, orders)
}

// AdminOrders lists all orders with optional status filter and paging.
func (h *DashboardHandler) AdminOrders(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !isKnownOrderStatus(status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	limit := int32(50)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = int32(n)
	}
	offset := int32(0)
	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offset"})
			return
		}
		offset = int32(n)
	}

	orders, err := h.store.ListOrders(r.Context(), database.ListOrdersParams{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	h.respondWithItems(w, r, orders)
}

// UpdateStatus moves an order through the lifecycle on behalf of the
// authenticated staff member.
func (h *DashboardHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.status.Transition(r.Context(), orderID, req.Status, claims.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrInvalidTransition):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrRoleNotAllowed):
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "role may not perform this transition"})
		case errors.Is(err, service.ErrStatusConflict):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order status changed, reload and retry"})
		default:
			log.Printf("ERROR: update order status: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// Poll is the fallback for dashboards without a live socket. It reuses
// the refresher so a burst of polling clients costs one query.
func (h *DashboardHandler) Poll(w http.ResponseWriter, r *http.Request) {
	count, newOrders := h.poller.Refresh(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"active_orders": count,
		"new_orders":    newOrders,
	})
}

// --- Helpers ---

func (h *DashboardHandler) respondWithItems(w http.ResponseWriter, r *http.Request, orders []database.Order) {
	resp := make([]dashboardOrderResponse, len(orders))
	for i, o := range orders {
		items, err := h.store.ListOrderItemsByOrder(r.Context(), o.ID)
		if err != nil {
			log.Printf("ERROR: list order items: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		itemResp := make([]orderItemResponse, len(items))
		for j, it := range items {
			itemResp[j] = toOrderItemResponse(it)
		}
		resp[i] = dashboardOrderResponse{
			orderResponse: toOrderResponse(o),
			Items:         itemResp,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func isKnownOrderStatus(status string) bool {
	switch status {
	case enum.OrderStatusPending, enum.OrderStatusPreparing, enum.OrderStatusWithDriver,
		enum.OrderStatusDelivered, enum.OrderStatusCancelled:
		return true
	}
	return false
}
