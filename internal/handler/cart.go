package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sara-kitchen/api/internal/cart"
	"github.com/sara-kitchen/api/internal/enum"
	"github.com/sara-kitchen/api/internal/options"
	"github.com/shopspring/decimal"
)

// cartTokenHeader carries the opaque cart identity. The server mints
// one on first use and the client echoes it back on every cart call.
const cartTokenHeader = "X-Cart-Token"

// CartHandler manages the customer's stored cart.
type CartHandler struct {
	carts *cart.Service
}

func NewCartHandler(carts *cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

// RegisterRoutes registers cart endpoints on the given Chi router.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cart", h.Get)
	r.Post("/cart/items", h.AddItem)
	r.Patch("/cart/items/{index}", h.UpdateItem)
	r.Delete("/cart/items/{index}", h.RemoveItem)
	r.Delete("/cart", h.Clear)
}

// --- Request / Response types ---

type addCartItemRequest struct {
	ItemType  string   `json:"item_type"`
	ItemID    string   `json:"item_id"`
	Name      string   `json:"name"`
	UnitPrice string   `json:"unit_price"`
	Quantity  int32    `json:"quantity"`
	OptionIDs []string `json:"option_ids"`
	Notes     string   `json:"notes"`
}

type updateCartItemRequest struct {
	Quantity int32 `json:"quantity"`
}

type cartResponse struct {
	Token    uuid.UUID   `json:"token"`
	Lines    []cart.Line `json:"lines"`
	Subtotal string      `json:"subtotal"`
}

// --- Handlers ---

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	token, minted := cartToken(r)

	lines, err := h.carts.Get(r.Context(), token)
	if err != nil {
		log.Printf("ERROR: get cart: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	h.respond(w, token, minted, lines)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	token, minted := cartToken(r)

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item_id"})
		return
	}
	itemType := req.ItemType
	if itemType == "" {
		itemType = enum.ItemTypeProduct
	}
	if itemType != enum.ItemTypeProduct && itemType != enum.ItemTypeOffer {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item_type"})
		return
	}

	unitPrice := decimal.Zero
	if req.UnitPrice != "" {
		unitPrice, err = decimal.NewFromString(req.UnitPrice)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid unit_price"})
			return
		}
	}

	// The cart stores raw option value IDs; display prices here are a
	// convenience only, checkout re-resolves everything.
	var selected []options.Selected
	for _, idStr := range req.OptionIDs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid option id"})
			return
		}
		selected = append(selected, options.Selected{ValueID: id})
	}

	lines, err := h.carts.Add(r.Context(), token, cart.Line{
		ItemType:          itemType,
		ItemID:            itemID,
		Name:              req.Name,
		UnitPrice:         unitPrice,
		Quantity:          req.Quantity,
		Options:           selected,
		OptionsAdjustment: decimal.Zero,
		Notes:             req.Notes,
	})
	if err != nil {
		log.Printf("ERROR: add cart item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	h.respond(w, token, minted, lines)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	token, minted := cartToken(r)

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid line index"})
		return
	}

	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	lines, err := h.carts.UpdateQuantity(r.Context(), token, index, req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart line not found"})
			return
		}
		log.Printf("ERROR: update cart item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	h.respond(w, token, minted, lines)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	token, minted := cartToken(r)

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid line index"})
		return
	}

	lines, err := h.carts.Remove(r.Context(), token, index)
	if err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart line not found"})
			return
		}
		log.Printf("ERROR: remove cart item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	h.respond(w, token, minted, lines)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	token, _ := cartToken(r)

	if err := h.carts.Clear(r.Context(), token); err != nil {
		log.Printf("ERROR: clear cart: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// cartToken reads the client's cart token, minting a fresh one when
// the header is absent or malformed. The second return reports whether
// a new token was minted.
func cartToken(r *http.Request) (uuid.UUID, bool) {
	if raw := r.Header.Get(cartTokenHeader); raw != "" {
		if token, err := uuid.Parse(raw); err == nil {
			return token, false
		}
	}
	return uuid.New(), true
}

func (h *CartHandler) respond(w http.ResponseWriter, token uuid.UUID, minted bool, lines []cart.Line) {
	if minted {
		w.Header().Set(cartTokenHeader, token.String())
	}
	if lines == nil {
		lines = []cart.Line{}
	}
	writeJSON(w, http.StatusOK, cartResponse{
		Token:    token,
		Lines:    lines,
		Subtotal: cart.Subtotal(lines).StringFixed(2),
	})
}
