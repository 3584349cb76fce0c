package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sara-kitchen/api/internal/database"
	"github.com/sara-kitchen/api/internal/middleware"
)

// AddressStore defines the database methods needed by address handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type AddressStore interface {
	ListAddressesByUser(ctx context.Context, userID uuid.UUID) ([]database.CustomerAddress, error)
	CreateAddress(ctx context.Context, arg database.CreateAddressParams) (database.CustomerAddress, error)
	DeleteAddress(ctx context.Context, id, userID uuid.UUID) error
}

// AddressHandler manages the logged-in customer's saved addresses.
type AddressHandler struct {
	store AddressStore
}

func NewAddressHandler(store AddressStore) *AddressHandler {
	return &AddressHandler{store: store}
}

// RegisterRoutes registers address endpoints; callers must mount these
// behind authentication.
func (h *AddressHandler) RegisterRoutes(r chi.Router) {
	r.Get("/addresses", h.List)
	r.Post("/addresses", h.Create)
	r.Delete("/addresses/{id}", h.Delete)
}

type addressRequest struct {
	Label       string `json:"label"`
	AddressText string `json:"address_text"`
}

type addressResponse struct {
	ID          uuid.UUID `json:"id"`
	Label       string    `json:"label"`
	AddressText string    `json:"address_text"`
	CreatedAt   time.Time `json:"created_at"`
}

func toAddressResponse(a database.CustomerAddress) addressResponse {
	return addressResponse{
		ID:          a.ID,
		Label:       a.Label,
		AddressText: a.AddressText,
		CreatedAt:   a.CreatedAt,
	}
}

func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	addresses, err := h.store.ListAddressesByUser(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: list addresses: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]addressResponse, len(addresses))
	for i, a := range addresses {
		resp[i] = toAddressResponse(a)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req addressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.AddressText == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "address_text is required"})
		return
	}
	if req.Label == "" {
		req.Label = "Home"
	}

	address, err := h.store.CreateAddress(r.Context(), database.CreateAddressParams{
		UserID:      claims.UserID,
		Label:       req.Label,
		AddressText: req.AddressText,
	})
	if err != nil {
		log.Printf("ERROR: create address: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, toAddressResponse(address))
}

func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid address ID"})
		return
	}

	// Scoped to the caller's user ID so one customer cannot delete
	// another's address.
	if err := h.store.DeleteAddress(r.Context(), id, claims.UserID); err != nil {
		log.Printf("ERROR: delete address: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
