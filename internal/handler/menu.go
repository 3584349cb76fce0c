package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sara-kitchen/api/internal/database"
	"github.com/sara-kitchen/api/internal/media"
)

// MenuStore defines the database methods needed by the public menu.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListCategories(ctx context.Context) ([]database.Category, error)
	ListAvailableProducts(ctx context.Context) ([]database.Product, error)
	ListOptionGroupsByProduct(ctx context.Context, productID uuid.UUID) ([]database.ProductOptionGroup, error)
	ListOptionValuesByGroup(ctx context.Context, groupID uuid.UUID) ([]database.ProductOptionValue, error)
	ListAvailableOffers(ctx context.Context) ([]database.Offer, error)
}

// MenuHandler serves the public menu.
type MenuHandler struct {
	store MenuStore
	media media.Store
}

func NewMenuHandler(store MenuStore, mediaStore media.Store) *MenuHandler {
	return &MenuHandler{store: store, media: mediaStore}
}

// RegisterRoutes registers the public menu endpoints.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.Menu)
	r.Get("/products/{id}/options", h.ProductOptions)
}

// --- Response types ---

type menuResponse struct {
	Categories []categoryResponse    `json:"categories"`
	Products   []menuProductResponse `json:"products"`
	Offers     []offerResponse       `json:"offers"`
}

type categoryResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	DisplayOrder int32     `json:"display_order"`
}

type menuProductResponse struct {
	ID           uuid.UUID             `json:"id"`
	Name         string                `json:"name"`
	Description  *string               `json:"description"`
	Price        string                `json:"price"`
	Category     *string               `json:"category"`
	ImageURL     string                `json:"image_url,omitempty"`
	OptionGroups []optionGroupResponse `json:"option_groups"`
}

type optionGroupResponse struct {
	ID            uuid.UUID             `json:"id"`
	Name          string                `json:"name"`
	SelectionType string                `json:"selection_type"`
	IsRequired    bool                  `json:"is_required"`
	Values        []optionValueResponse `json:"values"`
}

type optionValueResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	PriceAdjustment string    `json:"price_adjustment"`
}

type offerResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       string    `json:"price"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func formatNumeric(n pgtype.Numeric) string {
	return database.NumericToDecimal(n).StringFixed(2)
}

// --- Handlers ---

// Menu returns the full customer-facing menu: categories, available
// products with their option groups, and available offers.
func (h *MenuHandler) Menu(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		log.Printf("ERROR: list categories: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	products, err := h.store.ListAvailableProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: list products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	offers, err := h.store.ListAvailableOffers(r.Context())
	if err != nil {
		log.Printf("ERROR: list offers: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := menuResponse{
		Categories: make([]categoryResponse, len(categories)),
		Products:   make([]menuProductResponse, 0, len(products)),
		Offers:     make([]offerResponse, 0, len(offers)),
	}
	for i, c := range categories {
		resp.Categories[i] = categoryResponse{ID: c.ID, Name: c.Name, DisplayOrder: c.DisplayOrder}
	}

	for _, p := range products {
		mp := menuProductResponse{
			ID:           p.ID,
			Name:         p.Name,
			Price:        formatNumeric(p.Price),
			OptionGroups: []optionGroupResponse{},
		}
		if p.Description.Valid {
			mp.Description = &p.Description.String
		}
		if p.Category.Valid {
			mp.Category = &p.Category.String
		}
		if p.ImagePath.Valid {
			mp.ImageURL = h.media.PublicURL(p.ImagePath.String)
		}

		groups, err := h.store.ListOptionGroupsByProduct(r.Context(), p.ID)
		if err != nil {
			log.Printf("ERROR: list option groups: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		for _, g := range groups {
			og := optionGroupResponse{
				ID:            g.ID,
				Name:          g.Name,
				SelectionType: g.SelectionType,
				IsRequired:    g.IsRequired,
				Values:        []optionValueResponse{},
			}
			values, err := h.store.ListOptionValuesByGroup(r.Context(), g.ID)
			if err != nil {
				log.Printf("ERROR: list option values: %v", err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
				return
			}
			for _, v := range values {
				og.Values = append(og.Values, optionValueResponse{
					ID:              v.ID,
					Name:            v.Name,
					PriceAdjustment: formatNumeric(v.PriceAdjustment),
				})
			}
			mp.OptionGroups = append(mp.OptionGroups, og)
		}
		resp.Products = append(resp.Products, mp)
	}

	for _, o := range offers {
		or := offerResponse{
			ID:        o.ID,
			Name:      o.Name,
			Price:     formatNumeric(o.Price),
			CreatedAt: o.CreatedAt,
		}
		if o.Description.Valid {
			or.Description = &o.Description.String
		}
		if o.ImagePath.Valid {
			or.ImageURL = h.media.PublicURL(o.ImagePath.String)
		}
		resp.Offers = append(resp.Offers, or)
	}

	writeJSON(w, http.StatusOK, resp)
}

// ProductOptions returns one product's option groups, for clients that
// fetch them lazily when the customer opens the item.
func (h *MenuHandler) ProductOptions(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	groups, err := h.store.ListOptionGroupsByProduct(r.Context(), productID)
	if err != nil {
		log.Printf("ERROR: list option groups: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]optionGroupResponse, len(groups))
	for i, g := range groups {
		og := optionGroupResponse{
			ID:            g.ID,
			Name:          g.Name,
			SelectionType: g.SelectionType,
			IsRequired:    g.IsRequired,
			Values:        []optionValueResponse{},
		}
		values, err := h.store.ListOptionValuesByGroup(r.Context(), g.ID)
		if err != nil {
			log.Printf("ERROR: list option values: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		for _, v := range values {
			og.Values = append(og.Values, optionValueResponse{
				ID:              v.ID,
				Name:            v.Name,
				PriceAdjustment: formatNumeric(v.PriceAdjustment),
			})
		}
		resp[i] = og
	}
	writeJSON(w, http.StatusOK, resp)
}
