package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sara-kitchen/api/internal/database"
	"github.com/sara-kitchen/api/internal/enum"
	"github.com/sara-kitchen/api/internal/media"
	"github.com/shopspring/decimal"
)

// maxImageUploadBytes bounds product image uploads.
const maxImageUploadBytes = 5 << 20

// CatalogStore defines the database methods needed by admin catalog CRUD.
// Satisfied by *database.Queries; narrow interface for testability.
type CatalogStore interface {
	ListCategories(ctx context.Context) ([]database.Category, error)
	CreateCategory(ctx context.Context, arg database.CreateCategoryParams) (database.Category, error)
	UpdateCategory(ctx context.Context, arg database.UpdateCategoryParams) (database.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListProducts(ctx context.Context) ([]database.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
	CreateProduct(ctx context.Context, arg database.CreateProductParams) (database.Product, error)
	UpdateProduct(ctx context.Context, arg database.UpdateProductParams) (database.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	ListOptionGroupsByProduct(ctx context.Context, productID uuid.UUID) ([]database.ProductOptionGroup, error)
	ListOptionValuesByGroup(ctx context.Context, groupID uuid.UUID) ([]database.ProductOptionValue, error)
	CreateOptionGroup(ctx context.Context, arg database.CreateOptionGroupParams) (database.ProductOptionGroup, error)
	DeleteOptionGroup(ctx context.Context, id uuid.UUID) error
	CreateOptionValue(ctx context.Context, arg database.CreateOptionValueParams) (database.ProductOptionValue, error)
	DeleteOptionValue(ctx context.Context, id uuid.UUID) error

	ListOffers(ctx context.Context) ([]database.Offer, error)
	CreateOffer(ctx context.Context, arg database.CreateOfferParams) (database.Offer, error)
	UpdateOffer(ctx context.Context, arg database.UpdateOfferParams) (database.Offer, error)
	DeleteOffer(ctx context.Context, id uuid.UUID) error
}

// CatalogHandler handles admin catalog management.
type CatalogHandler struct {
	store CatalogStore
	media media.Store
}

func NewCatalogHandler(store CatalogStore, mediaStore media.Store) *CatalogHandler {
	return &CatalogHandler{store: store, media: mediaStore}
}

// RegisterRoutes registers admin catalog endpoints on the given Chi router.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/categories", h.ListCategories)
	r.Post("/categories", h.CreateCategory)
	r.Put("/categories/{id}", h.UpdateCategory)
	r.Delete("/categories/{id}", h.DeleteCategory)

	r.Get("/products", h.ListProducts)
	r.Post("/products", h.CreateProduct)
	r.Put("/products/{id}", h.UpdateProduct)
	r.Delete("/products/{id}", h.DeleteProduct)
	r.Post("/products/{id}/image", h.UploadProductImage)

	r.Get("/products/{id}/option-groups", h.ListOptionGroups)
	r.Post("/products/{id}/option-groups", h.CreateOptionGroup)
	r.Delete("/option-groups/{id}", h.DeleteOptionGroup)
	r.Post("/option-groups/{id}/values", h.CreateOptionValue)
	r.Delete("/option-values/{id}", h.DeleteOptionValue)

	r.Get("/offers", h.ListOffers)
	r.Post("/offers", h.CreateOffer)
	r.Put("/offers/{id}", h.UpdateOffer)
	r.Delete("/offers/{id}", h.DeleteOffer)
}

// --- Request / Response types ---

type categoryRequest struct {
	Name         string `json:"name"`
	DisplayOrder int32  `json:"display_order"`
}

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	IsAvailable *bool  `json:"is_available"`
}

type adminProductResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       string    `json:"price"`
	Category    *string   `json:"category"`
	IsAvailable bool      `json:"is_available"`
	ImageURL    string    `json:"image_url,omitempty"`
}

type optionGroupRequest struct {
	Name          string               `json:"name"`
	SelectionType string               `json:"selection_type"`
	IsRequired    bool                 `json:"is_required"`
	SortOrder     int32                `json:"sort_order"`
	Values        []optionValueRequest `json:"values"`
}

type optionValueRequest struct {
	Name            string `json:"name"`
	PriceAdjustment string `json:"price_adjustment"`
	SortOrder       int32  `json:"sort_order"`
}

type offerRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	IsAvailable *bool  `json:"is_available"`
}

type adminOfferResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       string    `json:"price"`
	IsAvailable bool      `json:"is_available"`
	ImageURL    string    `json:"image_url,omitempty"`
}

func (h *CatalogHandler) toAdminProduct(p database.Product) adminProductResponse {
	resp := adminProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       formatNumeric(p.Price),
		IsAvailable: p.IsAvailable,
	}
	if p.Description.Valid {
		resp.Description = &p.Description.String
	}
	if p.Category.Valid {
		resp.Category = &p.Category.String
	}
	if p.ImagePath.Valid {
		resp.ImageURL = h.media.PublicURL(p.ImagePath.String)
	}
	return resp
}

func (h *CatalogHandler) toAdminOffer(o database.Offer) adminOfferResponse {
	resp := adminOfferResponse{
		ID:          o.ID,
		Name:        o.Name,
		Price:       formatNumeric(o.Price),
		IsAvailable: o.IsAvailable,
	}
	if o.Description.Valid {
		resp.Description = &o.Description.String
	}
	if o.ImagePath.Valid {
		resp.ImageURL = h.media.PublicURL(o.ImagePath.String)
	}
	return resp
}

// --- Helpers ---

var errNegativePrice = errors.New("negative price")

func parsePrice(s string) (pgtype.Numeric, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return pgtype.Numeric{}, err
	}
	if d.IsNegative() {
		return pgtype.Numeric{}, errNegativePrice
	}
	return database.DecimalToNumeric(d), nil
}

func writePriceError(w http.ResponseWriter, err error) {
	if errors.Is(err, errNegativePrice) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be >= 0"})
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ID"})
		return uuid.Nil, false
	}
	return id, true
}

// --- Categories ---

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		log.Printf("ERROR: list categories: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = categoryResponse{ID: c.ID, Name: c.Name, DisplayOrder: c.DisplayOrder}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	category, err := h.store.CreateCategory(r.Context(), database.CreateCategoryParams{
		Name:         req.Name,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		log.Printf("ERROR: create category: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse{ID: category.ID, Name: category.Name, DisplayOrder: category.DisplayOrder})
}

func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	category, err := h.store.UpdateCategory(r.Context(), database.UpdateCategoryParams{
		ID:           id,
		Name:         req.Name,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
			return
		}
		log.Printf("ERROR: update category: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, categoryResponse{ID: category.ID, Name: category.Name, DisplayOrder: category.DisplayOrder})
}

func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteCategory(r.Context(), id); err != nil {
		log.Printf("ERROR: delete category: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Products ---

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: list products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	resp := make([]adminProductResponse, len(products))
	for i, p := range products {
		resp[i] = h.toAdminProduct(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Price == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price is required"})
		return
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		writePriceError(w, err)
		return
	}

	desc := pgtype.Text{}
	if req.Description != "" {
		desc = pgtype.Text{String: req.Description, Valid: true}
	}
	category := pgtype.Text{}
	if req.Category != "" {
		category = pgtype.Text{String: req.Category, Valid: true}
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	product, err := h.store.CreateProduct(r.Context(), database.CreateProductParams{
		Name:        req.Name,
		Description: desc,
		Price:       price,
		Category:    category,
		IsAvailable: available,
	})
	if err != nil {
		log.Printf("ERROR: create product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, h.toAdminProduct(product))
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" || req.Price == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and price are required"})
		return
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		writePriceError(w, err)
		return
	}

	current, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: get product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	desc := pgtype.Text{}
	if req.Description != "" {
		desc = pgtype.Text{String: req.Description, Valid: true}
	}
	category := pgtype.Text{}
	if req.Category != "" {
		category = pgtype.Text{String: req.Category, Valid: true}
	}
	available := current.IsAvailable
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	product, err := h.store.UpdateProduct(r.Context(), database.UpdateProductParams{
		ID:          id,
		Name:        req.Name,
		Description: desc,
		Price:       price,
		Category:    category,
		IsAvailable: available,
		ImagePath:   current.ImagePath, // image changes go through UploadProductImage
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: update product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, h.toAdminProduct(product))
}

func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		log.Printf("ERROR: delete product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadProductImage accepts a multipart image, stores it, and points
// the product at the new key. The old image is removed best-effort.
func (h *CatalogHandler) UploadProductImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	current, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: get product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "image file is required"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxImageUploadBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "could not read image"})
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType != "image/png" && contentType != "image/jpeg" && contentType != "image/webp" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "image must be png, jpeg or webp"})
		return
	}

	key, err := h.media.Upload(r.Context(), header.Filename, content, contentType)
	if err != nil {
		log.Printf("ERROR: upload image: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	product, err := h.store.UpdateProduct(r.Context(), database.UpdateProductParams{
		ID:          id,
		Name:        current.Name,
		Description: current.Description,
		Price:       current.Price,
		Category:    current.Category,
		IsAvailable: current.IsAvailable,
		ImagePath:   pgtype.Text{String: key, Valid: true},
	})
	if err != nil {
		log.Printf("ERROR: update product image: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if current.ImagePath.Valid {
		if err := h.media.Delete(r.Context(), current.ImagePath.String); err != nil {
			log.Printf("ERROR: delete old image: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, h.toAdminProduct(product))
}

// --- Option groups and values ---

func (h *CatalogHandler) ListOptionGroups(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r)
	if !ok {
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

func (h *CatalogHandler) CreateOptionGroup(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req optionGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.SelectionType != enum.SelectionTypeSingle && req.SelectionType != enum.SelectionTypeMultiple {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "selection_type must be SINGLE or MULTIPLE"})
		return
	}

	group, err := h.store.CreateOptionGroup(r.Context(), database.CreateOptionGroupParams{
		ProductID:     productID,
		Name:          req.Name,
		SelectionType: req.SelectionType,
		IsRequired:    req.IsRequired,
		SortOrder:     req.SortOrder,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: create option group: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := optionGroupResponse{
		ID:            group.ID,
		Name:          group.Name,
		SelectionType: group.SelectionType,
		IsRequired:    group.IsRequired,
		Values:        []optionValueResponse{},
	}
	for _, v := range req.Values {
		adjustment := database.DecimalToNumeric(decimal.Zero)
		if v.PriceAdjustment != "" {
			adjustment, err = parsePrice(v.PriceAdjustment)
			if err != nil {
				writePriceError(w, err)
				return
			}
		}
		value, err := h.store.CreateOptionValue(r.Context(), database.CreateOptionValueParams{
			GroupID:         group.ID,
			Name:            v.Name,
			PriceAdjustment: adjustment,
			SortOrder:       v.SortOrder,
		})
		if err != nil {
			log.Printf("ERROR: create option value: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp.Values = append(resp.Values, optionValueResponse{
			ID:              value.ID,
			Name:            value.Name,
			PriceAdjustment: formatNumeric(value.PriceAdjustment),
		})
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *CatalogHandler) DeleteOptionGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteOptionGroup(r.Context(), id); err != nil {
		log.Printf("ERROR: delete option group: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) CreateOptionValue(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req optionValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	adjustment := database.DecimalToNumeric(decimal.Zero)
	if req.PriceAdjustment != "" {
		var err error
		adjustment, err = parsePrice(req.PriceAdjustment)
		if err != nil {
			writePriceError(w, err)
			return
		}
	}

	value, err := h.store.CreateOptionValue(r.Context(), database.CreateOptionValueParams{
		GroupID:         groupID,
		Name:            req.Name,
		PriceAdjustment: adjustment,
		SortOrder:       req.SortOrder,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "option group not found"})
			return
		}
		log.Printf("ERROR: create option value: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, optionValueResponse{
		ID:              value.ID,
		Name:            value.Name,
		PriceAdjustment: formatNumeric(value.PriceAdjustment),
	})
}

func (h *CatalogHandler) DeleteOptionValue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteOptionValue(r.Context(), id); err != nil {
		log.Printf("ERROR: delete option value: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Offers ---

func (h *CatalogHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.store.ListOffers(r.Context())
	if err != nil {
		log.Printf("ERROR: list offers: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	resp := make([]adminOfferResponse, len(offers))
	for i, o := range offers {
		resp[i] = h.toAdminOffer(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" || req.Price == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and price are required"})
		return
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		writePriceError(w, err)
		return
	}

	desc := pgtype.Text{}
	if req.Description != "" {
		desc = pgtype.Text{String: req.Description, Valid: true}
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	offer, err := h.store.CreateOffer(r.Context(), database.CreateOfferParams{
		Name:        req.Name,
		Description: desc,
		Price:       price,
		IsAvailable: available,
	})
	if err != nil {
		log.Printf("ERROR: create offer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, h.toAdminOffer(offer))
}

func (h *CatalogHandler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" || req.Price == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and price are required"})
		return
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		writePriceError(w, err)
		return
	}

	desc := pgtype.Text{}
	if req.Description != "" {
		desc = pgtype.Text{String: req.Description, Valid: true}
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	offer, err := h.store.UpdateOffer(r.Context(), database.UpdateOfferParams{
		ID:          id,
		Name:        req.Name,
		Description: desc,
		Price:       price,
		IsAvailable: available,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "offer not found"})
			return
		}
		log.Printf("ERROR: update offer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, h.toAdminOffer(offer))
}

func (h *CatalogHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteOffer(r.Context(), id); err != nil {
		log.Printf("ERROR: delete offer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
