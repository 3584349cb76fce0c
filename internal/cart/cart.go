// Package cart stores a customer's in-progress order as a single JSON
// payload keyed by an opaque cart token.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sara-kitchen/api/internal/options"
	"github.com/sara-kitchen/api/internal/pricing"
	"github.com/shopspring/decimal"
)

var ErrLineNotFound = errors.New("cart line not found")

// Storage persists the raw cart payload. Satisfied by *database.Queries;
// narrow interface for testability.
type Storage interface {
	GetCartItems(ctx context.Context, token uuid.UUID) ([]byte, error)
	UpsertCartItems(ctx context.Context, token uuid.UUID, items []byte) error
	DeleteCart(ctx context.Context, token uuid.UUID) error
}

// Line is one entry in the cart. Unit price and option adjustments are
// snapshotted at add time; checkout re-prices everything server-side.
type Line struct {
	ItemType          string             `json:"item_type"`
	ItemID            uuid.UUID          `json:"item_id"`
	Name              string             `json:"name"`
	UnitPrice         decimal.Decimal    `json:"unit_price"`
	Quantity          int32              `json:"quantity"`
	Options           []options.Selected `json:"options,omitempty"`
	OptionsAdjustment decimal.Decimal    `json:"options_adjustment"`
	Notes             string             `json:"notes,omitempty"`
}

// mergeKey decides whether two lines are "the same item". The options
// fingerprint is part of the key, so the same dish with different
// options stays on separate lines.
func (l Line) mergeKey() string {
	return fmt.Sprintf("%s|%s|%s|%s", l.ItemType, l.ItemID, options.Fingerprint(l.Options), l.Notes)
}

type Service struct {
	storage Storage
}

func NewService(storage Storage) *Service {
	return &Service{storage: storage}
}

// Get returns the cart's lines; a token with no stored cart yields an
// empty cart, not an error.
func (s *Service) Get(ctx context.Context, token uuid.UUID) ([]Line, error) {
	raw, err := s.storage.GetCartItems(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []Line{}, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	var lines []Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return lines, nil
}

// Add appends a line, merging it into an existing line with the same
// merge key. Quantity is clamped to at least 1.
func (s *Service) Add(ctx context.Context, token uuid.UUID, line Line) ([]Line, error) {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	lines, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	merged := false
	key := line.mergeKey()
	for i := range lines {
		if lines[i].mergeKey() == key {
			lines[i].Quantity += line.Quantity
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, line)
	}

	if err := s.save(ctx, token, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// UpdateQuantity sets the quantity of the line at index, clamped to at
// least 1. Removing a line is explicit via Remove.
func (s *Service) UpdateQuantity(ctx context.Context, token uuid.UUID, index int, quantity int32) ([]Line, error) {
	lines, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(lines) {
		return nil, ErrLineNotFound
	}
	if quantity < 1 {
		quantity = 1
	}
	lines[index].Quantity = quantity

	if err := s.save(ctx, token, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *Service) Remove(ctx context.Context, token uuid.UUID, index int) ([]Line, error) {
	lines, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(lines) {
		return nil, ErrLineNotFound
	}
	lines = append(lines[:index], lines[index+1:]...)

	if err := s.save(ctx, token, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *Service) Clear(ctx context.Context, token uuid.UUID) error {
	if err := s.storage.DeleteCart(ctx, token); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *Service) save(ctx context.Context, token uuid.UUID, lines []Line) error {
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.UpsertCartItems(ctx, token, raw); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Subtotal sums the priced lines of a cart.
func Subtotal(lines []Line) decimal.Decimal {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(pricing.LineTotal(l.UnitPrice, l.OptionsAdjustment, l.Quantity))
	}
	return subtotal
}
