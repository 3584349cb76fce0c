// Package options resolves a customer's option choices against a
// product's configured option groups.
package options

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownValue   = errors.New("unknown option value")
	ErrRequiredChoice = errors.New("required option not selected")
)

type Value struct {
	ID              uuid.UUID
	Name            string
	PriceAdjustment decimal.Decimal
}

type Group struct {
	ID            uuid.UUID
	Name          string
	SelectionType string // SINGLE or MULTIPLE
	IsRequired    bool
	Values        []Value
}

// Selected is one resolved choice, snapshotted onto the order item so
// later catalog edits cannot change what was sold.
type Selected struct {
	GroupID         uuid.UUID       `json:"group_id"`
	GroupName       string          `json:"group_name"`
	ValueID         uuid.UUID       `json:"value_id"`
	ValueName       string          `json:"value_name"`
	PriceAdjustment decimal.Decimal `json:"price_adjustment"`
}

// ResolveSelection validates the chosen value IDs against the product's
// groups and returns the resolved selections with their summed price
// adjustment. For a SINGLE group the last chosen value wins; for a
// MULTIPLE group every distinct chosen value counts, and a value ID
// repeated in the request counts once. A required group with no choice
// is an error, as is a value ID that belongs to no group.
func ResolveSelection(groups []Group, chosenValueIDs []uuid.UUID) ([]Selected, decimal.Decimal, error) {
	type located struct {
		group Group
		value Value
	}
	index := make(map[uuid.UUID]located)
	for _, g := range groups {
		for _, v := range g.Values {
			index[v.ID] = located{group: g, value: v}
		}
	}

	singles := make(map[uuid.UUID]Selected)
	var multiples []Selected
	chosenGroups := make(map[uuid.UUID]bool)
	seen := make(map[uuid.UUID]bool)

	for _, id := range chosenValueIDs {
		loc, ok := index[id]
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownValue, id)
		}
		// The same value submitted twice counts once.
		if seen[id] {
			continue
		}
		seen[id] = true
		sel := Selected{
			GroupID:         loc.group.ID,
			GroupName:       loc.group.Name,
			ValueID:         loc.value.ID,
			ValueName:       loc.value.Name,
			PriceAdjustment: loc.value.PriceAdjustment,
		}
		chosenGroups[loc.group.ID] = true
		if loc.group.SelectionType == "MULTIPLE" {
			multiples = append(multiples, sel)
		} else {
			singles[loc.group.ID] = sel
		}
	}

	for _, g := range groups {
		if g.IsRequired && !chosenGroups[g.ID] {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", ErrRequiredChoice, g.Name)
		}
	}

	// Preserve the product's group ordering in the snapshot.
	var resolved []Selected
	for _, g := range groups {
		if sel, ok := singles[g.ID]; ok {
			resolved = append(resolved, sel)
		}
		for _, sel := range multiples {
			if sel.GroupID == g.ID {
				resolved = append(resolved, sel)
			}
		}
	}

	adjustment := decimal.Zero
	for _, sel := range resolved {
		adjustment = adjustment.Add(sel.PriceAdjustment)
	}
	return resolved, adjustment, nil
}

// Fingerprint returns a deterministic key for a set of selections.
// Two cart lines for the same item merge only when their fingerprints
// match, so "large" and "small" of the same dish stay separate.
func Fingerprint(selected []Selected) string {
	if len(selected) == 0 {
		return ""
	}
	ids := make([]string, len(selected))
	for i, sel := range selected {
		ids[i] = sel.ValueID.String()
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}
