package options_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sara-kitchen/api/internal/options"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testGroups() ([]options.Group, map[string]uuid.UUID) {
	ids := map[string]uuid.UUID{
		"size":   uuid.New(),
		"small":  uuid.New(),
		"large":  uuid.New(),
		"extras": uuid.New(),
		"cheese": uuid.New(),
		"sauce":  uuid.New(),
	}
	groups := []options.Group{
		{
			ID:            ids["size"],
			Name:          "Size",
			SelectionType: "SINGLE",
			IsRequired:    true,
			Values: []options.Value{
				{ID: ids["small"], Name: "Small", PriceAdjustment: decimal.Zero},
				{ID: ids["large"], Name: "Large", PriceAdjustment: dec("15")},
			},
		},
		{
			ID:            ids["extras"],
			Name:          "Extras",
			SelectionType: "MULTIPLE",
			IsRequired:    false,
			Values: []options.Value{
				{ID: ids["cheese"], Name: "Extra Cheese", PriceAdjustment: dec("5")},
				{ID: ids["sauce"], Name: "Garlic Sauce", PriceAdjustment: dec("3")},
			},
		},
	}
	return groups, ids
}

func TestResolveSelection_RequiredGroupMissing(t *testing.T) {
	groups, ids := testGroups()

	// only an extra chosen, size left empty
	_, _, err := options.ResolveSelection(groups, []uuid.UUID{ids["cheese"]})

	if !errors.Is(err, options.ErrRequiredChoice) {
		t.Errorf("expected ErrRequiredChoice, got %v", err)
	}
}

func TestResolveSelection_SingleLastWins(t *testing.T) {
	groups, ids := testGroups()

	resolved, adj, err := options.ResolveSelection(groups, []uuid.UUID{ids["small"], ids["large"]})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resolved) != 1 {
		t.Fatalf("resolved: got %d selections, want 1", len(resolved))
	}
	if resolved[0].ValueName != "Large" {
		t.Errorf("value: got %q, want Large", resolved[0].ValueName)
	}
	if !adj.Equal(dec("15")) {
		t.Errorf("adjustment: got %s, want 15", adj)
	}
}

func TestResolveSelection_MultipleSumsAdjustments(t *testing.T) {
	groups, ids := testGroups()

	resolved, adj, err := options.ResolveSelection(groups,
		[]uuid.UUID{ids["large"], ids["cheese"], ids["sauce"]})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resolved) != 3 {
		t.Fatalf("resolved: got %d selections, want 3", len(resolved))
	}
	if !adj.Equal(dec("23")) {
		t.Errorf("adjustment: got %s, want 23", adj)
	}
}

func TestResolveSelection_RepeatedValueCountsOnce(t *testing.T) {
	groups, ids := testGroups()

	resolved, adj, err := options.ResolveSelection(groups,
		[]uuid.UUID{ids["large"], ids["cheese"], ids["cheese"]})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resolved) != 2 {
		t.Fatalf("resolved: got %d selections, want 2", len(resolved))
	}
	if !adj.Equal(dec("20")) {
		t.Errorf("adjustment: got %s, want 20", adj)
	}
}

func TestResolveSelection_UnknownValue(t *testing.T) {
	groups, _ := testGroups()

	_, _, err := options.ResolveSelection(groups, []uuid.UUID{uuid.New()})

	if !errors.Is(err, options.ErrUnknownValue) {
		t.Errorf("expected ErrUnknownValue, got %v", err)
	}
}

func TestFingerprint_OrderIndependent(t *testing.T) {
	groups, ids := testGroups()

	a, _, _ := options.ResolveSelection(groups, []uuid.UUID{ids["large"], ids["cheese"]})
	b, _, _ := options.ResolveSelection(groups, []uuid.UUID{ids["cheese"], ids["large"]})

	if options.Fingerprint(a) != options.Fingerprint(b) {
		t.Error("fingerprints should match regardless of selection order")
	}
}

func TestFingerprint_DifferentOptionsDiffer(t *testing.T) {
	groups, ids := testGroups()

	a, _, _ := options.ResolveSelection(groups, []uuid.UUID{ids["small"]})
	b, _, _ := options.ResolveSelection(groups, []uuid.UUID{ids["large"]})

	if options.Fingerprint(a) == options.Fingerprint(b) {
		t.Error("different selections must not share a fingerprint")
	}
}
