package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFullAddress_SkipsEmptyFields(t *testing.T) {
	tests := []struct {
		name     string
		item     InventoryItem
		expected string
	}{
		{
			"all_fields",
			InventoryItem{FlatNumber: "2B", ApartmentNumber: "14", Street: "42 Market Street", City: "Springfield", State: "IL", Zip: "62701"},
			"2B, 14, 42 Market Street, Springfield, IL, 62701",
		},
		{
			"partial",
			InventoryItem{Street: "42 Market Street", City: "Springfield"},
			"42 Market Street, Springfield",
		},
		{"empty", InventoryItem{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.FullAddress(); got != tt.expected {
				t.Errorf("FullAddress() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestDiscountedPrice(t *testing.T) {
	item := InventoryItem{
		Price:             decimal.RequireFromString("4.50"),
		SuggestedDiscount: 30,
	}
	expected := decimal.RequireFromString("3.15")
	if got := item.DiscountedPrice(); !got.Equal(expected) {
		t.Errorf("DiscountedPrice() = %s, expected %s", got, expected)
	}

	item.SuggestedDiscount = 0
	if got := item.DiscountedPrice(); !got.Equal(item.Price) {
		t.Errorf("DiscountedPrice() with no discount = %s, expected the full price", got)
	}
}

func TestItemPatch_Apply(t *testing.T) {
	base := InventoryItem{
		ID:         "SKU-1",
		Name:       "Whole Milk 1L",
		Category:   "Dairy",
		Quantity:   24,
		ExpiryDate: "2026-03-12",
	}

	name := "Skim Milk 1L"
	quantity := 10
	item := base
	changed := (&ItemPatch{Name: &name, Quantity: &quantity}).Apply(&item)
	if changed {
		t.Error("expiryChanged reported without an expiry patch")
	}
	if item.Name != "Skim Milk 1L" || item.Quantity != 10 {
		t.Errorf("patched item = %+v", item)
	}
	if item.Category != "Dairy" {
		t.Errorf("unpatched field changed: %q", item.Category)
	}

	sameExpiry := "2026-03-12"
	item = base
	if changed := (&ItemPatch{ExpiryDate: &sameExpiry}).Apply(&item); changed {
		t.Error("patching with the identical expiry reported a change")
	}

	newExpiry := "2026-03-20"
	item = base
	if changed := (&ItemPatch{ExpiryDate: &newExpiry}).Apply(&item); !changed {
		t.Error("patching a new expiry did not report a change")
	}
	if item.ExpiryDate != "2026-03-20" {
		t.Errorf("expiry = %q", item.ExpiryDate)
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2026-03-12"); err != nil {
		t.Errorf("plain date rejected: %v", err)
	}
	if _, err := ParseDate("2026-03-12T09:00:00Z"); err != nil {
		t.Errorf("RFC 3339 rejected: %v", err)
	}
	if _, err := ParseDate("next tuesday"); err == nil {
		t.Error("garbage date accepted")
	}
}
