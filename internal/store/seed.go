package store

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shelfaware/shelfaware/internal/classify"
	"github.com/shelfaware/shelfaware/internal/models"
)

// seedSpec describes a demo item by its shelf life relative to seed time
type seedSpec struct {
	id        string
	name      string
	category  string
	quantity  int
	price     string
	shelfLife time.Duration
	madeAgo   time.Duration
	warehouse string
	shelf     string
}

var seedSpecs = []seedSpec{
	{"SKU-1001", "Whole Milk 1L", "Dairy", 24, "2.49", 20 * time.Hour, 5 * 24 * time.Hour, "Central", "A3"},
	{"SKU-1002", "Greek Yogurt 500g", "Dairy", 36, "3.99", 3 * 24 * time.Hour, 4 * 24 * time.Hour, "Central", "A4"},
	{"SKU-1003", "Sourdough Loaf", "Bakery", 15, "4.50", 36 * time.Hour, 24 * time.Hour, "Central", "B1"},
	{"SKU-1004", "Strawberries 250g", "Produce", 40, "3.25", 2 * 24 * time.Hour, 24 * time.Hour, "North", "C2"},
	{"SKU-1005", "Orange Juice 1L", "Beverages", 30, "2.99", 6 * 24 * time.Hour, 10 * 24 * time.Hour, "Central", "D5"},
	{"SKU-1006", "Cheddar Block 400g", "Dairy", 18, "5.75", 12 * 24 * time.Hour, 20 * 24 * time.Hour, "North", "A1"},
}

// SeedItems builds the fixed demo inventory used to bootstrap an empty slot.
// Expiry dates are laid out relative to now so the demo always shows every
// urgency tier.
func SeedItems(now time.Time) []models.InventoryItem {
	items := make([]models.InventoryItem, 0, len(seedSpecs))
	for _, s := range seedSpecs {
		expiry := now.Add(s.shelfLife)
		res := classify.Classify(expiry, now)
		items = append(items, models.InventoryItem{
			ID:                s.id,
			Name:              s.name,
			Category:          s.category,
			Quantity:          s.quantity,
			ManufacturingDate: now.Add(-s.madeAgo).Format("2006-01-02"),
			ExpiryDate:        expiry.Format(time.RFC3339),
			DaysUntilExpiry:   res.DaysUntilExpiry,
			Urgency:           res.Urgency,
			SuggestedDiscount: res.SuggestedDiscount,
			Price:             decimal.RequireFromString(s.price),
			Warehouse:         s.warehouse,
			Shelf:             s.shelf,
			Street:            "42 Market Street",
			City:              "Springfield",
			State:             "IL",
			Zip:               "62701",
		})
	}
	return items
}
