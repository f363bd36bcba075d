package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shelfaware/shelfaware/internal/classify"
)

// InventoryItem is a tracked product with classifier-derived expiry fields.
// Urgency and SuggestedDiscount are only ever written together by the
// classifier, never patched independently.
type InventoryItem struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Quantity          int             `json:"quantity"`
	ManufacturingDate string          `json:"manufacturingDate,omitempty"`
	ExpiryDate        string          `json:"expiryDate"`
	DaysUntilExpiry   int             `json:"daysUntilExpiry"`
	Urgency           classify.Tier   `json:"urgency"`
	SuggestedDiscount int             `json:"suggestedDiscount"`
	Price             decimal.Decimal `json:"price"`
	Warehouse         string          `json:"warehouse,omitempty"`
	Shelf             string          `json:"shelf,omitempty"`
	Street            string          `json:"street,omitempty"`
	City              string          `json:"city,omitempty"`
	State             string          `json:"state,omitempty"`
	Zip               string          `json:"zip,omitempty"`
	FlatNumber        string          `json:"flatNumber,omitempty"`
	ApartmentNumber   string          `json:"apartmentNumber,omitempty"`
}

// AtRisk reports whether the item is eligible for redistribution. Evaluated
// against the stored DaysUntilExpiry field, not recomputed.
func (i *InventoryItem) AtRisk() bool {
	return i.DaysUntilExpiry <= classify.AtRiskThresholdDays
}

// FullAddress assembles the postal address used for geocoding from the
// item's location fields, skipping whichever are empty.
func (i *InventoryItem) FullAddress() string {
	parts := []string{i.FlatNumber, i.ApartmentNumber, i.Street, i.City, i.State, i.Zip}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

// DiscountedPrice returns the unit price after the suggested discount
func (i *InventoryItem) DiscountedPrice() decimal.Decimal {
	factor := decimal.NewFromInt(int64(100 - i.SuggestedDiscount)).Div(decimal.NewFromInt(100))
	return i.Price.Mul(factor).Round(2)
}

// ParseDate parses the calendar-date strings carried on inventory items.
// Plain dates and RFC 3339 timestamps are both accepted.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// ItemPatch is a partial update for an inventory item. Only non-nil fields
// are applied; derived fields are deliberately absent so they cannot be set
// independently of the classifier.
type ItemPatch struct {
	Name              *string          `json:"name"`
	Category          *string          `json:"category"`
	Quantity          *int             `json:"quantity" binding:"omitempty,gte=0"`
	ManufacturingDate *string          `json:"manufacturingDate"`
	ExpiryDate        *string          `json:"expiryDate"`
	Price             *decimal.Decimal `json:"price"`
	Warehouse         *string          `json:"warehouse"`
	Shelf             *string          `json:"shelf"`
	Street            *string          `json:"street"`
	City              *string          `json:"city"`
	State             *string          `json:"state"`
	Zip               *string          `json:"zip"`
	FlatNumber        *string          `json:"flatNumber"`
	ApartmentNumber   *string          `json:"apartmentNumber"`
}

// Apply shallow-merges the patch over the item, patch fields winning.
// It reports whether the expiry date changed so the caller knows to
// re-run the classifier.
func (p *ItemPatch) Apply(item *InventoryItem) (expiryChanged bool) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.ManufacturingDate != nil {
		item.ManufacturingDate = *p.ManufacturingDate
	}
	if p.ExpiryDate != nil && *p.ExpiryDate != item.ExpiryDate {
		item.ExpiryDate = *p.ExpiryDate
		expiryChanged = true
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Warehouse != nil {
		item.Warehouse = *p.Warehouse
	}
	if p.Shelf != nil {
		item.Shelf = *p.Shelf
	}
	if p.Street != nil {
		item.Street = *p.Street
	}
	if p.City != nil {
		item.City = *p.City
	}
	if p.State != nil {
		item.State = *p.State
	}
	if p.Zip != nil {
		item.Zip = *p.Zip
	}
	if p.FlatNumber != nil {
		item.FlatNumber = *p.FlatNumber
	}
	if p.ApartmentNumber != nil {
		item.ApartmentNumber = *p.ApartmentNumber
	}
	return expiryChanged
}

// AddProductRequest is the draft submitted to create a product
type AddProductRequest struct {
	ID                string          `json:"id"`
	Name              string          `json:"name" binding:"required"`
	Category          string          `json:"category"`
	Quantity          int             `json:"quantity" binding:"gte=0"`
	ManufacturingDate string          `json:"manufacturingDate"`
	ExpiryDate        string          `json:"expiryDate" binding:"required"`
	Price             decimal.Decimal `json:"price"`
	Warehouse         string          `json:"warehouse"`
	Shelf             string          `json:"shelf"`
	Street            string          `json:"street"`
	City              string          `json:"city"`
	State             string          `json:"state"`
	Zip               string          `json:"zip"`
	FlatNumber        string          `json:"flatNumber"`
	ApartmentNumber   string          `json:"apartmentNumber"`
}

// Item builds the inventory item carried by the request, derived fields unset
func (r *AddProductRequest) Item() InventoryItem {
	return InventoryItem{
		ID:                r.ID,
		Name:              r.Name,
		Category:          r.Category,
		Quantity:          r.Quantity,
		ManufacturingDate: r.ManufacturingDate,
		ExpiryDate:        r.ExpiryDate,
		Price:             r.Price,
		Warehouse:         r.Warehouse,
		Shelf:             r.Shelf,
		Street:            r.Street,
		City:              r.City,
		State:             r.State,
		Zip:               r.Zip,
		FlatNumber:        r.FlatNumber,
		ApartmentNumber:   r.ApartmentNumber,
	}
}

// Summary counts inventory items per urgency tier for the dashboard cards
type Summary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Good     int `json:"good"`
}

// LatLng is a geographic coordinate pair
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Destination is an external location able to receive redistributed stock
type Destination struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	PlaceID  string `json:"placeId"`
	Location LatLng `json:"location"`
}

// RedistributionStatusDelivered is the terminal status written to history records
const RedistributionStatusDelivered = "Delivered"

// RedistributionRecord is one entry in the append-only transfer history,
// newest first
type RedistributionRecord struct {
	ID                 string    `json:"id"`
	Product            string    `json:"product"`
	Quantity           int       `json:"quantity"`
	DestinationName    string    `json:"destinationName"`
	DestinationAddress string    `json:"destinationAddress"`
	Timestamp          time.Time `json:"timestamp"`
	Status             string    `json:"status"`
}

// RedistributeRequest asks to move stock of an at-risk item to a destination
type RedistributeRequest struct {
	ItemID      string      `json:"itemId" binding:"required"`
	Quantity    int         `json:"quantity" binding:"required,gt=0"`
	Destination Destination `json:"destination" binding:"required"`
}
