package redistribute

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shelfaware/shelfaware/internal/models"
	"github.com/shelfaware/shelfaware/internal/places"
	"github.com/shelfaware/shelfaware/internal/store"
)

func newTestStores(t *testing.T) (*store.InventoryStore, *store.HistoryStore) {
	t.Helper()

	slot, err := store.NewFileSlot(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create file slot: %v", err)
	}
	inv := store.NewInventoryStore(slot)
	if _, err := inv.Load(); err != nil {
		t.Fatalf("Failed to load inventory: %v", err)
	}
	hist := store.NewHistoryStore(slot)
	if _, err := hist.Load(); err != nil {
		t.Fatalf("Failed to load history: %v", err)
	}
	return inv, hist
}

func addItem(t *testing.T, inv *store.InventoryStore, id string, quantity int) models.InventoryItem {
	t.Helper()

	item, err := inv.Add(models.InventoryItem{
		ID:         id,
		Name:       "Sourdough Loaf",
		Category:   "Bakery",
		Quantity:   quantity,
		ExpiryDate: time.Now().Add(30 * time.Hour).Format(time.RFC3339),
		Price:      decimal.RequireFromString("4.50"),
		Street:     "42 Market Street",
		City:       "Springfield",
		State:      "IL",
		Zip:        "62701",
	})
	if err != nil {
		t.Fatalf("Failed to add item: %v", err)
	}
	return item
}

func testDestination() models.Destination {
	return models.Destination{
		Name:     "Springfield Food Bank",
		Address:  "12 Oak Ave",
		PlaceID:  "p1",
		Location: models.LatLng{Lat: 39.8, Lng: -89.6},
	}
}

func waitSettled(t *testing.T, w *Workflow) {
	t.Helper()
	select {
	case <-w.Settled():
	case <-time.After(2 * time.Second):
		t.Fatal("settlement did not complete")
	}
}

func TestConfirm_InvalidInputCausesNoTransition(t *testing.T) {
	inv, hist := newTestStores(t)
	item := addItem(t, inv, "R-1", 10)
	w := New(inv, hist, nil, 0, 10*time.Millisecond)

	tests := []struct {
		name        string
		itemID      string
		destination models.Destination
		quantity    int
	}{
		{"zero_quantity", item.ID, testDestination(), 0},
		{"negative_quantity", item.ID, testDestination(), -3},
		{"more_than_available", item.ID, testDestination(), 11},
		{"no_destination", item.ID, models.Destination{}, 2},
		{"unknown_item", "SKU_GHOST", testDestination(), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if accepted := w.Confirm(tt.itemID, tt.destination, tt.quantity); accepted {
				t.Error("invalid confirm was accepted")
			}
			if w.State() != StateIdle {
				t.Errorf("state = %s, expected idle", w.State())
			}
		})
	}

	after, err := inv.Get(item.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if after.Quantity != 10 {
		t.Errorf("quantity = %d, expected unchanged 10", after.Quantity)
	}
	if len(hist.List()) != 0 {
		t.Errorf("history has %d records, expected none", len(hist.List()))
	}
}

func TestConfirm_DeliversAndLogsHistory(t *testing.T) {
	inv, hist := newTestStores(t)
	item := addItem(t, inv, "R-2", 10)
	w := New(inv, hist, nil, 0, 10*time.Millisecond)

	if accepted := w.Confirm(item.ID, testDestination(), 4); !accepted {
		t.Fatal("valid confirm was rejected")
	}
	waitSettled(t, w)

	after, err := inv.Get(item.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if after.Quantity != 6 {
		t.Errorf("quantity = %d, expected 6", after.Quantity)
	}

	records := hist.List()
	if len(records) != 1 {
		t.Fatalf("history has %d records, expected 1", len(records))
	}
	rec := records[0]
	if rec.Product != item.Name || rec.Quantity != 4 {
		t.Errorf("record = %+v", rec)
	}
	if rec.DestinationName != "Springfield Food Bank" || rec.DestinationAddress != "12 Oak Ave" {
		t.Errorf("record destination = %s / %s", rec.DestinationName, rec.DestinationAddress)
	}
	if rec.Status != models.RedistributionStatusDelivered {
		t.Errorf("record status = %s, expected Delivered", rec.Status)
	}

	// The workflow returns to idle after the display delay
	deadline := time.Now().Add(time.Second)
	for w.State() != StateIdle {
		if time.Now().After(deadline) {
			t.Fatalf("state = %s, never returned to idle", w.State())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestConfirm_MultipleTransfersPrependHistory(t *testing.T) {
	inv, hist := newTestStores(t)
	item := addItem(t, inv, "R-3", 10)
	w := New(inv, hist, nil, 0, 0)

	if !w.Confirm(item.ID, testDestination(), 2) {
		t.Fatal("first confirm rejected")
	}
	waitSettled(t, w)

	// Wait until the workflow is idle again before the second transfer
	deadline := time.Now().Add(time.Second)
	for w.State() != StateIdle {
		if time.Now().After(deadline) {
			t.Fatal("workflow never returned to idle")
		}
		time.Sleep(5 * time.Millisecond)
	}

	second := testDestination()
	second.Name = "Corner Grocery"
	if !w.Confirm(item.ID, second, 3) {
		t.Fatal("second confirm rejected")
	}
	waitSettled(t, w)

	after, _ := inv.Get(item.ID)
	if after.Quantity != 5 {
		t.Errorf("quantity = %d, expected 5", after.Quantity)
	}

	records := hist.List()
	if len(records) != 2 {
		t.Fatalf("history has %d records, expected 2", len(records))
	}
	if records[0].DestinationName != "Corner Grocery" {
		t.Errorf("newest record first violated: %s", records[0].DestinationName)
	}
}

func TestDestinations_ResolvesViaGeocodeAndPlaces(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":39.78,"lng":-89.65}}}]}`))
	}))
	defer geo.Close()
	nearby := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"OK","results":[{"name":"Springfield Food Bank","vicinity":"12 Oak Ave","place_id":"p1","geometry":{"location":{"lat":39.8,"lng":-89.6}}}]}`))
	}))
	defer nearby.Close()

	inv, hist := newTestStores(t)
	item := addItem(t, inv, "R-4", 10)
	w := New(inv, hist, places.NewClient(geo.URL, nearby.URL, "test-key"), 0, 0)

	dests, err := w.Destinations(item.ID)
	if err != nil {
		t.Fatalf("Destinations failed: %v", err)
	}
	if len(dests) != 1 || dests[0].Name != "Springfield Food Bank" {
		t.Errorf("destinations = %+v", dests)
	}
}

func TestDestinations_GeocodeFailureLeavesListEmpty(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	defer geo.Close()

	inv, hist := newTestStores(t)
	item := addItem(t, inv, "R-5", 10)
	w := New(inv, hist, places.NewClient(geo.URL, geo.URL, "test-key"), 0, 0)

	dests, err := w.Destinations(item.ID)
	if !errors.Is(err, places.ErrGeocodeFailed) {
		t.Errorf("Destinations returned %v, expected ErrGeocodeFailed", err)
	}
	if len(dests) != 0 {
		t.Errorf("destinations = %+v, expected none", dests)
	}
}

func TestDestinations_NoAddressFields(t *testing.T) {
	inv, hist := newTestStores(t)
	item, err := inv.Add(models.InventoryItem{
		ID:         "R-6",
		Name:       "Unlocated",
		Quantity:   5,
		ExpiryDate: time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	w := New(inv, hist, nil, 0, 0)
	if _, err := w.Destinations(item.ID); !errors.Is(err, ErrNoDestinations) {
		t.Errorf("Destinations returned %v, expected ErrNoDestinations", err)
	}
}

func TestDestinations_UnknownItem(t *testing.T) {
	inv, hist := newTestStores(t)
	w := New(inv, hist, nil, 0, 0)

	if _, err := w.Destinations("SKU_GHOST"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Destinations returned %v, expected ErrNotFound", err)
	}
}
