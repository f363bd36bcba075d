// Package redistribute moves quantities of at-risk stock to nearby external
// destinations and logs each transfer.
package redistribute

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/shelfaware/shelfaware/internal/metrics"
	"github.com/shelfaware/shelfaware/internal/models"
	"github.com/shelfaware/shelfaware/internal/places"
	"github.com/shelfaware/shelfaware/internal/store"
)

// State is the workflow position: idle -> pending -> confirmed -> idle
type State string

// Workflow states
const (
	StateIdle      State = "idle"
	StatePending   State = "pending"
	StateConfirmed State = "confirmed"
)

// ErrNoDestinations is returned when the destination lookup yields nothing
// usable; the caller shows it inline and leaves the list empty
var ErrNoDestinations = errors.New("no nearby destinations found")

// Workflow runs redistribution transfers. A transfer settles asynchronously:
// Confirm moves to pending, settlement decrements stock and writes history,
// and after a fixed display delay the workflow returns to idle.
type Workflow struct {
	inventory *store.InventoryStore
	history   *store.HistoryStore
	places    *places.Client

	settleDelay  time.Duration
	displayDelay time.Duration
	now          func() time.Time

	mu      sync.Mutex
	state   State
	settled chan struct{}
}

// New creates a workflow in the idle state
func New(inventory *store.InventoryStore, history *store.HistoryStore, placesClient *places.Client, settleDelay, displayDelay time.Duration) *Workflow {
	return &Workflow{
		inventory:    inventory,
		history:      history,
		places:       placesClient,
		settleDelay:  settleDelay,
		displayDelay: displayDelay,
		now:          time.Now,
		state:        StateIdle,
		settled:      make(chan struct{}, 1),
	}
}

// State returns the current workflow state
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Settled signals once per completed settlement
func (w *Workflow) Settled() <-chan struct{} {
	return w.settled
}

// Destinations resolves the item's address to nearby locations able to take
// redistributed stock. Either external call failing surfaces an error and an
// empty list.
func (w *Workflow) Destinations(itemID string) ([]models.Destination, error) {
	item, err := w.inventory.Get(itemID)
	if err != nil {
		return nil, err
	}

	address := item.FullAddress()
	if address == "" {
		return nil, fmt.Errorf("%w: item %s has no address fields", ErrNoDestinations, itemID)
	}

	loc, err := w.places.Geocode(address)
	if err != nil {
		return nil, err
	}

	destinations, err := w.places.Nearby(loc, places.DefaultTypeFilter, places.DefaultRadiusMeters)
	if err != nil {
		return nil, err
	}
	if len(destinations) == 0 {
		return nil, ErrNoDestinations
	}
	return destinations, nil
}

// Confirm starts a transfer. Invalid input (no destination, quantity outside
// 1..available, unknown item, workflow busy) causes no transition and no
// error; the return value reports whether the transfer was accepted.
func (w *Workflow) Confirm(itemID string, destination models.Destination, quantity int) bool {
	if destination.Name == "" || quantity < 1 {
		return false
	}

	item, err := w.inventory.Get(itemID)
	if err != nil || quantity > item.Quantity {
		return false
	}

	w.mu.Lock()
	if w.state != StateIdle {
		w.mu.Unlock()
		return false
	}
	w.state = StatePending
	w.mu.Unlock()

	go w.settle(item, destination, quantity)
	return true
}

// settle decrements stock (floored at zero), prepends the history record and
// persists both lists, then holds the confirmed state for the display delay.
func (w *Workflow) settle(item models.InventoryItem, destination models.Destination, quantity int) {
	time.Sleep(w.settleDelay)

	if _, err := w.inventory.AdjustQuantity(item.ID, quantity); err != nil {
		log.WithFields(log.Fields{
			"item_id": item.ID,
			"error":   err.Error(),
		}).Error("Redistribution settlement failed")
		metrics.RedistributionsTotal.WithLabelValues("failed").Inc()
		w.finish()
		return
	}

	rec := models.RedistributionRecord{
		ID:                 uuid.New().String(),
		Product:            item.Name,
		Quantity:           quantity,
		DestinationName:    destination.Name,
		DestinationAddress: destination.Address,
		Timestamp:          w.now(),
		Status:             models.RedistributionStatusDelivered,
	}
	if err := w.history.Prepend(rec); err != nil {
		log.WithField("error", err.Error()).Error("Failed to persist redistribution history")
	}

	metrics.RedistributionsTotal.WithLabelValues("delivered").Inc()
	metrics.RedistributedUnits.Add(float64(quantity))

	log.WithFields(log.Fields{
		"product":     item.Name,
		"quantity":    quantity,
		"destination": destination.Name,
	}).Info("Redistribution delivered")

	w.mu.Lock()
	w.state = StateConfirmed
	w.mu.Unlock()

	w.finish()
}

// finish returns the workflow to idle after the display delay and signals
// settlement
func (w *Workflow) finish() {
	time.AfterFunc(w.displayDelay, func() {
		w.mu.Lock()
		w.state = StateIdle
		w.mu.Unlock()
	})

	select {
	case w.settled <- struct{}{}:
	default:
	}
}

// History returns the transfer log, newest first
func (w *Workflow) History() []models.RedistributionRecord {
	return w.history.List()
}
