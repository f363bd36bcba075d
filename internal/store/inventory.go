package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/shelfaware/shelfaware/internal/classify"
	"github.com/shelfaware/shelfaware/internal/metrics"
	"github.com/shelfaware/shelfaware/internal/models"
)

// Repository is the record-keeping capability the HTTP handlers depend on.
// The slot-backed InventoryStore is the default implementation; a remote
// record API can stand in via RemoteRepository.
type Repository interface {
	List() ([]models.InventoryItem, error)
	Add(draft models.InventoryItem) (models.InventoryItem, error)
	Update(id string, patch models.ItemPatch) (models.InventoryItem, error)
	Remove(id string) error
}

// InventoryStore keeps the working list of inventory items consistent with
// the durable slot. Every mutation is a single read-modify-persist step under
// the lock, so no partial state is ever visible to readers in this process.
// Cross-process writers are last-writer-wins over the whole list.
type InventoryStore struct {
	slot  Slot
	mu    sync.RWMutex
	items []models.InventoryItem
	now   func() time.Time
}

var _ Repository = (*InventoryStore)(nil)

// NewInventoryStore creates a store over the given slot. Call Load before
// serving reads.
func NewInventoryStore(slot Slot) *InventoryStore {
	return &InventoryStore{
		slot: slot,
		now:  time.Now,
	}
}

// Load reads the inventory list from the slot. On first run the slot is
// empty: the fixed seed set is written back so the list is never empty.
func (s *InventoryStore) Load() ([]models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok, err := s.slot.Read(SlotInventory)
	if err != nil {
		return nil, err
	}
	if ok {
		var items []models.InventoryItem
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("parsing stored inventory: %w", err)
		}
		s.items = items
		s.updateGauges()
		return s.snapshot(), nil
	}

	s.items = SeedItems(s.now())
	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	log.WithField("items", len(s.items)).Info("Bootstrapped inventory slot with seed data")
	return s.snapshot(), nil
}

// List returns the current inventory list
func (s *InventoryStore) List() ([]models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(), nil
}

// Add classifies the draft, assigns an id when the draft has none, appends
// it and persists the full list. The stored item is returned.
func (s *InventoryStore) Add(draft models.InventoryItem) (models.InventoryItem, error) {
	expiry, err := models.ParseDate(draft.ExpiryDate)
	if err != nil {
		return models.InventoryItem{}, fmt.Errorf("%w: %q", ErrBadExpiryDate, draft.ExpiryDate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := classify.Classify(expiry, s.now())
	draft.DaysUntilExpiry = res.DaysUntilExpiry
	draft.Urgency = res.Urgency
	draft.SuggestedDiscount = res.SuggestedDiscount
	if draft.ID == "" {
		draft.ID = uuid.New().String()
	}

	s.items = append(s.items, draft)
	if err := s.persistLocked(); err != nil {
		return models.InventoryItem{}, err
	}

	log.WithFields(log.Fields{
		"id":      draft.ID,
		"name":    draft.Name,
		"urgency": draft.Urgency,
	}).Info("Product added")

	return draft, nil
}

// Update shallow-merges the patch over the first item matching id and
// persists. The classifier is re-run only when the expiry date changed.
// A missing id returns ErrNotFound and leaves the list untouched.
func (s *InventoryStore) Update(id string, patch models.ItemPatch) (models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfLocked(id)
	if idx < 0 {
		return models.InventoryItem{}, ErrNotFound
	}

	updated := s.items[idx]
	expiryChanged := patch.Apply(&updated)
	if expiryChanged {
		expiry, err := models.ParseDate(updated.ExpiryDate)
		if err != nil {
			return models.InventoryItem{}, fmt.Errorf("%w: %q", ErrBadExpiryDate, updated.ExpiryDate)
		}
		res := classify.Classify(expiry, s.now())
		updated.DaysUntilExpiry = res.DaysUntilExpiry
		updated.Urgency = res.Urgency
		updated.SuggestedDiscount = res.SuggestedDiscount
	}

	s.items[idx] = updated
	if err := s.persistLocked(); err != nil {
		return models.InventoryItem{}, err
	}

	return updated, nil
}

// Remove filters out the matching id and persists. Removing an absent id is
// a no-op, so the operation is idempotent.
func (s *InventoryStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	removed := false
	for _, item := range s.items {
		if !removed && item.ID == id {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept

	return s.persistLocked()
}

// Reset overwrites the list with the fixed seed set
func (s *InventoryStore) Reset() ([]models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = SeedItems(s.now())
	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

// AdjustQuantity subtracts delta units from the first item matching id,
// flooring at zero, and persists. Used by redistribution settlement.
func (s *InventoryStore) AdjustQuantity(id string, delta int) (models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfLocked(id)
	if idx < 0 {
		return models.InventoryItem{}, ErrNotFound
	}

	q := s.items[idx].Quantity - delta
	if q < 0 {
		q = 0
	}
	s.items[idx].Quantity = q

	if err := s.persistLocked(); err != nil {
		return models.InventoryItem{}, err
	}
	return s.items[idx], nil
}

// Get returns the first item matching id
func (s *InventoryStore) Get(id string) (models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOfLocked(id)
	if idx < 0 {
		return models.InventoryItem{}, ErrNotFound
	}
	return s.items[idx], nil
}

// AtRisk returns items eligible for redistribution, judged on the stored
// days-until-expiry field.
func (s *InventoryStore) AtRisk() ([]models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.InventoryItem
	for i := range s.items {
		if s.items[i].AtRisk() {
			out = append(out, s.items[i])
		}
	}
	return out, nil
}

// Summary counts items per urgency tier for the dashboard cards
func (s *InventoryStore) Summary() (models.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum models.Summary
	for i := range s.items {
		switch s.items[i].Urgency {
		case classify.TierCritical:
			sum.Critical++
		case classify.TierHigh:
			sum.High++
		case classify.TierMedium:
			sum.Medium++
		default:
			sum.Good++
		}
	}
	return sum, nil
}

// Filter narrows the list by a search term matched against name and category
// and a filter key: "all" (or empty), "expiring", or a category name.
func (s *InventoryStore) Filter(search, filterBy string) ([]models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search = strings.ToLower(search)
	var out []models.InventoryItem
	for i := range s.items {
		item := s.items[i]
		if search != "" &&
			!strings.Contains(strings.ToLower(item.Name), search) &&
			!strings.Contains(strings.ToLower(item.Category), search) {
			continue
		}
		switch {
		case filterBy == "" || filterBy == "all":
		case filterBy == "expiring":
			if !item.AtRisk() {
				continue
			}
		default:
			if !strings.EqualFold(item.Category, filterBy) {
				continue
			}
		}
		out = append(out, item)
	}
	return out, nil
}

// indexOfLocked returns the index of the first item matching id, or -1.
// Duplicate ids therefore resolve to the first match.
func (s *InventoryStore) indexOfLocked(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *InventoryStore) snapshot() []models.InventoryItem {
	out := make([]models.InventoryItem, len(s.items))
	copy(out, s.items)
	return out
}

// persistLocked writes the entire list back to the slot. Callers hold the
// write lock, so readers never see the list and the slot disagree.
func (s *InventoryStore) persistLocked() error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("serializing inventory: %w", err)
	}
	if err := s.slot.Write(SlotInventory, data); err != nil {
		return err
	}
	s.updateGauges()
	return nil
}

func (s *InventoryStore) updateGauges() {
	counts := map[classify.Tier]int{}
	for i := range s.items {
		item := &s.items[i]
		metrics.InventoryLevel.WithLabelValues(item.ID).Set(float64(item.Quantity))
		counts[item.Urgency]++
	}
	for _, tier := range []classify.Tier{classify.TierCritical, classify.TierHigh, classify.TierMedium, classify.TierLow} {
		metrics.UrgencyCount.WithLabelValues(string(tier)).Set(float64(counts[tier]))
	}
}
