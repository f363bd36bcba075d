package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shelfaware/shelfaware/internal/models"
)

// HistoryStore keeps the append-only redistribution log, newest first,
// mirrored to its own durable slot.
type HistoryStore struct {
	slot    Slot
	mu      sync.RWMutex
	records []models.RedistributionRecord
}

// NewHistoryStore creates a history store over the given slot
func NewHistoryStore(slot Slot) *HistoryStore {
	return &HistoryStore{slot: slot}
}

// Load reads the history list from the slot. An empty slot means no history.
func (h *HistoryStore) Load() ([]models.RedistributionRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, ok, err := h.slot.Read(SlotHistory)
	if err != nil {
		return nil, err
	}
	if ok {
		var records []models.RedistributionRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parsing stored history: %w", err)
		}
		h.records = records
	}
	return h.snapshot(), nil
}

// Prepend puts the record at the front of the history and persists the list
func (h *HistoryStore) Prepend(rec models.RedistributionRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append([]models.RedistributionRecord{rec}, h.records...)
	data, err := json.Marshal(h.records)
	if err != nil {
		return fmt.Errorf("serializing history: %w", err)
	}
	return h.slot.Write(SlotHistory, data)
}

// List returns the history, newest first
func (h *HistoryStore) List() []models.RedistributionRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshot()
}

func (h *HistoryStore) snapshot() []models.RedistributionRecord {
	out := make([]models.RedistributionRecord, len(h.records))
	copy(out, h.records)
	return out
}
