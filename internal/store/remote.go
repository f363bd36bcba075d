package store

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/shelfaware/shelfaware/internal/models"
	"github.com/shelfaware/shelfaware/internal/patterns"
)

// RemoteRepository talks to another instance's record API instead of the
// local slot. It is the optional remote backing store; the slot-backed
// InventoryStore remains the default source of truth.
type RemoteRepository struct {
	client  *resty.Client
	baseURL string
}

var _ Repository = (*RemoteRepository)(nil)

// NewRemoteRepository creates a repository over a remote record API
func NewRemoteRepository(baseURL string) *RemoteRepository {
	return &RemoteRepository{
		client: resty.New().
			SetTimeout(patterns.DefaultTimeout).
			SetRetryCount(0),
		baseURL: baseURL,
	}
}

// List fetches the full inventory list
func (r *RemoteRepository) List() ([]models.InventoryItem, error) {
	resp, err := r.client.R().Get(r.baseURL + "/api/inventory")
	if err != nil {
		return nil, fmt.Errorf("HTTP error: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("record API returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var items []models.InventoryItem
	if err := json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return items, nil
}

// Add posts a draft and returns the item as stored by the remote, including
// its server-assigned id
func (r *RemoteRepository) Add(draft models.InventoryItem) (models.InventoryItem, error) {
	resp, err := r.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(draft).
		Post(r.baseURL + "/api/inventory")
	if err != nil {
		return models.InventoryItem{}, fmt.Errorf("HTTP error: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return models.InventoryItem{}, fmt.Errorf("record API returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var stored models.InventoryItem
	if err := json.Unmarshal(resp.Body(), &stored); err != nil {
		return models.InventoryItem{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return stored, nil
}

// Update sends a patch for the given id. A remote 404 maps to ErrNotFound.
func (r *RemoteRepository) Update(id string, patch models.ItemPatch) (models.InventoryItem, error) {
	resp, err := r.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(patch).
		Put(r.baseURL + "/api/inventory/" + id)
	if err != nil {
		return models.InventoryItem{}, fmt.Errorf("HTTP error: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return models.InventoryItem{}, ErrNotFound
	}
	if resp.StatusCode() != http.StatusOK {
		return models.InventoryItem{}, fmt.Errorf("record API returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var updated models.InventoryItem
	if err := json.Unmarshal(resp.Body(), &updated); err != nil {
		return models.InventoryItem{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return updated, nil
}

// Remove deletes the item with the given id. Absent ids are a no-op remotely
// as well, so any 2xx or 404 counts as success.
func (r *RemoteRepository) Remove(id string) error {
	resp, err := r.client.R().Delete(r.baseURL + "/api/inventory/" + id)
	if err != nil {
		return fmt.Errorf("HTTP error: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest && resp.StatusCode() != http.StatusNotFound {
		return fmt.Errorf("record API returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
