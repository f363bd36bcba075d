package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Named durable slots. Each holds one JSON-serialized document.
const (
	SlotInventory = "inventoryData"
	SlotHistory   = "redistributionHistory"
)

// Slot is a durable key-value slot holding whole JSON documents. Every write
// replaces the full document; readers never observe a partial write.
type Slot interface {
	// Read returns the stored document and whether the key exists
	Read(key string) ([]byte, bool, error)
	// Write replaces the document under key
	Write(key string, data []byte) error
}

// FileSlot stores each key as one JSON file under a data directory. Writes go
// through a temp file and rename so a crash mid-write leaves the previous
// document intact.
type FileSlot struct {
	dir string
}

// NewFileSlot creates a file-backed slot rooted at dir
func NewFileSlot(dir string) (*FileSlot, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating slot directory: %w", err)
	}
	return &FileSlot{dir: dir}, nil
}

func (s *FileSlot) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Read returns the document stored under key, if any
func (s *FileSlot) Read(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading slot %s: %w", key, err)
	}
	return data, true, nil
}

// Write atomically replaces the document stored under key
func (s *FileSlot) Write(key string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("writing slot %s: %w", key, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing slot %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing slot %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing slot %s: %w", key, err)
	}
	return nil
}
