package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSlot_ReadMissingKey(t *testing.T) {
	slot, err := NewFileSlot(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create file slot: %v", err)
	}

	data, ok, err := slot.Read("nope")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if ok {
		t.Error("Read of a missing key reported ok")
	}
	if data != nil {
		t.Errorf("Read of a missing key returned data: %q", data)
	}
}

func TestFileSlot_WriteReplacesWholeDocument(t *testing.T) {
	dir := t.TempDir()
	slot, err := NewFileSlot(dir)
	if err != nil {
		t.Fatalf("Failed to create file slot: %v", err)
	}

	if err := slot.Write("doc", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := slot.Write("doc", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}

	data, ok, err := slot.Read("doc")
	if err != nil || !ok {
		t.Fatalf("Read failed: ok=%v err=%v", ok, err)
	}
	if string(data) != `{"v":2}` {
		t.Errorf("Read returned %q, expected the last full document", data)
	}

	// No temp files should survive a completed write
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}
