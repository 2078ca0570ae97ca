package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestComputeHash(t *testing.T) {
	// Create temp file with known content
	tmpDir := t.TempDir()
	file1 := filepath.Join(tmpDir, "tese1.json")
	file2 := filepath.Join(tmpDir, "tese2.json")
	file3 := filepath.Join(tmpDir, "tese1_copia.json")

	os.WriteFile(file1, []byte(`{"type":"doc","content":[]}`), 0644)
	os.WriteFile(file2, []byte(`{"type":"doc","content":[{"type":"paragraph"}]}`), 0644)
	os.WriteFile(file3, []byte(`{"type":"doc","content":[]}`), 0644) // Same as file1

	hash1, err := ComputeHash(file1)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}
	hash2, err := ComputeHash(file2)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}
	hash3, err := ComputeHash(file3)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}

	if hash1 != hash3 {
		t.Errorf("Same content should produce same hash: %s != %s", hash1, hash3)
	}
	if hash1 == hash2 {
		t.Errorf("Different content should produce different hash")
	}
	if len(hash1) != 32 {
		t.Errorf("Hash should be 32 chars, got %d", len(hash1))
	}
}

func TestComputeHashMissingFile(t *testing.T) {
	if _, err := ComputeHash(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error")
	}
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg")
	if got := DefaultDir(); got != "/tmp/xdg/teses" {
		t.Errorf("Expected /tmp/xdg/teses, got %s", got)
	}
}

func TestStore(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	store, err := Open("")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	key := "abcdef1234567890abcdef1234567890"

	if idx := store.ImageIndex(key); idx != 0 {
		t.Errorf("Expected 0 for unknown key, got %d", idx)
	}

	if err := store.SetImageIndex(key, 3); err != nil {
		t.Fatalf("SetImageIndex failed: %v", err)
	}
	if idx := store.ImageIndex(key); idx != 3 {
		t.Errorf("Expected 3, got %d", idx)
	}

	fixed := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	for want := 1; want <= 3; want++ {
		views, err := store.IncrementViews(key)
		if err != nil {
			t.Fatalf("IncrementViews failed: %v", err)
		}
		if views != want {
			t.Errorf("Expected %d views, got %d", want, views)
		}
	}
	st := store.Get(key)
	if st.ImageIndex != 3 {
		t.Errorf("IncrementViews should keep the image index, got %d", st.ImageIndex)
	}
	if !st.LastOpened.Equal(fixed) {
		t.Errorf("Expected last opened %v, got %v", fixed, st.LastOpened)
	}

	if err := store.Clear(key); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if st := store.Get(key); st.Views != 0 || st.ImageIndex != 0 {
		t.Errorf("Expected zero state after clear, got %+v", st)
	}
}

func TestStorePersistence(t *testing.T) {
	dir := t.TempDir()
	key := "abcdef1234567890abcdef1234567890"

	store1, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	store1.SetImageIndex(key, 2)
	store1.IncrementViews(key)

	store2, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	st := store2.Get(key)
	if st.ImageIndex != 2 || st.Views != 1 {
		t.Errorf("Expected persisted state, got %+v", st)
	}

	if _, err := os.Stat(filepath.Join(dir, stateFileName+".tmp")); !os.IsNotExist(err) {
		t.Error("temporary file should not remain")
	}
}

func TestStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, stateFileName), []byte("{not json"), 0644)

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open should tolerate a corrupt file: %v", err)
	}
	if views, _ := store.IncrementViews("x"); views != 1 {
		t.Errorf("Expected fresh state, got %d views", views)
	}
}
