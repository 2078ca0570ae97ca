// Package state persists per-article reading state between sessions: the
// gallery image last viewed and how many times the article was opened.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	stateFileName = "articles.json"
	hashBytes     = 8192 // First 8KB for content hash
)

// ArticleState stores what is remembered about one article.
type ArticleState struct {
	ImageIndex int       `json:"image_index"`
	Views      int       `json:"views"`
	LastOpened time.Time `json:"last_opened,omitzero"`
}

// Store manages persistent article state in a single JSON file.
type Store struct {
	path string
	data map[string]ArticleState
	mu   sync.RWMutex
	now  func() time.Time
}

// Open creates or loads the store in dir. An empty dir means DefaultDir.
func Open(dir string) (*Store, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}

	store := &Store{
		path: filepath.Join(dir, stateFileName),
		data: make(map[string]ArticleState),
		now:  time.Now,
	}
	if err := store.load(); err != nil {
		// Non-fatal - start with empty state
		store.data = make(map[string]ArticleState)
	}
	return store, nil
}

// DefaultDir returns XDG_STATE_HOME/teses or ~/.local/state/teses
func DefaultDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "teses")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "teses")
}

// ComputeHash generates content hash for file identity
func ComputeHash(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, hashBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}

	hash := sha256.Sum256(buf[:n])
	return hex.EncodeToString(hash[:16]), nil // First 16 bytes = 32 hex chars
}

// Get returns the saved state for key, or the zero state if not found.
func (s *Store) Get(key string) ArticleState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key]
}

// ImageIndex returns the last viewed gallery image, or 0 if not found.
func (s *Store) ImageIndex(key string) int {
	return s.Get(key).ImageIndex
}

// SetImageIndex saves the last viewed gallery image.
func (s *Store) SetImageIndex(key string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.data[key]
	st.ImageIndex = index
	s.data[key] = st
	return s.save()
}

// IncrementViews records one more opening of the article and returns the new
// count.
func (s *Store) IncrementViews(key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.data[key]
	st.Views++
	st.LastOpened = s.now().UTC()
	s.data[key] = st
	return st.Views, s.save()
}

// Clear removes saved state for key
func (s *Store) Clear(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return s.save()
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &s.data)
}

// save writes through a temporary file so a crash never leaves a truncated
// state file behind.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}
