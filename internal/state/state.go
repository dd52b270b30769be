// Package state remembers the active sentence of each document between runs.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	stateFileName = "reading_positions.json"
	hashBytes     = 8192 // First 8KB for content hash
)

// ReadingState stores the position for a single document.
type ReadingState struct {
	SentenceIndex int       `json:"sentence_index"`
	Sentences     int       `json:"sentences"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StateStore manages persistent reading state
type StateStore struct {
	path string
	data map[string]ReadingState
	mu   sync.RWMutex
}

// NewStateStore creates or loads state from dir.
func NewStateStore(dir string) (*StateStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	store := &StateStore{
		path: filepath.Join(dir, stateFileName),
		data: make(map[string]ReadingState),
	}
	if err := store.load(); err != nil {
		// Non-fatal - start with empty state
		store.data = make(map[string]ReadingState)
	}
	return store, nil
}

// HashText generates a content hash for document identity. Only the first
// 8KB take part, so appending to a long document keeps its position.
func HashText(text string) string {
	if len(text) > hashBytes {
		text = text[:hashBytes]
	}
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:16]) // First 16 bytes = 32 hex chars
}

// GetPosition returns the saved sentence for hash, or 0 if there is none or
// it no longer fits a document of sentences sentences.
func (s *StateStore) GetPosition(hash string, sentences int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.data[hash]
	if !ok || state.SentenceIndex < 0 || state.SentenceIndex >= sentences {
		return 0
	}
	return state.SentenceIndex
}

// SetPosition saves the active sentence for hash.
func (s *StateStore) SetPosition(hash string, sentenceIndex, sentences int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[hash] = ReadingState{
		SentenceIndex: sentenceIndex,
		Sentences:     sentences,
		UpdatedAt:     time.Now().UTC(),
	}
	return s.save()
}

// Clear removes saved position for hash
func (s *StateStore) Clear(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, hash)
	return s.save()
}

func (s *StateStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &s.data)
}

func (s *StateStore) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
