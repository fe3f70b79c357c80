package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ============================================================================
// Flat-File Stores
// ============================================================================

// Tallies and Immunities are the two process-wide stores. Both are loaded
// once at startup and written through on every mutation.
var (
	Tallies    *TallyStore
	Immunities *ImmuneStore
)

const (
	tallyFileName  = "tallies.json"
	immuneFileName = "immune.json"
)

// InitStores creates and loads both stores from dataDir.
func InitStores(dataDir string) {
	Tallies = NewTallyStore(filepath.Join(dataDir, tallyFileName))
	Tallies.Load()
	Immunities = NewImmuneStore(filepath.Join(dataDir, immuneFileName))
	Immunities.Load()
}

// loadStoreFile reads a JSON store file into dst. A missing file leaves dst
// untouched; a corrupt file is logged and treated as empty.
func loadStoreFile(path string, dst any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			LogStore(MsgStoreLoadFail, filepath.Base(path), err)
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		LogStore(MsgStoreCorrupt, filepath.Base(path), err)
		return false
	}
	return true
}

// saveStoreFile writes src as indented JSON, creating the directory if
// needed. Write failures are logged and dropped, never propagated.
func saveStoreFile(path string, src any) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		LogStore(MsgStoreSaveFail, filepath.Base(path), err)
		return
	}
	data, err := json.MarshalIndent(src, "", "  ")
	if err != nil {
		LogStore(MsgStoreSaveFail, filepath.Base(path), err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		LogStore(MsgStoreSaveFail, filepath.Base(path), err)
	}
}

// --- Tally Store ---

// TallyEntry is one user's strike count in a sorted snapshot.
type TallyEntry struct {
	UserID  string
	Strikes int
}

// TallyStore maps user IDs to strike counts. Every mutation is a single
// lock-held read-modify-write-persist sequence.
type TallyStore struct {
	mu     sync.Mutex
	path   string
	counts map[string]int
}

func NewTallyStore(path string) *TallyStore {
	return &TallyStore{
		path:   path,
		counts: make(map[string]int),
	}
}

func (s *TallyStore) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int)
	if loadStoreFile(s.path, &counts) {
		s.counts = counts
		LogStore(MsgStoreLoaded, filepath.Base(s.path), len(counts))
	}
}

// Increment adds one strike and returns the new count.
func (s *TallyStore) Increment(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts[userID]++
	saveStoreFile(s.path, s.counts)
	return s.counts[userID]
}

// Count returns the current strike count for a user (0 if absent).
func (s *TallyStore) Count(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[userID]
}

// Reset removes a user's entry, reporting the prior count and whether an
// entry existed.
func (s *TallyStore) Reset(userID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior, ok := s.counts[userID]
	if !ok {
		return 0, false
	}
	delete(s.counts, userID)
	saveStoreFile(s.path, s.counts)
	return prior, true
}

// ClearAll wipes every entry and persists the empty map.
func (s *TallyStore) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts = make(map[string]int)
	saveStoreFile(s.path, s.counts)
}

func (s *TallyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counts)
}

// Entries returns a snapshot sorted by strikes descending. Ties sort by
// user ID so the order is deterministic.
func (s *TallyStore) Entries() []TallyEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]TallyEntry, 0, len(s.counts))
	for userID, strikes := range s.counts {
		entries = append(entries, TallyEntry{UserID: userID, Strikes: strikes})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Strikes != entries[j].Strikes {
			return entries[i].Strikes > entries[j].Strikes
		}
		return entries[i].UserID < entries[j].UserID
	})
	return entries
}

// --- Immune Store ---

// ImmuneStore maps user IDs to an immunity flag. Absence means not immune.
type ImmuneStore struct {
	mu    sync.Mutex
	path  string
	users map[string]bool
}

func NewImmuneStore(path string) *ImmuneStore {
	return &ImmuneStore{
		path:  path,
		users: make(map[string]bool),
	}
}

func (s *ImmuneStore) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make(map[string]bool)
	if loadStoreFile(s.path, &users) {
		s.users = users
		LogStore(MsgStoreLoaded, filepath.Base(s.path), len(users))
	}
}

// Toggle flips a user's immunity and returns the new state.
func (s *ImmuneStore) Toggle(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.users[userID] {
		delete(s.users, userID)
		saveStoreFile(s.path, s.users)
		return false
	}
	s.users[userID] = true
	saveStoreFile(s.path, s.users)
	return true
}

func (s *ImmuneStore) IsImmune(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userID]
}
