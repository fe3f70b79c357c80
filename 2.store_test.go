package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTallyStoreIncrementAndCount(t *testing.T) {
	assert := assert.New(t)
	s := NewTallyStore(filepath.Join(t.TempDir(), "tallies.json"))

	assert.Equal(0, s.Count("100"))
	assert.Equal(1, s.Increment("100"))
	assert.Equal(2, s.Increment("100"))
	assert.Equal(1, s.Increment("200"))
	assert.Equal(2, s.Count("100"))
	assert.Equal(2, s.Len())
}

func TestTallyStoreReset(t *testing.T) {
	assert := assert.New(t)
	s := NewTallyStore(filepath.Join(t.TempDir(), "tallies.json"))

	s.Increment("100")
	s.Increment("100")
	s.Increment("100")

	prior, ok := s.Reset("100")
	assert.True(ok)
	assert.Equal(3, prior)
	assert.Equal(0, s.Count("100"))

	prior, ok = s.Reset("100")
	assert.False(ok)
	assert.Equal(0, prior)
}

func TestTallyStoreClearAll(t *testing.T) {
	assert := assert.New(t)
	s := NewTallyStore(filepath.Join(t.TempDir(), "tallies.json"))

	s.Increment("100")
	s.Increment("200")
	s.ClearAll()
	assert.Equal(0, s.Len())
	assert.Equal(0, s.Count("100"))
}

func TestTallyStoreEntriesSorted(t *testing.T) {
	assert := assert.New(t)
	s := NewTallyStore(filepath.Join(t.TempDir(), "tallies.json"))

	s.Increment("bbb")
	for i := 0; i < 5; i++ {
		s.Increment("aaa")
	}
	for i := 0; i < 3; i++ {
		s.Increment("ccc")
	}
	s.Increment("aab") // ties with bbb at 1 strike

	entries := s.Entries()
	assert.Equal([]TallyEntry{
		{UserID: "aaa", Strikes: 5},
		{UserID: "ccc", Strikes: 3},
		{UserID: "aab", Strikes: 1},
		{UserID: "bbb", Strikes: 1},
	}, entries)
}

func TestTallyStorePersistence(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "tallies.json")

	s := NewTallyStore(path)
	s.Increment("100")
	s.Increment("100")
	s.Increment("200")

	// A fresh store reading the same file sees the identical mapping.
	reloaded := NewTallyStore(path)
	reloaded.Load()
	assert.Equal(2, reloaded.Count("100"))
	assert.Equal(1, reloaded.Count("200"))
	assert.Equal(2, reloaded.Len())
}

func TestTallyStoreMissingFileStartsEmpty(t *testing.T) {
	assert := assert.New(t)
	s := NewTallyStore(filepath.Join(t.TempDir(), "nope.json"))
	s.Load()
	assert.Equal(0, s.Len())
}

func TestTallyStoreCorruptFileStartsEmpty(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "tallies.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s := NewTallyStore(path)
	s.Load()
	assert.Equal(0, s.Len())

	// The store must still be usable after a corrupt load.
	assert.Equal(1, s.Increment("100"))
}

func TestImmuneStoreToggle(t *testing.T) {
	assert := assert.New(t)
	s := NewImmuneStore(filepath.Join(t.TempDir(), "immune.json"))

	assert.False(s.IsImmune("100"))
	assert.True(s.Toggle("100"))
	assert.True(s.IsImmune("100"))
	assert.False(s.Toggle("100"))
	assert.False(s.IsImmune("100"))
}

func TestImmuneStorePersistence(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "immune.json")

	s := NewImmuneStore(path)
	s.Toggle("100")
	s.Toggle("200")
	s.Toggle("200") // toggled off, entry removed

	reloaded := NewImmuneStore(path)
	reloaded.Load()
	assert.True(reloaded.IsImmune("100"))
	assert.False(reloaded.IsImmune("200"))
}
