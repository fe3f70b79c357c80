package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordViolationAccrues(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	tallies := NewTallyStore(filepath.Join(dir, "tallies.json"))
	immune := NewImmuneStore(filepath.Join(dir, "immune.json"))

	for want := 1; want <= 3; want++ {
		strikes, struck := recordViolation(tallies, immune, "100")
		assert.True(struck)
		assert.Equal(want, strikes)
	}
	assert.Equal(3, tallies.Count("100"))
}

func TestRecordViolationSkipsImmune(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	tallies := NewTallyStore(filepath.Join(dir, "tallies.json"))
	immune := NewImmuneStore(filepath.Join(dir, "immune.json"))

	immune.Toggle("100")

	strikes, struck := recordViolation(tallies, immune, "100")
	assert.False(struck)
	assert.Equal(0, strikes)
	assert.Equal(0, tallies.Count("100"))

	// Toggling immunity off re-enables enforcement.
	immune.Toggle("100")
	strikes, struck = recordViolation(tallies, immune, "100")
	assert.True(struck)
	assert.Equal(1, strikes)
}

func TestRecordViolationIndependentUsers(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	tallies := NewTallyStore(filepath.Join(dir, "tallies.json"))
	immune := NewImmuneStore(filepath.Join(dir, "immune.json"))

	immune.Toggle("200")

	recordViolation(tallies, immune, "100")
	recordViolation(tallies, immune, "200")
	recordViolation(tallies, immune, "100")

	assert.Equal(2, tallies.Count("100"))
	assert.Equal(0, tallies.Count("200"))
}
