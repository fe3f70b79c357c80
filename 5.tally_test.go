package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResetStrikesMessage(t *testing.T) {
	assert := assert.New(t)
	s := NewTallyStore(filepath.Join(t.TempDir(), "tallies.json"))
	s.Increment("100")
	s.Increment("100")

	msg := resetStrikesMessage(s, "100", "someuser")
	assert.Equal(fmt.Sprintf(MsgTallyResetDone, 2, "someuser"), msg)
	assert.Equal(0, s.Count("100"))

	msg = resetStrikesMessage(s, "100", "someuser")
	assert.Equal(fmt.Sprintf(MsgTallyResetNothing, "someuser"), msg)
}

func TestLeaderboardRankingsMedals(t *testing.T) {
	assert := assert.New(t)

	out := leaderboardRankings([]TallyEntry{
		{UserID: "111", Strikes: 9},
		{UserID: "222", Strikes: 5},
		{UserID: "333", Strikes: 2},
		{UserID: "444", Strikes: 1},
	})

	lines := strings.Split(out, "\n")
	assert.Len(lines, 4)
	assert.True(strings.HasPrefix(lines[0], "🥇 <@111>"))
	assert.True(strings.HasPrefix(lines[1], "🥈 <@222>"))
	assert.True(strings.HasPrefix(lines[2], "🥉 <@333>"))
	assert.True(strings.HasPrefix(lines[3], "4. <@444>"))
}

func TestLeaderboardRankingsPlural(t *testing.T) {
	assert := assert.New(t)

	out := leaderboardRankings([]TallyEntry{
		{UserID: "111", Strikes: 2},
		{UserID: "222", Strikes: 1},
	})

	assert.Contains(out, "**2** strikes")
	assert.True(strings.HasSuffix(out, "**1** strike"))
}

func TestLeaderboardRankingsCap(t *testing.T) {
	assert := assert.New(t)

	var entries []TallyEntry
	for i := 0; i < 40; i++ {
		entries = append(entries, TallyEntry{UserID: fmt.Sprintf("%d", i), Strikes: 40 - i})
	}

	out := leaderboardRankings(entries)
	assert.Len(strings.Split(out, "\n"), 25)
}
