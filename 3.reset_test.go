package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextResetAfter(t *testing.T) {
	assert := assert.New(t)

	// Wednesday 2026-01-07 10:00 UTC
	wednesday := time.Date(2026, 1, 7, 10, 0, 0, 0, time.UTC)

	// Same day, before the hour: fires today.
	next := nextResetAfter(wednesday, time.Wednesday, 12)
	assert.Equal(time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC), next)

	// Same day, exactly at the hour: fires next week.
	atNoon := time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)
	next = nextResetAfter(atNoon, time.Wednesday, 12)
	assert.Equal(time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC), next)

	// Same day, after the hour: fires next week.
	next = nextResetAfter(time.Date(2026, 1, 7, 15, 30, 0, 0, time.UTC), time.Wednesday, 12)
	assert.Equal(time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC), next)

	// Target weekday later this week.
	next = nextResetAfter(wednesday, time.Friday, 9)
	assert.Equal(time.Date(2026, 1, 9, 9, 0, 0, 0, time.UTC), next)

	// Target weekday already passed this week: wraps to next week.
	next = nextResetAfter(wednesday, time.Monday, 12)
	assert.Equal(time.Date(2026, 1, 12, 12, 0, 0, 0, time.UTC), next)
}

func TestNextResetAfterAlwaysInFuture(t *testing.T) {
	assert := assert.New(t)

	now := time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		for _, hour := range []int{0, 12, 23} {
			next := nextResetAfter(now, wd, hour)
			assert.True(next.After(now), "weekday=%s hour=%d gave %s", wd, hour, next)
			assert.Equal(wd, next.Weekday())
			assert.Equal(hour, next.Hour())
		}
	}
}

func TestAnnounceWeeklyResetKeepsTalliesOnFailedSend(t *testing.T) {
	assert := assert.New(t)
	s := NewTallyStore(filepath.Join(t.TempDir(), "tallies.json"))
	s.Increment("100")
	s.Increment("100")
	s.Increment("200")

	announceWeeklyReset(s, func(string) error { return errors.New("channel gone") })

	assert.Equal(2, s.Count("100"))
	assert.Equal(1, s.Count("200"))
	assert.Equal(2, s.Len())
}

func TestAnnounceWeeklyResetClearsOnSuccess(t *testing.T) {
	assert := assert.New(t)
	s := NewTallyStore(filepath.Join(t.TempDir(), "tallies.json"))
	s.Increment("100")
	s.Increment("100")

	var sent string
	announceWeeklyReset(s, func(content string) error {
		sent = content
		return nil
	})

	assert.Contains(sent, "<@100>")
	assert.Equal(0, s.Len())
}

func TestAnnounceWeeklyResetQuietWeek(t *testing.T) {
	assert := assert.New(t)
	s := NewTallyStore(filepath.Join(t.TempDir(), "tallies.json"))

	var sent string
	announceWeeklyReset(s, func(content string) error {
		sent = content
		return nil
	})

	assert.Equal(MsgResetQuietWeek, sent)
	assert.Equal(0, s.Len())
}

func TestComposeWeeklyReport(t *testing.T) {
	assert := assert.New(t)

	report := composeWeeklyReport([]TallyEntry{
		{UserID: "111", Strikes: 5},
		{UserID: "222", Strikes: 3},
		{UserID: "333", Strikes: 2},
	})

	assert.Contains(report, "Weekly Meow Report")
	assert.Contains(report, "<@111>")
	assert.Contains(report, "**5** strike(s)")
	assert.Contains(report, "<@333>")
	assert.Contains(report, "**2** strike(s)")
	assert.NotContains(report, "<@222>")
	assert.True(strings.HasSuffix(report, "meow"))
}

func TestComposeWeeklyReportSoleParticipant(t *testing.T) {
	assert := assert.New(t)

	report := composeWeeklyReport([]TallyEntry{
		{UserID: "111", Strikes: 4},
	})

	assert.Contains(report, "Most Non-Meows")
	assert.Contains(report, "Only participant")
	assert.NotContains(report, "Fewest Non-Meows")
}

func TestComposeWeeklyReportTieSkipsBestLine(t *testing.T) {
	assert := assert.New(t)

	report := composeWeeklyReport([]TallyEntry{
		{UserID: "111", Strikes: 2},
		{UserID: "222", Strikes: 2},
	})

	// Everyone is equally guilty, so no one gets praised.
	assert.Contains(report, "<@111>")
	assert.NotContains(report, "Fewest Non-Meows")
}

func TestFormatTimeRemaining(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("less than a minute", formatTimeRemaining(0))
	assert.Equal("less than a minute", formatTimeRemaining(30*time.Second))
	assert.Equal("less than a minute", formatTimeRemaining(-time.Hour))
	assert.Equal("1 minute", formatTimeRemaining(time.Minute))
	assert.Equal("5 minutes", formatTimeRemaining(5*time.Minute))
	assert.Equal("1 hour", formatTimeRemaining(time.Hour))
	assert.Equal("2 hours, 30 minutes", formatTimeRemaining(2*time.Hour+30*time.Minute))
	assert.Equal("1 day", formatTimeRemaining(24*time.Hour))
	assert.Equal("3 days, 4 hours, 5 minutes", formatTimeRemaining(76*time.Hour+5*time.Minute))
	assert.Equal("2 days, 10 minutes", formatTimeRemaining(48*time.Hour+10*time.Minute))
}
