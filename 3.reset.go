package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/sho0pi/naturaltime"
)

// ===========================
// Command Registration
// ===========================

func init() {
	OnClientReady(func(ctx context.Context, client *bot.Client) {
		RegisterDaemon(LogReset, func(ctx context.Context) (bool, func(), func()) { return StartResetScheduler(ctx, client) })
	})

	RegisterCommand(discord.SlashCommandCreate{
		Name:        "when",
		Description: "Show when the next weekly strike reset happens",
	}, handleWhen)
}

// ===========================
// Reset Schedule
// ===========================

const (
	defaultResetWeekday = time.Monday
	defaultResetHour    = 12
)

var (
	resetSchedulerRunning int32
	resetScheduleOnce     sync.Once
	resetWeekday          = defaultResetWeekday
	resetHour             = defaultResetHour
)

// resolveResetSchedule parses RESET_WHEN ("monday at noon", "friday at 6pm")
// into a weekday and hour. Parse failures fall back to the defaults.
func resolveResetSchedule() {
	resetScheduleOnce.Do(func() {
		when := ""
		if GlobalConfig != nil {
			when = strings.TrimSpace(GlobalConfig.ResetWhen)
		}
		if when == "" {
			return
		}

		parser, err := naturaltime.New()
		if err != nil {
			LogReset(MsgResetParserInitFail, err)
			return
		}

		result, err := parser.ParseDate(when, time.Now())
		if err != nil || result == nil {
			LogReset(MsgResetWhenParseFail, when)
			return
		}

		resetWeekday = result.Weekday()
		resetHour = result.Hour()
		LogReset(MsgResetScheduleSet, resetWeekday, resetHour)
	})
}

// nextResetAfter returns the first weekday/hour boundary strictly after now,
// in now's location.
func nextResetAfter(now time.Time, weekday time.Weekday, hour int) time.Time {
	days := (int(weekday) - int(now.Weekday()) + 7) % 7
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if days == 0 && !now.Before(target) {
		days = 7
	}
	return target.AddDate(0, 0, days)
}

func nextResetTime() time.Time {
	resolveResetSchedule()
	return nextResetAfter(time.Now(), resetWeekday, resetHour)
}

// ===========================
// Scheduler Daemon
// ===========================

// StartResetScheduler runs the weekly reset loop. The firing time is
// recomputed from the wall clock every cycle, so restarts and clock jumps
// never drift the schedule.
func StartResetScheduler(ctx context.Context, client *bot.Client) (bool, func(), func()) {
	if !atomic.CompareAndSwapInt32(&resetSchedulerRunning, 0, 1) {
		return false, nil, nil
	}

	resolveResetSchedule()

	return true, func() {
			for {
				next := nextResetTime()
				LogReset(MsgResetNextFiring, next.Format("Mon Jan 2 15:04"), FormatDuration(time.Until(next)))

				timer := time.NewTimer(time.Until(next))
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
					runWeeklyReset(ctx, client)
				}
			}
		}, func() {
			LogReset(MsgResetShutdown)
		}
}

// runWeeklyReset announces the week's standings in the enforcement channel,
// then clears the tallies.
func runWeeklyReset(ctx context.Context, client *bot.Client) {
	if GlobalConfig == nil || GlobalConfig.MeowChannelID == 0 {
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	announceWeeklyReset(Tallies, func(content string) error {
		_, err := client.Rest.CreateMessage(GlobalConfig.MeowChannelID,
			discord.NewMessageCreateBuilder().SetContent(content).Build(),
			rest.WithCtx(sendCtx))
		return err
	})
}

// announceWeeklyReset sends the week's report through send and clears the
// tallies only after the send succeeds. A failed send keeps the tallies
// intact so the report is retried on the next cycle.
func announceWeeklyReset(tallies *TallyStore, send func(content string) error) {
	entries := tallies.Entries()

	content := MsgResetQuietWeek
	if len(entries) > 0 {
		content = composeWeeklyReport(entries)
	}

	if err := send(content); err != nil {
		LogReset(MsgResetAnnounceFail, err)
		return
	}

	if len(entries) > 0 {
		tallies.ClearAll()
		LogReset(MsgResetCleared, len(entries))
	}
}

// composeWeeklyReport builds the announcement from a sorted snapshot. The
// "fewest" line is skipped when it would repeat the worst offender.
func composeWeeklyReport(entries []TallyEntry) string {
	var b strings.Builder
	b.WriteString(MsgResetReportHeader)

	worst := entries[0]
	b.WriteString(fmt.Sprintf(MsgResetReportWorst, worst.UserID, worst.Strikes))

	if len(entries) == 1 {
		b.WriteString(fmt.Sprintf(MsgResetReportSole, worst.UserID))
	} else {
		best := entries[len(entries)-1]
		if best.Strikes < worst.Strikes {
			b.WriteString(fmt.Sprintf(MsgResetReportBest, best.UserID, best.Strikes))
		}
	}

	b.WriteString(MsgResetReportFooter)
	return b.String()
}

// ===========================
// When Command
// ===========================

func handleWhen(event *events.ApplicationCommandInteractionCreate) {
	next := nextResetTime()

	embed := discord.NewEmbedBuilder().
		SetTitle(MsgWhenTitle).
		SetDescription(MsgWhenDesc).
		SetColor(0xFF69B4).
		AddField(MsgWhenFieldDate, fmt.Sprintf("<t:%d:F>", next.Unix()), false).
		AddField(MsgWhenFieldLeft, formatTimeRemaining(time.Until(next)), false).
		SetFooterText(MsgWhenFooter).
		SetTimestamp(time.Now()).
		Build()

	err := event.CreateMessage(discord.NewMessageCreateBuilder().
		SetEmbeds(embed).
		Build())
	if err != nil {
		LogReset(MsgTallyRespondError, err)
	}
}

// formatTimeRemaining renders a duration as "2 days, 3 hours, 5 minutes",
// dropping zero components.
func formatTimeRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", days, Plural(days, "day", "days")))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", hours, Plural(hours, "hour", "hours")))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", minutes, Plural(minutes, "minute", "minutes")))
	}

	if len(parts) == 0 {
		return MsgWhenLessMinute
	}
	return strings.Join(parts, ", ")
}
