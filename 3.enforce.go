package main

import (
	"fmt"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/time/rate"
)

// ===========================
// Enforcement Registration
// ===========================

func init() {
	RegisterMessageCreateHandler(onMeowMessage)
}

// ===========================
// Meow Enforcement
// ===========================

const meowDeleteDelay = 5 * time.Second

// warnLimiter throttles warning replies during spam bursts, so a violation
// is not guaranteed a visible reply. Strikes still count and offending
// messages are still deleted when throttled.
var warnLimiter = rate.NewLimiter(rate.Limit(1), 5)

// onMeowMessage screens every message in the enforcement channel.
func onMeowMessage(event *events.MessageCreate) {
	if event.Message.Author.Bot {
		return
	}
	if GlobalConfig == nil || GlobalConfig.MeowChannelID == 0 {
		return
	}
	if event.ChannelID != GlobalConfig.MeowChannelID {
		return
	}
	if isValidMeow(event.Message.Content) {
		return
	}

	safeGo(func() { enforceMeow(event) })
}

// recordViolation applies the tally side of enforcement: immune users are
// skipped, everyone else gains one persisted strike. Reports the new count
// and whether a strike was applied.
func recordViolation(tallies *TallyStore, immunities *ImmuneStore, userID string) (int, bool) {
	if immunities.IsImmune(userID) {
		return 0, false
	}
	return tallies.Increment(userID), true
}

// enforceMeow punishes a disqualified message: tally first (persisted before
// any reply so a crash never under-counts), then warn, then delete both
// messages after a grace period.
func enforceMeow(event *events.MessageCreate) {
	userID := event.Message.Author.ID

	strikes, struck := recordViolation(Tallies, Immunities, userID.String())
	if !struck {
		return
	}

	if err := RecordStrike(AppContext, userID, event.ChannelID); err != nil {
		LogStore(MsgStoreAuditFail, err)
	}

	LogMeow(MsgMeowStrike, strikes, userID, Truncate(event.Message.Content, 40))

	var warningID snowflake.ID
	if warnLimiter.Allow() {
		warning, err := event.Client().Rest.CreateMessage(event.ChannelID,
			discord.NewMessageCreateBuilder().
				SetContent(fmt.Sprintf(MsgMeowWarning, userID, strikes)).
				SetMessageReferenceByID(event.Message.ID).
				Build(),
			rest.WithCtx(AppContext))
		if err != nil {
			LogMeow(MsgMeowWarnFail, err)
		} else {
			warningID = warning.ID
		}
	} else {
		LogMeow(MsgMeowWarnSkipped, userID)
	}

	scheduleMeowCleanup(event.Client(), event.ChannelID, event.Message.ID, warningID)
}

// scheduleMeowCleanup deletes the offending message and its warning after
// the grace period. Deletion failures are expected races (already deleted,
// missing permission) and are only logged. The timer lapses on shutdown.
func scheduleMeowCleanup(client *bot.Client, channelID, messageID, warningID snowflake.ID) {
	safeGo(func() {
		select {
		case <-AppContext.Done():
			return
		case <-time.After(meowDeleteDelay):
		}

		if err := client.Rest.DeleteMessage(channelID, messageID, rest.WithCtx(AppContext)); err != nil {
			LogMeow(MsgMeowDeleteFail, messageID, err)
		}
		if warningID != 0 {
			if err := client.Rest.DeleteMessage(channelID, warningID, rest.WithCtx(AppContext)); err != nil {
				LogMeow(MsgMeowDeleteFail, warningID, err)
			}
		}
	})
}
