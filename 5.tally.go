package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/omit"
)

// ===========================
// Command Registration
// ===========================

func init() {
	adminPerm := discord.PermissionAdministrator

	RegisterCommand(discord.SlashCommandCreate{
		Name:                     "immune",
		Description:              "Toggle your immunity to meow enforcement (Owner Only)",
		DefaultMemberPermissions: omit.New(&adminPerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
	}, handleImmune)

	RegisterCommand(discord.SlashCommandCreate{
		Name:        "reset",
		Description: "Reset a user's strike count",
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionUser{
				Name:        "user",
				Description: "The user whose strikes to reset",
				Required:    true,
			},
		},
	}, handleResetStrikes)

	RegisterCommand(discord.SlashCommandCreate{
		Name:                     "leaderboard",
		Description:              "Show the current strike standings (Owner Only)",
		DefaultMemberPermissions: omit.New(&adminPerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
	}, handleLeaderboard)
}

// tallyRespond sends an ephemeral text response
func tallyRespond(event *events.ApplicationCommandInteractionCreate, content string) {
	err := event.CreateMessage(discord.NewMessageCreateBuilder().
		SetContent(content).
		SetEphemeral(true).
		Build())
	if err != nil {
		LogTally(MsgTallyRespondError, err)
	}
}

// ===========================
// Command Handlers
// ===========================

// handleImmune toggles the caller's own immunity flag
func handleImmune(event *events.ApplicationCommandInteractionCreate) {
	userID := event.User().ID
	if !GlobalConfig.IsOwner(userID) {
		tallyRespond(event, ErrTallyOwnerOnly)
		return
	}

	if Immunities.Toggle(userID.String()) {
		tallyRespond(event, MsgTallyImmuneOn)
	} else {
		tallyRespond(event, MsgTallyImmuneOff)
	}
}

// handleResetStrikes clears one user's tally
func handleResetStrikes(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	target, ok := data.OptUser("user")
	if !ok {
		tallyRespond(event, ErrTallyMissingUser)
		return
	}

	tallyRespond(event, resetStrikesMessage(Tallies, target.ID.String(), target.Username))
}

// resetStrikesMessage clears the target's tally and reports the outcome.
func resetStrikesMessage(tallies *TallyStore, userID, username string) string {
	prior, had := tallies.Reset(userID)
	if !had {
		return fmt.Sprintf(MsgTallyResetNothing, username)
	}
	return fmt.Sprintf(MsgTallyResetDone, prior, username)
}

// handleLeaderboard shows the current standings as an embed
func handleLeaderboard(event *events.ApplicationCommandInteractionCreate) {
	if !GlobalConfig.IsOwner(event.User().ID) {
		tallyRespond(event, ErrTallyOwnerOnly)
		return
	}

	entries := Tallies.Entries()
	if len(entries) == 0 {
		tallyRespond(event, MsgTallyBoardEmpty)
		return
	}

	next := nextResetTime()
	footer := fmt.Sprintf(MsgTallyBoardFooter, next.Format("Mon Jan 2 15:04"))
	if total, err := CountStrikeHistory(AppContext); err != nil {
		LogTally(MsgStoreAuditSummary, err)
	} else {
		footer = fmt.Sprintf(MsgTallyBoardFooterFull, next.Format("Mon Jan 2 15:04"), total)
	}

	embed := discord.NewEmbedBuilder().
		SetTitle(MsgTallyBoardTitle).
		SetDescription(MsgTallyBoardDesc).
		SetColor(0xFF0000).
		AddField(MsgTallyBoardRankings, leaderboardRankings(entries), false).
		SetFooterText(footer).
		SetTimestamp(time.Now()).
		Build()

	err := event.CreateMessage(discord.NewMessageCreateBuilder().
		SetEmbeds(embed).
		SetEphemeral(true).
		Build())
	if err != nil {
		LogTally(MsgTallyRespondError, err)
	}
}

// leaderboardRankings renders a sorted snapshot as mention lines, medals for
// the top three, capped at Discord's 25-field-equivalent limit.
func leaderboardRankings(entries []TallyEntry) string {
	medals := []string{"🥇", "🥈", "🥉"}

	limit := Min(len(entries), 25)
	var b strings.Builder
	for i := 0; i < limit; i++ {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		e := entries[i]
		fmt.Fprintf(&b, "%s <@%s>: **%d** %s\n", rank, e.UserID, e.Strikes, Plural(e.Strikes, "strike", "strikes"))
	}
	return strings.TrimRight(b.String(), "\n")
}
