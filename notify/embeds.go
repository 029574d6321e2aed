package notify

import (
	"fmt"

	"raffler/domain/events"

	"github.com/bwmarrin/discordgo"
)

// CreateWinnerEmbed creates the announcement for a resolved round
func CreateWinnerEmbed(e events.WinnerPickedEvent) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Raffle #%d - Winner!", e.RoundNumber),
		Color:       ColorSuccess,
		Description: fmt.Sprintf("**%s** takes the pot of %s", e.Winner, FormatBalance(e.Payout)),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Entries",
				Value:  fmt.Sprintf("%d", e.Participants),
				Inline: true,
			},
			{
				Name:   "Request",
				Value:  e.RequestID.String(),
				Inline: true,
			},
		},
	}
	if !e.ResolvedAt.IsZero() {
		embed.Timestamp = e.ResolvedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return embed
}

// CreateCalculatingEmbed creates the announcement for a closed round awaiting randomness
func CreateCalculatingEmbed(e events.RoundCalculatingEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Raffle #%d - Drawing", e.RoundNumber),
		Color:       ColorInfo,
		Description: "Entries are closed. Picking a winner...",
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Pot",
				Value:  FormatBalance(e.RoundBalance),
				Inline: true,
			},
			{
				Name:   "Entries",
				Value:  fmt.Sprintf("%d", e.Participants),
				Inline: true,
			},
		},
	}
}

// CreateSettlementFailedEmbed creates the notice for a payout that will be retried
func CreateSettlementFailedEmbed(e events.SettlementFailedEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Raffle #%d - Payout delayed", e.RoundNumber),
		Color:       ColorDanger,
		Description: fmt.Sprintf("Paying %s to **%s** failed. The payout will be retried.", FormatBalance(e.Amount), e.Winner),
	}
}

// embedFor returns nil for events that are not announced
func embedFor(event events.Event) *discordgo.MessageEmbed {
	switch e := event.(type) {
	case events.WinnerPickedEvent:
		return CreateWinnerEmbed(e)
	case events.RoundCalculatingEvent:
		return CreateCalculatingEmbed(e)
	case events.SettlementFailedEvent:
		return CreateSettlementFailedEmbed(e)
	default:
		return nil
	}
}
