package home

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"

	"github.com/xyligan-gp/discord-player-music-sub000/player"
)

func handleMusicFilter(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	name, _ := data.OptString("name")

	_ = event.DeferCreateMessage(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	info, err := musicPlayer.SetFilter(ctx, *event.GuildID(), name)
	if err != nil {
		switch {
		case player.IsCode(err, player.CodeFilterNotFound):
			updateResponse(event, "⚠️ Unknown filter **%s**.", name)
		case player.IsCode(err, player.CodeQueueNotFound):
			updateResponse(event, "❌ Nothing is playing.")
		default:
			updateResponse(event, "❌ Failed to apply filter: %v", err)
		}
		return
	}

	if info.Filter == "clear" {
		updateResponse(event, "🎚️ Filters cleared.")
		return
	}
	updateResponse(event, "🎚️ Applied filter **%s**, the track restarts from the beginning.", info.Filter)
}
