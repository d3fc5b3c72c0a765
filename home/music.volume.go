package home

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"

	"github.com/xyligan-gp/discord-player-music-sub000/player"
)

func handleMusicVolume(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	values := []float64{}
	if value, ok := data.OptFloat("value"); ok {
		values = append(values, value)
	}

	_ = event.DeferCreateMessage(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	info, err := musicPlayer.SetVolume(ctx, *event.GuildID(), values...)
	if err != nil {
		switch {
		case player.IsCode(err, player.CodeQueueNotFound):
			updateResponse(event, "❌ Nothing is playing.")
		case player.IsCode(err, player.CodeInvalidArgument):
			updateResponse(event, "⚠️ Volume must be a positive number.")
		default:
			updateResponse(event, "❌ Failed to set volume: %v", err)
		}
		return
	}
	updateResponse(event, "🔊 Volume set to **%g**.", info.Volume)
}
