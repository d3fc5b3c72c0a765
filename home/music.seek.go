package home

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"

	"github.com/xyligan-gp/discord-player-music-sub000/player"
)

func handleMusicSeek(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	seconds, _ := data.OptInt("seconds")
	position := time.Duration(seconds) * time.Second

	_ = event.DeferCreateMessage(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := musicPlayer.Seek(ctx, *event.GuildID(), position); err != nil {
		switch {
		case player.IsCode(err, player.CodeQueueNotFound):
			updateResponse(event, "❌ Nothing is playing.")
		case player.IsCode(err, player.CodeInvalidArgument):
			updateResponse(event, "⚠️ Position is out of range.")
		default:
			updateResponse(event, "❌ Failed to seek: %v", err)
		}
		return
	}
	updateResponse(event, "⏩ Jumped to `%s`.", player.NewTrackDuration(position))
}
