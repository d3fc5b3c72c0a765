package home

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/events"

	"github.com/xyligan-gp/discord-player-music-sub000/player"
)

func handleMusicSkip(event *events.ApplicationCommandInteractionCreate) {
	_ = event.DeferCreateMessage(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	skipped, next, err := musicPlayer.Skip(ctx, *event.GuildID())
	if err != nil {
		if player.IsCode(err, player.CodeQueueNotFound) {
			updateResponse(event, "❌ Nothing is playing.")
			return
		}
		updateResponse(event, "❌ Failed to skip: %v", err)
		return
	}

	if next.URL == "" {
		updateResponse(event, "⏭️ Skipped **%s**, the queue is now empty.", skipped.Title)
		return
	}
	updateResponse(event, "⏭️ Skipped **%s**, now playing **%s**.", skipped.Title, next.Title)
}
