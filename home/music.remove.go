package home

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"

	"github.com/xyligan-gp/discord-player-music-sub000/player"
)

func handleMusicRemove(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	index, _ := data.OptInt("index")

	removed, err := musicPlayer.RemoveTrack(*event.GuildID(), index)
	if err != nil {
		switch {
		case player.IsCode(err, player.CodeQueueNotFound):
			respondEphemeral(event, "❌ Nothing is playing.")
		case player.IsCode(err, player.CodeTrackNotFound):
			respondEphemeral(event, "⚠️ No track at position %d.", index)
		default:
			respondEphemeral(event, "❌ Failed to remove track: %v", err)
		}
		return
	}
	respond(event, "🗑️ Removed **%s** from the queue.", removed.Title)
}
