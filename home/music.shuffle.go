package home

import (
	"github.com/disgoorg/disgo/events"

	"github.com/xyligan-gp/discord-player-music-sub000/player"
)

func handleMusicShuffle(event *events.ApplicationCommandInteractionCreate) {
	info, err := musicPlayer.Shuffle(*event.GuildID())
	if err != nil {
		switch {
		case player.IsCode(err, player.CodeQueueNotFound):
			respondEphemeral(event, "❌ Nothing is playing.")
		case player.IsCode(err, player.CodeShuffleTooFew):
			respondEphemeral(event, "⚠️ Need at least 3 queued tracks to shuffle.")
		default:
			respondEphemeral(event, "❌ Failed to shuffle: %v", err)
		}
		return
	}
	respond(event, "🔀 Shuffled **%d** tracks.", len(info.Tracks)-1)
}
