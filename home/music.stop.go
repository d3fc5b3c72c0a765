package home

import (
	"github.com/disgoorg/disgo/events"

	"github.com/xyligan-gp/discord-player-music-sub000/player"
)

func handleMusicStop(event *events.ApplicationCommandInteractionCreate) {
	if err := musicPlayer.Stop(*event.GuildID()); err != nil {
		if player.IsCode(err, player.CodeQueueNotFound) {
			respondEphemeral(event, "❌ Nothing is playing.")
			return
		}
		respondEphemeral(event, "❌ Failed to stop: %v", err)
		return
	}
	respond(event, "⏹️ Stopped playback and cleared the queue.")
}
