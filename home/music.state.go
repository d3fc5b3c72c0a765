package home

import (
	"github.com/disgoorg/disgo/events"

	"github.com/xyligan-gp/discord-player-music-sub000/player"
)

func handleMusicPause(event *events.ApplicationCommandInteractionCreate) {
	setPlayState(event, player.StatePaused, "⏸️ Paused playback.")
}

func handleMusicResume(event *events.ApplicationCommandInteractionCreate) {
	setPlayState(event, player.StatePlaying, "▶️ Resumed playback.")
}

func setPlayState(event *events.ApplicationCommandInteractionCreate, target player.PlayState, okMsg string) {
	if _, err := musicPlayer.SetState(*event.GuildID(), target); err != nil {
		switch {
		case player.IsCode(err, player.CodeQueueNotFound):
			respondEphemeral(event, "❌ Nothing is playing.")
		case player.IsCode(err, player.CodeStateUnchanged):
			respondEphemeral(event, "⚠️ Playback is already %s.", target)
		default:
			respondEphemeral(event, "❌ Failed: %v", err)
		}
		return
	}
	respond(event, "%s", okMsg)
}
