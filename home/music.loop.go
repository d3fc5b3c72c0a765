package home

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"

	"github.com/xyligan-gp/discord-player-music-sub000/player"
)

func handleMusicLoop(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	targets := []player.LoopTarget{}
	if mode, ok := data.OptString("mode"); ok {
		targets = append(targets, player.LoopTarget(mode))
	}

	loop, err := musicPlayer.SetLoop(*event.GuildID(), targets...)
	if err != nil {
		if player.IsCode(err, player.CodeQueueNotFound) {
			respondEphemeral(event, "❌ Nothing is playing.")
			return
		}
		respondEphemeral(event, "❌ Failed to set loop: %v", err)
		return
	}

	switch {
	case loop.Track:
		respond(event, "🔂 Repeating the current track.")
	case loop.Queue:
		respond(event, "🔁 Repeating the queue.")
	default:
		respond(event, "➡️ Repeat disabled.")
	}
}
